package internal

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"
)

//go:embed inspect.html
var templatesFS embed.FS

// RosterProvider returns the live room -> members snapshot.
type RosterProvider func() map[string][]string

// StatsProvider returns dynamic counters for the dashboard header.
type StatsProvider func() map[string]any

type PageData struct {
	Rooms map[string][]string
	Stats map[string]any
}

// StartDebugServer exposes a read-only HTML view of the current rooms
// and their rosters. Local troubleshooting only; it binds its own mux
// and never touches the chat protocol.
func StartDebugServer(port int, endpoint string, rosters RosterProvider, stats StatsProvider) {
	mux := http.NewServeMux()
	tmpl := template.Must(template.ParseFS(templatesFS, "inspect.html"))

	mux.HandleFunc(endpoint, func(w http.ResponseWriter, r *http.Request) {
		data := PageData{
			Rooms: rosters(),
			Stats: make(map[string]any),
		}
		if stats != nil {
			data.Stats = stats()
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_ = tmpl.Execute(w, data)
	})

	go func() {
		_ = http.ListenAndServe(fmt.Sprintf("0.0.0.0:%d", port), mux)
	}()
}
