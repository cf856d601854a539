package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/Netflix/go-env"
	"github.com/gookit/color"
	"github.com/gorilla/websocket"
	"github.com/joho/godotenv"
	"github.com/olekukonko/tablewriter"
)

// Exit codes for the client application.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

// Config defines the client-side environment variables.
type Config struct {
	ServerURL string `env:"CHAT_SERVER_URL,default=ws://localhost:8080/ws"`
	Username  string `env:"CHAT_USERNAME,required=true"`
	Room      string `env:"CHAT_ROOM,default=lobby"`
}

type clientEnvelope struct {
	Event string `json:"event"`
	Seq   uint64 `json:"seq"`
	Data  any    `json:"data,omitempty"`
}

type serverEnvelope struct {
	Event string          `json:"event"`
	Seq   uint64          `json:"seq"`
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error"`
}

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Client error: %v\n", err)
	}
	os.Exit(code)
}

func run() (int, error) {
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}

	conn, _, err := websocket.DefaultDialer.Dial(config.ServerURL, nil)
	if err != nil {
		return exitRuntime, fmt.Errorf("dial %s: %w", config.ServerURL, err)
	}
	defer conn.Close()

	var seq atomic.Uint64
	send := func(event string, data any) error {
		return conn.WriteJSON(clientEnvelope{Event: event, Seq: seq.Add(1), Data: data})
	}

	if err := send("join", map[string]string{
		"username": config.Username,
		"room":     config.Room,
	}); err != nil {
		return exitRuntime, err
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			var env serverEnvelope
			if err := conn.ReadJSON(&env); err != nil {
				return
			}
			render(env)
		}
	}()

	color.Gray.Printf("Joined %q as %q. Type a message, /loc <lat> <lon>, or /quit\n",
		config.Room, config.Username)

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
		case line == "/quit":
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			<-done
			return exitOK, nil
		case strings.HasPrefix(line, "/loc "):
			fields := strings.Fields(line)
			if len(fields) != 3 {
				color.Red.Println("usage: /loc <lat> <lon>")
				continue
			}
			lat, errLat := strconv.ParseFloat(fields[1], 64)
			lon, errLon := strconv.ParseFloat(fields[2], 64)
			if errLat != nil || errLon != nil {
				color.Red.Println("latitude and longitude must be numbers")
				continue
			}
			if err := send("sendLocation", map[string]float64{
				"latitude": lat, "longitude": lon,
			}); err != nil {
				return exitRuntime, err
			}
		default:
			if err := send("sendMsg", map[string]string{"text": line}); err != nil {
				return exitRuntime, err
			}
		}
	}
	return exitOK, scanner.Err()
}

func render(env serverEnvelope) {
	switch env.Event {
	case "ack":
		if env.Error != "" {
			color.Red.Printf("[rejected] %s\n", env.Error)
		}
	case "message":
		var m struct {
			Username string `json:"username"`
			Text     string `json:"text"`
		}
		if json.Unmarshal(env.Data, &m) != nil {
			return
		}
		if m.Username == "Admin" {
			color.Yellow.Printf("* %s\n", m.Text)
		} else {
			color.Green.Printf("%s: ", m.Username)
			fmt.Println(m.Text)
		}
	case "locationMessage":
		var l struct {
			Username string `json:"username"`
			URL      string `json:"url"`
		}
		if json.Unmarshal(env.Data, &l) != nil {
			return
		}
		color.Blue.Printf("%s shared a location: %s\n", l.Username, l.URL)
	case "roomData":
		var r struct {
			Room  string `json:"room"`
			Users []struct {
				Username string `json:"username"`
			} `json:"users"`
		}
		if json.Unmarshal(env.Data, &r) != nil {
			return
		}
		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"Room", "Members"})
		for _, u := range r.Users {
			table.Append([]string{r.Room, u.Username})
		}
		table.Render()
	}
}
