package main

import (
	"chat-relay/contract"
	"chat-relay/infrastructure/ws"
	"chat-relay/internal"
	"chat-relay/moderation"
	"chat-relay/runtime"
	"chat-relay/runtime/workers"
	"chat-relay/services"
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the server lifecycle, and centralizes
// error reporting, so every defer executes before the process exits.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Moderation dictionary (embedded word lists)
	data, err := runtime.LoadCensoredWords()
	if err != nil {
		return fmt.Errorf("censored words loading failed: %w", err)
	}
	log.Info(fmt.Sprintf("%d censored words loaded [%s]",
		len(data.Words), strings.Join(data.Languages, ",")))

	moderator, err := moderation.NewModerator(data.Words)
	if err != nil {
		return fmt.Errorf("moderation automaton build failed: %w", err)
	}

	// 3. Registry, delivery pipeline, session protocol
	registry := runtime.NewRegistry()
	deliveries := make(chan contract.Delivery, config.BufferSize)
	session := services.NewSession(log, registry, deliveries, moderator.IsProfane)

	sup := workers.NewSupervisor(log)
	sup.Add(workers.NewDeliveryFanout(log, deliveries, config.SinkTimeout))

	// 4. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	supDone := make(chan struct{})
	go func() {
		sup.Run(ctx)
		close(supDone)
	}()

	// 5. Optional debug inspector
	if config.DebugPort != nil {
		internal.StartDebugServer(*config.DebugPort, "/inspect",
			registry.Snapshot,
			func() map[string]any {
				return map[string]any{"Time": time.Now().UTC().Format(time.RFC822)}
			})
		log.Info("Debug inspector started", "port", *config.DebugPort)
	}

	// 6. HTTP server with the websocket endpoint
	mux := http.NewServeMux()
	mux.Handle("/ws", ws.NewHandler(log, session, config.ConnectionBufferSize, config.MaxMessageSize))

	server := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", config.Host, config.Port),
		Handler: mux,
	}

	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting websocket server", "address", server.Addr, "at", time.Now().UTC())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("http server error: %w", err)
		}
	}()

	// 7. Wait for Stop or Error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		return err
	}

	// 8. Final Cleanup
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = server.Shutdown(shutdownCtx)
	sup.Stop()
	<-supDone
	log.Info("Program stopped cleanly")

	return nil
}
