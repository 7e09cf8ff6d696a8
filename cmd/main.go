package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"

	"chat-relay/auth"
	"chat-relay/encryption"
	"chat-relay/runtime"
	"chat-relay/runtime/workers"
	"chat-relay/store"
	"chat-relay/ws"
)

var mintToken = flag.String("mint-token", "", "print a session token for the given user id and exit")

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the server lifecycle, and
// centralizes error reporting so every defer executes before exit.
func run() error {
	flag.Parse()
	_ = godotenv.Load()

	// 1. Configuration & Logger
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	authority := auth.NewAuthority([]byte(config.TokenSecret), config.TokenDuration)
	if *mintToken != "" {
		token, err := authority.GenerateToken(*mintToken)
		if err != nil {
			return fmt.Errorf("token generation failed: %w", err)
		}
		fmt.Println(token)
		return nil
	}

	// 2. Encryption pipeline
	key, err := encryption.LoadKey(config.EncryptionKey, config.AllowEphemeralKey, log)
	if err != nil {
		return fmt.Errorf("encryption key: %w", err)
	}
	pipeline, err := encryption.NewPipeline(key)
	if err != nil {
		return fmt.Errorf("encryption pipeline: %w", err)
	}

	// 3. Database (BadgerDB)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.INFO))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	messageStore, err := store.NewBadgerStore(db, pipeline, log, config.LimitMessages)
	if err != nil {
		return fmt.Errorf("message store: %w", err)
	}
	defer func() { _ = messageStore.Close() }()

	// 4. Live state: registry, broadcaster, typing tracker
	mode, err := runtime.ParseBroadcastMode(config.BroadcastMode)
	if err != nil {
		return fmt.Errorf("broadcast mode: %w", err)
	}
	if mode == runtime.GlobalBroadcastFallback {
		log.Warn("Running with the global broadcast fallback; " +
			"conversation events reach every connected identity")
	}

	registry := runtime.NewRegistry()
	hub := runtime.NewHub(log, registry, messageStore, mode)
	typing := runtime.NewTypingTracker(log, config.TypingIdleAfter, hub.BroadcastTyping)

	// 5. Supervision: liveness sweep
	sup := workers.NewSupervisor(log, config.RestartInterval)
	sup.Add(workers.NewLivenessWorker(log, registry, config.SweepInterval, config.DeadAfter))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go sup.Run(ctx)

	// 6. Websocket gateway
	gateway := ws.NewGateway(log, hub, registry, typing, messageStore,
		authority, config.ConnectionBufferSize, config.SweepInterval)

	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	server := &http.Server{Addr: address, Handler: gateway.Routes()}

	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting websocket gateway", "address", address, "at", time.Now().UTC())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("http server error: %w", err)
		}
	}()

	// 7. Wait for stop or error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		return err
	}

	// 8. Final cleanup
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = server.Shutdown(shutdownCtx)
	sup.Stop()
	log.Info("Program stopped cleanly")

	return nil
}
