// Command inspect renders the stored conversations and their latest
// message previews as a table, decrypting with the configured key.
package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
	"github.com/olekukonko/tablewriter"

	"chat-relay/encryption"
	"chat-relay/store"
)

type config struct {
	BadgerFilepath string `env:"BADGER_FILEPATH,required=true"`
	EncryptionKey  string `env:"CHAT_ENCRYPTION_KEY,required=true"`
	LogLevel       string `env:"LOG_LEVEL,default=WARN"`
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	var cfg config
	if _, err := env.UnmarshalFromEnviron(&cfg); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(cfg.LogLevel)

	key, err := encryption.LoadKey(cfg.EncryptionKey, false, log)
	if err != nil {
		return err
	}
	pipeline, err := encryption.NewPipeline(key)
	if err != nil {
		return err
	}

	db, err := badger.Open(badger.DefaultOptions(cfg.BadgerFilepath).
		WithLoggingLevel(badger.ERROR))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	defer func() { _ = db.Close() }()

	messageStore, err := store.NewBadgerStore(db, pipeline, log, nil)
	if err != nil {
		return err
	}
	defer func() { _ = messageStore.Close() }()

	summaries, err := messageStore.ConversationSummaries()
	if err != nil {
		return err
	}

	color.Cyan.Printf("%d conversation(s) stored\n\n", len(summaries))

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"ID", "Participant A", "Participant B", "Messages", "Created", "Last preview"})
	for _, summary := range summaries {
		table.Append([]string{
			strconv.FormatInt(summary.Conversation.ID, 10),
			summary.Conversation.ParticipantA,
			summary.Conversation.ParticipantB,
			strconv.Itoa(summary.Messages),
			summary.Conversation.CreatedAt.Format(time.DateTime),
			summary.LastPreview,
		})
	}
	table.Render()
	return nil
}
