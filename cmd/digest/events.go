package main

import (
	"context"
	"errors"
	"fmt"

	"ai-digest-be/internal/config"
	"ai-digest-be/internal/pkg/logger"
	"ai-digest-be/pkg/events"
	pktNats "ai-digest-be/pkg/nats"

	"github.com/spf13/cobra"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Follow summary.completed and summary.failed events from NATS",
	Args:  cobra.NoArgs,
	RunE:  runEvents,
}

func init() {
	rootCmd.AddCommand(eventsCmd)
}

func runEvents(cmd *cobra.Command, _ []string) error {
	cfg := config.Load()
	if cfg.App.NatsURL == "" {
		return errors.New("NATS_URL is not set")
	}

	log := logger.NewIsolatedLogger(logPath)
	defer log.Sync()

	sub, err := pktNats.NewSubscriber(cfg.App.NatsURL, log)
	if err != nil {
		return err
	}
	defer sub.Close()

	out := cmd.OutOrStdout()
	dimColor.Fprintln(out, "Waiting for events (Ctrl+C to stop)...")

	return sub.Subscribe(cmd.Context(), pktNats.Subject("summary.*"), "", func(_ context.Context, e events.Event) error {
		data := e.Payload()
		stamp := e.Timestamp().Local().Format("15:04:05")
		switch e.EventType() {
		case events.SummaryCompleted:
			successColor.Fprintf(out, "%s completed job=%v title=%v words=%v\n", stamp, data["job_id"], data["title"], data["summary_words"])
		case events.SummaryFailed:
			errorColor.Fprintf(out, "%s failed    job=%v error=%v\n", stamp, data["job_id"], data["error"])
		default:
			fmt.Fprintf(out, "%s %s %v\n", stamp, e.EventType(), data)
		}
		return nil
	})
}
