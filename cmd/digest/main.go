// Command digest runs the summarization pipeline from a terminal.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"ai-digest-be/internal/config"
	"ai-digest-be/internal/pkg/logger"
	"ai-digest-be/pkg/completion"
	"ai-digest-be/pkg/llm/factory"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	logPath string

	headerColor  = color.New(color.FgCyan, color.Bold)
	successColor = color.New(color.FgGreen)
	warnColor    = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed, color.Bold)
	dimColor     = color.New(color.Faint)
)

var rootCmd = &cobra.Command{
	Use:           "digest",
	Short:         "Exhaustive summaries of long documents",
	Long:          `Segments long text, extracts every chunk in parallel and combines the results into one exhaustive summary.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logPath, "log-file", "logs/digest.log", "Where structured logs are written")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		errorColor.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newCompletionClient builds the same client the API uses, logging to a
// file so stdout stays clean.
func newCompletionClient(ctx context.Context) (*config.Config, *completion.Client, logger.ILogger, error) {
	cfg := config.Load()
	log := logger.NewIsolatedLogger(logPath)

	provider, err := factory.NewLLMProvider(ctx, cfg.Ai)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("initialize LLM provider: %w", err)
	}
	client := completion.NewClient(provider, completion.ConfigFrom(cfg.Ai.LLMModel, cfg.Completion), log)
	return cfg, client, log, nil
}
