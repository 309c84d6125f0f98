package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"ai-digest-be/internal/pkg/logger"
	"ai-digest-be/pkg/ai/pipeline"
	"ai-digest-be/pkg/pdf"

	"github.com/spf13/cobra"
)

var (
	summarizeKind  string
	summarizeTitle string
	summarizeJSON  bool
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize [file]",
	Short: "Summarize a .txt, .md or .pdf file",
	Args:  cobra.ExactArgs(1),
	RunE:  runSummarize,
}

func init() {
	summarizeCmd.Flags().StringVarP(&summarizeKind, "kind", "k", "", "book, audio, video or general (default: from extension)")
	summarizeCmd.Flags().StringVarP(&summarizeTitle, "title", "t", "", "Document title (default: file name)")
	summarizeCmd.Flags().BoolVar(&summarizeJSON, "json", false, "Print the full result as JSON")
	rootCmd.AddCommand(summarizeCmd)
}

func readDocument(cmd *cobra.Command, path string) (pipeline.Document, error) {
	title := summarizeTitle
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return pipeline.Document{}, err
	}

	kind := pipeline.ParseKind(summarizeKind)
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		res, err := pdf.NewExtractor("", logger.NewIsolatedLogger(logPath)).Extract(cmd.Context(), data)
		if err != nil {
			return pipeline.Document{}, fmt.Errorf("extract pdf: %w", err)
		}
		if res.LowConfidence {
			warnColor.Fprintf(os.Stderr, "Warning: only %d characters extracted from %d pages; the PDF may be scanned.\n", len(res.Text), res.PageCount)
		}
		if summarizeKind == "" {
			kind = pipeline.KindBook
		}
		return pipeline.Document{Content: res.Text, Title: title, Kind: kind}, nil
	}

	return pipeline.Document{Content: string(data), Title: title, Kind: kind}, nil
}

func runSummarize(cmd *cobra.Command, args []string) error {
	doc, err := readDocument(cmd, args[0])
	if err != nil {
		return err
	}

	cfg, client, log, err := newCompletionClient(cmd.Context())
	if err != nil {
		return err
	}
	defer log.Sync()

	summarizer := pipeline.NewSummarizer(client, pipeline.SettingsFromConfig(cfg.Pipeline), log)
	dimColor.Fprintf(os.Stderr, "Summarizing %q (%d chars, %s)...\n", doc.Title, len(doc.Content), doc.Kind)

	result := summarizer.Summarize(cmd.Context(), doc)

	if summarizeJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return err
		}
	}
	if !result.Success {
		return fmt.Errorf("summarization failed: %s", result.Error)
	}
	if summarizeJSON {
		return nil
	}

	out := cmd.OutOrStdout()
	headerColor.Fprintf(out, "\n%s\n\n", doc.Title)
	fmt.Fprintln(out, result.Summary)

	m := result.Metadata
	fmt.Fprintln(out)
	successColor.Fprintf(out, "Done in %.1fs\n", float64(m.ProcessingTimeMs)/1000)
	dimColor.Fprintf(out, "mode=%s chunks=%d/%d words=%d appended=%t expanded=%t\n",
		m.Mode, m.SuccessfulChunks, m.ChunkCount, m.SummaryWords, m.CompletenessAppended, m.DensityExpanded)
	if len(m.FailedChunks) > 0 {
		warnColor.Fprintf(out, "Failed chunks: %v\n", m.FailedChunks)
	}
	return nil
}
