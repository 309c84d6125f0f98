package main

import (
	"fmt"
	"strings"

	"ai-digest-be/internal/config"
	"ai-digest-be/pkg/ai/pipeline"
	"ai-digest-be/pkg/segmenter"

	"github.com/spf13/cobra"
)

var segmentCmd = &cobra.Command{
	Use:   "segment [file]",
	Short: "Print the chunk plan for a file without calling the model",
	Args:  cobra.ExactArgs(1),
	RunE:  runSegment,
}

func init() {
	rootCmd.AddCommand(segmentCmd)
}

func runSegment(cmd *cobra.Command, args []string) error {
	doc, err := readDocument(cmd, args[0])
	if err != nil {
		return err
	}

	opts := pipeline.SettingsFromConfig(config.Load().Pipeline).Segmenter
	chunks, err := segmenter.Segment(doc.Content, opts)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	headerColor.Fprintf(out, "%s: %d chars, %d chunk(s), preferred size %d\n\n",
		doc.Title, len(doc.Content), len(chunks), opts.PreferredChunkSize)

	for _, c := range chunks {
		first := firstLine(c.Text)
		fmt.Fprintf(out, "%3d  [%7d, %7d)  %6d  ", c.Index, c.Start, c.End, c.Len())
		if segmenter.IsHeading(first) {
			successColor.Fprintln(out, first)
		} else {
			dimColor.Fprintln(out, first)
		}
	}
	return nil
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if len([]rune(s)) > 60 {
		s = string([]rune(s)[:60]) + "..."
	}
	return s
}
