package main

import (
	"github.com/spf13/cobra"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check that the backend answers with the configured model",
	Args:  cobra.NoArgs,
	RunE:  runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, _ []string) error {
	_, client, log, err := newCompletionClient(cmd.Context())
	if err != nil {
		return err
	}
	defer log.Sync()

	report, err := client.VerifyModel(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	headerColor.Fprintf(out, "Requested: %s\n", report.Requested)
	if !report.Echoed {
		warnColor.Fprintln(out, "Backend did not echo a model name")
		return nil
	}
	if report.Match {
		successColor.Fprintf(out, "Actual:    %s (match)\n", report.Actual)
	} else {
		errorColor.Fprintf(out, "Actual:    %s (MISMATCH)\n", report.Actual)
	}
	return nil
}
