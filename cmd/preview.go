package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sells-group/lead-qualifier/internal/lead"
	"github.com/sells-group/lead-qualifier/internal/report"
	"github.com/sells-group/lead-qualifier/internal/sheet"
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Show the normalized lead table with derived domains",
	Long: `Reads a lead sheet, renames recognized columns (Name, Email, Designation,
Comment, Others), derives each lead's email domain and prints the result.
No network calls are made.

Examples:
  leadqual preview --file leads.xlsx
  leadqual preview --file leads.csv --format csv --output normalized.csv`,
	RunE: runPreview,
}

func init() {
	f := previewCmd.Flags()
	f.String("file", "", "lead sheet to read (.csv or .xlsx)")
	f.String("format", "table", "output format: table, csv or json")
	f.String("output", "", "output file path (default: stdout)")
	_ = previewCmd.MarkFlagRequired("file")

	rootCmd.AddCommand(previewCmd)
}

func runPreview(cmd *cobra.Command, _ []string) error {
	path, _ := cmd.Flags().GetString("file")
	formatName, _ := cmd.Flags().GetString("format")
	outputPath, _ := cmd.Flags().GetString("output")

	format, err := report.ParseFormat(formatName)
	if err != nil {
		return err
	}

	t, err := sheet.Open(path)
	if err != nil {
		return err
	}

	env := initApp(cfg)
	ds, err := env.Qualifier.Preview(t)
	if err != nil {
		return reportLeadError(cmd, path, err)
	}

	out, err := openOutput(outputPath, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer out.Close() //nolint:errcheck

	return report.WritePreview(out, ds, format)
}

// reportLeadError prints a missing-column message for path to stderr.
func reportLeadError(cmd *cobra.Command, path string, err error) error {
	var mce *lead.MissingColumnError
	if errors.As(err, &mce) {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", path, mce)
	}
	return err
}
