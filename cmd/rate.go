package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/lead-qualifier/internal/qualify"
	"github.com/sells-group/lead-qualifier/internal/report"
	"github.com/sells-group/lead-qualifier/internal/sheet"
)

// apiKeyEnv is read when --api-key is not given.
const apiKeyEnv = "LEADQUAL_API_KEY"

var rateCmd = &cobra.Command{
	Use:   "rate",
	Short: "Rate every lead in a sheet with an LLM provider",
	Long: `Normalizes a lead sheet, scrapes the company's services and asks the
selected provider to rate each lead's comment:

  1  more than 50% of the services match
  2  25-50% match
  3  under 25% match, irrelevant, or the rating failed
  0  no comment

Leads are rated one at a time in sheet order. Without an API key the
normalized table is printed instead of ratings.

Examples:
  LEADQUAL_API_KEY=... leadqual rate --file leads.xlsx
  leadqual rate --file leads.csv --provider OpenAI --api-key sk-... --format csv --output ratings.csv`,
	RunE: runRate,
}

func init() {
	f := rateCmd.Flags()
	f.String("file", "", "lead sheet to read (.csv or .xlsx)")
	f.String("provider", "", "LLM provider name (default from config)")
	f.String("api-key", "", "provider API key (default $"+apiKeyEnv+")")
	f.String("format", "table", "output format: table, csv or json")
	f.String("output", "", "output file path (default: stdout)")
	_ = rateCmd.MarkFlagRequired("file")

	rootCmd.AddCommand(rateCmd)
}

func runRate(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	path, _ := cmd.Flags().GetString("file")
	providerName, _ := cmd.Flags().GetString("provider")
	apiKey, _ := cmd.Flags().GetString("api-key")
	formatName, _ := cmd.Flags().GetString("format")
	outputPath, _ := cmd.Flags().GetString("output")

	if providerName == "" {
		providerName = cfg.Rating.DefaultProvider
	}
	if strings.TrimSpace(apiKey) == "" {
		apiKey = os.Getenv(apiKeyEnv)
	}

	format, err := report.ParseFormat(formatName)
	if err != nil {
		return err
	}

	t, err := sheet.Open(path)
	if err != nil {
		return err
	}

	env := initApp(cfg)
	rep, err := env.Qualifier.Run(ctx, t, qualify.Request{Provider: providerName, APIKey: apiKey})
	if err != nil {
		return reportLeadError(cmd, path, err)
	}

	out, err := openOutput(outputPath, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer out.Close() //nolint:errcheck

	if rep.Results == nil {
		_, _ = fmt.Fprintln(cmd.ErrOrStderr(), rep.Notice)
		return report.WritePreview(out, rep.Dataset, format)
	}

	if err := report.WriteRatings(out, rep.Results, format); err != nil {
		return err
	}

	zap.L().Info("rate: complete",
		zap.String("run_id", rep.RunID),
		zap.String("file", path),
		zap.String("provider", rep.Provider),
		zap.Int("leads", len(rep.Results)),
		zap.Int("fallbacks", rep.Fallbacks()),
	)
	return nil
}
