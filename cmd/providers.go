package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sells-group/lead-qualifier/internal/provider"
)

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List the LLM providers leads can be rated with",
	RunE: func(cmd *cobra.Command, _ []string) error {
		env := initApp(cfg)
		def := provider.Key(cfg.Rating.DefaultProvider)

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(w, "NAME\tMODEL\tSTATUS\tDEFAULT")
		_, _ = fmt.Fprintln(w, "----\t-----\t------\t-------")
		for _, p := range env.Registry.All() {
			status := "ready"
			if !p.Configured() {
				status = "not configured"
			}
			mark := ""
			if provider.Key(p.Name) == def {
				mark = "*"
			}
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.Name, p.Model, status, mark)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(providersCmd)
}
