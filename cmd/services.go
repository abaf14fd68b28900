package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var servicesCmd = &cobra.Command{
	Use:   "services",
	Short: "List the services scraped from the company services page",
	RunE: func(cmd *cobra.Command, _ []string) error {
		url, _ := cmd.Flags().GetString("url")
		if url == "" {
			url = cfg.Company.ServicesURL
		}

		env := initApp(cfg)
		for _, s := range env.Catalog.Services(cmd.Context(), url) {
			if _, err := fmt.Fprintln(cmd.OutOrStdout(), s); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	servicesCmd.Flags().String("url", "", "services page URL (default from config)")
	rootCmd.AddCommand(servicesCmd)
}
