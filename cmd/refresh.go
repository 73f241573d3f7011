package cmd

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

var refreshAllCmd = &cobra.Command{
	Use:   "refresh-all",
	Short: "Refresh every tracked component once and print the summary",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, logger, err := loadConfig(v)
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		app, err := newApplication(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer app.Close(logger)

		summary, err := app.service.RefreshAll(cmd.Context(), "cli")
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	},
}
