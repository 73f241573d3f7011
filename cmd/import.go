package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ortelius/component-monitor/internal/manifest"
)

var importCmd = &cobra.Command{
	Use:   "import <manifest>",
	Short: "Analyze and track every component listed in a YAML, TOML or go.mod manifest",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig(v)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	requests, err := manifest.ParseFile(args[0])
	if err != nil {
		return err
	}

	app, err := newApplication(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer app.Close(logger)

	out := cmd.OutOrStdout()
	failed := 0
	for _, req := range requests {
		d, err := req.Describe()
		if err == nil {
			c, created, addErr := app.service.Add(cmd.Context(), d)
			if addErr == nil {
				state := "existing"
				if created {
					state = "added"
				}
				fmt.Fprintf(out, "%-8s %d %s@%s (%d vulnerabilities)\n", state, c.ID, c.Name, c.Version, len(c.Vulnerabilities))
				continue
			}
			err = addErr
		}
		failed++
		logger.Warn("Import failed", zap.String("name", req.Name), zap.String("version", req.Version), zap.Error(err))
		fmt.Fprintf(out, "%-8s %s@%s: %v\n", "failed", req.Name, req.Version, err)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d components could not be imported", failed, len(requests))
	}
	return nil
}
