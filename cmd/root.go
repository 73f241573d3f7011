// Package cmd implements the component-monitor command line.
package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ortelius/component-monitor/config"
	"github.com/ortelius/component-monitor/database"
)

var (
	cfgFile string
	v       = config.New()
)

// rootCmd represents the base command; without a subcommand it serves the API
var rootCmd = &cobra.Command{
	Use:   "component-monitor",
	Short: "Track software components and the vulnerabilities reported against them",
	Long: `component-monitor keeps a list of libraries and products and checks them
against public vulnerability databases: OSV for libraries and NVD for products.

Examples:
  # Serve the REST and GraphQL API
  component-monitor serve --port 8080

  # Analyze a library without storing it
  component-monitor analyze --type library --ecosystem npm left-pad 1.3.0

  # Track every dependency in a go.mod
  component-monitor import ./go.mod

  # Refresh every tracked component once
  component-monitor refresh-all`,
	SilenceUsage: true,
	RunE:         runServe,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ./config.yaml)")
	rootCmd.PersistentFlags().String("port", "", "HTTP port (overrides MS_PORT)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
	_ = v.BindPFlag("port", rootCmd.PersistentFlags().Lookup("port"))
	_ = v.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))

	rootCmd.AddCommand(serveCmd, analyzeCmd, refreshAllCmd, importCmd)
}

// loadConfig reads configuration and builds the logger shared by every subcommand.
func loadConfig(vp *viper.Viper) (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(vp, cfgFile)
	if err != nil {
		return nil, nil, err
	}
	return cfg, database.InitLogger(cfg.LogLevel), nil
}
