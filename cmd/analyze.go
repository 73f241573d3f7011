package cmd

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/ortelius/component-monitor/model"
	"github.com/ortelius/component-monitor/restapi/modules/analysis"
)

var (
	flagType       string
	flagEcosystem  string
	flagIdentifier string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <name> <version>",
	Short: "Look up vulnerabilities for a component without storing it",
	Args:  cobra.ExactArgs(2),
	RunE:  runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&flagType, "type", string(model.ComponentTypeLibrary), "component type: library or product")
	analyzeCmd.Flags().StringVar(&flagEcosystem, "ecosystem", "", "library ecosystem: npm, pypi, maven, nuget, go, crates.io")
	analyzeCmd.Flags().StringVar(&flagIdentifier, "identifier", "", "PURL or CPE to use instead of the generated one")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig(v)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	d, err := model.ComponentRequest{
		Type:               flagType,
		Name:               args[0],
		Version:            args[1],
		Ecosystem:          flagEcosystem,
		IdentifierOverride: flagIdentifier,
	}.Describe()
	if err != nil {
		return err
	}

	result, err := newPipeline(cfg, logger).analyzer.Analyze(cmd.Context(), d)
	if err != nil {
		return err
	}

	out := struct {
		analysis.Response
		Findings []model.Finding `json:"findings"`
	}{
		Response: analysis.Response{
			Name:            d.ComponentName(),
			Version:         d.ComponentVersion(),
			Type:            d.Kind(),
			Identifier:      result.Identifier,
			Vulnerabilities: result.IDs(),
			Source:          analysis.SourceLabel,
		},
		Findings: result.Findings,
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
