package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/pipeintegrity/fatigue-core/internal/analysis"
	"github.com/pipeintegrity/fatigue-core/pkg/config"
)

var (
	curveConfigPath string
	curveMinDeltaK  float64
	curveMaxDeltaK  float64
	curvePoints     int
)

var curveCmd = &cobra.Command{
	Use:   "curve",
	Short: "Print the growth-rate design curve for a configuration",
	Long: `Evaluate the configured growth law over a range of stress
intensity factor ranges and print the (delta_k, rate) pairs as YAML.

The environmental parameters of the configuration fix the curve: the
R ratio and the hydrogen fugacity ratio select between the air floor
and the hydrogen-assisted branches.`,
	RunE: runCurve,
}

func init() {
	rootCmd.AddCommand(curveCmd)

	curveCmd.Flags().StringVarP(&curveConfigPath, "config", "c", "", "path to YAML configuration [required]")
	curveCmd.Flags().Float64Var(&curveMinDeltaK, "min", 1, "lowest delta-K (MPa*sqrt(m))")
	curveCmd.Flags().Float64Var(&curveMaxDeltaK, "max", 100, "highest delta-K (MPa*sqrt(m))")
	curveCmd.Flags().IntVar(&curvePoints, "points", 50, "number of log-spaced points")
	curveCmd.MarkFlagRequired("config")
}

func runCurve(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(curveConfigPath)
	if err != nil {
		return err
	}
	in, err := cfg.AnalysisInput()
	if err != nil {
		return err
	}
	a, err := analysis.New(in)
	if err != nil {
		return err
	}

	points, err := a.DesignCurve(curveMinDeltaK, curveMaxDeltaK, curvePoints)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(map[string]any{
		"model": a.RateModel().Name(),
		"curve": points,
	})
	if err != nil {
		return fmt.Errorf("failed to encode curve: %w", err)
	}
	_, err = os.Stdout.Write(data)
	return err
}
