package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/pipeintegrity/fatigue-core/internal/analysis"
	"github.com/pipeintegrity/fatigue-core/internal/evolution"
	"github.com/pipeintegrity/fatigue-core/internal/study"
	"github.com/pipeintegrity/fatigue-core/pkg/config"
	"github.com/pipeintegrity/fatigue-core/pkg/logger"
)

var (
	runConfigPath string
	runOutputPath string
	runTrace      bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a crack evolution analysis from a YAML configuration",
	Long: `Run one analysis described by a YAML configuration file.

Without a study section the configuration is evaluated as a single
deterministic run. With a study section (or uncertain parameters) the
full probabilistic or sensitivity study is executed instead.

Results are written as YAML to stdout or to --output.`,
	RunE: runAnalysis,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runConfigPath, "config", "c", "", "path to YAML configuration [required]")
	runCmd.Flags().StringVarP(&runOutputPath, "output", "o", "", "write results to file instead of stdout")
	runCmd.Flags().BoolVar(&runTrace, "trace", false, "include the per-step evolution trace (deterministic runs only)")
	runCmd.MarkFlagRequired("config")
}

// deterministicOutput is the YAML shape of a single-run result.
type deterministicOutput struct {
	Summary  analysis.Summary   `yaml:"summary"`
	Life     evolution.Life     `yaml:"life"`
	Warnings []string           `yaml:"warnings,omitempty"`
	Trace    []evolution.Sample `yaml:"trace,omitempty"`
}

// studyOutput is the YAML shape of a study result. Per-sample traces are
// omitted; the aggregates carry the distributional picture.
type studyOutput struct {
	Completed  int               `yaml:"completed"`
	Failed     int               `yaml:"failed"`
	Skipped    int               `yaml:"skipped,omitempty"`
	Incomplete bool              `yaml:"incomplete,omitempty"`
	Cycles     *study.CycleStats        `yaml:"cycles_to_failure,omitempty"`
	Mitigation *study.MitigationOutcome `yaml:"mitigation,omitempty"`
	Aggregates study.Aggregates         `yaml:"aggregates"`
}

func runAnalysis(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(runConfigPath)
	if err != nil {
		return err
	}

	var out any
	if cfg.Study != nil || len(cfg.Parameters) > 0 {
		out, err = executeStudy(cmd, cfg)
	} else {
		out, err = executeDeterministic(cmd, cfg)
	}
	if err != nil {
		return err
	}
	return writeResult(out)
}

func executeDeterministic(cmd *cobra.Command, cfg *config.Config) (any, error) {
	in, err := cfg.AnalysisInput()
	if err != nil {
		return nil, err
	}
	a, err := analysis.New(in)
	if err != nil {
		return nil, err
	}

	res, err := a.Run(cmd.Context())
	if err != nil {
		return nil, err
	}

	out := deterministicOutput{
		Summary:  res.Summary,
		Life:     res.Life,
		Warnings: res.Warnings,
	}
	if runTrace {
		out.Trace = res.Evolution.Samples
	}
	return out, nil
}

func executeStudy(cmd *cobra.Command, cfg *config.Config) (any, error) {
	studyCfg, err := cfg.StudyConfig()
	if err != nil {
		return nil, err
	}
	runner, err := study.New(studyCfg)
	if err != nil {
		return nil, err
	}

	res, err := runner.Run(cmd.Context())
	if err != nil {
		return nil, err
	}

	out := studyOutput{
		Completed:  res.Completed,
		Failed:     res.Failed,
		Skipped:    res.Skipped,
		Incomplete: res.Incomplete,
		Mitigation: res.Mitigation,
		Aggregates: res.Aggregates,
	}
	if res.Aggregates.Cycles.Count > 0 {
		stats := res.Aggregates.Cycles
		out.Cycles = &stats
	}
	return out, nil
}

func writeResult(out any) error {
	data, err := yaml.Marshal(out)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}

	if runOutputPath == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(runOutputPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write result: %w", err)
	}
	logger.Info("result written", "path", runOutputPath)
	return nil
}
