package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pipeintegrity/fatigue-core/pkg/logger"
)

var logLevel string

var rootCmd = &cobra.Command{
	Use:   "fatigued",
	Short: "Fatigue crack growth engine for hydrogen pipelines",
	Long: `fatigued evaluates fatigue crack evolution in pressurized steel
pipelines carrying hydrogen or hydrogen blends.

It integrates per-cycle crack growth from an initial surface flaw,
evaluates the stress intensity factor with selectable correlations,
checks each state against the failure assessment diagram, and reports
cycles to failure and remaining-life criteria.

Configurations are YAML files describing the pipe, material,
pressure cycle, initial flaw and, optionally, a probabilistic study
over uncertain inputs.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.SetDefault(logger.NewText(logLevel, os.Stderr))
	},
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}
