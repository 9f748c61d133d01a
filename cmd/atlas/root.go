package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"lendstack-hq/atlas/pkg/telemetry/logging"
)

var (
	// Global flags
	cfgFile     string
	policiesDir string
	verbose     bool
)

var rootCmd = &cobra.Command{
	Use:   "atlas",
	Short: "Atlas - lender matching engine for equipment finance",
	Long: `Atlas evaluates equipment finance applications against YAML-defined
lender policies and produces ranked matches.

Each lender policy declares programs with criteria (credit score, business
requirements, credit history, equipment limits, term matrices, geography,
industry, transaction type, loan amount) plus lender-wide restrictions.
Atlas evaluates every lender concurrently, scores program fit, and ranks
the eligible lenders.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().StringVarP(&policiesDir, "policies", "p", "policies", "lender policy directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	cobra.OnInitialize(func() { logging.SetupCLI(verbose) })
}
