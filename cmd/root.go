package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "quasar-thermo",
	Short: "Multi-phase thermochemistry calculator",
	Long:  "quasar-thermo resolves a compound's catalog rows into phase segments and integrates Shomate-style polynomials to produce enthalpy, entropy, heat capacity and Gibbs energy across a temperature range.",
}

// Execute runs the root command, printing any error to stderr and exiting
// non-zero.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file (default: none; built-in defaults and QUASAR_THERMO_* env vars apply)")
	rootCmd.PersistentFlags().String("catalog", "quasar-thermo.db", "path to the SQLite catalog database")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().String("telemetry", "", "path to a JSONL file to record run telemetry (default: disabled)")
}
