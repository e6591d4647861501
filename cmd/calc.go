package cmd

import (
	"github.com/spf13/cobra"
)

var calcCmd = &cobra.Command{
	Use:   "calc",
	Short: "Run a thermochemistry calculation",
}

func init() {
	rootCmd.AddCommand(calcCmd)
}
