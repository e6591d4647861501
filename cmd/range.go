package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/quasar-thermo/internal/thermo"
)

var rangeCmd = &cobra.Command{
	Use:   "range FORMULA...",
	Short: "Resolve the shared calculation temperature range for one or more compounds",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runRange,
}

func init() {
	rangeCmd.Flags().Float64("lo", 0, "user window lower bound, in Kelvin (reported only, never constrains the result)")
	rangeCmd.Flags().Float64("hi", 0, "user window upper bound, in Kelvin (reported only, never constrains the result)")
	rootCmd.AddCommand(rangeCmd)
}

func runRange(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(cmd)
	if err != nil {
		return err
	}
	defer rt.Close()

	rowsByFormula := make(map[string][]thermo.CatalogRow, len(args))
	for _, formula := range args {
		rows, err := rt.fetchCatalogRows(formula)
		if err != nil {
			return err
		}
		rowsByFormula[formula] = rows
	}

	report := thermo.ResolveCalculationRange(rowsByFormula, resolveRangeOverride(cmd), rt.cfg)

	fmt.Printf("calculation range: [%.2f, %.2f] K\n", report.CalculationRange.Lo, report.CalculationRange.Hi)
	fmt.Printf("includes 298.15 K: %v\n", report.Includes298K)
	for _, formula := range args {
		fmt.Printf("  %-12s %s\n", formula, report.Coverage[formula])
	}
	for _, rec := range report.Recommendations {
		fmt.Printf("  note: %s\n", rec)
	}
	return nil
}
