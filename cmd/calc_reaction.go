package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/quasar-thermo/internal/telemetry"
	"github.com/papapumpkin/quasar-thermo/internal/thermo"
)

var calcReactionCmd = &cobra.Command{
	Use:   "reaction TERM...",
	Short: "Calculate a reaction's DeltaH/DeltaS/DeltaG/DeltaCp from signed stoichiometric terms",
	Long: "Each TERM has the shape FORMULA:COEFF, e.g. H2:-2 O2:-1 H2O:2 describes\n" +
		"2 H2 + O2 -> 2 H2O: reactants carry a negative coefficient, products positive.",
	Args: cobra.MinimumNArgs(2),
	RunE: runCalcReaction,
}

func init() {
	registerTargetFlags(calcReactionCmd)
	calcReactionCmd.Flags().Bool("equilibrium", false, "also compute the equilibrium constant K(T)")
	calcReactionCmd.Flags().String("elemental-formulas", "", "comma-separated formulas to treat as elemental, relaxing the optimizer's first-in-phase nonzero h298/s298 check")
	calcCmd.AddCommand(calcReactionCmd)
}

func runCalcReaction(cmd *cobra.Command, args []string) error {
	stoichiometry, err := parseStoichiometry(args)
	if err != nil {
		return err
	}

	rt, err := newRuntime(cmd)
	if err != nil {
		return err
	}
	defer rt.Close()

	rowsByFormula := make(map[string][]thermo.Row, len(stoichiometry))
	catalogByFormula := make(map[string][]thermo.CatalogRow, len(stoichiometry))
	for formula := range stoichiometry {
		catalogRows, err := rt.fetchCatalogRows(formula)
		if err != nil {
			return err
		}
		catalogByFormula[formula] = catalogRows

		rows, err := rt.fetchRows(formula)
		if err != nil {
			return err
		}
		rowsByFormula[formula] = rows
	}

	rangeReport := thermo.ResolveCalculationRange(catalogByFormula, resolveRangeOverride(cmd), rt.cfg)
	calcRange := rangeReport.CalculationRange

	target, err := resolveTarget(cmd, calcRange.Lo, calcRange.Hi)
	if err != nil {
		return err
	}

	equilibrium, _ := cmd.Flags().GetBool("equilibrium")
	elementalFlag, _ := cmd.Flags().GetString("elemental-formulas")
	isElemental := parseElementalFormulas(elementalFlag)
	result := thermo.CalculateReaction(rowsByFormula, stoichiometry, calcRange, target, rt.cfg, equilibrium, rt.vcache, isElemental)
	rt.emitter.Emit(telemetry.KindReactionDone, map[string]any{"delta_h": result.DeltaH, "delta_g": result.DeltaG})

	fmt.Printf("range: [%.2f, %.2f] K\n", calcRange.Lo, calcRange.Hi)
	fmt.Printf("DeltaH = %.2f J/mol\nDeltaS = %.4f J/(mol*K)\nDeltaG = %.2f J/mol\nDeltaCp = %.4f J/(mol*K)\n",
		result.DeltaH, result.DeltaS, result.DeltaG, result.DeltaCp)
	if equilibrium {
		fmt.Printf("K = %.6g\n", result.EquilibriumK)
	}
	for _, w := range result.Warnings {
		fmt.Printf("  warning: %s\n", w)
	}
	return nil
}

// parseStoichiometry parses "FORMULA:COEFF" terms into a signed coefficient
// map, matching the sign convention CalculateReaction expects: reactants
// negative, products positive.
func parseStoichiometry(terms []string) (map[string]float64, error) {
	out := make(map[string]float64, len(terms))
	for _, term := range terms {
		parts := strings.SplitN(term, ":", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid stoichiometry term %q: expected FORMULA:COEFF", term)
		}
		coeff, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid coefficient in term %q: %w", term, err)
		}
		out[parts[0]] = coeff
	}
	return out, nil
}

// parseElementalFormulas splits a comma-separated formula list into the
// isElemental map CalculateReaction expects. An empty string yields an
// empty map (every formula treated as non-elemental).
func parseElementalFormulas(list string) map[string]bool {
	out := make(map[string]bool)
	if list == "" {
		return out
	}
	for _, formula := range strings.Split(list, ",") {
		formula = strings.TrimSpace(formula)
		if formula != "" {
			out[formula] = true
		}
	}
	return out
}
