package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/quasar-thermo/internal/progress"
	"github.com/papapumpkin/quasar-thermo/internal/telemetry"
	"github.com/papapumpkin/quasar-thermo/internal/thermo"
)

var calcCompoundCmd = &cobra.Command{
	Use:   "compound FORMULA",
	Short: "Calculate H, S, G and Cp for a single compound",
	Args:  cobra.ExactArgs(1),
	RunE:  runCalcCompound,
}

func init() {
	registerTargetFlags(calcCompoundCmd)
	calcCompoundCmd.Flags().Bool("explain", false, "print the filter pipeline's per-stage metrics")
	calcCompoundCmd.Flags().Bool("elemental", false, "treat the compound as elemental, relaxing the optimizer's first-in-phase nonzero h298/s298 check")
	calcCmd.AddCommand(calcCompoundCmd)
}

func runCalcCompound(cmd *cobra.Command, args []string) error {
	formula := args[0]

	rt, err := newRuntime(cmd)
	if err != nil {
		return err
	}
	defer rt.Close()

	model := progress.NewModel(formula)

	catalogRows, err := rt.fetchCatalogRows(formula)
	if err != nil {
		return err
	}

	rangeReport := thermo.ResolveCalculationRange(map[string][]thermo.CatalogRow{formula: catalogRows}, resolveRangeOverride(cmd), rt.cfg)
	tLo, tHi := rangeReport.CalculationRange.Lo, rangeReport.CalculationRange.Hi
	model = applyUpdate(model, progress.StageUpdate{Name: "resolve_range", Status: progress.StageDone, Detail: fmt.Sprintf("[%.2f, %.2f] K", tLo, tHi)})

	rows, err := rt.fetchRows(formula)
	if err != nil {
		return err
	}

	ctx := &thermo.FilterContext{Formula: formula, Window: rangeReport.CalculationRange}
	pipeline := thermo.DefaultFilterPipeline(rt.cfg)
	filterResult := thermo.RunFilterPipeline(pipeline, rows, ctx, rt.cfg)
	rt.emitter.Emit(telemetry.KindCalcStart, map[string]any{"formula": formula, "lo": tLo, "hi": tHi})
	for _, stageUpdate := range progress.StagesFromFilterResult(filterResult.Stages) {
		model = applyUpdate(model, stageUpdate)
	}
	if !filterResult.IsFound {
		return fmt.Errorf("calc compound %s: %s", formula, filterResult.FailReason)
	}

	verbose, _ := cmd.Flags().GetBool("verbose")
	explain, _ := cmd.Flags().GetBool("explain")
	if verbose || explain {
		fmt.Print(model.View())
	}
	if explain {
		fmt.Println(thermo.FormatTable(filterResult.Stages))
	}

	target, err := resolveTarget(cmd, tLo, tHi)
	if err != nil {
		return err
	}

	elemental, _ := cmd.Flags().GetBool("elemental")
	result, err := thermo.CalculateMultiPhase(filterResult.Rows, formula, target, tLo, tHi, rt.cfg, rt.vcache, elemental)
	if err != nil {
		return fmt.Errorf("calc compound %s: %w", formula, err)
	}
	rt.sink.LogInfo("compound calculated", map[string]any{"formula": formula, "h": result.H, "s": result.S, "g": result.G})

	printMultiPhaseResult(formula, result)
	return nil
}

// applyUpdate feeds a StageUpdate through the progress Model's bubbletea
// Update method without running a full tea.Program, since the CLI prints
// the model's View directly rather than driving an interactive loop.
func applyUpdate(m progress.Model, u progress.StageUpdate) progress.Model {
	next, _ := m.Update(u)
	return next.(progress.Model)
}

func printMultiPhaseResult(formula string, result thermo.MultiPhaseResult) {
	if result.Target.IsTrajectory() {
		fmt.Printf("%-12s %10s %14s %14s %14s %14s\n", "formula", "T(K)", "Cp(J/mol*K)", "H(J/mol)", "S(J/mol*K)", "G(J/mol)")
		for i, t := range result.TPath {
			fmt.Printf("%-12s %10.2f %14.4f %14.2f %14.4f %14.2f\n", formula, t, result.CpPath[i], result.HPath[i], result.SPath[i], result.GPath[i])
		}
	} else {
		fmt.Printf("%s: Cp=%.4f J/mol*K  H=%.2f J/mol  S=%.4f J/mol*K  G=%.2f J/mol\n", formula, result.Cp, result.H, result.S, result.G)
	}
	for _, tr := range result.Transitions {
		fmt.Printf("  transition %s at %.2f K: %s -> %s (dH=%.1f J/mol)\n", tr.Kind, tr.T, tr.FromPhase, tr.ToPhase, tr.DeltaHTr)
	}
	for _, w := range result.Warnings {
		fmt.Printf("  warning: %s\n", w)
	}
}
