package thermo

import (
	"errors"
	"math"
	"testing"
)

func TestCalculateMultiPhaseSinglePointAtReferenceMatchesH298(t *testing.T) {
	cfg := DefaultCoreConfig()
	rows := h2oRows()
	result, err := CalculateMultiPhase(rows, "H2O", Target{T: StandardTemperature}, 250, 400, cfg, NewVirtualRowCache(10), false)
	if err != nil {
		t.Fatalf("CalculateMultiPhase: %v", err)
	}
	liquid := rows[1]
	if math.Abs(result.H-liquid.H298()) > 1e-6 {
		t.Errorf("H at 298.15K = %v, want h298 %v", result.H, liquid.H298())
	}
	if math.Abs(result.S-liquid.S298()) > 1e-6 {
		t.Errorf("S at 298.15K = %v, want s298 %v", result.S, liquid.S298())
	}
}

func TestCalculateMultiPhaseTrajectoryCrossesBoilingTransition(t *testing.T) {
	cfg := DefaultCoreConfig()
	rows := h2oRows()
	target := Target{Trajectory: []float64{320, 360, 380, 420}}
	result, err := CalculateMultiPhase(rows, "H2O", target, 300, 450, cfg, NewVirtualRowCache(10), false)
	if err != nil {
		t.Fatalf("CalculateMultiPhase: %v", err)
	}
	if len(result.TPath) != 4 {
		t.Fatalf("expected 4 trajectory points, got %d", len(result.TPath))
	}
	foundBoiling := false
	for _, tr := range result.Transitions {
		if tr.Kind == TransitionBoiling {
			foundBoiling = true
		}
	}
	if !foundBoiling {
		t.Fatalf("expected a boiling transition to be detected across [300,450], got %+v", result.Transitions)
	}
}

func TestCalculateMultiPhaseNoCoverageReturnsError(t *testing.T) {
	cfg := DefaultCoreConfig()
	result, err := CalculateMultiPhase(nil, "Ghostium", Target{T: 500}, 400, 600, cfg, NewVirtualRowCache(10), false)
	if err == nil {
		t.Fatal("expected an error for zero rows")
	}
	var noCoverage *NoCoverageError
	if !errors.As(err, &noCoverage) {
		t.Fatalf("expected *NoCoverageError, got %T: %v", err, err)
	}
	if result.Target.T != 500 {
		t.Errorf("expected the target to be preserved on the error result, got %+v", result.Target)
	}
}

func TestCalculateMultiPhaseCpIsPositiveAcrossRange(t *testing.T) {
	cfg := DefaultCoreConfig()
	rows := h2oRows()
	for _, T := range []float64{260, 300, 360, 420} {
		result, err := CalculateMultiPhase(rows, "H2O", Target{T: T}, 250, 450, cfg, NewVirtualRowCache(10), false)
		if err != nil {
			t.Fatalf("CalculateMultiPhase(%v): %v", T, err)
		}
		if result.Cp <= 0 {
			t.Errorf("expected a positive heat capacity at %vK, got %v", T, result.Cp)
		}
	}
}

func TestCalculateReactionSumsSignedStoichiometry(t *testing.T) {
	cfg := DefaultCoreConfig()
	rowsByFormula := map[string][]Row{
		"FeO": rowsToGeneric(feoRows()),
		"O2":  rowsToGeneric(o2Rows()),
	}
	stoich := map[string]float64{"FeO": -2, "O2": -1}
	result := CalculateReaction(rowsByFormula, stoich, Range{Lo: 298, Hi: 1650}, Target{T: 400}, cfg, false, NewVirtualRowCache(10), nil)

	feo := result.PerCompound["FeO"]
	o2 := result.PerCompound["O2"]
	wantH := -2*feo.H + -1*o2.H
	if math.Abs(result.DeltaH-wantH) > 1e-6 {
		t.Errorf("DeltaH = %v, want %v", result.DeltaH, wantH)
	}
}

func TestCalculateReactionComputesEquilibriumConstant(t *testing.T) {
	cfg := DefaultCoreConfig()
	rowsByFormula := map[string][]Row{
		"FeO": rowsToGeneric(feoRows()),
		"O2":  rowsToGeneric(o2Rows()),
	}
	stoich := map[string]float64{"FeO": -2, "O2": -1}
	result := CalculateReaction(rowsByFormula, stoich, Range{Lo: 298, Hi: 1650}, Target{T: 400}, cfg, true, NewVirtualRowCache(10), nil)

	if result.EquilibriumK <= 0 {
		t.Fatalf("expected a positive equilibrium constant, got %v", result.EquilibriumK)
	}
	want := math.Exp(-result.DeltaG * 1000 / (GasConstant * 400))
	if math.Abs(result.EquilibriumK-want) > 1e-9 {
		t.Errorf("EquilibriumK = %v, want %v", result.EquilibriumK, want)
	}
}

func rowsToGeneric(rows []CatalogRow) []Row {
	out := make([]Row, len(rows))
	for i, r := range rows {
		out[i] = r
	}
	return out
}
