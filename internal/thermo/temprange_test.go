package thermo

import "testing"

func TestResolveCalculationRangeIntersectsAndKeeps298(t *testing.T) {
	cfg := DefaultCoreConfig()
	rowsByFormula := map[string][]CatalogRow{
		"FeO": feoRows(),
		"O2":  o2Rows(),
	}
	report := ResolveCalculationRange(rowsByFormula, nil, cfg)

	if report.CalculationRange.Lo != 298 {
		t.Errorf("expected calc range low bound 298 (FeO's floor), got %v", report.CalculationRange.Lo)
	}
	if report.CalculationRange.Hi != 1650 {
		t.Errorf("expected calc range high bound 1650 (FeO's ceiling), got %v", report.CalculationRange.Hi)
	}
	if !report.Includes298K {
		t.Error("expected the range to include 298.15K")
	}
	if report.Coverage["FeO"] != CoverageCovered || report.Coverage["O2"] != CoverageCovered {
		t.Errorf("expected both compounds covered, got %v", report.Coverage)
	}
}

func TestResolveCalculationRangeNoDataDegradesGracefully(t *testing.T) {
	cfg := DefaultCoreConfig()
	report := ResolveCalculationRange(map[string][]CatalogRow{"Unobtainium": nil}, nil, cfg)
	if report.CalculationRange.Lo != StandardTemperature || report.CalculationRange.Hi != StandardTemperature {
		t.Fatalf("expected degraded (298.15,298.15) range, got %v", report.CalculationRange)
	}
	if report.Coverage["Unobtainium"] != CoverageNoData {
		t.Errorf("expected no_data coverage, got %q", report.Coverage["Unobtainium"])
	}
}

func TestResolveCalculationRangeNoIntersectionFallsBackTo298(t *testing.T) {
	cfg := DefaultCoreConfig()
	rowsByFormula := map[string][]CatalogRow{
		"Low":  {row(1, "Low", PhaseSolid, 100, 200, -10, 10, [6]float64{}, 1)},
		"High": {row(2, "High", PhaseGas, 2000, 3000, -5, 20, [6]float64{}, 1)},
	}
	report := ResolveCalculationRange(rowsByFormula, nil, cfg)
	if report.CalculationRange.Lo != StandardTemperature || report.CalculationRange.Hi != StandardTemperature {
		t.Fatalf("expected fallback to (298.15,298.15), got %v", report.CalculationRange)
	}
	if len(report.Recommendations) == 0 {
		t.Fatal("expected a recommendation noting the lack of intersection")
	}
}

func TestResolveCalculationRangeEmptyMap(t *testing.T) {
	cfg := DefaultCoreConfig()
	report := ResolveCalculationRange(map[string][]CatalogRow{}, nil, cfg)
	if report.CalculationRange.Lo != StandardTemperature || report.CalculationRange.Hi != StandardTemperature {
		t.Fatalf("expected (298.15,298.15) for an empty compound map, got %v", report.CalculationRange)
	}
}
