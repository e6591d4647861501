package thermo

import (
	"errors"
	"testing"
)

func TestCatalogRowValidateRejectsInvertedRange(t *testing.T) {
	r := row(1, "X", PhaseSolid, 500, 400, 0, 0, [6]float64{}, 1)
	if err := r.Validate(); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for tmin>tmax, got %v", err)
	}
}

func TestCatalogRowValidateRejectsTmeltAfterTboil(t *testing.T) {
	melt := floatPtr(500)
	boil := floatPtr(400)
	r := withTransitions(row(1, "X", PhaseSolid, 300, 600, 0, 0, [6]float64{}, 1), melt, boil)
	if err := r.Validate(); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for tmelt>=tboil, got %v", err)
	}
}

func TestCatalogRowValidateRejectsOutOfBoundsReliability(t *testing.T) {
	r := row(1, "X", PhaseSolid, 300, 600, 0, 0, [6]float64{}, 9)
	if err := r.Validate(); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for out-of-range reliability_class, got %v", err)
	}
}

func TestCatalogRowValidateAcceptsWellFormedRow(t *testing.T) {
	for _, r := range h2oRows() {
		if err := r.(CatalogRow).Validate(); err != nil {
			t.Errorf("unexpected validation error for %v: %v", r.Formula(), err)
		}
	}
}

func TestCatalogRowIsReferenceRow(t *testing.T) {
	withRef := row(1, "X", PhaseSolid, 300, 600, -10, 5, [6]float64{}, 1)
	withoutRef := row(2, "X", PhaseSolid, 300, 600, 0, 0, [6]float64{}, 1)
	if !withRef.IsReferenceRow() {
		t.Error("expected a row with nonzero h298/s298 to be a reference row")
	}
	if withoutRef.IsReferenceRow() {
		t.Error("expected a row with zero h298 and s298 to not be a reference row")
	}
}

func TestPhaseRank(t *testing.T) {
	if PhaseSolid.Rank() >= PhaseLiquid.Rank() {
		t.Error("expected solid to rank below liquid")
	}
	if PhaseLiquid.Rank() >= PhaseGas.Rank() {
		t.Error("expected liquid to rank below gas")
	}
	if PhaseAqueous.Rank() != 0 {
		t.Error("expected an unordered phase to rank as 0")
	}
}

func TestTargetIsTrajectory(t *testing.T) {
	if (Target{T: 300}).IsTrajectory() {
		t.Error("a single-temperature target should not report as a trajectory")
	}
	if !(Target{Trajectory: []float64{300, 400}}).IsTrajectory() {
		t.Error("a multi-temperature target should report as a trajectory")
	}
}
