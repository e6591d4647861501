package thermo

import (
	"testing"
	"time"
)

func TestGroupMergeableRunsGroupsIdenticalContiguousRows(t *testing.T) {
	cfg := DefaultCoreConfig()
	sequence := sio2Rows()
	groups := GroupMergeableRuns(sequence, cfg)
	if len(groups) != 1 {
		t.Fatalf("expected the two SiO2 rows to group into a single mergeable run, got %d groups", len(groups))
	}
	if len(groups[0]) != 2 {
		t.Fatalf("expected the run to contain both rows, got %d", len(groups[0]))
	}
}

func TestGroupMergeableRunsSplitsOnPhaseChange(t *testing.T) {
	cfg := DefaultCoreConfig()
	groups := GroupMergeableRuns(h2oRows(), cfg)
	if len(groups) != 3 {
		t.Fatalf("expected 3 groups (one per phase), got %d", len(groups))
	}
}

// sio2Chain builds the raw two-segment phase chain a Segment Builder would
// hand to the optimizer, one segment per source row, before any merging.
func sio2Chain() ([]PhaseSegment, []Row) {
	rows := sio2Rows()
	a, b := rows[0], rows[1]
	chain := []PhaseSegment{
		{Record: a, TStart: 298, TEnd: 500},
		{Record: b, TStart: 500, TEnd: 847},
	}
	return chain, rows
}

func TestOptimizeRecordChainMergesSio2IntoVirtualRow(t *testing.T) {
	cfg := DefaultCoreConfig()
	cfg.MinScoreImprovement = 0 // accept any non-negative improvement for this test
	cache := NewVirtualRowCache(10)
	chain, rows := sio2Chain()
	rng := Range{Lo: 298, Hi: 847}

	optimized := OptimizeRecordChain(chain, rows, rng, nil, nil, false, cache, cfg, nil)
	if len(optimized.Segments) == 0 {
		t.Fatal("expected at least one segment")
	}
	if optimized.Score.RecordCount > optimized.BaselineScore.RecordCount {
		t.Fatalf("optimized record count %d should not exceed baseline %d", optimized.Score.RecordCount, optimized.BaselineScore.RecordCount)
	}
	if !optimized.Accepted {
		t.Fatalf("expected the SiO2 merge to be accepted, got %+v", optimized)
	}
	if len(optimized.Segments) != 1 {
		t.Fatalf("expected the two SiO2 rows to collapse into a single virtual segment, got %d", len(optimized.Segments))
	}
}

func TestOptimizeRecordChainSingleRecordNeverOptimizes(t *testing.T) {
	cfg := DefaultCoreConfig()
	cache := NewVirtualRowCache(10)
	r := row(1, "X", PhaseSolid, 100, 900, -10, 10, [6]float64{}, 1)
	chain := []PhaseSegment{{Record: r, TStart: 100, TEnd: 900}}
	rng := Range{Lo: 100, Hi: 900}

	optimized := OptimizeRecordChain(chain, []Row{r}, rng, nil, nil, false, cache, cfg, nil)
	if optimized.Accepted {
		t.Fatal("a single-record baseline should never be reported as an accepted optimization")
	}
}

func TestOptimizeRecordChainRespectsInjectedClockBudget(t *testing.T) {
	cfg := DefaultCoreConfig()
	cfg.MaxOptimizationTimeMS = 1
	cache := NewVirtualRowCache(10)
	chain, rows := sio2Chain()
	rng := Range{Lo: 298, Hi: 847}

	base := time.Unix(0, 0)
	calls := 0
	clock := func() time.Time {
		calls++
		if calls == 1 {
			return base
		}
		return base.Add(time.Hour) // budget blown on the very first check
	}

	optimized := OptimizeRecordChain(chain, rows, rng, nil, nil, false, cache, cfg, clock)
	found := false
	for _, w := range optimized.Warnings {
		if w == "optimization time budget exceeded; chain only partially optimized" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a budget-exceeded warning, got %v", optimized.Warnings)
	}
}

func TestOptimizeRecordChainRejectsBadPhaseOrderAndReverts(t *testing.T) {
	cfg := DefaultCoreConfig()
	cfg.MinScoreImprovement = 0
	cache := NewVirtualRowCache(10)

	// Gas before solid: violates the s<=l<=g ordering rule. Constructed
	// directly since BuildPhaseSegments would never itself produce this
	// shape — this exercises step 5 validation and the revert-on-failure
	// path in isolation.
	gas := row(1, "X", PhaseGas, 100, 300, -10, 10, [6]float64{1, 1, 1, 1, 1, 1}, 1)
	solid := row(2, "X", PhaseSolid, 300, 500, -10, 10, [6]float64{1, 1, 1, 1, 1, 1}, 1)
	chain := []PhaseSegment{
		{Record: gas, TStart: 100, TEnd: 300},
		{Record: solid, TStart: 300, TEnd: 500},
	}
	rng := Range{Lo: 100, Hi: 500}

	optimized := OptimizeRecordChain(chain, []Row{gas, solid}, rng, nil, nil, false, cache, cfg, nil)
	if optimized.Accepted {
		t.Fatalf("expected the out-of-order chain to be rejected, got %+v", optimized)
	}
	if len(optimized.Segments) != 2 || optimized.Segments[0].Record != Row(gas) {
		t.Fatalf("expected a revert to the original baseline chain, got %+v", optimized.Segments)
	}
}

func TestOptimizeRecordChainElementalRelaxesReferenceCheck(t *testing.T) {
	cfg := DefaultCoreConfig()
	cfg.MinScoreImprovement = 0
	cache := NewVirtualRowCache(10)

	// Two contiguous, coefficient-identical solid-phase rows with zero
	// h298/s298 merge into one virtual row. That merged chain fails
	// validation for a non-elemental compound but must be accepted when
	// isElemental is true.
	a := row(1, "Fe", PhaseSolid, 298, 1000, 0, 0, [6]float64{1, 1, 1, 1, 1, 1}, 1)
	b := row(2, "Fe", PhaseSolid, 1000, 1800, 0, 0, [6]float64{1, 1, 1, 1, 1, 1}, 1)
	chain := []PhaseSegment{{Record: a, TStart: 298, TEnd: 1000}, {Record: b, TStart: 1000, TEnd: 1800}}
	rng := Range{Lo: 298, Hi: 1800}

	optimized := OptimizeRecordChain(chain, []Row{a, b}, rng, nil, nil, true, cache, cfg, nil)
	if !optimized.Accepted || len(optimized.Segments) != 1 {
		t.Fatalf("expected the elemental merge accepted as a single segment, got %+v", optimized.Segments)
	}

	strict := OptimizeRecordChain(chain, []Row{a, b}, rng, nil, nil, false, NewVirtualRowCache(10), cfg, nil)
	if strict.Accepted {
		t.Fatalf("expected the same merge rejected for a non-elemental compound, got %+v", strict.Segments)
	}
}

func TestComputeOptimizationScoreEmptySequence(t *testing.T) {
	cfg := DefaultCoreConfig()
	score := computeOptimizationScore(nil, h2oRows(), cfg)
	if score.Value != 0 || score.RecordCount != 0 {
		t.Fatalf("expected a zero-value score for an empty sequence, got %+v", score)
	}
}

func TestToSegmentsClampsOverlappingStarts(t *testing.T) {
	rows := []Row{
		row(1, "X", PhaseSolid, 100, 300, -10, 10, [6]float64{}, 1),
		row(2, "X", PhaseSolid, 250, 500, -10, 10, [6]float64{}, 1),
	}
	segments := toSegments(rows, Range{Lo: 100, Hi: 500})
	if len(segments) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(segments))
	}
	if segments[1].TStart != segments[0].TEnd {
		t.Fatalf("expected the second segment's start clamped to the first's end (%v), got %v", segments[0].TEnd, segments[1].TStart)
	}
}
