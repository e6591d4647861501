package thermo

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// minimalSubsetGapK is the Step 3 "minimal subset" pool search's fixed gap
// tolerance (§4.7 step 3: a covering subset whose consecutive gaps are all
// below 100 K), distinct from cfg.GapToleranceK which governs virtual-merge
// eligibility and the phase-continuity grouping in step 2.
const minimalSubsetGapK = 100.0

// OptimizeRecordChain is the Optimal Record Selector (§4.7): it groups chain
// into contiguous same-phase runs, tries each group's optimization tactics
// in priority order, splices in rows to cover any under-tolerance
// melting/boiling point, validates the resulting chain, and accepts it over
// the baseline only if it scores at least cfg.MinScoreImprovement better,
// within cfg.MaxOptimizationTimeMS wall-clock.
//
// pool is the full filtered row set a group's tactics may search beyond the
// chain's own records. tmelt/tboil are nil when the compound declares no
// such transition. isElemental relaxes the first-in-phase nonzero h298/s298
// validation rule (§9 open question). cache is the VirtualRowCache used for
// the virtual-merge tactic; it must not be nil. now is an injectable clock
// so tests can simulate budget exhaustion without a real sleep; pass nil to
// use time.Now.
func OptimizeRecordChain(chain []PhaseSegment, pool []Row, rng Range, tmelt, tboil *float64, isElemental bool, cache *VirtualRowCache, cfg CoreConfig, now func() time.Time) OptimizedChain {
	if now == nil {
		now = time.Now
	}
	clockStart := now()
	budget := time.Duration(cfg.MaxOptimizationTimeMS) * time.Millisecond

	baselineRecords := recordsOf(chain)
	baselineScore := computeOptimizationScore(baselineRecords, pool, cfg)

	if len(chain) <= 1 {
		return OptimizedChain{Segments: chain, Score: baselineScore, BaselineScore: baselineScore, Accepted: false}
	}

	groups := groupSegmentsByPhaseContinuity(chain, cfg)

	var warnings []string
	var optimizedRows []Row
	budgetExceeded := false
	seenPhase := make(map[Phase]bool, len(groups))
	for _, g := range groups {
		if !budgetExceeded && now().Sub(clockStart) > budget {
			budgetExceeded = true
			warnings = append(warnings, "optimization time budget exceeded; chain only partially optimized")
		}

		phase := g[0].Record.PhaseTag()
		firstOfPhase := !seenPhase[phase]
		seenPhase[phase] = true

		if budgetExceeded {
			optimizedRows = append(optimizedRows, recordsOf(g)...)
			continue
		}
		optimizedRows = append(optimizedRows, optimizeGroup(g, pool, firstOfPhase, isElemental, cache, cfg)...)
	}

	if !budgetExceeded {
		var spliceWarnings []string
		optimizedRows, spliceWarnings = ensureTransitionCoverage(optimizedRows, pool, rng, tmelt, tboil, cfg)
		warnings = append(warnings, spliceWarnings...)
	}

	optimizedSegments := toSegments(optimizedRows, rng)
	if err := validateOptimizedChain(optimizedSegments, isElemental, cfg); err != nil {
		warnings = append(warnings, fmt.Sprintf("optimized chain rejected, reverting to baseline: %v", err))
		return OptimizedChain{
			Segments:      chain,
			Score:         baselineScore,
			BaselineScore: baselineScore,
			Accepted:      false,
			Warnings:      warnings,
		}
	}

	optimizedScore := computeOptimizationScore(optimizedRows, pool, cfg)
	accepted := acceptOptimization(baselineScore, optimizedScore, cfg)

	finalSegments, finalScore := chain, baselineScore
	if accepted {
		finalSegments, finalScore = optimizedSegments, optimizedScore
	}

	return OptimizedChain{
		Segments:      finalSegments,
		Score:         finalScore,
		BaselineScore: baselineScore,
		Accepted:      accepted,
		Warnings:      warnings,
	}
}

// recordsOf returns the ordered active records behind a segment chain.
func recordsOf(segments []PhaseSegment) []Row {
	out := make([]Row, len(segments))
	for i, seg := range segments {
		out[i] = seg.Record
	}
	return out
}

// groupSegmentsByPhaseContinuity implements §4.7 step 2: adjacent segments
// of the same phase whose endpoints touch within cfg.GapToleranceK join the
// same group.
func groupSegmentsByPhaseContinuity(chain []PhaseSegment, cfg CoreConfig) [][]PhaseSegment {
	if len(chain) == 0 {
		return nil
	}
	groups := [][]PhaseSegment{{chain[0]}}
	for _, seg := range chain[1:] {
		last := groups[len(groups)-1]
		prev := last[len(last)-1]
		if prev.Record.PhaseTag() == seg.Record.PhaseTag() && seg.TStart-prev.TEnd <= cfg.GapToleranceK {
			groups[len(groups)-1] = append(last, seg)
		} else {
			groups = append(groups, []PhaseSegment{seg})
		}
	}
	return groups
}

// optimizeGroup implements §4.7 step 3's priority order for a single group:
// (1) a single pool row covering the whole span, (2) a virtual merge of the
// group's own rows, (3) a minimal covering pool subset with small gaps,
// (4) a group-local greedy fallback.
func optimizeGroup(group []PhaseSegment, pool []Row, firstOfPhase, isElemental bool, cache *VirtualRowCache, cfg CoreConfig) []Row {
	start, end := group[0].TStart, group[len(group)-1].TEnd
	phase := group[0].Record.PhaseTag()
	groupRows := recordsOf(group)

	if single := findSingleCoveringRow(pool, start, end, phase); single != nil {
		if !firstOfPhase || isElemental || single.IsReferenceRow() {
			return []Row{single}
		}
	}

	if len(groupRows) == 1 {
		return groupRows
	}

	sorted := sortedByTMin(groupRows)
	if CanMergeVirtual(sorted, cfg) {
		if merged, err := cache.GetOrCreate(sorted, cfg); err == nil {
			return []Row{merged}
		}
	}

	if subset := minimalCoveringSubset(pool, start, end, phase, cfg); subset != nil && len(subset) < len(groupRows) {
		return subset
	}

	if covered, issues := GreedySequenceCover(groupRows, start, end, cfg); len(covered) > 0 && len(issues) == 0 {
		return covered
	}
	return groupRows
}

// findSingleCoveringRow searches pool for the best-reliability row of phase
// that alone spans [start, end] (§4.7 step 3, first priority).
func findSingleCoveringRow(pool []Row, start, end float64, phase Phase) Row {
	var best Row
	bestScore := -1.0
	for _, r := range pool {
		if r.PhaseTag() != phase || r.TMin() > start || r.TMax() < end {
			continue
		}
		if score := reliabilityScore(r); best == nil || score > bestScore {
			best, bestScore = r, score
		}
	}
	return best
}

// minimalCoveringSubset searches pool for a same-phase covering sequence
// whose consecutive gaps are all below minimalSubsetGapK (§4.7 step 3,
// third priority), returning nil if no such covering sequence exists.
func minimalCoveringSubset(pool []Row, start, end float64, phase Phase, cfg CoreConfig) []Row {
	var candidates []Row
	for _, r := range pool {
		if r.PhaseTag() == phase && r.TMax() > start && r.TMin() < end {
			candidates = append(candidates, r)
		}
	}
	if len(candidates) == 0 {
		return nil
	}
	restricted := cfg
	restricted.GapToleranceK = minimalSubsetGapK
	seq, issues := GreedySequenceCover(candidates, start, end, restricted)
	if len(issues) > 0 || len(seq) == 0 {
		return nil
	}
	return seq
}

// ensureTransitionCoverage implements §4.7 step 4: for each known
// transition point inside rng, verify some segment boundary lands within
// cfg.TransitionToleranceK of it; if not, splice in the best-reliability
// pool row that covers it.
func ensureTransitionCoverage(rows []Row, pool []Row, rng Range, tmelt, tboil *float64, cfg CoreConfig) ([]Row, []string) {
	var warnings []string
	for _, t := range []*float64{tmelt, tboil} {
		if t == nil || *t <= rng.Lo || *t >= rng.Hi {
			continue
		}
		if transitionCovered(toSegments(rows, rng), *t, cfg.TransitionToleranceK) {
			continue
		}
		best := bestCoveringRowNear(pool, *t, cfg)
		if best == nil {
			warnings = append(warnings, fmt.Sprintf("no catalog row covers the transition at %.2f K", *t))
			continue
		}
		rows = insertSortedByTMin(rows, best)
		warnings = append(warnings, fmt.Sprintf("spliced in a covering row for the transition at %.2f K", *t))
	}
	return rows, warnings
}

func transitionCovered(segments []PhaseSegment, t, tol float64) bool {
	for _, seg := range segments {
		if math.Abs(seg.TStart-t) <= tol || math.Abs(seg.TEnd-t) <= tol {
			return true
		}
	}
	return false
}

func bestCoveringRowNear(pool []Row, t float64, cfg CoreConfig) Row {
	var best Row
	bestScore := -1.0
	for _, r := range pool {
		if r.TMin() > t+cfg.TransitionToleranceK || r.TMax() < t-cfg.TransitionToleranceK {
			continue
		}
		if score := reliabilityScore(r); best == nil || score > bestScore {
			best, bestScore = r, score
		}
	}
	return best
}

func insertSortedByTMin(rows []Row, r Row) []Row {
	out := append(append([]Row(nil), rows...), r)
	sort.SliceStable(out, func(i, j int) bool { return out[i].TMin() < out[j].TMin() })
	return out
}

// validateOptimizedChain implements §4.7 step 5: no gap wider than
// cfg.GapToleranceK, phases in non-decreasing s<=l<=g order, and (unless
// isElemental) the first segment of each phase carries nonzero h298/s298.
func validateOptimizedChain(segments []PhaseSegment, isElemental bool, cfg CoreConfig) error {
	for i := 0; i+1 < len(segments); i++ {
		if gap := segments[i+1].TStart - segments[i].TEnd; gap > cfg.GapToleranceK {
			return fmt.Errorf("gap of %.2f K between segments exceeds tolerance", gap)
		}
	}
	if !phasesNonDecreasing(segments) {
		return fmt.Errorf("phases are not in non-decreasing s<=l<=g order")
	}
	if !isElemental && !firstOfPhaseHasReferenceData(segments) {
		return fmt.Errorf("a non-elemental compound's phase lacks nonzero h298/s298 on its first row")
	}
	return nil
}

// phasesNonDecreasing checks the s<=l<=g ordering rule, skipping phases
// outside that ordered set (see phaseOrder's doc comment).
func phasesNonDecreasing(segments []PhaseSegment) bool {
	lastRank := -1
	for _, seg := range segments {
		p := seg.Record.PhaseTag()
		if _, ordered := phaseOrder[p]; !ordered {
			continue
		}
		r := p.Rank()
		if r < lastRank {
			return false
		}
		lastRank = r
	}
	return true
}

func firstOfPhaseHasReferenceData(segments []PhaseSegment) bool {
	seen := make(map[Phase]bool, len(segments))
	for _, seg := range segments {
		p := seg.Record.PhaseTag()
		if seen[p] {
			continue
		}
		seen[p] = true
		if !seg.Record.IsReferenceRow() {
			return false
		}
	}
	return true
}

// acceptOptimization applies the §4.7/§6 acceptance rule: the optimized
// chain replaces the baseline only if its relative improvement in Value
// meets cfg.MinScoreImprovement.
func acceptOptimization(baseline, optimized OptimizationScore, cfg CoreConfig) bool {
	if baseline.Value <= 0 {
		return optimized.Value > baseline.Value
	}
	improvement := (optimized.Value - baseline.Value) / baseline.Value
	return improvement >= cfg.MinScoreImprovement
}

// GroupMergeableRuns partitions an ordered record sequence into maximal
// consecutive runs that jointly satisfy CanMergeVirtual, for callers that
// want the raw virtual-merge grouping independent of the phase-continuity
// grouping OptimizeRecordChain uses for its own step 2.
func GroupMergeableRuns(sequence []Row, cfg CoreConfig) [][]Row {
	if len(sequence) == 0 {
		return nil
	}
	var groups [][]Row
	current := []Row{sequence[0]}
	for _, r := range sequence[1:] {
		trial := append(append([]Row(nil), current...), r)
		if CanMergeVirtual(trial, cfg) {
			current = trial
		} else {
			groups = append(groups, current)
			current = []Row{r}
		}
	}
	groups = append(groups, current)
	return groups
}

// computeOptimizationScore implements the §3 figure of merit:
//
//	w_r*(1/N) + w_q*((R_max-R_avg)/R_max) + w_t*T_cov
func computeOptimizationScore(sequence []Row, allRows []Row, cfg CoreConfig) OptimizationScore {
	n := len(sequence)
	if n == 0 {
		return OptimizationScore{}
	}

	totalRel := 0
	for _, r := range sequence {
		totalRel += r.ReliabilityClass()
	}
	avgRel := float64(totalRel) / float64(n)

	tmelt, hasMelt := modalTransition(allRows, func(r Row) (float64, bool) { return r.TMelt() })
	tboil, hasBoil := modalTransition(allRows, func(r Row) (float64, bool) { return r.TBoil() })

	var known, covered int
	if hasMelt {
		known++
		if sequenceHasBoundaryNear(sequence, tmelt, cfg.TransitionToleranceK) {
			covered++
		}
	}
	if hasBoil {
		known++
		if sequenceHasBoundaryNear(sequence, tboil, cfg.TransitionToleranceK) {
			covered++
		}
	}
	transitionCoverage := 1.0
	if known > 0 {
		transitionCoverage = float64(covered) / float64(known)
	}

	rMax := float64(maxReliabilityClassValue)
	value := cfg.WeightRecordCount*(1/float64(n)) +
		cfg.WeightQuality*((rMax-avgRel)/rMax) +
		cfg.WeightTransitions*transitionCoverage

	return OptimizationScore{
		RecordCount:        n,
		AvgReliability:      avgRel,
		TransitionCoverage: transitionCoverage,
		Value:              value,
	}
}

// sequenceHasBoundaryNear reports whether any record in sequence has an
// endpoint within tol of t — i.e. the transition at t still lands on a
// record boundary rather than being folded away by a merge.
func sequenceHasBoundaryNear(sequence []Row, t, tol float64) bool {
	for _, r := range sequence {
		if math.Abs(r.TMax()-t) <= tol || math.Abs(r.TMin()-t) <= tol {
			return true
		}
	}
	return false
}

// toSegments converts an ordered, possibly-overlapping record sequence (as
// produced by GreedySequenceCover or an optimized merge) into contiguous
// PhaseSegments spanning rng, clamping each record's start to the previous
// segment's end and the whole chain's ends to rng.
func toSegments(seq []Row, rng Range) []PhaseSegment {
	if len(seq) == 0 {
		return nil
	}
	sorted := sortedByTMin(seq)
	segments := make([]PhaseSegment, 0, len(sorted))
	prevEnd := rng.Lo
	for _, r := range sorted {
		start := prevEnd
		if r.TMin() > start {
			start = r.TMin()
		}
		end := r.TMax()
		hStart, sStart := snapshotAt(r, start)
		segments = append(segments, PhaseSegment{Record: r, TStart: start, TEnd: end, HStart: hStart, SStart: sStart})
		prevEnd = end
	}
	segments[len(segments)-1].TEnd = rng.Hi
	return segments
}
