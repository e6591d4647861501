package thermo

import (
	"math"
	"sort"
)

// BuildPhaseSegments splits the calculation interval [tLo, tHi] into phase
// segments glued at melting/boiling points and assigns an active record to
// each (§4.6). It returns no error: a segment with no compatible record is
// dropped with a warning, a single whole-interval segment is used when no
// segment survives, and an empty row list yields no segments and a
// warning (§4.6/§7 NoCoverage).
func BuildPhaseSegments(rows []Row, tLo, tHi float64, cfg CoreConfig) ([]PhaseSegment, []string) {
	var warnings []string
	if len(rows) == 0 {
		warnings = append(warnings, "no rows supplied to segment builder; cannot build any segment")
		return nil, warnings
	}

	tmelt, hasMelt := modalTransition(rows, func(r Row) (float64, bool) { return r.TMelt() })
	tboil, hasBoil := modalTransition(rows, func(r Row) (float64, bool) { return r.TBoil() })
	if hasMelt && hasBoil && tmelt >= tboil {
		mid := (tmelt + tboil) / 2
		tmelt, tboil = mid-0.5, mid+0.5
	}

	boundaries := segmentBoundaries(tLo, tHi, tmelt, hasMelt, tboil, hasBoil)

	segments := make([]PhaseSegment, 0, len(boundaries)-1)
	for i := 0; i+1 < len(boundaries); i++ {
		start, end := boundaries[i], boundaries[i+1]
		if end <= start {
			continue
		}
		expectedPhase := segmentPhase(start, end, tmelt, hasMelt, tboil, hasBoil)

		active, selWarnings := selectSegmentRecord(rows, start, end, expectedPhase, cfg)
		warnings = append(warnings, selWarnings...)
		if active == nil {
			warnings = append(warnings, "no compatible record for segment; segment dropped")
			continue
		}

		hStart, sStart := snapshotAt(active, start)
		isBoundary := (hasMelt && math.Abs(end-tmelt) <= cfg.TransitionToleranceK) ||
			(hasBoil && math.Abs(end-tboil) <= cfg.TransitionToleranceK)

		segments = append(segments, PhaseSegment{
			Record:               active,
			TStart:               start,
			TEnd:                 end,
			HStart:               hStart,
			SStart:               sStart,
			IsTransitionBoundary: isBoundary,
		})
	}

	if len(segments) == 0 {
		active, selWarnings := selectSegmentRecord(rows, tLo, tHi, PhaseUnknown, cfg)
		warnings = append(warnings, selWarnings...)
		if active == nil {
			warnings = append(warnings, "no compatible record for the full calculation range")
			return nil, warnings
		}
		hStart, sStart := snapshotAt(active, tLo)
		segments = append(segments, PhaseSegment{Record: active, TStart: tLo, TEnd: tHi, HStart: hStart, SStart: sStart})
	}

	segments, contWarnings := enforceContinuity(segments, cfg)
	warnings = append(warnings, contWarnings...)

	return segments, warnings
}

// modalTransition extracts the modal (most frequent) declared value of a
// transition point (tmelt or tboil) across rows, per §4.6 step 1. Ties
// resolve to the smallest value for determinism.
func modalTransition(rows []Row, get func(Row) (float64, bool)) (float64, bool) {
	counts := make(map[float64]int)
	var order []float64
	for _, r := range rows {
		v, ok := get(r)
		if !ok {
			continue
		}
		if _, seen := counts[v]; !seen {
			order = append(order, v)
		}
		counts[v]++
	}
	if len(order) == 0 {
		return 0, false
	}
	sort.Float64s(order)
	best := order[0]
	bestCount := counts[best]
	for _, v := range order[1:] {
		if counts[v] > bestCount {
			best, bestCount = v, counts[v]
		}
	}
	return best, true
}

// segmentBoundaries returns the sorted list of breakpoints (including tLo
// and tHi) that split [tLo, tHi] at whichever of tmelt/tboil fall strictly
// inside it (§4.6 step 2).
func segmentBoundaries(tLo, tHi, tmelt float64, hasMelt bool, tboil float64, hasBoil bool) []float64 {
	boundaries := []float64{tLo}
	if hasMelt && tLo < tmelt && tmelt < tHi {
		boundaries = append(boundaries, tmelt)
	}
	if hasBoil && tLo < tboil && tboil < tHi {
		boundaries = append(boundaries, tboil)
	}
	boundaries = append(boundaries, tHi)
	sort.Float64s(boundaries)
	return boundaries
}

// segmentPhase derives the expected phase label for the segment [start,end]
// from the known transition points: before tmelt -> solid, between tmelt
// and tboil -> liquid, at/after tboil -> gas. Whichever transition is
// unknown is treated as not constraining that boundary.
func segmentPhase(start, end, tmelt float64, hasMelt bool, tboil float64, hasBoil bool) Phase {
	mid := (start + end) / 2
	if hasMelt && mid < tmelt {
		return PhaseSolid
	}
	if hasBoil && mid >= tboil {
		return PhaseGas
	}
	if hasMelt || hasBoil {
		return PhaseLiquid
	}
	return PhaseUnknown
}

// selectSegmentRecord picks the active record for a segment, applying a
// strong bonus for rows with nonzero h298/s298 whose segment starts near
// 298.15 K (§4.6 step 3), layered on top of the Record Selector's ordinary
// scoring.
func selectSegmentRecord(rows []Row, start, end float64, expectedPhase Phase, cfg CoreConfig) (Row, []string) {
	mid := (start + end) / 2
	base := SelectRecord(rows, mid, expectedPhase, cfg)
	if base.Selected == nil {
		return nil, base.Warnings
	}

	const referenceBonus = 25.0
	const referenceProximityK = 10.0

	candidates := append([]Row{base.Selected}, base.Alternatives...)

	bestRow := base.Selected
	bestTotal := 1.0 // base selection keeps a one-point edge on ties
	if base.Selected.IsReferenceRow() && math.Abs(start-StandardTemperature) <= referenceProximityK {
		bestTotal += referenceBonus
	}
	for i, r := range candidates {
		if i == 0 {
			continue
		}
		total := 0.0
		if r.IsReferenceRow() && math.Abs(start-StandardTemperature) <= referenceProximityK {
			total += referenceBonus
		}
		if total > bestTotal {
			bestRow, bestTotal = r, total
		}
	}
	return bestRow, base.Warnings
}

// snapshotAt returns (H, S) at T for row, or (0,0) with the error
// swallowed into a zero snapshot — callers only use this for segments
// already known to be valid for the row's interval modulo tolerance.
func snapshotAt(row Row, T float64) (float64, float64) {
	h, errH := H(row, T)
	s, errS := S(row, T)
	if errH != nil || errS != nil {
		return 0, 0
	}
	return h, s
}

// enforceContinuity runs the §4.6 step 4 continuity pass: sort by TStart,
// snap any overlap wider than cfg.OverlapThreshold to the mean of the two
// endpoints, and record a
// warning for any gap wider than cfg.GapThreshold.
func enforceContinuity(segments []PhaseSegment, cfg CoreConfig) ([]PhaseSegment, []string) {
	sort.SliceStable(segments, func(i, j int) bool { return segments[i].TStart < segments[j].TStart })

	var warnings []string
	for i := 0; i+1 < len(segments); i++ {
		cur, next := &segments[i], &segments[i+1]
		overlap := cur.TEnd - next.TStart
		if overlap > cfg.OverlapThreshold {
			mean := (cur.TEnd + next.TStart) / 2
			cur.TEnd = mean
			next.TStart = mean
		} else if next.TStart-cur.TEnd > cfg.GapThreshold {
			warnings = append(warnings, "gap between segments exceeds tolerance")
		}
	}
	return segments, warnings
}

// DetectTransitions scans adjacent segment pairs for boundaries within
// delta_tr of a declared melting/boiling point and emits a PhaseTransition
// for each (§4.6 step 5). Default enthalpy priors are placeholders (§9
// Open Question): callers may override DefaultMeltEnthalpy,
// DefaultBoilEnthalpy, DefaultUnknownTransitionEnthalpy before calling.
var (
	DefaultMeltEnthalpy              = 25000.0 // J/mol
	DefaultBoilEnthalpy              = 80000.0 // J/mol
	DefaultUnknownTransitionEnthalpy = 10000.0 // J/mol
)

func DetectTransitions(segments []PhaseSegment, tmelt float64, hasMelt bool, tboil float64, hasBoil bool, cfg CoreConfig) []PhaseTransition {
	var transitions []PhaseTransition
	for i := 0; i+1 < len(segments); i++ {
		cur, next := segments[i], segments[i+1]
		boundary := cur.TEnd
		fromPhase := EffectivePhase(cur.Record, cur.TEnd-1e-6)
		toPhase := EffectivePhase(next.Record, next.TStart+1e-6)

		kind := TransitionUnknown
		deltaH := DefaultUnknownTransitionEnthalpy
		switch {
		case hasMelt && math.Abs(boundary-tmelt) <= cfg.PhaseTransitionProximityK:
			kind = TransitionMelting
			deltaH = DefaultMeltEnthalpy
		case hasBoil && math.Abs(boundary-tboil) <= cfg.PhaseTransitionProximityK:
			kind = TransitionBoiling
			deltaH = DefaultBoilEnthalpy
		case fromPhase == toPhase:
			continue
		}

		transitions = append(transitions, PhaseTransition{
			T:         boundary,
			FromPhase: fromPhase,
			ToPhase:   toPhase,
			Kind:      kind,
			DeltaHTr:  deltaH,
			DeltaSTr:  deltaH / boundary,
		})
	}
	return transitions
}
