package thermo

import (
	"fmt"
	"math"
	"sort"
)

// GasConstant is R in J/(mol*K), used by the equilibrium-constant formula.
const GasConstant = 8.314462618

// CalculateMultiPhase is the Multi-Phase Calculator (§4.8): it builds phase
// segments for rows over [tLo, tHi], runs the Optimal Record Selector over
// that chain, then evaluates target against the optimized chain, producing
// a single (H,S,G,Cp) snapshot for a point target or full paths for a
// trajectory target. It never fails on missing coverage: the Segment
// Builder's own fallback semantics apply, and a *NoCoverageError is returned
// only when not even a whole-interval fallback segment could be built.
//
// cache backs the optimizer's virtual-merge tactic; isElemental relaxes the
// optimizer's first-in-phase nonzero h298/s298 validation rule (§9 open
// question) for elemental compounds.
func CalculateMultiPhase(rows []Row, formula string, target Target, tLo, tHi float64, cfg CoreConfig, cache *VirtualRowCache, isElemental bool) (MultiPhaseResult, error) {
	segments, warnings := BuildPhaseSegments(rows, tLo, tHi, cfg)
	if len(segments) == 0 {
		return MultiPhaseResult{Target: target, Warnings: warnings}, &NoCoverageError{Formula: formula, T: tLo}
	}

	tmelt, hasMelt := modalTransition(rows, func(r Row) (float64, bool) { return r.TMelt() })
	tboil, hasBoil := modalTransition(rows, func(r Row) (float64, bool) { return r.TBoil() })

	var tmeltPtr, tboilPtr *float64
	if hasMelt {
		tmeltPtr = &tmelt
	}
	if hasBoil {
		tboilPtr = &tboil
	}

	optimized := OptimizeRecordChain(segments, rows, Range{Lo: tLo, Hi: tHi}, tmeltPtr, tboilPtr, isElemental, cache, cfg, nil)
	segments = optimized.Segments
	warnings = append(warnings, optimized.Warnings...)

	transitions := DetectTransitions(segments, tmelt, hasMelt, tboil, hasBoil, cfg)

	result := MultiPhaseResult{
		Target:      target,
		Segments:    segments,
		Transitions: transitions,
		Warnings:    warnings,
	}

	if target.IsTrajectory() {
		ts := append([]float64(nil), target.Trajectory...)
		sort.Float64s(ts)
		for _, T := range ts {
			cp, h, s, g, warn := evaluateAt(segments, T)
			if warn != "" {
				result.Warnings = append(result.Warnings, warn)
			}
			result.TPath = append(result.TPath, T)
			result.CpPath = append(result.CpPath, cp)
			result.HPath = append(result.HPath, h)
			result.SPath = append(result.SPath, s)
			result.GPath = append(result.GPath, g)
		}
		n := len(ts)
		if n > 0 {
			result.Cp, result.H, result.S, result.G = result.CpPath[n-1], result.HPath[n-1], result.SPath[n-1], result.GPath[n-1]
		}
		return result, nil
	}

	cp, h, s, g, warn := evaluateAt(segments, target.T)
	if warn != "" {
		result.Warnings = append(result.Warnings, warn)
	}
	result.Cp, result.H, result.S, result.G = cp, h, s, g
	return result, nil
}

// evaluateAt locates the segment covering T and evaluates Cp/H/S/G against
// it, anchoring H and S on the segment's own HStart/SStart snapshot rather
// than re-deriving from the record's h298/s298 reference every call (§4.8
// "advance state within a segment").
func evaluateAt(segments []PhaseSegment, T float64) (cp, h, s, g float64, warning string) {
	seg, warn := findSegment(segments, T)

	cpVal, errCp := Cp(seg.Record, T)
	if errCp != nil {
		cpVal = 0
	}
	dH, errH := HInterval(seg.Record, seg.TStart, T)
	if errH != nil {
		dH = 0
	}
	dS, errS := SInterval(seg.Record, seg.TStart, T)
	if errS != nil {
		dS = 0
	}
	hVal := seg.HStart + dH
	sVal := seg.SStart + dS
	gVal := hVal - T*sVal
	return cpVal, hVal, sVal, gVal, warn
}

// findSegment returns the segment whose [TStart, TEnd] contains T, clamping
// to the nearest end segment (with a warning) when T falls outside the
// built range entirely.
func findSegment(segments []PhaseSegment, T float64) (PhaseSegment, string) {
	for _, seg := range segments {
		if T >= seg.TStart && T <= seg.TEnd {
			return seg, ""
		}
	}
	first, last := segments[0], segments[len(segments)-1]
	if T < first.TStart {
		return first, fmt.Sprintf("requested T=%.2f K below the built segment range; clamped to %.2f K", T, first.TStart)
	}
	return last, fmt.Sprintf("requested T=%.2f K above the built segment range; clamped to %.2f K", T, last.TEnd)
}

// CalculateReaction implements the reaction reduction from §3/§4.8:
//
//	DeltaX(T) = sum_i nu_i * X_i(T)
//
// stoichiometry maps each compound formula to its signed coefficient
// (reactants negative, products positive). computeEquilibrium additionally
// populates EquilibriumK = exp(-DeltaG(T)*1000/(R*T)) at the target's final
// temperature. cache is shared across every per-compound CalculateMultiPhase
// call; isElemental names which formulas get the relaxed first-in-phase
// nonzero h298/s298 rule (§9 open question) — a formula absent from the map
// is treated as non-elemental.
func CalculateReaction(rowsByFormula map[string][]Row, stoichiometry map[string]float64, calcRange Range, target Target, cfg CoreConfig, computeEquilibrium bool, cache *VirtualRowCache, isElemental map[string]bool) ReactionResult {
	result := ReactionResult{
		Range:        calcRange,
		PerCompound:  make(map[string]MultiPhaseResult, len(stoichiometry)),
		Stoichiometry: stoichiometry,
	}

	formulas := make([]string, 0, len(stoichiometry))
	for formula := range stoichiometry {
		formulas = append(formulas, formula)
	}
	sort.Strings(formulas)

	for _, formula := range formulas {
		coeff := stoichiometry[formula]
		rows := rowsByFormula[formula]
		mpr, err := CalculateMultiPhase(rows, formula, target, calcRange.Lo, calcRange.Hi, cfg, cache, isElemental[formula])
		if err != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("compound %s: %v", formula, err))
			continue
		}
		result.PerCompound[formula] = mpr
		result.DeltaH += coeff * mpr.H
		result.DeltaS += coeff * mpr.S
		result.DeltaG += coeff * mpr.G
		result.DeltaCp += coeff * mpr.Cp
	}

	if computeEquilibrium {
		T := target.T
		if target.IsTrajectory() && len(target.Trajectory) > 0 {
			T = target.Trajectory[len(target.Trajectory)-1]
		}
		if T > 0 {
			result.EquilibriumK = math.Exp(-result.DeltaG * 1000 / (GasConstant * T))
		}
	}

	return result
}
