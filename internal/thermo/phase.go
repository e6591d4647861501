package thermo

import (
	"math"
	"regexp"
	"strings"
)

// canonicalPhases is the direct (already-normalized) phase tag set (§3).
var canonicalPhases = map[Phase]bool{
	PhaseSolid: true, PhaseLiquid: true, PhaseGas: true, PhaseAqueous: true,
	PhaseCrystal: true, PhaseAmorphous: true, PhaseA: true, PhaseAO: true, PhaseAI: true,
}

// phaseSynonyms maps full-name synonyms (case-insensitive) onto the
// canonical tag set (§3).
var phaseSynonyms = map[string]Phase{
	"solid":       PhaseSolid,
	"liquid":      PhaseLiquid,
	"gas":         PhaseGas,
	"vapor":       PhaseGas,
	"vapour":      PhaseGas,
	"aqueous":     PhaseAqueous,
	"crystalline": PhaseCrystal,
	"amorphous":   PhaseAmorphous,
}

// formulaPhaseSuffix extracts a trailing parenthesized phase tag, e.g.
// "H2O(g)" -> "g". The regex is anchored to the end of the string, as the
// spec's \([a-z]+\)$ demands.
var formulaPhaseSuffix = regexp.MustCompile(`\(([a-z]+)\)$`)

// NormalizePhase maps a raw phase label (canonical tag, synonym, or mixed
// case of either) onto the canonical Phase set. Unrecognized input returns
// PhaseUnknown.
func NormalizePhase(raw string) Phase {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return PhaseUnknown
	}
	direct := Phase(strings.ToLower(trimmed))
	if canonicalPhases[direct] {
		return direct
	}
	if syn, ok := phaseSynonyms[strings.ToLower(trimmed)]; ok {
		return syn
	}
	return PhaseUnknown
}

// PhaseFromFormula extracts the phase suffix from a formula such as
// "H2O(g)", returning ("g", true), or (PhaseUnknown, false) if the formula
// carries no parenthesized suffix.
func PhaseFromFormula(formula string) (Phase, bool) {
	m := formulaPhaseSuffix.FindStringSubmatch(formula)
	if m == nil {
		return PhaseUnknown, false
	}
	return NormalizePhase(m[1]), true
}

// BaseFormula strips a trailing phase suffix, if present: "H2O(g)" -> "H2O".
func BaseFormula(formula string) string {
	return formulaPhaseSuffix.ReplaceAllString(formula, "")
}

// EffectivePhase returns row's phase at temperature T using its declared
// tmelt/tboil (§4.3):
//
//	T < tmelt           -> solid
//	tmelt <= T < tboil  -> liquid
//	otherwise           -> gas
//
// When tmelt/tboil are both absent, it falls back to the coarse heuristic
// in stablePhaseFallback (§9 "stable_phases").
func EffectivePhase(row Row, T float64) Phase {
	tmelt, hasMelt := row.TMelt()
	tboil, hasBoil := row.TBoil()

	switch {
	case hasMelt && hasBoil:
		if T < tmelt {
			return PhaseSolid
		}
		if T < tboil {
			return PhaseLiquid
		}
		return PhaseGas
	case hasMelt:
		if T < tmelt {
			return PhaseSolid
		}
		return PhaseLiquid
	case hasBoil:
		if T < tboil {
			return PhaseLiquid
		}
		return PhaseGas
	default:
		return stablePhaseFallback(T)
	}
}

// stablePhaseFallback is the coarse temperature heuristic used when a row
// declares neither tmelt nor tboil: rough, compound-agnostic bands that
// bias toward "liquid near room temperature, gas well above it, solid well
// below it" — good enough to keep the pipeline moving, never authoritative.
func stablePhaseFallback(T float64) Phase {
	switch {
	case T < 273.15:
		return PhaseSolid
	case T <= 373.15:
		return PhaseLiquid
	default:
		return PhaseGas
	}
}

// IsTransitionPoint reports whether T lies within tolerance (delta_tr) of
// one of row's declared melting/boiling points (§4.3).
func IsTransitionPoint(row Row, T, tolerance float64) (Phase, Phase, TransitionKind, bool) {
	if tmelt, ok := row.TMelt(); ok && math.Abs(T-tmelt) <= tolerance {
		return PhaseSolid, PhaseLiquid, TransitionMelting, true
	}
	if tboil, ok := row.TBoil(); ok && math.Abs(T-tboil) <= tolerance {
		return PhaseLiquid, PhaseGas, TransitionBoiling, true
	}
	return PhaseUnknown, PhaseUnknown, TransitionUnknown, false
}

// ValidatePhaseConsistency checks the consistency rules from §4.3:
// formula-phase vs row-phase, tmelt < tboil, tmin <= tmelt, tmax >= tboil.
// It returns a (possibly empty) list of human-readable problems; it never
// errors, matching the Phase Resolver's role as an advisory validator.
func ValidatePhaseConsistency(row Row) []string {
	var problems []string

	if fp, ok := PhaseFromFormula(row.Formula()); ok && row.PhaseTag() != PhaseUnknown && fp != row.PhaseTag() {
		problems = append(problems, "formula phase suffix disagrees with declared row phase")
	}

	tmelt, hasMelt := row.TMelt()
	tboil, hasBoil := row.TBoil()
	if hasMelt && hasBoil && tmelt >= tboil {
		problems = append(problems, "tmelt is not strictly less than tboil")
	}
	if hasMelt && row.TMin() > tmelt {
		problems = append(problems, "tmin is above the declared melting point")
	}
	if hasBoil && row.TMax() < tboil {
		problems = append(problems, "tmax is below the declared boiling point")
	}
	return problems
}
