package thermo

import (
	"fmt"
	"math"
	"sort"
)

const maxReliabilityClassValue = 5

// SelectionResult is the Record Selector's output (§4.5).
type SelectionResult struct {
	Selected     Row
	Alternatives []Row
	Reason       string
	Warnings     []string
}

// SelectRecord picks a single best row for temperature T from rows,
// optionally restricted to a preferred phase (§4.5).
func SelectRecord(rows []Row, T float64, preferredPhase Phase, cfg CoreConfig) SelectionResult {
	if len(rows) == 0 {
		return SelectionResult{Warnings: []string{"no candidate rows supplied"}}
	}

	covering := make([]Row, 0, len(rows))
	for _, r := range rows {
		if r.TMin() <= T && T <= r.TMax() {
			covering = append(covering, r)
		}
	}

	noCoverage := len(covering) == 0
	candidates := covering
	if noCoverage {
		candidates = append([]Row(nil), rows...)
	}

	if preferredPhase != PhaseUnknown {
		var withPhase []Row
		for _, r := range candidates {
			if r.PhaseTag() == preferredPhase {
				withPhase = append(withPhase, r)
			}
		}
		if len(withPhase) > 0 {
			candidates = withPhase
		}
	}

	type scored struct {
		row    Row
		total  float64
		dist   float64
		detail string
	}
	ranked := make([]scored, len(candidates))
	for i, r := range candidates {
		cq, cqNote := coverageQuality(r, T, noCoverage)
		rel := reliabilityComponent(r)
		comp := completenessComponent(r)
		wid := widthComponent(r)
		ranked[i] = scored{
			row:    r,
			total:  cq + rel + comp + wid,
			dist:   distanceToRow(r, T),
			detail: fmt.Sprintf("coverage=%s(%.1f) reliability=%.1f completeness=%.1f width=%.1f", cqNote, cq, rel, comp, wid),
		}
	}

	if noCoverage {
		sort.SliceStable(ranked, func(i, j int) bool {
			if ranked[i].dist != ranked[j].dist {
				return ranked[i].dist < ranked[j].dist
			}
			return ranked[i].total > ranked[j].total
		})
	} else {
		sort.SliceStable(ranked, func(i, j int) bool {
			if ranked[i].total != ranked[j].total {
				return ranked[i].total > ranked[j].total
			}
			return ranked[i].dist < ranked[j].dist
		})
	}

	best := ranked[0]
	result := SelectionResult{
		Selected: best.row,
		Reason:   best.detail,
	}

	for _, s := range ranked[1:] {
		if s.total/100 > 0.5 {
			result.Alternatives = append(result.Alternatives, s.row)
		}
	}

	if noCoverage {
		result.Warnings = append(result.Warnings, "no coverage: no row spans the requested temperature, selection uses nearest endpoint")
	}
	if best.row.H298() == 0 && best.row.S298() == 0 {
		result.Warnings = append(result.Warnings, "H298/S298 zero on selected row")
	}
	for _, alt := range result.Alternatives {
		if alt.ReliabilityClass() < best.row.ReliabilityClass() {
			result.Warnings = append(result.Warnings, "better reliability alternative exists")
			break
		}
	}

	return result
}

// coverageQuality scores up to 40, best when T sits well inside the row's
// interval; it returns 0 when the row does not actually cover T (the
// no-coverage fallback path), and a short note for the reason string.
func coverageQuality(r Row, T float64, noCoverage bool) (float64, string) {
	if noCoverage || T < r.TMin() || T > r.TMax() {
		return 0, "none"
	}
	halfWidth := (r.TMax() - r.TMin()) / 2
	if halfWidth <= 0 {
		return 40, "exact"
	}
	center := (r.TMin() + r.TMax()) / 2
	distFromCenter := math.Abs(T - center)
	quality := 40 * (1 - distFromCenter/halfWidth)
	if quality < 0 {
		quality = 0
	}
	return quality, "inside"
}

// reliabilityComponent scores up to 30: (Rmax+1-class)/(Rmax+1) * 30.
func reliabilityComponent(r Row) float64 {
	return float64(maxReliabilityClassValue+1-r.ReliabilityClass()) / float64(maxReliabilityClassValue+1) * 30
}

// completenessComponent scores up to 20: +10 each for nonzero h298, s298.
func completenessComponent(r Row) float64 {
	score := 0.0
	if r.H298() != 0 {
		score += 10
	}
	if r.S298() != 0 {
		score += 10
	}
	return score
}

// widthComponent scores up to 10: min((tmax-tmin)/1000, 10).
func widthComponent(r Row) float64 {
	w := (r.TMax() - r.TMin()) / 1000
	if w > 10 {
		w = 10
	}
	if w < 0 {
		w = 0
	}
	return w
}

// distanceToRow is 0 when r covers T, else the distance from T to the
// nearest endpoint of r's interval.
func distanceToRow(r Row, T float64) float64 {
	if T < r.TMin() {
		return r.TMin() - T
	}
	if T > r.TMax() {
		return T - r.TMax()
	}
	return 0
}

// TransitionPointKind classifies a gap between two consecutive rows.
type TransitionPointKind string

const (
	TPPhaseChange     TransitionPointKind = "phase_change"
	TPReliability     TransitionPointKind = "reliability"
	TPTemperatureLimit TransitionPointKind = "temperature_limit"
)

// TransitionPoint is produced by AnalyzeTransitionPoints between two
// consecutive rows whose endpoints touch within a gap tolerance (§4.5).
type TransitionPoint struct {
	T    float64
	Kind TransitionPointKind
	Row1 Row
	Row2 Row
}

// AnalyzeTransitionPoints walks rows in ascending TMin order and emits a
// TransitionPoint for each pair of consecutive rows whose endpoints touch
// within gapTolerance.
func AnalyzeTransitionPoints(rows []Row, gapTolerance float64) []TransitionPoint {
	sorted := sortedByTMin(rows)

	var points []TransitionPoint
	for i := 0; i+1 < len(sorted); i++ {
		cur, next := sorted[i], sorted[i+1]
		gap := next.TMin() - cur.TMax()
		if gap > gapTolerance {
			continue
		}
		mid := (cur.TMax() + next.TMin()) / 2
		kind := TPTemperatureLimit
		switch {
		case cur.PhaseTag() != PhaseUnknown && next.PhaseTag() != PhaseUnknown && cur.PhaseTag() != next.PhaseTag():
			kind = TPPhaseChange
		case absInt(cur.ReliabilityClass()-next.ReliabilityClass()) > 1:
			kind = TPReliability
		}
		points = append(points, TransitionPoint{T: mid, Kind: kind, Row1: cur, Row2: next})
	}
	return points
}

func sortedByTMin(rows []Row) []Row {
	out := append([]Row(nil), rows...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].TMin() != out[j].TMin() {
			return out[i].TMin() < out[j].TMin()
		}
		if out[i].TMax() != out[j].TMax() {
			return out[i].TMax() < out[j].TMax()
		}
		if out[i].ReliabilityClass() != out[j].ReliabilityClass() {
			return out[i].ReliabilityClass() < out[j].ReliabilityClass()
		}
		return out[i].ID() < out[j].ID()
	})
	return out
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// CoverageIssue records a gap the greedy sequence optimizer could not
// close within tolerance.
type CoverageIssue struct {
	Gap Range
}

// GreedySequenceCover greedily covers [tLo, tHi] by repeatedly picking the
// highest-scoring row that covers the current frontier and maximally
// extends it (§4.5 "sequence optimization"). Any remaining gap wider than
// cfg.GapToleranceK is reported as a CoverageIssue rather than failing.
func GreedySequenceCover(rows []Row, tLo, tHi float64, cfg CoreConfig) ([]Row, []CoverageIssue) {
	frontier := tLo
	var sequence []Row
	var issues []CoverageIssue
	remaining := append([]Row(nil), rows...)

	for frontier < tHi {
		var best Row
		bestExtent := frontier
		bestScore := -1.0
		for _, r := range remaining {
			if r.TMin() > frontier+cfg.GapToleranceK {
				continue
			}
			if r.TMax() <= frontier {
				continue
			}
			score := reliabilityScore(r)
			if best == nil || r.TMax() > bestExtent || (r.TMax() == bestExtent && score > bestScore) {
				best = r
				bestExtent = r.TMax()
				bestScore = score
			}
		}

		if best == nil {
			nextStart := tHi
			found := false
			for _, r := range remaining {
				if r.TMin() > frontier && r.TMin() < nextStart {
					nextStart = r.TMin()
					found = true
				}
			}
			if !found || nextStart-frontier > cfg.GapToleranceK {
				issues = append(issues, CoverageIssue{Gap: Range{Lo: frontier, Hi: tHi}})
				break
			}
			issues = append(issues, CoverageIssue{Gap: Range{Lo: frontier, Hi: nextStart}})
			frontier = nextStart
			continue
		}

		sequence = append(sequence, best)
		frontier = bestExtent
		remaining = removeRow(remaining, best)
	}

	return sequence, issues
}

func removeRow(rows []Row, target Row) []Row {
	out := make([]Row, 0, len(rows))
	removed := false
	for _, r := range rows {
		if !removed && r.ID() == target.ID() && sameSourceIDs(r, target) {
			removed = true
			continue
		}
		out = append(out, r)
	}
	return out
}

func sameSourceIDs(a, b Row) bool {
	as, bs := a.SourceIDs(), b.SourceIDs()
	if len(as) != len(bs) {
		return false
	}
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}
