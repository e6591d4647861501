package thermo

import (
	"sort"
	"strings"
	"time"
)

// Stage is the capability every Filter Pipeline link exposes (§9 "dynamic
// polymorphism of filter stages"): a row-reducing function plus a name and
// a metrics snapshot from its most recent run.
type Stage interface {
	Name() string
	Filter(rows []Row, ctx *FilterContext, cfg CoreConfig) []Row
	LastMetrics() StageMetric
}

// funcStage adapts a closure into a Stage, capturing the metrics of its
// most recent run. It and newFuncStage are unexported: code outside this
// package builds stages only via the constructor functions below
// (FormulaSearchStage, DedupStage, ...), matching the teacher's builder-only
// configuration surface (§4.4 "builder-style composition is the only
// configuration surface").
type funcStage struct {
	name    string
	fn      func(rows []Row, ctx *FilterContext, cfg CoreConfig) ([]Row, map[string]any)
	last    StageMetric
}

func newFuncStage(name string, fn func(rows []Row, ctx *FilterContext, cfg CoreConfig) ([]Row, map[string]any)) *funcStage {
	return &funcStage{name: name, fn: fn}
}

func (s *funcStage) Name() string { return s.name }

func (s *funcStage) Filter(rows []Row, ctx *FilterContext, cfg CoreConfig) []Row {
	start := time.Now()
	out, fields := s.fn(rows, ctx, cfg)
	elapsed := time.Since(start)

	countIn := len(rows)
	countOut := len(out)
	reduction := 0.0
	if countIn > 0 {
		reduction = 1 - float64(countOut)/float64(countIn)
	}

	s.last = StageMetric{
		Name:          s.name,
		CountIn:       countIn,
		CountOut:      countOut,
		ReductionRate: reduction,
		ElapsedMicros: elapsed.Microseconds(),
		DataVolumeMB:  float64(countIn) * cfg.PerRowDataVolumeMB,
		Fields:        fields,
	}
	return out
}

func (s *funcStage) LastMetrics() StageMetric { return s.last }

// Pipeline is an ordered chain of Stages built via BuildFilterPipeline.
type Pipeline struct {
	Stages []Stage
}

// BuildFilterPipeline assembles an ordered Pipeline from the given stages.
// Stages may be added or removed by the caller before building; this
// function performs no validation beyond storing the order given.
func BuildFilterPipeline(stages ...Stage) *Pipeline {
	return &Pipeline{Stages: stages}
}

// DefaultFilterPipeline returns the canonical six-stage pipeline from §4.4.
func DefaultFilterPipeline(cfg CoreConfig) *Pipeline {
	return BuildFilterPipeline(
		FormulaSearchStage(),
		DedupStage(),
		TemperatureOverlapStage(),
		PhaseSelectionStage(),
		ReliabilityPriorityStage(),
		FormulaConsistencyStage(),
	)
}

// RunFilterPipeline executes every stage in order against rows, stopping at
// the first stage that empties the candidate set (§4.4).
func RunFilterPipeline(p *Pipeline, rows []Row, ctx *FilterContext, cfg CoreConfig) FilterResult {
	result := FilterResult{InitialCount: len(rows)}
	current := rows

	for i, stage := range p.Stages {
		current = stage.Filter(current, ctx, cfg)
		metric := stage.LastMetrics()
		result.Stages = append(result.Stages, metric)

		if len(current) == 0 {
			result.Rows = nil
			result.IsFound = false
			result.FailedStage = i + 1
			result.FailReason = stage.Name() + " produced zero surviving rows"
			return result
		}
	}

	result.Rows = current
	result.IsFound = true
	return result
}

// --- Stage 1: Complex Formula Search --------------------------------------

// formulaClass classifies a target formula the way the Complex Formula
// Search stage does (§4.4 stage 1).
type formulaClass int

const (
	classStandard formulaClass = iota
	classPrefixRequired
	classIonic
	classPhaseAware
	classIsotopePossible
)

var prefixRequiredFormulas = map[string]bool{
	"HCl": true, "CO2": true, "NH3": true, "CH4": true, "HF": true,
	"HBr": true, "HI": true, "NO": true, "NO2": true, "SO2": true, "SO3": true,
}

func classifyFormula(target string) formulaClass {
	switch {
	case strings.ContainsAny(target, "+-"):
		return classIonic
	case strings.Contains(target, "("):
		return classPhaseAware
	case prefixRequiredFormulas[target]:
		return classPrefixRequired
	case len(target) > 0 && target[0] >= '0' && target[0] <= '9':
		return classIsotopePossible
	default:
		return classStandard
	}
}

// matchKind ranks how a row matched the target formula; lower is better
// (§4.4 "tie-break by the match type in that order").
type matchKind int

const (
	matchExactBase matchKind = iota
	matchPhaseTagged
	matchPrefix
	matchElementSet
	matchNone
)

func classifyMatch(target, rowFormula string) matchKind {
	base := BaseFormula(rowFormula)
	switch {
	case base == target:
		return matchExactBase
	case strings.HasPrefix(rowFormula, target+"("):
		return matchPhaseTagged
	case strings.HasPrefix(rowFormula, target):
		return matchPrefix
	case elementSet(base) == elementSet(target):
		return matchElementSet
	default:
		return matchNone
	}
}

// elementSet returns a canonical, order-independent signature of the
// element symbols present in formula with digits stripped, used to detect
// isotopes/isomers (e.g. "13CO2" and "CO2" share an element set).
func elementSet(formula string) string {
	var letters []rune
	for _, r := range formula {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			letters = append(letters, r)
		}
	}
	sort.Slice(letters, func(i, j int) bool { return letters[i] < letters[j] })
	return string(letters)
}

// FormulaSearchStage implements §4.4 stage 1.
func FormulaSearchStage() Stage {
	return newFuncStage("complex_formula_search", func(rows []Row, ctx *FilterContext, cfg CoreConfig) ([]Row, map[string]any) {
		type scored struct {
			row  Row
			kind matchKind
		}
		var matched []scored
		for _, r := range rows {
			k := classifyMatch(ctx.Formula, r.Formula())
			if k != matchNone {
				matched = append(matched, scored{row: r, kind: k})
			}
		}
		sort.SliceStable(matched, func(i, j int) bool { return matched[i].kind < matched[j].kind })

		out := make([]Row, len(matched))
		for i, m := range matched {
			out[i] = m.row
		}
		// formula_class is observability only: the (a)-(d) match rule below
		// applies uniformly regardless of class (§4.4 stage 1).
		return out, map[string]any{"formula_class": int(classifyFormula(ctx.Formula))}
	})
}

// --- Stage 2: Formula Consistency / Deduplication -------------------------

// DedupStage implements §4.4 stage 2: group rows by base formula, sort each
// group by (reliability_class asc, tmax-tmin desc), keep up to
// cfg.MaxRecordsPerFormula per group.
func DedupStage() Stage {
	return newFuncStage("formula_consistency_dedup", func(rows []Row, ctx *FilterContext, cfg CoreConfig) ([]Row, map[string]any) {
		limit := cfg.MaxRecordsPerFormula
		if limit <= 0 {
			limit = 10
		}

		groups := make(map[string][]Row)
		var order []string
		for _, r := range rows {
			base := BaseFormula(r.Formula())
			if _, seen := groups[base]; !seen {
				order = append(order, base)
			}
			groups[base] = append(groups[base], r)
		}

		var out []Row
		groupsOver := 0
		for _, base := range order {
			g := groups[base]
			sort.SliceStable(g, func(i, j int) bool {
				if g[i].ReliabilityClass() != g[j].ReliabilityClass() {
					return g[i].ReliabilityClass() < g[j].ReliabilityClass()
				}
				return (g[i].TMax() - g[i].TMin()) > (g[j].TMax() - g[j].TMin())
			})
			if len(g) > limit {
				groupsOver++
				g = g[:limit]
			}
			out = append(out, g...)
		}
		return out, map[string]any{"groups": len(order), "groups_truncated": groupsOver}
	})
}

// --- Stage 3: Temperature Overlap -----------------------------------------

// TemperatureOverlapStage implements §4.4 stage 3.
func TemperatureOverlapStage() Stage {
	return newFuncStage("temperature_overlap", func(rows []Row, ctx *FilterContext, cfg CoreConfig) ([]Row, map[string]any) {
		var out []Row
		for _, r := range rows {
			if r.TMin() <= ctx.Window.Hi && r.TMax() >= ctx.Window.Lo {
				out = append(out, r)
			}
		}
		return out, nil
	})
}

// --- Stage 4: Phase Selection ---------------------------------------------

const (
	phaseScoreExactMatch       = 1.0
	phaseScoreMissingRowPhase  = 0.8
	phaseScoreMismatchAdequate = 0.6
	phaseScoreMismatchSparse   = 0.3
)

// PhaseSelectionStage implements §4.4 stage 4: score every row against the
// expected phase at the window's midpoint and keep those scoring >= 0.3.
func PhaseSelectionStage() Stage {
	return newFuncStage("phase_selection", func(rows []Row, ctx *FilterContext, cfg CoreConfig) ([]Row, map[string]any) {
		tMid := (ctx.Window.Lo + ctx.Window.Hi) / 2
		expected := stablePhaseFallback(tMid)

		var out []Row
		for _, r := range rows {
			score := phaseRowScore(r, expected)
			if score >= phaseScoreMismatchSparse {
				out = append(out, r)
			}
		}
		return out, map[string]any{"expected_phase": string(expected)}
	})
}

func phaseRowScore(r Row, expected Phase) float64 {
	switch {
	case r.PhaseTag() == PhaseUnknown:
		return phaseScoreMissingRowPhase
	case r.PhaseTag() == expected:
		return phaseScoreExactMatch
	case r.IsReferenceRow():
		return phaseScoreMismatchAdequate
	default:
		return phaseScoreMismatchSparse
	}
}

// --- Stage 5: Reliability Priority -----------------------------------------

// ReliabilityPriorityStage implements §4.4 stage 5.
func ReliabilityPriorityStage() Stage {
	return newFuncStage("reliability_priority", func(rows []Row, ctx *FilterContext, cfg CoreConfig) ([]Row, map[string]any) {
		limit := cfg.MaxRecords
		if limit <= 0 {
			limit = 1
		}

		type scored struct {
			row   Row
			score float64
		}
		ranked := make([]scored, len(rows))
		for i, r := range rows {
			ranked[i] = scored{row: r, score: reliabilityScore(r)}
		}
		sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

		if len(ranked) > limit {
			ranked = ranked[:limit]
		}
		out := make([]Row, len(ranked))
		for i, s := range ranked {
			out[i] = s.row
		}
		return out, nil
	})
}

func reliabilityScore(r Row) float64 {
	score := float64(10-r.ReliabilityClass()) * 100
	score += completeness(r) * 50

	if _, ok := r.TMelt(); ok {
		score += 20
	}
	if _, ok := r.TBoil(); ok {
		score += 20
	}

	width := r.TMax() - r.TMin()
	widthBonus := width / 100
	if widthBonus > 10 {
		widthBonus = 10
	}
	score += widthBonus

	if r.H298() != 0 {
		score += 10
	}
	if r.S298() != 0 {
		score += 10
	}
	return score
}

// completeness is the fraction of {h298, s298, tmelt, tboil} a row
// supplies, in [0,1]; it feeds the reliability-priority score's
// "completeness*50" term.
func completeness(r Row) float64 {
	have := 0.0
	if r.H298() != 0 {
		have++
	}
	if r.S298() != 0 {
		have++
	}
	if _, ok := r.TMelt(); ok {
		have++
	}
	if _, ok := r.TBoil(); ok {
		have++
	}
	return have / 4
}

// --- Stage 6: Formula Consistency (exit check) ----------------------------

// FormulaConsistencyStage implements the dedicated-module contract (§9
// Open Question: this package follows that version, not the variant also
// present inside a generic filter_stages module in the source language).
func FormulaConsistencyStage() Stage {
	return newFuncStage("formula_consistency_exit", func(rows []Row, ctx *FilterContext, cfg CoreConfig) ([]Row, map[string]any) {
		var out []Row
		for _, r := range rows {
			if BaseFormula(r.Formula()) == ctx.Formula || classifyMatch(ctx.Formula, r.Formula()) != matchNone {
				out = append(out, r)
			}
		}
		return out, nil
	})
}
