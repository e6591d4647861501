// Package thermo implements the record-selection and multi-phase
// composition pipeline for a relational thermochemistry catalog: given all
// catalog rows for a compound it resolves the calculation temperature
// interval, partitions it into contiguous phase segments, assigns one
// catalog row per segment, merges and optimizes the resulting chain, and
// integrates Shomate-style polynomials to produce enthalpy, entropy, heat
// capacity and Gibbs energy.
//
// The package is synchronous and allocates no goroutines; every exported
// function is safe to call concurrently from independent requests as long
// as the CatalogRow slices each request passes in are not mutated
// concurrently (they are treated as read-only borrowed views).
package thermo

import "fmt"

// Phase is a normalized phase tag. The canonical set is {s, l, g, aq, cr,
// am, a, ao, ai}; synonyms (solid, liquid, gas, aqueous, crystalline,
// amorphous, vapor) are mapped onto it by NormalizePhase.
type Phase string

const (
	PhaseSolid      Phase = "s"
	PhaseLiquid     Phase = "l"
	PhaseGas        Phase = "g"
	PhaseAqueous    Phase = "aq"
	PhaseCrystal    Phase = "cr"
	PhaseAmorphous  Phase = "am"
	PhaseA          Phase = "a"
	PhaseAO         Phase = "ao"
	PhaseAI         Phase = "ai"
	PhaseUnknown    Phase = ""
)

// phaseOrder ranks phases for the s <= l <= g validation rule (§4.7 step 5,
// §8 "phases respect s <= l <= g"). Phases outside {s,l,g} are not ordered
// against one another and always compare as equal-rank for this purpose.
var phaseOrder = map[Phase]int{
	PhaseSolid:  0,
	PhaseLiquid: 1,
	PhaseGas:    2,
}

// Rank returns the s<l<g ordinal for p, or 0 if p is not one of s/l/g.
func (p Phase) Rank() int {
	return phaseOrder[p]
}

// Row is the common capability every catalog row — physical or synthetic —
// must implement. The Filter Pipeline, Record Selector, Phase Segment
// Builder, Optimal Record Selector and Multi-Phase Calculator all operate
// through this interface so that a VirtualRow (§3, a merge of several
// source rows) can stand in for a CatalogRow anywhere in the pipeline
// without a concrete-type cast crossing a component boundary (§9).
type Row interface {
	ID() int
	Formula() string
	DisplayName() string
	PhaseTag() Phase
	TMin() float64
	TMax() float64
	H298() float64
	S298() float64
	Coeffs() [6]float64
	TMelt() (float64, bool)
	TBoil() (float64, bool)
	ReliabilityClass() int
	IsReferenceRow() bool // (H298, S298) != (0, 0)
	// SourceIDs returns the set of physical catalog row ids this row is
	// derived from: a single-element slice {ID()} for a CatalogRow, or
	// the full merged set for a VirtualRow.
	SourceIDs() []int
}

// CatalogRow is an immutable snapshot of one database row, as fetched by
// the caller's catalog query function (§6 "Consumed"). The core never
// mutates a CatalogRow; it only ever reads through the Row interface.
type CatalogRow struct {
	IDValue          int
	Formula_         string
	DisplayName_     string
	Phase_           Phase
	TMin_            float64
	TMax_            float64
	H298_            float64
	S298_            float64
	Coeffs_          [6]float64 // f1..f6
	TMelt_           *float64
	TBoil_           *float64
	ReliabilityClass_ int
}

func (r CatalogRow) ID() int               { return r.IDValue }
func (r CatalogRow) Formula() string       { return r.Formula_ }
func (r CatalogRow) DisplayName() string   { return r.DisplayName_ }
func (r CatalogRow) PhaseTag() Phase       { return r.Phase_ }
func (r CatalogRow) TMin() float64         { return r.TMin_ }
func (r CatalogRow) TMax() float64         { return r.TMax_ }
func (r CatalogRow) H298() float64         { return r.H298_ }
func (r CatalogRow) S298() float64         { return r.S298_ }
func (r CatalogRow) Coeffs() [6]float64    { return r.Coeffs_ }
func (r CatalogRow) ReliabilityClass() int { return r.ReliabilityClass_ }

func (r CatalogRow) TMelt() (float64, bool) {
	if r.TMelt_ == nil {
		return 0, false
	}
	return *r.TMelt_, true
}

func (r CatalogRow) TBoil() (float64, bool) {
	if r.TBoil_ == nil {
		return 0, false
	}
	return *r.TBoil_, true
}

func (r CatalogRow) IsReferenceRow() bool {
	return r.H298_ != 0 || r.S298_ != 0
}

func (r CatalogRow) SourceIDs() []int { return []int{r.IDValue} }

// Validate enforces the §3 invariants: tmin <= tmax, tmelt < tboil when
// both are present, and reliability_class in {1..5}.
func (r CatalogRow) Validate() error {
	if r.TMin_ > r.TMax_ {
		return fmt.Errorf("%w: catalog row %d: tmin %.2f > tmax %.2f", ErrInvalidInput, r.IDValue, r.TMin_, r.TMax_)
	}
	if r.TMelt_ != nil && r.TBoil_ != nil && *r.TMelt_ >= *r.TBoil_ {
		return fmt.Errorf("%w: catalog row %d: tmelt %.2f >= tboil %.2f", ErrInvalidInput, r.IDValue, *r.TMelt_, *r.TBoil_)
	}
	if r.ReliabilityClass_ < 1 || r.ReliabilityClass_ > 5 {
		return fmt.Errorf("%w: catalog row %d: reliability_class %d out of {1..5}", ErrInvalidInput, r.IDValue, r.ReliabilityClass_)
	}
	return nil
}

// Range is an inclusive temperature interval in Kelvin.
type Range struct {
	Lo float64
	Hi float64
}

// Target is a calculation request: either a single temperature or a sorted
// trajectory of emit temperatures.
type Target struct {
	T          float64   // single-temperature request
	Trajectory []float64 // sorted emit temperatures; nil for a single-T request
}

// IsTrajectory reports whether the target names a trajectory rather than a
// single temperature.
func (t Target) IsTrajectory() bool { return len(t.Trajectory) > 0 }

// PhaseSegment is one link of a compound's segment chain (§3).
type PhaseSegment struct {
	Record               Row
	TStart               float64
	TEnd                 float64
	HStart               float64 // H snapshot at TStart
	SStart               float64 // S snapshot at TStart
	IsTransitionBoundary bool    // TEnd coincides with a melting/boiling point
}

// PhaseTransition records a segment boundary that crosses phases (§3).
type TransitionKind string

const (
	TransitionMelting     TransitionKind = "melting"
	TransitionBoiling     TransitionKind = "boiling"
	TransitionSublimation TransitionKind = "sublimation"
	TransitionUnknown     TransitionKind = "unknown"
)

type PhaseTransition struct {
	T         float64
	FromPhase Phase
	ToPhase   Phase
	Kind      TransitionKind
	DeltaHTr  float64 // J/mol
	DeltaSTr  float64 // J/(mol*K), == DeltaHTr/T
}

// MultiPhaseResult is the output for one compound (§3).
type MultiPhaseResult struct {
	Target      Target
	H, S, G, Cp float64 // final values at the last emitted temperature
	Segments    []PhaseSegment
	Transitions []PhaseTransition
	HPath       []float64 // populated only for a trajectory request
	SPath       []float64
	GPath       []float64
	CpPath      []float64
	TPath       []float64
	Warnings    []string
}

// ReactionResult is the combined output of CalculateReaction: per-compound
// sub-results plus the signed stoichiometric reduction.
type ReactionResult struct {
	Range        Range
	PerCompound  map[string]MultiPhaseResult
	Stoichiometry map[string]float64 // signed: reactants negative, products positive
	DeltaH       float64
	DeltaS       float64
	DeltaG       float64
	DeltaCp      float64
	// EquilibriumK is populated only when requested: K(T) = exp(-DeltaG*1000/(R*T)).
	EquilibriumK float64
	Warnings     []string
}

// CoverageStatus classifies a compound's relationship to the calculation
// range produced by the Temperature Range Resolver.
type CoverageStatus string

const (
	CoverageCovered   CoverageStatus = "covered"
	CoverageNone      CoverageStatus = "no_coverage"
	CoverageNoData    CoverageStatus = "no_data"
)

// RangeReport is the Temperature Range Resolver's output (§4.2).
type RangeReport struct {
	CalculationRange   Range
	UserWindow         *Range
	Includes298K       bool
	Coverage           map[string]CoverageStatus
	Recommendations    []string
}

// FilterContext is the per-invocation descriptor threaded through the
// Filter Pipeline (§3).
type FilterContext struct {
	Formula string
	Window  Range
	Extra   map[string]any
}

// StageMetric is the per-stage metrics record the Filter Pipeline
// aggregates (§4.4).
type StageMetric struct {
	Name           string
	CountIn        int
	CountOut       int
	ReductionRate  float64 // 1 - CountOut/CountIn, 0 when CountIn == 0
	ElapsedMicros  int64
	RSSBeforeMB    float64
	RSSAfterMB     float64
	DataVolumeMB   float64 // CountIn * perRowBudgetMB, for observability only
	Fields         map[string]any
}

// FilterResult is the stage-chain verdict (§3/§4.4).
type FilterResult struct {
	Rows         []Row
	InitialCount int
	Stages       []StageMetric
	IsFound      bool
	FailedStage  int // 1-based; 0 if IsFound
	FailReason   string
}

// OptimizationScore is the weighted figure of merit from §3:
//
//	w_r*(1/N) + w_q*((R_max-R_avg)/R_max) + w_t*T_cov
type OptimizationScore struct {
	RecordCount          int
	AvgReliability       float64
	TransitionCoverage   float64 // fraction in [0,1]
	Value                float64
}

// OptimizedChain is the output of the Optimal Record Selector (§4.7/§6).
type OptimizedChain struct {
	Segments      []PhaseSegment
	Score         OptimizationScore
	BaselineScore OptimizationScore
	Accepted      bool // true iff the optimized chain replaced the baseline
	Warnings      []string
}
