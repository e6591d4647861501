package thermo

import (
	"errors"
	"fmt"
)

// Sentinel errors matching the error taxonomy of the calculation core.
// Components that fail fatally wrap one of these with context via %w so
// callers can pattern-match with errors.Is.
var (
	// ErrInvalidInput indicates a structurally invalid request: a catalog
	// row that fails CatalogRow.Validate, rows that fail the virtual-merge
	// preconditions in VirtualRowCache.GetOrCreate, or a non-positive or
	// non-finite temperature passed to the evaluator (via
	// InvalidTemperatureError). An empty row list given to the Segment
	// Builder is reported as a warning, not as this error, and a
	// FilterContext's temperature window is not validated.
	ErrInvalidInput = errors.New("thermo: invalid input")

	// ErrNoIntersection indicates the compounds' temperature-coverage
	// unions do not intersect. The Temperature Range Resolver never
	// returns this as an error — it degrades to (298.15, 298.15) and
	// reports a warning instead — but it is exposed so other components
	// can signal the same condition explicitly.
	ErrNoIntersection = errors.New("thermo: no intersection between compound temperature ranges")

	// ErrEvaluationError names a numeric domain error in the Polynomial
	// Evaluator. No function in this package returns it: Cp, H and S
	// report both T <= 0 and a non-finite result as an
	// *InvalidTemperatureError, which wraps ErrInvalidInput.
	ErrEvaluationError = errors.New("thermo: polynomial evaluation error")

	// ErrPipelineExhausted indicates a Filter Pipeline stage produced
	// zero surviving rows.
	ErrPipelineExhausted = errors.New("thermo: filter pipeline exhausted")
)

// NoCoverageError indicates no catalog row covers a requested temperature
// or segment interval. CalculateMultiPhase returns one, together with a
// result that carries only the target and the warnings, when the Segment
// Builder could not build any segment; the Segment Builder and Record
// Selector themselves report missing coverage as warnings. A caller can
// detect the condition with errors.As.
type NoCoverageError struct {
	Formula string
	T       float64
}

func (e *NoCoverageError) Error() string {
	return fmt.Sprintf("thermo: no catalog row covers %s at %.2f K", e.Formula, e.T)
}

// OptimizationBudgetError describes an Optimal Record Selector run that
// ran out of its time budget. OptimizeRecordChain does not create or
// return one: when its budget runs out it leaves the remaining groups
// unoptimized and adds a warning to OptimizedChain.Warnings.
type OptimizationBudgetError struct {
	BudgetMS int
	ElapsedMS float64
}

func (e *OptimizationBudgetError) Error() string {
	return fmt.Sprintf("thermo: optimization budget of %dms exceeded (elapsed %.2fms)", e.BudgetMS, e.ElapsedMS)
}

// StageError records which filter stage emptied the candidate set and why,
// matching FilterResult's failing-stage-index-and-reason contract.
type StageError struct {
	StageIndex int // 1-based index of the failing stage
	StageName  string
	Reason     string
}

func (e *StageError) Error() string {
	return fmt.Sprintf("thermo: filter stage %d (%s) exhausted candidates: %s", e.StageIndex, e.StageName, e.Reason)
}

func (e *StageError) Unwrap() error {
	return ErrPipelineExhausted
}

// InvalidTemperatureError reports a non-positive or non-finite temperature
// passed to the Polynomial Evaluator.
type InvalidTemperatureError struct {
	T float64
}

func (e *InvalidTemperatureError) Error() string {
	return fmt.Sprintf("thermo: invalid temperature %.4f K: must be > 0 and finite", e.T)
}

func (e *InvalidTemperatureError) Unwrap() error {
	return ErrInvalidInput
}
