package thermo

// CoreConfig collects every tunable named in the option table (spec §6).
// It is passed by value into every entry point; internal/thermo never
// consults an environment variable or a package-level global to fill in a
// missing field (§9 "Config objects"). The collaborator layer
// (internal/config) is responsible for populating one of these from
// viper/env/flags and handing it down.
type CoreConfig struct {
	// IntegrationPoints is the sample count for trajectory emission when
	// the caller asks for a regular grid rather than an explicit list of
	// temperatures.
	IntegrationPoints int

	// MaxTemperature is the upper physical bound honored by resolvers.
	MaxTemperature float64

	// GapThreshold is the warning threshold for uncovered gaps, in Kelvin.
	GapThreshold float64

	// OverlapThreshold is the warning threshold for segment overlaps, in
	// Kelvin.
	OverlapThreshold float64

	// MaxReliabilityClass: rows above this class are treated as
	// "adequate only if no alternative".
	MaxReliabilityClass int

	// Require298KCoverage: if true, the Range Resolver must attempt
	// inclusion of 298.15 K.
	Require298KCoverage bool

	// GapToleranceK is the max joinable gap in the Optimal Selector.
	GapToleranceK float64

	// TransitionToleranceK is the proximity to tmelt/tboil that counts as
	// "covers transition".
	TransitionToleranceK float64

	// CoeffsComparisonTolerance is the element-wise tolerance used when
	// deciding whether two rows' polynomial coefficients are "identical"
	// for virtual merging.
	CoeffsComparisonTolerance float64

	// MaxOptimizationTimeMS is the Optimal Record Selector's wall-clock
	// budget.
	MaxOptimizationTimeMS int

	// MaxVirtualRecords bounds the virtual-row cache.
	MaxVirtualRecords int

	// MinScoreImprovement is the relative improvement required to adopt
	// an optimization: (new-old)/old >= MinScoreImprovement.
	MinScoreImprovement float64

	// WeightRecordCount, WeightQuality, WeightTransitions are w_r, w_q,
	// w_t — the OptimizationScore weights. Must sum to 1.
	WeightRecordCount  float64
	WeightQuality      float64
	WeightTransitions  float64

	// MaxRecordsPerFormula bounds the dedup stage's per-formula keep
	// count (§4.4 stage 2).
	MaxRecordsPerFormula int

	// MaxRecords bounds the reliability-priority stage's keep count
	// (§4.4 stage 5).
	MaxRecords int

	// TransitionGapTolerance is the gap tolerance used by the Record
	// Selector's transition-point analysis (§4.5) between adjacent rows.
	TransitionGapTolerance float64

	// PhaseTransitionProximityK is delta_tr, the default tolerance used
	// by the Phase Resolver to decide whether a temperature sits at a
	// declared transition point (§4.3).
	PhaseTransitionProximityK float64

	// PerRowDataVolumeMB is the fixed per-row budget used to estimate
	// FilterResult data volume for observability only (§4.4).
	PerRowDataVolumeMB float64
}

// DefaultCoreConfig returns the defaults enumerated in spec §6.
func DefaultCoreConfig() CoreConfig {
	return CoreConfig{
		IntegrationPoints:         400,
		MaxTemperature:            6000,
		GapThreshold:              1,
		OverlapThreshold:          1,
		MaxReliabilityClass:       3,
		Require298KCoverage:       true,
		GapToleranceK:             1,
		TransitionToleranceK:      10,
		CoeffsComparisonTolerance: 1e-6,
		MaxOptimizationTimeMS:     50,
		MaxVirtualRecords:         100,
		MinScoreImprovement:       0.01,
		WeightRecordCount:         0.5,
		WeightQuality:             0.3,
		WeightTransitions:         0.2,
		MaxRecordsPerFormula:      10,
		MaxRecords:                1,
		TransitionGapTolerance:    1,
		PhaseTransitionProximityK: 5,
		PerRowDataVolumeMB:        0.002,
	}
}

// StandardTemperature is 298.15 K, the reference temperature for H298/S298
// and the temperature the Range Resolver tries to keep inside the
// calculation range.
const StandardTemperature = 298.15
