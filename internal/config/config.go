// Package config loads a thermo.CoreConfig from a YAML file, environment
// variables and overrides, and can hot-reload it when the file changes.
package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"

	"github.com/papapumpkin/quasar-thermo/internal/thermo"
)

// fileConfig mirrors thermo.CoreConfig's fields with mapstructure tags, so
// viper can unmarshal the YAML config file and QUASAR_THERMO_* env vars
// into it directly.
type fileConfig struct {
	IntegrationPoints         int     `mapstructure:"integration_points"`
	MaxTemperature            float64 `mapstructure:"max_temperature"`
	GapThreshold              float64 `mapstructure:"gap_threshold"`
	OverlapThreshold          float64 `mapstructure:"overlap_threshold"`
	MaxReliabilityClass       int     `mapstructure:"max_reliability_class"`
	Require298KCoverage       bool    `mapstructure:"require_298k_coverage"`
	GapToleranceK             float64 `mapstructure:"gap_tolerance_k"`
	TransitionToleranceK      float64 `mapstructure:"transition_tolerance_k"`
	CoeffsComparisonTolerance float64 `mapstructure:"coeffs_comparison_tolerance"`
	MaxOptimizationTimeMS     int     `mapstructure:"max_optimization_time_ms"`
	MaxVirtualRecords         int     `mapstructure:"max_virtual_records"`
	MinScoreImprovement       float64 `mapstructure:"min_score_improvement"`
	WeightRecordCount         float64 `mapstructure:"weight_record_count"`
	WeightQuality             float64 `mapstructure:"weight_quality"`
	WeightTransitions         float64 `mapstructure:"weight_transitions"`
	MaxRecordsPerFormula      int     `mapstructure:"max_records_per_formula"`
	MaxRecords                int     `mapstructure:"max_records"`
	TransitionGapTolerance    float64 `mapstructure:"transition_gap_tolerance"`
	PhaseTransitionProximityK float64 `mapstructure:"phase_transition_proximity_k"`
	PerRowDataVolumeMB        float64 `mapstructure:"per_row_data_volume_mb"`
}

func (fc fileConfig) toCoreConfig() thermo.CoreConfig {
	return thermo.CoreConfig{
		IntegrationPoints:         fc.IntegrationPoints,
		MaxTemperature:            fc.MaxTemperature,
		GapThreshold:              fc.GapThreshold,
		OverlapThreshold:          fc.OverlapThreshold,
		MaxReliabilityClass:       fc.MaxReliabilityClass,
		Require298KCoverage:       fc.Require298KCoverage,
		GapToleranceK:             fc.GapToleranceK,
		TransitionToleranceK:      fc.TransitionToleranceK,
		CoeffsComparisonTolerance: fc.CoeffsComparisonTolerance,
		MaxOptimizationTimeMS:     fc.MaxOptimizationTimeMS,
		MaxVirtualRecords:         fc.MaxVirtualRecords,
		MinScoreImprovement:       fc.MinScoreImprovement,
		WeightRecordCount:         fc.WeightRecordCount,
		WeightQuality:             fc.WeightQuality,
		WeightTransitions:         fc.WeightTransitions,
		MaxRecordsPerFormula:      fc.MaxRecordsPerFormula,
		MaxRecords:                fc.MaxRecords,
		TransitionGapTolerance:    fc.TransitionGapTolerance,
		PhaseTransitionProximityK: fc.PhaseTransitionProximityK,
		PerRowDataVolumeMB:        fc.PerRowDataVolumeMB,
	}
}

func fromCoreConfig(cfg thermo.CoreConfig) fileConfig {
	return fileConfig{
		IntegrationPoints:         cfg.IntegrationPoints,
		MaxTemperature:            cfg.MaxTemperature,
		GapThreshold:              cfg.GapThreshold,
		OverlapThreshold:          cfg.OverlapThreshold,
		MaxReliabilityClass:       cfg.MaxReliabilityClass,
		Require298KCoverage:       cfg.Require298KCoverage,
		GapToleranceK:             cfg.GapToleranceK,
		TransitionToleranceK:      cfg.TransitionToleranceK,
		CoeffsComparisonTolerance: cfg.CoeffsComparisonTolerance,
		MaxOptimizationTimeMS:     cfg.MaxOptimizationTimeMS,
		MaxVirtualRecords:         cfg.MaxVirtualRecords,
		MinScoreImprovement:       cfg.MinScoreImprovement,
		WeightRecordCount:         cfg.WeightRecordCount,
		WeightQuality:             cfg.WeightQuality,
		WeightTransitions:         cfg.WeightTransitions,
		MaxRecordsPerFormula:      cfg.MaxRecordsPerFormula,
		MaxRecords:                cfg.MaxRecords,
		TransitionGapTolerance:    cfg.TransitionGapTolerance,
		PhaseTransitionProximityK: cfg.PhaseTransitionProximityK,
		PerRowDataVolumeMB:        cfg.PerRowDataVolumeMB,
	}
}

// Load builds a thermo.CoreConfig from viper defaults (spec §6), an
// optional YAML file at configPath, and QUASAR_THERMO_* environment
// overrides. configPath may be empty, in which case only defaults and
// environment variables apply.
func Load(configPath string) (thermo.CoreConfig, error) {
	v := viper.New()
	setDefaults(v, thermo.DefaultCoreConfig())
	v.SetEnvPrefix("QUASAR_THERMO")
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return thermo.CoreConfig{}, fmt.Errorf("config: read %s: %w", configPath, err)
			}
		}
	}

	var fc fileConfig
	if err := v.Unmarshal(&fc); err != nil {
		return thermo.CoreConfig{}, fmt.Errorf("config: unmarshal: %w", err)
	}
	return fc.toCoreConfig(), nil
}

func setDefaults(v *viper.Viper, cfg thermo.CoreConfig) {
	def := fromCoreConfig(cfg)
	v.SetDefault("integration_points", def.IntegrationPoints)
	v.SetDefault("max_temperature", def.MaxTemperature)
	v.SetDefault("gap_threshold", def.GapThreshold)
	v.SetDefault("overlap_threshold", def.OverlapThreshold)
	v.SetDefault("max_reliability_class", def.MaxReliabilityClass)
	v.SetDefault("require_298k_coverage", def.Require298KCoverage)
	v.SetDefault("gap_tolerance_k", def.GapToleranceK)
	v.SetDefault("transition_tolerance_k", def.TransitionToleranceK)
	v.SetDefault("coeffs_comparison_tolerance", def.CoeffsComparisonTolerance)
	v.SetDefault("max_optimization_time_ms", def.MaxOptimizationTimeMS)
	v.SetDefault("max_virtual_records", def.MaxVirtualRecords)
	v.SetDefault("min_score_improvement", def.MinScoreImprovement)
	v.SetDefault("weight_record_count", def.WeightRecordCount)
	v.SetDefault("weight_quality", def.WeightQuality)
	v.SetDefault("weight_transitions", def.WeightTransitions)
	v.SetDefault("max_records_per_formula", def.MaxRecordsPerFormula)
	v.SetDefault("max_records", def.MaxRecords)
	v.SetDefault("transition_gap_tolerance", def.TransitionGapTolerance)
	v.SetDefault("phase_transition_proximity_k", def.PhaseTransitionProximityK)
	v.SetDefault("per_row_data_volume_mb", def.PerRowDataVolumeMB)
}
