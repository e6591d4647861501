package config

import (
	"os"
	"testing"

	"github.com/papapumpkin/quasar-thermo/internal/thermo"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") returned unexpected error: %v", err)
	}

	want := thermo.DefaultCoreConfig()
	tests := []struct {
		name string
		got  any
		want any
	}{
		{"IntegrationPoints", cfg.IntegrationPoints, want.IntegrationPoints},
		{"MaxTemperature", cfg.MaxTemperature, want.MaxTemperature},
		{"Require298KCoverage", cfg.Require298KCoverage, want.Require298KCoverage},
		{"GapToleranceK", cfg.GapToleranceK, want.GapToleranceK},
		{"MaxOptimizationTimeMS", cfg.MaxOptimizationTimeMS, want.MaxOptimizationTimeMS},
		{"WeightRecordCount", cfg.WeightRecordCount, want.WeightRecordCount},
		{"WeightQuality", cfg.WeightQuality, want.WeightQuality},
		{"WeightTransitions", cfg.WeightTransitions, want.WeightTransitions},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
			}
		})
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	tests := []struct {
		name   string
		envKey string
		envVal string
		field  func(thermo.CoreConfig) any
		want   any
	}{
		{
			name:   "integration_points",
			envKey: "QUASAR_THERMO_INTEGRATION_POINTS",
			envVal: "750",
			field:  func(c thermo.CoreConfig) any { return c.IntegrationPoints },
			want:   750,
		},
		{
			name:   "max_temperature",
			envKey: "QUASAR_THERMO_MAX_TEMPERATURE",
			envVal: "4500",
			field:  func(c thermo.CoreConfig) any { return c.MaxTemperature },
			want:   4500.0,
		},
		{
			name:   "require_298k_coverage",
			envKey: "QUASAR_THERMO_REQUIRE_298K_COVERAGE",
			envVal: "false",
			field:  func(c thermo.CoreConfig) any { return c.Require298KCoverage },
			want:   false,
		},
		{
			name:   "max_optimization_time_ms",
			envKey: "QUASAR_THERMO_MAX_OPTIMIZATION_TIME_MS",
			envVal: "200",
			field:  func(c thermo.CoreConfig) any { return c.MaxOptimizationTimeMS },
			want:   200,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Setenv(tt.envKey, tt.envVal)
			defer os.Unsetenv(tt.envKey)

			cfg, err := Load("")
			if err != nil {
				t.Fatalf("Load(\"\") returned unexpected error: %v", err)
			}
			got := tt.field(cfg)
			if got != tt.want {
				t.Errorf("%s: got %v (%T), want %v (%T)", tt.name, got, got, tt.want, tt.want)
			}
		})
	}
}

func TestLoad_DefaultsAreNotZero(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") returned unexpected error: %v", err)
	}

	if cfg.IntegrationPoints == 0 {
		t.Error("IntegrationPoints should not be zero")
	}
	if cfg.MaxTemperature == 0 {
		t.Error("MaxTemperature should not be zero")
	}
	if cfg.MaxOptimizationTimeMS == 0 {
		t.Error("MaxOptimizationTimeMS should not be zero")
	}
	if cfg.WeightRecordCount+cfg.WeightQuality+cfg.WeightTransitions == 0 {
		t.Error("optimization weights should not all be zero")
	}
}

func TestLoad_YAMLFile(t *testing.T) {
	path := writeTempYAML(t, "max_optimization_time_ms: 333\nmax_reliability_class: 2\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load(%q) returned unexpected error: %v", path, err)
	}
	if cfg.MaxOptimizationTimeMS != 333 {
		t.Errorf("MaxOptimizationTimeMS = %d, want 333", cfg.MaxOptimizationTimeMS)
	}
	if cfg.MaxReliabilityClass != 2 {
		t.Errorf("MaxReliabilityClass = %d, want 2", cfg.MaxReliabilityClass)
	}
	// Fields absent from the file still fall back to the package default.
	if cfg.IntegrationPoints != thermo.DefaultCoreConfig().IntegrationPoints {
		t.Errorf("IntegrationPoints = %d, want default %d", cfg.IntegrationPoints, thermo.DefaultCoreConfig().IntegrationPoints)
	}
}

func writeTempYAML(t *testing.T, contents string) string {
	t.Helper()
	path := t.TempDir() + "/thermo.yaml"
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write temp yaml: %v", err)
	}
	return path
}
