package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/quasar-thermo/internal/thermo"
)

// registerTargetFlags attaches the --t/--trajectory/--lo/--hi/--points flags
// shared by every command that asks the Multi-Phase Calculator for a
// single-temperature or trajectory result.
func registerTargetFlags(cmd *cobra.Command) {
	cmd.Flags().Float64("t", 0, "single calculation temperature in Kelvin")
	cmd.Flags().String("trajectory", "", "comma-separated list of temperatures in Kelvin, e.g. 300,400,500")
	cmd.Flags().Float64("lo", 0, "lower bound of a user window in Kelvin, reported against the catalog-resolved range (does not narrow it)")
	cmd.Flags().Float64("hi", 0, "upper bound of a user window in Kelvin, reported against the catalog-resolved range (does not narrow it)")
	cmd.Flags().Int("points", 0, "emit a regular grid of this many points across the resolved calculation range instead of a single temperature")
}

// resolveTarget builds a thermo.Target from the --t/--trajectory/--points
// flags. When none are set it defaults to a single point at tLo.
func resolveTarget(cmd *cobra.Command, tLo, tHi float64) (thermo.Target, error) {
	if traj, _ := cmd.Flags().GetString("trajectory"); traj != "" {
		parts := strings.Split(traj, ",")
		ts := make([]float64, 0, len(parts))
		for _, p := range parts {
			v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
			if err != nil {
				return thermo.Target{}, fmt.Errorf("invalid trajectory temperature %q: %w", p, err)
			}
			ts = append(ts, v)
		}
		return thermo.Target{Trajectory: ts}, nil
	}

	if points, _ := cmd.Flags().GetInt("points"); points > 1 {
		ts := make([]float64, points)
		step := (tHi - tLo) / float64(points-1)
		for i := 0; i < points; i++ {
			ts[i] = tLo + step*float64(i)
		}
		return thermo.Target{Trajectory: ts}, nil
	}

	if t, _ := cmd.Flags().GetFloat64("t"); t > 0 {
		return thermo.Target{T: t}, nil
	}

	return thermo.Target{T: tLo}, nil
}

// resolveRangeOverride returns the caller's --lo/--hi override as a
// *thermo.Range, or nil if neither flag was set.
func resolveRangeOverride(cmd *cobra.Command) *thermo.Range {
	lo, _ := cmd.Flags().GetFloat64("lo")
	hi, _ := cmd.Flags().GetFloat64("hi")
	if lo == 0 && hi == 0 {
		return nil
	}
	return &thermo.Range{Lo: lo, Hi: hi}
}
