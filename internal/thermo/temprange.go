package thermo

import "fmt"

// ResolveCalculationRange derives the calculation temperature interval for
// a set of compounds (§4.2). rowsByFormula maps a compound formula to all
// of its catalog rows; userWindow is tracked for reporting only and never
// used to constrain the result. It never fails: when the compounds' unions
// do not intersect it degrades to (298.15, 298.15) with a warning.
func ResolveCalculationRange(rowsByFormula map[string][]CatalogRow, userWindow *Range, cfg CoreConfig) RangeReport {
	report := RangeReport{
		UserWindow: userWindow,
		Coverage:   make(map[string]CoverageStatus, len(rowsByFormula)),
	}

	unions := make(map[string]Range, len(rowsByFormula))
	for formula, rows := range rowsByFormula {
		if len(rows) == 0 {
			report.Coverage[formula] = CoverageNoData
			continue
		}
		u := Range{Lo: rows[0].TMin_, Hi: rows[0].TMax_}
		for _, r := range rows[1:] {
			if r.TMin_ < u.Lo {
				u.Lo = r.TMin_
			}
			if r.TMax_ > u.Hi {
				u.Hi = r.TMax_
			}
		}
		unions[formula] = u
	}

	if len(unions) == 0 {
		report.CalculationRange = Range{Lo: StandardTemperature, Hi: StandardTemperature}
		report.Recommendations = append(report.Recommendations, "no compounds carry any catalog rows")
		return report
	}

	// Step 2: intersect the union intervals across compounds.
	var inter Range
	first := true
	for _, u := range unions {
		if first {
			inter = u
			first = false
			continue
		}
		if u.Lo > inter.Lo {
			inter.Lo = u.Lo
		}
		if u.Hi < inter.Hi {
			inter.Hi = u.Hi
		}
	}

	if inter.Lo > inter.Hi {
		// No intersection: fall back, per §4.2 step 2 and §7 NoIntersection.
		report.CalculationRange = Range{Lo: StandardTemperature, Hi: StandardTemperature}
		report.Recommendations = append(report.Recommendations, "no intersection among compound temperature ranges; falling back to 298.15 K")
		for formula := range rowsByFormula {
			if _, noData := report.Coverage[formula]; noData {
				continue
			}
			report.Coverage[formula] = CoverageNone
		}
		return report
	}

	calcRange := inter

	// Step 3: expand toward 298.15 K if excluded and every compound still
	// has a row overlapping the expanded range.
	includes298 := calcRange.Lo <= StandardTemperature && StandardTemperature <= calcRange.Hi
	if cfg.Require298KCoverage && !includes298 {
		anyCoversStd := false
		for _, rows := range rowsByFormula {
			for _, r := range rows {
				if r.TMin_ <= StandardTemperature && StandardTemperature <= r.TMax_ {
					anyCoversStd = true
					break
				}
			}
		}
		if anyCoversStd {
			expanded := calcRange
			if StandardTemperature < expanded.Lo {
				expanded.Lo = StandardTemperature
			}
			if StandardTemperature > expanded.Hi {
				expanded.Hi = StandardTemperature
			}
			if everyCompoundOverlaps(rowsByFormula, expanded) {
				calcRange = expanded
				includes298 = true
			} else {
				report.Recommendations = append(report.Recommendations, "range excludes 298.15 K: expansion would drop coverage for at least one compound")
			}
		} else {
			report.Recommendations = append(report.Recommendations, "range excludes 298.15 K: no compound has data at the standard temperature")
		}
	}

	report.CalculationRange = calcRange
	report.Includes298K = includes298

	for formula, rows := range rowsByFormula {
		if len(rows) == 0 {
			report.Coverage[formula] = CoverageNoData
			continue
		}
		covered := false
		for _, r := range rows {
			if r.TMin_ <= calcRange.Hi && r.TMax_ >= calcRange.Lo {
				covered = true
				break
			}
		}
		if covered {
			report.Coverage[formula] = CoverageCovered
		} else {
			report.Coverage[formula] = CoverageNone
			report.Recommendations = append(report.Recommendations, fmt.Sprintf("compound %s has no data covering the calculation range", formula))
		}
	}

	return report
}

func everyCompoundOverlaps(rowsByFormula map[string][]CatalogRow, r Range) bool {
	for _, rows := range rowsByFormula {
		if len(rows) == 0 {
			return false
		}
		ok := false
		for _, row := range rows {
			if row.TMin_ <= r.Hi && row.TMax_ >= r.Lo {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	return true
}
