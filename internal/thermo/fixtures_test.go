package thermo

// --- Test fixtures -----------------------------------------------------
//
// These mirror real NIST-Janaf-style rows: H2O across solid/liquid/gas,
// SiO2 with two near-identical alpha-quartz rows that should merge into a
// VirtualRow, CeCl3 with a duplicate low-reliability row, HCl carrying a
// parenthesized phase tag, and FeO/O2 sharing a narrow range intersection.

func row(id int, formula string, phase Phase, tmin, tmax, h298, s298 float64, coeffs [6]float64, reliability int) CatalogRow {
	return CatalogRow{
		IDValue:          id,
		Formula_:         formula,
		DisplayName_:     formula,
		Phase_:           phase,
		TMin_:            tmin,
		TMax_:            tmax,
		H298_:            h298,
		S298_:            s298,
		Coeffs_:          coeffs,
		ReliabilityClass_: reliability,
	}
}

func withTransitions(r CatalogRow, tmelt, tboil *float64) CatalogRow {
	r.TMelt_ = tmelt
	r.TBoil_ = tboil
	return r
}

func floatPtr(v float64) *float64 { return &v }

// h2oRows returns a three-phase H2O chain: ice (solid) below 273.15K,
// liquid water up to 373.15K, steam above, each a plausible Shomate fit.
func h2oRows() []Row {
	melt := floatPtr(273.15)
	boil := floatPtr(373.15)
	solid := withTransitions(row(1, "H2O", PhaseSolid, 200, 273.15, -292.7, 39.3,
		[6]float64{-203.6, 1523.3, -3013.3, 1697.6, 6.9, 0}, 2), melt, boil)
	liquid := withTransitions(row(2, "H2O", PhaseLiquid, 273.15, 373.15, -285.8, 69.9,
		[6]float64{-203.6, 1523.3, -3013.3, 1697.6, 6.9, 0}, 1), melt, boil)
	gas := withTransitions(row(3, "H2O", PhaseGas, 373.15, 1700, -241.8, 188.8,
		[6]float64{30.1, 11.3, 0.0, 0.0, 0.0, 0}, 1), melt, boil)
	return []Row{solid, liquid, gas}
}

// sio2Rows returns two contiguous alpha-quartz SiO2 rows with identical
// coefficients and reference values and only a 0.5K gap between them: a
// candidate for VirtualRow merging.
func sio2Rows() []Row {
	coeffs := [6]float64{58.8, 10.3, -0.0, 0.0, -0.6, 0}
	a := row(10, "SiO2", PhaseSolid, 298, 500, -910.7, 41.5, coeffs, 2)
	b := row(11, "SiO2", PhaseSolid, 500.5, 847, -910.7, 41.5, coeffs, 2)
	return []Row{a, b}
}

// cecl3Rows returns two rows for the same interval with differing
// reliability classes, the duplicate-elimination scenario.
func cecl3Rows() []Row {
	coeffs := [6]float64{120.5, 10.0, 0, 0, 0, 0}
	better := row(20, "CeCl3", PhaseSolid, 298, 1100, -1053.0, 151.0, coeffs, 1)
	worse := row(21, "CeCl3", PhaseSolid, 298, 1100, -1053.0, 151.0, coeffs, 4)
	return []Row{better, worse}
}

// hclRows returns rows for a prefix-required formula including a
// phase-tagged variant, exercising the Complex Formula Search stage.
func hclRows() []Row {
	gas := row(30, "HCl(g)", PhaseGas, 160, 1000, -92.3, 186.9, [6]float64{32.1, -13.9, 19.9, -6.6, 0, 0}, 2)
	aqueous := row(31, "HCl(aq)", PhaseAqueous, 273, 373, -167.2, 56.5, [6]float64{30, 0, 0, 0, 0, 0}, 3)
	unrelated := row(32, "NaCl", PhaseSolid, 250, 1073, -411.2, 72.1, [6]float64{50, 6, 0, 0, 0, 0}, 2)
	return []Row{gas, aqueous, unrelated}
}

// feoRows / o2Rows return formula-specific catalog row sets whose unions
// only partially overlap, exercising the Temperature Range Resolver's
// intersection and coverage logic.
func feoRows() []CatalogRow {
	return []CatalogRow{row(40, "FeO", PhaseSolid, 298, 1650, -272.0, 60.8, [6]float64{45.8, 18.8, 0, 0, -1.6, 0}, 2)}
}

func o2Rows() []CatalogRow {
	return []CatalogRow{row(41, "O2", PhaseGas, 100, 6000, 0, 205.2, [6]float64{30.0, 8.8, -3.0, 0.5, -0.2, 0}, 1)}
}
