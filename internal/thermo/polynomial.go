package thermo

import "math"

// Cp evaluates the Shomate-style heat capacity polynomial for row at
// temperature T (Kelvin):
//
//	Cp(T) = f1 + f2*t + f3*t^2 + f4*t^3 + f5/t^2,  t = T/1000
//
// T must be > 0 and finite; Cp is undefined at t=0 because of the f5/t^2
// term.
func Cp(row Row, T float64) (float64, error) {
	if err := validateTemperature(T); err != nil {
		return 0, err
	}
	t := T / 1000
	c := row.Coeffs()
	cp := c[0] + c[1]*t + c[2]*t*t + c[3]*t*t*t + c[4]/(t*t)
	if math.IsNaN(cp) || math.IsInf(cp, 0) {
		return 0, &InvalidTemperatureError{T: T}
	}
	return cp, nil
}

// H evaluates enthalpy at T via the closed-form Shomate antiderivative,
// anchored at the row's h298 reference value:
//
//	H(T) = h298 + integral_298.15^T Cp(tau) dtau
func H(row Row, T float64) (float64, error) {
	if err := validateTemperature(T); err != nil {
		return 0, err
	}
	hAtT, err := shomateH(row, T)
	if err != nil {
		return 0, err
	}
	hAtRef, err := shomateH(row, StandardTemperature)
	if err != nil {
		return 0, err
	}
	h := row.H298() + (hAtT - hAtRef)
	if math.IsNaN(h) || math.IsInf(h, 0) {
		return 0, &InvalidTemperatureError{T: T}
	}
	return h, nil
}

// S evaluates entropy at T, anchored at the row's s298 reference value:
//
//	S(T) = s298 + integral_298.15^T Cp(tau)/tau dtau
func S(row Row, T float64) (float64, error) {
	if err := validateTemperature(T); err != nil {
		return 0, err
	}
	sAtT, err := shomateS(row, T)
	if err != nil {
		return 0, err
	}
	sAtRef, err := shomateS(row, StandardTemperature)
	if err != nil {
		return 0, err
	}
	s := row.S298() + (sAtT - sAtRef)
	if math.IsNaN(s) || math.IsInf(s, 0) {
		return 0, &InvalidTemperatureError{T: T}
	}
	return s, nil
}

// G evaluates Gibbs energy at T: G(T) = H(T) - T*S(T).
func G(row Row, T float64) (float64, error) {
	h, err := H(row, T)
	if err != nil {
		return 0, err
	}
	s, err := S(row, T)
	if err != nil {
		return 0, err
	}
	return h - T*s, nil
}

// HInterval integrates Cp over [tLo, tHi] for row in closed form, without
// an h298 anchor — used by the Multi-Phase Calculator to advance state
// within a segment rather than re-deriving the absolute enthalpy from the
// row's own reference point every step.
func HInterval(row Row, tLo, tHi float64) (float64, error) {
	hi, err := shomateH(row, tHi)
	if err != nil {
		return 0, err
	}
	lo, err := shomateH(row, tLo)
	if err != nil {
		return 0, err
	}
	return hi - lo, nil
}

// SInterval integrates Cp(tau)/tau over [tLo, tHi] for row in closed form.
func SInterval(row Row, tLo, tHi float64) (float64, error) {
	hi, err := shomateS(row, tHi)
	if err != nil {
		return 0, err
	}
	lo, err := shomateS(row, tLo)
	if err != nil {
		return 0, err
	}
	return hi - lo, nil
}

// shomateH returns the antiderivative of Cp(tau) d(tau), in terms of T in
// Kelvin, evaluated via t = T/1000:
//
//	integral (f1 + f2 t + f3 t^2 + f4 t^3 + f5/t^2) dt
//	  = f1*t + f2*t^2/2 + f3*t^3/3 + f4*t^4/4 - f5/t
//
// Units: with t = T/1000 the polynomial integral is in kJ/mol; this
// function multiplies it by 1000 and returns J/mol, the unit of h298.
func shomateH(row Row, T float64) (float64, error) {
	if err := validateTemperature(T); err != nil {
		return 0, err
	}
	t := T / 1000
	c := row.Coeffs()
	// kJ/mol by the standard Shomate convention, converted to J/mol.
	kJ := c[0]*t + c[1]*t*t/2 + c[2]*t*t*t/3 + c[3]*t*t*t*t/4 - c[4]/t
	return kJ * 1000, nil
}

// shomateS returns the antiderivative of Cp(tau)/tau d(tau):
//
//	integral (f1/t + f2 + f3 t + f4 t^2 + f5/t^3) dt
//	  = f1*ln(t) + f2*t + f3*t^2/2 + f4*t^3/3 - f5/(2 t^2)
//
// in J/(mol*K) (Shomate S is conventionally already in these units, no
// further conversion needed beyond the same t = T/1000 substitution).
func shomateS(row Row, T float64) (float64, error) {
	if err := validateTemperature(T); err != nil {
		return 0, err
	}
	t := T / 1000
	c := row.Coeffs()
	s := c[0]*math.Log(t) + c[1]*t + c[2]*t*t/2 + c[3]*t*t*t/3 - c[4]/(2*t*t)
	return s, nil
}

func validateTemperature(T float64) error {
	if T <= 0 || math.IsNaN(T) || math.IsInf(T, 0) {
		return &InvalidTemperatureError{T: T}
	}
	return nil
}

// TrajectoryState is the explicit, restartable iterator state for
// trajectory evaluation over a single row (§4.1 "lazy, restartable
// sequence"): (segment_index analogue for a single row is implicit —
// callers driving a multi-segment walk track their own segment index and
// re-anchor this state at each segment boundary; CalculateMultiPhase does
// not use this type and evaluates each target temperature directly).
type TrajectoryState struct {
	Row    Row
	Ts     []float64 // sorted ascending emit temperatures
	idx    int
}

// NewTrajectoryState builds an iterator over row for the sorted
// temperatures ts.
func NewTrajectoryState(row Row, ts []float64) *TrajectoryState {
	return &TrajectoryState{Row: row, Ts: ts}
}

// TrajectoryPoint is one emitted sample.
type TrajectoryPoint struct {
	T       float64
	Cp, H, S, G float64
}

// Next advances the iterator and returns the next point, or ok=false when
// exhausted. It never re-derives prior points: each call is O(1) beyond
// the closed-form antiderivative evaluation.
func (it *TrajectoryState) Next() (pt TrajectoryPoint, ok bool, err error) {
	if it.idx >= len(it.Ts) {
		return TrajectoryPoint{}, false, nil
	}
	T := it.Ts[it.idx]
	it.idx++

	cp, err := Cp(it.Row, T)
	if err != nil {
		return TrajectoryPoint{}, false, err
	}
	h, err := H(it.Row, T)
	if err != nil {
		return TrajectoryPoint{}, false, err
	}
	s, err := S(it.Row, T)
	if err != nil {
		return TrajectoryPoint{}, false, err
	}
	g := h - T*s
	return TrajectoryPoint{T: T, Cp: cp, H: h, S: s, G: g}, true, nil
}
