package quote

// QuoteMidService applies a skew to a reference mid to produce the price the
// ladder is generated around (§4.5 step 1). Injected so the generator itself
// stays mechanical.
type QuoteMidService interface {
	QuoteMid(referenceMid float64) float64
}

// MidShifter is the default QuoteMidService: a constant additive skew plus a
// position-proportional skew (§4.5: "applies a constant skew and/or a
// position-proportional skew").
type MidShifter struct {
	ConstantSkew      float64
	PositionSkewCoeff float64
	PositionFn        func() float64
}

// QuoteMid returns referenceMid shifted by the configured skews.
func (m *MidShifter) QuoteMid(referenceMid float64) float64 {
	if m == nil {
		return referenceMid
	}
	skew := m.ConstantSkew
	if m.PositionFn != nil {
		skew += m.PositionSkewCoeff * m.PositionFn()
	}
	return referenceMid + skew
}
