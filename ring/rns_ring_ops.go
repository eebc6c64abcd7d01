package ring

// Add evaluates p3 = p1 + p2 row-wise.
func (r RNSRing) Add(p1, p2, p3 RNSPoly) {
	for i, s := range r {
		AddVec(p1.At(i), p2.At(i), p3.At(i), s.Modulus)
	}
}

// Sub evaluates p3 = p1 - p2 row-wise.
func (r RNSRing) Sub(p1, p2, p3 RNSPoly) {
	for i, s := range r {
		SubVec(p1.At(i), p2.At(i), p3.At(i), s.Modulus)
	}
}

// Neg evaluates p2 = -p1 row-wise.
func (r RNSRing) Neg(p1, p2 RNSPoly) {
	for i, s := range r {
		NegVec(p1.At(i), p2.At(i), s.Modulus)
	}
}

// ReduceLazy maps the rows of p1, given in [0, 2q_i), to [0, q_i) on p2.
func (r RNSRing) ReduceLazy(p1, p2 RNSPoly) {
	for i, s := range r {
		CRedVec(p1.At(i), p2.At(i), s.Modulus)
	}
}

// MulCoeffs evaluates p3 = p1 * p2 coefficient-wise.
func (r RNSRing) MulCoeffs(p1, p2, p3 RNSPoly) {
	for i, s := range r {
		MulVec(p1.At(i), p2.At(i), p3.At(i), s.Prime)
	}
}

// MulCoeffsLazy evaluates p3 = p1 * p2 coefficient-wise, with p3 in [0, 2q_i).
func (r RNSRing) MulCoeffsLazy(p1, p2, p3 RNSPoly) {
	for i, s := range r {
		MulLazyVec(p1.At(i), p2.At(i), p3.At(i), s.Prime)
	}
}

// MulCoeffsThenAdd evaluates p3 = p3 + p1 * p2 coefficient-wise.
func (r RNSRing) MulCoeffsThenAdd(p1, p2, p3 RNSPoly) {
	for i, s := range r {
		MulThenAddVec(p1.At(i), p2.At(i), p3.At(i), s.Prime)
	}
}

// MulCoeffsThenAddLazy evaluates p3 = p3 + p1 * p2 coefficient-wise, with p3 in [0, 2q_i).
// A call to [RNSRing.ReduceLazy] brings p3 back to [0, q_i).
func (r RNSRing) MulCoeffsThenAddLazy(p1, p2, p3 RNSPoly) {
	for i, s := range r {
		MulThenAddLazyVec(p1.At(i), p2.At(i), p3.At(i), s.Prime)
	}
}

// NTT evaluates p2 = NTT(p1) row-wise.
func (r RNSRing) NTT(p1, p2 RNSPoly) {
	for i, s := range r {
		s.NTT(p1.At(i), p2.At(i))
	}
}

// INTT evaluates p2 = INTT(p1) row-wise.
func (r RNSRing) INTT(p1, p2 RNSPoly) {
	for i, s := range r {
		s.INTT(p1.At(i), p2.At(i))
	}
}
