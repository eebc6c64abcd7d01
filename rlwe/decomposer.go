package rlwe

import (
	"fmt"

	"github.com/intel/hexl-fpga-sub001/ring"
)

// Decomposer breaks polynomials over Q into digits over QP.
// The digit d of a polynomial at level L covers the primes
// [d * DigitSize, min((d+1) * DigitSize, L+1)) of Q. Its residues on
// these primes are copied and the centered value they represent is
// extended to all other primes of Q up to L and to the primes of P.
//
// A Decomposer is read-only and can be shared between goroutines.
type Decomposer struct {
	params Parameters

	// extenders[levelQ][d]
	extenders [][]*ring.BasisExtender
}

// NewDecomposer precomputes the basis extenders of every digit of every level.
func NewDecomposer(params Parameters) (dec *Decomposer, err error) {

	ringQ, ringP := params.RingQ(), params.RingP()

	dec = &Decomposer{
		params:    params,
		extenders: make([][]*ring.BasisExtender, params.MaxLevel()+1),
	}

	for levelQ := range dec.extenders {
		dec.extenders[levelQ] = make([]*ring.BasisExtender, params.Digits(levelQ))
		for d := range dec.extenders[levelQ] {

			start, end := params.DigitRange(levelQ, d)

			to := ringQ[:start].Concat(ringQ[end : levelQ+1]).Concat(ringP)

			if dec.extenders[levelQ][d], err = ring.NewBasisExtender(ringQ[start:end], to); err != nil {
				return nil, fmt.Errorf("cannot NewDecomposer: level %d digit %d: %w", levelQ, d, err)
			}
		}
	}

	return
}

// Digits returns the number of digits of a polynomial at the given level.
func (dec Decomposer) Digits(levelQ int) int {
	return dec.params.Digits(levelQ)
}

// BreakIntoDigit writes on digit the digit d of c.
// c is a polynomial over Q with at least levelQ+1 primes, in the coefficient domain.
// digit is a polynomial over QP at levelQ (levelQ+1 primes of Q followed by the primes of P).
func (dec Decomposer) BreakIntoDigit(levelQ, d int, c, digit ring.RNSPoly) {

	start, end := dec.params.DigitRange(levelQ, d)
	upper := levelQ + 1 + dec.params.PCount()

	for i := start; i < end; i++ {
		copy(digit[i], c[i])
	}

	out := make(ring.RNSPoly, 0, upper-(end-start))
	out = append(out, digit[:start]...)
	out = append(out, digit[end:upper]...)

	dec.extenders[levelQ][d].ExtendBasis(c[start:end], out)
}

// BreakIntoDigits writes on digits[d] the digit d of c, for every digit of c at levelQ,
// in the canonical order d = 0, 1, ...
// Panics if len(digits) is smaller than the number of digits.
func (dec Decomposer) BreakIntoDigits(levelQ int, c ring.RNSPoly, digits []ring.RNSPoly) {

	if n := dec.Digits(levelQ); len(digits) < n {
		panic(fmt.Errorf("cannot BreakIntoDigits: len(digits)=%d < %d", len(digits), n))
	}

	for d := range dec.Digits(levelQ) {
		dec.BreakIntoDigit(levelQ, d, c, digits[d])
	}
}

// BreakIntoDigitsNew allocates the digits of c at levelQ and returns them.
func (dec Decomposer) BreakIntoDigitsNew(levelQ int, c ring.RNSPoly) (digits []ring.RNSPoly) {
	digits = make([]ring.RNSPoly, dec.Digits(levelQ))
	for d := range digits {
		digits[d] = dec.params.RingQP(levelQ).NewRNSPoly()
	}
	dec.BreakIntoDigits(levelQ, c, digits)
	return
}
