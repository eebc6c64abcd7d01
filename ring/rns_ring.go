// Package ring implements RNS-accelerated modular arithmetic operations for polynomials, including:
// Barrett modular reduction, number theoretic transform (NTT), on-the-fly twiddle factor generation,
// RNS basis extension and uniform sampling.
package ring

import (
	"fmt"
	"math/big"

	"github.com/intel/hexl-fpga-sub001/utils"
	"github.com/intel/hexl-fpga-sub001/utils/bignum"
)

// RNSRing is an ordered RNS basis: one [Ring] per prime, all of the same degree.
// Row i of an [RNSPoly] is reduced by the i-th [Ring].
type RNSRing []*Ring

// NewRNSRing returns the [RNSRing] of degree N over the given primes.
// The primes must be distinct and each must be NTT friendly for N.
func NewRNSRing(N int, Moduli []uint64) (RNSRing, error) {

	switch {
	case len(Moduli) == 0:
		return nil, fmt.Errorf("invalid Moduli: must be a non-empty []uint64")
	case !utils.AllDistinct(Moduli):
		return nil, fmt.Errorf("invalid Moduli: moduli must be distinct")
	}

	r := make(RNSRing, len(Moduli))
	for i, q := range Moduli {
		var err error
		if r[i], err = NewRing(N, q); err != nil {
			return nil, fmt.Errorf("NewRing(%d, Moduli[%d]): %w", N, i, err)
		}
	}

	return r, nil
}

// N returns the ring degree.
func (r RNSRing) N() int {
	return r[0].N
}

// NthRoot returns 2N.
func (r RNSRing) NthRoot() uint64 {
	return r[0].NthRoot
}

// ModuliChainLength returns the number of primes.
func (r RNSRing) ModuliChainLength() int {
	return len(r)
}

// Level returns the index of the last prime.
func (r RNSRing) Level() int {
	return len(r) - 1
}

// MaxLevel is an alias of [RNSRing.Level].
func (r RNSRing) MaxLevel() int {
	return r.Level()
}

// AtLevel returns the sub-basis of the primes 0 to level.
// The returned value shares its rings with the receiver and can be used concurrently.
func (r RNSRing) AtLevel(level int) RNSRing {
	if level < 0 || level > r.Level() {
		panic(fmt.Errorf("cannot AtLevel: level %d not in [0, %d]", level, r.Level()))
	}
	return r[:level+1]
}

// Concat returns a new basis made of the primes of the receiver followed by the primes of other.
func (r RNSRing) Concat(other RNSRing) RNSRing {
	out := make(RNSRing, len(r), len(r)+len(other))
	copy(out, r)
	return append(out, other...)
}

// ModuliChain returns the primes of the basis.
func (r RNSRing) ModuliChain() []uint64 {
	moduli := make([]uint64, len(r))
	for i, s := range r {
		moduli[i] = s.Modulus
	}
	return moduli
}

// Modulus returns the product of the primes of the basis.
func (r RNSRing) Modulus() *big.Int {
	return bignum.Product(r.ModuliChain())
}

// LogModulus returns log2 of [RNSRing.Modulus].
func (r RNSRing) LogModulus() float64 {
	return bignum.Log2(r.Modulus(), 128)
}

// NewRNSPoly allocates a zero [RNSPoly] with one row per prime.
func (r RNSRing) NewRNSPoly() RNSPoly {
	return NewRNSPoly(r.N(), r.Level())
}

// SetCoefficientsBigint writes coeffs mod q_i into row i of p1, for each prime q_i.
// Negative values are mapped to their non-negative representative.
func (r RNSRing) SetCoefficientsBigint(coeffs []big.Int, p1 RNSPoly) {
	q := new(big.Int)
	tmp := new(big.Int)
	for i, s := range r {
		q.SetUint64(s.Modulus)
		row := p1.At(i)
		for j := range coeffs {
			row[j] = tmp.Mod(&coeffs[j], q).Uint64()
		}
	}
}

// crtBasis returns Q and the CRT basis e_i = (Q/q_i) * ((Q/q_i)^-1 mod q_i).
func (r RNSRing) crtBasis() (Q *big.Int, e []*big.Int) {
	Q = r.Modulus()
	e = make([]*big.Int, len(r))
	q := new(big.Int)
	for i, s := range r {
		q.SetUint64(s.Modulus)
		qHat := new(big.Int).Quo(Q, q)
		e[i] = new(big.Int).ModInverse(qHat, q)
		e[i].Mul(e[i], qHat)
	}
	return
}

// PolyToBigint reconstructs the coefficients of p1 in [0, Q) by CRT.
func (r RNSRing) PolyToBigint(p1 RNSPoly, coeffsBigint []big.Int) {
	Q, e := r.crtBasis()
	tmp := new(big.Int)
	for j := range r.N() {
		acc := &coeffsBigint[j]
		acc.SetUint64(0)
		for i := range r {
			acc.Add(acc, tmp.Mul(tmp.SetUint64(p1.At(i)[j]), e[i]))
		}
		acc.Mod(acc, Q)
	}
}

// PolyToBigintCentered reconstructs the coefficients of p1 in [-Q/2, Q/2) by CRT.
func (r RNSRing) PolyToBigintCentered(p1 RNSPoly, values []big.Int) {
	r.PolyToBigint(p1, values)
	Q := r.Modulus()
	for i := range values[:r.N()] {
		values[i].Set(bignum.CenterMod(&values[i], Q))
	}
}

// Equal returns true if p1 and p2 agree on the rows of the basis.
func (r RNSRing) Equal(p1, p2 RNSPoly) bool {

	if p1.Level() < r.Level() || p2.Level() < r.Level() {
		return false
	}

	for i := range r {
		if !p1.At(i).Equal(&p2[i]) {
			return false
		}
	}

	return true
}
