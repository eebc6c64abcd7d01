package ring

import (
	"fmt"
)

// lanes is the unrolling factor of the multiply-accumulate kernel.
const lanes = 8

func checkLen(N int, p ...[]uint64) {
	for i, pi := range p {
		if len(pi) != N {
			panic(fmt.Errorf("invalid operand length: len(p%d)=%d != %d", i+2, len(pi), N))
		}
	}
}

// AddVec evaluates p3 = p1 + p2 mod modulus.
func AddVec(p1, p2, p3 []uint64, modulus uint64) {
	checkLen(len(p1), p2, p3)
	for i, x := range p1 {
		p3[i] = CRed(x+p2[i], modulus)
	}
}

// SubVec evaluates p3 = p1 - p2 mod modulus.
func SubVec(p1, p2, p3 []uint64, modulus uint64) {
	checkLen(len(p1), p2, p3)
	for i, x := range p1 {
		p3[i] = CRed(x+modulus-p2[i], modulus)
	}
}

// NegVec evaluates p2 = -p1 mod modulus.
func NegVec(p1, p2 []uint64, modulus uint64) {
	checkLen(len(p1), p2)
	for i, x := range p1 {
		p2[i] = CRed(modulus-x, modulus)
	}
}

// CRedVec evaluates p2 = p1 mod modulus for p1 in [0, 2*modulus).
func CRedVec(p1, p2 []uint64, modulus uint64) {
	checkLen(len(p1), p2)
	for i, x := range p1 {
		p2[i] = CRed(x, modulus)
	}
}

// MulVec evaluates p3 = p1 * p2 mod p.
func MulVec(p1, p2, p3 []uint64, p Prime) {
	checkLen(len(p1), p2, p3)
	q, r, k := p.Modulus, p.BarrettFactor, p.BitLen
	for i, x := range p1 {
		p3[i] = MulMod(x, p2[i], q, r, k)
	}
}

// MulLazyVec evaluates p3 = p1 * p2 mod p with p3 in [0, 2p).
func MulLazyVec(p1, p2, p3 []uint64, p Prime) {
	checkLen(len(p1), p2, p3)
	q, r, k := p.Modulus, p.BarrettFactor, p.BitLen
	for i, x := range p1 {
		p3[i] = MulModLazy(x, p2[i], q, r, k)
	}
}

// MulThenAddLazyVec evaluates p3 = p3 + p1 * p2 mod p, keeping p3 in [0, 2p).
// Expects p1, p2 < p and p3 < 2p. A single call to [CRedVec] brings p3 back to [0, p).
func MulThenAddLazyVec(p1, p2, p3 []uint64, p Prime) {

	N := len(p1)
	checkLen(N, p2, p3)

	q, r, k := p.Modulus, p.BarrettFactor, p.BitLen
	twoq := q << 1

	j := 0
	for ; j+lanes <= N; j += lanes {
		x := (*[lanes]uint64)(p1[j : j+lanes])
		y := (*[lanes]uint64)(p2[j : j+lanes])
		z := (*[lanes]uint64)(p3[j : j+lanes])
		for l := range lanes {
			z[l] = CRed(z[l]+MulModLazy(x[l], y[l], q, r, k), twoq)
		}
	}

	for ; j < N; j++ {
		p3[j] = CRed(p3[j]+MulModLazy(p1[j], p2[j], q, r, k), twoq)
	}
}

// MulThenAddVec evaluates p3 = p3 + p1 * p2 mod p.
func MulThenAddVec(p1, p2, p3 []uint64, p Prime) {
	checkLen(len(p1), p2, p3)
	for i, x := range p1 {
		p3[i] = p.Add(p3[i], p.Mul(x, p2[i]))
	}
}

// MulScalarVec evaluates p2 = p1 * scalar mod p.
func MulScalarVec(p1 []uint64, scalar uint64, p2 []uint64, p Prime) {
	checkLen(len(p1), p2)
	q, r, k := p.Modulus, p.BarrettFactor, p.BitLen
	for i, x := range p1 {
		p2[i] = MulMod(x, scalar, q, r, k)
	}
}

// MulScalarThenAddVec evaluates p2 = p2 + p1 * scalar mod p.
func MulScalarThenAddVec(p1 []uint64, scalar uint64, p2 []uint64, p Prime) {
	checkLen(len(p1), p2)
	for i, x := range p1 {
		p2[i] = p.Add(p2[i], p.Mul(x, scalar))
	}
}

// ZeroVec sets all values of p1 to zero.
func ZeroVec(p1 []uint64) {
	clear(p1)
}

// OneVec sets all values of p1 to one.
func OneVec(p1 []uint64) {
	for i := range p1 {
		p1[i] = 1
	}
}
