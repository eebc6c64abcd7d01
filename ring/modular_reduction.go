package ring

import (
	"math/big"
	"math/bits"

	"github.com/intel/hexl-fpga-sub001/utils/bignum"
)

// AddMod returns a + b mod p.
// Expects a, b < p.
func AddMod(a, b, p uint64) (r uint64) {
	if DebugAssertions {
		assertOperands("AddMod", a, b, p)
	}
	r = a + b
	if r >= p {
		r -= p
	}
	return
}

// SubMod returns a - b mod p.
// Expects a, b < p.
func SubMod(a, b, p uint64) (r uint64) {
	if DebugAssertions {
		assertOperands("SubMod", a, b, p)
	}
	r = a + p - b
	if r >= p {
		r -= p
	}
	return
}

// GetBarrettFactor returns floor(2^(2k)/p) where k = bitlen(p).
func GetBarrettFactor(p uint64) uint64 {
	k := bits.Len64(p)
	r := new(big.Int).Lsh(bignum.NewInt(1), uint(2*k))
	return r.Quo(r, bignum.NewInt(p)).Uint64()
}

// MulModLazy returns a * b mod p in [0, 2p-1] using a Barrett reduction
// parameterized by k = bitlen(p) and r = floor(2^(2k)/p).
// Expects a, b < p < 2^60.
//
// The quotient estimate floor(a*b*r / 2^(2k)) undershoots the true quotient
// by at most one, hence the single conditional subtraction left to the caller.
func MulModLazy(a, b, p, r uint64, k int) uint64 {

	if DebugAssertions {
		assertOperands("MulMod", a, b, p)
	}

	zhi, zlo := bits.Mul64(a, b)

	// z * r = [l1, h1] + [0, l2, h2]
	h1, l1 := bits.Mul64(zlo, r)
	h2, l2 := bits.Mul64(zhi, r)
	mid, c := bits.Add64(h1, l2, 0)
	top := h2 + c

	var q uint64
	if s := uint(2 * k); s >= 64 {
		q = (mid >> (s - 64)) | (top << (128 - s))
	} else {
		q = (l1 >> s) | (mid << (64 - s))
	}

	return zlo - q*p
}

// MulMod returns a * b mod p in [0, p-1].
// Expects a, b < p < 2^60.
func MulMod(a, b, p, r uint64, k int) (y uint64) {
	if y = MulModLazy(a, b, p, r, k); y >= p {
		y -= p
	}
	return
}

// GetBRedConstant computes the constant for the BRed algorithm.
// Returns ((2^128)/q)/(2^64) and (2^128)/q mod 2^64.
func GetBRedConstant(q uint64) [2]uint64 {
	bigR := new(big.Int).Lsh(bignum.NewInt(1), 128)
	bigR.Quo(bigR, bignum.NewInt(q))

	mhi := new(big.Int).Rsh(bigR, 64).Uint64()
	mlo := bigR.Uint64()

	return [2]uint64{mhi, mlo}
}

// BRedAdd computes a mod q for any 64-bit a.
func BRedAdd(a, q uint64, u [2]uint64) (r uint64) {
	mhi, _ := bits.Mul64(a, u[0])
	r = a - mhi*q
	if r >= q {
		r -= q
	}
	return
}

// BRedAddLazy computes a mod q in constant time.
// The result is between 0 and 2*q-1.
func BRedAddLazy(x, q uint64, u [2]uint64) uint64 {
	s0, _ := bits.Mul64(x, u[0])
	return x - s0*q
}

// BRed computes x*y mod q with a Barrett reduction over a radix of 2^128.
func BRed(x, y, q uint64, u [2]uint64) (r uint64) {

	var lhi, mhi, mlo, s0, s1, carry uint64

	ahi, alo := bits.Mul64(x, y)

	// (alo*ulo)>>64

	lhi, _ = bits.Mul64(alo, u[1])

	// ((ahi*ulo + alo*uhi) + (alo*ulo))>>64

	mhi, mlo = bits.Mul64(alo, u[0])

	s0, carry = bits.Add64(mlo, lhi, 0)

	s1 = mhi + carry

	mhi, mlo = bits.Mul64(ahi, u[1])

	_, carry = bits.Add64(mlo, s0, 0)

	lhi = mhi + carry

	// (ahi*uhi) + (((ahi*ulo + alo*uhi) + (alo*ulo))>>64)

	s0 = ahi*u[0] + s1 + lhi

	r = alo - s0*q

	if r >= q {
		r -= q
	}

	return
}

// ReduceUint128 returns (hi * 2^64 + lo) mod q, where twoTo64 = 2^64 mod q.
func ReduceUint128(hi, lo, q, twoTo64 uint64, u [2]uint64) uint64 {
	return CRed(BRed(BRedAdd(hi, q, u), twoTo64, q, u)+BRedAdd(lo, q, u), q)
}

// CRed reduce returns a mod q, where
// a is required to be in the range [0, 2q-1].
func CRed(a, q uint64) uint64 {
	if a >= q {
		return a - q
	}
	return a
}

// ModExp returns x^e mod q.
func ModExp(x, e, q uint64) (y uint64) {
	brc := GetBRedConstant(q)
	y = 1
	x = BRedAdd(x, q, brc)
	for i := e; i > 0; i >>= 1 {
		if i&1 == 1 {
			y = BRed(y, x, q, brc)
		}
		x = BRed(x, x, q, brc)
	}
	return
}

// ModInverse returns x^-1 mod q for a prime q.
func ModInverse(x, q uint64) uint64 {
	return ModExp(x, q-2, q)
}
