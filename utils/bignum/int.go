// Package bignum implements arbitrary precision helpers used to derive
// constants and to check results of the word-sized RNS arithmetic.
package bignum

import (
	"math/big"

	"golang.org/x/exp/constraints"
)

// NewInt returns x as a new *big.Int.
func NewInt[T constraints.Integer](x T) *big.Int {
	if x < 0 {
		return new(big.Int).SetInt64(int64(x))
	}
	return new(big.Int).SetUint64(uint64(x))
}

// Product returns the product of the moduli, or 1 if moduli is empty.
func Product(moduli []uint64) (prod *big.Int) {
	prod = big.NewInt(1)
	qi := new(big.Int)
	for _, q := range moduli {
		prod.Mul(prod, qi.SetUint64(q))
	}
	return
}

// CenterMod returns the representative of x mod m in [-m/2, m/2), for m > 0.
// For an odd m the interval is [-(m-1)/2, (m-1)/2].
func CenterMod(x, m *big.Int) (y *big.Int) {
	// y = ((x + floor(m/2)) mod m) - floor(m/2)
	half := new(big.Int).Rsh(m, 1)
	y = new(big.Int).Add(x, half)
	y.Mod(y, m)
	return y.Sub(y, half)
}
