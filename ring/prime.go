package ring

import (
	"fmt"
	"math/big"
	"math/bits"
)

// MaxModulusBits is the maximum bit-size of a prime of the RNS basis.
const MaxModulusBits = 60

// Prime stores a word-sized odd prime modulus along with the constants
// derived from it once and reused by every operation under this modulus.
type Prime struct {
	Modulus uint64

	// BitLen is k = bitlen(Modulus).
	BitLen int

	// BarrettFactor is floor(2^(2k)/Modulus).
	BarrettFactor uint64

	// BRedConstant is floor(2^128/Modulus) split in two words.
	BRedConstant [2]uint64

	// Reciprocal is 1/Modulus.
	Reciprocal float64

	// Mask is 2^k - 1.
	Mask uint64

	// TwoTo64 is 2^64 mod Modulus.
	TwoTo64 uint64
}

// NewPrime derives the constants of the prime q.
// Returns an error if q is even, not prime or larger than 2^60.
func NewPrime(q uint64) (p Prime, err error) {

	if q < 3 || q&1 == 0 {
		return p, fmt.Errorf("invalid modulus %d: must be an odd prime", q)
	}

	if bits.Len64(q) > MaxModulusBits {
		return p, fmt.Errorf("invalid modulus %d: bit-size %d > %d", q, bits.Len64(q), MaxModulusBits)
	}

	if !IsPrime(q) {
		return p, fmt.Errorf("invalid modulus %d: not prime", q)
	}

	p.Modulus = q
	p.BitLen = bits.Len64(q)
	p.BarrettFactor = GetBarrettFactor(q)
	p.BRedConstant = GetBRedConstant(q)
	p.Reciprocal = 1 / float64(q)
	p.Mask = (1 << uint64(p.BitLen)) - 1
	p.TwoTo64 = BRedAdd(-q, q, p.BRedConstant) // 2^64 - q = 2^64 mod q

	return
}

// Add returns a + b mod p.
func (p Prime) Add(a, b uint64) uint64 {
	return AddMod(a, b, p.Modulus)
}

// Sub returns a - b mod p.
func (p Prime) Sub(a, b uint64) uint64 {
	return SubMod(a, b, p.Modulus)
}

// Mul returns a * b mod p.
func (p Prime) Mul(a, b uint64) uint64 {
	return MulMod(a, b, p.Modulus, p.BarrettFactor, p.BitLen)
}

// MulLazy returns a * b mod p in [0, 2p-1].
func (p Prime) MulLazy(a, b uint64) uint64 {
	return MulModLazy(a, b, p.Modulus, p.BarrettFactor, p.BitLen)
}

// Reduce returns a mod p for any 64-bit a.
func (p Prime) Reduce(a uint64) uint64 {
	return BRedAdd(a, p.Modulus, p.BRedConstant)
}

// Reduce128 returns (hi * 2^64 + lo) mod p.
func (p Prime) Reduce128(hi, lo uint64) uint64 {
	return ReduceUint128(hi, lo, p.Modulus, p.TwoTo64, p.BRedConstant)
}

// IsPrime applies the Baillie-PSW, which is 100% accurate for numbers bellow 2^64.
func IsPrime(x uint64) bool {
	return new(big.Int).SetUint64(x).ProbablyPrime(0)
}

// NTTFriendlyPrimesGenerator is a struct used to generate NTT friendly primes,
// i.e. primes equal to 1 mod NthRoot.
type NTTFriendlyPrimesGenerator struct {
	logQ                                uint64
	nthRoot, nextPrime, prevPrime, size uint64
	checkNextPrime, checkPrevPrime      bool
}

// NewNTTFriendlyPrimesGenerator instantiates a new [NTTFriendlyPrimesGenerator].
// Primes generated are of the form 2^{BitSize} +/- k * NthRoot + 1.
func NewNTTFriendlyPrimesGenerator(BitSize, NthRoot uint64) NTTFriendlyPrimesGenerator {
	size := uint64(1) << BitSize
	return NTTFriendlyPrimesGenerator{
		logQ:           BitSize,
		nthRoot:        NthRoot,
		size:           size,
		nextPrime:      size + 1,
		prevPrime:      size + 1,
		checkNextPrime: true,
		checkPrevPrime: true,
	}
}

// NextUpstreamPrimes returns the next k primes above 2^{BitSize}.
func (n *NTTFriendlyPrimesGenerator) NextUpstreamPrimes(k int) (primes []uint64, err error) {
	primes = make([]uint64, k)
	for i := range primes {
		if primes[i], err = n.NextUpstreamPrime(); err != nil {
			return
		}
	}
	return
}

// NextDownstreamPrimes returns the next k primes bellow 2^{BitSize}.
func (n *NTTFriendlyPrimesGenerator) NextDownstreamPrimes(k int) (primes []uint64, err error) {
	primes = make([]uint64, k)
	for i := range primes {
		if primes[i], err = n.NextDownstreamPrime(); err != nil {
			return
		}
	}
	return
}

// NextAlternatingPrimes returns the next k primes, alternating between
// above and bellow 2^{BitSize}.
func (n *NTTFriendlyPrimesGenerator) NextAlternatingPrimes(k int) (primes []uint64, err error) {
	primes = make([]uint64, k)
	for i := range primes {
		if primes[i], err = n.NextAlternatingPrime(); err != nil {
			return
		}
	}
	return
}

// NextUpstreamPrime returns the next prime above 2^{BitSize}.
func (n *NTTFriendlyPrimesGenerator) NextUpstreamPrime() (uint64, error) {

	for {

		if !n.checkNextPrime {
			return 0, fmt.Errorf("cannot NextUpstreamPrime: prime list for upstream primes is exhausted (overflow 2^%d)", MaxModulusBits)
		}

		n.nextPrime += n.nthRoot

		if bits.Len64(n.nextPrime) > MaxModulusBits {
			n.checkNextPrime = false
			continue
		}

		if IsPrime(n.nextPrime) {
			return n.nextPrime, nil
		}
	}
}

// NextDownstreamPrime returns the next prime bellow 2^{BitSize}.
func (n *NTTFriendlyPrimesGenerator) NextDownstreamPrime() (uint64, error) {

	for {

		if !n.checkPrevPrime {
			return 0, fmt.Errorf("cannot NextDownstreamPrime: prime list for downstream primes is exhausted")
		}

		if n.prevPrime <= n.nthRoot+1 {
			n.checkPrevPrime = false
			continue
		}

		n.prevPrime -= n.nthRoot

		if IsPrime(n.prevPrime) {
			return n.prevPrime, nil
		}
	}
}

// NextAlternatingPrime returns the next prime, alternating between
// above and bellow 2^{BitSize}.
func (n *NTTFriendlyPrimesGenerator) NextAlternatingPrime() (uint64, error) {

	for {

		if !(n.checkNextPrime || n.checkPrevPrime) {
			return 0, fmt.Errorf("cannot NextAlternatingPrime: prime list for both upstream and downstream primes is exhausted")
		}

		if n.checkNextPrime {

			if bits.Len64(n.nextPrime+n.nthRoot) > MaxModulusBits {
				n.checkNextPrime = false
			} else {

				n.nextPrime += n.nthRoot

				if IsPrime(n.nextPrime) {
					return n.nextPrime, nil
				}
			}
		}

		if n.checkPrevPrime {

			if n.prevPrime <= n.nthRoot+1 {
				n.checkPrevPrime = false
			} else {

				n.prevPrime -= n.nthRoot

				if IsPrime(n.prevPrime) {
					return n.prevPrime, nil
				}
			}
		}
	}
}

// GenModuli generates distinct NTT-friendly primes for the bit-sizes
// logQ and logP, with 2^LogNthRoot dividing q-1 for every prime q.
// Primes of equal bit-size are drawn alternatively above and below 2^bitsize,
// except for 60-bit primes, which are drawn below 2^60.
func GenModuli(LogNthRoot int, logQ, logP []int) (q, p []uint64, err error) {

	generators := map[int]*NTTFriendlyPrimesGenerator{}

	next := func(logqi int) (uint64, error) {

		if logqi < LogNthRoot+1 || logqi > MaxModulusBits {
			return 0, fmt.Errorf("invalid prime bit-size %d: must be in [%d, %d]", logqi, LogNthRoot+1, MaxModulusBits)
		}

		g, ok := generators[logqi]
		if !ok {
			gen := NewNTTFriendlyPrimesGenerator(uint64(logqi), uint64(1)<<LogNthRoot)
			g = &gen
			generators[logqi] = g
		}

		if logqi == MaxModulusBits {
			return g.NextDownstreamPrime()
		}

		return g.NextAlternatingPrime()
	}

	q = make([]uint64, len(logQ))
	for i := range logQ {
		if q[i], err = next(logQ[i]); err != nil {
			return nil, nil, fmt.Errorf("cannot GenModuli: LogQ[%d]: %w", i, err)
		}
	}

	p = make([]uint64, len(logP))
	for i := range logP {
		if p[i], err = next(logP[i]); err != nil {
			return nil, nil, fmt.Errorf("cannot GenModuli: LogP[%d]: %w", i, err)
		}
	}

	return
}
