package ring

import (
	"fmt"
	"math/bits"

	"github.com/intel/hexl-fpga-sub001/utils"
)

const (
	// MinimumRingDegree is the minimum ring degree supported by the transforms.
	MinimumRingDegree = 16

	// MaximumRingDegree is the maximum ring degree supported by the transforms.
	MaximumRingDegree = 1 << 17
)

// Ring is a struct storing the per-prime configuration of the NTT:
// the modulus with its precomputed reduction constants, the 2N-th primitive
// root of unity and the tables derived from it.
type Ring struct {
	Prime

	// Polynomial nb.Coefficients
	N int

	// NthRoot is the order of the primitive root (2N).
	NthRoot uint64

	*NTTTable // NTT related constants
}

// NTTTable store all the constants that are specifically tied to the NTT.
type NTTTable struct {
	Psi           uint64   // 2N-th primitive root
	PsiInv        uint64   // Psi^-1
	RootsForward  []uint64 // powers of Psi in bit-reversed order
	RootsBackward []uint64 // powers of PsiInv in bit-reversed order
	NInv          uint64   // N^-1 mod Modulus
}

// NewRing creates a new [Ring] of degree N and modulus q and generates its NTT tables.
// An error is returned with a nil *Ring in the case of non NTT-enabling parameters.
func NewRing(N int, q uint64) (r *Ring, err error) {

	if err = checkRingDegree(N); err != nil {
		return nil, err
	}

	var p Prime
	if p, err = NewPrime(q); err != nil {
		return nil, err
	}

	r = &Ring{
		Prime:    p,
		N:        N,
		NthRoot:  uint64(2 * N),
		NTTTable: new(NTTTable),
	}

	if err = r.GenNTTTable(); err != nil {
		return nil, err
	}

	return
}

func checkRingDegree(N int) error {
	if N < MinimumRingDegree || N > MaximumRingDegree || !utils.IsPowerOfTwo(N) {
		return fmt.Errorf("invalid ring degree %d: must be a power of two in [%d, %d]", N, MinimumRingDegree, MaximumRingDegree)
	}
	return nil
}

// LogN returns log2(N).
func (r Ring) LogN() int {
	return bits.Len64(uint64(r.N) - 1)
}

// NewPoly allocates a new [Poly] of N coefficients.
func (r Ring) NewPoly() Poly {
	return NewPoly(r.N)
}

// GenNTTTable generates the NTT tables for the target Ring.
func (r *Ring) GenNTTTable() (err error) {

	q := r.Modulus
	NthRoot := r.NthRoot

	if q&(NthRoot-1) != 1 {
		return fmt.Errorf("invalid modulus: %d != 1 mod NthRoot=%d", q, NthRoot)
	}

	if r.Psi, err = PrimitiveNthRoot(q, NthRoot); err != nil {
		return
	}

	r.PsiInv = ModInverse(r.Psi, q)
	r.NInv = ModInverse(uint64(r.N), q)

	logN := r.LogN()

	r.RootsForward = make([]uint64, r.N)
	r.RootsBackward = make([]uint64, r.N)

	r.RootsForward[0] = 1
	r.RootsBackward[0] = 1

	// RootsForward[brv(j)] = Psi^j and RootsBackward[brv(j)] = Psi^-j
	for j := uint64(1); j < uint64(r.N); j++ {

		indexReversePrev := utils.BitReverse64(j-1, logN)
		indexReverseNext := utils.BitReverse64(j, logN)

		r.RootsForward[indexReverseNext] = r.Mul(r.RootsForward[indexReversePrev], r.Psi)
		r.RootsBackward[indexReverseNext] = r.Mul(r.RootsBackward[indexReversePrev], r.PsiInv)
	}

	return
}

// PrimitiveNthRoot returns a primitive NthRoot-th root of unity mod q, where NthRoot
// is a power of two dividing q-1. Since the order of the candidate psi = g^((q-1)/NthRoot)
// divides NthRoot, psi is primitive if and only if psi^(NthRoot/2) = -1 mod q;
// this avoids the factorization of q-1.
func PrimitiveNthRoot(q, NthRoot uint64) (psi uint64, err error) {

	if !utils.IsPowerOfTwo(NthRoot) || (q-1)%NthRoot != 0 {
		return 0, fmt.Errorf("invalid NthRoot=%d: must be a power of two dividing q-1=%d", NthRoot, q-1)
	}

	for g := uint64(2); g < q; g++ {
		psi = ModExp(g, (q-1)/NthRoot, q)
		if ModExp(psi, NthRoot>>1, q) == q-1 {
			return psi, nil
		}
	}

	return 0, fmt.Errorf("cannot find a primitive %d-th root of unity mod %d", NthRoot, q)
}
