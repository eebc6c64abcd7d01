package ring

import (
	"fmt"
)

// Direction is the direction of a transform.
type Direction int

const (
	// Forward is the direction of the NTT.
	Forward = Direction(0)
	// Backward is the direction of the INTT.
	Backward = Direction(1)
)

func (d Direction) String() string {
	switch d {
	case Forward:
		return "Forward"
	case Backward:
		return "Backward"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// Butterfly is the butterfly core shared by the forward and backward transforms.
// Expects x, y, w < p and returns values < p.
//
// Forward (Cooley-Tukey):     (x, y) -> (x + w*y, x - w*y)
// Backward (Gentleman-Sande): (x, y) -> (x + y, w*(x - y))
func (p Prime) Butterfly(x, y, w uint64, dir Direction) (X, Y uint64) {
	if dir == Forward {
		V := p.Mul(y, w)
		return p.Add(x, V), p.Sub(x, V)
	}
	return p.Add(x, y), p.Mul(p.Sub(x, y), w)
}

// NTT evaluates p2 = NTT(p1): the negacyclic forward transform
// in Z_q[X]/(X^N+1), from natural to bit-reversed order.
func (r Ring) NTT(p1, p2 []uint64) {

	// Sanity check
	if len(p1) < r.N || len(p2) < r.N {
		panic(fmt.Sprintf("cannot NTT: ensure that len(p1)=%d and len(p2)=%d >= N=%d", len(p1), len(p2), r.N))
	}

	if DebugAssertions {
		AssertReduced("NTT input", p1[:r.N], r.Modulus)
	}

	N := r.N
	roots := r.RootsForward

	if !sameArray(p1, p2) {
		copy(p2[:N], p1[:N])
	}

	t := N >> 1
	for m := 1; m < N; m <<= 1 {
		for i := 0; i < m; i++ {
			j1 := (i * t) << 1
			j2 := j1 + t
			F := roots[m+i]
			for jx, jy := j1, j2; jx < j2; jx, jy = jx+1, jy+1 {
				p2[jx], p2[jy] = r.Butterfly(p2[jx], p2[jy], F, Forward)
			}
		}
		t >>= 1
	}
	if DebugAssertions {
		AssertReduced("NTT output", p2[:N], r.Modulus)
	}
}

// INTT evaluates p2 = INTT(p1): the negacyclic backward transform
// in Z_q[X]/(X^N+1), from bit-reversed to natural order, including
// the normalization by N^-1.
func (r Ring) INTT(p1, p2 []uint64) {
	r.INTTWithoutNormalization(p1, p2)
	MulScalarVec(p2[:r.N], r.NInv, p2[:r.N], r.Prime)

	if DebugAssertions {
		AssertReduced("INTT normalized output", p2[:r.N], r.Modulus)
	}
}

// INTTWithoutNormalization evaluates p2 = N * INTT(p1).
func (r Ring) INTTWithoutNormalization(p1, p2 []uint64) {

	// Sanity check
	if len(p1) < r.N || len(p2) < r.N {
		panic(fmt.Sprintf("cannot INTT: ensure that len(p1)=%d and len(p2)=%d >= N=%d", len(p1), len(p2), r.N))
	}

	if DebugAssertions {
		AssertReduced("INTT input", p1[:r.N], r.Modulus)
	}

	N := r.N
	roots := r.RootsBackward

	if !sameArray(p1, p2) {
		copy(p2[:N], p1[:N])
	}

	t := 1
	for h := N >> 1; h > 0; h >>= 1 {
		for i := 0; i < h; i++ {
			j1 := (i * t) << 1
			j2 := j1 + t
			F := roots[h+i]
			for jx, jy := j1, j2; jx < j2; jx, jy = jx+1, jy+1 {
				p2[jx], p2[jy] = r.Butterfly(p2[jx], p2[jy], F, Backward)
			}
		}
		t <<= 1
	}
	if DebugAssertions {
		AssertReduced("INTT output", p2[:N], r.Modulus)
	}
}

// Transform applies the transform of the given direction.
func (r Ring) Transform(p1, p2 []uint64, dir Direction) {
	if dir == Forward {
		r.NTT(p1, p2)
	} else {
		r.INTT(p1, p2)
	}
}

func sameArray(a, b []uint64) bool {
	return len(a) > 0 && len(b) > 0 && &a[0] == &b[0]
}
