package ring

import (
	"fmt"
	"math/bits"

	"github.com/intel/hexl-fpga-sub001/utils"
)

// TwiddleSet is a compressed representation of the bit-reversed root table
// R of a [Ring] for a given vectorization width VEC and direction.
//
// Writing k = sum_s k_s * 2^s, the entry R[k] = w^brv(k) equals the product
// of the factors F_s = w^(N/2^(s+1)) over the set bits of k, where w is the
// primitive 2N-th root (forward) or its inverse (backward). Since VEC is a
// power of two, R[v*VEC + l] = R[v*VEC] * R[l] for l < VEC, hence the set only
// stores the log2(N) factors and the lane segment R[0..VEC).
//
// Incrementing v flips its t trailing ones to zero and sets bit t, so
// R[(v+1)*VEC] = R[v*VEC] * Steps[t], which lets a generator walking
// consecutive vectors update its base with a single multiplication.
//
// A TwiddleSet is read-only once created and can be shared by concurrent generators.
type TwiddleSet struct {
	Prime
	N         int
	VecWidth  int
	Direction Direction

	// Factors[s] = w^(N/2^(s+1)).
	Factors []uint64

	// Segment = R[0..VecWidth).
	Segment []uint64

	// Steps[t] = R[2^t*VEC] / R[(2^t-1)*VEC], for t < log2(N/VEC).
	Steps []uint64
}

// NewTwiddleSet derives the [TwiddleSet] of the [Ring] r for the vectorization width vec.
func NewTwiddleSet(r *Ring, vec int, dir Direction) (ts *TwiddleSet, err error) {

	if err = CheckVecWidth(r.N, vec); err != nil {
		return
	}

	w := r.Psi
	if dir == Backward {
		w = r.PsiInv
	}

	logN := r.LogN()

	ts = &TwiddleSet{
		Prime:     r.Prime,
		N:         r.N,
		VecWidth:  vec,
		Direction: dir,
		Factors:   make([]uint64, logN),
		Segment:   make([]uint64, vec),
	}

	for s := range logN {
		ts.Factors[s] = ModExp(w, uint64(r.N>>(s+1)), r.Modulus)
	}

	for l := range vec {
		ts.Segment[l] = ts.root(uint64(l))
	}

	ts.Steps = make([]uint64, bits.Len64(uint64(r.N/vec))-1)
	for t := range ts.Steps {
		next := ts.root(uint64(vec << t))
		prev := ts.root(uint64(((1 << t) - 1) * vec))
		ts.Steps[t] = ts.Mul(next, ModInverse(prev, r.Modulus))
	}

	return
}

// CheckVecWidth returns an error if vec is not a power of two in [1, N/2].
func CheckVecWidth(N, vec int) error {
	if vec < 1 || vec > N>>1 || !utils.IsPowerOfTwo(vec) {
		return fmt.Errorf("invalid vectorization width %d: must be a power of two in [1, %d]", vec, N>>1)
	}
	return nil
}

// root returns R[k] as the product of the factors selected by the set bits of k.
func (ts TwiddleSet) root(k uint64) (x uint64) {
	x = 1
	for s := 0; k != 0; s, k = s+1, k>>1 {
		if k&1 == 1 {
			x = ts.Mul(x, ts.Factors[s])
		}
	}
	return
}

// Vectors returns the number of twiddle vectors of the set (N/VecWidth).
func (ts TwiddleSet) Vectors() int {
	return ts.N / ts.VecWidth
}

// Vector writes R[v*VecWidth + l] for l < VecWidth on buf.
func (ts TwiddleSet) Vector(v int, buf []uint64) {
	base := ts.root(uint64(v * ts.VecWidth))
	MulScalarVec(ts.Segment, base, buf[:ts.VecWidth], ts.Prime)
}

// Order returns the indexes of the twiddle vectors in the order they
// are consumed by the transform of the direction of the set:
//
//   - Forward: 0, 1, ..., N/VEC-1.
//   - Backward: N/(2VEC), ..., N/VEC-1, then N/(4VEC), ..., N/(2VEC)-1, ..., 1, then 0.
func (ts TwiddleSet) Order() (order []int) {

	n := ts.Vectors()

	if ts.Direction == Forward {
		return utils.RangeSlice(0, n)
	}

	order = make([]int, 0, n)
	for h := n >> 1; h > 0; h >>= 1 {
		order = append(order, utils.RangeSlice(h, 2*h)...)
	}

	return append(order, 0)
}

// Generator returns a new [TwiddleGenerator] emitting the twiddle
// vectors of one prime in consumption order.
func (ts *TwiddleSet) Generator() *TwiddleGenerator {
	return &TwiddleGenerator{
		set:   ts,
		order: ts.Order(),
	}
}

// Expand returns the full table R, equal to [NTTTable.RootsForward]
// or [NTTTable.RootsBackward] depending on the direction.
func (ts TwiddleSet) Expand() (roots []uint64) {
	roots = make([]uint64, ts.N)
	for v := range ts.Vectors() {
		ts.Vector(v, roots[v*ts.VecWidth:])
	}
	return
}

// TwiddleGenerator synthesizes the twiddle vectors of a [TwiddleSet]
// on the fly, one vector per call to Next. The base R[v*VEC] of the
// current vector is carried across calls: runs of consecutive indexes
// cost one multiplication per vector on top of the lane products.
type TwiddleGenerator struct {
	set   *TwiddleSet
	order []int
	i     int

	// base = R[prev*VEC], once a vector has been emitted.
	base uint64
	prev int
}

// Next writes the next twiddle vector on buf and returns true,
// or returns false if all N/VEC vectors have been emitted.
func (g *TwiddleGenerator) Next(buf []uint64) bool {
	if g.i == len(g.order) {
		return false
	}

	ts := g.set
	v := g.order[g.i]

	if g.i > 0 && v == g.prev+1 {
		g.base = ts.Mul(g.base, ts.Steps[bits.TrailingZeros64(^uint64(g.prev))])
	} else {
		g.base = ts.root(uint64(v * ts.VecWidth))
	}
	g.prev = v

	MulScalarVec(ts.Segment, g.base, buf[:ts.VecWidth], ts.Prime)
	g.i++
	return true
}

// Index returns the index of the next vector to be emitted.
func (g TwiddleGenerator) Index() int {
	if g.i == len(g.order) {
		return -1
	}
	return g.order[g.i]
}

// Reset rewinds the generator.
func (g *TwiddleGenerator) Reset() {
	g.i = 0
	g.base, g.prev = 0, 0
}
