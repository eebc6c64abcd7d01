// Package pipeline implements a dataflow rendition of the key-switching and
// tensor-product operations: stages run as goroutines connected by bounded
// channels and exchange a stream of prime-index tokens together with the
// coefficients of each prime as vectors of VecWidth lanes.
//
// A pipeline runs until its driving prime-index stream is exhausted; each
// stage closes its outputs once its inputs are closed. The stages of a
// pipeline only block on empty inputs or full outputs.
package pipeline

import (
	"fmt"

	"github.com/intel/hexl-fpga-sub001/ring"
	"github.com/intel/hexl-fpga-sub001/rlwe"
)

// Vec is a vector of VecWidth coefficients or twiddle factors.
type Vec []uint64

// Context stores the read-only tables shared by all the stages of all the
// pipelines built on the same parameters: the global prime table Q ∪ P,
// the rings and the twiddle sets of each prime, and the constants of the
// digit decomposition and of the division by P.
type Context struct {
	params rlwe.Parameters

	// primes of Q followed by the primes of P
	rings    []*ring.Ring
	twiddles [2][]*ring.TwiddleSet

	decomposer *rlwe.Decomposer
	modDowner  *ring.ModDowner
}

// NewContext derives the tables of every prime of Q ∪ P.
// Returns an error if a twiddle set cannot be generated.
func NewContext(params rlwe.Parameters) (ctx *Context, err error) {

	ctx = &Context{params: params}

	ctx.rings = append(append([]*ring.Ring{}, params.RingQ()...), params.RingP()...)

	for _, dir := range []ring.Direction{ring.Forward, ring.Backward} {
		ctx.twiddles[dir] = make([]*ring.TwiddleSet, len(ctx.rings))
		for i, r := range ctx.rings {
			if ctx.twiddles[dir][i], err = ring.NewTwiddleSet(r, params.VecWidth(), dir); err != nil {
				return nil, fmt.Errorf("cannot NewContext: prime %d: %w", i, err)
			}
		}
	}

	if ctx.decomposer, err = rlwe.NewDecomposer(params); err != nil {
		return nil, fmt.Errorf("cannot NewContext: %w", err)
	}

	if ctx.modDowner, err = ring.NewModDowner(params.RingQ(), params.RingP()); err != nil {
		return nil, fmt.Errorf("cannot NewContext: %w", err)
	}

	return
}

// Parameters returns the parameters of the context.
func (ctx Context) Parameters() rlwe.Parameters {
	return ctx.params
}

// N returns the ring degree.
func (ctx Context) N() int {
	return ctx.params.N()
}

// VecWidth returns the number of lanes per vector.
func (ctx Context) VecWidth() int {
	return ctx.params.VecWidth()
}

// Vectors returns the number of vectors per prime.
func (ctx Context) Vectors() int {
	return ctx.params.N() / ctx.params.VecWidth()
}

// Primes returns the size of the global prime table.
func (ctx Context) Primes() int {
	return len(ctx.rings)
}

// Ring returns the ring of the prime of global index i.
func (ctx Context) Ring(i int) *ring.Ring {
	return ctx.rings[i]
}

// TwiddleSet returns the twiddle set of the prime of global index i for the given direction.
func (ctx Context) TwiddleSet(i int, dir ring.Direction) *ring.TwiddleSet {
	return ctx.twiddles[dir][i]
}

// QPIndices returns the global indices of the primes of Q up to levelQ followed by the primes of P.
func (ctx Context) QPIndices(levelQ int) (idx []int) {
	idx = make([]int, 0, levelQ+1+ctx.params.PCount())
	for i := range levelQ + 1 {
		idx = append(idx, i)
	}
	for i := range ctx.params.PCount() {
		idx = append(idx, ctx.params.QCount()+i)
	}
	return
}

// QIndices returns the global indices of the primes of Q up to levelQ.
func (ctx Context) QIndices(levelQ int) []int {
	return ctx.QPIndices(levelQ)[:levelQ+1]
}

func (ctx Context) channelVec() chan Vec {
	return make(chan Vec, ctx.params.QueueCapacity())
}

func (ctx Context) channelInt() chan int {
	return make(chan int, ctx.params.QueueCapacity())
}

// HostPoly is the host representation of an RNS polynomial: Coeffs is a flat
// array indexed [prime][coefficient] and Primes[i] is the global index, in the
// table Q ∪ P of the context, of the prime of the i-th row.
type HostPoly struct {
	Coeffs []uint64
	Primes []int
}

// NewHostPoly returns a [HostPoly] with zero coefficients over the given primes.
func NewHostPoly(N int, primes []int) HostPoly {
	return HostPoly{Coeffs: make([]uint64, N*len(primes)), Primes: append([]int{}, primes...)}
}

// HostPolyFromRNSPoly copies p, whose rows are over the primes of global indices primes, into a [HostPoly].
func HostPolyFromRNSPoly(p ring.RNSPoly, primes []int) HostPoly {
	N := p.N()
	hp := NewHostPoly(N, primes)
	for i := range primes {
		copy(hp.Coeffs[i*N:], p[i])
	}
	return hp
}

// Row returns the coefficients of the i-th row.
func (hp HostPoly) Row(N, i int) []uint64 {
	return hp.Coeffs[i*N : (i+1)*N]
}

// RNSPoly returns a view of the receiver as an [ring.RNSPoly] sharing its backing array.
func (hp HostPoly) RNSPoly(N int) (p ring.RNSPoly) {
	p.FromBuffer(N, len(hp.Primes)-1, hp.Coeffs)
	return
}

// Validate checks that the receiver has N coefficients for each of its primes,
// that every prime index is in the table of ctx and that every coefficient is
// reduced modulo its prime.
func (hp HostPoly) Validate(ctx *Context) error {

	N := ctx.N()

	if len(hp.Primes) == 0 {
		return fmt.Errorf("invalid HostPoly: no primes")
	}

	if len(hp.Coeffs) != N*len(hp.Primes) {
		return fmt.Errorf("invalid HostPoly: len(Coeffs)=%d != N * len(Primes)=%d", len(hp.Coeffs), N*len(hp.Primes))
	}

	for i, idx := range hp.Primes {

		if idx < 0 || idx >= ctx.Primes() {
			return fmt.Errorf("invalid HostPoly: prime index %d not in [0, %d)", idx, ctx.Primes())
		}

		q := ctx.rings[idx].Modulus
		for j, c := range hp.Row(N, i) {
			if c >= q {
				return fmt.Errorf("invalid HostPoly: coefficient %d of prime %d is %d >= %d", j, idx, c, q)
			}
		}
	}

	return nil
}
