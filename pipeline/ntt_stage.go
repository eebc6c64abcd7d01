package pipeline

import (
	"fmt"

	"github.com/intel/hexl-fpga-sub001/ring"
)

// Transform is the streaming NTT (dir = Forward) or INTT (dir = Backward) stage.
// For each prime index read on primes, it reads the N coefficients of the prime
// on coeffs and exactly N/VecWidth vectors on twiddles, runs the log2(N) butterfly
// stages and emits the prime index and the transformed coefficients.
// The output equals [ring.Ring.NTT] or [ring.Ring.INTT].
func (ctx Context) Transform(dir ring.Direction, primes <-chan int, coeffs, twiddles <-chan Vec) (<-chan int, <-chan Vec) {

	outP, outC := ctx.channelInt(), ctx.channelVec()

	go func() {
		defer close(outP)
		defer close(outC)

		N, vec := ctx.N(), ctx.VecWidth()
		t := newTransformer(N, vec)

		for idx := range primes {

			r := ctx.Ring(idx)

			collectRow(coeffs, t.bufs[0])

			if ring.DebugAssertions {
				ring.AssertReduced(fmt.Sprintf("%s stage input (prime %d)", dir, idx), t.bufs[0], r.Modulus)
			}

			out := t.run(r, dir, twiddles)

			if ring.DebugAssertions {
				ring.AssertReduced(fmt.Sprintf("%s stage output (prime %d)", dir, idx), out, r.Modulus)
			}

			outP <- idx
			emitRow(outC, out, vec)
		}
	}()

	return outP, outC
}

// transformer holds the working buffers of a transform stage.
type transformer struct {
	vec  int
	bufs [2][]uint64

	// stage roots, assembled from the twiddle vectors
	roots []uint64
	// first twiddle vector, R[0..vec)
	head []uint64
	// lanes of a window
	xs, ys, ws []uint64
}

func newTransformer(N, vec int) *transformer {
	return &transformer{
		vec:   vec,
		bufs:  [2][]uint64{make([]uint64, N), make([]uint64, N)},
		roots: make([]uint64, N/2),
		head:  make([]uint64, vec),
		xs:    make([]uint64, vec),
		ys:    make([]uint64, vec),
		ws:    make([]uint64, vec),
	}
}

// run transforms bufs[0] and returns the buffer holding the result.
// Stage s reads bufs[s%2] and writes bufs[(s+1)%2].
func (t *transformer) run(r *ring.Ring, dir ring.Direction, twiddles <-chan Vec) []uint64 {

	N, vec := len(t.bufs[0]), t.vec

	pull := func(dst []uint64) {
		v, ok := <-twiddles
		if !ok {
			panic(fmt.Errorf("twiddle stream closed before the end of prime %d", r.Modulus))
		}
		copy(dst, v)
	}

	// m is the index of the first root of the stage, which
	// consumes the m roots R[m..2m). h is the half distance.
	var s int
	if dir == ring.Forward {

		pull(t.head)

		for m, h := 1, N>>1; m < N; m, h = m<<1, h>>1 {
			t.stage(r.Prime, dir, m, h, s, pull)
			s++
		}

	} else {

		var headPulled bool

		for m, h := N>>1, 1; m > 0; m, h = m>>1, h<<1 {

			if m < vec && !headPulled {
				pull(t.head)
				headPulled = true
			}

			t.stage(r.Prime, dir, m, h, s, pull)
			s++
		}

		if !headPulled {
			pull(t.head)
		}
	}

	out := t.bufs[s&1]

	if dir == ring.Backward {
		ring.MulScalarVec(out, r.NInv, out, r.Prime)
	}

	return out
}

// stage runs the m butterfly groups of half distance h, reading bufs[s%2] and writing bufs[(s+1)%2].
func (t *transformer) stage(p ring.Prime, dir ring.Direction, m, h, s int, pull func([]uint64)) {

	vec := t.vec
	src, dst := t.bufs[s&1], t.bufs[(s+1)&1]
	N := len(src)

	var roots []uint64
	if m < vec {
		roots = t.head[m : 2*m]
	} else {
		roots = t.roots[:m]
		for i := 0; i < m; i += vec {
			pull(roots[i : i+vec])
		}
	}

	if h >= vec {
		for blk := 0; blk < N; blk += 2 * h {
			w := roots[blk/(2*h)]
			for a0 := blk; a0 < blk+h; a0 += vec {
				for l := range vec {
					dst[a0+l], dst[a0+h+l] = p.Butterfly(src[a0+l], src[a0+h+l], w, dir)
				}
			}
		}
		return
	}

	// h < vec: the pairs (x, x+h) of a window of 2*vec consecutive coefficients
	// are decimated into vec lanes, processed, then interleaved back.
	xs, ys, ws := t.xs, t.ys, t.ws
	for a0 := 0; a0 < N; a0 += 2 * vec {

		win, out := src[a0:a0+2*vec], dst[a0:a0+2*vec]

		var k int
		for off := range 2 * vec {
			if off%(2*h) < h {
				xs[k], ys[k], ws[k] = win[off], win[off+h], roots[(a0+off)/(2*h)]
				k++
			}
		}

		for l := range vec {
			xs[l], ys[l] = p.Butterfly(xs[l], ys[l], ws[l], dir)
		}

		k = 0
		for off := range 2 * vec {
			if off%(2*h) < h {
				out[off], out[off+h] = xs[k], ys[k]
				k++
			}
		}
	}
}
