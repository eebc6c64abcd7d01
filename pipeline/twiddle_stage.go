package pipeline

import (
	"github.com/intel/hexl-fpga-sub001/ring"
)

// Twiddle emits, for each prime index read on primes, the N/VecWidth twiddle
// vectors of this prime in the consumption order of the transform stage of
// direction dir. Since both stages are driven by the same token list, the
// twiddle stream stays in lockstep with the coefficient stream.
func (ctx Context) Twiddle(dir ring.Direction, primes <-chan int) <-chan Vec {

	out := ctx.channelVec()

	go func() {
		defer close(out)
		for idx := range primes {
			g := ctx.TwiddleSet(idx, dir).Generator()
			for {
				v := make(Vec, ctx.VecWidth())
				if !g.Next(v) {
					break
				}
				out <- v
			}
		}
	}()

	return out
}
