package pipeline

import (
	"sync"

	"github.com/intel/hexl-fpga-sub001/ring"
)

// tensorStage is the tensor product stage. For each prime index read on primes, it
// reads the coefficients of this prime of a0, a1, b0 and b1, in the NTT domain,
// and emits on the three outputs
//
//	c0 = a0 * b0, c1 = a0 * b1 + a1 * b0, c2 = a1 * b1.
func (ctx Context) tensorStage(primes <-chan int, a0, a1, b0, b1 <-chan Vec) (outP [3]<-chan int, outC [3]<-chan Vec) {

	var p [3]chan int
	var c [3]chan Vec
	for k := range 3 {
		p[k], c[k] = ctx.channelInt(), ctx.channelVec()
		outP[k], outC[k] = p[k], c[k]
	}

	go func() {
		defer func() {
			for k := range 3 {
				close(p[k])
				close(c[k])
			}
		}()

		N, vec := ctx.N(), ctx.VecWidth()

		for idx := range primes {

			s := ctx.Ring(idx).Prime

			for k := range 3 {
				p[k] <- idx
			}

			for a := 0; a < N; a += vec {

				x0, x1, y0, y1 := <-a0, <-a1, <-b0, <-b1

				z0, z1, z2 := make(Vec, vec), make(Vec, vec), make(Vec, vec)
				for l := range vec {
					z0[l] = s.Mul(x0[l], y0[l])
					z1[l] = s.Add(s.Mul(x0[l], y1[l]), s.Mul(x1[l], y0[l]))
					z2[l] = s.Mul(x1[l], y1[l])
				}

				c[0] <- z0
				c[1] <- z1
				c[2] <- z2
			}
		}
	}()

	return
}

// loadCoeffs streams the coefficients of hp without its prime indices.
func (ctx Context) loadCoeffs(hp HostPoly) <-chan Vec {
	out := ctx.channelVec()
	go func() {
		defer close(out)
		N := ctx.N()
		for i := range hp.Primes {
			emitRow(out, hp.Row(N, i), ctx.VecWidth())
		}
	}()
	return out
}

// storeAll runs one [Context.Store] per stream concurrently.
func (ctx Context) storeAll(primes []<-chan int, coeffs []<-chan Vec) (hp []HostPoly) {
	hp = make([]HostPoly, len(primes))
	var wg sync.WaitGroup
	for k := range primes {
		wg.Add(1)
		go func(k int) {
			defer wg.Done()
			hp[k] = ctx.Store(primes[k], coeffs[k])
		}(k)
	}
	wg.Wait()
	return
}

// addHost returns a + b, for a and b over the same primes.
func (ctx Context) addHost(a, b HostPoly) (c HostPoly) {
	N := ctx.N()
	c = NewHostPoly(N, a.Primes)
	for i, idx := range a.Primes {
		ring.AddVec(a.Row(N, i), b.Row(N, i), c.Row(N, i), ctx.Ring(idx).Modulus)
	}
	return
}
