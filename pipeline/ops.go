package pipeline

import (
	"fmt"
	"slices"

	"github.com/intel/hexl-fpga-sub001/ring"
	"github.com/intel/hexl-fpga-sub001/rlwe"
)

// NTT evaluates the NTT of every row of hp with a load, twiddle, transform, store pipeline.
func (ctx Context) NTT(hp HostPoly) (HostPoly, error) {
	return ctx.transform(ring.Forward, hp)
}

// INTT evaluates the INTT of every row of hp with a load, twiddle, transform, store pipeline.
func (ctx Context) INTT(hp HostPoly) (HostPoly, error) {
	return ctx.transform(ring.Backward, hp)
}

func (ctx Context) transform(dir ring.Direction, hp HostPoly) (HostPoly, error) {

	if err := hp.Validate(&ctx); err != nil {
		if dir == ring.Forward {
			return HostPoly{}, fmt.Errorf("cannot NTT: %w", err)
		}
		return HostPoly{}, fmt.Errorf("cannot INTT: %w", err)
	}

	primes, coeffs := ctx.Load(hp)
	primes, coeffs = ctx.transformStage(dir, primes, coeffs)

	return ctx.Store(primes, coeffs), nil
}

// transformStage tees the prime stream into a twiddle stage and a transform stage.
func (ctx Context) transformStage(dir ring.Direction, primes <-chan int, coeffs <-chan Vec) (<-chan int, <-chan Vec) {
	p1, p2 := ctx.Tee(primes)
	return ctx.Transform(dir, p2, coeffs, ctx.Twiddle(dir, p1))
}

// KeySwitch evaluates the key-switching of c with key: c is a polynomial over the
// primes of Q up to some level, in the coefficient domain, and the result is the
// pair round((u0, u1) / P) over the same primes, in the coefficient domain, with
//
//	u_k = sum_d digit_d(c) * key[d][k] mod QP.
//
// The pipeline is load, break into digits, NTT, multiply-accumulate, INTT, mod down and store.
func (ctx Context) KeySwitch(c HostPoly, key *rlwe.SwitchingKey) (out [2]HostPoly, err error) {

	if err = c.Validate(&ctx); err != nil {
		return out, fmt.Errorf("cannot KeySwitch: %w", err)
	}

	levelQ := len(c.Primes) - 1

	if levelQ > ctx.params.MaxLevel() || !slices.Equal(c.Primes, ctx.QIndices(levelQ)) {
		return out, fmt.Errorf("cannot KeySwitch: input primes must be the primes of Q from index 0")
	}

	if key == nil {
		return out, fmt.Errorf("cannot KeySwitch: key is nil")
	}

	if err = key.Check(ctx.params, levelQ); err != nil {
		return out, fmt.Errorf("cannot KeySwitch: %w", err)
	}

	primes, coeffs := ctx.Load(c)
	primes, coeffs = ctx.BreakIntoDigits(levelQ, primes, coeffs)
	primes, coeffs = ctx.transformStage(ring.Forward, primes, coeffs)
	primes, coeffs = ctx.MultiplyAccumulate(levelQ, key, primes, coeffs)
	primes, coeffs = ctx.transformStage(ring.Backward, primes, coeffs)
	primes, coeffs = ctx.ModDown(levelQ, primes, coeffs)

	hp := ctx.Store(primes, coeffs)

	N, rows := ctx.N(), levelQ+1
	out[0] = HostPoly{Coeffs: hp.Coeffs[:N*rows], Primes: hp.Primes[:rows]}
	out[1] = HostPoly{Coeffs: hp.Coeffs[N*rows:], Primes: hp.Primes[rows:]}

	return
}

// Tensor evaluates the tensor product of a = (a0, a1) and b = (b0, b1), in the NTT domain:
//
//	c0 = a0 * b0, c1 = a0 * b1 + a1 * b0, c2 = a1 * b1.
//
// All four polynomials must be over the same primes.
func (ctx Context) Tensor(a, b [2]HostPoly) (c [3]HostPoly, err error) {

	for _, hp := range []HostPoly{a[0], a[1], b[0], b[1]} {
		if err = hp.Validate(&ctx); err != nil {
			return c, fmt.Errorf("cannot Tensor: %w", err)
		}
		if !slices.Equal(hp.Primes, a[0].Primes) {
			return c, fmt.Errorf("cannot Tensor: operands must be over the same primes")
		}
	}

	primes, a0 := ctx.Load(a[0])
	outP, outC := ctx.tensorStage(primes, a0, ctx.loadCoeffs(a[1]), ctx.loadCoeffs(b[0]), ctx.loadCoeffs(b[1]))

	copy(c[:], ctx.storeAll(outP[:], outC[:]))

	return
}

// MulRelin evaluates the tensor product of a and b, in the NTT domain over the
// primes of Q from index 0, followed by the relinearization of its third
// component with rlk. The result is in the NTT domain.
func (ctx Context) MulRelin(a, b [2]HostPoly, rlk *rlwe.SwitchingKey) (out [2]HostPoly, err error) {

	var c [3]HostPoly
	if c, err = ctx.Tensor(a, b); err != nil {
		return out, fmt.Errorf("cannot MulRelin: %w", err)
	}

	var c2 HostPoly
	if c2, err = ctx.INTT(c[2]); err != nil {
		return out, fmt.Errorf("cannot MulRelin: %w", err)
	}

	var k [2]HostPoly
	if k, err = ctx.KeySwitch(c2, rlk); err != nil {
		return out, fmt.Errorf("cannot MulRelin: %w", err)
	}

	for i := range 2 {
		if k[i], err = ctx.NTT(k[i]); err != nil {
			return out, fmt.Errorf("cannot MulRelin: %w", err)
		}
		out[i] = ctx.addHost(c[i], k[i])
	}

	return
}
