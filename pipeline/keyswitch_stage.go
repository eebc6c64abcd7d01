package pipeline

import (
	"fmt"

	"github.com/intel/hexl-fpga-sub001/ring"
	"github.com/intel/hexl-fpga-sub001/rlwe"
)

// BreakIntoDigits is the digit decomposition stage. It reads polynomials over
// the primes of Q up to levelQ, in the coefficient domain, and emits for each
// of them its digits in the canonical order d = 0, 1, ..., each digit as a
// polynomial over the primes of Q up to levelQ followed by the primes of P.
func (ctx Context) BreakIntoDigits(levelQ int, primes <-chan int, coeffs <-chan Vec) (<-chan int, <-chan Vec) {

	outP, outC := ctx.channelInt(), ctx.channelVec()

	go func() {
		defer close(outP)
		defer close(outC)

		N, vec := ctx.N(), ctx.VecWidth()
		qp := ctx.QPIndices(levelQ)

		c := ring.NewRNSPoly(N, levelQ)
		digit := ring.NewRNSPoly(N, len(qp)-1)

		for {
			if !receivePoly(primes, coeffs, qp[:levelQ+1], c) {
				return
			}

			for d := range ctx.params.Digits(levelQ) {
				ctx.decomposer.BreakIntoDigit(levelQ, d, c, digit)
				sendPoly(outP, outC, qp, digit, vec)
			}
		}
	}()

	return outP, outC
}

// MultiplyAccumulate is the key-switching multiply-accumulate stage. It reads,
// for each input polynomial, its digits over QP at levelQ in the NTT domain and
// emits the two accumulators u_k = sum_d digit_d * key[d][k], k = 0 then k = 1,
// over QP at levelQ in the NTT domain. Digits are accumulated in the order
// they are received with values kept in [0, 2p) and a single final correction.
func (ctx Context) MultiplyAccumulate(levelQ int, key *rlwe.SwitchingKey, primes <-chan int, coeffs <-chan Vec) (<-chan int, <-chan Vec) {

	outP, outC := ctx.channelInt(), ctx.channelVec()

	go func() {
		defer close(outP)
		defer close(outC)

		N, vec := ctx.N(), ctx.VecWidth()
		qp := ctx.QPIndices(levelQ)
		digits := ctx.params.Digits(levelQ)

		acc := [2]ring.RNSPoly{
			ring.NewRNSPoly(N, len(qp)-1),
			ring.NewRNSPoly(N, len(qp)-1),
		}

		for {
			for d := range digits {
				for pos, want := range qp {

					idx, ok := <-primes
					if !ok {
						if d == 0 && pos == 0 {
							return
						}
						panic("prime stream closed in the middle of a polynomial")
					}

					if idx != want {
						panic(fmt.Errorf("unexpected prime index %d, expected %d", idx, want))
					}

					s := ctx.Ring(idx).Prime

					for a := 0; a < N; a += vec {
						v, ok := <-coeffs
						if !ok {
							panic("coefficient stream closed in the middle of a row")
						}
						for k := range 2 {
							row := acc[k][pos][a : a+vec]
							if d == 0 {
								ring.MulLazyVec(v, key.Value[d][k][idx][a:a+vec], row, s)
							} else {
								ring.MulThenAddLazyVec(v, key.Value[d][k][idx][a:a+vec], row, s)
							}
						}
					}
				}
			}

			for k := range 2 {
				for pos, idx := range qp {
					ring.CRedVec(acc[k][pos], acc[k][pos], ctx.Ring(idx).Modulus)
				}
				sendPoly(outP, outC, qp, acc[k], vec)
			}
		}
	}()

	return outP, outC
}

// ModDown is the division stage. It reads pairs of polynomials over QP at levelQ
// in the coefficient domain and emits round(u_k / P) over the primes of Q up to
// levelQ, for k = 0 then k = 1.
func (ctx Context) ModDown(levelQ int, primes <-chan int, coeffs <-chan Vec) (<-chan int, <-chan Vec) {

	outP, outC := ctx.channelInt(), ctx.channelVec()

	go func() {
		defer close(outP)
		defer close(outC)

		N, vec := ctx.N(), ctx.VecWidth()
		qp := ctx.QPIndices(levelQ)

		u := ring.NewRNSPoly(N, len(qp)-1)
		buffQ := ring.NewRNSPoly(N, levelQ)
		out := ring.NewRNSPoly(N, levelQ)

		for {
			if !receivePoly(primes, coeffs, qp, u) {
				return
			}
			ctx.modDowner.ModDown(levelQ, u[:levelQ+1], u[levelQ+1:], buffQ, out)
			sendPoly(outP, outC, qp[:levelQ+1], out, vec)
		}
	}()

	return outP, outC
}

// receivePoly reads the rows of p, whose primes are given by the global indices idx.
// Returns false if primes is closed before the first row.
func receivePoly(primes <-chan int, coeffs <-chan Vec, idx []int, p ring.RNSPoly) bool {
	for i, want := range idx {
		got, ok := <-primes
		if !ok {
			if i == 0 {
				return false
			}
			panic("prime stream closed in the middle of a polynomial")
		}
		if got != want {
			panic(fmt.Errorf("unexpected prime index %d, expected %d", got, want))
		}
		collectRow(coeffs, p[i])
	}
	return true
}

// sendPoly emits the rows of p, whose primes are given by the global indices idx.
func sendPoly(primes chan<- int, coeffs chan<- Vec, idx []int, p ring.RNSPoly, vec int) {
	for i, j := range idx {
		primes <- j
		emitRow(coeffs, p[i], vec)
	}
}
