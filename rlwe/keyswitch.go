package rlwe

import (
	"fmt"

	"github.com/intel/hexl-fpga-sub001/ring"
)

// KeySwitchLazy evaluates
//
//	u_k = sum_d digit_d(c) * key[d][k] mod QP, for k in {0, 1}
//
// where c is a polynomial over Q at levelQ in the coefficient domain and
// u0, u1 are polynomials over QP at levelQ (levelQ+1 primes of Q followed
// by the primes of P). Digits are accumulated in the canonical order with
// values kept in [0, 2p) and a single final correction.
// The result is in the NTT domain.
func (eval Evaluator) KeySwitchLazy(levelQ int, c ring.RNSPoly, key *SwitchingKey, u0, u1 ring.RNSPoly) (err error) {

	params := eval.params

	if levelQ > params.MaxLevel() || levelQ > c.Level() {
		return fmt.Errorf("cannot KeySwitchLazy: invalid levelQ=%d", levelQ)
	}

	if key == nil {
		return fmt.Errorf("cannot KeySwitchLazy: key is nil")
	}

	if err = key.Check(params, levelQ); err != nil {
		return fmt.Errorf("cannot KeySwitchLazy: %w", err)
	}

	digits := params.Digits(levelQ)

	rQP := params.RingQP(levelQ)
	qCount := params.QCount()

	for d := range digits {

		digit := atLevelQP(eval.BuffDigits[d], levelQ, qCount)

		eval.decomposer.BreakIntoDigit(levelQ, d, c, digit)

		rQP.NTT(digit, digit)

		if d == 0 {
			rQP.MulCoeffsLazy(digit, key.AtLevel(levelQ, qCount, d, 0), u0)
			rQP.MulCoeffsLazy(digit, key.AtLevel(levelQ, qCount, d, 1), u1)
		} else {
			rQP.MulCoeffsThenAddLazy(digit, key.AtLevel(levelQ, qCount, d, 0), u0)
			rQP.MulCoeffsThenAddLazy(digit, key.AtLevel(levelQ, qCount, d, 1), u1)
		}
	}

	rQP.ReduceLazy(u0, u0)
	rQP.ReduceLazy(u1, u1)

	return
}

// KeySwitch evaluates [Evaluator.KeySwitchLazy] and divides the result by P:
//
//	ct = round((u0, u1) / P) mod Q
//
// c is a polynomial over Q at levelQ in the coefficient domain.
// The result is written on the first two polynomials of ct, in the
// NTT domain if ct.IsNTT and in the coefficient domain otherwise.
func (eval Evaluator) KeySwitch(levelQ int, c ring.RNSPoly, key *SwitchingKey, ct *Ciphertext) (err error) {

	if ct.Degree() < 1 || ct.Level() < levelQ {
		return fmt.Errorf("cannot KeySwitch: ct must be of degree at least 1 and level at least %d", levelQ)
	}

	params := eval.params
	rQP := params.RingQP(levelQ)
	rQ := params.RingQ().AtLevel(levelQ)
	qCount := params.QCount()

	u0 := atLevelQP(eval.BuffQP[0], levelQ, qCount)
	u1 := atLevelQP(eval.BuffQP[1], levelQ, qCount)

	if err = eval.KeySwitchLazy(levelQ, c, key, u0, u1); err != nil {
		return fmt.Errorf("cannot KeySwitch: %w", err)
	}

	rQP.INTT(u0, u0)
	rQP.INTT(u1, u1)

	eval.ModDown(levelQ, u0, ct.Vector[0])
	eval.ModDown(levelQ, u1, ct.Vector[1])

	if ct.IsNTT {
		rQ.NTT(ct.Vector[0], ct.Vector[0])
		rQ.NTT(ct.Vector[1], ct.Vector[1])
	}

	return
}

// Relinearize evaluates ct2 = (c0, c1) + KeySwitch(c2) for ct3 = (c0, c1, c2),
// at the minimum level of ct3 and ct2. ct2 is returned in the domain of ct3.
// ct2 and ct3 can be the same ciphertext.
func (eval Evaluator) Relinearize(ct3 *Ciphertext, rlk *SwitchingKey, ct2 *Ciphertext) (err error) {

	if ct3.Degree() != 2 {
		return fmt.Errorf("cannot Relinearize: ct3.Degree()=%d != 2", ct3.Degree())
	}

	if ct2.Degree() < 1 {
		return fmt.Errorf("cannot Relinearize: ct2.Degree()=%d < 1", ct2.Degree())
	}

	levelQ := min(ct3.Level(), ct2.Level())
	rQ := eval.params.RingQ().AtLevel(levelQ)

	c2 := ct3.Vector[2]
	if ct3.IsNTT {
		c2 = eval.BuffQ[0]
		rQ.INTT(ct3.Vector[2], c2)
	}

	tmp := &Ciphertext{Vector: []ring.RNSPoly{eval.BuffQ[2], eval.BuffQ[3]}, IsNTT: ct3.IsNTT}

	if err = eval.KeySwitch(levelQ, c2, rlk, tmp); err != nil {
		return fmt.Errorf("cannot Relinearize: %w", err)
	}

	rQ.Add(ct3.Vector[0], tmp.Vector[0], ct2.Vector[0])
	rQ.Add(ct3.Vector[1], tmp.Vector[1], ct2.Vector[1])

	ct2.Resize(1)
	ct2.IsNTT = ct3.IsNTT

	return
}
