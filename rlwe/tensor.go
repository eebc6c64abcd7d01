package rlwe

import (
	"fmt"

	"github.com/intel/hexl-fpga-sub001/ring"
)

// Tensor evaluates the tensor product of two degree one ciphertexts in the NTT domain:
//
//	c0 = a0 * b0, c1 = a0 * b1 + a1 * b0, c2 = a1 * b1
//
// independently for each prime. a and b must be at the same level and c
// at least at this level. c can be a or b.
func (eval Evaluator) Tensor(a, b, c *Ciphertext) (err error) {

	if a.Degree() != 1 || b.Degree() != 1 {
		return fmt.Errorf("cannot Tensor: operands must be of degree 1 but are of degree %d and %d", a.Degree(), b.Degree())
	}

	if !a.IsNTT || !b.IsNTT {
		return fmt.Errorf("cannot Tensor: operands must be in the NTT domain")
	}

	if a.Level() != b.Level() {
		return fmt.Errorf("cannot Tensor: operands levels %d and %d differ", a.Level(), b.Level())
	}

	if c.Degree() != 2 || c.Level() < a.Level() {
		return fmt.Errorf("cannot Tensor: output must be of degree 2 and level at least %d", a.Level())
	}

	rQ := eval.params.RingQ().AtLevel(a.Level())

	c1 := eval.BuffQ[0]

	rQ.MulCoeffsLazy(a.Vector[0], b.Vector[1], c1)
	rQ.MulCoeffsThenAddLazy(a.Vector[1], b.Vector[0], c1)
	rQ.ReduceLazy(c1, c1)

	rQ.MulCoeffs(a.Vector[1], b.Vector[1], c.Vector[2])
	rQ.MulCoeffs(a.Vector[0], b.Vector[0], c.Vector[0])

	c.Vector[1].CopyLvl(a.Level(), &c1)
	c.IsNTT = true

	return
}

// MulRelin evaluates the tensor product of a and b followed by its relinearization with rlk.
// a and b must be degree one ciphertexts in the NTT domain at the same level.
// out is returned in the NTT domain. out can be a or b.
func (eval Evaluator) MulRelin(a, b *Ciphertext, rlk *SwitchingKey, out *Ciphertext) (err error) {

	level := a.Level()

	ct3 := &Ciphertext{Vector: make([]ring.RNSPoly, 3)}
	for i := range ct3.Vector {
		ct3.Vector[i] = eval.BuffCt.Vector[i][:level+1]
	}

	if err = eval.Tensor(a, b, ct3); err != nil {
		return fmt.Errorf("cannot MulRelin: %w", err)
	}

	if err = eval.Relinearize(ct3, rlk, out); err != nil {
		return fmt.Errorf("cannot MulRelin: %w", err)
	}

	return
}
