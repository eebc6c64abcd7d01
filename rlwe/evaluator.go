package rlwe

import (
	"fmt"

	"github.com/intel/hexl-fpga-sub001/ring"
)

// Evaluator is a struct that holds the necessary elements to execute
// key-switching, relinearization and tensor products on ciphertexts.
// An Evaluator is not safe for concurrent use: use [Evaluator.ShallowCopy]
// to obtain an evaluator for another goroutine.
type Evaluator struct {
	params     Parameters
	decomposer *Decomposer
	modDowner  *ring.ModDowner
	*EvaluatorBuffers
}

// EvaluatorBuffers are the working buffers of an [Evaluator].
type EvaluatorBuffers struct {
	// One polynomial over QP per digit at the maximum level.
	BuffDigits []ring.RNSPoly
	// Key-switching accumulators over QP.
	BuffQP [2]ring.RNSPoly
	// Buffers over Q.
	BuffQ [4]ring.RNSPoly
	// Degree two ciphertext for MulRelin.
	BuffCt *Ciphertext
}

// NewEvaluatorBuffers allocates the buffers of an [Evaluator].
func NewEvaluatorBuffers(params Parameters) *EvaluatorBuffers {

	buff := new(EvaluatorBuffers)

	rQ := params.RingQ()
	rQP := params.RingQP(params.MaxLevel())

	buff.BuffDigits = make([]ring.RNSPoly, params.Digits(params.MaxLevel()))
	for d := range buff.BuffDigits {
		buff.BuffDigits[d] = rQP.NewRNSPoly()
	}

	buff.BuffQP = [2]ring.RNSPoly{rQP.NewRNSPoly(), rQP.NewRNSPoly()}
	buff.BuffQ = [4]ring.RNSPoly{rQ.NewRNSPoly(), rQ.NewRNSPoly(), rQ.NewRNSPoly(), rQ.NewRNSPoly()}
	buff.BuffCt = NewCiphertext(params, 2, params.MaxLevel())

	return buff
}

// NewEvaluator creates a new [Evaluator].
// Returns an error if the decomposition or division constants cannot be generated.
func NewEvaluator(params Parameters) (eval *Evaluator, err error) {

	eval = &Evaluator{params: params}

	if eval.decomposer, err = NewDecomposer(params); err != nil {
		return nil, fmt.Errorf("cannot NewEvaluator: %w", err)
	}

	if eval.modDowner, err = ring.NewModDowner(params.RingQ(), params.RingP()); err != nil {
		return nil, fmt.Errorf("cannot NewEvaluator: %w", err)
	}

	eval.EvaluatorBuffers = NewEvaluatorBuffers(params)

	return
}

// ShallowCopy creates a shallow copy of the receiver in which the read-only
// fields are shared and the buffers are reallocated. The receiver and the
// returned evaluator can be used concurrently.
func (eval Evaluator) ShallowCopy() *Evaluator {
	return &Evaluator{
		params:           eval.params,
		decomposer:       eval.decomposer,
		modDowner:        eval.modDowner,
		EvaluatorBuffers: NewEvaluatorBuffers(eval.params),
	}
}

// Parameters returns the parameters of the evaluator.
func (eval Evaluator) Parameters() Parameters {
	return eval.params
}

// Decomposer returns the digit decomposer of the evaluator.
func (eval Evaluator) Decomposer() *Decomposer {
	return eval.decomposer
}

// ModDown takes p1 over QP at levelQ, in the coefficient domain, and
// stores on p2 over Q the rounded division of p1 by P.
// p1 and p2 can share the rows of Q.
func (eval Evaluator) ModDown(levelQ int, p1, p2 ring.RNSPoly) {
	eval.modDowner.ModDown(levelQ, p1[:levelQ+1], p1[levelQ+1:], eval.BuffQ[1], p2)
}

// atLevelQP returns the view of p over QP with the primes of Q up to levelQ,
// for p over QP with qCount primes of Q.
func atLevelQP(p ring.RNSPoly, levelQ, qCount int) (v ring.RNSPoly) {
	v = make(ring.RNSPoly, 0, levelQ+1+len(p)-qCount)
	v = append(v, p[:levelQ+1]...)
	return append(v, p[qCount:]...)
}
