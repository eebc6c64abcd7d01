package rlwe

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/google/go-cmp/cmp"
	"github.com/zeebo/blake3"

	"github.com/intel/hexl-fpga-sub001/ring"
)

// SwitchingKey stores, for each digit d and component k in {0, 1}, an RNS polynomial
// Value[d][k] over the primes of Q followed by the primes of P, in the NTT domain.
// A SwitchingKey is read-only once loaded and can be shared between goroutines.
type SwitchingKey struct {
	Value [][2]ring.RNSPoly

	// ParametersDigest is the [Parameters.Digest] of the parameters the key was
	// allocated for. Keys with an empty digest are only checked for their shape.
	ParametersDigest []byte
}

// NewSwitchingKey returns a new [SwitchingKey] with zero values, with
// one entry per digit of a polynomial at the maximum level.
func NewSwitchingKey(params Parameters) (swk *SwitchingKey) {
	digits := params.Digits(params.MaxLevel())
	N, level := params.N(), params.QCount()+params.PCount()-1
	size := new(ring.RNSPoly).BufferSize(N, level)
	buf := make([]uint64, 2*digits*size)
	swk = &SwitchingKey{Value: make([][2]ring.RNSPoly, digits), ParametersDigest: params.Digest()}
	for d := range swk.Value {
		for k := range 2 {
			swk.Value[d][k].FromBuffer(N, level, buf[(2*d+k)*size:(2*d+k+1)*size])
		}
	}
	return
}

// NewSwitchingKeyFromFlat loads a [SwitchingKey] from a flat host array indexed
// (digit, component, prime, coefficient), the primes of Q preceding the primes of P.
// Returns an error if the array has the wrong length or holds a value that is not
// reduced modulo its prime.
func NewSwitchingKeyFromFlat(params Parameters, flat []uint64) (swk *SwitchingKey, err error) {

	swk = NewSwitchingKey(params)

	if size := swk.BufferSize(); len(flat) != size {
		return nil, fmt.Errorf("cannot NewSwitchingKeyFromFlat: len(flat)=%d != %d", len(flat), size)
	}

	moduli := params.RingQP(params.MaxLevel()).ModuliChain()
	N := params.N()

	var offset int
	for d := range swk.Value {
		for k := range 2 {
			for i, qi := range moduli {
				src := flat[offset : offset+N]
				for j, c := range src {
					if c >= qi {
						return nil, fmt.Errorf("cannot NewSwitchingKeyFromFlat: value %d at digit %d component %d prime %d index %d is not reduced modulo %d", c, d, k, i, j, qi)
					}
				}
				copy(swk.Value[d][k].At(i), src)
				offset += N
			}
		}
	}

	return
}

// Check returns an error if the key cannot be used to key-switch a polynomial
// at levelQ under params: the key must have been allocated for params (when it
// records a digest) and must hold at least params.Digits(levelQ) digits, each
// component over the QCount+PCount primes with N coefficients per prime.
func (swk SwitchingKey) Check(params Parameters, levelQ int) error {

	if len(swk.ParametersDigest) != 0 && !bytes.Equal(swk.ParametersDigest, params.Digest()) {
		return fmt.Errorf("invalid SwitchingKey: allocated for other parameters")
	}

	if digits := params.Digits(levelQ); swk.Digits() < digits {
		return fmt.Errorf("invalid SwitchingKey: key has %d digits but %d are required", swk.Digits(), digits)
	}

	rows, N := params.QCount()+params.PCount(), params.N()

	for d := range params.Digits(levelQ) {
		for k := range 2 {
			p := swk.Value[d][k]
			if len(p) != rows {
				return fmt.Errorf("invalid SwitchingKey: digit %d component %d has %d primes but %d are required", d, k, len(p), rows)
			}
			for i, row := range p {
				if len(row) != N {
					return fmt.Errorf("invalid SwitchingKey: digit %d component %d prime %d has %d coefficients but N=%d", d, k, i, len(row), N)
				}
			}
		}
	}

	return nil
}

// Digits returns the number of digits of the key.
func (swk SwitchingKey) Digits() int {
	return len(swk.Value)
}

// BufferSize returns the number of words of the key material.
func (swk SwitchingKey) BufferSize() (size int) {
	for d := range swk.Value {
		for k := range 2 {
			size += len(swk.Value[d][k]) * swk.Value[d][k].N()
		}
	}
	return
}

// Flatten returns the key material as a flat array indexed (digit, component, prime, coefficient).
func (swk SwitchingKey) Flatten() (flat []uint64) {
	flat = make([]uint64, 0, swk.BufferSize())
	for d := range swk.Value {
		for k := range 2 {
			flat = append(flat, swk.Value[d][k].Flatten()...)
		}
	}
	return
}

// AtLevel returns the key component (d, k) restricted to the primes of Q up to levelQ and the primes of P.
// The returned polynomial shares its rows with the key.
func (swk SwitchingKey) AtLevel(levelQ, qCount, d, k int) (p ring.RNSPoly) {
	return atLevelQP(swk.Value[d][k], levelQ, qCount)
}

// Digest returns a blake3 fingerprint of the key material.
func (swk SwitchingKey) Digest() []byte {
	h := blake3.New()
	var buf [8]byte
	for d := range swk.Value {
		for k := range 2 {
			for _, row := range swk.Value[d][k] {
				for _, c := range row {
					binary.LittleEndian.PutUint64(buf[:], c)
					h.Write(buf[:])
				}
			}
		}
	}
	return h.Sum(nil)
}

// Equal performs a deep equal between the receiver and other.
func (swk SwitchingKey) Equal(other *SwitchingKey) bool {
	return cmp.Equal(swk.Value, other.Value)
}
