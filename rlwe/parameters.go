package rlwe

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/google/go-cmp/cmp"
	"github.com/zeebo/blake3"

	"github.com/intel/hexl-fpga-sub001/ring"
	"github.com/intel/hexl-fpga-sub001/utils"
)

// Parameters represents a set of checked key-switching parameters.
// It is read-only and can be shared between goroutines.
type Parameters struct {
	logN          int
	qi, pi        []uint64
	digitSize     int
	vecWidth      int
	queueCapacity int
	ringQ, ringP  ring.RNSRing
}

// NewParametersFromLiteral instantiates a set of [Parameters] from a [ParametersLiteral].
// If the moduli chains are given as bit-sizes (LogQ and LogP), NTT-friendly primes are
// generated. Unset optional fields are replaced by their default values.
func NewParametersFromLiteral(pl ParametersLiteral) (params Parameters, err error) {

	var qi, pi []uint64

	switch {
	case len(pl.Q) != 0 && len(pl.LogQ) != 0:
		return Parameters{}, fmt.Errorf("cannot NewParametersFromLiteral: both Q and LogQ fields are set")
	case len(pl.P) != 0 && len(pl.LogP) != 0:
		return Parameters{}, fmt.Errorf("cannot NewParametersFromLiteral: both P and LogP fields are set")
	case len(pl.LogQ) != 0 || len(pl.LogP) != 0:
		if qi, pi, err = ring.GenModuli(pl.LogN+1, pl.LogQ, pl.LogP); err != nil {
			return Parameters{}, fmt.Errorf("cannot NewParametersFromLiteral: %w", err)
		}
		if len(pl.Q) != 0 {
			qi = slices.Clone(pl.Q)
		}
		if len(pl.P) != 0 {
			pi = slices.Clone(pl.P)
		}
	default:
		qi, pi = slices.Clone(pl.Q), slices.Clone(pl.P)
	}

	digitSize := pl.DigitSize
	if digitSize == 0 {
		digitSize = min(max(len(pi), 1), MaxDigitSize)
	}

	vecWidth := pl.VecWidth
	if vecWidth == 0 {
		vecWidth = DefaultVecWidth()
	}

	queueCapacity := pl.QueueCapacity
	if queueCapacity == 0 {
		queueCapacity = DefaultQueueCapacity
	}

	return NewParameters(pl.LogN, qi, pi, digitSize, vecWidth, queueCapacity)
}

// NewParameters instantiates a set of [Parameters] from explicit values.
// Returns an error if:
//   - Q or P is empty
//   - Q and P are not distinct NTT-friendly primes for the degree 2^logN
//   - the digit size is not in [1, MaxDigitSize]
//   - the vectorization width is not a power of two in [1, 2^logN / 2]
//   - the queue capacity is not strictly positive
func NewParameters(logN int, qi, pi []uint64, digitSize, vecWidth, queueCapacity int) (params Parameters, err error) {

	if len(qi) == 0 {
		return Parameters{}, fmt.Errorf("cannot NewParameters: Q is empty")
	}

	if len(pi) == 0 {
		return Parameters{}, fmt.Errorf("cannot NewParameters: P is empty")
	}

	if !utils.AllDistinct(append(slices.Clone(qi), pi...)) {
		return Parameters{}, fmt.Errorf("cannot NewParameters: moduli of Q and P must be distinct")
	}

	if digitSize < 1 || digitSize > MaxDigitSize {
		return Parameters{}, fmt.Errorf("cannot NewParameters: invalid DigitSize=%d: must be in [1, %d]", digitSize, MaxDigitSize)
	}

	if queueCapacity < 1 {
		return Parameters{}, fmt.Errorf("cannot NewParameters: invalid QueueCapacity=%d: must be strictly positive", queueCapacity)
	}

	N := 1 << logN

	if err = ring.CheckVecWidth(N, vecWidth); err != nil {
		return Parameters{}, fmt.Errorf("cannot NewParameters: %w", err)
	}

	params = Parameters{
		logN:          logN,
		qi:            slices.Clone(qi),
		pi:            slices.Clone(pi),
		digitSize:     digitSize,
		vecWidth:      vecWidth,
		queueCapacity: queueCapacity,
	}

	if params.ringQ, err = ring.NewRNSRing(N, params.qi); err != nil {
		return Parameters{}, fmt.Errorf("cannot NewParameters: ringQ: %w", err)
	}

	if params.ringP, err = ring.NewRNSRing(N, params.pi); err != nil {
		return Parameters{}, fmt.Errorf("cannot NewParameters: ringP: %w", err)
	}

	return
}

// ParametersLiteral returns the [ParametersLiteral] of the target [Parameters].
func (p Parameters) ParametersLiteral() ParametersLiteral {
	return ParametersLiteral{
		LogN:          p.logN,
		Q:             slices.Clone(p.qi),
		P:             slices.Clone(p.pi),
		DigitSize:     p.digitSize,
		VecWidth:      p.vecWidth,
		QueueCapacity: p.queueCapacity,
	}
}

// N returns the ring degree.
func (p Parameters) N() int {
	return 1 << p.logN
}

// LogN returns the log2 of the ring degree.
func (p Parameters) LogN() int {
	return p.logN
}

// RingQ returns the ring over the primes of Q.
func (p Parameters) RingQ() ring.RNSRing {
	return p.ringQ
}

// RingP returns the ring over the special primes P.
func (p Parameters) RingP() ring.RNSRing {
	return p.ringP
}

// RingQP returns the ring over the primes of Q up to levelQ followed by the primes of P.
func (p Parameters) RingQP(levelQ int) ring.RNSRing {
	return p.ringQ.AtLevel(levelQ).Concat(p.ringP)
}

// Q returns a copy of the primes of Q.
func (p Parameters) Q() []uint64 {
	return slices.Clone(p.qi)
}

// P returns a copy of the special primes P.
func (p Parameters) P() []uint64 {
	return slices.Clone(p.pi)
}

// QCount returns the number of primes of Q.
func (p Parameters) QCount() int {
	return len(p.qi)
}

// PCount returns the number of special primes.
func (p Parameters) PCount() int {
	return len(p.pi)
}

// MaxLevel returns the maximum level of a ciphertext.
func (p Parameters) MaxLevel() int {
	return len(p.qi) - 1
}

// DigitSize returns the number of primes of Q per digit.
func (p Parameters) DigitSize() int {
	return p.digitSize
}

// Digits returns the number of digits of a polynomial at the given level.
func (p Parameters) Digits(levelQ int) int {
	return (levelQ + p.digitSize) / p.digitSize
}

// DigitRange returns the range [start, end) of the primes of Q covered by the digit d at the given level.
func (p Parameters) DigitRange(levelQ, d int) (start, end int) {
	start = d * p.digitSize
	end = min(start+p.digitSize, levelQ+1)
	return
}

// VecWidth returns the number of lanes per token of the streaming engines.
func (p Parameters) VecWidth() int {
	return p.vecWidth
}

// QueueCapacity returns the capacity, in tokens, of the channels between two stages.
func (p Parameters) QueueCapacity() int {
	return p.queueCapacity
}

// LogQ returns log2(prod Q).
func (p Parameters) LogQ() float64 {
	return p.ringQ.LogModulus()
}

// LogP returns log2(prod P).
func (p Parameters) LogP() float64 {
	return p.ringP.LogModulus()
}

// LogQP returns log2(prod Q * prod P).
func (p Parameters) LogQP() float64 {
	return p.RingQP(p.MaxLevel()).LogModulus()
}

// Equal returns true if the receiver and other are the same parameters.
func (p Parameters) Equal(other *Parameters) bool {
	return cmp.Equal(p.ParametersLiteral(), other.ParametersLiteral())
}

// Digest returns a blake3 fingerprint of the parameters.
// The vectorization width and the queue capacity do not change
// the results of any operation and are not part of the digest.
func (p Parameters) Digest() []byte {
	h := blake3.New()
	var buf [8]byte
	write := func(x uint64) {
		binary.LittleEndian.PutUint64(buf[:], x)
		h.Write(buf[:])
	}
	write(uint64(p.logN))
	write(uint64(p.digitSize))
	write(uint64(len(p.qi)))
	for _, q := range p.qi {
		write(q)
	}
	write(uint64(len(p.pi)))
	for _, q := range p.pi {
		write(q)
	}
	return h.Sum(nil)
}

// MarshalJSON returns a JSON representation of the parameters. See [json.Marshaler].
func (p Parameters) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.ParametersLiteral())
}

// UnmarshalJSON reads a JSON representation of a parameter set into the receiver.
// See [json.Unmarshaler].
func (p *Parameters) UnmarshalJSON(data []byte) (err error) {
	var pl ParametersLiteral
	if err = json.Unmarshal(data, &pl); err != nil {
		return
	}
	*p, err = NewParametersFromLiteral(pl)
	return
}
