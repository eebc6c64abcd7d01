package rlwe

import (
	"runtime"

	"golang.org/x/sys/cpu"
)

const (
	// DefaultDigitSize is the number of primes of Q per digit when
	// neither DigitSize nor P is set.
	DefaultDigitSize = 3

	// MaxDigitSize is the largest number of primes of Q in a digit.
	MaxDigitSize = 9

	// DefaultQueueCapacity is the default capacity, in tokens, of
	// the channels connecting two pipeline stages.
	DefaultQueueCapacity = 64
)

// ParametersLiteral is a literal representation of the key-switching parameters.
// It has public fields and is used to express unchecked user-defined parameters
// literally into Go programs. The NewParametersFromLiteral function is used to
// generate the actual checked parameters from the literal representation.
//
// Users must set the polynomial degree (LogN) and the moduli, by either setting
// the Q and P fields to the desired primes, or by setting the LogQ and LogP fields
// to the desired prime sizes.
//
// Optionally, users may specify
//   - the number of primes of Q per digit (DigitSize)
//   - the vectorization width of the streaming engines (VecWidth)
//   - the capacity of the channels between two stages (QueueCapacity)
//
// If left unset, default values for these fields are substituted at
// parameter creation (see NewParametersFromLiteral).
type ParametersLiteral struct {
	LogN          int
	Q             []uint64 `json:",omitempty"`
	P             []uint64 `json:",omitempty"`
	LogQ          []int    `json:",omitempty"`
	LogP          []int    `json:",omitempty"`
	DigitSize     int      `json:",omitempty"`
	VecWidth      int      `json:",omitempty"`
	QueueCapacity int      `json:",omitempty"`
}

// DefaultVecWidth returns the number of 64-bit lanes the host vector units
// process at once: 8 with AVX-512, 4 with AVX2, 2 with ASIMD and 1 otherwise.
func DefaultVecWidth() int {
	switch {
	case cpu.X86.HasAVX512F:
		return 8
	case cpu.X86.HasAVX2:
		return 4
	case runtime.GOARCH == "arm64" && cpu.ARM64.HasASIMD:
		return 2
	default:
		return 1
	}
}
