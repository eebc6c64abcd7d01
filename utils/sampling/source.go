// Package sampling implements deterministic keyed sources of randomness.
package sampling

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"sync"

	"golang.org/x/crypto/blake2b"
)

// Source is a deterministic stream of pseudo-random bytes keyed by a 32-byte seed,
// built on the blake2b extendable output function. Two sources instantiated with
// the same seed produce the same stream.
// A Source can be shared between goroutines but the interleaving of the
// reads then decides which goroutine gets which bytes.
type Source struct {
	mu   sync.Mutex
	seed [32]byte
	xof  blake2b.XOF
	buf  [8]byte
}

// NewSource instantiates a new [Source] from the given seed.
func NewSource(seed [32]byte) (s *Source) {
	xof, err := blake2b.NewXOF(blake2b.OutputLengthUnknown, seed[:])
	// Sanity check, this error should not happen: the key is 32 bytes.
	if err != nil {
		panic(fmt.Errorf("blake2b.NewXOF: %w", err))
	}
	return &Source{seed: seed, xof: xof}
}

// NewSeed returns a new seed read from crypto/rand.
func NewSeed() (seed [32]byte) {
	if _, err := rand.Read(seed[:]); err != nil {
		panic(fmt.Errorf("crypto/rand.Read: %w", err))
	}
	return
}

// Seed returns the seed of the source.
func (s *Source) Seed() [32]byte {
	return s.seed
}

// Read fills p with pseudo-random bytes.
func (s *Source) Read(p []byte) (n int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.xof.Read(p)
}

// Uint64 returns a pseudo-random uint64.
func (s *Source) Uint64() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.xof.Read(s.buf[:]); err != nil {
		panic(fmt.Errorf("blake2b.XOF.Read: %w", err))
	}
	return binary.LittleEndian.Uint64(s.buf[:])
}

// NewSource returns a new [Source] seeded with bytes read from the receiver.
// Sources obtained this way are independent and can be used concurrently.
func (s *Source) NewSource() *Source {
	var seed [32]byte
	if _, err := s.Read(seed[:]); err != nil {
		panic(fmt.Errorf("sampling.Source.Read: %w", err))
	}
	return NewSource(seed)
}

// Reset resets the source to its initial state.
func (s *Source) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.xof.Reset()
}
