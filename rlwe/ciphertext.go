package rlwe

import (
	"fmt"

	"github.com/intel/hexl-fpga-sub001/ring"
	"github.com/intel/hexl-fpga-sub001/utils/structs"
)

// Ciphertext is a vector of RNS polynomials over the primes of Q up to its level.
// IsNTT indicates if the polynomials are in the NTT domain.
type Ciphertext struct {
	structs.Vector[ring.RNSPoly]
	IsNTT bool
}

// NewCiphertext returns a new [Ciphertext] with zero values, of the given degree and level.
func NewCiphertext(params Parameters, degree, level int) (ct *Ciphertext) {
	ct = new(Ciphertext)
	ct.FromBuffer(params, degree, level, make([]uint64, ct.BufferSize(params, degree, level)))
	return
}

// BufferSize returns the minimum buffer size
// to instantiate the receiver through [FromBuffer].
func (ct *Ciphertext) BufferSize(params Parameters, degree, level int) int {
	return new(ring.RNSPoly).BufferSize(params.N(), level) * (degree + 1)
}

// FromBuffer assigns new backing array to the receiver.
// Method panics if len(buf) is too small.
func (ct *Ciphertext) FromBuffer(params Parameters, degree, level int, buf []uint64) {

	if size := ct.BufferSize(params, degree, level); len(buf) < size {
		panic(fmt.Errorf("invalid buffer size: len(buf)=%d < %d", len(buf), size))
	}

	size := new(ring.RNSPoly).BufferSize(params.N(), level)

	ct.Vector = make([]ring.RNSPoly, degree+1)
	for i := range ct.Vector {
		ct.Vector[i].FromBuffer(params.N(), level, buf[i*size:(i+1)*size])
	}
}

// Degree returns the degree of the receiver.
func (ct Ciphertext) Degree() int {
	return len(ct.Vector) - 1
}

// Level returns the level of the receiver.
func (ct Ciphertext) Level() int {
	return ct.Vector[0].Level()
}

// N returns the ring degree of the receiver.
func (ct Ciphertext) N() int {
	return ct.Vector[0].N()
}

// Clone returns a deep copy of the receiver.
func (ct Ciphertext) Clone() *Ciphertext {
	return &Ciphertext{Vector: ct.Vector.Clone(), IsNTT: ct.IsNTT}
}

// Copy copies other on the receiver, up to the minimum degree and level of both.
func (ct *Ciphertext) Copy(other *Ciphertext) {
	for i := range min(len(ct.Vector), len(other.Vector)) {
		ct.Vector[i].CopyLvl(min(ct.Level(), other.Level()), &other.Vector[i])
	}
	ct.IsNTT = other.IsNTT
}

// Equal performs a deep equal between the receiver and other.
func (ct Ciphertext) Equal(other *Ciphertext) bool {
	return ct.IsNTT == other.IsNTT && ct.Vector.Equal(other.Vector)
}

// Resize truncates the receiver to the given degree.
// Does nothing if degree is not smaller than the degree of the receiver.
func (ct *Ciphertext) Resize(degree int) {
	if degree < ct.Degree() {
		ct.Vector = ct.Vector[:degree+1]
	}
}
