package ring

import (
	"fmt"

	"github.com/intel/hexl-fpga-sub001/utils"
	"github.com/intel/hexl-fpga-sub001/utils/structs"
)

// RNSPoly is a polynomial in RNS representation: one [Poly] row per prime,
// all rows of the same length N. Rows allocated with [NewRNSPoly] or
// [RNSPoly.FromBuffer] share a single backing array laid out as
// [prime][coefficient].
type RNSPoly []Poly

// NewRNSPoly allocates a zero polynomial of N coefficients over Level+1 primes.
func NewRNSPoly(N, Level int) (p RNSPoly) {
	p.FromBuffer(N, Level, make([]uint64, p.BufferSize(N, Level)))
	return
}

// BufferSize returns the number of words [RNSPoly.FromBuffer] needs.
func (p *RNSPoly) BufferSize(N, Level int) int {
	return (Level + 1) * N
}

// FromBuffer slices buf into Level+1 rows of N coefficients and assigns
// them to the receiver. Panics if buf is too short.
func (p *RNSPoly) FromBuffer(N, Level int, buf []uint64) {

	if size := p.BufferSize(N, Level); len(buf) < size {
		panic(fmt.Errorf("cannot FromBuffer: len(buf)=%d < N*(Level+1)=%d", len(buf), size))
	}

	rows := make([]Poly, Level+1)
	for i := range rows {
		rows[i] = buf[:N:N]
		buf = buf[N:]
	}
	*p = rows
}

// Level returns the index of the last prime.
func (p RNSPoly) Level() int {
	return len(p) - 1
}

// N returns the number of coefficients per row.
func (p RNSPoly) N() int {
	if len(p) == 0 {
		return 0
	}
	return len(p[0])
}

// At returns the row of the i-th prime.
func (p RNSPoly) At(i int) Poly {
	if i < 0 || i >= len(p) {
		panic(fmt.Errorf("cannot At: row %d out of [0, %d]", i, p.Level()))
	}
	return p[i]
}

// Zero sets every coefficient to zero.
func (p RNSPoly) Zero() {
	for _, row := range p {
		ZeroVec(row)
	}
}

// Ones sets every coefficient to one.
func (p RNSPoly) Ones() {
	for _, row := range p {
		OneVec(row)
	}
}

// Clone returns a deep copy of the receiver.
func (p RNSPoly) Clone() *RNSPoly {
	cpy := RNSPoly(structs.Vector[Poly](p).Clone())
	return &cpy
}

// Copy copies every row of other on the receiver, which must have at
// least as many rows.
func (p *RNSPoly) Copy(other *RNSPoly) {
	p.CopyLvl(other.Level(), other)
}

// CopyLvl copies the rows 0 to level of other on the receiver.
// Rows that already share memory are skipped.
func (p *RNSPoly) CopyLvl(level int, other *RNSPoly) {
	for i := range level + 1 {
		if dst, src := p.At(i), other.At(i); !utils.Alias1D(dst, src) {
			copy(dst, src)
		}
	}
}

// Equal returns true if both polynomials have the same rows.
func (p RNSPoly) Equal(other *RNSPoly) bool {
	return structs.Vector[Poly](p).Equal(structs.Vector[Poly](*other))
}

// Flatten returns the rows concatenated in a single slice [prime][coefficient].
func (p RNSPoly) Flatten() []uint64 {
	flat := make([]uint64, 0, len(p)*p.N())
	for _, row := range p {
		flat = append(flat, row...)
	}
	return flat
}
