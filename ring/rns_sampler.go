package ring

import (
	"math/bits"

	"github.com/intel/hexl-fpga-sub001/utils/sampling"
)

// Sampler populates polynomials according to its distribution.
type Sampler interface {
	Read(pol RNSPoly)
	ReadNew(N int) (pol RNSPoly)
	AtLevel(level int) Sampler
}

// UniformSampler wraps a [sampling.Source] and represents
// the state of a sampler of uniform polynomials.
type UniformSampler struct {
	Moduli []uint64
	*sampling.Source
}

// NewUniformSampler creates a new instance of UniformSampler from a
// [sampling.Source] and a list of moduli.
func NewUniformSampler(source *sampling.Source, moduli []uint64) (u *UniformSampler) {
	return &UniformSampler{Moduli: moduli, Source: source}
}

// AtLevel returns an instance of the target UniformSampler to sample at the given level.
// The returned sampler cannot be used concurrently to the original sampler.
func (u UniformSampler) AtLevel(level int) Sampler {
	return &UniformSampler{
		Moduli: u.Moduli[:level+1],
		Source: u.Source,
	}
}

// Read samples uniform residues in [0, q_i) on pol, by rejection sampling.
func (u *UniformSampler) Read(pol RNSPoly) {

	var c, mask uint64

	r := u.Source

	for j, qi := range u.Moduli {

		mask = (1 << uint64(bits.Len64(qi-1))) - 1

		coeffs := pol.At(j)

		for i := range coeffs {

			c = r.Uint64() & mask

			for c >= qi {
				c = r.Uint64() & mask
			}

			coeffs[i] = c
		}
	}
}

// ReadNew allocates and samples a new polynomial of N coefficients.
func (u *UniformSampler) ReadNew(N int) (pol RNSPoly) {
	pol = NewRNSPoly(N, len(u.Moduli)-1)
	u.Read(pol)
	return
}

// TernarySampler samples polynomials with coefficients uniform in {-1, 0, 1},
// consistently across all the moduli.
type TernarySampler struct {
	Moduli []uint64
	*sampling.Source
}

// NewTernarySampler creates a new instance of TernarySampler from a
// [sampling.Source] and a list of moduli.
func NewTernarySampler(source *sampling.Source, moduli []uint64) (s *TernarySampler) {
	return &TernarySampler{Moduli: moduli, Source: source}
}

// AtLevel returns an instance of the target TernarySampler to sample at the given level.
func (s TernarySampler) AtLevel(level int) Sampler {
	return &TernarySampler{
		Moduli: s.Moduli[:level+1],
		Source: s.Source,
	}
}

// Read samples a ternary polynomial on pol.
func (s *TernarySampler) Read(pol RNSPoly) {

	N := pol.N()

	var x uint64
	for i := 0; i < N; i++ {

		// rejection of 3 to keep the distribution uniform over {0, 1, 2}
		for x = s.Uint64() & 3; x == 3; x = s.Uint64() & 3 {
		}

		for j, qi := range s.Moduli {
			switch x {
			case 0:
				pol[j][i] = 0
			case 1:
				pol[j][i] = 1
			default:
				pol[j][i] = qi - 1
			}
		}
	}
}

// ReadNew allocates and samples a new polynomial of N coefficients.
func (s *TernarySampler) ReadNew(N int) (pol RNSPoly) {
	pol = NewRNSPoly(N, len(s.Moduli)-1)
	s.Read(pol)
	return
}
