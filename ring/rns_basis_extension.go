package ring

import (
	"fmt"
	"math"
	"math/big"
	"math/bits"

	"github.com/intel/hexl-fpga-sub001/utils/bignum"
)

// BasisExtender stores the constants for the RNS basis extension of
// polynomials from the basis From = {p_i} to the disjoint basis To = {q_j}.
// The extension of a coefficient z in [0, P), P = prod p_i odd, returns the
// residues mod q_j of its centered representative in [-(P-1)/2, (P-1)/2].
type BasisExtender struct {
	From, To RNSRing

	// (P/p_i)^-1 mod p_i
	pHatInvModPi []uint64

	// (P/p_i) mod q_j, indexed [j][i]
	pHatModQj [][]uint64

	// -u * P mod q_j for u in [0, len(From)+1], indexed [j][u]
	vTimesPModQj [][]uint64

	// P as a big.Int and P/p_i as big.Int, for the exact quotient.
	modulus *big.Int
	pHat    []*big.Int

	// Half-width of the window around frac(v) = 0.5 in which
	// the floating point estimate is not trusted.
	window float64
}

// NewBasisExtender generates the constants for the basis extension from the ring from to the ring to.
// Returns an error if the two bases are not disjoint.
func NewBasisExtender(from, to RNSRing) (be *BasisExtender, err error) {

	if len(from) == 0 || len(to) == 0 {
		return nil, fmt.Errorf("cannot NewBasisExtender: empty basis")
	}

	if from.N() != to.N() {
		return nil, fmt.Errorf("cannot NewBasisExtender: from.N()=%d != to.N()=%d", from.N(), to.N())
	}

	for _, si := range from {
		for _, sj := range to {
			if si.Modulus == sj.Modulus {
				return nil, fmt.Errorf("cannot NewBasisExtender: modulus %d is in both bases", si.Modulus)
			}
		}
	}

	be = &BasisExtender{
		From:         from,
		To:           to,
		pHatInvModPi: make([]uint64, len(from)),
		pHatModQj:    make([][]uint64, len(to)),
		vTimesPModQj: make([][]uint64, len(to)),
		modulus:      from.Modulus(),
		pHat:         make([]*big.Int, len(from)),
		window:       float64(len(from)*(len(from)+4)) * math.Exp2(-52),
	}

	tmp := new(big.Int)

	for i, si := range from {
		be.pHat[i] = new(big.Int).Quo(be.modulus, bignum.NewInt(si.Modulus))
		be.pHatInvModPi[i] = ModInverse(tmp.Mod(be.pHat[i], bignum.NewInt(si.Modulus)).Uint64(), si.Modulus)
	}

	for j, sj := range to {

		qj := bignum.NewInt(sj.Modulus)

		be.pHatModQj[j] = make([]uint64, len(from))
		for i := range from {
			be.pHatModQj[j][i] = tmp.Mod(be.pHat[i], qj).Uint64()
		}

		v := sj.Modulus - tmp.Mod(be.modulus, qj).Uint64()

		// v can be rounded up to len(from), plus one for the rounding correction.
		be.vTimesPModQj[j] = make([]uint64, len(from)+2)
		for u := 1; u < len(from)+2; u++ {
			be.vTimesPModQj[j][u] = CRed(be.vTimesPModQj[j][u-1]+v, sj.Modulus)
		}
	}

	return
}

// ExtendBasis extends pIn (in the basis From) to pOut (in the basis To).
// Each coefficient z in [0, P) is mapped to z mod q_j if z <= (P-1)/2 and to
// (z - P) mod q_j otherwise, that is the residues of its centered representative
// in [-(P-1)/2, (P-1)/2]. Outputs are in [0, q_j).
// pIn must have at least len(From) moduli and pOut at least len(To).
func (be BasisExtender) ExtendBasis(pIn, pOut RNSPoly) {
	be.ExtendBasisAtLevel(len(be.To)-1, pIn, pOut)
}

// ExtendBasisAtLevel extends pIn (in the basis From) to pOut in the basis To[:levelOut+1],
// with the centered convention of [BasisExtender.ExtendBasis].
func (be BasisExtender) ExtendBasisAtLevel(levelOut int, pIn, pOut RNSPoly) {

	N := pIn.N()

	c := make([]uint64, len(be.From))
	out := make([]uint64, levelOut+1)

	for x := 0; x < N; x++ {

		for i := range c {
			c[i] = pIn[i][x]
		}

		be.extendCoefficient(c, out)

		for j := range out {
			pOut[j][x] = out[j]
		}
	}
}

// ExtendBasisExact is the reference implementation of [BasisExtender.ExtendBasis]:
// it reconstructs every coefficient with math/big.
func (be BasisExtender) ExtendBasisExact(pIn, pOut RNSPoly) {

	N := pIn.N()

	values := make([]big.Int, N)
	be.From.PolyToBigintCentered(pIn, values)
	be.To.SetCoefficientsBigint(values, pOut)
}

// extendCoefficient extends the residues c over From to the residues out over To[:len(out)].
// c is overwritten by c_i' = c_i * (P/p_i)^-1 mod p_i.
func (be BasisExtender) extendCoefficient(c, out []uint64) {

	var u uint64
	var roundUp bool

	u, roundUp, _ = be.quotient(c)

	if roundUp {
		u++
	}

	for j := range out {

		sj := be.To[j]
		pHatModQj := be.pHatModQj[j]

		var hi, lo, mhi, mlo, carry uint64

		for i := range c {

			mhi, mlo = bits.Mul64(c[i]&be.From[i].Mask, pHatModQj[i])

			lo, carry = bits.Add64(lo, mlo, 0)
			hi += mhi + carry

			// products are < 2^120, folds before hi can overflow
			if i&127 == 127 {
				lo, hi = sj.Reduce128(hi, lo), 0
			}
		}

		out[j] = CRed(sj.Reduce128(hi, lo)+be.vTimesPModQj[j][u], sj.Modulus)
	}
}

// quotient computes c_i' = c_i * (P/p_i)^-1 mod p_i in place and returns
// floor(v) and whether frac(v) >= 0.5, where v = sum c_i'/p_i, such that
// sum c_i' * (P/p_i) = z + floor(v) * P with z in [0, P).
//
// The floating point estimate of v is used unless its fractional part is
// within the error window around 0.5, in which case the decision is made
// exactly with math/big and exact is set to true.
func (be BasisExtender) quotient(c []uint64) (u uint64, roundUp, exact bool) {

	var v float64

	for i, si := range be.From {
		c[i] = si.Mul(c[i], be.pHatInvModPi[i])
		v += float64(c[i]) * si.Reciprocal
	}

	fv := math.Floor(v)
	frac := v - fv

	if math.Abs(frac-0.5) >= be.window {
		return uint64(fv), frac >= 0.5, false
	}

	// Exact: S = sum c_i' * (P/p_i), u = floor(S/P), roundUp = 2*(S mod P) >= P.
	S := new(big.Int)
	tmp := new(big.Int)
	for i := range c {
		S.Add(S, tmp.Mul(bignum.NewInt(c[i]), be.pHat[i]))
	}

	r := new(big.Int)
	S.QuoRem(S, be.modulus, r)

	return S.Uint64(), r.Lsh(r, 1).Cmp(be.modulus) >= 0, true
}

// ModDowner stores the constants for the rounded division
// of polynomials in the basis QP by P.
type ModDowner struct {
	rQ, rP RNSRing

	// basis extension from P to Q
	extender *BasisExtender

	// P^-1 mod q_i
	pInvModQi []uint64
}

// NewModDowner generates the constants for the division by P = prod rP from the basis QP to the basis Q.
func NewModDowner(rQ, rP RNSRing) (md *ModDowner, err error) {

	md = &ModDowner{rQ: rQ, rP: rP, pInvModQi: make([]uint64, len(rQ))}

	if md.extender, err = NewBasisExtender(rP, rQ); err != nil {
		return nil, fmt.Errorf("cannot NewModDowner: %w", err)
	}

	P := rP.Modulus()
	tmp := new(big.Int)
	for i, si := range rQ {
		md.pInvModQi[i] = ModInverse(tmp.Mod(P, bignum.NewInt(si.Modulus)).Uint64(), si.Modulus)
	}

	return
}

// ModDown takes p1 = [p1Q, p1P] in the basis QP and stores on p2Q = round(p1/P) mod Q,
// at the level of Q given by levelQ. Inputs and outputs are in the coefficient domain.
// buffQ is a buffer of at least levelQ+1 moduli. p2Q and p1Q can be the same polynomial.
func (md ModDowner) ModDown(levelQ int, p1Q, p1P, buffQ, p2Q RNSPoly) {

	// buffQ = [p1]_P centered, extended to Q
	md.extender.ExtendBasisAtLevel(levelQ, p1P, buffQ)

	// p2Q = (p1Q - [p1]_P) * P^-1 mod q_i
	for i, s := range md.rQ[:levelQ+1] {
		SubVec(p1Q.At(i), buffQ.At(i), p2Q.At(i), s.Modulus)
		MulScalarVec(p2Q.At(i), md.pInvModQi[i], p2Q.At(i), s.Prime)
	}
}
