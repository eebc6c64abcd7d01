package ring

import (
	"fmt"
	"testing"
)

func BenchmarkRNSRing(b *testing.B) {

	var err error

	for _, params := range testParameters[:] {

		var tc *testParams
		if tc, err = genTestParams(params); err != nil {
			b.Fatal(err)
		}

		benchNTT(tc, b)
		benchMulCoeffs(tc, b)
		benchTwiddleGenerator(tc, b)
		benchExtendBasis(tc, b)
		benchModDown(tc, b)
		benchBRedAdd(tc, b)
	}
}

func benchNTT(tc *testParams, b *testing.B) {

	p := tc.uniformSamplerQ.ReadNew(tc.ringQ.N())

	b.Run(testString("NTT/Forward", tc.ringQ), func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			tc.ringQ.NTT(p, p)
		}
	})

	b.Run(testString("NTT/Backward", tc.ringQ), func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			tc.ringQ.INTT(p, p)
		}
	})
}

func benchMulCoeffs(tc *testParams, b *testing.B) {

	p0 := tc.uniformSamplerQ.ReadNew(tc.ringQ.N())
	p1 := tc.uniformSamplerQ.ReadNew(tc.ringQ.N())
	acc := tc.ringQ.NewRNSPoly()

	b.Run(testString("MulCoeffs/Barrett", tc.ringQ), func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			tc.ringQ.MulCoeffs(p0, p1, p0)
		}
	})

	b.Run(testString("MulCoeffs/ThenAddLazy", tc.ringQ), func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			tc.ringQ.MulCoeffsThenAddLazy(p0, p1, acc)
		}
	})
}

func benchTwiddleGenerator(tc *testParams, b *testing.B) {

	r := tc.ringQ[0]

	for _, vec := range []int{1, 8} {

		ts, err := NewTwiddleSet(r, vec, Backward)
		if err != nil {
			b.Fatal(err)
		}

		buf := make([]uint64, vec)

		b.Run(testString(fmt.Sprintf("TwiddleGenerator/VEC=%d", vec), tc.ringQ), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				g := ts.Generator()
				for g.Next(buf) {
				}
			}
		})
	}
}

func benchExtendBasis(tc *testParams, b *testing.B) {

	be, err := NewBasisExtender(tc.ringQ, tc.ringP)
	if err != nil {
		b.Fatal(err)
	}

	pQ := tc.uniformSamplerQ.ReadNew(tc.ringQ.N())
	pP := tc.ringP.NewRNSPoly()

	b.Run(testString("ExtendBasis/QtoP", tc.ringQ), func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			be.ExtendBasis(pQ, pP)
		}
	})
}

func benchModDown(tc *testParams, b *testing.B) {

	md, err := NewModDowner(tc.ringQ, tc.ringP)
	if err != nil {
		b.Fatal(err)
	}

	pQ := tc.uniformSamplerQ.ReadNew(tc.ringQ.N())
	pP := tc.uniformSamplerP.ReadNew(tc.ringP.N())
	buffQ := tc.ringQ.NewRNSPoly()
	out := tc.ringQ.NewRNSPoly()

	b.Run(testString("ModDown", tc.ringQ), func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			md.ModDown(tc.ringQ.Level(), pQ, pP, buffQ, out)
		}
	})
}

func benchBRedAdd(tc *testParams, b *testing.B) {

	s := tc.ringQ[0]
	x := tc.source.Uint64()

	b.Run(testString("BRedAdd", tc.ringQ), func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			x = BRedAdd(x, s.Modulus, s.BRedConstant)
		}
	})
}
