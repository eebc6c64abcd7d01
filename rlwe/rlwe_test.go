package rlwe

import (
	"encoding/json"
	"flag"
	"fmt"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/intel/hexl-fpga-sub001/ring"
	"github.com/intel/hexl-fpga-sub001/utils/bignum"
	"github.com/intel/hexl-fpga-sub001/utils/sampling"
)

var flagParamString = flag.String("params", "", "specify the test parameters as a JSON string. Overrides the default test parameters.")

func testString(params Parameters, levelQ int, opname string) string {
	return fmt.Sprintf("%s/logN=%d/Qi=%d/Pi=%d/DigitSize=%d",
		opname,
		params.LogN(),
		levelQ+1,
		params.PCount(),
		params.DigitSize())
}

type TestContext struct {
	params  Parameters
	eval    *Evaluator
	source  *sampling.Source
	sampleQ *ring.UniformSampler
	// ternary secret over QP, coefficient and NTT domain
	sk, skNTT ring.RNSPoly
}

func NewTestContext(params Parameters) (tc *TestContext, err error) {

	tc = &TestContext{params: params}

	if tc.eval, err = NewEvaluator(params); err != nil {
		return nil, err
	}

	tc.source = sampling.NewSource([32]byte{'r', 'l', 'w', 'e'})

	rQP := params.RingQP(params.MaxLevel())

	tc.sampleQ = ring.NewUniformSampler(tc.source.NewSource(), params.Q())
	tc.sk = ring.NewTernarySampler(tc.source.NewSource(), rQP.ModuliChain()).ReadNew(params.N())
	tc.skNTT = *tc.sk.Clone()
	rQP.NTT(tc.skNTT, tc.skNTT)

	return
}

func TestRLWE(t *testing.T) {

	var err error

	paramsLiterals := testInsecure

	if *flagParamString != "" {
		var jsonParams ParametersLiteral
		if err = json.Unmarshal([]byte(*flagParamString), &jsonParams); err != nil {
			t.Fatal(err)
		}
		paramsLiterals = []ParametersLiteral{jsonParams}
	}

	for _, paramsLit := range paramsLiterals {

		var params Parameters
		if params, err = NewParametersFromLiteral(paramsLit); err != nil {
			t.Fatal(err)
		}

		tc, err := NewTestContext(params)
		require.NoError(t, err)

		testParameters(tc, t)
		testSwitchingKey(tc, t)

		for levelQ := range params.MaxLevel() + 1 {
			testDecomposer(tc, levelQ, t)
			testKeySwitch(tc, levelQ, t)
			testTensorAndRelinearize(tc, levelQ, t)
		}
	}

	testUserDefinedParameters(t)
	testTensorConstants(t)
}

// genNoiselessKey returns the key Value[d] = (-a_d * s + P * g_d * sOut, a_d) over QP in the NTT domain,
// where g_d is 1 modulo the primes of the digit d and 0 modulo the other primes of Q.
// sOut is given in the NTT domain over QP.
func genNoiselessKey(tc *TestContext, sOut ring.RNSPoly) (swk *SwitchingKey) {

	params := tc.params
	levelQ := params.MaxLevel()
	rQP := params.RingQP(levelQ)

	us := ring.NewUniformSampler(tc.source.NewSource(), rQP.ModuliChain())

	P := params.RingP().Modulus()

	swk = NewSwitchingKey(params)

	for d := range swk.Value {

		b, a := swk.Value[d][0], swk.Value[d][1]

		us.Read(a)
		rQP.MulCoeffs(a, tc.skNTT, b)
		rQP.Neg(b, b)

		start, end := params.DigitRange(levelQ, d)
		for i := start; i < end; i++ {
			s := rQP[i]
			pModQi := new(big.Int).Mod(P, bignum.NewInt(s.Modulus)).Uint64()
			ring.MulScalarThenAddVec(sOut.At(i), pModQi, b.At(i), s.Prime)
		}
	}

	return
}

// negacyclicProduct returns a * b mod (X^N + 1, modulus).
func negacyclicProduct(a, b []big.Int, modulus *big.Int) (c []big.Int) {
	N := len(a)
	c = make([]big.Int, N)
	tmp := new(big.Int)
	for i := range N {
		for j := range N {
			tmp.Mul(&a[i], &b[j])
			if k := i + j; k < N {
				c[k].Add(&c[k], tmp)
			} else {
				c[k-N].Sub(&c[k-N], tmp)
			}
		}
	}
	for i := range c {
		c[i].Mod(&c[i], modulus)
	}
	return
}

// requireSmall checks that the centered coefficients of p over r are bounded by bound in absolute value.
func requireSmall(t *testing.T, r ring.RNSRing, p ring.RNSPoly, bound int64) {
	values := make([]big.Int, r.N())
	r.PolyToBigintCentered(p, values)
	B := big.NewInt(bound)
	for i := range values {
		require.True(t, new(big.Int).Abs(&values[i]).Cmp(B) <= 0, "coefficient %d: |%s| > %d", i, values[i].String(), bound)
	}
}

func testParameters(tc *TestContext, t *testing.T) {

	params := tc.params

	t.Run(testString(params, params.MaxLevel(), "Parameters/JSON"), func(t *testing.T) {
		data, err := json.Marshal(params)
		require.NoError(t, err)
		var paramsNew Parameters
		require.NoError(t, json.Unmarshal(data, &paramsNew))
		require.True(t, params.Equal(&paramsNew))
		require.Equal(t, params.Digest(), paramsNew.Digest())
	})

	t.Run(testString(params, params.MaxLevel(), "Parameters/Digits"), func(t *testing.T) {
		for levelQ := range params.MaxLevel() + 1 {
			var covered int
			for d := range params.Digits(levelQ) {
				start, end := params.DigitRange(levelQ, d)
				require.Equal(t, covered, start)
				require.Greater(t, end, start)
				require.LessOrEqual(t, end-start, params.DigitSize())
				covered = end
			}
			require.Equal(t, levelQ+1, covered)
		}
	})

	t.Run(testString(params, params.MaxLevel(), "Parameters/LogQP"), func(t *testing.T) {
		require.InDelta(t, params.LogQ()+params.LogP(), params.LogQP(), 1e-9)
		require.Less(t, params.LogQ(), float64(len(params.Q())*61))
	})
}

func testUserDefinedParameters(t *testing.T) {

	t.Run("Parameters/ExplicitPrimes", func(t *testing.T) {
		Q, P, err := ring.GenModuli(5, []int{20, 20}, []int{21})
		require.NoError(t, err)
		params, err := NewParametersFromLiteral(ParametersLiteral{LogN: 4, Q: Q, P: P})
		require.NoError(t, err)
		require.Equal(t, 2, params.QCount())
		require.Equal(t, 1, params.PCount())
		require.Equal(t, 1, params.DigitSize())
		require.Equal(t, DefaultQueueCapacity, params.QueueCapacity())
		require.Equal(t, DefaultVecWidth(), params.VecWidth())
	})

	t.Run("Parameters/QWithLogP", func(t *testing.T) {
		params, err := NewParametersFromLiteral(ParametersLiteral{
			LogN: 4,
			Q:    []uint64{65537},
			LogP: []int{21},
		})
		require.NoError(t, err)
		require.Equal(t, []uint64{65537}, params.Q())
		require.Equal(t, 1, params.PCount())
	})

	for _, tt := range []struct {
		name string
		pl   ParametersLiteral
	}{
		{"BothQAndLogQ", ParametersLiteral{LogN: 4, Q: []uint64{65537}, LogQ: []int{20}, LogP: []int{21}}},
		{"EmptyP", ParametersLiteral{LogN: 4, LogQ: []int{20}}},
		{"DuplicateModuli", ParametersLiteral{LogN: 4, Q: []uint64{65537}, P: []uint64{65537}}},
		{"NotNTTFriendly", ParametersLiteral{LogN: 10, Q: []uint64{65539}, P: []uint64{65537}}},
		{"DigitSizeTooLarge", ParametersLiteral{LogN: 4, LogQ: []int{20}, LogP: []int{21}, DigitSize: MaxDigitSize + 1}},
		{"InvalidVecWidth", ParametersLiteral{LogN: 4, LogQ: []int{20}, LogP: []int{21}, VecWidth: 3}},
		{"VecWidthTooLarge", ParametersLiteral{LogN: 4, LogQ: []int{20}, LogP: []int{21}, VecWidth: 16}},
		{"NegativeQueueCapacity", ParametersLiteral{LogN: 4, LogQ: []int{20}, LogP: []int{21}, QueueCapacity: -1}},
	} {
		t.Run("Parameters/Invalid/"+tt.name, func(t *testing.T) {
			_, err := NewParametersFromLiteral(tt.pl)
			require.Error(t, err)
		})
	}
}

func testSwitchingKey(tc *TestContext, t *testing.T) {

	params := tc.params

	t.Run(testString(params, params.MaxLevel(), "SwitchingKey/Flat"), func(t *testing.T) {

		swk := genNoiselessKey(tc, tc.skNTT)

		require.Equal(t, params.Digits(params.MaxLevel()), swk.Digits())

		flat := swk.Flatten()
		require.Len(t, flat, swk.BufferSize())

		swkNew, err := NewSwitchingKeyFromFlat(params, flat)
		require.NoError(t, err)
		require.True(t, swk.Equal(swkNew))
		require.Equal(t, swk.Digest(), swkNew.Digest())

		flat[len(flat)-1] ^= 1
		swkOther, err := NewSwitchingKeyFromFlat(params, flat)
		if err == nil {
			require.False(t, swk.Equal(swkOther))
			require.NotEqual(t, swk.Digest(), swkOther.Digest())
		}

		_, err = NewSwitchingKeyFromFlat(params, flat[:len(flat)-1])
		require.Error(t, err)

		flat[0] = params.Q()[0]
		_, err = NewSwitchingKeyFromFlat(params, flat)
		require.Error(t, err)
	})

	t.Run(testString(params, params.MaxLevel(), "SwitchingKey/Check"), func(t *testing.T) {

		levelQ := params.MaxLevel()

		require.NoError(t, NewSwitchingKey(params).Check(params, levelQ))

		// same shape, first primes of Q and P swapped
		Q, P := params.Q(), params.P()
		Q[0], P[0] = P[0], Q[0]
		other, err := NewParametersFromLiteral(ParametersLiteral{LogN: params.LogN(), Q: Q, P: P, DigitSize: params.DigitSize()})
		require.NoError(t, err)
		require.NotEqual(t, params.Digest(), other.Digest())
		require.Error(t, NewSwitchingKey(other).Check(params, levelQ))

		// without a digest only the shape is checked
		swk := NewSwitchingKey(other)
		swk.ParametersDigest = nil
		require.NoError(t, swk.Check(params, levelQ))

		swk = NewSwitchingKey(params)
		swk.Value = swk.Value[:len(swk.Value)-1]
		require.Error(t, swk.Check(params, levelQ))

		swk = NewSwitchingKey(params)
		swk.Value[0][1] = swk.Value[0][1][:len(swk.Value[0][1])-1]
		require.Error(t, swk.Check(params, levelQ))

		swk = NewSwitchingKey(params)
		swk.Value[len(swk.Value)-1][0][params.QCount()] = make([]uint64, params.N()/2)
		require.Error(t, swk.Check(params, levelQ))

		// a short key is enough at the levels it covers
		swk = NewSwitchingKey(params)
		swk.Value = swk.Value[:1]
		require.NoError(t, swk.Check(params, 0))
	})
}

func testDecomposer(tc *TestContext, levelQ int, t *testing.T) {

	params := tc.params

	t.Run(testString(params, levelQ, "Decomposer/BreakIntoDigits"), func(t *testing.T) {

		rQ := params.RingQ()
		rQP := params.RingQP(levelQ)

		c := rQ.NewRNSPoly()
		tc.sampleQ.Read(c)

		digits := tc.eval.Decomposer().BreakIntoDigitsNew(levelQ, c)
		require.Len(t, digits, params.Digits(levelQ))

		N := params.N()
		want := make([]big.Int, N)
		have := make([]big.Int, N)

		for d := range digits {

			start, end := params.DigitRange(levelQ, d)

			// own residues are copied
			for i := start; i < end; i++ {
				require.Equal(t, c[i], digits[d][i])
			}

			// the digit is the centered value of c modulo Q_d, over QP
			rQ[start:end].PolyToBigintCentered(c[start:end], want)
			rQP.PolyToBigintCentered(digits[d], have)

			for j := range N {
				require.Zero(t, want[j].Cmp(&have[j]), "digit %d coefficient %d", d, j)
			}
		}
	})
}

func testKeySwitch(tc *TestContext, levelQ int, t *testing.T) {

	params := tc.params
	eval := tc.eval
	N := params.N()

	rQ := params.RingQ().AtLevel(levelQ)
	rQP := params.RingQP(levelQ)
	qCount := params.QCount()

	sOut := ring.NewTernarySampler(tc.source.NewSource(), params.RingQP(params.MaxLevel()).ModuliChain()).ReadNew(N)
	sOutNTT := *sOut.Clone()
	params.RingQP(params.MaxLevel()).NTT(sOutNTT, sOutNTT)

	swk := genNoiselessKey(tc, sOutNTT)

	c := params.RingQ().NewRNSPoly()
	tc.sampleQ.Read(c)

	t.Run(testString(params, levelQ, "KeySwitchLazy/BigintReference"), func(t *testing.T) {

		if N > 64 {
			t.Skip("big-int reference only on small rings")
		}

		u0 := rQP.NewRNSPoly()
		u1 := rQP.NewRNSPoly()
		require.NoError(t, eval.KeySwitchLazy(levelQ, c, swk, u0, u1))

		for _, u := range []ring.RNSPoly{u0, u1} {
			for i, s := range rQP {
				for _, x := range u[i] {
					require.Less(t, x, s.Modulus)
				}
			}
		}

		rQP.INTT(u0, u0)
		rQP.INTT(u1, u1)

		QP := rQP.Modulus()

		b0 := make([]big.Int, N)
		b1 := make([]big.Int, N)
		rQP.PolyToBigint(u0, b0)
		rQP.PolyToBigint(u1, b1)

		sk := make([]big.Int, N)
		skOut := make([]big.Int, N)
		rQP.PolyToBigintCentered(atLevelQP(tc.sk, levelQ, qCount), sk)
		rQP.PolyToBigintCentered(atLevelQP(sOut, levelQ, qCount), skOut)

		cBig := make([]big.Int, N)
		rQ.PolyToBigint(c, cBig)

		// u0 + u1 * s = P * c * sOut mod QP
		have := negacyclicProduct(b1, sk, QP)
		for i := range have {
			have[i].Add(&have[i], &b0[i])
			have[i].Mod(&have[i], QP)
		}

		P := params.RingP().Modulus()
		for i := range cBig {
			cBig[i].Mul(&cBig[i], P)
		}
		want := negacyclicProduct(cBig, skOut, QP)

		for i := range want {
			require.Zero(t, want[i].Cmp(&have[i]), "coefficient %d", i)
		}
	})

	t.Run(testString(params, levelQ, "KeySwitchLazy/Linearity"), func(t *testing.T) {

		c1 := params.RingQ().NewRNSPoly()
		c2 := params.RingQ().NewRNSPoly()
		tc.sampleQ.Read(c1)
		tc.sampleQ.Read(c2)

		c12 := params.RingQ().NewRNSPoly()
		rQ.Add(c1, c2, c12)

		// decrypt(KeySwitchLazy(c)) = u0 + u1 * s in the NTT domain
		decrypt := func(c ring.RNSPoly) ring.RNSPoly {
			u0 := rQP.NewRNSPoly()
			u1 := rQP.NewRNSPoly()
			require.NoError(t, eval.KeySwitchLazy(levelQ, c, swk, u0, u1))
			rQP.MulCoeffsThenAdd(u1, atLevelQP(tc.skNTT, levelQ, qCount), u0)
			return u0
		}

		have := decrypt(c12)
		want := decrypt(c1)
		rQP.Add(want, decrypt(c2), want)

		require.True(t, rQP.Equal(have, want))
	})

	t.Run(testString(params, levelQ, "KeySwitch"), func(t *testing.T) {

		for _, isNTT := range []bool{false, true} {

			ct := NewCiphertext(params, 1, levelQ)
			ct.IsNTT = isNTT
			require.NoError(t, eval.KeySwitch(levelQ, c, swk, ct))

			k0, k1 := ct.Vector[0], ct.Vector[1]
			if !isNTT {
				rQ.NTT(k0, k0)
				rQ.NTT(k1, k1)
			}

			// k0 + k1 * s - c * sOut
			skNTT := tc.skNTT[:levelQ+1]
			rQ.MulCoeffsThenAdd(k1, skNTT, k0)

			cNTT := rQ.NewRNSPoly()
			rQ.NTT(c[:levelQ+1], cNTT)
			rQ.MulCoeffs(cNTT, sOutNTT[:levelQ+1], cNTT)
			rQ.Sub(k0, cNTT, k0)
			rQ.INTT(k0, k0)

			requireSmall(t, rQ, k0, int64(N))
		}
	})

	t.Run(testString(params, levelQ, "KeySwitch/Errors"), func(t *testing.T) {
		u0 := rQP.NewRNSPoly()
		u1 := rQP.NewRNSPoly()
		require.Error(t, eval.KeySwitchLazy(levelQ, c, &SwitchingKey{}, u0, u1))
		require.Error(t, eval.KeySwitchLazy(levelQ, c, nil, u0, u1))

		// rows truncated to the primes of Q
		short := &SwitchingKey{Value: make([][2]ring.RNSPoly, swk.Digits())}
		for d := range short.Value {
			for k := range 2 {
				short.Value[d][k] = swk.Value[d][k][:params.QCount()]
			}
		}
		require.NotPanics(t, func() {
			require.Error(t, eval.KeySwitchLazy(levelQ, c, short, u0, u1))
		})
		require.Error(t, eval.KeySwitchLazy(params.MaxLevel()+1, c, swk, u0, u1))
		require.Error(t, eval.KeySwitch(levelQ, c, swk, NewCiphertext(params, 0, levelQ)))
	})

	t.Run(testString(params, levelQ, "KeySwitch/ShallowCopy"), func(t *testing.T) {
		ct0 := NewCiphertext(params, 1, levelQ)
		ct1 := NewCiphertext(params, 1, levelQ)
		require.NoError(t, eval.KeySwitch(levelQ, c, swk, ct0))
		require.NoError(t, eval.ShallowCopy().KeySwitch(levelQ, c, swk, ct1))
		require.True(t, ct0.Equal(ct1))
	})
}

func testTensorAndRelinearize(tc *TestContext, levelQ int, t *testing.T) {

	params := tc.params
	eval := tc.eval

	rQ := params.RingQ().AtLevel(levelQ)
	skNTT := tc.skNTT[:levelQ+1]

	// s^2 over QP
	rQPMax := params.RingQP(params.MaxLevel())
	sk2NTT := rQPMax.NewRNSPoly()
	rQPMax.MulCoeffs(tc.skNTT, tc.skNTT, sk2NTT)

	rlk := genNoiselessKey(tc, sk2NTT)

	newCiphertext := func(degree int) *Ciphertext {
		ct := NewCiphertext(params, degree, levelQ)
		for i := range ct.Vector {
			tc.sampleQ.AtLevel(levelQ).Read(ct.Vector[i])
		}
		ct.IsNTT = true
		return ct
	}

	// decrypt returns sum_i ct[i] * s^i in the NTT domain
	decrypt := func(ct *Ciphertext) (pt ring.RNSPoly) {
		pt = rQ.NewRNSPoly()
		pt.CopyLvl(levelQ, &ct.Vector[ct.Degree()])
		for i := ct.Degree() - 1; i >= 0; i-- {
			rQ.MulCoeffs(pt, skNTT, pt)
			rQ.Add(pt, ct.Vector[i], pt)
		}
		return
	}

	t.Run(testString(params, levelQ, "Tensor"), func(t *testing.T) {

		a, b := newCiphertext(1), newCiphertext(1)
		c := NewCiphertext(params, 2, levelQ)

		require.NoError(t, eval.Tensor(a, b, c))
		require.True(t, c.IsNTT)

		want := decrypt(a)
		rQ.MulCoeffs(want, decrypt(b), want)
		require.True(t, rQ.Equal(want, decrypt(c)))

		// output sharing the polynomials of the first operand
		inPlace := NewCiphertext(params, 2, levelQ)
		inPlace.Vector[0].Copy(&a.Vector[0])
		inPlace.Vector[1].Copy(&a.Vector[1])
		aliased := &Ciphertext{Vector: inPlace.Vector[:2], IsNTT: true}
		require.NoError(t, eval.Tensor(aliased, b, inPlace))
		require.True(t, c.Equal(inPlace))
	})

	t.Run(testString(params, levelQ, "Tensor/Errors"), func(t *testing.T) {
		a, b := newCiphertext(1), newCiphertext(1)
		c := NewCiphertext(params, 2, levelQ)
		b.IsNTT = false
		require.Error(t, eval.Tensor(a, b, c))
		require.Error(t, eval.Tensor(a, newCiphertext(2), c))
		require.Error(t, eval.Tensor(a, a, NewCiphertext(params, 1, levelQ)))
	})

	t.Run(testString(params, levelQ, "Relinearize"), func(t *testing.T) {

		for _, isNTT := range []bool{true, false} {

			ct3 := newCiphertext(2)
			want := decrypt(ct3)

			if !isNTT {
				for i := range ct3.Vector {
					rQ.INTT(ct3.Vector[i], ct3.Vector[i])
				}
				ct3.IsNTT = false
			}

			ct2 := NewCiphertext(params, 1, levelQ)
			require.NoError(t, eval.Relinearize(ct3, rlk, ct2))
			require.Equal(t, isNTT, ct2.IsNTT)

			if !isNTT {
				for i := range ct2.Vector {
					rQ.NTT(ct2.Vector[i], ct2.Vector[i])
				}
				ct2.IsNTT = true
			}

			have := decrypt(ct2)
			rQ.Sub(have, want, have)
			rQ.INTT(have, have)
			requireSmall(t, rQ, have, int64(params.N()))
		}
	})

	t.Run(testString(params, levelQ, "MulRelin"), func(t *testing.T) {

		a, b := newCiphertext(1), newCiphertext(1)

		want := decrypt(a)
		rQ.MulCoeffs(want, decrypt(b), want)

		require.NoError(t, eval.MulRelin(a, b, rlk, a))
		require.Equal(t, 1, a.Degree())

		have := decrypt(a)
		rQ.Sub(have, want, have)
		rQ.INTT(have, have)
		requireSmall(t, rQ, have, int64(params.N()))
	})
}

// testTensorConstants checks the tensor product of constant polynomials over two primes.
func testTensorConstants(t *testing.T) {

	params, err := NewParametersFromLiteral(ParametersLiteral{
		LogN: 4,
		LogQ: []int{20, 20},
		LogP: []int{21},
	})
	require.NoError(t, err)

	eval, err := NewEvaluator(params)
	require.NoError(t, err)

	t.Run(testString(params, params.MaxLevel(), "Tensor/Constants"), func(t *testing.T) {

		rQ := params.RingQ()

		constant := func(x uint64) ring.RNSPoly {
			p := rQ.NewRNSPoly()
			for i := range p {
				p[i][0] = x
			}
			rQ.NTT(p, p)
			return p
		}

		a := &Ciphertext{Vector: []ring.RNSPoly{constant(3), constant(5)}, IsNTT: true}
		b := &Ciphertext{Vector: []ring.RNSPoly{constant(7), constant(11)}, IsNTT: true}
		c := NewCiphertext(params, 2, params.MaxLevel())

		require.NoError(t, eval.Tensor(a, b, c))

		for k, want := range []uint64{21, 3*11 + 5*7, 55} {

			// the NTT of a constant is the constant in every slot
			for i := range c.Vector[k] {
				for _, x := range c.Vector[k][i] {
					require.Equal(t, want, x)
				}
			}

			rQ.INTT(c.Vector[k], c.Vector[k])
			for i := range c.Vector[k] {
				require.Equal(t, want, c.Vector[k][i][0])
				for _, x := range c.Vector[k][i][1:] {
					require.Zero(t, x)
				}
			}
		}
	})
}
