//go:build debug

package ring

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDebugAssertions(t *testing.T) {

	var logs bytes.Buffer
	SetDebugOutput(&logs)
	defer SetDebugOutput(os.Stderr)

	r, err := NewRing(16, 97)
	require.NoError(t, err)

	t.Run("Reduced", func(t *testing.T) {
		logs.Reset()
		p := r.NewPoly()
		for i := range p {
			p[i] = uint64(i)
		}
		r.NTT(p, p)
		r.INTT(p, p)
		require.Empty(t, logs.String())
	})

	t.Run("NTT/UnreducedInput", func(t *testing.T) {
		logs.Reset()
		p := r.NewPoly()
		p[3] = r.Modulus + 1
		require.NotPanics(t, func() { r.NTT(p, p) })
		require.Contains(t, logs.String(), "NTT input: residue violated: x[3]=98 >= p=97")
	})

	t.Run("INTT/UnreducedInput", func(t *testing.T) {
		logs.Reset()
		p := r.NewPoly()
		p[0] = r.Modulus
		require.NotPanics(t, func() { r.INTT(p, p) })
		require.Contains(t, logs.String(), "INTT input: residue violated: x[0]=97 >= p=97")
	})

	t.Run("AssertReduced", func(t *testing.T) {
		logs.Reset()
		AssertReduced("rows", []uint64{1, 96, 97, 200}, 97)
		require.Equal(t, 1, bytes.Count(logs.Bytes(), []byte("residue violated")))
		require.Contains(t, logs.String(), "rows: residue violated: x[2]=97 >= p=97")
	})
}
