package bignum

import (
	"fmt"
	"math/big"

	"github.com/ALTree/bigfloat"
)

// Log2 returns log2(x) as a float64, evaluated with prec bits of precision.
// x must be strictly positive.
func Log2(x *big.Int, prec uint) float64 {

	if x.Sign() <= 0 {
		panic(fmt.Errorf("cannot Log2: x must be strictly positive but is %s", x.String()))
	}

	// log2(x) = ln(x) / ln(2)
	lnx := bigfloat.Log(new(big.Float).SetPrec(prec).SetInt(x))
	ln2 := bigfloat.Log(new(big.Float).SetPrec(prec).SetInt64(2))

	f, _ := lnx.Quo(lnx, ln2).Float64()
	return f
}
