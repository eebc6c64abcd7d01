//go:build debug

package ring

import (
	"io"
	"log"
	"os"
)

// DebugAssertions enables the precondition checks of the arithmetic kernels
// and the residue checks at the transform boundaries.
// Violations are logged and execution continues with the (incorrect) result.
const DebugAssertions = true

var debugLogger = log.New(os.Stderr, "ring: ", log.LstdFlags)

// SetDebugOutput sets the destination of the assertion logs.
func SetDebugOutput(w io.Writer) {
	debugLogger.SetOutput(w)
}

func assertOperands(op string, a, b, p uint64) {
	if a >= p || b >= p {
		debugLogger.Printf("%s precondition violated: a=%d, b=%d >= p=%d", op, a, b, p)
	}
}

// AssertReduced logs the first value of x that is not in [0, p).
func AssertReduced(op string, x []uint64, p uint64) {
	for i := range x {
		if x[i] >= p {
			debugLogger.Printf("%s: residue violated: x[%d]=%d >= p=%d", op, i, x[i], p)
			return
		}
	}
}
