//go:build !debug

package ring

import (
	"io"
)

// DebugAssertions is false: the checks are compiled out of release builds.
const DebugAssertions = false

// SetDebugOutput is a no-op in release builds.
func SetDebugOutput(w io.Writer) {}

func assertOperands(op string, a, b, p uint64) {}

// AssertReduced is a no-op in release builds.
func AssertReduced(op string, x []uint64, p uint64) {}
