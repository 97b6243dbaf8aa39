// Package invariant checks geometric invariants that must hold after
// kernel operations, such as closed extrusion lines ending where they start.
//
// Violations indicate upstream rounding artifacts rather than user errors.
// Release builds log them and carry on; building with -tags=debug turns
// them into panics.
package invariant

import "fmt"

// Check reports a violation when cond is false.
func Check(cond bool, format string, args ...any) {
	if cond {
		return
	}
	violated(fmt.Sprintf(format, args...))
}
