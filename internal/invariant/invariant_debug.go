//go:build debug

package invariant

// Enabled reports whether violations panic.
const Enabled = true

func violated(msg string) {
	panic("invariant violated: " + msg)
}
