//go:build debug

package invariant

import "testing"

func TestCheckPanicsInDebugBuilds(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Fatal("Check(false) did not panic with -tags=debug")
		}
	}()
	Check(false, "loop %d open", 7)
}
