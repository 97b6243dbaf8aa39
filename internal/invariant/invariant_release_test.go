//go:build !debug

package invariant

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/chazu/strand/pkg/logging"
)

func TestCheckLogsInReleaseBuilds(t *testing.T) {
	var buf bytes.Buffer
	logging.SetLogger(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { logging.SetLogger(nil) })

	Check(true, "never printed")
	if buf.Len() != 0 {
		t.Fatalf("Check(true) logged %q, want nothing", buf.String())
	}
	Check(false, "loop %d open", 7)
	if !strings.Contains(buf.String(), "loop 7 open") {
		t.Errorf("log output = %q, want it to mention the violation", buf.String())
	}
}
