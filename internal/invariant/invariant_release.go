//go:build !debug

package invariant

import (
	"log/slog"

	"github.com/chazu/strand/pkg/logging"
)

// Enabled reports whether violations panic.
const Enabled = false

func violated(msg string) {
	logging.Logger().Warn("invariant violated", slog.String("detail", msg))
}
