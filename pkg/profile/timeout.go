package profile

import (
	"errors"
	"fmt"
	"time"

	"github.com/chazu/strand/pkg/config"
)

// EvalTimeout is the hard limit for a single evaluation.
const EvalTimeout = 5 * time.Second

var (
	// ErrTimeout is returned when a profile runs longer than EvalTimeout.
	ErrTimeout = errors.New("profile: evaluation timed out")
	// ErrSuperseded is returned to a caller whose evaluation was overtaken
	// by a newer one on the same Engine.
	ErrSuperseded = errors.New("profile: evaluation superseded by a newer request")
)

type evalResult struct {
	cfg    *config.Config
	errors []EvalError
	err    error
}

// current returns the generation of the most recent Evaluate call.
func (e *Engine) current() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.generation
}

// wait blocks until the evaluation of generation gen reports on ch or
// EvalTimeout passes. A runaway interpreter is abandoned; whatever it sends
// later lands in the buffered channel and is dropped.
func (e *Engine) wait(ch <-chan evalResult, gen uint64) (*config.Config, []EvalError, error) {
	timer := time.NewTimer(EvalTimeout)
	defer timer.Stop()

	select {
	case res := <-ch:
		if gen != e.current() {
			return nil, nil, ErrSuperseded
		}
		return res.cfg, res.errors, res.err
	case <-timer.C:
		return nil, nil, fmt.Errorf("%w after %s", ErrTimeout, EvalTimeout)
	}
}
