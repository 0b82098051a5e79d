package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/chazu/meshkernel/pkg/tessellate"
)

// EvalTimeout is the default limit for a single evaluation.
const EvalTimeout = 5 * time.Second

type evalResult struct {
	scene  *tessellate.Scene
	errors []EvalError
	err    error
}

// waitWithTimeout returns the result from ch unless d elapses or ctx is
// done first. The interpreter cannot be interrupted, so an abandoned
// evaluation keeps running until it finishes; ch must be buffered so that
// its send never blocks.
func waitWithTimeout(ctx context.Context, ch <-chan evalResult, d time.Duration) (evalResult, error) {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case res := <-ch:
		return res, nil
	case <-timer.C:
		return evalResult{}, fmt.Errorf("evaluation timed out after %s", d)
	case <-ctx.Done():
		return evalResult{}, fmt.Errorf("evaluation abandoned: %w", ctx.Err())
	}
}
