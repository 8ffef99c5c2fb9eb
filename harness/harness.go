package harness

import (
	"errors"
	"fmt"
	"time"
)

// MaxWarmup caps the number of untimed calls made before measuring.
const MaxWarmup = 10

// ErrInvalidIterations is returned when a run is asked for zero or fewer
// iterations.
var ErrInvalidIterations = errors.New("iterations must be positive")

// Timing is the raw measurement of one run.
type Timing struct {
	// TotalTimeMs covers the timed loop only, never the warmup.
	TotalTimeMs float64
	OpCount     int
}

// Runner executes an operation a fixed number of times after a warmup.
type Runner struct {
	Clock Clock
}

// NewRunner creates a Runner reading the given clock. A nil clock means
// SystemClock.
func NewRunner(clock Clock) *Runner {
	if clock == nil {
		clock = SystemClock
	}

	return &Runner{Clock: clock}
}

// Run calls op min(MaxWarmup, iterations) times untimed, then exactly
// iterations times under the clock. Calls are strictly sequential on the
// calling goroutine. The first error from op aborts the run; nothing is
// retried. A panic in op is returned as an error. There is no timeout: a
// stalled op stalls the run.
func (r *Runner) Run(op func() error, iterations int) (Timing, error) {
	if iterations <= 0 {
		return Timing{}, fmt.Errorf("%w: got %d", ErrInvalidIterations, iterations)
	}

	clock := r.Clock
	if clock == nil {
		clock = SystemClock
	}

	warmup := min(MaxWarmup, iterations)
	for i := 0; i < warmup; i++ {
		if err := call(op); err != nil {
			return Timing{}, fmt.Errorf("warmup %d: %w", i, err)
		}
	}

	start := clock.Now()

	for i := 0; i < iterations; i++ {
		if err := call(op); err != nil {
			return Timing{}, fmt.Errorf("iteration %d: %w", i, err)
		}
	}

	elapsed := clock.Now().Sub(start)

	return Timing{
		TotalTimeMs: durationMs(elapsed),
		OpCount:     iterations,
	}, nil
}

// call runs op, converting a panic into an error.
func call(op func() error) (err error) {
	defer func() {
		if v := recover(); v != nil {
			err = fmt.Errorf("panic: %v", v)
		}
	}()

	return op()
}

func durationMs(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
