// Package harness times hash operations and turns raw timings into
// comparable benchmark results.
package harness

// Result is one implementation's measurement for one test case.
type Result struct {
	Name                string  `json:"name"`
	TotalTimeMs         float64 `json:"total_time_ms"`
	AvgTimeMs           float64 `json:"avg_time_ms"`
	ThroughputOpsPerSec float64 `json:"throughput_ops_per_sec"`
	OpCount             int     `json:"op_count"`
}

// Measurable reports whether the timed loop took a positive amount of time.
// Results that are not measurable carry a zero throughput.
func (r Result) Measurable() bool {
	return r.TotalTimeMs > 0
}

// Aggregate derives a Result from a total time in milliseconds and an
// iteration count. A non-positive total yields zero throughput rather than
// an infinite one.
func Aggregate(name string, totalTimeMs float64, iterations int) Result {
	res := Result{
		Name:        name,
		TotalTimeMs: totalTimeMs,
		OpCount:     iterations,
	}

	if iterations > 0 {
		res.AvgTimeMs = totalTimeMs / float64(iterations)
	}

	if totalTimeMs > 0 {
		res.ThroughputOpsPerSec = float64(iterations) / totalTimeMs * 1000
	}

	return res
}

// FromTiming is Aggregate applied to a Timing.
func FromTiming(name string, t Timing) Result {
	return Aggregate(name, t.TotalTimeMs, t.OpCount)
}
