package harness

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAggregateFormulas(t *testing.T) {
	tests := []struct {
		name       string
		totalMs    float64
		iterations int
	}{
		{"small", 12.5, 10000},
		{"medium", 3.25, 1000},
		{"large", 40, 100},
		{"xlarge", 7.125, 10},
		{"one", 0.001, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Aggregate(tt.name, tt.totalMs, tt.iterations)

			n := float64(tt.iterations)
			assert.Equal(t, tt.name, res.Name)
			assert.Equal(t, tt.iterations, res.OpCount)
			assert.InDelta(t, tt.totalMs, res.TotalTimeMs, 0)
			assert.InEpsilon(t, tt.totalMs/n, res.AvgTimeMs, 1e-12)
			assert.InEpsilon(t, n/tt.totalMs*1000, res.ThroughputOpsPerSec, 1e-12)
			assert.True(t, res.Measurable())
		})
	}
}

func TestAggregateDegenerate(t *testing.T) {
	for _, total := range []float64{0, -0.5} {
		res := Aggregate("x", total, 10)

		assert.False(t, res.Measurable())
		assert.Zero(t, res.ThroughputOpsPerSec)
		assert.False(t, math.IsInf(res.ThroughputOpsPerSec, 0))
		assert.False(t, math.IsNaN(res.AvgTimeMs))
	}
}

func TestAggregateScenario(t *testing.T) {
	a := Aggregate("A", 10000, 10000)
	b := Aggregate("B", 20000, 10000)

	assert.InDelta(t, 1.0, a.AvgTimeMs, 1e-12)
	assert.InDelta(t, 2.0, b.AvgTimeMs, 1e-12)
	assert.InDelta(t, 1000.0, a.ThroughputOpsPerSec, 1e-9)
	assert.InDelta(t, 500.0, b.ThroughputOpsPerSec, 1e-9)
}
