package report

import "github.com/weiihann/hashbench/harness"

// Entry is one row of a comparison table.
type Entry struct {
	harness.Result

	// RelativePercent is throughput as a percentage of the fastest.
	RelativePercent float64 `json:"relative_percent"`
	// SpeedupFactor is how many times slower than the fastest this entry is.
	SpeedupFactor float64 `json:"speedup_factor"`
	Fastest       bool    `json:"fastest"`
	// Comparable is false when either side of the ratio had no usable
	// timing; RelativePercent and SpeedupFactor are zero then.
	Comparable bool `json:"comparable"`
}

// Table ranks the results of one test case against its fastest entry.
type Table struct {
	Entries      []Entry `json:"entries"`
	FastestIndex int     `json:"fastest_index"`
}

// Fastest returns the fastest entry.
func (t Table) Fastest() Entry {
	return t.Entries[t.FastestIndex]
}

// Compare ranks results by throughput. The fastest is the result with the
// highest throughput; exact ties go to the earliest result. Input order is
// preserved in the table. An empty input yields false and no table.
func Compare(results []harness.Result) (Table, bool) {
	if len(results) == 0 {
		return Table{}, false
	}

	fastest := 0
	for i, r := range results {
		if r.ThroughputOpsPerSec > results[fastest].ThroughputOpsPerSec {
			fastest = i
		}
	}

	best := results[fastest].ThroughputOpsPerSec

	table := Table{
		Entries:      make([]Entry, len(results)),
		FastestIndex: fastest,
	}

	for i, r := range results {
		e := Entry{Result: r}

		switch {
		case i == fastest:
			e.Fastest = true
			e.RelativePercent = 100
			e.SpeedupFactor = 1
			e.Comparable = r.ThroughputOpsPerSec > 0
		case best > 0 && r.ThroughputOpsPerSec > 0:
			e.RelativePercent = r.ThroughputOpsPerSec / best * 100
			e.SpeedupFactor = best / r.ThroughputOpsPerSec
			e.Comparable = true
		}

		table.Entries[i] = e
	}

	return table, true
}
