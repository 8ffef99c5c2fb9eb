// Package report ranks benchmark results and formats them into comparison
// tables.
package report

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	json "github.com/goccy/go-json"

	"github.com/weiihann/hashbench/harness"
	"github.com/weiihann/hashbench/verify"
)

// Options controls text rendering.
type Options struct {
	// Color styles the fastest row and mismatches for a terminal.
	Color bool
}

// Environment describes the machine a run happened on.
type Environment struct {
	GoVersion string   `json:"go_version"`
	OS        string   `json:"os"`
	Arch      string   `json:"arch"`
	CPU       string   `json:"cpu"`
	Cores     int      `json:"cores"`
	Features  []string `json:"features"`
}

// Case is the report for one test case.
type Case struct {
	Name       string `json:"name"`
	Title      string `json:"title"`
	Mode       string `json:"mode"`
	BytesPerOp int    `json:"bytes_per_op"`
	Iterations int    `json:"iterations"`
	// Table is nil when no available implementation supports the mode.
	Table *Table `json:"table,omitempty"`
	// Skipped lists implementations left out of the table, either for
	// lacking the mode or for failing during the run.
	Skipped []string `json:"skipped,omitempty"`
}

// Run is the whole outcome of one invocation.
type Run struct {
	RunID        string               `json:"run_id"`
	Environment  Environment          `json:"environment"`
	Available    []string             `json:"available"`
	Unavailable  map[string]string    `json:"unavailable,omitempty"`
	Cases        []Case               `json:"cases"`
	Verification *verify.Verification `json:"verification,omitempty"`
}

type styles struct {
	fastest  lipgloss.Style
	mismatch lipgloss.Style
	color    bool
}

func newStyles(w io.Writer, opts Options) styles {
	r := lipgloss.NewRenderer(w)

	return styles{
		fastest:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("2")),
		mismatch: r.NewStyle().Bold(true).Foreground(lipgloss.Color("1")),
		color:    opts.Color,
	}
}

func (s styles) markFastest(name string) string {
	if s.color {
		return s.fastest.Render(name + " (fastest)")
	}

	return "**" + name + "** (fastest)"
}

func (s styles) markMismatch(text string) string {
	if s.color {
		return s.mismatch.Render(text)
	}

	return "**" + text + "**"
}

// GenerateEnvironment writes a one-line description of the machine.
func GenerateEnvironment(w io.Writer, env Environment) error {
	features := "-"
	if len(env.Features) > 0 {
		features = strings.Join(env.Features, " ")
	}

	_, err := fmt.Fprintf(w, "%s %s/%s, %s (%d cores), SIMD: %s\n\n",
		env.GoVersion, env.OS, env.Arch, env.CPU, env.Cores, features)

	return err
}

// Generate writes the comparison table for one test case. A case without
// a table writes nothing.
func Generate(w io.Writer, c Case, opts Options) error {
	if c.Table == nil || len(c.Table.Entries) == 0 {
		return nil
	}

	st := newStyles(w, opts)
	ew := &errWriter{w: w}

	ew.printf("## %s\n", c.Title)
	ew.println()

	ew.println("| Implementation | Total | Avg/op | Ops/sec "+
		"| Data rate | % of fastest | Slowdown |")
	ew.println("|----------------|-------|--------|---------"+
		"|-----------|--------------|----------|")

	for _, e := range c.Table.Entries {
		name := e.Name
		if e.Fastest {
			name = st.markFastest(name)
		}

		ew.printf("| %s | %s | %s | %s | %s | %s | %s |\n",
			name,
			formatMs(e.TotalTimeMs),
			formatAvgMs(e.Result),
			formatOps(e.Result),
			formatRate(e.Result, c.BytesPerOp),
			formatPercent(e),
			formatSpeedup(e),
		)
	}

	ew.println()

	if len(c.Skipped) > 0 {
		ew.printf("Not run: %s\n\n", strings.Join(c.Skipped, ", "))
	}

	return ew.err
}

// GenerateVerification writes the correctness pass outcome.
func GenerateVerification(w io.Writer, v verify.Verification, opts Options) error {
	st := newStyles(w, opts)
	ew := &errWriter{w: w}

	ew.printf("## Correctness (%q)\n", v.Input)
	ew.println()
	ew.printf("Reference %s: %s\n", v.ReferenceID, v.ReferenceDigest)

	if v.AllMatch() {
		ew.println("Digests: **all match**")
	} else {
		ew.printf("Digests: %s\n", st.markMismatch("MISMATCH"))
	}

	ew.println()

	if len(v.Entries) > 0 {
		ew.println("| Implementation | Digest | Result |")
		ew.println("|----------------|--------|--------|")

		for _, e := range v.Entries {
			result := "OK"
			if !e.Match {
				result = st.markMismatch("MISMATCH")
			}

			digest := e.Digest
			if e.Error != "" {
				digest = "error: " + e.Error
			}

			ew.printf("| %s | %s | %s |\n", e.ID, digest, result)
		}

		ew.println()
	}

	if len(v.Skipped) > 0 {
		ew.printf("Skipped (streaming only): %s\n\n",
			strings.Join(v.Skipped, ", "))
	}

	return ew.err
}

// GenerateJSON writes v as indented JSON to w.
func GenerateJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(v)
}

// errWriter keeps the first write error and skips every write after it.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err != nil {
		return
	}

	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

func (ew *errWriter) println(args ...any) {
	if ew.err != nil {
		return
	}

	_, ew.err = fmt.Fprintln(ew.w, args...)
}

func formatMs(ms float64) string {
	switch {
	case ms <= 0:
		return "n/a"
	case ms < 1:
		return fmt.Sprintf("%.4fms", ms)
	case ms < 1000:
		return fmt.Sprintf("%.2fms", ms)
	default:
		return fmt.Sprintf("%.2fs", ms/1000)
	}
}

func formatAvgMs(r harness.Result) string {
	if !r.Measurable() {
		return "n/a"
	}

	return fmt.Sprintf("%.6fms", r.AvgTimeMs)
}

func formatOps(r harness.Result) string {
	if !r.Measurable() {
		return "n/a"
	}

	return groupThousands(int64(math.Round(r.ThroughputOpsPerSec)))
}

func formatRate(r harness.Result, bytesPerOp int) string {
	if !r.Measurable() || bytesPerOp <= 0 {
		return "n/a"
	}

	return formatBytes(uint64(r.ThroughputOpsPerSec*float64(bytesPerOp))) + "/s"
}

func formatPercent(e Entry) string {
	if !e.Comparable {
		return "n/a"
	}

	return fmt.Sprintf("%.1f%%", e.RelativePercent)
}

func formatSpeedup(e Entry) string {
	if !e.Comparable {
		return "n/a"
	}

	return fmt.Sprintf("%.2fx", e.SpeedupFactor)
}

func groupThousands(n int64) string {
	s := strconv.FormatInt(n, 10)

	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}

	if len(s) <= 3 {
		return sign + s
	}

	var b strings.Builder
	head := len(s) % 3
	if head > 0 {
		b.WriteString(s[:head])
	}

	for i := head; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}

	return sign + b.String()
}

func formatBytes(b uint64) string {
	if b == 0 {
		return "-"
	}

	units := []string{"B", "KB", "MB", "GB", "TB"}
	size := float64(b)
	unit := 0

	for size >= 1024 && unit < len(units)-1 {
		size /= 1024
		unit++
	}

	formatted := fmt.Sprintf("%.1f", size)
	formatted = strings.TrimRight(formatted, "0")
	formatted = strings.TrimRight(formatted, ".")

	return formatted + " " + units[unit]
}
