// Package workload defines the fixed test-case matrix every implementation
// is measured against. Payloads are generated deterministically so every
// implementation and every run hashes identical bytes.
package workload

import (
	"errors"
	"fmt"
	mrand "math/rand"
	"slices"

	"github.com/weiihann/hashbench/impl"
)

const (
	// Seed drives payload generation.
	Seed = 0x626c616b6533

	// VerifyText is hashed once by every implementation in the correctness
	// pass.
	VerifyText = "hello world"

	KiB = 1024
	MiB = 1024 * KiB
)

// ErrUnknownCase is returned by Select for names outside the matrix.
var ErrUnknownCase = errors.New("unknown test case")

// Mode selects which capability a test case exercises.
type Mode int

const (
	OneShot Mode = iota
	Streaming
)

func (m Mode) String() string {
	switch m {
	case OneShot:
		return "one-shot"
	case Streaming:
		return "streaming"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// TestCase describes one workload. For streaming cases Payload is a single
// chunk that is fed Chunks times per operation.
type TestCase struct {
	Name       string
	Payload    []byte
	Iterations int
	Mode       Mode
	Chunks     int
}

// BytesPerOp is the number of bytes hashed by one operation.
func (tc TestCase) BytesPerOp() int {
	if tc.Mode == Streaming {
		return len(tc.Payload) * tc.Chunks
	}

	return len(tc.Payload)
}

// Title is the human-readable heading for the case's report.
func (tc TestCase) Title() string {
	if tc.Mode == Streaming {
		return fmt.Sprintf("%s (%d x %s chunks, x%d)",
			tc.Name, tc.Chunks, FormatSize(len(tc.Payload)), tc.Iterations)
	}

	return fmt.Sprintf("%s (%s, x%d)",
		tc.Name, FormatSize(len(tc.Payload)), tc.Iterations)
}

// Operation builds the closure timed for one implementation, or reports
// false when the implementation lacks the case's mode.
func (tc TestCase) Operation(im impl.Implementation) (func() error, bool) {
	switch tc.Mode {
	case OneShot:
		s, ok := im.OneShot()
		if !ok {
			return nil, false
		}

		payload := tc.Payload

		return func() error {
			_, err := s.Sum(payload)

			return err
		}, true

	case Streaming:
		st, ok := im.Streaming()
		if !ok {
			return nil, false
		}

		chunk, chunks := tc.Payload, tc.Chunks

		return func() error {
			h := st.NewHasher()
			for i := 0; i < chunks; i++ {
				h = h.Update(chunk)
			}

			_, err := h.Finalize()

			return err
		}, true

	default:
		return nil, false
	}
}

// Cases returns the fixed matrix in report order. Iteration counts shrink
// as payloads grow so each case processes a comparable number of bytes.
func Cases() []TestCase {
	gen := NewGenerator(Seed)

	return []TestCase{
		{
			Name:       "small",
			Payload:    []byte(VerifyText),
			Iterations: 10000,
			Mode:       OneShot,
		},
		{
			Name:       "medium",
			Payload:    gen.Payload(KiB),
			Iterations: 1000,
			Mode:       OneShot,
		},
		{
			Name:       "large",
			Payload:    gen.Payload(100 * KiB),
			Iterations: 100,
			Mode:       OneShot,
		},
		{
			Name:       "xlarge",
			Payload:    gen.Payload(MiB),
			Iterations: 10,
			Mode:       OneShot,
		},
		{
			Name:       "streaming",
			Payload:    gen.Payload(KiB),
			Iterations: 100,
			Mode:       Streaming,
			Chunks:     100,
		},
	}
}

// caseNames matches the order of Cases.
var caseNames = []string{"small", "medium", "large", "xlarge", "streaming"}

// CaseNames lists the names in the matrix without generating payloads.
func CaseNames() []string {
	return slices.Clone(caseNames)
}

// Select keeps the named cases, preserving matrix order. No names keeps
// every case.
func Select(cases []TestCase, names []string) ([]TestCase, error) {
	if len(names) == 0 {
		return cases, nil
	}

	for _, name := range names {
		if !slices.ContainsFunc(cases, func(tc TestCase) bool {
			return tc.Name == name
		}) {
			return nil, fmt.Errorf("%w %q", ErrUnknownCase, name)
		}
	}

	selected := make([]TestCase, 0, len(names))
	for _, tc := range cases {
		if slices.Contains(names, tc.Name) {
			selected = append(selected, tc)
		}
	}

	return selected, nil
}

// VerifyInput returns the bytes hashed by the correctness pass.
func VerifyInput() []byte {
	return []byte(VerifyText)
}

// Generator produces deterministic payload bytes from a seed.
type Generator struct {
	rng *mrand.Rand
}

// NewGenerator creates a Generator for the given seed.
func NewGenerator(seed int64) *Generator {
	return &Generator{
		rng: mrand.New(mrand.NewSource(seed)),
	}
}

// Payload returns size pseudo-random bytes.
func (g *Generator) Payload(size int) []byte {
	buf := make([]byte, size)
	g.rng.Read(buf)

	return buf
}

// FormatSize renders a byte count with a binary unit, e.g. "100 KiB".
func FormatSize(n int) string {
	switch {
	case n >= MiB && n%MiB == 0:
		return fmt.Sprintf("%d MiB", n/MiB)
	case n >= KiB && n%KiB == 0:
		return fmt.Sprintf("%d KiB", n/KiB)
	default:
		return fmt.Sprintf("%d B", n)
	}
}
