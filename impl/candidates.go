package impl

import (
	"errors"
	"fmt"
	"slices"
)

// ReferenceID names the implementation whose digests are ground truth for
// the correctness pass.
const ReferenceID = "zeebo"

// ErrUnknownImplementation is returned when a filter names an ID that is
// not a known candidate.
var ErrUnknownImplementation = errors.New("unknown implementation")

// Options controls which candidates are attempted.
type Options struct {
	// B3sumPath is the b3sum binary; empty means DefaultB3sumPath.
	B3sumPath string
	// Only restricts loading to these IDs. The reference is always kept.
	Only []string
}

// KnownImplementations returns the IDs of every supported implementation.
func KnownImplementations() []string {
	return []string{
		ReferenceID, "lukechampine", "glycerine", "zeebo-xof", "b3sum",
	}
}

// Candidates returns the candidates to load, in report order.
func Candidates(opts Options) ([]Candidate, error) {
	all := []Candidate{
		{
			ID:          ReferenceID,
			Description: "github.com/zeebo/blake3 (SSE4.1/AVX2)",
			Load:        loadZeebo,
		},
		{
			ID:          "lukechampine",
			Description: "lukechampine.com/blake3",
			Load:        loadLuke,
		},
		{
			ID:          "glycerine",
			Description: "github.com/glycerine/blake3",
			Load:        loadGlycerine,
		},
		{
			ID:          "zeebo-xof",
			Description: "github.com/zeebo/blake3 extendable output",
			Load:        loadZeeboXOF,
		},
		{
			ID:          "b3sum",
			Description: "b3sum command-line tool",
			Load:        loadB3sum(opts.B3sumPath),
		},
	}

	if len(opts.Only) == 0 {
		return all, nil
	}

	known := KnownImplementations()
	for _, id := range opts.Only {
		if !slices.Contains(known, id) {
			return nil, fmt.Errorf("%w %q (known: %v)",
				ErrUnknownImplementation, id, known)
		}
	}

	selected := make([]Candidate, 0, len(opts.Only)+1)
	for _, c := range all {
		if c.ID == ReferenceID || slices.Contains(opts.Only, c.ID) {
			selected = append(selected, c)
		}
	}

	return selected, nil
}
