// Package verify checks that every one-shot capable implementation produces
// the same digest as the reference for a shared input.
package verify

import (
	"errors"
	"fmt"

	"github.com/weiihann/hashbench/impl"
)

// ErrReferenceUnavailable is returned when the reference implementation is
// not loaded or cannot hash in one shot.
var ErrReferenceUnavailable = errors.New("reference implementation unavailable")

// Entry is one implementation's outcome.
type Entry struct {
	ID     string `json:"id"`
	Digest string `json:"digest"`
	Match  bool   `json:"match"`
	// Error is set when the implementation failed to produce a digest.
	Error string `json:"error,omitempty"`
}

// Verification is the outcome of one correctness pass.
type Verification struct {
	ReferenceID     string  `json:"reference_id"`
	ReferenceDigest string  `json:"reference_digest"`
	Input           string  `json:"input"`
	Entries         []Entry `json:"entries"`
	// Skipped lists streaming-only implementations, which are not checked.
	Skipped []string `json:"skipped,omitempty"`
}

// Matches maps each checked implementation ID to whether it agreed with the
// reference.
func (v Verification) Matches() map[string]bool {
	m := make(map[string]bool, len(v.Entries))
	for _, e := range v.Entries {
		m[e.ID] = e.Match
	}

	return m
}

// AllMatch reports whether every checked implementation agreed.
func (v Verification) AllMatch() bool {
	for _, e := range v.Entries {
		if !e.Match {
			return false
		}
	}

	return true
}

// Mismatches returns the IDs that disagreed with the reference.
func (v Verification) Mismatches() []string {
	var ids []string
	for _, e := range v.Entries {
		if !e.Match {
			ids = append(ids, e.ID)
		}
	}

	return ids
}

// Verify hashes input once with the reference and once with every other
// available one-shot implementation, comparing hex digests. Unavailable
// implementations are ignored. A mismatch or a failing implementation is
// recorded, never returned as an error.
func Verify(
	impls []impl.Implementation,
	referenceID string,
	input []byte,
) (Verification, error) {
	v := Verification{
		ReferenceID: referenceID,
		Input:       string(input),
	}

	var ref impl.Summer
	for _, im := range impls {
		if im.ID != referenceID {
			continue
		}

		if s, ok := im.OneShot(); ok {
			ref = s
		}

		break
	}

	if ref == nil {
		return v, fmt.Errorf("%w: %s", ErrReferenceUnavailable, referenceID)
	}

	refDigest, err := sum(ref, input)
	if err != nil {
		return v, fmt.Errorf("reference %s: %w", referenceID, err)
	}

	v.ReferenceDigest = impl.HexDigest(refDigest)

	for _, im := range impls {
		if im.ID == referenceID || !im.Available {
			continue
		}

		s, ok := im.OneShot()
		if !ok {
			v.Skipped = append(v.Skipped, im.ID)

			continue
		}

		entry := Entry{ID: im.ID}

		digest, err := sum(s, input)
		if err != nil {
			entry.Error = err.Error()
		} else {
			entry.Digest = impl.HexDigest(digest)
			entry.Match = entry.Digest == v.ReferenceDigest
		}

		v.Entries = append(v.Entries, entry)
	}

	return v, nil
}

// sum hashes input, converting a panic in the implementation into an error.
func sum(s impl.Summer, input []byte) (digest []byte, err error) {
	defer func() {
		if v := recover(); v != nil {
			digest, err = nil, fmt.Errorf("panic: %v", v)
		}
	}()

	return s.Sum(input)
}
