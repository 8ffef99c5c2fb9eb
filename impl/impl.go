// Package impl holds the BLAKE3 implementations under test and the registry
// recording which of them could be loaded in the current environment.
package impl

import (
	"encoding/hex"
)

// DigestSize is the length in bytes of every digest compared by the harness.
const DigestSize = 32

// Hasher is the streaming contract every adapter normalizes to.
// Update returns the receiver so calls can be chained. Finalize is called
// exactly once and returns the digest of everything written so far.
type Hasher interface {
	Update(p []byte) Hasher
	Finalize() ([]byte, error)
}

// Summer is implemented by plugins that can hash a complete input in one call.
type Summer interface {
	Sum(data []byte) ([]byte, error)
}

// Streamer is implemented by plugins that can hash incrementally.
type Streamer interface {
	NewHasher() Hasher
}

// Plugin is what a Candidate's loader produces. Capabilities are discovered
// by asserting Summer and Streamer.
type Plugin interface {
	ID() string
}

// Implementation is one registry entry.
type Implementation struct {
	ID          string
	Description string
	// Available is set once at load time and never reconsidered.
	Available bool
	// Err is the load failure for unavailable implementations.
	Err error

	plugin Plugin
}

// OneShot returns the one-shot capability. It reports false for
// unavailable implementations regardless of what the plugin supports.
func (i Implementation) OneShot() (Summer, bool) {
	if !i.Available || i.plugin == nil {
		return nil, false
	}

	s, ok := i.plugin.(Summer)

	return s, ok
}

// Streaming returns the streaming capability, with the same availability
// rule as OneShot.
func (i Implementation) Streaming() (Streamer, bool) {
	if !i.Available || i.plugin == nil {
		return nil, false
	}

	s, ok := i.plugin.(Streamer)

	return s, ok
}

// Modes lists the hashing modes the implementation supports.
func (i Implementation) Modes() []string {
	var modes []string
	if _, ok := i.OneShot(); ok {
		modes = append(modes, "one-shot")
	}
	if _, ok := i.Streaming(); ok {
		modes = append(modes, "streaming")
	}

	return modes
}

// HexDigest renders a digest as lowercase hex, two characters per byte.
func HexDigest(digest []byte) string {
	return hex.EncodeToString(digest)
}
