package impl

import (
	"context"
	"fmt"
	"io"

	glycerine "github.com/glycerine/blake3"
	zeebo "github.com/zeebo/blake3"
	luke "lukechampine.com/blake3"
)

// zeeboPlugin is the harness baseline: the SIMD-accelerated
// github.com/zeebo/blake3 package.
type zeeboPlugin struct{}

func loadZeebo(context.Context) (Plugin, error) { return zeeboPlugin{}, nil }

func (zeeboPlugin) ID() string { return ReferenceID }

func (zeeboPlugin) Sum(data []byte) ([]byte, error) {
	sum := zeebo.Sum256(data)

	return sum[:], nil
}

func (zeeboPlugin) NewHasher() Hasher {
	return &zeeboHasher{h: zeebo.New()}
}

type zeeboHasher struct {
	h *zeebo.Hasher
}

func (z *zeeboHasher) Update(p []byte) Hasher {
	_, _ = z.h.Write(p)

	return z
}

func (z *zeeboHasher) Finalize() ([]byte, error) {
	return z.h.Sum(nil), nil
}

// zeeboXOFPlugin finalizes by reading the first DigestSize bytes of the
// extendable output instead of calling Sum. It has no one-shot mode.
type zeeboXOFPlugin struct{}

func loadZeeboXOF(context.Context) (Plugin, error) { return zeeboXOFPlugin{}, nil }

func (zeeboXOFPlugin) ID() string { return "zeebo-xof" }

func (zeeboXOFPlugin) NewHasher() Hasher {
	return &zeeboXOFHasher{h: zeebo.New()}
}

type zeeboXOFHasher struct {
	h *zeebo.Hasher
}

func (z *zeeboXOFHasher) Update(p []byte) Hasher {
	_, _ = z.h.Write(p)

	return z
}

func (z *zeeboXOFHasher) Finalize() ([]byte, error) {
	out := make([]byte, DigestSize)
	if _, err := io.ReadFull(z.h.Digest(), out); err != nil {
		return nil, fmt.Errorf("read xof: %w", err)
	}

	return out, nil
}

type lukePlugin struct{}

func loadLuke(context.Context) (Plugin, error) { return lukePlugin{}, nil }

func (lukePlugin) ID() string { return "lukechampine" }

func (lukePlugin) Sum(data []byte) ([]byte, error) {
	sum := luke.Sum256(data)

	return sum[:], nil
}

func (lukePlugin) NewHasher() Hasher {
	return &lukeHasher{h: luke.New(DigestSize, nil)}
}

type lukeHasher struct {
	h *luke.Hasher
}

func (l *lukeHasher) Update(p []byte) Hasher {
	_, _ = l.h.Write(p)

	return l
}

func (l *lukeHasher) Finalize() ([]byte, error) {
	return l.h.Sum(nil), nil
}

// glycerinePlugin has no one-shot helper; Sum builds a fresh hasher per call.
type glycerinePlugin struct{}

func loadGlycerine(context.Context) (Plugin, error) { return glycerinePlugin{}, nil }

func (glycerinePlugin) ID() string { return "glycerine" }

func (glycerinePlugin) Sum(data []byte) ([]byte, error) {
	h := glycerine.New(DigestSize, nil)
	_, _ = h.Write(data)

	return h.Sum(nil), nil
}

func (glycerinePlugin) NewHasher() Hasher {
	return &glycerineHasher{h: glycerine.New(DigestSize, nil)}
}

type glycerineHasher struct {
	h *glycerine.Hasher
}

func (g *glycerineHasher) Update(p []byte) Hasher {
	_, _ = g.h.Write(p)

	return g
}

func (g *glycerineHasher) Finalize() ([]byte, error) {
	return g.h.Sum(nil), nil
}
