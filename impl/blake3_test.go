package impl

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func libraryRegistry(t *testing.T) *Registry {
	t.Helper()

	cands, err := Candidates(Options{
		Only: []string{"lukechampine", "glycerine", "zeebo-xof"},
	})
	require.NoError(t, err)

	reg := Load(context.Background(), discardLogger(), cands)
	require.Len(t, reg.Available(), 4, "in-process libraries must always load")

	return reg
}

func TestOneShotDeterministic(t *testing.T) {
	reg := libraryRegistry(t)
	inputs := [][]byte{
		nil,
		[]byte("hello world"),
		bytes.Repeat([]byte{0xa5}, 100*1024),
	}

	for _, im := range reg.Available() {
		s, ok := im.OneShot()
		if !ok {
			continue
		}

		for _, in := range inputs {
			first, err := s.Sum(in)
			require.NoError(t, err, im.ID)
			second, err := s.Sum(in)
			require.NoError(t, err, im.ID)

			assert.Equal(t, first, second, "%s not deterministic", im.ID)
			assert.Len(t, first, DigestSize)
		}
	}
}

func TestImplementationsAgreeWithReference(t *testing.T) {
	reg := libraryRegistry(t)

	ref, ok := reg.Lookup(ReferenceID)
	require.True(t, ok)

	refSum, ok := ref.OneShot()
	require.True(t, ok)

	want, err := refSum.Sum([]byte("hello world"))
	require.NoError(t, err)

	for _, im := range reg.Available() {
		s, ok := im.OneShot()
		if !ok {
			continue
		}

		t.Run(im.ID, func(t *testing.T) {
			got, err := s.Sum([]byte("hello world"))
			require.NoError(t, err)
			assert.Equal(t, HexDigest(want), HexDigest(got))
		})
	}
}

func TestStreamingMatchesOneShotOfConcatenation(t *testing.T) {
	reg := libraryRegistry(t)

	chunk := bytes.Repeat([]byte("0123456789abcdef"), 64)
	const chunks = 100

	whole := bytes.Repeat(chunk, chunks)

	ref, _ := reg.Lookup(ReferenceID)
	refSum, _ := ref.OneShot()
	want, err := refSum.Sum(whole)
	require.NoError(t, err)

	for _, im := range reg.Available() {
		st, ok := im.Streaming()
		if !ok {
			continue
		}

		t.Run(im.ID, func(t *testing.T) {
			h := st.NewHasher()
			for i := 0; i < chunks; i++ {
				h = h.Update(chunk)
			}

			got, err := h.Finalize()
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestStreamingOnlyHasNoOneShot(t *testing.T) {
	reg := libraryRegistry(t)

	xof, ok := reg.Lookup("zeebo-xof")
	require.True(t, ok)

	_, oneShot := xof.OneShot()
	assert.False(t, oneShot)

	_, streaming := xof.Streaming()
	assert.True(t, streaming)
}
