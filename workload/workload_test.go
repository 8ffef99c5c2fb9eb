package workload

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weiihann/hashbench/impl"
)

func TestCasesMatrix(t *testing.T) {
	cases := Cases()

	tests := []struct {
		name       string
		size       int
		iterations int
		mode       Mode
		chunks     int
	}{
		{"small", 11, 10000, OneShot, 0},
		{"medium", KiB, 1000, OneShot, 0},
		{"large", 100 * KiB, 100, OneShot, 0},
		{"xlarge", MiB, 10, OneShot, 0},
		{"streaming", KiB, 100, Streaming, 100},
	}

	require.Len(t, cases, len(tests))

	for i, tt := range tests {
		tc := cases[i]
		assert.Equal(t, tt.name, tc.Name)
		assert.Len(t, tc.Payload, tt.size, tt.name)
		assert.Equal(t, tt.iterations, tc.Iterations, tt.name)
		assert.Equal(t, tt.mode, tc.Mode, tt.name)
		assert.Equal(t, tt.chunks, tc.Chunks, tt.name)
		assert.Positive(t, tc.Iterations, tt.name)
	}

	assert.Equal(t, VerifyText, string(cases[0].Payload))
}

func TestCaseNamesMatchMatrix(t *testing.T) {
	cases := Cases()
	names := CaseNames()

	require.Len(t, names, len(cases))
	for i, tc := range cases {
		assert.Equal(t, tc.Name, names[i])
	}

	names[0] = "mutated"
	assert.Equal(t, "small", CaseNames()[0])
}

func TestCasesDeterministic(t *testing.T) {
	first, second := Cases(), Cases()

	for i := range first {
		if !bytes.Equal(first[i].Payload, second[i].Payload) {
			t.Errorf("case %s: payload differs between calls", first[i].Name)
		}
	}
}

func TestGeneratorDeterministic(t *testing.T) {
	a := NewGenerator(42).Payload(4096)
	b := NewGenerator(42).Payload(4096)
	c := NewGenerator(43).Payload(4096)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestIterationsShrinkAsPayloadGrows(t *testing.T) {
	var oneShot []TestCase
	for _, tc := range Cases() {
		if tc.Mode == OneShot {
			oneShot = append(oneShot, tc)
		}
	}

	for i := 1; i < len(oneShot); i++ {
		prev, cur := oneShot[i-1], oneShot[i]
		assert.Greater(t, cur.BytesPerOp(), prev.BytesPerOp())
		assert.Less(t, cur.Iterations, prev.Iterations)
	}
}

func TestTitle(t *testing.T) {
	cases := Cases()

	assert.Equal(t, "small (11 B, x10000)", cases[0].Title())
	assert.Equal(t, "large (100 KiB, x100)", cases[2].Title())
	assert.Equal(t, "xlarge (1 MiB, x10)", cases[3].Title())
	assert.Equal(t, "streaming (100 x 1 KiB chunks, x100)", cases[4].Title())
}

func TestSelect(t *testing.T) {
	cases := Cases()

	all, err := Select(cases, nil)
	require.NoError(t, err)
	assert.Len(t, all, len(cases))

	picked, err := Select(cases, []string{"streaming", "small"})
	require.NoError(t, err)
	require.Len(t, picked, 2)
	assert.Equal(t, "small", picked[0].Name)
	assert.Equal(t, "streaming", picked[1].Name)

	_, err = Select(cases, []string{"huge"})
	assert.ErrorIs(t, err, ErrUnknownCase)
}

func TestModeString(t *testing.T) {
	assert.Equal(t, "one-shot", OneShot.String())
	assert.Equal(t, "streaming", Streaming.String())
	assert.Equal(t, "mode(7)", Mode(7).String())
}

type countingPlugin struct {
	sums    int
	updates int
	bytes   int
	final   int
}

func (p *countingPlugin) ID() string { return "counting" }

func (p *countingPlugin) Sum(data []byte) ([]byte, error) {
	p.sums++
	p.bytes += len(data)

	return make([]byte, impl.DigestSize), nil
}

func (p *countingPlugin) NewHasher() impl.Hasher { return &countingHasher{p: p} }

type countingHasher struct{ p *countingPlugin }

func (h *countingHasher) Update(b []byte) impl.Hasher {
	h.p.updates++
	h.p.bytes += len(b)

	return h
}

func (h *countingHasher) Finalize() ([]byte, error) {
	h.p.final++

	return make([]byte, impl.DigestSize), nil
}

type oneShotOnly struct{ err error }

func (oneShotOnly) ID() string { return "oneshot" }

func (o oneShotOnly) Sum([]byte) ([]byte, error) {
	return make([]byte, impl.DigestSize), o.err
}

func loadOne(t *testing.T, id string, p impl.Plugin) impl.Implementation {
	t.Helper()

	reg := impl.NewRegistry(slog.New(slog.NewTextHandler(io.Discard, nil)))
	reg.Register(impl.Candidate{ID: id}, p, nil)

	im, ok := reg.Lookup(id)
	require.True(t, ok)

	return im
}

func TestOperationOneShot(t *testing.T) {
	p := &countingPlugin{}
	im := loadOne(t, "counting", p)

	tc := Cases()[1]
	op, ok := tc.Operation(im)
	require.True(t, ok)

	require.NoError(t, op())
	assert.Equal(t, 1, p.sums)
	assert.Equal(t, KiB, p.bytes)
	assert.Zero(t, p.updates)
}

func TestOperationStreaming(t *testing.T) {
	p := &countingPlugin{}
	im := loadOne(t, "counting", p)

	tc := Cases()[4]
	op, ok := tc.Operation(im)
	require.True(t, ok)

	require.NoError(t, op())
	assert.Equal(t, 100, p.updates)
	assert.Equal(t, 1, p.final)
	assert.Equal(t, tc.BytesPerOp(), p.bytes)
	assert.Zero(t, p.sums)
}

func TestOperationMissingMode(t *testing.T) {
	im := loadOne(t, "oneshot", oneShotOnly{})

	_, ok := Cases()[4].Operation(im)
	assert.False(t, ok, "one-shot-only implementation has no streaming op")

	_, ok = Cases()[0].Operation(im)
	assert.True(t, ok)
}

func TestOperationPropagatesError(t *testing.T) {
	boom := errors.New("boom")
	im := loadOne(t, "oneshot", oneShotOnly{err: boom})

	op, ok := Cases()[0].Operation(im)
	require.True(t, ok)
	assert.ErrorIs(t, op(), boom)
}

func TestOperationUnavailable(t *testing.T) {
	reg := impl.Load(context.Background(),
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		[]impl.Candidate{{
			ID: "gone",
			Load: func(context.Context) (impl.Plugin, error) {
				return nil, errors.New("not installed")
			},
		}},
	)

	im, ok := reg.Lookup("gone")
	require.True(t, ok)

	for _, tc := range Cases() {
		_, ok := tc.Operation(im)
		assert.False(t, ok, tc.Name)
	}
}
