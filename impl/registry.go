package impl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"
)

// LoadError records why a candidate could not be loaded.
type LoadError struct {
	ID  string
	Err error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.ID, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Candidate is a known implementation that may or may not load.
type Candidate struct {
	ID          string
	Description string
	Load        func(ctx context.Context) (Plugin, error)
}

// Registry is the availability table. It is filled once by Load and only
// read afterwards.
type Registry struct {
	impls  []Implementation
	index  map[string]int
	logger *slog.Logger
}

// NewRegistry returns an empty registry.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		index:  make(map[string]int),
		logger: logger,
	}
}

// Load attempts every candidate and waits for all attempts to settle before
// building the registry. A failing or panicking loader marks only its own
// candidate unavailable.
func Load(
	ctx context.Context,
	logger *slog.Logger,
	candidates []Candidate,
) *Registry {
	type outcome struct {
		plugin Plugin
		err    error
	}

	outcomes := make([]outcome, len(candidates))

	var g errgroup.Group
	for i, c := range candidates {
		i, c := i, c
		g.Go(func() error {
			p, err := settle(ctx, c)
			outcomes[i] = outcome{plugin: p, err: err}

			// Never fail the group: one candidate must not cancel another.
			return nil
		})
	}

	_ = g.Wait()

	r := NewRegistry(logger)
	for i, c := range candidates {
		r.Register(c, outcomes[i].plugin, outcomes[i].err)
	}

	return r
}

// settle runs one loader plus its self-check, converting panics to errors.
func settle(ctx context.Context, c Candidate) (p Plugin, err error) {
	defer func() {
		if v := recover(); v != nil {
			p = nil
			err = fmt.Errorf("panic: %v", v)
		}
	}()

	if c.Load == nil {
		return nil, errors.New("no loader")
	}

	p, err = c.Load(ctx)
	if err != nil {
		return nil, err
	}

	if p == nil {
		return nil, errors.New("loader returned no plugin")
	}

	if err := selfCheck(p); err != nil {
		return nil, fmt.Errorf("self-check: %w", err)
	}

	return p, nil
}

// selfCheck makes sure a plugin exposes at least one mode and that every
// exposed mode produces a digest of the expected size.
func selfCheck(p Plugin) error {
	s, oneShot := p.(Summer)
	st, streaming := p.(Streamer)

	if !oneShot && !streaming {
		return errors.New("plugin supports neither one-shot nor streaming")
	}

	if oneShot {
		sum, err := s.Sum(nil)
		if err != nil {
			return fmt.Errorf("one-shot: %w", err)
		}
		if len(sum) != DigestSize {
			return fmt.Errorf("one-shot digest is %d bytes, want %d",
				len(sum), DigestSize)
		}
	}

	if streaming {
		sum, err := st.NewHasher().Finalize()
		if err != nil {
			return fmt.Errorf("streaming: %w", err)
		}
		if len(sum) != DigestSize {
			return fmt.Errorf("streaming digest is %d bytes, want %d",
				len(sum), DigestSize)
		}
	}

	return nil
}

// Register records the settled outcome of one candidate. A nil err with a
// non-nil plugin makes the implementation available.
func (r *Registry) Register(c Candidate, p Plugin, err error) {
	if _, dup := r.index[c.ID]; dup {
		r.logger.Warn("duplicate implementation ignored",
			slog.String("impl", c.ID),
		)

		return
	}

	if err == nil && p == nil {
		err = errors.New("loader returned no plugin")
	}

	im := Implementation{
		ID:          c.ID,
		Description: c.Description,
	}

	if err != nil {
		im.Err = &LoadError{ID: c.ID, Err: err}

		r.logger.Warn("implementation unavailable",
			slog.String("impl", c.ID),
			slog.String("error", err.Error()),
		)
	} else {
		im.Available = true
		im.plugin = p

		r.logger.Info("implementation loaded",
			slog.String("impl", c.ID),
			slog.String("modes", strings.Join(im.Modes(), ",")),
		)
	}

	r.index[c.ID] = len(r.impls)
	r.impls = append(r.impls, im)
}

// Available returns the loaded implementations in registration order.
func (r *Registry) Available() []Implementation {
	out := make([]Implementation, 0, len(r.impls))
	for _, im := range r.impls {
		if im.Available {
			out = append(out, im)
		}
	}

	return out
}

// All returns every registered implementation, available or not.
func (r *Registry) All() []Implementation {
	out := make([]Implementation, len(r.impls))
	copy(out, r.impls)

	return out
}

// Lookup finds an implementation by ID.
func (r *Registry) Lookup(id string) (Implementation, bool) {
	i, ok := r.index[id]
	if !ok {
		return Implementation{}, false
	}

	return r.impls[i], true
}
