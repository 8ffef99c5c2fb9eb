// Package bench drives a full benchmark run: every test case against every
// capable implementation, then one correctness pass.
package bench

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/weiihann/hashbench/harness"
	"github.com/weiihann/hashbench/impl"
	"github.com/weiihann/hashbench/report"
	"github.com/weiihann/hashbench/verify"
	"github.com/weiihann/hashbench/workload"
)

// Config holds the parameters of one run.
type Config struct {
	Cases       []workload.TestCase
	ReferenceID string
	VerifyInput []byte
	SkipVerify  bool
	// JSON writes one JSON document at the end instead of text tables
	// after each case.
	JSON  bool
	Color bool
}

// DefaultConfig runs the full matrix against the reference implementation.
func DefaultConfig() Config {
	return Config{
		Cases:       workload.Cases(),
		ReferenceID: impl.ReferenceID,
		VerifyInput: workload.VerifyInput(),
	}
}

// Driver runs test cases against the implementations in a loaded registry.
type Driver struct {
	Registry    *impl.Registry
	Runner      *harness.Runner
	Out         io.Writer
	Logger      *slog.Logger
	Environment report.Environment
}

// NewDriver creates a Driver. The registry must already be loaded.
func NewDriver(
	reg *impl.Registry,
	runner *harness.Runner,
	out io.Writer,
	logger *slog.Logger,
) *Driver {
	return &Driver{
		Registry:    reg,
		Runner:      runner,
		Out:         out,
		Logger:      logger,
		Environment: DetectEnvironment(),
	}
}

// Run executes every case in order, then the correctness pass. Failures of
// individual implementations are logged and left out of the tables; only
// orchestration failures are returned.
func (d *Driver) Run(ctx context.Context, cfg Config) (*report.Run, error) {
	run := &report.Run{
		RunID:       uuid.NewString(),
		Environment: d.Environment,
		Unavailable: make(map[string]string),
	}

	for _, im := range d.Registry.All() {
		if im.Available {
			run.Available = append(run.Available, im.ID)
		} else {
			run.Unavailable[im.ID] = im.Err.Error()
		}
	}

	d.Logger.InfoContext(ctx, "starting benchmark",
		slog.String("run_id", run.RunID),
		slog.Int("cases", len(cfg.Cases)),
		slog.Any("implementations", run.Available),
	)

	opts := report.Options{Color: cfg.Color}

	if !cfg.JSON {
		if err := report.GenerateEnvironment(d.Out, run.Environment); err != nil {
			return nil, fmt.Errorf("write environment: %w", err)
		}
	}

	for _, tc := range cfg.Cases {
		// Cancellation is honoured between cases, never inside a timed loop.
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("run cancelled before %s: %w", tc.Name, err)
		}

		c := d.RunCase(ctx, tc)
		run.Cases = append(run.Cases, c)

		if cfg.JSON {
			continue
		}

		if err := report.Generate(d.Out, c, opts); err != nil {
			return nil, fmt.Errorf("report %s: %w", tc.Name, err)
		}
	}

	if !cfg.SkipVerify {
		v, err := d.Verify(ctx, cfg.ReferenceID, cfg.VerifyInput)
		if err != nil {
			return nil, err
		}

		run.Verification = &v

		if !cfg.JSON {
			if err := report.GenerateVerification(d.Out, v, opts); err != nil {
				return nil, fmt.Errorf("report verification: %w", err)
			}
		}
	}

	if cfg.JSON {
		if err := report.GenerateJSON(d.Out, run); err != nil {
			return nil, fmt.Errorf("generate JSON report: %w", err)
		}
	}

	d.Logger.InfoContext(ctx, "benchmark complete",
		slog.String("run_id", run.RunID),
	)

	return run, nil
}

// RunCase times every available implementation that supports the case's
// mode, in registry order, and ranks the results.
func (d *Driver) RunCase(ctx context.Context, tc workload.TestCase) report.Case {
	c := report.Case{
		Name:       tc.Name,
		Title:      tc.Title(),
		Mode:       tc.Mode.String(),
		BytesPerOp: tc.BytesPerOp(),
		Iterations: tc.Iterations,
	}

	results := make([]harness.Result, 0, len(d.Registry.Available()))

	for _, im := range d.Registry.Available() {
		logger := d.Logger.With(
			slog.String("case", tc.Name),
			slog.String("impl", im.ID),
		)

		op, ok := tc.Operation(im)
		if !ok {
			logger.DebugContext(ctx, "mode not supported",
				slog.String("mode", tc.Mode.String()),
			)
			c.Skipped = append(c.Skipped, im.ID)

			continue
		}

		timing, err := d.Runner.Run(op, tc.Iterations)
		if err != nil {
			logger.WarnContext(ctx, "benchmark failed",
				slog.String("error", err.Error()),
			)
			c.Skipped = append(c.Skipped, im.ID)

			continue
		}

		res := harness.FromTiming(im.ID, timing)

		logger.DebugContext(ctx, "benchmark finished",
			slog.Float64("total_ms", res.TotalTimeMs),
			slog.Float64("ops_per_sec", res.ThroughputOpsPerSec),
		)

		results = append(results, res)
	}

	if table, ok := report.Compare(results); ok {
		c.Table = &table
	}

	return c
}

// Verify runs the correctness pass over the available implementations and
// logs each mismatch. Mismatches are not errors.
func (d *Driver) Verify(
	ctx context.Context,
	referenceID string,
	input []byte,
) (verify.Verification, error) {
	v, err := verify.Verify(d.Registry.Available(), referenceID, input)
	if err != nil {
		return v, fmt.Errorf("verify: %w", err)
	}

	for _, id := range v.Mismatches() {
		d.Logger.WarnContext(ctx, "digest mismatch",
			slog.String("impl", id),
			slog.String("reference", referenceID),
		)
	}

	return v, nil
}
