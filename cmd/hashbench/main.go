// Package main provides the CLI entry point for hashbench, a benchmarking
// and cross-checking tool for BLAKE3 implementations.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/weiihann/hashbench/bench"
	"github.com/weiihann/hashbench/harness"
	"github.com/weiihann/hashbench/impl"
	"github.com/weiihann/hashbench/report"
	"github.com/weiihann/hashbench/workload"
)

func main() {
	level := new(slog.LevelVar)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))

	root := newRootCmd(logger, level, os.Stdout)
	if err := root.Execute(); err != nil {
		logger.Error("hashbench failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func newRootCmd(logger *slog.Logger, level *slog.LevelVar, out io.Writer) *cobra.Command {
	cfg := newConfig()

	root := &cobra.Command{
		Use:   "hashbench",
		Short: "Benchmark and cross-check BLAKE3 implementations",
		Long: `Hashbench loads every BLAKE3 implementation it knows about, times each
one against the same deterministic inputs, ranks them per input size, and
checks that they all produce the reference digest.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := cfg.bind(cmd.Flags()); err != nil {
				return err
			}

			lvl, err := parseLevel(cfg.logLevel())
			if err != nil {
				return err
			}

			level.Set(lvl)

			return nil
		},
	}

	root.SetOut(out)

	flags := root.PersistentFlags()
	flags.StringSlice(keyImpl, nil,
		fmt.Sprintf("Implementations to load (known: %v); the reference is always loaded",
			impl.KnownImplementations()))
	flags.String(keyB3sum, impl.DefaultB3sumPath,
		"Path to the b3sum binary")
	flags.Bool(keyJSON, false,
		"Output results as JSON instead of tables")
	flags.Bool(keyNoColor, false,
		"Disable colored output")
	flags.String(keyLogLevel, "info",
		"Log level: debug, info, warn, error")

	root.AddCommand(
		newRunCmd(logger, cfg),
		newVerifyCmd(logger, cfg),
		newListCmd(logger, cfg),
	)

	return root
}

func newRunCmd(logger *slog.Logger, cfg *config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the benchmark matrix and the correctness pass",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBenchmark(cmd.Context(), logger, cmd.OutOrStdout(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.StringSlice(keyCases, nil,
		fmt.Sprintf("Test cases to run (known: %v)", workload.CaseNames()))
	flags.Bool(keySkipVerify, false,
		"Skip the correctness pass")

	return cmd
}

func newVerifyCmd(logger *slog.Logger, cfg *config) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Check every implementation against the reference digest",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runVerify(cmd.Context(), logger, cmd.OutOrStdout(), cfg)
		},
	}
}

func newListCmd(logger *slog.Logger, cfg *config) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List implementations and whether they loaded",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runList(cmd.Context(), logger, cmd.OutOrStdout(), cfg)
		},
	}
}

func loadRegistry(
	ctx context.Context,
	logger *slog.Logger,
	cfg *config,
) (*impl.Registry, error) {
	candidates, err := impl.Candidates(impl.Options{
		B3sumPath: cfg.b3sumPath(),
		Only:      cfg.impls(),
	})
	if err != nil {
		return nil, err
	}

	return impl.Load(ctx, logger, candidates), nil
}

func runBenchmark(
	ctx context.Context,
	logger *slog.Logger,
	out io.Writer,
	cfg *config,
) error {
	cases, err := workload.Select(workload.Cases(), cfg.cases())
	if err != nil {
		return err
	}

	reg, err := loadRegistry(ctx, logger, cfg)
	if err != nil {
		return err
	}

	d := bench.NewDriver(reg, harness.NewRunner(nil), out, logger)

	runCfg := bench.DefaultConfig()
	runCfg.Cases = cases
	runCfg.SkipVerify = cfg.skipVerify()
	runCfg.JSON = cfg.json()
	runCfg.Color = cfg.color(out)

	if _, err := d.Run(ctx, runCfg); err != nil {
		return fmt.Errorf("run benchmark: %w", err)
	}

	return nil
}

func runVerify(
	ctx context.Context,
	logger *slog.Logger,
	out io.Writer,
	cfg *config,
) error {
	reg, err := loadRegistry(ctx, logger, cfg)
	if err != nil {
		return err
	}

	d := bench.NewDriver(reg, harness.NewRunner(nil), out, logger)

	v, err := d.Verify(ctx, impl.ReferenceID, workload.VerifyInput())
	if err != nil {
		return err
	}

	if cfg.json() {
		return report.GenerateJSON(out, v)
	}

	return report.GenerateVerification(out, v, report.Options{
		Color: cfg.color(out),
	})
}

type listEntry struct {
	ID          string   `json:"id"`
	Description string   `json:"description"`
	Available   bool     `json:"available"`
	Modes       []string `json:"modes,omitempty"`
	Error       string   `json:"error,omitempty"`
}

func runList(
	ctx context.Context,
	logger *slog.Logger,
	out io.Writer,
	cfg *config,
) error {
	reg, err := loadRegistry(ctx, logger, cfg)
	if err != nil {
		return err
	}

	entries := make([]listEntry, 0, len(reg.All()))
	for _, im := range reg.All() {
		e := listEntry{
			ID:          im.ID,
			Description: im.Description,
			Available:   im.Available,
			Modes:       im.Modes(),
		}
		if im.Err != nil {
			e.Error = im.Err.Error()
		}

		entries = append(entries, e)
	}

	env := bench.DetectEnvironment()

	if cfg.json() {
		return report.GenerateJSON(out, struct {
			Environment     report.Environment `json:"environment"`
			Implementations []listEntry        `json:"implementations"`
		}{env, entries})
	}

	if err := report.GenerateEnvironment(out, env); err != nil {
		return fmt.Errorf("write environment: %w", err)
	}

	fmt.Fprintln(out, "| Implementation | Description | Status | Modes |")
	fmt.Fprintln(out, "|----------------|-------------|--------|-------|")

	for _, e := range entries {
		status := "available"
		if !e.Available {
			status = "unavailable: " + e.Error
		}

		modes := "-"
		if len(e.Modes) > 0 {
			modes = strings.Join(e.Modes, ", ")
		}

		fmt.Fprintf(out, "| %s | %s | %s | %s |\n",
			e.ID, e.Description, status, modes)
	}

	return nil
}
