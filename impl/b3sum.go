package impl

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// DefaultB3sumPath is looked up on PATH when no explicit binary is configured.
const DefaultB3sumPath = "b3sum"

const b3sumProbeTimeout = 5 * time.Second

// b3sumPlugin shells out to the b3sum command-line tool, one process per
// digest. Its timings include process start-up.
type b3sumPlugin struct {
	path    string
	version string
}

// loadB3sum resolves the binary and checks it answers --version.
func loadB3sum(path string) func(ctx context.Context) (Plugin, error) {
	return func(ctx context.Context) (Plugin, error) {
		if path == "" {
			path = DefaultB3sumPath
		}

		resolved, err := exec.LookPath(path)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", path, err)
		}

		ctx, cancel := context.WithTimeout(ctx, b3sumProbeTimeout)
		defer cancel()

		var stdout, stderr bytes.Buffer

		cmd := exec.CommandContext(ctx, resolved, "--version")
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr

		if err := cmd.Run(); err != nil {
			return nil, fmt.Errorf(
				"probe %s: %w\nstderr: %s", resolved, err, stderr.String(),
			)
		}

		return &b3sumPlugin{
			path:    resolved,
			version: strings.TrimSpace(stdout.String()),
		}, nil
	}
}

func (p *b3sumPlugin) ID() string { return "b3sum" }

func (p *b3sumPlugin) Sum(data []byte) ([]byte, error) {
	cmd := exec.Command(p.path, "--no-names")
	cmd.Stdin = bytes.NewReader(data)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf(
			"b3sum failed: %w\nstderr: %s", err, stderr.String(),
		)
	}

	return parseB3sumOutput(stdout.String())
}

// parseB3sumOutput decodes the hex digest printed by b3sum --no-names.
func parseB3sumOutput(out string) ([]byte, error) {
	fields := strings.Fields(out)
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty b3sum output")
	}

	digest, err := hex.DecodeString(fields[0])
	if err != nil {
		return nil, fmt.Errorf("decode digest %q: %w", fields[0], err)
	}

	if len(digest) != DigestSize {
		return nil, fmt.Errorf(
			"digest is %d bytes, want %d", len(digest), DigestSize,
		)
	}

	return digest, nil
}
