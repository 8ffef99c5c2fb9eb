package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	keyImpl       = "impl"
	keyCases      = "cases"
	keyB3sum      = "b3sum"
	keyJSON       = "json"
	keySkipVerify = "skip-verify"
	keyNoColor    = "no-color"
	keyLogLevel   = "log-level"
)

// config resolves every setting from flags first, then HASHBENCH_*
// environment variables, then flag defaults.
type config struct {
	v *viper.Viper
}

func newConfig() *config {
	v := viper.New()
	v.SetEnvPrefix("HASHBENCH")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	return &config{v: v}
}

func (c *config) bind(flags *pflag.FlagSet) error {
	if err := c.v.BindPFlags(flags); err != nil {
		return fmt.Errorf("bind flags: %w", err)
	}

	return nil
}

func (c *config) impls() []string   { return c.list(keyImpl) }
func (c *config) cases() []string   { return c.list(keyCases) }
func (c *config) b3sumPath() string { return c.v.GetString(keyB3sum) }
func (c *config) json() bool        { return c.v.GetBool(keyJSON) }
func (c *config) skipVerify() bool  { return c.v.GetBool(keySkipVerify) }
func (c *config) logLevel() string  { return c.v.GetString(keyLogLevel) }
func (c *config) noColor() bool     { return c.v.GetBool(keyNoColor) }

// list reads a comma separated setting. Environment values arrive as a
// single string, flag values as a slice.
func (c *config) list(key string) []string {
	var out []string
	for _, item := range c.v.GetStringSlice(key) {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}

	return out
}

// color reports whether output to w should be styled.
func (c *config) color(w io.Writer) bool {
	if c.noColor() {
		return false
	}

	f, ok := w.(*os.File)
	if !ok {
		return false
	}

	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func parseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", s, err)
	}

	return lvl, nil
}
