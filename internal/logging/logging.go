// Package logging builds the hclog loggers used across the CLI.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
)

// Name is the root logger name.
const Name = "vuetifyconf"

// Options configures a logger
type Options struct {
	Level  string
	JSON   bool
	Output io.Writer
}

// New creates the root logger. An unknown or empty level falls back to warn,
// and every line carries a run_id so that watch-mode reruns can be told apart.
func New(opts Options) hclog.Logger {
	output := opts.Output
	if output == nil {
		output = os.Stderr
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:       Name,
		Level:      ParseLevel(opts.Level),
		Output:     output,
		JSONFormat: opts.JSON,
	}).With("run_id", uuid.New().String())
}

// ParseLevel maps a level name to an hclog level.
func ParseLevel(level string) hclog.Level {
	l := hclog.LevelFromString(strings.TrimSpace(level))
	if l == hclog.NoLevel {
		return hclog.Warn
	}
	return l
}
