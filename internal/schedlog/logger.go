// Package schedlog wires the scheduling core's components to a single
// hclog.Logger, handed down from the CLI entry point. Every pipeline
// stage gets a named sub-logger so log lines are attributable without
// string prefixes.
package schedlog

import (
	"os"

	"github.com/hashicorp/go-hclog"
)

// New creates a root logger at the given level, writing to stderr.
func New(level hclog.Level) hclog.Logger {
	return hclog.New(&hclog.LoggerOptions{
		Name:       "scheduled",
		Level:      level,
		Output:     os.Stderr,
		JSONFormat: false,
	})
}

// Named returns a sub-logger scoped to one pipeline component, e.g.
// Named(root, "compiler").
func Named(root hclog.Logger, component string) hclog.Logger {
	if root == nil {
		return hclog.NewNullLogger()
	}
	return root.Named(component)
}
