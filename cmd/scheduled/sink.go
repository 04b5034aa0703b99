package main

import (
	"context"
	"encoding/json"
	"io"

	"github.com/gitrdm/scheduled/internal/report"
)

// stdoutSink writes a Solution (or ParetoFrontier) to w as pretty-printed
// JSON. It is the trivial ScheduleSink this CLI wires for direct
// stdout/file consumption; a real deployment would swap this for a
// database or message-bus sink without touching the solve pipeline.
type stdoutSink struct {
	w io.Writer
}

func newStdoutSink(w io.Writer) *stdoutSink {
	return &stdoutSink{w: w}
}

func (s *stdoutSink) WriteSolution(_ context.Context, sol *report.Solution) error {
	enc := json.NewEncoder(s.w)
	enc.SetIndent("", "  ")
	return enc.Encode(sol)
}

func (s *stdoutSink) WriteFrontier(_ context.Context, frontier *report.ParetoFrontier) error {
	enc := json.NewEncoder(s.w)
	enc.SetIndent("", "  ")
	return enc.Encode(frontier)
}
