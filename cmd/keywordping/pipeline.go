package main

import (
	"fmt"
	"io"

	"github.com/keywordping/keywordping-go/internal/eventlog"
	"github.com/keywordping/keywordping-go/pkg/keywordping"
)

// pipelineStats counts what a pipeline has seen.
type pipelineStats struct {
	Messages int
	Flagged  int
	Skipped  int // Undecodable lines
}

func (s pipelineStats) String() string {
	return fmt.Sprintf("%d messages, %d flagged, %d skipped lines", s.Messages, s.Flagged, s.Skipped)
}

// pipeline wires an event-log host to an engine and prints every message
// the engine flags.
type pipeline struct {
	engine *keywordping.Engine
	host   *eventlog.FileHost
	stats  pipelineStats
	outErr error
}

func newPipeline(ownerID, format string, out io.Writer) (*pipeline, error) {
	if !validFormats[format] {
		return nil, fmt.Errorf("invalid format %q (valid: jsonl, pretty)", format)
	}

	p := &pipeline{}
	dir := eventlog.NewDirectory(ownerID)

	engine, err := keywordping.NewEngine(dir, keywordping.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	p.engine = engine

	p.host = eventlog.NewFileHost(dir,
		eventlog.WithLogger(logger),
		eventlog.WithErrorHandler(func(err error) {
			p.stats.Skipped++
			logger.Warn("skipping event", "error", err)
		}),
		eventlog.WithNotify(func(msg *keywordping.Message) error {
			p.stats.Flagged++
			err := OutputMatch(format, newMatch(msg, engine.Evaluate(msg)), out)
			if err != nil && p.outErr == nil {
				p.outErr = err
			}
			return err
		}),
	)
	p.host.OnMessageArrived(func(*keywordping.Message) {
		p.stats.Messages++
	})
	engine.Attach(p.host)
	return p, nil
}
