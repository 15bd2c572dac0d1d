package logbook

import (
	"context"

	"github.com/zhouzirui/crystal-voice/backend/internal/model/turnlog"
	"golang.org/x/sync/errgroup"
)

// Sink receives a copy of every completed turn.
type Sink interface {
	Name() string
	Deliver(ctx context.Context, rec turnlog.Record) error
}

// SinkResult is the outcome of one delivery attempt.
type SinkResult struct {
	Sink string
	Err  error
}

// deliverAll runs every sink concurrently and waits for all of them. A
// failing sink never cancels the others.
func deliverAll(ctx context.Context, sinks []Sink, rec turnlog.Record) []SinkResult {
	results := make([]SinkResult, len(sinks))

	var g errgroup.Group
	for i, sink := range sinks {
		g.Go(func() error {
			results[i] = SinkResult{Sink: sink.Name(), Err: sink.Deliver(ctx, rec)}
			return nil
		})
	}
	_ = g.Wait()

	return results
}
