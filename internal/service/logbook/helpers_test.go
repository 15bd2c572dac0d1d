package logbook

import (
	"sync"
	"time"

	"github.com/zhouzirui/crystal-voice/backend/internal/model/turnlog"
)

type recordingObserver struct {
	mu      sync.Mutex
	results []SinkResult
}

func (o *recordingObserver) ObserveSink(sink string, err error) {
	o.mu.Lock()
	o.results = append(o.results, SinkResult{Sink: sink, Err: err})
	o.mu.Unlock()
}

func (o *recordingObserver) snapshot() []SinkResult {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]SinkResult(nil), o.results...)
}

func sampleRecord(id, session, input, reply string, tokens int) turnlog.Record {
	t := tokens
	return turnlog.Record{
		ID:         id,
		Timestamp:  time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC),
		UserInput:  input,
		AIResponse: reply,
		SessionID:  session,
		Metadata:   &turnlog.Metadata{ProcessingTimeMs: 42, TokensUsed: &t, Model: "knowledge-base"},
	}
}
