package logbook

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/zhouzirui/crystal-voice/backend/internal/model/turnlog"
)

// TranscriptSink appends the human-readable text block of every turn to a file.
type TranscriptSink struct {
	mu   sync.Mutex
	path string
}

func NewTranscriptSink(path string) *TranscriptSink {
	return &TranscriptSink{path: path}
}

func (s *TranscriptSink) Name() string { return "text-transcript" }

func (s *TranscriptSink) Deliver(_ context.Context, rec turnlog.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("transcript: open %s: %w", s.path, err)
	}
	defer f.Close()

	if _, err := f.WriteString(textBlock(rec) + "\n"); err != nil {
		return fmt.Errorf("transcript: write %s: %w", s.path, err)
	}
	return nil
}
