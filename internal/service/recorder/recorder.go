package recorder

import (
	"context"
	"math"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/zhouzirui/crystal-voice/backend/internal/model/assistant"
	"github.com/zhouzirui/crystal-voice/backend/internal/model/turnlog"
	"go.uber.org/zap"
)

// WelcomeModel tags the greeting turn.
const WelcomeModel = "welcome-message"

// Appender is the logbook side of the recorder.
type Appender interface {
	Append(ctx context.Context, rec turnlog.Record) error
}

// Recorder turns completed exchanges into log records for one session.
type Recorder struct {
	sessionID string
	profile   assistant.Profile
	logbook   Appender
	logger    *zap.Logger
	now       func() time.Time

	welcomeOnce sync.Once
}

func New(sessionID string, profile assistant.Profile, logbook Appender, logger *zap.Logger) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{
		sessionID: sessionID,
		profile:   profile,
		logbook:   logbook,
		logger:    logger.Named("recorder").With(zap.String("session", sessionID)),
		now:       time.Now,
	}
}

func (r *Recorder) SessionID() string { return r.sessionID }

// EstimateTokens approximates one token per four characters.
func EstimateTokens(text string) int {
	return int(math.Ceil(float64(utf8.RuneCountInString(text)) / 4))
}

// Record builds and forwards a record. A logbook failure is logged and
// otherwise ignored; the record is returned either way.
func (r *Recorder) Record(ctx context.Context, userInput, aiResponse string, meta turnlog.Metadata) turnlog.Record {
	if meta.TokensUsed == nil {
		tokens := EstimateTokens(aiResponse)
		meta.TokensUsed = &tokens
	}

	now := r.now().UTC()
	rec := turnlog.Record{
		ID:         turnlog.NewRecordID(now),
		Timestamp:  now,
		UserInput:  userInput,
		AIResponse: aiResponse,
		SessionID:  r.sessionID,
		Metadata:   &meta,
	}

	if err := r.logbook.Append(ctx, rec); err != nil {
		r.logger.Warn("turn not persisted", zap.String("record", rec.ID), zap.Error(err))
	}
	return rec
}

// RecordWelcome logs the greeting once; later calls report false.
func (r *Recorder) RecordWelcome(ctx context.Context) (turnlog.Record, bool) {
	var (
		rec      turnlog.Record
		recorded bool
	)
	r.welcomeOnce.Do(func() {
		zero := 0
		rec = r.Record(ctx, r.profile.WelcomeInput, r.profile.WelcomeMessage, turnlog.Metadata{
			ProcessingTimeMs: 0,
			TokensUsed:       &zero,
			Model:            WelcomeModel,
		})
		recorded = true
	})
	return rec, recorded
}
