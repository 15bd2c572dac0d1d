package logbook

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/zhouzirui/crystal-voice/backend/internal/model/settings"
	"github.com/zhouzirui/crystal-voice/backend/internal/model/turnlog"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// DefaultSinkTimeout bounds one background delivery round.
const DefaultSinkTimeout = 10 * time.Second

// SinkObserver counts sink outcomes.
type SinkObserver interface {
	ObserveSink(sink string, err error)
}

// Options wires optional collaborators. Zero values pick production defaults.
type Options struct {
	Durable         Store
	TranscriptDir   string
	SinkTimeout     time.Duration
	HTTPClient      *http.Client
	AirtableBaseURL string
	SheetsOptions   []option.ClientOption
	Observer        SinkObserver
	Logger          *zap.Logger
}

// Service owns the turn log. Every record is kept in memory; the durable
// store receives it too while local persistence is enabled, and the remote
// sinks get a copy in the background.
type Service struct {
	mu       sync.Mutex
	live     *MemoryStore
	durable  Store
	settings settings.Settings
	sinks    []Sink

	opts   Options
	wg     sync.WaitGroup
	logger *zap.Logger
}

func NewService(ctx context.Context, initial settings.Settings, opts Options) *Service {
	if opts.SinkTimeout <= 0 {
		opts.SinkTimeout = DefaultSinkTimeout
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	s := &Service{
		live:    NewMemoryStore(),
		durable: opts.Durable,
		opts:    opts,
		logger:  opts.Logger.Named("logbook"),
	}
	s.UpdateSettings(ctx, initial)
	return s
}

// Load replaces the in-memory log with the durable one.
func (s *Service) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.durable == nil || !s.settings.EnableLocalPersistence {
		return nil
	}
	records, err := s.durable.List(ctx)
	if err != nil {
		return fmt.Errorf("logbook: load: %w", err)
	}
	s.live.replace(records)
	s.logger.Info("turn log loaded", zap.Int("records", len(records)))
	return nil
}

// Settings returns the active sink selection.
func (s *Service) Settings() settings.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// UpdateSettings swaps the sink selection. A remote sink that cannot be built
// is logged and skipped.
func (s *Service) UpdateSettings(ctx context.Context, next settings.Settings) {
	sinks := s.buildSinks(ctx, next)

	s.mu.Lock()
	s.settings = next
	s.sinks = sinks
	s.mu.Unlock()
}

func (s *Service) buildSinks(ctx context.Context, cfg settings.Settings) []Sink {
	var sinks []Sink

	if cfg.EnableTextExport {
		path, err := cfg.TranscriptFile(s.opts.TranscriptDir)
		if err != nil {
			s.logger.Warn("text transcript sink unavailable", zap.String("path", cfg.TextExportPath), zap.Error(err))
		} else {
			sinks = append(sinks, NewTranscriptSink(path))
		}
	}
	if cfg.EnableAirtable {
		if cfg.Airtable.Valid() {
			sinks = append(sinks, NewAirtableSink(*cfg.Airtable, s.opts.AirtableBaseURL, s.opts.HTTPClient))
		} else {
			s.logger.Warn("airtable sink enabled without complete config")
		}
	}
	if cfg.EnableGoogleSheets {
		if cfg.GoogleSheets.Valid() {
			sink, err := NewSheetsSink(ctx, *cfg.GoogleSheets, s.opts.SheetsOptions...)
			if err != nil {
				s.logger.Warn("google sheets sink unavailable", zap.Error(err))
			} else {
				sinks = append(sinks, sink)
			}
		} else {
			s.logger.Warn("google sheets sink enabled without complete config")
		}
	}
	return sinks
}

// Append stores rec and schedules remote delivery. Only a durable store
// failure is returned; sink failures are logged and counted.
func (s *Service) Append(ctx context.Context, rec turnlog.Record) error {
	s.mu.Lock()
	_ = s.live.Append(ctx, rec)

	var persistErr error
	if s.durable != nil && s.settings.EnableLocalPersistence {
		persistErr = s.durable.Append(ctx, rec)
		s.report(SinkResult{Sink: "local", Err: persistErr})
	}
	sinks := s.sinks
	s.mu.Unlock()

	s.dispatch(rec, sinks)

	if persistErr != nil {
		return fmt.Errorf("logbook: persist %s: %w", rec.ID, persistErr)
	}
	return nil
}

func (s *Service) dispatch(rec turnlog.Record, sinks []Sink) {
	if len(sinks) == 0 {
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), s.opts.SinkTimeout)
		defer cancel()

		for _, result := range deliverAll(ctx, sinks, rec) {
			s.report(result)
		}
	}()
}

func (s *Service) report(result SinkResult) {
	if s.opts.Observer != nil {
		s.opts.Observer.ObserveSink(result.Sink, result.Err)
	}
	if result.Err != nil {
		s.logger.Warn("sink delivery failed", zap.String("sink", result.Sink), zap.Error(result.Err))
	}
}

// Flush blocks until background deliveries have finished.
func (s *Service) Flush() {
	s.wg.Wait()
}

// List returns every record in append order.
func (s *Service) List(ctx context.Context) []turnlog.Record {
	records, _ := s.live.List(ctx)
	return records
}

// ListBySession returns the records of one session in append order.
func (s *Service) ListBySession(ctx context.Context, sessionID string) []turnlog.Record {
	all := s.List(ctx)
	out := make([]turnlog.Record, 0, len(all))
	for _, rec := range all {
		if rec.SessionID == sessionID {
			out = append(out, rec)
		}
	}
	return out
}

// Clear drops every record. It never interleaves with Append.
func (s *Service) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_ = s.live.Clear(ctx)
	if s.durable != nil && s.settings.EnableLocalPersistence {
		if err := s.durable.Clear(ctx); err != nil {
			return fmt.Errorf("logbook: clear: %w", err)
		}
	}
	s.logger.Info("turn log cleared")
	return nil
}

func (s *Service) Stats(ctx context.Context) turnlog.Stats {
	return ComputeStats(s.List(ctx))
}

// Export writes every record to w in the given format.
func (s *Service) Export(ctx context.Context, w io.Writer, f Format) error {
	return WriteExport(w, f, s.List(ctx))
}
