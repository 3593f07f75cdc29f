package logging

import (
	"context"
	"encoding/json"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/ahmetcoskunkizilkaya/appliance-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	pgBatchSize     = 50
	pgFlushInterval = 5 * time.Second
)

// pgSink is the buffer shared by a PGHandler and the handlers derived from it
// through WithAttrs.
type pgSink struct {
	db      *gorm.DB
	mu      sync.Mutex
	buffer  []models.SystemLog
	stopped bool
	ticker  *time.Ticker
	done    chan struct{}
	wg      sync.WaitGroup
}

// PGHandler is an slog.Handler that batches ERROR+ records into system_logs.
// Well-known attributes (request_id, user_id, op, error, latency_ms) get
// their own columns; everything else lands in the extra JSON column.
type PGHandler struct {
	sink  *pgSink
	attrs []slog.Attr
}

func NewPGHandler(db *gorm.DB) *PGHandler {
	sink := &pgSink{
		db:     db,
		buffer: make([]models.SystemLog, 0, pgBatchSize),
		ticker: time.NewTicker(pgFlushInterval),
		done:   make(chan struct{}),
	}
	sink.wg.Add(1)
	go sink.flushLoop()
	return &PGHandler{sink: sink}
}

func (s *pgSink) flushLoop() {
	defer s.wg.Done()
	for {
		select {
		case <-s.ticker.C:
			s.flush()
		case <-s.done:
			s.flush()
			return
		}
	}
}

func (s *pgSink) flush() {
	s.mu.Lock()
	if len(s.buffer) == 0 {
		s.mu.Unlock()
		return
	}
	batch := s.buffer
	s.buffer = make([]models.SystemLog, 0, pgBatchSize)
	s.mu.Unlock()

	s.write(batch)
}

func (s *pgSink) write(batch []models.SystemLog) {
	// Reported at WARN so the failure does not loop back into this handler.
	if err := s.db.CreateInBatches(batch, pgBatchSize).Error; err != nil {
		slog.Warn("failed to flush system logs to DB", "error", err, "count", len(batch))
	}
}

func (s *pgSink) add(entry models.SystemLog) {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		// No flush loop is left to pick it up.
		s.write([]models.SystemLog{entry})
		return
	}
	s.buffer = append(s.buffer, entry)
	needFlush := len(s.buffer) >= pgBatchSize
	s.mu.Unlock()

	if needFlush {
		go s.flush()
	}
}

// Stop flushes what is buffered and waits for the flush loop to exit. Records
// handled afterwards are written immediately. Stop must be called before the
// database is closed; calling it twice is a no-op.
func (h *PGHandler) Stop() {
	s := h.sink
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	s.mu.Unlock()

	s.ticker.Stop()
	close(s.done)
	s.wg.Wait()
}

// Enabled only handles ERROR and above.
func (h *PGHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= slog.LevelError
}

func (h *PGHandler) Handle(_ context.Context, record slog.Record) error {
	h.sink.add(buildSystemLog(record, h.attrs))
	return nil
}

func (h *PGHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &PGHandler{sink: h.sink, attrs: merged}
}

// WithGroup is ignored; system_logs has no notion of groups.
func (h *PGHandler) WithGroup(string) slog.Handler {
	return h
}

func buildSystemLog(record slog.Record, preset []slog.Attr) models.SystemLog {
	entry := models.SystemLog{
		ID:        uuid.New(),
		Timestamp: record.Time.UTC(),
		Level:     record.Level.String(),
		Message:   record.Message,
	}

	extra := make(map[string]interface{})
	apply := func(a slog.Attr) bool {
		switch a.Key {
		case "request_id":
			entry.RequestID = a.Value.String()
		case "user_id":
			s := a.Value.String()
			entry.UserID = &s
		case "op":
			entry.Op = a.Value.String()
		case "error":
			entry.Error = a.Value.String()
		case "latency_ms":
			switch a.Value.Kind() {
			case slog.KindFloat64:
				entry.LatencyMs = int(math.Round(a.Value.Float64()))
			case slog.KindInt64:
				entry.LatencyMs = int(a.Value.Int64())
			}
		default:
			extra[a.Key] = a.Value.Resolve().Any()
		}
		return true
	}
	for _, a := range preset {
		apply(a)
	}
	record.Attrs(apply)

	if len(extra) > 0 {
		if b, err := json.Marshal(extra); err == nil {
			entry.Extra = datatypes.JSON(b)
		}
	}
	return entry
}
