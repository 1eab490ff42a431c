package store

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/verte-zerg/agromind/internal/listapi"
	"github.com/verte-zerg/agromind/internal/model"
	"github.com/verte-zerg/agromind/internal/session"
)

// Recorder writes session mutations to the store as they happen.
type Recorder struct {
	store     *Store
	sessionID string
	log       *zap.Logger
	now       func() time.Time
	started   bool
}

// NewRecorder builds a recorder for one session.
func NewRecorder(st *Store, sessionID string, log *zap.Logger) *Recorder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Recorder{store: st, sessionID: sessionID, log: log, now: time.Now}
}

// Observe implements session.Observer. Store failures are logged, never surfaced.
func (r *Recorder) Observe(ev session.Event) {
	ctx := context.Background()
	switch ev.Kind {
	case session.EventTurnAppended:
		if !r.ensureSession(ctx) {
			return
		}
		if err := r.store.AppendTurn(ctx, r.sessionID, ev.Index, ev.Turn, r.now()); err != nil {
			r.log.Warn("failed to store chat turn", zap.String("session", r.sessionID), zap.Int("seq", ev.Index), zap.Error(err))
		}
	case session.EventRecordsReplaced:
		if !r.ensureSession(ctx) {
			return
		}
		entry := model.FetchLog{
			SessionID: r.sessionID,
			Start:     listapi.FormatDate(ev.Range.Start),
			End:       listapi.FormatDate(ev.Range.End),
			Records:   ev.Records,
			FetchedAt: r.now(),
		}
		if ev.Err != nil {
			entry.Err = ev.Err.Error()
		}
		if _, err := r.store.InsertFetch(ctx, entry); err != nil {
			r.log.Warn("failed to store list fetch", zap.String("session", r.sessionID), zap.Error(err))
		}
	}
}

func (r *Recorder) ensureSession(ctx context.Context) bool {
	if r.started {
		return true
	}
	if err := r.store.StartSession(ctx, r.sessionID, r.now()); err != nil {
		r.log.Warn("failed to register session", zap.String("session", r.sessionID), zap.Error(err))
		return false
	}
	r.started = true
	return true
}
