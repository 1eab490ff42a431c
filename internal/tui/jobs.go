package tui

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/verte-zerg/agromind/internal/remote"
)

type jobKind string

const (
	jobKindList jobKind = "list"
	jobKindChat jobKind = "chat"
)

type jobRunner func(context.Context) (tea.Msg, error)

// jobBus runs fetches as commands and logs each outcome.
type jobBus struct {
	counter int64
	log     *zap.Logger
}

func newJobBus(log *zap.Logger) *jobBus {
	return &jobBus{log: log}
}

func (b *jobBus) nextID(kind jobKind) string {
	idx := atomic.AddInt64(&b.counter, 1)
	return fmt.Sprintf("%s-%d", kind, idx)
}

// Start returns a command running runner. The message it returns carries its own error,
// so the command result is the runner's message either way.
func (b *jobBus) Start(kind jobKind, runner jobRunner) tea.Cmd {
	id := b.nextID(kind)
	b.log.Debug("job started", zap.String("id", id), zap.String("kind", string(kind)))
	return func() tea.Msg {
		started := time.Now()
		msg, err := runner(context.Background())
		fields := []zap.Field{
			zap.String("id", id),
			zap.String("kind", string(kind)),
			zap.Duration("duration", time.Since(started)),
		}
		if err != nil {
			fields = append(fields, zap.String("error_kind", remote.Kind(err)), zap.Error(err))
			b.log.Warn("job failed", fields...)
		} else {
			b.log.Info("job succeeded", fields...)
		}
		return msg
	}
}
