package sqlite

import (
	"context"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/calibrate-workbench/internal/domain"
	"github.com/couchcryptid/calibrate-workbench/internal/observability"
)

// StateSource provides the current wizard state and change notifications.
// *store.Store satisfies it.
type StateSource interface {
	Snapshot() domain.State
	Subscribe() <-chan struct{}
}

// Autosaver persists the wizard state to a SessionStore on an interval.
// It listens on the source's change channel and only writes on ticks
// where at least one change was announced since the last save.
type Autosaver struct {
	store    *SessionStore
	source   StateSource
	interval time.Duration
	retain   int
	clock    clockwork.Clock
	logger   *slog.Logger
	metrics  *observability.Metrics

	dirty bool
}

// NewAutosaver wires an autosaver. Run starts the loop.
func NewAutosaver(
	store *SessionStore,
	source StateSource,
	interval time.Duration,
	retain int,
	clock clockwork.Clock,
	logger *slog.Logger,
	metrics *observability.Metrics,
) *Autosaver {
	return &Autosaver{
		store:    store,
		source:   source,
		interval: interval,
		retain:   retain,
		clock:    clock,
		logger:   logger,
		metrics:  metrics,
	}
}

// Run blocks until ctx is canceled. A final save happens on shutdown when
// changes are still pending.
func (a *Autosaver) Run(ctx context.Context) {
	ticker := a.clock.NewTicker(a.interval)
	defer ticker.Stop()

	changes := a.source.Subscribe()
	a.logger.Info("autosave started", "interval", a.interval.String())

	for {
		select {
		case <-ctx.Done():
			// Drain a coalesced notification that raced the shutdown so
			// the final tick sees it.
			select {
			case <-changes:
				a.dirty = true
			default:
			}
			a.tick(context.WithoutCancel(ctx))
			a.logger.Info("autosave stopped")
			return
		case <-changes:
			a.dirty = true
		case <-ticker.Chan():
			a.tick(ctx)
		}
	}
}

func (a *Autosaver) tick(ctx context.Context) {
	if !a.dirty {
		return
	}

	if err := a.store.Save(ctx, a.source.Snapshot()); err != nil {
		a.logger.Error("autosave failed", "error", err)
		return
	}
	a.metrics.SessionsSaved.Inc()

	if err := a.store.Prune(ctx, a.retain); err != nil {
		a.logger.Warn("session prune failed", "error", err)
	}
	a.dirty = false
}
