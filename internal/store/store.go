// Package store owns the wizard workflow state: a single state value
// mutated exclusively through dispatched actions, serialized so reducers
// never see concurrent writers.
package store

import (
	"log/slog"
	"reflect"
	"sync"

	"github.com/couchcryptid/calibrate-workbench/internal/domain"
	"github.com/couchcryptid/calibrate-workbench/internal/observability"
)

// maxHistory bounds the undo stack.
const maxHistory = 100

// Store is the single source of truth for wizard state. Dispatch is
// serialized under one lock, so reducers run one at a time; snapshots
// handed out are treated as immutable values (reducers copy on write and
// never mutate a previous snapshot in place).
type Store struct {
	logger  *slog.Logger
	metrics *observability.Metrics

	mu      sync.Mutex
	state   domain.State
	epoch   uint64
	history []domain.State
	subs    []chan struct{}
}

// New creates a Store holding the given initial state.
func New(initial domain.State, logger *slog.Logger, metrics *observability.Metrics) *Store {
	return &Store{
		logger:  logger,
		metrics: metrics,
		state:   initial,
	}
}

// Snapshot returns the current state value.
func (s *Store) Snapshot() domain.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Epoch returns the current navigation epoch. The epoch advances whenever
// the navigation context changes (page moves, workflow replacement), so
// async callers can detect that a response belongs to an abandoned
// context.
func (s *Store) Epoch() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.epoch
}

// View returns the current state and epoch together.
func (s *Store) View() (domain.State, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state, s.epoch
}

// Dispatch applies an action and returns the resulting state.
func (s *Store) Dispatch(action domain.Action) domain.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.apply(action)
}

// DispatchAt applies an action only if the store is still at the given
// navigation epoch. It returns false, leaving the state untouched, when
// the context has moved on; stale backend responses use this to become
// no-ops rather than corrupting the current page.
func (s *Store) DispatchAt(epoch uint64, action domain.Action) (domain.State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if epoch != s.epoch {
		s.metrics.ActionsStale.Inc()
		s.logger.Debug("dropping stale action", "action", domain.Kind(action), "epoch", epoch, "current", s.epoch)
		return s.state, false
	}
	return s.apply(action), true
}

// Advance moves to the next page if the navigation gate permits it.
// It returns the resulting state and whether navigation happened.
func (s *Store) Advance() (domain.State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !domain.CanAdvance(s.state) {
		return s.state, false
	}
	return s.apply(domain.NextPage{}), true
}

// Back moves to the previous page. Backward navigation is never gated.
func (s *Store) Back() domain.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.apply(domain.PrevPage{})
}

// Undo restores the state preceding the last state-changing action. It
// returns false when there is nothing to undo.
func (s *Store) Undo() (domain.State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.history) == 0 {
		return s.state, false
	}
	prev := s.history[len(s.history)-1]
	s.history = s.history[:len(s.history)-1]
	s.state = prev
	s.epoch++
	s.metrics.UndoTotal.Inc()
	s.notifyLocked()
	return s.state, true
}

// Subscribe returns a channel that receives a notification after every
// state change. Notifications are coalesced: a slow receiver sees at
// least one notification for any burst of changes.
func (s *Store) Subscribe() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := make(chan struct{}, 1)
	s.subs = append(s.subs, ch)
	return ch
}

// apply runs the root reducer and performs the bookkeeping around it.
// Callers hold s.mu.
func (s *Store) apply(action domain.Action) domain.State {
	next := domain.Reduce(s.state, action)
	s.metrics.ActionsDispatched.WithLabelValues(domain.Kind(action)).Inc()

	if reflect.DeepEqual(next, s.state) {
		// Identity transform (unknown action, no-op update): nothing to
		// record or announce.
		return s.state
	}

	s.history = append(s.history, s.state)
	if len(s.history) > maxHistory {
		s.history = s.history[1:]
	}

	s.state = next
	if domain.Navigates(action) {
		s.epoch++
	}
	s.logger.Debug("action applied", "action", domain.Kind(action), "page", next.Page.Active, "epoch", s.epoch)
	s.notifyLocked()
	return s.state
}

func (s *Store) notifyLocked() {
	for _, ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
