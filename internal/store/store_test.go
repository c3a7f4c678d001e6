package store_test

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/couchcryptid/calibrate-workbench/internal/domain"
	"github.com/couchcryptid/calibrate-workbench/internal/observability"
	"github.com/couchcryptid/calibrate-workbench/internal/store"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore() *store.Store {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return store.New(domain.NewState(), logger, observability.NewMetricsForTesting())
}

func TestStore_DispatchReturnsNewSnapshot(t *testing.T) {
	s := newStore()

	next := s.Dispatch(domain.SetWorkflowVariant{Variant: domain.VariantB})

	assert.Equal(t, domain.VariantB, next.Variant)
	assert.Equal(t, domain.VariantB, s.Snapshot().Variant)
}

func TestStore_UnknownActionLeavesStateIdentical(t *testing.T) {
	s := newStore()
	before := s.Dispatch(domain.SetOutPath{Value: "/out"})

	type noop struct{ domain.Action }
	after := s.Dispatch(noop{})

	assert.Empty(t, cmp.Diff(before, after))
}

func TestStore_ConcurrentDispatchesAllApply(t *testing.T) {
	s := newStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.Dispatch(domain.AddComputation{
				Name:   fmt.Sprintf("comp-%d", i),
				Field:  domain.FieldAverage,
				Inputs: []string{"tp"},
			})
		}(i)
	}
	wg.Wait()

	snap := s.Snapshot()
	require.Len(t, snap.Computations, 50)

	seen := make(map[int]bool)
	for _, c := range snap.Computations {
		assert.False(t, seen[c.Index], "index %d assigned twice", c.Index)
		seen[c.Index] = true
	}
}

func TestStore_EpochAdvancesOnNavigationOnly(t *testing.T) {
	s := newStore()
	e0 := s.Epoch()

	s.Dispatch(domain.SetOutPath{Value: "/out"})
	assert.Equal(t, e0, s.Epoch(), "parameter edits do not change the navigation context")

	s.Dispatch(domain.GoToPage{Page: 2})
	assert.Equal(t, e0+1, s.Epoch())
}

func TestStore_DispatchAtDropsStaleActions(t *testing.T) {
	s := newStore()
	epoch := s.Epoch()

	// Simulate the user navigating away while a backend call is in flight.
	s.Dispatch(domain.GoToPage{Page: 2})

	_, applied := s.DispatchAt(epoch, domain.SetBreakpoints{CSV: "stale"})
	assert.False(t, applied)
	assert.Empty(t, s.Snapshot().Breakpoints.CSV)

	_, applied = s.DispatchAt(s.Epoch(), domain.SetBreakpoints{CSV: "fresh"})
	assert.True(t, applied)
	assert.Equal(t, "fresh", s.Snapshot().Breakpoints.CSV)
}

func TestStore_AdvanceConsultsGate(t *testing.T) {
	s := newStore()

	_, ok := s.Advance()
	assert.False(t, ok, "empty page 1 must not advance")
	assert.Equal(t, 1, s.Snapshot().Page.Active)

	s.Dispatch(domain.SetWorkflowVariant{Variant: domain.VariantB})
	s.Dispatch(domain.SetPredictand{Predictand: domain.Predictand{Path: "/data/tp"}})

	next, ok := s.Advance()
	assert.True(t, ok)
	assert.Equal(t, 2, next.Page.Active)
}

func TestStore_BackIsNeverGated(t *testing.T) {
	s := newStore()
	s.Dispatch(domain.GoToPage{Page: 3})

	next := s.Back()
	assert.Equal(t, 2, next.Page.Active)
}

func TestStore_UndoRestoresPreviousSnapshot(t *testing.T) {
	s := newStore()
	s.Dispatch(domain.SetOutPath{Value: "/first"})
	s.Dispatch(domain.SetOutPath{Value: "/second"})

	next, ok := s.Undo()
	require.True(t, ok)
	assert.Equal(t, "/first", next.Parameters.OutPath)

	next, ok = s.Undo()
	require.True(t, ok)
	assert.Empty(t, next.Parameters.OutPath)

	_, ok = s.Undo()
	assert.False(t, ok, "history exhausted")
}

func TestStore_NoOpActionsDoNotGrowUndoHistory(t *testing.T) {
	s := newStore()
	s.Dispatch(domain.SetOutPath{Value: "/out"})
	s.Dispatch(domain.RemoveComputation{Index: 99})

	next, ok := s.Undo()
	require.True(t, ok)
	assert.Empty(t, next.Parameters.OutPath, "no-op remove must not occupy an undo step")
}

func TestStore_SubscribeNotifiesOnChange(t *testing.T) {
	s := newStore()
	ch := s.Subscribe()

	s.Dispatch(domain.SetOutPath{Value: "/out"})

	select {
	case <-ch:
	default:
		t.Fatal("expected a change notification")
	}

	type noop struct{ domain.Action }
	s.Dispatch(noop{})

	select {
	case <-ch:
		t.Fatal("identity transform must not notify")
	default:
	}
}
