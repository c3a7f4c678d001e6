package domain_test

import (
	"fmt"
	"testing"

	"github.com/couchcryptid/calibrate-workbench/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReduceComputations_AddAssignsSequentialIndices(t *testing.T) {
	var list []domain.Computation
	for i := 0; i < 5; i++ {
		list = domain.ReduceComputations(list, domain.AddComputation{
			Name:   fmt.Sprintf("comp-%d", i),
			Field:  domain.FieldAverage,
			Inputs: []string{"tp"},
		})
	}

	require.Len(t, list, 5)
	for i, c := range list {
		assert.Equal(t, i, c.Index, "index equals pre-add position for append-only histories")
	}
}

func TestReduceComputations_AddTwoEntries(t *testing.T) {
	var list []domain.Computation
	list = domain.ReduceComputations(list, domain.AddComputation{
		Name: "A", Field: "f1", Inputs: []string{"x"},
	})
	list = domain.ReduceComputations(list, domain.AddComputation{
		Name: "B", Field: "f2", Inputs: []string{"y", "z"},
	})

	require.Len(t, list, 2)
	assert.Equal(t, domain.Computation{Index: 0, Name: "A", Field: "f1", Inputs: []string{"x"}, MulScale: 1}, list[0])
	assert.Equal(t, domain.Computation{Index: 1, Name: "B", Field: "f2", Inputs: []string{"y", "z"}, MulScale: 1}, list[1])
}

func TestReduceComputations_RemoveKeepsSurvivorIndices(t *testing.T) {
	var list []domain.Computation
	list = domain.ReduceComputations(list, domain.AddComputation{Name: "A", Field: "f1", Inputs: []string{"x"}})
	list = domain.ReduceComputations(list, domain.AddComputation{Name: "B", Field: "f2", Inputs: []string{"y", "z"}})

	list = domain.ReduceComputations(list, domain.RemoveComputation{Index: 0})

	require.Len(t, list, 1)
	// Stable identity: the survivor keeps its original index 1, it is
	// not renumbered to 0.
	assert.Equal(t, 1, list[0].Index)
	assert.Equal(t, "B", list[0].Name)
}

func TestReduceComputations_AddAfterRemoveDoesNotReuseIndex(t *testing.T) {
	var list []domain.Computation
	list = domain.ReduceComputations(list, domain.AddComputation{Name: "A", Field: "f1", Inputs: []string{"x"}})
	list = domain.ReduceComputations(list, domain.AddComputation{Name: "B", Field: "f2", Inputs: []string{"y"}})
	list = domain.ReduceComputations(list, domain.RemoveComputation{Index: 0})

	list = domain.ReduceComputations(list, domain.AddComputation{Name: "C", Field: "f3", Inputs: []string{"z"}})

	require.Len(t, list, 2)
	assert.Equal(t, 1, list[0].Index)
	assert.Equal(t, 2, list[1].Index, "new index is max+1, never a reused identity")
}

func TestReduceComputations_RemoveUnknownIndexIsNoOp(t *testing.T) {
	var list []domain.Computation
	list = domain.ReduceComputations(list, domain.AddComputation{Name: "A", Field: "f1", Inputs: []string{"x"}})

	next := domain.ReduceComputations(list, domain.RemoveComputation{Index: 42})

	assert.Same(t, &list[0], &next[0], "unknown index must return the identical slice")
}

func TestReduceComputations_UpdateTargetsOnlyOneAttribute(t *testing.T) {
	var list []domain.Computation
	list = domain.ReduceComputations(list, domain.AddComputation{Name: "A", Field: "f1", Inputs: []string{"x"}})
	list = domain.ReduceComputations(list, domain.AddComputation{Name: "B", Field: "f2", Inputs: []string{"y"}})

	next := domain.ReduceComputations(list, domain.SetComputationName{Index: 1, Name: "B2"})

	require.Len(t, next, 2)
	assert.Equal(t, "B2", next[1].Name)
	assert.Equal(t, "f2", next[1].Field, "other attributes untouched")
	assert.Equal(t, list[0], next[0], "unrelated entries unchanged")
	// The previous state value must not have been mutated in place.
	assert.Equal(t, "B", list[1].Name)
}

func TestReduceComputations_UpdateUnknownIndexIsNoOp(t *testing.T) {
	var list []domain.Computation
	list = domain.ReduceComputations(list, domain.AddComputation{Name: "A", Field: "f1", Inputs: []string{"x"}})

	next := domain.ReduceComputations(list, domain.SetComputationField{Index: 9, Field: "f9"})

	assert.Same(t, &list[0], &next[0])
}

func TestReduceComputations_ScaleDefaultsToIdentityMultiplier(t *testing.T) {
	var list []domain.Computation
	list = domain.ReduceComputations(list, domain.AddComputation{Name: "A", Field: "f1", Inputs: []string{"x"}})

	assert.Equal(t, 1.0, list[0].MulScale)
	assert.Equal(t, 0.0, list[0].AddScale)

	list = domain.ReduceComputations(list, domain.SetComputationScale{Index: 0, MulScale: 1000, AddScale: -273.15})
	assert.Equal(t, 1000.0, list[0].MulScale)
	assert.Equal(t, -273.15, list[0].AddScale)
}

func TestReduceComputations_UnknownActionIsIdentity(t *testing.T) {
	var list []domain.Computation
	list = domain.ReduceComputations(list, domain.AddComputation{Name: "A", Field: "f1", Inputs: []string{"x"}})

	next := domain.ReduceComputations(list, domain.SetDateStart{Value: "2020-01-01"})

	assert.Same(t, &list[0], &next[0], "parameter actions must not touch the computation list")
}

func TestKnownFields_MatchComputationServiceOperators(t *testing.T) {
	// These strings are the computation service's own operator names and
	// travel verbatim in run configurations; a drift here silently skips
	// the operator's step generation on the backend.
	operators := []string{
		"ACCUMULATED_FIELD",
		"24H_SOLAR_RADIATION",
		"WEIGHTED_AVERAGE_FIELD",
		"AVERAGE_FIELD",
		"VECTOR_MODULE",
		"MAXIMUM_FIELD",
		"MINIMUM_FIELD",
		"RATIO_FIELD",
		"INSTANTANEOUS_FIELD_100",
		"INSTANTANEOUS_FIELD_010",
		"INSTANTANEOUS_FIELD_001",
		"LOCAL_SOLAR_TIME",
	}

	assert.Equal(t, operators, domain.KnownFields)
	for _, op := range operators {
		assert.True(t, domain.IsKnownField(op), op)
	}
}

func TestComputation_Complete(t *testing.T) {
	c := domain.Computation{Name: "tp-acc", Field: domain.FieldAccumulated, Inputs: []string{"tp"}}
	assert.True(t, c.Complete())

	assert.False(t, domain.Computation{Field: domain.FieldAccumulated, Inputs: []string{"tp"}}.Complete())
	assert.False(t, domain.Computation{Name: "x", Field: "BOGUS", Inputs: []string{"tp"}}.Complete())
	assert.False(t, domain.Computation{Name: "x", Field: domain.FieldAccumulated}.Complete())
}
