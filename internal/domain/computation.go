package domain

// Computation is a user-defined derived field: a named operator applied
// to an ordered list of input predictors, with an optional linear scaling
// of the result.
//
// Index is a stable identity (see the package documentation), not a slice
// position.
type Computation struct {
	Index    int      `json:"index"`
	Name     string   `json:"name"`
	Field    string   `json:"field"`
	Inputs   []string `json:"inputs"`
	MulScale float64  `json:"mulScale"`
	AddScale float64  `json:"addScale"`
	Units    string   `json:"units,omitempty"`
}

// Derived-field operators implemented by the computation service.
const (
	FieldAccumulated      = "ACCUMULATED_FIELD"
	FieldSolarRadiation   = "24H_SOLAR_RADIATION"
	FieldWeightedAverage  = "WEIGHTED_AVERAGE_FIELD"
	FieldAverage          = "AVERAGE_FIELD"
	FieldVectorModule     = "VECTOR_MODULE"
	FieldMaximum          = "MAXIMUM_FIELD"
	FieldMinimum          = "MINIMUM_FIELD"
	FieldRatio            = "RATIO_FIELD"
	FieldInstantaneous100 = "INSTANTANEOUS_FIELD_100"
	FieldInstantaneous010 = "INSTANTANEOUS_FIELD_010"
	FieldInstantaneous001 = "INSTANTANEOUS_FIELD_001"
	FieldLocalSolarTime   = "LOCAL_SOLAR_TIME"
)

// KnownFields lists every recognised derived-field operator, in the order
// the wizard presents them.
var KnownFields = []string{
	FieldAccumulated,
	FieldSolarRadiation,
	FieldWeightedAverage,
	FieldAverage,
	FieldVectorModule,
	FieldMaximum,
	FieldMinimum,
	FieldRatio,
	FieldInstantaneous100,
	FieldInstantaneous010,
	FieldInstantaneous001,
	FieldLocalSolarTime,
}

// IsKnownField reports whether name is a recognised derived-field operator.
func IsKnownField(name string) bool {
	for _, f := range KnownFields {
		if f == name {
			return true
		}
	}
	return false
}

// Complete reports whether the entry has everything the computation
// service needs: a name, a recognised operator, and at least one input.
func (c Computation) Complete() bool {
	return c.Name != "" && IsKnownField(c.Field) && len(c.Inputs) > 0
}

// nextIndex returns the index for a newly added entry: one past the
// highest index present. For append-only histories this equals the list
// length; after removals it keeps new indices collision-free without
// renumbering survivors.
func nextIndex(list []Computation) int {
	next := 0
	for _, c := range list {
		if c.Index >= next {
			next = c.Index + 1
		}
	}
	return next
}

// ReduceComputations applies an action to the computation list. Actions
// that target an index not present in the list, and action kinds this
// reducer does not handle, return the input slice unchanged.
func ReduceComputations(list []Computation, action Action) []Computation {
	switch a := action.(type) {
	case AddComputation:
		next := make([]Computation, len(list), len(list)+1)
		copy(next, list)
		return append(next, Computation{
			Index:    nextIndex(list),
			Name:     a.Name,
			Field:    a.Field,
			Inputs:   a.Inputs,
			MulScale: 1,
		})

	case RemoveComputation:
		if !hasIndex(list, a.Index) {
			return list
		}
		next := make([]Computation, 0, len(list)-1)
		for _, c := range list {
			if c.Index != a.Index {
				next = append(next, c)
			}
		}
		return next

	case SetComputationName:
		return updateAt(list, a.Index, func(c Computation) Computation {
			c.Name = a.Name
			return c
		})

	case SetComputationField:
		return updateAt(list, a.Index, func(c Computation) Computation {
			c.Field = a.Field
			return c
		})

	case SetComputationInputs:
		return updateAt(list, a.Index, func(c Computation) Computation {
			c.Inputs = a.Inputs
			return c
		})

	case SetComputationScale:
		return updateAt(list, a.Index, func(c Computation) Computation {
			c.MulScale = a.MulScale
			c.AddScale = a.AddScale
			return c
		})

	default:
		return list
	}
}

func hasIndex(list []Computation, index int) bool {
	for _, c := range list {
		if c.Index == index {
			return true
		}
	}
	return false
}

// updateAt replaces the entry with the given index using fn, copying the
// slice so untouched entries stay shared with the previous state. Unknown
// index returns the input slice unchanged.
func updateAt(list []Computation, index int, fn func(Computation) Computation) []Computation {
	if !hasIndex(list, index) {
		return list
	}
	next := make([]Computation, len(list))
	copy(next, list)
	for i, c := range next {
		if c.Index == index {
			next[i] = fn(c)
		}
	}
	return next
}
