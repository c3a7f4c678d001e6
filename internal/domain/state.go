package domain

// State is the complete wizard workflow state: one value per slice, owned
// exclusively by the store. Components read snapshots and mutate only by
// dispatching actions.
type State struct {
	Variant      Variant       `json:"variant"`
	Predictand   Predictand    `json:"predictand"`
	Predictors   Predictors    `json:"predictors"`
	Observations Observations  `json:"observations"`
	Computations []Computation `json:"computations"`
	Parameters   Parameters    `json:"parameters"`
	Page         Page          `json:"page"`
	Breakpoints  Breakpoints   `json:"breakpoints"`
}

// NewState returns the initial wizard state.
func NewState() State {
	return State{
		Parameters: Parameters{OutFormat: OutFormatASCII},
		Page:       Page{Active: FirstPage},
	}
}

// Reduce applies an action to the whole state, fanning out to the
// per-slice reducers. Slices the action does not touch keep their
// previous values, and unknown actions return the input state unchanged.
func Reduce(s State, action Action) State {
	switch a := action.(type) {
	case ReplaceState:
		return a.State
	case SetWorkflowVariant:
		s.Variant = a.Variant
		return s
	case SetPredictand:
		s.Predictand = a.Predictand
		return s
	case SetPredictors:
		s.Predictors = a.Predictors
		return s
	case SetObservations:
		s.Observations = a.Observations
		return s
	case SetBreakpoints:
		s.Breakpoints = Breakpoints{CSV: a.CSV}
		return s
	}

	s.Computations = ReduceComputations(s.Computations, action)
	s.Parameters = ReduceParameters(s.Parameters, action)
	s.Page = ReducePage(s.Page, action)
	return s
}

// Navigates reports whether the action changes the navigation context.
// The store bumps its epoch for these, invalidating in-flight backend
// responses that were issued for the previous context.
func Navigates(action Action) bool {
	switch action.(type) {
	case GoToPage, NextPage, PrevPage, ReplaceState:
		return true
	default:
		return false
	}
}
