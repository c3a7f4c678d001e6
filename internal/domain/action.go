package domain

// Action is a closed set of state transitions. Each variant carries only
// the fields its reducer needs; reducers switch on the concrete type and
// treat every unrecognised variant as an identity transform.
type Action interface {
	isAction()
}

// Computation list actions.

// AddComputation appends a new computation entry. The entry's Index is
// assigned by the reducer (one past the highest index present).
type AddComputation struct {
	Name   string
	Field  string
	Inputs []string
}

// RemoveComputation drops the entry with the given index, preserving the
// relative order of all other entries. Unknown index: no-op.
type RemoveComputation struct {
	Index int
}

// SetComputationName replaces the name of the entry with the given index.
type SetComputationName struct {
	Index int
	Name  string
}

// SetComputationField replaces the derived-field operator of the entry
// with the given index.
type SetComputationField struct {
	Index int
	Field string
}

// SetComputationInputs replaces the ordered input list of the entry with
// the given index.
type SetComputationInputs struct {
	Index  int
	Inputs []string
}

// SetComputationScale replaces the linear scaling applied to the entry's
// output: value*MulScale + AddScale.
type SetComputationScale struct {
	Index    int
	MulScale float64
	AddScale float64
}

// Parameter actions, one per field.

// SetDateStart sets the first base date of the calibration period.
type SetDateStart struct{ Value string }

// SetDateEnd sets the last base date of the calibration period.
type SetDateEnd struct{ Value string }

// SetAccumulation sets the predictand accumulation window in hours.
type SetAccumulation struct{ Value int }

// SetSpinupLimit sets the model spin-up window, in hours, excluded from
// the forecast steps considered.
type SetSpinupLimit struct{ Value int }

// SetDiscretizationRange sets the error discretization range used by the
// postprocessing histograms.
type SetDiscretizationRange struct{ Value float64 }

// SetOutPath sets the destination path for generated artifacts.
type SetOutPath struct{ Value string }

// SetOutFormat sets the point data table output format (ASCII or PARQUET).
type SetOutFormat struct{ Value string }

// Dataset slice actions. These slices are edited as a whole: the wizard
// screens that own them submit the complete slice value.

// SetWorkflowVariant selects workflow variant B or C.
type SetWorkflowVariant struct{ Variant Variant }

// SetPredictand replaces the predictand configuration.
type SetPredictand struct{ Predictand Predictand }

// SetPredictors replaces the predictors configuration.
type SetPredictors struct{ Predictors Predictors }

// SetObservations replaces the observations configuration.
type SetObservations struct{ Observations Observations }

// SetBreakpoints replaces the breakpoints CSV held in the store, either
// computed by the backend or uploaded by the user.
type SetBreakpoints struct{ CSV string }

// Navigation actions.

// GoToPage jumps to an explicit wizard page. Out-of-range targets are
// clamped to the valid page range.
type GoToPage struct{ Page int }

// NextPage advances one page. Gating is the caller's concern (the store
// consults CanAdvance before dispatching); the reducer only clamps.
type NextPage struct{}

// PrevPage goes back one page.
type PrevPage struct{}

// ReplaceState swaps the entire workflow state, used when loading a saved
// workflow file or restoring an autosaved session.
type ReplaceState struct{ State State }

func (AddComputation) isAction()         {}
func (RemoveComputation) isAction()      {}
func (SetComputationName) isAction()     {}
func (SetComputationField) isAction()    {}
func (SetComputationInputs) isAction()   {}
func (SetComputationScale) isAction()    {}
func (SetDateStart) isAction()           {}
func (SetDateEnd) isAction()             {}
func (SetAccumulation) isAction()        {}
func (SetSpinupLimit) isAction()         {}
func (SetDiscretizationRange) isAction() {}
func (SetOutPath) isAction()             {}
func (SetOutFormat) isAction()           {}
func (SetWorkflowVariant) isAction()     {}
func (SetPredictand) isAction()          {}
func (SetPredictors) isAction()          {}
func (SetObservations) isAction()        {}
func (SetBreakpoints) isAction()         {}
func (GoToPage) isAction()               {}
func (NextPage) isAction()               {}
func (PrevPage) isAction()               {}
func (ReplaceState) isAction()           {}

// Kind returns a short name for an action, used for logging and metrics
// labels.
func Kind(a Action) string {
	switch a.(type) {
	case AddComputation:
		return "add_computation"
	case RemoveComputation:
		return "remove_computation"
	case SetComputationName:
		return "set_computation_name"
	case SetComputationField:
		return "set_computation_field"
	case SetComputationInputs:
		return "set_computation_inputs"
	case SetComputationScale:
		return "set_computation_scale"
	case SetDateStart:
		return "set_date_start"
	case SetDateEnd:
		return "set_date_end"
	case SetAccumulation:
		return "set_accumulation"
	case SetSpinupLimit:
		return "set_spinup_limit"
	case SetDiscretizationRange:
		return "set_discretization_range"
	case SetOutPath:
		return "set_out_path"
	case SetOutFormat:
		return "set_out_format"
	case SetWorkflowVariant:
		return "set_workflow_variant"
	case SetPredictand:
		return "set_predictand"
	case SetPredictors:
		return "set_predictors"
	case SetObservations:
		return "set_observations"
	case SetBreakpoints:
		return "set_breakpoints"
	case GoToPage:
		return "go_to_page"
	case NextPage:
		return "next_page"
	case PrevPage:
		return "prev_page"
	case ReplaceState:
		return "replace_state"
	default:
		return "unknown"
	}
}
