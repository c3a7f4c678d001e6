// Package domain models the calibration wizard workflow state.
//
// # Background
//
// The workbench drives a point-rainfall calibration process against an
// external computation service. The user walks through a linear, gated
// wizard; every screen edits one slice of a single workflow state value.
// This package owns those slices, the actions that mutate them, and the
// pure reducers that apply actions. Nothing here performs I/O.
//
// # Workflow variants
//
// Two variants of the overall task are supported:
//
//	B: build a point data table from predictand, predictor and
//	   observation datasets, then calibrate it.
//	C: calibrate an existing point data table produced by an earlier
//	   B run, skipping the dataset-assembly steps.
//
// The variant gates which wizard steps apply and which export/import
// operations are available (see [CanAdvance] and [CanExport]).
//
// # Wizard pages
//
// Pages are numbered 1 through 4:
//
//	1: variant and predictand selection
//	2: predictor and observation datasets
//	3: derived-field computations and run parameters
//	4: postprocessing of breakpoints, mapping functions, weather types, bias
//
// # Reducer contract
//
// Reducers are pure functions (state, action) -> state. An action kind a
// reducer does not recognise is an identity transform, never an error.
// Entries and slices an action does not touch keep their original values
// (and, for slices, their backing arrays), so callers can detect change
// by comparison.
//
// # Computation index stability
//
// A computation entry's Index is a stable identity, not a position.
// It is assigned once at creation as one past the highest index present
// and is never renumbered, so removing an entry leaves every survivor's
// index untouched. Indices are therefore unique and strictly increasing
// in creation order, but not necessarily dense. Consumers that need a
// position must use the slice offset, not Index.
//
// # Field catalogue
//
// A computation's Field names the derived-field operator applied to its
// inputs. The recognised values mirror the operators implemented by the
// computation service: accumulated field, 24h solar radiation, weighted
// and plain averages, vector module, maximum, minimum, ratio, the three
// instantaneous pickers (first, middle, last step) and local solar time.
// See [KnownFields].
package domain
