package core

import (
	"encoding/json"
	"fmt"

	"github.com/couchcryptid/calibrate-workbench/internal/domain"
)

// RunConfig is the run-configuration payload for /computations/start. It
// mirrors the workflow snapshot slice for slice; the backend validates
// the details.
type RunConfig struct {
	Predictand   domain.Predictand    `json:"predictand"`
	Predictors   domain.Predictors    `json:"predictors"`
	Observations domain.Observations  `json:"observations"`
	Computations []domain.Computation `json:"computations"`
	Parameters   domain.Parameters    `json:"parameters"`
}

// BuildRunConfig derives the backend run configuration from a workflow
// snapshot.
func BuildRunConfig(s domain.State) RunConfig {
	return RunConfig{
		Predictand:   s.Predictand,
		Predictors:   s.Predictors,
		Observations: s.Observations,
		Computations: s.Computations,
		Parameters:   s.Parameters,
	}
}

// SaveRequest is the payload for /postprocessing/save. The mode selects
// which artifacts the backend produces; the threshold detail fields
// (labels, matrix, grids) come from the postprocessing surface and are
// passed through opaquely.
type SaveRequest struct {
	Mode           string `json:"mode"`
	OutPath        string `json:"outPath"`
	PDTPath        string `json:"pdtPath"`
	Cheaper        bool   `json:"cheaper"`
	BreakpointsCSV string `json:"breakpointsCSV,omitempty"`

	Labels      []string        `json:"labels,omitempty"`
	Matrix      [][]string      `json:"matrix,omitempty"`
	FieldRanges json.RawMessage `json:"fieldRanges,omitempty"`
	ThrGridOut  [][]string      `json:"thrGridOut,omitempty"`

	MFCols  int      `json:"mfcols,omitempty"`
	YLim    int      `json:"yLim,omitempty"`
	Bins    []string `json:"bins,omitempty"`
	NumBins int      `json:"numBins,omitempty"`

	// Bundled-export metadata, only meaningful for mode "all".
	Version           string   `json:"version,omitempty"`
	Family            string   `json:"family,omitempty"`
	Accumulation      string   `json:"accumulation,omitempty"`
	DatasetName       string   `json:"datasetName,omitempty"`
	ExcludePredictors []string `json:"excludePredictors,omitempty"`
}

// BuildSaveRequest fills the state-derived fields of a save request for
// the given operation kind. Postprocessing detail fields are merged in by
// the caller. The upload kind never reaches the backend and is rejected
// here.
func BuildSaveRequest(kind string, s domain.State) (SaveRequest, error) {
	switch kind {
	case domain.OpBreakpoints, domain.OpMappingFunctions, domain.OpWeatherTypes, domain.OpBias, domain.OpAll:
	default:
		return SaveRequest{}, fmt.Errorf("unknown save operation %q", kind)
	}

	req := SaveRequest{
		Mode:           kind,
		OutPath:        s.Parameters.OutPath,
		PDTPath:        s.Predictand.Path,
		BreakpointsCSV: s.Breakpoints.CSV,
	}
	if kind == domain.OpAll {
		if s.Parameters.Accumulation > 0 {
			req.Accumulation = fmt.Sprintf("%d", s.Parameters.Accumulation)
		}
	}
	return req, nil
}
