package httpapi

import (
	"encoding/json"
	"fmt"

	"github.com/couchcryptid/calibrate-workbench/internal/domain"
)

// actionEnvelope is the wire form of a dispatched action: a type tag and
// a payload whose shape depends on the type. Navigation is not dispatched
// through this envelope; it has dedicated routes so the page gate cannot
// be bypassed.
type actionEnvelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func decodeAction(data []byte) (domain.Action, error) {
	var env actionEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode action envelope: %w", err)
	}
	if env.Type == "" {
		return nil, fmt.Errorf("decode action envelope: missing type")
	}

	payload := env.Payload
	if len(payload) == 0 {
		payload = []byte("{}")
	}

	switch env.Type {
	case "add_computation":
		var p struct {
			Name   string   `json:"name"`
			Field  string   `json:"field"`
			Inputs []string `json:"inputs"`
		}
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, payloadError(env.Type, err)
		}
		return domain.AddComputation{Name: p.Name, Field: p.Field, Inputs: p.Inputs}, nil

	case "remove_computation":
		var p struct {
			Index int `json:"index"`
		}
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, payloadError(env.Type, err)
		}
		return domain.RemoveComputation{Index: p.Index}, nil

	case "set_computation_name":
		var p struct {
			Index int    `json:"index"`
			Name  string `json:"name"`
		}
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, payloadError(env.Type, err)
		}
		return domain.SetComputationName{Index: p.Index, Name: p.Name}, nil

	case "set_computation_field":
		var p struct {
			Index int    `json:"index"`
			Field string `json:"field"`
		}
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, payloadError(env.Type, err)
		}
		return domain.SetComputationField{Index: p.Index, Field: p.Field}, nil

	case "set_computation_inputs":
		var p struct {
			Index  int      `json:"index"`
			Inputs []string `json:"inputs"`
		}
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, payloadError(env.Type, err)
		}
		return domain.SetComputationInputs{Index: p.Index, Inputs: p.Inputs}, nil

	case "set_computation_scale":
		var p struct {
			Index    int     `json:"index"`
			MulScale float64 `json:"mulScale"`
			AddScale float64 `json:"addScale"`
		}
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, payloadError(env.Type, err)
		}
		return domain.SetComputationScale{Index: p.Index, MulScale: p.MulScale, AddScale: p.AddScale}, nil

	case "set_date_start":
		return decodeValue(env.Type, payload, func(v string) domain.Action { return domain.SetDateStart{Value: v} })
	case "set_date_end":
		return decodeValue(env.Type, payload, func(v string) domain.Action { return domain.SetDateEnd{Value: v} })
	case "set_out_path":
		return decodeValue(env.Type, payload, func(v string) domain.Action { return domain.SetOutPath{Value: v} })
	case "set_out_format":
		return decodeValue(env.Type, payload, func(v string) domain.Action { return domain.SetOutFormat{Value: v} })
	case "set_accumulation":
		return decodeValue(env.Type, payload, func(v int) domain.Action { return domain.SetAccumulation{Value: v} })
	case "set_spinup_limit":
		return decodeValue(env.Type, payload, func(v int) domain.Action { return domain.SetSpinupLimit{Value: v} })
	case "set_discretization_range":
		return decodeValue(env.Type, payload, func(v float64) domain.Action { return domain.SetDiscretizationRange{Value: v} })

	case "set_workflow_variant":
		var p struct {
			Variant domain.Variant `json:"variant"`
		}
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, payloadError(env.Type, err)
		}
		if !p.Variant.Valid() {
			return nil, fmt.Errorf("decode %s: unknown variant %q", env.Type, p.Variant)
		}
		return domain.SetWorkflowVariant{Variant: p.Variant}, nil

	case "set_predictand":
		var p domain.Predictand
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, payloadError(env.Type, err)
		}
		return domain.SetPredictand{Predictand: p}, nil

	case "set_predictors":
		var p domain.Predictors
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, payloadError(env.Type, err)
		}
		return domain.SetPredictors{Predictors: p}, nil

	case "set_observations":
		var p domain.Observations
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, payloadError(env.Type, err)
		}
		return domain.SetObservations{Observations: p}, nil

	case "set_breakpoints":
		var p struct {
			CSV string `json:"csv"`
		}
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, payloadError(env.Type, err)
		}
		return domain.SetBreakpoints{CSV: p.CSV}, nil

	default:
		return nil, fmt.Errorf("decode action envelope: unknown type %q", env.Type)
	}
}

func decodeValue[T any](kind string, payload []byte, build func(T) domain.Action) (domain.Action, error) {
	var p struct {
		Value T `json:"value"`
	}
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, payloadError(kind, err)
	}
	return build(p.Value), nil
}

func payloadError(kind string, err error) error {
	return fmt.Errorf("decode %s payload: %w", kind, err)
}
