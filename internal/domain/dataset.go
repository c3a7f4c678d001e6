package domain

// Variant names the overall workflow task.
type Variant string

// Supported workflow variants.
const (
	VariantNone Variant = ""
	// VariantB builds a point data table from raw datasets and
	// calibrates it.
	VariantB Variant = "B"
	// VariantC calibrates an existing point data table.
	VariantC Variant = "C"
)

// Valid reports whether v is a recognised variant.
func (v Variant) Valid() bool {
	return v == VariantB || v == VariantC
}

// Predictand describes the variable being calibrated. Under variant C,
// Path points at an existing point data table instead of a raw dataset.
type Predictand struct {
	Path         string  `json:"path"`
	Code         string  `json:"code,omitempty"`
	Accumulation int     `json:"accumulation,omitempty"`
	MinValue     float64 `json:"minValue,omitempty"`
}

// Predictors describes the forecast dataset the derived fields are
// computed from. Codes is the list of predictor short codes discovered
// under Path by the computation service.
type Predictors struct {
	Path             string   `json:"path"`
	Codes            []string `json:"codes,omitempty"`
	SamplingInterval int      `json:"samplingInterval,omitempty"`
}

// Observations describes the point observation dataset.
type Observations struct {
	Path  string `json:"path"`
	Units string `json:"units,omitempty"`
}

// Breakpoints holds the calibration breakpoints CSV, either computed by
// the backend or uploaded by the user. Empty means none exist yet.
type Breakpoints struct {
	CSV string `json:"csv,omitempty"`
}
