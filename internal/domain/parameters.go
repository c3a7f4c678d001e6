package domain

// Point data table output formats.
const (
	OutFormatASCII   = "ASCII"
	OutFormatParquet = "PARQUET"
)

// Parameters holds the flat run-configuration fields of the computations
// step. Each field is independently settable; the reducer performs no
// cross-field validation (range and date checks belong to the wizard
// surface and the computation service).
type Parameters struct {
	DateStart           string  `json:"dateStart"`
	DateEnd             string  `json:"dateEnd"`
	Accumulation        int     `json:"accumulation"`
	SpinupLimit         int     `json:"limSU"`
	DiscretizationRange float64 `json:"range"`
	OutPath             string  `json:"outPath"`
	OutFormat           string  `json:"outFormat"`
}

// ReduceParameters applies an action to the parameters slice. Each
// recognised action replaces exactly one field; everything else is an
// identity transform.
func ReduceParameters(p Parameters, action Action) Parameters {
	switch a := action.(type) {
	case SetDateStart:
		p.DateStart = a.Value
	case SetDateEnd:
		p.DateEnd = a.Value
	case SetAccumulation:
		p.Accumulation = a.Value
	case SetSpinupLimit:
		p.SpinupLimit = a.Value
	case SetDiscretizationRange:
		p.DiscretizationRange = a.Value
	case SetOutPath:
		p.OutPath = a.Value
	case SetOutFormat:
		p.OutFormat = a.Value
	}
	return p
}
