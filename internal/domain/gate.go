package domain

// Export/import operation kinds offered on the postprocessing page.
const (
	OpBreakpoints       = "breakpoints"
	OpMappingFunctions  = "mf"
	OpWeatherTypes      = "wt"
	OpBias              = "bias"
	OpAll               = "all"
	OpBreakpointsUpload = "breakpoints-upload"
)

// CanAdvance reports whether forward navigation from the active page is
// permitted, based on completeness of the page's inputs. It never
// mutates state. The last page has no forward navigation.
func CanAdvance(s State) bool {
	return AdvanceBlockers(s) == nil
}

// AdvanceBlockers returns the reasons forward navigation from the active
// page is disabled, or nil when it is allowed. The reasons are surfaced
// verbatim by the wizard transport.
func AdvanceBlockers(s State) []string {
	var blockers []string

	switch s.Page.Active {
	case 1:
		if !s.Variant.Valid() {
			blockers = append(blockers, "workflow variant not selected")
		}
		if s.Predictand.Path == "" {
			if s.Variant == VariantC {
				blockers = append(blockers, "point data table path not set")
			} else {
				blockers = append(blockers, "predictand path not set")
			}
		}

	case 2:
		// Variant C calibrates an existing table; the dataset page is
		// pass-through for it.
		if s.Variant == VariantC {
			return nil
		}
		if s.Predictors.Path == "" {
			blockers = append(blockers, "predictors path not set")
		}
		if s.Observations.Path == "" {
			blockers = append(blockers, "observations path not set")
		}

	case 3:
		if s.Variant == VariantC {
			return nil
		}
		if len(s.Computations) == 0 {
			blockers = append(blockers, "no computations defined")
		}
		for _, c := range s.Computations {
			if !c.Complete() {
				blockers = append(blockers, "computation "+c.Name+" is incomplete")
			}
		}
		if s.Parameters.DateStart == "" || s.Parameters.DateEnd == "" {
			blockers = append(blockers, "calibration period not set")
		}
		if s.Parameters.OutPath == "" {
			blockers = append(blockers, "output path not set")
		}

	case LastPage:
		blockers = append(blockers, "already on the last page")
	}

	return blockers
}

// CanExport reports whether the given save/upload operation is available
// in the current state. Breakpoint-dependent exports require breakpoints
// to exist; bundled export additionally requires an output path.
func CanExport(kind string, s State) bool {
	switch kind {
	case OpBreakpointsUpload:
		return true
	case OpBreakpoints:
		return s.Breakpoints.CSV != ""
	case OpMappingFunctions, OpWeatherTypes, OpBias:
		return s.Predictand.Path != ""
	case OpAll:
		return s.Breakpoints.CSV != "" && s.Parameters.OutPath != ""
	default:
		return false
	}
}
