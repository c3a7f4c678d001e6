package domain

// Wizard page bounds.
const (
	FirstPage = 1
	LastPage  = 4
)

// Page holds the active wizard step.
type Page struct {
	Active int `json:"activePageNumber"`
}

// ReducePage applies navigation actions, clamping to the valid page
// range. Forward gating is enforced by the caller, not here.
func ReducePage(p Page, action Action) Page {
	switch a := action.(type) {
	case GoToPage:
		p.Active = clampPage(a.Page)
	case NextPage:
		p.Active = clampPage(p.Active + 1)
	case PrevPage:
		p.Active = clampPage(p.Active - 1)
	}
	return p
}

func clampPage(n int) int {
	if n < FirstPage {
		return FirstPage
	}
	if n > LastPage {
		return LastPage
	}
	return n
}
