package model

import (
	"strings"
	"time"
)

type Status string

const (
	StatusApplied   Status = "Applied"
	StatusInterview Status = "Interview"
	StatusOffer     Status = "Offer"
	StatusRejected  Status = "Rejected"
)

// Application is one tracked job application.
//
// SortIndex is the order key within the application's status column. It is only
// meaningful relative to other applications with the same Status.
type Application struct {
	ID        string  `json:"id"`
	Company   string  `json:"company"`
	Position  string  `json:"position"`
	SalaryMin float64 `json:"salaryMin"`
	SalaryMax float64 `json:"salaryMax"`
	Status    Status  `json:"status"`
	Notes     string  `json:"notes"`
	SortIndex float64 `json:"sortIndex"`
	UserID    string  `json:"userId"`

	CreatedOn time.Time  `json:"createdOn"`
	UpdatedOn time.Time  `json:"updatedOn"`
	DeletedOn *time.Time `json:"deletedOn,omitempty"`
}

type CreateParams struct {
	Company   string   `json:"company"`
	Position  string   `json:"position"`
	SalaryMin float64  `json:"salaryMin"`
	SalaryMax float64  `json:"salaryMax"`
	Status    Status   `json:"status,omitempty"`
	Notes     string   `json:"notes,omitempty"`
	SortIndex *float64 `json:"sortIndex,omitempty"`
}

// UpdateParams is the wire shape of a partial update. Use mutate.DecodePatch to turn
// it into a typed Patch.
type UpdateParams struct {
	Company   *string  `json:"company,omitempty"`
	Position  *string  `json:"position,omitempty"`
	SalaryMin *float64 `json:"salaryMin,omitempty"`
	SalaryMax *float64 `json:"salaryMax,omitempty"`
	Status    *Status  `json:"status,omitempty"`
	Notes     *string  `json:"notes,omitempty"`
	SortIndex *float64 `json:"sortIndex,omitempty"`
}

// Patch is a partial update of an Application. The concrete kinds are MovePatch
// (status + order key, produced by drag and drop) and FieldsPatch (everything else).
type Patch interface {
	Apply(a *Application)
	Params() UpdateParams
	isPatch()
}

// MovePatch changes the column and position of an application.
type MovePatch struct {
	Status    Status
	SortIndex float64
}

func (p MovePatch) Apply(a *Application) {
	if a == nil {
		return
	}
	a.Status = p.Status
	a.SortIndex = p.SortIndex
}

func (p MovePatch) Params() UpdateParams {
	st := p.Status
	idx := p.SortIndex
	return UpdateParams{Status: &st, SortIndex: &idx}
}

func (MovePatch) isPatch() {}

// FieldsPatch updates descriptive fields. It never touches the order key.
type FieldsPatch struct {
	Company   *string
	Position  *string
	SalaryMin *float64
	SalaryMax *float64
	Status    *Status
	Notes     *string
}

func (p FieldsPatch) Apply(a *Application) {
	if a == nil {
		return
	}
	if p.Company != nil {
		a.Company = *p.Company
	}
	if p.Position != nil {
		a.Position = *p.Position
	}
	if p.SalaryMin != nil {
		a.SalaryMin = *p.SalaryMin
	}
	if p.SalaryMax != nil {
		a.SalaryMax = *p.SalaryMax
	}
	if p.Status != nil {
		a.Status = *p.Status
	}
	if p.Notes != nil {
		a.Notes = *p.Notes
	}
}

func (p FieldsPatch) Params() UpdateParams {
	return UpdateParams{
		Company:   p.Company,
		Position:  p.Position,
		SalaryMin: p.SalaryMin,
		SalaryMax: p.SalaryMax,
		Status:    p.Status,
		Notes:     p.Notes,
	}
}

func (FieldsPatch) isPatch() {}

func (p FieldsPatch) Empty() bool {
	return p.Company == nil && p.Position == nil && p.SalaryMin == nil &&
		p.SalaryMax == nil && p.Status == nil && p.Notes == nil
}

type SortField struct {
	Field string `json:"field"`
	Desc  bool   `json:"desc,omitempty"`
}

func (f SortField) String() string {
	dir := "asc"
	if f.Desc {
		dir = "desc"
	}
	return f.Field + ":" + dir
}

type ListParams struct {
	Search string      `json:"search,omitempty"`
	Sort   []SortField `json:"sort,omitempty"`
}

// Key returns a stable string for the params, used to key cached list results.
func (p ListParams) Key() string {
	parts := make([]string, 0, len(p.Sort))
	for _, f := range p.Sort {
		parts = append(parts, f.String())
	}
	return "search=" + strings.TrimSpace(p.Search) + ";sort=" + strings.Join(parts, ",")
}

type ListResult struct {
	Results []Application `json:"results"`
	Count   int           `json:"count"`
}

// Clone returns a deep copy; no slice or pointer is shared with r.
func (r ListResult) Clone() ListResult {
	out := ListResult{Count: r.Count}
	if r.Results == nil {
		return out
	}
	out.Results = make([]Application, len(r.Results))
	for i, a := range r.Results {
		if a.DeletedOn != nil {
			t := *a.DeletedOn
			a.DeletedOn = &t
		}
		out.Results[i] = a
	}
	return out
}

// Find returns the index of the application with id, or -1.
func (r ListResult) Find(id string) int {
	for i := range r.Results {
		if r.Results[i].ID == id {
			return i
		}
	}
	return -1
}
