package mutate

import (
	"math"
	"strings"
	"unicode/utf8"

	"jobtrack/internal/model"
	"jobtrack/internal/statusutil"
)

const (
	companyMin  = 3
	companyMax  = 100
	positionMin = 2
	positionMax = 100
)

// ValidateCreate normalizes p in place (trimmed strings, default status) and checks
// every write-time rule. Nothing is persisted by callers when it returns an error.
func ValidateCreate(p *model.CreateParams) error {
	var verr ValidationError
	if p == nil {
		verr.add("body", "missing")
		return verr
	}
	p.Company = strings.TrimSpace(p.Company)
	p.Position = strings.TrimSpace(p.Position)
	if strings.TrimSpace(string(p.Status)) == "" {
		p.Status = model.StatusApplied
	}

	checkCompany(&verr, p.Company)
	checkPosition(&verr, p.Position)
	checkSalary(&verr, "salaryMin", p.SalaryMin)
	checkSalary(&verr, "salaryMax", p.SalaryMax)
	checkSalaryRange(&verr, p.SalaryMin, p.SalaryMax)
	if st, err := statusutil.Normalize(string(p.Status)); err != nil {
		verr.add("status", "must be one of Applied, Interview, Offer, Rejected")
	} else {
		p.Status = st
	}
	if p.SortIndex != nil && !finite(*p.SortIndex) {
		verr.add("sortIndex", "must be a finite number")
	}

	if !verr.empty() {
		return verr
	}
	return nil
}

// ApplyPatch validates patch against existing and returns the merged record. The salary
// range is checked on the merged record so a one-sided update cannot invert it.
func ApplyPatch(existing model.Application, patch model.Patch) (model.Application, error) {
	var verr ValidationError
	merged := existing

	switch p := patch.(type) {
	case model.MovePatch:
		if !statusutil.Valid(p.Status) {
			verr.add("status", "must be one of Applied, Interview, Offer, Rejected")
		}
		if !finite(p.SortIndex) {
			verr.add("sortIndex", "must be a finite number")
		}
		if !verr.empty() {
			return existing, verr
		}
		p.Apply(&merged)
		return merged, nil

	case model.FieldsPatch:
		if p.Company != nil {
			v := strings.TrimSpace(*p.Company)
			p.Company = &v
			checkCompany(&verr, v)
		}
		if p.Position != nil {
			v := strings.TrimSpace(*p.Position)
			p.Position = &v
			checkPosition(&verr, v)
		}
		if p.SalaryMin != nil {
			checkSalary(&verr, "salaryMin", *p.SalaryMin)
		}
		if p.SalaryMax != nil {
			checkSalary(&verr, "salaryMax", *p.SalaryMax)
		}
		if p.Status != nil && !statusutil.Valid(*p.Status) {
			verr.add("status", "must be one of Applied, Interview, Offer, Rejected")
		}
		p.Apply(&merged)
		if !verr.Has("salaryMin") && !verr.Has("salaryMax") {
			checkSalaryRange(&verr, merged.SalaryMin, merged.SalaryMax)
		}
		if !verr.empty() {
			return existing, verr
		}
		return merged, nil

	default:
		verr.add("body", "unsupported update")
		return existing, verr
	}
}

// DecodePatch turns wire params into a typed patch. A sortIndex is only accepted
// together with a status and nothing else (a move); every other combination is a
// fields update that leaves the order key alone.
func DecodePatch(p model.UpdateParams) (model.Patch, error) {
	var verr ValidationError
	if p.SortIndex != nil {
		if p.Status == nil {
			verr.add("status", "required when sortIndex is set")
		}
		if p.Company != nil || p.Position != nil || p.SalaryMin != nil || p.SalaryMax != nil || p.Notes != nil {
			verr.add("sortIndex", "cannot be combined with other fields")
		}
		if !verr.empty() {
			return nil, verr
		}
		st, err := statusutil.Normalize(string(*p.Status))
		if err != nil {
			verr.add("status", "must be one of Applied, Interview, Offer, Rejected")
			return nil, verr
		}
		return model.MovePatch{Status: st, SortIndex: *p.SortIndex}, nil
	}

	fp := model.FieldsPatch{
		Company:   p.Company,
		Position:  p.Position,
		SalaryMin: p.SalaryMin,
		SalaryMax: p.SalaryMax,
		Notes:     p.Notes,
	}
	if p.Status != nil {
		st, err := statusutil.Normalize(string(*p.Status))
		if err != nil {
			verr.add("status", "must be one of Applied, Interview, Offer, Rejected")
			return nil, verr
		}
		fp.Status = &st
	}
	if fp.Empty() {
		verr.add("body", "nothing to update")
		return nil, verr
	}
	return fp, nil
}

func checkCompany(verr *ValidationError, v string) {
	n := utf8.RuneCountInString(v)
	switch {
	case n == 0:
		verr.add("company", "required")
	case n < companyMin:
		verr.add("company", "must be at least 3 characters")
	case n > companyMax:
		verr.add("company", "must be at most 100 characters")
	}
}

func checkPosition(verr *ValidationError, v string) {
	n := utf8.RuneCountInString(v)
	switch {
	case n == 0:
		verr.add("position", "required")
	case n < positionMin:
		verr.add("position", "must be at least 2 characters")
	case n > positionMax:
		verr.add("position", "must be at most 100 characters")
	}
}

func checkSalary(verr *ValidationError, field string, v float64) {
	if !finite(v) {
		verr.add(field, "must be a finite number")
		return
	}
	if v < 0 {
		verr.add(field, "cannot be negative")
	}
}

func checkSalaryRange(verr *ValidationError, lo, hi float64) {
	if hi < lo {
		verr.add("salary", "salaryMax cannot be less than salaryMin")
	}
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
