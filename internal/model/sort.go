package model

import (
	"fmt"
	"strings"
)

// SortableFields lists the fields a list query may be sorted by.
var SortableFields = []string{"sortIndex", "company", "position", "createdOn"}

// DefaultSort is the board order: order key, then creation time.
func DefaultSort() []SortField {
	return []SortField{{Field: "sortIndex"}, {Field: "createdOn"}}
}

// ParseSort parses "field:dir[,field:dir...]". The direction defaults to asc.
// An empty spec yields nil (callers apply DefaultSort).
func ParseSort(spec string) ([]SortField, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil, nil
	}
	var out []SortField
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		field, dir, _ := strings.Cut(part, ":")
		field = strings.TrimSpace(field)
		if !sortable(field) {
			return nil, fmt.Errorf("unknown sort field %q (expected one of %s)", field, strings.Join(SortableFields, ", "))
		}
		f := SortField{Field: field}
		switch strings.ToLower(strings.TrimSpace(dir)) {
		case "", "asc":
		case "desc":
			f.Desc = true
		default:
			return nil, fmt.Errorf("invalid sort direction %q for %s", dir, field)
		}
		out = append(out, f)
	}
	return out, nil
}

func sortable(field string) bool {
	for _, f := range SortableFields {
		if f == field {
			return true
		}
	}
	return false
}
