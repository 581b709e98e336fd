// Package ordering computes fractional order keys for applications inside a status column.
//
// An order key only has to sort correctly against its neighbors, so moving one
// application never rewrites any other application's key.
package ordering

import "jobtrack/internal/model"

const (
	// BaseKey is the key given to the first application in an empty column.
	BaseKey = 1000.0
	// Step is the spacing used when inserting before the first or after the last key.
	Step = 1000.0
)

// ComputeOrderKey returns the order key for movedID when it is dropped at index in a
// destination column.
//
// column must be sorted ascending by SortIndex (display order). index is the drop index
// reported by the drag system, counted in the column without the moved item. The moved
// item is removed from column first, so it is never used as its own neighbor when it is
// reordered within the same column.
func ComputeOrderKey(column []model.Application, index int, movedID string) float64 {
	rest := make([]model.Application, 0, len(column))
	for _, a := range column {
		if a.ID == movedID {
			continue
		}
		rest = append(rest, a)
	}

	if len(rest) == 0 {
		return BaseKey
	}
	if index <= 0 {
		return rest[0].SortIndex - Step
	}
	if index >= len(rest) {
		return rest[len(rest)-1].SortIndex + Step
	}

	prev := rest[index-1].SortIndex
	next := rest[index].SortIndex
	return prev + (next-prev)/2
}
