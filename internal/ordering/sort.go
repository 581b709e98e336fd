package ordering

import (
	"sort"

	"jobtrack/internal/model"
)

// SortByOrderKey sorts applications in place in display order: order key, then
// creation time, then id. Ties on the key therefore resolve to insertion order.
func SortByOrderKey(apps []model.Application) {
	sort.SliceStable(apps, func(i, j int) bool {
		return compareByOrderKey(apps[i], apps[j]) < 0
	})
}

func compareByOrderKey(a, b model.Application) int {
	if a.SortIndex < b.SortIndex {
		return -1
	}
	if a.SortIndex > b.SortIndex {
		return 1
	}
	if a.CreatedOn.Before(b.CreatedOn) {
		return -1
	}
	if a.CreatedOn.After(b.CreatedOn) {
		return 1
	}
	if a.ID < b.ID {
		return -1
	}
	if a.ID > b.ID {
		return 1
	}
	return 0
}

// NextKey returns the key that appends an application to the end of column.
func NextKey(column []model.Application) float64 {
	if len(column) == 0 {
		return BaseKey
	}
	last := column[0].SortIndex
	for _, a := range column[1:] {
		if a.SortIndex > last {
			last = a.SortIndex
		}
	}
	return last + Step
}
