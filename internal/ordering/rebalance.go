package ordering

import "jobtrack/internal/model"

// DefaultMinGap is the smallest gap between adjacent keys that still leaves room for
// further midpoint insertions without running into float64 precision.
const DefaultMinGap = 1e-6

// NeedsRebalance reports whether any two adjacent keys in column (display order) are
// tied or closer than minGap. A non-positive minGap uses DefaultMinGap.
func NeedsRebalance(column []model.Application, minGap float64) bool {
	if minGap <= 0 {
		minGap = DefaultMinGap
	}
	if len(column) < 2 {
		return false
	}
	cur := append([]model.Application(nil), column...)
	SortByOrderKey(cur)
	for i := 1; i < len(cur); i++ {
		if !hasRoom(cur[i-1].SortIndex, cur[i].SortIndex, minGap) {
			return true
		}
	}
	return false
}

func hasRoom(lower, upper, minGap float64) bool {
	if upper-lower < minGap {
		return false
	}
	mid := lower + (upper-lower)/2
	return mid > lower && mid < upper
}

// PlanRebalance assigns evenly spaced keys (BaseKey, BaseKey+Step, ...) to column in its
// current display order. Only applications whose key changes are returned.
func PlanRebalance(column []model.Application) map[string]float64 {
	out := map[string]float64{}
	if len(column) == 0 {
		return out
	}
	cur := append([]model.Application(nil), column...)
	SortByOrderKey(cur)
	for i, a := range cur {
		k := BaseKey + float64(i)*Step
		if a.SortIndex != k {
			out[a.ID] = k
		}
	}
	return out
}
