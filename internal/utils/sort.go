package utils

import (
	"sort"
	"time"
)

// SortDates orders dates ascending in place and returns the slice.
func SortDates(dates []time.Time) []time.Time {
	sort.Slice(dates, func(i, j int) bool {
		return dates[i].Before(dates[j])
	})
	return dates
}

func GetSortedKeys[T any](m map[time.Time]T) []time.Time {
	keys := make([]time.Time, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return SortDates(keys)
}
