package analysis

import (
	"cmp"
	"slices"

	"github.com/KaramelBytes/casedash/internal/dataset"
)

// UnionEras merges two keyed series built from the two era tables. Keys
// present in only one era keep that era's value; keys present in both are
// summed. Neither input is modified.
//
// Yearly, per-state and map totals all go through this function so they
// agree on fill and overlap semantics.
func UnionEras[K comparable](legacy, summary map[K]float64) map[K]float64 {
	out := make(map[K]float64, len(legacy)+len(summary))
	for k, v := range legacy {
		out[k] += v
	}
	for k, v := range summary {
		out[k] += v
	}
	return out
}

// sortedKeys returns the map keys in ascending order.
func sortedKeys[K cmp.Ordered, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func legacyBy[K comparable](t dataset.LegacyTable, key func(dataset.LegacyRecord) K) map[K]float64 {
	out := map[K]float64{}
	for _, r := range t.Rows {
		out[key(r)] += r.Total()
	}
	return out
}

func summaryBy[K comparable](t dataset.SummaryTable, key func(dataset.SummaryRecord) K) map[K]float64 {
	out := map[K]float64{}
	for _, r := range t.Rows {
		out[key(r)] += r.Cases
	}
	return out
}

func legacyYear(r dataset.LegacyRecord) int { return r.Year }
func legacyState(r dataset.LegacyRecord) string { return r.State }
func summaryYear(r dataset.SummaryRecord) int { return r.Year }
func summaryState(r dataset.SummaryRecord) string { return r.State }
