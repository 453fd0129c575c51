package geo

import (
	"fmt"

	"github.com/KaramelBytes/casedash/internal/dataset"
	"github.com/paulmach/orb/geojson"
)

// TotalCasesProperty is the feature property the join writes.
const TotalCasesProperty = "Total_Cases"

// JoinedFeature is one boundary feature's join outcome.
type JoinedFeature struct {
	Name       string  `json:"name" yaml:"name"`
	TotalCases float64 `json:"total_cases" yaml:"total_cases"`
	Matched    bool    `json:"matched" yaml:"matched"`
}

// Join left-outer-joins boundary features to per-state totals by
// normalized name. Every input feature appears exactly once in the output,
// in input order; unmatched features get a zero total. totals keys are
// normalized before matching. The input collection is not modified.
func Join(fc *geojson.FeatureCollection, totals map[string]float64, nameField string) (*geojson.FeatureCollection, []JoinedFeature) {
	if nameField == "" {
		nameField = DefaultNameField
	}
	norm := make(map[string]float64, len(totals))
	for k, v := range totals {
		norm[dataset.NormalizeState(k)] += v
	}

	out := geojson.NewFeatureCollection()
	if fc == nil {
		return out, nil
	}
	rows := make([]JoinedFeature, 0, len(fc.Features))
	for _, f := range fc.Features {
		if f == nil {
			continue
		}
		props := f.Properties.Clone()
		if props == nil {
			props = geojson.Properties{}
		}
		name := dataset.NormalizeState(propString(props, nameField))
		total, ok := norm[name]
		props[nameField] = name
		props[TotalCasesProperty] = total

		out.Append(&geojson.Feature{
			ID:         f.ID,
			Type:       f.Type,
			BBox:       f.BBox,
			Geometry:   f.Geometry,
			Properties: props,
		})
		rows = append(rows, JoinedFeature{Name: name, TotalCases: total, Matched: ok})
	}
	return out, rows
}

// Unmatched returns the names of states with case data but no boundary feature.
func Unmatched(rows []JoinedFeature, totals map[string]float64) []string {
	have := make(map[string]struct{}, len(rows))
	for _, r := range rows {
		have[r.Name] = struct{}{}
	}
	var out []string
	for k := range totals {
		n := dataset.NormalizeState(k)
		if _, ok := have[n]; !ok {
			out = append(out, n)
		}
	}
	return out
}

func propString(p geojson.Properties, key string) string {
	switch v := p[key].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}
