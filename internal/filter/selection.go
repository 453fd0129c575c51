package filter

import (
	"sort"
	"strings"
)

// Selection is either every option ("all") or an explicit, possibly empty,
// set of names. The zero value selects nothing.
type Selection struct {
	all   bool
	names []string
}

// All selects every option of the universe it is resolved against.
func All() Selection { return Selection{all: true} }

// Only selects exactly the given names. Only() with no names selects nothing.
func Only(names ...string) Selection {
	return Selection{names: append([]string(nil), names...)}
}

// IsAll reports whether the selection is the "all" variant.
func (s Selection) IsAll() bool { return s.all }

// Resolve returns the explicit set the selection denotes within universe,
// sorted and de-duplicated. Names are passed through norm first when it is
// non-nil. Explicit names outside the universe are kept: they simply match
// no rows.
func (s Selection) Resolve(universe []string, norm func(string) string) []string {
	src := s.names
	if s.all {
		src = universe
	}
	seen := make(map[string]struct{}, len(src))
	out := make([]string, 0, len(src))
	for _, n := range src {
		if norm != nil {
			n = norm(n)
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// ParseSelection builds a selection from user-supplied values. No values, or
// any value equal to "all", selects everything; empty strings are dropped.
func ParseSelection(values []string) Selection {
	if len(values) == 0 {
		return All()
	}
	names := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if strings.EqualFold(v, "all") {
			return All()
		}
		if v != "" {
			names = append(names, v)
		}
	}
	return Only(names...)
}
