package value

import "sort"

// Merge combines two maps into a new one. On key collisions first dominates,
// except that maps are merged recursively, lists of both sides are
// concatenated (first, then second) and sets are unioned. Neither input is
// modified.
func Merge(first, second Map) Map {
	out := make(Map, len(first)+len(second))
	for k, v := range second {
		out[k] = v
	}
	for k, v := range first {
		if other, ok := second[k]; ok {
			out[k] = mergeValues(v, other)
			continue
		}
		out[k] = v
	}
	return out
}

func mergeValues(first, second Value) Value {
	switch fv := first.(type) {
	case Map:
		if sv, ok := second.(Map); ok {
			return Merge(fv, sv)
		}
	case List:
		if sv, ok := second.(List); ok {
			out := make(List, 0, len(fv)+len(sv))
			out = append(out, fv...)
			return append(out, sv...)
		}
	case Set:
		if sv, ok := second.(Set); ok {
			return fv.Union(sv)
		}
	}
	return first
}

// Weighted is a map tagged with the priority it carries into MergeWeighted.
type Weighted struct {
	Map    Map
	Weight int
}

// MergeWeighted folds items into a single map. Items with a higher weight
// dominate; among equal weights the earlier item dominates.
func MergeWeighted(items []Weighted) Map {
	ordered := make([]Weighted, len(items))
	copy(ordered, items)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Weight > ordered[j].Weight
	})

	out := Map{}
	for _, item := range ordered {
		out = Merge(out, item.Map)
	}
	return out
}
