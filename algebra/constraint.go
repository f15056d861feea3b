// Package algebra normalizes and merges simple comparison filters on a
// single variable, detecting contradictions. Rather than hand-dispatching
// on every (op1, op2) pair, each simple filter is folded into a single
// canonical constraint — an optional exact value, an optional closed/open
// range, an explicit inclusion set and an accumulated exclusion set — and
// the constraints are merged field-by-field. This is the same range/
// exception shape the teacher's query planner builds per-column before
// costing an index scan (see rangeFilter in the reference analyzer's
// range-filter tests: a value, a min, a max and open/closed flags), only
// generalized here with an explicit inclusion set and exclusion set so it
// can also absorb In/NotIn and Eq/Ne losslessly.
package algebra

import "github.com/GMaffio99/SPARQLPolicyTool/rdf"

type constraint struct {
	eq *rdf.NodeValue

	hasMin    bool
	min       rdf.NodeValue
	minClosed bool

	hasMax    bool
	max       rdf.NodeValue
	maxClosed bool

	inSetActive bool
	inSet       []rdf.NodeValue

	notSet []rdf.NodeValue
}

func fromEq(v rdf.NodeValue) constraint {
	c := v
	return constraint{eq: &c}
}

func fromNe(v rdf.NodeValue) constraint {
	return constraint{notSet: []rdf.NodeValue{v}}
}

func fromLt(v rdf.NodeValue) constraint {
	return constraint{hasMax: true, max: v, maxClosed: false}
}

func fromLe(v rdf.NodeValue) constraint {
	return constraint{hasMax: true, max: v, maxClosed: true}
}

func fromGt(v rdf.NodeValue) constraint {
	return constraint{hasMin: true, min: v, minClosed: false}
}

func fromGe(v rdf.NodeValue) constraint {
	return constraint{hasMin: true, min: v, minClosed: true}
}

func fromIn(set []rdf.NodeValue) constraint {
	return constraint{inSetActive: true, inSet: dedup(set)}
}

func fromNotIn(set []rdf.NodeValue) constraint {
	return constraint{notSet: dedup(set)}
}

func dedup(set []rdf.NodeValue) []rdf.NodeValue {
	var out []rdf.NodeValue
	for _, v := range set {
		found := false
		for _, o := range out {
			if rdf.ValuesEqual(o, v) {
				found = true
				break
			}
		}
		if !found {
			out = append(out, v)
		}
	}
	return out
}

func containsVal(set []rdf.NodeValue, v rdf.NodeValue) bool {
	for _, s := range set {
		if rdf.ValuesEqual(s, v) {
			return true
		}
	}
	return false
}

func unionVals(a, b []rdf.NodeValue) []rdf.NodeValue {
	return dedup(append(append([]rdf.NodeValue(nil), a...), b...))
}

func intersectVals(a, b []rdf.NodeValue) []rdf.NodeValue {
	var out []rdf.NodeValue
	for _, v := range a {
		if containsVal(b, v) {
			out = append(out, v)
		}
	}
	return out
}

// satisfiesBounds reports whether v lies within the constraint's min/max
// bounds, treating an unparsable comparison (e.g. a malformed date) as a
// violation: per the "between on a malformed date" resolution, anything
// that can't be compared fails every operator.
func (c constraint) satisfiesBounds(v rdf.NodeValue) bool {
	if c.hasMin {
		r, ok := rdf.Compare(v, c.min)
		if !ok {
			return false
		}
		if c.minClosed {
			if r == rdf.Less {
				return false
			}
		} else if r != rdf.Greater {
			return false
		}
	}
	if c.hasMax {
		r, ok := rdf.Compare(v, c.max)
		if !ok {
			return false
		}
		if c.maxClosed {
			if r == rdf.Greater {
				return false
			}
		} else if r != rdf.Less {
			return false
		}
	}
	return true
}

// merge combines two constraints on the same variable, returning
// ok=false for a contradiction (⊥).
func merge(a, b constraint) (constraint, bool) {
	out := constraint{}

	// Bounds: keep the tighter of the two on each side.
	out.hasMin, out.min, out.minClosed = mergeMin(a, b)
	out.hasMax, out.max, out.maxClosed = mergeMax(a, b)
	if out.hasMin && out.hasMax {
		r, ok := rdf.Compare(out.min, out.max)
		if !ok {
			return constraint{}, false
		}
		switch {
		case r == rdf.Greater:
			return constraint{}, false
		case r == rdf.Equal_ && !(out.minClosed && out.maxClosed):
			return constraint{}, false
		}
	}

	// Exclusions accumulate.
	out.notSet = unionVals(a.notSet, b.notSet)

	// Inclusion sets intersect if both are active.
	switch {
	case a.inSetActive && b.inSetActive:
		out.inSetActive = true
		out.inSet = intersectVals(a.inSet, b.inSet)
	case a.inSetActive:
		out.inSetActive = true
		out.inSet = append([]rdf.NodeValue(nil), a.inSet...)
	case b.inSetActive:
		out.inSetActive = true
		out.inSet = append([]rdf.NodeValue(nil), b.inSet...)
	}

	// Equality: both values must agree; an equality also has to clear the
	// other side's bounds/sets, checked below once out is otherwise built.
	switch {
	case a.eq != nil && b.eq != nil:
		if !rdf.ValuesEqual(*a.eq, *b.eq) {
			return constraint{}, false
		}
		v := *a.eq
		out.eq = &v
	case a.eq != nil:
		v := *a.eq
		out.eq = &v
	case b.eq != nil:
		v := *b.eq
		out.eq = &v
	}

	if out.eq != nil {
		v := *out.eq
		if !out.satisfiesBounds(v) {
			return constraint{}, false
		}
		if containsVal(out.notSet, v) {
			return constraint{}, false
		}
		if out.inSetActive && !containsVal(out.inSet, v) {
			return constraint{}, false
		}
		// Equality subsumes everything else once validated.
		return constraint{eq: &v}, true
	}

	if out.inSetActive {
		var filtered []rdf.NodeValue
		for _, v := range out.inSet {
			if out.satisfiesBounds(v) && !containsVal(out.notSet, v) {
				filtered = append(filtered, v)
			}
		}
		if len(filtered) == 0 {
			return constraint{}, false
		}
		if len(filtered) == 1 {
			return constraint{eq: &filtered[0]}, true
		}
		return constraint{inSetActive: true, inSet: filtered}, true
	}

	// Pure range plus exclusions: drop exclusions outside the range, since
	// they're vacuous.
	var filteredNot []rdf.NodeValue
	for _, v := range out.notSet {
		if out.satisfiesBounds(v) {
			filteredNot = append(filteredNot, v)
		}
	}
	out.notSet = filteredNot

	return out, true
}

func mergeMin(a, b constraint) (bool, rdf.NodeValue, bool) {
	switch {
	case !a.hasMin:
		return b.hasMin, b.min, b.minClosed
	case !b.hasMin:
		return a.hasMin, a.min, a.minClosed
	}
	r, ok := rdf.Compare(a.min, b.min)
	if !ok {
		// Unparsable bound: fall back to the side that at least parses
		// against itself elsewhere; treat as the tighter (b) to be
		// conservative (never widen).
		return true, b.min, b.minClosed
	}
	switch {
	case r == rdf.Greater:
		return true, a.min, a.minClosed
	case r == rdf.Less:
		return true, b.min, b.minClosed
	default:
		return true, a.min, a.minClosed && b.minClosed
	}
}

func mergeMax(a, b constraint) (bool, rdf.NodeValue, bool) {
	switch {
	case !a.hasMax:
		return b.hasMax, b.max, b.maxClosed
	case !b.hasMax:
		return a.hasMax, a.max, a.maxClosed
	}
	r, ok := rdf.Compare(a.max, b.max)
	if !ok {
		return true, b.max, b.maxClosed
	}
	switch {
	case r == rdf.Less:
		return true, a.max, a.maxClosed
	case r == rdf.Greater:
		return true, b.max, b.maxClosed
	default:
		return true, a.max, a.maxClosed && b.maxClosed
	}
}
