package rdf

import (
	"time"

	"github.com/spf13/cast"
)

// CmpResult is the outcome of a typed comparison: -1, 0 or 1, matching
// the usual strcmp/time.Compare convention.
type CmpResult int

const (
	Less    CmpResult = -1
	Equal_  CmpResult = 0
	Greater CmpResult = 1
)

// dateLayout is the single lexical form accepted for TypeDate values:
// ISO 8601 calendar dates, the only shape the policy file and datasets in
// scope use.
const dateLayout = "2006-01-02"

// Compare performs a typed comparison between two NodeValues of the same
// PrimType. IRIs compare equal iff their lexical forms are identical;
// like strings, distinct IRIs are ordered by their lexical forms. An
// unparsable date is reported via ok=false so the
// caller can apply the "violates every operator" rule from the filter
// algebra's between/date handling.
func Compare(a, b NodeValue) (result CmpResult, ok bool) {
	if a.Type != b.Type {
		return 0, false
	}

	switch a.Type {
	case TypeString, TypeIRI:
		switch {
		case a.Lexical < b.Lexical:
			return Less, true
		case a.Lexical > b.Lexical:
			return Greater, true
		default:
			return Equal_, true
		}
	case TypeInteger:
		av, aerr := cast.ToInt64E(a.Lexical)
		bv, berr := cast.ToInt64E(b.Lexical)
		if aerr != nil || berr != nil {
			return 0, false
		}
		return compareOrdered(av, bv), true
	case TypeDouble:
		av, aerr := cast.ToFloat64E(a.Lexical)
		bv, berr := cast.ToFloat64E(b.Lexical)
		if aerr != nil || berr != nil {
			return 0, false
		}
		return compareOrdered(av, bv), true
	case TypeDate:
		av, aerr := parseDate(a.Lexical)
		bv, berr := parseDate(b.Lexical)
		if aerr != nil || berr != nil {
			return 0, false
		}
		switch {
		case av.Before(bv):
			return Less, true
		case av.After(bv):
			return Greater, true
		default:
			return Equal_, true
		}
	default:
		return 0, false
	}
}

func parseDate(s string) (time.Time, error) {
	return time.Parse(dateLayout, s)
}

func compareOrdered[T int64 | float64](a, b T) CmpResult {
	switch {
	case a < b:
		return Less
	case a > b:
		return Greater
	default:
		return Equal_
	}
}

// ValuesEqual reports whether two NodeValues of the same type denote the
// same value, regardless of the CmpResult machinery above (used for Eq/Ne
// and In/NotIn set membership, where a date/number might fail to parse).
func ValuesEqual(a, b NodeValue) bool {
	if a.Type != b.Type {
		return false
	}
	r, ok := Compare(a, b)
	if !ok {
		return a.Lexical == b.Lexical
	}
	return r == Equal_
}
