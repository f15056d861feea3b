package query

import (
	"github.com/mitchellh/hashstructure"
)

// Hash returns a structural hash of q's shape, ignoring filter order
// within the Filters slice (P2 only requires equality modulo filter-order
// within a group). It's used by tests asserting idempotence.
func (q *Query) Hash() (uint64, error) {
	sortedFilters := append([]Expression(nil), q.Filters...)
	sortExpressionsByString(sortedFilters)

	shape := struct {
		Projection []ProjectionItem
		Distinct   bool
		Pattern    []Triple
		Filters    []Expression
		GroupBy    []string
		OrderBy    []OrderTerm
		Limit      *int
		Offset     *int
	}{
		Projection: q.Projection,
		Distinct:   q.Distinct,
		Pattern:    q.Pattern,
		Filters:    sortedFilters,
		OrderBy:    q.OrderBy,
		Limit:      q.Limit,
		Offset:     q.Offset,
	}
	for _, v := range q.GroupBy {
		shape.GroupBy = append(shape.GroupBy, string(v))
	}
	return hashstructure.Hash(shape, nil)
}

func sortExpressionsByString(es []Expression) {
	for i := 1; i < len(es); i++ {
		for j := i; j > 0 && es[j-1].String() > es[j].String(); j-- {
			es[j-1], es[j] = es[j], es[j-1]
		}
	}
}

// StructurallyEqual compares two queries modulo filter ordering, matching
// P2's idempotence requirement.
func (q *Query) StructurallyEqual(o *Query) bool {
	h1, err1 := q.Hash()
	h2, err2 := o.Hash()
	if err1 != nil || err2 != nil {
		return false
	}
	return h1 == h2
}
