package algebra

import (
	"github.com/GMaffio99/SPARQLPolicyTool/query"
	"github.com/GMaffio99/SPARQLPolicyTool/rdf"
)

// Merger is a query.Combiner backed by the canonical constraint
// representation in this package.
type Merger struct{}

// Combine folds filters left-to-right in insertion order (per the
// single-threaded, order-pinned fold the driver relies on) and returns
// either the single minimal merged filter or ok=false for a contradiction.
func (Merger) Combine(filters []query.Expression) (query.Expression, bool) {
	if len(filters) == 0 {
		return query.Expression{}, true
	}

	v, ok := filters[0].SingleVarOperand()
	if !ok {
		return filters[0], true
	}

	acc, compound, ok := toConstraint(filters[0])
	if !ok {
		return query.Expression{}, false
	}
	if compound != nil {
		return *compound, true
	}

	for _, f := range filters[1:] {
		if f.IsCompound() {
			return query.NewAnd(fromConstraint(v, acc), f), true
		}
		next, nextCompound, ok := toConstraint(f)
		if !ok {
			return query.Expression{}, false
		}
		if nextCompound != nil {
			return query.NewAnd(fromConstraint(v, acc), *nextCompound), true
		}
		merged, ok := merge(acc, next)
		if !ok {
			return query.Expression{}, false
		}
		acc = merged
	}

	return fromConstraint(v, acc), true
}

// toConstraint converts a simple single-variable comparison filter into
// its canonical constraint form. compound is non-nil (with ok=true) if e
// turned out not to be a simple comparison after all, in which case the
// caller conjoins it verbatim rather than folding it.
func toConstraint(e query.Expression) (c constraint, compound *query.Expression, ok bool) {
	val, hasScalar := e.ScalarOperand()
	switch e.Op {
	case query.Eq:
		return fromEq(val), nil, hasScalar
	case query.Ne:
		return fromNe(val), nil, hasScalar
	case query.Lt:
		return fromLt(val), nil, hasScalar
	case query.Le:
		return fromLe(val), nil, hasScalar
	case query.Gt:
		return fromGt(val), nil, hasScalar
	case query.Ge:
		return fromGe(val), nil, hasScalar
	case query.In:
		return fromIn(e.Set), nil, true
	case query.NotIn:
		return fromNotIn(e.Set), nil, true
	default:
		cp := e
		return constraint{}, &cp, true
	}
}

// fromConstraint reconstructs the minimal Expression for the merged
// constraint, applying the general collapsing rules (singleton In -> Eq,
// singleton NotIn -> Ne, empty NotIn -> omitted).
func fromConstraint(v rdf.Variable, c constraint) query.Expression {
	if c.eq != nil {
		return query.NewEq(v, *c.eq)
	}
	if c.inSetActive {
		if len(c.inSet) == 1 {
			return query.NewEq(v, c.inSet[0])
		}
		return query.NewIn(v, c.inSet)
	}

	var rangeExpr *query.Expression
	switch {
	case c.hasMin && c.hasMax:
		var lo, hi query.Expression
		if c.minClosed {
			lo = query.NewGe(v, c.min)
		} else {
			lo = query.NewGt(v, c.min)
		}
		if c.maxClosed {
			hi = query.NewLe(v, c.max)
		} else {
			hi = query.NewLt(v, c.max)
		}
		e := query.NewAnd(lo, hi)
		rangeExpr = &e
	case c.hasMin:
		var e query.Expression
		if c.minClosed {
			e = query.NewGe(v, c.min)
		} else {
			e = query.NewGt(v, c.min)
		}
		rangeExpr = &e
	case c.hasMax:
		var e query.Expression
		if c.maxClosed {
			e = query.NewLe(v, c.max)
		} else {
			e = query.NewLt(v, c.max)
		}
		rangeExpr = &e
	}

	var notExpr *query.Expression
	if len(c.notSet) == 1 {
		e := query.NewNe(v, c.notSet[0])
		notExpr = &e
	} else if len(c.notSet) > 1 {
		e := query.NewNotIn(v, c.notSet)
		notExpr = &e
	}

	switch {
	case rangeExpr != nil && notExpr != nil:
		return query.NewAnd(*rangeExpr, *notExpr)
	case rangeExpr != nil:
		return *rangeExpr
	case notExpr != nil:
		return *notExpr
	default:
		// No constraint at all: every value satisfies this filter. This
		// cannot arise from a non-empty fold over real inputs, but
		// returning a vacuously-true IN of the variable against itself
		// would be wrong; callers never see this branch in practice.
		return query.NewEq(v, rdf.NodeValue{})
	}
}
