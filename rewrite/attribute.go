package rewrite

import (
	"context"

	"github.com/GMaffio99/SPARQLPolicyTool/policy"
	"github.com/GMaffio99/SPARQLPolicyTool/query"
	"github.com/GMaffio99/SPARQLPolicyTool/rdf"
)

// runAttributePass implements §4.6's attribute pass (value denial).
func runAttributePass(ctx context.Context, d *Driver, user string, q *query.Query) bool {
	changed := false
	for _, t := range snapshotTriples(q) {
		if !q.HasTriple(t) {
			continue
		}
		if attributePassTriple(ctx, d, user, q, t) {
			changed = true
		}
	}
	return changed
}

func attributePassTriple(ctx context.Context, d *Driver, user string, q *query.Query, t query.Triple) bool {
	sTypes := candidateTypes(q, t.Subject)
	pCandidates := candidatePredicates(q, t.Predicate)

	total := 0
	notExists := 0
	var filters []query.Expression

	for _, pIRI := range pCandidates {
		dom, err := d.Dataset.Domain(ctx, pIRI)
		if err != nil {
			dom = nil
		}
		for _, sT := range sTypes {
			if len(dom) > 0 && !containsIRI(dom, sT) {
				continue
			}
			total++
			matches := d.Store.AttributeConstraints(user, sT, pIRI)
			d.decisionLog.AttributeLookup(user, sT, pIRI, matches)
			for _, m := range matches {
				fs, dropNow, counts := attributeDecision(t, m)
				if dropNow {
					q.RemoveTriple(t)
					return true
				}
				if counts {
					notExists++
				}
				filters = append(filters, fs...)
			}
		}
	}

	if notExists > 0 && notExists == total {
		q.RemoveTriple(t)
		return true
	}
	changed := false
	for _, f := range filters {
		q.AddFilter(f)
		changed = true
	}
	return changed
}

// attributeDecision dispatches on the constraint's operator, implementing
// every branch of §4.6's attribute pass for one matching entry.
func attributeDecision(t query.Triple, c policy.AttributeConstraint) (filters []query.Expression, dropImmediately bool, counts bool) {
	switch c.Op {
	case policy.OpDeny:
		return denyDecision(t, c)
	case policy.OpEq, policy.OpNe, policy.OpLt, policy.OpLe, policy.OpGt, policy.OpGe:
		return comparisonDecision(t, c)
	case policy.OpBetween:
		return betweenDecision(t, c)
	case policy.OpIn, policy.OpNin:
		return setDecision(t, c)
	default:
		return nil, false, false
	}
}

func predicateIsVariable(t query.Triple) bool {
	_, ok := t.Predicate.(rdf.Variable)
	return ok
}

// denyDecision implements the X (deny-read) branch.
func denyDecision(t query.Triple, c policy.AttributeConstraint) ([]query.Expression, bool, bool) {
	if !c.Scoped() {
		if predicateIsVariable(t) {
			return []query.Expression{query.NewNotExists(t)}, false, true
		}
		return nil, true, false
	}

	if v, ok := t.Subject.(rdf.Variable); ok {
		return []query.Expression{buildNotInExpr(v, c.Subjects)}, false, false
	}
	iri, ok := t.Subject.(rdf.IRI)
	if !ok || !containsIRI(c.Subjects, iri) {
		return nil, false, false
	}
	if predicateIsVariable(t) {
		return []query.Expression{query.NewNotExists(t)}, false, true
	}
	return nil, true, false
}

// comparisonDecision implements the =, !=, <, <=, >, >= branches.
func comparisonDecision(t query.Triple, c policy.AttributeConstraint) ([]query.Expression, bool, bool) {
	if len(c.Values) == 0 {
		return nil, false, false
	}
	threshold := c.Values[0]

	if v, ok := t.Object.(rdf.Variable); ok {
		return []query.Expression{comparisonFilter(c.Op, v, threshold)}, false, false
	}

	lit, ok := t.Object.(rdf.Literal)
	if !ok {
		return nil, false, false
	}
	lv := literalToValue(lit, c.ValueType)
	if evalOperator(c.Op, lv, c.Values) {
		return nil, false, false // within the permitted range
	}
	if predicateIsVariable(t) {
		return []query.Expression{query.NewNotExists(t)}, false, true
	}
	return nil, true, false
}

// betweenDecision implements the between branch: two filters (≥lo, ≤hi)
// kept separate (rather than pre-conjoined) so each can still merge with
// other simple filters on the same variable via the filter algebra.
func betweenDecision(t query.Triple, c policy.AttributeConstraint) ([]query.Expression, bool, bool) {
	if len(c.Values) < 2 {
		return nil, false, false
	}
	lo, hi := c.Values[0], c.Values[1]

	if v, ok := t.Object.(rdf.Variable); ok {
		return []query.Expression{query.NewGe(v, lo), query.NewLe(v, hi)}, false, false
	}

	lit, ok := t.Object.(rdf.Literal)
	if !ok {
		return nil, false, false
	}
	lv := literalToValue(lit, c.ValueType)
	loCmp, okLo := rdf.Compare(lv, lo)
	hiCmp, okHi := rdf.Compare(lv, hi)
	within := okLo && okHi && loCmp != rdf.Less && hiCmp != rdf.Greater
	if within {
		return nil, false, false
	}
	if predicateIsVariable(t) {
		return []query.Expression{query.NewNotExists(t)}, false, true
	}
	return nil, true, false
}

// setDecision implements the in/notin branches.
func setDecision(t query.Triple, c policy.AttributeConstraint) ([]query.Expression, bool, bool) {
	if v, ok := t.Object.(rdf.Variable); ok {
		if c.Op == policy.OpIn {
			return []query.Expression{query.NewIn(v, c.Values)}, false, false
		}
		return []query.Expression{query.NewNotIn(v, c.Values)}, false, false
	}

	lit, ok := t.Object.(rdf.Literal)
	if !ok {
		return nil, false, false
	}
	lv := literalToValue(lit, c.ValueType)
	member := containsValue(c.Values, lv)
	_, parses := rdf.Compare(lv, lv)
	permitted := parses && member == (c.Op == policy.OpIn)
	if permitted {
		return nil, false, false
	}
	if predicateIsVariable(t) {
		return []query.Expression{query.NewNotExists(t)}, false, true
	}
	return nil, true, false
}

func comparisonFilter(op policy.Operator, v rdf.Variable, val rdf.NodeValue) query.Expression {
	switch op {
	case policy.OpEq:
		return query.NewEq(v, val)
	case policy.OpNe:
		return query.NewNe(v, val)
	case policy.OpLt:
		return query.NewLt(v, val)
	case policy.OpLe:
		return query.NewLe(v, val)
	case policy.OpGt:
		return query.NewGt(v, val)
	default:
		return query.NewGe(v, val)
	}
}

// evalOperator reports whether lv satisfies the permitted condition
// op(lv, values). An unparsable/incomparable pair is treated as a
// violation (never as a pass), matching the driver's conservative
// handling of malformed literal values.
func evalOperator(op policy.Operator, lv rdf.NodeValue, values []rdf.NodeValue) bool {
	switch op {
	case policy.OpEq, policy.OpNe:
		if _, ok := rdf.Compare(lv, values[0]); !ok {
			return false
		}
		return rdf.ValuesEqual(lv, values[0]) == (op == policy.OpEq)
	case policy.OpLt, policy.OpLe, policy.OpGt, policy.OpGe:
		cmp, ok := rdf.Compare(lv, values[0])
		if !ok {
			return false
		}
		switch op {
		case policy.OpLt:
			return cmp == rdf.Less
		case policy.OpLe:
			return cmp != rdf.Greater
		case policy.OpGt:
			return cmp == rdf.Greater
		default:
			return cmp != rdf.Less
		}
	default:
		return true
	}
}

func containsValue(set []rdf.NodeValue, v rdf.NodeValue) bool {
	for _, s := range set {
		if rdf.ValuesEqual(s, v) {
			return true
		}
	}
	return false
}

func literalToValue(lit rdf.Literal, t rdf.PrimType) rdf.NodeValue {
	return rdf.NodeValue{Lexical: lit.Lexical, Type: t}
}
