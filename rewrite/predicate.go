package rewrite

import (
	"context"

	"github.com/GMaffio99/SPARQLPolicyTool/policy"
	"github.com/GMaffio99/SPARQLPolicyTool/query"
	"github.com/GMaffio99/SPARQLPolicyTool/rdf"
)

// runPredicatePass implements §4.6's predicate pass (edge denial).
func runPredicatePass(ctx context.Context, d *Driver, user string, q *query.Query) bool {
	changed := false
	for _, t := range snapshotTriples(q) {
		if !q.HasTriple(t) {
			continue
		}
		if predicatePassTriple(ctx, d, user, q, t) {
			changed = true
		}
	}
	return changed
}

func predicatePassTriple(ctx context.Context, d *Driver, user string, q *query.Query, t query.Triple) bool {
	sTypes := candidateTypes(q, t.Subject)
	oTypes := candidateTypes(q, t.Object)
	pCandidates := candidatePredicates(q, t.Predicate)

	total := 0
	notExists := 0
	var filters []query.Expression

	for _, pIRI := range pCandidates {
		dom, err := d.Dataset.Domain(ctx, pIRI)
		if err != nil {
			dom = nil // §7: schema probe failure treated as empty (no restriction)
		}
		rng, err := d.Dataset.Range(ctx, pIRI)
		if err != nil {
			rng = nil
		}
		for _, sT := range sTypes {
			if len(dom) > 0 && !containsIRI(dom, sT) {
				continue // skip: domain excludes this subject type
			}
			for _, oT := range oTypes {
				if len(rng) > 0 && !containsIRI(rng, oT) {
					continue // skip: range excludes this object type
				}
				total++
				matches := d.Store.PredicateConstraints(user, sT, pIRI, oT)
				d.decisionLog.PredicateLookup(user, sT, pIRI, oT, matches)
				for _, m := range matches {
					f, counts := buildPredicateFilter(t, sT, oT, m)
					if counts {
						notExists++
					}
					if f != nil {
						filters = append(filters, *f)
					}
				}
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

// buildPredicateFilter implements §4.6's four predicate-constraint
// branches for one (sT, pIRI, oT) combo's matching entry. counts reports
// whether this combo should count toward the notExists tally used to
// decide whether to drop the whole triple.
func buildPredicateFilter(t query.Triple, sT, oT rdf.IRI, c policy.PredicateConstraint) (filter *query.Expression, counts bool) {
	hasS := len(c.Subjects) > 0
	hasO := len(c.Objects) > 0

	switch {
	case !hasS && !hasO:
		f := query.NewNotExists(t)
		return &f, true
	case hasS && hasO:
		return combinedMembershipFilter(t, c.Subjects, c.Objects)
	case hasS:
		return singleSideFilter(t.Subject, sT, c.Subjects)
	default:
		return singleSideFilter(t.Object, oT, c.Objects)
	}
}

// singleSideFilter implements the subject-only/object-only branch: a
// variable gets a NOT IN filter; a constant inside the set makes the
// whole triple's existence conditional, expressed as NOT EXISTS{node
// rdf:type nodeType} and counted toward notExists.
func singleSideFilter(node rdf.NodeId, nodeType rdf.IRI, set []rdf.IRI) (*query.Expression, bool) {
	if v, ok := node.(rdf.Variable); ok {
		f := buildNotInExpr(v, set)
		return &f, false
	}
	if iri, ok := node.(rdf.IRI); ok && containsIRI(set, iri) {
		f := query.NewNotExists(query.Triple{
			Subject:   iri,
			Predicate: rdf.IRI(query.RDFType),
			Object:    nodeType,
		})
		return &f, true
	}
	return nil, false
}

// combinedMembershipFilter implements the subject+object branch:
// ¬((s ∈ S) ∧ (o ∈ O)). Variable sides become membership expressions;
// constant sides are resolved statically so the AND short-circuits
// without inventing a filter over a constant.
func combinedMembershipFilter(t query.Triple, subjects, objects []rdf.IRI) (*query.Expression, bool) {
	sExpr, sStatic, sVal := membershipExpr(t.Subject, subjects)
	oExpr, oStatic, oVal := membershipExpr(t.Object, objects)

	switch {
	case !sStatic && !oStatic:
		f := query.NewNot(query.NewAnd(*sExpr, *oExpr))
		return &f, false
	case !sStatic && oStatic:
		if !oVal {
			return nil, false
		}
		f := query.NewNot(*sExpr)
		return &f, false
	case sStatic && !oStatic:
		if !sVal {
			return nil, false
		}
		f := query.NewNot(*oExpr)
		return &f, false
	default:
		if sVal && oVal {
			f := query.NewNotExists(t)
			return &f, true
		}
		return nil, false
	}
}

// membershipExpr reports, for a node in a membership test against set:
// a filter expression if the node is a variable, or the statically
// resolved boolean if it is a constant IRI.
func membershipExpr(node rdf.NodeId, set []rdf.IRI) (expr *query.Expression, isStatic bool, staticVal bool) {
	if v, ok := node.(rdf.Variable); ok {
		e := buildInExpr(v, set)
		return &e, false, false
	}
	if iri, ok := node.(rdf.IRI); ok {
		return nil, true, containsIRI(set, iri)
	}
	return nil, true, false
}
