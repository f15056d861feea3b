package rewrite

import (
	"github.com/GMaffio99/SPARQLPolicyTool/policy"
	"github.com/GMaffio99/SPARQLPolicyTool/query"
	"github.com/GMaffio99/SPARQLPolicyTool/rdf"
)

// runNodePass implements §4.6's node pass (entity-class denial). It
// returns whether anything changed, for the "no X constraints applied"
// diagnostic line.
func runNodePass(d *Driver, user string, q *query.Query) bool {
	changed := false

	for _, v := range snapshotVars(q) {
		if nodePassVar(d, user, q, v) {
			changed = true
		}
	}
	for _, u := range snapshotConsts(q) {
		if nodePassConst(d, user, q, u) {
			changed = true
		}
	}

	return changed
}

func nodePassVar(d *Driver, user string, q *query.Query, v rdf.Variable) bool {
	types := q.Bindings.TypesOfVar(v)
	if len(types) == 0 {
		return false
	}

	changed := false
	allClassLevel := true
	for _, t := range types {
		matches := d.Store.NodeConstraints(user, t)
		d.decisionLog.NodeLookup(user, t, matches)
		if len(matches) == 0 {
			allClassLevel = false
			continue
		}
		if !matches[0].Scoped() {
			q.AddFilter(query.NewNotExists(query.Triple{
				Subject:   v,
				Predicate: rdf.IRI(query.RDFType),
				Object:    t,
			}))
			changed = true
			continue
		}
		allClassLevel = false
		nodes := unionNodeConstraintNodes(matches)
		q.AddFilter(query.NewNotIn(v, irisToValues(nodes)))
		changed = true
	}

	if changed && allClassLevel {
		q.RemoveTriplesMentioning(v)
	}
	return changed
}

func nodePassConst(d *Driver, user string, q *query.Query, u rdf.IRI) bool {
	types := q.Bindings.TypesOfConst(u)
	for _, t := range types {
		matches := d.Store.NodeConstraints(user, t)
		d.decisionLog.NodeLookup(user, t, matches)
		for _, m := range matches {
			if !m.Scoped() || containsIRI(m.Nodes, u) {
				q.RemoveTriplesMentioning(u)
				return true
			}
		}
	}
	return false
}

func unionNodeConstraintNodes(matches []policy.NodeConstraint) []rdf.IRI {
	seen := map[rdf.IRI]bool{}
	var out []rdf.IRI
	for _, m := range matches {
		for _, n := range m.Nodes {
			if !seen[n] {
				seen[n] = true
				out = append(out, n)
			}
		}
	}
	return out
}
