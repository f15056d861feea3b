package rewrite

import (
	"github.com/GMaffio99/SPARQLPolicyTool/query"
	"github.com/GMaffio99/SPARQLPolicyTool/rdf"
)

// snapshotVars and snapshotConsts materialize the variable/constant set a
// pass iterates over before that pass starts mutating the query, since
// TypeBindings shrinks as triples are dropped mid-pass.
func snapshotVars(q *query.Query) []rdf.Variable {
	out := make([]rdf.Variable, 0, len(q.Bindings.VarTypes))
	for v := range q.Bindings.VarTypes {
		out = append(out, v)
	}
	return out
}

func snapshotConsts(q *query.Query) []rdf.IRI {
	out := make([]rdf.IRI, 0, len(q.Bindings.ConstTypes))
	for u := range q.Bindings.ConstTypes {
		out = append(out, u)
	}
	return out
}

func snapshotTriples(q *query.Query) []query.Triple {
	return append([]query.Triple(nil), q.Pattern...)
}

// candidateTypes returns the type candidates for a subject/object node:
// TypesOfVar for a variable, TypesOfConst for a constant IRI, and nothing
// for a literal (literals have no rdf:type class; the attribute pass
// handles literal-valued edges).
func candidateTypes(q *query.Query, n rdf.NodeId) []rdf.IRI {
	switch x := n.(type) {
	case rdf.Variable:
		return q.Bindings.TypesOfVar(x)
	case rdf.IRI:
		return q.Bindings.TypesOfConst(x)
	default:
		return nil
	}
}

// candidatePredicates returns the predicate-IRI candidates for a
// predicate position: PredicatesOfVar for a variable, the singleton set
// for a ground IRI.
func candidatePredicates(q *query.Query, n rdf.NodeId) []rdf.IRI {
	switch x := n.(type) {
	case rdf.Variable:
		return q.Bindings.PredicatesOfVar(x)
	case rdf.IRI:
		return []rdf.IRI{x}
	default:
		return nil
	}
}

func containsIRI(set []rdf.IRI, x rdf.IRI) bool {
	for _, s := range set {
		if s == x {
			return true
		}
	}
	return false
}

func irisToValues(set []rdf.IRI) []rdf.NodeValue {
	out := make([]rdf.NodeValue, len(set))
	for i, x := range set {
		out[i] = rdf.NodeValue{Lexical: string(x), Type: rdf.TypeIRI}
	}
	return out
}

// buildInExpr and buildNotInExpr apply the general "singleton collapses
// to Eq/Ne" rule when constructing a membership filter.
func buildInExpr(v rdf.Variable, set []rdf.IRI) query.Expression {
	vals := irisToValues(set)
	if len(vals) == 1 {
		return query.NewEq(v, vals[0])
	}
	return query.NewIn(v, vals)
}

func buildNotInExpr(v rdf.Variable, set []rdf.IRI) query.Expression {
	vals := irisToValues(set)
	if len(vals) == 1 {
		return query.NewNe(v, vals[0])
	}
	return query.NewNotIn(v, vals)
}
