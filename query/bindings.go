package query

import "github.com/GMaffio99/SPARQLPolicyTool/rdf"

// TypeBindings is the Type Inferencer's output: candidate rdf:type sets
// for subject/object variables and constant IRIs, and candidate predicate
// IRIs for predicate variables. It is computed once and only ever shrunk
// by the Query Model's mutation cascade (I3).
type TypeBindings struct {
	VarTypes      map[rdf.Variable]map[rdf.IRI]bool
	ConstTypes    map[rdf.IRI]map[rdf.IRI]bool
	PredicateVars map[rdf.Variable]map[rdf.IRI]bool
}

func NewTypeBindings() *TypeBindings {
	return &TypeBindings{
		VarTypes:      map[rdf.Variable]map[rdf.IRI]bool{},
		ConstTypes:    map[rdf.IRI]map[rdf.IRI]bool{},
		PredicateVars: map[rdf.Variable]map[rdf.IRI]bool{},
	}
}

// TypesOfVar returns the candidate class set for a subject/object
// variable, as a slice for stable iteration by callers.
func (b *TypeBindings) TypesOfVar(v rdf.Variable) []rdf.IRI {
	return iriKeys(b.VarTypes[v])
}

// TypesOfConst returns the candidate class set for a constant subject or
// object IRI.
func (b *TypeBindings) TypesOfConst(u rdf.IRI) []rdf.IRI {
	return iriKeys(b.ConstTypes[u])
}

// PredicatesOfVar returns the candidate predicate IRI set for a predicate
// variable.
func (b *TypeBindings) PredicatesOfVar(v rdf.Variable) []rdf.IRI {
	return iriKeys(b.PredicateVars[v])
}

func iriKeys(m map[rdf.IRI]bool) []rdf.IRI {
	out := make([]rdf.IRI, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

// dropUnused removes any variable, constant or predicate-variable entry
// that no longer occurs anywhere in the surviving pattern, implementing
// I3 after a triple removal.
func (b *TypeBindings) dropUnused(stillPresent func(rdf.NodeId) bool, predicateVarStillPresent func(rdf.Variable) bool) {
	for v := range b.VarTypes {
		if !stillPresent(v) {
			delete(b.VarTypes, v)
		}
	}
	for u := range b.ConstTypes {
		if !stillPresent(u) {
			delete(b.ConstTypes, u)
		}
	}
	for p := range b.PredicateVars {
		if !predicateVarStillPresent(p) {
			delete(b.PredicateVars, p)
		}
	}
}
