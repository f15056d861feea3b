package query

import (
	"fmt"

	"github.com/GMaffio99/SPARQLPolicyTool/rdf"
)

// Triple is an ordered (subject, predicate, object) pattern. Subject and
// predicate are IRI or Variable; object is IRI, Variable or Literal.
type Triple struct {
	Subject   rdf.NodeId
	Predicate rdf.NodeId
	Object    rdf.NodeId
}

// Vars returns the distinct variables occurring in t, in subject,
// predicate, object order.
func (t Triple) Vars() []rdf.Variable {
	var out []rdf.Variable
	seen := map[rdf.Variable]bool{}
	for _, n := range []rdf.NodeId{t.Subject, t.Predicate, t.Object} {
		if v, ok := n.(rdf.Variable); ok && !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

// Mentions reports whether n occurs anywhere in the triple, by structural
// equality (so a constant IRI matches regardless of which position it's
// bound to).
func (t Triple) Mentions(n rdf.NodeId) bool {
	return rdf.Equal(t.Subject, n) || rdf.Equal(t.Predicate, n) || rdf.Equal(t.Object, n)
}

// Equal reports structural equality between two triples.
func (t Triple) Equal(o Triple) bool {
	return rdf.Equal(t.Subject, o.Subject) &&
		rdf.Equal(t.Predicate, o.Predicate) &&
		rdf.Equal(t.Object, o.Object)
}

// IsTypeTriple reports whether t is an explicit `s rdf:type C` triple with
// C a ground IRI, returning that IRI.
func (t Triple) IsTypeTriple() (class rdf.IRI, ok bool) {
	p, isIRI := t.Predicate.(rdf.IRI)
	if !isIRI || p != rdf.IRI(RDFType) {
		return "", false
	}
	c, isIRI := t.Object.(rdf.IRI)
	if !isIRI {
		return "", false
	}
	return c, true
}

// RDFType is the rdf:type predicate IRI used throughout this module.
const RDFType = "http://www.w3.org/1999/02/22-rdf-syntax-ns#type"

// SubClassOf is the rdfs:subClassOf predicate IRI.
const SubClassOf = "http://www.w3.org/2000/01/rdf-schema#subClassOf"

// RDFSDomain and RDFSRange name the schema predicates the oracle probes.
const (
	RDFSDomain = "http://www.w3.org/2000/01/rdf-schema#domain"
	RDFSRange  = "http://www.w3.org/2000/01/rdf-schema#range"
)

func (t Triple) String() string {
	return fmt.Sprintf("%s %s %s", t.Subject, t.Predicate, t.Object)
}
