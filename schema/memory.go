package schema

import (
	"context"

	"github.com/GMaffio99/SPARQLPolicyTool/query"
	"github.com/GMaffio99/SPARQLPolicyTool/rdf"
)

// Memory is an in-memory Dataset backed by a flat slice of ground facts,
// used by default and by tests. It makes no attempt at indexing or join
// ordering — a production deployment substitutes a real store behind the
// Dataset interface.
type Memory struct {
	facts []query.Triple
}

// NewMemory builds a Memory dataset from a fixed set of ground facts,
// which should include both instance data and the rdfs:domain/range/
// subClassOf schema triples the Oracle probes read.
func NewMemory(facts []query.Triple) *Memory {
	return &Memory{facts: append([]query.Triple(nil), facts...)}
}

func (m *Memory) Domain(_ context.Context, p rdf.IRI) ([]rdf.IRI, error) {
	direct := m.objectsOf(p, query.RDFSDomain)
	return m.closeOverSubClasses(direct), nil
}

func (m *Memory) Range(_ context.Context, p rdf.IRI) ([]rdf.IRI, error) {
	direct := m.objectsOf(p, query.RDFSRange)
	return m.closeOverSubClasses(direct), nil
}

func (m *Memory) objectsOf(subject rdf.IRI, predicate rdf.IRI) []rdf.IRI {
	var out []rdf.IRI
	for _, f := range m.facts {
		s, okS := f.Subject.(rdf.IRI)
		p, okP := f.Predicate.(rdf.IRI)
		o, okO := f.Object.(rdf.IRI)
		if okS && okP && okO && s == subject && p == predicate {
			out = append(out, o)
		}
	}
	return out
}

func (m *Memory) SubClassesOf(_ context.Context, classes []rdf.IRI) ([]rdf.IRI, error) {
	return m.closeOverSubClasses(classes), nil
}

// closeOverSubClasses computes the fixed-point closure of rdfs:subClassOf
// edges (x rdfs:subClassOf s) rooted at the given classes.
func (m *Memory) closeOverSubClasses(roots []rdf.IRI) []rdf.IRI {
	seen := map[rdf.IRI]bool{}
	for _, r := range roots {
		seen[r] = true
	}
	changed := true
	for changed {
		changed = false
		for _, f := range m.facts {
			p, okP := f.Predicate.(rdf.IRI)
			if !okP || p != query.SubClassOf {
				continue
			}
			sub, okS := f.Subject.(rdf.IRI)
			sup, okO := f.Object.(rdf.IRI)
			if !okS || !okO {
				continue
			}
			if seen[sup] && !seen[sub] {
				seen[sub] = true
				changed = true
			}
		}
	}
	out := make([]rdf.IRI, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	return out
}

// Select performs a naive, unindexed nested-loop join of pattern against
// the fact base. It is a reference implementation only: the real
// executor a production system plugs in behind Dataset is out of scope
// here.
func (m *Memory) Select(_ context.Context, pattern []query.Triple) ([]Binding, error) {
	bindings := []Binding{{}}
	for _, t := range pattern {
		var next []Binding
		for _, b := range bindings {
			for _, f := range m.facts {
				nb, ok := unify(b, t, f)
				if ok {
					next = append(next, nb)
				}
			}
		}
		bindings = next
		if len(bindings) == 0 {
			return nil, nil
		}
	}
	return bindings, nil
}

func unify(b Binding, pattern, fact query.Triple) (Binding, bool) {
	nb := make(Binding, len(b)+3)
	for k, v := range b {
		nb[k] = v
	}
	for _, pair := range [][2]rdf.NodeId{
		{pattern.Subject, fact.Subject},
		{pattern.Predicate, fact.Predicate},
		{pattern.Object, fact.Object},
	} {
		pat, fa := pair[0], pair[1]
		if v, ok := pat.(rdf.Variable); ok {
			if bound, already := nb[v]; already {
				if !rdf.Equal(bound, fa) {
					return nil, false
				}
			} else {
				nb[v] = fa
			}
			continue
		}
		if !rdf.Equal(pat, fa) {
			return nil, false
		}
	}
	return nb, true
}
