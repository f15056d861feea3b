// Package infer implements the Type Inferencer: it computes the
// TypeBindings a rewrite pass needs before it can match policy entries,
// which are keyed by class and predicate IRI rather than by the
// variables a query actually names.
package infer

import (
	"context"
	"fmt"

	"github.com/GMaffio99/SPARQLPolicyTool/query"
	"github.com/GMaffio99/SPARQLPolicyTool/rdf"
	"github.com/GMaffio99/SPARQLPolicyTool/schema"
)

// Infer computes candidate rdf:type sets for every subject/object
// variable and constant IRI in q's pattern, and candidate predicate IRI
// sets for every predicate variable, against ds.
func Infer(ctx context.Context, q *query.Query, ds schema.Dataset) (*query.TypeBindings, error) {
	tb := query.NewTypeBindings()

	vars, consts := entityNodes(q.Pattern)

	for _, v := range vars {
		types, err := inferVarTypes(ctx, q, ds, v)
		if err != nil {
			return nil, fmt.Errorf("inferring types of ?%s: %w", v, err)
		}
		tb.VarTypes[v] = toSet(types)
	}
	for _, u := range consts {
		types, err := inferConstTypes(ctx, q, ds, u)
		if err != nil {
			return nil, fmt.Errorf("inferring types of <%s>: %w", u, err)
		}
		tb.ConstTypes[u] = toSet(types)
	}
	for _, p := range predicateVars(q.Pattern) {
		preds, err := inferPredicateCandidates(ctx, q, ds, p)
		if err != nil {
			return nil, fmt.Errorf("inferring predicates of ?%s: %w", p, err)
		}
		tb.PredicateVars[p] = toSet(preds)
	}

	return tb, nil
}

// entityNodes collects the distinct variables and constant IRIs occurring
// in subject or object position anywhere in pattern.
func entityNodes(pattern []query.Triple) ([]rdf.Variable, []rdf.IRI) {
	seenVar := map[rdf.Variable]bool{}
	seenConst := map[rdf.IRI]bool{}
	var vars []rdf.Variable
	var consts []rdf.IRI
	for _, t := range pattern {
		for _, n := range []rdf.NodeId{t.Subject, t.Object} {
			switch x := n.(type) {
			case rdf.Variable:
				if !seenVar[x] {
					seenVar[x] = true
					vars = append(vars, x)
				}
			case rdf.IRI:
				if !seenConst[x] {
					seenConst[x] = true
					consts = append(consts, x)
				}
			}
		}
	}
	return vars, consts
}

// predicateVars collects the distinct variables occurring in predicate
// position anywhere in pattern.
func predicateVars(pattern []query.Triple) []rdf.Variable {
	seen := map[rdf.Variable]bool{}
	var out []rdf.Variable
	for _, t := range pattern {
		if v, ok := t.Predicate.(rdf.Variable); ok && !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

// explicitType finds a triple `node rdf:type C` (C a ground IRI) in
// pattern with the given subject node, per the spec's step 1 short-circuit.
func explicitType(pattern []query.Triple, node rdf.NodeId) (rdf.IRI, bool) {
	for _, t := range pattern {
		if !rdf.Equal(t.Subject, node) {
			continue
		}
		if c, ok := t.IsTypeTriple(); ok {
			return c, true
		}
	}
	return "", false
}

func inferVarTypes(ctx context.Context, q *query.Query, ds schema.Dataset, v rdf.Variable) ([]rdf.IRI, error) {
	if c, ok := explicitType(q.Pattern, v); ok {
		return []rdf.IRI{c}, nil
	}
	return probeAndRestrict(ctx, q, ds, v)
}

func inferConstTypes(ctx context.Context, q *query.Query, ds schema.Dataset, u rdf.IRI) ([]rdf.IRI, error) {
	if c, ok := explicitType(q.Pattern, u); ok {
		return []rdf.IRI{c}, nil
	}
	return probeAndRestrict(ctx, q, ds, u)
}

// probeAndRestrict implements steps 2-3 of §4.3: it augments the pattern
// with `node rdf:type ?freshVar`, selects the distinct bindings of
// freshVar, then restricts that set by the domain/range of every ground
// predicate mentioning node.
func probeAndRestrict(ctx context.Context, q *query.Query, ds schema.Dataset, node rdf.NodeId) ([]rdf.IRI, error) {
	fresh := freshVariable(q.Pattern)
	augmented := append(append([]query.Triple(nil), q.Pattern...), query.Triple{
		Subject:   node,
		Predicate: rdf.IRI(query.RDFType),
		Object:    fresh,
	})

	rows, err := ds.Select(ctx, augmented)
	if err != nil {
		return nil, err
	}
	r := distinctIRIs(rows, fresh)

	for _, t := range q.Pattern {
		p, isIRI := t.Predicate.(rdf.IRI)
		if !isIRI {
			continue
		}
		switch {
		case rdf.Equal(t.Subject, node):
			dom, err := ds.Domain(ctx, p)
			if err != nil {
				return nil, err
			}
			if len(dom) > 0 {
				r = intersect(r, dom)
			}
		case rdf.Equal(t.Object, node):
			rng, err := ds.Range(ctx, p)
			if err != nil {
				return nil, err
			}
			if len(rng) > 0 {
				r = intersect(r, rng)
			}
		}
	}
	return r, nil
}

// inferPredicateCandidates implements the predicate-variable case of
// §4.3. p already occupies a predicate position in q.Pattern, so its
// distinct bound values across every join-consistent solution of the
// pattern are exactly the candidates restricted by the subject/object
// type structure already encoded in the joins — no augmentation needed.
func inferPredicateCandidates(ctx context.Context, q *query.Query, ds schema.Dataset, p rdf.Variable) ([]rdf.IRI, error) {
	rows, err := ds.Select(ctx, q.Pattern)
	if err != nil {
		return nil, err
	}
	return distinctIRIs(rows, p), nil
}

func distinctIRIs(rows []schema.Binding, v rdf.Variable) []rdf.IRI {
	seen := map[rdf.IRI]bool{}
	var out []rdf.IRI
	for _, b := range rows {
		n, ok := b[v]
		if !ok {
			continue
		}
		iri, ok := n.(rdf.IRI)
		if !ok || seen[iri] {
			continue
		}
		seen[iri] = true
		out = append(out, iri)
	}
	return out
}

func intersect(a, b []rdf.IRI) []rdf.IRI {
	bSet := map[rdf.IRI]bool{}
	for _, x := range b {
		bSet[x] = true
	}
	var out []rdf.IRI
	for _, x := range a {
		if bSet[x] {
			out = append(out, x)
		}
	}
	return out
}

func toSet(vs []rdf.IRI) map[rdf.IRI]bool {
	m := make(map[rdf.IRI]bool, len(vs))
	for _, v := range vs {
		m[v] = true
	}
	return m
}

// freshVariable returns a variable name not already occurring anywhere in
// pattern, for the synthetic rdf:type probe triple.
func freshVariable(pattern []query.Triple) rdf.Variable {
	used := map[rdf.Variable]bool{}
	for _, t := range pattern {
		for _, v := range t.Vars() {
			used[v] = true
		}
	}
	for i := 0; ; i++ {
		cand := rdf.Variable(fmt.Sprintf("__inferredType%d", i))
		if !used[cand] {
			return cand
		}
	}
}
