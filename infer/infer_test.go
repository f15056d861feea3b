package infer_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GMaffio99/SPARQLPolicyTool/infer"
	"github.com/GMaffio99/SPARQLPolicyTool/query"
	"github.com/GMaffio99/SPARQLPolicyTool/rdf"
	"github.com/GMaffio99/SPARQLPolicyTool/schema"
)

const (
	person = rdf.IRI("http://ex/Person")
	animal = rdf.IRI("http://ex/Animal")
	dog    = rdf.IRI("http://ex/Dog")
	knows  = rdf.IRI("http://ex/knows")
	likes  = rdf.IRI("http://ex/likes")
	alice  = rdf.IRI("http://ex/alice")
	rex    = rdf.IRI("http://ex/rex")
)

func testDataset() schema.Dataset {
	return schema.NewMemory([]query.Triple{
		{Subject: knows, Predicate: rdf.IRI(query.RDFSDomain), Object: person},
		{Subject: knows, Predicate: rdf.IRI(query.RDFSRange), Object: animal},
		{Subject: dog, Predicate: rdf.IRI(query.SubClassOf), Object: animal},
		{Subject: alice, Predicate: rdf.IRI(query.RDFType), Object: person},
		{Subject: rex, Predicate: rdf.IRI(query.RDFType), Object: dog},
		{Subject: alice, Predicate: knows, Object: rex},
		{Subject: alice, Predicate: likes, Object: rex},
	})
}

func combinerlessQuery(pattern ...query.Triple) *query.Query {
	q := query.New(noopCombiner{}, nil)
	for _, t := range pattern {
		q.AddTriple(t)
	}
	return q
}

type noopCombiner struct{}

func (noopCombiner) Combine(fs []query.Expression) (query.Expression, bool) { return fs[0], true }

func TestInferExplicitTypeShortCircuits(t *testing.T) {
	q := combinerlessQuery(
		query.Triple{Subject: rdf.Variable("s"), Predicate: rdf.IRI(query.RDFType), Object: person},
	)
	tb, err := infer.Infer(context.Background(), q, testDataset())
	require.NoError(t, err)
	assert.Equal(t, []rdf.IRI{person}, tb.TypesOfVar("s"))
}

func TestInferGroundProbeAndDomainRangeRestriction(t *testing.T) {
	q := combinerlessQuery(
		query.Triple{Subject: rdf.Variable("s"), Predicate: knows, Object: rdf.Variable("o")},
	)
	tb, err := infer.Infer(context.Background(), q, testDataset())
	require.NoError(t, err)

	assert.Contains(t, tb.TypesOfVar("s"), person)
	assert.Contains(t, tb.TypesOfVar("o"), dog, "range of knows is Animal, closed over subClassesOf to include Dog")
}

func TestInferConstTypes(t *testing.T) {
	q := combinerlessQuery(
		query.Triple{Subject: alice, Predicate: knows, Object: rdf.Variable("o")},
	)
	tb, err := infer.Infer(context.Background(), q, testDataset())
	require.NoError(t, err)
	assert.Contains(t, tb.TypesOfConst(alice), person)
}

func TestInferPredicateVariableFallback(t *testing.T) {
	q := combinerlessQuery(
		query.Triple{Subject: alice, Predicate: rdf.Variable("p"), Object: rex},
	)
	tb, err := infer.Infer(context.Background(), q, testDataset())
	require.NoError(t, err)

	preds := tb.PredicatesOfVar("p")
	assert.ElementsMatch(t, []rdf.IRI{knows, likes}, preds, "every predicate observed between alice and rex must be a candidate")
}

func TestInferNoMatchingFactsYieldsEmptySet(t *testing.T) {
	q := combinerlessQuery(
		query.Triple{Subject: rdf.Variable("s"), Predicate: rdf.IRI("http://ex/nonexistent"), Object: rdf.Variable("o")},
	)
	tb, err := infer.Infer(context.Background(), q, testDataset())
	require.NoError(t, err)
	assert.Empty(t, tb.TypesOfVar("s"))
}
