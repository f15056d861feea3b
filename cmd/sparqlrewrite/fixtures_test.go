package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GMaffio99/SPARQLPolicyTool/query"
	"github.com/GMaffio99/SPARQLPolicyTool/rdf"
)

func writeFixture(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixture.json")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestJSONNodeToNode(t *testing.T) {
	cases := []struct {
		name string
		in   jsonNode
		want rdf.NodeId
	}{
		{"iri", jsonNode{Kind: "iri", Value: "http://ex/alice"}, rdf.IRI("http://ex/alice")},
		{"var", jsonNode{Kind: "var", Value: "x"}, rdf.Variable("x")},
		{"blank", jsonNode{Kind: "blank", Value: "b0"}, rdf.Blank("b0")},
		{"literal", jsonNode{Kind: "literal", Value: "30", Datatype: "integer"}, rdf.Literal{Lexical: "30", Datatype: "integer"}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := c.in.toNode()
			require.NoError(t, err)
			assert.Equal(t, c.want, got)
		})
	}
}

func TestJSONNodeToNodeUnknownKind(t *testing.T) {
	_, err := jsonNode{Kind: "urn"}.toNode()
	assert.Error(t, err)
}

func TestLoadDatasetFacts(t *testing.T) {
	path := writeFixture(t, `[
		{"subject": {"kind": "iri", "value": "http://ex/alice"},
		 "predicate": {"kind": "iri", "value": "http://ex/name"},
		 "object": {"kind": "literal", "value": "Alice"}}
	]`)

	facts, err := loadDatasetFacts(path)
	require.NoError(t, err)
	require.Len(t, facts, 1)
	assert.Equal(t, rdf.IRI("http://ex/alice"), facts[0].Subject)
	assert.Equal(t, rdf.Literal{Lexical: "Alice"}, facts[0].Object)
}

func TestLoadDatasetFactsRejectsMalformedNode(t *testing.T) {
	path := writeFixture(t, `[
		{"subject": {"kind": "nonsense", "value": "x"},
		 "predicate": {"kind": "iri", "value": "http://ex/name"},
		 "object": {"kind": "literal", "value": "Alice"}}
	]`)

	_, err := loadDatasetFacts(path)
	assert.Error(t, err)
}

func TestLoadDatasetFactsMissingFile(t *testing.T) {
	_, err := loadDatasetFacts(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

type echoCombiner struct{}

func (echoCombiner) Combine(fs []query.Expression) (query.Expression, bool) { return fs[0], true }

func TestLoadQueryBuildsPatternAndProjection(t *testing.T) {
	limit := 5
	path := writeFixture(t, `{
		"projection": [{"var": "n"}],
		"distinct": true,
		"pattern": [
			{"subject": {"kind": "var", "value": "s"},
			 "predicate": {"kind": "iri", "value": "http://ex/name"},
			 "object": {"kind": "var", "value": "n"}}
		],
		"orderBy": [{"var": "n", "desc": true}],
		"limit": 5
	}`)

	q, err := loadQuery(path, echoCombiner{})
	require.NoError(t, err)

	assert.True(t, q.Distinct)
	require.Len(t, q.Projection, 1)
	assert.Equal(t, rdf.Variable("n"), q.Projection[0].Var)
	require.Len(t, q.Pattern, 1)
	assert.Equal(t, rdf.Variable("s"), q.Pattern[0].Subject)
	require.Len(t, q.OrderBy, 1)
	assert.True(t, q.OrderBy[0].Desc)
	require.NotNil(t, q.Limit)
	assert.Equal(t, limit, *q.Limit)
}

func TestLoadQueryRejectsMalformedTriple(t *testing.T) {
	path := writeFixture(t, `{
		"pattern": [
			{"subject": {"kind": "bogus", "value": "s"},
			 "predicate": {"kind": "iri", "value": "http://ex/name"},
			 "object": {"kind": "var", "value": "n"}}
		]
	}`)

	_, err := loadQuery(path, echoCombiner{})
	assert.Error(t, err)
}

func TestBuildDatasetDefaultsToMemory(t *testing.T) {
	path := writeFixture(t, `[]`)
	ds, err := buildDataset(nil, &Config{DatasetFile: path})
	require.NoError(t, err)
	assert.NotNil(t, ds)
}
