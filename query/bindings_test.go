package query_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/GMaffio99/SPARQLPolicyTool/query"
	"github.com/GMaffio99/SPARQLPolicyTool/rdf"
)

func TestTypeBindingsAccessors(t *testing.T) {
	tb := query.NewTypeBindings()
	tb.VarTypes["x"] = map[rdf.IRI]bool{"Person": true}
	tb.ConstTypes["http://ex/alice"] = map[rdf.IRI]bool{"Person": true}
	tb.PredicateVars["p"] = map[rdf.IRI]bool{"http://ex/knows": true}

	assert.Equal(t, []rdf.IRI{"Person"}, tb.TypesOfVar("x"))
	assert.Equal(t, []rdf.IRI{"Person"}, tb.TypesOfConst("http://ex/alice"))
	assert.Equal(t, []rdf.IRI{"http://ex/knows"}, tb.PredicatesOfVar("p"))

	assert.Empty(t, tb.TypesOfVar("unknown"))
}

// dropUnused (I3) is exercised through Query.RemoveTriple's cascade in
// TestRemoveTripleCascadesProjectionAndFilters, since it is unexported and
// only ever invoked internally by the Query Model.
