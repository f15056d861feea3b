package policy_test

import (
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GMaffio99/SPARQLPolicyTool/policy"
	"github.com/GMaffio99/SPARQLPolicyTool/rdf"
)

func TestDecisionLogNodeLookup(t *testing.T) {
	log, hook := test.NewNullLogger()
	d := policy.NewDecisionLog(log)

	d.NodeLookup("alice", rdf.IRI("http://ex/Secret"), []policy.NodeConstraint{{User: "alice"}})

	require.Len(t, hook.Entries, 1)
	e := hook.LastEntry()
	assert.Equal(t, "policy", e.Data["system"])
	assert.Equal(t, "node_lookup", e.Data["action"])
	assert.Equal(t, 1, e.Data["count"])
}

func TestDecisionLogPredicateAndAttributeLookup(t *testing.T) {
	log, hook := test.NewNullLogger()
	d := policy.NewDecisionLog(log)

	d.PredicateLookup("alice", rdf.IRI("Person"), rdf.IRI("salary"), rdf.IRI("Money"), nil)
	d.AttributeLookup("alice", rdf.IRI("Person"), rdf.IRI("age"), nil)

	require.Len(t, hook.Entries, 2)
	assert.Equal(t, "predicate_lookup", hook.Entries[0].Data["action"])
	assert.Equal(t, "attribute_lookup", hook.Entries[1].Data["action"])
	assert.Equal(t, 0, hook.Entries[0].Data["count"])
}
