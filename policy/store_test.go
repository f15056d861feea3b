package policy_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GMaffio99/SPARQLPolicyTool/policy"
	"github.com/GMaffio99/SPARQLPolicyTool/rdf"
)

func writePolicyFile(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "policy.json")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

const fixturePolicy = `[
  {"constraint": "node", "user": "alice", "type": "http://ex/Secret"},
  {"constraint": "node", "user": "bob", "type": "http://ex/Person", "nodes": ["http://ex/carol"]},
  {"constraint": "predicate", "user": "alice", "subjectType": "http://ex/Person", "predicate": "http://ex/salary", "objectType": "http://ex/Money"},
  {"constraint": "attribute", "user": "alice", "subjectType": "http://ex/Person", "predicate": "http://ex/age", "op": "<", "values": [{"lexical": "18", "type": "integer"}]},
  {"constraint": "bogus", "user": "alice"},
  {"constraint": "node", "user": "alice"}
]`

func TestLoadSkipsMalformedEntriesAndWarns(t *testing.T) {
	path := writePolicyFile(t, fixturePolicy)
	log, hook := test.NewNullLogger()

	store, err := policy.Load(path, log)
	require.NoError(t, err)
	require.NotNil(t, store)

	assert.GreaterOrEqual(t, len(hook.Entries), 2, "both the unknown-kind entry and the entry missing a type must be logged and skipped")
	for _, e := range hook.Entries {
		assert.Equal(t, logrus.WarnLevel, e.Level)
	}
}

func TestLoadMissingFileReturnsError(t *testing.T) {
	_, err := policy.Load(filepath.Join(t.TempDir(), "missing.json"), nil)
	assert.Error(t, err)
}

func TestNodeConstraintsUnscopedIsAuthoritative(t *testing.T) {
	path := writePolicyFile(t, fixturePolicy)
	store, err := policy.Load(path, nil)
	require.NoError(t, err)

	matches := store.NodeConstraints("alice", rdf.IRI("http://ex/Secret"))
	require.Len(t, matches, 1)
	assert.False(t, matches[0].Scoped())
}

func TestNodeConstraintsScoped(t *testing.T) {
	path := writePolicyFile(t, fixturePolicy)
	store, err := policy.Load(path, nil)
	require.NoError(t, err)

	matches := store.NodeConstraints("bob", rdf.IRI("http://ex/Person"))
	require.Len(t, matches, 1)
	assert.True(t, matches[0].Scoped())
	assert.Equal(t, []rdf.IRI{"http://ex/carol"}, matches[0].Nodes)
}

func TestNodeConstraintsNoMatch(t *testing.T) {
	path := writePolicyFile(t, fixturePolicy)
	store, err := policy.Load(path, nil)
	require.NoError(t, err)

	assert.Empty(t, store.NodeConstraints("eve", rdf.IRI("http://ex/Secret")))
}

func TestPredicateConstraintsAbsoluteDeny(t *testing.T) {
	path := writePolicyFile(t, fixturePolicy)
	store, err := policy.Load(path, nil)
	require.NoError(t, err)

	matches := store.PredicateConstraints("alice", rdf.IRI("http://ex/Person"), rdf.IRI("http://ex/salary"), rdf.IRI("http://ex/Money"))
	require.Len(t, matches, 1)
	assert.False(t, matches[0].Scoped())
}

func TestAttributeConstraintsReturnsValueEntryWhenNoDeny(t *testing.T) {
	path := writePolicyFile(t, fixturePolicy)
	store, err := policy.Load(path, nil)
	require.NoError(t, err)

	matches := store.AttributeConstraints("alice", rdf.IRI("http://ex/Person"), rdf.IRI("http://ex/age"))
	require.Len(t, matches, 1)
	assert.Equal(t, policy.OpLt, matches[0].Op)
}

func TestAttributeConstraintsUnscopedDenyWinsOverValueEntries(t *testing.T) {
	mixed := `[
  {"constraint": "attribute", "user": "alice", "subjectType": "http://ex/Person", "predicate": "http://ex/salary", "op": "<", "values": [{"lexical": "1000", "type": "integer"}]},
  {"constraint": "attribute", "user": "alice", "subjectType": "http://ex/Person", "predicate": "http://ex/salary", "op": "X"}
]`
	path := writePolicyFile(t, mixed)
	store, err := policy.Load(path, nil)
	require.NoError(t, err)

	matches := store.AttributeConstraints("alice", rdf.IRI("http://ex/Person"), rdf.IRI("http://ex/salary"))
	require.Len(t, matches, 1)
	assert.Equal(t, policy.OpDeny, matches[0].Op)
	assert.False(t, matches[0].Scoped())
}

func TestAttributeConstraintsScopedDenyWinsOverValueEntries(t *testing.T) {
	mixed := `[
  {"constraint": "attribute", "user": "alice", "subjectType": "http://ex/Person", "predicate": "http://ex/salary", "op": "<", "values": [{"lexical": "1000", "type": "integer"}]},
  {"constraint": "attribute", "user": "alice", "subjectType": "http://ex/Person", "predicate": "http://ex/salary", "op": "X", "subjects": ["http://ex/carol"]}
]`
	path := writePolicyFile(t, mixed)
	store, err := policy.Load(path, nil)
	require.NoError(t, err)

	matches := store.AttributeConstraints("alice", rdf.IRI("http://ex/Person"), rdf.IRI("http://ex/salary"))
	require.Len(t, matches, 1)
	assert.Equal(t, policy.OpDeny, matches[0].Op)
	assert.True(t, matches[0].Scoped())
}

func TestUnknownOperatorIsRejected(t *testing.T) {
	bad := `[{"constraint": "attribute", "user": "alice", "subjectType": "http://ex/Person", "predicate": "http://ex/age", "op": "~~"}]`
	path := writePolicyFile(t, bad)
	store, err := policy.Load(path, nil)
	require.NoError(t, err)
	assert.Empty(t, store.AttributeConstraints("alice", rdf.IRI("http://ex/Person"), rdf.IRI("http://ex/age")))
}
