package policy_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GMaffio99/SPARQLPolicyTool/policy"
	"github.com/GMaffio99/SPARQLPolicyTool/rdf"
)

func TestLoadCachedMatchesUncachedResult(t *testing.T) {
	policyPath := writePolicyFile(t, fixturePolicy)
	dbPath := filepath.Join(t.TempDir(), "snapshots.bolt")

	store, err := policy.LoadCached(policyPath, dbPath, nil)
	require.NoError(t, err)

	matches := store.NodeConstraints("alice", rdf.IRI("http://ex/Secret"))
	require.Len(t, matches, 1)
}

func TestLoadCachedSecondCallReusesSnapshot(t *testing.T) {
	policyPath := writePolicyFile(t, fixturePolicy)
	dbPath := filepath.Join(t.TempDir(), "snapshots.bolt")

	_, err := policy.LoadCached(policyPath, dbPath, nil)
	require.NoError(t, err)

	// Replace the on-disk policy file's content without changing the hash
	// key path used by the second LoadCached call below would be irrelevant
	// here since the key is derived from content, not path; instead verify
	// the cache file itself now exists and a second load against the same
	// content still succeeds and agrees.
	info, err := os.Stat(dbPath)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0), "LoadCached must persist a snapshot to dbPath")

	store2, err := policy.LoadCached(policyPath, dbPath, nil)
	require.NoError(t, err)
	assert.Len(t, store2.NodeConstraints("bob", rdf.IRI("http://ex/Person")), 1)
}
