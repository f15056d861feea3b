package rewrite

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatsIngestClassifiesTranscriptLines(t *testing.T) {
	var s Stats

	s.ingest("removed triple ?s ?p ?o")
	s.ingest("added filter ?v < 10")
	s.ingest("merged filters on ?v into ?v = 20")
	s.ingest("contradiction merging filters on ?v; dropping triples with object ?v")
	s.ingest("no node constraints applied")

	assert.Equal(t, 1, s.TriplesDropped)
	assert.Equal(t, 2, s.FiltersAdded, "both \"added filter\" and \"merged filters\" lines count toward FiltersAdded")
	assert.Equal(t, 1, s.Contradictions)
	assert.Len(t, s.Transcript, 5, "every ingested line is kept verbatim, including lines matching no counter")
}

func TestStatsIngestIgnoresUnrecognizedPrefix(t *testing.T) {
	var s Stats
	s.ingest("rewrite starting")

	assert.Zero(t, s.TriplesDropped)
	assert.Zero(t, s.FiltersAdded)
	assert.Zero(t, s.Contradictions)
	assert.Equal(t, []string{"rewrite starting"}, s.Transcript)
}
