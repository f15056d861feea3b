package rewrite

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

// Stats summarizes one rewrite invocation: what each pass changed, for
// the diagnostic transcript and for the prometheus counters below.
type Stats struct {
	TriplesDropped int
	FiltersAdded   int
	Contradictions int

	NodePassChanged      bool
	PredicatePassChanged bool
	AttributePassChanged bool

	// Transcript holds every diagnostic line emitted during the rewrite,
	// in order, for the CLI adapter to print per §6.
	Transcript []string
}

var (
	triplesDroppedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "sparqlpolicytool",
		Subsystem: "rewrite",
		Name:      "triples_dropped_total",
		Help:      "Triples removed from a query pattern by any rewrite pass.",
	})
	filtersAddedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "sparqlpolicytool",
		Subsystem: "rewrite",
		Name:      "filters_added_total",
		Help:      "Filters added to a query pattern by any rewrite pass.",
	})
	contradictionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "sparqlpolicytool",
		Subsystem: "rewrite",
		Name:      "filter_contradictions_total",
		Help:      "Filter-merge contradictions recovered by dropping the affected triples.",
	})
)

func init() {
	prometheus.MustRegister(triplesDroppedTotal, filtersAddedTotal, contradictionsTotal)
}

// ingest folds one transcript line from the Query Model's mutation log
// into the running counters, so the driver never has to track triple/
// filter bookkeeping itself in more than one place.
func (s *Stats) ingest(line string) {
	s.Transcript = append(s.Transcript, line)
	switch {
	case strings.HasPrefix(line, "contradiction merging"):
		s.Contradictions++
		contradictionsTotal.Inc()
	case strings.HasPrefix(line, "removed triple"):
		s.TriplesDropped++
		triplesDroppedTotal.Inc()
	case strings.HasPrefix(line, "added filter"), strings.HasPrefix(line, "merged filters"):
		s.FiltersAdded++
		filtersAddedTotal.Inc()
	}
}
