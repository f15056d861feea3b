// Package schema provides the Schema Oracle: a thin, read-only view over
// an RDF dataset offering domain/range/subClassesOf probes plus the
// ground triple-pattern probe the Type Inferencer issues at construction.
// The dataset and its general query executor are external collaborators
// in the full system; this package defines the interface they must
// satisfy and ships a couple of small, non-optimizing implementations
// (in-memory and SQLite-backed) sufficient to exercise the rewriter
// end-to-end in tests and in the CLI fixture adapter.
package schema

import (
	"context"

	"github.com/GMaffio99/SPARQLPolicyTool/query"
	"github.com/GMaffio99/SPARQLPolicyTool/rdf"
)

// Binding is one solution row: a partial assignment of variables to
// nodes.
type Binding map[rdf.Variable]rdf.NodeId

// Oracle answers the three schema probes spec.md calls for. An empty
// result is meaningful (no declared constraint), never an error.
type Oracle interface {
	// Domain returns rdfs:domain classes declared for predicate p, closed
	// under subClassesOf.
	Domain(ctx context.Context, p rdf.IRI) ([]rdf.IRI, error)
	// Range returns rdfs:range classes declared for predicate p, closed
	// under subClassesOf.
	Range(ctx context.Context, p rdf.IRI) ([]rdf.IRI, error)
	// SubClassesOf returns the fixed-point closure of rdfs:subClassOf
	// edges rooted at the given classes (including the roots themselves).
	SubClassesOf(ctx context.Context, classes []rdf.IRI) ([]rdf.IRI, error)
}

// Dataset is an Oracle plus the minimal read-only triple-pattern probe
// the Type Inferencer needs for its ground-type and ground-predicate
// fallback. Select evaluates a basic graph pattern and returns every
// satisfying binding; a production deployment plugs in its own store and
// executor behind this interface.
type Dataset interface {
	Oracle
	Select(ctx context.Context, pattern []query.Triple) ([]Binding, error)
}
