package schema

import (
	"context"
	"fmt"

	"github.com/GMaffio99/SPARQLPolicyTool/query"
	"github.com/GMaffio99/SPARQLPolicyTool/rdf"
	"github.com/dgraph-io/ristretto/v2"
)

// CachedOracle fronts an Oracle with a ristretto cache, since domain,
// range and subClassesOf are read-only and the same predicate or class
// set is probed repeatedly both within one rewrite (once per candidate
// type, per triple) and across rewrites of similar queries.
type CachedOracle struct {
	inner Oracle
	cache *ristretto.Cache[string, []rdf.IRI]
}

// NewCachedOracle wraps inner with a bounded ristretto cache sized for
// roughly maxEntries distinct probe keys.
func NewCachedOracle(inner Oracle, maxEntries int64) (*CachedOracle, error) {
	cache, err := ristretto.NewCache(&ristretto.Config[string, []rdf.IRI]{
		NumCounters: maxEntries * 10,
		MaxCost:     maxEntries,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &CachedOracle{inner: inner, cache: cache}, nil
}

func (c *CachedOracle) Domain(ctx context.Context, p rdf.IRI) ([]rdf.IRI, error) {
	return c.cached(fmt.Sprintf("domain:%s", p), func() ([]rdf.IRI, error) {
		return c.inner.Domain(ctx, p)
	})
}

func (c *CachedOracle) Range(ctx context.Context, p rdf.IRI) ([]rdf.IRI, error) {
	return c.cached(fmt.Sprintf("range:%s", p), func() ([]rdf.IRI, error) {
		return c.inner.Range(ctx, p)
	})
}

func (c *CachedOracle) SubClassesOf(ctx context.Context, classes []rdf.IRI) ([]rdf.IRI, error) {
	key := "subclasses:"
	for _, cl := range classes {
		key += string(cl) + ","
	}
	return c.cached(key, func() ([]rdf.IRI, error) {
		return c.inner.SubClassesOf(ctx, classes)
	})
}

func (c *CachedOracle) cached(key string, miss func() ([]rdf.IRI, error)) ([]rdf.IRI, error) {
	if v, ok := c.cache.Get(key); ok {
		return v, nil
	}
	v, err := miss()
	if err != nil {
		return nil, err
	}
	c.cache.Set(key, v, 1)
	c.cache.Wait()
	return v, nil
}

// CachedDataset fronts a Dataset's Oracle probes with a CachedOracle,
// leaving Select (not read-only-repeatable the same way) to the
// underlying Dataset.
type CachedDataset struct {
	*CachedOracle
	inner Dataset
}

// NewCachedDataset wraps inner's domain/range/subClassesOf probes in a
// ristretto cache sized for roughly maxEntries distinct probe keys.
func NewCachedDataset(inner Dataset, maxEntries int64) (*CachedDataset, error) {
	oracle, err := NewCachedOracle(inner, maxEntries)
	if err != nil {
		return nil, err
	}
	return &CachedDataset{CachedOracle: oracle, inner: inner}, nil
}

func (c *CachedDataset) Select(ctx context.Context, pattern []query.Triple) ([]Binding, error) {
	return c.inner.Select(ctx, pattern)
}
