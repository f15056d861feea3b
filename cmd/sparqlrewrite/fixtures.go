package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"

	"github.com/GMaffio99/SPARQLPolicyTool/query"
	"github.com/GMaffio99/SPARQLPolicyTool/rdf"
	"github.com/GMaffio99/SPARQLPolicyTool/schema"
)

// This adapter's SPARQL parser/serializer and its RDF store loader are
// both out of scope for the rewrite engine proper, so the fixtures below
// read a JSON stand-in for each: a flat fact list for the dataset, and a
// basic-graph-pattern query shape for the input. Swapping either for a
// real Turtle parser or SPARQL frontend only touches this file.

type jsonNode struct {
	Kind     string `json:"kind"` // "iri" | "var" | "literal" | "blank"
	Value    string `json:"value"`
	Datatype string `json:"datatype,omitempty"`
	Lang     string `json:"lang,omitempty"`
}

func (n jsonNode) toNode() (rdf.NodeId, error) {
	switch n.Kind {
	case "iri":
		return rdf.IRI(n.Value), nil
	case "var":
		return rdf.Variable(n.Value), nil
	case "blank":
		return rdf.Blank(n.Value), nil
	case "literal":
		return rdf.Literal{Lexical: n.Value, Datatype: n.Datatype, Lang: n.Lang}, nil
	default:
		return nil, fmt.Errorf("unknown node kind %q", n.Kind)
	}
}

type jsonTriple struct {
	Subject   jsonNode `json:"subject"`
	Predicate jsonNode `json:"predicate"`
	Object    jsonNode `json:"object"`
}

func (t jsonTriple) toTriple() (query.Triple, error) {
	s, err := t.Subject.toNode()
	if err != nil {
		return query.Triple{}, err
	}
	p, err := t.Predicate.toNode()
	if err != nil {
		return query.Triple{}, err
	}
	o, err := t.Object.toNode()
	if err != nil {
		return query.Triple{}, err
	}
	return query.Triple{Subject: s, Predicate: p, Object: o}, nil
}

// loadDatasetFacts reads a flat JSON array of jsonTriple as ground facts.
func loadDatasetFacts(path string) ([]query.Triple, error) {
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading dataset file: %w", err)
	}
	var ts []jsonTriple
	if err := json.Unmarshal(raw, &ts); err != nil {
		return nil, fmt.Errorf("parsing dataset file: %w", err)
	}
	out := make([]query.Triple, 0, len(ts))
	for i, t := range ts {
		tr, err := t.toTriple()
		if err != nil {
			return nil, fmt.Errorf("dataset fact %d: %w", i, err)
		}
		out = append(out, tr)
	}
	return out, nil
}

type jsonProjectionItem struct {
	Var string `json:"var"`
}

type jsonOrderTerm struct {
	Var  string `json:"var"`
	Desc bool   `json:"desc"`
}

type jsonQuery struct {
	Projection []jsonProjectionItem `json:"projection"`
	Distinct   bool                 `json:"distinct"`
	Pattern    []jsonTriple          `json:"pattern"`
	GroupBy    []string             `json:"groupBy,omitempty"`
	OrderBy    []jsonOrderTerm      `json:"orderBy,omitempty"`
	Limit      *int                 `json:"limit,omitempty"`
	Offset     *int                 `json:"offset,omitempty"`
}

// loadQuery reads a basic-graph-pattern query fixture and builds a
// query.Query ready for Infer + Rewrite. combiner is the filter algebra
// merge strategy the Query Model delegates to.
func loadQuery(path string, combiner query.Combiner) (*query.Query, error) {
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading query file: %w", err)
	}
	var jq jsonQuery
	if err := json.Unmarshal(raw, &jq); err != nil {
		return nil, fmt.Errorf("parsing query file: %w", err)
	}

	q := query.New(combiner, nil)
	q.Distinct = jq.Distinct
	for _, p := range jq.Projection {
		q.Projection = append(q.Projection, query.ProjectionItem{Var: rdf.Variable(p.Var)})
	}
	for i, t := range jq.Pattern {
		tr, err := t.toTriple()
		if err != nil {
			return nil, fmt.Errorf("query pattern triple %d: %w", i, err)
		}
		q.AddTriple(tr)
	}
	for _, v := range jq.GroupBy {
		q.GroupBy = append(q.GroupBy, rdf.Variable(v))
	}
	for _, o := range jq.OrderBy {
		q.OrderBy = append(q.OrderBy, query.OrderTerm{Var: rdf.Variable(o.Var), Desc: o.Desc})
	}
	q.Limit = jq.Limit
	q.Offset = jq.Offset

	return q, nil
}

// buildDataset constructs the Dataset the rewriter probes, sourcing
// candidate rdf:type/domain/range information from cfg.
func buildDataset(ctx context.Context, cfg *Config) (schema.Dataset, error) {
	var ds schema.Dataset

	if cfg.SQLitePath != "" {
		sq, err := schema.OpenSQLiteDataset(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		if cfg.DatasetFile != "" {
			facts, err := loadDatasetFacts(cfg.DatasetFile)
			if err != nil {
				return nil, err
			}
			if err := sq.LoadFacts(ctx, facts); err != nil {
				return nil, err
			}
		}
		ds = sq
	} else {
		facts, err := loadDatasetFacts(cfg.DatasetFile)
		if err != nil {
			return nil, err
		}
		ds = schema.NewMemory(facts)
	}

	if cfg.OracleCacheSize > 0 {
		cached, err := schema.NewCachedDataset(ds, cfg.OracleCacheSize)
		if err != nil {
			return nil, fmt.Errorf("building cached oracle: %w", err)
		}
		return cached, nil
	}
	return ds, nil
}
