package query

import (
	"fmt"
	"strings"

	"github.com/GMaffio99/SPARQLPolicyTool/rdf"
)

// ProjectionItem is one SELECT item: a variable, optionally computed by
// an expression (e.g. `(expr AS ?v)`). Expr is nil for a plain `?v`.
type ProjectionItem struct {
	Var  rdf.Variable
	Expr *Expression
}

// OrderTerm is one ORDER BY item.
type OrderTerm struct {
	Var  rdf.Variable
	Desc bool
}

// Combiner merges a list of simple single-variable filters into one,
// or reports a contradiction. The Query Model delegates to it rather
// than importing the filter algebra directly, keeping this package free
// of a dependency on the concrete merge strategy.
type Combiner interface {
	Combine(filters []Expression) (merged Expression, ok bool)
}

// Query is the mutable representation of a query under rewrite.
type Query struct {
	Projection []ProjectionItem
	Distinct   bool
	Pattern    []Triple
	Filters    []Expression
	GroupBy    []rdf.Variable
	Having     *Expression
	OrderBy    []OrderTerm
	Limit      *int
	Offset     *int

	Bindings *TypeBindings
	combiner Combiner

	// Log, when set, receives one line per structural mutation (triple
	// dropped, filter added/removed) for the diagnostic transcript.
	Log func(string)
}

// New creates a Query Model ready for rewriting. combiner is typically
// the filter algebra's Merger; bindings is the Type Inferencer's output.
func New(combiner Combiner, bindings *TypeBindings) *Query {
	if bindings == nil {
		bindings = NewTypeBindings()
	}
	return &Query{Bindings: bindings, combiner: combiner}
}

// Clone makes a deep-enough copy to serve as the mutable working copy of
// a frozen input query (spec's "lifecycle": the input is frozen, a
// working copy is progressively narrowed).
func (q *Query) Clone() *Query {
	cp := &Query{
		Projection: append([]ProjectionItem(nil), q.Projection...),
		Distinct:   q.Distinct,
		Pattern:    append([]Triple(nil), q.Pattern...),
		Filters:    append([]Expression(nil), q.Filters...),
		GroupBy:    append([]rdf.Variable(nil), q.GroupBy...),
		OrderBy:    append([]OrderTerm(nil), q.OrderBy...),
		Limit:      q.Limit,
		Offset:     q.Offset,
		Bindings:   q.Bindings,
		combiner:   q.combiner,
		Log:        q.Log,
	}
	if q.Having != nil {
		h := *q.Having
		cp.Having = &h
	}
	return cp
}

func (q *Query) logf(format string, args ...interface{}) {
	if q.Log != nil {
		q.Log(fmt.Sprintf(format, args...))
	}
}

// HasTriple reports whether t already occurs in the pattern (I4).
func (q *Query) HasTriple(t Triple) bool {
	for _, x := range q.Pattern {
		if x.Equal(t) {
			return true
		}
	}
	return false
}

// AddTriple appends t if not already present.
func (q *Query) AddTriple(t Triple) {
	if q.HasTriple(t) {
		return
	}
	q.Pattern = append(q.Pattern, t)
}

// TriplesByVar returns every triple mentioning v.
func (q *Query) TriplesByVar(v rdf.Variable) []Triple {
	return q.TriplesByNode(v)
}

// TriplesByNode returns every triple mentioning node n (variable or
// constant).
func (q *Query) TriplesByNode(n rdf.NodeId) []Triple {
	var out []Triple
	for _, t := range q.Pattern {
		if t.Mentions(n) {
			out = append(out, t)
		}
	}
	return out
}

// stillMentioned reports whether n occurs in any remaining triple.
func (q *Query) stillMentioned(n rdf.NodeId) bool {
	for _, t := range q.Pattern {
		if t.Mentions(n) {
			return true
		}
	}
	return false
}

// predicateVarStillPresent reports whether predicate variable p still
// occurs as a predicate position in the remaining pattern.
func (q *Query) predicateVarStillPresent(p rdf.Variable) bool {
	for _, t := range q.Pattern {
		if pv, ok := t.Predicate.(rdf.Variable); ok && pv == p {
			return true
		}
	}
	return false
}

// RemoveTriple drops t and cascades: prunes dangling projected variables,
// shrinks TypeBindings, and removes filters whose free variables are no
// longer bound anywhere (I1, I2, I3).
func (q *Query) RemoveTriple(t Triple) {
	kept := q.Pattern[:0:0]
	removed := false
	for _, x := range q.Pattern {
		if !removed && x.Equal(t) {
			removed = true
			continue
		}
		kept = append(kept, x)
	}
	if !removed {
		return
	}
	q.Pattern = kept
	q.logf("removed triple %s", t)

	// I1: prune projection items that reference a variable no longer in
	// any remaining triple.
	var keptProj []ProjectionItem
	for _, p := range q.Projection {
		if q.stillMentioned(p.Var) {
			keptProj = append(keptProj, p)
			continue
		}
		if p.Expr != nil {
			stillUsed := false
			for _, fv := range p.Expr.FreeVars() {
				if q.stillMentioned(fv) {
					stillUsed = true
					break
				}
			}
			if stillUsed {
				keptProj = append(keptProj, p)
				continue
			}
		}
	}
	q.Projection = keptProj

	// I3: shrink TypeBindings.
	q.Bindings.dropUnused(q.stillMentioned, q.predicateVarStillPresent)

	// I2: drop filters whose free variables are no longer all bound.
	var keptFilters []Expression
	for _, f := range q.Filters {
		dangling := false
		for _, fv := range f.FreeVars() {
			if !q.stillMentioned(fv) {
				dangling = true
				break
			}
		}
		if dangling {
			q.logf("removed filter %s (dangling after triple removal)", f)
			continue
		}
		keptFilters = append(keptFilters, f)
	}
	q.Filters = keptFilters
}

// RemoveTriplesMentioning drops every remaining triple mentioning n,
// cascading each removal.
func (q *Query) RemoveTriplesMentioning(n rdf.NodeId) {
	for {
		ts := q.TriplesByNode(n)
		if len(ts) == 0 {
			return
		}
		q.RemoveTriple(ts[0])
	}
}

// HasFilter reports structural membership (I4), with the NotExists
// special case delegated to Expression.Equal.
func (q *Query) HasFilter(f Expression) bool {
	for _, x := range q.Filters {
		if x.Equal(f) {
			return true
		}
	}
	return false
}

// RemoveFilter removes the first structurally-equal filter, if present.
func (q *Query) RemoveFilter(f Expression) {
	for i, x := range q.Filters {
		if x.Equal(f) {
			q.Filters = append(q.Filters[:i], q.Filters[i+1:]...)
			q.logf("removed filter %s", f)
			return
		}
	}
}

// isMergeCandidate reports whether an existing filter in q.Filters is
// eligible to be folded with a new single-variable filter on v: it must
// be a simple comparison on exactly v. The separate check that v is not
// the object of a triple whose predicate is a variable is made by
// variableDeniesMerge, which AddFilter calls before any merge.
func (q *Query) isMergeCandidate(x Expression, v rdf.Variable) bool {
	if !ComparisonOps[x.Op] {
		return false
	}
	xv, ok := x.SingleVarOperand()
	if !ok || xv != v {
		return false
	}
	fvs := x.FreeVars()
	if len(fvs) != 1 || fvs[0] != v {
		return false
	}
	return true
}

func (q *Query) variableDeniesMerge(v rdf.Variable) bool {
	for _, t := range q.Pattern {
		if ov, ok := t.Object.(rdf.Variable); ok && ov == v {
			if _, predIsVar := t.Predicate.(rdf.Variable); predIsVar {
				return true
			}
		}
	}
	return false
}

// AddFilter implements the Query Model's merge-or-append contract. A
// multi-variable filter, or a NotExists, is appended verbatim after a
// dedup check (I4). A single-variable simple comparison is folded with
// any existing mergeable filters on the same variable; a contradiction
// removes the candidate filters and every triple whose object is v.
func (q *Query) AddFilter(f Expression) {
	if q.HasFilter(f) {
		return
	}

	fvs := f.FreeVars()
	if len(fvs) != 1 || f.Op == NotExists || !ComparisonOps[f.Op] {
		q.Filters = append(q.Filters, f)
		q.logf("added filter %s", f)
		return
	}

	v := fvs[0]
	if q.variableDeniesMerge(v) {
		q.Filters = append(q.Filters, f)
		q.logf("added filter %s", f)
		return
	}

	var mergeGroup []Expression
	var keep []Expression
	for _, x := range q.Filters {
		if q.isMergeCandidate(x, v) {
			mergeGroup = append(mergeGroup, x)
		} else {
			keep = append(keep, x)
		}
	}
	mergeGroup = append(mergeGroup, f)

	merged, ok := q.combiner.Combine(mergeGroup)
	if !ok {
		q.logf("contradiction merging filters on ?%s; dropping triples with object ?%s", v, v)
		q.Filters = keep
		for _, t := range append([]Triple(nil), q.Pattern...) {
			if ov, isVar := t.Object.(rdf.Variable); isVar && ov == v {
				q.RemoveTriple(t)
			}
		}
		return
	}

	q.Filters = append(keep, merged)
	q.logf("merged filters on ?%s into %s", v, merged)
}

// String renders a SPARQL-ish SELECT for diagnostics; not a full
// serializer (the real parser/serializer is an external collaborator).
func (q *Query) String() string {
	var b strings.Builder
	b.WriteString("SELECT ")
	if q.Distinct {
		b.WriteString("DISTINCT ")
	}
	if len(q.Projection) == 0 {
		b.WriteString("*")
	} else {
		items := make([]string, len(q.Projection))
		for i, p := range q.Projection {
			if p.Expr != nil {
				items[i] = fmt.Sprintf("(%s AS ?%s)", p.Expr, p.Var)
			} else {
				items[i] = "?" + string(p.Var)
			}
		}
		b.WriteString(strings.Join(items, " "))
	}
	b.WriteString(" WHERE { ")
	for _, t := range q.Pattern {
		fmt.Fprintf(&b, "%s . ", t)
	}
	for _, f := range q.Filters {
		fmt.Fprintf(&b, "FILTER(%s) . ", f)
	}
	b.WriteString("}")
	if len(q.GroupBy) > 0 {
		parts := make([]string, len(q.GroupBy))
		for i, v := range q.GroupBy {
			parts[i] = "?" + string(v)
		}
		fmt.Fprintf(&b, " GROUP BY %s", strings.Join(parts, " "))
	}
	if q.Having != nil {
		fmt.Fprintf(&b, " HAVING(%s)", q.Having)
	}
	if len(q.OrderBy) > 0 {
		parts := make([]string, len(q.OrderBy))
		for i, o := range q.OrderBy {
			dir := "ASC"
			if o.Desc {
				dir = "DESC"
			}
			parts[i] = fmt.Sprintf("%s(?%s)", dir, o.Var)
		}
		fmt.Fprintf(&b, " ORDER BY %s", strings.Join(parts, " "))
	}
	if q.Limit != nil {
		fmt.Fprintf(&b, " LIMIT %d", *q.Limit)
	}
	if q.Offset != nil {
		fmt.Fprintf(&b, " OFFSET %d", *q.Offset)
	}
	return b.String()
}
