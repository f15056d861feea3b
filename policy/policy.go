// Package policy is the Policy Store: it loads a JSON policy file into
// typed constraint entries and answers the three lookups the Rewrite
// Driver's passes issue, applying the authoritative-entry subsumption
// rules a plain map lookup cannot express on its own.
package policy

import (
	"github.com/GMaffio99/SPARQLPolicyTool/rdf"
)

// Operator is the comparison (or denial) an AttributeConstraint carries.
type Operator string

const (
	OpDeny Operator = "X"
	OpEq   Operator = "="
	OpNe   Operator = "!="
	OpLt   Operator = "<"
	OpLe   Operator = "<="
	OpGt   Operator = ">"
	OpGe   Operator = ">="
	OpIn      Operator = "in"
	OpNin     Operator = "notin"
	OpBetween Operator = "between"
)

// NodeConstraint denies a user access to instances of a class, either
// entirely (Nodes is nil) or only to the listed instances.
type NodeConstraint struct {
	User  string
	Type  rdf.IRI
	Nodes []rdf.IRI // nil/empty means "the whole class"
}

// Scoped reports whether this entry names specific instances rather than
// denying the whole class.
func (n NodeConstraint) Scoped() bool { return len(n.Nodes) > 0 }

// PredicateConstraint denies a user traversal of an edge between two
// classes, either for every matching triple (both sets empty) or only
// for the listed subject/object instances.
type PredicateConstraint struct {
	User       string
	SubjType   rdf.IRI
	Predicate  rdf.IRI
	ObjType    rdf.IRI
	Subjects   []rdf.IRI
	Objects    []rdf.IRI
}

// Scoped reports whether this entry names specific instances rather than
// forbidding the edge absolutely.
func (p PredicateConstraint) Scoped() bool { return len(p.Subjects) > 0 || len(p.Objects) > 0 }

// AttributeConstraint either denies reading a predicate's value (Op ==
// OpDeny) or narrows the set of values permitted through it.
type AttributeConstraint struct {
	User      string
	SubjType  rdf.IRI
	Predicate rdf.IRI
	Subjects  []rdf.IRI // optional subject scoping, applies to any Op
	Op        Operator
	Values    []rdf.NodeValue // operand(s); one for Eq/Ne/Lt/Le/Gt/Ge, many for In/NotIn
	ValueType rdf.PrimType
}

// Scoped reports whether this entry names specific subjects.
func (a AttributeConstraint) Scoped() bool { return len(a.Subjects) > 0 }
