// Package query holds the mutable representation of a query under
// rewrite: triples, filters, projection, grouping, ordering and limits,
// together with the structural mutators that keep it well-formed.
package query

import (
	"fmt"
	"strings"

	"github.com/GMaffio99/SPARQLPolicyTool/rdf"
)

// Op tags an Expression node. Leaves are VarRef and Const; everything else
// is interior.
type Op int

const (
	VarRef Op = iota
	Const
	Eq
	Ne
	Lt
	Le
	Gt
	Ge
	In
	NotIn
	And
	Or
	Not
	NotExists
)

func (o Op) String() string {
	switch o {
	case VarRef:
		return "VarRef"
	case Const:
		return "Const"
	case Eq:
		return "="
	case Ne:
		return "!="
	case Lt:
		return "<"
	case Le:
		return "<="
	case Gt:
		return ">"
	case Ge:
		return ">="
	case In:
		return "IN"
	case NotIn:
		return "NOT IN"
	case And:
		return "&&"
	case Or:
		return "||"
	case Not:
		return "!"
	case NotExists:
		return "NOT EXISTS"
	default:
		return "?"
	}
}

// ComparisonOps is the closed set of simple comparison operators the
// filter algebra knows how to merge pairwise.
var ComparisonOps = map[Op]bool{
	Eq: true, Ne: true, Lt: true, Le: true, Gt: true, Ge: true, In: true, NotIn: true,
}

// Expression is a tagged tree. Leaves carry Var or Value; In/NotIn also
// carry Set (the value list, against Args[0]); And/Or/Not carry Args;
// NotExists carries Pattern. This is a value type with structural
// equality, not a subtype hierarchy: callers switch on Op.
type Expression struct {
	Op      Op
	Var     rdf.Variable
	Value   rdf.NodeValue
	Args    []Expression
	Set     []rdf.NodeValue
	Pattern *Triple
}

func NewVarRef(v rdf.Variable) Expression { return Expression{Op: VarRef, Var: v} }

func NewConst(v rdf.NodeValue) Expression { return Expression{Op: Const, Value: v} }

func newBinary(op Op, v rdf.Variable, c rdf.NodeValue) Expression {
	return Expression{Op: op, Args: []Expression{NewVarRef(v), NewConst(c)}}
}

func NewEq(v rdf.Variable, c rdf.NodeValue) Expression { return newBinary(Eq, v, c) }
func NewNe(v rdf.Variable, c rdf.NodeValue) Expression { return newBinary(Ne, v, c) }
func NewLt(v rdf.Variable, c rdf.NodeValue) Expression { return newBinary(Lt, v, c) }
func NewLe(v rdf.Variable, c rdf.NodeValue) Expression { return newBinary(Le, v, c) }
func NewGt(v rdf.Variable, c rdf.NodeValue) Expression { return newBinary(Gt, v, c) }
func NewGe(v rdf.Variable, c rdf.NodeValue) Expression { return newBinary(Ge, v, c) }

func NewIn(v rdf.Variable, set []rdf.NodeValue) Expression {
	return Expression{Op: In, Args: []Expression{NewVarRef(v)}, Set: append([]rdf.NodeValue(nil), set...)}
}

func NewNotIn(v rdf.Variable, set []rdf.NodeValue) Expression {
	return Expression{Op: NotIn, Args: []Expression{NewVarRef(v)}, Set: append([]rdf.NodeValue(nil), set...)}
}

func NewAnd(args ...Expression) Expression { return Expression{Op: And, Args: args} }
func NewOr(args ...Expression) Expression  { return Expression{Op: Or, Args: args} }
func NewNot(e Expression) Expression       { return Expression{Op: Not, Args: []Expression{e}} }

func NewNotExists(t Triple) Expression { return Expression{Op: NotExists, Pattern: &t} }

// IsCompound reports whether e's root is a boolean combinator, the case
// the filter algebra refuses to analyze further and instead conjoins
// verbatim.
func (e Expression) IsCompound() bool {
	return e.Op == And || e.Op == Or || e.Op == Not
}

// SingleVarOperand returns the variable an Eq/Ne/Lt/Le/Gt/Ge/In/NotIn
// filter is built on, assuming Args[0] is the VarRef leaf produced by the
// constructors above.
func (e Expression) SingleVarOperand() (rdf.Variable, bool) {
	if len(e.Args) == 0 || e.Args[0].Op != VarRef {
		return "", false
	}
	return e.Args[0].Var, true
}

// ScalarOperand returns the constant compared against for Eq/Ne/Lt/Le/Gt/Ge.
func (e Expression) ScalarOperand() (rdf.NodeValue, bool) {
	if len(e.Args) < 2 || e.Args[1].Op != Const {
		return rdf.NodeValue{}, false
	}
	return e.Args[1].Value, true
}

// FreeVars returns the distinct variables referenced anywhere in e,
// including inside a NotExists' inner pattern.
func (e Expression) FreeVars() []rdf.Variable {
	seen := map[rdf.Variable]bool{}
	var out []rdf.Variable
	var walk func(Expression)
	walk = func(x Expression) {
		switch x.Op {
		case VarRef:
			if !seen[x.Var] {
				seen[x.Var] = true
				out = append(out, x.Var)
			}
		case NotExists:
			if x.Pattern != nil {
				for _, v := range x.Pattern.Vars() {
					if !seen[v] {
						seen[v] = true
						out = append(out, v)
					}
				}
			}
		}
		for _, a := range x.Args {
			walk(a)
		}
	}
	walk(e)
	return out
}

// Equal reports structural equality. NotExists filters are equal iff
// their inner patterns are equal (I4's special case), independent of
// pointer identity.
func (e Expression) Equal(o Expression) bool {
	if e.Op != o.Op {
		return false
	}
	switch e.Op {
	case VarRef:
		return e.Var == o.Var
	case Const:
		return e.Value == o.Value
	case NotExists:
		if e.Pattern == nil || o.Pattern == nil {
			return e.Pattern == o.Pattern
		}
		return e.Pattern.Equal(*o.Pattern)
	}
	if len(e.Set) != len(o.Set) {
		return false
	}
	for _, v := range e.Set {
		if !containsValue(o.Set, v) {
			return false
		}
	}
	if len(e.Args) != len(o.Args) {
		return false
	}
	for i := range e.Args {
		if !e.Args[i].Equal(o.Args[i]) {
			return false
		}
	}
	return true
}

func containsValue(set []rdf.NodeValue, v rdf.NodeValue) bool {
	for _, s := range set {
		if rdf.ValuesEqual(s, v) {
			return true
		}
	}
	return false
}

// String renders a SPARQL-ish filter expression, good enough for the
// diagnostic transcript and tests; it is not a full serializer.
func (e Expression) String() string {
	switch e.Op {
	case VarRef:
		return "?" + string(e.Var)
	case Const:
		return e.Value.String()
	case And, Or:
		parts := make([]string, len(e.Args))
		for i, a := range e.Args {
			parts[i] = a.String()
		}
		sep := " && "
		if e.Op == Or {
			sep = " || "
		}
		return "(" + strings.Join(parts, sep) + ")"
	case Not:
		return "!(" + e.Args[0].String() + ")"
	case NotExists:
		if e.Pattern == nil {
			return "NOT EXISTS { }"
		}
		return fmt.Sprintf("NOT EXISTS { %s }", e.Pattern.String())
	case In, NotIn:
		parts := make([]string, len(e.Set))
		for i, v := range e.Set {
			parts[i] = v.String()
		}
		return fmt.Sprintf("%s %s (%s)", e.Args[0].String(), e.Op, strings.Join(parts, ", "))
	default:
		return fmt.Sprintf("%s %s %s", e.Args[0].String(), e.Op, e.Args[1].String())
	}
}
