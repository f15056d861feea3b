package policy

import (
	"encoding/json"
	"io/ioutil"

	"github.com/sirupsen/logrus"

	"github.com/GMaffio99/SPARQLPolicyTool/rdf"
)

// rawValue is the JSON shape of one AttributeConstraint operand.
type rawValue struct {
	Lexical string `json:"lexical"`
	Type    string `json:"type"`
}

// rawEntry is the JSON shape of one line of the policy file; exactly one
// of the type-specific field groups is meaningful, selected by Constraint.
type rawEntry struct {
	Constraint string `json:"constraint"` // "node" | "predicate" | "attribute"
	User       string `json:"user"`

	// node
	Type  string   `json:"type"`
	Nodes []string `json:"nodes"`

	// predicate
	SubjectType string   `json:"subjectType"`
	Predicate   string   `json:"predicate"`
	ObjectType  string   `json:"objectType"`
	Subjects    []string `json:"subjects"`
	Objects     []string `json:"objects"`

	// attribute
	Op     string     `json:"op"`
	Values []rawValue `json:"values"`
}

// Store is an in-memory Policy Store loaded from a JSON policy file.
type Store struct {
	nodes      []NodeConstraint
	predicates []PredicateConstraint
	attributes []AttributeConstraint
}

// Load reads and validates a JSON policy file. Malformed entries are
// skipped with a logged warning rather than aborting the whole load;
// I/O or top-level parse failures are returned to the caller.
func Load(path string, log *logrus.Logger) (*Store, error) {
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, ErrPolicyFile.Wrap(err)
	}

	var entries []rawEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, ErrPolicyFile.Wrap(err)
	}

	return build(entries, log)
}

// build validates already-decoded entries and assembles them into a
// Store; Load and LoadCached both finish through it.
func build(entries []rawEntry, log *logrus.Logger) (*Store, error) {
	s := &Store{}
	for i, e := range entries {
		if err := s.addEntry(e); err != nil {
			if log != nil {
				log.WithFields(logrus.Fields{
					"index": i,
					"kind":  e.Constraint,
					"err":   err,
				}).Warn("skipping malformed policy entry")
			}
			continue
		}
	}
	return s, nil
}

func (s *Store) addEntry(e rawEntry) error {
	switch e.Constraint {
	case "node":
		if e.User == "" || e.Type == "" {
			return ErrMalformedEntry.New("node constraint missing user or type")
		}
		s.nodes = append(s.nodes, NodeConstraint{
			User:  e.User,
			Type:  rdf.IRI(e.Type),
			Nodes: toIRIs(e.Nodes),
		})
	case "predicate":
		if e.User == "" || e.SubjectType == "" || e.Predicate == "" || e.ObjectType == "" {
			return ErrMalformedEntry.New("predicate constraint missing a required field")
		}
		s.predicates = append(s.predicates, PredicateConstraint{
			User:      e.User,
			SubjType:  rdf.IRI(e.SubjectType),
			Predicate: rdf.IRI(e.Predicate),
			ObjType:   rdf.IRI(e.ObjectType),
			Subjects:  toIRIs(e.Subjects),
			Objects:   toIRIs(e.Objects),
		})
	case "attribute":
		if e.User == "" || e.SubjectType == "" || e.Predicate == "" {
			return ErrMalformedEntry.New("attribute constraint missing a required field")
		}
		op := Operator(e.Op)
		switch op {
		case OpDeny, OpEq, OpNe, OpLt, OpLe, OpGt, OpGe, OpIn, OpNin, OpBetween:
		default:
			return ErrUnknownOperator.New(e.Op)
		}
		values, vtype, err := toValues(e.Values)
		if err != nil {
			return err
		}
		s.attributes = append(s.attributes, AttributeConstraint{
			User:      e.User,
			SubjType:  rdf.IRI(e.SubjectType),
			Predicate: rdf.IRI(e.Predicate),
			Subjects:  toIRIs(e.Subjects),
			Op:        op,
			Values:    values,
			ValueType: vtype,
		})
	default:
		return ErrUnknownConstraintKind.New(e.Constraint)
	}
	return nil
}

func toIRIs(ss []string) []rdf.IRI {
	if len(ss) == 0 {
		return nil
	}
	out := make([]rdf.IRI, len(ss))
	for i, s := range ss {
		out[i] = rdf.IRI(s)
	}
	return out
}

func toValues(raw []rawValue) ([]rdf.NodeValue, rdf.PrimType, error) {
	if len(raw) == 0 {
		return nil, rdf.TypeString, nil
	}
	out := make([]rdf.NodeValue, len(raw))
	var t rdf.PrimType
	for i, r := range raw {
		pt, err := parsePrimType(r.Type)
		if err != nil {
			return nil, 0, err
		}
		if i == 0 {
			t = pt
		}
		out[i] = rdf.NodeValue{Lexical: r.Lexical, Type: pt}
	}
	return out, t, nil
}

func parsePrimType(s string) (rdf.PrimType, error) {
	switch s {
	case "string":
		return rdf.TypeString, nil
	case "integer":
		return rdf.TypeInteger, nil
	case "double":
		return rdf.TypeDouble, nil
	case "date":
		return rdf.TypeDate, nil
	case "iri":
		return rdf.TypeIRI, nil
	default:
		return 0, ErrMalformedEntry.New("unknown value type: " + s)
	}
}

// NodeConstraints implements the §4.1 subsumption rule: an unscoped
// entry denies the whole class and is authoritative over any scoped
// entries for the same (user, type).
func (s *Store) NodeConstraints(user string, typ rdf.IRI) []NodeConstraint {
	var matching, scoped []NodeConstraint
	for _, n := range s.nodes {
		if n.User != user || n.Type != typ {
			continue
		}
		matching = append(matching, n)
		if !n.Scoped() {
			return []NodeConstraint{n}
		}
		scoped = append(scoped, n)
	}
	return scoped
}

// PredicateConstraints implements the §4.1 subsumption rule: an entry
// with neither subject nor object set forbids the edge absolutely and is
// authoritative over any scoped entries for the same (user, sType, p,
// oType).
func (s *Store) PredicateConstraints(user string, sType, p, oType rdf.IRI) []PredicateConstraint {
	var scoped []PredicateConstraint
	for _, c := range s.predicates {
		if c.User != user || c.SubjType != sType || c.Predicate != p || c.ObjType != oType {
			continue
		}
		if !c.Scoped() {
			return []PredicateConstraint{c}
		}
		scoped = append(scoped, c)
	}
	return scoped
}

// AttributeConstraints implements the §4.1 rule: an unscoped deny (X)
// entry is authoritative over everything else for the (user, sType, p)
// key; scoped deny entries are authoritative over value-operator entries
// (denial overrides narrowing) but not over each other; absent any deny
// entry, all value-operator entries are returned.
func (s *Store) AttributeConstraints(user string, sType, p rdf.IRI) []AttributeConstraint {
	var denies, scopedDenies, values []AttributeConstraint
	for _, c := range s.attributes {
		if c.User != user || c.SubjType != sType || c.Predicate != p {
			continue
		}
		switch {
		case c.Op == OpDeny && !c.Scoped():
			denies = append(denies, c)
		case c.Op == OpDeny:
			scopedDenies = append(scopedDenies, c)
		default:
			values = append(values, c)
		}
	}
	if len(denies) > 0 {
		return denies[:1]
	}
	if len(scopedDenies) > 0 {
		return scopedDenies
	}
	return values
}
