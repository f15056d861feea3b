package policy

import "gopkg.in/src-d/go-errors.v1"

var (
	// ErrPolicyFile is returned when the policy file cannot be read.
	ErrPolicyFile = errors.NewKind("error reading policy file")
	// ErrMalformedEntry is returned (and logged as a warning, never fatal)
	// when a single policy entry fails validation.
	ErrMalformedEntry = errors.NewKind("malformed policy entry: %s")
	// ErrUnknownConstraintKind happens when an entry's "constraint" field
	// names something other than node/predicate/attribute.
	ErrUnknownConstraintKind = errors.NewKind("unknown constraint kind: %s")
	// ErrUnknownOperator happens when an AttributeConstraint's operator
	// field isn't one of the recognized tokens.
	ErrUnknownOperator = errors.NewKind("unknown attribute operator: %s")
)
