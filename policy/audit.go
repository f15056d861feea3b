package policy

import (
	"github.com/sirupsen/logrus"

	"github.com/GMaffio99/SPARQLPolicyTool/rdf"
)

const decisionLogMessage = "policy decision"

// DecisionLog records every constraint lookup the Rewrite Driver makes,
// the same way AuditLog records authentication and query events in the
// systems this one was adapted from: one structured log line per
// decision, cheap enough to leave on in production.
type DecisionLog struct {
	log *logrus.Entry
}

// NewDecisionLog wraps a logrus.Logger for policy decision logging.
func NewDecisionLog(l *logrus.Logger) *DecisionLog {
	return &DecisionLog{log: l.WithField("system", "policy")}
}

// NodeLookup logs the result of a nodeConstraints lookup.
func (d *DecisionLog) NodeLookup(user string, typ rdf.IRI, matches []NodeConstraint) {
	d.log.WithFields(logrus.Fields{
		"action": "node_lookup",
		"user":   user,
		"type":   typ,
		"count":  len(matches),
	}).Info(decisionLogMessage)
}

// PredicateLookup logs the result of a predicateConstraints lookup.
func (d *DecisionLog) PredicateLookup(user string, sType, p, oType rdf.IRI, matches []PredicateConstraint) {
	d.log.WithFields(logrus.Fields{
		"action":    "predicate_lookup",
		"user":      user,
		"subjType":  sType,
		"predicate": p,
		"objType":   oType,
		"count":     len(matches),
	}).Info(decisionLogMessage)
}

// AttributeLookup logs the result of an attributeConstraints lookup.
func (d *DecisionLog) AttributeLookup(user string, sType, p rdf.IRI, matches []AttributeConstraint) {
	d.log.WithFields(logrus.Fields{
		"action":    "attribute_lookup",
		"user":      user,
		"subjType":  sType,
		"predicate": p,
		"count":     len(matches),
	}).Info(decisionLogMessage)
}
