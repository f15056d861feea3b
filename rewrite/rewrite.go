// Package rewrite is the Rewrite Driver: it runs the node, predicate and
// attribute passes over a query's working copy in order, under one
// opentracing span per invocation, logging every structural mutation to
// both logrus and the returned diagnostic transcript.
package rewrite

import (
	"context"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"github.com/satori/go.uuid"
	"github.com/sirupsen/logrus"

	"github.com/GMaffio99/SPARQLPolicyTool/infer"
	"github.com/GMaffio99/SPARQLPolicyTool/policy"
	"github.com/GMaffio99/SPARQLPolicyTool/query"
	"github.com/GMaffio99/SPARQLPolicyTool/schema"
)

// Driver runs the three rewrite passes against a Policy Store and a
// Schema Oracle/Dataset.
type Driver struct {
	Store   *policy.Store
	Dataset schema.Dataset
	Log     *logrus.Logger
	Tracer  opentracing.Tracer

	decisionLog *policy.DecisionLog
}

// New builds a Driver. log may be nil, in which case a default logrus
// logger is used.
func New(store *policy.Store, ds schema.Dataset, log *logrus.Logger) *Driver {
	if log == nil {
		log = logrus.New()
	}
	return &Driver{
		Store:       store,
		Dataset:     ds,
		Log:         log,
		Tracer:      opentracing.GlobalTracer(),
		decisionLog: policy.NewDecisionLog(log),
	}
}

// Rewrite type-infers in's pattern, then narrows a working copy of it
// through the node, predicate and attribute passes in that order, per
// §5's single ordering guarantee. in itself is never mutated.
func (d *Driver) Rewrite(ctx context.Context, user string, in *query.Query) (*query.Query, Stats, error) {
	invocationID := uuid.NewV4().String()

	span, ctx := opentracing.StartSpanFromContextWithTracer(ctx, d.Tracer, "rewrite")
	defer span.Finish()
	span.SetTag("rewrite.invocation", invocationID)
	span.SetTag("rewrite.user", user)

	entryLog := d.Log.WithFields(logrus.Fields{
		"invocation": invocationID,
		"user":       user,
	})
	entryLog.WithField("query", in.String()).Info("rewrite starting")

	bindings, err := infer.Infer(ctx, in, d.Dataset)
	if err != nil {
		return nil, Stats{}, errors.Wrap(err, "type inference")
	}

	out := in.Clone()
	out.Bindings = bindings

	stats := &Stats{}
	out.Log = func(line string) {
		entryLog.Info(line)
		stats.ingest(line)
	}

	nodeSpan, _ := opentracing.StartSpanFromContextWithTracer(ctx, d.Tracer, "rewrite.node")
	stats.NodePassChanged = runNodePass(d, user, out)
	if !stats.NodePassChanged {
		out.Log("no node constraints applied")
	}
	nodeSpan.Finish()

	predSpan, predCtx := opentracing.StartSpanFromContextWithTracer(ctx, d.Tracer, "rewrite.predicate")
	stats.PredicatePassChanged = runPredicatePass(predCtx, d, user, out)
	if !stats.PredicatePassChanged {
		out.Log("no predicate constraints applied")
	}
	predSpan.Finish()

	attrSpan, attrCtx := opentracing.StartSpanFromContextWithTracer(ctx, d.Tracer, "rewrite.attribute")
	stats.AttributePassChanged = runAttributePass(attrCtx, d, user, out)
	if !stats.AttributePassChanged {
		out.Log("no attribute constraints applied")
	}
	attrSpan.Finish()

	entryLog.WithField("query", out.String()).Info("rewrite finished")

	return out, *stats, nil
}
