// Package aggregate runs the three source adapters and folds their
// results into one envelope, isolating per-source failures.
package aggregate

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/breachwatch/breachwatch/internal/browser"
	"github.com/breachwatch/breachwatch/internal/model"
	"github.com/breachwatch/breachwatch/internal/source"
	"github.com/google/uuid"
)

// Orchestrator owns envelope construction. Adapters run sequentially;
// the two rendered sources share one session that is acquired per run
// and always released before Aggregate returns.
type Orchestrator struct {
	Static   source.Adapter
	Rendered []source.SessionAdapter
	Sessions browser.Factory
	Now      func() time.Time
}

// New wires an orchestrator over the standard three adapters.
func New(static source.Adapter, rendered []source.SessionAdapter, sessions browser.Factory) *Orchestrator {
	return &Orchestrator{
		Static:   static,
		Rendered: rendered,
		Sessions: sessions,
		Now:      time.Now,
	}
}

// Aggregate runs the full pipeline and always produces an envelope: a
// source that fails to fetch or parse contributes an empty slot and a
// false status flag, never an error to the caller. The one fatal
// condition is failing to acquire the rendering session, without which
// two of the three sources are unreachable.
func (o *Orchestrator) Aggregate(ctx context.Context) (model.Envelope, error) {
	runID := uuid.NewString()
	env := model.NewEnvelope()

	o.runAdapter(env, runID, o.Static.Name(), func() ([]model.Record, error) {
		return o.Static.Fetch(ctx)
	})

	sess, err := o.Sessions(ctx)
	if err != nil {
		return model.Envelope{}, fmt.Errorf("acquiring rendering session: %w", err)
	}
	defer sess.Close()

	for _, adapter := range o.Rendered {
		o.runAdapter(env, runID, adapter.Name(), func() ([]model.Record, error) {
			return adapter.Fetch(ctx, sess)
		})
	}

	env.Meta.Timestamp = o.Now()
	return env, nil
}

// runAdapter applies the isolation policy: log the failure, keep the
// slot empty, and mark the source successful only when it returned at
// least one record without error.
func (o *Orchestrator) runAdapter(env model.Envelope, runID, name string, fetch func() ([]model.Record, error)) {
	records, err := fetch()
	if err != nil {
		log.Printf("aggregate %s: source %s failed: %v", runID, name, err)
		return
	}
	if len(records) == 0 {
		log.Printf("aggregate %s: source %s returned no records", runID, name)
		return
	}
	env.Data[name] = records
	env.Meta.Status[name] = true
	log.Printf("aggregate %s: source %s: %d records", runID, name, len(records))
}
