package triage

import (
	"context"
	"errors"
	"fmt"

	"github.com/linnemanlabs/go-core/log"

	"github.com/linnemanlabs/claimgate/internal/audit"
	"github.com/linnemanlabs/claimgate/internal/claim"
	"github.com/linnemanlabs/claimgate/internal/risk"
)

// Router assigns claims to review queues from their latest assessment.
type Router struct {
	claims      claim.Store
	assessments risk.Store
	decisions   Store
	metrics     *Metrics
	auditor     audit.Sink
	logger      log.Logger
}

// NewRouter creates a triage router. metrics may be nil.
func NewRouter(claims claim.Store, assessments risk.Store, decisions Store, metrics *Metrics, auditor audit.Sink, logger log.Logger) *Router {
	if logger == nil {
		logger = log.Nop()
	}
	return &Router{
		claims:      claims,
		assessments: assessments,
		decisions:   decisions,
		metrics:     metrics,
		auditor:     auditor,
		logger:      logger,
	}
}

// Triage routes the claim from its latest risk assessment. If a
// computed decision already references that assessment it is returned
// unchanged; calling triage twice for the same evaluation is a no-op,
// not an error. The first successful routing advances the claim to
// Triaged. A concurrent duplicate surfaces as ErrConflict from the
// decision store's uniqueness guarantee.
func (r *Router) Triage(ctx context.Context, claimID, actor string) (*Decision, error) {
	c, err := r.claims.Get(ctx, claimID)
	if err != nil {
		return nil, err
	}
	a, err := r.assessments.Latest(ctx, c.ID)
	if err != nil {
		return nil, claim.WrapError(claim.ErrInvalidState, fmt.Sprintf("triage claim %s without a risk assessment", c.ID), err)
	}

	if existing, err := r.decisions.GetComputed(ctx, c.ID, a.ID); err == nil {
		return existing, nil
	} else if !claim.IsKind(err, claim.ErrNotFound) {
		return nil, err
	}

	queue, err := DetermineQueue(a.Level)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", err, a.Level)
	}
	d, err := NewDecision(c.ID, a.ID, queue)
	if err != nil {
		return nil, err
	}
	if err := r.decisions.Insert(ctx, d); err != nil {
		return nil, fmt.Errorf("insert triage decision: %w", err)
	}

	if c.Status == claim.StatusVerified {
		if err := c.MarkTriaged(); err != nil {
			return nil, err
		}
		if err := r.claims.Update(ctx, c); err != nil {
			return nil, fmt.Errorf("mark triaged: %w", err)
		}
	}

	if r.metrics != nil {
		r.metrics.DecisionsTotal.WithLabelValues(string(queue), "computed").Inc()
	}
	r.record(ctx, audit.Event{
		Actor:      actor,
		Action:     audit.ActionClaimTriaged,
		EntityType: "triage_decision",
		EntityID:   d.ID,
		Details: map[string]any{
			"claim_id":           c.ID,
			"risk_assessment_id": a.ID,
			"queue":              string(queue),
			"risk_level":         string(a.Level),
		},
	})
	r.logger.Info(ctx, "claim triaged",
		"claim_id", c.ID,
		"decision_id", d.ID,
		"queue", string(queue),
		"risk_level", string(a.Level),
	)
	return d, nil
}

// Override routes the claim to a queue chosen by a privileged actor.
// The computed decision stays in history untouched; the override is a
// new row against the same latest assessment. The chosen queue is not
// re-validated against the risk level.
func (r *Router) Override(ctx context.Context, claimID string, queue Queue, overrideBy, reason string) (*Decision, error) {
	c, err := r.claims.Get(ctx, claimID)
	if err != nil {
		return nil, err
	}
	a, err := r.assessments.Latest(ctx, c.ID)
	if err != nil {
		return nil, claim.WrapError(claim.ErrInvalidState, fmt.Sprintf("override claim %s without a risk assessment", c.ID), err)
	}

	d, err := NewOverride(c.ID, a.ID, queue, overrideBy, reason)
	if err != nil {
		return nil, err
	}
	if err := r.decisions.Insert(ctx, d); err != nil {
		return nil, fmt.Errorf("insert override decision: %w", err)
	}

	if r.metrics != nil {
		r.metrics.DecisionsTotal.WithLabelValues(string(queue), "override").Inc()
	}
	r.record(ctx, audit.Event{
		Actor:      overrideBy,
		Action:     audit.ActionTriageOverridden,
		EntityType: "triage_decision",
		EntityID:   d.ID,
		Details: map[string]any{
			"claim_id":           c.ID,
			"risk_assessment_id": a.ID,
			"queue":              string(queue),
			"reason":             reason,
		},
	})
	r.logger.Info(ctx, "triage overridden",
		"claim_id", c.ID,
		"decision_id", d.ID,
		"queue", string(queue),
		"override_by", overrideBy,
	)
	return d, nil
}

// Latest returns the claim's most recent decision, override or not.
func (r *Router) Latest(ctx context.Context, claimID string) (*Decision, error) {
	if _, err := r.claims.Get(ctx, claimID); err != nil {
		return nil, err
	}
	return r.decisions.Latest(ctx, claimID)
}

// History returns all decisions for the claim in creation order.
func (r *Router) History(ctx context.Context, claimID string) ([]*Decision, error) {
	if _, err := r.claims.Get(ctx, claimID); err != nil {
		return nil, err
	}
	return r.decisions.ListByClaim(ctx, claimID)
}

// QueueContents lists decisions currently pointing at a queue.
func (r *Router) QueueContents(ctx context.Context, queue Queue) ([]*Decision, error) {
	if !queue.valid() {
		return nil, claim.Errorf(claim.ErrValidation, "unknown queue %q", queue)
	}
	return r.decisions.ListByQueue(ctx, queue)
}

// IsUnroutable reports whether err is the missing-queue-mapping error.
func IsUnroutable(err error) bool {
	return errors.Is(err, ErrUnroutableRisk)
}

func (r *Router) record(ctx context.Context, e audit.Event) {
	if r.auditor == nil {
		return
	}
	if err := r.auditor.Record(ctx, audit.Fill(e)); err != nil {
		r.logger.Error(ctx, err, "audit record failed", "action", e.Action, "entity_id", e.EntityID)
	}
}
