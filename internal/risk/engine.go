package risk

import (
	"context"
	"fmt"
	"time"

	"github.com/linnemanlabs/go-core/log"

	"github.com/linnemanlabs/claimgate/internal/audit"
	"github.com/linnemanlabs/claimgate/internal/claim"
	"github.com/linnemanlabs/claimgate/internal/verify"
)

// Engine runs the hybrid evaluation: deterministic rules over the policy
// snapshot and verified fields, an advisory AI pass, escalate-only
// fusion, and an immutable assessment snapshot at the end.
type Engine struct {
	claims      claim.Store
	snapshots   claim.SnapshotStore
	guard       *verify.Guard
	advisor     *Advisor
	assessments Store
	metrics     *Metrics
	auditor     audit.Sink
	logger      log.Logger
}

// NewEngine creates a risk evaluation engine. advisor may be nil to run
// rules-only; metrics may be nil.
func NewEngine(claims claim.Store, snapshots claim.SnapshotStore, guard *verify.Guard, advisor *Advisor, assessments Store, metrics *Metrics, auditor audit.Sink, logger log.Logger) *Engine {
	if logger == nil {
		logger = log.Nop()
	}
	return &Engine{
		claims:      claims,
		snapshots:   snapshots,
		guard:       guard,
		advisor:     advisor,
		assessments: assessments,
		metrics:     metrics,
		auditor:     auditor,
		logger:      logger,
	}
}

// Evaluate runs a full risk evaluation for the claim and persists the
// result as a new assessment snapshot. Callers are expected to have
// satisfied the verification gate already; the engine re-checks it
// anyway, since the gate is cheap and the consequences of skipping it
// are not.
func (e *Engine) Evaluate(ctx context.Context, claimID, actor string) (*Assessment, error) {
	start := time.Now()

	c, err := e.claims.Get(ctx, claimID)
	if err != nil {
		return nil, err
	}
	if c.Status != claim.StatusVerified && c.Status != claim.StatusTriaged {
		return nil, claim.Errorf(claim.ErrInvalidState,
			"cannot evaluate risk for claim %s in %s state: claim must be Verified", c.ID, c.Status)
	}
	snapshot, err := e.snapshots.GetByClaim(ctx, c.ID)
	if err != nil {
		return nil, claim.WrapError(claim.ErrNotFound, fmt.Sprintf("policy snapshot for claim %s", c.ID), err)
	}
	if err := e.guard.EnsureAllDecided(ctx, c.ID); err != nil {
		return nil, err
	}
	fields, err := e.guard.VerifiedValues(ctx, c.ID)
	if err != nil {
		return nil, err
	}

	signals := EvaluateRules(Inputs{Claim: c, Snapshot: snapshot, Fields: fields})
	ruleLevel := RuleLevel(signals)

	var observations []Observation
	var model string
	if e.advisor != nil {
		observations, model = e.advisor.Observations(ctx, c, fields)
		if e.metrics != nil && model == "" {
			e.metrics.AdvisorFailures.Inc()
		}
	}

	level := Fuse(ruleLevel, observations)
	score := Score(signals, observations)

	a := NewAssessment(c.ID, level, signals, observations, score, model)
	if err := e.assessments.Insert(ctx, a); err != nil {
		return nil, fmt.Errorf("insert risk assessment: %w", err)
	}

	e.observe(a, signals, time.Since(start))
	e.record(ctx, audit.Event{
		Actor:      actor,
		Action:     audit.ActionRiskAssessed,
		EntityType: "risk_assessment",
		EntityID:   a.ID,
		Details: map[string]any{
			"claim_id":     c.ID,
			"risk_level":   string(level),
			"rule_level":   string(ruleLevel),
			"score":        score,
			"observations": len(observations),
		},
	})
	e.logger.Info(ctx, "risk evaluation complete",
		"claim_id", c.ID,
		"assessment_id", a.ID,
		"risk_level", string(level),
		"rule_level", string(ruleLevel),
		"score", score,
		"observations", len(observations),
	)
	return a, nil
}

// Latest returns the claim's most recent assessment.
func (e *Engine) Latest(ctx context.Context, claimID string) (*Assessment, error) {
	if _, err := e.claims.Get(ctx, claimID); err != nil {
		return nil, err
	}
	return e.assessments.Latest(ctx, claimID)
}

// History returns all assessments for the claim in creation order.
func (e *Engine) History(ctx context.Context, claimID string) ([]*Assessment, error) {
	if _, err := e.claims.Get(ctx, claimID); err != nil {
		return nil, err
	}
	return e.assessments.ListByClaim(ctx, claimID)
}

func (e *Engine) observe(a *Assessment, signals []Signal, elapsed time.Duration) {
	if e.metrics == nil {
		return
	}
	e.metrics.EvaluationsTotal.WithLabelValues(string(a.Level)).Inc()
	e.metrics.EvaluationDuration.Observe(elapsed.Seconds())
	e.metrics.ObservationCount.Observe(float64(len(a.Observations)))
	e.metrics.Score.Observe(float64(a.Score))
	for _, s := range signals {
		if s.Triggered {
			e.metrics.SignalsTriggered.WithLabelValues(s.RuleName).Inc()
		}
	}
}

func (e *Engine) record(ctx context.Context, ev audit.Event) {
	if e.auditor == nil {
		return
	}
	if err := e.auditor.Record(ctx, audit.Fill(ev)); err != nil {
		e.logger.Error(ctx, err, "audit record failed", "action", ev.Action, "entity_id", ev.EntityID)
	}
}
