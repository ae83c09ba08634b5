// Package triage routes claims to human-review queues based on their
// latest risk assessment. Decisions are append-only history; re-triage
// against the same assessment is idempotent and overrides add rows
// rather than rewriting them.
package triage

import (
	"context"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/linnemanlabs/claimgate/internal/claim"
	"github.com/linnemanlabs/claimgate/internal/risk"
)

// Queue is a named human-review lane. The strings are part of the wire
// contract with downstream workflow systems.
type Queue string

const (
	QueueAutoReview          Queue = "Auto-Review"
	QueueStandardReview      Queue = "Standard Review"
	QueueManualInvestigation Queue = "Manual Investigation"
)

// valid reports whether q is one of the named queues.
func (q Queue) valid() bool {
	switch q {
	case QueueAutoReview, QueueStandardReview, QueueManualInvestigation:
		return true
	}
	return false
}

// ErrUnroutableRisk marks a risk level with no queue mapping. Critical
// is defined in the level enum but the router deliberately has no lane
// for it; routing such an assessment is an error, not a silent default.
var ErrUnroutableRisk = claim.Errorf(claim.ErrValidation, "risk level has no queue mapping")

// DetermineQueue maps a risk level to its queue.
func DetermineQueue(level risk.Level) (Queue, error) {
	switch level {
	case risk.LevelLow:
		return QueueAutoReview, nil
	case risk.LevelMedium:
		return QueueStandardReview, nil
	case risk.LevelHigh:
		return QueueManualInvestigation, nil
	default:
		return "", ErrUnroutableRisk
	}
}

// Decision is one immutable routing fact tying a claim and the exact
// assessment it was computed from to a queue.
type Decision struct {
	ID               string    `json:"id"`
	ClaimID          string    `json:"claim_id"`
	RiskAssessmentID string    `json:"risk_assessment_id"`
	Queue            Queue     `json:"queue"`
	IsOverride       bool      `json:"is_override"`
	OverrideBy       string    `json:"override_by,omitempty"`
	OverrideReason   string    `json:"override_reason,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// NewDecision constructs a computed (non-override) routing decision.
func NewDecision(claimID, assessmentID string, queue Queue) (*Decision, error) {
	if !queue.valid() {
		return nil, claim.Errorf(claim.ErrValidation, "unknown queue %q", queue)
	}
	return &Decision{
		ID:               ulid.Make().String(),
		ClaimID:          claimID,
		RiskAssessmentID: assessmentID,
		Queue:            queue,
		CreatedAt:        time.Now().UTC(),
	}, nil
}

// NewOverride constructs an override decision. Overrides always carry
// the overriding actor and a reason; any of the three named queues is
// accepted regardless of risk level.
func NewOverride(claimID, assessmentID string, queue Queue, overrideBy, reason string) (*Decision, error) {
	if !queue.valid() {
		return nil, claim.Errorf(claim.ErrValidation, "unknown queue %q", queue)
	}
	if strings.TrimSpace(overrideBy) == "" {
		return nil, claim.Errorf(claim.ErrValidation, "override actor is required")
	}
	if strings.TrimSpace(reason) == "" {
		return nil, claim.Errorf(claim.ErrValidation, "override reason is required")
	}
	return &Decision{
		ID:               ulid.Make().String(),
		ClaimID:          claimID,
		RiskAssessmentID: assessmentID,
		Queue:            queue,
		IsOverride:       true,
		OverrideBy:       overrideBy,
		OverrideReason:   reason,
		CreatedAt:        time.Now().UTC(),
	}, nil
}

// Store persists triage decisions. Insert must fail with ErrConflict
// when a non-override decision already exists for the same claim and
// assessment pair. GetComputed returns ErrNotFound when no non-override
// decision exists for the pair.
type Store interface {
	Insert(ctx context.Context, d *Decision) error
	Latest(ctx context.Context, claimID string) (*Decision, error)
	ListByClaim(ctx context.Context, claimID string) ([]*Decision, error)
	ListByQueue(ctx context.Context, queue Queue) ([]*Decision, error)
	GetComputed(ctx context.Context, claimID, assessmentID string) (*Decision, error)
}
