// Package audit defines the audit-event contract for claimgate. Every
// state-changing pipeline operation records exactly one event describing
// who did what to which entity, with what outcome.
package audit

import (
	"context"
	"time"

	"github.com/linnemanlabs/go-core/log"
)

// Actions recorded by the pipeline.
const (
	ActionClaimSubmitted     = "claim.submitted"
	ActionPolicyValidated    = "policy.validated"
	ActionDocumentUploaded   = "document.uploaded"
	ActionExtractionRun      = "extraction.performed"
	ActionFieldVerified      = "field.verified"
	ActionRiskAssessed       = "risk.assessed"
	ActionClaimTriaged       = "claim.triaged"
	ActionTriageOverridden   = "triage.overridden"
	ActionDescriptionUpdated = "claim.description_updated"
)

// Event is one immutable audit fact.
type Event struct {
	Actor      string         `json:"actor"`
	Action     string         `json:"action"`
	EntityType string         `json:"entity_type"`
	EntityID   string         `json:"entity_id"`
	Outcome    string         `json:"outcome"`
	Details    map[string]any `json:"details,omitempty"`
	At         time.Time      `json:"at"`
}

// Sink consumes audit events. Implementations must not mutate the event.
type Sink interface {
	Record(ctx context.Context, e Event) error
}

// LogSink writes audit events to the structured log. It is the default
// sink when no external audit transport is configured.
type LogSink struct {
	logger log.Logger
}

// NewLogSink returns a sink backed by the given logger.
func NewLogSink(logger log.Logger) *LogSink {
	if logger == nil {
		logger = log.Nop()
	}
	return &LogSink{logger: logger}
}

// Record emits the event as a structured log line.
func (s *LogSink) Record(ctx context.Context, e Event) error {
	s.logger.Info(ctx, "audit event",
		"audit.actor", e.Actor,
		"audit.action", e.Action,
		"audit.entity_type", e.EntityType,
		"audit.entity_id", e.EntityID,
		"audit.outcome", e.Outcome,
		"audit.details", e.Details,
		"audit.at", e.At.UTC().Format(time.RFC3339Nano),
	)
	return nil
}

// Fill stamps the event time if unset and defaults the outcome to "success".
func Fill(e Event) Event {
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}
	if e.Outcome == "" {
		e.Outcome = "success"
	}
	return e
}
