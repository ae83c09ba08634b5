package verify

import (
	"context"
	"fmt"

	"github.com/linnemanlabs/go-core/log"

	"github.com/linnemanlabs/claimgate/internal/audit"
	"github.com/linnemanlabs/claimgate/internal/claim"
	"github.com/linnemanlabs/claimgate/internal/extract"
)

// VerifyRequest carries one field decision.
type VerifyRequest struct {
	FieldID        string  `json:"field_id"`
	Action         Action  `json:"action"`
	CorrectedValue *string `json:"corrected_value,omitempty"`
	VerifiedBy     string  `json:"verified_by"`
	Notes          string  `json:"notes,omitempty"`
}

// Service applies verification decisions and advances the claim to
// Verified once every extracted field has one.
type Service struct {
	claims  claim.Store
	fields  extract.Store
	records RecordStore
	auditor audit.Sink
	logger  log.Logger
}

// NewService creates a verification service.
func NewService(claims claim.Store, fields extract.Store, records RecordStore, auditor audit.Sink, logger log.Logger) *Service {
	if logger == nil {
		logger = log.Nop()
	}
	return &Service{
		claims:  claims,
		fields:  fields,
		records: records,
		auditor: auditor,
		logger:  logger,
	}
}

// VerifyField records a human decision on one extracted field. The field
// transitions exactly once; a second decision fails with ErrInvalidState,
// and a concurrent duplicate surfaces as ErrConflict from the record
// store's uniqueness guarantee. When the decision completes the claim's
// field set, the claim advances Validated -> Verified.
func (s *Service) VerifyField(ctx context.Context, req VerifyRequest) (*Record, error) {
	field, err := s.fields.Get(ctx, req.FieldID)
	if err != nil {
		return nil, err
	}
	c, err := s.claims.Get(ctx, field.ClaimID)
	if err != nil {
		return nil, err
	}

	rec, err := NewRecord(field, req.Action, req.CorrectedValue, req.VerifiedBy, req.Notes)
	if err != nil {
		return nil, err
	}
	status, err := req.Action.FieldStatus()
	if err != nil {
		return nil, err
	}
	if err := field.Decide(status); err != nil {
		return nil, err
	}

	if err := s.records.Insert(ctx, rec); err != nil {
		return nil, fmt.Errorf("insert verification record: %w", err)
	}
	if err := s.fields.UpdateStatus(ctx, field.ID, field.Status); err != nil {
		return nil, fmt.Errorf("update field status: %w", err)
	}

	s.record(ctx, audit.Event{
		Actor:      req.VerifiedBy,
		Action:     audit.ActionFieldVerified,
		EntityType: "extracted_field",
		EntityID:   field.ID,
		Details: map[string]any{
			"claim_id":   c.ID,
			"field_name": field.Name,
			"action":     string(req.Action),
		},
	})

	if err := s.advanceIfComplete(ctx, c); err != nil {
		return nil, err
	}
	return rec, nil
}

// RecordsByClaim lists a claim's verification history.
func (s *Service) RecordsByClaim(ctx context.Context, claimID string) ([]*Record, error) {
	if _, err := s.claims.Get(ctx, claimID); err != nil {
		return nil, err
	}
	return s.records.ListByClaim(ctx, claimID)
}

// advanceIfComplete moves a Validated claim to Verified when its last
// pending field has been decided. Claims in other states are untouched;
// a claim still in Submitted stays put no matter how many fields are
// decided, since the policy gate comes first.
func (s *Service) advanceIfComplete(ctx context.Context, c *claim.Claim) error {
	if c.Status != claim.StatusValidated {
		return nil
	}
	fields, err := s.fields.ListByClaim(ctx, c.ID)
	if err != nil {
		return err
	}
	if len(fields) == 0 {
		return nil
	}
	for _, f := range fields {
		if !f.Status.Decided() {
			return nil
		}
	}
	if err := c.MarkVerified(); err != nil {
		return err
	}
	if err := s.claims.Update(ctx, c); err != nil {
		return fmt.Errorf("mark verified: %w", err)
	}
	s.logger.Info(ctx, "all fields decided, claim verified",
		"claim_id", c.ID,
		"claim_number", c.Number,
		"field_count", len(fields),
	)
	return nil
}

func (s *Service) record(ctx context.Context, e audit.Event) {
	if s.auditor == nil {
		return
	}
	if err := s.auditor.Record(ctx, audit.Fill(e)); err != nil {
		s.logger.Error(ctx, err, "audit record failed", "action", e.Action, "entity_id", e.EntityID)
	}
}
