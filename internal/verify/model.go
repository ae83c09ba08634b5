// Package verify implements the human-verification gate. Every AI-extracted
// field must receive exactly one human decision before the claim can be
// risk-evaluated, and each decision leaves an immutable verification record.
package verify

import (
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/linnemanlabs/claimgate/internal/claim"
	"github.com/linnemanlabs/claimgate/internal/extract"
)

// Action is the reviewer's decision on one extracted field.
type Action string

const (
	// ActionAccepted confirms the extracted value as-is.
	ActionAccepted Action = "Accepted"

	// ActionCorrected replaces the extracted value with the reviewer's.
	ActionCorrected Action = "Corrected"

	// ActionRejected discards the extracted value entirely.
	ActionRejected Action = "Rejected"
)

// FieldStatus maps the action to the field's terminal verification status.
func (a Action) FieldStatus() (extract.VerificationStatus, error) {
	switch a {
	case ActionAccepted:
		return extract.StatusVerified, nil
	case ActionCorrected:
		return extract.StatusCorrected, nil
	case ActionRejected:
		return extract.StatusRejected, nil
	default:
		return "", claim.Errorf(claim.ErrValidation, "invalid verification action %q", a)
	}
}

// Record is one immutable verification fact: who decided what about one
// extracted field, and with what replacement value if corrected.
type Record struct {
	ID               string    `json:"id"`
	ExtractedFieldID string    `json:"extracted_field_id"`
	ClaimID          string    `json:"claim_id"`
	Action           Action    `json:"action"`
	OriginalValue    *string   `json:"original_value,omitempty"`
	CorrectedValue   *string   `json:"corrected_value,omitempty"`
	VerifiedBy       string    `json:"verified_by"`
	VerifiedAt       time.Time `json:"verified_at"`
	Notes            string    `json:"notes,omitempty"`
}

// NewRecord validates and constructs a verification record. A Corrected
// action requires a replacement value; the other actions must not carry one.
func NewRecord(field *extract.Field, action Action, correctedValue *string, verifiedBy, notes string) (*Record, error) {
	if field == nil {
		return nil, claim.Errorf(claim.ErrValidation, "extracted field is required")
	}
	if strings.TrimSpace(verifiedBy) == "" {
		return nil, claim.Errorf(claim.ErrValidation, "verifier identity is required")
	}
	if _, err := action.FieldStatus(); err != nil {
		return nil, err
	}
	switch action {
	case ActionCorrected:
		if correctedValue == nil || strings.TrimSpace(*correctedValue) == "" {
			return nil, claim.Errorf(claim.ErrValidation, "corrected value is required for a correction")
		}
	default:
		if correctedValue != nil {
			return nil, claim.Errorf(claim.ErrValidation, "corrected value is only allowed with action Corrected")
		}
	}
	return &Record{
		ID:               ulid.Make().String(),
		ExtractedFieldID: field.ID,
		ClaimID:          field.ClaimID,
		Action:           action,
		OriginalValue:    field.Value,
		CorrectedValue:   correctedValue,
		VerifiedBy:       verifiedBy,
		VerifiedAt:       time.Now().UTC(),
		Notes:            notes,
	}, nil
}

// EffectiveValue is the value downstream consumers should trust: the
// correction when one exists, the original otherwise. Rejected fields
// have no effective value.
func (r *Record) EffectiveValue() *string {
	if r.Action == ActionRejected {
		return nil
	}
	if r.Action == ActionCorrected {
		return r.CorrectedValue
	}
	return r.OriginalValue
}
