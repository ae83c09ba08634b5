// Package extract turns uploaded claim documents into ExtractedFields via
// an LLM and a versioned prompt/schema pair. Everything it produces is
// unverified by default: AI output is data, not truth.
package extract

import (
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/linnemanlabs/claimgate/internal/claim"
)

// VerificationStatus is the field's position in the human-review gate.
// A field transitions exactly once, from Unverified to a terminal state.
type VerificationStatus string

const (
	StatusUnverified VerificationStatus = "Unverified"
	StatusVerified   VerificationStatus = "Verified"
	StatusCorrected  VerificationStatus = "Corrected"
	StatusRejected   VerificationStatus = "Rejected"
)

// Decided reports whether the field has received its human decision.
func (s VerificationStatus) Decided() bool {
	return s != StatusUnverified
}

// Field is one AI-extracted datum from one document, with provenance.
// Created once by extraction; its status changes exactly once, at
// verification, and nothing else about it ever changes.
type Field struct {
	ID              string             `json:"id"`
	ClaimID         string             `json:"claim_id"`
	DocumentID      string             `json:"document_id"`
	Name            string             `json:"field_name"`
	Value           *string            `json:"field_value,omitempty"`
	Confidence      float64            `json:"confidence_score"`
	Status          VerificationStatus `json:"verification_status"`
	ExtractedAt     time.Time          `json:"extracted_at"`
	ExtractedBy     string             `json:"extracted_by_model"`
	SystemPromptVer string             `json:"system_prompt_version"`
	UserPromptVer   string             `json:"user_prompt_version"`
	SchemaVer       string             `json:"schema_version"`
}

// NewField validates and constructs an Unverified field.
func NewField(claimID, documentID, name string, value *string, confidence float64, model, systemPromptVer, userPromptVer, schemaVer string) (*Field, error) {
	switch {
	case claimID == "":
		return nil, claim.Errorf(claim.ErrValidation, "claim id is required")
	case documentID == "":
		return nil, claim.Errorf(claim.ErrValidation, "document id is required")
	case strings.TrimSpace(name) == "":
		return nil, claim.Errorf(claim.ErrValidation, "field name is required")
	case confidence < 0 || confidence > 1:
		return nil, claim.Errorf(claim.ErrValidation, "confidence score %v out of range [0,1]", confidence)
	}
	return &Field{
		ID:              ulid.Make().String(),
		ClaimID:         claimID,
		DocumentID:      documentID,
		Name:            name,
		Value:           value,
		Confidence:      confidence,
		Status:          StatusUnverified,
		ExtractedAt:     time.Now().UTC(),
		ExtractedBy:     model,
		SystemPromptVer: systemPromptVer,
		UserPromptVer:   userPromptVer,
		SchemaVer:       schemaVer,
	}, nil
}

// Decide applies the single status transition Unverified -> terminal.
func (f *Field) Decide(target VerificationStatus) error {
	if f.Status != StatusUnverified {
		return claim.Errorf(claim.ErrInvalidState,
			"field %s (%s) already has a verification decision: %s", f.ID, f.Name, f.Status)
	}
	switch target {
	case StatusVerified, StatusCorrected, StatusRejected:
	default:
		return claim.Errorf(claim.ErrValidation, "invalid verification target %q", target)
	}
	f.Status = target
	return nil
}
