package claim

import (
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// Status tracks where a claim is in its lifecycle. Transitions only
// advance: Submitted -> Validated -> Verified -> Triaged. There is no
// terminal failure state; a claim that never meets the next precondition
// simply stays where it is, awaiting human action.
type Status string

const (
	// StatusSubmitted means the FNOL has been received.
	StatusSubmitted Status = "Submitted"

	// StatusValidated means the policy was in force on the loss date.
	StatusValidated Status = "Validated"

	// StatusVerified means every extracted field has a human decision.
	StatusVerified Status = "Verified"

	// StatusTriaged means the claim has been routed to a review queue.
	StatusTriaged Status = "Triaged"
)

// Claim is a formal request for coverage of a specific, time-bound loss
// event. Identity and loss facts are immutable after creation; only the
// status, the loss description, and the audit timestamps change, and only
// through the transition methods below.
type Claim struct {
	ID              string    `json:"id"`
	Number          string    `json:"claim_number"`
	PolicyNumber    string    `json:"policy_number"`
	LossDate        time.Time `json:"loss_date"`
	LossType        string    `json:"loss_type"`
	LossLocation    string    `json:"loss_location"`
	LossDescription string    `json:"loss_description"`
	Status          Status    `json:"status"`
	SubmittedBy     string    `json:"submitted_by"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	// Version is the optimistic-concurrency token. The store rejects
	// writes carrying a stale version with ErrConflict.
	Version int64 `json:"version"`
}

// New validates the submission facts and returns a claim in Submitted state.
func New(number, policyNumber string, lossDate time.Time, lossType, lossLocation, lossDescription, submittedBy string) (*Claim, error) {
	if strings.TrimSpace(policyNumber) == "" {
		return nil, Errorf(ErrValidation, "policy number is required")
	}
	if lossDate.IsZero() {
		return nil, Errorf(ErrValidation, "loss date is required")
	}
	if lossDate.After(time.Now().UTC().Add(24 * time.Hour)) {
		return nil, Errorf(ErrValidation, "loss date cannot be in the future")
	}
	if strings.TrimSpace(lossType) == "" {
		return nil, Errorf(ErrValidation, "loss type is required")
	}
	if strings.TrimSpace(lossLocation) == "" {
		return nil, Errorf(ErrValidation, "loss location is required")
	}
	if strings.TrimSpace(lossDescription) == "" {
		return nil, Errorf(ErrValidation, "loss description is required")
	}
	if strings.TrimSpace(submittedBy) == "" {
		return nil, Errorf(ErrValidation, "submitter identity is required")
	}
	if _, err := ParseNumber(number); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Claim{
		ID:              ulid.Make().String(),
		Number:          number,
		PolicyNumber:    policyNumber,
		LossDate:        lossDate.UTC(),
		LossType:        lossType,
		LossLocation:    lossLocation,
		LossDescription: lossDescription,
		Status:          StatusSubmitted,
		SubmittedBy:     submittedBy,
		CreatedAt:       now,
		UpdatedAt:       now,
		Version:         1,
	}, nil
}

// MarkValidated advances Submitted -> Validated.
func (c *Claim) MarkValidated() error {
	if c.Status != StatusSubmitted {
		return Errorf(ErrInvalidState,
			"cannot transition claim %s from %s to Validated: claim must be Submitted", c.ID, c.Status)
	}
	c.Status = StatusValidated
	c.UpdatedAt = time.Now().UTC()
	return nil
}

// MarkVerified advances Validated -> Verified.
func (c *Claim) MarkVerified() error {
	if c.Status != StatusValidated {
		return Errorf(ErrInvalidState,
			"cannot transition claim %s from %s to Verified: claim must be Validated", c.ID, c.Status)
	}
	c.Status = StatusVerified
	c.UpdatedAt = time.Now().UTC()
	return nil
}

// MarkTriaged advances Verified -> Triaged. The triage router invokes
// this implicitly on the first successful routing.
func (c *Claim) MarkTriaged() error {
	if c.Status != StatusVerified {
		return Errorf(ErrInvalidState,
			"cannot transition claim %s from %s to Triaged: claim must be Verified", c.ID, c.Status)
	}
	c.Status = StatusTriaged
	c.UpdatedAt = time.Now().UTC()
	return nil
}

// UpdateLossDescription replaces the loss description. Permitted only in
// the Validated and Verified phases, where human review amends the narrative.
func (c *Claim) UpdateLossDescription(description string) error {
	if c.Status != StatusValidated && c.Status != StatusVerified {
		return Errorf(ErrInvalidState,
			"cannot update description of claim %s in %s state: claim must be Validated or Verified", c.ID, c.Status)
	}
	if strings.TrimSpace(description) == "" {
		return Errorf(ErrValidation, "loss description cannot be empty")
	}
	c.LossDescription = description
	c.UpdatedAt = time.Now().UTC()
	return nil
}
