package claim

import (
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// CoverageStatus is the policy's standing at snapshot time.
type CoverageStatus string

const (
	CoverageActive   CoverageStatus = "Active"
	CoverageLapsed   CoverageStatus = "Lapsed"
	CoverageCanceled CoverageStatus = "Canceled"
)

// PolicySnapshot is an immutable point-in-time record of policy coverage,
// created once at submission and never updated. Rule evaluation reads the
// snapshot, never the live policy system, so an assessment stays
// explainable after the policy changes.
type PolicySnapshot struct {
	ID               string         `json:"id"`
	ClaimID          string         `json:"claim_id"`
	PolicyNumber     string         `json:"policy_number"`
	EffectiveDate    time.Time      `json:"effective_date"`
	ExpirationDate   time.Time      `json:"expiration_date"`
	CoverageStatus   CoverageStatus `json:"coverage_status"`
	CoveredLossTypes []string       `json:"covered_loss_types"`
	CreatedAt        time.Time      `json:"created_at"`
}

// NewPolicySnapshot validates and constructs a snapshot.
func NewPolicySnapshot(claimID, policyNumber string, effective, expiration time.Time, status CoverageStatus, coveredLossTypes []string) (*PolicySnapshot, error) {
	if claimID == "" {
		return nil, Errorf(ErrValidation, "claim id is required")
	}
	if !effective.Before(expiration) {
		return nil, Errorf(ErrValidation, "policy effective date must be before expiration date")
	}
	if len(coveredLossTypes) == 0 {
		return nil, Errorf(ErrValidation, "covered loss types are required")
	}
	return &PolicySnapshot{
		ID:               ulid.Make().String(),
		ClaimID:          claimID,
		PolicyNumber:     policyNumber,
		EffectiveDate:    truncateToDay(effective),
		ExpirationDate:   truncateToDay(expiration),
		CoverageStatus:   status,
		CoveredLossTypes: coveredLossTypes,
		CreatedAt:        time.Now().UTC(),
	}, nil
}

// InForceOn reports whether the policy was active and within its coverage
// window on the given date.
func (p *PolicySnapshot) InForceOn(date time.Time) bool {
	d := truncateToDay(date)
	return p.CoverageStatus == CoverageActive &&
		!d.Before(p.EffectiveDate) &&
		!d.After(p.ExpirationDate)
}

// WithinCoverageWindow reports whether the date falls inside the policy's
// effective-to-expiration window, ignoring coverage status.
func (p *PolicySnapshot) WithinCoverageWindow(date time.Time) bool {
	d := truncateToDay(date)
	return !d.Before(p.EffectiveDate) && !d.After(p.ExpirationDate)
}

// Covers reports whether the given loss type is among the covered types.
// Matching is case-insensitive.
func (p *PolicySnapshot) Covers(lossType string) bool {
	for _, t := range p.CoveredLossTypes {
		if strings.EqualFold(t, lossType) {
			return true
		}
	}
	return false
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
