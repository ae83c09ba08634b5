package claim

import (
	"context"
	"time"
)

// StaticPolicyValidator stands in for the external policy system. It
// issues an active snapshot covering one year either side of the loss
// date with a fixed covered-type list.
//
// TODO: replace with the policy-admin API client once its claims-read
// endpoint ships; the Snapshot signature is already shaped for it.
type StaticPolicyValidator struct {
	CoveredLossTypes []string
}

// NewStaticPolicyValidator returns a validator with the default covered types.
func NewStaticPolicyValidator() *StaticPolicyValidator {
	return &StaticPolicyValidator{
		CoveredLossTypes: []string{"PropertyDamage", "Liability", "BusinessInterruption"},
	}
}

// Snapshot fabricates a point-in-time coverage record for the policy.
func (v *StaticPolicyValidator) Snapshot(_ context.Context, claimID, policyNumber string, lossDate time.Time) (*PolicySnapshot, error) {
	return NewPolicySnapshot(
		claimID,
		policyNumber,
		lossDate.AddDate(-1, 0, 0),
		lossDate.AddDate(1, 0, 0),
		CoverageActive,
		v.CoveredLossTypes,
	)
}
