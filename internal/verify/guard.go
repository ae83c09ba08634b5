package verify

import (
	"context"
	"strings"

	"github.com/linnemanlabs/claimgate/internal/claim"
	"github.com/linnemanlabs/claimgate/internal/extract"
)

// Guard answers the question downstream stages keep asking: is this
// claim's extracted data fit to act on? It never writes anything.
type Guard struct {
	fields  extract.Store
	records RecordStore
}

// NewGuard creates a verification guard over the extracted-field and
// verification-record stores.
func NewGuard(fields extract.Store, records RecordStore) *Guard {
	return &Guard{fields: fields, records: records}
}

// EnsureUsable fails with ErrInvalidState unless the single field is fit
// for downstream use: Unverified means nobody looked yet, Rejected means
// a reviewer looked and discarded it.
func (g *Guard) EnsureUsable(f *extract.Field) error {
	switch f.Status {
	case extract.StatusVerified, extract.StatusCorrected:
		return nil
	case extract.StatusUnverified:
		return claim.Errorf(claim.ErrInvalidState, "field %s (%s) has not been verified", f.ID, f.Name)
	case extract.StatusRejected:
		return claim.Errorf(claim.ErrInvalidState, "field %s (%s) was rejected during verification", f.ID, f.Name)
	default:
		return claim.Errorf(claim.ErrValidation, "field %s has unknown verification status %q", f.ID, f.Status)
	}
}

// EnsureAllDecided fails with ErrInvalidState unless every extracted
// field on the claim has a verification decision, naming the undecided
// fields. Rejected counts as decided: a reviewer looked and discarded.
func (g *Guard) EnsureAllDecided(ctx context.Context, claimID string) error {
	fields, err := g.fields.ListByClaim(ctx, claimID)
	if err != nil {
		return err
	}
	var pending []string
	for _, f := range fields {
		if !f.Status.Decided() {
			pending = append(pending, f.Name)
		}
	}
	if len(pending) > 0 {
		return claim.Errorf(claim.ErrInvalidState,
			"claim %s has unverified fields: %s", claimID, strings.Join(pending, ", "))
	}
	return nil
}

// UsableFields returns the fields downstream evaluation may consume:
// Verified and Corrected only. Rejected and Unverified fields never
// reach the risk engine.
func (g *Guard) UsableFields(ctx context.Context, claimID string) ([]*extract.Field, error) {
	fields, err := g.fields.ListByClaim(ctx, claimID)
	if err != nil {
		return nil, err
	}
	usable := make([]*extract.Field, 0, len(fields))
	for _, f := range fields {
		if f.Status == extract.StatusVerified || f.Status == extract.StatusCorrected {
			usable = append(usable, f)
		}
	}
	return usable, nil
}

// VerifiedValues maps usable field names to their effective values,
// with reviewer corrections applied over the extracted originals.
func (g *Guard) VerifiedValues(ctx context.Context, claimID string) (map[string]string, error) {
	fields, err := g.UsableFields(ctx, claimID)
	if err != nil {
		return nil, err
	}
	values := make(map[string]string, len(fields))
	for _, f := range fields {
		if f.Status == extract.StatusCorrected {
			rec, err := g.records.GetByField(ctx, f.ID)
			if err != nil {
				return nil, err
			}
			if v := rec.EffectiveValue(); v != nil {
				values[f.Name] = *v
			}
			continue
		}
		if f.Value != nil {
			values[f.Name] = *f.Value
		}
	}
	return values, nil
}
