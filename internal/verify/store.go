package verify

import "context"

// RecordStore persists verification records. Insert must fail with
// ErrConflict when a record already exists for the extracted field, which
// is what makes the one-decision-per-field invariant hold under
// concurrent reviewers.
type RecordStore interface {
	Insert(ctx context.Context, r *Record) error
	GetByField(ctx context.Context, extractedFieldID string) (*Record, error)
	ListByClaim(ctx context.Context, claimID string) ([]*Record, error)
}
