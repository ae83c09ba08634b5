package claim

import (
	"context"
	"io"
	"time"
)

// Store is the persistence interface for the claim aggregate.
//
// Get and GetByNumber return ErrNotFound when no row matches. Update is
// the versioned write: it compares the claim's Version against the stored
// row and fails with ErrConflict when stale, incrementing the version on
// success. NextSequence issues the monotonic counter behind claim numbers.
type Store interface {
	Insert(ctx context.Context, c *Claim) error
	Get(ctx context.Context, id string) (*Claim, error)
	GetByNumber(ctx context.Context, number string) (*Claim, error)
	Update(ctx context.Context, c *Claim) error
	UpdateStatus(ctx context.Context, id string, status Status, updatedAt time.Time) error
	NextSequence(ctx context.Context) (int64, error)
}

// SnapshotStore persists policy snapshots. One snapshot per claim,
// created at submission, never updated.
type SnapshotStore interface {
	Insert(ctx context.Context, s *PolicySnapshot) error
	GetByClaim(ctx context.Context, claimID string) (*PolicySnapshot, error)
}

// DocumentStore persists document metadata rows.
type DocumentStore interface {
	Insert(ctx context.Context, d *Document) error
	Get(ctx context.Context, id string) (*Document, error)
	ListByClaim(ctx context.Context, claimID string) ([]*Document, error)
}

// PolicyValidator checks a policy against an external policy system and
// returns the point-in-time snapshot recorded with the claim.
type PolicyValidator interface {
	Snapshot(ctx context.Context, claimID, policyNumber string, lossDate time.Time) (*PolicySnapshot, error)
}

// BlobStore writes document content. Reading lives on the extraction
// side; submission only ever stores bytes.
type BlobStore interface {
	Save(ctx context.Context, key string, data io.Reader) error
}
