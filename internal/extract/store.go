package extract

import (
	"context"
	"io"
)

// Store is the persistence interface for extracted fields.
type Store interface {
	Insert(ctx context.Context, f *Field) error
	Get(ctx context.Context, id string) (*Field, error)
	ListByClaim(ctx context.Context, claimID string) ([]*Field, error)
	ListByDocument(ctx context.Context, documentID string) ([]*Field, error)
	UpdateStatus(ctx context.Context, id string, status VerificationStatus) error
}

// ContentStore reads stored document bytes by storage key.
type ContentStore interface {
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}
