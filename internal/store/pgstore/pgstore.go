// Package pgstore provides the PostgreSQL implementations of the
// claimgate store interfaces, one sub-store per aggregate over a shared
// connection pool.
package pgstore

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/linnemanlabs/claimgate/internal/claim"
)

var tracer = otel.Tracer("github.com/linnemanlabs/claimgate/internal/store/pgstore")

//go:embed schema.sql
var schema string

const pgUniqueViolation = "23505"

// Stores bundles every per-aggregate store over one pool.
type Stores struct {
	Claims      *ClaimStore
	Snapshots   *SnapshotStore
	Documents   *DocumentStore
	Fields      *FieldStore
	Records     *RecordStore
	Assessments *AssessmentStore
	Decisions   *DecisionStore
}

// New applies the schema and returns ready stores.
func New(ctx context.Context, pool *pgxpool.Pool) (*Stores, error) {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Stores{
		Claims:      &ClaimStore{pool: pool},
		Snapshots:   &SnapshotStore{pool: pool},
		Documents:   &DocumentStore{pool: pool},
		Fields:      &FieldStore{pool: pool},
		Records:     &RecordStore{pool: pool},
		Assessments: &AssessmentStore{pool: pool},
		Decisions:   &DecisionStore{pool: pool},
	}, nil
}

// startSpan opens a db span with the standard attribute shape.
func startSpan(ctx context.Context, name, op string) (context.Context, trace.Span) {
	return tracer.Start(ctx, name, trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation.name", op),
	))
}

func spanErr(span trace.Span, err error) error {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

// translateInsertErr maps unique violations to ErrConflict so callers
// see duplicate inserts the same way they see stale-version writes.
func translateInsertErr(err error, what string) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return claim.WrapError(claim.ErrConflict, "insert "+what, err)
	}
	return fmt.Errorf("insert %s: %w", what, err)
}
