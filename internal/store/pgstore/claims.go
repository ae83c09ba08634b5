package pgstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/linnemanlabs/claimgate/internal/claim"
)

// ClaimStore implements claim.Store.
type ClaimStore struct {
	pool *pgxpool.Pool
}

const claimColumns = `id, claim_number, policy_number, loss_date, loss_type, loss_location,
	loss_description, status, submitted_by, created_at, updated_at, version`

// Insert adds a new claim row.
func (s *ClaimStore) Insert(ctx context.Context, c *claim.Claim) error {
	ctx, span := startSpan(ctx, "pgstore.ClaimStore.Insert", "INSERT")
	defer span.End()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO claims (`+claimColumns+`) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		c.ID, c.Number, c.PolicyNumber, c.LossDate, c.LossType, c.LossLocation,
		c.LossDescription, string(c.Status), c.SubmittedBy, c.CreatedAt, c.UpdatedAt, c.Version,
	)
	return spanErr(span, translateInsertErr(err, "claim"))
}

// Get retrieves a claim by system id.
func (s *ClaimStore) Get(ctx context.Context, id string) (*claim.Claim, error) {
	ctx, span := startSpan(ctx, "pgstore.ClaimStore.Get", "SELECT")
	defer span.End()

	c, err := scanClaim(s.pool.QueryRow(ctx,
		`SELECT `+claimColumns+` FROM claims WHERE id = $1`, id))
	if err != nil {
		return nil, spanErr(span, claimNotFound(err, id))
	}
	return c, nil
}

// GetByNumber retrieves a claim by business claim number.
func (s *ClaimStore) GetByNumber(ctx context.Context, number string) (*claim.Claim, error) {
	ctx, span := startSpan(ctx, "pgstore.ClaimStore.GetByNumber", "SELECT")
	defer span.End()

	c, err := scanClaim(s.pool.QueryRow(ctx,
		`SELECT `+claimColumns+` FROM claims WHERE claim_number = $1`, number))
	if err != nil {
		return nil, spanErr(span, claimNotFound(err, number))
	}
	return c, nil
}

// Update writes the claim through the optimistic-concurrency check: the
// row must still carry the version the caller read, and the write bumps
// it. A stale version fails with ErrConflict.
func (s *ClaimStore) Update(ctx context.Context, c *claim.Claim) error {
	ctx, span := startSpan(ctx, "pgstore.ClaimStore.Update", "UPDATE")
	defer span.End()

	tag, err := s.pool.Exec(ctx,
		`UPDATE claims SET
			loss_description = $1, status = $2, updated_at = $3, version = version + 1
		 WHERE id = $4 AND version = $5`,
		c.LossDescription, string(c.Status), c.UpdatedAt, c.ID, c.Version,
	)
	if err != nil {
		return spanErr(span, fmt.Errorf("update claim: %w", err))
	}
	if tag.RowsAffected() == 0 {
		return spanErr(span, claim.Errorf(claim.ErrConflict,
			"claim %s version %d is stale", c.ID, c.Version))
	}
	c.Version++
	return nil
}

// UpdateStatus writes only the status column, bypassing the version
// check. Used for system-driven transitions where the caller holds no
// stale data worth protecting.
func (s *ClaimStore) UpdateStatus(ctx context.Context, id string, status claim.Status, updatedAt time.Time) error {
	ctx, span := startSpan(ctx, "pgstore.ClaimStore.UpdateStatus", "UPDATE")
	defer span.End()

	tag, err := s.pool.Exec(ctx,
		`UPDATE claims SET status = $1, updated_at = $2, version = version + 1 WHERE id = $3`,
		string(status), updatedAt, id,
	)
	if err != nil {
		return spanErr(span, fmt.Errorf("update claim status: %w", err))
	}
	if tag.RowsAffected() == 0 {
		return spanErr(span, claim.Errorf(claim.ErrNotFound, "claim %s", id))
	}
	return nil
}

// NextSequence issues the next value of the claim-number counter.
func (s *ClaimStore) NextSequence(ctx context.Context) (int64, error) {
	ctx, span := startSpan(ctx, "pgstore.ClaimStore.NextSequence", "SELECT")
	defer span.End()

	var seq int64
	if err := s.pool.QueryRow(ctx, `SELECT nextval('claim_sequence')`).Scan(&seq); err != nil {
		return 0, spanErr(span, fmt.Errorf("claim sequence: %w", err))
	}
	return seq, nil
}

// SnapshotStore implements claim.SnapshotStore.
type SnapshotStore struct {
	pool *pgxpool.Pool
}

// Insert adds the policy snapshot recorded at submission.
func (s *SnapshotStore) Insert(ctx context.Context, p *claim.PolicySnapshot) error {
	ctx, span := startSpan(ctx, "pgstore.SnapshotStore.Insert", "INSERT")
	defer span.End()

	types, err := json.Marshal(p.CoveredLossTypes)
	if err != nil {
		return spanErr(span, fmt.Errorf("marshal covered loss types: %w", err))
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO policy_snapshots (
			id, claim_id, policy_number, effective_date, expiration_date,
			coverage_status, covered_loss_types, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		p.ID, p.ClaimID, p.PolicyNumber, p.EffectiveDate, p.ExpirationDate,
		string(p.CoverageStatus), types, p.CreatedAt,
	)
	return spanErr(span, translateInsertErr(err, "policy snapshot"))
}

// GetByClaim retrieves the claim's policy snapshot.
func (s *SnapshotStore) GetByClaim(ctx context.Context, claimID string) (*claim.PolicySnapshot, error) {
	ctx, span := startSpan(ctx, "pgstore.SnapshotStore.GetByClaim", "SELECT")
	defer span.End()

	var (
		p      claim.PolicySnapshot
		status string
		types  []byte
	)
	err := s.pool.QueryRow(ctx,
		`SELECT id, claim_id, policy_number, effective_date, expiration_date,
			coverage_status, covered_loss_types, created_at
		 FROM policy_snapshots WHERE claim_id = $1`, claimID,
	).Scan(&p.ID, &p.ClaimID, &p.PolicyNumber, &p.EffectiveDate, &p.ExpirationDate,
		&status, &types, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, spanErr(span, claim.Errorf(claim.ErrNotFound, "policy snapshot for claim %s", claimID))
		}
		return nil, spanErr(span, fmt.Errorf("scan policy snapshot: %w", err))
	}
	p.CoverageStatus = claim.CoverageStatus(status)
	if err := json.Unmarshal(types, &p.CoveredLossTypes); err != nil {
		return nil, spanErr(span, fmt.Errorf("unmarshal covered loss types: %w", err))
	}
	return &p, nil
}

// DocumentStore implements claim.DocumentStore.
type DocumentStore struct {
	pool *pgxpool.Pool
}

const documentColumns = `id, claim_id, file_name, document_type, storage_key,
	file_size_bytes, content_type, status, uploaded_by, uploaded_at`

// Insert adds a document metadata row.
func (s *DocumentStore) Insert(ctx context.Context, d *claim.Document) error {
	ctx, span := startSpan(ctx, "pgstore.DocumentStore.Insert", "INSERT")
	defer span.End()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO documents (`+documentColumns+`) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		d.ID, d.ClaimID, d.FileName, d.DocumentType, d.StorageKey,
		d.FileSizeBytes, d.ContentType, string(d.Status), d.UploadedBy, d.UploadedAt,
	)
	return spanErr(span, translateInsertErr(err, "document"))
}

// Get retrieves a document by id.
func (s *DocumentStore) Get(ctx context.Context, id string) (*claim.Document, error) {
	ctx, span := startSpan(ctx, "pgstore.DocumentStore.Get", "SELECT")
	defer span.End()

	d, err := scanDocument(s.pool.QueryRow(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, spanErr(span, claim.Errorf(claim.ErrNotFound, "document %s", id))
		}
		return nil, spanErr(span, fmt.Errorf("scan document: %w", err))
	}
	return d, nil
}

// ListByClaim lists a claim's documents in upload order.
func (s *DocumentStore) ListByClaim(ctx context.Context, claimID string) ([]*claim.Document, error) {
	ctx, span := startSpan(ctx, "pgstore.DocumentStore.ListByClaim", "SELECT")
	defer span.End()

	rows, err := s.pool.Query(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE claim_id = $1 ORDER BY uploaded_at`, claimID)
	if err != nil {
		return nil, spanErr(span, fmt.Errorf("query documents: %w", err))
	}
	defer rows.Close()

	var docs []*claim.Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, spanErr(span, fmt.Errorf("scan document: %w", err))
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, spanErr(span, fmt.Errorf("iterate documents: %w", err))
	}
	return docs, nil
}

func scanClaim(row pgx.Row) (*claim.Claim, error) {
	var (
		c      claim.Claim
		status string
	)
	err := row.Scan(&c.ID, &c.Number, &c.PolicyNumber, &c.LossDate, &c.LossType, &c.LossLocation,
		&c.LossDescription, &status, &c.SubmittedBy, &c.CreatedAt, &c.UpdatedAt, &c.Version)
	if err != nil {
		return nil, err
	}
	c.Status = claim.Status(status)
	return &c, nil
}

func scanDocument(row pgx.Row) (*claim.Document, error) {
	var (
		d      claim.Document
		status string
	)
	err := row.Scan(&d.ID, &d.ClaimID, &d.FileName, &d.DocumentType, &d.StorageKey,
		&d.FileSizeBytes, &d.ContentType, &status, &d.UploadedBy, &d.UploadedAt)
	if err != nil {
		return nil, err
	}
	d.Status = claim.DocumentStatus(status)
	return &d, nil
}

func claimNotFound(err error, ref string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return claim.Errorf(claim.ErrNotFound, "claim %s", ref)
	}
	return fmt.Errorf("scan claim: %w", err)
}
