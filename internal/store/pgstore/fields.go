package pgstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/linnemanlabs/claimgate/internal/claim"
	"github.com/linnemanlabs/claimgate/internal/extract"
	"github.com/linnemanlabs/claimgate/internal/verify"
)

// FieldStore implements extract.Store.
type FieldStore struct {
	pool *pgxpool.Pool
}

const fieldColumns = `id, claim_id, document_id, field_name, field_value, confidence_score,
	verification_status, extracted_at, extracted_by_model, system_prompt_version,
	user_prompt_version, schema_version`

// Insert adds an extracted field row. A duplicate (document, field name)
// pair fails with ErrConflict.
func (s *FieldStore) Insert(ctx context.Context, f *extract.Field) error {
	ctx, span := startSpan(ctx, "pgstore.FieldStore.Insert", "INSERT")
	defer span.End()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO extracted_fields (`+fieldColumns+`) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		f.ID, f.ClaimID, f.DocumentID, f.Name, f.Value, f.Confidence,
		string(f.Status), f.ExtractedAt, f.ExtractedBy, f.SystemPromptVer,
		f.UserPromptVer, f.SchemaVer,
	)
	return spanErr(span, translateInsertErr(err, "extracted field"))
}

// Get retrieves a field by id.
func (s *FieldStore) Get(ctx context.Context, id string) (*extract.Field, error) {
	ctx, span := startSpan(ctx, "pgstore.FieldStore.Get", "SELECT")
	defer span.End()

	f, err := scanField(s.pool.QueryRow(ctx,
		`SELECT `+fieldColumns+` FROM extracted_fields WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, spanErr(span, claim.Errorf(claim.ErrNotFound, "extracted field %s", id))
		}
		return nil, spanErr(span, fmt.Errorf("scan extracted field: %w", err))
	}
	return f, nil
}

// ListByClaim lists a claim's extracted fields in extraction order.
func (s *FieldStore) ListByClaim(ctx context.Context, claimID string) ([]*extract.Field, error) {
	ctx, span := startSpan(ctx, "pgstore.FieldStore.ListByClaim", "SELECT")
	defer span.End()

	fields, err := s.list(ctx,
		`SELECT `+fieldColumns+` FROM extracted_fields WHERE claim_id = $1 ORDER BY extracted_at, field_name`,
		claimID)
	return fields, spanErr(span, err)
}

// ListByDocument lists a document's extracted fields.
func (s *FieldStore) ListByDocument(ctx context.Context, documentID string) ([]*extract.Field, error) {
	ctx, span := startSpan(ctx, "pgstore.FieldStore.ListByDocument", "SELECT")
	defer span.End()

	fields, err := s.list(ctx,
		`SELECT `+fieldColumns+` FROM extracted_fields WHERE document_id = $1 ORDER BY extracted_at, field_name`,
		documentID)
	return fields, spanErr(span, err)
}

// UpdateStatus writes the field's single verification transition.
func (s *FieldStore) UpdateStatus(ctx context.Context, id string, status extract.VerificationStatus) error {
	ctx, span := startSpan(ctx, "pgstore.FieldStore.UpdateStatus", "UPDATE")
	defer span.End()

	tag, err := s.pool.Exec(ctx,
		`UPDATE extracted_fields SET verification_status = $1 WHERE id = $2`,
		string(status), id)
	if err != nil {
		return spanErr(span, fmt.Errorf("update field status: %w", err))
	}
	if tag.RowsAffected() == 0 {
		return spanErr(span, claim.Errorf(claim.ErrNotFound, "extracted field %s", id))
	}
	return nil
}

func (s *FieldStore) list(ctx context.Context, query, arg string) ([]*extract.Field, error) {
	rows, err := s.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("query extracted fields: %w", err)
	}
	defer rows.Close()

	var fields []*extract.Field
	for rows.Next() {
		f, err := scanField(rows)
		if err != nil {
			return nil, fmt.Errorf("scan extracted field: %w", err)
		}
		fields = append(fields, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate extracted fields: %w", err)
	}
	return fields, nil
}

func scanField(row pgx.Row) (*extract.Field, error) {
	var (
		f      extract.Field
		status string
	)
	err := row.Scan(&f.ID, &f.ClaimID, &f.DocumentID, &f.Name, &f.Value, &f.Confidence,
		&status, &f.ExtractedAt, &f.ExtractedBy, &f.SystemPromptVer,
		&f.UserPromptVer, &f.SchemaVer)
	if err != nil {
		return nil, err
	}
	f.Status = extract.VerificationStatus(status)
	return &f, nil
}

// RecordStore implements verify.RecordStore.
type RecordStore struct {
	pool *pgxpool.Pool
}

const recordColumns = `id, extracted_field_id, claim_id, action, original_value,
	corrected_value, verified_by, verified_at, notes`

// Insert adds a verification record. A second record for the same field
// fails with ErrConflict through the unique constraint.
func (s *RecordStore) Insert(ctx context.Context, r *verify.Record) error {
	ctx, span := startSpan(ctx, "pgstore.RecordStore.Insert", "INSERT")
	defer span.End()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO verification_records (`+recordColumns+`) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		r.ID, r.ExtractedFieldID, r.ClaimID, string(r.Action), r.OriginalValue,
		r.CorrectedValue, r.VerifiedBy, r.VerifiedAt, r.Notes,
	)
	return spanErr(span, translateInsertErr(err, "verification record"))
}

// GetByField retrieves the record for one extracted field.
func (s *RecordStore) GetByField(ctx context.Context, extractedFieldID string) (*verify.Record, error) {
	ctx, span := startSpan(ctx, "pgstore.RecordStore.GetByField", "SELECT")
	defer span.End()

	r, err := scanRecord(s.pool.QueryRow(ctx,
		`SELECT `+recordColumns+` FROM verification_records WHERE extracted_field_id = $1`,
		extractedFieldID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, spanErr(span, claim.Errorf(claim.ErrNotFound, "verification record for field %s", extractedFieldID))
		}
		return nil, spanErr(span, fmt.Errorf("scan verification record: %w", err))
	}
	return r, nil
}

// ListByClaim lists a claim's verification records in decision order.
func (s *RecordStore) ListByClaim(ctx context.Context, claimID string) ([]*verify.Record, error) {
	ctx, span := startSpan(ctx, "pgstore.RecordStore.ListByClaim", "SELECT")
	defer span.End()

	rows, err := s.pool.Query(ctx,
		`SELECT `+recordColumns+` FROM verification_records WHERE claim_id = $1 ORDER BY verified_at`,
		claimID)
	if err != nil {
		return nil, spanErr(span, fmt.Errorf("query verification records: %w", err))
	}
	defer rows.Close()

	var records []*verify.Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, spanErr(span, fmt.Errorf("scan verification record: %w", err))
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, spanErr(span, fmt.Errorf("iterate verification records: %w", err))
	}
	return records, nil
}

func scanRecord(row pgx.Row) (*verify.Record, error) {
	var (
		r      verify.Record
		action string
	)
	err := row.Scan(&r.ID, &r.ExtractedFieldID, &r.ClaimID, &action, &r.OriginalValue,
		&r.CorrectedValue, &r.VerifiedBy, &r.VerifiedAt, &r.Notes)
	if err != nil {
		return nil, err
	}
	r.Action = verify.Action(action)
	return &r, nil
}
