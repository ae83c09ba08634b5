package pgstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/linnemanlabs/claimgate/internal/claim"
	"github.com/linnemanlabs/claimgate/internal/risk"
	"github.com/linnemanlabs/claimgate/internal/triage"
)

// AssessmentStore implements risk.Store.
type AssessmentStore struct {
	pool *pgxpool.Pool
}

const assessmentColumns = `id, claim_id, risk_level, rule_signals, ai_observations,
	overall_score, model, created_at`

// Insert adds an assessment snapshot. Assessments are append-only; there
// is no update path.
func (s *AssessmentStore) Insert(ctx context.Context, a *risk.Assessment) error {
	ctx, span := startSpan(ctx, "pgstore.AssessmentStore.Insert", "INSERT")
	defer span.End()

	signals, err := json.Marshal(a.Signals)
	if err != nil {
		return spanErr(span, fmt.Errorf("marshal rule signals: %w", err))
	}
	observations, err := json.Marshal(a.Observations)
	if err != nil {
		return spanErr(span, fmt.Errorf("marshal observations: %w", err))
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO risk_assessments (`+assessmentColumns+`) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		a.ID, a.ClaimID, string(a.Level), signals, observations, a.Score, a.Model, a.CreatedAt,
	)
	return spanErr(span, translateInsertErr(err, "risk assessment"))
}

// Get retrieves an assessment by id.
func (s *AssessmentStore) Get(ctx context.Context, id string) (*risk.Assessment, error) {
	ctx, span := startSpan(ctx, "pgstore.AssessmentStore.Get", "SELECT")
	defer span.End()

	a, err := scanAssessment(s.pool.QueryRow(ctx,
		`SELECT `+assessmentColumns+` FROM risk_assessments WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, spanErr(span, claim.Errorf(claim.ErrNotFound, "risk assessment %s", id))
		}
		return nil, spanErr(span, err)
	}
	return a, nil
}

// Latest retrieves the claim's most recent assessment.
func (s *AssessmentStore) Latest(ctx context.Context, claimID string) (*risk.Assessment, error) {
	ctx, span := startSpan(ctx, "pgstore.AssessmentStore.Latest", "SELECT")
	defer span.End()

	a, err := scanAssessment(s.pool.QueryRow(ctx,
		`SELECT `+assessmentColumns+` FROM risk_assessments
		 WHERE claim_id = $1 ORDER BY created_at DESC, id DESC LIMIT 1`, claimID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, spanErr(span, claim.Errorf(claim.ErrNotFound, "risk assessment for claim %s", claimID))
		}
		return nil, spanErr(span, err)
	}
	return a, nil
}

// ListByClaim lists a claim's assessments in creation order.
func (s *AssessmentStore) ListByClaim(ctx context.Context, claimID string) ([]*risk.Assessment, error) {
	ctx, span := startSpan(ctx, "pgstore.AssessmentStore.ListByClaim", "SELECT")
	defer span.End()

	rows, err := s.pool.Query(ctx,
		`SELECT `+assessmentColumns+` FROM risk_assessments
		 WHERE claim_id = $1 ORDER BY created_at, id`, claimID)
	if err != nil {
		return nil, spanErr(span, fmt.Errorf("query risk assessments: %w", err))
	}
	defer rows.Close()

	var assessments []*risk.Assessment
	for rows.Next() {
		a, err := scanAssessment(rows)
		if err != nil {
			return nil, spanErr(span, err)
		}
		assessments = append(assessments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, spanErr(span, fmt.Errorf("iterate risk assessments: %w", err))
	}
	return assessments, nil
}

func scanAssessment(row pgx.Row) (*risk.Assessment, error) {
	var (
		a            risk.Assessment
		level        string
		signals      []byte
		observations []byte
	)
	err := row.Scan(&a.ID, &a.ClaimID, &level, &signals, &observations,
		&a.Score, &a.Model, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	a.Level = risk.Level(level)
	if err := json.Unmarshal(signals, &a.Signals); err != nil {
		return nil, fmt.Errorf("unmarshal rule signals: %w", err)
	}
	if err := json.Unmarshal(observations, &a.Observations); err != nil {
		return nil, fmt.Errorf("unmarshal observations: %w", err)
	}
	return &a, nil
}

// DecisionStore implements triage.Store.
type DecisionStore struct {
	pool *pgxpool.Pool
}

const decisionColumns = `id, claim_id, risk_assessment_id, queue, is_override,
	override_by, override_reason, created_at`

// Insert adds a decision row. A second computed decision for the same
// (claim, assessment) pair fails with ErrConflict through the partial
// unique index.
func (s *DecisionStore) Insert(ctx context.Context, d *triage.Decision) error {
	ctx, span := startSpan(ctx, "pgstore.DecisionStore.Insert", "INSERT")
	defer span.End()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO triage_decisions (`+decisionColumns+`) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		d.ID, d.ClaimID, d.RiskAssessmentID, string(d.Queue), d.IsOverride,
		d.OverrideBy, d.OverrideReason, d.CreatedAt,
	)
	return spanErr(span, translateInsertErr(err, "triage decision"))
}

// Latest retrieves the claim's most recent decision, override or not.
func (s *DecisionStore) Latest(ctx context.Context, claimID string) (*triage.Decision, error) {
	ctx, span := startSpan(ctx, "pgstore.DecisionStore.Latest", "SELECT")
	defer span.End()

	d, err := scanDecision(s.pool.QueryRow(ctx,
		`SELECT `+decisionColumns+` FROM triage_decisions
		 WHERE claim_id = $1 ORDER BY created_at DESC, id DESC LIMIT 1`, claimID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, spanErr(span, claim.Errorf(claim.ErrNotFound, "triage decision for claim %s", claimID))
		}
		return nil, spanErr(span, err)
	}
	return d, nil
}

// ListByClaim lists a claim's decisions in creation order.
func (s *DecisionStore) ListByClaim(ctx context.Context, claimID string) ([]*triage.Decision, error) {
	ctx, span := startSpan(ctx, "pgstore.DecisionStore.ListByClaim", "SELECT")
	defer span.End()

	decisions, err := s.list(ctx,
		`SELECT `+decisionColumns+` FROM triage_decisions WHERE claim_id = $1 ORDER BY created_at, id`,
		claimID)
	return decisions, spanErr(span, err)
}

// ListByQueue lists decisions pointing at a queue, newest first.
func (s *DecisionStore) ListByQueue(ctx context.Context, queue triage.Queue) ([]*triage.Decision, error) {
	ctx, span := startSpan(ctx, "pgstore.DecisionStore.ListByQueue", "SELECT")
	defer span.End()

	decisions, err := s.list(ctx,
		`SELECT `+decisionColumns+` FROM triage_decisions WHERE queue = $1 ORDER BY created_at DESC, id DESC`,
		string(queue))
	return decisions, spanErr(span, err)
}

// GetComputed retrieves the non-override decision for a (claim,
// assessment) pair.
func (s *DecisionStore) GetComputed(ctx context.Context, claimID, assessmentID string) (*triage.Decision, error) {
	ctx, span := startSpan(ctx, "pgstore.DecisionStore.GetComputed", "SELECT")
	defer span.End()

	d, err := scanDecision(s.pool.QueryRow(ctx,
		`SELECT `+decisionColumns+` FROM triage_decisions
		 WHERE claim_id = $1 AND risk_assessment_id = $2 AND NOT is_override`,
		claimID, assessmentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, spanErr(span, claim.Errorf(claim.ErrNotFound,
				"computed triage decision for claim %s assessment %s", claimID, assessmentID))
		}
		return nil, spanErr(span, err)
	}
	return d, nil
}

func (s *DecisionStore) list(ctx context.Context, query string, arg any) ([]*triage.Decision, error) {
	rows, err := s.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("query triage decisions: %w", err)
	}
	defer rows.Close()

	var decisions []*triage.Decision
	for rows.Next() {
		d, err := scanDecision(rows)
		if err != nil {
			return nil, err
		}
		decisions = append(decisions, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate triage decisions: %w", err)
	}
	return decisions, nil
}

func scanDecision(row pgx.Row) (*triage.Decision, error) {
	var (
		d     triage.Decision
		queue string
	)
	err := row.Scan(&d.ID, &d.ClaimID, &d.RiskAssessmentID, &queue, &d.IsOverride,
		&d.OverrideBy, &d.OverrideReason, &d.CreatedAt)
	if err != nil {
		return nil, err
	}
	d.Queue = triage.Queue(queue)
	return &d, nil
}
