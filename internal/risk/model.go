// Package risk implements hybrid risk evaluation: deterministic rule
// signals fused with advisory AI observations into an immutable
// RiskAssessment. Rules decide; the AI may only escalate, never reduce.
package risk

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
)

// Level is the routing signal produced by evaluation. It is never a
// fraud or coverage verdict.
type Level string

const (
	LevelLow      Level = "Low"
	LevelMedium   Level = "Medium"
	LevelHigh     Level = "High"
	LevelCritical Level = "Critical"
)

// Severity grades a triggered rule signal.
type Severity string

const (
	SeverityCritical Severity = "Critical"
	SeverityMajor    Severity = "Major"
	SeverityMinor    Severity = "Minor"
)

// Signal is one named deterministic rule outcome.
type Signal struct {
	RuleName    string   `json:"rule_name"`
	Triggered   bool     `json:"triggered"`
	Severity    Severity `json:"severity"`
	Description string   `json:"description"`
}

// Observation is one qualitative AI remark about the verified data.
// Observations carry no level, score, or recommendation.
type Observation struct {
	Category      string `json:"category"`
	Description   string `json:"description"`
	RelevantField string `json:"relevant_field,omitempty"`
}

// Observation categories the advisory pass may produce.
const (
	CategoryLanguageAmbiguity   = "language_ambiguity"
	CategoryUnusualPhrasing     = "unusual_phrasing"
	CategoryNarrativeConcern    = "narrative_concern"
	CategoryCompletenessConcern = "completeness_concern"
)

// Assessment is one immutable evaluation snapshot. A re-evaluation
// appends a new row; nothing ever updates an existing one.
type Assessment struct {
	ID           string        `json:"id"`
	ClaimID      string        `json:"claim_id"`
	Level        Level         `json:"risk_level"`
	Signals      []Signal      `json:"rule_signals"`
	Observations []Observation `json:"ai_observations"`
	Score        int           `json:"overall_score"`
	Model        string        `json:"model,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
}

// NewAssessment constructs an assessment snapshot.
func NewAssessment(claimID string, level Level, signals []Signal, observations []Observation, score int, model string) *Assessment {
	return &Assessment{
		ID:           ulid.Make().String(),
		ClaimID:      claimID,
		Level:        level,
		Signals:      signals,
		Observations: observations,
		Score:        score,
		Model:        model,
		CreatedAt:    time.Now().UTC(),
	}
}

// Store persists assessment snapshots. Latest returns ErrNotFound when
// the claim has no assessments.
type Store interface {
	Insert(ctx context.Context, a *Assessment) error
	Get(ctx context.Context, id string) (*Assessment, error)
	Latest(ctx context.Context, claimID string) (*Assessment, error)
	ListByClaim(ctx context.Context, claimID string) ([]*Assessment, error)
}
