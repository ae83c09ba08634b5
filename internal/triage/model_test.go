package triage

import (
	"testing"

	"github.com/linnemanlabs/claimgate/internal/claim"
	"github.com/linnemanlabs/claimgate/internal/risk"
)

func TestDetermineQueue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		level risk.Level
		want  Queue
	}{
		{risk.LevelLow, QueueAutoReview},
		{risk.LevelMedium, QueueStandardReview},
		{risk.LevelHigh, QueueManualInvestigation},
	}
	for _, tt := range tests {
		got, err := DetermineQueue(tt.level)
		if err != nil {
			t.Fatalf("DetermineQueue(%s): %v", tt.level, err)
		}
		if got != tt.want {
			t.Errorf("DetermineQueue(%s) = %q, want %q", tt.level, got, tt.want)
		}
	}
}

func TestDetermineQueue_Unroutable(t *testing.T) {
	t.Parallel()

	for _, level := range []risk.Level{risk.LevelCritical, "Unknown", ""} {
		_, err := DetermineQueue(level)
		if err == nil {
			t.Fatalf("DetermineQueue(%q): expected error", level)
		}
		if !IsUnroutable(err) {
			t.Errorf("DetermineQueue(%q) error = %v, want unroutable", level, err)
		}
		if !claim.IsKind(err, claim.ErrValidation) {
			t.Errorf("DetermineQueue(%q) error kind = %v, want ErrValidation", level, err)
		}
	}
}

func TestNewDecision(t *testing.T) {
	t.Parallel()

	d, err := NewDecision("c1", "a1", QueueAutoReview)
	if err != nil {
		t.Fatalf("NewDecision: %v", err)
	}
	if d.IsOverride {
		t.Error("computed decision marked as override")
	}
	if d.ClaimID != "c1" || d.RiskAssessmentID != "a1" {
		t.Errorf("identity = (%q, %q)", d.ClaimID, d.RiskAssessmentID)
	}

	if _, err := NewDecision("c1", "a1", "Fast Lane"); !claim.IsKind(err, claim.ErrValidation) {
		t.Errorf("unknown queue error = %v, want ErrValidation", err)
	}
}

func TestNewOverride(t *testing.T) {
	t.Parallel()

	d, err := NewOverride("c1", "a1", QueueManualInvestigation, "supervisor@example.com", "claimant disputes routing")
	if err != nil {
		t.Fatalf("NewOverride: %v", err)
	}
	if !d.IsOverride {
		t.Error("override not marked")
	}
	if d.OverrideBy != "supervisor@example.com" {
		t.Errorf("OverrideBy = %q", d.OverrideBy)
	}

	tests := []struct {
		name   string
		queue  Queue
		actor  string
		reason string
	}{
		{"unknown queue", "Fast Lane", "u", "r"},
		{"missing actor", QueueAutoReview, "  ", "r"},
		{"missing reason", QueueAutoReview, "u", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := NewOverride("c1", "a1", tt.queue, tt.actor, tt.reason); !claim.IsKind(err, claim.ErrValidation) {
				t.Errorf("error = %v, want ErrValidation", err)
			}
		})
	}
}
