package claim

import (
	"testing"
	"time"
)

func testSnapshot(t *testing.T, status CoverageStatus) *PolicySnapshot {
	t.Helper()
	p, err := NewPolicySnapshot("c1", "POL-12345",
		time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2027, 6, 1, 0, 0, 0, 0, time.UTC),
		status,
		[]string{"PropertyDamage", "Liability"},
	)
	if err != nil {
		t.Fatalf("NewPolicySnapshot: %v", err)
	}
	return p
}

func TestNewPolicySnapshot_Validation(t *testing.T) {
	t.Parallel()

	effective := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	expiration := time.Date(2027, 6, 1, 0, 0, 0, 0, time.UTC)

	if _, err := NewPolicySnapshot("", "POL-1", effective, expiration, CoverageActive, []string{"Liability"}); !IsKind(err, ErrValidation) {
		t.Errorf("empty claim id: error = %v, want ErrValidation", err)
	}
	if _, err := NewPolicySnapshot("c1", "POL-1", expiration, effective, CoverageActive, []string{"Liability"}); !IsKind(err, ErrValidation) {
		t.Errorf("inverted window: error = %v, want ErrValidation", err)
	}
	if _, err := NewPolicySnapshot("c1", "POL-1", effective, effective, CoverageActive, []string{"Liability"}); !IsKind(err, ErrValidation) {
		t.Errorf("zero-length window: error = %v, want ErrValidation", err)
	}
	if _, err := NewPolicySnapshot("c1", "POL-1", effective, expiration, CoverageActive, nil); !IsKind(err, ErrValidation) {
		t.Errorf("no covered types: error = %v, want ErrValidation", err)
	}
}

func TestPolicySnapshot_InForceOn(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status CoverageStatus
		date   time.Time
		want   bool
	}{
		{"inside window active", CoverageActive, time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC), true},
		{"effective date inclusive", CoverageActive, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), true},
		{"expiration date inclusive", CoverageActive, time.Date(2027, 6, 1, 0, 0, 0, 0, time.UTC), true},
		{"time of day ignored", CoverageActive, time.Date(2027, 6, 1, 23, 59, 0, 0, time.UTC), true},
		{"before window", CoverageActive, time.Date(2025, 5, 31, 0, 0, 0, 0, time.UTC), false},
		{"after window", CoverageActive, time.Date(2027, 6, 2, 0, 0, 0, 0, time.UTC), false},
		{"lapsed inside window", CoverageLapsed, time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC), false},
		{"canceled inside window", CoverageCanceled, time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p := testSnapshot(t, tt.status)
			if got := p.InForceOn(tt.date); got != tt.want {
				t.Errorf("InForceOn(%v) = %v, want %v", tt.date, got, tt.want)
			}
		})
	}
}

func TestPolicySnapshot_WithinCoverageWindow(t *testing.T) {
	t.Parallel()

	// The window check ignores coverage status: a lapsed policy still has
	// a date range the consistency rule can compare against.
	p := testSnapshot(t, CoverageLapsed)

	if !p.WithinCoverageWindow(time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)) {
		t.Error("expected date inside window to pass for lapsed policy")
	}
	if p.WithinCoverageWindow(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Error("expected date before window to fail")
	}
	if p.WithinCoverageWindow(time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Error("expected date after window to fail")
	}
}

func TestPolicySnapshot_Covers(t *testing.T) {
	t.Parallel()

	p := testSnapshot(t, CoverageActive)

	tests := []struct {
		lossType string
		want     bool
	}{
		{"PropertyDamage", true},
		{"propertydamage", true},
		{"LIABILITY", true},
		{"Flood", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := p.Covers(tt.lossType); got != tt.want {
			t.Errorf("Covers(%q) = %v, want %v", tt.lossType, got, tt.want)
		}
	}
}
