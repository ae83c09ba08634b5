package memstore

import (
	"context"
	"testing"
	"time"

	"github.com/linnemanlabs/claimgate/internal/claim"
	"github.com/linnemanlabs/claimgate/internal/extract"
	"github.com/linnemanlabs/claimgate/internal/risk"
	"github.com/linnemanlabs/claimgate/internal/triage"
	"github.com/linnemanlabs/claimgate/internal/verify"
)

func testClaim(id, number string) *claim.Claim {
	return &claim.Claim{
		ID:      id,
		Number:  number,
		Status:  claim.StatusSubmitted,
		Version: 1,
	}
}

func TestClaimStore_InsertAndGet(t *testing.T) {
	t.Parallel()

	s := New().Claims
	ctx := context.Background()

	if err := s.Insert(ctx, testClaim("c1", "2026-000001")); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	got, err := s.Get(ctx, "c1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Number != "2026-000001" {
		t.Errorf("Number = %q", got.Number)
	}

	byNumber, err := s.GetByNumber(ctx, "2026-000001")
	if err != nil {
		t.Fatalf("GetByNumber: %v", err)
	}
	if byNumber.ID != "c1" {
		t.Errorf("ID = %q", byNumber.ID)
	}

	if _, err := s.Get(ctx, "missing"); !claim.IsKind(err, claim.ErrNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrNotFound", err)
	}
}

func TestClaimStore_Uniqueness(t *testing.T) {
	t.Parallel()

	s := New().Claims
	ctx := context.Background()

	if err := s.Insert(ctx, testClaim("c1", "2026-000001")); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := s.Insert(ctx, testClaim("c1", "2026-000002")); !claim.IsKind(err, claim.ErrConflict) {
		t.Errorf("duplicate id error = %v, want ErrConflict", err)
	}
	if err := s.Insert(ctx, testClaim("c2", "2026-000001")); !claim.IsKind(err, claim.ErrConflict) {
		t.Errorf("duplicate number error = %v, want ErrConflict", err)
	}
}

func TestClaimStore_UpdateVersionCheck(t *testing.T) {
	t.Parallel()

	s := New().Claims
	ctx := context.Background()

	c := testClaim("c1", "2026-000001")
	if err := s.Insert(ctx, c); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	c.LossDescription = "updated"
	if err := s.Update(ctx, c); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if c.Version != 2 {
		t.Errorf("Version = %d, want 2 after update", c.Version)
	}

	// A writer holding the old version must be rejected.
	stale := testClaim("c1", "2026-000001")
	stale.Version = 1
	if err := s.Update(ctx, stale); !claim.IsKind(err, claim.ErrConflict) {
		t.Errorf("stale update error = %v, want ErrConflict", err)
	}
}

func TestClaimStore_ReturnsCopies(t *testing.T) {
	t.Parallel()

	s := New().Claims
	ctx := context.Background()

	if err := s.Insert(ctx, testClaim("c1", "2026-000001")); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	got, _ := s.Get(ctx, "c1")
	got.Status = claim.StatusTriaged

	again, _ := s.Get(ctx, "c1")
	if again.Status != claim.StatusSubmitted {
		t.Error("mutating a returned claim changed the stored row")
	}
}

func TestClaimStore_NextSequence(t *testing.T) {
	t.Parallel()

	s := New().Claims
	ctx := context.Background()

	first, _ := s.NextSequence(ctx)
	second, _ := s.NextSequence(ctx)
	if second != first+1 {
		t.Errorf("sequence %d then %d, want consecutive", first, second)
	}
}

func TestFieldStore_DocumentNameUniqueness(t *testing.T) {
	t.Parallel()

	s := New().Fields
	ctx := context.Background()

	v := "2026-03-14"
	if err := s.Insert(ctx, &extract.Field{ID: "f1", ClaimID: "c1", DocumentID: "d1", Name: "lossDate", Value: &v}); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	// Same name on the same document is the concurrency race the schema closes.
	err := s.Insert(ctx, &extract.Field{ID: "f2", ClaimID: "c1", DocumentID: "d1", Name: "lossDate", Value: &v})
	if !claim.IsKind(err, claim.ErrConflict) {
		t.Errorf("duplicate (document, name) error = %v, want ErrConflict", err)
	}
	// Same name on another document is fine.
	if err := s.Insert(ctx, &extract.Field{ID: "f3", ClaimID: "c1", DocumentID: "d2", Name: "lossDate", Value: &v}); err != nil {
		t.Errorf("different document insert: %v", err)
	}
}

func TestRecordStore_OneRecordPerField(t *testing.T) {
	t.Parallel()

	s := New().Records
	ctx := context.Background()

	rec := &verify.Record{ID: "r1", ExtractedFieldID: "f1", ClaimID: "c1", Action: verify.ActionAccepted}
	if err := s.Insert(ctx, rec); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	dup := &verify.Record{ID: "r2", ExtractedFieldID: "f1", ClaimID: "c1", Action: verify.ActionRejected}
	if err := s.Insert(ctx, dup); !claim.IsKind(err, claim.ErrConflict) {
		t.Errorf("duplicate field record error = %v, want ErrConflict", err)
	}

	got, err := s.GetByField(ctx, "f1")
	if err != nil {
		t.Fatalf("GetByField: %v", err)
	}
	if got.Action != verify.ActionAccepted {
		t.Errorf("Action = %q, first record must win", got.Action)
	}
}

func TestAssessmentStore_LatestOrdering(t *testing.T) {
	t.Parallel()

	s := New().Assessments
	ctx := context.Background()

	base := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"a1", "a2", "a3"} {
		a := &risk.Assessment{ID: id, ClaimID: "c1", Level: risk.LevelLow, CreatedAt: base.Add(time.Duration(i) * time.Minute)}
		if err := s.Insert(ctx, a); err != nil {
			t.Fatalf("Insert %s: %v", id, err)
		}
	}

	latest, err := s.Latest(ctx, "c1")
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if latest.ID != "a3" {
		t.Errorf("Latest = %s, want a3", latest.ID)
	}

	all, err := s.ListByClaim(ctx, "c1")
	if err != nil {
		t.Fatalf("ListByClaim: %v", err)
	}
	if len(all) != 3 || all[0].ID != "a1" || all[2].ID != "a3" {
		t.Errorf("ListByClaim order wrong: %v", []string{all[0].ID, all[1].ID, all[2].ID})
	}

	if _, err := s.Latest(ctx, "other"); !claim.IsKind(err, claim.ErrNotFound) {
		t.Errorf("Latest(other) error = %v, want ErrNotFound", err)
	}
}

func TestDecisionStore_ComputedUniqueness(t *testing.T) {
	t.Parallel()

	s := New().Decisions
	ctx := context.Background()

	computed := &triage.Decision{ID: "d1", ClaimID: "c1", RiskAssessmentID: "a1", Queue: triage.QueueAutoReview}
	if err := s.Insert(ctx, computed); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	// Second computed decision for the same pair loses the race.
	dup := &triage.Decision{ID: "d2", ClaimID: "c1", RiskAssessmentID: "a1", Queue: triage.QueueAutoReview}
	if err := s.Insert(ctx, dup); !claim.IsKind(err, claim.ErrConflict) {
		t.Errorf("duplicate computed error = %v, want ErrConflict", err)
	}

	// Overrides never collide with the computed row or each other.
	for _, id := range []string{"o1", "o2"} {
		o := &triage.Decision{ID: id, ClaimID: "c1", RiskAssessmentID: "a1", Queue: triage.QueueManualInvestigation, IsOverride: true, OverrideBy: "s", OverrideReason: "r"}
		if err := s.Insert(ctx, o); err != nil {
			t.Errorf("Insert override %s: %v", id, err)
		}
	}

	got, err := s.GetComputed(ctx, "c1", "a1")
	if err != nil {
		t.Fatalf("GetComputed: %v", err)
	}
	if got.ID != "d1" {
		t.Errorf("GetComputed = %s, want d1", got.ID)
	}

	byQueue, err := s.ListByQueue(ctx, triage.QueueManualInvestigation)
	if err != nil {
		t.Fatalf("ListByQueue: %v", err)
	}
	if len(byQueue) != 2 {
		t.Errorf("len(byQueue) = %d, want 2", len(byQueue))
	}
}
