package verify

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/linnemanlabs/claimgate/internal/claim"
	"github.com/linnemanlabs/claimgate/internal/extract"
)

// fakeFieldStore implements extract.Store over a slice.
type fakeFieldStore struct {
	mu     sync.Mutex
	fields []*extract.Field
}

func (s *fakeFieldStore) Insert(_ context.Context, f *extract.Field) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fields = append(s.fields, f)
	return nil
}

func (s *fakeFieldStore) Get(_ context.Context, id string) (*extract.Field, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range s.fields {
		if f.ID == id {
			cp := *f
			return &cp, nil
		}
	}
	return nil, claim.Errorf(claim.ErrNotFound, "extracted field %s", id)
}

func (s *fakeFieldStore) ListByClaim(_ context.Context, claimID string) ([]*extract.Field, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*extract.Field
	for _, f := range s.fields {
		if f.ClaimID == claimID {
			cp := *f
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *fakeFieldStore) ListByDocument(_ context.Context, documentID string) ([]*extract.Field, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*extract.Field
	for _, f := range s.fields {
		if f.DocumentID == documentID {
			cp := *f
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *fakeFieldStore) UpdateStatus(_ context.Context, id string, status extract.VerificationStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range s.fields {
		if f.ID == id {
			f.Status = status
			return nil
		}
	}
	return claim.Errorf(claim.ErrNotFound, "extracted field %s", id)
}

// fakeRecordStore implements RecordStore keyed by field id.
type fakeRecordStore struct {
	mu      sync.Mutex
	byField map[string]*Record
}

func newFakeRecordStore() *fakeRecordStore {
	return &fakeRecordStore{byField: make(map[string]*Record)}
}

func (s *fakeRecordStore) Insert(_ context.Context, r *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byField[r.ExtractedFieldID]; ok {
		return claim.Errorf(claim.ErrConflict, "verification record for field %s already exists", r.ExtractedFieldID)
	}
	cp := *r
	s.byField[r.ExtractedFieldID] = &cp
	return nil
}

func (s *fakeRecordStore) GetByField(_ context.Context, fieldID string) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.byField[fieldID]
	if !ok {
		return nil, claim.Errorf(claim.ErrNotFound, "verification record for field %s", fieldID)
	}
	cp := *r
	return &cp, nil
}

func (s *fakeRecordStore) ListByClaim(_ context.Context, claimID string) ([]*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*Record
	for _, r := range s.byField {
		if r.ClaimID == claimID {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func fieldWith(id, name string, value *string, status extract.VerificationStatus) *extract.Field {
	return &extract.Field{ID: id, ClaimID: "c1", DocumentID: "d1", Name: name, Value: value, Status: status}
}

func TestGuard_EnsureUsable(t *testing.T) {
	t.Parallel()

	g := NewGuard(&fakeFieldStore{}, newFakeRecordStore())

	tests := []struct {
		status   extract.VerificationStatus
		wantKind error
	}{
		{extract.StatusVerified, nil},
		{extract.StatusCorrected, nil},
		{extract.StatusUnverified, claim.ErrInvalidState},
		{extract.StatusRejected, claim.ErrInvalidState},
		{"Garbage", claim.ErrValidation},
	}
	for _, tt := range tests {
		err := g.EnsureUsable(fieldWith("f1", "lossDate", nil, tt.status))
		if tt.wantKind == nil {
			if err != nil {
				t.Errorf("EnsureUsable(%s): %v", tt.status, err)
			}
			continue
		}
		if !claim.IsKind(err, tt.wantKind) {
			t.Errorf("EnsureUsable(%s) error = %v, want %v", tt.status, err, tt.wantKind)
		}
	}
}

func TestGuard_EnsureAllDecided(t *testing.T) {
	t.Parallel()

	fields := &fakeFieldStore{fields: []*extract.Field{
		fieldWith("f1", "lossDate", nil, extract.StatusVerified),
		fieldWith("f2", "lossType", nil, extract.StatusRejected),
		fieldWith("f3", "claimantName", nil, extract.StatusUnverified),
	}}
	g := NewGuard(fields, newFakeRecordStore())

	err := g.EnsureAllDecided(context.Background(), "c1")
	if !claim.IsKind(err, claim.ErrInvalidState) {
		t.Fatalf("error = %v, want ErrInvalidState", err)
	}
	// The pending field is named; the decided ones are not.
	if msg := err.Error(); !strings.Contains(msg, "claimantName") || strings.Contains(msg, "lossType") {
		t.Errorf("error %q should name only pending fields", msg)
	}

	if err := fields.UpdateStatus(context.Background(), "f3", extract.StatusCorrected); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if err := g.EnsureAllDecided(context.Background(), "c1"); err != nil {
		t.Errorf("EnsureAllDecided after all decided: %v", err)
	}

	// A claim with no extracted fields passes vacuously.
	if err := g.EnsureAllDecided(context.Background(), "empty"); err != nil {
		t.Errorf("EnsureAllDecided on empty claim: %v", err)
	}
}

func TestGuard_VerifiedValues(t *testing.T) {
	t.Parallel()

	fields := &fakeFieldStore{fields: []*extract.Field{
		fieldWith("f1", "lossDate", strptr("2026-03-14"), extract.StatusVerified),
		fieldWith("f2", "lossType", strptr("Flod"), extract.StatusCorrected),
		fieldWith("f3", "claimantName", strptr("J. Doe"), extract.StatusRejected),
		fieldWith("f4", "contactPhone", nil, extract.StatusVerified),
	}}
	records := newFakeRecordStore()
	rec, err := NewRecord(fields.fields[1], ActionCorrected, strptr("Flood"), "adjuster@example.com", "")
	if err != nil {
		t.Fatalf("NewRecord: %v", err)
	}
	if err := records.Insert(context.Background(), rec); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	g := NewGuard(fields, records)
	values, err := g.VerifiedValues(context.Background(), "c1")
	if err != nil {
		t.Fatalf("VerifiedValues: %v", err)
	}

	if values["lossDate"] != "2026-03-14" {
		t.Errorf("lossDate = %q, want original", values["lossDate"])
	}
	if values["lossType"] != "Flood" {
		t.Errorf("lossType = %q, want correction applied", values["lossType"])
	}
	if _, ok := values["claimantName"]; ok {
		t.Error("rejected field leaked into verified values")
	}
	if _, ok := values["contactPhone"]; ok {
		t.Error("nil-valued field leaked into verified values")
	}
}

func TestGuard_UsableFields(t *testing.T) {
	t.Parallel()

	fields := &fakeFieldStore{fields: []*extract.Field{
		fieldWith("f1", "lossDate", nil, extract.StatusVerified),
		fieldWith("f2", "lossType", nil, extract.StatusCorrected),
		fieldWith("f3", "claimantName", nil, extract.StatusRejected),
		fieldWith("f4", "contactPhone", nil, extract.StatusUnverified),
	}}
	g := NewGuard(fields, newFakeRecordStore())

	usable, err := g.UsableFields(context.Background(), "c1")
	if err != nil {
		t.Fatalf("UsableFields: %v", err)
	}
	if len(usable) != 2 {
		t.Fatalf("len(usable) = %d, want 2", len(usable))
	}
	for _, f := range usable {
		if f.Status != extract.StatusVerified && f.Status != extract.StatusCorrected {
			t.Errorf("field %s with status %q is not usable", f.Name, f.Status)
		}
	}
}
