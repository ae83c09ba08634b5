// Package memstore provides in-memory implementations of the claimgate
// store interfaces. Suitable for dev and testing; the same uniqueness
// guarantees the PostgreSQL schema enforces are enforced here under the
// store lock.
package memstore

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/linnemanlabs/claimgate/internal/claim"
	"github.com/linnemanlabs/claimgate/internal/extract"
	"github.com/linnemanlabs/claimgate/internal/risk"
	"github.com/linnemanlabs/claimgate/internal/triage"
	"github.com/linnemanlabs/claimgate/internal/verify"
)

// Stores bundles every per-aggregate in-memory store.
type Stores struct {
	Claims      *ClaimStore
	Snapshots   *SnapshotStore
	Documents   *DocumentStore
	Fields      *FieldStore
	Records     *RecordStore
	Assessments *AssessmentStore
	Decisions   *DecisionStore
}

// New initializes empty stores.
func New() *Stores {
	return &Stores{
		Claims:      &ClaimStore{byID: make(map[string]*claim.Claim), byNumber: make(map[string]string)},
		Snapshots:   &SnapshotStore{byClaim: make(map[string]*claim.PolicySnapshot)},
		Documents:   &DocumentStore{byID: make(map[string]*claim.Document)},
		Fields:      &FieldStore{byID: make(map[string]*extract.Field)},
		Records:     &RecordStore{byField: make(map[string]*verify.Record)},
		Assessments: &AssessmentStore{byID: make(map[string]*risk.Assessment)},
		Decisions:   &DecisionStore{byID: make(map[string]*triage.Decision)},
	}
}

// ClaimStore implements claim.Store.
type ClaimStore struct {
	mu       sync.RWMutex
	byID     map[string]*claim.Claim
	byNumber map[string]string // claim number -> id
	seq      atomic.Int64
}

// Insert stores a copy of the claim. Duplicate ids or claim numbers fail
// with ErrConflict.
func (s *ClaimStore) Insert(_ context.Context, c *claim.Claim) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[c.ID]; ok {
		return claim.Errorf(claim.ErrConflict, "claim %s already exists", c.ID)
	}
	if _, ok := s.byNumber[c.Number]; ok {
		return claim.Errorf(claim.ErrConflict, "claim number %s already exists", c.Number)
	}
	cp := *c
	s.byID[c.ID] = &cp
	s.byNumber[c.Number] = c.ID
	return nil
}

// Get retrieves a claim by system id. Returns a copy.
func (s *ClaimStore) Get(_ context.Context, id string) (*claim.Claim, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.byID[id]
	if !ok {
		return nil, claim.Errorf(claim.ErrNotFound, "claim %s", id)
	}
	cp := *c
	return &cp, nil
}

// GetByNumber retrieves a claim by business claim number. Returns a copy.
func (s *ClaimStore) GetByNumber(_ context.Context, number string) (*claim.Claim, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byNumber[number]
	if !ok {
		return nil, claim.Errorf(claim.ErrNotFound, "claim %s", number)
	}
	cp := *s.byID[id]
	return &cp, nil
}

// Update writes the claim through the optimistic-concurrency check.
func (s *ClaimStore) Update(_ context.Context, c *claim.Claim) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.byID[c.ID]
	if !ok {
		return claim.Errorf(claim.ErrNotFound, "claim %s", c.ID)
	}
	if stored.Version != c.Version {
		return claim.Errorf(claim.ErrConflict, "claim %s version %d is stale", c.ID, c.Version)
	}
	cp := *c
	cp.Version++
	s.byID[c.ID] = &cp
	c.Version++
	return nil
}

// UpdateStatus writes only the status, bypassing the version check.
func (s *ClaimStore) UpdateStatus(_ context.Context, id string, status claim.Status, updatedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.byID[id]
	if !ok {
		return claim.Errorf(claim.ErrNotFound, "claim %s", id)
	}
	stored.Status = status
	stored.UpdatedAt = updatedAt
	stored.Version++
	return nil
}

// NextSequence issues the next claim-number counter value.
func (s *ClaimStore) NextSequence(_ context.Context) (int64, error) {
	return s.seq.Add(1), nil
}

// SnapshotStore implements claim.SnapshotStore.
type SnapshotStore struct {
	mu      sync.RWMutex
	byClaim map[string]*claim.PolicySnapshot
}

// Insert stores a copy of the snapshot. One snapshot per claim.
func (s *SnapshotStore) Insert(_ context.Context, p *claim.PolicySnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byClaim[p.ClaimID]; ok {
		return claim.Errorf(claim.ErrConflict, "policy snapshot for claim %s already exists", p.ClaimID)
	}
	cp := *p
	s.byClaim[p.ClaimID] = &cp
	return nil
}

// GetByClaim retrieves the claim's snapshot. Returns a copy.
func (s *SnapshotStore) GetByClaim(_ context.Context, claimID string) (*claim.PolicySnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.byClaim[claimID]
	if !ok {
		return nil, claim.Errorf(claim.ErrNotFound, "policy snapshot for claim %s", claimID)
	}
	cp := *p
	return &cp, nil
}

// DocumentStore implements claim.DocumentStore.
type DocumentStore struct {
	mu   sync.RWMutex
	byID map[string]*claim.Document
}

// Insert stores a copy of the document row.
func (s *DocumentStore) Insert(_ context.Context, d *claim.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[d.ID]; ok {
		return claim.Errorf(claim.ErrConflict, "document %s already exists", d.ID)
	}
	cp := *d
	s.byID[d.ID] = &cp
	return nil
}

// Get retrieves a document by id. Returns a copy.
func (s *DocumentStore) Get(_ context.Context, id string) (*claim.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.byID[id]
	if !ok {
		return nil, claim.Errorf(claim.ErrNotFound, "document %s", id)
	}
	cp := *d
	return &cp, nil
}

// ListByClaim lists a claim's documents in upload order.
func (s *DocumentStore) ListByClaim(_ context.Context, claimID string) ([]*claim.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var docs []*claim.Document
	for _, d := range s.byID {
		if d.ClaimID == claimID {
			cp := *d
			docs = append(docs, &cp)
		}
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].UploadedAt.Before(docs[j].UploadedAt) })
	return docs, nil
}

// FieldStore implements extract.Store.
type FieldStore struct {
	mu   sync.RWMutex
	byID map[string]*extract.Field
}

// Insert stores a copy of the field. A duplicate (document, field name)
// pair fails with ErrConflict, matching the relational constraint.
func (s *FieldStore) Insert(_ context.Context, f *extract.Field) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[f.ID]; ok {
		return claim.Errorf(claim.ErrConflict, "extracted field %s already exists", f.ID)
	}
	for _, existing := range s.byID {
		if existing.DocumentID == f.DocumentID && existing.Name == f.Name {
			return claim.Errorf(claim.ErrConflict,
				"field %s already extracted for document %s", f.Name, f.DocumentID)
		}
	}
	cp := *f
	s.byID[f.ID] = &cp
	return nil
}

// Get retrieves a field by id. Returns a copy.
func (s *FieldStore) Get(_ context.Context, id string) (*extract.Field, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.byID[id]
	if !ok {
		return nil, claim.Errorf(claim.ErrNotFound, "extracted field %s", id)
	}
	cp := *f
	return &cp, nil
}

// ListByClaim lists a claim's fields in extraction order.
func (s *FieldStore) ListByClaim(_ context.Context, claimID string) ([]*extract.Field, error) {
	return s.filter(func(f *extract.Field) bool { return f.ClaimID == claimID }), nil
}

// ListByDocument lists a document's fields.
func (s *FieldStore) ListByDocument(_ context.Context, documentID string) ([]*extract.Field, error) {
	return s.filter(func(f *extract.Field) bool { return f.DocumentID == documentID }), nil
}

// UpdateStatus writes the field's verification transition.
func (s *FieldStore) UpdateStatus(_ context.Context, id string, status extract.VerificationStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.byID[id]
	if !ok {
		return claim.Errorf(claim.ErrNotFound, "extracted field %s", id)
	}
	f.Status = status
	return nil
}

func (s *FieldStore) filter(keep func(*extract.Field) bool) []*extract.Field {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var fields []*extract.Field
	for _, f := range s.byID {
		if keep(f) {
			cp := *f
			fields = append(fields, &cp)
		}
	}
	sort.Slice(fields, func(i, j int) bool {
		if fields[i].ExtractedAt.Equal(fields[j].ExtractedAt) {
			return fields[i].Name < fields[j].Name
		}
		return fields[i].ExtractedAt.Before(fields[j].ExtractedAt)
	})
	return fields
}

// RecordStore implements verify.RecordStore.
type RecordStore struct {
	mu      sync.RWMutex
	byField map[string]*verify.Record
}

// Insert stores a copy of the record. A second record for the same field
// fails with ErrConflict; the check and insert happen under one lock.
func (s *RecordStore) Insert(_ context.Context, r *verify.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byField[r.ExtractedFieldID]; ok {
		return claim.Errorf(claim.ErrConflict,
			"verification record for field %s already exists", r.ExtractedFieldID)
	}
	cp := *r
	s.byField[r.ExtractedFieldID] = &cp
	return nil
}

// GetByField retrieves the record for one extracted field. Returns a copy.
func (s *RecordStore) GetByField(_ context.Context, extractedFieldID string) (*verify.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.byField[extractedFieldID]
	if !ok {
		return nil, claim.Errorf(claim.ErrNotFound, "verification record for field %s", extractedFieldID)
	}
	cp := *r
	return &cp, nil
}

// ListByClaim lists a claim's records in decision order.
func (s *RecordStore) ListByClaim(_ context.Context, claimID string) ([]*verify.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var records []*verify.Record
	for _, r := range s.byField {
		if r.ClaimID == claimID {
			cp := *r
			records = append(records, &cp)
		}
	}
	sort.Slice(records, func(i, j int) bool { return records[i].VerifiedAt.Before(records[j].VerifiedAt) })
	return records, nil
}

// AssessmentStore implements risk.Store.
type AssessmentStore struct {
	mu   sync.RWMutex
	byID map[string]*risk.Assessment
}

// Insert stores a copy of the assessment.
func (s *AssessmentStore) Insert(_ context.Context, a *risk.Assessment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[a.ID]; ok {
		return claim.Errorf(claim.ErrConflict, "risk assessment %s already exists", a.ID)
	}
	cp := *a
	s.byID[a.ID] = &cp
	return nil
}

// Get retrieves an assessment by id. Returns a copy.
func (s *AssessmentStore) Get(_ context.Context, id string) (*risk.Assessment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.byID[id]
	if !ok {
		return nil, claim.Errorf(claim.ErrNotFound, "risk assessment %s", id)
	}
	cp := *a
	return &cp, nil
}

// Latest retrieves the claim's most recent assessment.
func (s *AssessmentStore) Latest(_ context.Context, claimID string) (*risk.Assessment, error) {
	all := s.listByClaim(claimID)
	if len(all) == 0 {
		return nil, claim.Errorf(claim.ErrNotFound, "risk assessment for claim %s", claimID)
	}
	return all[len(all)-1], nil
}

// ListByClaim lists a claim's assessments in creation order.
func (s *AssessmentStore) ListByClaim(_ context.Context, claimID string) ([]*risk.Assessment, error) {
	return s.listByClaim(claimID), nil
}

func (s *AssessmentStore) listByClaim(claimID string) []*risk.Assessment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var assessments []*risk.Assessment
	for _, a := range s.byID {
		if a.ClaimID == claimID {
			cp := *a
			assessments = append(assessments, &cp)
		}
	}
	sort.Slice(assessments, func(i, j int) bool {
		if assessments[i].CreatedAt.Equal(assessments[j].CreatedAt) {
			return assessments[i].ID < assessments[j].ID
		}
		return assessments[i].CreatedAt.Before(assessments[j].CreatedAt)
	})
	return assessments
}

// DecisionStore implements triage.Store.
type DecisionStore struct {
	mu   sync.RWMutex
	byID map[string]*triage.Decision
}

// Insert stores a copy of the decision. A second computed decision for
// the same (claim, assessment) pair fails with ErrConflict.
func (s *DecisionStore) Insert(_ context.Context, d *triage.Decision) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[d.ID]; ok {
		return claim.Errorf(claim.ErrConflict, "triage decision %s already exists", d.ID)
	}
	if !d.IsOverride {
		for _, existing := range s.byID {
			if !existing.IsOverride &&
				existing.ClaimID == d.ClaimID &&
				existing.RiskAssessmentID == d.RiskAssessmentID {
				return claim.Errorf(claim.ErrConflict,
					"computed triage decision for claim %s assessment %s already exists",
					d.ClaimID, d.RiskAssessmentID)
			}
		}
	}
	cp := *d
	s.byID[d.ID] = &cp
	return nil
}

// Latest retrieves the claim's most recent decision.
func (s *DecisionStore) Latest(_ context.Context, claimID string) (*triage.Decision, error) {
	all := s.listWhere(func(d *triage.Decision) bool { return d.ClaimID == claimID })
	if len(all) == 0 {
		return nil, claim.Errorf(claim.ErrNotFound, "triage decision for claim %s", claimID)
	}
	return all[len(all)-1], nil
}

// ListByClaim lists a claim's decisions in creation order.
func (s *DecisionStore) ListByClaim(_ context.Context, claimID string) ([]*triage.Decision, error) {
	return s.listWhere(func(d *triage.Decision) bool { return d.ClaimID == claimID }), nil
}

// ListByQueue lists decisions pointing at a queue.
func (s *DecisionStore) ListByQueue(_ context.Context, queue triage.Queue) ([]*triage.Decision, error) {
	return s.listWhere(func(d *triage.Decision) bool { return d.Queue == queue }), nil
}

// GetComputed retrieves the non-override decision for a (claim,
// assessment) pair.
func (s *DecisionStore) GetComputed(_ context.Context, claimID, assessmentID string) (*triage.Decision, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, d := range s.byID {
		if !d.IsOverride && d.ClaimID == claimID && d.RiskAssessmentID == assessmentID {
			cp := *d
			return &cp, nil
		}
	}
	return nil, claim.Errorf(claim.ErrNotFound,
		"computed triage decision for claim %s assessment %s", claimID, assessmentID)
}

func (s *DecisionStore) listWhere(keep func(*triage.Decision) bool) []*triage.Decision {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var decisions []*triage.Decision
	for _, d := range s.byID {
		if keep(d) {
			cp := *d
			decisions = append(decisions, &cp)
		}
	}
	sort.Slice(decisions, func(i, j int) bool {
		if decisions[i].CreatedAt.Equal(decisions[j].CreatedAt) {
			return decisions[i].ID < decisions[j].ID
		}
		return decisions[i].CreatedAt.Before(decisions[j].CreatedAt)
	})
	return decisions
}
