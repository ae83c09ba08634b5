package claim

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/linnemanlabs/go-core/log"

	"github.com/linnemanlabs/claimgate/internal/audit"
)

// SubmitRequest carries the FNOL submission facts.
type SubmitRequest struct {
	PolicyNumber    string    `json:"policy_number"`
	LossDate        time.Time `json:"loss_date"`
	LossType        string    `json:"loss_type"`
	LossLocation    string    `json:"loss_location"`
	LossDescription string    `json:"loss_description"`
	SubmittedBy     string    `json:"submitted_by"`
}

// UploadRequest carries a document upload.
type UploadRequest struct {
	ClaimID      string
	FileName     string
	DocumentType string
	ContentType  string
	UploadedBy   string
	Content      []byte
}

// Service is the business boundary for claim intake: submission with
// policy validation, document upload, and description amendments.
type Service struct {
	claims    Store
	snapshots SnapshotStore
	documents DocumentStore
	policies  PolicyValidator
	blobs     BlobStore
	auditor   audit.Sink
	logger    log.Logger
}

// NewService creates a claim intake service.
func NewService(claims Store, snapshots SnapshotStore, documents DocumentStore, policies PolicyValidator, blobs BlobStore, auditor audit.Sink, logger log.Logger) *Service {
	if logger == nil {
		logger = log.Nop()
	}
	return &Service{
		claims:    claims,
		snapshots: snapshots,
		documents: documents,
		policies:  policies,
		blobs:     blobs,
		auditor:   auditor,
		logger:    logger,
	}
}

// Submit registers a new claim, records the policy snapshot, and advances
// the claim to Validated when the policy was in force on the loss date.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (*Claim, error) {
	seq, err := s.claims.NextSequence(ctx)
	if err != nil {
		return nil, fmt.Errorf("claim sequence: %w", err)
	}
	number, err := GenerateNumber(seq)
	if err != nil {
		return nil, err
	}

	c, err := New(number, req.PolicyNumber, req.LossDate, req.LossType, req.LossLocation, req.LossDescription, req.SubmittedBy)
	if err != nil {
		return nil, err
	}

	snapshot, err := s.policies.Snapshot(ctx, c.ID, c.PolicyNumber, c.LossDate)
	if err != nil {
		return nil, WrapError(ErrExternal, "policy validation", err)
	}

	if err := s.claims.Insert(ctx, c); err != nil {
		return nil, fmt.Errorf("insert claim: %w", err)
	}
	if err := s.snapshots.Insert(ctx, snapshot); err != nil {
		return nil, fmt.Errorf("insert policy snapshot: %w", err)
	}

	s.record(ctx, audit.Event{
		Actor:      req.SubmittedBy,
		Action:     audit.ActionClaimSubmitted,
		EntityType: "claim",
		EntityID:   c.ID,
		Details:    map[string]any{"claim_number": c.Number, "policy_number": c.PolicyNumber},
	})

	if snapshot.InForceOn(c.LossDate) {
		if err := c.MarkValidated(); err != nil {
			return nil, err
		}
		if err := s.claims.Update(ctx, c); err != nil {
			return nil, fmt.Errorf("mark validated: %w", err)
		}
		s.record(ctx, audit.Event{
			Actor:      "system",
			Action:     audit.ActionPolicyValidated,
			EntityType: "claim",
			EntityID:   c.ID,
			Details:    map[string]any{"claim_number": c.Number, "coverage_status": string(snapshot.CoverageStatus)},
		})
	} else {
		s.logger.Info(ctx, "policy not in force on loss date, claim held in Submitted",
			"claim_id", c.ID,
			"policy_number", c.PolicyNumber,
			"loss_date", c.LossDate.Format("2006-01-02"),
		)
	}

	s.logger.Info(ctx, "claim submitted",
		"claim_id", c.ID,
		"claim_number", c.Number,
		"status", string(c.Status),
	)
	return c, nil
}

// UploadDocument stores a document's bytes and metadata. Uploads to a
// Triaged claim are rejected: the routing decision already consumed the
// evidence set.
func (s *Service) UploadDocument(ctx context.Context, req UploadRequest) (*Document, error) {
	c, err := s.claims.Get(ctx, req.ClaimID)
	if err != nil {
		return nil, err
	}
	if c.Status == StatusTriaged {
		return nil, Errorf(ErrInvalidState, "cannot upload documents to triaged claim %s", c.ID)
	}
	if len(req.Content) == 0 {
		return nil, Errorf(ErrValidation, "document content is empty")
	}

	doc, err := NewDocument(c.ID, req.FileName, req.DocumentType, "", int64(len(req.Content)), req.ContentType, req.UploadedBy)
	if err != nil {
		return nil, err
	}
	doc.StorageKey = fmt.Sprintf("%s/%s", c.ID, doc.ID)

	if err := s.blobs.Save(ctx, doc.StorageKey, bytes.NewReader(req.Content)); err != nil {
		return nil, WrapError(ErrExternal, "store document content", err)
	}
	if err := s.documents.Insert(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert document: %w", err)
	}

	s.record(ctx, audit.Event{
		Actor:      req.UploadedBy,
		Action:     audit.ActionDocumentUploaded,
		EntityType: "document",
		EntityID:   doc.ID,
		Details:    map[string]any{"claim_id": c.ID, "file_name": doc.FileName, "size_bytes": doc.FileSizeBytes},
	})
	return doc, nil
}

// UpdateLossDescription amends the claim narrative through the versioned write.
func (s *Service) UpdateLossDescription(ctx context.Context, claimID, description, actor string) (*Claim, error) {
	c, err := s.claims.Get(ctx, claimID)
	if err != nil {
		return nil, err
	}
	if err := c.UpdateLossDescription(description); err != nil {
		return nil, err
	}
	if err := s.claims.Update(ctx, c); err != nil {
		return nil, err
	}
	s.record(ctx, audit.Event{
		Actor:      actor,
		Action:     audit.ActionDescriptionUpdated,
		EntityType: "claim",
		EntityID:   c.ID,
	})
	return c, nil
}

// Get retrieves a claim by system id.
func (s *Service) Get(ctx context.Context, id string) (*Claim, error) {
	return s.claims.Get(ctx, id)
}

// GetByNumber retrieves a claim by business claim number.
func (s *Service) GetByNumber(ctx context.Context, number string) (*Claim, error) {
	return s.claims.GetByNumber(ctx, number)
}

// Documents lists a claim's document metadata.
func (s *Service) Documents(ctx context.Context, claimID string) ([]*Document, error) {
	if _, err := s.claims.Get(ctx, claimID); err != nil {
		return nil, err
	}
	return s.documents.ListByClaim(ctx, claimID)
}

func (s *Service) record(ctx context.Context, e audit.Event) {
	if s.auditor == nil {
		return
	}
	if err := s.auditor.Record(ctx, audit.Fill(e)); err != nil {
		s.logger.Error(ctx, err, "audit record failed", "action", e.Action, "entity_id", e.EntityID)
	}
}
