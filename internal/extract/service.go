package extract

import (
	"context"
	"fmt"
	"io"

	"github.com/linnemanlabs/go-core/log"
	"golang.org/x/time/rate"

	"github.com/linnemanlabs/claimgate/internal/audit"
	"github.com/linnemanlabs/claimgate/internal/claim"
	"github.com/linnemanlabs/claimgate/internal/llm"
)

// maxDocumentBytes caps how much document text is sent to the model.
const maxDocumentBytes = 256 * 1024

// Result is the outcome of an extraction run.
type Result struct {
	Fields           []*Field `json:"fields"`
	AlreadyExtracted bool     `json:"already_extracted"`
	Model            string   `json:"model,omitempty"`
	TokensUsed       int      `json:"tokens_used,omitempty"`
}

// Service runs AI extraction over uploaded documents.
type Service struct {
	claims    claim.Store
	documents claim.DocumentStore
	fields    Store
	contents  ContentStore
	completer llm.Completer
	limiter   *rate.Limiter
	auditor   audit.Sink
	logger    log.Logger
}

// NewService creates an extraction service. limiter may be nil to disable
// LLM rate limiting.
func NewService(claims claim.Store, documents claim.DocumentStore, fields Store, contents ContentStore, completer llm.Completer, limiter *rate.Limiter, auditor audit.Sink, logger log.Logger) *Service {
	if logger == nil {
		logger = log.Nop()
	}
	return &Service{
		claims:    claims,
		documents: documents,
		fields:    fields,
		contents:  contents,
		completer: completer,
		limiter:   limiter,
		auditor:   auditor,
		logger:    logger,
	}
}

// Extract runs AI field extraction for one document. A document that
// already has extracted fields returns them unchanged: extraction is
// idempotent per document. The persistence layer's uniqueness guarantees
// back this check under concurrency.
func (s *Service) Extract(ctx context.Context, claimID, documentID, actor string) (*Result, error) {
	c, err := s.claims.Get(ctx, claimID)
	if err != nil {
		return nil, err
	}
	doc, err := s.documents.Get(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if doc.ClaimID != c.ID {
		return nil, claim.Errorf(claim.ErrValidation, "document %s does not belong to claim %s", documentID, claimID)
	}

	existing, err := s.fields.ListByDocument(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("list extracted fields: %w", err)
	}
	if len(existing) > 0 {
		return &Result{Fields: existing, AlreadyExtracted: true}, nil
	}

	if s.completer == nil {
		return nil, claim.Errorf(claim.ErrExternal, "no extraction model configured")
	}

	content, err := s.readContent(ctx, doc.StorageKey)
	if err != nil {
		return nil, claim.WrapError(claim.ErrExternal, "fetch document content", err)
	}

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("extraction rate limit: %w", err)
		}
	}

	completion, err := s.completer.Complete(ctx, systemPrompt, buildUserPrompt(content))
	if err != nil {
		return nil, claim.WrapError(claim.ErrExternal, "extraction model call", err)
	}

	values, err := parseExtraction(completion.Content)
	if err != nil {
		return nil, claim.WrapError(claim.ErrExternal, "extraction response", err)
	}

	fields := make([]*Field, 0, len(values))
	for name, value := range values {
		v := value
		f, err := NewField(c.ID, doc.ID, name, &v, confidenceFor(name, value),
			completion.Model, SystemPromptVersion, UserPromptVersion, SchemaVersion)
		if err != nil {
			return nil, err
		}
		if err := s.fields.Insert(ctx, f); err != nil {
			return nil, fmt.Errorf("insert extracted field %s: %w", name, err)
		}
		fields = append(fields, f)
	}

	tokens := completion.InputTokens + completion.OutputTokens
	s.record(ctx, audit.Event{
		Actor:      actor,
		Action:     audit.ActionExtractionRun,
		EntityType: "document",
		EntityID:   doc.ID,
		Details: map[string]any{
			"claim_id":    c.ID,
			"model":       completion.Model,
			"field_count": len(fields),
			"tokens_used": tokens,
		},
	})
	s.logger.Info(ctx, "extraction complete",
		"claim_id", c.ID,
		"document_id", doc.ID,
		"fields", len(fields),
		"tokens", tokens,
	)

	return &Result{Fields: fields, Model: completion.Model, TokensUsed: tokens}, nil
}

// FieldsByClaim lists all extracted fields for a claim.
func (s *Service) FieldsByClaim(ctx context.Context, claimID string) ([]*Field, error) {
	if _, err := s.claims.Get(ctx, claimID); err != nil {
		return nil, err
	}
	return s.fields.ListByClaim(ctx, claimID)
}

func (s *Service) readContent(ctx context.Context, key string) (string, error) {
	rc, err := s.contents.Open(ctx, key)
	if err != nil {
		return "", err
	}
	defer func() { _ = rc.Close() }()

	data, err := io.ReadAll(io.LimitReader(rc, maxDocumentBytes))
	if err != nil {
		return "", fmt.Errorf("read document content: %w", err)
	}
	return string(data), nil
}

func (s *Service) record(ctx context.Context, e audit.Event) {
	if s.auditor == nil {
		return
	}
	if err := s.auditor.Record(ctx, audit.Fill(e)); err != nil {
		s.logger.Error(ctx, err, "audit record failed", "action", e.Action, "entity_id", e.EntityID)
	}
}
