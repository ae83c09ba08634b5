package claimapi

import (
	"encoding/base64"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/linnemanlabs/claimgate/internal/authmw"
	"github.com/linnemanlabs/claimgate/internal/claim"
)

type submitPayload struct {
	PolicyNumber    string `json:"policy_number"`
	LossDate        string `json:"loss_date"`
	LossType        string `json:"loss_type"`
	LossLocation    string `json:"loss_location"`
	LossDescription string `json:"loss_description"`
}

func (a *API) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var p submitPayload
	if err := decodeJSON(r, &p); err != nil {
		a.fail(w, r, err)
		return
	}
	lossDate, err := time.Parse("2006-01-02", p.LossDate)
	if err != nil {
		a.fail(w, r, claim.Errorf(claim.ErrValidation, "invalid loss_date %q: want YYYY-MM-DD", p.LossDate))
		return
	}

	c, err := a.claims.Submit(r.Context(), claim.SubmitRequest{
		PolicyNumber:    p.PolicyNumber,
		LossDate:        lossDate,
		LossType:        p.LossType,
		LossLocation:    p.LossLocation,
		LossDescription: p.LossDescription,
		SubmittedBy:     authmw.ActorFromContext(r.Context()),
	})
	if err != nil {
		a.fail(w, r, err)
		return
	}

	span := trace.SpanFromContext(r.Context())
	span.SetAttributes(
		attribute.String("claimgate.claim.id", c.ID),
		attribute.String("claimgate.claim.number", c.Number),
	)
	a.respond(w, http.StatusCreated, c)
}

func (a *API) handleGetClaim(w http.ResponseWriter, r *http.Request) {
	c, err := a.claims.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.respond(w, http.StatusOK, c)
}

func (a *API) handleGetClaimByNumber(w http.ResponseWriter, r *http.Request) {
	c, err := a.claims.GetByNumber(r.Context(), chi.URLParam(r, "number"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.respond(w, http.StatusOK, c)
}

func (a *API) handleUpdateDescription(w http.ResponseWriter, r *http.Request) {
	var p struct {
		LossDescription string `json:"loss_description"`
	}
	if err := decodeJSON(r, &p); err != nil {
		a.fail(w, r, err)
		return
	}
	c, err := a.claims.UpdateLossDescription(r.Context(),
		chi.URLParam(r, "id"), p.LossDescription, authmw.ActorFromContext(r.Context()))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.respond(w, http.StatusOK, c)
}

type uploadPayload struct {
	FileName     string `json:"file_name"`
	DocumentType string `json:"document_type"`
	ContentType  string `json:"content_type"`
	Content      string `json:"content"` // base64
}

func (a *API) handleUploadDocument(w http.ResponseWriter, r *http.Request) {
	var p uploadPayload
	if err := decodeJSON(r, &p); err != nil {
		a.fail(w, r, err)
		return
	}
	content, err := base64.StdEncoding.DecodeString(p.Content)
	if err != nil {
		a.fail(w, r, claim.Errorf(claim.ErrValidation, "content is not valid base64"))
		return
	}

	doc, err := a.claims.UploadDocument(r.Context(), claim.UploadRequest{
		ClaimID:      chi.URLParam(r, "id"),
		FileName:     p.FileName,
		DocumentType: p.DocumentType,
		ContentType:  p.ContentType,
		UploadedBy:   authmw.ActorFromContext(r.Context()),
		Content:      content,
	})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.respond(w, http.StatusCreated, doc)
}

func (a *API) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := a.claims.Documents(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.respond(w, http.StatusOK, map[string]any{"documents": docs})
}
