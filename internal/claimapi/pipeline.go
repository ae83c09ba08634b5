package claimapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/linnemanlabs/claimgate/internal/authmw"
	"github.com/linnemanlabs/claimgate/internal/triage"
	"github.com/linnemanlabs/claimgate/internal/verify"
)

func (a *API) handleExtract(w http.ResponseWriter, r *http.Request) {
	claimID := chi.URLParam(r, "id")
	documentID := chi.URLParam(r, "documentID")

	span := trace.SpanFromContext(r.Context())
	span.SetAttributes(
		attribute.String("claimgate.claim.id", claimID),
		attribute.String("claimgate.document.id", documentID),
	)

	result, err := a.extractor.Extract(r.Context(), claimID, documentID, authmw.ActorFromContext(r.Context()))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	status := http.StatusCreated
	if result.AlreadyExtracted {
		status = http.StatusOK
	}
	a.respond(w, status, result)
}

func (a *API) handleListFields(w http.ResponseWriter, r *http.Request) {
	fields, err := a.extractor.FieldsByClaim(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.respond(w, http.StatusOK, map[string]any{"fields": fields})
}

type verifyPayload struct {
	Action         string  `json:"action"`
	CorrectedValue *string `json:"corrected_value,omitempty"`
	Notes          string  `json:"notes,omitempty"`
}

func (a *API) handleVerifyField(w http.ResponseWriter, r *http.Request) {
	var p verifyPayload
	if err := decodeJSON(r, &p); err != nil {
		a.fail(w, r, err)
		return
	}
	rec, err := a.verifier.VerifyField(r.Context(), verify.VerifyRequest{
		FieldID:        chi.URLParam(r, "id"),
		Action:         verify.Action(p.Action),
		CorrectedValue: p.CorrectedValue,
		VerifiedBy:     authmw.ActorFromContext(r.Context()),
		Notes:          p.Notes,
	})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.respond(w, http.StatusCreated, rec)
}

func (a *API) handleListVerifications(w http.ResponseWriter, r *http.Request) {
	records, err := a.verifier.RecordsByClaim(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.respond(w, http.StatusOK, map[string]any{"verifications": records})
}

func (a *API) handleEvaluateRisk(w http.ResponseWriter, r *http.Request) {
	claimID := chi.URLParam(r, "id")

	assessment, err := a.engine.Evaluate(r.Context(), claimID, authmw.ActorFromContext(r.Context()))
	if err != nil {
		a.fail(w, r, err)
		return
	}

	span := trace.SpanFromContext(r.Context())
	span.SetAttributes(
		attribute.String("claimgate.claim.id", claimID),
		attribute.String("claimgate.risk.level", string(assessment.Level)),
	)
	a.respond(w, http.StatusCreated, assessment)
}

func (a *API) handleLatestRisk(w http.ResponseWriter, r *http.Request) {
	assessment, err := a.engine.Latest(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.respond(w, http.StatusOK, assessment)
}

func (a *API) handleRiskHistory(w http.ResponseWriter, r *http.Request) {
	assessments, err := a.engine.History(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.respond(w, http.StatusOK, map[string]any{"assessments": assessments})
}

func (a *API) handleTriage(w http.ResponseWriter, r *http.Request) {
	claimID := chi.URLParam(r, "id")

	decision, err := a.router.Triage(r.Context(), claimID, authmw.ActorFromContext(r.Context()))
	if err != nil {
		a.fail(w, r, err)
		return
	}

	span := trace.SpanFromContext(r.Context())
	span.SetAttributes(
		attribute.String("claimgate.claim.id", claimID),
		attribute.String("claimgate.triage.queue", string(decision.Queue)),
	)
	a.respond(w, http.StatusOK, decision)
}

type overridePayload struct {
	Queue  string `json:"queue"`
	Reason string `json:"reason"`
}

func (a *API) handleOverride(w http.ResponseWriter, r *http.Request) {
	var p overridePayload
	if err := decodeJSON(r, &p); err != nil {
		a.fail(w, r, err)
		return
	}
	decision, err := a.router.Override(r.Context(),
		chi.URLParam(r, "id"), triage.Queue(p.Queue),
		authmw.ActorFromContext(r.Context()), p.Reason)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.respond(w, http.StatusCreated, decision)
}

func (a *API) handleLatestTriage(w http.ResponseWriter, r *http.Request) {
	decision, err := a.router.Latest(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.respond(w, http.StatusOK, decision)
}

func (a *API) handleTriageHistory(w http.ResponseWriter, r *http.Request) {
	decisions, err := a.router.History(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.respond(w, http.StatusOK, map[string]any{"decisions": decisions})
}

func (a *API) handleQueueContents(w http.ResponseWriter, r *http.Request) {
	decisions, err := a.router.QueueContents(r.Context(), triage.Queue(chi.URLParam(r, "queue")))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.respond(w, http.StatusOK, map[string]any{"decisions": decisions})
}
