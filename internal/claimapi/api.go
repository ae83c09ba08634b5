// Package claimapi exposes the claims pipeline over HTTP: submission,
// document upload, extraction, verification, risk evaluation, and
// triage. Handlers translate between JSON and the domain services and
// map error kinds to HTTP statuses; they hold no business logic.
package claimapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/linnemanlabs/go-core/log"
	"github.com/linnemanlabs/go-core/xerrors"

	"github.com/linnemanlabs/claimgate/internal/authmw"
	"github.com/linnemanlabs/claimgate/internal/claim"
	"github.com/linnemanlabs/claimgate/internal/extract"
	"github.com/linnemanlabs/claimgate/internal/risk"
	"github.com/linnemanlabs/claimgate/internal/triage"
	"github.com/linnemanlabs/claimgate/internal/verify"
)

// API holds dependencies for HTTP handlers.
type API struct {
	logger        log.Logger
	claims        *claim.Service
	extractor     *extract.Service
	verifier      *verify.Service
	engine        *risk.Engine
	router        *triage.Router
	overrideToken string
}

// New creates a new API handler.
func New(logger log.Logger, claims *claim.Service, extractor *extract.Service, verifier *verify.Service, engine *risk.Engine, router *triage.Router, overrideToken string) *API {
	if logger == nil {
		logger = log.Nop()
	}
	if claims == nil || extractor == nil || verifier == nil || engine == nil || router == nil {
		panic(xerrors.New("all pipeline services are required"))
	}
	return &API{
		logger:        logger,
		claims:        claims,
		extractor:     extractor,
		verifier:      verifier,
		engine:        engine,
		router:        router,
		overrideToken: overrideToken,
	}
}

// RegisterRoutes attaches API endpoints to the router. State-changing
// routes require an X-Actor header; overrides additionally require the
// override bearer token.
func (a *API) RegisterRoutes(r chi.Router) {
	actor := authmw.RequireActor()

	r.Route("/api/v1", func(r chi.Router) {
		r.With(actor).Post("/claims", a.handleSubmit)
		r.Get("/claims/{id}", a.handleGetClaim)
		r.Get("/claims/by-number/{number}", a.handleGetClaimByNumber)
		r.With(actor).Patch("/claims/{id}/description", a.handleUpdateDescription)

		r.With(actor).Post("/claims/{id}/documents", a.handleUploadDocument)
		r.Get("/claims/{id}/documents", a.handleListDocuments)
		r.With(actor).Post("/claims/{id}/documents/{documentID}/extract", a.handleExtract)
		r.Get("/claims/{id}/fields", a.handleListFields)

		r.With(actor).Post("/fields/{id}/verify", a.handleVerifyField)
		r.Get("/claims/{id}/verifications", a.handleListVerifications)

		r.With(actor).Post("/claims/{id}/risk/evaluate", a.handleEvaluateRisk)
		r.Get("/claims/{id}/risk", a.handleLatestRisk)
		r.Get("/claims/{id}/risk/history", a.handleRiskHistory)

		r.With(actor).Post("/claims/{id}/triage", a.handleTriage)
		r.Get("/claims/{id}/triage", a.handleLatestTriage)
		r.Get("/claims/{id}/triage/history", a.handleTriageHistory)
		r.With(authmw.BearerToken(a.overrideToken), actor).
			Post("/claims/{id}/triage/override", a.handleOverride)

		r.Get("/queues/{queue}", a.handleQueueContents)
	})
}

// respond writes a JSON body with the given status.
func (a *API) respond(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// fail maps domain error kinds to HTTP statuses. Unrecognized errors
// are internal and their details stay out of the response.
func (a *API) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case claim.IsKind(err, claim.ErrValidation):
		a.respond(w, http.StatusBadRequest, errBody(err))
	case claim.IsKind(err, claim.ErrNotFound):
		a.respond(w, http.StatusNotFound, errBody(err))
	case claim.IsKind(err, claim.ErrInvalidState):
		a.respond(w, http.StatusUnprocessableEntity, errBody(err))
	case claim.IsKind(err, claim.ErrConflict):
		a.respond(w, http.StatusConflict, errBody(err))
	case claim.IsKind(err, claim.ErrExternal):
		a.logger.Error(r.Context(), err, "external dependency failure")
		a.respond(w, http.StatusBadGateway, map[string]string{"error": "external dependency failed"})
	default:
		a.logger.Error(r.Context(), err, "request failed")
		a.respond(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func errBody(err error) map[string]string {
	return map[string]string{"error": err.Error()}
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return claim.Errorf(claim.ErrValidation, "invalid request body: %v", err)
	}
	return nil
}
