package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"storefront/internal/bundle"
	"storefront/internal/catalog"
	"storefront/internal/checkout"
	"storefront/internal/domain"
	"storefront/internal/entitlement"
	"storefront/internal/infra"
	mw "storefront/internal/middleware"
)

// App bundles the dependencies the HTTP handlers need.
type App struct {
	Logger        infra.Logger
	SQL           infra.SQLExecutor
	Catalog       *catalog.Catalog
	Evaluator     *entitlement.Evaluator
	Orchestrator  *checkout.Orchestrator
	Ledger        domain.DeliveryLedger
	Bundles       *bundle.Service
	WebhookSecret string
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, status int, code, message string) {
	a.json(w, status, map[string]any{
		"error": map[string]string{"code": code, "message": message},
	})
}

func (a *App) currentSubjectID(r *http.Request) string {
	return mw.SubjectIDFromContext(r.Context())
}

// domainError translates sentinel errors into HTTP responses. Unmatched
// errors fall through to a generic 500 without leaking internals.
func (a *App) domainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		a.error(w, http.StatusNotFound, "not_found", "resource not found")
	case errors.Is(err, domain.ErrUnknownTemplate):
		a.error(w, http.StatusNotFound, "unknown_template", "template not found")
	case errors.Is(err, domain.ErrInvalidPlan):
		a.error(w, http.StatusBadRequest, "invalid_plan", "unrecognized plan")
	case errors.Is(err, domain.ErrSessionClosed):
		a.error(w, http.StatusConflict, "session_closed", "session already reached a terminal state")
	case errors.Is(err, domain.ErrGateway):
		a.error(w, http.StatusBadGateway, "gateway", "payment gateway failure")
	case errors.Is(err, domain.ErrStorage):
		a.error(w, http.StatusInternalServerError, "storage", "storage unavailable")
	default:
		a.Logger.Error().Err(err).Str("path", r.URL.Path).Msg("handlers: unexpected error")
		a.error(w, http.StatusInternalServerError, "internal", "internal error")
	}
}
