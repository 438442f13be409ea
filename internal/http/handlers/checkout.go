package handlers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"storefront/internal/checkout"
)

type checkoutRequest struct {
	Plan        string `json:"plan"`
	TemplateKey string `json:"template_key"`
}

// CheckoutCreate opens a checkout session for the requested plan. The
// amount is resolved server-side; a client-supplied amount is ignored by
// construction since the payload has no field for one.
func (a *App) CheckoutCreate(w http.ResponseWriter, r *http.Request) {
	subjectID := a.currentSubjectID(r)
	if subjectID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}
	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	session, redirectURL, err := a.Orchestrator.Create(r.Context(), subjectID, req.Plan, req.TemplateKey)
	if err != nil {
		a.domainError(w, r, err)
		return
	}
	a.json(w, http.StatusCreated, map[string]any{
		"session":      session,
		"redirect_url": redirectURL,
	})
}

// CheckoutCancel abandons a pending session. Only the session owner can
// cancel; a repeat cancel is a no-op.
func (a *App) CheckoutCancel(w http.ResponseWriter, r *http.Request) {
	subjectID := a.currentSubjectID(r)
	if subjectID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}
	session, err := a.Orchestrator.Cancel(r.Context(), chi.URLParam(r, "id"), subjectID)
	if err != nil {
		a.domainError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{"session": session})
}

// GatewayWebhook receives out-of-band confirmations from the payment
// provider. The body is authenticated with an HMAC signature header
// before any state is touched; replayed confirmations are safe because
// the orchestrator treats them as no-ops.
func (a *App) GatewayWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "unreadable payload")
		return
	}
	if !a.verifyWebhookSignature(body, r.Header.Get("X-Gateway-Signature")) {
		a.error(w, http.StatusUnauthorized, "unauthorized", "invalid webhook signature")
		return
	}
	var conf checkout.Confirmation
	if err := json.Unmarshal(body, &conf); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	session, err := a.Orchestrator.HandleConfirmation(r.Context(), conf)
	if err != nil {
		a.domainError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{"session": session})
}

func (a *App) verifyWebhookSignature(body []byte, signature string) bool {
	if a.WebhookSecret == "" || signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(a.WebhookSecret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
