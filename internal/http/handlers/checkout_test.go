package handlers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"storefront/internal/checkout"
	"storefront/internal/domain"
	mw "storefront/internal/middleware"
)

func postJSON(t *testing.T, path, subjectID, body string) (*httptest.ResponseRecorder, *http.Request) {
	t.Helper()
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if subjectID != "" {
		req = req.WithContext(mw.ContextWithSubjectID(req.Context(), subjectID))
	}
	return httptest.NewRecorder(), req
}

func signBody(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func createSession(t *testing.T, fx *appFixture, subjectID, plan, templateKey string) (sessionID, gatewaySessionID string) {
	t.Helper()
	rr, req := postJSON(t, "/v1/checkout", subjectID,
		`{"plan":"`+plan+`","template_key":"`+templateKey+`"}`)
	fx.app.CheckoutCreate(rr, req)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create checkout: status = %d: %s", rr.Code, rr.Body.String())
	}
	var payload struct {
		Session     domain.CheckoutSession `json:"session"`
		RedirectURL string                 `json:"redirect_url"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.RedirectURL == "" {
		t.Fatal("missing redirect url")
	}
	return payload.Session.ID, payload.Session.GatewaySessionID
}

func TestCheckoutCreate_ResolvesPriceServerSide(t *testing.T) {
	fx := newAppFixture(t)

	// The payload has no amount field; a forged one is simply unknown JSON.
	rr, req := postJSON(t, "/v1/checkout", "user-1",
		`{"plan":"pro","template_key":"tpl_pro_saas","amount":1}`)
	fx.app.CheckoutCreate(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rr.Code, rr.Body.String())
	}
	var payload struct {
		Session domain.CheckoutSession `json:"session"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Session.AmountMinor != 7500 || payload.Session.Currency != "usd" {
		t.Fatalf("amount = %d %s", payload.Session.AmountMinor, payload.Session.Currency)
	}
	if payload.Session.Status != domain.SessionPending {
		t.Fatalf("status = %q", payload.Session.Status)
	}
}

func TestCheckoutCreate_InvalidPlanNeverReachesGateway(t *testing.T) {
	fx := newAppFixture(t)

	rr, req := postJSON(t, "/v1/checkout", "user-1", `{"plan":"platinum"}`)
	fx.app.CheckoutCreate(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rr.Code)
	}
	if fx.gateway.createCalls != 0 {
		t.Fatalf("gateway called %d times for an invalid plan", fx.gateway.createCalls)
	}
}

func TestCheckoutCancel_OwnerOnly(t *testing.T) {
	fx := newAppFixture(t)
	sessionID, _ := createSession(t, fx, "user-1", "basic", "")

	rr, req := newRequest(t, "POST", "/v1/checkout/"+sessionID+"/cancel", "user-2")
	fx.app.CheckoutCancel(rr, withURLParam(req, "id", sessionID))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("foreign cancel: status = %d", rr.Code)
	}

	rr, req = newRequest(t, "POST", "/v1/checkout/"+sessionID+"/cancel", "user-1")
	fx.app.CheckoutCancel(rr, withURLParam(req, "id", sessionID))
	if rr.Code != http.StatusOK {
		t.Fatalf("owner cancel: status = %d: %s", rr.Code, rr.Body.String())
	}
}

func TestGatewayWebhook_RejectsBadSignature(t *testing.T) {
	fx := newAppFixture(t)

	body := []byte(`{"session_id":"gw-1","outcome":"completed","transaction_id":"tx-1"}`)
	req := httptest.NewRequest("POST", "/v1/webhooks/gateway", strings.NewReader(string(body)))
	req.Header.Set("X-Gateway-Signature", "deadbeef")
	rr := httptest.NewRecorder()

	fx.app.GatewayWebhook(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", rr.Code)
	}
}

func TestGatewayWebhook_CompletionGrantsOnce(t *testing.T) {
	fx := newAppFixture(t)
	_, gatewaySessionID := createSession(t, fx, "user-1", "pro", "tpl_pro_saas")

	conf := checkout.Confirmation{
		SessionID:     gatewaySessionID,
		Outcome:       checkout.OutcomeCompleted,
		TransactionID: "tx-77",
	}
	body, _ := json.Marshal(conf)

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest("POST", "/v1/webhooks/gateway", strings.NewReader(string(body)))
		req.Header.Set("X-Gateway-Signature", signBody("whsec-test", body))
		rr := httptest.NewRecorder()
		fx.app.GatewayWebhook(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("delivery %d: status = %d: %s", i, rr.Code, rr.Body.String())
		}
	}

	if tier := fx.identity.tiers["user-1"]; tier != domain.TierPro {
		t.Fatalf("tier = %q", tier)
	}
	if len(fx.ledger.records) != 1 {
		t.Fatalf("expected 1 ledger record after replay, got %d", len(fx.ledger.records))
	}
	if fx.ledger.records[0].IdempotencyKey != "tx-77" {
		t.Fatalf("idempotency key = %q", fx.ledger.records[0].IdempotencyKey)
	}
}

func TestGatewayWebhook_CompletionAfterCancelConflicts(t *testing.T) {
	fx := newAppFixture(t)
	sessionID, gatewaySessionID := createSession(t, fx, "user-1", "pro", "")

	rr, req := newRequest(t, "POST", "/v1/checkout/"+sessionID+"/cancel", "user-1")
	fx.app.CheckoutCancel(rr, withURLParam(req, "id", sessionID))
	if rr.Code != http.StatusOK {
		t.Fatalf("cancel: status = %d", rr.Code)
	}

	conf := checkout.Confirmation{
		SessionID:     gatewaySessionID,
		Outcome:       checkout.OutcomeCompleted,
		TransactionID: "tx-1",
	}
	body, _ := json.Marshal(conf)
	whReq := httptest.NewRequest("POST", "/v1/webhooks/gateway", strings.NewReader(string(body)))
	whReq.Header.Set("X-Gateway-Signature", signBody("whsec-test", body))
	whRR := httptest.NewRecorder()
	fx.app.GatewayWebhook(whRR, whReq)

	if whRR.Code != http.StatusConflict {
		t.Fatalf("status = %d", whRR.Code)
	}
	if len(fx.ledger.records) != 0 {
		t.Fatal("cancelled session must not produce a grant")
	}
}
