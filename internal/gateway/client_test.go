package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"storefront/internal/checkout"
)

func TestCreateCheckoutSendsServerAmount(t *testing.T) {
	var got createSessionRequest
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/checkout/sessions" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		auth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		json.NewEncoder(w).Encode(createSessionResponse{
			ID:          "gw-123",
			RedirectURL: "https://pay.example.com/gw-123",
		})
	}))
	defer srv.Close()

	client, err := NewClient(Options{APIKey: "secret", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	session, err := client.CreateCheckout(context.Background(), checkout.CreateRequest{
		SubjectID:   "user-1",
		PlanLabel:   "Pro Plan",
		AmountMinor: 7500,
		Currency:    "usd",
		SuccessURL:  "https://app.example.com/success",
		CancelURL:   "https://app.example.com/cancel",
	})
	if err != nil {
		t.Fatalf("CreateCheckout: %v", err)
	}
	if session.ID != "gw-123" || session.RedirectURL != "https://pay.example.com/gw-123" {
		t.Fatalf("session = %+v", session)
	}
	if got.AmountMinor != 7500 || got.Currency != "usd" {
		t.Fatalf("amount sent = %d %s", got.AmountMinor, got.Currency)
	}
	if auth != "Bearer secret" {
		t.Fatalf("authorization = %q", auth)
	}
}

func TestCreateCheckoutWithoutCredentials(t *testing.T) {
	client, err := NewClient(Options{BaseURL: "http://gateway.local"})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if _, err := client.CreateCheckout(context.Background(), checkout.CreateRequest{}); err != ErrMissingAPIKey {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}
}

func TestGetCheckoutMapsProviderStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, "/v1/checkout/sessions/")
		json.NewEncoder(w).Encode(sessionStatusResponse{
			ID:            id,
			Status:        "paid",
			TransactionID: "tx-42",
		})
	}))
	defer srv.Close()

	client, err := NewClient(Options{APIKey: "secret", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	conf, err := client.GetCheckout(context.Background(), "gw-123")
	if err != nil {
		t.Fatalf("GetCheckout: %v", err)
	}
	if conf.SessionID != "gw-123" || conf.Outcome != checkout.OutcomeCompleted || conf.TransactionID != "tx-42" {
		t.Fatalf("confirmation = %+v", conf)
	}
}

func TestGetCheckoutRejectsUnknownStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(sessionStatusResponse{ID: "gw-1", Status: "mystery"})
	}))
	defer srv.Close()

	client, err := NewClient(Options{APIKey: "secret", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if _, err := client.GetCheckout(context.Background(), "gw-1"); err == nil {
		t.Fatal("expected error for unknown status")
	}
}

func TestErrorResponseSurfacesProviderMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		json.NewEncoder(w).Encode(errorResponse{Code: "card_declined", Message: "card was declined"})
	}))
	defer srv.Close()

	client, err := NewClient(Options{APIKey: "secret", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	_, err = client.CreateCheckout(context.Background(), checkout.CreateRequest{AmountMinor: 4000, Currency: "usd"})
	if err == nil || !strings.Contains(err.Error(), "card was declined") {
		t.Fatalf("expected provider message, got %v", err)
	}
}
