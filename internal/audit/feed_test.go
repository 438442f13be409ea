package audit

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"storefront/internal/domain"
)

func TestHTTPFeedPostsRecord(t *testing.T) {
	var got domain.DeliveryRecord
	var contentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	feed := NewHTTPFeed(HTTPOptions{Endpoint: srv.URL, Logger: zerolog.New(io.Discard)})
	feed.Publish(context.Background(), domain.DeliveryRecord{
		ID:             "rec-1",
		SubjectID:      "user-1",
		TemplateKey:    "tpl_pro_saas",
		GrantedTier:    domain.TierPro,
		IdempotencyKey: "tx-9",
	})

	if contentType != "application/json" {
		t.Fatalf("content type = %q", contentType)
	}
	if got.ID != "rec-1" || got.TemplateKey != "tpl_pro_saas" {
		t.Fatalf("posted record = %+v", got)
	}
}

func TestHTTPFeedSwallowsCollectorErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	feed := NewHTTPFeed(HTTPOptions{Endpoint: srv.URL, Logger: zerolog.New(io.Discard)})
	// Must not panic or block the caller.
	feed.Publish(context.Background(), domain.DeliveryRecord{ID: "rec-1"})
}

func TestSelectFallsBackToLog(t *testing.T) {
	if _, ok := Select("", zerolog.New(io.Discard)).(*LogFeed); !ok {
		t.Fatal("expected log feed for empty endpoint")
	}
	if _, ok := Select("http://collector.local/feed", zerolog.New(io.Discard)).(*HTTPFeed); !ok {
		t.Fatal("expected http feed for configured endpoint")
	}
}
