// Package audit streams delivery records to downstream reporting. Feeds
// are write-only and best-effort: a publish failure is logged, never
// returned, so the delivery path stays unaffected.
package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"storefront/internal/domain"
	"storefront/internal/infra"
)

// LogFeed writes every delivery record to the structured log. It is the
// default feed when no external endpoint is configured.
type LogFeed struct {
	Logger infra.Logger
}

func (f *LogFeed) Publish(ctx context.Context, record domain.DeliveryRecord) {
	f.Logger.Info().
		Str("delivery_id", record.ID).
		Str("subject_id", record.SubjectID).
		Str("template_key", record.TemplateKey).
		Str("granted_tier", string(record.GrantedTier)).
		Str("idempotency_key", record.IdempotencyKey).
		Msg("audit: delivery recorded")
}

// HTTPFeed posts delivery records to an external collector. Publish is
// fire-and-forget: timeouts and non-2xx responses are logged and dropped.
type HTTPFeed struct {
	endpoint   string
	httpClient *http.Client
	logger     infra.Logger
}

// HTTPOptions configures the HTTP audit feed.
type HTTPOptions struct {
	Endpoint       string
	HTTPClient     *http.Client
	Logger         infra.Logger
	RequestTimeout time.Duration
}

// NewHTTPFeed constructs a feed posting to opts.Endpoint.
func NewHTTPFeed(opts HTTPOptions) *HTTPFeed {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = 5 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &HTTPFeed{
		endpoint:   strings.TrimRight(opts.Endpoint, "/"),
		httpClient: httpClient,
		logger:     opts.Logger,
	}
}

func (f *HTTPFeed) Publish(ctx context.Context, record domain.DeliveryRecord) {
	body, err := json.Marshal(record)
	if err != nil {
		f.logger.Error().Err(err).Msg("audit: encode record")
		return
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.endpoint, bytes.NewReader(body))
	if err != nil {
		f.logger.Error().Err(err).Msg("audit: build request")
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		f.logger.Error().Err(err).Str("delivery_id", record.ID).Msg("audit: publish failed")
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		f.logger.Error().
			Int("status", resp.StatusCode).
			Str("delivery_id", record.ID).
			Msg("audit: collector rejected record")
		return
	}
	f.logger.Debug().Str("delivery_id", record.ID).Msg("audit: record published")
}

// Select picks the feed for the configured endpoint: the HTTP collector
// when one is set, the structured log otherwise.
func Select(endpoint string, logger infra.Logger) domain.AuditFeed {
	if strings.TrimSpace(endpoint) != "" {
		return NewHTTPFeed(HTTPOptions{Endpoint: endpoint, Logger: logger})
	}
	return &LogFeed{Logger: logger}
}

var (
	_ domain.AuditFeed = (*LogFeed)(nil)
	_ domain.AuditFeed = (*HTTPFeed)(nil)
)
