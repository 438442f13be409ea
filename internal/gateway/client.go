// Package gateway is the HTTP client for the external payment provider.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"storefront/internal/checkout"
	"storefront/internal/infra"
)

// ErrMissingAPIKey indicates that the client was configured without credentials.
var ErrMissingAPIKey = errors.New("gateway: api key is required")

// Options configures the payment gateway client.
type Options struct {
	APIKey         string
	BaseURL        string
	HTTPClient     *http.Client
	Logger         *infra.Logger
	RequestTimeout time.Duration
}

// Client performs HTTP calls to the payment provider's checkout API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *infra.Logger
}

type createSessionRequest struct {
	ClientReference string `json:"client_reference"`
	Description     string `json:"description"`
	AmountMinor     int64  `json:"amount_minor"`
	Currency        string `json:"currency"`
	SuccessURL      string `json:"success_url"`
	CancelURL       string `json:"cancel_url"`
}

type createSessionResponse struct {
	ID          string `json:"id"`
	RedirectURL string `json:"redirect_url"`
}

type sessionStatusResponse struct {
	ID            string `json:"id"`
	Status        string `json:"status"`
	TransactionID string `json:"transaction_id"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewClient constructs a client with sane defaults and injected dependencies.
func NewClient(opts Options) (*Client, error) {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		return nil, errors.New("gateway: base url is required")
	}
	var logger *infra.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	} else {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}
	return &Client{
		apiKey:     strings.TrimSpace(opts.APIKey),
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// HasCredentials reports whether the client can perform remote calls.
func (c *Client) HasCredentials() bool {
	return c.apiKey != ""
}

// CreateCheckout opens a transaction at the provider for the
// server-resolved amount and returns the hosted payment page session.
func (c *Client) CreateCheckout(ctx context.Context, req checkout.CreateRequest) (*checkout.GatewaySession, error) {
	if !c.HasCredentials() {
		return nil, ErrMissingAPIKey
	}
	payload := createSessionRequest{
		ClientReference: req.SubjectID,
		Description:     req.PlanLabel,
		AmountMinor:     req.AmountMinor,
		Currency:        req.Currency,
		SuccessURL:      req.SuccessURL,
		CancelURL:       req.CancelURL,
	}
	var decoded createSessionResponse
	if err := c.do(ctx, http.MethodPost, "/v1/checkout/sessions", payload, &decoded); err != nil {
		return nil, err
	}
	if decoded.ID == "" {
		return nil, errors.New("gateway: empty session id")
	}
	c.logger.Debug().
		Str("gateway_session_id", decoded.ID).
		Str("subject_id", req.SubjectID).
		Msg("gateway: checkout session opened")
	return &checkout.GatewaySession{ID: decoded.ID, RedirectURL: decoded.RedirectURL}, nil
}

// GetCheckout polls the provider for the current outcome of a session.
func (c *Client) GetCheckout(ctx context.Context, gatewaySessionID string) (*checkout.Confirmation, error) {
	if !c.HasCredentials() {
		return nil, ErrMissingAPIKey
	}
	if strings.TrimSpace(gatewaySessionID) == "" {
		return nil, errors.New("gateway: session id is required")
	}
	var decoded sessionStatusResponse
	if err := c.do(ctx, http.MethodGet, "/v1/checkout/sessions/"+gatewaySessionID, nil, &decoded); err != nil {
		return nil, err
	}
	outcome, err := parseOutcome(decoded.Status)
	if err != nil {
		return nil, err
	}
	return &checkout.Confirmation{
		SessionID:     decoded.ID,
		Outcome:       outcome,
		TransactionID: decoded.TransactionID,
	}, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("gateway: encode request: %w", err)
		}
		body = bytes.NewReader(encoded)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("gateway: build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("gateway: http request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("gateway: read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		var detail errorResponse
		if err := json.Unmarshal(raw, &detail); err == nil && detail.Message != "" {
			return fmt.Errorf("gateway: %s (%s)", detail.Message, detail.Code)
		}
		return fmt.Errorf("gateway: status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("gateway: decode response: %w", err)
	}
	return nil
}

func parseOutcome(status string) (checkout.Outcome, error) {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "pending", "open", "created":
		return checkout.OutcomePending, nil
	case "completed", "paid":
		return checkout.OutcomeCompleted, nil
	case "cancelled", "canceled", "expired":
		return checkout.OutcomeCancelled, nil
	case "failed":
		return checkout.OutcomeFailed, nil
	default:
		return "", fmt.Errorf("gateway: unknown session status %q", status)
	}
}

var _ checkout.Gateway = (*Client)(nil)
