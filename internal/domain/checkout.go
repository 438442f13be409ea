package domain

import "time"

// SessionStatus enumerates checkout session lifecycle states.
type SessionStatus string

const (
	SessionCreated   SessionStatus = "created"
	SessionPending   SessionStatus = "pending"
	SessionCompleted SessionStatus = "completed"
	SessionCancelled SessionStatus = "cancelled"
	SessionFailed    SessionStatus = "failed"
)

// Terminal reports whether the status is final. No session leaves a
// terminal status.
func (s SessionStatus) Terminal() bool {
	switch s {
	case SessionCompleted, SessionCancelled, SessionFailed:
		return true
	}
	return false
}

// CanTransition reports whether the one-directional lifecycle permits
// moving from s to next.
func (s SessionStatus) CanTransition(next SessionStatus) bool {
	if s.Terminal() {
		return false
	}
	switch s {
	case SessionCreated:
		return next == SessionPending || next == SessionCancelled || next == SessionFailed
	case SessionPending:
		return next.Terminal()
	}
	return false
}

// CheckoutSession tracks one purchase attempt. The amount is resolved
// server-side from the target plan; client-supplied amounts are never
// stored. TemplateKey records the catalog item whose denial triggered the
// upgrade, when there is one.
type CheckoutSession struct {
	ID               string        `json:"id"`
	SubjectID        string        `json:"subject_id"`
	TargetPlan       Tier          `json:"target_plan"`
	TemplateKey      string        `json:"template_key,omitempty"`
	AmountMinor      int64         `json:"amount_minor"`
	Currency         string        `json:"currency"`
	Status           SessionStatus `json:"status"`
	GatewaySessionID string        `json:"gateway_session_id,omitempty"`
	TransactionID    string        `json:"transaction_id,omitempty"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}
