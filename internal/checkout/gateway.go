package checkout

import "context"

// Outcome is the gateway's verdict on a checkout transaction.
type Outcome string

const (
	OutcomePending   Outcome = "pending"
	OutcomeCompleted Outcome = "completed"
	OutcomeCancelled Outcome = "cancelled"
	OutcomeFailed    Outcome = "failed"
)

// CreateRequest is the payload sent to the gateway when opening a
// transaction. The amount is the server-resolved price.
type CreateRequest struct {
	SubjectID   string
	PlanLabel   string
	AmountMinor int64
	Currency    string
	SuccessURL  string
	CancelURL   string
}

// GatewaySession identifies an opened gateway transaction and where to
// send the purchaser.
type GatewaySession struct {
	ID          string
	RedirectURL string
}

// Confirmation is the gateway's out-of-band outcome signal, delivered by
// webhook or by polling the status API.
type Confirmation struct {
	SessionID     string  `json:"session_id"`
	Outcome       Outcome `json:"outcome"`
	TransactionID string  `json:"transaction_id"`
}

// Gateway is the external payment provider. Money movement happens there;
// the orchestrator only opens transactions and reacts to confirmations.
type Gateway interface {
	CreateCheckout(ctx context.Context, req CreateRequest) (*GatewaySession, error)
	GetCheckout(ctx context.Context, gatewaySessionID string) (*Confirmation, error)
}
