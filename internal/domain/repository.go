package domain

import (
	"context"
	"time"
)

// IdentityStore reads and writes a subject's current tier. Backed by the
// external identity/billing source; the core treats the tier as an input.
type IdentityStore interface {
	GetCurrentTier(ctx context.Context, subjectID string) (Tier, error)
	SetTier(ctx context.Context, subjectID string, tier Tier) error
}

// DeliveryLedger is the append-only record of grants. Append returns
// ErrDuplicateDelivery together with the existing record when the
// idempotency key has already been recorded; callers treat that as
// success. The duplicate check must be atomic at the storage layer since
// the ledger may be shared across processes.
type DeliveryLedger interface {
	Append(ctx context.Context, record *DeliveryRecord) (*DeliveryRecord, error)
	ListFor(ctx context.Context, subjectID string) ([]DeliveryRecord, error)
}

// SessionRepository persists checkout sessions. Status updates are
// compare-and-set on the expected current status so concurrent
// confirmations cannot re-open a terminal session; Transition reports
// whether the update applied.
type SessionRepository interface {
	Create(ctx context.Context, session *CheckoutSession) error
	GetByID(ctx context.Context, id string) (*CheckoutSession, error)
	GetByGatewaySession(ctx context.Context, gatewaySessionID string) (*CheckoutSession, error)
	AttachGateway(ctx context.Context, id, gatewaySessionID string) error
	Transition(ctx context.Context, id string, from, to SessionStatus, transactionID string) (bool, error)
	ListPendingOlderThan(ctx context.Context, age time.Duration, limit int) ([]CheckoutSession, error)
}

// AuditFeed is an optional append-only stream of delivery records for
// downstream reporting. The core only publishes, never reads back, and a
// feed failure must not affect the delivery path.
type AuditFeed interface {
	Publish(ctx context.Context, record DeliveryRecord)
}
