package domain

import "time"

// DeliveryRecord is one append-only entry in the delivery ledger. At most
// one record exists per (subject, template key, idempotency key); replayed
// grant attempts for the same purchase must not create a second row.
type DeliveryRecord struct {
	ID             string    `json:"id"`
	SubjectID      string    `json:"subject_id"`
	TemplateKey    string    `json:"template_key"`
	GrantedTier    Tier      `json:"granted_tier"`
	IdempotencyKey string    `json:"idempotency_key"`
	CreatedAt      time.Time `json:"created_at"`
}
