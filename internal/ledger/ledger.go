// Package ledger is the append-only record of grants. Its idempotent
// append is the system's core correctness property: one payment, one
// delivery record, no matter how often a confirmation is replayed.
package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"storefront/internal/domain"
	"storefront/internal/infra"
	"storefront/internal/sqlinline"
)

// LedgerPG implements domain.DeliveryLedger on PostgreSQL. Idempotency is
// enforced by a unique index over (subject_id, template_key,
// idempotency_key) together with `on conflict do nothing`, so the check
// is atomic in the database and holds across processes; no in-process
// locking is involved.
type LedgerPG struct {
	sql infra.SQLExecutor
}

// NewLedger creates a new delivery ledger.
func NewLedger(sql infra.SQLExecutor) *LedgerPG {
	return &LedgerPG{sql: sql}
}

// Append inserts the record unless its idempotency key was already
// recorded for the same subject and template. On a duplicate it returns
// the existing record together with ErrDuplicateDelivery; callers treat
// that as success.
func (l *LedgerPG) Append(ctx context.Context, record *domain.DeliveryRecord) (*domain.DeliveryRecord, error) {
	row := l.sql.QueryRow(ctx, sqlinline.QAppendDelivery,
		record.ID,
		record.SubjectID,
		record.TemplateKey,
		string(record.GrantedTier),
		record.IdempotencyKey,
	)
	var id string
	if err := row.Scan(&id, &record.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return l.duplicate(ctx, record)
		}
		return nil, fmt.Errorf("%w: append delivery: %v", domain.ErrStorage, err)
	}
	record.ID = id
	stored := *record
	return &stored, nil
}

// duplicate loads the record that won the conflict.
func (l *LedgerPG) duplicate(ctx context.Context, record *domain.DeliveryRecord) (*domain.DeliveryRecord, error) {
	row := l.sql.QueryRow(ctx, sqlinline.QSelectDeliveryByKey,
		record.SubjectID, record.TemplateKey, record.IdempotencyKey)
	existing, err := scanDelivery(row)
	if err != nil {
		return nil, fmt.Errorf("%w: load duplicate delivery: %v", domain.ErrStorage, err)
	}
	return existing, domain.ErrDuplicateDelivery
}

// ListFor returns all delivery records for a subject in chronological
// order.
func (l *LedgerPG) ListFor(ctx context.Context, subjectID string) ([]domain.DeliveryRecord, error) {
	rows, err := l.sql.Query(ctx, sqlinline.QListDeliveriesForSubject, subjectID)
	if err != nil {
		return nil, fmt.Errorf("%w: list deliveries: %v", domain.ErrStorage, err)
	}
	defer rows.Close()

	var out []domain.DeliveryRecord
	for rows.Next() {
		var r domain.DeliveryRecord
		var tier string
		if err := rows.Scan(&r.ID, &r.SubjectID, &r.TemplateKey, &tier, &r.IdempotencyKey, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: scan delivery: %v", domain.ErrStorage, err)
		}
		r.GrantedTier = domain.Tier(tier)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate deliveries: %v", domain.ErrStorage, err)
	}
	return out, nil
}

func scanDelivery(row pgx.Row) (*domain.DeliveryRecord, error) {
	var r domain.DeliveryRecord
	var tier string
	if err := row.Scan(&r.ID, &r.SubjectID, &r.TemplateKey, &tier, &r.IdempotencyKey, &r.CreatedAt); err != nil {
		return nil, err
	}
	r.GrantedTier = domain.Tier(tier)
	return &r, nil
}

var _ domain.DeliveryLedger = (*LedgerPG)(nil)
