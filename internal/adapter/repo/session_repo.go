package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"storefront/internal/domain"
	"storefront/internal/infra"
	"storefront/internal/sqlinline"
)

// SessionRepositoryPG implements domain.SessionRepository on PostgreSQL.
// Status changes are compare-and-set against the expected current status
// so concurrent confirmation handlers cannot re-open terminal sessions.
type SessionRepositoryPG struct {
	sql infra.SQLExecutor
}

// NewSessionRepository creates a new checkout session repo.
func NewSessionRepository(sql infra.SQLExecutor) *SessionRepositoryPG {
	return &SessionRepositoryPG{sql: sql}
}

// Create inserts a new checkout session.
func (r *SessionRepositoryPG) Create(ctx context.Context, session *domain.CheckoutSession) error {
	row := r.sql.QueryRow(ctx, sqlinline.QInsertCheckoutSession,
		session.ID,
		session.SubjectID,
		string(session.TargetPlan),
		session.TemplateKey,
		session.AmountMinor,
		session.Currency,
		string(session.Status),
	)
	if err := row.Scan(&session.CreatedAt); err != nil {
		return fmt.Errorf("insert checkout session: %w", err)
	}
	session.UpdatedAt = session.CreatedAt
	return nil
}

// GetByID loads a session by its identifier.
func (r *SessionRepositoryPG) GetByID(ctx context.Context, id string) (*domain.CheckoutSession, error) {
	return r.scanSession(r.sql.QueryRow(ctx, sqlinline.QSelectCheckoutSessionByID, id))
}

// GetByGatewaySession loads a session via the gateway's session identifier.
func (r *SessionRepositoryPG) GetByGatewaySession(ctx context.Context, gatewaySessionID string) (*domain.CheckoutSession, error) {
	return r.scanSession(r.sql.QueryRow(ctx, sqlinline.QSelectCheckoutSessionByGateway, gatewaySessionID))
}

// AttachGateway records the opened gateway transaction and moves the
// session from created to pending.
func (r *SessionRepositoryPG) AttachGateway(ctx context.Context, id, gatewaySessionID string) error {
	tag, err := r.sql.Exec(ctx, sqlinline.QAttachGatewaySession, id, gatewaySessionID)
	if err != nil {
		return fmt.Errorf("attach gateway session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Transition applies a compare-and-set status update and reports whether
// the row changed. A non-empty transactionID is recorded alongside the
// new status.
func (r *SessionRepositoryPG) Transition(ctx context.Context, id string, from, to domain.SessionStatus, transactionID string) (bool, error) {
	if !from.CanTransition(to) {
		return false, nil
	}
	tag, err := r.sql.Exec(ctx, sqlinline.QTransitionCheckoutSession, id, string(from), string(to), transactionID)
	if err != nil {
		return false, fmt.Errorf("transition checkout session: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// ListPendingOlderThan returns sessions stuck in pending for longer than
// age, oldest first.
func (r *SessionRepositoryPG) ListPendingOlderThan(ctx context.Context, age time.Duration, limit int) ([]domain.CheckoutSession, error) {
	interval := fmt.Sprintf("%d seconds", int64(age.Seconds()))
	rows, err := r.sql.Query(ctx, sqlinline.QSelectStalePendingSessions, interval, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending sessions: %w", err)
	}
	defer rows.Close()

	var out []domain.CheckoutSession
	for rows.Next() {
		var s domain.CheckoutSession
		var plan, status string
		if err := rows.Scan(&s.ID, &s.SubjectID, &plan, &s.TemplateKey, &s.AmountMinor, &s.Currency,
			&status, &s.GatewaySessionID, &s.TransactionID, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan pending session: %w", err)
		}
		s.TargetPlan = domain.Tier(plan)
		s.Status = domain.SessionStatus(status)
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *SessionRepositoryPG) scanSession(row pgx.Row) (*domain.CheckoutSession, error) {
	var s domain.CheckoutSession
	var plan, status string
	err := row.Scan(&s.ID, &s.SubjectID, &plan, &s.TemplateKey, &s.AmountMinor, &s.Currency,
		&status, &s.GatewaySessionID, &s.TransactionID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("select checkout session: %w", err)
	}
	s.TargetPlan = domain.Tier(plan)
	s.Status = domain.SessionStatus(status)
	return &s, nil
}

var _ domain.SessionRepository = (*SessionRepositoryPG)(nil)
