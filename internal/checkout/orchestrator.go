// Package checkout drives a purchase from denied access to a recorded
// grant, delegating money movement to the external payment gateway.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"storefront/internal/domain"
	"storefront/internal/entitlement"
)

const (
	defaultAppendRetries = 3
	defaultRetryDelay    = 250 * time.Millisecond
)

// Options configures the orchestrator.
type Options struct {
	Sessions   domain.SessionRepository
	Identity   domain.IdentityStore
	Ledger     domain.DeliveryLedger
	Evaluator  *entitlement.Evaluator
	Gateway    Gateway
	Audit      domain.AuditFeed
	Logger     zerolog.Logger
	SuccessURL string
	CancelURL  string

	// AppendRetries bounds how often the completed transition retries the
	// ledger append before reporting failure. The append is idempotent, so
	// retrying is always safe and never re-charges.
	AppendRetries int
	RetryDelay    time.Duration
}

// Orchestrator is the checkout state machine. Sessions move
// created -> pending -> completed|cancelled|failed, never backwards, and
// the completed transition performs the grant exactly once per gateway
// transaction.
type Orchestrator struct {
	sessions      domain.SessionRepository
	identity      domain.IdentityStore
	ledger        domain.DeliveryLedger
	evaluator     *entitlement.Evaluator
	gateway       Gateway
	audit         domain.AuditFeed
	logger        zerolog.Logger
	successURL    string
	cancelURL     string
	appendRetries int
	retryDelay    time.Duration
}

// NewOrchestrator validates the wiring and returns an orchestrator.
func NewOrchestrator(opts Options) (*Orchestrator, error) {
	if opts.Sessions == nil || opts.Identity == nil || opts.Ledger == nil {
		return nil, errors.New("checkout: sessions, identity and ledger are required")
	}
	if opts.Evaluator == nil {
		return nil, errors.New("checkout: evaluator is required")
	}
	if opts.Gateway == nil {
		return nil, errors.New("checkout: gateway is required")
	}
	retries := opts.AppendRetries
	if retries <= 0 {
		retries = defaultAppendRetries
	}
	delay := opts.RetryDelay
	if delay <= 0 {
		delay = defaultRetryDelay
	}
	audit := opts.Audit
	if audit == nil {
		audit = nopFeed{}
	}
	return &Orchestrator{
		sessions:      opts.Sessions,
		identity:      opts.Identity,
		ledger:        opts.Ledger,
		evaluator:     opts.Evaluator,
		gateway:       opts.Gateway,
		audit:         audit,
		logger:        opts.Logger,
		successURL:    opts.SuccessURL,
		cancelURL:     opts.CancelURL,
		appendRetries: retries,
		retryDelay:    delay,
	}, nil
}

type nopFeed struct{}

func (nopFeed) Publish(context.Context, domain.DeliveryRecord) {}

// Create opens a checkout session for subjectID towards planName. The
// price is resolved server-side; an unrecognized plan fails before any
// gateway call. templateKey optionally names the catalog item whose
// denial triggered the purchase and is validated when present. Returns
// the persisted session and the gateway redirect URL.
func (o *Orchestrator) Create(ctx context.Context, subjectID, planName, templateKey string) (*domain.CheckoutSession, string, error) {
	plan, err := ParsePlan(planName)
	if err != nil {
		return nil, "", err
	}
	price, err := ResolvePrice(plan)
	if err != nil {
		return nil, "", err
	}
	if templateKey != "" {
		if _, err := o.evaluator.Catalog().Lookup(templateKey); err != nil {
			return nil, "", err
		}
	}

	session := &domain.CheckoutSession{
		ID:          uuid.NewString(),
		SubjectID:   subjectID,
		TargetPlan:  plan,
		TemplateKey: templateKey,
		AmountMinor: price.AmountMinor,
		Currency:    price.Currency,
		Status:      domain.SessionCreated,
	}
	if err := o.sessions.Create(ctx, session); err != nil {
		return nil, "", fmt.Errorf("%w: create session: %v", domain.ErrStorage, err)
	}

	gw, err := o.gateway.CreateCheckout(ctx, CreateRequest{
		SubjectID:   subjectID,
		PlanLabel:   price.Label,
		AmountMinor: price.AmountMinor,
		Currency:    price.Currency,
		SuccessURL:  o.successURL,
		CancelURL:   o.cancelURL,
	})
	if err != nil {
		if _, trErr := o.sessions.Transition(ctx, session.ID, domain.SessionCreated, domain.SessionFailed, ""); trErr != nil {
			o.logger.Error().Err(trErr).Str("session_id", session.ID).Msg("checkout: mark session failed")
		}
		session.Status = domain.SessionFailed
		return session, "", fmt.Errorf("%w: open transaction: %v", domain.ErrGateway, err)
	}

	if err := o.sessions.AttachGateway(ctx, session.ID, gw.ID); err != nil {
		return nil, "", fmt.Errorf("%w: attach gateway session: %v", domain.ErrStorage, err)
	}
	session.Status = domain.SessionPending
	session.GatewaySessionID = gw.ID
	return session, gw.RedirectURL, nil
}

// Cancel moves a session to cancelled on an explicit abandon signal from
// its owner. Cancelling an already cancelled session is a no-op; any
// other terminal state fails with ErrSessionClosed.
func (o *Orchestrator) Cancel(ctx context.Context, sessionID, subjectID string) (*domain.CheckoutSession, error) {
	session, err := o.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.SubjectID != subjectID {
		return nil, domain.ErrNotFound
	}
	if session.Status.Terminal() {
		if session.Status == domain.SessionCancelled {
			return session, nil
		}
		return nil, fmt.Errorf("%w: session is %s", domain.ErrSessionClosed, session.Status)
	}
	ok, err := o.sessions.Transition(ctx, session.ID, session.Status, domain.SessionCancelled, "")
	if err != nil {
		return nil, fmt.Errorf("%w: cancel session: %v", domain.ErrStorage, err)
	}
	if !ok {
		return o.Cancel(ctx, sessionID, subjectID)
	}
	session.Status = domain.SessionCancelled
	return session, nil
}

// HandleConfirmation applies a gateway outcome to the session it names.
// Confirmations replay: applying the same outcome twice is a no-op, and a
// replayed completion never appends a second delivery record. A
// confirmation that conflicts with a different terminal state fails with
// ErrSessionClosed.
func (o *Orchestrator) HandleConfirmation(ctx context.Context, conf Confirmation) (*domain.CheckoutSession, error) {
	if conf.SessionID == "" {
		return nil, fmt.Errorf("%w: confirmation without session id", domain.ErrNotFound)
	}
	session, err := o.sessions.GetByGatewaySession(ctx, conf.SessionID)
	if err != nil {
		return nil, err
	}

	switch conf.Outcome {
	case OutcomePending:
		return session, nil
	case OutcomeCompleted:
		return o.complete(ctx, session, conf.TransactionID)
	case OutcomeCancelled:
		return o.close(ctx, session, domain.SessionCancelled)
	case OutcomeFailed:
		return o.close(ctx, session, domain.SessionFailed)
	default:
		return nil, fmt.Errorf("unknown gateway outcome %q", conf.Outcome)
	}
}

func (o *Orchestrator) complete(ctx context.Context, session *domain.CheckoutSession, transactionID string) (*domain.CheckoutSession, error) {
	switch session.Status {
	case domain.SessionCompleted:
		// Replayed confirmation. The grant is idempotent, so run it again
		// to heal a partially applied earlier attempt.
		if err := o.grant(ctx, session, session.TransactionID); err != nil {
			return nil, err
		}
		return session, nil
	case domain.SessionCancelled, domain.SessionFailed:
		return nil, fmt.Errorf("%w: completion for %s session", domain.ErrSessionClosed, session.Status)
	}

	if transactionID == "" {
		return nil, fmt.Errorf("%w: completion without transaction id", domain.ErrGateway)
	}
	ok, err := o.sessions.Transition(ctx, session.ID, domain.SessionPending, domain.SessionCompleted, transactionID)
	if err != nil {
		return nil, fmt.Errorf("%w: complete session: %v", domain.ErrStorage, err)
	}
	if !ok {
		// Lost a race against another confirmation handler; re-read and
		// treat as a replay.
		current, err := o.sessions.GetByID(ctx, session.ID)
		if err != nil {
			return nil, err
		}
		return o.complete(ctx, current, transactionID)
	}
	session.Status = domain.SessionCompleted
	session.TransactionID = transactionID

	if err := o.grant(ctx, session, transactionID); err != nil {
		return nil, err
	}
	return session, nil
}

// grant performs the completed-transition side effects: raise the
// subject's tier, confirm entitlement, and record the delivery keyed by
// the gateway transaction. Every step is idempotent.
func (o *Orchestrator) grant(ctx context.Context, session *domain.CheckoutSession, transactionID string) error {
	if err := o.identity.SetTier(ctx, session.SubjectID, session.TargetPlan); err != nil {
		return fmt.Errorf("%w: set tier: %v", domain.ErrStorage, err)
	}

	if session.TemplateKey != "" {
		decision, err := o.evaluator.Evaluate(ctx, session.SubjectID, session.TemplateKey)
		if err != nil {
			o.logger.Warn().Err(err).Str("session_id", session.ID).Msg("checkout: post-payment evaluation failed")
		} else if !decision.Allowed {
			o.logger.Error().
				Str("session_id", session.ID).
				Str("template_key", session.TemplateKey).
				Str("target_plan", string(session.TargetPlan)).
				Msg("checkout: paid plan does not unlock requested template")
		}
	}

	record := &domain.DeliveryRecord{
		ID:             uuid.NewString(),
		SubjectID:      session.SubjectID,
		TemplateKey:    session.TemplateKey,
		GrantedTier:    session.TargetPlan,
		IdempotencyKey: transactionID,
	}
	return o.appendWithRetry(ctx, record)
}

func (o *Orchestrator) appendWithRetry(ctx context.Context, record *domain.DeliveryRecord) error {
	var lastErr error
	for attempt := 0; attempt < o.appendRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(o.retryDelay):
			}
		}
		stored, err := o.ledger.Append(ctx, record)
		if err == nil {
			o.audit.Publish(ctx, *stored)
			return nil
		}
		if errors.Is(err, domain.ErrDuplicateDelivery) {
			// Already delivered; success for the caller.
			return nil
		}
		lastErr = err
		o.logger.Warn().Err(err).Str("idempotency_key", record.IdempotencyKey).Msg("checkout: ledger append retry")
	}
	return fmt.Errorf("%w: record delivery: %v", domain.ErrStorage, lastErr)
}

func (o *Orchestrator) close(ctx context.Context, session *domain.CheckoutSession, target domain.SessionStatus) (*domain.CheckoutSession, error) {
	if session.Status.Terminal() {
		if session.Status == target {
			return session, nil
		}
		return nil, fmt.Errorf("%w: session is %s", domain.ErrSessionClosed, session.Status)
	}
	ok, err := o.sessions.Transition(ctx, session.ID, session.Status, target, "")
	if err != nil {
		return nil, fmt.Errorf("%w: close session: %v", domain.ErrStorage, err)
	}
	if !ok {
		current, err := o.sessions.GetByID(ctx, session.ID)
		if err != nil {
			return nil, err
		}
		return o.close(ctx, current, target)
	}
	session.Status = target
	return session, nil
}

// ReconcilePending re-queries the gateway for sessions stuck in pending
// longer than olderThan and routes each answer through the confirmation
// path. Returns how many sessions reached a terminal state.
func (o *Orchestrator) ReconcilePending(ctx context.Context, olderThan time.Duration, limit int) (int, error) {
	stale, err := o.sessions.ListPendingOlderThan(ctx, olderThan, limit)
	if err != nil {
		return 0, fmt.Errorf("%w: list pending sessions: %v", domain.ErrStorage, err)
	}
	resolved := 0
	for i := range stale {
		session := &stale[i]
		conf, err := o.gateway.GetCheckout(ctx, session.GatewaySessionID)
		if err != nil {
			o.logger.Warn().Err(err).Str("session_id", session.ID).Msg("reconcile: gateway status query failed")
			continue
		}
		if conf.Outcome == OutcomePending {
			continue
		}
		conf.SessionID = session.GatewaySessionID
		if _, err := o.HandleConfirmation(ctx, *conf); err != nil {
			o.logger.Error().Err(err).Str("session_id", session.ID).Msg("reconcile: apply confirmation failed")
			continue
		}
		resolved++
	}
	return resolved, nil
}
