// Package entitlement decides whether a subject may obtain a catalog item.
package entitlement

import (
	"context"
	"fmt"

	"storefront/internal/catalog"
	"storefront/internal/domain"
)

// Evaluator computes access decisions from the catalog and the subject's
// current tier. It holds no per-subject state and is safe for concurrent
// use; decisions are never cached, so a tier change is visible on the next
// evaluation.
type Evaluator struct {
	catalog  *catalog.Catalog
	identity domain.IdentityStore
}

// NewEvaluator creates an evaluator bound to a catalog snapshot and an
// identity store.
func NewEvaluator(cat *catalog.Catalog, identity domain.IdentityStore) *Evaluator {
	return &Evaluator{catalog: cat, identity: identity}
}

// Evaluate returns the access decision for subjectID against templateKey.
// It fails with ErrUnknownTemplate for keys missing from the catalog and
// wraps identity store failures in ErrStorage. Side-effect free.
func (e *Evaluator) Evaluate(ctx context.Context, subjectID, templateKey string) (domain.AccessDecision, error) {
	tpl, err := e.catalog.Lookup(templateKey)
	if err != nil {
		return domain.AccessDecision{}, err
	}
	tier, err := e.identity.GetCurrentTier(ctx, subjectID)
	if err != nil {
		return domain.AccessDecision{}, fmt.Errorf("%w: current tier for %s: %v", domain.ErrStorage, subjectID, err)
	}
	return domain.AccessDecision{
		Allowed:      domain.CanAccess(tier, tpl.RequiredTier),
		RequiredTier: tpl.RequiredTier,
		SubjectTier:  tier,
	}, nil
}

// Catalog exposes the underlying snapshot for read-only listing.
func (e *Evaluator) Catalog() *catalog.Catalog {
	return e.catalog
}
