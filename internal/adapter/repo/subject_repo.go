package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"storefront/internal/domain"
	"storefront/internal/infra"
	"storefront/internal/sqlinline"
)

// SubjectRepositoryPG implements domain.IdentityStore on PostgreSQL. In
// production deployments the subjects table is synchronized from the
// external billing/identity source; the checkout grant path writes through
// SetTier.
type SubjectRepositoryPG struct {
	sql infra.SQLExecutor
}

// NewSubjectRepository creates a new subject repo.
func NewSubjectRepository(sql infra.SQLExecutor) *SubjectRepositoryPG {
	return &SubjectRepositoryPG{sql: sql}
}

// GetCurrentTier returns the subject's current tier. A subject without a
// row has no tier yet and ranks below every real tier.
func (r *SubjectRepositoryPG) GetCurrentTier(ctx context.Context, subjectID string) (domain.Tier, error) {
	row := r.sql.QueryRow(ctx, sqlinline.QSelectSubjectTier, subjectID)
	var tier string
	if err := row.Scan(&tier); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("select subject tier: %w", err)
	}
	return domain.Tier(tier), nil
}

// SetTier upserts the subject's tier.
func (r *SubjectRepositoryPG) SetTier(ctx context.Context, subjectID string, tier domain.Tier) error {
	if _, err := r.sql.Exec(ctx, sqlinline.QUpsertSubjectTier, subjectID, string(tier)); err != nil {
		return fmt.Errorf("upsert subject tier: %w", err)
	}
	return nil
}

var _ domain.IdentityStore = (*SubjectRepositoryPG)(nil)
