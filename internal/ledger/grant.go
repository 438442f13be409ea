package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"storefront/internal/domain"
)

// GrantKey is the idempotency key for a direct grant of a template the
// subject's tier already covers. It is deterministic so repeated claims
// of the same template by the same subject collapse into one record.
func GrantKey(subjectID, templateKey string) string {
	return fmt.Sprintf("grant:%s:%s", subjectID, templateKey)
}

// RecordGrant appends a delivery record for a tier-covered claim. A
// repeat claim is not an error: the existing record is returned.
func RecordGrant(ctx context.Context, l domain.DeliveryLedger, subjectID, templateKey string, tier domain.Tier) (*domain.DeliveryRecord, error) {
	record := &domain.DeliveryRecord{
		ID:             uuid.NewString(),
		SubjectID:      subjectID,
		TemplateKey:    templateKey,
		GrantedTier:    tier,
		IdempotencyKey: GrantKey(subjectID, templateKey),
	}
	stored, err := l.Append(ctx, record)
	if errors.Is(err, domain.ErrDuplicateDelivery) {
		return stored, nil
	}
	return stored, err
}
