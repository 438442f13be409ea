package handlers

import (
	"net/http"

	"storefront/internal/domain"
)

// DeliveriesList returns the caller's delivery history in chronological
// order.
func (a *App) DeliveriesList(w http.ResponseWriter, r *http.Request) {
	subjectID := a.currentSubjectID(r)
	if subjectID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}
	records, err := a.Ledger.ListFor(r.Context(), subjectID)
	if err != nil {
		a.domainError(w, r, err)
		return
	}
	if records == nil {
		records = []domain.DeliveryRecord{}
	}
	a.json(w, http.StatusOK, map[string]any{"items": records})
}
