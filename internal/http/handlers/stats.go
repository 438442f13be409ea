package handlers

import (
	"net/http"
	"time"

	"storefront/internal/sqlinline"
)

// StatsSummary reports delivery counts per granted tier plus the most
// recent grants. Read-only and unscoped, intended for operator
// dashboards.
func (a *App) StatsSummary(w http.ResponseWriter, r *http.Request) {
	rows, err := a.SQL.Query(r.Context(), sqlinline.QSelectDeliveryStats)
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to load stats")
		return
	}
	defer rows.Close()
	byTier := map[string]int64{}
	for rows.Next() {
		var tier string
		var count int64
		if err := rows.Scan(&tier, &count); err != nil {
			continue
		}
		byTier[tier] = count
	}

	recentRows, err := a.SQL.Query(r.Context(), sqlinline.QSelectRecentDeliveries, 10)
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to load stats")
		return
	}
	defer recentRows.Close()
	var recent []map[string]any
	for recentRows.Next() {
		var id, subjectID, templateKey, tier, idemKey string
		var createdAt time.Time
		if err := recentRows.Scan(&id, &subjectID, &templateKey, &tier, &idemKey, &createdAt); err != nil {
			continue
		}
		recent = append(recent, map[string]any{
			"id":           id,
			"subject_id":   subjectID,
			"template_key": templateKey,
			"granted_tier": tier,
			"created_at":   createdAt,
		})
	}
	a.json(w, http.StatusOK, map[string]any{
		"deliveries_by_tier": byTier,
		"recent_deliveries":  recent,
	})
}
