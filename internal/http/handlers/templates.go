package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"storefront/internal/ledger"
)

// TemplatesList returns the full catalog. When the caller is
// authenticated each item is annotated with its access decision, so the
// storefront can render lock badges from a single request.
func (a *App) TemplatesList(w http.ResponseWriter, r *http.Request) {
	subjectID := a.currentSubjectID(r)
	items := a.Catalog.List()
	out := make([]map[string]any, 0, len(items))
	for _, tpl := range items {
		entry := map[string]any{"template": tpl}
		if subjectID != "" {
			decision, err := a.Evaluator.Evaluate(r.Context(), subjectID, tpl.Key)
			if err != nil {
				a.domainError(w, r, err)
				return
			}
			entry["access"] = decision
		}
		out = append(out, entry)
	}
	a.json(w, http.StatusOK, map[string]any{"items": out})
}

func (a *App) TemplatesGet(w http.ResponseWriter, r *http.Request) {
	tpl, err := a.Catalog.Lookup(chi.URLParam(r, "key"))
	if err != nil {
		a.domainError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, tpl)
}

// TemplateAccess evaluates the caller's entitlement for one template.
// The decision is computed fresh on every call; a tier change is visible
// immediately.
func (a *App) TemplateAccess(w http.ResponseWriter, r *http.Request) {
	subjectID := a.currentSubjectID(r)
	if subjectID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}
	decision, err := a.Evaluator.Evaluate(r.Context(), subjectID, chi.URLParam(r, "key"))
	if err != nil {
		a.domainError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, decision)
}

// TemplateClaim hands out the bundle for a template the caller's tier
// already covers. The grant is recorded in the ledger under a
// deterministic key, so claiming twice yields one record and the same
// bundle URL.
func (a *App) TemplateClaim(w http.ResponseWriter, r *http.Request) {
	subjectID := a.currentSubjectID(r)
	if subjectID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}
	key := chi.URLParam(r, "key")
	decision, err := a.Evaluator.Evaluate(r.Context(), subjectID, key)
	if err != nil {
		a.domainError(w, r, err)
		return
	}
	if !decision.Allowed {
		a.json(w, http.StatusForbidden, map[string]any{
			"error": map[string]string{"code": "tier_insufficient", "message": "current tier does not cover this template"},
			"access": decision,
		})
		return
	}

	record, err := ledger.RecordGrant(r.Context(), a.Ledger, subjectID, key, decision.SubjectTier)
	if err != nil {
		a.domainError(w, r, err)
		return
	}
	tpl, err := a.Catalog.Lookup(key)
	if err != nil {
		a.domainError(w, r, err)
		return
	}
	bundleURL, err := a.Bundles.Prepare(r.Context(), tpl)
	if err != nil {
		a.Logger.Error().Err(err).Str("template_key", key).Msg("handlers: prepare bundle")
		a.error(w, http.StatusInternalServerError, "bundle", "bundle preparation failed")
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"delivery":   record,
		"bundle_url": bundleURL,
	})
}
