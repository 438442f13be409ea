package checkout

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"storefront/internal/domain"
)

// Price is a server-side resolved plan price in minor currency units.
// Client-supplied amounts are never consulted.
type Price struct {
	AmountMinor int64
	Currency    string
	Label       string
}

var planPrices = map[domain.Tier]Price{
	domain.TierBasic:   {AmountMinor: 4000, Currency: "usd", Label: "Basic Plan"},
	domain.TierPro:     {AmountMinor: 7500, Currency: "usd", Label: "Pro Plan"},
	domain.TierPremium: {AmountMinor: 20000, Currency: "usd", Label: "Premium Plan"},
}

var planTitle = cases.Title(language.English)

// ParsePlan normalizes a client-supplied plan name ("pro", "PRO", " Pro ")
// to its tier, failing with ErrInvalidPlan for unrecognized names.
func ParsePlan(name string) (domain.Tier, error) {
	plan := domain.Tier(planTitle.String(strings.ToLower(strings.TrimSpace(name))))
	if !plan.Known() {
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidPlan, name)
	}
	return plan, nil
}

// ResolvePrice returns the authoritative price for a plan. It is a pure
// lookup; the same plan always resolves to the same amount.
func ResolvePrice(plan domain.Tier) (Price, error) {
	price, ok := planPrices[plan]
	if !ok {
		return Price{}, fmt.Errorf("%w: %q", domain.ErrInvalidPlan, plan)
	}
	return price, nil
}
