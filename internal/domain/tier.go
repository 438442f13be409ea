package domain

// Tier enumerates ordered subscription levels. The declaration order of
// tierOrder fixes the total order; a higher tier always includes every
// capability of the tiers below it.
type Tier string

const (
	TierBasic   Tier = "Basic"
	TierPro     Tier = "Pro"
	TierPremium Tier = "Premium"
)

var tierOrder = []Tier{TierBasic, TierPro, TierPremium}

// Tiers returns all recognized tiers in ascending order.
func Tiers() []Tier {
	out := make([]Tier, len(tierOrder))
	copy(out, tierOrder)
	return out
}

// Rank returns the 1-based position of the tier in the total order.
// Unknown tiers (including the zero value) rank below every real tier.
func (t Tier) Rank() int {
	for i, candidate := range tierOrder {
		if candidate == t {
			return i + 1
		}
	}
	return 0
}

// Known reports whether the tier is a recognized value.
func (t Tier) Known() bool {
	return t.Rank() > 0
}

// CanAccess reports whether a subject holding subjectTier may obtain content
// gated behind requiredTier. Every component must route tier comparison
// through this predicate instead of comparing tiers inline.
func CanAccess(subjectTier, requiredTier Tier) bool {
	return subjectTier.Rank() >= requiredTier.Rank()
}
