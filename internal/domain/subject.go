package domain

// Subject is a purchaser identity. The current tier is assigned by the
// external identity/billing source; the core never derives it locally.
type Subject struct {
	ID   string
	Tier Tier
}

// AccessDecision is the result of an entitlement evaluation. Decisions are
// computed fresh per request and never persisted, so they always reflect
// the subject's current tier.
type AccessDecision struct {
	Allowed      bool `json:"allowed"`
	RequiredTier Tier `json:"required_tier"`
	SubjectTier  Tier `json:"subject_tier"`
}
