package domain

import "testing"

func TestTierRank_IncreasesWithDeclarationOrder(t *testing.T) {
	tiers := Tiers()
	if len(tiers) != 3 {
		t.Fatalf("expected 3 tiers, got %d", len(tiers))
	}
	prev := 0
	for _, tier := range tiers {
		rank := tier.Rank()
		if rank <= prev {
			t.Fatalf("rank of %q is %d, not greater than %d", tier, rank, prev)
		}
		prev = rank
	}
}

func TestTierRank_UnknownIsBelowEverything(t *testing.T) {
	for _, tier := range []Tier{"", "Hobby", "premium"} {
		if tier.Known() {
			t.Fatalf("tier %q should not be recognized", tier)
		}
		if tier.Rank() != 0 {
			t.Fatalf("tier %q rank = %d, want 0", tier, tier.Rank())
		}
	}
}

func TestCanAccess_MatchesRankComparison(t *testing.T) {
	all := append(Tiers(), Tier(""))
	for _, subject := range all {
		for _, required := range all {
			got := CanAccess(subject, required)
			want := subject.Rank() >= required.Rank()
			if got != want {
				t.Fatalf("CanAccess(%q, %q) = %v, want %v", subject, required, got, want)
			}
		}
	}
}

func TestCanAccess_HigherTiersAreSupersets(t *testing.T) {
	tiers := Tiers()
	for i, required := range tiers {
		for j, subject := range tiers {
			if j < i {
				continue
			}
			if !CanAccess(subject, required) {
				t.Fatalf("tier %q should include access gated at %q", subject, required)
			}
		}
	}
	if CanAccess(TierBasic, TierPro) {
		t.Fatal("Basic must not access Pro content")
	}
	if CanAccess(TierPro, TierPremium) {
		t.Fatal("Pro must not access Premium content")
	}
}

func TestSessionStatus_Transitions(t *testing.T) {
	cases := []struct {
		from, to SessionStatus
		ok       bool
	}{
		{SessionCreated, SessionPending, true},
		{SessionCreated, SessionCancelled, true},
		{SessionCreated, SessionFailed, true},
		{SessionCreated, SessionCompleted, false},
		{SessionPending, SessionCompleted, true},
		{SessionPending, SessionCancelled, true},
		{SessionPending, SessionFailed, true},
		{SessionCompleted, SessionPending, false},
		{SessionCancelled, SessionPending, false},
		{SessionFailed, SessionCompleted, false},
	}
	for _, tc := range cases {
		if got := tc.from.CanTransition(tc.to); got != tc.ok {
			t.Fatalf("CanTransition(%s -> %s) = %v, want %v", tc.from, tc.to, got, tc.ok)
		}
	}
}
