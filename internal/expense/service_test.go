package expense

import (
	"math"
	"testing"
	"time"

	"github.com/triptally/triptally/internal/expense/split"
)

func TestMarkPaid_OneWayAndRefreshesTimestamp(t *testing.T) {
	s := &Split{UserID: "bob", Percentage: 40, Amount: 360}

	first := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s.MarkPaid(first)
	if !s.IsPaid {
		t.Fatal("split not paid after MarkPaid")
	}
	if s.PaidAt == nil || !s.PaidAt.Equal(first) {
		t.Errorf("PaidAt = %v, want %v", s.PaidAt, first)
	}

	// A repeat call keeps the flag and refreshes the timestamp.
	second := first.Add(time.Hour)
	s.MarkPaid(second)
	if !s.IsPaid {
		t.Error("repeat MarkPaid reverted the paid flag")
	}
	if s.PaidAt == nil || !s.PaidAt.Equal(second) {
		t.Errorf("PaidAt after repeat = %v, want %v", s.PaidAt, second)
	}
}

func TestRebuildSplits_CarriesOverPaidStatus(t *testing.T) {
	paidAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	existing := []*Split{
		{UserID: "alice", Percentage: 60, Amount: 540, IsPaid: true, PaidAt: &paidAt},
		{UserID: "bob", Percentage: 40, Amount: 360},
	}

	rebuilt := rebuildSplits(900, []split.Input{
		{UserID: "alice", Percentage: 50},
		{UserID: "bob", Percentage: 30},
		{UserID: "carol", Percentage: 20},
	}, existing)

	if len(rebuilt) != 3 {
		t.Fatalf("expected 3 splits, got %d", len(rebuilt))
	}

	alice, bob, carol := rebuilt[0], rebuilt[1], rebuilt[2]

	if !alice.IsPaid || alice.PaidAt == nil || !alice.PaidAt.Equal(paidAt) {
		t.Error("alice's paid status should carry over")
	}
	if bob.IsPaid || bob.PaidAt != nil {
		t.Error("bob stays unpaid")
	}
	if carol.IsPaid || carol.PaidAt != nil {
		t.Error("a newly added split starts unpaid")
	}

	if alice.Amount != 450 || bob.Amount != 270 || carol.Amount != 180 {
		t.Errorf("amounts = %v/%v/%v, want 450/270/180", alice.Amount, bob.Amount, carol.Amount)
	}
}

func TestRebuildSplits_DoesNotAutoMarkAnyUser(t *testing.T) {
	// On update nobody is auto-marked paid, not even a user who was in the
	// old list unpaid and stays in the new one.
	existing := []*Split{
		{UserID: "alice", Percentage: 100, Amount: 100},
	}

	rebuilt := rebuildSplits(100, []split.Input{
		{UserID: "alice", Percentage: 50},
		{UserID: "bob", Percentage: 50},
	}, existing)

	for _, s := range rebuilt {
		if s.IsPaid {
			t.Errorf("split for %s unexpectedly paid", s.UserID)
		}
	}
}

func TestRebuildSplits_AmountsSumToTotal(t *testing.T) {
	rebuilt := rebuildSplits(100, []split.Input{
		{UserID: "a", Percentage: 33.33},
		{UserID: "b", Percentage: 33.33},
		{UserID: "c", Percentage: 33.34},
	}, nil)

	var sum float64
	for _, s := range rebuilt {
		sum += s.Amount
	}
	if math.Abs(sum-100) > 1e-9 {
		t.Errorf("amounts sum to %v, want 100", sum)
	}
}
