package expense

import (
	"math"
	"testing"
)

func expenseOf(paidBy string, amount float64, splits ...*Split) *Expense {
	return &Expense{Amount: amount, PaidBy: paidBy, Splits: splits}
}

func pairFor(t *testing.T, s *BalanceSummary, userID string) *PairBalance {
	t.Helper()
	for _, p := range s.BalancesWith {
		if p.UserID == userID {
			return p
		}
	}
	t.Fatalf("no pairwise balance with %s", userID)
	return nil
}

func TestSummarizeBalances_PaidOwedIdentity(t *testing.T) {
	expenses := []*Expense{
		expenseOf("u", 100,
			&Split{UserID: "u", Percentage: 50, Amount: 50},
			&Split{UserID: "v", Percentage: 50, Amount: 50},
		),
		expenseOf("v", 60,
			&Split{UserID: "u", Percentage: 50, Amount: 30},
			&Split{UserID: "v", Percentage: 50, Amount: 30},
		),
	}

	for _, member := range []string{"u", "v"} {
		s := SummarizeBalances(member, expenses)
		if got := s.UserPaid - s.UserOwes; math.Abs(got-s.Balance) > 1e-9 {
			t.Errorf("balance(%s) = %v, want paid-owed = %v", member, s.Balance, got)
		}
	}

	s := SummarizeBalances("u", expenses)
	if s.UserPaid != 100 {
		t.Errorf("UserPaid = %v, want 100", s.UserPaid)
	}
	if s.UserOwes != 80 {
		t.Errorf("UserOwes = %v, want 80", s.UserOwes)
	}
	if s.Balance != 20 {
		t.Errorf("Balance = %v, want 20", s.Balance)
	}
}

func TestSummarizeBalances_DirectionalEdgesNotNetted(t *testing.T) {
	// U paid 100 split 50/50 with V; V paid 60 split 50/50 with U. The two
	// contributions land on the same pair as one running signed total:
	// +50 (V owes U) then -30 (U owes V) = +20.
	expenses := []*Expense{
		expenseOf("u", 100,
			&Split{UserID: "u", Percentage: 50, Amount: 50},
			&Split{UserID: "v", Percentage: 50, Amount: 50},
		),
		expenseOf("v", 60,
			&Split{UserID: "u", Percentage: 50, Amount: 30},
			&Split{UserID: "v", Percentage: 50, Amount: 30},
		),
	}

	s := SummarizeBalances("u", expenses)
	if len(s.BalancesWith) != 1 {
		t.Fatalf("expected 1 counterparty, got %d", len(s.BalancesWith))
	}
	p := pairFor(t, s, "v")
	if p.Amount != 20 {
		t.Errorf("pairwise amount = %v, want 20", p.Amount)
	}

	// From V's side the running total mirrors: -50 then +30 = -20.
	sv := SummarizeBalances("v", expenses)
	pv := pairFor(t, sv, "u")
	if pv.Amount != -20 {
		t.Errorf("pairwise amount from v = %v, want -20", pv.Amount)
	}
}

func TestSummarizeBalances_SettledPairsDropped(t *testing.T) {
	// U and V each paid 50 split 50/50: the pair nets to exactly zero and
	// must not appear.
	expenses := []*Expense{
		expenseOf("u", 50,
			&Split{UserID: "u", Percentage: 50, Amount: 25},
			&Split{UserID: "v", Percentage: 50, Amount: 25},
		),
		expenseOf("v", 50,
			&Split{UserID: "u", Percentage: 50, Amount: 25},
			&Split{UserID: "v", Percentage: 50, Amount: 25},
		),
	}

	s := SummarizeBalances("u", expenses)
	if len(s.BalancesWith) != 0 {
		t.Errorf("expected settled pair to be dropped, got %d entries", len(s.BalancesWith))
	}
}

func TestSummarizeBalances_SubThresholdDropped(t *testing.T) {
	expenses := []*Expense{
		expenseOf("v", 100,
			&Split{UserID: "u", Percentage: 0.005, Amount: 0.005},
			&Split{UserID: "v", Percentage: 99.995, Amount: 99.995},
		),
	}

	s := SummarizeBalances("u", expenses)
	if len(s.BalancesWith) != 0 {
		t.Errorf("expected sub-threshold pair to be dropped, got %d entries", len(s.BalancesWith))
	}
}

func TestSummarizeBalances_LastExpenseWinsPaidFlag(t *testing.T) {
	// Two expenses paid by V with U's split: the second one's unpaid flag
	// is what the summary reports for the pair.
	expenses := []*Expense{
		expenseOf("v", 100,
			&Split{UserID: "u", Percentage: 50, Amount: 50, IsPaid: true},
			&Split{UserID: "v", Percentage: 50, Amount: 50},
		),
		expenseOf("v", 40,
			&Split{UserID: "u", Percentage: 50, Amount: 20, IsPaid: false},
			&Split{UserID: "v", Percentage: 50, Amount: 20},
		),
	}

	s := SummarizeBalances("u", expenses)
	p := pairFor(t, s, "v")
	if p.IsPaid {
		t.Error("expected last expense's unpaid flag to win")
	}
	if p.Amount != -70 {
		t.Errorf("pairwise amount = %v, want -70", p.Amount)
	}
}

func TestSummarizeBalances_ThirdPartyExpensesIgnored(t *testing.T) {
	// An expense between V and W never touches U's summary.
	expenses := []*Expense{
		expenseOf("v", 80,
			&Split{UserID: "v", Percentage: 50, Amount: 40},
			&Split{UserID: "w", Percentage: 50, Amount: 40},
		),
	}

	s := SummarizeBalances("u", expenses)
	if s.UserPaid != 0 || s.UserOwes != 0 || len(s.BalancesWith) != 0 {
		t.Errorf("unexpected involvement: %+v", s)
	}
}
