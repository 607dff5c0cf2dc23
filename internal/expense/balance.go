package expense

import (
	"math"

	"github.com/triptally/triptally/internal/payment"
	"github.com/triptally/triptally/internal/user"
)

// settledThreshold is the absolute pairwise amount below which a balance is
// treated as settled and dropped from the summary.
const settledThreshold = 0.01

// PairBalance is the running signed balance between the summary's user and
// one counterparty. Positive means the counterparty owes the user.
type PairBalance struct {
	UserID    string  `json:"userId"`
	UserName  string  `json:"userName"`
	UserEmail string  `json:"userEmail,omitempty"`
	UserImage string  `json:"userImage,omitempty"`
	Amount    float64 `json:"amount"`

	// IsPaid reflects the relevant split's flag from the most recently
	// processed expense for this pair, not an aggregate over all of them.
	IsPaid bool `json:"isPaid"`

	// PaymentSettings carries the counterparty's collection details so the
	// user can settle up without a separate lookup.
	PaymentSettings *payment.Settings `json:"paymentSettings,omitempty"`
}

// BalanceSummary is one member's financial position on a trip.
type BalanceSummary struct {
	UserPaid     float64        `json:"userPaid"`
	UserOwes     float64        `json:"userOwes"`
	Balance      float64        `json:"balance"`
	BalancesWith []*PairBalance `json:"balancesWith"`
	Currency     string         `json:"currency"`
}

// SummarizeBalances computes a member's totals and pairwise balances in a
// single pass over a trip's expenses:
//
//   - paid is the sum of expenses the user fronted;
//   - owes is the sum of the user's split amounts across all expenses;
//   - when someone else paid an expense the user has a split in, the
//     user's running balance with that payer goes down by the split amount;
//   - when the user paid, every other split-holder's running balance goes
//     up by their split amount.
//
// Each pairwise edge is tracked independently; triangular debts are not
// simplified. Pairs whose final absolute amount is below 0.01 are dropped
// as settled. Counterparty order follows first appearance in the expense
// list.
func SummarizeBalances(userID string, expenses []*Expense) *BalanceSummary {
	summary := &BalanceSummary{BalancesWith: []*PairBalance{}}

	pairs := make(map[string]*PairBalance)
	pairFor := func(counterpartyID string) *PairBalance {
		if p, ok := pairs[counterpartyID]; ok {
			return p
		}
		p := &PairBalance{UserID: counterpartyID}
		pairs[counterpartyID] = p
		summary.BalancesWith = append(summary.BalancesWith, p)
		return p
	}

	for _, e := range expenses {
		if e.PaidBy == userID {
			summary.UserPaid += e.Amount
		}

		userSplit := e.FindSplit(userID)
		if userSplit != nil {
			summary.UserOwes += userSplit.Amount
		}

		if userSplit != nil && e.PaidBy != userID {
			p := pairFor(e.PaidBy)
			p.Amount -= userSplit.Amount
			p.IsPaid = userSplit.IsPaid
		}

		if e.PaidBy == userID {
			for _, s := range e.Splits {
				if s.UserID == userID {
					continue
				}
				p := pairFor(s.UserID)
				p.Amount += s.Amount
				p.IsPaid = s.IsPaid
			}
		}
	}

	summary.Balance = summary.UserPaid - summary.UserOwes

	settled := summary.BalancesWith[:0]
	for _, p := range summary.BalancesWith {
		if math.Abs(p.Amount) >= settledThreshold {
			settled = append(settled, p)
		}
	}
	summary.BalancesWith = settled

	return summary
}

// decorate fills counterparty display details from the user directory.
func (s *BalanceSummary) decorate(users map[string]*user.User) {
	for _, p := range s.BalancesWith {
		u, ok := users[p.UserID]
		if !ok {
			p.UserName = "Unknown"
			continue
		}
		p.UserName = u.DisplayName()
		p.UserEmail = u.Email
		p.UserImage = u.ImageURL
	}
}
