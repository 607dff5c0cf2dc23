// Package split validates percentage splits and derives per-member amounts
// for a shared expense.
package split

import (
	"errors"
	"math"
)

// Tolerance is how far the percentage sum may drift from 100 before the
// split list is rejected.
const Tolerance = 0.01

var (
	ErrNoSplits             = errors.New("at least one split is required")
	ErrInvalidPercentages   = errors.New("split percentages must total 100%")
	ErrPercentageOutOfRange = errors.New("percentage must be between 0 and 100")
	ErrDuplicateUser        = errors.New("a user appears in more than one split")
)

// Input is one member's requested share of an expense.
type Input struct {
	UserID     string  `json:"userId"`
	Percentage float64 `json:"percentage"`
}

// Computed is one member's derived share.
type Computed struct {
	UserID     string
	Percentage float64
	Amount     float64
	IsPaid     bool
}

// Round2 rounds to the currency's natural two-decimal precision. The same
// rounding is used at creation and in every later aggregate, so stored
// split amounts and computed balances always agree.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Validate rejects empty lists, out-of-range percentages, duplicate users
// and percentage sums outside the tolerance around 100.
func Validate(inputs []Input) error {
	if len(inputs) == 0 {
		return ErrNoSplits
	}

	seen := make(map[string]bool, len(inputs))
	var total float64
	for _, in := range inputs {
		if in.Percentage < 0 || in.Percentage > 100 {
			return ErrPercentageOutOfRange
		}
		if seen[in.UserID] {
			return ErrDuplicateUser
		}
		seen[in.UserID] = true
		total += in.Percentage
	}

	if math.Abs(total-100) > Tolerance {
		return ErrInvalidPercentages
	}
	return nil
}

// Compute validates the inputs and derives each member's amount as
// amount * percentage / 100, rounded to two decimals. Any rounding residue
// is pushed onto the last split so the amounts always sum to the rounded
// expense total. The creator's own split starts paid; everyone else unpaid.
func Compute(amount float64, creatorID string, inputs []Input) ([]Computed, error) {
	if err := Validate(inputs); err != nil {
		return nil, err
	}

	out := make([]Computed, len(inputs))
	var distributed float64
	for i, in := range inputs {
		share := Round2(amount * in.Percentage / 100)
		distributed += share
		out[i] = Computed{
			UserID:     in.UserID,
			Percentage: in.Percentage,
			Amount:     share,
			IsPaid:     in.UserID == creatorID,
		}
	}

	if residue := Round2(Round2(amount) - distributed); residue != 0 {
		last := &out[len(out)-1]
		last.Amount = Round2(last.Amount + residue)
	}

	return out, nil
}
