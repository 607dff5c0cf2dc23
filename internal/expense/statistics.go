package expense

// CategoryStats aggregates one category's spend.
type CategoryStats struct {
	Total      float64 `json:"total"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// Statistics is the read-side budget summary for a trip.
type Statistics struct {
	TotalExpenses     float64                    `json:"totalExpenses"`
	Budget            float64                    `json:"budget"`
	RemainingBudget   float64                    `json:"remainingBudget"`
	BudgetPercentage  float64                    `json:"budgetPercentage"`
	CategoryBreakdown map[Category]CategoryStats `json:"categoryBreakdown"`
	Currency          string                     `json:"currency"`
}

// ComputeStatistics folds a trip's expenses into totals and a per-category
// breakdown. A zero budget yields a zero percentage rather than dividing by
// zero; remaining budget may go negative.
func ComputeStatistics(expenses []*Expense, budget float64, currency string) *Statistics {
	stats := &Statistics{
		Budget:            budget,
		Currency:          currency,
		CategoryBreakdown: make(map[Category]CategoryStats, len(Categories)),
	}

	byCategory := make(map[Category]*CategoryStats, len(Categories))
	for _, c := range Categories {
		byCategory[c] = &CategoryStats{}
	}

	for _, e := range expenses {
		stats.TotalExpenses += e.Amount
		if cs, ok := byCategory[e.Category]; ok {
			cs.Total += e.Amount
			cs.Count++
		}
	}

	stats.RemainingBudget = budget - stats.TotalExpenses
	if budget > 0 {
		stats.BudgetPercentage = stats.TotalExpenses / budget * 100
	}

	for _, c := range Categories {
		cs := byCategory[c]
		if stats.TotalExpenses > 0 {
			cs.Percentage = cs.Total / stats.TotalExpenses * 100
		}
		stats.CategoryBreakdown[c] = *cs
	}

	return stats
}
