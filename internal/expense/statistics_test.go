package expense

import "testing"

func TestComputeStatistics_BudgetExample(t *testing.T) {
	expenses := []*Expense{
		{Amount: 300, Category: CategoryFood},
	}

	stats := ComputeStatistics(expenses, 1000, "INR")

	if stats.TotalExpenses != 300 {
		t.Errorf("TotalExpenses = %v, want 300", stats.TotalExpenses)
	}
	if stats.RemainingBudget != 700 {
		t.Errorf("RemainingBudget = %v, want 700", stats.RemainingBudget)
	}
	if stats.BudgetPercentage != 30 {
		t.Errorf("BudgetPercentage = %v, want 30", stats.BudgetPercentage)
	}
}

func TestComputeStatistics_ZeroBudget(t *testing.T) {
	expenses := []*Expense{{Amount: 250, Category: CategoryTravel}}

	stats := ComputeStatistics(expenses, 0, "INR")

	if stats.BudgetPercentage != 0 {
		t.Errorf("BudgetPercentage = %v, want 0 for zero budget", stats.BudgetPercentage)
	}
	if stats.RemainingBudget != -250 {
		t.Errorf("RemainingBudget = %v, want -250", stats.RemainingBudget)
	}
}

func TestComputeStatistics_CategoryBreakdown(t *testing.T) {
	expenses := []*Expense{
		{Amount: 60, Category: CategoryFood},
		{Amount: 40, Category: CategoryFood},
		{Amount: 100, Category: CategoryTravel},
	}

	stats := ComputeStatistics(expenses, 500, "EUR")

	food := stats.CategoryBreakdown[CategoryFood]
	if food.Total != 100 || food.Count != 2 || food.Percentage != 50 {
		t.Errorf("food stats = %+v, want total 100, count 2, 50%%", food)
	}

	travel := stats.CategoryBreakdown[CategoryTravel]
	if travel.Total != 100 || travel.Count != 1 || travel.Percentage != 50 {
		t.Errorf("travel stats = %+v, want total 100, count 1, 50%%", travel)
	}

	// Untouched categories report explicit zeroes, not missing keys.
	for _, c := range []Category{CategoryAccommodation, CategoryOthers} {
		cs, ok := stats.CategoryBreakdown[c]
		if !ok {
			t.Fatalf("missing breakdown entry for %s", c)
		}
		if cs.Total != 0 || cs.Count != 0 || cs.Percentage != 0 {
			t.Errorf("%s stats = %+v, want zeroes", c, cs)
		}
	}
}

func TestComputeStatistics_Empty(t *testing.T) {
	stats := ComputeStatistics(nil, 100, "INR")

	if stats.TotalExpenses != 0 || stats.RemainingBudget != 100 || stats.BudgetPercentage != 0 {
		t.Errorf("unexpected stats for empty trip: %+v", stats)
	}
}
