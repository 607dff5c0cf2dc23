package trip

import "time"

// DefaultCurrency applies when a trip has no configured budget currency.
const DefaultCurrency = "INR"

// Trip represents a planned group trip
type Trip struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Destination    string     `json:"destination,omitempty"`
	CreatedBy      string     `json:"createdBy"`
	BudgetTotal    *float64   `json:"budgetTotal,omitempty"`
	BudgetCurrency *string    `json:"budgetCurrency,omitempty"`
	StartDate      *time.Time `json:"startDate,omitempty"`
	EndDate        *time.Time `json:"endDate,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`

	// Populated on demand
	Members []*Member `json:"members,omitempty"`
}

// Member represents a user's membership in a trip
type Member struct {
	TripID   string    `json:"tripId"`
	UserID   string    `json:"userId"`
	JoinedAt time.Time `json:"joinedAt"`
}

// Currency returns the trip's budget currency, falling back to the default.
func (t *Trip) Currency() string {
	if t.BudgetCurrency != nil && *t.BudgetCurrency != "" {
		return *t.BudgetCurrency
	}
	return DefaultCurrency
}

// Budget returns the configured total budget, 0 when unset.
func (t *Trip) Budget() float64 {
	if t.BudgetTotal == nil {
		return 0
	}
	return *t.BudgetTotal
}

// HasMember reports whether the user is a listed member or the creator.
// Every expense, proposal and capture operation shares this check.
func (t *Trip) HasMember(userID string) bool {
	if t.CreatedBy == userID {
		return true
	}
	for _, m := range t.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}
