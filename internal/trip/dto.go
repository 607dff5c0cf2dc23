package trip

import "time"

// CreateTripRequest represents the request to create a trip
type CreateTripRequest struct {
	Name           string     `json:"name"`
	Destination    string     `json:"destination"`
	BudgetTotal    *float64   `json:"budgetTotal,omitempty"`
	BudgetCurrency *string    `json:"budgetCurrency,omitempty"`
	StartDate      *time.Time `json:"startDate,omitempty"`
	EndDate        *time.Time `json:"endDate,omitempty"`
}

// UpdateTripRequest represents the request to update a trip
type UpdateTripRequest struct {
	Name           *string    `json:"name,omitempty"`
	Destination    *string    `json:"destination,omitempty"`
	BudgetTotal    *float64   `json:"budgetTotal,omitempty"`
	BudgetCurrency *string    `json:"budgetCurrency,omitempty"`
	StartDate      *time.Time `json:"startDate,omitempty"`
	EndDate        *time.Time `json:"endDate,omitempty"`
}

// AddMemberRequest represents the request to add a trip member
type AddMemberRequest struct {
	UserID string `json:"userId"`
}
