package expense

import (
	"time"

	"github.com/triptally/triptally/internal/user"
)

// Category is the fixed expense categorization.
type Category string

const (
	CategoryTravel        Category = "travel"
	CategoryFood          Category = "food"
	CategoryAccommodation Category = "accommodation"
	CategoryOthers        Category = "others"
)

// Categories lists every valid category in presentation order.
var Categories = []Category{CategoryTravel, CategoryFood, CategoryAccommodation, CategoryOthers}

// ValidCategory reports whether c is one of the fixed categories.
func ValidCategory(c Category) bool {
	switch c {
	case CategoryTravel, CategoryFood, CategoryAccommodation, CategoryOthers:
		return true
	}
	return false
}

// Expense is one shared cost on a trip, split among members by percentage.
type Expense struct {
	ID           string    `json:"id"`
	TripID       string    `json:"tripId"`
	Title        string    `json:"title"`
	Description  string    `json:"description,omitempty"`
	Notes        string    `json:"notes,omitempty"`
	Amount       float64   `json:"amount"`
	Currency     string    `json:"currency"`
	Category     Category  `json:"category"`
	PaidBy       string    `json:"paidBy"`
	BillImageURL string    `json:"billImageUrl,omitempty"`
	ExpenseDate  time.Time `json:"expenseDate"`
	CreatedAt    time.Time `json:"createdAt"`
	Splits       []*Split  `json:"splits"`

	// Populated from the user directory
	PaidByUser *user.User `json:"paidByUser,omitempty"`
}

// Split is one member's share of an expense.
type Split struct {
	UserID     string     `json:"userId"`
	Percentage float64    `json:"percentage"`
	Amount     float64    `json:"amount"`
	IsPaid     bool       `json:"isPaid"`
	PaidAt     *time.Time `json:"paidAt,omitempty"`

	// Populated from the user directory
	User *user.User `json:"user,omitempty"`
}

// MarkPaid flips the split to paid and stamps the payment time. The
// transition is one-way: a repeat call never reverts the flag, it only
// refreshes the timestamp.
func (s *Split) MarkPaid(now time.Time) {
	s.IsPaid = true
	s.PaidAt = &now
}

// FindSplit returns the split assigned to userID, or nil.
func (e *Expense) FindSplit(userID string) *Split {
	for _, s := range e.Splits {
		if s.UserID == userID {
			return s
		}
	}
	return nil
}
