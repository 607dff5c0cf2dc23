package expense

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/triptally/triptally/internal/expense/split"
)

// CreateExpenseRequest represents the request to create an expense. It may
// arrive as a JSON body or as multipart form fields with a staged bill image.
type CreateExpenseRequest struct {
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Notes       string        `json:"notes"`
	Amount      float64       `json:"amount"`
	Category    string        `json:"category"`
	ExpenseDate *time.Time    `json:"expenseDate,omitempty"`
	Splits      []split.Input `json:"splits"`
}

// UpdateExpenseRequest represents the request to update an expense. Nil
// fields are left untouched; a non-nil Splits list replaces the splits
// wholesale.
type UpdateExpenseRequest struct {
	Title       *string       `json:"title,omitempty"`
	Description *string       `json:"description,omitempty"`
	Notes       *string       `json:"notes,omitempty"`
	Amount      *float64      `json:"amount,omitempty"`
	Category    *string       `json:"category,omitempty"`
	ExpenseDate *time.Time    `json:"expenseDate,omitempty"`
	Splits      []split.Input `json:"splits,omitempty"`
}

// parseCreateForm builds a CreateExpenseRequest from multipart form fields.
// The splits field arrives as a JSON-encoded string, amounts as strings.
func parseCreateForm(r *http.Request) (*CreateExpenseRequest, error) {
	req := &CreateExpenseRequest{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Notes:       r.FormValue("notes"),
		Category:    r.FormValue("category"),
	}

	amount, err := strconv.ParseFloat(r.FormValue("amount"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid amount")
	}
	req.Amount = amount

	if raw := r.FormValue("splits"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &req.Splits); err != nil {
			return nil, fmt.Errorf("invalid splits format")
		}
	}

	if raw := r.FormValue("expenseDate"); raw != "" {
		date, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, fmt.Errorf("invalid expense date")
		}
		req.ExpenseDate = &date
	}

	return req, nil
}
