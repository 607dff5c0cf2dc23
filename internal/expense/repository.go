package expense

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// sortColumns whitelists the caller-selectable sort fields. Anything else
// falls back to newest-first creation order.
var sortColumns = map[string]string{
	"createdAt":   "created_at",
	"amount":      "amount",
	"expenseDate": "expense_date",
}

// Repository handles expense data persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new expense repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts an expense and its splits in one transaction.
func (r *Repository) Create(ctx context.Context, e *Expense) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO expenses (id, trip_id, title, description, notes, amount, currency, category, paid_by, bill_image_url, expense_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at
	`
	err = tx.QueryRowContext(ctx, query,
		e.ID, e.TripID, e.Title, e.Description, e.Notes, e.Amount,
		e.Currency, e.Category, e.PaidBy, e.BillImageURL, e.ExpenseDate,
	).Scan(&e.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create expense: %w", err)
	}

	if err := insertSplits(ctx, tx, e.ID, e.Splits); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

func insertSplits(ctx context.Context, tx *sql.Tx, expenseID string, splits []*Split) error {
	query := `
		INSERT INTO expense_splits (expense_id, position, user_id, percentage, amount, is_paid, paid_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	for i, s := range splits {
		if _, err := tx.ExecContext(ctx, query,
			expenseID, i, s.UserID, s.Percentage, s.Amount, s.IsPaid, s.PaidAt,
		); err != nil {
			return fmt.Errorf("failed to insert split: %w", err)
		}
	}
	return nil
}

// GetByID retrieves an expense with its splits, or nil when absent.
func (r *Repository) GetByID(ctx context.Context, id string) (*Expense, error) {
	query := `
		SELECT id, trip_id, title, description, notes, amount, currency, category, paid_by, bill_image_url, expense_date, created_at
		FROM expenses
		WHERE id = $1
	`

	e := &Expense{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&e.ID, &e.TripID, &e.Title, &e.Description, &e.Notes, &e.Amount,
		&e.Currency, &e.Category, &e.PaidBy, &e.BillImageURL, &e.ExpenseDate, &e.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}

	splits, err := r.getSplits(ctx, id)
	if err != nil {
		return nil, err
	}
	e.Splits = splits

	return e, nil
}

func (r *Repository) getSplits(ctx context.Context, expenseID string) ([]*Split, error) {
	query := `
		SELECT user_id, percentage, amount, is_paid, paid_at
		FROM expense_splits
		WHERE expense_id = $1
		ORDER BY position
	`

	rows, err := r.db.QueryContext(ctx, query, expenseID)
	if err != nil {
		return nil, fmt.Errorf("failed to get splits: %w", err)
	}
	defer rows.Close()

	var splits []*Split
	for rows.Next() {
		s := &Split{}
		if err := rows.Scan(&s.UserID, &s.Percentage, &s.Amount, &s.IsPaid, &s.PaidAt); err != nil {
			return nil, fmt.Errorf("failed to scan split: %w", err)
		}
		splits = append(splits, s)
	}

	return splits, rows.Err()
}

// ListByTrip retrieves a trip's expenses with splits attached, optionally
// filtered by category and sorted by a whitelisted column.
func (r *Repository) ListByTrip(ctx context.Context, tripID string, category Category, sortBy, order string) ([]*Expense, error) {
	column, ok := sortColumns[sortBy]
	if !ok {
		column, order = "created_at", "desc"
	}
	direction := "DESC"
	if order == "asc" {
		direction = "ASC"
	}

	query := `
		SELECT id, trip_id, title, description, notes, amount, currency, category, paid_by, bill_image_url, expense_date, created_at
		FROM expenses
		WHERE trip_id = $1
	`
	args := []interface{}{tripID}
	if category != "" {
		query += ` AND category = $2`
		args = append(args, category)
	}
	query += fmt.Sprintf(" ORDER BY %s %s", column, direction)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []*Expense
	for rows.Next() {
		e := &Expense{}
		if err := rows.Scan(
			&e.ID, &e.TripID, &e.Title, &e.Description, &e.Notes, &e.Amount,
			&e.Currency, &e.Category, &e.PaidBy, &e.BillImageURL, &e.ExpenseDate, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, e := range expenses {
		splits, err := r.getSplits(ctx, e.ID)
		if err != nil {
			return nil, err
		}
		e.Splits = splits
	}

	return expenses, nil
}

// Update rewrites an expense's core fields and replaces its splits
// wholesale in one transaction.
func (r *Repository) Update(ctx context.Context, e *Expense) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		UPDATE expenses
		SET title = $2, description = $3, notes = $4, amount = $5, category = $6, expense_date = $7
		WHERE id = $1
	`
	if _, err := tx.ExecContext(ctx, query,
		e.ID, e.Title, e.Description, e.Notes, e.Amount, e.Category, e.ExpenseDate,
	); err != nil {
		return fmt.Errorf("failed to update expense: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM expense_splits WHERE expense_id = $1`, e.ID); err != nil {
		return fmt.Errorf("failed to clear splits: %w", err)
	}
	if err := insertSplits(ctx, tx, e.ID, e.Splits); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// MarkSplitPaid flips one split to paid and stamps the payment time.
func (r *Repository) MarkSplitPaid(ctx context.Context, expenseID, userID string, paidAt time.Time) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE expense_splits
		SET is_paid = TRUE, paid_at = $3
		WHERE expense_id = $1 AND user_id = $2
	`, expenseID, userID, paidAt)
	if err != nil {
		return fmt.Errorf("failed to mark split paid: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes an expense; splits go with it via cascade.
func (r *Repository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
