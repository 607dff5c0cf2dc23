package trip

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// Repository handles trip data persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new trip repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new trip and its creator's membership row.
func (r *Repository) Create(ctx context.Context, createdBy string, req *CreateTripRequest) (*Trip, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO trips (id, name, destination, created_by, budget_total, budget_currency, start_date, end_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, name, destination, created_by, budget_total, budget_currency, start_date, end_date, created_at
	`

	t := &Trip{}
	err = tx.QueryRowContext(ctx, query,
		uuid.NewString(), req.Name, req.Destination, createdBy,
		req.BudgetTotal, req.BudgetCurrency, req.StartDate, req.EndDate,
	).Scan(
		&t.ID, &t.Name, &t.Destination, &t.CreatedBy,
		&t.BudgetTotal, &t.BudgetCurrency, &t.StartDate, &t.EndDate, &t.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create trip: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO trip_members (trip_id, user_id) VALUES ($1, $2)`,
		t.ID, createdBy,
	); err != nil {
		return nil, fmt.Errorf("failed to add creator membership: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit: %w", err)
	}

	return t, nil
}

// GetByID retrieves a trip with its member list, or nil when absent.
func (r *Repository) GetByID(ctx context.Context, id string) (*Trip, error) {
	query := `
		SELECT id, name, destination, created_by, budget_total, budget_currency, start_date, end_date, created_at
		FROM trips
		WHERE id = $1
	`

	t := &Trip{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&t.ID, &t.Name, &t.Destination, &t.CreatedBy,
		&t.BudgetTotal, &t.BudgetCurrency, &t.StartDate, &t.EndDate, &t.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get trip: %w", err)
	}

	members, err := r.GetMembers(ctx, id)
	if err != nil {
		return nil, err
	}
	t.Members = members

	return t, nil
}

// GetMembers retrieves all members of a trip
func (r *Repository) GetMembers(ctx context.Context, tripID string) ([]*Member, error) {
	query := `
		SELECT trip_id, user_id, joined_at
		FROM trip_members
		WHERE trip_id = $1
		ORDER BY joined_at
	`

	rows, err := r.db.QueryContext(ctx, query, tripID)
	if err != nil {
		return nil, fmt.Errorf("failed to get members: %w", err)
	}
	defer rows.Close()

	var members []*Member
	for rows.Next() {
		m := &Member{}
		if err := rows.Scan(&m.TripID, &m.UserID, &m.JoinedAt); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, m)
	}

	return members, rows.Err()
}

// ListByUserID retrieves all trips a user belongs to, newest first.
func (r *Repository) ListByUserID(ctx context.Context, userID string) ([]*Trip, error) {
	query := `
		SELECT DISTINCT t.id, t.name, t.destination, t.created_by, t.budget_total, t.budget_currency,
		       t.start_date, t.end_date, t.created_at
		FROM trips t
		LEFT JOIN trip_members tm ON t.id = tm.trip_id
		WHERE tm.user_id = $1 OR t.created_by = $1
		ORDER BY t.created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list trips: %w", err)
	}
	defer rows.Close()

	var trips []*Trip
	for rows.Next() {
		t := &Trip{}
		if err := rows.Scan(
			&t.ID, &t.Name, &t.Destination, &t.CreatedBy,
			&t.BudgetTotal, &t.BudgetCurrency, &t.StartDate, &t.EndDate, &t.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan trip: %w", err)
		}
		trips = append(trips, t)
	}

	return trips, rows.Err()
}

// Update modifies an existing trip
func (r *Repository) Update(ctx context.Context, id string, req *UpdateTripRequest) (*Trip, error) {
	query := `
		UPDATE trips
		SET name = COALESCE($2, name),
		    destination = COALESCE($3, destination),
		    budget_total = COALESCE($4, budget_total),
		    budget_currency = COALESCE($5, budget_currency),
		    start_date = COALESCE($6, start_date),
		    end_date = COALESCE($7, end_date)
		WHERE id = $1
		RETURNING id, name, destination, created_by, budget_total, budget_currency, start_date, end_date, created_at
	`

	t := &Trip{}
	err := r.db.QueryRowContext(ctx, query, id,
		req.Name, req.Destination, req.BudgetTotal, req.BudgetCurrency, req.StartDate, req.EndDate,
	).Scan(
		&t.ID, &t.Name, &t.Destination, &t.CreatedBy,
		&t.BudgetTotal, &t.BudgetCurrency, &t.StartDate, &t.EndDate, &t.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update trip: %w", err)
	}

	return t, nil
}

// AddMember adds a user to a trip
func (r *Repository) AddMember(ctx context.Context, tripID, userID string) (*Member, error) {
	query := `
		INSERT INTO trip_members (trip_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (trip_id, user_id) DO NOTHING
		RETURNING trip_id, user_id, joined_at
	`

	m := &Member{}
	err := r.db.QueryRowContext(ctx, query, tripID, userID).Scan(&m.TripID, &m.UserID, &m.JoinedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			// Already a member; return the existing row.
			return r.getMember(ctx, tripID, userID)
		}
		return nil, fmt.Errorf("failed to add member: %w", err)
	}

	return m, nil
}

func (r *Repository) getMember(ctx context.Context, tripID, userID string) (*Member, error) {
	m := &Member{}
	err := r.db.QueryRowContext(ctx,
		`SELECT trip_id, user_id, joined_at FROM trip_members WHERE trip_id = $1 AND user_id = $2`,
		tripID, userID,
	).Scan(&m.TripID, &m.UserID, &m.JoinedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to get member: %w", err)
	}
	return m, nil
}

// RemoveMember removes a user from a trip
func (r *Repository) RemoveMember(ctx context.Context, tripID, userID string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM trip_members WHERE trip_id = $1 AND user_id = $2`, tripID, userID)
	if err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("member not found")
	}

	return nil
}

// Delete removes a trip and, via cascades, everything attached to it.
func (r *Repository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM trips WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete trip: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("trip not found")
	}

	return nil
}
