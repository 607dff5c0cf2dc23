package capture

import (
	"context"
	"database/sql"
	"fmt"
)

// Repository handles capture persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new capture repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a capture row.
func (r *Repository) Create(ctx context.Context, c *Capture) error {
	query := `
		INSERT INTO captures (id, trip_id, uploaded_by, file_name, file_url, caption)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING uploaded_at
	`
	if err := r.db.QueryRowContext(ctx, query,
		c.ID, c.TripID, c.UploadedBy, c.FileName, c.FileURL, c.Caption,
	).Scan(&c.UploadedAt); err != nil {
		return fmt.Errorf("failed to create capture: %w", err)
	}
	return nil
}

// GetByID retrieves one capture, or nil.
func (r *Repository) GetByID(ctx context.Context, id string) (*Capture, error) {
	query := `
		SELECT id, trip_id, uploaded_by, file_name, file_url, caption, uploaded_at
		FROM captures
		WHERE id = $1
	`

	c := &Capture{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&c.ID, &c.TripID, &c.UploadedBy, &c.FileName, &c.FileURL, &c.Caption, &c.UploadedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get capture: %w", err)
	}
	return c, nil
}

// ListByTrip retrieves a trip's captures newest first.
func (r *Repository) ListByTrip(ctx context.Context, tripID string) ([]*Capture, error) {
	query := `
		SELECT id, trip_id, uploaded_by, file_name, file_url, caption, uploaded_at
		FROM captures
		WHERE trip_id = $1
		ORDER BY uploaded_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, tripID)
	if err != nil {
		return nil, fmt.Errorf("failed to list captures: %w", err)
	}
	defer rows.Close()

	var captures []*Capture
	for rows.Next() {
		c := &Capture{}
		if err := rows.Scan(
			&c.ID, &c.TripID, &c.UploadedBy, &c.FileName, &c.FileURL, &c.Caption, &c.UploadedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan capture: %w", err)
		}
		captures = append(captures, c)
	}
	return captures, rows.Err()
}

// Delete removes a capture row.
func (r *Repository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM captures WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete capture: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
