package user

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
)

// Repository handles user data persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new user repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Upsert inserts a user or refreshes their profile fields.
func (r *Repository) Upsert(ctx context.Context, u *User) error {
	query := `
		INSERT INTO users (id, email, first_name, last_name, image_url)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET email = EXCLUDED.email,
		    first_name = EXCLUDED.first_name,
		    last_name = EXCLUDED.last_name,
		    image_url = EXCLUDED.image_url
	`

	if _, err := r.db.ExecContext(ctx, query, u.ID, u.Email, u.FirstName, u.LastName, u.ImageURL); err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by their ID
func (r *Repository) GetByID(ctx context.Context, id string) (*User, error) {
	query := `
		SELECT id, email, first_name, last_name, image_url, created_at
		FROM users
		WHERE id = $1
	`

	u := &User{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&u.ID,
		&u.Email,
		&u.FirstName,
		&u.LastName,
		&u.ImageURL,
		&u.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return u, nil
}

// GetByIDs retrieves a batch of users keyed by ID. Unknown IDs are simply
// absent from the result.
func (r *Repository) GetByIDs(ctx context.Context, ids []string) (map[string]*User, error) {
	users := make(map[string]*User, len(ids))
	if len(ids) == 0 {
		return users, nil
	}

	query := `
		SELECT id, email, first_name, last_name, image_url, created_at
		FROM users
		WHERE id = ANY($1)
	`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to get users: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		u := &User{}
		if err := rows.Scan(
			&u.ID,
			&u.Email,
			&u.FirstName,
			&u.LastName,
			&u.ImageURL,
			&u.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users[u.ID] = u
	}

	return users, rows.Err()
}

// Delete removes a user from the directory
func (r *Repository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}
