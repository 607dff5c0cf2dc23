package payment

import (
	"context"
	"database/sql"
	"fmt"
)

// Repository handles payment settings persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new payment repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Get retrieves a user's settings, or nil when none are stored yet.
func (r *Repository) Get(ctx context.Context, userID string) (*Settings, error) {
	query := `
		SELECT user_id, upi_id, phone_number, bank_name, qr_code_url, updated_at
		FROM payment_settings
		WHERE user_id = $1
	`

	s := &Settings{}
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&s.UserID, &s.UPIID, &s.PhoneNumber, &s.BankName, &s.QRCodeURL, &s.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get payment settings: %w", err)
	}
	return s, nil
}

// Upsert stores the settings row, creating it on first write.
func (r *Repository) Upsert(ctx context.Context, s *Settings) error {
	query := `
		INSERT INTO payment_settings (user_id, upi_id, phone_number, bank_name, qr_code_url, updated_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (user_id) DO UPDATE SET
			upi_id       = EXCLUDED.upi_id,
			phone_number = EXCLUDED.phone_number,
			bank_name    = EXCLUDED.bank_name,
			qr_code_url  = EXCLUDED.qr_code_url,
			updated_at   = now()
		RETURNING updated_at
	`
	if err := r.db.QueryRowContext(ctx, query,
		s.UserID, s.UPIID, s.PhoneNumber, s.BankName, s.QRCodeURL,
	).Scan(&s.UpdatedAt); err != nil {
		return fmt.Errorf("failed to upsert payment settings: %w", err)
	}
	return nil
}
