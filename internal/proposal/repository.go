package proposal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"
)

// Repository handles proposal data persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new proposal repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a proposal with its options and images in one transaction.
func (r *Repository) Create(ctx context.Context, p *Proposal) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO proposals (id, trip_id, title, description, type, created_by, links, allow_multiple_votes, poll_ends_at, is_poll_active, total_votes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at
	`
	err = tx.QueryRowContext(ctx, query,
		p.ID, p.TripID, p.Title, p.Description, p.Type, p.CreatedBy,
		pq.Array(p.Links), p.AllowMultipleVotes, p.PollEndsAt, p.IsPollActive, p.TotalVotes,
	).Scan(&p.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create proposal: %w", err)
	}

	if err := insertOptions(ctx, tx, p.ID, p.PollOptions); err != nil {
		return err
	}
	if err := insertImages(ctx, tx, p.ID, p.Images); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

func insertOptions(ctx context.Context, tx *sql.Tx, proposalID string, options []*PollOption) error {
	optQuery := `
		INSERT INTO proposal_options (id, proposal_id, position, option_text, vote_count)
		VALUES ($1, $2, $3, $4, $5)
	`
	voteQuery := `
		INSERT INTO proposal_votes (option_id, user_id, voted_at)
		VALUES ($1, $2, $3)
	`
	for i, o := range options {
		if _, err := tx.ExecContext(ctx, optQuery, o.ID, proposalID, i, o.OptionText, o.VoteCount); err != nil {
			return fmt.Errorf("failed to insert poll option: %w", err)
		}
		for _, v := range o.Votes {
			if _, err := tx.ExecContext(ctx, voteQuery, o.ID, v.UserID, v.VotedAt); err != nil {
				return fmt.Errorf("failed to insert vote: %w", err)
			}
		}
	}
	return nil
}

func insertImages(ctx context.Context, tx *sql.Tx, proposalID string, images []*Image) error {
	query := `
		INSERT INTO proposal_images (id, proposal_id, file_name, file_url, uploaded_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	for _, img := range images {
		if _, err := tx.ExecContext(ctx, query, img.ID, proposalID, img.FileName, img.FileURL, img.UploadedAt); err != nil {
			return fmt.Errorf("failed to insert image: %w", err)
		}
	}
	return nil
}

// GetByID retrieves a proposal with options, votes and images, or nil.
func (r *Repository) GetByID(ctx context.Context, id string) (*Proposal, error) {
	query := `
		SELECT id, trip_id, title, description, type, created_by, links, allow_multiple_votes, poll_ends_at, is_poll_active, total_votes, created_at
		FROM proposals
		WHERE id = $1
	`

	p := &Proposal{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.TripID, &p.Title, &p.Description, &p.Type, &p.CreatedBy,
		pq.Array(&p.Links), &p.AllowMultipleVotes, &p.PollEndsAt, &p.IsPollActive, &p.TotalVotes, &p.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get proposal: %w", err)
	}

	if err := r.loadDetails(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *Repository) loadDetails(ctx context.Context, p *Proposal) error {
	options, err := r.getOptions(ctx, p.ID)
	if err != nil {
		return err
	}
	p.PollOptions = options

	images, err := r.getImages(ctx, p.ID)
	if err != nil {
		return err
	}
	p.Images = images
	return nil
}

func (r *Repository) getOptions(ctx context.Context, proposalID string) ([]*PollOption, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, option_text, vote_count
		FROM proposal_options
		WHERE proposal_id = $1
		ORDER BY position
	`, proposalID)
	if err != nil {
		return nil, fmt.Errorf("failed to get poll options: %w", err)
	}
	defer rows.Close()

	options := []*PollOption{}
	byID := map[string]*PollOption{}
	for rows.Next() {
		o := &PollOption{Votes: []*Vote{}}
		if err := rows.Scan(&o.ID, &o.OptionText, &o.VoteCount); err != nil {
			return nil, fmt.Errorf("failed to scan poll option: %w", err)
		}
		options = append(options, o)
		byID[o.ID] = o
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	voteRows, err := r.db.QueryContext(ctx, `
		SELECT pv.option_id, pv.user_id, pv.voted_at
		FROM proposal_votes pv
		JOIN proposal_options po ON pv.option_id = po.id
		WHERE po.proposal_id = $1
		ORDER BY pv.voted_at
	`, proposalID)
	if err != nil {
		return nil, fmt.Errorf("failed to get votes: %w", err)
	}
	defer voteRows.Close()

	for voteRows.Next() {
		var optionID string
		v := &Vote{}
		if err := voteRows.Scan(&optionID, &v.UserID, &v.VotedAt); err != nil {
			return nil, fmt.Errorf("failed to scan vote: %w", err)
		}
		if o, ok := byID[optionID]; ok {
			o.Votes = append(o.Votes, v)
		}
	}

	return options, voteRows.Err()
}

func (r *Repository) getImages(ctx context.Context, proposalID string) ([]*Image, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, file_name, file_url, uploaded_at
		FROM proposal_images
		WHERE proposal_id = $1
		ORDER BY uploaded_at
	`, proposalID)
	if err != nil {
		return nil, fmt.Errorf("failed to get images: %w", err)
	}
	defer rows.Close()

	images := []*Image{}
	for rows.Next() {
		img := &Image{}
		if err := rows.Scan(&img.ID, &img.FileName, &img.FileURL, &img.UploadedAt); err != nil {
			return nil, fmt.Errorf("failed to scan image: %w", err)
		}
		images = append(images, img)
	}
	return images, rows.Err()
}

// ListByTrip retrieves a trip's proposals newest first, optionally filtered
// by type.
func (r *Repository) ListByTrip(ctx context.Context, tripID string, typ Type) ([]*Proposal, error) {
	query := `
		SELECT id, trip_id, title, description, type, created_by, links, allow_multiple_votes, poll_ends_at, is_poll_active, total_votes, created_at
		FROM proposals
		WHERE trip_id = $1
	`
	args := []interface{}{tripID}
	if typ != "" {
		query += ` AND type = $2`
		args = append(args, typ)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list proposals: %w", err)
	}
	defer rows.Close()

	var proposals []*Proposal
	for rows.Next() {
		p := &Proposal{}
		if err := rows.Scan(
			&p.ID, &p.TripID, &p.Title, &p.Description, &p.Type, &p.CreatedBy,
			pq.Array(&p.Links), &p.AllowMultipleVotes, &p.PollEndsAt, &p.IsPollActive, &p.TotalVotes, &p.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan proposal: %w", err)
		}
		proposals = append(proposals, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, p := range proposals {
		if err := r.loadDetails(ctx, p); err != nil {
			return nil, err
		}
	}
	return proposals, nil
}

// Update rewrites a proposal's row, options and votes in one transaction.
// Options are replaced wholesale (copy-modify-replace); the in-memory
// proposal is the source of truth. Images are managed separately.
func (r *Repository) Update(ctx context.Context, p *Proposal) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		UPDATE proposals
		SET title = $2, description = $3, links = $4, allow_multiple_votes = $5,
		    poll_ends_at = $6, is_poll_active = $7, total_votes = $8
		WHERE id = $1
	`
	if _, err := tx.ExecContext(ctx, query,
		p.ID, p.Title, p.Description, pq.Array(p.Links),
		p.AllowMultipleVotes, p.PollEndsAt, p.IsPollActive, p.TotalVotes,
	); err != nil {
		return fmt.Errorf("failed to update proposal: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM proposal_options WHERE proposal_id = $1`, p.ID); err != nil {
		return fmt.Errorf("failed to clear poll options: %w", err)
	}
	if err := insertOptions(ctx, tx, p.ID, p.PollOptions); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// AddImages appends image rows to an existing proposal.
func (r *Repository) AddImages(ctx context.Context, proposalID string, images []*Image) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := insertImages(ctx, tx, proposalID, images); err != nil {
		return err
	}
	return tx.Commit()
}

// DeleteImage removes one image row.
func (r *Repository) DeleteImage(ctx context.Context, imageID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM proposal_images WHERE id = $1`, imageID)
	if err != nil {
		return fmt.Errorf("failed to delete image: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// SetPollInactive closes a poll.
func (r *Repository) SetPollInactive(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE proposals SET is_poll_active = FALSE WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to close poll: %w", err)
	}
	return nil
}

// DeactivateExpiredPolls closes every active poll whose end time has
// passed. Returns how many were closed.
func (r *Repository) DeactivateExpiredPolls(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE proposals
		SET is_poll_active = FALSE
		WHERE type = 'poll' AND is_poll_active = TRUE AND poll_ends_at IS NOT NULL AND poll_ends_at < $1
	`, now)
	if err != nil {
		return 0, fmt.Errorf("failed to deactivate expired polls: %w", err)
	}
	return result.RowsAffected()
}

// Delete removes a proposal; options, votes and image rows cascade.
func (r *Repository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM proposals WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete proposal: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
