package capture

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/triptally/triptally/internal/trip"
	"github.com/triptally/triptally/internal/user"
	"github.com/triptally/triptally/pkg/upload"
)

// Service errors
var (
	ErrCaptureNotFound = errors.New("capture not found")
	ErrFileRequired    = errors.New("an image file is required")
	ErrNotAllowed      = errors.New("you are not allowed to delete this capture")
)

// Service handles capture business logic
type Service struct {
	repo    *Repository
	trips   *trip.Service
	users   *user.Service
	uploads *upload.Store
}

// NewService creates a new capture service
func NewService(repo *Repository, trips *trip.Service, users *user.Service, uploads *upload.Store) *Service {
	return &Service{repo: repo, trips: trips, users: users, uploads: uploads}
}

// Create records an uploaded photo for a trip member. The staged file
// belongs to the caller until this returns nil.
func (s *Service) Create(ctx context.Context, tripID, userID, caption string, file *upload.StagedFile) (*Capture, error) {
	if _, err := s.trips.Authorize(ctx, tripID, userID); err != nil {
		return nil, err
	}
	if file == nil {
		return nil, ErrFileRequired
	}

	c := &Capture{
		ID:         uuid.New().String(),
		TripID:     tripID,
		UploadedBy: userID,
		FileName:   file.FileName,
		FileURL:    file.FileURL,
		Caption:    caption,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}

	s.populateUsers(ctx, c)
	return c, nil
}

// ListByTrip retrieves a trip's captures for a member, newest first.
func (s *Service) ListByTrip(ctx context.Context, tripID, userID string) ([]*Capture, error) {
	if _, err := s.trips.Authorize(ctx, tripID, userID); err != nil {
		return nil, err
	}

	captures, err := s.repo.ListByTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}

	s.populateUsers(ctx, captures...)
	return captures, nil
}

// Delete removes a capture. The uploader or the trip's creator may delete
// it; the stored file is removed best-effort.
func (s *Service) Delete(ctx context.Context, captureID, userID string) error {
	c, err := s.repo.GetByID(ctx, captureID)
	if err != nil {
		return err
	}
	if c == nil {
		return ErrCaptureNotFound
	}
	t, err := s.trips.Authorize(ctx, c.TripID, userID)
	if err != nil {
		return err
	}
	if c.UploadedBy != userID && t.CreatedBy != userID {
		return ErrNotAllowed
	}

	if err := s.repo.Delete(ctx, captureID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrCaptureNotFound
		}
		return err
	}

	s.uploads.RemoveByURL(c.FileURL)
	return nil
}

func (s *Service) populateUsers(ctx context.Context, captures ...*Capture) {
	idSet := make(map[string]bool)
	for _, c := range captures {
		idSet[c.UploadedBy] = true
	}
	ids := make([]string, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}

	users, err := s.users.GetByIDs(ctx, ids)
	if err != nil {
		return
	}

	for _, c := range captures {
		c.UploadedByUser = users[c.UploadedBy]
	}
}
