package payment

import (
	"context"
	"errors"

	"github.com/triptally/triptally/internal/user"
	"github.com/triptally/triptally/pkg/upload"
)

// ErrUserNotFound is returned when settings are requested for a user the
// directory has never seen.
var ErrUserNotFound = errors.New("user not found")

// Service handles payment settings business logic
type Service struct {
	repo    *Repository
	users   *user.Service
	uploads *upload.Store
}

// NewService creates a new payment service
func NewService(repo *Repository, users *user.Service, uploads *upload.Store) *Service {
	return &Service{repo: repo, users: users, uploads: uploads}
}

// Get returns the caller's settings. A user who never saved any gets an
// all-empty record rather than a 404; the row is created lazily on the
// first update.
func (s *Service) Get(ctx context.Context, userID string) (*Settings, error) {
	stored, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return &Settings{UserID: userID}, nil
	}
	return stored, nil
}

// GetForUser returns another member's settings so the caller can pay them
// back. The target must exist in the user directory.
func (s *Service) GetForUser(ctx context.Context, targetUserID string) (*Settings, error) {
	if _, err := s.users.GetByID(ctx, targetUserID); err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return s.Get(ctx, targetUserID)
}

// Update applies partial changes and optionally replaces the QR code
// image. The staged file belongs to the caller until this returns nil; a
// replaced QR image is deleted from storage best-effort.
func (s *Service) Update(ctx context.Context, userID string, req *UpdateSettingsRequest, qrCode *upload.StagedFile) (*Settings, error) {
	settings, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.UPIID != nil {
		settings.UPIID = *req.UPIID
	}
	if req.PhoneNumber != nil {
		settings.PhoneNumber = *req.PhoneNumber
	}
	if req.BankName != nil {
		settings.BankName = *req.BankName
	}

	oldQR := ""
	if qrCode != nil {
		oldQR = settings.QRCodeURL
		settings.QRCodeURL = qrCode.FileURL
	}

	if err := s.repo.Upsert(ctx, settings); err != nil {
		return nil, err
	}

	if oldQR != "" && oldQR != settings.QRCodeURL {
		s.uploads.RemoveByURL(oldQR)
	}
	return settings, nil
}
