package user

import (
	"context"
	"errors"
	"fmt"
)

// Common errors
var (
	ErrUserNotFound     = errors.New("user not found")
	ErrUnknownEventType = errors.New("unknown webhook event type")
)

// WebhookEvent is the payload the identity provider posts on account changes.
type WebhookEvent struct {
	Type string      `json:"type"`
	Data WebhookUser `json:"data"`
}

// WebhookUser carries the provider's view of an account.
type WebhookUser struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	ImageURL  string `json:"imageUrl"`
}

// Service keeps the local user directory in sync with the identity provider.
type Service struct {
	repo *Repository
}

// NewService creates a new user service
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// GetByID retrieves a user by their ID
func (s *Service) GetByID(ctx context.Context, id string) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

// GetByIDs retrieves a batch of users keyed by ID.
func (s *Service) GetByIDs(ctx context.Context, ids []string) (map[string]*User, error) {
	return s.repo.GetByIDs(ctx, ids)
}

// HandleEvent applies one webhook event to the directory.
func (s *Service) HandleEvent(ctx context.Context, evt *WebhookEvent) error {
	if evt.Data.ID == "" {
		return errors.New("webhook event has no user id")
	}

	switch evt.Type {
	case "user.created", "user.updated":
		return s.repo.Upsert(ctx, &User{
			ID:        evt.Data.ID,
			Email:     evt.Data.Email,
			FirstName: evt.Data.FirstName,
			LastName:  evt.Data.LastName,
			ImageURL:  evt.Data.ImageURL,
		})
	case "user.deleted":
		return s.repo.Delete(ctx, evt.Data.ID)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownEventType, evt.Type)
	}
}
