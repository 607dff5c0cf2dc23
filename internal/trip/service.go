package trip

import (
	"context"
	"errors"
	"strings"
)

// Common errors
var (
	ErrTripNotFound = errors.New("trip not found")
	ErrNotMember    = errors.New("you are not a member of this trip")
	ErrNotCreator   = errors.New("only the trip creator can do this")
	ErrNameRequired = errors.New("trip name is required")
)

// Service handles trip business logic and doubles as the membership oracle
// consumed by the expense, proposal and capture features.
type Service struct {
	repo *Repository
}

// NewService creates a new trip service
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// Create creates a trip owned by the acting user.
func (s *Service) Create(ctx context.Context, createdBy string, req *CreateTripRequest) (*Trip, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, ErrNameRequired
	}
	return s.repo.Create(ctx, createdBy, req)
}

// GetByID retrieves a trip with its members.
func (s *Service) GetByID(ctx context.Context, id string) (*Trip, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, ErrTripNotFound
	}
	return t, nil
}

// Authorize loads a trip and checks the acting user is a member or the
// creator. This is the shared authorization step for every trip-scoped
// operation.
func (s *Service) Authorize(ctx context.Context, tripID, userID string) (*Trip, error) {
	t, err := s.GetByID(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if !t.HasMember(userID) {
		return nil, ErrNotMember
	}
	return t, nil
}

// ListByUser retrieves every trip the user belongs to.
func (s *Service) ListByUser(ctx context.Context, userID string) ([]*Trip, error) {
	return s.repo.ListByUserID(ctx, userID)
}

// Update modifies a trip; only the creator may do so.
func (s *Service) Update(ctx context.Context, id, userID string, req *UpdateTripRequest) (*Trip, error) {
	t, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.CreatedBy != userID {
		return nil, ErrNotCreator
	}

	updated, err := s.repo.Update(ctx, id, req)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, ErrTripNotFound
	}
	return updated, nil
}

// AddMember adds a user to a trip; only the creator may do so.
func (s *Service) AddMember(ctx context.Context, tripID, actingUserID string, req *AddMemberRequest) (*Member, error) {
	t, err := s.GetByID(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if t.CreatedBy != actingUserID {
		return nil, ErrNotCreator
	}
	if req.UserID == "" {
		return nil, errors.New("userId is required")
	}

	return s.repo.AddMember(ctx, tripID, req.UserID)
}

// RemoveMember removes a member; the creator may remove anyone, a member
// may remove themselves.
func (s *Service) RemoveMember(ctx context.Context, tripID, actingUserID, memberID string) error {
	t, err := s.GetByID(ctx, tripID)
	if err != nil {
		return err
	}
	if actingUserID != t.CreatedBy && actingUserID != memberID {
		return ErrNotCreator
	}
	if memberID == t.CreatedBy {
		return errors.New("the trip creator cannot be removed")
	}

	return s.repo.RemoveMember(ctx, tripID, memberID)
}

// Delete removes a trip; only the creator may do so.
func (s *Service) Delete(ctx context.Context, id, userID string) error {
	t, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if t.CreatedBy != userID {
		return ErrNotCreator
	}
	return s.repo.Delete(ctx, id)
}
