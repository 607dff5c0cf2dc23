package proposal

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/triptally/triptally/internal/trip"
	"github.com/triptally/triptally/internal/user"
	"github.com/triptally/triptally/pkg/logger"
	"github.com/triptally/triptally/pkg/upload"
)

// Service errors
var (
	ErrProposalNotFound    = errors.New("proposal not found")
	ErrImageNotFound       = errors.New("image not found")
	ErrTitleRequired       = errors.New("title is required")
	ErrInvalidType         = errors.New("invalid proposal type")
	ErrPollOptionsRequired = errors.New("polls need at least two options")
	ErrNotAllowed          = errors.New("you are not allowed to modify this proposal")
)

// Service handles proposal business logic
type Service struct {
	repo    *Repository
	trips   *trip.Service
	users   *user.Service
	uploads *upload.Store
}

// NewService creates a new proposal service
func NewService(repo *Repository, trips *trip.Service, users *user.Service, uploads *upload.Store) *Service {
	return &Service{repo: repo, trips: trips, users: users, uploads: uploads}
}

// Create validates and stores a new proposal for a trip member. Staged
// image files belong to the caller until this returns nil; on error the
// handler cleans them up.
func (s *Service) Create(ctx context.Context, tripID, userID string, req *CreateProposalRequest, images []*upload.StagedFile) (*Proposal, error) {
	if _, err := s.trips.Authorize(ctx, tripID, userID); err != nil {
		return nil, err
	}

	if strings.TrimSpace(req.Title) == "" {
		return nil, ErrTitleRequired
	}

	typ := Type(req.Type)
	if typ == "" {
		typ = TypeDiscussion
	}
	if !ValidType(typ) {
		return nil, ErrInvalidType
	}
	if typ == TypePoll && len(req.PollOptions) < 2 {
		return nil, ErrPollOptionsRequired
	}

	now := time.Now()
	p := &Proposal{
		ID:                 uuid.New().String(),
		TripID:             tripID,
		Title:              strings.TrimSpace(req.Title),
		Description:        req.Description,
		Type:               typ,
		CreatedBy:          userID,
		Links:              req.Links,
		AllowMultipleVotes: req.AllowMultipleVotes,
	}
	if p.Links == nil {
		p.Links = []string{}
	}
	p.PollOptions = []*PollOption{}
	p.Images = []*Image{}

	if typ == TypePoll {
		p.IsPollActive = true
		p.PollEndsAt = req.PollEndsAt
		for _, text := range req.PollOptions {
			p.PollOptions = append(p.PollOptions, &PollOption{
				ID:         uuid.New().String(),
				OptionText: text,
				Votes:      []*Vote{},
			})
		}
	}

	for _, f := range images {
		p.Images = append(p.Images, &Image{
			ID:         uuid.New().String(),
			FileName:   f.FileName,
			FileURL:    f.FileURL,
			UploadedAt: now,
		})
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	s.populateUsers(ctx, p)
	return p, nil
}

// GetByID retrieves one proposal, ensuring the caller is a trip member.
func (s *Service) GetByID(ctx context.Context, proposalID, userID string) (*Proposal, error) {
	p, err := s.repo.GetByID(ctx, proposalID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProposalNotFound
	}
	if _, err := s.trips.Authorize(ctx, p.TripID, userID); err != nil {
		return nil, err
	}

	s.populateUsers(ctx, p)
	return p, nil
}

// ListByTrip retrieves a trip's proposals for a member, newest first. An
// unknown type filter is ignored rather than rejected.
func (s *Service) ListByTrip(ctx context.Context, tripID, userID string, typeFilter string) ([]*Proposal, error) {
	if _, err := s.trips.Authorize(ctx, tripID, userID); err != nil {
		return nil, err
	}

	typ := Type(typeFilter)
	if !ValidType(typ) {
		typ = ""
	}

	proposals, err := s.repo.ListByTrip(ctx, tripID, typ)
	if err != nil {
		return nil, err
	}

	s.populateUsers(ctx, proposals...)
	return proposals, nil
}

// Update applies partial changes. Only the proposal's creator may edit it.
// Replacement poll options keep the votes of the option they match, by id
// first and then by text; options left out lose their votes.
func (s *Service) Update(ctx context.Context, proposalID, userID string, req *UpdateProposalRequest) (*Proposal, error) {
	p, err := s.repo.GetByID(ctx, proposalID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProposalNotFound
	}
	if _, err := s.trips.Authorize(ctx, p.TripID, userID); err != nil {
		return nil, err
	}
	if p.CreatedBy != userID {
		return nil, ErrNotAllowed
	}

	if req.Title != nil {
		if strings.TrimSpace(*req.Title) == "" {
			return nil, ErrTitleRequired
		}
		p.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.Links != nil {
		p.Links = *req.Links
		if p.Links == nil {
			p.Links = []string{}
		}
	}

	if p.Type == TypePoll {
		if req.PollOptions != nil {
			if len(req.PollOptions) < 2 {
				return nil, ErrPollOptionsRequired
			}
			p.PollOptions = mergeOptions(p.PollOptions, req.PollOptions)
			p.TotalVotes = 0
			for _, o := range p.PollOptions {
				p.TotalVotes += o.VoteCount
			}
		}
		if req.AllowMultipleVotes != nil {
			p.AllowMultipleVotes = *req.AllowMultipleVotes
		}
		if req.PollEndsAt != nil {
			p.PollEndsAt = req.PollEndsAt
		}
		if req.IsPollActive != nil {
			p.IsPollActive = *req.IsPollActive
		}
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}

	s.populateUsers(ctx, p)
	return p, nil
}

// mergeOptions builds the replacement option list, carrying votes over from
// the existing option each entry matches.
func mergeOptions(existing []*PollOption, updates []UpdatePollOption) []*PollOption {
	byID := make(map[string]*PollOption, len(existing))
	byText := make(map[string]*PollOption, len(existing))
	for _, o := range existing {
		byID[o.ID] = o
		byText[o.OptionText] = o
	}

	merged := make([]*PollOption, 0, len(updates))
	for _, u := range updates {
		prev := byID[u.ID]
		if prev == nil {
			prev = byText[u.OptionText]
		}
		if prev != nil {
			prev.OptionText = u.OptionText
			merged = append(merged, prev)
			continue
		}
		merged = append(merged, &PollOption{
			ID:         uuid.New().String(),
			OptionText: u.OptionText,
			Votes:      []*Vote{},
		})
	}
	return merged
}

// Vote toggles the caller's vote on a poll option. Poll state is checked
// before membership so a closed poll reads as closed even to outsiders,
// and membership before the option lookup so non-members cannot probe
// option ids. A discovered expiry is persisted before the error returns.
func (s *Service) Vote(ctx context.Context, proposalID, optionID, userID string) (*Proposal, error) {
	p, err := s.repo.GetByID(ctx, proposalID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProposalNotFound
	}

	now := time.Now()
	if err := p.checkPollOpen(now); err != nil {
		if errors.Is(err, ErrPollEnded) {
			if perr := s.repo.SetPollInactive(ctx, p.ID); perr != nil {
				logger.Log.WithError(perr).WithField("proposal_id", p.ID).Warn("failed to persist poll closure")
			}
		}
		return nil, err
	}

	if _, err := s.trips.Authorize(ctx, p.TripID, userID); err != nil {
		return nil, err
	}

	if _, err := p.ToggleVote(userID, optionID, now); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}

	s.populateUsers(ctx, p)
	return p, nil
}

// AddImages attaches uploaded files to an existing proposal. Any trip
// member may contribute images.
func (s *Service) AddImages(ctx context.Context, proposalID, userID string, files []*upload.StagedFile) (*Proposal, error) {
	p, err := s.repo.GetByID(ctx, proposalID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProposalNotFound
	}
	if _, err := s.trips.Authorize(ctx, p.TripID, userID); err != nil {
		return nil, err
	}

	now := time.Now()
	images := make([]*Image, 0, len(files))
	for _, f := range files {
		images = append(images, &Image{
			ID:         uuid.New().String(),
			FileName:   f.FileName,
			FileURL:    f.FileURL,
			UploadedAt: now,
		})
	}

	if err := s.repo.AddImages(ctx, p.ID, images); err != nil {
		return nil, err
	}
	p.Images = append(p.Images, images...)

	s.populateUsers(ctx, p)
	return p, nil
}

// RemoveImage deletes one attachment. Only the proposal's creator may
// remove images; the stored file is removed best-effort.
func (s *Service) RemoveImage(ctx context.Context, proposalID, imageID, userID string) error {
	p, err := s.repo.GetByID(ctx, proposalID)
	if err != nil {
		return err
	}
	if p == nil {
		return ErrProposalNotFound
	}
	if _, err := s.trips.Authorize(ctx, p.TripID, userID); err != nil {
		return err
	}
	if p.CreatedBy != userID {
		return ErrNotAllowed
	}

	var img *Image
	for _, i := range p.Images {
		if i.ID == imageID {
			img = i
			break
		}
	}
	if img == nil {
		return ErrImageNotFound
	}

	if err := s.repo.DeleteImage(ctx, imageID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrImageNotFound
		}
		return err
	}

	s.uploads.RemoveByURL(img.FileURL)
	return nil
}

// Delete removes a proposal. The creator or the trip's creator may delete
// it; attached files are removed best-effort.
func (s *Service) Delete(ctx context.Context, proposalID, userID string) error {
	p, err := s.repo.GetByID(ctx, proposalID)
	if err != nil {
		return err
	}
	if p == nil {
		return ErrProposalNotFound
	}
	t, err := s.trips.Authorize(ctx, p.TripID, userID)
	if err != nil {
		return err
	}
	if p.CreatedBy != userID && t.CreatedBy != userID {
		return ErrNotAllowed
	}

	if err := s.repo.Delete(ctx, proposalID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrProposalNotFound
		}
		return err
	}

	for _, img := range p.Images {
		s.uploads.RemoveByURL(img.FileURL)
	}
	return nil
}

// CloseExpiredPolls is the periodic sweep invoked by the scheduler.
func (s *Service) CloseExpiredPolls(ctx context.Context) {
	n, err := s.repo.DeactivateExpiredPolls(ctx, time.Now())
	if err != nil {
		logger.Log.WithError(err).Error("expired poll sweep failed")
		return
	}
	if n > 0 {
		logger.Log.WithField("closed", n).Info("closed expired polls")
	}
}

func (s *Service) populateUsers(ctx context.Context, proposals ...*Proposal) {
	idSet := make(map[string]bool)
	for _, p := range proposals {
		idSet[p.CreatedBy] = true
	}
	ids := make([]string, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}

	users, err := s.users.GetByIDs(ctx, ids)
	if err != nil {
		return
	}

	for _, p := range proposals {
		p.CreatedByUser = users[p.CreatedBy]
	}
}
