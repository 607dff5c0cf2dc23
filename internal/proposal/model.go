package proposal

import (
	"errors"
	"time"

	"github.com/triptally/triptally/internal/user"
)

// Type distinguishes plain discussions from proposals and polls.
type Type string

const (
	TypeDiscussion Type = "discussion"
	TypeProposal   Type = "proposal"
	TypePoll       Type = "poll"
)

// ValidType reports whether t is a known proposal type.
func ValidType(t Type) bool {
	switch t {
	case TypeDiscussion, TypeProposal, TypePoll:
		return true
	}
	return false
}

// Voting errors
var (
	ErrNotAPoll       = errors.New("this is not a poll")
	ErrPollClosed     = errors.New("this poll is closed")
	ErrPollEnded      = errors.New("this poll has ended")
	ErrOptionNotFound = errors.New("poll option not found")
)

// Proposal is a trip discussion, plan proposal or poll.
type Proposal struct {
	ID                 string        `json:"id"`
	TripID             string        `json:"tripId"`
	Title              string        `json:"title"`
	Description        string        `json:"description,omitempty"`
	Type               Type          `json:"type"`
	CreatedBy          string        `json:"createdBy"`
	Links              []string      `json:"links"`
	Images             []*Image      `json:"images"`
	PollOptions        []*PollOption `json:"pollOptions"`
	AllowMultipleVotes bool          `json:"allowMultipleVotes"`
	PollEndsAt         *time.Time    `json:"pollEndsAt,omitempty"`
	IsPollActive       bool          `json:"isPollActive"`
	TotalVotes         int           `json:"totalVotes"`
	CreatedAt          time.Time     `json:"createdAt"`

	// Populated from the user directory
	CreatedByUser *user.User `json:"createdByUser,omitempty"`
}

// PollOption is one selectable answer with its vote list and cached count.
type PollOption struct {
	ID         string  `json:"id"`
	OptionText string  `json:"optionText"`
	Votes      []*Vote `json:"votes"`
	VoteCount  int     `json:"voteCount"`
}

// Vote records one member's vote on an option.
type Vote struct {
	UserID  string    `json:"userId"`
	VotedAt time.Time `json:"votedAt"`
}

// Image is an uploaded attachment.
type Image struct {
	ID         string    `json:"id"`
	FileName   string    `json:"fileName"`
	FileURL    string    `json:"fileUrl"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// FindOption returns the option with the given id, or nil.
func (p *Proposal) FindOption(optionID string) *PollOption {
	for _, o := range p.PollOptions {
		if o.ID == optionID {
			return o
		}
	}
	return nil
}

func (o *PollOption) voteIndex(userID string) int {
	for i, v := range o.Votes {
		if v.UserID == userID {
			return i
		}
	}
	return -1
}

func (o *PollOption) removeVote(userID string) {
	if i := o.voteIndex(userID); i >= 0 {
		o.Votes = append(o.Votes[:i], o.Votes[i+1:]...)
		if o.VoteCount--; o.VoteCount < 0 {
			o.VoteCount = 0
		}
	}
}

// checkPollOpen gates voting: the proposal must be a poll, active, and not
// past its end time. Expiry flips IsPollActive to false in memory so the
// caller can persist the closure.
func (p *Proposal) checkPollOpen(now time.Time) error {
	if p.Type != TypePoll {
		return ErrNotAPoll
	}
	if !p.IsPollActive {
		return ErrPollClosed
	}
	if p.PollEndsAt != nil && now.After(*p.PollEndsAt) {
		p.IsPollActive = false
		return ErrPollEnded
	}
	return nil
}

// ToggleVote applies the poll voting state machine for one member:
//
//   - rejects when the proposal is not a poll, the poll is inactive, or
//     its end time has passed — the expiry case also flips IsPollActive to
//     false in memory so the caller can persist the closure;
//   - in single-vote mode a prior vote for a different option is removed
//     first, its count floored at zero;
//   - the vote on the target option then toggles: present → removed,
//     absent → added;
//   - TotalVotes is recomputed as the sum of all option counts.
//
// Returns whether the user's vote ended up added.
func (p *Proposal) ToggleVote(userID, optionID string, now time.Time) (bool, error) {
	if err := p.checkPollOpen(now); err != nil {
		return false, err
	}

	option := p.FindOption(optionID)
	if option == nil {
		return false, ErrOptionNotFound
	}

	alreadyVotedHere := option.voteIndex(userID) >= 0

	if !p.AllowMultipleVotes && !alreadyVotedHere {
		for _, o := range p.PollOptions {
			o.removeVote(userID)
		}
	}

	var added bool
	if alreadyVotedHere {
		option.removeVote(userID)
	} else {
		option.Votes = append(option.Votes, &Vote{UserID: userID, VotedAt: now})
		option.VoteCount++
		added = true
	}

	total := 0
	for _, o := range p.PollOptions {
		total += o.VoteCount
	}
	p.TotalVotes = total

	return added, nil
}
