package proposal

import (
	"encoding/json"
	"net/http"
	"time"
)

// CreateProposalRequest represents the request to create a proposal. It may
// arrive as JSON or as multipart form fields (links and pollOptions as
// JSON-encoded strings) with staged image files.
type CreateProposalRequest struct {
	Title              string     `json:"title"`
	Description        string     `json:"description"`
	Type               string     `json:"type"`
	Links              []string   `json:"links"`
	PollOptions        []string   `json:"pollOptions"`
	AllowMultipleVotes bool       `json:"allowMultipleVotes"`
	PollEndsAt         *time.Time `json:"pollEndsAt,omitempty"`
}

// UpdatePollOption is one replacement option. Existing votes are preserved
// for options matched by id or, failing that, by text.
type UpdatePollOption struct {
	ID         string `json:"id,omitempty"`
	OptionText string `json:"optionText"`
}

// UpdateProposalRequest represents the request to update a proposal. Nil
// fields are left untouched. Poll fields only apply to polls.
type UpdateProposalRequest struct {
	Title              *string            `json:"title,omitempty"`
	Description        *string            `json:"description,omitempty"`
	Links              *[]string          `json:"links,omitempty"`
	PollOptions        []UpdatePollOption `json:"pollOptions,omitempty"`
	AllowMultipleVotes *bool              `json:"allowMultipleVotes,omitempty"`
	PollEndsAt         *time.Time         `json:"pollEndsAt,omitempty"`
	IsPollActive       *bool              `json:"isPollActive,omitempty"`
}

// parseCreateForm builds a CreateProposalRequest from multipart form fields.
func parseCreateForm(r *http.Request) (*CreateProposalRequest, error) {
	req := &CreateProposalRequest{
		Title:              r.FormValue("title"),
		Description:        r.FormValue("description"),
		Type:               r.FormValue("type"),
		AllowMultipleVotes: r.FormValue("allowMultipleVotes") == "true",
	}

	// Malformed links are dropped rather than rejected; they are cosmetic.
	if raw := r.FormValue("links"); raw != "" {
		json.Unmarshal([]byte(raw), &req.Links)
	}
	if raw := r.FormValue("pollOptions"); raw != "" {
		json.Unmarshal([]byte(raw), &req.PollOptions)
	}

	if raw := r.FormValue("pollEndsAt"); raw != "" {
		endsAt, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, err
		}
		req.PollEndsAt = &endsAt
	}

	return req, nil
}
