package proposal

import (
	"testing"
	"time"
)

func TestMergeOptionsKeepsVotesByID(t *testing.T) {
	existing := []*PollOption{
		{ID: "opt-1", OptionText: "Beach", VoteCount: 2, Votes: []*Vote{
			{UserID: "u1", VotedAt: time.Now()},
			{UserID: "u2", VotedAt: time.Now()},
		}},
		{ID: "opt-2", OptionText: "Mountains", VoteCount: 1, Votes: []*Vote{
			{UserID: "u3", VotedAt: time.Now()},
		}},
	}

	merged := mergeOptions(existing, []UpdatePollOption{
		{ID: "opt-1", OptionText: "Beach trip"},
		{OptionText: "City break"},
	})

	if len(merged) != 2 {
		t.Fatalf("len(merged) = %d, want 2", len(merged))
	}
	if merged[0].ID != "opt-1" || merged[0].OptionText != "Beach trip" {
		t.Errorf("matched option = %q/%q, want opt-1 renamed", merged[0].ID, merged[0].OptionText)
	}
	if merged[0].VoteCount != 2 || len(merged[0].Votes) != 2 {
		t.Errorf("matched option lost votes: count=%d votes=%d", merged[0].VoteCount, len(merged[0].Votes))
	}
	if merged[1].ID == "" || merged[1].ID == "opt-2" {
		t.Errorf("new option got id %q, want a fresh one", merged[1].ID)
	}
	if merged[1].VoteCount != 0 || len(merged[1].Votes) != 0 {
		t.Errorf("new option should start with no votes")
	}
}

func TestMergeOptionsMatchesByText(t *testing.T) {
	existing := []*PollOption{
		{ID: "opt-1", OptionText: "Beach", VoteCount: 3, Votes: []*Vote{
			{UserID: "u1"}, {UserID: "u2"}, {UserID: "u3"},
		}},
	}

	// Client re-submits the option without its id; text still matches.
	merged := mergeOptions(existing, []UpdatePollOption{{OptionText: "Beach"}})

	if len(merged) != 1 {
		t.Fatalf("len(merged) = %d, want 1", len(merged))
	}
	if merged[0].ID != "opt-1" {
		t.Errorf("option id = %q, want opt-1", merged[0].ID)
	}
	if merged[0].VoteCount != 3 {
		t.Errorf("VoteCount = %d, want 3", merged[0].VoteCount)
	}
}

func TestMergeOptionsDropsOmittedOptions(t *testing.T) {
	existing := []*PollOption{
		{ID: "opt-1", OptionText: "Beach", VoteCount: 1, Votes: []*Vote{{UserID: "u1"}}},
		{ID: "opt-2", OptionText: "Mountains", VoteCount: 4},
	}

	merged := mergeOptions(existing, []UpdatePollOption{{ID: "opt-1", OptionText: "Beach"}})

	if len(merged) != 1 {
		t.Fatalf("len(merged) = %d, want 1", len(merged))
	}
	if merged[0].ID != "opt-1" {
		t.Errorf("surviving option = %q, want opt-1", merged[0].ID)
	}
	total := 0
	for _, o := range merged {
		total += o.VoteCount
	}
	if total != 1 {
		t.Errorf("surviving vote total = %d, want 1", total)
	}
}
