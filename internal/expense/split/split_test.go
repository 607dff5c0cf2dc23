package split

import (
	"math"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		inputs  []Input
		wantErr error
	}{
		{
			name:    "empty list",
			inputs:  nil,
			wantErr: ErrNoSplits,
		},
		{
			name:   "exact 100",
			inputs: []Input{{UserID: "a", Percentage: 60}, {UserID: "b", Percentage: 40}},
		},
		{
			name:   "single full split",
			inputs: []Input{{UserID: "a", Percentage: 100}},
		},
		{
			name:   "within tolerance below",
			inputs: []Input{{UserID: "a", Percentage: 33.33}, {UserID: "b", Percentage: 33.33}, {UserID: "c", Percentage: 33.34}},
		},
		{
			name:    "sum too low",
			inputs:  []Input{{UserID: "a", Percentage: 50}, {UserID: "b", Percentage: 49.9}},
			wantErr: ErrInvalidPercentages,
		},
		{
			name:    "sum too high",
			inputs:  []Input{{UserID: "a", Percentage: 60}, {UserID: "b", Percentage: 40.02}},
			wantErr: ErrInvalidPercentages,
		},
		{
			name:    "negative percentage",
			inputs:  []Input{{UserID: "a", Percentage: -10}, {UserID: "b", Percentage: 110}},
			wantErr: ErrPercentageOutOfRange,
		},
		{
			name:    "duplicate user",
			inputs:  []Input{{UserID: "a", Percentage: 50}, {UserID: "a", Percentage: 50}},
			wantErr: ErrDuplicateUser,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.inputs)
			if err != tt.wantErr {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCompute_Amounts(t *testing.T) {
	out, err := Compute(900, "alice", []Input{
		{UserID: "alice", Percentage: 60},
		{UserID: "bob", Percentage: 40},
	})
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}

	if out[0].Amount != 540 {
		t.Errorf("alice amount = %v, want 540", out[0].Amount)
	}
	if out[1].Amount != 360 {
		t.Errorf("bob amount = %v, want 360", out[1].Amount)
	}
}

func TestCompute_CreatorSplitStartsPaid(t *testing.T) {
	out, err := Compute(100, "alice", []Input{
		{UserID: "alice", Percentage: 50},
		{UserID: "bob", Percentage: 50},
	})
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}

	if !out[0].IsPaid {
		t.Error("creator's split should start paid")
	}
	if out[1].IsPaid {
		t.Error("other member's split should start unpaid")
	}
}

func TestCompute_AmountsSumToTotal(t *testing.T) {
	cases := []struct {
		amount float64
		inputs []Input
	}{
		{100, []Input{{UserID: "a", Percentage: 33.33}, {UserID: "b", Percentage: 33.33}, {UserID: "c", Percentage: 33.34}}},
		{99.99, []Input{{UserID: "a", Percentage: 50}, {UserID: "b", Percentage: 50}}},
		{10, []Input{{UserID: "a", Percentage: 33.34}, {UserID: "b", Percentage: 33.33}, {UserID: "c", Percentage: 33.33}}},
		{0.05, []Input{{UserID: "a", Percentage: 25}, {UserID: "b", Percentage: 25}, {UserID: "c", Percentage: 50}}},
	}

	for _, tc := range cases {
		out, err := Compute(tc.amount, "a", tc.inputs)
		if err != nil {
			t.Fatalf("Compute(%v) failed: %v", tc.amount, err)
		}

		var sum float64
		for _, c := range out {
			sum += c.Amount
		}
		if math.Abs(sum-Round2(tc.amount)) > 1e-9 {
			t.Errorf("amounts sum to %v, want %v", sum, Round2(tc.amount))
		}
	}
}

func TestCompute_RejectsInvalid(t *testing.T) {
	if _, err := Compute(100, "a", []Input{{UserID: "a", Percentage: 90}}); err != ErrInvalidPercentages {
		t.Errorf("expected ErrInvalidPercentages, got %v", err)
	}
}
