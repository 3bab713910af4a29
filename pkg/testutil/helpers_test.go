package testutil

import (
	"testing"

	"github.com/iwvelando/mortgage-affordability/pkg/mortgage"
)

func TestFindScenario(t *testing.T) {
	results := []mortgage.ScenarioComparison{
		{Label: "low", InterestRate: 0.035},
		{Label: "high", InterestRate: 0.05},
	}

	found := FindScenario(results, "high")
	if found == nil {
		t.Fatal("expected to find scenario 'high'")
	}
	if found.InterestRate != 0.05 {
		t.Errorf("expected rate 0.05, got %v", found.InterestRate)
	}

	// The pointer refers into the slice.
	found.Label = "renamed"
	if results[1].Label != "renamed" {
		t.Error("expected FindScenario to return a pointer into the slice")
	}

	if FindScenario(results, "missing") != nil {
		t.Error("expected nil for a missing scenario")
	}
	if FindScenario(nil, "low") != nil {
		t.Error("expected nil for an empty slice")
	}
}

func TestWithinCents(t *testing.T) {
	tests := []struct {
		got, want float64
		expected  bool
	}{
		{100.00, 100.00, true},
		{100.004, 100.00, true},
		{99.995, 100.00, true},
		{100.02, 100.00, false},
		{99.98, 100.00, false},
	}
	for _, tt := range tests {
		if got := WithinCents(tt.got, tt.want); got != tt.expected {
			t.Errorf("WithinCents(%v, %v) = %v, expected %v", tt.got, tt.want, got, tt.expected)
		}
	}
}
