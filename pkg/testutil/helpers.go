// Package testutil provides common utility functions for testing.
package testutil

import (
	"github.com/iwvelando/mortgage-affordability/pkg/constants"
	"github.com/iwvelando/mortgage-affordability/pkg/mathutil"
	"github.com/iwvelando/mortgage-affordability/pkg/mortgage"
)

// FindScenario finds a rate scenario by label in the comparison slice.
// Returns a pointer to the comparison if found, nil otherwise.
func FindScenario(results []mortgage.ScenarioComparison, label string) *mortgage.ScenarioComparison {
	for i := range results {
		if results[i].Label == label {
			return &results[i]
		}
	}
	return nil
}

// WithinCents reports whether got and want differ by at most one cent.
func WithinCents(got, want float64) bool {
	return mathutil.WithinTolerance(got, want, constants.CurrencyTolerance)
}
