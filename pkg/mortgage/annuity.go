// Package mortgage implements the mortgage affordability engine: annuity
// math, the income-based affordability resolver, monthly payment figures,
// the amortization simulator and the budget inverter.
//
// Every function in this package is pure. Degenerate numeric input is
// reported through zero values or a false ok flag rather than errors; only
// malformed reference tables produce errors.
package mortgage

import (
	"math"

	"github.com/iwvelando/mortgage-affordability/pkg/constants"
	"github.com/iwvelando/mortgage-affordability/pkg/mathutil"
)

// MonthlyRate converts an annual interest rate fraction into the monthly rate.
func MonthlyRate(interestRate float64) float64 {
	return interestRate / constants.MonthsPerYear
}

// TotalMonths returns the number of monthly payments in termYears.
func TotalMonths(termYears int) int {
	return termYears * constants.MonthsPerYear
}

// AnnuityFactor returns the fraction of the principal owed every month under
// level-payment amortization. ok is false when the factor does not apply: a
// non-positive term, a negative rate, a zero rate (callers divide by the
// number of months instead) or a numerically degenerate result.
func AnnuityFactor(interestRate float64, termYears int) (factor float64, ok bool) {
	if termYears <= 0 || interestRate < 0 {
		return 0, false
	}
	if interestRate == 0 {
		return 0, false
	}

	monthlyRate := MonthlyRate(interestRate)
	months := float64(TotalMonths(termYears))

	denominator := 1 - math.Pow(1+monthlyRate, -months)
	if denominator == 0 {
		return 0, false
	}
	factor = monthlyRate / denominator
	if !mathutil.IsFinite(factor) {
		return 0, false
	}
	return factor, true
}

// levelPayment returns the constant gross monthly payment for principal. ok
// is false when no payment can be derived.
func levelPayment(principal, interestRate float64, termYears int) (float64, bool) {
	if interestRate > 0 {
		factor, ok := AnnuityFactor(interestRate, termYears)
		if !ok {
			return 0, false
		}
		return principal * factor, true
	}
	return principal / float64(TotalMonths(termYears)), true
}
