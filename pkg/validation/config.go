package validation

import (
	"fmt"
	"strings"

	"github.com/iwvelando/mortgage-affordability/pkg/constants"
)

// ValidateIncomes warns about negative entries and a household without income.
func ValidateIncomes(names []string, amounts []float64) []string {
	var warnings []string
	total := 0.0
	for i, amount := range amounts {
		name := fmt.Sprintf("#%d", i+1)
		if i < len(names) && strings.TrimSpace(names[i]) != "" {
			name = fmt.Sprintf("'%s'", names[i])
		}
		if amount < 0 {
			warnings = append(warnings, fmt.Sprintf("Income %s is negative (%.2f)", name, amount))
		}
		total += amount
	}
	if total <= 0 {
		warnings = append(warnings, "Household gross income is zero; the maximum mortgage will be 0")
	}
	return warnings
}

// ValidateInterestRate warns about rates (in percent) outside (0, MaxInterestRate].
func ValidateInterestRate(name string, percent float64) []string {
	switch {
	case percent < 0:
		return []string{fmt.Sprintf("%s interest rate is negative (%.3f%%); calculations will not run", name, percent)}
	case percent == 0:
		return []string{fmt.Sprintf("%s interest rate is 0%%; payments are straight-line", name)}
	case percent > constants.MaxInterestRate:
		return []string{fmt.Sprintf("%s interest rate %.3f%% exceeds %.0f%%; check that it is given in percent", name, percent, constants.MaxInterestRate)}
	}
	return nil
}

// ValidateTerm warns about terms outside (0, MaxTermYears].
func ValidateTerm(termYears int) []string {
	if termYears <= 0 {
		return []string{fmt.Sprintf("Mortgage term %d years is not positive; calculations will not run", termYears)}
	}
	if termYears > constants.MaxTermYears {
		return []string{fmt.Sprintf("Mortgage term %d years exceeds %d years", termYears, constants.MaxTermYears)}
	}
	return nil
}

// ValidateTaxDeductionRate warns about deduction rates (in percent) outside [0, 100].
func ValidateTaxDeductionRate(percent float64) []string {
	if percent < 0 || percent > constants.PercentageMultiplier {
		return []string{fmt.Sprintf("Tax deduction rate %.2f%% lies outside 0-100%%", percent)}
	}
	return nil
}
