package mortgage

import (
	"fmt"
	"math"

	"github.com/iwvelando/mortgage-affordability/pkg/constants"
)

// BurdenLookup is the outcome of a financing burden lookup.
type BurdenLookup struct {
	Fraction     float64
	Income       float64 // income level of the selected row
	Bracket      RateBracket
	IncomeRow    int
	BracketIndex int
	// Fallback is true when no bracket contained the rate and the last
	// bracket was used instead.
	Fallback bool
}

// Lookup resolves the burden fraction for grossIncome at interestRate.
//
// The first bracket containing the rate wins; a rate outside every bracket
// clamps to the last bracket. The income row is the one nearest to
// grossIncome, ties going to the lower income.
func (t *FinancingBurdenTable) Lookup(grossIncome, interestRate float64) (BurdenLookup, error) {
	if t == nil || len(t.incomes) == 0 || len(t.brackets) == 0 {
		return BurdenLookup{}, tableError("financing burden table", -1, -1, ErrEmptyTable)
	}

	result := BurdenLookup{BracketIndex: -1}
	for i, bracket := range t.brackets {
		if bracket.Contains(interestRate) {
			result.BracketIndex = i
			break
		}
	}
	if result.BracketIndex < 0 {
		result.BracketIndex = len(t.brackets) - 1
		result.Fallback = true
	}
	result.Bracket = t.brackets[result.BracketIndex]

	bestDistance := math.Inf(1)
	for i, income := range t.incomes {
		if d := math.Abs(income - grossIncome); d < bestDistance {
			bestDistance = d
			result.IncomeRow = i
		}
	}
	result.Income = t.incomes[result.IncomeRow]

	row := t.fractions[result.IncomeRow]
	if result.BracketIndex >= len(row) {
		return BurdenLookup{}, tableError("financing burden table", result.IncomeRow, result.BracketIndex, ErrRaggedTable)
	}
	result.Fraction = row[result.BracketIndex]
	return result, nil
}

// FinancingBurden returns the share of gross income that may go to the
// mortgage at the given rate.
func FinancingBurden(grossIncome, interestRate float64, table *FinancingBurdenTable) (float64, error) {
	lookup, err := table.Lookup(grossIncome, interestRate)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve financing burden: %w", err)
	}
	return lookup.Fraction, nil
}

// MaximumMortgage returns the largest principal the income supports plus the
// energy surplus, together with the monthly payment base the income allows.
// The surplus is added even when the income supports no principal at all.
func MaximumMortgage(grossIncome, interestRate float64, termYears int, burdenFraction, energySurplus float64) (maxPrincipal, monthlyPaymentBase float64) {
	if termYears <= 0 {
		return 0, 0
	}

	annualPaymentBase := burdenFraction * grossIncome
	monthlyPaymentBase = annualPaymentBase / constants.MonthsPerYear

	var principalBase float64
	if interestRate > 0 {
		factor, ok := AnnuityFactor(interestRate, termYears)
		if ok && factor != 0 {
			principalBase = monthlyPaymentBase / factor
		}
	} else {
		principalBase = monthlyPaymentBase * float64(TotalMonths(termYears))
	}

	return principalBase + energySurplus, monthlyPaymentBase
}
