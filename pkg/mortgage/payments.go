package mortgage

// MortgageParameters are the inputs of one affordability calculation.
// Rates are fractions, not percentages.
type MortgageParameters struct {
	GrossIncome        float64
	InterestRate       float64
	TermYears          int
	TaxDeductionRate   float64
	EnergyLabelSurplus float64
}

// PaymentResult holds the monthly payment figures for a principal.
type PaymentResult struct {
	GrossMonthlyPayment    float64 `json:"grossMonthlyPayment"`
	NetMonthlyPayment      float64 `json:"netMonthlyPayment"`
	FirstMonthInterest     float64 `json:"firstMonthInterest"`
	FirstMonthTaxDeduction float64 `json:"firstMonthTaxDeduction"`
}

// MonthlyPayments derives the gross and net monthly payment for principal.
//
// The net payment subtracts the deduction on the first month's interest and
// holds it level for the whole term; RunPaymentSimulation recomputes the
// deduction month by month.
func MonthlyPayments(principal, interestRate float64, termYears int, taxRate float64) PaymentResult {
	if termYears <= 0 || principal <= 0 {
		return PaymentResult{}
	}

	if interestRate > 0 {
		factor, ok := AnnuityFactor(interestRate, termYears)
		if !ok {
			return PaymentResult{}
		}
		gross := principal * factor
		interest := principal * MonthlyRate(interestRate)
		deduction := interest * taxRate
		return PaymentResult{
			GrossMonthlyPayment:    gross,
			NetMonthlyPayment:      gross - deduction,
			FirstMonthInterest:     interest,
			FirstMonthTaxDeduction: deduction,
		}
	}

	gross := principal / float64(TotalMonths(termYears))
	return PaymentResult{
		GrossMonthlyPayment: gross,
		NetMonthlyPayment:   gross,
	}
}

// SurplusMonthlyPayment is the part of the gross monthly payment that pays
// for the energy label surplus.
func SurplusMonthlyPayment(surplus, interestRate float64, termYears int) float64 {
	if surplus <= 0 || termYears <= 0 {
		return 0
	}
	if interestRate > 0 {
		factor, ok := AnnuityFactor(interestRate, termYears)
		if !ok {
			return 0
		}
		return surplus * factor
	}
	return surplus / float64(TotalMonths(termYears))
}
