package mortgage

import (
	"time"

	"github.com/iwvelando/mortgage-affordability/pkg/constants"
	"github.com/iwvelando/mortgage-affordability/pkg/datetime"
	"github.com/iwvelando/mortgage-affordability/pkg/mathutil"
)

// AmortizationRow holds one month of the amortization schedule.
type AmortizationRow struct {
	Month                int       `json:"month"`
	Date                 time.Time `json:"date"`
	OutstandingPrincipal float64   `json:"outstandingPrincipal"` // after this month's payment
	InterestPayment      float64   `json:"interestPayment"`
	PrincipalPayment     float64   `json:"principalPayment"`
	GrossPayment         float64   `json:"grossPayment"` // scheduled level payment
	AmountPaid           float64   `json:"amountPaid"`   // principal + interest actually paid
	NetPayment           float64   `json:"netPayment"`
	TaxDeduction         float64   `json:"taxDeduction"`
	NetInterestPayment   float64   `json:"netInterestPayment"`
	CumulativeInterest   float64   `json:"cumulativeInterest"`
	CumulativePrincipal  float64   `json:"cumulativePrincipal"`
	CumulativeNetPaid    float64   `json:"cumulativeNetPaid"`
}

// Schedule is a complete month-by-month amortization of one mortgage.
type Schedule struct {
	Principal           float64           `json:"principal"`
	InterestRate        float64           `json:"interestRate"`
	TermYears           int               `json:"termYears"`
	TaxDeductionRate    float64           `json:"taxDeductionRate"`
	GrossMonthlyPayment float64           `json:"grossMonthlyPayment"`
	Rows                []AmortizationRow `json:"rows"`
}

// RunPaymentSimulation amortizes principal month by month starting in the
// month of start. It returns false when the inputs cannot be simulated: a
// non-positive term or principal, a negative rate, or no annuity factor.
func RunPaymentSimulation(principal, interestRate float64, termYears int, taxRate float64, start time.Time) (*Schedule, bool) {
	if termYears <= 0 || principal <= 0 || interestRate < 0 {
		return nil, false
	}

	grossPayment, ok := levelPayment(principal, interestRate, termYears)
	if !ok {
		return nil, false
	}

	months := TotalMonths(termYears)
	monthlyRate := MonthlyRate(interestRate)

	schedule := &Schedule{
		Principal:           principal,
		InterestRate:        interestRate,
		TermYears:           termYears,
		TaxDeductionRate:    taxRate,
		GrossMonthlyPayment: grossPayment,
		Rows:                make([]AmortizationRow, months),
	}

	balance := principal
	for i := 0; i < months; i++ {
		interest := balance * monthlyRate
		// Clamping keeps principal non-negative when the payment does not
		// cover the interest, and stops the last payment overshooting.
		principalPaid := mathutil.Clamp(grossPayment-interest, 0, balance)
		paid := principalPaid + interest
		deduction := interest * taxRate

		balance -= principalPaid
		schedule.Rows[i] = AmortizationRow{
			Month:                i + 1,
			Date:                 datetime.MonthOffset(start, i),
			OutstandingPrincipal: balance,
			InterestPayment:      interest,
			PrincipalPayment:     principalPaid,
			GrossPayment:         grossPayment,
			AmountPaid:           paid,
			NetPayment:           paid - deduction,
			TaxDeduction:         deduction,
			NetInterestPayment:   interest - deduction,
		}
	}

	// Floating-point dust left after the final payment.
	if last := &schedule.Rows[months-1]; mathutil.IsZero(last.OutstandingPrincipal) {
		last.OutstandingPrincipal = 0
	}

	var cumInterest, cumPrincipal, cumNet float64
	for i := range schedule.Rows {
		row := &schedule.Rows[i]
		cumInterest += row.InterestPayment
		cumPrincipal += row.PrincipalPayment
		cumNet += row.NetPayment
		row.CumulativeInterest = cumInterest
		row.CumulativePrincipal = cumPrincipal
		row.CumulativeNetPaid = cumNet
	}

	return schedule, true
}

// ScheduleSummary totals a schedule.
type ScheduleSummary struct {
	TotalPrincipal    float64 `json:"totalPrincipal"`
	TotalInterest     float64 `json:"totalInterest"`
	TotalTaxDeduction float64 `json:"totalTaxDeduction"`
	TotalGrossPaid    float64 `json:"totalGrossPaid"`
	TotalNetPaid      float64 `json:"totalNetPaid"`
	// TotalTaxBenefit is principal plus gross interest minus everything
	// paid net of deductions.
	TotalTaxBenefit float64 `json:"totalTaxBenefit"`
}

// Summary totals the schedule rows.
func (s *Schedule) Summary() ScheduleSummary {
	var summary ScheduleSummary
	for _, row := range s.Rows {
		summary.TotalPrincipal += row.PrincipalPayment
		summary.TotalInterest += row.InterestPayment
		summary.TotalTaxDeduction += row.TaxDeduction
		summary.TotalGrossPaid += row.AmountPaid
		summary.TotalNetPaid += row.NetPayment
	}
	summary.TotalTaxBenefit = (s.Principal + summary.TotalInterest) - summary.TotalNetPaid
	return summary
}

// Final returns the last row of the schedule.
func (s *Schedule) Final() AmortizationRow {
	if len(s.Rows) == 0 {
		return AmortizationRow{}
	}
	return s.Rows[len(s.Rows)-1]
}

// PrincipalRepaidAt returns how much principal has been repaid after month.
// A loan shorter than month counts as fully repaid.
func (s *Schedule) PrincipalRepaidAt(month int) float64 {
	if month <= 0 {
		return 0
	}
	if month > len(s.Rows) {
		return s.Principal
	}
	return s.Principal - s.Rows[month-1].OutstandingPrincipal
}

// YearSummary totals twelve consecutive schedule months.
type YearSummary struct {
	Year                 int     `json:"year"`
	InterestPaid         float64 `json:"interestPaid"`
	PrincipalPaid        float64 `json:"principalPaid"`
	TaxDeduction         float64 `json:"taxDeduction"`
	NetPaid              float64 `json:"netPaid"`
	OutstandingPrincipal float64 `json:"outstandingPrincipal"` // at the end of the year
}

// Years groups the schedule into loan years; the first year starts with
// the first row, not in January.
func (s *Schedule) Years() []YearSummary {
	if len(s.Rows) == 0 {
		return nil
	}
	years := make([]YearSummary, 0, (len(s.Rows)+constants.MonthsPerYear-1)/constants.MonthsPerYear)
	for i, row := range s.Rows {
		if i%constants.MonthsPerYear == 0 {
			years = append(years, YearSummary{Year: i/constants.MonthsPerYear + 1})
		}
		year := &years[len(years)-1]
		year.InterestPaid += row.InterestPayment
		year.PrincipalPaid += row.PrincipalPayment
		year.TaxDeduction += row.TaxDeduction
		year.NetPaid += row.NetPayment
		year.OutstandingPrincipal = row.OutstandingPrincipal
	}
	return years
}
