package mortgage

import (
	"fmt"
	"math"
	"strings"

	"github.com/iwvelando/mortgage-affordability/pkg/constants"
	"github.com/iwvelando/mortgage-affordability/pkg/mathutil"
)

// PaymentBasis says whether a monthly budget is a gross or a net payment.
type PaymentBasis string

const (
	BasisGross PaymentBasis = "gross"
	BasisNet   PaymentBasis = "net"
)

// ParsePaymentBasis accepts "gross" or "net" in any case.
func ParsePaymentBasis(value string) (PaymentBasis, error) {
	switch PaymentBasis(strings.ToLower(strings.TrimSpace(value))) {
	case BasisGross:
		return BasisGross, nil
	case BasisNet:
		return BasisNet, nil
	default:
		return "", fmt.Errorf("expected payment basis %s or %s, got %q", BasisGross, BasisNet, value)
	}
}

// AffordableByBudget inverts the payment formula: it returns the principal
// whose monthly payment equals target. ok is false when no principal
// exists.
//
// For a net budget at a positive rate the inversion assumes the first
// month's tax deduction applies for the whole term. The real deduction
// shrinks as the balance amortizes, so the result overstates what the
// budget affords later in the loan. When the monthly rate times the tax
// rate reaches the annuity factor the inversion has no solution.
func AffordableByBudget(target float64, basis PaymentBasis, interestRate float64, termYears int, taxRate float64) (float64, bool) {
	if target <= 0 || termYears <= 0 {
		return 0, false
	}
	if basis != BasisGross && basis != BasisNet {
		return 0, false
	}

	if interestRate <= 0 {
		// Net equals gross without interest.
		return target * float64(TotalMonths(termYears)), true
	}

	factor, ok := AnnuityFactor(interestRate, termYears)
	if !ok || factor <= 0 {
		return 0, false
	}

	if basis == BasisGross {
		return target / factor, true
	}

	denominator := factor - MonthlyRate(interestRate)*taxRate
	if denominator <= 0 {
		return 0, false
	}
	return target / denominator, true
}

// CurvePoint is one mortgage amount with its monthly payments.
type CurvePoint struct {
	Amount              float64 `json:"amount"`
	GrossMonthlyPayment float64 `json:"grossMonthlyPayment"`
	NetMonthlyPayment   float64 `json:"netMonthlyPayment"`
}

// ComparisonRange picks the mortgage amounts for a payment curve around the
// maximum mortgage and the budget-affordable amount. affordable may be zero
// when no budget solution exists. Halves round to even.
func ComparisonRange(maximumMortgage, affordable float64) (lo, hi, step float64) {
	lo = constants.CurveMinimumAmount

	upper := constants.CurveDefaultMaximum
	if affordable > 0 || maximumMortgage > 0 {
		upper = mathutil.RoundHalfEvenTo(math.Max(maximumMortgage, affordable)*constants.CurveHeadroomFactor,
			constants.CurveRoundingAmount)
	}
	hi = math.Max(lo*2, upper)

	step = math.Max(constants.CurveMinimumStep,
		mathutil.RoundHalfEvenTo((hi-lo)/constants.CurveTargetPoints, constants.CurveMinimumStep))
	return lo, hi, step
}

// PaymentCurve evaluates MonthlyPayments for amounts from lo in increments
// of step until an amount reaches hi. The last amount is the first one at or
// above hi, so it may overshoot hi by less than one step.
func PaymentCurve(lo, hi, step, interestRate float64, termYears int, taxRate float64) []CurvePoint {
	if step <= 0 || hi < lo {
		return nil
	}

	count := int(math.Ceil((hi-lo)/step)) + 1
	points := make([]CurvePoint, 0, count)
	for i := 0; i < count; i++ {
		amount := lo + float64(i)*step
		payments := MonthlyPayments(amount, interestRate, termYears, taxRate)
		points = append(points, CurvePoint{
			Amount:              amount,
			GrossMonthlyPayment: payments.GrossMonthlyPayment,
			NetMonthlyPayment:   payments.NetMonthlyPayment,
		})
	}
	return points
}
