package mortgage

import (
	"fmt"
	"time"

	"github.com/iwvelando/mortgage-affordability/pkg/constants"
	"github.com/iwvelando/mortgage-affordability/pkg/mathutil"
)

// RateScenario is an interest rate to compare, typically the rate offered
// for one fixed-rate period.
type RateScenario struct {
	Label        string  `json:"label"`
	InterestRate float64 `json:"interestRate"`
}

// ScenarioComparison holds the outcome of one RateScenario applied over the
// whole term.
type ScenarioComparison struct {
	Label                string  `json:"label"`
	InterestRate         float64 `json:"interestRate"`
	GrossMonthlyPayment  float64 `json:"grossMonthlyPayment"`
	NetMonthlyPayment    float64 `json:"netMonthlyPayment"`
	PrincipalRepaidShort float64 `json:"principalRepaidAt5Years"`
	PrincipalRepaidLong  float64 `json:"principalRepaidAt10Years"`
	TotalPrincipal       float64 `json:"totalPrincipal"`
	TotalGrossInterest   float64 `json:"totalGrossInterest"`
	TotalGrossPaid       float64 `json:"totalGrossPaid"`
	TotalNetCost         float64 `json:"totalNetCost"`
	Simulated            bool    `json:"simulated"`
}

var defaultFixedPeriods = []struct {
	years     int
	increment float64 // percentage points over the base rate
}{
	{10, 0.0},
	{15, 0.1},
	{20, 0.2},
	{30, 0.3},
}

// DefaultRateScenarios returns the 10, 15, 20 and 30 year fixed-period
// scenarios with rates stepping up from baseRate by a tenth of a percentage
// point per period.
func DefaultRateScenarios(baseRate float64) []RateScenario {
	scenarios := make([]RateScenario, 0, len(defaultFixedPeriods))
	for _, period := range defaultFixedPeriods {
		pct := mathutil.Round(mathutil.ToPercentage(baseRate) + period.increment)
		scenarios = append(scenarios, RateScenario{
			Label:        fmt.Sprintf("%d Years Fix", period.years),
			InterestRate: mathutil.FromPercentage(pct),
		})
	}
	return scenarios
}

// CompareRateScenarios applies every scenario rate to the same principal
// and term. Scenarios that cannot be simulated keep zero totals and report
// Simulated false.
func CompareRateScenarios(principal float64, termYears int, taxRate float64, scenarios []RateScenario, start time.Time) []ScenarioComparison {
	results := make([]ScenarioComparison, 0, len(scenarios))
	for _, scenario := range scenarios {
		payments := MonthlyPayments(principal, scenario.InterestRate, termYears, taxRate)
		comparison := ScenarioComparison{
			Label:               scenario.Label,
			InterestRate:        scenario.InterestRate,
			GrossMonthlyPayment: payments.GrossMonthlyPayment,
			NetMonthlyPayment:   payments.NetMonthlyPayment,
			TotalPrincipal:      principal,
		}

		if schedule, ok := RunPaymentSimulation(principal, scenario.InterestRate, termYears, taxRate, start); ok {
			summary := schedule.Summary()
			comparison.Simulated = true
			comparison.TotalGrossInterest = summary.TotalInterest
			comparison.TotalGrossPaid = principal + summary.TotalInterest
			comparison.TotalNetCost = summary.TotalNetPaid
			comparison.PrincipalRepaidShort = schedule.PrincipalRepaidAt(constants.RepaidMilestoneShortMonths)
			comparison.PrincipalRepaidLong = schedule.PrincipalRepaidAt(constants.RepaidMilestoneLongMonths)
		}
		results = append(results, comparison)
	}
	return results
}
