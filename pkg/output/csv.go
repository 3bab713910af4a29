package output

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/iwvelando/mortgage-affordability/internal/calculator"
	"github.com/iwvelando/mortgage-affordability/pkg/datetime"
	"github.com/iwvelando/mortgage-affordability/pkg/mortgage"
	"github.com/shopspring/decimal"
)

func money(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

func rate(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(6)
}

func writeAll(w io.Writer, records [][]string) error {
	writer := csv.NewWriter(w)
	if err := writer.WriteAll(records); err != nil {
		return err
	}
	return writer.Error()
}

// CsvAffordability outputs the affordability figures as field,value pairs.
func CsvAffordability(w io.Writer, r calculator.AffordabilityResult) error {
	return writeAll(w, [][]string{
		{"field", "value"},
		{"gross_income", money(r.GrossIncome)},
		{"interest_rate", rate(r.InterestRate)},
		{"term_years", strconv.Itoa(r.TermYears)},
		{"tax_deduction_rate", rate(r.TaxDeductionRate)},
		{"burden_fraction", rate(r.BurdenFraction)},
		{"burden_income", money(r.BurdenIncome)},
		{"burden_bracket_lower", rate(r.BurdenBracket.Lower)},
		{"burden_bracket_upper", rate(r.BurdenBracket.Upper)},
		{"energy_label", r.EnergyLabel},
		{"energy_surplus", money(r.EnergySurplus)},
		{"maximum_mortgage", money(r.MaximumMortgage)},
		{"monthly_payment_base", money(r.MonthlyPaymentBase)},
		{"surplus_monthly_payment", money(r.SurplusMonthlyPayment)},
		{"gross_monthly_payment", money(r.Payments.GrossMonthlyPayment)},
		{"net_monthly_payment", money(r.Payments.NetMonthlyPayment)},
	})
}

// CsvSchedule outputs every month of the amortization schedule.
func CsvSchedule(w io.Writer, r calculator.ScheduleResult) error {
	records := [][]string{{
		"month", "date", "interest", "principal", "gross_payment", "amount_paid",
		"tax_deduction", "net_payment", "net_interest", "outstanding_principal",
		"cumulative_interest", "cumulative_principal", "cumulative_net_paid",
	}}
	for _, row := range r.Schedule.Rows {
		records = append(records, []string{
			strconv.Itoa(row.Month),
			datetime.FormatMonth(row.Date),
			money(row.InterestPayment),
			money(row.PrincipalPayment),
			money(row.GrossPayment),
			money(row.AmountPaid),
			money(row.TaxDeduction),
			money(row.NetPayment),
			money(row.NetInterestPayment),
			money(row.OutstandingPrincipal),
			money(row.CumulativeInterest),
			money(row.CumulativePrincipal),
			money(row.CumulativeNetPaid),
		})
	}
	return writeAll(w, records)
}

// CsvScheduleYears outputs the schedule totals per loan year.
func CsvScheduleYears(w io.Writer, r calculator.ScheduleResult) error {
	records := [][]string{{"year", "interest", "principal", "tax_deduction", "net_paid", "outstanding_principal"}}
	for _, year := range r.Schedule.Years() {
		records = append(records, []string{
			strconv.Itoa(year.Year),
			money(year.InterestPaid),
			money(year.PrincipalPaid),
			money(year.TaxDeduction),
			money(year.NetPaid),
			money(year.OutstandingPrincipal),
		})
	}
	return writeAll(w, records)
}

// CsvBudget outputs the payment curve.
func CsvBudget(w io.Writer, r calculator.BudgetResult) error {
	records := [][]string{{"amount", "gross_monthly_payment", "net_monthly_payment"}}
	for _, point := range r.Curve {
		records = append(records, []string{
			money(point.Amount),
			money(point.GrossMonthlyPayment),
			money(point.NetMonthlyPayment),
		})
	}
	return writeAll(w, records)
}

// CsvCompare outputs one row per rate scenario. Unsimulated scenarios leave
// their totals empty.
func CsvCompare(w io.Writer, r calculator.CompareResult) error {
	records := [][]string{{
		"label", "interest_rate", "gross_monthly_payment", "net_monthly_payment",
		"principal_repaid_5y", "principal_repaid_10y", "total_principal",
		"total_gross_interest", "total_gross_paid", "total_net_cost",
	}}
	for _, s := range r.Scenarios {
		record := []string{s.Label, rate(s.InterestRate), money(s.GrossMonthlyPayment), money(s.NetMonthlyPayment)}
		if s.Simulated {
			record = append(record,
				money(s.PrincipalRepaidShort),
				money(s.PrincipalRepaidLong),
				money(s.TotalPrincipal),
				money(s.TotalGrossInterest),
				money(s.TotalGrossPaid),
				money(s.TotalNetCost),
			)
		} else {
			record = append(record, "", "", money(s.TotalPrincipal), "", "", "")
		}
		records = append(records, record)
	}
	return writeAll(w, records)
}

// CsvLabels outputs the energy label table.
func CsvLabels(w io.Writer, labels []mortgage.EnergyLabel) error {
	records := [][]string{{"label", "surplus"}}
	for _, label := range labels {
		records = append(records, []string{label.Label, money(label.Surplus)})
	}
	return writeAll(w, records)
}
