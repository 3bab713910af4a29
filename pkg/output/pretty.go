package output

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/iwvelando/mortgage-affordability/internal/calculator"
	"github.com/iwvelando/mortgage-affordability/pkg/datetime"
	"github.com/iwvelando/mortgage-affordability/pkg/format"
	"github.com/iwvelando/mortgage-affordability/pkg/mortgage"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func newPrinter() *message.Printer {
	return message.NewPrinter(language.English)
}

// PrettyAffordability outputs the maximum mortgage breakdown.
func PrettyAffordability(w io.Writer, r calculator.AffordabilityResult) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "--- Maximum mortgage ---\n")
	fmt.Fprintf(tw, "Gross household income\t%s\n", format.Currency(r.GrossIncome))
	fmt.Fprintf(tw, "Interest rate\t%s\n", format.Percentage(r.InterestRate))
	fmt.Fprintf(tw, "Term\t%d years\n", r.TermYears)
	fmt.Fprintf(tw, "Financing burden\t%s (income row %s, bracket %s)\n",
		format.Percentage(r.BurdenFraction), format.WholeCurrency(r.BurdenIncome), r.BurdenBracket)
	if r.EnergyLabel != "" {
		fmt.Fprintf(tw, "Energy label\t%s (+%s)\n", r.EnergyLabel, format.WholeCurrency(r.EnergySurplus))
	}
	fmt.Fprintf(tw, "Maximum mortgage\t%s\n", format.Currency(r.MaximumMortgage))
	fmt.Fprintf(tw, "Monthly payment base\t%s\n", format.Currency(r.MonthlyPaymentBase))
	if r.SurplusMonthlyPayment > 0 {
		fmt.Fprintf(tw, "Energy surplus payment\t%s\n", format.Currency(r.SurplusMonthlyPayment))
	}
	fmt.Fprintf(tw, "Gross monthly payment\t%s\n", format.Currency(r.Payments.GrossMonthlyPayment))
	fmt.Fprintf(tw, "Net monthly payment\t%s (tax deduction %s)\n",
		format.Currency(r.Payments.NetMonthlyPayment), format.Percentage(r.TaxDeductionRate))
	if err := tw.Flush(); err != nil {
		return err
	}
	return prettyWarnings(w, r.Warnings)
}

// PrettySchedule outputs the amortization table, by loan year unless monthly is set.
func PrettySchedule(w io.Writer, r calculator.ScheduleResult, monthly bool) error {
	p := newPrinter()
	summary := r.Summary

	fmt.Fprintf(w, "--- Amortization of %s at %s over %d years from %s ---\n",
		format.Currency(r.Principal), format.Percentage(r.Schedule.InterestRate),
		r.Schedule.TermYears, datetime.FormatMonth(r.Start))
	fmt.Fprintf(w, "Gross monthly payment: %s\n\n", format.Currency(r.Schedule.GrossMonthlyPayment))

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	if monthly {
		fmt.Fprintf(tw, "Date\tInterest\tPrincipal\tTax deduction\tNet payment\tBalance\t\n")
		for _, row := range r.Schedule.Rows {
			_, _ = p.Fprintf(tw, "%s\t€%.2f\t€%.2f\t€%.2f\t€%.2f\t€%.2f\t\n",
				datetime.FormatMonth(row.Date), row.InterestPayment, row.PrincipalPayment,
				row.TaxDeduction, row.NetPayment, row.OutstandingPrincipal)
		}
	} else {
		fmt.Fprintf(tw, "Year\tInterest\tPrincipal\tTax deduction\tNet paid\tBalance\t\n")
		for _, year := range r.Schedule.Years() {
			_, _ = p.Fprintf(tw, "%d\t€%.2f\t€%.2f\t€%.2f\t€%.2f\t€%.2f\t\n",
				year.Year, year.InterestPaid, year.PrincipalPaid,
				year.TaxDeduction, year.NetPaid, year.OutstandingPrincipal)
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\nTotal interest: %s\n", format.Currency(summary.TotalInterest))
	fmt.Fprintf(w, "Total tax deduction: %s\n", format.Currency(summary.TotalTaxDeduction))
	fmt.Fprintf(w, "Total paid (gross): %s\n", format.Currency(summary.TotalGrossPaid))
	fmt.Fprintf(w, "Total paid (net): %s\n", format.Currency(summary.TotalNetPaid))
	fmt.Fprintf(w, "Tax benefit: %s\n", format.Currency(summary.TotalTaxBenefit))
	return prettyWarnings(w, r.Affordability.Warnings)
}

// PrettyBudget outputs the budget inversion and the payment curve.
func PrettyBudget(w io.Writer, r calculator.BudgetResult) error {
	p := newPrinter()

	fmt.Fprintf(w, "--- Mortgage for a %s monthly budget of %s ---\n", r.Basis, format.Currency(r.Budget))
	fmt.Fprintf(w, "Affordable mortgage: %s\n", format.Currency(r.AffordableMortgage))
	fmt.Fprintf(w, "Maximum mortgage: %s\n", format.Currency(r.Affordability.MaximumMortgage))
	if r.ExceedsMaximum {
		fmt.Fprintf(w, "The budget affords more than the income-based maximum.\n")
	}
	fmt.Fprintf(w, "Gross monthly payment: %s\n", format.Currency(r.Payments.GrossMonthlyPayment))
	fmt.Fprintf(w, "Net monthly payment: %s\n\n", format.Currency(r.Payments.NetMonthlyPayment))

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "Mortgage\tGross payment\tNet payment\t\n")
	for _, point := range r.Curve {
		_, _ = p.Fprintf(tw, "€%.0f\t€%.2f\t€%.2f\t\n", point.Amount, point.GrossMonthlyPayment, point.NetMonthlyPayment)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	return prettyWarnings(w, r.Affordability.Warnings)
}

// PrettyCompare outputs one row per rate scenario.
func PrettyCompare(w io.Writer, r calculator.CompareResult) error {
	p := newPrinter()

	fmt.Fprintf(w, "--- Rate scenarios for %s from %s ---\n", format.Currency(r.Principal), datetime.FormatMonth(r.Start))
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "Scenario\tRate\tGross payment\tNet payment\tRepaid 5y\tRepaid 10y\tTotal interest\tTotal net cost\t\n")
	for _, s := range r.Scenarios {
		if !s.Simulated {
			fmt.Fprintf(tw, "%s\t%s\t-\t-\t-\t-\t-\t-\t\n", s.Label, format.Percentage(s.InterestRate))
			continue
		}
		_, _ = p.Fprintf(tw, "%s\t%s\t€%.2f\t€%.2f\t€%.0f\t€%.0f\t€%.0f\t€%.0f\t\n",
			s.Label, format.Percentage(s.InterestRate), s.GrossMonthlyPayment, s.NetMonthlyPayment,
			s.PrincipalRepaidShort, s.PrincipalRepaidLong, s.TotalGrossInterest, s.TotalNetCost)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	return prettyWarnings(w, r.Affordability.Warnings)
}

// PrettyLabels lists the energy labels with their surplus.
func PrettyLabels(w io.Writer, labels []mortgage.EnergyLabel) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Energy label\tSurplus\n")
	for _, label := range labels {
		fmt.Fprintf(tw, "%s\t%s\n", label.Label, format.WholeCurrency(label.Surplus))
	}
	return tw.Flush()
}

func prettyWarnings(w io.Writer, warnings []string) error {
	if len(warnings) == 0 {
		return nil
	}
	_, err := fmt.Fprintf(w, "\nWarnings:\n  - %s\n", strings.Join(warnings, "\n  - "))
	return err
}
