// Package output renders calculation results as pretty text, CSV or JSON.
package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/iwvelando/mortgage-affordability/internal/calculator"
	"github.com/iwvelando/mortgage-affordability/pkg/constants"
	"github.com/iwvelando/mortgage-affordability/pkg/mortgage"
)

// Options tune how results are rendered.
type Options struct {
	// Monthly lists every schedule month instead of loan-year totals.
	Monthly bool
}

// Render writes result to w in the given format. result must be one of the
// calculator result types or a slice of energy labels.
func Render(w io.Writer, format string, result interface{}, opts Options) error {
	switch format {
	case constants.OutputFormatJSON:
		return JSONFormat(w, result)
	case constants.OutputFormatCSV:
		return renderCSV(w, result, opts)
	case constants.OutputFormatPretty, "":
		return renderPretty(w, result, opts)
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}

// JSONFormat writes result as indented JSON.
func JSONFormat(w io.Writer, result interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

func renderPretty(w io.Writer, result interface{}, opts Options) error {
	switch r := result.(type) {
	case calculator.AffordabilityResult:
		return PrettyAffordability(w, r)
	case calculator.ScheduleResult:
		return PrettySchedule(w, r, opts.Monthly)
	case calculator.BudgetResult:
		return PrettyBudget(w, r)
	case calculator.CompareResult:
		return PrettyCompare(w, r)
	case []mortgage.EnergyLabel:
		return PrettyLabels(w, r)
	default:
		return fmt.Errorf("cannot render %T as %s", result, constants.OutputFormatPretty)
	}
}

func renderCSV(w io.Writer, result interface{}, opts Options) error {
	switch r := result.(type) {
	case calculator.AffordabilityResult:
		return CsvAffordability(w, r)
	case calculator.ScheduleResult:
		if opts.Monthly {
			return CsvSchedule(w, r)
		}
		return CsvScheduleYears(w, r)
	case calculator.BudgetResult:
		return CsvBudget(w, r)
	case calculator.CompareResult:
		return CsvCompare(w, r)
	case []mortgage.EnergyLabel:
		return CsvLabels(w, r)
	default:
		return fmt.Errorf("cannot render %T as %s", result, constants.OutputFormatCSV)
	}
}
