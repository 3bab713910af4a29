package mortgage

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/iwvelando/mortgage-affordability/pkg/mathutil"
)

// Reference table errors. A *TableError wraps exactly one of these.
var (
	ErrInvalidTable        = errors.New("invalid reference table")
	ErrEmptyTable          = fmt.Errorf("%w: table is empty", ErrInvalidTable)
	ErrRaggedTable         = fmt.Errorf("%w: row does not cover every rate bracket", ErrInvalidTable)
	ErrUnsortedIncomes     = fmt.Errorf("%w: incomes must be strictly ascending", ErrInvalidTable)
	ErrInvalidBracket      = fmt.Errorf("%w: rate bracket bounds are invalid", ErrInvalidTable)
	ErrOverlappingBrackets = fmt.Errorf("%w: rate brackets overlap", ErrInvalidTable)
	ErrBracketGap          = fmt.Errorf("%w: rate brackets leave a gap", ErrInvalidTable)
	ErrInvalidFraction     = fmt.Errorf("%w: burden fraction must lie within [0, 1]", ErrInvalidTable)
	ErrDuplicateLabel      = fmt.Errorf("%w: energy label listed more than once", ErrInvalidTable)
	ErrInvalidLabel        = fmt.Errorf("%w: energy label entry is invalid", ErrInvalidTable)
)

// TableError describes where a reference table failed validation.
type TableError struct {
	Table  string
	Row    int
	Column int
	Err    error
}

func (e *TableError) Error() string {
	var location []string
	if e.Row >= 0 {
		location = append(location, fmt.Sprintf("row %d", e.Row))
	}
	if e.Column >= 0 {
		location = append(location, fmt.Sprintf("column %d", e.Column))
	}
	if len(location) == 0 {
		return fmt.Sprintf("%s: %v", e.Table, e.Err)
	}
	return fmt.Sprintf("%s (%s): %v", e.Table, strings.Join(location, ", "), e.Err)
}

func (e *TableError) Unwrap() error {
	return e.Err
}

func tableError(table string, row, column int, err error) error {
	return &TableError{Table: table, Row: row, Column: column, Err: err}
}

// RateBracket is a closed interval of annual interest rate fractions.
type RateBracket struct {
	Lower float64 `json:"lower" yaml:"lower"`
	Upper float64 `json:"upper" yaml:"upper"`
}

// Contains reports whether rate lies within the bracket, bounds included.
func (b RateBracket) Contains(rate float64) bool {
	return b.Lower <= rate && rate <= b.Upper
}

func (b RateBracket) String() string {
	return fmt.Sprintf("[%.4f, %.4f]", b.Lower, b.Upper)
}

// FinancingBurdenTable maps (gross income, rate bracket) to the maximum
// share of gross income that may be spent on the mortgage.
type FinancingBurdenTable struct {
	incomes   []float64
	brackets  []RateBracket
	fractions [][]float64
}

// NewFinancingBurdenTable validates and copies the given rows. fractions is
// indexed [income row][rate bracket].
func NewFinancingBurdenTable(incomes []float64, brackets []RateBracket, fractions [][]float64) (*FinancingBurdenTable, error) {
	const name = "financing burden table"

	if len(incomes) == 0 || len(brackets) == 0 {
		return nil, tableError(name, -1, -1, ErrEmptyTable)
	}
	if len(fractions) != len(incomes) {
		return nil, tableError(name, -1, -1,
			fmt.Errorf("%w: %d income levels but %d rows", ErrRaggedTable, len(incomes), len(fractions)))
	}

	for i, b := range brackets {
		if !mathutil.IsFinite(b.Lower) || !mathutil.IsFinite(b.Upper) || b.Lower > b.Upper {
			return nil, tableError(name, -1, i, fmt.Errorf("%w: %s", ErrInvalidBracket, b))
		}
	}
	if err := checkBracketCoverage(brackets); err != nil {
		return nil, tableError(name, -1, -1, err)
	}

	for i, income := range incomes {
		if !mathutil.IsFinite(income) {
			return nil, tableError(name, i, -1, fmt.Errorf("%w: income %v", ErrUnsortedIncomes, income))
		}
		if i > 0 && income <= incomes[i-1] {
			return nil, tableError(name, i, -1,
				fmt.Errorf("%w: %.2f follows %.2f", ErrUnsortedIncomes, income, incomes[i-1]))
		}
	}

	rows := make([][]float64, len(fractions))
	for i, row := range fractions {
		if len(row) != len(brackets) {
			return nil, tableError(name, i, -1,
				fmt.Errorf("%w: %d values for %d brackets", ErrRaggedTable, len(row), len(brackets)))
		}
		for j, fraction := range row {
			if !mathutil.IsFinite(fraction) || fraction < 0 || fraction > 1 {
				return nil, tableError(name, i, j, fmt.Errorf("%w: %v", ErrInvalidFraction, fraction))
			}
		}
		rows[i] = append([]float64(nil), row...)
	}

	return &FinancingBurdenTable{
		incomes:   append([]float64(nil), incomes...),
		brackets:  append([]RateBracket(nil), brackets...),
		fractions: rows,
	}, nil
}

// checkBracketCoverage requires the brackets, ordered by lower bound, to
// meet end to end. Neighbours share an endpoint and nothing more.
func checkBracketCoverage(brackets []RateBracket) error {
	sorted := append([]RateBracket(nil), brackets...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Lower < sorted[j].Lower })
	for i := 1; i < len(sorted); i++ {
		prev, next := sorted[i-1], sorted[i]
		switch {
		case next.Lower < prev.Upper:
			return fmt.Errorf("%w: %s and %s", ErrOverlappingBrackets, prev, next)
		case next.Lower > prev.Upper:
			return fmt.Errorf("%w: %s and %s", ErrBracketGap, prev, next)
		}
	}
	return nil
}

// Incomes returns the income levels in ascending order.
func (t *FinancingBurdenTable) Incomes() []float64 {
	return append([]float64(nil), t.incomes...)
}

// Brackets returns the rate brackets in lookup order.
func (t *FinancingBurdenTable) Brackets() []RateBracket {
	return append([]RateBracket(nil), t.brackets...)
}

// Fraction returns the cell at (row, column).
func (t *FinancingBurdenTable) Fraction(row, column int) float64 {
	return t.fractions[row][column]
}

// EnergyLabel is one row of the energy label table.
type EnergyLabel struct {
	Label   string  `json:"label" yaml:"label"`
	Surplus float64 `json:"surplus" yaml:"surplus"`
}

// EnergyLabelTable maps an energy label to the extra amount that may be
// borrowed on top of the income-based maximum.
type EnergyLabelTable struct {
	entries []EnergyLabel
	index   map[string]int
}

// NewEnergyLabelTable validates the entries and keeps their order.
func NewEnergyLabelTable(entries []EnergyLabel) (*EnergyLabelTable, error) {
	const name = "energy label table"

	if len(entries) == 0 {
		return nil, tableError(name, -1, -1, ErrEmptyTable)
	}

	table := &EnergyLabelTable{
		entries: make([]EnergyLabel, 0, len(entries)),
		index:   make(map[string]int, len(entries)),
	}
	for i, entry := range entries {
		label := strings.TrimSpace(entry.Label)
		if label == "" || !mathutil.IsFinite(entry.Surplus) {
			return nil, tableError(name, i, -1, fmt.Errorf("%w: %+v", ErrInvalidLabel, entry))
		}
		if _, exists := table.index[label]; exists {
			return nil, tableError(name, i, -1, fmt.Errorf("%w: %s", ErrDuplicateLabel, label))
		}
		table.index[label] = len(table.entries)
		table.entries = append(table.entries, EnergyLabel{Label: label, Surplus: entry.Surplus})
	}
	return table, nil
}

// Surplus returns the borrowing surplus for label.
func (t *EnergyLabelTable) Surplus(label string) (float64, bool) {
	i, ok := t.index[strings.TrimSpace(label)]
	if !ok {
		return 0, false
	}
	return t.entries[i].Surplus, true
}

// Labels returns the selectable labels in table order.
func (t *EnergyLabelTable) Labels() []string {
	labels := make([]string, len(t.entries))
	for i, entry := range t.entries {
		labels[i] = entry.Label
	}
	return labels
}

// Entries returns a copy of the table rows.
func (t *EnergyLabelTable) Entries() []EnergyLabel {
	return append([]EnergyLabel(nil), t.entries...)
}
