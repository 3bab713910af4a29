package tables

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/iwvelando/mortgage-affordability/pkg/mortgage"
	"github.com/xuri/excelize/v2"
)

// Sheet names used when a workbook carries more than one sheet.
const (
	BurdenSheet = "financing_burden"
	LabelSheet  = "energy_labels"
)

// readFinancingBurdenXLSX expects a header row of "income" followed by one
// "lower-upper" cell per rate bracket, then one row per income level.
func readFinancingBurdenXLSX(r io.Reader) (*mortgage.FinancingBurdenTable, error) {
	rows, err := readSheet(r, BurdenSheet)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return mortgage.NewFinancingBurdenTable(nil, nil, nil)
	}

	header := rows[0]
	if len(header) < 2 {
		return nil, fmt.Errorf("financing burden sheet header needs an income column and at least one bracket")
	}
	brackets := make([]mortgage.RateBracket, 0, len(header)-1)
	for col, cell := range header[1:] {
		bracket, err := parseBracket(cell)
		if err != nil {
			return nil, fmt.Errorf("header column %d: %w", col+2, err)
		}
		brackets = append(brackets, bracket)
	}

	var incomes []float64
	var fractions [][]float64
	for i, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}
		income, err := parseNumber(row[0])
		if err != nil {
			return nil, fmt.Errorf("row %d income: %w", i+2, err)
		}
		values := make([]float64, 0, len(row)-1)
		for col, cell := range row[1:] {
			if strings.TrimSpace(cell) == "" {
				continue
			}
			value, err := parseNumber(cell)
			if err != nil {
				return nil, fmt.Errorf("row %d column %d: %w", i+2, col+2, err)
			}
			values = append(values, value)
		}
		incomes = append(incomes, income)
		fractions = append(fractions, values)
	}

	return mortgage.NewFinancingBurdenTable(incomes, brackets, fractions)
}

// readEnergyLabelsXLSX expects a "label, surplus" header followed by one row per label.
func readEnergyLabelsXLSX(r io.Reader) (*mortgage.EnergyLabelTable, error) {
	rows, err := readSheet(r, LabelSheet)
	if err != nil {
		return nil, err
	}

	var entries []mortgage.EnergyLabel
	for i, row := range rows {
		if i == 0 || isBlankRow(row) {
			continue
		}
		if len(row) < 2 {
			return nil, fmt.Errorf("row %d: expected label and surplus", i+1)
		}
		surplus, err := parseNumber(row[1])
		if err != nil {
			return nil, fmt.Errorf("row %d surplus: %w", i+1, err)
		}
		entries = append(entries, mortgage.EnergyLabel{Label: row[0], Surplus: surplus})
	}

	return mortgage.NewEnergyLabelTable(entries)
}

// readSheet returns the rows of the named sheet, or of the first sheet when
// the workbook has no sheet by that name.
func readSheet(r io.Reader, preferred string) ([][]string, error) {
	workbook, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer workbook.Close()

	sheets := workbook.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	sheet := sheets[0]
	for _, name := range sheets {
		if strings.EqualFold(name, preferred) {
			sheet = name
			break
		}
	}

	rows, err := workbook.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	return rows, nil
}

// WriteFinancingBurdenXLSX writes table as a workbook readable by ReadFinancingBurden.
func WriteFinancingBurdenXLSX(w io.Writer, table *mortgage.FinancingBurdenTable) error {
	workbook := excelize.NewFile()
	defer workbook.Close()

	if err := workbook.SetSheetName("Sheet1", BurdenSheet); err != nil {
		return err
	}

	brackets := table.Brackets()
	header := make([]interface{}, 0, len(brackets)+1)
	header = append(header, "income")
	for _, bracket := range brackets {
		header = append(header, formatBracket(bracket))
	}
	if err := workbook.SetSheetRow(BurdenSheet, "A1", &header); err != nil {
		return err
	}

	for i, income := range table.Incomes() {
		row := make([]interface{}, 0, len(brackets)+1)
		row = append(row, income)
		for col := range brackets {
			row = append(row, table.Fraction(i, col))
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := workbook.SetSheetRow(BurdenSheet, cell, &row); err != nil {
			return err
		}
	}

	return workbook.Write(w)
}

// WriteEnergyLabelsXLSX writes table as a workbook readable by ReadEnergyLabels.
func WriteEnergyLabelsXLSX(w io.Writer, table *mortgage.EnergyLabelTable) error {
	workbook := excelize.NewFile()
	defer workbook.Close()

	if err := workbook.SetSheetName("Sheet1", LabelSheet); err != nil {
		return err
	}
	if err := workbook.SetSheetRow(LabelSheet, "A1", &[]interface{}{"label", "surplus"}); err != nil {
		return err
	}
	for i, entry := range table.Entries() {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := workbook.SetSheetRow(LabelSheet, cell, &[]interface{}{entry.Label, entry.Surplus}); err != nil {
			return err
		}
	}

	return workbook.Write(w)
}

func formatBracket(bracket mortgage.RateBracket) string {
	return strconv.FormatFloat(bracket.Lower, 'f', -1, 64) + "-" + strconv.FormatFloat(bracket.Upper, 'f', -1, 64)
}

// parseBracket accepts "0.015-0.02" or "1.5%-2%".
func parseBracket(cell string) (mortgage.RateBracket, error) {
	lower, upper, found := strings.Cut(strings.TrimSpace(cell), "-")
	if !found {
		return mortgage.RateBracket{}, fmt.Errorf("invalid rate bracket %q", cell)
	}
	lo, err := parseRate(lower)
	if err != nil {
		return mortgage.RateBracket{}, err
	}
	hi, err := parseRate(upper)
	if err != nil {
		return mortgage.RateBracket{}, err
	}
	return mortgage.RateBracket{Lower: lo, Upper: hi}, nil
}

func parseRate(value string) (float64, error) {
	trimmed := strings.TrimSpace(value)
	if percent, ok := strings.CutSuffix(trimmed, "%"); ok {
		n, err := parseNumber(percent)
		if err != nil {
			return 0, err
		}
		return n / 100, nil
	}
	return parseNumber(trimmed)
}

func parseNumber(value string) (float64, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(value), ",", "")
	n, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", value)
	}
	return n, nil
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
