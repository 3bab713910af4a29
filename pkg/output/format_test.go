package output

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/iwvelando/mortgage-affordability/internal/calculator"
	"github.com/iwvelando/mortgage-affordability/pkg/mortgage"
)

func newService() *calculator.Service {
	return calculator.NewService(nil, nil, calculator.WithClock(func() time.Time {
		return time.Date(2025, 3, 17, 0, 0, 0, 0, time.UTC)
	}))
}

func testRequest() calculator.Request {
	rate := 4.0
	tax := 37.5
	return calculator.Request{
		Incomes:          []float64{60000},
		InterestRate:     &rate,
		TermYears:        30,
		EnergyLabel:      "A++",
		TaxDeductionRate: &tax,
		Principal:        300000,
		Budget:           1500,
		BudgetBasis:      "gross",
	}
}

func readCSV(t *testing.T, data string) [][]string {
	t.Helper()
	records, err := csv.NewReader(strings.NewReader(data)).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	return records
}

func TestPrettyAffordability(t *testing.T) {
	result, err := newService().Affordability(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Affordability() error = %v", err)
	}

	var buf bytes.Buffer
	if err := Render(&buf, "pretty", result, Options{}); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	output := buf.String()

	for _, want := range []string{
		"--- Maximum mortgage ---",
		"€60,000.00",
		"4.00%",
		"24.50%",
		"A++ (+€20,000)",
		"€276,590.02",
		"€1,225.00",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("pretty output missing %q:\n%s", want, output)
		}
	}
	if strings.Contains(output, "Warnings:") {
		t.Errorf("unexpected warnings section:\n%s", output)
	}
}

func TestPrettyScheduleYearlyAndMonthly(t *testing.T) {
	result, err := newService().Schedule(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Schedule() error = %v", err)
	}

	var yearly bytes.Buffer
	if err := PrettySchedule(&yearly, result, false); err != nil {
		t.Fatalf("PrettySchedule() error = %v", err)
	}
	out := yearly.String()
	if !strings.Contains(out, "--- Amortization of €300,000.00 at 4.00% over 30 years from 2025-03 ---") {
		t.Errorf("missing schedule header:\n%s", out)
	}
	if !strings.Contains(out, "€1,432.25") {
		t.Errorf("missing gross monthly payment")
	}
	if !strings.Contains(out, "€271,342.54") {
		t.Errorf("missing balance after year 5")
	}
	if !strings.Contains(out, "Total interest: €215,608.52") {
		t.Errorf("missing total interest")
	}
	if lines := strings.Count(out, "\n"); lines > 50 {
		t.Errorf("yearly output unexpectedly long: %d lines", lines)
	}

	var monthly bytes.Buffer
	if err := PrettySchedule(&monthly, result, true); err != nil {
		t.Fatalf("PrettySchedule() error = %v", err)
	}
	if !strings.Contains(monthly.String(), "2055-02") {
		t.Errorf("monthly output should end in 2055-02")
	}
}

func TestCsvSchedule(t *testing.T) {
	result, err := newService().Schedule(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Schedule() error = %v", err)
	}

	var buf bytes.Buffer
	if err := Render(&buf, "csv", result, Options{Monthly: true}); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	records := readCSV(t, buf.String())
	if len(records) != 361 {
		t.Fatalf("expected header plus 360 rows, got %d", len(records))
	}
	if records[0][0] != "month" || records[1][1] != "2025-03" {
		t.Errorf("unexpected first rows: %v / %v", records[0], records[1])
	}
	if records[1][4] != "1432.25" {
		t.Errorf("expected gross payment 1432.25, got %s", records[1][4])
	}
	if records[60][9] != "271342.54" {
		t.Errorf("expected balance 271342.54 after 60 months, got %s", records[60][9])
	}
	if records[360][9] != "0.00" {
		t.Errorf("expected zero final balance, got %s", records[360][9])
	}

	buf.Reset()
	if err := Render(&buf, "csv", result, Options{}); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	years := readCSV(t, buf.String())
	if len(years) != 31 || years[5][5] != "271342.54" {
		t.Errorf("unexpected yearly CSV: %d rows, year 5 %v", len(years), years[5])
	}
}

func TestBudgetOutputs(t *testing.T) {
	result, err := newService().Budget(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Budget() error = %v", err)
	}

	var pretty bytes.Buffer
	if err := Render(&pretty, "pretty", result, Options{}); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !strings.Contains(pretty.String(), "Affordable mortgage: €314,191.86") {
		t.Errorf("missing affordable mortgage:\n%s", pretty.String())
	}
	if !strings.Contains(pretty.String(), "€450,000") {
		t.Errorf("missing top of the payment curve")
	}

	var buf bytes.Buffer
	if err := Render(&buf, "csv", result, Options{}); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	records := readCSV(t, buf.String())
	if len(records) != 22 {
		t.Fatalf("expected header plus 21 curve points, got %d", len(records))
	}
	if records[1][0] != "50000.00" {
		t.Errorf("expected curve to start at 50000.00, got %s", records[1][0])
	}
}

func TestCompareOutputs(t *testing.T) {
	req := testRequest()
	req.RateScenarios = []calculator.RateScenarioSpec{
		{Label: "low", InterestRate: 4.0},
		{Label: "broken", InterestRate: -1},
	}
	result, err := newService().CompareRates(context.Background(), req)
	if err != nil {
		t.Fatalf("CompareRates() error = %v", err)
	}

	var buf bytes.Buffer
	if err := Render(&buf, "csv", result, Options{}); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	records := readCSV(t, buf.String())
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	if records[1][7] != "215608.52" {
		t.Errorf("expected total interest 215608.52, got %s", records[1][7])
	}
	if records[2][7] != "" {
		t.Errorf("expected empty totals for an unsimulated scenario, got %q", records[2][7])
	}

	var pretty bytes.Buffer
	if err := Render(&pretty, "pretty", result, Options{}); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !strings.Contains(pretty.String(), "€215,609") {
		t.Errorf("missing rounded total interest:\n%s", pretty.String())
	}
}

func TestJSONFormat(t *testing.T) {
	result, err := newService().Affordability(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Affordability() error = %v", err)
	}

	var buf bytes.Buffer
	if err := Render(&buf, "json", result, Options{}); err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if decoded["energyLabel"] != "A++" {
		t.Errorf("expected energyLabel A++, got %v", decoded["energyLabel"])
	}
	if _, ok := decoded["maximumMortgage"]; !ok {
		t.Error("expected maximumMortgage in JSON output")
	}
}

func TestLabelsOutputs(t *testing.T) {
	labels := []mortgage.EnergyLabel{{Label: "A", Surplus: 10000}, {Label: "G", Surplus: 0}}

	var pretty bytes.Buffer
	if err := Render(&pretty, "pretty", labels, Options{}); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !strings.Contains(pretty.String(), "€10,000") {
		t.Errorf("missing surplus:\n%s", pretty.String())
	}

	var buf bytes.Buffer
	if err := Render(&buf, "csv", labels, Options{}); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	records := readCSV(t, buf.String())
	if len(records) != 3 || records[1][1] != "10000.00" {
		t.Errorf("unexpected labels CSV: %v", records)
	}
}

func TestRenderErrors(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, "xml", []mortgage.EnergyLabel{}, Options{}); err == nil {
		t.Error("expected error for unsupported format")
	}
	if err := Render(&buf, "pretty", 42, Options{}); err == nil {
		t.Error("expected error for unsupported result type")
	}
	if err := Render(&buf, "csv", "text", Options{}); err == nil {
		t.Error("expected error for unsupported result type")
	}
}

func TestPrettyWarnings(t *testing.T) {
	req := testRequest()
	req.EnergyLabel = "unknown"
	result, err := newService().Affordability(context.Background(), req)
	if err != nil {
		t.Fatalf("Affordability() error = %v", err)
	}

	var buf bytes.Buffer
	if err := PrettyAffordability(&buf, result); err != nil {
		t.Fatalf("PrettyAffordability() error = %v", err)
	}
	if !strings.Contains(buf.String(), "Warnings:\n  - unknown energy label") {
		t.Errorf("missing warnings section:\n%s", buf.String())
	}
}
