package integration

import (
	"bytes"
	"context"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/iwvelando/mortgage-affordability/internal/cache"
	"github.com/iwvelando/mortgage-affordability/internal/calculator"
	"github.com/iwvelando/mortgage-affordability/internal/config"
	"github.com/iwvelando/mortgage-affordability/internal/tables"
	"github.com/iwvelando/mortgage-affordability/pkg/output"
	"github.com/iwvelando/mortgage-affordability/pkg/testutil"
	"go.uber.org/zap"
)

const testConfigPath = "../test_config.yaml"

// loadService loads the test configuration and builds the service exactly as main() does.
func loadService(t *testing.T) (*config.Configuration, *calculator.Service) {
	t.Helper()
	logger := zap.NewNop()

	conf, err := config.LoadConfiguration(testConfigPath)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	svc := calculator.NewService(logger, tables.NewStore(logger),
		calculator.WithCache(cache.NewMemoryCache(time.Minute)),
		calculator.WithTablePaths(conf.Tables.FinancingBurden, conf.Tables.EnergyLabels),
	)
	return conf, svc
}

// TestMainIntegrationBaseline checks the headline figures for the test household.
func TestMainIntegrationBaseline(t *testing.T) {
	conf, svc := loadService(t)
	req := calculator.RequestFromConfig(conf)

	afford, err := svc.Affordability(context.Background(), req)
	if err != nil {
		t.Fatalf("Affordability() error = %v", err)
	}

	checks := []struct {
		name     string
		actual   float64
		expected float64
	}{
		{"gross income", afford.GrossIncome, 60000},
		{"maximum mortgage", afford.MaximumMortgage, 276590.02},
		{"monthly payment base", afford.MonthlyPaymentBase, 1225},
		{"energy surplus", afford.EnergySurplus, 20000},
		{"gross monthly payment", afford.Payments.GrossMonthlyPayment, 1320.48},
		{"net monthly payment", afford.Payments.NetMonthlyPayment, 974.75},
	}
	for _, check := range checks {
		if !testutil.WithinCents(check.actual, check.expected) {
			t.Errorf("%s: expected %.2f, got %.2f", check.name, check.expected, check.actual)
		}
	}
	if len(afford.Warnings) != 0 {
		t.Errorf("expected no warnings, got %v", afford.Warnings)
	}
}

func TestScheduleBaseline(t *testing.T) {
	conf, svc := loadService(t)

	result, err := svc.Schedule(context.Background(), calculator.RequestFromConfig(conf))
	if err != nil {
		t.Fatalf("Schedule() error = %v", err)
	}

	if result.Principal != 300000 {
		t.Fatalf("expected configured principal 300000, got %.2f", result.Principal)
	}
	if len(result.Schedule.Rows) != 360 {
		t.Fatalf("expected 360 months, got %d", len(result.Schedule.Rows))
	}
	if !testutil.WithinCents(result.Schedule.Rows[59].OutstandingPrincipal, 271342.54) {
		t.Errorf("balance after 60 months: got %.2f", result.Schedule.Rows[59].OutstandingPrincipal)
	}
	if !testutil.WithinCents(result.Schedule.Rows[119].OutstandingPrincipal, 236351.88) {
		t.Errorf("balance after 120 months: got %.2f", result.Schedule.Rows[119].OutstandingPrincipal)
	}
	if !testutil.WithinCents(result.Summary.TotalInterest, 215608.52) {
		t.Errorf("total interest: got %.2f", result.Summary.TotalInterest)
	}
}

func TestCompareBaseline(t *testing.T) {
	conf, svc := loadService(t)

	result, err := svc.CompareRates(context.Background(), calculator.RequestFromConfig(conf))
	if err != nil {
		t.Fatalf("CompareRates() error = %v", err)
	}
	if len(result.Scenarios) != 4 {
		t.Fatalf("expected 4 scenarios, got %d", len(result.Scenarios))
	}

	current := testutil.FindScenario(result.Scenarios, "current offer")
	if current == nil {
		t.Fatal("missing scenario 'current offer'")
	}
	if !testutil.WithinCents(current.PrincipalRepaidShort, 28657.46) {
		t.Errorf("repaid after 5 years: got %.2f", current.PrincipalRepaidShort)
	}
	if !testutil.WithinCents(current.PrincipalRepaidLong, 63648.12) {
		t.Errorf("repaid after 10 years: got %.2f", current.PrincipalRepaidLong)
	}

	drop := testutil.FindScenario(result.Scenarios, "rate drop")
	rise := testutil.FindScenario(result.Scenarios, "rate rise")
	if drop == nil || rise == nil {
		t.Fatal("missing rate drop or rate rise scenario")
	}
	if !(drop.GrossMonthlyPayment < current.GrossMonthlyPayment && current.GrossMonthlyPayment < rise.GrossMonthlyPayment) {
		t.Errorf("expected payments to rise with the rate: %.2f, %.2f, %.2f",
			drop.GrossMonthlyPayment, current.GrossMonthlyPayment, rise.GrossMonthlyPayment)
	}

	invalid := testutil.FindScenario(result.Scenarios, "invalid")
	if invalid == nil || invalid.Simulated {
		t.Errorf("expected the negative rate scenario to stay unsimulated, got %+v", invalid)
	}
}

func TestBudgetBaseline(t *testing.T) {
	conf, svc := loadService(t)

	result, err := svc.Budget(context.Background(), calculator.RequestFromConfig(conf))
	if err != nil {
		t.Fatalf("Budget() error = %v", err)
	}
	if !testutil.WithinCents(result.AffordableMortgage, 314191.86) {
		t.Errorf("affordable mortgage: got %.2f", result.AffordableMortgage)
	}
	if !result.ExceedsMaximum {
		t.Error("expected the budget to exceed the income-based maximum")
	}
	if len(result.Curve) != 21 {
		t.Errorf("expected 21 curve points, got %d", len(result.Curve))
	}
}

// TestCSVOutputFormat renders every result through the CSV writers.
func TestCSVOutputFormat(t *testing.T) {
	conf, svc := loadService(t)
	req := calculator.RequestFromConfig(conf)
	ctx := context.Background()

	afford, err := svc.Affordability(ctx, req)
	if err != nil {
		t.Fatalf("Affordability() error = %v", err)
	}
	schedule, err := svc.Schedule(ctx, req)
	if err != nil {
		t.Fatalf("Schedule() error = %v", err)
	}
	compare, err := svc.CompareRates(ctx, req)
	if err != nil {
		t.Fatalf("CompareRates() error = %v", err)
	}

	tests := []struct {
		name    string
		result  interface{}
		monthly bool
		rows    int
		header  string
	}{
		{"affordability", afford, false, 16, "field"},
		{"schedule years", schedule, false, 31, "year"},
		{"schedule months", schedule, true, 361, "month"},
		{"compare", compare, false, 5, "label"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := output.Render(&buf, "csv", tt.result, output.Options{Monthly: tt.monthly}); err != nil {
				t.Fatalf("Render() error = %v", err)
			}
			records, err := csv.NewReader(&buf).ReadAll()
			if err != nil {
				t.Fatalf("invalid CSV: %v", err)
			}
			if len(records) != tt.rows {
				t.Errorf("expected %d records, got %d", tt.rows, len(records))
			}
			if records[0][0] != tt.header {
				t.Errorf("expected header %q, got %q", tt.header, records[0][0])
			}
		})
	}
}

func TestPrettyOutputFormat(t *testing.T) {
	conf, svc := loadService(t)

	result, err := svc.CompareRates(context.Background(), calculator.RequestFromConfig(conf))
	if err != nil {
		t.Fatalf("CompareRates() error = %v", err)
	}

	var buf bytes.Buffer
	if err := output.Render(&buf, conf.Output.Format, result, output.Options{}); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	out := buf.String()
	for _, label := range []string{"current offer", "rate drop", "rate rise", "invalid"} {
		if !strings.Contains(out, label) {
			t.Errorf("pretty output missing scenario %q", label)
		}
	}
}

func TestConfigurationValidation(t *testing.T) {
	conf, _ := loadService(t)

	warnings := conf.ValidateConfiguration()
	if len(warnings) != 1 {
		t.Fatalf("expected exactly one warning for the negative scenario rate, got %v", warnings)
	}
	if !strings.Contains(warnings[0], "invalid") {
		t.Errorf("expected the warning to name the scenario, got %q", warnings[0])
	}
}

// TestPerformance keeps the whole pipeline well inside interactive latency.
func TestPerformance(t *testing.T) {
	conf, svc := loadService(t)
	req := calculator.RequestFromConfig(conf)
	ctx := context.Background()

	start := time.Now()
	if _, err := svc.Budget(ctx, req); err != nil {
		t.Fatalf("Budget() error = %v", err)
	}
	if _, err := svc.CompareRates(ctx, req); err != nil {
		t.Fatalf("CompareRates() error = %v", err)
	}
	elapsed := time.Since(start)

	t.Logf("Budget and comparison took %v", elapsed)
	if elapsed > 5*time.Second {
		t.Errorf("processing time %v exceeds 5 second threshold", elapsed)
	}
}

func BenchmarkSchedule(b *testing.B) {
	conf, err := config.LoadConfiguration(testConfigPath)
	if err != nil {
		b.Fatalf("LoadConfiguration() error = %v", err)
	}
	svc := calculator.NewService(zap.NewNop(), nil)
	req := calculator.RequestFromConfig(conf)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := svc.Schedule(context.Background(), req); err != nil {
			b.Fatal(err)
		}
	}
}
