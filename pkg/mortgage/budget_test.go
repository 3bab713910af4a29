package mortgage

import (
	"math"
	"testing"
)

func TestParsePaymentBasis(t *testing.T) {
	tests := []struct {
		input    string
		expected PaymentBasis
		wantErr  bool
	}{
		{"gross", BasisGross, false},
		{"Gross", BasisGross, false},
		{" NET ", BasisNet, false},
		{"net", BasisNet, false},
		{"", "", true},
		{"monthly", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParsePaymentBasis(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParsePaymentBasis(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.expected {
				t.Errorf("ParsePaymentBasis(%q) = %q, expected %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestAffordableByBudget(t *testing.T) {
	tests := []struct {
		name         string
		target       float64
		basis        PaymentBasis
		interestRate float64
		termYears    int
		taxRate      float64
		expected     float64
		expectOK     bool
	}{
		{
			name:         "Gross budget at 4%",
			target:       1500,
			basis:        BasisGross,
			interestRate: 0.04,
			termYears:    30,
			taxRate:      0.375,
			expected:     314191.86,
			expectOK:     true,
		},
		{
			name:         "Net budget at 4%",
			target:       1500,
			basis:        BasisNet,
			interestRate: 0.04,
			termYears:    30,
			taxRate:      0.375,
			expected:     425634.19, // 1500 / (0.00477415 - 0.00333333*0.375)
			expectOK:     true,
		},
		{
			name:         "Gross budget at zero rate",
			target:       1000,
			basis:        BasisGross,
			interestRate: 0,
			termYears:    25,
			expected:     300000,
			expectOK:     true,
		},
		{
			name:         "Net budget at zero rate equals gross",
			target:       1000,
			basis:        BasisNet,
			interestRate: 0,
			termYears:    25,
			taxRate:      0.375,
			expected:     300000,
			expectOK:     true,
		},
		{
			name:         "Net budget with full deduction has no solution",
			target:       1000,
			basis:        BasisNet,
			interestRate: 0.04,
			termYears:    50,
			taxRate:      1.5,
		},
		{name: "Zero target", target: 0, basis: BasisGross, interestRate: 0.04, termYears: 30},
		{name: "Negative target", target: -100, basis: BasisNet, interestRate: 0.04, termYears: 30},
		{name: "Zero term", target: 1000, basis: BasisGross, interestRate: 0.04, termYears: 0},
		{name: "Unknown basis", target: 1000, basis: "monthly", interestRate: 0.04, termYears: 30},
		{name: "Undefined annuity factor", target: 1000, basis: BasisGross, interestRate: 1e-300, termYears: 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := AffordableByBudget(tt.target, tt.basis, tt.interestRate, tt.termYears, tt.taxRate)
			if ok != tt.expectOK {
				t.Fatalf("AffordableByBudget() ok = %v, expected %v", ok, tt.expectOK)
			}
			if math.Abs(got-tt.expected) > 0.01 {
				t.Errorf("AffordableByBudget() = %.4f, expected %.4f", got, tt.expected)
			}
		})
	}
}

func TestAffordableByBudgetRoundTrip(t *testing.T) {
	principals := []float64{50000, 175000, 314191.86, 750000}
	rates := []float64{0, 0.015, 0.04, 0.079}
	terms := []int{5, 20, 30}

	for _, principal := range principals {
		for _, rate := range rates {
			for _, term := range terms {
				payments := MonthlyPayments(principal, rate, term, 0.375)

				gross, ok := AffordableByBudget(payments.GrossMonthlyPayment, BasisGross, rate, term, 0.375)
				if !ok {
					t.Fatalf("gross inversion failed for %v at %v over %d", principal, rate, term)
				}
				if math.Abs(gross-principal) > 1e-6*principal {
					t.Errorf("gross round trip %v at %v over %d = %v", principal, rate, term, gross)
				}

				net, ok := AffordableByBudget(payments.NetMonthlyPayment, BasisNet, rate, term, 0.375)
				if !ok {
					t.Fatalf("net inversion failed for %v at %v over %d", principal, rate, term)
				}
				if math.Abs(net-principal) > 1e-6*principal {
					t.Errorf("net round trip %v at %v over %d = %v", principal, rate, term, net)
				}
			}
		}
	}
}

func TestComparisonRange(t *testing.T) {
	tests := []struct {
		name            string
		maximumMortgage float64
		affordable      float64
		lo, hi, step    float64
	}{
		{
			name:            "Maximum mortgage drives the range",
			maximumMortgage: 314191.86,
			lo:              50000,
			hi:              450000,
			step:            20000,
		},
		{
			name:            "Affordable amount larger than maximum",
			maximumMortgage: 314191.86,
			affordable:      425634.16,
			lo:              50000,
			hi:              650000,
			step:            30000,
		},
		{
			name: "Nothing known falls back to default maximum",
			lo:   50000,
			hi:   1000000,
			step: 50000,
		},
		{
			name:            "Half rounds to even",
			maximumMortgage: 350000,
			lo:              50000,
			hi:              500000,
			step:            20000,
		},
		{
			name:            "Small mortgage keeps the floor",
			maximumMortgage: 20000,
			lo:              50000,
			hi:              100000,
			step:            5000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lo, hi, step := ComparisonRange(tt.maximumMortgage, tt.affordable)
			if lo != tt.lo || hi != tt.hi || step != tt.step {
				t.Errorf("ComparisonRange() = (%v, %v, %v), expected (%v, %v, %v)", lo, hi, step, tt.lo, tt.hi, tt.step)
			}
		})
	}
}

func TestPaymentCurve(t *testing.T) {
	points := PaymentCurve(50000, 150000, 25000, 0.04, 30, 0.375)
	if len(points) != 5 {
		t.Fatalf("expected 5 points, got %d", len(points))
	}
	if points[0].Amount != 50000 || points[4].Amount != 150000 {
		t.Errorf("unexpected range %v..%v", points[0].Amount, points[4].Amount)
	}
	for i, point := range points {
		payments := MonthlyPayments(point.Amount, 0.04, 30, 0.375)
		if point.GrossMonthlyPayment != payments.GrossMonthlyPayment || point.NetMonthlyPayment != payments.NetMonthlyPayment {
			t.Errorf("point %d = %+v, expected %+v", i, point, payments)
		}
		if i > 0 && point.GrossMonthlyPayment <= points[i-1].GrossMonthlyPayment {
			t.Errorf("gross payment not increasing at point %d", i)
		}
	}

	lo, hi, step := ComparisonRange(250000, 0)
	if hi != 400000 || step != 20000 {
		t.Fatalf("ComparisonRange(250000, 0) = (%v, %v, %v), expected hi 400000 step 20000", lo, hi, step)
	}
	points = PaymentCurve(lo, hi, step, 0.04, 30, 0.375)
	if len(points) != 19 {
		t.Fatalf("expected 19 points, got %d", len(points))
	}
	if last := points[len(points)-1].Amount; last != 410000 {
		t.Errorf("expected the curve to reach past the upper bound at 410000, got %v", last)
	}

	if got := PaymentCurve(100, 50, 10, 0.04, 30, 0.375); got != nil {
		t.Errorf("expected nil for inverted range, got %v", got)
	}
	if got := PaymentCurve(0, 50, 0, 0.04, 30, 0.375); got != nil {
		t.Errorf("expected nil for zero step, got %v", got)
	}
}
