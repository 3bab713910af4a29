package calculator

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iwvelando/mortgage-affordability/internal/config"
	"github.com/iwvelando/mortgage-affordability/pkg/constants"
	"github.com/iwvelando/mortgage-affordability/pkg/datetime"
	"github.com/iwvelando/mortgage-affordability/pkg/mathutil"
	"github.com/iwvelando/mortgage-affordability/pkg/mortgage"
)

// ErrInvalidRequest marks input that cannot be interpreted at all.
var ErrInvalidRequest = errors.New("invalid request")

// Request mirrors the mortgage section of the configuration. Rates are
// percentages; omitted rates and terms take the configuration defaults.
type Request struct {
	Incomes          []float64          `json:"incomes"`
	InterestRate     *float64           `json:"interestRate,omitempty"`
	TermYears        int                `json:"termYears,omitempty"`
	EnergyLabel      string             `json:"energyLabel,omitempty"`
	TaxDeductionRate *float64           `json:"taxDeductionRate,omitempty"`
	StartDate        string             `json:"startDate,omitempty"`
	Principal        float64            `json:"principal,omitempty"`
	Budget           float64            `json:"budget,omitempty"`
	BudgetBasis      string             `json:"budgetBasis,omitempty"`
	RateScenarios    []RateScenarioSpec `json:"rateScenarios,omitempty"`
}

// RateScenarioSpec is an alternative rate to compare, in percent.
type RateScenarioSpec struct {
	Label        string  `json:"label"`
	InterestRate float64 `json:"interestRate"`
}

// RequestFromConfig builds a request from a loaded configuration.
func RequestFromConfig(conf *config.Configuration) Request {
	rate := conf.Mortgage.InterestRate
	tax := conf.Mortgage.TaxDeductionRate

	req := Request{
		Incomes:          conf.Household.IncomeAmounts(),
		InterestRate:     &rate,
		TermYears:        conf.Mortgage.TermYears,
		EnergyLabel:      conf.Mortgage.EnergyLabel,
		TaxDeductionRate: &tax,
		StartDate:        conf.Mortgage.StartDate,
		Principal:        conf.Mortgage.Principal,
		Budget:           conf.Budget.MaxPayment,
		BudgetBasis:      conf.Budget.Basis,
	}
	for _, scenario := range conf.RateScenarios {
		req.RateScenarios = append(req.RateScenarios, RateScenarioSpec{
			Label:        scenario.Label,
			InterestRate: scenario.InterestRate,
		})
	}
	return req
}

// parameters are a request resolved to fractions and concrete defaults.
type parameters struct {
	GrossIncome  float64                 `json:"grossIncome"`
	InterestRate float64                 `json:"interestRate"`
	TermYears    int                     `json:"termYears"`
	TaxRate      float64                 `json:"taxRate"`
	EnergyLabel  string                  `json:"energyLabel"`
	Start        time.Time               `json:"start"`
	Principal    float64                 `json:"principal"`
	Budget       float64                 `json:"budget"`
	Basis        mortgage.PaymentBasis   `json:"basis"`
	Scenarios    []mortgage.RateScenario `json:"scenarios"`
}

func (r Request) resolve(now time.Time) (parameters, error) {
	p := parameters{
		GrossIncome:  mathutil.Sum(r.Incomes...),
		InterestRate: mathutil.FromPercentage(constants.DefaultInterestRate),
		TermYears:    r.TermYears,
		TaxRate:      mathutil.FromPercentage(constants.DefaultTaxDeductionRate),
		EnergyLabel:  strings.TrimSpace(r.EnergyLabel),
		Principal:    r.Principal,
		Budget:       r.Budget,
		Basis:        mortgage.BasisNet,
	}
	if r.InterestRate != nil {
		p.InterestRate = mathutil.FromPercentage(*r.InterestRate)
	}
	if r.TaxDeductionRate != nil {
		p.TaxRate = mathutil.FromPercentage(*r.TaxDeductionRate)
	}
	if p.TermYears == 0 {
		p.TermYears = constants.DefaultTermYears
	}

	for _, income := range r.Incomes {
		if !mathutil.IsFinite(income) {
			return parameters{}, fmt.Errorf("%w: income %v is not a number", ErrInvalidRequest, income)
		}
	}

	start, err := datetime.ParseMonth(r.StartDate, now)
	if err != nil {
		return parameters{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	p.Start = start

	if strings.TrimSpace(r.BudgetBasis) != "" {
		basis, err := mortgage.ParsePaymentBasis(r.BudgetBasis)
		if err != nil {
			return parameters{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
		p.Basis = basis
	}

	if len(r.RateScenarios) == 0 {
		p.Scenarios = mortgage.DefaultRateScenarios(p.InterestRate)
	} else {
		p.Scenarios = make([]mortgage.RateScenario, len(r.RateScenarios))
		for i, scenario := range r.RateScenarios {
			label := strings.TrimSpace(scenario.Label)
			if label == "" {
				label = fmt.Sprintf("Scenario %d", i+1)
			}
			p.Scenarios[i] = mortgage.RateScenario{
				Label:        label,
				InterestRate: mathutil.FromPercentage(scenario.InterestRate),
			}
		}
	}
	return p, nil
}
