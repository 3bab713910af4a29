// Package calculator resolves requests against the reference tables, runs
// the mortgage calculations and memoizes their results.
package calculator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iwvelando/mortgage-affordability/internal/cache"
	"github.com/iwvelando/mortgage-affordability/internal/tables"
	"github.com/iwvelando/mortgage-affordability/pkg/constants"
	"github.com/iwvelando/mortgage-affordability/pkg/mortgage"
	"go.uber.org/zap"
)

var (
	// ErrCannotSimulate is returned when no amortization schedule exists for the inputs.
	ErrCannotSimulate = errors.New("mortgage cannot be simulated with these parameters")
	// ErrNoBudgetSolution is returned when no principal matches the monthly budget.
	ErrNoBudgetSolution = errors.New("no mortgage matches the monthly budget")
)

// Service runs calculations for requests.
type Service struct {
	logger     *zap.Logger
	tables     *tables.Store
	cache      cache.Repository
	burdenPath string
	labelPath  string
	now        func() time.Time
}

// Option customizes a Service.
type Option func(*Service)

// WithCache memoizes results in repo.
func WithCache(repo cache.Repository) Option {
	return func(s *Service) {
		if repo != nil {
			s.cache = repo
		}
	}
}

// WithTablePaths selects reference table files. Empty paths use the built-in tables.
func WithTablePaths(burdenPath, labelPath string) Option {
	return func(s *Service) {
		s.burdenPath = burdenPath
		s.labelPath = labelPath
	}
}

// WithClock overrides the clock that supplies the default start month.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService constructs a Service. A nil store gets a private one.
func NewService(logger *zap.Logger, store *tables.Store, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if store == nil {
		store = tables.NewStore(logger)
	}
	s := &Service{
		logger: logger,
		tables: store,
		cache:  cache.Nop{},
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AffordabilityResult is the maximum mortgage for a household.
type AffordabilityResult struct {
	GrossIncome           float64                `json:"grossIncome"`
	InterestRate          float64                `json:"interestRate"`
	TermYears             int                    `json:"termYears"`
	TaxDeductionRate      float64                `json:"taxDeductionRate"`
	BurdenFraction        float64                `json:"burdenFraction"`
	BurdenIncome          float64                `json:"burdenIncome"`
	BurdenBracket         mortgage.RateBracket   `json:"burdenBracket"`
	BracketFallback       bool                   `json:"bracketFallback"`
	EnergyLabel           string                 `json:"energyLabel,omitempty"`
	EnergySurplus         float64                `json:"energySurplus"`
	MaximumMortgage       float64                `json:"maximumMortgage"`
	MonthlyPaymentBase    float64                `json:"monthlyPaymentBase"`
	SurplusMonthlyPayment float64                `json:"surplusMonthlyPayment"`
	Payments              mortgage.PaymentResult `json:"payments"`
	Warnings              []string               `json:"warnings,omitempty"`
}

// ScheduleResult is the amortization of one principal.
type ScheduleResult struct {
	Affordability AffordabilityResult      `json:"affordability"`
	Principal     float64                  `json:"principal"`
	Start         time.Time                `json:"start"`
	Schedule      *mortgage.Schedule       `json:"schedule"`
	Summary       mortgage.ScheduleSummary `json:"summary"`
}

// BudgetResult is the mortgage a monthly budget affords, with a payment
// curve around it for comparison.
type BudgetResult struct {
	Affordability      AffordabilityResult    `json:"affordability"`
	Budget             float64                `json:"budget"`
	Basis              mortgage.PaymentBasis  `json:"basis"`
	AffordableMortgage float64                `json:"affordableMortgage"`
	Payments           mortgage.PaymentResult `json:"payments"`
	ExceedsMaximum     bool                   `json:"exceedsMaximum"`
	RangeLow           float64                `json:"rangeLow"`
	RangeHigh          float64                `json:"rangeHigh"`
	RangeStep          float64                `json:"rangeStep"`
	Curve              []mortgage.CurvePoint  `json:"curve"`
}

// CompareResult lines up rate scenarios over the same principal.
type CompareResult struct {
	Affordability AffordabilityResult           `json:"affordability"`
	Principal     float64                       `json:"principal"`
	Start         time.Time                     `json:"start"`
	Scenarios     []mortgage.ScenarioComparison `json:"scenarios"`
}

// cacheKey ties a result to the table revisions it was computed from, so
// editing a table file invalidates earlier results.
type cacheKey struct {
	Parameters     parameters `json:"parameters"`
	BurdenRevision string     `json:"burdenRevision"`
	LabelRevision  string     `json:"labelRevision"`
}

// Affordability resolves the financing burden and energy surplus and
// returns the maximum mortgage.
func (s *Service) Affordability(ctx context.Context, req Request) (AffordabilityResult, error) {
	p, err := req.resolve(s.now())
	if err != nil {
		return AffordabilityResult{}, err
	}
	return memoize(ctx, s, "affordability", p, func() (AffordabilityResult, error) {
		return s.affordability(p)
	})
}

func (s *Service) affordability(p parameters) (AffordabilityResult, error) {
	burdenTable, err := s.tables.FinancingBurden(s.burdenPath)
	if err != nil {
		return AffordabilityResult{}, fmt.Errorf("failed to load financing burden table: %w", err)
	}
	labelTable, err := s.tables.EnergyLabels(s.labelPath)
	if err != nil {
		return AffordabilityResult{}, fmt.Errorf("failed to load energy label table: %w", err)
	}

	lookup, err := burdenTable.Lookup(p.GrossIncome, p.InterestRate)
	if err != nil {
		return AffordabilityResult{}, fmt.Errorf("failed to resolve financing burden: %w", err)
	}

	result := AffordabilityResult{
		GrossIncome:      p.GrossIncome,
		InterestRate:     p.InterestRate,
		TermYears:        p.TermYears,
		TaxDeductionRate: p.TaxRate,
		BurdenFraction:   lookup.Fraction,
		BurdenIncome:     lookup.Income,
		BurdenBracket:    lookup.Bracket,
		BracketFallback:  lookup.Fallback,
		EnergyLabel:      p.EnergyLabel,
	}
	if lookup.Fallback {
		result.Warnings = append(result.Warnings, fmt.Sprintf(
			"interest rate %.3f%% lies outside every rate bracket; using bracket %s",
			p.InterestRate*constants.PercentageMultiplier, lookup.Bracket))
	}

	if p.EnergyLabel != "" {
		surplus, ok := labelTable.Surplus(p.EnergyLabel)
		if !ok {
			s.logger.Warn("unknown energy label, no surplus applied",
				zap.String("op", "calculator.Affordability"),
				zap.String("energyLabel", p.EnergyLabel),
			)
			result.Warnings = append(result.Warnings, fmt.Sprintf("unknown energy label %q; no surplus applied", p.EnergyLabel))
		}
		result.EnergySurplus = surplus
	}

	result.MaximumMortgage, result.MonthlyPaymentBase = mortgage.MaximumMortgage(
		p.GrossIncome, p.InterestRate, p.TermYears, lookup.Fraction, result.EnergySurplus)
	result.SurplusMonthlyPayment = mortgage.SurplusMonthlyPayment(result.EnergySurplus, p.InterestRate, p.TermYears)
	result.Payments = mortgage.MonthlyPayments(result.MaximumMortgage, p.InterestRate, p.TermYears, p.TaxRate)

	if result.MaximumMortgage <= 0 {
		result.Warnings = append(result.Warnings, "the household income supports no mortgage with these parameters")
	}

	s.logger.Debug("affordability computed",
		zap.String("op", "calculator.Affordability"),
		zap.Float64("grossIncome", p.GrossIncome),
		zap.Float64("interestRate", p.InterestRate),
		zap.Float64("burdenFraction", lookup.Fraction),
		zap.Float64("maximumMortgage", result.MaximumMortgage),
	)
	return result, nil
}

// Schedule amortizes the requested principal, or the maximum mortgage when
// no principal is given.
func (s *Service) Schedule(ctx context.Context, req Request) (ScheduleResult, error) {
	p, err := req.resolve(s.now())
	if err != nil {
		return ScheduleResult{}, err
	}
	return memoize(ctx, s, "schedule", p, func() (ScheduleResult, error) {
		afford, err := s.affordability(p)
		if err != nil {
			return ScheduleResult{}, err
		}
		principal := principalFor(p, afford)

		schedule, ok := mortgage.RunPaymentSimulation(principal, p.InterestRate, p.TermYears, p.TaxRate, p.Start)
		if !ok {
			return ScheduleResult{}, fmt.Errorf("%w: principal %.2f, rate %.4f, term %d years",
				ErrCannotSimulate, principal, p.InterestRate, p.TermYears)
		}

		s.logger.Debug("schedule computed",
			zap.String("op", "calculator.Schedule"),
			zap.Float64("principal", principal),
			zap.Int("months", len(schedule.Rows)),
		)
		return ScheduleResult{
			Affordability: afford,
			Principal:     principal,
			Start:         p.Start,
			Schedule:      schedule,
			Summary:       schedule.Summary(),
		}, nil
	})
}

// Budget inverts the monthly budget into a principal and builds a payment
// curve spanning it and the maximum mortgage.
func (s *Service) Budget(ctx context.Context, req Request) (BudgetResult, error) {
	p, err := req.resolve(s.now())
	if err != nil {
		return BudgetResult{}, err
	}
	return memoize(ctx, s, "budget", p, func() (BudgetResult, error) {
		afford, err := s.affordability(p)
		if err != nil {
			return BudgetResult{}, err
		}

		affordable, ok := mortgage.AffordableByBudget(p.Budget, p.Basis, p.InterestRate, p.TermYears, p.TaxRate)
		if !ok {
			return BudgetResult{}, fmt.Errorf("%w: %.2f %s per month at %.4f over %d years",
				ErrNoBudgetSolution, p.Budget, p.Basis, p.InterestRate, p.TermYears)
		}

		lo, hi, step := mortgage.ComparisonRange(afford.MaximumMortgage, affordable)
		result := BudgetResult{
			Affordability:      afford,
			Budget:             p.Budget,
			Basis:              p.Basis,
			AffordableMortgage: affordable,
			Payments:           mortgage.MonthlyPayments(affordable, p.InterestRate, p.TermYears, p.TaxRate),
			ExceedsMaximum:     affordable > afford.MaximumMortgage,
			RangeLow:           lo,
			RangeHigh:          hi,
			RangeStep:          step,
			Curve:              mortgage.PaymentCurve(lo, hi, step, p.InterestRate, p.TermYears, p.TaxRate),
		}

		s.logger.Debug("budget inverted",
			zap.String("op", "calculator.Budget"),
			zap.Float64("budget", p.Budget),
			zap.String("basis", string(p.Basis)),
			zap.Float64("affordableMortgage", affordable),
		)
		return result, nil
	})
}

// CompareRates simulates every rate scenario over the requested principal,
// or the maximum mortgage when no principal is given.
func (s *Service) CompareRates(ctx context.Context, req Request) (CompareResult, error) {
	p, err := req.resolve(s.now())
	if err != nil {
		return CompareResult{}, err
	}
	return memoize(ctx, s, "compare", p, func() (CompareResult, error) {
		afford, err := s.affordability(p)
		if err != nil {
			return CompareResult{}, err
		}
		principal := principalFor(p, afford)

		comparisons := mortgage.CompareRateScenarios(principal, p.TermYears, p.TaxRate, p.Scenarios, p.Start)
		simulated := 0
		for _, comparison := range comparisons {
			if comparison.Simulated {
				simulated++
			}
		}
		if simulated == 0 {
			return CompareResult{}, fmt.Errorf("%w: no rate scenario could be simulated for principal %.2f",
				ErrCannotSimulate, principal)
		}

		s.logger.Debug("rate scenarios compared",
			zap.String("op", "calculator.CompareRates"),
			zap.Float64("principal", principal),
			zap.Int("scenarios", len(comparisons)),
			zap.Int("simulated", simulated),
		)
		return CompareResult{
			Affordability: afford,
			Principal:     principal,
			Start:         p.Start,
			Scenarios:     comparisons,
		}, nil
	})
}

// Labels returns the selectable energy labels with their surplus.
func (s *Service) Labels(_ context.Context) ([]mortgage.EnergyLabel, error) {
	table, err := s.tables.EnergyLabels(s.labelPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load energy label table: %w", err)
	}
	return table.Entries(), nil
}

func principalFor(p parameters, afford AffordabilityResult) float64 {
	if p.Principal > 0 {
		return p.Principal
	}
	return afford.MaximumMortgage
}

func memoize[T any](ctx context.Context, s *Service, namespace string, p parameters, compute func() (T, error)) (T, error) {
	burdenRevision, err := s.tables.Revision(s.burdenPath)
	if err != nil {
		return compute()
	}
	labelRevision, err := s.tables.Revision(s.labelPath)
	if err != nil {
		return compute()
	}
	key, err := cache.Fingerprint(namespace, cacheKey{
		Parameters:     p,
		BurdenRevision: burdenRevision,
		LabelRevision:  labelRevision,
	})
	if err != nil {
		return compute()
	}

	value, hit, err := cache.Fetch(ctx, s.cache, key, compute)
	if hit {
		s.logger.Debug("served from cache",
			zap.String("op", "calculator."+namespace),
			zap.String("key", key),
		)
	}
	return value, err
}
