package config

import (
	"github.com/iwvelando/mortgage-affordability/internal/cache"
	"github.com/iwvelando/mortgage-affordability/pkg/mathutil"
)

// IncomeAmounts returns the gross annual income of every earner in order.
func (h Household) IncomeAmounts() []float64 {
	amounts := make([]float64, len(h.Incomes))
	for i, income := range h.Incomes {
		amounts[i] = income.Amount
	}
	return amounts
}

// GrossIncome returns the household's combined gross annual income.
func (h Household) GrossIncome() float64 {
	return mathutil.Sum(h.IncomeAmounts()...)
}

// ToCacheOptions converts the cache section to cache backend options.
func (c CacheConfig) ToCacheOptions() cache.Options {
	return cache.Options{
		Backend:  c.Backend,
		Address:  c.Address,
		Password: c.Password,
		DB:       c.DB,
		TTL:      c.TTL,
		Prefix:   c.Prefix,
	}
}
