// Package config defines the data structures related to configuration and
// includes functions for loading, defaulting and validating the config.
package config

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/iwvelando/mortgage-affordability/pkg/constants"
	"github.com/iwvelando/mortgage-affordability/pkg/datetime"
	"github.com/iwvelando/mortgage-affordability/pkg/mortgage"
	"github.com/iwvelando/mortgage-affordability/pkg/validation"
	"github.com/spf13/viper"
)

// DateTimeLayout is the format expected in config files and is also the output
// date format.
const DateTimeLayout = constants.DateTimeLayout

// envPrefix namespaces environment overrides, e.g. MORTGAGE_MORTGAGE_INTERESTRATE.
const envPrefix = "MORTGAGE"

// Configuration holds all configuration for mortgage-affordability.
type Configuration struct {
	Household     Household      `yaml:"household"`
	Mortgage      Mortgage       `yaml:"mortgage"`
	Budget        Budget         `yaml:"budget,omitempty"`
	RateScenarios []RateScenario `yaml:"rateScenarios,omitempty"`
	Tables        TablesConfig   `yaml:"tables,omitempty"`
	Cache         CacheConfig    `yaml:"cache,omitempty"`
	Logging       LoggingConfig  `yaml:"logging,omitempty"`
	Output        OutputConfig   `yaml:"output,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv, json
}

// Household lists the gross annual incomes that count towards the mortgage.
type Household struct {
	Incomes []Income `yaml:"incomes"`
}

// Income is one earner's gross annual income.
type Income struct {
	Name   string  `yaml:"name,omitempty"`
	Amount float64 `yaml:"amount"`
}

// Mortgage holds the loan parameters. Rates are percentages.
type Mortgage struct {
	InterestRate     float64 `yaml:"interestRate"`
	TermYears        int     `yaml:"termYears"`
	EnergyLabel      string  `yaml:"energyLabel,omitempty"`
	TaxDeductionRate float64 `yaml:"taxDeductionRate"`
	StartDate        string  `yaml:"startDate,omitempty"` // YYYY-MM, empty means the current month
	Principal        float64 `yaml:"principal,omitempty"` // 0 means the maximum mortgage
}

// Budget is the monthly payment the household is willing to make.
type Budget struct {
	MaxPayment float64 `yaml:"maxPayment,omitempty"`
	Basis      string  `yaml:"basis,omitempty"` // gross or net
}

// RateScenario is an alternative interest rate (in percent) to compare.
type RateScenario struct {
	Label        string  `yaml:"label"`
	InterestRate float64 `yaml:"interestRate"`
}

// TablesConfig points at reference table files; empty paths use the built-in tables.
type TablesConfig struct {
	FinancingBurden string `yaml:"financingBurden,omitempty"`
	EnergyLabels    string `yaml:"energyLabels,omitempty"`
}

// CacheConfig selects where calculation results are memoized.
type CacheConfig struct {
	Backend  string        `yaml:"backend,omitempty"` // none, memory, redis
	Address  string        `yaml:"address,omitempty"`
	Password string        `yaml:"password,omitempty"`
	DB       int           `yaml:"db,omitempty"`
	TTL      time.Duration `yaml:"ttl,omitempty"`
	Prefix   string        `yaml:"prefix,omitempty"`
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := newViper()
	v.SetConfigFile(configPath)
	v.SetConfigType("yml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %w", err)
	}
	return decode(v)
}

// LoadConfigurationFromReader loads a YAML-formatted configuration from r.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := newViper()
	v.SetConfigType("yml")

	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config data, %w", err)
	}
	return decode(v)
}

// Default returns the configuration used when no file is supplied.
func Default() *Configuration {
	conf, err := decode(newViper())
	if err != nil {
		// Defaults alone always decode.
		panic(err)
	}
	return conf
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("mortgage.interestRate", constants.DefaultInterestRate)
	v.SetDefault("mortgage.termYears", constants.DefaultTermYears)
	v.SetDefault("mortgage.taxDeductionRate", constants.DefaultTaxDeductionRate)
	v.SetDefault("mortgage.energyLabel", "")
	v.SetDefault("mortgage.startDate", "")
	v.SetDefault("mortgage.principal", 0)
	v.SetDefault("budget.maxPayment", 0)
	v.SetDefault("budget.basis", string(mortgage.BasisNet))
	v.SetDefault("tables.financingBurden", "")
	v.SetDefault("tables.energyLabels", "")
	v.SetDefault("cache.backend", constants.CacheBackendNone)
	v.SetDefault("cache.ttl", constants.DefaultCacheTTL)
	v.SetDefault("cache.prefix", constants.DefaultCacheKeyPrefix)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("output.format", constants.OutputFormatPretty)
	return v
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}
	return &configuration, nil
}

// StartTime resolves the mortgage start month, defaulting to the month of now.
func (c *Configuration) StartTime(now time.Time) (time.Time, error) {
	return datetime.ParseMonth(c.Mortgage.StartDate, now)
}

// ValidateConfiguration performs general validation of the configuration and returns warnings
func (c *Configuration) ValidateConfiguration() []string {
	var warnings []string

	names := make([]string, len(c.Household.Incomes))
	for i, income := range c.Household.Incomes {
		names[i] = income.Name
	}
	warnings = append(warnings, validation.ValidateIncomes(names, c.Household.IncomeAmounts())...)
	warnings = append(warnings, validation.ValidateInterestRate("Mortgage", c.Mortgage.InterestRate)...)
	warnings = append(warnings, validation.ValidateTerm(c.Mortgage.TermYears)...)
	warnings = append(warnings, validation.ValidateTaxDeductionRate(c.Mortgage.TaxDeductionRate)...)

	if _, err := c.StartTime(time.Now()); err != nil {
		warnings = append(warnings, fmt.Sprintf("Mortgage start date is invalid: %v", err))
	}
	if c.Mortgage.Principal < 0 {
		warnings = append(warnings, fmt.Sprintf("Mortgage principal %.2f is negative; the maximum mortgage is used instead", c.Mortgage.Principal))
	}

	if c.Budget.MaxPayment < 0 {
		warnings = append(warnings, fmt.Sprintf("Budget max payment %.2f is negative", c.Budget.MaxPayment))
	}
	if _, err := mortgage.ParsePaymentBasis(c.Budget.Basis); err != nil {
		warnings = append(warnings, fmt.Sprintf("Budget basis: %v", err))
	}

	for i, scenario := range c.RateScenarios {
		name := scenario.Label
		if strings.TrimSpace(name) == "" {
			name = fmt.Sprintf("Rate scenario #%d", i+1)
		}
		warnings = append(warnings, validation.ValidateInterestRate(name, scenario.InterestRate)...)
	}

	if err := validation.ValidateCacheBackend(c.Cache.Backend); err != nil {
		warnings = append(warnings, err.Error())
	}
	if strings.EqualFold(strings.TrimSpace(c.Cache.Backend), constants.CacheBackendRedis) && c.Cache.Address == "" {
		warnings = append(warnings, "Redis cache selected without an address")
	}
	if c.Output.Format != "" {
		if err := validation.ValidateOutputFormat(c.Output.Format); err != nil {
			warnings = append(warnings, err.Error())
		}
	}

	return warnings
}
