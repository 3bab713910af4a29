// Package constants provides shared constants for the mortgage-affordability application.
package constants

import "time"

// DateTimeLayout is the format expected in config files and is also the output
// date format.
const DateTimeLayout = "2006-01"

// Financial constants
const (
	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12

	// DecimalPrecision is the precision for currency rounding (2 decimal places)
	DecimalPrecision = 100

	// CurrencyTolerance is the tolerance for currency comparisons (1 cent)
	CurrencyTolerance = 0.01

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0

	// CurrencySymbol prefixes formatted amounts.
	CurrencySymbol = "€"
)

// Mortgage calculator defaults
const (
	// DefaultTaxDeductionRate is the mortgage interest deduction rate in percent.
	DefaultTaxDeductionRate = 37.50

	// DefaultInterestRate is the annual interest rate in percent.
	DefaultInterestRate = 4.0

	// DefaultTermYears is the default loan term.
	DefaultTermYears = 30

	// MaxTermYears is the longest term accepted without a warning.
	MaxTermYears = 50

	// MaxInterestRate is the highest annual rate in percent accepted without a warning.
	MaxInterestRate = 20.0

	// RepaidMilestoneShortMonths and RepaidMilestoneLongMonths are the
	// milestones reported by the rate scenario comparison.
	RepaidMilestoneShortMonths = 60
	RepaidMilestoneLongMonths  = 120
)

// Payment curve range heuristics
const (
	CurveMinimumAmount  = 50_000.0
	CurveRoundingAmount = 50_000.0
	CurveMinimumStep    = 5_000.0
	CurveTargetPoints   = 20
	CurveDefaultMaximum = 1_000_000.0
	CurveHeadroomFactor = 1.5
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatJSON is the JSON output format
	OutputFormatJSON = "json"
)

// Cache backend constants
const (
	CacheBackendNone   = "none"
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"

	// DefaultCacheTTL bounds how long a memoized result is kept.
	DefaultCacheTTL = time.Hour

	// DefaultCacheKeyPrefix namespaces keys in shared Redis instances.
	DefaultCacheKeyPrefix = "mortgage-affordability:"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// ExampleConfigFile is the example configuration file name
	ExampleConfigFile = "config.yaml.example"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the API
	DefaultServerAddress = ":8080"

	// DefaultMaxRequestSizeBytes is the default maximum request body size (64 KB)
	DefaultMaxRequestSizeBytes int64 = 64 * 1024
)
