// Package validation provides common validation utilities.
package validation

import (
	"fmt"
	"strings"

	"github.com/iwvelando/mortgage-affordability/pkg/constants"
)

// OutputFormats lists the supported output formats.
var OutputFormats = []string{constants.OutputFormatPretty, constants.OutputFormatCSV, constants.OutputFormatJSON}

// CacheBackends lists the supported cache backends.
var CacheBackends = []string{constants.CacheBackendNone, constants.CacheBackendMemory, constants.CacheBackendRedis}

// ValidateOutputFormat checks if the output format is one of the supported formats.
func ValidateOutputFormat(format string) error {
	for _, supported := range OutputFormats {
		if format == supported {
			return nil
		}
	}
	return fmt.Errorf("expected output format of %s, got %s", strings.Join(OutputFormats, ", "), format)
}

// ValidateCacheBackend checks the cache backend name. An empty name disables caching.
func ValidateCacheBackend(backend string) error {
	if backend == "" {
		return nil
	}
	normalized := strings.ToLower(strings.TrimSpace(backend))
	for _, supported := range CacheBackends {
		if normalized == supported {
			return nil
		}
	}
	return fmt.Errorf("expected cache backend of %s, got %s", strings.Join(CacheBackends, ", "), backend)
}
