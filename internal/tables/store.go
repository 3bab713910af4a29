package tables

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/iwvelando/mortgage-affordability/pkg/mortgage"
	"go.uber.org/zap"
)

// Store loads reference tables on first use and serves the parsed copy
// until the underlying file changes. An empty path selects the built-in table.
type Store struct {
	logger *zap.Logger

	mu     sync.Mutex
	burden map[string]burdenEntry
	labels map[string]labelEntry
}

type burdenEntry struct {
	modTime time.Time
	table   *mortgage.FinancingBurdenTable
}

type labelEntry struct {
	modTime time.Time
	table   *mortgage.EnergyLabelTable
}

// NewStore returns an empty table store.
func NewStore(logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		logger: logger,
		burden: make(map[string]burdenEntry),
		labels: make(map[string]labelEntry),
	}
}

// FinancingBurden returns the financing burden table stored at path.
func (s *Store) FinancingBurden(path string) (*mortgage.FinancingBurdenTable, error) {
	key, modTime, err := resolve(path)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if entry, ok := s.burden[key]; ok && entry.modTime.Equal(modTime) {
		return entry.table, nil
	}

	var table *mortgage.FinancingBurdenTable
	if key == "" {
		table, err = BuiltinFinancingBurden()
	} else {
		table, err = LoadFinancingBurden(key)
	}
	if err != nil {
		return nil, err
	}

	s.burden[key] = burdenEntry{modTime: modTime, table: table}
	s.logger.Debug("loaded financing burden table",
		zap.String("op", "tables.Store.FinancingBurden"),
		zap.String("path", displayPath(key)),
		zap.Int("incomes", len(table.Incomes())),
		zap.Int("brackets", len(table.Brackets())),
	)
	return table, nil
}

// EnergyLabels returns the energy label table stored at path.
func (s *Store) EnergyLabels(path string) (*mortgage.EnergyLabelTable, error) {
	key, modTime, err := resolve(path)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if entry, ok := s.labels[key]; ok && entry.modTime.Equal(modTime) {
		return entry.table, nil
	}

	var table *mortgage.EnergyLabelTable
	if key == "" {
		table, err = BuiltinEnergyLabels()
	} else {
		table, err = LoadEnergyLabels(key)
	}
	if err != nil {
		return nil, err
	}

	s.labels[key] = labelEntry{modTime: modTime, table: table}
	s.logger.Debug("loaded energy label table",
		zap.String("op", "tables.Store.EnergyLabels"),
		zap.String("path", displayPath(key)),
		zap.Int("labels", len(table.Labels())),
	)
	return table, nil
}

// Revision identifies the version of the table at path that the store
// would serve. It changes whenever the file is modified.
func (s *Store) Revision(path string) (string, error) {
	key, modTime, err := resolve(path)
	if err != nil {
		return "", err
	}
	if key == "" {
		return displayPath(key), nil
	}
	return key + "@" + modTime.UTC().Format(time.RFC3339Nano), nil
}

func resolve(path string) (string, time.Time, error) {
	if path == "" {
		return "", time.Time{}, nil
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to resolve table path %s: %w", path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to stat table %s: %w", path, err)
	}
	return abs, info.ModTime(), nil
}

func displayPath(key string) string {
	if key == "" {
		return "builtin"
	}
	return key
}
