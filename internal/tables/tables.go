// Package tables loads the financing burden and energy label reference tables
// from YAML or XLSX files and keeps parsed copies for reuse.
package tables

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/iwvelando/mortgage-affordability/pkg/mortgage"
	"gopkg.in/yaml.v3"
)

//go:embed data/*.yaml
var builtinTables embed.FS

const (
	builtinBurdenFile = "data/financing_burden_2025.yaml"
	builtinLabelFile  = "data/energy_labels.yaml"
)

// ErrUnsupportedFormat is returned for table files that are neither YAML nor XLSX.
var ErrUnsupportedFormat = errors.New("unsupported table format")

// Format identifies the encoding of a table file.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatXLSX Format = "xlsx"
)

// DetectFormat infers the table format from a file extension.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".xlsx":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

type burdenDocument struct {
	Name     string                 `yaml:"name"`
	Brackets []mortgage.RateBracket `yaml:"brackets"`
	Rows     []burdenRow            `yaml:"rows"`
}

type burdenRow struct {
	Income    float64   `yaml:"income"`
	Fractions []float64 `yaml:"fractions"`
}

type labelDocument struct {
	Name   string                 `yaml:"name"`
	Labels []mortgage.EnergyLabel `yaml:"labels"`
}

// LoadFinancingBurden reads a financing burden table from a YAML or XLSX file.
func LoadFinancingBurden(path string) (*mortgage.FinancingBurdenTable, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open financing burden table: %w", err)
	}
	defer file.Close()

	table, err := ReadFinancingBurden(file, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return table, nil
}

// ReadFinancingBurden parses a financing burden table in the given format.
func ReadFinancingBurden(r io.Reader, format Format) (*mortgage.FinancingBurdenTable, error) {
	switch format {
	case FormatYAML:
		var doc burdenDocument
		if err := decodeYAML(r, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse financing burden table: %w", err)
		}
		incomes := make([]float64, len(doc.Rows))
		fractions := make([][]float64, len(doc.Rows))
		for i, row := range doc.Rows {
			incomes[i] = row.Income
			fractions[i] = row.Fractions
		}
		return mortgage.NewFinancingBurdenTable(incomes, doc.Brackets, fractions)
	case FormatXLSX:
		return readFinancingBurdenXLSX(r)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

// LoadEnergyLabels reads an energy label table from a YAML or XLSX file.
func LoadEnergyLabels(path string) (*mortgage.EnergyLabelTable, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open energy label table: %w", err)
	}
	defer file.Close()

	table, err := ReadEnergyLabels(file, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return table, nil
}

// ReadEnergyLabels parses an energy label table in the given format.
func ReadEnergyLabels(r io.Reader, format Format) (*mortgage.EnergyLabelTable, error) {
	switch format {
	case FormatYAML:
		var doc labelDocument
		if err := decodeYAML(r, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse energy label table: %w", err)
		}
		return mortgage.NewEnergyLabelTable(doc.Labels)
	case FormatXLSX:
		return readEnergyLabelsXLSX(r)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

// BuiltinFinancingBurden returns the financing burden table shipped with the binary.
func BuiltinFinancingBurden() (*mortgage.FinancingBurdenTable, error) {
	data, err := builtinTables.ReadFile(builtinBurdenFile)
	if err != nil {
		return nil, err
	}
	return ReadFinancingBurden(bytes.NewReader(data), FormatYAML)
}

// BuiltinEnergyLabels returns the energy label table shipped with the binary.
func BuiltinEnergyLabels() (*mortgage.EnergyLabelTable, error) {
	data, err := builtinTables.ReadFile(builtinLabelFile)
	if err != nil {
		return nil, err
	}
	return ReadEnergyLabels(bytes.NewReader(data), FormatYAML)
}

func decodeYAML(r io.Reader, out interface{}) error {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	return nil
}
