package csv

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/shubhamr/rawmat/pkg/domain/entities"
)

// Loader handles loading estimator configuration tables from CSV files
type Loader struct{}

// NewLoader creates a new CSV loader
func NewLoader() *Loader {
	return &Loader{}
}

// LoadMachineTable loads available cylinder and paper roll sizes from
// a CSV file. The two columns are independent lists: a row may leave
// either cell blank when one list is longer than the other.
func (l *Loader) LoadMachineTable(filename string) (*entities.MachineTable, error) {
	records, err := readAll(filename)
	if err != nil {
		return nil, fmt.Errorf("machines CSV: %w", err)
	}

	expectedHeader := []string{"cylinder_mm", "paper_roll_mm"}
	if !validateHeader(records[0], expectedHeader) {
		return nil, fmt.Errorf("machines CSV header mismatch. Expected: %v, Got: %v", expectedHeader, records[0])
	}

	var cylinders, paperRolls []decimal.Decimal
	for i, record := range records[1:] {
		if len(record) != len(expectedHeader) {
			return nil, fmt.Errorf("machines CSV row %d: expected %d columns, got %d", i+2, len(expectedHeader), len(record))
		}

		if cell := strings.TrimSpace(record[0]); cell != "" {
			size, err := decimal.NewFromString(cell)
			if err != nil {
				return nil, fmt.Errorf("machines CSV row %d: invalid cylinder_mm: %s", i+2, cell)
			}
			cylinders = append(cylinders, size)
		}
		if cell := strings.TrimSpace(record[1]); cell != "" {
			size, err := decimal.NewFromString(cell)
			if err != nil {
				return nil, fmt.Errorf("machines CSV row %d: invalid paper_roll_mm: %s", i+2, cell)
			}
			paperRolls = append(paperRolls, size)
		}
	}

	table, err := entities.NewMachineTable(cylinders, paperRolls)
	if err != nil {
		return nil, fmt.Errorf("machines CSV: %w", err)
	}
	return table, nil
}

// LoadMaterialRules loads the material consumption rules table from a
// CSV file. job_types is a semicolon separated list; empty means the
// rule applies to every job type.
func (l *Loader) LoadMaterialRules(filename string) ([]entities.MaterialRule, error) {
	records, err := readAll(filename)
	if err != nil {
		return nil, fmt.Errorf("rules CSV: %w", err)
	}

	expectedHeader := []string{"material", "basis", "factor", "unit", "precision", "position", "requires_printing", "job_types"}
	if !validateHeader(records[0], expectedHeader) {
		return nil, fmt.Errorf("rules CSV header mismatch. Expected: %v, Got: %v", expectedHeader, records[0])
	}

	var rules []entities.MaterialRule
	for i, record := range records[1:] {
		if len(record) != len(expectedHeader) {
			return nil, fmt.Errorf("rules CSV row %d: expected %d columns, got %d", i+2, len(expectedHeader), len(record))
		}

		rule, err := parseRule(record)
		if err != nil {
			return nil, fmt.Errorf("rules CSV row %d: %w", i+2, err)
		}
		rules = append(rules, rule)
	}

	return rules, nil
}

func readAll(filename string) ([][]string, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", filename, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filename, err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("%s must have header and at least one data row", filename)
	}
	return records, nil
}

func validateHeader(actual, expected []string) bool {
	if len(actual) != len(expected) {
		return false
	}
	for i, col := range expected {
		if strings.ToLower(strings.TrimSpace(actual[i])) != col {
			return false
		}
	}
	return true
}

func parseRule(record []string) (entities.MaterialRule, error) {
	material := entities.Material(strings.TrimSpace(record[0]))
	if material == "" {
		return entities.MaterialRule{}, fmt.Errorf("material cannot be empty")
	}

	basis, err := entities.ParseRuleBasis(strings.TrimSpace(record[1]))
	if err != nil {
		return entities.MaterialRule{}, err
	}

	factor, err := decimal.NewFromString(strings.TrimSpace(record[2]))
	if err != nil {
		return entities.MaterialRule{}, fmt.Errorf("invalid factor: %s", record[2])
	}

	unit := strings.TrimSpace(record[3])
	if unit == "" {
		return entities.MaterialRule{}, fmt.Errorf("unit cannot be empty")
	}

	precision, err := strconv.ParseInt(strings.TrimSpace(record[4]), 10, 32)
	if err != nil {
		return entities.MaterialRule{}, fmt.Errorf("invalid precision: %s", record[4])
	}

	position, err := strconv.Atoi(strings.TrimSpace(record[5]))
	if err != nil || position <= 0 {
		return entities.MaterialRule{}, fmt.Errorf("invalid position: %s", record[5])
	}

	requiresPrinting, err := strconv.ParseBool(strings.TrimSpace(record[6]))
	if err != nil {
		return entities.MaterialRule{}, fmt.Errorf("invalid requires_printing: %s", record[6])
	}

	var jobTypes []entities.JobType
	if cell := strings.TrimSpace(record[7]); cell != "" {
		for _, name := range strings.Split(cell, ";") {
			jobType, err := entities.ParseJobType(name)
			if err != nil {
				return entities.MaterialRule{}, err
			}
			jobTypes = append(jobTypes, jobType)
		}
	}

	return entities.MaterialRule{
		Material:         material,
		Basis:            basis,
		Factor:           factor,
		Unit:             unit,
		Precision:        int32(precision),
		Position:         position,
		RequiresPrinting: requiresPrinting,
		JobTypes:         jobTypes,
	}, nil
}
