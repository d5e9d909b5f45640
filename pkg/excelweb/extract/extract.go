// Package extract derives deterministic test cases from a workbook's
// formula and cached-value views. It performs no formula evaluation: the
// workbook's own last-computed values are the ground truth.
package extract

import (
	"fmt"
	"time"

	"github.com/seolcoding/excelweb/pkg/excelweb/models"
	"github.com/seolcoding/excelweb/pkg/excelweb/refs"
)

// Options bounds extraction.
type Options struct {
	// MaxCases caps the number of per-formula test cases.
	MaxCases int
	// MaxScenarioCells caps the input and output cells sampled into the
	// smoke scenario.
	MaxScenarioCells int
	// Tolerance is the allowed numeric deviation for number-typed cases.
	Tolerance float64
}

// DefaultOptions returns the default extraction bounds.
func DefaultOptions() Options {
	return Options{
		MaxCases:         50,
		MaxScenarioCells: 20,
		Tolerance:        1e-4,
	}
}

// Extract builds a test suite from one workbook snapshot. Formulas whose
// cached value is absent, or that yield no usable input values, are
// skipped rather than reported as errors. Given an unchanged snapshot,
// repeated extraction yields an identical set of test cases.
func Extract(snap *models.Snapshot, opts Options) *models.TestSuite {
	if opts.MaxCases <= 0 {
		opts.MaxCases = DefaultOptions().MaxCases
	}
	if opts.MaxScenarioCells <= 0 {
		opts.MaxScenarioCells = DefaultOptions().MaxScenarioCells
	}
	if opts.Tolerance <= 0 {
		opts.Tolerance = DefaultOptions().Tolerance
	}

	suite := &models.TestSuite{
		SourceID:    snap.BookName,
		GeneratedAt: time.Now(),
	}

	inputCells := make(map[models.CellAddress]struct{})
	outputCells := make(map[models.CellAddress]struct{})

	for _, sheet := range snap.Sheets {
		for _, f := range sheet.Formulas {
			if len(suite.TestCases) >= opts.MaxCases {
				break
			}

			expected, ok := sheet.Values[f.Cell]
			if !ok || expected == nil {
				continue // error state or never computed
			}

			deps := f.Dependencies
			if deps == nil {
				deps = refs.Resolve(f.Text)
			}

			inputs := make(map[models.CellAddress]any, len(deps))
			for _, dep := range deps {
				if val, ok := sheet.Values[dep]; ok && val != nil {
					inputs[dep] = val
				}
			}
			if len(inputs) == 0 {
				continue
			}

			resultType := typeOf(expected)
			tolerance := 0.0
			if resultType == models.ResultNumber {
				tolerance = opts.Tolerance
			}

			suite.TestCases = append(suite.TestCases, models.TestCase{
				FormulaCell:  f.Cell,
				Formula:      f.Text,
				Inputs:       inputs,
				Expected:     expected,
				ExpectedType: resultType,
				Tolerance:    tolerance,
				Description:  fmt.Sprintf("%s!%s: %s", sheet.Name, f.Cell, f.Text),
			})
			outputCells[f.Cell] = struct{}{}
			for dep := range inputs {
				inputCells[dep] = struct{}{}
			}
		}
	}

	suite.TotalInputs = len(inputCells)
	suite.TotalOutputs = len(outputCells)

	if scenario, ok := smokeScenario(snap, inputCells, outputCells, opts.MaxScenarioCells); ok {
		suite.Scenarios = append(suite.Scenarios, scenario)
	}
	return suite
}

// smokeScenario samples the workbook's current input and output values
// into one coarse pass/fail check. Cells are sorted before sampling so
// the scenario is stable across runs.
func smokeScenario(
	snap *models.Snapshot,
	inputCells, outputCells map[models.CellAddress]struct{},
	limit int,
) (models.TestScenario, bool) {
	// Addresses are unqualified, so the same address on a later sheet
	// loses to the earlier one. Same single-sheet limitation as the
	// dependency graph.
	values := make(map[models.CellAddress]any)
	for _, sheet := range snap.Sheets {
		for cell, val := range sheet.Values {
			if _, ok := values[cell]; !ok {
				values[cell] = val
			}
		}
	}

	inputs := sampleValues(inputCells, values, limit)
	outputs := sampleValues(outputCells, values, limit)
	if len(inputs) == 0 || len(outputs) == 0 {
		return models.TestScenario{}, false
	}

	return models.TestScenario{
		Name:            "current-values smoke",
		Description:     "whole-workbook check against the snapshot's current values",
		Inputs:          inputs,
		ExpectedOutputs: outputs,
		Tags:            []string{"smoke", "default"},
	}, true
}

func sampleValues(cells map[models.CellAddress]struct{}, values map[models.CellAddress]any, limit int) map[models.CellAddress]any {
	sorted := make([]models.CellAddress, 0, len(cells))
	for c := range cells {
		sorted = append(sorted, c)
	}
	refs.SortAddresses(sorted)

	out := make(map[models.CellAddress]any)
	for _, c := range sorted {
		if len(out) >= limit {
			break
		}
		if val, ok := values[c]; ok && val != nil {
			out[c] = val
		}
	}
	return out
}

// typeOf infers the result type from a cached value's native kind.
func typeOf(v any) models.ResultType {
	switch v.(type) {
	case bool:
		return models.ResultBoolean
	case int, int64, float64:
		return models.ResultNumber
	case time.Time:
		return models.ResultDate
	case string:
		return models.ResultString
	default:
		return models.ResultString
	}
}
