package models

import "time"

// TestCase pairs a formula's input values with its expected output.
// Inputs and the expected output come from the workbook's own cached
// computed values; the case is immutable once extracted.
type TestCase struct {
	// FormulaCell is the cell whose output the case verifies.
	FormulaCell CellAddress `json:"formula_cell"`
	// Formula is the formula text under test.
	Formula string `json:"formula"`
	// Inputs maps each usable dependency to its cached value.
	Inputs map[CellAddress]any `json:"inputs"`
	// Expected is the cached value of the formula cell.
	Expected any `json:"expected"`
	// ExpectedType is the native kind of the expected value.
	ExpectedType ResultType `json:"expected_type"`
	// Tolerance is the allowed numeric deviation; 0 for non-numeric types.
	Tolerance float64 `json:"tolerance"`
	// Description is a human-readable label for reports.
	Description string `json:"description,omitempty"`
}

// TestScenario aggregates many input and output cells for one coarse
// whole-workbook pass/fail check.
type TestScenario struct {
	// Name labels the scenario.
	Name string `json:"name"`
	// Description explains what the scenario covers.
	Description string `json:"description,omitempty"`
	// Inputs maps input cells to the values to apply.
	Inputs map[CellAddress]any `json:"inputs"`
	// ExpectedOutputs maps output cells to the values they must show.
	ExpectedOutputs map[CellAddress]any `json:"expected_outputs"`
	// Tags allow filtering, e.g. "smoke".
	Tags []string `json:"tags,omitempty"`
}

// TestSuite is the full set of deterministic checks extracted from one
// workbook snapshot. It is reusable across regeneration attempts.
type TestSuite struct {
	// SourceID identifies the workbook snapshot the suite came from.
	SourceID string `json:"source_id"`
	// GeneratedAt is the extraction timestamp.
	GeneratedAt time.Time `json:"generated_at"`
	// TestCases holds the per-formula checks.
	TestCases []TestCase `json:"test_cases"`
	// Scenarios holds the coarse smoke checks.
	Scenarios []TestScenario `json:"scenarios,omitempty"`
	// TotalInputs counts distinct input cells across all cases.
	TotalInputs int `json:"total_inputs"`
	// TotalOutputs counts distinct output cells across all cases.
	TotalOutputs int `json:"total_outputs"`
}
