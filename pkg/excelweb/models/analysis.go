package models

// Complexity is a coarse workbook difficulty grade.
type Complexity string

const (
	// ComplexityLow marks workbooks with few formulas and sheets.
	ComplexityLow Complexity = "low"
	// ComplexityMedium marks moderately sized workbooks.
	ComplexityMedium Complexity = "medium"
	// ComplexityHigh marks workbooks with many formulas, deep chains,
	// or dependency cycles.
	ComplexityHigh Complexity = "high"
)

// SheetInfo is the analysis report for a single sheet.
type SheetInfo struct {
	// Name is the sheet name.
	Name string `json:"name"`
	// InputCells lists cells referenced by formulas but holding none.
	InputCells []CellAddress `json:"input_cells,omitempty"`
	// OutputCells lists the formula cells, sorted.
	OutputCells []CellAddress `json:"output_cells,omitempty"`
	// Formulas is the sheet's formula view.
	Formulas []Formula `json:"formulas,omitempty"`
	// Graph is the sheet's dependency report.
	Graph *DependencyGraph `json:"graph,omitempty"`
	// Classifications records the handling path per formula, aligned
	// with Formulas.
	Classifications []ClassificationResult `json:"classifications,omitempty"`
}

// Analysis is the workbook-level report produced by one analysis pass.
type Analysis struct {
	// BookName is the workbook file name, without path.
	BookName string `json:"book_name"`
	// Sheets lists per-sheet reports in workbook order.
	Sheets []SheetInfo `json:"sheets"`
	// TotalFormulas counts formulas across all sheets.
	TotalFormulas int `json:"total_formulas"`
	// TotalInputs counts input cells across all sheets.
	TotalInputs int `json:"total_inputs"`
	// TotalOutputs counts output cells across all sheets.
	TotalOutputs int `json:"total_outputs"`
	// DirectFormulas counts formulas classified for direct conversion.
	DirectFormulas int `json:"direct_formulas"`
	// AdvancedFormulas counts formulas needing advanced handling.
	AdvancedFormulas int `json:"advanced_formulas"`
	// Complexity is the coarse difficulty grade.
	Complexity Complexity `json:"complexity"`
}
