package models

// SheetSnapshot holds the two aligned views of one sheet: the ordered
// formula view and the cached-value view. Alignment to one workbook
// snapshot is the producer's responsibility.
type SheetSnapshot struct {
	// Name is the sheet name.
	Name string `json:"name"`
	// Formulas is the ordered formula view.
	Formulas []Formula `json:"formulas,omitempty"`
	// Values maps each non-empty cell to its last computed scalar
	// (float64, int64, bool, or string). Absent cells are omitted.
	Values map[CellAddress]any `json:"values,omitempty"`
}

// Snapshot is a workbook's formula and value views at one point in time.
type Snapshot struct {
	// BookName is the workbook file name, without path.
	BookName string `json:"book_name"`
	// Sheets lists the sheets in workbook order.
	Sheets []SheetSnapshot `json:"sheets"`
}
