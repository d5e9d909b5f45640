// Package models defines data structures shared across the conversion engine.
package models

// CellAddress is a spreadsheet coordinate such as "B10".
// Addresses are compared and keyed as plain strings; sheet qualifiers are
// stripped before an address enters the model.
type CellAddress string

// ResultType classifies the value a formula or cell produces.
type ResultType string

const (
	// ResultNumber marks a numeric result.
	ResultNumber ResultType = "number"
	// ResultString marks a text result.
	ResultString ResultType = "string"
	// ResultBoolean marks a true/false result.
	ResultBoolean ResultType = "boolean"
	// ResultDate marks a date or timestamp result.
	ResultDate ResultType = "date"
)

// Formula is a cell formula together with its resolved dependencies.
// Instances are immutable for the lifetime of one analysis pass.
type Formula struct {
	// Cell is the address holding the formula.
	Cell CellAddress `json:"cell"`
	// Text is the formula source, including the leading "=".
	Text string `json:"formula"`
	// Dependencies lists the cell addresses the formula references,
	// with ranges expanded and duplicates removed.
	Dependencies []CellAddress `json:"dependencies,omitempty"`
	// ResultType is the inferred type of the formula's result.
	ResultType ResultType `json:"result_type"`
}
