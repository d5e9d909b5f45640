package models

// Method names the handling path a formula was classified into.
type Method string

const (
	// MethodDirect marks formulas rewritable by textual substitution.
	MethodDirect Method = "direct"
	// MethodAdvanced marks formulas that need a higher-capability
	// conversion strategy outside this engine.
	MethodAdvanced Method = "advanced"
)

// ClassificationResult records how a formula should be converted.
type ClassificationResult struct {
	// Formula is the classified formula text.
	Formula string `json:"formula"`
	// IsDirect reports whether textual conversion applies.
	IsDirect bool `json:"is_direct"`
	// Method is "direct" or "advanced".
	Method Method `json:"method"`
}

// ConvertedExpression is the target-language rewrite of a direct formula.
type ConvertedExpression struct {
	// Cell is the address the expression computes.
	Cell CellAddress `json:"cell"`
	// Expression is the rewritten expression text.
	Expression string `json:"expression"`
}
