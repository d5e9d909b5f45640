// Package excelweb analyzes workbook formulas for conversion into
// verifiable web-application logic.
package excelweb

import (
	"log/slog"

	"github.com/seolcoding/excelweb/pkg/excelweb/convert"
	"github.com/seolcoding/excelweb/pkg/excelweb/extract"
)

// Options configures an analysis pass.
type Options struct {
	// Rules drives formula classification and conversion. The zero
	// value means the built-in rule set.
	Rules *convert.Rules
	// Extract bounds test-case extraction.
	Extract extract.Options
	// Logger receives progress and per-sheet warnings; nil discards.
	Logger *slog.Logger
}

// DefaultOptions returns default analysis options.
func DefaultOptions() Options {
	return Options{
		Extract: extract.DefaultOptions(),
	}
}

func (o Options) rules() convert.Rules {
	if o.Rules != nil {
		return *o.Rules
	}
	return convert.DefaultRules()
}
