package verify

import (
	"fmt"
	"strings"

	"github.com/seolcoding/excelweb/pkg/excelweb/models"
)

// BindingConventionVersion identifies the element-binding contract shared
// between artifact generators and this harness. Generators targeting a
// different version cannot be verified reliably.
const BindingConventionVersion = 1

// CalculateSelector matches the artifact's primary computation control
// when it is bound explicitly.
const CalculateSelector = `[data-action="calculate"]`

// calculateLabelPattern matches a calculate affordance by its visible
// label when no explicit binding is present. The pattern is compiled by
// the page as a JavaScript RegExp, so flags use the slash-delimited form.
const calculateLabelPattern = `/calculate|계산/i`

// submitSelector is the last-resort calculate affordance.
const submitSelector = `button[type="submit"]`

// CellSelectors returns the ordered fallback chain used to locate the
// element bound to a cell, identical for inputs and outputs:
//
//  1. explicit per-cell binding attribute (data-cell)
//  2. id equal to the lowercased address
//  3. name attribute equal to the lowercased address
//  4. any id containing the lowercased address
func CellSelectors(cell models.CellAddress) []string {
	lower := strings.ToLower(string(cell))
	return []string{
		fmt.Sprintf(`[data-cell=%q]`, string(cell)),
		"#" + lower,
		fmt.Sprintf(`[name=%q]`, lower),
		fmt.Sprintf(`[id*=%q]`, lower),
	}
}
