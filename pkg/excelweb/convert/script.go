package convert

import (
	"fmt"
	"strings"

	"github.com/seolcoding/excelweb/pkg/excelweb/models"
)

// HelperScript is the JavaScript prelude the rewritten expressions call
// into. Generated artifacts must embed it ahead of any converted
// expression.
const HelperScript = `// Formula helper functions
function _sum(...args) {
    return args.flat().reduce((a, b) => (parseFloat(a) || 0) + (parseFloat(b) || 0), 0);
}

function _sumRange(rangeData) {
    if (Array.isArray(rangeData)) {
        return rangeData.flat().reduce((a, b) => (parseFloat(a) || 0) + (parseFloat(b) || 0), 0);
    }
    return parseFloat(rangeData) || 0;
}

function _average(...args) {
    const flat = args.flat().filter(x => x !== null && x !== '' && !isNaN(x));
    return flat.length ? _sum(...flat) / flat.length : 0;
}

function _averageRange(rangeData) {
    if (Array.isArray(rangeData)) {
        const flat = rangeData.flat().filter(x => x !== null && x !== '' && !isNaN(x));
        return flat.length ? _sumRange(flat) / flat.length : 0;
    }
    return parseFloat(rangeData) || 0;
}

function _count(...args) {
    return args.flat().filter(x => typeof x === 'number' && !isNaN(x)).length;
}

function _counta(...args) {
    return args.flat().filter(x => x !== null && x !== '' && x !== undefined).length;
}

function _and(...args) {
    return args.every(x => Boolean(x));
}

function _or(...args) {
    return args.some(x => Boolean(x));
}

function _round(num, digits = 0) {
    const factor = Math.pow(10, digits);
    return Math.round(num * factor) / factor;
}

function _roundUp(num, digits = 0) {
    const factor = Math.pow(10, digits);
    return Math.ceil(num * factor) / factor;
}

function _roundDown(num, digits = 0) {
    const factor = Math.pow(10, digits);
    return Math.floor(num * factor) / factor;
}

function _len(text) {
    return String(text).length;
}

function _left(text, numChars = 1) {
    return String(text).substring(0, numChars);
}

function _right(text, numChars = 1) {
    const str = String(text);
    return str.substring(str.length - numChars);
}

function _mid(text, startNum, numChars) {
    return String(text).substring(startNum - 1, startNum - 1 + numChars);
}

function _trim(text) {
    return String(text).trim();
}

function _upper(text) {
    return String(text).toUpperCase();
}

function _lower(text) {
    return String(text).toLowerCase();
}

function _concat(...args) {
    return args.join('');
}

function formatNumber(num, decimals = 0) {
    return new Intl.NumberFormat('ko-KR', {
        minimumFractionDigits: decimals,
        maximumFractionDigits: decimals
    }).format(num);
}

function formatCurrency(num) {
    return new Intl.NumberFormat('ko-KR', {
        style: 'currency',
        currency: 'KRW',
        maximumFractionDigits: 0
    }).format(num);
}

function formatPercent(num, decimals = 1) {
    return new Intl.NumberFormat('ko-KR', {
        style: 'percent',
        minimumFractionDigits: decimals,
        maximumFractionDigits: decimals
    }).format(num / 100);
}
`

// CalculationScript assembles a calculate() function that evaluates the
// given formulas in the order supplied, which should be a valid
// calculation order. Formulas the classifier rejects are emitted as
// commented placeholders for the advanced conversion path.
func (c *Converter) CalculationScript(formulas []models.Formula, cellMap map[models.CellAddress]string) string {
	var b strings.Builder
	b.WriteString("function calculate() {\n")
	for _, f := range formulas {
		target, ok := cellMap[f.Cell]
		if !ok {
			target = fmt.Sprintf("data['%s']", f.Cell)
		}
		converted, err := c.Convert(f.Cell, f.Text, cellMap)
		if err != nil {
			fmt.Fprintf(&b, "    // requires advanced handling: %s = %s\n", f.Cell, f.Text)
			continue
		}
		fmt.Fprintf(&b, "    %s = %s;\n", target, converted.Expression)
	}
	b.WriteString("}")
	return b.String()
}
