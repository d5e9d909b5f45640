// Package refs resolves the set of cell addresses a formula references.
package refs

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/xuri/efp"

	"github.com/seolcoding/excelweb/pkg/excelweb/models"
)

// fallbackPattern is the permissive scan used when tokenization yields
// nothing usable: anything shaped like a cell address.
var fallbackPattern = regexp.MustCompile(`[A-Z]+[0-9]+`)

// Resolve extracts every cell address referenced by formulaText, with
// ranges expanded to individual cells. The result is deduplicated and
// sorted. Resolve never fails: malformed fragments degrade to a
// best-effort set, and unparsable formulas fall back to a pattern scan.
//
// Sheet qualifiers ("Sheet1!B2") are stripped from the reference itself;
// cross-sheet targets are not tracked.
func Resolve(formulaText string) []models.CellAddress {
	text := strings.TrimPrefix(strings.TrimSpace(formulaText), "=")
	if text == "" {
		return nil
	}

	seen := make(map[models.CellAddress]struct{})
	tokens := tokenize(text)
	if len(tokens) == 0 {
		fallbackScan(text, seen)
		return sorted(seen)
	}

	for _, token := range tokens {
		if token.TType != efp.TokenTypeOperand || token.TSubType != efp.TokenSubTypeRange {
			continue
		}
		ref := token.TValue
		if i := strings.LastIndex(ref, "!"); i >= 0 {
			ref = ref[i+1:]
		}
		ref = strings.ReplaceAll(ref, "$", "")
		ref = strings.ToUpper(strings.TrimSpace(ref))
		if ref == "" {
			continue
		}

		if strings.Contains(ref, ":") {
			for _, cell := range ExpandRange(ref) {
				seen[cell] = struct{}{}
			}
			continue
		}
		seen[models.CellAddress(ref)] = struct{}{}
	}

	return sorted(seen)
}

// tokenize runs the efp parser, shielding callers from parser panics on
// pathological input.
func tokenize(text string) (tokens []efp.Token) {
	defer func() {
		if recover() != nil {
			tokens = nil
		}
	}()
	parser := efp.ExcelParser()
	return parser.Parse(text)
}

func fallbackScan(text string, seen map[models.CellAddress]struct{}) {
	for _, m := range fallbackPattern.FindAllString(strings.ToUpper(text), -1) {
		seen[models.CellAddress(m)] = struct{}{}
	}
}

// ExpandRange enumerates every cell in a rectangular span like "A1:B3".
// A malformed range (a side that is not a plain cell address) is returned
// as a single literal token.
func ExpandRange(rangeRef string) []models.CellAddress {
	parts := strings.SplitN(rangeRef, ":", 2)
	if len(parts) != 2 {
		return []models.CellAddress{models.CellAddress(rangeRef)}
	}
	startCol, startRow, ok1 := SplitAddress(models.CellAddress(parts[0]))
	endCol, endRow, ok2 := SplitAddress(models.CellAddress(parts[1]))
	if !ok1 || !ok2 {
		return []models.CellAddress{models.CellAddress(rangeRef)}
	}

	c1, c2 := ColumnNumber(startCol), ColumnNumber(endCol)
	if c2 < c1 {
		c1, c2 = c2, c1
	}
	if endRow < startRow {
		startRow, endRow = endRow, startRow
	}

	var cells []models.CellAddress
	for c := c1; c <= c2; c++ {
		col := ColumnName(c)
		for r := startRow; r <= endRow; r++ {
			cells = append(cells, models.CellAddress(col+strconv.Itoa(r)))
		}
	}
	return cells
}

// SplitAddress splits a plain address like "AB12" into its column letters
// and row number. ok is false when the token is not a plain address.
func SplitAddress(addr models.CellAddress) (col string, row int, ok bool) {
	s := string(addr)
	i := 0
	for i < len(s) && s[i] >= 'A' && s[i] <= 'Z' {
		i++
	}
	if i == 0 || i == len(s) {
		return "", 0, false
	}
	row, err := strconv.Atoi(s[i:])
	if err != nil || row < 1 {
		return "", 0, false
	}
	return s[:i], row, true
}

// ColumnNumber converts column letters to a 1-based index (A=1, Z=26, AA=27).
func ColumnNumber(col string) int {
	n := 0
	for i := 0; i < len(col); i++ {
		n = n*26 + int(col[i]-'A'+1)
	}
	return n
}

// ColumnName converts a 1-based column index back to letters.
func ColumnName(n int) string {
	var b []byte
	for n > 0 {
		n--
		b = append([]byte{byte('A' + n%26)}, b...)
		n /= 26
	}
	return string(b)
}

// Less orders addresses by column then row, falling back to string order
// for tokens that are not plain addresses.
func Less(a, b models.CellAddress) bool {
	ac, ar, aok := SplitAddress(a)
	bc, br, bok := SplitAddress(b)
	if aok && bok {
		if an, bn := ColumnNumber(ac), ColumnNumber(bc); an != bn {
			return an < bn
		}
		return ar < br
	}
	if aok != bok {
		return aok
	}
	return a < b
}

// SortAddresses sorts addresses in place using Less.
func SortAddresses(addrs []models.CellAddress) {
	sort.Slice(addrs, func(i, j int) bool { return Less(addrs[i], addrs[j]) })
}

func sorted(seen map[models.CellAddress]struct{}) []models.CellAddress {
	if len(seen) == 0 {
		return nil
	}
	addrs := make([]models.CellAddress, 0, len(seen))
	for a := range seen {
		addrs = append(addrs, a)
	}
	SortAddresses(addrs)
	return addrs
}
