package convert

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/seolcoding/excelweb/pkg/excelweb/models"
)

// ErrAdvancedFormula is returned when Convert is asked to rewrite a
// formula the classifier marked as advanced. Such formulas belong to a
// higher-capability conversion path outside this engine.
var ErrAdvancedFormula = errors.New("formula requires advanced handling")

// cellRefPattern matches cell references, optionally sheet-qualified and
// optionally carrying absolute markers.
var cellRefPattern = regexp.MustCompile(`(?i)(?:[\w\s]+!)?\$?([A-Z]+)\$?(\d+)`)

type headRule struct {
	re *regexp.Regexp
	to string
}

// Converter rewrites directly convertible formulas into JavaScript
// expressions. A Converter is a pure function of its rule set and safe
// for concurrent use.
type Converter struct {
	rules      Rules
	classifier *Classifier
	renames    []headRule
	nullary    []headRule
	sumHead    *regexp.Regexp
	avgHead    *regexp.Regexp
	ifHead     *regexp.Regexp
	notHead    *regexp.Regexp
}

// NewConverter precompiles the rewrite table for the given rules.
func NewConverter(rules Rules) *Converter {
	c := &Converter{
		rules:      rules,
		classifier: NewClassifier(rules),
		sumHead:    headPattern("SUM"),
		avgHead:    headPattern("AVERAGE"),
		ifHead:     headPattern("IF"),
		notHead:    headPattern("NOT"),
	}
	for _, r := range rules.Renames {
		c.renames = append(c.renames, headRule{re: headPattern(r.From), to: r.To + "("})
	}
	for name, repl := range rules.Nullary {
		c.nullary = append(c.nullary, headRule{
			re: regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(name) + `\s*\(\s*\)`),
			to: repl,
		})
	}
	return c
}

func headPattern(name string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(name) + `\s*\(`)
}

// Classify exposes the converter's classifier.
func (c *Converter) Classify(formulaText string) models.ClassificationResult {
	return c.classifier.Classify(formulaText)
}

// Convert rewrites a directly convertible formula into a JavaScript
// expression. Cell references resolve through cellMap when present, and
// to an indexed data lookup keyed by the address otherwise. Advanced
// formulas are rejected with ErrAdvancedFormula before any rewriting.
//
// Convert is deterministic and leaves unrecognized tokens unchanged.
func (c *Converter) Convert(cell models.CellAddress, formulaText string, cellMap map[models.CellAddress]string) (models.ConvertedExpression, error) {
	if !c.classifier.Classify(formulaText).IsDirect {
		return models.ConvertedExpression{}, fmt.Errorf("convert %s: %w", cell, ErrAdvancedFormula)
	}

	expr := strings.TrimPrefix(strings.TrimSpace(formulaText), "=")
	expr = c.replaceCellRefs(expr, cellMap)
	expr = rewriteAggregate(expr, c.sumHead, "_sumRange", "_sum")
	expr = rewriteAggregate(expr, c.avgHead, "_averageRange", "_average")
	expr = rewriteIF(expr, c.ifHead)
	expr = c.notHead.ReplaceAllString(expr, "!(")
	for _, r := range c.nullary {
		expr = r.re.ReplaceAllString(expr, r.to)
	}
	for _, r := range c.renames {
		expr = r.re.ReplaceAllString(expr, r.to)
	}
	expr = strings.ReplaceAll(expr, "^", "**")
	expr = strings.ReplaceAll(expr, "<>", "!==")

	return models.ConvertedExpression{Cell: cell, Expression: expr}, nil
}

// replaceCellRefs swaps each cell reference for its access expression.
func (c *Converter) replaceCellRefs(expr string, cellMap map[models.CellAddress]string) string {
	return cellRefPattern.ReplaceAllStringFunc(expr, func(ref string) string {
		m := cellRefPattern.FindStringSubmatch(ref)
		addr := models.CellAddress(strings.ToUpper(m[1]) + m[2])
		if mapped, ok := cellMap[addr]; ok {
			return mapped
		}
		return fmt.Sprintf("data['%s']", addr)
	})
}

// rewriteAggregate rewrites every call of one aggregate head, choosing
// the range helper when the argument list contains a range separator and
// the variadic helper otherwise. Calls are rewritten outermost first and
// rescanned, so nested occurrences flatten completely.
func rewriteAggregate(expr string, head *regexp.Regexp, rangeHelper, argsHelper string) string {
	searchFrom := 0
	for {
		loc := head.FindStringIndex(expr[searchFrom:])
		if loc == nil {
			return expr
		}
		start := searchFrom + loc[0]
		open := searchFrom + loc[1] - 1
		close := matchParen(expr, open)
		if close < 0 {
			searchFrom = open + 1
			continue
		}
		args := expr[open+1 : close]
		helper := argsHelper
		if topLevelColon(args) {
			helper = rangeHelper
		}
		expr = expr[:start] + helper + "(" + args + ")" + expr[close+1:]
		searchFrom = start + len(helper) + 1
	}
}

// rewriteIF turns IF(cond, then, else) into a parenthesized ternary,
// repeating until no IF call remains so nested IFs fully flatten.
func rewriteIF(expr string, head *regexp.Regexp) string {
	searchFrom := 0
	for {
		loc := head.FindStringIndex(expr[searchFrom:])
		if loc == nil {
			return expr
		}
		start := searchFrom + loc[0]
		open := searchFrom + loc[1] - 1
		close := matchParen(expr, open)
		if close < 0 {
			searchFrom = open + 1
			continue
		}
		parts := splitArgs(expr[open+1 : close])
		if len(parts) != 3 {
			searchFrom = open + 1
			continue
		}
		repl := "(" + parts[0] + " ? " + parts[1] + " : " + parts[2] + ")"
		expr = expr[:start] + repl + expr[close+1:]
		// Restart: the replacement may contain inner IF calls.
		searchFrom = 0
	}
}

// topLevelColon reports whether s contains a range separator outside any
// nested call or string literal.
func topLevelColon(s string) bool {
	depth := 0
	inDouble, inSingle := false, false
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"':
			if !inSingle {
				inDouble = !inDouble
			}
		case '\'':
			if !inDouble {
				inSingle = !inSingle
			}
		case '(':
			if !inDouble && !inSingle {
				depth++
			}
		case ')':
			if !inDouble && !inSingle {
				depth--
			}
		case ':':
			if depth == 0 && !inDouble && !inSingle {
				return true
			}
		}
	}
	return false
}

// matchParen returns the index of the parenthesis closing the one at
// open, honoring string literals, or -1 if unbalanced.
func matchParen(s string, open int) int {
	depth := 0
	inDouble, inSingle := false, false
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '"':
			if !inSingle {
				inDouble = !inDouble
			}
		case '\'':
			if !inDouble {
				inSingle = !inSingle
			}
		case '(':
			if !inDouble && !inSingle {
				depth++
			}
		case ')':
			if !inDouble && !inSingle {
				depth--
				if depth == 0 {
					return i
				}
			}
		}
	}
	return -1
}

// splitArgs splits an argument list on top-level commas, honoring nested
// parentheses and string literals.
func splitArgs(s string) []string {
	var parts []string
	depth := 0
	inDouble, inSingle := false, false
	last := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"':
			if !inSingle {
				inDouble = !inDouble
			}
		case '\'':
			if !inDouble {
				inSingle = !inSingle
			}
		case '(':
			if !inDouble && !inSingle {
				depth++
			}
		case ')':
			if !inDouble && !inSingle {
				depth--
			}
		case ',':
			if depth == 0 && !inDouble && !inSingle {
				parts = append(parts, strings.TrimSpace(s[last:i]))
				last = i + 1
			}
		}
	}
	parts = append(parts, strings.TrimSpace(s[last:]))
	return parts
}
