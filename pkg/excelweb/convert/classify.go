package convert

import (
	"strings"

	"github.com/seolcoding/excelweb/pkg/excelweb/models"
)

// Classifier decides per formula whether textual conversion applies.
type Classifier struct {
	rules Rules
}

// NewClassifier builds a classifier over the given rule set.
func NewClassifier(rules Rules) *Classifier {
	return &Classifier{rules: rules}
}

// Classify applies the two rules in order: any advanced-list function
// occurrence wins, then the nesting bound. Everything else is direct.
func (c *Classifier) Classify(formulaText string) models.ClassificationResult {
	result := models.ClassificationResult{Formula: formulaText}

	upper := strings.ToUpper(formulaText)
	for _, fn := range c.rules.Advanced {
		if strings.Contains(upper, fn+"(") {
			result.Method = models.MethodAdvanced
			return result
		}
	}

	if maxParenDepth(formulaText) > c.rules.MaxNesting {
		result.Method = models.MethodAdvanced
		return result
	}

	result.IsDirect = true
	result.Method = models.MethodDirect
	return result
}

func maxParenDepth(text string) int {
	depth, max := 0, 0
	for _, r := range text {
		switch r {
		case '(':
			depth++
			if depth > max {
				max = depth
			}
		case ')':
			depth--
		}
	}
	return max
}
