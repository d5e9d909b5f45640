// Package convert classifies cell formulas and rewrites the directly
// convertible ones into JavaScript expressions.
package convert

import (
	"fmt"
	"sort"

	"github.com/BurntSushi/toml"
)

// Rename maps an Excel function head to its target-expression head. The
// argument list is carried over unchanged, so renames only fit functions
// whose target takes the same arguments.
type Rename struct {
	// From is the Excel function name, e.g. "MIN".
	From string
	// To is the replacement head, e.g. "Math.min".
	To string
}

// Rules is the immutable configuration driving classification and
// conversion. Distinct rule sets can be used concurrently; a Rules value
// is never mutated after construction.
type Rules struct {
	// Advanced lists functions whose semantics cannot be reproduced by
	// textual substitution: lookups, conditional aggregates, indirect
	// addressing, and time-value-of-money math. Any occurrence
	// classifies the formula as advanced.
	Advanced []string
	// MaxNesting is the parenthesis depth beyond which a formula is
	// classified as advanced regardless of the functions it uses.
	MaxNesting int
	// Renames holds the plain head-for-head function mappings, applied
	// in order. Structural rewrites (SUM, AVERAGE, IF, NOT) are fixed
	// in the converter and not configurable here.
	Renames []Rename
	// Nullary maps zero-argument functions to full replacement
	// expressions, e.g. TODAY() to new Date().
	Nullary map[string]string
}

// DefaultRules returns the built-in rule set.
func DefaultRules() Rules {
	return Rules{
		Advanced: []string{
			"VLOOKUP", "HLOOKUP", "INDEX", "MATCH", "INDIRECT",
			"SUMIF", "SUMIFS", "COUNTIF", "COUNTIFS", "AVERAGEIF", "AVERAGEIFS",
			"OFFSET", "CHOOSE", "LOOKUP",
			"PMT", "FV", "PV", "NPV", "IRR",
		},
		MaxNesting: 3,
		Renames: []Rename{
			{From: "MIN", To: "Math.min"},
			{From: "MAX", To: "Math.max"},
			{From: "COUNTA", To: "_counta"},
			{From: "COUNT", To: "_count"},
			{From: "AND", To: "_and"},
			{From: "OR", To: "_or"},
			{From: "ROUNDUP", To: "_roundUp"},
			{From: "ROUNDDOWN", To: "_roundDown"},
			{From: "ROUND", To: "_round"},
			{From: "INT", To: "Math.floor"},
			{From: "ABS", To: "Math.abs"},
			{From: "LEN", To: "_len"},
			{From: "LEFT", To: "_left"},
			{From: "RIGHT", To: "_right"},
			{From: "MID", To: "_mid"},
			{From: "TRIM", To: "_trim"},
			{From: "UPPER", To: "_upper"},
			{From: "LOWER", To: "_lower"},
			{From: "CONCATENATE", To: "_concat"},
			{From: "CONCAT", To: "_concat"},
		},
		Nullary: map[string]string{
			"TODAY": "new Date()",
			"NOW":   "new Date()",
		},
	}
}

// rulesFile is the on-disk TOML shape of a rule set.
type rulesFile struct {
	Advanced   []string          `toml:"advanced"`
	MaxNesting int               `toml:"max_nesting"`
	Renames    map[string]string `toml:"renames"`
	Nullary    map[string]string `toml:"nullary"`
}

// LoadRules reads a rule set from a TOML file. Omitted sections keep
// their defaults.
func LoadRules(path string) (Rules, error) {
	var file rulesFile
	if _, err := toml.DecodeFile(path, &file); err != nil {
		return Rules{}, fmt.Errorf("load rules: %w", err)
	}

	rules := DefaultRules()
	if len(file.Advanced) > 0 {
		rules.Advanced = file.Advanced
	}
	if file.MaxNesting > 0 {
		rules.MaxNesting = file.MaxNesting
	}
	if len(file.Renames) > 0 {
		names := make([]string, 0, len(file.Renames))
		for name := range file.Renames {
			names = append(names, name)
		}
		// Longer names first so e.g. ROUNDUP is matched ahead of ROUND.
		sort.Slice(names, func(i, j int) bool {
			if len(names[i]) != len(names[j]) {
				return len(names[i]) > len(names[j])
			}
			return names[i] < names[j]
		})
		rules.Renames = rules.Renames[:0]
		for _, name := range names {
			rules.Renames = append(rules.Renames, Rename{From: name, To: file.Renames[name]})
		}
	}
	if len(file.Nullary) > 0 {
		rules.Nullary = file.Nullary
	}
	return rules, nil
}
