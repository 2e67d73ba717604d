// Package extract turns free-form model output into structured values.
//
// Models are asked to "output only a JSON array of strings" but routinely wrap
// the array in code fences, prose, or return a bullet list instead. Array runs
// an ordered chain of strategies over the raw text and takes the first one
// that applies. Extraction never fails: when nothing applies the result is an
// empty slice.
package extract

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

// Result is the outcome of one strategy: either parsed values or not
// applicable.
type Result struct {
	Values []string
	OK     bool
}

// Parsed wraps values as an applicable result.
func Parsed(values []string) Result { return Result{Values: values, OK: true} }

// NotApplicable is returned by a strategy that could not handle the input.
var NotApplicable = Result{}

// Strategy is one stage of the fallback chain.
type Strategy interface {
	Name() string
	Extract(text string) Result
}

// StrategyFunc adapts a function to Strategy.
type StrategyFunc struct {
	name string
	fn   func(string) Result
}

// Name returns the strategy name.
func (s StrategyFunc) Name() string { return s.name }

// Extract runs the strategy.
func (s StrategyFunc) Extract(text string) Result { return s.fn(text) }

var (
	fencePattern   = regexp.MustCompile("(?i)```json|```")
	bracketPattern = regexp.MustCompile(`\[[\s\S]*\]`)
	bulletPattern  = regexp.MustCompile(`^[-•\d.)\s]+`)
)

// DefaultChain is the fallback chain used by Array, in order.
var DefaultChain = []Strategy{
	StrategyFunc{name: "fenced_json", fn: fencedJSON},
	StrategyFunc{name: "bracketed_json", fn: bracketedJSON},
	StrategyFunc{name: "bullet_lines", fn: bulletLines},
}

// Array extracts a list of strings from raw model output using DefaultChain.
// A limit of zero or less means uncapped.
func Array(raw string, limit int) []string {
	values, _ := Run(DefaultChain, raw, limit)
	return values
}

// Run applies chain to raw and returns the values of the first applicable
// strategy along with its name. The name is empty when nothing applied.
func Run(chain []Strategy, raw string, limit int) ([]string, string) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return []string{}, ""
	}

	for _, strategy := range chain {
		result := strategy.Extract(text)
		if !result.OK {
			continue
		}
		return capValues(result.Values, limit), strategy.Name()
	}

	return []string{}, ""
}

func capValues(values []string, limit int) []string {
	if values == nil {
		values = []string{}
	}
	if limit > 0 && len(values) > limit {
		return values[:limit]
	}
	return values
}

// fencedJSON strips code fences and parses the rest as a JSON array,
// unwrapping one level of string encoding.
func fencedJSON(text string) Result {
	text = strings.TrimSpace(fencePattern.ReplaceAllString(text, ""))

	var parsed any
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return NotApplicable
	}

	if inner, ok := parsed.(string); ok {
		if err := json.Unmarshal([]byte(inner), &parsed); err != nil {
			return NotApplicable
		}
	}

	items, ok := parsed.([]any)
	if !ok {
		return NotApplicable
	}
	return Parsed(normalize(items))
}

// bracketedJSON parses the first [...] span in the text.
func bracketedJSON(text string) Result {
	match := bracketPattern.FindString(text)
	if match == "" {
		return NotApplicable
	}

	var items []any
	if err := json.Unmarshal([]byte(match), &items); err != nil {
		return NotApplicable
	}
	return Parsed(normalize(items))
}

// bulletLines treats each non-empty line as an item, dropping bullet and
// numbering markers.
func bulletLines(text string) Result {
	var candidates []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		line = strings.TrimSpace(bulletPattern.ReplaceAllString(line, ""))
		if line != "" {
			candidates = append(candidates, line)
		}
	}

	if len(candidates) == 0 {
		return NotApplicable
	}
	return Parsed(candidates)
}

// normalize coerces decoded JSON items to trimmed strings and drops empties.
func normalize(items []any) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		s := strings.TrimSpace(stringify(item))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return ""
		}
		return string(b)
	}
}
