// Package prompts builds the deterministic prompt texts sent to the LLM.
//
// Profile prompts follow one rule: header fields always render, falling back
// to N/A, while narrative fields render only when the profile has a value for
// them.
package prompts

import (
	"encoding/json"
	"fmt"
	"strings"

	"startiq/internal/core"
)

// writeField writes a header line that always renders.
func writeField(b *strings.Builder, label string, value core.Text) {
	fmt.Fprintf(b, "- %s: %s\n", label, value.Or(core.NotAvailable))
}

// writeOptional writes a narrative line only when value is present.
func writeOptional(b *strings.Builder, label string, value core.Text) {
	if value.IsEmpty() {
		return
	}
	fmt.Fprintf(b, "- %s: %s\n", label, value.String())
}

// prettyJSON renders v as two-space indented JSON. Nil maps and slices render
// as {} and [] so prompts never contain "null".
func prettyJSON(v any) string {
	switch val := v.(type) {
	case map[string]any:
		if val == nil {
			return "{}"
		}
	case []string:
		if val == nil {
			return "[]"
		}
	}

	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(b)
}
