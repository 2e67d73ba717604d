package extract

import (
	"strconv"
	"strings"
)

// Verdict cleans a one-word verdict: surrounding whitespace and every quote
// character are removed. The value is not checked against the verdict set.
func Verdict(raw string) string {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.NewReplacer(`"`, "", "'", "").Replace(cleaned)
	return cleaned
}

// Integer parses the leading integer of raw, ignoring surrounding whitespace
// and any trailing text ("73 points" is 73, "7.9" is 7).
func Integer(raw string) (int, bool) {
	s := strings.TrimSpace(raw)

	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digitsStart := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digitsStart {
		return 0, false
	}

	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

// Score parses a 0..100 score. Anything unparsable or out of range is
// rejected.
func Score(raw string) (int, bool) {
	n, ok := Integer(raw)
	if !ok || n < 0 || n > 100 {
		return 0, false
	}
	return n, true
}
