package prompts

import (
	"encoding/json"
	"fmt"
)

// RedFlags asks for up to five investor-facing risks as a JSON array.
func RedFlags(insights string) string {
	return fmt.Sprintf(`From the following startup analysis, identify up to 5 critical red flags that would concern investors.
Return them strictly as a JSON array of short strings, with no explanation or extra text. Example:
["High burn rate", "Unproven market"]

If there are no clear red flags, return an empty JSON array: [].

Analysis:
%s
`, insights)
}

// GreenFlags asks for up to five reassuring signals as a JSON array.
func GreenFlags(insights string) string {
	return fmt.Sprintf(`From the following startup analysis, identify up to 5 strong positive signals ("green flags") that would reassure investors.
Return them strictly as a JSON array of short strings, with no explanation or extra text. Example:
["Strong founder experience", "Growing customer base"]

If there are no clear green flags, return an empty JSON array: [].

Analysis:
%s
`, insights)
}

// Score asks for a bare 0..100 investment score.
func Score(insights string, redFlags, greenFlags []string) string {
	return fmt.Sprintf(`You are acting as a venture capitalist.
Based on the following analysis, red flags, and green flags, give the startup a final investment score out of 100.

Guidelines:
- Consider the insights holistically (market, product, traction, team, competition, financials).
- Deduct points for red flags (risks).
- Add points for green flags (strengths).
- The score must reflect overall investability, not just the count of flags.
- Return ONLY a number between 0 and 100, no explanation, no extra text.

Startup Analysis:
%s

Red Flags:
%s

Green Flags:
%s
`, insights, compactJSON(redFlags), compactJSON(greenFlags))
}

func compactJSON(values []string) string {
	if values == nil {
		return "[]"
	}
	b, err := json.Marshal(values)
	if err != nil {
		return "[]"
	}
	return string(b)
}
