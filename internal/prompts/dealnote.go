package prompts

import (
	"fmt"
	"strings"

	"startiq/internal/core"
)

// DealNoteContext is the shared preamble of every deal-note step: the raw
// insight texts of both parties.
func DealNoteContext(investorInsights, startupInsights string) string {
	return fmt.Sprintf(`Investor Insights:
%s

Startup Insights:
%s
`, investorInsights, startupInsights)
}

// Highlights asks why the startup is interesting for the investor.
func Highlights(context string) string {
	return context + `
List 2-3 bullet point highlights why this startup is interesting for this investor.
Output only a JSON array of strings.
`
}

// Fit asks how the startup fits the investor's focus.
func Fit(context string) string {
	return context + `
List 2-3 points showing how the startup fits the investor's focus.
Output only a JSON array of strings.
`
}

// Verdict asks for a one-word recommendation, embedding the highlights and fit
// already produced.
func Verdict(context string, highlights, fit []string) string {
	quoted := make([]string, len(core.Verdicts))
	for i, v := range core.Verdicts {
		quoted[i] = fmt.Sprintf("%q", v)
	}

	return fmt.Sprintf(`%s
Highlights:
%s

Fit:
%s

Based on the above, give a final recommendation for this investor regarding this startup.
Choose strictly one of: %s.

Output only a single word string, not a sentence just one word from the 3 options only, nothing else.
`, context, prettyJSON(highlights), prettyJSON(fit), strings.Join(quoted, ", "))
}
