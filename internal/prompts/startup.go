package prompts

import (
	"strings"

	"startiq/internal/core"
)

// Startup builds the analysis prompt for a startup from its profile and the
// raw related documents stored for it.
func Startup(profile core.StartupProfile, documents map[string]any) string {
	var b strings.Builder

	b.WriteString("You are a venture analyst evaluating a startup.\n")
	b.WriteString("Your task is to provide a structured, detailed, and balanced critique of the startup based on the data provided.\n")
	b.WriteString("Focus on market potential, business fundamentals, financial health, risks, and overall investability.\n\n")

	b.WriteString("Startup Information:\n")
	writeField(&b, "Name", profile.StartupName)
	writeField(&b, "Founder", profile.FounderName)
	writeField(&b, "Year Founded", profile.YearFounded)
	writeField(&b, "Location", profile.Location)
	writeField(&b, "Industry", profile.Industry)
	writeField(&b, "Stage", profile.Stage)
	writeField(&b, "Website", profile.Website)
	writeField(&b, "LinkedIn", profile.LinkedIn)
	writeField(&b, "Founder LinkedIn", profile.FounderLinkedIn)

	b.WriteString("\nBusiness Overview:\n")
	writeOptional(&b, "Pitch", profile.Pitch)
	writeOptional(&b, "Problem", profile.Problem)
	writeOptional(&b, "Solution", profile.Solution)

	b.WriteString("\nTraction & Financials:\n")
	writeOptional(&b, "Customers", profile.CustomerCount)
	writeOptional(&b, "Growth Rate", profile.GrowthRate)
	writeOptional(&b, "Milestones", profile.Milestones)
	writeOptional(&b, "Revenue", profile.Revenue)

	b.WriteString("\nRelated Documents / Raw Data:\n")
	b.WriteString(prettyJSON(documents))
	b.WriteString("\n\n---\n\n")

	b.WriteString("Your task: Provide a comprehensive critique with these sections:\n")
	b.WriteString("1. Strengths\n")
	b.WriteString("2. Weaknesses / Risks\n")
	b.WriteString("3. Opportunities\n")
	b.WriteString("4. Threats\n")
	b.WriteString("5. Financial Analysis\n")
	b.WriteString("6. Funding Feasibility\n")
	b.WriteString("7. Overall Recommendation\n\n")
	b.WriteString("Be exhaustive, structured, and professional. Avoid generic advice; base your analysis on the provided data.\n")

	return b.String()
}
