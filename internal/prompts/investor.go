package prompts

import (
	"fmt"
	"strings"

	"startiq/internal/core"
)

// InvestorTypeHint follows the investor type so the model knows the expected
// vocabulary.
const InvestorTypeHint = "(Angel / VC / PE / Family Office etc.)"

// Investor builds the analysis prompt for an investor profile.
func Investor(profile core.InvestorProfile) string {
	var b strings.Builder

	b.WriteString("You are an investment analyst evaluating an investor.\n")
	b.WriteString("Your task is to provide a structured, detailed, and balanced critique of the investor based on the data provided.\n")
	b.WriteString("Focus on investment strategy, sector focus, track record, risk appetite, portfolio style, and alignment with founders.\n\n")

	b.WriteString("Investor Information:\n")
	writeField(&b, "Name", profile.InvestorName)
	writeField(&b, "Firm", profile.FirmName)
	writeField(&b, "Location", profile.Location)
	fmt.Fprintf(&b, "- Type: %s %s\n", profile.InvestorType.Or(core.NotAvailable), InvestorTypeHint)
	writeField(&b, "Website", profile.Website)
	writeField(&b, "LinkedIn", profile.LinkedIn)

	b.WriteString("\nInvestment Preferences:\n")
	writeOptional(&b, "Stage Focus", profile.InvestmentStage)
	writeOptional(&b, "Sector Focus", profile.SectorFocus)
	writeOptional(&b, "Ticket Size", profile.TicketSize)
	writeOptional(&b, "Geography", profile.Geography)

	b.WriteString("\nTrack Record:\n")
	writeOptional(&b, "Portfolio", profile.Portfolio)
	writeOptional(&b, "Notable Exits", profile.NotableExits)

	b.WriteString("\n---\n\n")
	b.WriteString("Your task: Provide a comprehensive critique with these sections:\n")
	b.WriteString("1. Strengths\n")
	b.WriteString("2. Weaknesses / Risks\n")
	b.WriteString("3. Investment Thesis & Focus\n")
	b.WriteString("4. Alignment with Founders\n")
	b.WriteString("5. Portfolio Synergies\n")
	b.WriteString("6. Overall Recommendation\n\n")
	b.WriteString("Be exhaustive, structured, and professional. Avoid generic advice; base your analysis on the provided data.\n")

	return b.String()
}
