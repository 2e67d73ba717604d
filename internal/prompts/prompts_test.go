package prompts

import (
	"strings"
	"testing"

	"startiq/internal/core"
)

func TestStartup_HeaderFieldsFallBackToNA(t *testing.T) {
	prompt := Startup(core.StartupProfile{StartupName: "Acme"}, nil)

	expected := []string{
		"- Name: Acme\n",
		"- Founder: N/A\n",
		"- Year Founded: N/A\n",
		"- Founder LinkedIn: N/A\n",
	}
	for _, want := range expected {
		if !strings.Contains(prompt, want) {
			t.Errorf("Expected prompt to contain %q", want)
		}
	}
}

func TestStartup_NarrativeFieldsOmittedWhenEmpty(t *testing.T) {
	prompt := Startup(core.StartupProfile{
		StartupName: "Acme",
		Pitch:       "Rockets for everyone",
		Revenue:     "  ",
	}, nil)

	if !strings.Contains(prompt, "- Pitch: Rockets for everyone\n") {
		t.Error("Expected pitch line to be rendered")
	}
	for _, label := range []string{"- Problem:", "- Solution:", "- Customers:", "- Growth Rate:", "- Milestones:", "- Revenue:"} {
		if strings.Contains(prompt, label) {
			t.Errorf("Expected %q to be omitted", label)
		}
	}
}

func TestStartup_Documents(t *testing.T) {
	empty := Startup(core.StartupProfile{}, nil)
	if !strings.Contains(empty, "Related Documents / Raw Data:\n{}\n") {
		t.Error("Expected missing documents to render as {}")
	}

	docs := map[string]any{"zeta": 1, "alpha": "deck.pdf"}
	prompt := Startup(core.StartupProfile{}, docs)
	want := "{\n  \"alpha\": \"deck.pdf\",\n  \"zeta\": 1\n}"
	if !strings.Contains(prompt, want) {
		t.Errorf("Expected indented sorted documents, got:\n%s", prompt)
	}
}

func TestStartup_Deterministic(t *testing.T) {
	profile := core.StartupProfile{StartupName: "Acme", Industry: "Space", GrowthRate: "20%"}
	docs := map[string]any{"a": []any{"x", "y"}, "b": map[string]any{"c": true}}

	first := Startup(profile, docs)
	for i := 0; i < 5; i++ {
		if got := Startup(profile, docs); got != first {
			t.Fatal("Expected identical prompts for identical input")
		}
	}
}

func TestStartup_SectionsListed(t *testing.T) {
	prompt := Startup(core.StartupProfile{}, nil)
	for _, section := range []string{"1. Strengths", "4. Threats", "7. Overall Recommendation"} {
		if !strings.Contains(prompt, section) {
			t.Errorf("Expected section %q", section)
		}
	}
}

func TestInvestor(t *testing.T) {
	prompt := Investor(core.InvestorProfile{
		InvestorName: "Jane",
		InvestorType: "Angel",
		SectorFocus:  "Fintech",
	})

	expected := []string{
		"- Name: Jane\n",
		"- Firm: N/A\n",
		"- Type: Angel (Angel / VC / PE / Family Office etc.)\n",
		"- Sector Focus: Fintech\n",
		"6. Overall Recommendation",
	}
	for _, want := range expected {
		if !strings.Contains(prompt, want) {
			t.Errorf("Expected prompt to contain %q", want)
		}
	}
	if strings.Contains(prompt, "- Ticket Size:") {
		t.Error("Expected empty ticket size to be omitted")
	}
}

func TestInvestor_MissingType(t *testing.T) {
	prompt := Investor(core.InvestorProfile{})
	if !strings.Contains(prompt, "- Type: N/A "+InvestorTypeHint) {
		t.Errorf("Expected N/A type with hint, got:\n%s", prompt)
	}
}

func TestFlagPrompts(t *testing.T) {
	red := RedFlags("strong team, high burn")
	if !strings.Contains(red, "red flags") || !strings.HasSuffix(strings.TrimSpace(red), "strong team, high burn") {
		t.Errorf("Unexpected red flag prompt:\n%s", red)
	}

	green := GreenFlags("strong team")
	if !strings.Contains(green, "green flags") || !strings.Contains(green, "up to 5") {
		t.Errorf("Unexpected green flag prompt:\n%s", green)
	}
}

func TestScore(t *testing.T) {
	prompt := Score("analysis", []string{"High burn"}, nil)

	if !strings.Contains(prompt, "Red Flags:\n[\"High burn\"]") {
		t.Errorf("Expected red flags as JSON, got:\n%s", prompt)
	}
	if !strings.Contains(prompt, "Green Flags:\n[]") {
		t.Errorf("Expected nil green flags as [], got:\n%s", prompt)
	}
	if !strings.Contains(prompt, "between 0 and 100") {
		t.Error("Expected range instruction")
	}
}

func TestDealNotePrompts(t *testing.T) {
	ctx := DealNoteContext("investor text", "startup text")
	if !strings.Contains(ctx, "Investor Insights:\ninvestor text") || !strings.Contains(ctx, "Startup Insights:\nstartup text") {
		t.Errorf("Unexpected context:\n%s", ctx)
	}

	if h := Highlights(ctx); !strings.HasPrefix(h, ctx) || !strings.Contains(h, "JSON array") {
		t.Errorf("Unexpected highlights prompt:\n%s", h)
	}
	if f := Fit(ctx); !strings.HasPrefix(f, ctx) || !strings.Contains(f, "investor's focus") {
		t.Errorf("Unexpected fit prompt:\n%s", f)
	}

	verdict := Verdict(ctx, []string{"Big market"}, nil)
	if !strings.Contains(verdict, "Highlights:\n[\n  \"Big market\"\n]") {
		t.Errorf("Expected indented highlights, got:\n%s", verdict)
	}
	if !strings.Contains(verdict, "Fit:\n[]") {
		t.Errorf("Expected empty fit as [], got:\n%s", verdict)
	}
	if !strings.Contains(verdict, `"Invest", "Consider", "Do Not Invest"`) {
		t.Errorf("Expected verdict options, got:\n%s", verdict)
	}
}
