package render

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"startiq/internal/core"
	"startiq/internal/services"
)

var createdAt = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func TestStartupInsight(t *testing.T) {
	var buf bytes.Buffer
	err := StartupInsight(&buf, &services.StartupInsightResult{
		StartupID: "s1",
		Insights:  "Strong team with early revenue.",
		RedFlags:  []string{"Single customer"},
		CreatedAt: createdAt,
		Cached:    true,
	})
	if err != nil {
		t.Fatalf("StartupInsight failed: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"s1", "Strong team with early revenue.", "Single customer", "cached 2025-03-10 12:00"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestStartupInsight_NoFlags(t *testing.T) {
	var buf bytes.Buffer
	if err := StartupInsight(&buf, &services.StartupInsightResult{StartupID: "s1", Insights: "ok", RedFlags: []string{}}); err != nil {
		t.Fatalf("StartupInsight failed: %v", err)
	}
	if !strings.Contains(buf.String(), "none") {
		t.Errorf("empty flag list should render as none:\n%s", buf.String())
	}
	if !strings.Contains(buf.String(), "generated") {
		t.Errorf("fresh result should be marked generated:\n%s", buf.String())
	}
}

func TestInvestorInsight(t *testing.T) {
	var buf bytes.Buffer
	if err := InvestorInsight(&buf, &services.InvestorInsightResult{InvestorID: "i1", Insights: "Seed focus"}); err != nil {
		t.Fatalf("InvestorInsight failed: %v", err)
	}
	if !strings.Contains(buf.String(), "Seed focus") || !strings.Contains(buf.String(), "i1") {
		t.Errorf("unexpected output:\n%s", buf.String())
	}
}

func TestDealNote(t *testing.T) {
	var buf bytes.Buffer
	err := DealNote(&buf, &services.DealNoteResult{
		InvestorID: "i1",
		StartupID:  "s1",
		DealNote: core.DealNoteView{
			Note:       core.VerdictInvest,
			Highlights: []string{"Large market", "AI Score: 80"},
			Fit:        []string{"Seed stage"},
			Risks:      []string{},
			CreatedAt:  createdAt,
		},
	})
	if err != nil {
		t.Fatalf("DealNote failed: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"Invest", "Large market", "AI Score: 80", "Seed stage", "Risks"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestScore(t *testing.T) {
	score := 72
	tests := []struct {
		name  string
		score *int
		want  string
	}{
		{"scored", &score, "72/100"},
		{"unparseable", nil, core.NotAvailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := Score(&buf, &services.ScoreResult{
				StartupID:  "s1",
				Score:      tt.score,
				GreenFlags: []string{"Revenue"},
				RedFlags:   []string{"Burn"},
			})
			if err != nil {
				t.Fatalf("Score failed: %v", err)
			}
			if !strings.Contains(buf.String(), tt.want) {
				t.Errorf("output missing %q:\n%s", tt.want, buf.String())
			}
		})
	}
}

func TestRegistration(t *testing.T) {
	var buf bytes.Buffer
	err := Registration(&buf, &services.RegisterResult{
		UID:        "u1",
		Role:       core.RoleInvestor,
		Collection: core.CollectionInvestors,
		Message:    "User registered in investors successfully!",
	})
	if err != nil {
		t.Fatalf("Registration failed: %v", err)
	}
	if !strings.Contains(buf.String(), "User registered in investors successfully!") {
		t.Errorf("unexpected output:\n%s", buf.String())
	}
	if !strings.Contains(buf.String(), "collection=investors") {
		t.Errorf("unexpected output:\n%s", buf.String())
	}
}

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := JSON(&buf, map[string]any{"startupID": "s1", "cached": true}); err != nil {
		t.Fatalf("JSON failed: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if decoded["startupID"] != "s1" {
		t.Errorf("startupID = %v", decoded["startupID"])
	}
	if !strings.Contains(buf.String(), "\n  ") {
		t.Errorf("expected indented output:\n%s", buf.String())
	}
}
