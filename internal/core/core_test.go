package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestTextUnmarshalScalars(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Text
	}{
		{"string", `"Acme"`, "Acme"},
		{"number", `1200`, "1200"},
		{"float", `12.5`, "12.5"},
		{"true", `true`, "true"},
		{"false", `false`, "false"},
		{"padded false", ` false `, "false"},
		{"null", `null`, ""},
		{"array", `["a", "b"]`, `["a","b"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Text
			if err := json.Unmarshal([]byte(tt.input), &got); err != nil {
				t.Fatalf("unmarshal %s: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestStartupProfileDecodesFreeFormPayload(t *testing.T) {
	payload := `{"startupID":"s1","startupName":"Acme","yearFounded":2021,"customerCount":null,"unknown":"x"}`

	var profile StartupProfile
	if err := json.Unmarshal([]byte(payload), &profile); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if profile.StartupID != "s1" {
		t.Errorf("Expected startupID s1, got %q", profile.StartupID)
	}
	if profile.YearFounded.Or(NotAvailable) != "2021" {
		t.Errorf("Expected yearFounded 2021, got %q", profile.YearFounded)
	}
	if profile.CustomerCount.Or(NotAvailable) != NotAvailable {
		t.Errorf("Expected N/A for null customerCount, got %q", profile.CustomerCount)
	}
}

func TestIsFresh(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		createdAt time.Time
		want      bool
	}{
		{"just created", now, true},
		{"six days", now.Add(-6 * 24 * time.Hour), true},
		{"one millisecond short of seven days", now.Add(-InsightTTL + time.Millisecond), true},
		{"exactly seven days", now.Add(-InsightTTL), false},
		{"ten days", now.Add(-10 * 24 * time.Hour), false},
		{"zero time", time.Time{}, false},
		{"created in the future", now.Add(time.Hour), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsFresh(tt.createdAt, now); got != tt.want {
				t.Errorf("IsFresh() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAgeInDays(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	if got := AgeInDays(now.Add(-36*time.Hour), now); got != 1.5 {
		t.Errorf("Expected 1.5 days, got %v", got)
	}
}

func TestFixedClock(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := NewFixedClock(start)

	clock.Advance(48 * time.Hour)
	if want := start.Add(48 * time.Hour); !clock.Now().Equal(want) {
		t.Errorf("Expected %v, got %v", want, clock.Now())
	}

	clock.Set(start)
	if !clock.Now().Equal(start) {
		t.Errorf("Expected %v after Set, got %v", start, clock.Now())
	}
}

func TestErrorClassification(t *testing.T) {
	notFound := fmt.Errorf("lookup: %w", NewNotFound("startup", "s1"))
	if !errors.Is(notFound, ErrNotFound) {
		t.Error("Expected wrapped NotFoundError to match ErrNotFound")
	}

	var nf *NotFoundError
	if !errors.As(notFound, &nf) || nf.Message() != "Startup not found" {
		t.Errorf("Expected message 'Startup not found', got %v", nf)
	}

	if !errors.Is(NewValidationError("startupID", "startupID is required"), ErrValidation) {
		t.Error("Expected ValidationError to match ErrValidation")
	}

	cause := errors.New("connection reset")
	upstream := NewUpstreamError("llm", cause)
	if !errors.Is(upstream, ErrUpstream) || !errors.Is(upstream, cause) {
		t.Error("Expected UpstreamError to match ErrUpstream and unwrap to its cause")
	}
}

func TestIsKnownVerdict(t *testing.T) {
	for _, v := range Verdicts {
		if !IsKnownVerdict(v) {
			t.Errorf("Expected %q to be a known verdict", v)
		}
	}
	if IsKnownVerdict("Maybe") {
		t.Error("Expected 'Maybe' to be unknown")
	}
}
