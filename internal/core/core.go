package core

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

// Collection names used by the document store.
const (
	CollectionFounders         = "founders"
	CollectionInvestors        = "investors"
	CollectionDocuments        = "documents"
	CollectionStartupInsights  = "AIInsights"
	CollectionInvestorInsights = "InvestorInsights"
)

// Roles accepted at registration.
const (
	RoleFounder  = "founder"
	RoleStartup  = "startup"
	RoleInvestor = "investor"
)

// MaxFlags caps the number of red or green flags kept per startup.
const MaxFlags = 5

// NotAvailable is rendered wherever a value is missing.
const NotAvailable = "N/A"

// Text is a free-form profile value. Registration payloads are not typed, so
// it decodes from any JSON scalar; arrays and objects keep their JSON form.
type Text string

// UnmarshalJSON implements json.Unmarshaler.
func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*t = ""
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Text(s)
	default:
		var buf bytes.Buffer
		if err := json.Compact(&buf, data); err != nil {
			return err
		}
		*t = Text(buf.String())
	}
	return nil
}

// String returns the raw value.
func (t Text) String() string { return string(t) }

// IsEmpty reports whether the value is blank.
func (t Text) IsEmpty() bool { return strings.TrimSpace(string(t)) == "" }

// Or returns the value, or fallback when it is blank.
func (t Text) Or(fallback string) string {
	if t.IsEmpty() {
		return fallback
	}
	return string(t)
}

// StartupProfile is the founder-supplied description of a startup.
type StartupProfile struct {
	StartupID       Text `json:"startupID,omitempty"`
	StartupName     Text `json:"startupName,omitempty"`
	FounderName     Text `json:"founderName,omitempty"`
	YearFounded     Text `json:"yearFounded,omitempty"`
	Location        Text `json:"location,omitempty"`
	Industry        Text `json:"industry,omitempty"`
	Stage           Text `json:"stage,omitempty"`
	Website         Text `json:"website,omitempty"`
	LinkedIn        Text `json:"linkedin,omitempty"`
	FounderLinkedIn Text `json:"founderLinkedin,omitempty"`

	// Narrative fields; only rendered into prompts when present.
	Pitch         Text `json:"pitch,omitempty"`
	Problem       Text `json:"problem,omitempty"`
	Solution      Text `json:"solution,omitempty"`
	CustomerCount Text `json:"customerCount,omitempty"`
	GrowthRate    Text `json:"growthRate,omitempty"`
	Milestones    Text `json:"milestones,omitempty"`
	Revenue       Text `json:"revenue,omitempty"`
}

// InvestorProfile is the investor-supplied description of an investor.
type InvestorProfile struct {
	InvestorName Text `json:"investorName,omitempty"`
	FirmName     Text `json:"firmName,omitempty"`
	Location     Text `json:"location,omitempty"`
	InvestorType Text `json:"investorType,omitempty"`
	Website      Text `json:"website,omitempty"`
	LinkedIn     Text `json:"linkedin,omitempty"`

	InvestmentStage Text `json:"investmentStage,omitempty"`
	SectorFocus     Text `json:"sectorFocus,omitempty"`
	TicketSize      Text `json:"ticketSize,omitempty"`
	Geography       Text `json:"geography,omitempty"`
	Portfolio       Text `json:"portfolio,omitempty"`
	NotableExits    Text `json:"notableExits,omitempty"`
}

// Founder is a document in the founders collection.
type Founder struct {
	ID        string         `json:"-"`                   // Document key (the registering uid)
	Role      string         `json:"role"`                // Role given at registration
	Profile   StartupProfile `json:"profile"`             // Startup profile
	CreatedAt time.Time      `json:"createdAt,omitempty"` // Registration time
}

// Investor is a document in the investors collection. Deal notes live on the
// same document, keyed by startup ID.
type Investor struct {
	ID        string              `json:"-"`
	Role      string              `json:"role"`
	Profile   InvestorProfile     `json:"profile"`
	DealNotes map[string]DealNote `json:"dealNotes,omitempty"`
	CreatedAt time.Time           `json:"createdAt,omitempty"`
}

// InsightRecord is the cached analysis of one startup.
type InsightRecord struct {
	Insights   string    `json:"insights"`             // Free-text critique
	RedFlags   []string  `json:"redFlags"`             // Up to MaxFlags risk signals
	GreenFlags []string  `json:"greenFlags,omitempty"` // Up to MaxFlags strength signals, set by scoring
	Score      *int      `json:"score,omitempty"`      // 0..100, set by scoring; nil when unscored
	CreatedAt  time.Time `json:"createdAt"`            // Freshness anchor; patches never touch it
}

// InvestorInsightRecord is the cached analysis of one investor.
type InvestorInsightRecord struct {
	Insights  string    `json:"insights"`
	CreatedAt time.Time `json:"createdAt"`
}

// DealNote is the durable part of a deal note. Only these fields are stored.
type DealNote struct {
	Note       string    `json:"note"`       // Verdict, passed through as produced
	Highlights []string  `json:"highlights"` // Why the startup is interesting for the investor
	Fit        []string  `json:"fit"`        // How the startup fits the investor's focus
	CreatedAt  time.Time `json:"createdAt"`
}

// DealNoteView is a deal note as returned to callers: the durable fields
// merged with per-request transient fields that are never stored.
type DealNoteView struct {
	Note       string    `json:"note"`
	Highlights []string  `json:"highlights"` // Durable highlights plus an "AI Score: N" entry
	Fit        []string  `json:"fit"`
	Risks      []string  `json:"risks"` // Current red flags of the startup
	CreatedAt  time.Time `json:"createdAt"`
}
