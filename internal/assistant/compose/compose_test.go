package compose

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bailey-assistant/internal/assistant/chat"
	"bailey-assistant/internal/assistant/intent"
	"bailey-assistant/internal/assistant/knowledge"
	"bailey-assistant/internal/assistant/safety"
)

func match(e knowledge.Entry, score float64) knowledge.ScoredMatch {
	return knowledge.ScoredMatch{Entry: e, Score: score}
}

func tenantDoctor() knowledge.Entry {
	return knowledge.Entry{
		ID:                 "tenant-doctor",
		Title:              "Tenant Doctor Arrangements",
		Content:            "Long content.",
		ResponseTemplate:   "A tenant doctor runs their own business.",
		ConfidenceLevel:    10,
		RequiresDisclaimer: true,
		LegalDisclaimer:    "General information only.",
		RelatedProducts:    []string{"tenant-doctor-agreement", "payroll-tax-review"},
		XPReward:           30,
	}
}

// ========================================
// Override path
// ========================================

func TestCompose_OverrideIsVerbatim(t *testing.T) {
	c := NewComposer()
	o := safety.Check("I'm being arrested right now, help", safety.AllEnabled())
	require.NotNil(t, o)

	resp := c.Compose("I'm being arrested right now, help", intent.Emergency, []knowledge.ScoredMatch{match(tenantDoctor(), 80)}, o)

	assert.Equal(t, o.Content, resp.Content)
	assert.Equal(t, chat.SourceFallback, resp.Source)
	assert.True(t, resp.IsEmergency)
	assert.Equal(t, 0, resp.XPAwarded)
	assert.Empty(t, resp.KnowledgeUsed)
	assert.False(t, resp.ShowDisclaimer)
	assert.Equal(t, []string{"Call 000", "Call Lifeline 13 11 14"}, resp.SuggestedActions)
}

func TestCompose_ObjectionOverride(t *testing.T) {
	o := safety.Check("that's too expensive", safety.AllEnabled())
	resp := NewComposer().Compose("that's too expensive", intent.GeneralInquiry, nil, o)

	assert.Equal(t, "price", resp.ObjectionType)
	assert.Equal(t, 3, resp.XPAwarded)
	assert.Equal(t, 0.9, resp.Confidence)
}

// ========================================
// Knowledge path
// ========================================

func TestCompose_TemplateWithDisclaimer(t *testing.T) {
	resp := NewComposer().Compose("what is a tenant doctor", intent.TenantDoctor, []knowledge.ScoredMatch{match(tenantDoctor(), 80)}, nil)

	assert.True(t, strings.HasPrefix(resp.Content, "A tenant doctor runs their own business."))
	assert.Contains(t, resp.Content, "General information only.")
	assert.True(t, resp.ShowDisclaimer)
	assert.Equal(t, chat.SourceKnowledgeBase, resp.Source)
	assert.Equal(t, 1.0, resp.Confidence)
	assert.Equal(t, []string{"Tenant Doctor Arrangements"}, resp.KnowledgeUsed)
	assert.Equal(t, "tenant_doctor", resp.Intent)
}

func TestCompose_DefaultDisclaimerWhenEntryHasNone(t *testing.T) {
	e := tenantDoctor()
	e.LegalDisclaimer = ""
	resp := NewComposer().Compose("tenant doctor", intent.TenantDoctor, []knowledge.ScoredMatch{match(e, 50)}, nil)
	assert.Contains(t, resp.Content, DefaultDisclaimer)

	custom := NewComposer().WithDisclaimer("Firm disclaimer.")
	resp = custom.Compose("tenant doctor", intent.TenantDoctor, []knowledge.ScoredMatch{match(e, 50)}, nil)
	assert.Contains(t, resp.Content, "Firm disclaimer.")
}

func TestCompose_SynthesizedFromSummaryAndContent(t *testing.T) {
	e := knowledge.Entry{
		ID:              "leases",
		Title:           "Leases",
		Summary:         "Leases need care.",
		Content:         strings.Repeat("a", 600),
		ConfidenceLevel: 8,
		XPReward:        20,
	}
	resp := NewComposer().Compose("review my lease", intent.Label("property"), []knowledge.ScoredMatch{match(e, 20)}, nil)

	assert.True(t, strings.HasPrefix(resp.Content, "Leases need care.\n\n"))
	assert.Contains(t, resp.Content, strings.Repeat("a", 500)+"...")
	assert.NotContains(t, resp.Content, strings.Repeat("a", 501))
	assert.True(t, strings.HasSuffix(resp.Content, followUpPrompt))
	assert.False(t, resp.ShowDisclaimer)
	assert.Equal(t, 16, resp.XPAwarded)
}

func TestCompose_DisclaimerFlagFromAnyMatch(t *testing.T) {
	plain := knowledge.Entry{ID: "a", Title: "A", Content: "x", ConfidenceLevel: 10}
	flagged := knowledge.Entry{ID: "b", Title: "B", Content: "y", ConfidenceLevel: 10, RequiresDisclaimer: true}

	resp := NewComposer().Compose("q", intent.GeneralInquiry, []knowledge.ScoredMatch{match(plain, 30), match(flagged, 20)}, nil)
	assert.True(t, resp.ShowDisclaimer)
	assert.Equal(t, []string{"A", "B"}, resp.KnowledgeUsed)
}

func TestAwardXP(t *testing.T) {
	tests := []struct {
		xp, confidence, want int
	}{
		{30, 10, 30},
		{30, 5, 15},
		{25, 9, 23},
		{5, 1, 1},
		{30, 0, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, AwardXP(knowledge.Entry{XPReward: tt.xp, ConfidenceLevel: tt.confidence}))
	}
}

// ========================================
// Booking path
// ========================================

func TestCompose_BookingTemplates(t *testing.T) {
	tests := []struct {
		message string
		want    string
	}{
		{"When is my appointment?", ownAppointmentTemplate},
		{"I need to reschedule", ownAppointmentTemplate},
		{"What availability do you have next week?", availabilityTemplate},
		{"Can I book a consultation?", bookingTemplateGeneric},
		{"Do you have a calendar link?", bookingTemplateGeneric},
	}

	c := NewComposer()
	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			resp := c.Compose(tt.message, intent.Booking, nil, nil)
			assert.Equal(t, tt.want, resp.Content)
			assert.Equal(t, DefaultXP, resp.XPAwarded)
			assert.Equal(t, []string{"Book Consultation", "Call Us"}, resp.SuggestedActions)
		})
	}
}

func TestCompose_BookingWithMatchKeepsMatchXP(t *testing.T) {
	resp := NewComposer().Compose("book a tenant doctor review", intent.Booking, []knowledge.ScoredMatch{match(tenantDoctor(), 40)}, nil)

	assert.True(t, strings.HasPrefix(resp.Content, bookingTemplateGeneric))
	assert.Equal(t, 30, resp.XPAwarded)
	assert.Empty(t, resp.KnowledgeUsed)
	assert.Equal(t, chat.SourceFallback, resp.Source)
	assert.True(t, resp.ShowDisclaimer)
	assert.Contains(t, resp.Content, "General information only.")
}

func TestCompose_DisclaimerTextFollowsFlag(t *testing.T) {
	plain := knowledge.Entry{ID: "a", Title: "A", Content: "x", ConfidenceLevel: 10}
	tests := []struct {
		name    string
		message string
		label   intent.Label
		matches []knowledge.ScoredMatch
		want    string
	}{
		{
			name:    "booking with disclaimer match",
			message: "I want to book an appointment about my tenant doctor arrangement",
			label:   intent.Booking,
			matches: []knowledge.ScoredMatch{match(tenantDoctor(), 40)},
			want:    "General information only.",
		},
		{
			name:    "disclaimer on a lower match",
			message: "q",
			label:   intent.GeneralInquiry,
			matches: []knowledge.ScoredMatch{match(plain, 30), match(tenantDoctor(), 20)},
			want:    "General information only.",
		},
		{
			name:    "no disclaimer needed",
			message: "can I book a consultation",
			label:   intent.Booking,
			matches: []knowledge.ScoredMatch{match(plain, 30)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := NewComposer().Compose(tt.message, tt.label, tt.matches, nil)
			assert.Equal(t, tt.want != "", resp.ShowDisclaimer)
			if tt.want != "" {
				assert.Contains(t, resp.Content, tt.want)
				assert.Equal(t, 1, strings.Count(resp.Content, tt.want))
			} else {
				assert.NotContains(t, resp.Content, DefaultDisclaimer)
			}
		})
	}
}

// ========================================
// Fallback path
// ========================================

func TestCompose_Fallbacks(t *testing.T) {
	tests := []struct {
		label intent.Label
		want  string
	}{
		{intent.Greeting, greetingFallback},
		{intent.Booking, bookingFallback},
		{intent.Pricing, pricingFallback},
		{intent.Contact, contactFallback},
		{intent.OfficeHours, contactFallback},
		{intent.GeneralInquiry, defaultFallback},
		{intent.CriminalLaw, defaultFallback},
	}

	c := NewComposer()
	for _, tt := range tests {
		t.Run(string(tt.label), func(t *testing.T) {
			resp := c.Compose("xyz", tt.label, nil, nil)
			assert.Equal(t, tt.want, resp.Content)
			assert.NotEmpty(t, resp.Content)
			assert.Equal(t, DefaultXP, resp.XPAwarded)
			assert.Equal(t, DefaultConfidence, resp.Confidence)
			assert.Equal(t, chat.SourceFallback, resp.Source)
		})
	}
}

func TestCompose_GreetingScenario(t *testing.T) {
	resp := NewComposer().Compose("hello", intent.Classify("hello"), knowledge.Score("hello", knowledge.MustDefaultCatalog()), nil)

	assert.Equal(t, "greeting", resp.Intent)
	assert.Equal(t, greetingFallback, resp.Content)
	assert.Equal(t, 5, resp.XPAwarded)
}

// ========================================
// Actions
// ========================================

func TestCompose_Actions(t *testing.T) {
	c := NewComposer()

	resp := c.Compose("tenant doctor", intent.Pricing, []knowledge.ScoredMatch{match(tenantDoctor(), 80)}, nil)
	assert.Equal(t, []string{"View Tenant Doctor Agreement", "View Payroll Tax Review", "View Pricing"}, resp.SuggestedActions)

	resp = c.Compose("xyz", intent.GeneralInquiry, nil, nil)
	assert.Equal(t, genericActions, resp.SuggestedActions)

	resp = c.Compose("xyz", intent.LeadCapture, nil, nil)
	assert.Equal(t, []string{"Request Callback", "Book Consultation"}, resp.SuggestedActions)
}

func TestCompose_ActionsDeduplicated(t *testing.T) {
	e := knowledge.Entry{ID: "a", Title: "A", Content: "x", ConfidenceLevel: 10, RelatedProducts: []string{"pricing", "pricing"}}
	resp := NewComposer().Compose("q", intent.Pricing, []knowledge.ScoredMatch{match(e, 30)}, nil)
	assert.Equal(t, []string{"View Pricing", "Book Consultation"}, resp.SuggestedActions)
}
