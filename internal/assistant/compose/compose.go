// Package compose assembles the final reply from the safety override, the
// intent and the ranked knowledge matches.
package compose

import (
	"math"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"bailey-assistant/internal/assistant/chat"
	"bailey-assistant/internal/assistant/intent"
	"bailey-assistant/internal/assistant/knowledge"
	"bailey-assistant/internal/assistant/safety"
)

const (
	// DefaultXP is awarded when no knowledge match backs the reply.
	DefaultXP = 5
	// DefaultConfidence is reported when no knowledge match backs the reply.
	DefaultConfidence = 0.5
	// MaxActions caps the suggested quick actions.
	MaxActions = 3
	// ContentExcerptRunes is how much entry content a synthesized answer quotes.
	ContentExcerptRunes = 500
)

// Composer builds GeneratedResponse values. It holds no per-request state
// and is safe for concurrent use.
type Composer struct {
	disclaimer string
}

func NewComposer() *Composer {
	return &Composer{disclaimer: DefaultDisclaimer}
}

// WithDisclaimer replaces the text used when an entry needs a disclaimer but
// carries none of its own.
func (c *Composer) WithDisclaimer(text string) *Composer {
	if strings.TrimSpace(text) != "" {
		c.disclaimer = text
	}
	return c
}

// Compose picks the reply path: override, booking, knowledge match, then the
// intent-keyed fallback. XP and the disclaimer flag follow the matches on
// every non-override path; source and knowledge titles follow the path taken.
func (c *Composer) Compose(message string, label intent.Label, matches []knowledge.ScoredMatch, override *safety.Override) chat.GeneratedResponse {
	if override != nil {
		return c.fromOverride(label, override)
	}

	resp := chat.GeneratedResponse{
		Intent:         string(label),
		Source:         chat.SourceFallback,
		Confidence:     DefaultConfidence,
		XPAwarded:      DefaultXP,
		KnowledgeUsed:  []string{},
		ShowDisclaimer: anyRequiresDisclaimer(matches),
	}

	var top *knowledge.Entry
	if len(matches) > 0 {
		top = &matches[0].Entry
		resp.Confidence = float64(top.ConfidenceLevel) / 10
		resp.XPAwarded = AwardXP(*top)
	}

	lower := strings.ToLower(message)
	switch {
	case isBookingRequest(lower):
		resp.Content = bookingTemplate(lower)
	case top != nil:
		resp.Content = c.answerFromEntry(*top)
		resp.Source = chat.SourceKnowledgeBase
		resp.KnowledgeUsed = titles(matches)
	default:
		resp.Content = fallbackTemplate(label)
	}

	if d := c.Disclaimer(matches); d != "" && !strings.Contains(resp.Content, d) {
		resp.Content += "\n\n" + d
	}

	resp.SuggestedActions = c.suggestActions(label, top)
	return resp
}

func (c *Composer) fromOverride(label intent.Label, o *safety.Override) chat.GeneratedResponse {
	actions := append([]string(nil), o.Actions...)
	if len(actions) > MaxActions {
		actions = actions[:MaxActions]
	}
	return chat.GeneratedResponse{
		Content:              o.Content,
		Source:               chat.SourceFallback,
		Intent:               string(label),
		Confidence:           o.Confidence,
		KnowledgeUsed:        []string{},
		XPAwarded:            o.XP,
		SuggestedActions:     actions,
		IsEmergency:          o.IsEmergency,
		IsLegalAdviceRefusal: o.IsLegalAdviceRefusal,
		ObjectionType:        string(o.ObjectionType),
	}
}

// answerFromEntry prefers the pre-written template; otherwise it quotes the
// summary and the start of the content.
func (c *Composer) answerFromEntry(e knowledge.Entry) string {
	var b strings.Builder
	if e.ResponseTemplate != "" {
		b.WriteString(e.ResponseTemplate)
	} else {
		if e.Summary != "" {
			b.WriteString(e.Summary)
			b.WriteString("\n\n")
		}
		b.WriteString(knowledge.Excerpt(e.Content, ContentExcerptRunes))
		b.WriteString("\n\n")
		b.WriteString(followUpPrompt)
	}

	if e.RequiresDisclaimer {
		b.WriteString("\n\n")
		b.WriteString(c.DisclaimerFor(e))
	}
	return b.String()
}

// DisclaimerFor returns the entry's own disclaimer or the firm default.
func (c *Composer) DisclaimerFor(e knowledge.Entry) string {
	if strings.TrimSpace(e.LegalDisclaimer) != "" {
		return e.LegalDisclaimer
	}
	return c.disclaimer
}

// Disclaimer returns the disclaimer of the first match that needs one, or
// "" when none does.
func (c *Composer) Disclaimer(matches []knowledge.ScoredMatch) string {
	for _, m := range matches {
		if m.Entry.RequiresDisclaimer {
			return c.DisclaimerFor(m.Entry)
		}
	}
	return ""
}

// AwardXP scales an entry's reward by its confidence.
func AwardXP(e knowledge.Entry) int {
	return int(math.Round(float64(e.XPReward) * float64(e.ConfidenceLevel) / 10))
}

func anyRequiresDisclaimer(matches []knowledge.ScoredMatch) bool {
	for _, m := range matches {
		if m.Entry.RequiresDisclaimer {
			return true
		}
	}
	return false
}

func titles(matches []knowledge.ScoredMatch) []string {
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.Entry.Title)
	}
	return out
}

var intentActions = map[intent.Label][]string{
	intent.Booking:     {"Book Consultation", "Call Us"},
	intent.Pricing:     {"View Pricing", "Book Consultation"},
	intent.Contact:     {"Call Us", "Email Us"},
	intent.OfficeHours: {"Call Us", "Email Us"},
	intent.LeadCapture: {"Request Callback", "Book Consultation"},
	intent.Documents:   {"Browse Documents", "View Resources"},
	intent.Resources:   {"Browse Documents", "View Resources"},
	intent.Greeting:    {"Book Consultation", "Browse Documents"},
}

var genericActions = []string{"Book Consultation", "Browse Documents", "Call Us"}

// suggestActions lists product actions from the top match, then the intent's
// canned pair, falling back to the generic set when neither applies.
func (c *Composer) suggestActions(label intent.Label, top *knowledge.Entry) []string {
	var out []string
	seen := make(map[string]bool)
	add := func(a string) {
		if len(out) < MaxActions && !seen[a] {
			seen[a] = true
			out = append(out, a)
		}
	}

	if top != nil {
		for _, p := range top.RelatedProducts {
			add("View " + productName(p))
		}
	}
	for _, a := range intentActions[label] {
		add(a)
	}
	if len(out) == 0 {
		for _, a := range genericActions {
			add(a)
		}
	}
	return out
}

// productName turns "tenant-doctor-agreement" into "Tenant Doctor Agreement".
// Casers carry state, so each call gets its own.
func productName(id string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(id, "-", " "))
}
