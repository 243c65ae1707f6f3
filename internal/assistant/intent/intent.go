// Package intent classifies a chat message into one coarse label using an
// ordered rule table. The first rule that matches wins.
package intent

import (
	"regexp"
	"strings"
	"unicode"
)

// Label is an intent drawn from the closed set returned by Labels.
type Label string

// GeneralInquiry is returned when no rule matches.
const GeneralInquiry Label = "general_inquiry"

const (
	Greeting       Label = "greeting"
	Thanks         Label = "thanks"
	Goodbye        Label = "goodbye"
	Emergency      Label = "emergency"
	Booking        Label = "booking"
	Pricing        Label = "pricing"
	Contact        Label = "contact"
	OfficeHours    Label = "office_hours"
	LeadCapture    Label = "lead_capture"
	Documents      Label = "documents"
	Resources      Label = "resources"
	TenantDoctor   Label = "tenant_doctor"
	CriminalLaw    Label = "criminal_law"
	FamilyLaw      Label = "family_law"
	ImmigrationLaw Label = "immigration_law"
	PersonalInjury Label = "personal_injury"
)

// Rule maps trigger phrases, or a pattern, to a label.
type Rule struct {
	Label    Label
	Triggers []string
	Pattern  *regexp.Regexp
}

// Matches tests the rule against a message already lowercased and padded
// with a space at each end.
func (r Rule) Matches(padded string) bool {
	if r.Pattern != nil && r.Pattern.MatchString(strings.TrimSpace(padded)) {
		return true
	}
	for _, t := range r.Triggers {
		if strings.Contains(padded, t) {
			return true
		}
	}
	return false
}

// Classify returns the label of the first matching rule, or GeneralInquiry.
func Classify(message string) Label {
	padded := Normalize(message)
	for _, r := range rules {
		if r.Matches(padded) {
			return r.Label
		}
	}
	return GeneralInquiry
}

// Normalize lowercases message, blanks out punctuation other than
// apostrophes and hyphens, collapses whitespace and pads the result with one
// space on each side so triggers such as " sa " behave as word matches.
func Normalize(message string) string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsPunct(r) && r != '\'' && r != '’' && r != '-' {
			return ' '
		}
		return r
	}, strings.ToLower(message))
	return " " + strings.Join(strings.Fields(cleaned), " ") + " "
}

// Rules returns a copy of the rule table in evaluation order.
func Rules() []Rule {
	out := make([]Rule, len(rules))
	copy(out, rules)
	return out
}

// Labels lists every label Classify can return, in priority order.
func Labels() []Label {
	out := make([]Label, 0, len(rules)+1)
	for _, r := range rules {
		out = append(out, r.Label)
	}
	return append(out, GeneralInquiry)
}
