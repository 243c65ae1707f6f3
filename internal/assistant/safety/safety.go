// Package safety implements the override checks that run before normal
// routing: emergency redirect, legal-advice refusal and sales objections.
package safety

import (
	"regexp"
	"strings"
)

// Kind names the check that produced an override.
type Kind string

const (
	KindEmergency   Kind = "emergency"
	KindLegalAdvice Kind = "legal_advice"
	KindObjection   Kind = "objection"
)

// ObjectionType names a recognised sales objection.
type ObjectionType string

const (
	ObjectionPrice   ObjectionType = "price"
	ObjectionThink   ObjectionType = "think_about_it"
	ObjectionDIY     ObjectionType = "do_it_myself"
	ObjectionAdvisor ObjectionType = "has_advisor"
)

// Flags toggles each check.
type Flags struct {
	EmergencyDetection bool
	LegalAdviceRefusal bool
	ObjectionHandling  bool
}

// AllEnabled turns every check on.
func AllEnabled() Flags {
	return Flags{EmergencyDetection: true, LegalAdviceRefusal: true, ObjectionHandling: true}
}

// Override is a fully formed reply that replaces normal routing.
type Override struct {
	Kind                 Kind
	Content              string
	XP                   int
	Actions              []string
	Confidence           float64
	IsEmergency          bool
	IsLegalAdviceRefusal bool
	ObjectionType        ObjectionType
}

// Gate runs the checks in a fixed order; the first match wins.
type Gate struct {
	flags Flags
}

func NewGate(flags Flags) *Gate {
	return &Gate{flags: flags}
}

// Check is NewGate(flags).Check(message).
func Check(message string, flags Flags) *Override {
	return NewGate(flags).Check(message)
}

// Check returns nil when no enabled check matches.
func (g *Gate) Check(message string) *Override {
	lower := strings.ToLower(message)

	if g.flags.EmergencyDetection && IsEmergency(lower) {
		return emergencyOverride()
	}
	if g.flags.LegalAdviceRefusal && IsLegalAdviceRequest(lower) {
		return legalAdviceOverride()
	}
	if g.flags.ObjectionHandling {
		if t, ok := DetectObjection(lower); ok {
			return objectionOverride(t)
		}
	}
	return nil
}

var emergencyPhrases = []string{
	"being arrested",
	"been arrested",
	"under arrest",
	"domestic violence",
	"family violence",
	"in danger",
	"being assaulted",
	"being attacked",
	"threatening to hurt",
	"threatening to kill",
	"suicide",
	"suicidal",
	"kill myself",
	"self harm",
	"self-harm",
	"end my life",
	"overdose",
	"life threatening",
	"life-threatening",
	"emergency services",
}

// emergencyNumber matches 000 as a standalone number so amounts such as
// $10,000 or 2000 do not trigger.
var emergencyNumber = regexp.MustCompile(`(^|[^\d$,.])000([^\d]|$)`)

// IsEmergency reports whether a lowercased message contains a danger phrase.
func IsEmergency(lower string) bool {
	for _, p := range emergencyPhrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return emergencyNumber.MatchString(lower)
}

var legalAdvicePhrases = []string{
	"should i sign",
	"can i sue",
	"am i liable",
	"will i win",
	"what are my chances",
	"do i have a case",
	"is it legal for me",
	"should i accept",
	"should i terminate",
	"what would you advise me to do",
}

// IsLegalAdviceRequest reports whether a lowercased message asks for a
// prediction or a directive about the user's own matter.
func IsLegalAdviceRequest(lower string) bool {
	for _, p := range legalAdvicePhrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

type objectionRule struct {
	kind     ObjectionType
	triggers []string
}

var objectionRules = []objectionRule{
	{ObjectionPrice, []string{"too expensive", "can't afford", "can’t afford", "cannot afford", "cheaper", "too much money"}},
	{ObjectionThink, []string{"think about it", "need to think", "not sure yet"}},
	{ObjectionDIY, []string{"do it myself", " diy", "free template", "template online"}},
	{ObjectionAdvisor, []string{"already have a lawyer", "already have a solicitor", "already have an advisor", "already have an accountant"}},
}

// DetectObjection returns the first objection a lowercased message raises.
func DetectObjection(lower string) (ObjectionType, bool) {
	padded := " " + lower
	for _, r := range objectionRules {
		for _, t := range r.triggers {
			if strings.Contains(padded, t) {
				return r.kind, true
			}
		}
	}
	return "", false
}
