package compose

import (
	"strings"

	"bailey-assistant/internal/assistant/intent"
)

// DefaultDisclaimer is appended when an entry needs a disclaimer but has no
// text of its own.
const DefaultDisclaimer = "This is general information only and does not constitute legal advice. " +
	"For advice about your situation, please book a consultation with one of our lawyers."

const followUpPrompt = "Would you like to know more about how this applies to your practice, or book a consultation to discuss it with a lawyer?"

var bookingKeywords = []string{
	"appointment",
	"booking",
	"book a",
	"book an",
	"schedule a",
	"reschedule",
	"availability",
	"available time",
	"calendar",
	"free slot",
}

var ownAppointmentKeywords = []string{"my appointment", "my booking", "when is my", "reschedule", "cancel my"}

var availabilityKeywords = []string{"availability", "available", "free slot", "what times", "when can"}

const (
	ownAppointmentTemplate = "To check, change or cancel an existing appointment, please use the link in your booking confirmation email " +
		"or call our office and the team will update it for you. If you need to reschedule, let us know a couple of times that suit and we'll confirm one."

	availabilityTemplate = "We usually have consultation times available within the next few business days, including phone and video appointments. " +
		"You can see live availability and choose a time on our booking page, or call us and we'll find a slot that works for you."

	bookingTemplateGeneric = "I'd be happy to help you book a consultation. Our initial consultations are fixed fee and can be held by phone, video or in person. " +
		"Use the booking page to pick a time, or call us and we'll arrange it for you."
)

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

func isBookingRequest(lower string) bool {
	return containsAny(lower, bookingKeywords)
}

func bookingTemplate(lower string) string {
	switch {
	case containsAny(lower, ownAppointmentKeywords):
		return ownAppointmentTemplate
	case containsAny(lower, availabilityKeywords):
		return availabilityTemplate
	default:
		return bookingTemplateGeneric
	}
}

const (
	greetingFallback = "Hi, I'm Bailey, the AI assistant for our health practice law team. " +
		"I can help with questions about tenant doctor arrangements, payroll tax, practice agreements, compliance and more. What can I help you with today?"

	bookingFallback = "You can book a consultation with one of our lawyers online at a time that suits you, or call our office and we'll arrange it for you."

	pricingFallback = "Most of our work is done on a fixed fee that we agree with you before we start. " +
		"Tell me a little about what you need and I can point you to the right package, or book a consultation for an exact quote."

	contactFallback = "You can call our office during business hours, Monday to Friday 9am to 5pm, email our team, or book a consultation online. " +
		"We aim to respond to all enquiries within one business day."

	defaultFallback = "Thanks for your question. I don't have a specific answer for that yet, but our lawyers help health practices with agreements, payroll tax, " +
		"structures, compliance and practice sales. Could you tell me a bit more, or would you like to book a consultation?"
)

// fallbackTemplate answers when no knowledge entry matched.
func fallbackTemplate(label intent.Label) string {
	switch label {
	case intent.Greeting:
		return greetingFallback
	case intent.Booking:
		return bookingFallback
	case intent.Pricing:
		return pricingFallback
	case intent.Contact, intent.OfficeHours:
		return contactFallback
	default:
		return defaultFallback
	}
}
