package safety

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGate_Check(t *testing.T) {
	tests := []struct {
		name          string
		message       string
		wantKind      Kind
		wantObjection ObjectionType
	}{
		{"arrest", "I'm being arrested right now, help", KindEmergency, ""},
		{"standalone 000", "should I call 000?", KindEmergency, ""},
		{"000 at start", "000 or lifeline?", KindEmergency, ""},
		{"violence beats booking", "I need to book an appointment, there's domestic violence happening now", KindEmergency, ""},
		{"sign", "Should I sign this service agreement?", KindLegalAdvice, ""},
		{"sue", "Can I sue my former partner?", KindLegalAdvice, ""},
		{"emergency beats legal advice", "can i sue? i am in danger", KindEmergency, ""},
		{"legal advice beats objection", "It's too expensive, should I accept their offer?", KindLegalAdvice, ""},
		{"price", "That sounds too expensive", KindObjection, ObjectionPrice},
		{"price curly apostrophe", "We can’t afford that", KindObjection, ObjectionPrice},
		{"think", "I need to think about it", KindObjection, ObjectionThink},
		{"diy", "I'll just do it myself", KindObjection, ObjectionDIY},
		{"diy at start", "diy is fine for us", KindObjection, ObjectionDIY},
		{"advisor", "We already have a lawyer", KindObjection, ObjectionAdvisor},
	}

	gate := NewGate(AllEnabled())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := gate.Check(tt.message)
			require.NotNil(t, o)
			assert.Equal(t, tt.wantKind, o.Kind)
			assert.Equal(t, tt.wantObjection, o.ObjectionType)
			assert.NotEmpty(t, o.Content)
		})
	}
}

func TestGate_NoOverride(t *testing.T) {
	messages := []string{
		"",
		"What is a Tenant Doctor arrangement?",
		"Our payroll tax bill was $10,000 last year",
		"We opened in 2000",
		"Revenue of 1,000,000",
		"I want to book a consultation",
		"How do I handle a medical emergency policy?",
		"Is the candidate a good fit?",
	}

	gate := NewGate(AllEnabled())
	for _, m := range messages {
		assert.Nil(t, gate.Check(m), m)
	}
}

func TestGate_FlagsDisableChecks(t *testing.T) {
	msg := "I'm being arrested and can I sue? it's too expensive"

	o := Check(msg, Flags{LegalAdviceRefusal: true, ObjectionHandling: true})
	require.NotNil(t, o)
	assert.Equal(t, KindLegalAdvice, o.Kind)

	o = Check(msg, Flags{ObjectionHandling: true})
	require.NotNil(t, o)
	assert.Equal(t, KindObjection, o.Kind)

	assert.Nil(t, Check(msg, Flags{}))
}

func TestOverrideShapes(t *testing.T) {
	gate := NewGate(AllEnabled())

	em := gate.Check("domestic violence")
	require.NotNil(t, em)
	assert.True(t, em.IsEmergency)
	assert.False(t, em.IsLegalAdviceRefusal)
	assert.Equal(t, 0, em.XP)
	assert.Equal(t, 1.0, em.Confidence)
	assert.Contains(t, em.Content, "000")

	la := gate.Check("am i liable for this?")
	require.NotNil(t, la)
	assert.True(t, la.IsLegalAdviceRefusal)
	assert.Equal(t, 2, la.XP)
	assert.Equal(t, []string{"Book Consultation", "Call Us"}, la.Actions)

	ob := gate.Check("a bit cheaper?")
	require.NotNil(t, ob)
	assert.Equal(t, 3, ob.XP)
	assert.Len(t, ob.Actions, 2)

	// actions are copied per override
	ob.Actions[0] = "changed"
	again := gate.Check("a bit cheaper?")
	assert.Equal(t, "View Pricing", again.Actions[0])
}

func TestEmergencyNumberBoundaries(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"000", true},
		{"call 000 now", true},
		{"(000)", true},
		{"$10,000", false},
		{"10000", false},
		{"0000", false},
		{"2000", false},
		{"1.000", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsEmergency(tt.in), tt.in)
	}
}
