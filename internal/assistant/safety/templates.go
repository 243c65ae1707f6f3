package safety

const (
	emergencyContent = "If you or someone else is in immediate danger, please call 000 now for police, ambulance or fire. " +
		"For crisis support you can call Lifeline on 13 11 14 at any time, or 1800RESPECT on 1800 737 732 for domestic and family violence support. " +
		"I'm an AI assistant for a health practice law firm and I'm not able to help with emergencies, " +
		"but once you are safe our team is here to help with your practice's legal needs."

	legalAdviceContent = "I can share general information, but I can't give legal advice about your specific situation or predict an outcome. " +
		"Every matter turns on its own facts and documents, so the best next step is a consultation with one of our lawyers. " +
		"They can review your circumstances and give you advice you can rely on. Would you like to book a time?"

	priceContent = "That's a fair concern. Most of our work is done on a fixed fee agreed up front, so you know the cost before we start. " +
		"Getting practitioner agreements or payroll tax arrangements wrong can cost far more than the fee to get them right. " +
		"Would you like a quote, or to see our document templates as a lower cost starting point?"

	thinkContent = "Of course, take the time you need. If it helps, I can point you to our free guides so you can read more before deciding, " +
		"or you can book a short consultation to ask a lawyer questions without committing to anything further."

	diyContent = "Templates can be a good starting point, but generic documents often miss the payroll tax, AHPRA and Medicare issues that are specific to health practices. " +
		"Our document library has practice-ready templates with drafting notes, and we offer a review service if you'd like a lawyer to check the finished version."

	advisorContent = "It's great that you already have an adviser. Health practice law is a specialist area, and we often work alongside a client's existing lawyer or accountant " +
		"on matters such as tenant doctor arrangements and payroll tax reviews. Happy to help with a second opinion or a specific project whenever it suits."
)

var objectionContent = map[ObjectionType]string{
	ObjectionPrice:   priceContent,
	ObjectionThink:   thinkContent,
	ObjectionDIY:     diyContent,
	ObjectionAdvisor: advisorContent,
}

var objectionActions = map[ObjectionType][]string{
	ObjectionPrice:   {"View Pricing", "Browse Documents"},
	ObjectionThink:   {"View Resources", "Book Consultation"},
	ObjectionDIY:     {"Browse Documents", "Book Consultation"},
	ObjectionAdvisor: {"Book Consultation", "Call Us"},
}

func emergencyOverride() *Override {
	return &Override{
		Kind:        KindEmergency,
		Content:     emergencyContent,
		XP:          0,
		Actions:     []string{"Call 000", "Call Lifeline 13 11 14"},
		Confidence:  1.0,
		IsEmergency: true,
	}
}

func legalAdviceOverride() *Override {
	return &Override{
		Kind:                 KindLegalAdvice,
		Content:              legalAdviceContent,
		XP:                   2,
		Actions:              []string{"Book Consultation", "Call Us"},
		Confidence:           1.0,
		IsLegalAdviceRefusal: true,
	}
}

func objectionOverride(t ObjectionType) *Override {
	return &Override{
		Kind:          KindObjection,
		Content:       objectionContent[t],
		XP:            3,
		Actions:       append([]string(nil), objectionActions[t]...),
		Confidence:    0.9,
		ObjectionType: t,
	}
}
