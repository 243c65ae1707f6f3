package intent

import "regexp"

var greetingPattern = regexp.MustCompile(`^(hi|hello|hey|hiya|howdy|g['’]?day|good (morning|afternoon|evening))\b`)

// rules is ordered: greeting, thanks and safety first, then progressively more
// specific practice topics, then matters the firm does not handle.
var rules = []Rule{
	{Label: Greeting, Pattern: greetingPattern},
	{Label: Thanks, Triggers: []string{"thank", "cheers", "much appreciated", "appreciate it"}},
	{Label: Emergency, Triggers: []string{
		"being arrested", "been arrested", "domestic violence", "in danger", "suicide", "suicidal",
		"kill myself", "self harm", "self-harm", "being assaulted", "threatening to hurt",
		"life threatening", "life-threatening", "call 000", "emergency services",
	}},
	{Label: Booking, Triggers: []string{
		" book ", "booking", "appointment", "schedule a", "reschedule", "availability",
		"book in", "consultation time", "meet with",
	}},

	// practice types
	{Label: "gp_practice", Triggers: []string{" gp ", " gps ", "general practice", "general practitioner", "medical centre", "medical center"}},
	{Label: "specialist_practice", Triggers: []string{"specialist", "surgeon", "cardiolog", "dermatolog", "psychiatr", "anaesthet", "radiolog"}},
	{Label: "allied_health", Triggers: []string{"allied health", "physio", "psycholog", "chiropract", "podiatr", "occupational therap", "dietitian", "speech patholog"}},
	{Label: "dental_practice", Triggers: []string{"dental", "dentist", "orthodont"}},
	{Label: "veterinary_practice", Triggers: []string{"veterinar", " vet ", " vets ", "animal hospital"}},

	// states
	{Label: "state_sa", Triggers: []string{" sa ", "south australia", "adelaide"}},
	{Label: "state_nsw", Triggers: []string{" nsw ", "new south wales", "sydney"}},
	{Label: "state_vic", Triggers: []string{" vic ", "victoria", "melbourne"}},
	{Label: "state_qld", Triggers: []string{" qld ", "queensland", "brisbane", "gold coast"}},
	{Label: "state_tas", Triggers: []string{" tas ", "tasmania", "hobart"}},

	// transactions
	{Label: "selling_practice", Triggers: []string{"sell my practice", "selling my practice", "sale of my practice", "selling a practice", "sell the practice", "sell our practice", "exit my practice"}},
	{Label: "buying_practice", Triggers: []string{"buy a practice", "buying a practice", "purchase a practice", "purchasing a practice", "acquire a practice", "buy into", "buying into"}},
	{Label: "starting_practice", Triggers: []string{"start a practice", "starting a practice", "open a practice", "opening a practice", "new practice", "set up a practice", "setting up a practice", "start my own"}},
	{Label: "restructure", Triggers: []string{"restructur", "change my structure", "change our structure"}},
	{Label: "dispute", Triggers: []string{"dispute", "disagreement", "falling out", "conflict with", "being sued", "letter of demand"}},

	// compliance topics
	{Label: "medicare", Triggers: []string{"medicare", " mbs ", "bulk bill", "bulk-bill", "item number", " psr ", "professional services review"}},
	{Label: "workcover", Triggers: []string{"workcover", "work cover", "workers comp", "workers' comp", "workplace injury"}},
	{Label: "privacy", Triggers: []string{"privacy", "patient records", "health records", "data breach", "medical records"}},

	// service specific
	{Label: "employment_contract", Triggers: []string{"employment contract", "employment agreement", "contract of employment", "hire staff", "hiring staff", "employee contract", "new employee"}},
	{Label: "policies", Triggers: []string{"policies", "policy", "procedure manual", "handbook"}},
	{Label: "restraint", Triggers: []string{"restraint", "non-compete", "non compete", "restrictive covenant"}},
	{Label: "locum", Triggers: []string{"locum"}},

	{Label: "faq", Triggers: []string{" faq", "frequently asked", "common questions", "how does this work", "how do you work"}},
	{Label: LeadCapture, Triggers: []string{"call me", "contact me", "email me", "my email", "my number is", "my phone", "get back to me", "reach me on"}},
	{Label: Pricing, Triggers: []string{"price", "pricing", "cost", "how much", " fee ", " fees ", "quote", "fixed fee"}},

	// long tail, one topic each
	{Label: TenantDoctor, Triggers: []string{"tenant doctor", "tenant-doctor", "tenant arrangement", "licence to occupy", "license to occupy", "room licence"}},
	{Label: "payroll_tax", Triggers: []string{"payroll tax", "payroll-tax", "payroll"}},
	{Label: "fair_work", Triggers: []string{"fair work", "modern award", " award ", "unfair dismissal", "national employment standards"}},
	{Label: "ahpra", Triggers: []string{"ahpra", "medical board", "advertising", "testimonial", "registration"}},
	{Label: "patient_complaint", Triggers: []string{"complaint", "complain", "health complaints commissioner", "unhappy patient"}},
	{Label: "pathology", Triggers: []string{"pathology", "collection centre", "collection center", "approved collection"}},
	{Label: "legal_audit", Triggers: []string{"legal audit", "health check", "legal review", "audit my", "review my documents"}},
	{Label: "case_law", Triggers: []string{"case law", "court case", "tribunal", "precedent", "naaz", "ruling"}},
	{Label: "risk_language", Triggers: []string{"risk language", "wording", "drafting", "language in my"}},
	{Label: "compliance_general", Triggers: []string{"compliance", "compliant", "regulation", "regulatory", "obligations"}},
	{Label: "structure", Triggers: []string{"structure", "service trust", "service entity", "company", " trust ", "entity"}},
	{Label: "property", Triggers: []string{"lease", "leasing", "property", "premises", "landlord", "tenant"}},
	{Label: "partnership", Triggers: []string{"partnership", "partner", "associate agreement", "co-owner", "shareholder"}},
	{Label: "accounting", Triggers: []string{"accountant", "accounting", "bookkeep", "tax return", " gst "}},
	{Label: "telehealth", Triggers: []string{"telehealth", "video consult", "online consult"}},
	{Label: "technology", Triggers: []string{"software", "technology", "practice management system", "website", "cyber"}},
	{Label: OfficeHours, Triggers: []string{"opening hours", "office hours", "are you open", "what time do you"}},
	{Label: Contact, Triggers: []string{"contact", "phone number", "email address", "your address", "where are you", "office", "location"}},
	{Label: "urgent", Triggers: []string{"urgent", "asap", "as soon as possible", "immediately", "deadline"}},
	{Label: "copyright", Triggers: []string{"copyright", "intellectual property", "trademark", "trade mark", "logo", "brand"}},
	{Label: Resources, Triggers: []string{"resource", "guide", "checklist", "article", "blog", "newsletter", "webinar"}},
	{Label: Documents, Triggers: []string{"document", "template", "download"}},
	{Label: "about", Triggers: []string{"about you", "about the firm", "who are you", "your firm", "your experience", "why choose", "what do you do"}},
	{Label: "team", Triggers: []string{" team", "lawyer", "solicitor", "who will i"}},

	// sign-offs only win when nothing more specific was asked
	{Label: Goodbye, Triggers: []string{" bye ", "goodbye", "see you later", "that's all", "thats all"}},

	// outside the firm's practice areas
	{Label: CriminalLaw, Triggers: []string{"criminal", "arrested", "police", "charged with", " bail ", "drink driving"}},
	{Label: FamilyLaw, Triggers: []string{"divorce", "custody", "family law", "separation", "child support", "parenting order"}},
	{Label: ImmigrationLaw, Triggers: []string{" visa ", " visas ", "immigration", "citizenship", "migration"}},
	{Label: PersonalInjury, Triggers: []string{"personal injury", "car accident", "slip and fall", "injured in", "compensation claim"}},
}
