package dispatch

import (
	"fmt"
	"strings"

	"bailey-assistant/internal/assistant/knowledge"
)

// Verbosity levels accepted by BuildSystemPrompt.
const (
	VerbosityConcise  = "concise"
	VerbosityStandard = "standard"
	VerbosityDetailed = "detailed"
)

const promptExcerptRunes = 600

const basePrompt = `You are Bailey, the AI assistant for an Australian law firm that acts only for medical, dental, allied health and veterinary practices.
You answer questions about practice arrangements, payroll tax, regulation, employment, structures and the firm's services.

Rules:
- Give general information only. Never tell the user what they personally should do and never predict the outcome of their matter.
- If the question needs advice on the user's own circumstances, suggest booking a consultation.
- If the question is outside health practice law, say so and suggest the law society referral service.
- Use Australian spelling and plain English.`

var verbosityInstructions = map[string]string{
	VerbosityConcise:  "Keep answers to two or three sentences.",
	VerbosityStandard: "Keep answers to one or two short paragraphs.",
	VerbosityDetailed: "Give a thorough answer with short headings or bullet points where they help.",
}

// BuildSystemPrompt combines the firm instructions, a length instruction for
// the verbosity level and excerpts of the matched knowledge entries.
func BuildSystemPrompt(verbosity string, matches []knowledge.ScoredMatch) string {
	instruction, ok := verbosityInstructions[verbosity]
	if !ok {
		instruction = verbosityInstructions[VerbosityStandard]
	}

	var b strings.Builder
	b.WriteString(basePrompt)
	b.WriteString("\n- ")
	b.WriteString(instruction)

	if len(matches) > 0 {
		b.WriteString("\n\nRelevant firm knowledge (prefer this over general knowledge):")
		for i, m := range matches {
			e := m.Entry
			fmt.Fprintf(&b, "\n\n[%d] %s", i+1, e.Title)
			if e.Summary != "" {
				b.WriteString("\n")
				b.WriteString(e.Summary)
			}
			body := e.Content
			if body == "" {
				body = e.ResponseTemplate
			}
			if body != "" {
				b.WriteString("\n")
				b.WriteString(knowledge.Excerpt(body, promptExcerptRunes))
			}
		}
	}
	return b.String()
}
