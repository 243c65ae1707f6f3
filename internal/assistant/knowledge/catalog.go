// Package knowledge holds the static FAQ catalog and the lexical scorer that
// ranks catalog entries against a chat message.
package knowledge

import (
	"fmt"
	"strings"
	"unicode/utf8"

	apperrors "bailey-assistant/internal/common/errors"
)

// Entry is one catalog record.
type Entry struct {
	ID                 string   `json:"id" yaml:"id"`
	Category           string   `json:"category" yaml:"category"`
	Subcategory        string   `json:"subcategory,omitempty" yaml:"subcategory,omitempty"`
	Topic              string   `json:"topic,omitempty" yaml:"topic,omitempty"`
	Title              string   `json:"title" yaml:"title"`
	Content            string   `json:"content" yaml:"content"`
	Summary            string   `json:"summary,omitempty" yaml:"summary,omitempty"`
	Keywords           []string `json:"keywords,omitempty" yaml:"keywords,omitempty"`
	IntentPatterns     []string `json:"intentPatterns,omitempty" yaml:"intentPatterns,omitempty"`
	ResponseTemplate   string   `json:"responseTemplate,omitempty" yaml:"responseTemplate,omitempty"`
	ConfidenceLevel    int      `json:"confidenceLevel" yaml:"confidenceLevel"`
	RequiresDisclaimer bool     `json:"requiresDisclaimer,omitempty" yaml:"requiresDisclaimer,omitempty"`
	LegalDisclaimer    string   `json:"legalDisclaimer,omitempty" yaml:"legalDisclaimer,omitempty"`
	RelatedProducts    []string `json:"relatedProducts,omitempty" yaml:"relatedProducts,omitempty"`
	XPReward           int      `json:"xpReward" yaml:"xpReward"`
}

// indexed carries the lowercased text the scorer compares against.
type indexed struct {
	title   string
	content string
	summary string
}

// Catalog is an immutable, validated list of entries. It is safe for
// concurrent use.
type Catalog struct {
	entries []Entry
	index   []indexed
	byID    map[string]int
}

// NewCatalog validates entries and builds a catalog. Entries are copied so
// later changes to the input slice do not leak in.
func NewCatalog(entries []Entry) (*Catalog, error) {
	c := &Catalog{
		entries: make([]Entry, len(entries)),
		index:   make([]indexed, len(entries)),
		byID:    make(map[string]int, len(entries)),
	}

	var problems []string
	for i, e := range entries {
		e = cloneEntry(e)
		problems = append(problems, validateEntry(i, e)...)
		if _, dup := c.byID[e.ID]; dup && e.ID != "" {
			problems = append(problems, fmt.Sprintf("entry %d: duplicate id %q", i, e.ID))
		}

		c.entries[i] = e
		c.byID[e.ID] = i
		c.index[i] = indexed{
			title:   strings.ToLower(e.Title),
			content: strings.ToLower(e.Content),
			summary: strings.ToLower(e.Summary),
		}
	}

	if len(problems) > 0 {
		return nil, invalidCatalog(strings.Join(problems, "; "))
	}
	return c, nil
}

func validateEntry(i int, e Entry) []string {
	var problems []string
	where := fmt.Sprintf("entry %d (%s)", i, e.ID)

	if strings.TrimSpace(e.ID) == "" {
		problems = append(problems, fmt.Sprintf("entry %d: id is required", i))
	}
	if e.ConfidenceLevel < 0 || e.ConfidenceLevel > 10 {
		problems = append(problems, fmt.Sprintf("%s: confidenceLevel %d outside [0,10]", where, e.ConfidenceLevel))
	}
	if strings.TrimSpace(e.ResponseTemplate) == "" && strings.TrimSpace(e.Content) == "" {
		problems = append(problems, fmt.Sprintf("%s: content is required when responseTemplate is absent", where))
	}
	if e.XPReward < 0 {
		problems = append(problems, fmt.Sprintf("%s: xpReward must not be negative", where))
	}
	for _, k := range e.Keywords {
		if k == "" || k != strings.ToLower(k) {
			problems = append(problems, fmt.Sprintf("%s: keyword %q must be non-empty lowercase", where, k))
		}
	}
	for _, p := range e.IntentPatterns {
		if p == "" || p != strings.ToLower(p) {
			problems = append(problems, fmt.Sprintf("%s: intent pattern %q must be non-empty lowercase", where, p))
		}
	}
	return problems
}

func cloneEntry(e Entry) Entry {
	e.Keywords = append([]string(nil), e.Keywords...)
	e.IntentPatterns = append([]string(nil), e.IntentPatterns...)
	e.RelatedProducts = append([]string(nil), e.RelatedProducts...)
	return e
}

// Len returns the number of entries.
func (c *Catalog) Len() int { return len(c.entries) }

// Entries returns copies of all entries in catalog order.
func (c *Catalog) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	for i, e := range c.entries {
		out[i] = cloneEntry(e)
	}
	return out
}

// Get looks an entry up by id.
func (c *Catalog) Get(id string) (Entry, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Entry{}, false
	}
	return cloneEntry(c.entries[i]), true
}

// Excerpt returns the first n runes of s, marking a cut with an ellipsis.
func Excerpt(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return strings.TrimRight(string(r[:n]), " \n\t") + "..."
}

// invalidCatalog keeps the problems in the message so startup logs and the
// catalog tool name the offending entries.
func invalidCatalog(details string) error {
	return fmt.Errorf("%w: %s", apperrors.NewCatalogInvalidError(details), details)
}
