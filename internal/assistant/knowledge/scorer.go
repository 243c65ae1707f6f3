package knowledge

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Weights are the scoring constants. DefaultWeights holds the production
// values; change them only with product sign-off.
type Weights struct {
	IntentPattern  float64 `json:"intentPattern" yaml:"intentPattern"`
	Keyword        float64 `json:"keyword" yaml:"keyword"`
	TitleToken     float64 `json:"titleToken" yaml:"titleToken"`
	ContentToken   float64 `json:"contentToken" yaml:"contentToken"`
	SummaryToken   float64 `json:"summaryToken" yaml:"summaryToken"`
	Threshold      float64 `json:"threshold" yaml:"threshold"`
	Limit          int     `json:"limit" yaml:"limit"`
	MinTokenLength int     `json:"minTokenLength" yaml:"minTokenLength"`
}

func DefaultWeights() Weights {
	return Weights{
		IntentPattern:  15,
		Keyword:        8,
		TitleToken:     4,
		ContentToken:   2,
		SummaryToken:   3,
		Threshold:      5,
		Limit:          3,
		MinTokenLength: 4,
	}
}

// ScoredMatch pairs an entry with its score for one message.
type ScoredMatch struct {
	Entry Entry   `json:"entry"`
	Score float64 `json:"score"`
}

// Scorer ranks catalog entries. The zero value is not usable; use
// NewScorer or DefaultScorer.
type Scorer struct {
	weights Weights
}

func NewScorer(w Weights) *Scorer {
	return &Scorer{weights: w}
}

func DefaultScorer() *Scorer {
	return NewScorer(DefaultWeights())
}

// Score is DefaultScorer().Score.
func Score(message string, catalog *Catalog) []ScoredMatch {
	return DefaultScorer().Score(message, catalog)
}

// Score returns at most Limit entries whose score exceeds Threshold, highest
// first. Ties keep catalog order.
func (s *Scorer) Score(message string, catalog *Catalog) []ScoredMatch {
	if catalog == nil || catalog.Len() == 0 {
		return nil
	}

	lower := strings.ToLower(message)
	tokens := Tokenize(lower, s.weights.MinTokenLength)

	var matches []ScoredMatch
	for i, e := range catalog.entries {
		raw := s.rawScore(lower, tokens, e, catalog.index[i])
		score := raw * float64(e.ConfidenceLevel) / 10
		if score > s.weights.Threshold {
			matches = append(matches, ScoredMatch{Entry: cloneEntry(e), Score: score})
		}
	}

	sort.SliceStable(matches, func(a, b int) bool {
		return matches[a].Score > matches[b].Score
	})

	if s.weights.Limit > 0 && len(matches) > s.weights.Limit {
		matches = matches[:s.weights.Limit]
	}
	return matches
}

func (s *Scorer) rawScore(lower string, tokens []string, e Entry, idx indexed) float64 {
	var score float64
	for _, p := range e.IntentPatterns {
		if strings.Contains(lower, p) {
			score += s.weights.IntentPattern
		}
	}
	for _, k := range e.Keywords {
		if strings.Contains(lower, k) {
			score += s.weights.Keyword
		}
	}
	for _, t := range tokens {
		if strings.Contains(idx.title, t) {
			score += s.weights.TitleToken
		}
		if strings.Contains(idx.content, t) {
			score += s.weights.ContentToken
		}
		if strings.Contains(idx.summary, t) {
			score += s.weights.SummaryToken
		}
	}
	return score
}

// Tokenize splits an already lowercased message on whitespace, trims
// surrounding punctuation and keeps tokens of at least minLen runes.
func Tokenize(lower string, minLen int) []string {
	fields := strings.Fields(lower)
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimFunc(f, unicode.IsPunct)
		if utf8.RuneCountInString(f) >= minLen {
			tokens = append(tokens, f)
		}
	}
	return tokens
}
