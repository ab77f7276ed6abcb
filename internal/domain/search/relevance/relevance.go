// Package relevance scores a query against a piece of content with substring and
// token-overlap heuristics. Scores are in [0, 1].
package relevance

import (
	"strings"
	"unicode/utf8"
)

// Weights holds the heuristic constants. The defaults are fixed for compatibility;
// they have no derivation beyond "titles matter more than bodies".
type Weights struct {
	TitlePhrase   float64 `yaml:"title_phrase"`
	BodyPhrase    float64 `yaml:"body_phrase"`
	TitleWord     float64 `yaml:"title_word"`
	BodyWord      float64 `yaml:"body_word"`
	MinWordLength int     `yaml:"min_word_length"`
}

// DefaultWeights returns the stock weighting: 0.8 / 0.4 / 0.2 / 0.1, words of 3+ runes.
func DefaultWeights() Weights {
	return Weights{
		TitlePhrase:   0.8,
		BodyPhrase:    0.4,
		TitleWord:     0.2,
		BodyWord:      0.1,
		MinWordLength: 3,
	}
}

// Document is the scorable view of a content record.
// Content and Description are both treated as body text.
type Document struct {
	Title       string
	Content     string
	Description string
}

// Scorer scores documents with a fixed set of weights.
type Scorer struct {
	w Weights
}

// NewScorer creates a scorer. Zero-valued weights are replaced with the defaults.
func NewScorer(w Weights) Scorer {
	if w == (Weights{}) {
		w = DefaultWeights()
	}
	if w.MinWordLength <= 0 {
		w.MinWordLength = DefaultWeights().MinWordLength
	}
	return Scorer{w: w}
}

// Weights returns the weights the scorer applies.
func (s Scorer) Weights() Weights { return s.w }

// Score returns the relevance of doc for query using the default weights.
func Score(query string, doc Document) float64 {
	return NewScorer(DefaultWeights()).Score(query, doc)
}

// Score returns the relevance of doc for query, clamped to [0, 1].
// Word-level overlap applies to multi-word queries only.
func (s Scorer) Score(query string, doc Document) float64 {
	q := strings.ToLower(query)
	title := strings.ToLower(doc.Title)
	content := strings.ToLower(doc.Content)
	description := strings.ToLower(doc.Description)

	var score float64

	if q != "" {
		if strings.Contains(title, q) {
			score += s.w.TitlePhrase
		}
		if strings.Contains(content, q) || strings.Contains(description, q) {
			score += s.w.BodyPhrase
		}
	}

	// A single-word query is fully covered by the phrase checks above.
	words := strings.Fields(q)
	if len(words) < 2 {
		return clamp(score)
	}

	for _, word := range words {
		if utf8.RuneCountInString(word) < s.w.MinWordLength {
			continue
		}
		if strings.Contains(title, word) {
			score += s.w.TitleWord
		}
		if strings.Contains(content, word) || strings.Contains(description, word) {
			score += s.w.BodyWord
		}
	}

	return clamp(score)
}

func clamp(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < 0 {
		return 0
	}
	return v
}
