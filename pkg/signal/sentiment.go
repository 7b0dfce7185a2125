package signal

import "strings"

// Lexicon scores text polarity from configured positive/negative word
// lists. Deterministic on purpose: scoring must be bit-reproducible.
type Lexicon struct {
	positive []string
	negative []string
}

// NewLexicon builds a polarity scorer. Words are matched as substrings of
// the lowercased text, same as the keyword tables elsewhere.
func NewLexicon(positive, negative []string) *Lexicon {
	lower := func(words []string) []string {
		out := make([]string, len(words))
		for i, w := range words {
			out[i] = strings.ToLower(w)
		}
		return out
	}
	return &Lexicon{positive: lower(positive), negative: lower(negative)}
}

// Score returns a polarity in [-1,1]: (pos-neg)/(pos+neg) over matched
// terms, 0 for neutral or empty text.
func (l *Lexicon) Score(text string) float64 {
	if text == "" {
		return 0
	}
	lower := strings.ToLower(text)

	var pos, neg int
	for _, w := range l.positive {
		if strings.Contains(lower, w) {
			pos++
		}
	}
	for _, w := range l.negative {
		if strings.Contains(lower, w) {
			neg++
		}
	}

	total := pos + neg
	if total == 0 {
		return 0
	}
	return float64(pos-neg) / float64(total)
}

// MeanVariance computes plain arithmetic mean and population variance over
// post polarities. Empty sample yields (0, 0).
func (l *Lexicon) MeanVariance(posts []Post) (float64, float64) {
	if len(posts) == 0 {
		return 0, 0
	}

	scores := make([]float64, len(posts))
	var sum float64
	for i, p := range posts {
		scores[i] = l.Score(p.Content)
		sum += scores[i]
	}
	mean := sum / float64(len(scores))

	var varSum float64
	for _, s := range scores {
		d := s - mean
		varSum += d * d
	}
	return mean, varSum / float64(len(scores))
}
