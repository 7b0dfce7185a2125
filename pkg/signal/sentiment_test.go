package signal

import (
	"math"
	"testing"
)

func testLexicon() *Lexicon {
	return NewLexicon(
		[]string{"alta", "lucro", "recorde"},
		[]string{"queda", "prejuízo", "crise"},
	)
}

func TestLexiconScore(t *testing.T) {
	t.Parallel()

	l := testLexicon()
	cases := []struct {
		text string
		want float64
	}{
		{"Lucro recorde no trimestre", 1},
		{"Prejuízo e crise no setor", -1},
		{"Alta do lucro apesar da queda no varejo", 1.0 / 3.0},
		{"Bolsa opera estável", 0},
		{"", 0},
	}
	for _, tc := range cases {
		if got := l.Score(tc.text); math.Abs(got-tc.want) > 1e-9 {
			t.Fatalf("Score(%q) = %v, want %v", tc.text, got, tc.want)
		}
	}
}

func TestMeanVariance(t *testing.T) {
	t.Parallel()

	l := testLexicon()
	posts := []Post{
		{Content: "lucro recorde"},
		{Content: "crise profunda"},
	}

	mean, variance := l.MeanVariance(posts)
	if mean != 0 {
		t.Fatalf("mean = %v, want 0", mean)
	}
	if variance != 1 {
		t.Fatalf("variance = %v, want 1", variance)
	}
}

func TestMeanVariance_Empty(t *testing.T) {
	t.Parallel()

	mean, variance := testLexicon().MeanVariance(nil)
	if mean != 0 || variance != 0 {
		t.Fatalf("empty sample = (%v, %v), want (0, 0)", mean, variance)
	}
}
