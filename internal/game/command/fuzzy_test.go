package command_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/thornvale/mud/internal/game/command"
)

func TestFuzzyScoreBands(t *testing.T) {
	tests := []struct {
		name  string
		query string
		cand  string
		want  int
	}{
		{"exact", "Rusty Sword", "Rusty Sword", 100},
		{"exact case-insensitive", "rusty sword", "Rusty Sword", 100},
		{"substring", "usty Swo", "Rusty Sword", 80},
		{"single word substring", "sword", "Rusty Sword", 80},
		{"word prefix per token", "rus swo", "Rusty Sword", 70},
		{"mixed prefix and substring", "rus wor", "Rusty Sword", 60},
		{"subsequence", "rsty", "Rusty Sword", 30},
		{"subsequence tokens", "rty srd", "Rusty Sword", 30},
		{"one token misses", "rusty xyz", "Rusty Sword", 0},
		{"no match", "xyz", "Rusty Sword", 0},
		{"empty query", "", "Rusty Sword", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, command.FuzzyScore(tt.query, tt.cand))
		})
	}
}

func TestBestMatchPrefersHigherScoreAndEarlierTies(t *testing.T) {
	cands := []command.Candidate{
		{ID: "a", Name: "Grey Wolf"},
		{ID: "b", Name: "Grey Bear"},
		{ID: "c", Name: "Wolf Fang"},
	}

	m, ok := command.BestMatch("grey wolf", cands)
	assert.True(t, ok)
	assert.Equal(t, "a", m.Candidate.ID)
	assert.True(t, m.Exact())

	// Both greys score identically on the shared token; the earlier wins.
	m, ok = command.BestMatch("grey", cands)
	assert.True(t, ok)
	assert.Equal(t, "a", m.Candidate.ID)

	_, ok = command.BestMatch("xyzzy", cands)
	assert.False(t, ok)
}

func TestBestMatchThreshold(t *testing.T) {
	cands := []command.Candidate{{ID: "a", Name: "Rusty Sword"}}

	m, ok := command.BestMatch("rty srd", cands)
	assert.True(t, ok, "subsequence tokens (30) clear the threshold")
	assert.Equal(t, 30, m.Score)
	assert.False(t, m.Exact())
}

func TestFuzzyScoreProperties(t *testing.T) {
	word := rapid.StringMatching(`[a-z]{2,8}`)

	rapid.Check(t, func(t *rapid.T) {
		words := rapid.SliceOfN(word, 1, 3).Draw(t, "words")
		name := strings.Join(words, " ")

		// Self-query is always exact.
		if got := command.FuzzyScore(name, name); got != 100 {
			t.Fatalf("FuzzyScore(%q, %q) = %d, want 100", name, name, got)
		}

		// A prefix of any word always clears the threshold.
		w := words[rapid.IntRange(0, len(words)-1).Draw(t, "wordIdx")]
		n := rapid.IntRange(1, len(w)).Draw(t, "prefixLen")
		if got := command.FuzzyScore(w[:n], name); got < command.MatchThreshold {
			t.Fatalf("FuzzyScore(%q, %q) = %d, below threshold", w[:n], name, got)
		}

		// A token containing a rune absent from the name never matches.
		if !strings.Contains(name, "q") {
			if got := command.FuzzyScore("q"+words[0], name); got != 0 {
				t.Fatalf("FuzzyScore(%q, %q) = %d, want 0", "q"+words[0], name, got)
			}
		}
	})
}

func TestParse(t *testing.T) {
	p := command.Parse("  TAKE  Rusty   Sword  ")
	assert.Equal(t, "take", p.Verb)
	assert.Equal(t, []string{"Rusty", "Sword"}, p.Args)
	assert.Equal(t, "Rusty   Sword", p.Raw, "argument spacing is preserved")

	p = command.Parse("")
	assert.Equal(t, "", p.Verb)

	p = command.Parse("look")
	assert.Equal(t, "look", p.Verb)
	assert.Empty(t, p.Args)
	assert.Equal(t, "", p.Raw)
}
