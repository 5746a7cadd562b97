package command

import "strings"

// Fuzzy match score constants, on a 0-100 scale.
const (
	scoreExact          = 100
	scoreSubstring      = 80
	scoreWordPrefix     = 70
	scoreWordSubstring  = 50
	scoreSubsequence    = 30
	// MatchThreshold is the minimum score a candidate must reach.
	MatchThreshold = 25
)

// Candidate is one named entity offered to the fuzzy matcher.
type Candidate struct {
	// ID is the entity id handed back on a match.
	ID string
	// Name is the display name the query is scored against.
	Name string
}

// Match is a successful fuzzy lookup.
type Match struct {
	Candidate Candidate
	Score     int
}

// Exact reports whether the match needs no canonical-name echo.
func (m Match) Exact() bool {
	return m.Score == scoreExact
}

// FuzzyScore rates how well a query names a candidate, 0-100. Exact
// (case-insensitive) matches score 100, whole-query substrings 80.
// Otherwise each query token is scored against the candidate's best word
// (prefix 70, substring 50, in-order subsequence 30) and the final score is
// the mean across tokens; it is 0 unless every token matched something.
func FuzzyScore(query, name string) int {
	query = strings.ToLower(strings.TrimSpace(query))
	name = strings.ToLower(name)
	if query == "" {
		return 0
	}
	if query == name {
		return scoreExact
	}
	if strings.Contains(name, query) {
		return scoreSubstring
	}

	tokens := strings.Fields(query)
	words := strings.Fields(name)
	total := 0
	for _, tok := range tokens {
		best := 0
		for _, w := range words {
			s := 0
			switch {
			case strings.HasPrefix(w, tok):
				s = scoreWordPrefix
			case strings.Contains(w, tok):
				s = scoreWordSubstring
			case isSubsequence(tok, w):
				s = scoreSubsequence
			}
			if s > best {
				best = s
			}
		}
		if best == 0 {
			return 0
		}
		total += best
	}
	return total / len(tokens)
}

// isSubsequence reports whether every rune of tok appears in w in order.
func isSubsequence(tok, w string) bool {
	i := 0
	for _, r := range w {
		if i < len(tok) && rune(tok[i]) == r {
			i++
		}
	}
	return i == len(tok)
}

// BestMatch scores the query against every candidate and returns the
// highest scorer at or above the threshold. Ties break toward the earlier
// candidate.
//
// Postcondition: Returns (match, true) iff some candidate scored >= the
// threshold.
func BestMatch(query string, candidates []Candidate) (Match, bool) {
	best := Match{}
	found := false
	for _, cand := range candidates {
		s := FuzzyScore(query, cand.Name)
		if s >= MatchThreshold && s > best.Score {
			best = Match{Candidate: cand, Score: s}
			found = true
		}
	}
	return best, found
}
