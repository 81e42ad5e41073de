package imdb

import (
	"regexp"
	"strings"

	"github.com/mozillazg/go-unidecode"
)

var (
	queryDisallowed = regexp.MustCompile(`[^\w\s'\-.:!?]`)
	nonWord         = regexp.MustCompile(`[^\w\s]`)
	spaceRun        = regexp.MustCompile(`\s+`)
	directorSplit   = regexp.MustCompile(`\s+(?:and|&)\s+|,\s*|/`)
	hasLetter       = regexp.MustCompile(`[A-Za-z]`)
)

// normalizeQuery prepares a title or name for use in a search query. Smart
// punctuation is folded to ASCII equivalents and characters that confuse the
// search endpoint are dropped.
func normalizeQuery(s string) string {
	replacer := strings.NewReplacer(
		"‘", "'", "’", "'",
		"“", `"`, "”", `"`,
		"—", "-", "–", "-",
	)
	s = replacer.Replace(s)
	s = queryDisallowed.ReplaceAllString(s, " ")
	return strings.TrimSpace(spaceRun.ReplaceAllString(s, " "))
}

// normalizeForComparison folds text for fuzzy matching: transliterate
// diacritics, lowercase, strip punctuation, collapse whitespace.
func normalizeForComparison(s string) string {
	s = unidecode.Unidecode(s)
	s = strings.ToLower(strings.TrimSpace(s))
	s = nonWord.ReplaceAllString(s, " ")
	return strings.TrimSpace(spaceRun.ReplaceAllString(s, " "))
}

const titleMatchThreshold = 0.7

// titlesMatch reports whether a search result title is close enough to the
// expected title. Containment in either direction also counts so subtitles
// and alternate cuts do not defeat the match.
func titlesMatch(found, expected string) bool {
	foundClean := normalizeForComparison(found)
	expectedClean := normalizeForComparison(expected)
	if foundClean == "" || expectedClean == "" {
		return false
	}
	if strings.Contains(foundClean, expectedClean) || strings.Contains(expectedClean, foundClean) {
		return true
	}
	return tokenSimilarity(foundClean, expectedClean) >= titleMatchThreshold
}

// tokenSimilarity computes a Dice coefficient over word tokens:
// 2 * |shared| / (|a| + |b|).
func tokenSimilarity(a, b string) float64 {
	tokensA := strings.Fields(a)
	tokensB := strings.Fields(b)
	if len(tokensA) == 0 || len(tokensB) == 0 {
		return 0
	}
	counts := make(map[string]int, len(tokensA))
	for _, tok := range tokensA {
		counts[tok]++
	}
	shared := 0
	for _, tok := range tokensB {
		if counts[tok] > 0 {
			counts[tok]--
			shared++
		}
	}
	return 2 * float64(shared) / float64(len(tokensA)+len(tokensB))
}

// directorsMatch reports whether the director text found on a detail page is
// consistent with the expected director. Any one of several expected names
// matching suffices; a multi-word name matches when all its words appear or
// when its surname (longer than 3 characters) appears.
func directorsMatch(found, expected string) bool {
	foundClean := normalizeForComparison(found)
	expectedClean := normalizeForComparison(expected)
	if foundClean == "" || expectedClean == "" {
		return false
	}
	for _, part := range splitDirectors(expectedClean) {
		if len(part) <= 2 {
			continue
		}
		words := strings.Fields(part)
		if len(words) >= 2 {
			all := true
			for _, word := range words {
				if !strings.Contains(foundClean, word) {
					all = false
					break
				}
			}
			if all {
				return true
			}
			surname := words[len(words)-1]
			if len(surname) > 3 && strings.Contains(foundClean, surname) {
				return true
			}
		} else if strings.Contains(foundClean, part) {
			return true
		}
	}
	return false
}

func splitDirectors(director string) []string {
	parts := directorSplit.Split(director, -1)
	out := parts[:0]
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// countDirectors counts name-like tokens in a director credit string.
func countDirectors(director string) int {
	if director == "" {
		return 0
	}
	count := 0
	for _, part := range directorSplit.Split(director, -1) {
		if part = strings.TrimSpace(part); part != "" && hasLetter.MatchString(part) {
			count++
		}
	}
	return count
}
