package imdb

import "testing"

func TestTitlesMatch(t *testing.T) {
	cases := []struct {
		name     string
		found    string
		expected string
		want     bool
	}{
		{"exact", "The Mastermind", "The Mastermind", true},
		{"punctuation differs", "Sentimental Value!", "Sentimental Value", true},
		{"subtitle containment", "Nouvelle Vague: A New Wave Story", "Nouvelle Vague", true},
		{"reverse containment", "Jay Kelly", "Jay Kelly: The Movie", true},
		{"diacritics fold", "La Grazia", "La Grâzia", true},
		{"unrelated", "Frankenstein", "The Secret Agent", false},
		{"empty found", "", "The Mastermind", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := titlesMatch(tc.found, tc.expected); got != tc.want {
				t.Fatalf("titlesMatch(%q, %q) = %v, want %v", tc.found, tc.expected, got, tc.want)
			}
		})
	}
}

func TestTokenSimilarity(t *testing.T) {
	if got := tokenSimilarity("the secret agent", "the secret agent"); got != 1 {
		t.Fatalf("identical similarity = %v", got)
	}
	if got := tokenSimilarity("the secret agent", "secret agent"); got < 0.7 {
		t.Fatalf("near match similarity = %v, want >= 0.7", got)
	}
	if got := tokenSimilarity("frankenstein", "bugonia"); got != 0 {
		t.Fatalf("disjoint similarity = %v, want 0", got)
	}
}

func TestDirectorsMatch(t *testing.T) {
	cases := []struct {
		name     string
		found    string
		expected string
		want     bool
	}{
		{"full name", "Noah Baumbach", "Noah Baumbach", true},
		{"surname only in found", "N. Baumbach", "Noah Baumbach", true},
		{"one of several expected", "Joachim Trier", "Joachim Trier and Eskil Vogt", true},
		{"diacritics fold", "Pedro Almodovar", "Pedro Almodóvar", true},
		{"mismatch", "Wes Anderson", "Kelly Reichardt", false},
		{"empty found", "", "Kelly Reichardt", false},
		{"short surname not enough", "Someone Else Kim", "Bo Li", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := directorsMatch(tc.found, tc.expected); got != tc.want {
				t.Fatalf("directorsMatch(%q, %q) = %v, want %v", tc.found, tc.expected, got, tc.want)
			}
		})
	}
}

func TestCountDirectors(t *testing.T) {
	cases := []struct {
		director string
		want     int
	}{
		{"", 0},
		{"Kelly Reichardt", 1},
		{"Joachim Trier and Eskil Vogt", 2},
		{"A. Smith, B. Jones & C. Brown", 3},
		{"Chloe Zhao/Barry Jenkins/Lynne Ramsay", 3},
	}
	for _, tc := range cases {
		if got := countDirectors(tc.director); got != tc.want {
			t.Fatalf("countDirectors(%q) = %d, want %d", tc.director, got, tc.want)
		}
	}
}

func TestNormalizeQuery(t *testing.T) {
	got := normalizeQuery("One Battle’s “Story” — Part  Two")
	want := "One Battle's Story - Part Two"
	if got != want {
		t.Fatalf("normalizeQuery = %q, want %q", got, want)
	}
}
