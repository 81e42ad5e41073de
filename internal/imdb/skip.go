package imdb

import (
	"fmt"
	"strings"

	"marquee/internal/film"
)

// ShouldSkip decides whether a record is structurally unsuited to a
// single-film lookup. Double features and omnibus programs with several
// directors have no single reference-database entry to find.
func ShouldSkip(record *film.Record) (bool, string) {
	if strings.Contains(record.Title, "+") && strings.Contains(record.Director, "/") {
		return true, "dual film screening"
	}

	directors := countDirectors(record.Director)
	if directors >= 3 {
		haystack := strings.ToLower(record.Title + " " + record.Description)
		for _, indicator := range []string{"currents", "short", "shorts"} {
			if strings.Contains(haystack, indicator) {
				return true, "shorts program with multiple directors"
			}
		}
		return true, fmt.Sprintf("film with %d directors", directors)
	}

	return false, ""
}
