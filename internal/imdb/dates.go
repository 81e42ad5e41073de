package imdb

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"marquee/internal/film"
)

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04",
	"January 2, 2006",
	"2 January 2006",
	"01/02/2006",
	"01-02-2006",
}

const monthNames = `January|February|March|April|May|June|July|August|September|October|November|December`

var embeddedDatePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\d{4}-\d{2}-\d{2}`),
	regexp.MustCompile(`(?i)(?:` + monthNames + `)\s+\d{1,2},\s+\d{4}`),
	regexp.MustCompile(`(?i)\d{1,2}\s+(?:` + monthNames + `)\s+\d{4}`),
}

var monthDayPattern = regexp.MustCompile(`(?i)(` + monthNames + `)\s+(\d{1,2})\b`)

// parseDate interprets a date in any of the formats seen across lineup
// pages and reference-database markup. Longer strings are scanned for an
// embedded date.
func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	for _, pattern := range embeddedDatePatterns {
		if match := pattern.FindString(s); match != "" && match != s {
			if t, ok := parseDate(match); ok {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

// parseScreeningDate handles lineup showtime labels, which usually omit the
// year ("Saturday, September 27"); the festival year fills the gap.
func parseScreeningDate(s string, festivalYear int) (time.Time, bool) {
	if t, ok := parseDate(s); ok {
		return t, true
	}
	if m := monthDayPattern.FindStringSubmatch(s); m != nil {
		withYear := fmt.Sprintf("%s %s, %d", m[1], m[2], festivalYear)
		return parseDate(withYear)
	}
	return time.Time{}, false
}

// FestivalStart returns the earliest screening date across the whole batch.
// The second result is false when no showtime carries a parseable date.
func FestivalStart(records []*film.Record, festivalYear int) (time.Time, bool) {
	var earliest time.Time
	found := false
	for _, record := range records {
		for _, showtime := range record.Showtimes {
			date, ok := parseScreeningDate(showtime.Date, festivalYear)
			if !ok {
				continue
			}
			if !found || date.Before(earliest) {
				earliest = date
				found = true
			}
		}
	}
	return earliest, found
}

// festivalDebutWindow is how close a release date must sit to the festival
// start to count as a festival debut rather than a theatrical opening.
const festivalDebutWindow = 21 * 24 * time.Hour

func isFestivalDebut(releaseDate string, festivalStart time.Time) bool {
	release, ok := parseDate(releaseDate)
	if !ok {
		return false
	}
	diff := release.Sub(festivalStart)
	if diff < 0 {
		diff = -diff
	}
	return diff <= festivalDebutWindow
}

var isoDurationPattern = regexp.MustCompile(`^PT(?:(\d+)H)?(?:(\d+)M)?`)

// formatISODuration converts "PT2H11M" style durations to "2h 11m".
func formatISODuration(duration string) string {
	m := isoDurationPattern.FindStringSubmatch(duration)
	if m == nil {
		return ""
	}
	var parts []string
	if m[1] != "" {
		parts = append(parts, m[1]+"h")
	}
	if m[2] != "" {
		parts = append(parts, m[2]+"m")
	}
	return strings.Join(parts, " ")
}
