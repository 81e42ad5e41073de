package classify

import (
	"strings"

	"marquee/internal/film"
)

// likelyThreshold is the score at or above which a film is considered
// likely to receive theatrical distribution.
const likelyThreshold = 50

// Festival sections in decreasing order of distribution likelihood.
const (
	SectionMainSlate   = "main slate"
	SectionSpotlight   = "spotlight"
	SectionCurrents    = "currents"
	SectionRestoration = "restoration"
	SectionRevivals    = "revivals"
	SectionShorts      = "shorts"
	SectionUnknown     = "unknown"
)

// sectionWeights reflects how strongly each festival section predicts a
// theatrical release. Main slate and spotlight titles almost always find
// distribution; restorations and shorts programs almost never do.
var sectionWeights = map[string]int{
	SectionMainSlate:   50,
	SectionSpotlight:   45,
	SectionCurrents:    -40,
	SectionRestoration: -70,
	SectionRevivals:    -70,
	SectionShorts:      -80,
}

var (
	mainSlateIndicators = []string{
		"main slate", "opening night", "closing night", "centerpiece",
		"gala screening", "world premiere", "north american premiere",
	}
	spotlightSectionIndicators = []string{
		"spotlight", "special presentation", "red carpet",
		"festival highlight", "special screening",
	}
	currentsIndicators = []string{
		"currents", "experimental", "avant-garde", "art house",
		"independent", "emerging filmmaker",
	}
	restorationSectionIndicators = []string{
		"restoration", "revival", "retrospective", "classic",
		"newly restored", "4k restoration", "remastered",
	}
)

// Section determines which festival section a record belongs to. The
// explicit category field wins, then the classification flags, then keyword
// scans in fixed priority order.
func Section(record *film.Record) string {
	switch record.Category {
	case film.CategoryShorts, film.CategoryRestoration:
		return record.Category
	}
	if record.ShortProgram {
		return SectionShorts
	}
	if record.Restoration {
		return SectionRestoration
	}

	text := strings.ToLower(record.Title + " " + record.Description)
	switch {
	case containsAny(text, mainSlateIndicators):
		return SectionMainSlate
	case containsAny(text, spotlightSectionIndicators):
		return SectionSpotlight
	case containsAny(text, currentsIndicators):
		return SectionCurrents
	case containsAny(text, restorationSectionIndicators):
		return SectionRestoration
	}
	return SectionUnknown
}

// Score sums the section weight, the reference-database signal, and the
// legacy producer/distributor heuristic, clamped to [0,100]. The two company
// heuristics deliberately overlap: distributor presence counts in both.
func (e *Engine) Score(record *film.Record) int {
	total := sectionWeights[Section(record)]
	total += metadataScore(record)
	total += legacyScore(record)
	return clamp(total, 0, 100)
}

func metadataScore(record *film.Record) int {
	score := 0
	if len(record.Distributors) > 0 {
		score += 40
	}
	if len(record.ProductionCompanies) > 3 {
		score += 20
	}
	if record.ReleaseDate != "" {
		score += 10
	}
	return score
}

func legacyScore(record *film.Record) int {
	score := 0
	if len(record.ProductionCompanies) > 2 {
		score += 20
	}
	if len(record.Distributors) > 0 {
		score += 30
	}
	return score
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
