package classify

import (
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"marquee/internal/film"
	"marquee/internal/logging"
)

// Engine classifies records and computes distribution scores. All rules are
// pure functions of a record; the engine only carries the festival year so
// the "pre-existing classic" cutoff is not hard-coded to one edition.
type Engine struct {
	logger        *slog.Logger
	classicCutoff int
}

// classicWindowYears is how far back a declared production year may sit
// before the film counts as a classic rather than a new production.
const classicWindowYears = 5

// NewEngine creates an engine for the given festival year.
func NewEngine(logger *slog.Logger, festivalYear int) *Engine {
	return &Engine{
		logger:        logging.NewComponentLogger(logger, "classify"),
		classicCutoff: festivalYear - classicWindowYears,
	}
}

// ApplyAll classifies every record in place.
func (e *Engine) ApplyAll(records []*film.Record) {
	shorts, restorations, withIntro, likely := 0, 0, 0, 0
	for _, record := range records {
		e.Apply(record)
		if record.ShortProgram {
			shorts++
		}
		if record.Restoration {
			restorations++
		}
		if record.IntroOrQnA {
			withIntro++
		}
		if record.LikelyDistributed {
			likely++
		}
	}
	e.logger.Info("classification complete",
		logging.Int("films", len(records)),
		logging.Int("short_programs", shorts),
		logging.Int("restorations", restorations),
		logging.Int("with_intro_qna", withIntro),
		logging.Int("likely_distributed", likely))
}

// Apply sets classification flags, category, distribution score, and notes.
// Applying twice yields the same result; every field it writes is derived
// only from fields it does not write (notes synthesis reads the flags set
// earlier in the same call).
func (e *Engine) Apply(record *film.Record) {
	record.ShortProgram = e.IsShortProgram(record)
	record.Restoration = e.IsRestoration(record)
	record.IntroOrQnA = e.HasIntroOrQnA(record)
	record.Category = e.Categorize(record)

	record.DistributionScore = e.Score(record)
	record.LikelyDistributed = record.DistributionScore >= likelyThreshold

	record.Notes = e.buildNotes(record)

	e.logger.Debug("classified film",
		logging.String(logging.FieldFilm, record.Title),
		logging.String("category", record.Category),
		logging.Int("score", record.DistributionScore),
		logging.Bool("likely_distributed", record.LikelyDistributed))
}

var (
	shortsTitleIndicators = []string{
		"shorts", "short films", "short program", "anthology",
		"collection", "omnibus", "portmanteau",
	}
	shortsDescriptionIndicators = []string{
		"short films", "shorts program", "anthology", "collection of",
		"various directors", "multiple filmmakers", "several shorts",
	}
	multiDirectorPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?:and|&|\+|,)\s*[A-Z]`),
		regexp.MustCompile(`,\s*[A-Z][a-z]+\s+[A-Z][a-z]+`),
	}
	shortsRuntimeWords = []string{"shorts", "films", "segments"}
)

// IsShortProgram detects shorts programs from title and description
// keywords, multi-director credit patterns, and runtime annotations.
func (e *Engine) IsShortProgram(record *film.Record) bool {
	title := strings.ToLower(record.Title)
	if containsAny(title, shortsTitleIndicators) {
		return true
	}
	if containsAny(strings.ToLower(record.Description), shortsDescriptionIndicators) {
		return true
	}
	for _, pattern := range multiDirectorPatterns {
		if pattern.MatchString(record.Director) {
			return true
		}
	}
	if runtime := strings.ToLower(record.Runtime); runtime != "" {
		if containsAny(runtime, shortsRuntimeWords) {
			return true
		}
	}
	return false
}

var restorationIndicators = []string{
	"restoration", "4k restoration", "new restoration", "restored",
	"remastered", "revival", "classic", "retrospective",
	"newly restored", "digital restoration",
}

// IsRestoration detects restorations and revivals. A declared production
// year older than the classic cutoff counts as evidence on its own.
func (e *Engine) IsRestoration(record *film.Record) bool {
	text := strings.ToLower(record.Title + " " + record.Description)
	if containsAny(text, restorationIndicators) {
		return true
	}
	if year, err := strconv.Atoi(record.Year); err == nil && year < e.classicCutoff {
		return true
	}
	return false
}

var (
	showtimeNoteKeywords = []string{"q&a", "intro", "introduction", "panel", "discussion"}
	introQnAIndicators   = []string{
		"q&a", "introduction", "panel", "discussion", "filmmaker in attendance",
		"followed by", "with director", "with cast", "film scholar", "critic",
		"moderated", "special guest",
	}
)

// HasIntroOrQnA checks showtime note tags first, then description keywords.
func (e *Engine) HasIntroOrQnA(record *film.Record) bool {
	for _, showtime := range record.Showtimes {
		for _, note := range showtime.Notes {
			if containsAny(strings.ToLower(note), showtimeNoteKeywords) {
				return true
			}
		}
	}
	return containsAny(strings.ToLower(record.Description), introQnAIndicators)
}

var spotlightIndicators = []string{
	"spotlight", "opening night", "closing night", "gala",
	"centerpiece", "special screening", "world premiere",
	"red carpet", "festival highlight",
}

var leadingNumber = regexp.MustCompile(`\d+`)

// Categorize maps a record to shorts, restoration, spotlight, or feature.
// Priority order matters: a restored shorts program is still shorts.
func (e *Engine) Categorize(record *film.Record) string {
	if record.ShortProgram {
		return film.CategoryShorts
	}
	if record.Restoration {
		return film.CategoryRestoration
	}
	text := strings.ToLower(record.Title + " " + record.Description)
	if containsAny(text, spotlightIndicators) {
		return film.CategorySpotlight
	}
	if m := leadingNumber.FindString(record.Runtime); m != "" {
		if minutes, err := strconv.Atoi(m); err == nil && minutes >= 40 {
			return film.CategoryFeature
		}
	}
	return film.CategoryFeature
}

func containsAny(haystack string, needles []string) bool {
	for _, needle := range needles {
		if strings.Contains(haystack, needle) {
			return true
		}
	}
	return false
}
