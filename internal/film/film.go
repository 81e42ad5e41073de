package film

import "strings"

// Categories a record can be classified into once the classification
// engine has run.
const (
	CategoryShorts      = "shorts"
	CategoryRestoration = "restoration"
	CategorySpotlight   = "spotlight"
	CategoryFeature     = "feature"
)

// DefaultVenue is used when the lineup source does not expose a
// per-showtime venue.
const DefaultVenue = "TBA"

// Showtime is a single scheduled screening of a film.
type Showtime struct {
	Date      string   `json:"date,omitempty"`
	Time      string   `json:"time,omitempty"`
	Venue     string   `json:"venue"`
	Notes     []string `json:"notes,omitempty"`
	Available bool     `json:"available"`

	// RawText preserves the source button text the time was parsed from.
	RawText string `json:"raw_text,omitempty"`
}

// Record is one entry in the festival lineup. It is created by the
// lineup extractor with partial fields and filled in by the enrichment
// stages in order: reference-database metadata, classification, trailer.
// After the pipeline finishes the record is read-only.
type Record struct {
	Title       string `json:"title"`
	Director    string `json:"director,omitempty"`
	Description string `json:"description,omitempty"`
	Year        string `json:"year,omitempty"`
	Country     string `json:"country,omitempty"`
	Runtime     string `json:"runtime,omitempty"`

	Showtimes []Showtime `json:"showtimes"`

	IMDbID              string   `json:"imdb_id,omitempty"`
	ProductionCompanies []string `json:"production_companies"`
	Distributors        []string `json:"distributors"`
	ReleaseDate         string   `json:"theatrical_release_date,omitempty"`

	// FestivalDebut is nil until reference-database enrichment has run;
	// absence and false mean different things to exporters.
	FestivalDebut *bool `json:"is_festival_debut,omitempty"`

	ShortProgram bool   `json:"is_short_program"`
	Restoration  bool   `json:"is_restoration"`
	IntroOrQnA   bool   `json:"has_intro_or_qna"`
	Category     string `json:"category"`

	DistributionScore int  `json:"distribution_score"`
	LikelyDistributed bool `json:"is_likely_distributed"`

	TrailerURL       string `json:"trailer_url"`
	TrailerSearchURL string `json:"trailer_search_url"`

	Notes string `json:"notes"`
}

// AddProductionCompanies appends company names, skipping blanks and
// entries already present after trimming.
func (r *Record) AddProductionCompanies(names ...string) {
	r.ProductionCompanies = appendUnique(r.ProductionCompanies, names)
}

// AddDistributors appends distributor names, skipping blanks and
// entries already present after trimming.
func (r *Record) AddDistributors(names ...string) {
	r.Distributors = appendUnique(r.Distributors, names)
}

// SetFestivalDebut records the debut flag; the pointer distinguishes
// "enrichment never ran" from an explicit false.
func (r *Record) SetFestivalDebut(debut bool) {
	r.FestivalDebut = &debut
}

func appendUnique(existing []string, names []string) []string {
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		duplicate := false
		for _, have := range existing {
			if have == name {
				duplicate = true
				break
			}
		}
		if !duplicate {
			existing = append(existing, name)
		}
	}
	return existing
}
