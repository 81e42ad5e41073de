// Package letterboxd scrapes a Letterboxd profile's watched films and
// scores lineup records against the viewer's taste. Still experimental.
package letterboxd

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"golang.org/x/net/html"

	"marquee/internal/htmldoc"
	"marquee/internal/logging"
	"marquee/internal/webcache"
)

// WatchedFilm is one entry on a profile's films pages.
type WatchedFilm struct {
	Title  string
	Year   string
	URL    string
	Slug   string
	FilmID string
}

// Profile aggregates everything scraped from a user's films pages.
type Profile struct {
	Username  string
	Films     []WatchedFilm
	Directors map[string]int
	Countries map[string]int
	Keywords  map[string]bool
}

// Scraper walks a profile's paginated films list.
type Scraper struct {
	fetcher       *webcache.Fetcher
	logger        *slog.Logger
	baseURL       string
	maxPages      int
	lookupTimeout time.Duration
}

// ScraperOption adjusts Scraper construction.
type ScraperOption func(*Scraper)

// WithBaseURL points the scraper at an alternate site root, used by tests.
func WithBaseURL(baseURL string) ScraperOption {
	return func(s *Scraper) {
		s.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithMaxPages caps how many films pages are fetched per profile.
func WithMaxPages(pages int) ScraperOption {
	return func(s *Scraper) {
		if pages > 0 {
			s.maxPages = pages
		}
	}
}

// WithLookupTimeout bounds each profile page request. Zero keeps the
// fetcher's default timeout.
func WithLookupTimeout(d time.Duration) ScraperOption {
	return func(s *Scraper) {
		s.lookupTimeout = d
	}
}

// NewScraper constructs a profile scraper on top of fetcher.
func NewScraper(fetcher *webcache.Fetcher, logger *slog.Logger, opts ...ScraperOption) *Scraper {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Scraper{
		fetcher:  fetcher,
		logger:   logger,
		baseURL:  "https://letterboxd.com",
		maxPages: 5,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var watchedYearPattern = regexp.MustCompile(`\((\d{4})\)$`)

// ScrapeProfile fetches up to maxPages of the user's films and extracts
// watched films plus keyword vocabulary. Pagination stops at the first
// page with no film entries.
func (s *Scraper) ScrapeProfile(ctx context.Context, username string) (*Profile, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("letterboxd username is empty")
	}

	profile := &Profile{
		Username:  username,
		Directors: make(map[string]int),
		Countries: make(map[string]int),
		Keywords:  make(map[string]bool),
	}

	for page := 1; page <= s.maxPages; page++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		url := fmt.Sprintf("%s/%s/films/page/%d/", s.baseURL, username, page)
		key := webcache.Key("letterboxd", username, "films", fmt.Sprintf("page_%d", page))
		content, ok := s.fetcher.Fetch(ctx, url, key, webcache.FetchOptions{Timeout: s.lookupTimeout})
		if !ok {
			continue
		}

		doc, err := htmldoc.Parse(content)
		if err != nil {
			s.logger.Warn("failed to parse profile page",
				logging.String(logging.FieldURL, url), logging.Error(err))
			continue
		}

		films := extractWatchedFilms(doc)
		if len(films) == 0 {
			s.logger.Debug("no films on page, stopping pagination",
				logging.Int("page", page))
			break
		}
		profile.Films = append(profile.Films, films...)
		s.logger.Debug("scraped profile page",
			logging.Int("page", page), logging.Int("films", len(films)))
	}

	for _, watched := range profile.Films {
		for word := range NormalizeWords(watched.Title) {
			profile.Keywords[word] = true
		}
	}

	s.logger.Info("scraped letterboxd profile",
		logging.String("username", username),
		logging.Int("films", len(profile.Films)),
		logging.Int("keywords", len(profile.Keywords)))
	return profile, nil
}

func extractWatchedFilms(doc *html.Node) []WatchedFilm {
	components := htmldoc.FindAll(doc, func(n *html.Node) bool {
		return htmldoc.HasClass(n, "react-component") && htmldoc.Attr(n, "data-item-name") != ""
	})

	var films []WatchedFilm
	for _, component := range components {
		name := strings.TrimSpace(htmldoc.Attr(component, "data-item-name"))
		if name == "" {
			continue
		}
		watched := WatchedFilm{
			Slug:   htmldoc.Attr(component, "data-item-slug"),
			FilmID: htmldoc.Attr(component, "data-film-id"),
		}
		if m := watchedYearPattern.FindStringSubmatch(name); m != nil {
			watched.Year = m[1]
			watched.Title = strings.TrimSpace(strings.TrimSuffix(name, "("+m[1]+")"))
		} else {
			watched.Title = name
		}
		if link := htmldoc.Attr(component, "data-item-link"); link != "" {
			if strings.HasPrefix(link, "/") {
				watched.URL = "https://letterboxd.com" + link
			} else {
				watched.URL = link
			}
		}
		films = append(films, watched)
	}
	return films
}

// stopwords excluded from keyword vocabularies.
var stopwords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "by": true, "for": true, "from": true, "has": true, "he": true,
	"in": true, "is": true, "it": true, "its": true, "of": true, "on": true,
	"that": true, "the": true, "to": true, "was": true, "with": true,
	"but": true, "not": true, "or": true, "his": true, "her": true,
	"their": true, "this": true, "these": true, "they": true, "we": true,
	"you": true, "your": true, "all": true, "any": true, "can": true,
	"had": true, "have": true, "him": true, "will": true, "would": true,
}

var nonWordOrSpace = regexp.MustCompile(`[^\w\s]`)

// NormalizeWords lowercases text, strips punctuation, and returns the set
// of words left after stopword removal.
func NormalizeWords(text string) map[string]bool {
	words := make(map[string]bool)
	if text == "" {
		return words
	}
	cleaned := nonWordOrSpace.ReplaceAllString(strings.ToLower(text), " ")
	for _, word := range strings.Fields(cleaned) {
		if !stopwords[word] {
			words[word] = true
		}
	}
	return words
}
