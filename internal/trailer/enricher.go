// Package trailer finds video-site trailer links for each film and always
// derives a manual search URL as a fallback for downstream consumers.
package trailer

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"
	"time"

	"marquee/internal/film"
	"marquee/internal/logging"
	"marquee/internal/webcache"
)

const defaultBaseURL = "https://www.youtube.com"

// videoResultPattern matches the embedded result data on a search page:
// a video ID followed by its title runs.
var videoResultPattern = regexp.MustCompile(`"videoId":"([^"]+)".*?"title":\{"runs":\[\{"text":"([^"]+)"\}\]\}`)

// Enricher resolves trailer URLs through the page cache.
type Enricher struct {
	fetcher       *webcache.Fetcher
	logger        *slog.Logger
	baseURL       string
	searchDelay   time.Duration
	lookupTimeout time.Duration

	sleep func(ctx context.Context, d time.Duration) error
}

// Option configures an Enricher.
type Option func(*Enricher)

// WithBaseURL overrides the video-site origin, mainly for tests.
func WithBaseURL(baseURL string) Option {
	return func(e *Enricher) {
		if baseURL != "" {
			e.baseURL = baseURL
		}
	}
}

// WithSearchDelay sets the pause between per-film searches.
func WithSearchDelay(d time.Duration) Option {
	return func(e *Enricher) {
		e.searchDelay = d
	}
}

// WithLookupTimeout bounds each search request. Zero keeps the fetcher's
// default timeout.
func WithLookupTimeout(d time.Duration) Option {
	return func(e *Enricher) {
		e.lookupTimeout = d
	}
}

// New creates a trailer enricher.
func New(fetcher *webcache.Fetcher, logger *slog.Logger, opts ...Option) *Enricher {
	e := &Enricher{
		fetcher:     fetcher,
		logger:      logging.NewComponentLogger(logger, "trailer"),
		baseURL:     defaultBaseURL,
		searchDelay: 2 * time.Second,
		sleep:       sleepContext,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// EnrichAll fills TrailerURL and TrailerSearchURL for every record.
// Shorts programs are skipped outright: an omnibus has no single trailer.
// When search is false only the manual search URL is produced.
func (e *Enricher) EnrichAll(ctx context.Context, records []*film.Record, search bool, limit int) {
	if limit > 0 && limit < len(records) {
		records = records[:limit]
	}
	for i, record := range records {
		if ctx.Err() != nil {
			return
		}
		switch {
		case record.ShortProgram:
			e.logger.Info("skipping trailer search for shorts program",
				logging.String(logging.FieldFilm, record.Title))
			record.TrailerURL = ""
			record.TrailerSearchURL = ""
		case record.Title == "" || record.Year == "":
			record.TrailerURL = ""
			record.TrailerSearchURL = ""
		case search:
			record.TrailerURL = e.Search(ctx, record.Title, record.Year, record.Director)
			record.TrailerSearchURL = e.SearchURL(record.Title, record.Year, record.Director)
			if e.searchDelay > 0 && i < len(records)-1 {
				_ = e.sleep(ctx, e.searchDelay)
			}
		default:
			record.TrailerURL = ""
			record.TrailerSearchURL = e.SearchURL(record.Title, record.Year, record.Director)
		}
	}
}

// Search queries the video site and returns the best trailer URL, or "".
// Candidates must carry "trailer" in their title; one whose title also
// contains the film title's leading words wins outright, otherwise the
// first trailer-labeled result is used.
func (e *Enricher) Search(ctx context.Context, title, year, director string) string {
	query := buildQuery(title, year, director)
	searchURL := fmt.Sprintf("%s/results?search_query=%s", e.baseURL, url.QueryEscape(query))
	key := webcache.Key("trailer_search", title, year)
	content, ok := e.fetcher.Fetch(ctx, searchURL, key, webcache.FetchOptions{Timeout: e.lookupTimeout})
	if !ok {
		e.logger.Warn("trailer search fetch failed",
			logging.String(logging.FieldFilm, title))
		return ""
	}

	leading := strings.Fields(strings.ToLower(title))
	if len(leading) > 2 {
		leading = leading[:2]
	}

	best := ""
	for _, m := range videoResultPattern.FindAllStringSubmatch(content, -1) {
		videoID, videoTitle := m[1], strings.ToLower(m[2])
		if !strings.Contains(videoTitle, "trailer") {
			continue
		}
		watchURL := fmt.Sprintf("%s/watch?v=%s", e.baseURL, videoID)
		if containsAllWords(videoTitle, leading) {
			best = watchURL
			break
		}
		if best == "" {
			best = watchURL
		}
	}

	if best == "" {
		e.logger.Warn("no trailer found",
			logging.String(logging.FieldFilm, title))
	} else {
		e.logger.Info("trailer found",
			logging.String(logging.FieldFilm, title),
			logging.String(logging.FieldURL, best))
	}
	return best
}

// SearchURL builds the manual search link handed to consumers whether or
// not an automatic match was found.
func (e *Enricher) SearchURL(title, year, director string) string {
	query := buildQuery(title, year, director)
	return fmt.Sprintf("%s/results?search_query=%s", e.baseURL, url.QueryEscape(query))
}

func buildQuery(title, year, director string) string {
	parts := []string{title}
	if director != "" {
		parts = append(parts, director)
	}
	if year != "" {
		parts = append(parts, year)
	}
	parts = append(parts, "trailer")
	return strings.Join(parts, " ")
}

func containsAllWords(haystack string, words []string) bool {
	for _, word := range words {
		if !strings.Contains(haystack, word) {
			return false
		}
	}
	return len(words) > 0
}
