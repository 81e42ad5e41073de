package lineup

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"golang.org/x/net/html"

	"marquee/internal/film"
	"marquee/internal/htmldoc"
	"marquee/internal/logging"
	"marquee/internal/webcache"
)

// Options tunes extraction for a particular festival edition.
type Options struct {
	// FilmLinkPattern is the substring a film detail link must contain.
	FilmLinkPattern string
	// CacheMaxAge bounds how stale the cached lineup page may be.
	CacheMaxAge time.Duration
}

// Extractor pulls film records out of a festival lineup page.
type Extractor struct {
	fetcher *webcache.Fetcher
	logger  *slog.Logger
	opts    Options
}

// NewExtractor builds an extractor over the given fetcher.
func NewExtractor(fetcher *webcache.Fetcher, logger *slog.Logger, opts Options) *Extractor {
	if logger == nil {
		logger = logging.NewNop()
	}
	if opts.FilmLinkPattern == "" {
		opts.FilmLinkPattern = "/films/"
	}
	if opts.CacheMaxAge <= 0 {
		opts.CacheMaxAge = 45 * time.Minute
	}
	return &Extractor{
		fetcher: fetcher,
		logger:  logging.NewComponentLogger(logger, "lineup"),
		opts:    opts,
	}
}

// Extract fetches the lineup page and returns one record per film listing.
// When the primary URL cannot be fetched, each backup URL is tried in order.
// All sources failing yields an empty slice; only an unparseable document is
// an error.
func (e *Extractor) Extract(ctx context.Context, primaryURL string, backupURLs []string, forceRefresh bool) ([]*film.Record, error) {
	content, sourceURL := e.fetchLineup(ctx, primaryURL, backupURLs, forceRefresh)
	if content == "" {
		e.logger.Error("all lineup sources failed",
			logging.String(logging.FieldURL, primaryURL),
			logging.Int("backup_urls", len(backupURLs)))
		return nil, nil
	}

	doc, err := htmldoc.Parse(content)
	if err != nil {
		return nil, &ParseError{URL: sourceURL, Err: err}
	}

	containers := htmldoc.FindAll(doc, htmldoc.ElementWithClasses("div", "py-8", "lg:py-10", "border-b", "border-border"))
	e.logger.Info("located film containers",
		logging.String(logging.FieldURL, sourceURL),
		logging.Int("containers", len(containers)))

	records := make([]*film.Record, 0, len(containers))
	for _, container := range containers {
		record := e.extractFilm(container)
		if record == nil {
			continue
		}
		records = append(records, record)
	}

	e.logger.Info("extracted lineup",
		logging.Int("films", len(records)))
	return records, nil
}

func (e *Extractor) fetchLineup(ctx context.Context, primaryURL string, backupURLs []string, forceRefresh bool) (string, string) {
	key := webcache.Key("lineup", primaryURL)
	if content, ok := e.fetcher.Fetch(ctx, primaryURL, key, webcache.FetchOptions{
		MaxAge:       e.opts.CacheMaxAge,
		ForceRefresh: forceRefresh,
	}); ok {
		return content, primaryURL
	}
	for _, backup := range backupURLs {
		e.logger.Warn("primary lineup fetch failed, trying backup",
			logging.String(logging.FieldURL, backup))
		backupKey := webcache.Key("lineup_backup", backup)
		if content, ok := e.fetcher.Fetch(ctx, backup, backupKey, webcache.FetchOptions{}); ok {
			return content, backup
		}
	}
	return "", ""
}

// extractFilm pulls one record out of a listing container. A container
// without a recognizable title link is skipped rather than failing the run.
func (e *Extractor) extractFilm(container *html.Node) *film.Record {
	link := htmldoc.Find(container, func(n *html.Node) bool {
		return n.Data == "a" && strings.Contains(htmldoc.Attr(n, "href"), e.opts.FilmLinkPattern)
	})
	if link == nil {
		return nil
	}
	titleNode := htmldoc.Find(link, htmldoc.Element("div"))
	if titleNode == nil {
		return nil
	}
	title := htmldoc.Text(titleNode)
	if title == "" {
		return nil
	}

	// Company lists start empty rather than nil so skipped or unmatched
	// films still export as [] instead of null.
	record := &film.Record{
		Title:               title,
		ProductionCompanies: []string{},
		Distributors:        []string{},
	}

	if directorNode := htmldoc.NextMatch(container, link, htmldoc.Element("p")); directorNode != nil {
		record.Director = htmldoc.Text(directorNode)
	}

	if prose := htmldoc.Find(container, htmldoc.ElementWithClasses("div", "typography", "prose")); prose != nil {
		if para := htmldoc.Find(prose, htmldoc.Element("p")); para != nil {
			record.Description = htmldoc.Text(para)
		}
	}

	record.Year, record.Country, record.Runtime = e.extractMetadata(container)
	record.Showtimes = e.extractShowtimes(container)

	e.logger.Debug("extracted film",
		logging.String(logging.FieldFilm, record.Title),
		logging.Int("showtimes", len(record.Showtimes)))
	return record
}

var yearToken = regexp.MustCompile(`^\d{4}$`)

// extractMetadata reads the year/country/runtime row. Newer layouts render
// each value as its own child element, so sub-items are classified by shape;
// older layouts collapse everything into one pipe-delimited line.
func (e *Extractor) extractMetadata(container *html.Node) (year, country, runtime string) {
	rows := htmldoc.FindAll(container, func(n *html.Node) bool {
		return n.Data == "p" && htmldoc.Attr(n, "data-typography-mobile") == "body-xs"
	})
	for _, row := range rows {
		if children := htmldoc.Children(row); len(children) >= 2 {
			items := make([]string, 0, len(children))
			for _, child := range children {
				items = append(items, htmldoc.Text(child))
			}
			if y, c, r := classifyMetadataItems(items); y != "" || c != "" || r != "" {
				return y, c, r
			}
		}
		text := htmldoc.Text(row)
		if strings.Contains(text, "|") {
			return splitPipeMetadata(text)
		}
	}
	return "", "", ""
}

func classifyMetadataItems(items []string) (year, country, runtime string) {
	var leftovers []string
	for _, item := range items {
		item = strings.TrimSpace(item)
		switch {
		case item == "":
		case yearToken.MatchString(item):
			if year == "" {
				year = item
			}
		case strings.Contains(strings.ToLower(item), "minute"):
			if runtime == "" {
				runtime = item
			}
		case strings.Contains(strings.ToLower(item), "subtitle"):
		default:
			leftovers = append(leftovers, item)
		}
	}
	if len(leftovers) > 0 {
		country = leftovers[0]
	}
	return year, country, runtime
}

func splitPipeMetadata(text string) (year, country, runtime string) {
	parts := strings.Split(text, "|")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	if len(parts) >= 1 && isDigits(parts[0]) {
		year = parts[0]
	}
	if len(parts) >= 2 {
		country = parts[1]
	}
	if len(parts) >= 3 {
		third := parts[2]
		if strings.Contains(strings.ToLower(third), "minute") || isDigits(strings.ReplaceAll(third, " ", "")) {
			runtime = third
		}
	}
	return year, country, runtime
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

var timeToken = regexp.MustCompile(`\d{1,2}:\d{2}\s*(?:AM|PM)`)

// extractShowtimes walks the date-grouped showtime sections. Entries without
// a recognizable clock time, such as "Sold Out" placeholders, are dropped.
func (e *Extractor) extractShowtimes(container *html.Node) []film.Showtime {
	showtimes := []film.Showtime{}
	section := htmldoc.Find(container, htmldoc.ElementWithClasses("div", "flex", "flex-col", "gap-2", "mt-4"))
	if section == nil {
		return showtimes
	}
	dateSections := htmldoc.FindAll(section, htmldoc.ElementWithClasses("div", "flex", "flex-col", "gap-2", "border-t", "border-border", "pt-2"))
	for _, dateSection := range dateSections {
		date := ""
		if dateNode := htmldoc.Find(dateSection, func(n *html.Node) bool {
			return n.Data == "p" && htmldoc.Attr(n, "data-typography-mobile") == "d-eyebrow-sm"
		}); dateNode != nil {
			date = htmldoc.Text(dateNode)
		}
		for _, button := range htmldoc.FindAll(dateSection, htmldoc.Element("button")) {
			text := htmldoc.Text(button)
			timeText := timeToken.FindString(text)
			if timeText == "" {
				continue
			}
			var notes []string
			if strings.Contains(text, "Q&A") {
				notes = append(notes, "Q&A")
			}
			if strings.Contains(text, "Intro") {
				notes = append(notes, "Intro")
			}
			showtimes = append(showtimes, film.Showtime{
				Date:      date,
				Time:      timeText,
				Venue:     film.DefaultVenue,
				Notes:     notes,
				Available: buttonAvailable(button),
				RawText:   text,
			})
		}
	}
	return showtimes
}

// buttonAvailable reports whether a showtime entry is still bookable. A
// disabled attribute, a not-allowed cursor, or strikethrough styling on the
// button or any child marks it sold out.
func buttonAvailable(button *html.Node) bool {
	for _, attr := range button.Attr {
		if attr.Key == "disabled" {
			return false
		}
	}
	if htmldoc.HasClassSubstring(button, "cursor-not-allowed") {
		return false
	}
	strike := htmldoc.Find(button, func(n *html.Node) bool {
		return htmldoc.HasClassSubstring(n, "line-through")
	})
	return strike == nil
}
