package imdb

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"marquee/internal/htmldoc"
	"marquee/internal/logging"
	"marquee/internal/webcache"
)

var titleIDPattern = regexp.MustCompile(`/title/(tt\d+)/`)

// Search resolves a film to a reference-database title ID. Up to three query
// variants run against the find endpoint, narrowest first; if none validates,
// a year-bounded advanced search is the last resort. The empty result means
// no candidate survived validation.
func (e *Enricher) Search(ctx context.Context, title, year, director string) (string, bool) {
	cleanTitle := normalizeQuery(title)

	var queries []string
	if director != "" {
		queries = append(queries, cleanTitle+" "+normalizeQuery(director)+" "+year)
	}
	queries = append(queries, cleanTitle+" "+year, cleanTitle)

	for attempt, query := range queries {
		searchURL := fmt.Sprintf("%s/find/?q=%s&s=tt&ttype=ft", e.baseURL, url.QueryEscape(query))
		key := webcache.Key("imdb_search", title, fmt.Sprintf("attempt_%d", attempt+1))
		content, ok := e.fetcher.Fetch(ctx, searchURL, key, e.fetchOptions())
		if !ok {
			continue
		}
		doc, err := htmldoc.Parse(content)
		if err != nil {
			continue
		}
		if id, ok := e.pickResult(ctx, doc, title, year, director); ok {
			e.logger.Info("search matched",
				logging.String(logging.FieldFilm, title),
				logging.String("imdb_id", id),
				logging.Int("attempt", attempt+1))
			return id, true
		}
	}

	return e.advancedSearch(ctx, cleanTitle, title, year, director)
}

// pickResult scans result links in document order and returns the first
// candidate that survives title, year, and director validation.
func (e *Enricher) pickResult(ctx context.Context, doc *html.Node, title, year, director string) (string, bool) {
	for _, link := range titleLinks(doc) {
		id := linkTitleID(link)
		if id == "" {
			continue
		}
		if !e.validateResult(link, title, year) {
			continue
		}
		if id, ok := e.confirmDirector(ctx, id, title, director); ok {
			return id, true
		}
	}
	return "", false
}

// confirmDirector checks the candidate's detail page against the expected
// director. A detail page with no director information at all is accepted;
// only a positive mismatch rejects the candidate.
func (e *Enricher) confirmDirector(ctx context.Context, id, title, director string) (string, bool) {
	if strings.TrimSpace(director) == "" {
		return id, true
	}
	found := e.Director(ctx, id)
	if found == "" {
		e.logger.Warn("no director on detail page, accepting candidate",
			logging.String(logging.FieldFilm, title),
			logging.String("imdb_id", id))
		return id, true
	}
	if directorsMatch(found, director) {
		return id, true
	}
	e.logger.Warn("director mismatch, continuing search",
		logging.String(logging.FieldFilm, title),
		logging.String("found", found),
		logging.String("expected", director))
	return "", false
}

// validateResult checks a find-endpoint result: the link text must match the
// title and the surrounding context must mention the expected year as a
// whole word.
func (e *Enricher) validateResult(link *html.Node, title, year string) bool {
	if !titlesMatch(htmldoc.Text(link), title) {
		return false
	}
	surrounding := ""
	if link.Parent != nil {
		surrounding = htmldoc.Text(link.Parent)
	}
	return wholeWord(surrounding, year)
}

func (e *Enricher) advancedSearch(ctx context.Context, cleanTitle, title, year, director string) (string, bool) {
	searchURL := fmt.Sprintf("%s/search/title/?title=%s&release_date=%s-01-01,%s-12-31",
		e.baseURL, url.QueryEscape(cleanTitle), year, year)
	key := webcache.Key("imdb_advanced_search", title)
	content, ok := e.fetcher.Fetch(ctx, searchURL, key, e.fetchOptions())
	if !ok {
		return "", false
	}
	doc, err := htmldoc.Parse(content)
	if err != nil {
		return "", false
	}
	for _, link := range titleLinks(doc) {
		id := linkTitleID(link)
		if id == "" {
			continue
		}
		if !titlesMatch(htmldoc.Text(link), title) {
			continue
		}
		if !validateAdvancedContext(link, year, director) {
			continue
		}
		if id, ok := e.confirmDirector(ctx, id, title, director); ok {
			e.logger.Info("advanced search matched",
				logging.String(logging.FieldFilm, title),
				logging.String("imdb_id", id))
			return id, true
		}
	}
	return "", false
}

// validateAdvancedContext checks the result's enclosing list item for the
// expected year and, when given, any significant director name fragment.
// Director presence is best-effort here; the authoritative check happens on
// the detail page.
func validateAdvancedContext(link *html.Node, year, director string) bool {
	container := link.Parent
	for container != nil && container.Data != "li" && container.Data != "article" {
		container = container.Parent
	}
	if container == nil {
		return true
	}
	text := htmldoc.Text(container)
	if !wholeWord(text, year) {
		return false
	}
	if director == "" {
		return true
	}
	lower := strings.ToLower(text)
	for _, word := range strings.Fields(strings.ToLower(director)) {
		if len(word) > 2 && strings.Contains(lower, word) {
			return true
		}
	}
	return false
}

func titleLinks(doc *html.Node) []*html.Node {
	return htmldoc.FindAll(doc, func(n *html.Node) bool {
		return n.Data == "a" && titleIDPattern.MatchString(htmldoc.Attr(n, "href"))
	})
}

func linkTitleID(link *html.Node) string {
	m := titleIDPattern.FindStringSubmatch(htmldoc.Attr(link, "href"))
	if m == nil {
		return ""
	}
	return m[1]
}

func wholeWord(text, word string) bool {
	if word == "" {
		return false
	}
	pattern, err := regexp.Compile(`\b` + regexp.QuoteMeta(word) + `\b`)
	if err != nil {
		return strings.Contains(text, word)
	}
	return pattern.MatchString(text)
}
