package imdb

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"marquee/internal/htmldoc"
	"marquee/internal/webcache"
)

// titlePage fetches and parses a title's detail page. The page is cached
// indefinitely; reference-database detail pages change rarely within a run.
func (e *Enricher) titlePage(ctx context.Context, id string) (*html.Node, string, bool) {
	pageURL := fmt.Sprintf("%s/title/%s/", e.baseURL, id)
	key := webcache.Key("imdb_main", id)
	content, ok := e.fetcher.Fetch(ctx, pageURL, key, e.fetchOptions())
	if !ok {
		return nil, "", false
	}
	doc, err := htmldoc.Parse(content)
	if err != nil {
		return nil, "", false
	}
	return doc, content, true
}

// ldPerson is a person entry inside embedded structured data.
type ldPerson struct {
	Name string `json:"name"`
}

// ldMovie captures the fields of the embedded structured-data block the
// enricher reads. Director may be a single object or an array.
type ldMovie struct {
	DatePublished string          `json:"datePublished"`
	Duration      string          `json:"duration"`
	Director      json.RawMessage `json:"director"`
}

func decodeMovieBlocks(doc *html.Node) []ldMovie {
	var movies []ldMovie
	for _, block := range htmldoc.JSONLDBlocks(doc) {
		var one ldMovie
		if err := json.Unmarshal([]byte(block), &one); err == nil {
			movies = append(movies, one)
			continue
		}
		var many []ldMovie
		if err := json.Unmarshal([]byte(block), &many); err == nil {
			movies = append(movies, many...)
		}
	}
	return movies
}

func (m ldMovie) directorNames() []string {
	if len(m.Director) == 0 {
		return nil
	}
	var one ldPerson
	if err := json.Unmarshal(m.Director, &one); err == nil && one.Name != "" {
		return []string{one.Name}
	}
	var many []ldPerson
	if err := json.Unmarshal(m.Director, &many); err == nil {
		names := make([]string, 0, len(many))
		for _, person := range many {
			if person.Name != "" {
				names = append(names, person.Name)
			}
		}
		return names
	}
	return nil
}

// Director returns the director credit text from a title's detail page, with
// multiple names comma-joined. Empty when the page exposes none.
func (e *Enricher) Director(ctx context.Context, id string) string {
	doc, _, ok := e.titlePage(ctx, id)
	if !ok {
		return ""
	}

	var names []string
	for _, item := range principalCredits(doc) {
		if !strings.Contains(strings.ToLower(htmldoc.Text(item)), "director") {
			continue
		}
		links := htmldoc.FindAll(item, func(n *html.Node) bool {
			return n.Data == "a" && htmldoc.HasClass(n, "ipc-metadata-list-summary-item__t")
		})
		for _, link := range links {
			if name := htmldoc.Text(link); name != "" {
				names = append(names, name)
			}
		}
	}

	if len(names) == 0 {
		for _, movie := range decodeMovieBlocks(doc) {
			names = append(names, movie.directorNames()...)
		}
	}
	return strings.Join(names, ", ")
}

func principalCredits(doc *html.Node) []*html.Node {
	return htmldoc.FindAll(doc, func(n *html.Node) bool {
		return n.Data == "li" && htmldoc.Attr(n, "data-testid") == "title-pc-principal-credit"
	})
}

var releaseDatePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\d{1,2}\s+(?:` + monthNames + `)\s+\d{4}`),
	regexp.MustCompile(`(?i)(?:` + monthNames + `)\s+\d{1,2},\s+\d{4}`),
}

// ReleaseDate extracts the theatrical release date from known markup
// locations, falling back to the structured-data publication date. Empty
// when nothing matches.
func (e *Enricher) ReleaseDate(ctx context.Context, id string) string {
	doc, _, ok := e.titlePage(ctx, id)
	if !ok {
		return ""
	}

	candidates := htmldoc.FindAll(doc, func(n *html.Node) bool {
		switch htmldoc.Attr(n, "data-testid") {
		case "title-details-releasedate":
			return true
		case "title-pc-principal-credit":
			return strings.Contains(strings.ToLower(htmldoc.Text(n)), "release date")
		}
		return n.Data == "li" && strings.Contains(strings.ToLower(htmldoc.Text(n)), "release date")
	})
	for _, node := range candidates {
		text := htmldoc.Text(node)
		for _, pattern := range releaseDatePatterns {
			if match := pattern.FindString(text); match != "" {
				return match
			}
		}
	}

	for _, movie := range decodeMovieBlocks(doc) {
		if movie.DatePublished != "" {
			return movie.DatePublished
		}
	}
	return ""
}

var (
	countriesOfOriginPattern = regexp.MustCompile(`"countriesOfOrigin":\s*\{\s*"countries":\s*\[\s*\{\s*"id":\s*"([^"]+)"`)
	descriptionRuntime       = regexp.MustCompile(`\d+h\s*\d+m|\d+\s*min`)
)

// CountryAndRuntime backfills fields the lineup page left empty, reading
// structured data first and progressively less reliable locations after.
func (e *Enricher) CountryAndRuntime(ctx context.Context, id string) (country, runtime string) {
	doc, raw, ok := e.titlePage(ctx, id)
	if !ok {
		return "", ""
	}

	for _, movie := range decodeMovieBlocks(doc) {
		if runtime == "" && movie.Duration != "" {
			runtime = formatISODuration(movie.Duration)
		}
	}
	if m := countriesOfOriginPattern.FindStringSubmatch(raw); m != nil {
		country = m[1]
	}

	if runtime == "" {
		meta := htmldoc.Find(doc, func(n *html.Node) bool {
			return n.Data == "meta" && htmldoc.Attr(n, "property") == "og:description"
		})
		if meta != nil {
			runtime = descriptionRuntime.FindString(htmldoc.Attr(meta, "content"))
		}
	}

	if country == "" {
		if link := htmldoc.Find(doc, func(n *html.Node) bool {
			return n.Data == "a" && strings.Contains(htmldoc.Attr(n, "href"), "/country/")
		}); link != nil {
			country = htmldoc.Text(link)
		}
	}

	return country, runtime
}
