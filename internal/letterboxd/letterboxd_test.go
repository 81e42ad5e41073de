package letterboxd

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"marquee/internal/film"
	"marquee/internal/webcache"
)

const filmsPage = `<!DOCTYPE html>
<html><body>
<ul class="poster-list">
  <li>
    <div class="react-component poster" data-item-name="First Cow (2019)"
         data-item-link="/film/first-cow/" data-item-slug="first-cow" data-film-id="426406"></div>
  </li>
  <li>
    <div class="react-component poster" data-item-name="Meshes of the Afternoon"
         data-item-link="/film/meshes-of-the-afternoon/" data-item-slug="meshes-of-the-afternoon"></div>
  </li>
  <li>
    <div class="react-component poster" data-item-name="Cold Lighthouse Winter (2021)"
         data-item-link="/film/cold-lighthouse-winter/"></div>
  </li>
</ul>
</body></html>`

const emptyPage = `<!DOCTYPE html><html><body><ul class="poster-list"></ul></body></html>`

func newTestScraper(t *testing.T, handler http.Handler, opts ...ScraperOption) (*Scraper, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	store, err := webcache.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	fetcher := webcache.NewFetcher(store, nil, webcache.FetcherOptions{
		MaxAttempts:    1,
		PoliteDelayMin: 1,
		PoliteDelayMax: 2,
	})
	opts = append([]ScraperOption{WithBaseURL(server.URL)}, opts...)
	return NewScraper(fetcher, nil, opts...), server
}

func TestScrapeProfileLookupTimeout(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		fmt.Fprint(w, filmsPage)
	})

	scraper, _ := newTestScraper(t, handler,
		WithMaxPages(1),
		WithLookupTimeout(20*time.Millisecond))
	profile, err := scraper.ScrapeProfile(context.Background(), "cinephile")
	if err != nil {
		t.Fatalf("ScrapeProfile failed: %v", err)
	}
	if len(profile.Films) != 0 {
		t.Fatalf("expected no films when the page fetch times out, got %d", len(profile.Films))
	}
}

func TestScrapeProfileStopsAtEmptyPage(t *testing.T) {
	var requested []string
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		requested = append(requested, r.URL.Path)
		if strings.Contains(r.URL.Path, "/page/1/") {
			fmt.Fprint(w, filmsPage)
			return
		}
		fmt.Fprint(w, emptyPage)
	})

	scraper, _ := newTestScraper(t, mux, WithMaxPages(4))
	profile, err := scraper.ScrapeProfile(context.Background(), "cinephile")
	if err != nil {
		t.Fatalf("ScrapeProfile failed: %v", err)
	}

	if len(requested) != 2 {
		t.Errorf("expected pagination to stop after the empty page, fetched %v", requested)
	}
	if len(profile.Films) != 3 {
		t.Fatalf("expected 3 films, got %d", len(profile.Films))
	}

	first := profile.Films[0]
	if first.Title != "First Cow" || first.Year != "2019" {
		t.Errorf("first film = %q (%q), want First Cow (2019)", first.Title, first.Year)
	}
	if first.URL != "https://letterboxd.com/film/first-cow/" || first.Slug != "first-cow" || first.FilmID != "426406" {
		t.Errorf("unexpected first film link data: %+v", first)
	}

	// Title without a trailing year keeps the full name and no year.
	second := profile.Films[1]
	if second.Title != "Meshes of the Afternoon" || second.Year != "" {
		t.Errorf("second film = %q (%q)", second.Title, second.Year)
	}

	for _, word := range []string{"cow", "meshes", "afternoon", "cold", "lighthouse", "winter"} {
		if !profile.Keywords[word] {
			t.Errorf("expected keyword %q in profile vocabulary", word)
		}
	}
	if profile.Keywords["of"] || profile.Keywords["the"] {
		t.Error("stopwords should not enter the vocabulary")
	}
}

func TestScrapeProfileEmptyUsername(t *testing.T) {
	scraper, _ := newTestScraper(t, http.NotFoundHandler())
	if _, err := scraper.ScrapeProfile(context.Background(), "  "); err == nil {
		t.Fatal("expected error for blank username")
	}
}

func TestNormalizeWords(t *testing.T) {
	words := NormalizeWords("The Keeper's Last Winter, and the sea!")
	for _, want := range []string{"keeper", "s", "last", "winter", "sea"} {
		if !words[want] {
			t.Errorf("missing word %q in %v", want, words)
		}
	}
	if words["the"] || words["and"] {
		t.Errorf("stopwords leaked into %v", words)
	}
	if len(NormalizeWords("")) != 0 {
		t.Error("empty input should yield no words")
	}
}

func TestRecommendScoring(t *testing.T) {
	profile := &Profile{
		Username:  "cinephile",
		Directors: map[string]int{"Kelly Reichardt": 4},
		Countries: map[string]int{"Portugal": 2},
		Keywords: map[string]bool{
			"lighthouse": true, "keeper": true, "winter": true,
			"storm": true, "island": true, "sea": true,
		},
	}

	records := []*film.Record{
		{
			Title:             "The Long Waves",
			Director:          "Kelly Reichardt",
			Country:           "Portugal",
			Description:       "A lighthouse keeper faces one last winter storm on a remote island.",
			LikelyDistributed: false,
		},
		{
			Title:             "Wide Release Thriller",
			Director:          "Unknown Person",
			Description:       "A chase across the city.",
			LikelyDistributed: true,
		},
		{
			Title:             "Quiet Feature",
			LikelyDistributed: true,
		},
	}

	recs := Recommend(records, profile, 5, nil)
	if len(recs) != 1 {
		t.Fatalf("expected only positive-score films, got %d", len(recs))
	}

	top := recs[0]
	if top.Record.Title != "The Long Waves" {
		t.Fatalf("unexpected top recommendation %q", top.Record.Title)
	}
	// Director 5 + country 3 + high keyword overlap 2 + undistributed 1.
	if top.Score != 11 {
		t.Errorf("score = %d, want 11", top.Score)
	}
	for _, want := range []string{
		"Director Kelly Reichardt (4 films watched)",
		"Country Portugal (2 films watched)",
		"High keyword similarity",
		"Rare/undistributed film",
	} {
		if !strings.Contains(top.Reasoning, want) {
			t.Errorf("reasoning missing %q: %s", want, top.Reasoning)
		}
	}
}

func TestRecommendTopNAndOrder(t *testing.T) {
	profile := &Profile{
		Username:  "cinephile",
		Directors: map[string]int{"A": 1, "B": 1, "C": 1},
		Countries: map[string]int{"France": 1},
		Keywords:  map[string]bool{},
	}
	records := []*film.Record{
		{Title: "One", Director: "A", LikelyDistributed: true},
		{Title: "Two", Director: "B", Country: "France", LikelyDistributed: true},
		{Title: "Three", Director: "C", LikelyDistributed: false},
	}

	recs := Recommend(records, profile, 2, nil)
	if len(recs) != 2 {
		t.Fatalf("expected top 2, got %d", len(recs))
	}
	if recs[0].Record.Title != "Two" || recs[1].Record.Title != "Three" {
		t.Errorf("order = %q, %q; want Two, Three", recs[0].Record.Title, recs[1].Record.Title)
	}
}

func TestRecommendBasicCompatibilityReason(t *testing.T) {
	profile := &Profile{Username: "u", Directors: map[string]int{}, Countries: map[string]int{}, Keywords: map[string]bool{}}
	recs := Recommend([]*film.Record{{Title: "Undistributed", LikelyDistributed: false}}, profile, 5, nil)
	if len(recs) != 1 {
		t.Fatalf("expected 1 recommendation, got %d", len(recs))
	}
	if recs[0].Reasoning != "Rare/undistributed film" {
		t.Errorf("reasoning = %q", recs[0].Reasoning)
	}
}
