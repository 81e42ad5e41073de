package lineup

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"marquee/internal/testsupport"
	"marquee/internal/webcache"
)

const lineupFixture = `<!DOCTYPE html>
<html><body>
<div class="py-8 lg:py-10 border-b border-border">
  <a href="/nyff2025/films/the-mastermind"><div>The Mastermind</div></a>
  <p>Kelly Reichardt</p>
  <p data-typography-mobile="body-xs"><span>2025</span><span>USA</span><span>English subtitles</span><span>110 minutes</span></p>
  <div class="typography prose"><p>A heist drama set in 1970s Massachusetts.</p></div>
  <div class="flex flex-col gap-2 mt-4">
    <div class="flex flex-col gap-2 border-t border-border pt-2">
      <p data-typography-mobile="d-eyebrow-sm">Saturday, September 27</p>
      <button>6:00 PM Q&amp;A with Kelly Reichardt</button>
      <button class="opacity-50 cursor-not-allowed">9:15 PM</button>
    </div>
    <div class="flex flex-col gap-2 border-t border-border pt-2">
      <p data-typography-mobile="d-eyebrow-sm">Sunday, September 28</p>
      <button>Intro 3:30 PM</button>
      <button disabled><span class="line-through">8:45 PM</span></button>
      <button>Standby</button>
    </div>
  </div>
</div>
<div class="py-8 lg:py-10 border-b border-border">
  <a href="/nyff2025/films/jafar-panahi"><div>It Was Just an Accident</div></a>
  <p>Jafar Panahi</p>
  <p data-typography-mobile="body-xs">2025 | Iran/France | 102 minutes</p>
  <div class="flex flex-col gap-2 mt-4"></div>
</div>
<div class="py-8 lg:py-10 border-b border-border">
  <div>Sponsored content block with no film link</div>
</div>
</body></html>`

func serveFixture(t *testing.T, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func newTestExtractor(t *testing.T) *Extractor {
	t.Helper()
	store, err := webcache.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	fetcher := webcache.NewFetcher(store, nil, webcache.FetcherOptions{
		MaxAttempts:    1,
		PoliteDelayMin: 1,
		PoliteDelayMax: 2,
	})
	return NewExtractor(fetcher, nil, Options{FilmLinkPattern: "/films/"})
}

func TestExtractParsesFilmsAndShowtimes(t *testing.T) {
	server := serveFixture(t, lineupFixture)
	extractor := newTestExtractor(t)

	records, err := extractor.Extract(context.Background(), server.URL, nil, false)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 films, got %d", len(records))
	}

	first := records[0]
	if first.Title != "The Mastermind" {
		t.Fatalf("title = %q", first.Title)
	}
	if first.Director != "Kelly Reichardt" {
		t.Fatalf("director = %q", first.Director)
	}
	if first.Description != "A heist drama set in 1970s Massachusetts." {
		t.Fatalf("description = %q", first.Description)
	}
	if first.Year != "2025" || first.Country != "USA" || first.Runtime != "110 minutes" {
		t.Fatalf("metadata = %q %q %q", first.Year, first.Country, first.Runtime)
	}

	if len(first.Showtimes) != 4 {
		t.Fatalf("expected 4 showtimes, got %d", len(first.Showtimes))
	}
	st := first.Showtimes[0]
	if st.Date != "Saturday, September 27" || st.Time != "6:00 PM" {
		t.Fatalf("showtime = %+v", st)
	}
	if len(st.Notes) != 1 || st.Notes[0] != "Q&A" {
		t.Fatalf("notes = %v", st.Notes)
	}
	if !st.Available {
		t.Fatal("first showtime should be available")
	}
	if st.Venue != "TBA" {
		t.Fatalf("venue = %q", st.Venue)
	}
	if first.Showtimes[1].Available {
		t.Fatal("cursor-not-allowed showtime should be unavailable")
	}
	if got := first.Showtimes[2]; got.Time != "3:30 PM" || len(got.Notes) != 1 || got.Notes[0] != "Intro" {
		t.Fatalf("intro showtime = %+v", got)
	}
	if first.Showtimes[3].Available {
		t.Fatal("struck-through showtime should be unavailable")
	}
}

func TestExtractLegacyPipeMetadata(t *testing.T) {
	server := serveFixture(t, lineupFixture)
	extractor := newTestExtractor(t)

	records, err := extractor.Extract(context.Background(), server.URL, nil, false)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	second := records[1]
	if second.Year != "2025" || second.Country != "Iran/France" || second.Runtime != "102 minutes" {
		t.Fatalf("metadata = %q %q %q", second.Year, second.Country, second.Runtime)
	}
	if len(second.Showtimes) != 0 {
		t.Fatalf("expected no showtimes, got %d", len(second.Showtimes))
	}
}

func TestExtractFallsBackToBackupURL(t *testing.T) {
	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer dead.Close()
	backup := serveFixture(t, lineupFixture)

	extractor := newTestExtractor(t)
	records, err := extractor.Extract(context.Background(), dead.URL, []string{backup.URL}, false)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected films from backup, got %d", len(records))
	}
}

func TestExtractStartsWithEmptyLists(t *testing.T) {
	server := serveFixture(t, lineupFixture)
	extractor := newTestExtractor(t)

	records, err := extractor.Extract(context.Background(), server.URL, nil, false)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	for _, record := range records {
		if record.ProductionCompanies == nil || record.Distributors == nil {
			t.Errorf("%s: company lists should be empty, not nil", record.Title)
		}
		if record.Showtimes == nil {
			t.Errorf("%s: showtimes should be empty, not nil", record.Title)
		}
	}
}

func TestExtractUsesCachedPage(t *testing.T) {
	dir := t.TempDir()
	const lineupURL = "http://127.0.0.1:1/lineup"
	testsupport.WriteCachePage(t, dir, webcache.Key("lineup", lineupURL), lineupFixture)

	store, err := webcache.NewStore(dir)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	fetcher := webcache.NewFetcher(store, nil, webcache.FetcherOptions{
		MaxAttempts:    1,
		PoliteDelayMin: 1,
		PoliteDelayMax: 2,
	})
	extractor := NewExtractor(fetcher, nil, Options{FilmLinkPattern: "/films/"})

	records, err := extractor.Extract(context.Background(), lineupURL, nil, false)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 films from cache, got %d", len(records))
	}
	if records[0].Title != "The Mastermind" {
		t.Fatalf("title = %q", records[0].Title)
	}
}

func TestExtractAllSourcesFailReturnsEmpty(t *testing.T) {
	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer dead.Close()

	extractor := newTestExtractor(t)
	records, err := extractor.Extract(context.Background(), dead.URL, []string{dead.URL + "/backup"}, false)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected no records, got %d", len(records))
	}
}

func TestClassifyMetadataItems(t *testing.T) {
	cases := []struct {
		name    string
		items   []string
		year    string
		country string
		runtime string
	}{
		{"full row", []string{"2025", "France", "English subtitles", "98 minutes"}, "2025", "France", "98 minutes"},
		{"reordered", []string{"Japan", "121 minutes", "2024"}, "2024", "Japan", "121 minutes"},
		{"year only", []string{"2025"}, "2025", "", ""},
		{"blank items", []string{"", "  ", "2023"}, "2023", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			year, country, runtime := classifyMetadataItems(tc.items)
			if year != tc.year || country != tc.country || runtime != tc.runtime {
				t.Fatalf("got %q %q %q, want %q %q %q", year, country, runtime, tc.year, tc.country, tc.runtime)
			}
		})
	}
}
