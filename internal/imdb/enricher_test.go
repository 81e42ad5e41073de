package imdb

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"marquee/internal/film"
	"marquee/internal/webcache"
)

const findResultsPage = `<!DOCTYPE html>
<html><body>
<ul>
<li><a class="ipc-metadata-list-summary-item__t" href="/title/tt0000001/">Some Other Film</a> 1999</li>
<li><a class="ipc-metadata-list-summary-item__t" href="/title/tt5555555/">The Mastermind</a> 2025</li>
</ul>
</body></html>`

const titlePage = `<!DOCTYPE html>
<html><head>
<script type="application/ld+json">
{"@type":"Movie","name":"The Mastermind","datePublished":"2025-10-17","duration":"PT1H50M","director":{"@type":"Person","name":"Kelly Reichardt"}}
</script>
<meta property="og:description" content="1h 50m | Crime, Drama">
<script>var props = {"countriesOfOrigin":{"countries":[{"id":"US"}]}};</script>
</head><body>
<li data-testid="title-pc-principal-credit"><span>Director</span><a class="ipc-metadata-list-summary-item__t" href="/name/nm0716980/">Kelly Reichardt</a></li>
<li data-testid="title-details-releasedate"><span>Release date</span><span>October 17, 2025 (United States)</span></li>
</body></html>`

const creditsPage = `<!DOCTYPE html>
<html><body>
<div>
<h4>Production Companies</h4>
<ul><li>FilmScience</li><li>Range Media Partners</li></ul>
<h4>Distributors</h4>
<ul><li>MUBI</li></ul>
</div>
</body></html>`

func newEnricherFixture(t *testing.T) (*Enricher, *httptest.Server) {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/find/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(findResultsPage))
	})
	mux.HandleFunc("/title/tt5555555/companycredits/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(creditsPage))
	})
	mux.HandleFunc("/title/tt5555555/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(titlePage))
	})
	server := httptest.NewServer(mux)
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
	enricher := New(fetcher, nil, 2025, WithBaseURL(server.URL))
	enricher.sleep = func(context.Context, time.Duration) error { return nil }
	return enricher, server
}

func TestLookupTimeoutBoundsSearchRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(findResultsPage))
	}))
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
	enricher := New(fetcher, nil, 2025,
		WithBaseURL(server.URL),
		WithLookupTimeout(20*time.Millisecond))

	if id, ok := enricher.Search(context.Background(), "The Mastermind", "2025", "Kelly Reichardt"); ok {
		t.Fatalf("expected slow lookup to time out, got %q", id)
	}
}

func TestSearchValidatesTitleYearAndDirector(t *testing.T) {
	enricher, _ := newEnricherFixture(t)

	id, ok := enricher.Search(context.Background(), "The Mastermind", "2025", "Kelly Reichardt")
	if !ok {
		t.Fatal("expected search to match")
	}
	if id != "tt5555555" {
		t.Fatalf("id = %q", id)
	}
}

func TestSearchRejectsDirectorMismatch(t *testing.T) {
	enricher, _ := newEnricherFixture(t)

	if id, ok := enricher.Search(context.Background(), "The Mastermind", "2025", "Wes Anderson"); ok {
		t.Fatalf("expected mismatch to reject candidate, got %q", id)
	}
}

func TestCompanyCreditsSplitBySection(t *testing.T) {
	enricher, _ := newEnricherFixture(t)

	production, distributors := enricher.CompanyCredits(context.Background(), "tt5555555")
	if len(production) != 2 {
		t.Fatalf("production = %v", production)
	}
	if len(distributors) != 1 || distributors[0] != "MUBI" {
		t.Fatalf("distributors = %v", distributors)
	}
}

func TestDetailPageExtraction(t *testing.T) {
	enricher, _ := newEnricherFixture(t)
	ctx := context.Background()

	if got := enricher.Director(ctx, "tt5555555"); got != "Kelly Reichardt" {
		t.Fatalf("Director = %q", got)
	}
	if got := enricher.ReleaseDate(ctx, "tt5555555"); got != "October 17, 2025" {
		t.Fatalf("ReleaseDate = %q", got)
	}
	country, runtime := enricher.CountryAndRuntime(ctx, "tt5555555")
	if country != "US" {
		t.Fatalf("country = %q", country)
	}
	if runtime != "1h 50m" {
		t.Fatalf("runtime = %q", runtime)
	}
}

func TestEnrichAllFillsRecord(t *testing.T) {
	enricher, _ := newEnricherFixture(t)

	record := &film.Record{
		Title:    "The Mastermind",
		Director: "Kelly Reichardt",
		Showtimes: []film.Showtime{
			{Date: "Saturday, September 27", Time: "6:00 PM"},
		},
	}
	enricher.EnrichAll(context.Background(), []*film.Record{record}, 0)

	if record.IMDbID != "tt5555555" {
		t.Fatalf("IMDbID = %q", record.IMDbID)
	}
	if len(record.ProductionCompanies) != 2 || len(record.Distributors) != 1 {
		t.Fatalf("companies = %v / %v", record.ProductionCompanies, record.Distributors)
	}
	if record.ReleaseDate != "October 17, 2025" {
		t.Fatalf("ReleaseDate = %q", record.ReleaseDate)
	}
	if record.FestivalDebut == nil || !*record.FestivalDebut {
		t.Fatalf("FestivalDebut = %v, want true", record.FestivalDebut)
	}
	if record.Runtime != "1h 50m" || record.Country != "US" {
		t.Fatalf("backfill = %q %q", record.Runtime, record.Country)
	}
}

func TestEnrichAllSkipsOmnibusPrograms(t *testing.T) {
	enricher, _ := newEnricherFixture(t)

	record := &film.Record{
		Title:       "Currents Program 1: New Frontiers",
		Director:    "A. Smith, B. Jones, C. Brown",
		Description: "A program of shorts.",
	}
	enricher.EnrichAll(context.Background(), []*film.Record{record}, 0)

	if record.IMDbID != "" {
		t.Fatalf("expected no lookup, got %q", record.IMDbID)
	}
	if record.FestivalDebut != nil {
		t.Fatal("skipped record should not carry a debut flag")
	}
}

func TestShouldSkip(t *testing.T) {
	cases := []struct {
		name   string
		record *film.Record
		skip   bool
	}{
		{"dual feature", &film.Record{Title: "Film A + Film B", Director: "One Person/Another Person"}, true},
		{"three directors", &film.Record{Title: "Tryptich", Director: "A. Smith, B. Jones, C. Brown"}, true},
		{"single director", &film.Record{Title: "The Mastermind", Director: "Kelly Reichardt"}, false},
		{"plus without slash", &film.Record{Title: "A + B", Director: "Kelly Reichardt"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			skip, _ := ShouldSkip(tc.record)
			if skip != tc.skip {
				t.Fatalf("ShouldSkip = %v, want %v", skip, tc.skip)
			}
		})
	}
}
