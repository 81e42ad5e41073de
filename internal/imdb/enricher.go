package imdb

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"marquee/internal/film"
	"marquee/internal/logging"
	"marquee/internal/webcache"
)

const defaultBaseURL = "https://www.imdb.com"

// Enricher fills records in with reference-database metadata: external ID,
// company credits, release date, festival-debut flag, and country/runtime
// backfill.
type Enricher struct {
	fetcher       *webcache.Fetcher
	logger        *slog.Logger
	baseURL       string
	festivalYear  int
	lookupDelay   time.Duration
	lookupTimeout time.Duration

	sleep func(ctx context.Context, d time.Duration) error
}

// fetchOptions carries the per-lookup timeout into every fetch.
func (e *Enricher) fetchOptions() webcache.FetchOptions {
	return webcache.FetchOptions{Timeout: e.lookupTimeout}
}

// Option configures an Enricher.
type Option func(*Enricher)

// WithBaseURL overrides the reference-database origin, mainly for tests.
func WithBaseURL(baseURL string) Option {
	return func(e *Enricher) {
		if baseURL != "" {
			e.baseURL = baseURL
		}
	}
}

// WithLookupDelay sets the pause between per-film lookups.
func WithLookupDelay(d time.Duration) Option {
	return func(e *Enricher) {
		e.lookupDelay = d
	}
}

// WithLookupTimeout bounds each secondary lookup request. Zero keeps the
// fetcher's default timeout.
func WithLookupTimeout(d time.Duration) Option {
	return func(e *Enricher) {
		e.lookupTimeout = d
	}
}

// New creates an enricher. festivalYear anchors year-less screening dates
// and the default search year.
func New(fetcher *webcache.Fetcher, logger *slog.Logger, festivalYear int, opts ...Option) *Enricher {
	e := &Enricher{
		fetcher:      fetcher,
		logger:       logging.NewComponentLogger(logger, "imdb"),
		baseURL:      defaultBaseURL,
		festivalYear: festivalYear,
		sleep:        sleepContext,
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

// EnrichAll processes the batch sequentially, mutating records in place.
// limit > 0 restricts processing to the first limit records. Per-record
// failures leave that record unenriched and never abort the batch.
func (e *Enricher) EnrichAll(ctx context.Context, records []*film.Record, limit int) {
	if limit > 0 && limit < len(records) {
		records = records[:limit]
		e.logger.Info("limiting enrichment batch", logging.Int("limit", limit))
	}

	festivalStart, haveStart := FestivalStart(records, e.festivalYear)
	if haveStart {
		e.logger.Info("festival start date determined",
			logging.String("date", festivalStart.Format("2006-01-02")))
	} else {
		e.logger.Warn("no parseable screening dates, festival debut detection disabled")
	}

	searchYear := strconv.Itoa(e.festivalYear)
	for i, record := range records {
		if ctx.Err() != nil {
			return
		}
		e.logger.Info("enriching film",
			logging.String(logging.FieldFilm, record.Title),
			logging.Int("position", i+1),
			logging.Int("total", len(records)))

		if skip, reason := ShouldSkip(record); skip {
			e.logger.Info("skipping lookup",
				logging.String(logging.FieldFilm, record.Title),
				logging.String("reason", reason))
			continue
		}

		e.enrichOne(ctx, record, searchYear, festivalStart, haveStart)

		if e.lookupDelay > 0 && i < len(records)-1 {
			_ = e.sleep(ctx, e.lookupDelay)
		}
	}
}

func (e *Enricher) enrichOne(ctx context.Context, record *film.Record, searchYear string, festivalStart time.Time, haveStart bool) {
	id, ok := e.Search(ctx, record.Title, searchYear, record.Director)
	if !ok {
		e.logger.Warn("no reference-database match",
			logging.String(logging.FieldFilm, record.Title))
		return
	}
	record.IMDbID = id

	production, distributors := e.CompanyCredits(ctx, id)
	record.AddProductionCompanies(production...)
	record.AddDistributors(distributors...)

	record.ReleaseDate = e.ReleaseDate(ctx, id)
	if haveStart {
		record.SetFestivalDebut(isFestivalDebut(record.ReleaseDate, festivalStart))
	} else {
		record.SetFestivalDebut(false)
	}

	if record.Country == "" || record.Runtime == "" {
		country, runtime := e.CountryAndRuntime(ctx, id)
		if record.Country == "" {
			record.Country = country
		}
		if record.Runtime == "" {
			record.Runtime = runtime
		}
	}

	e.logger.Info("enriched film",
		logging.String(logging.FieldFilm, record.Title),
		logging.String("imdb_id", id),
		logging.Int("production_companies", len(record.ProductionCompanies)),
		logging.Int("distributors", len(record.Distributors)),
		logging.Bool("has_release_date", record.ReleaseDate != ""))
}
