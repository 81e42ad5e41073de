// Package pipeline orchestrates a full lineup run: extraction,
// reference-database enrichment, classification, trailer lookup, and run
// persistence. Stages run sequentially; each stage reads the records the
// previous one produced.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"marquee/internal/classify"
	"marquee/internal/config"
	"marquee/internal/film"
	"marquee/internal/imdb"
	"marquee/internal/letterboxd"
	"marquee/internal/lineup"
	"marquee/internal/logging"
	"marquee/internal/store"
	"marquee/internal/trailer"
	"marquee/internal/webcache"
)

// ErrNoFilms indicates the lineup source yielded zero records; the run is
// recorded as failed.
var ErrNoFilms = errors.New("no films extracted from lineup source")

// ErrRunInProgress indicates another process holds the run lock.
var ErrRunInProgress = errors.New("another run is already in progress")

// RunOptions adjusts a single pipeline run.
type RunOptions struct {
	// URL overrides the configured lineup URL when non-empty.
	URL string
	// ForceRefresh bypasses cached lineup pages.
	ForceRefresh bool
	// Limit truncates the lineup to the first N films. Zero means all.
	Limit int

	SkipIMDb     bool
	SkipTrailers bool
	// OnlyScrape stops after extraction and classification.
	OnlyScrape bool
}

// Summary reports what a run produced.
type Summary struct {
	RunID    string
	Films    int
	Enriched int
	Trailers int
	Likely   int
	Elapsed  time.Duration
}

// Pipeline wires the stages together over a shared fetch cache.
type Pipeline struct {
	cfg     *config.Config
	logger  *slog.Logger
	cache   *webcache.Store
	fetcher *webcache.Fetcher
	runs    *store.Store
	now     func() time.Time
}

// New builds a pipeline from configuration. The run store is optional;
// pass nil to skip run persistence.
func New(cfg *config.Config, runs *store.Store, logger *slog.Logger) (*Pipeline, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	cache, err := webcache.NewStore(cfg.Paths.CacheDir)
	if err != nil {
		return nil, fmt.Errorf("init web cache: %w", err)
	}
	fetcher := webcache.NewFetcher(cache, logging.NewComponentLogger(logger, "fetch"), webcache.FetcherOptions{
		MaxAttempts:       cfg.Fetch.MaxAttempts,
		BaseDelay:         time.Duration(cfg.Fetch.BaseDelaySeconds) * time.Second,
		PoliteDelayMin:    time.Duration(cfg.Fetch.PoliteDelayMinMillis) * time.Millisecond,
		PoliteDelayMax:    time.Duration(cfg.Fetch.PoliteDelayMaxMillis) * time.Millisecond,
		RateLimitDelayMin: time.Duration(cfg.Fetch.RateLimitDelayMinSecs) * time.Second,
		RateLimitDelayMax: time.Duration(cfg.Fetch.RateLimitDelayMaxSecs) * time.Second,
		Timeout:           time.Duration(cfg.Fetch.PrimaryTimeoutSeconds) * time.Second,
	})
	return &Pipeline{
		cfg:     cfg,
		logger:  logger,
		cache:   cache,
		fetcher: fetcher,
		runs:    runs,
		now:     time.Now,
	}, nil
}

// Fetcher exposes the shared fetch cache for auxiliary commands.
func (p *Pipeline) Fetcher() *webcache.Fetcher {
	return p.fetcher
}

// Run executes the stages in order and returns the finished records.
func (p *Pipeline) Run(ctx context.Context, opts RunOptions) ([]*film.Record, *Summary, error) {
	release, err := p.cache.AcquireRunLock()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrRunInProgress, err)
	}
	defer release()

	started := p.now()
	sourceURL := opts.URL
	if sourceURL == "" {
		sourceURL = p.cfg.Source.LineupURL
	}

	runID := ""
	if p.runs != nil {
		runID, err = p.runs.BeginRun(ctx, sourceURL)
		if err != nil {
			return nil, nil, fmt.Errorf("record run start: %w", err)
		}
	}

	records, err := p.execute(ctx, sourceURL, opts)
	if p.runs != nil && runID != "" {
		status := store.StatusCompleted
		if err != nil {
			status = store.StatusFailed
		}
		if finishErr := p.runs.FinishRun(ctx, runID, status, records); finishErr != nil {
			p.logger.Warn("failed to record run result", logging.Error(finishErr))
		}
	}
	if err != nil {
		return nil, nil, err
	}

	summary := &Summary{
		RunID:   runID,
		Films:   len(records),
		Elapsed: p.now().Sub(started),
	}
	for _, record := range records {
		if record.IMDbID != "" {
			summary.Enriched++
		}
		if record.TrailerURL != "" {
			summary.Trailers++
		}
		if record.LikelyDistributed {
			summary.Likely++
		}
	}

	p.logger.Info("pipeline run finished",
		logging.String(logging.FieldRunID, runID),
		logging.Int("films", summary.Films),
		logging.Int("enriched", summary.Enriched),
		logging.Int("trailers", summary.Trailers),
		logging.Int("likely_distributed", summary.Likely),
		logging.Duration("elapsed", summary.Elapsed))
	return records, summary, nil
}

func (p *Pipeline) execute(ctx context.Context, sourceURL string, opts RunOptions) ([]*film.Record, error) {
	extractor := lineup.NewExtractor(p.fetcher, logging.NewComponentLogger(p.logger, "lineup"), lineup.Options{
		FilmLinkPattern: p.cfg.Source.FilmLinkPattern,
		CacheMaxAge:     time.Duration(p.cfg.Source.CacheMaxAgeMinutes) * time.Minute,
	})
	records, err := extractor.Extract(ctx, sourceURL, p.cfg.Source.BackupURLs, opts.ForceRefresh)
	if err != nil {
		return nil, fmt.Errorf("extract lineup: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrNoFilms
	}
	if opts.Limit > 0 && len(records) > opts.Limit {
		p.logger.Info("limiting lineup", logging.Int("limit", opts.Limit), logging.Int("extracted", len(records)))
		records = records[:opts.Limit]
	}

	lookupTimeout := time.Duration(p.cfg.Fetch.LookupTimeoutSeconds) * time.Second

	if !opts.OnlyScrape && !opts.SkipIMDb && p.cfg.IMDb.Enabled {
		enricher := imdb.New(p.fetcher, logging.NewComponentLogger(p.logger, "imdb"),
			p.cfg.Source.FestivalYear,
			imdb.WithBaseURL(p.cfg.IMDb.BaseURL),
			imdb.WithLookupDelay(time.Duration(p.cfg.IMDb.DelaySeconds)*time.Second),
			imdb.WithLookupTimeout(lookupTimeout))
		enricher.EnrichAll(ctx, records, 0)
		if err := ctx.Err(); err != nil {
			return records, err
		}
	}

	engine := classify.NewEngine(logging.NewComponentLogger(p.logger, "classify"), p.cfg.Source.FestivalYear)
	engine.ApplyAll(records)

	if !opts.OnlyScrape {
		search := !opts.SkipTrailers && p.cfg.Trailers.Enabled
		trailers := trailer.New(p.fetcher, logging.NewComponentLogger(p.logger, "trailer"),
			trailer.WithBaseURL(p.cfg.Trailers.BaseURL),
			trailer.WithSearchDelay(time.Duration(p.cfg.Trailers.DelaySeconds)*time.Second),
			trailer.WithLookupTimeout(lookupTimeout))
		trailers.EnrichAll(ctx, records, search, 0)
		if err := ctx.Err(); err != nil {
			return records, err
		}
	}

	return records, nil
}

// Recommend scores records against the configured Letterboxd profile.
func (p *Pipeline) Recommend(ctx context.Context, records []*film.Record, username string) ([]letterboxd.Recommendation, error) {
	if username == "" {
		username = p.cfg.Letterboxd.Username
	}
	if username == "" {
		return nil, fmt.Errorf("no letterboxd username configured")
	}
	scraper := letterboxd.NewScraper(p.fetcher, logging.NewComponentLogger(p.logger, "letterboxd"),
		letterboxd.WithBaseURL(p.cfg.Letterboxd.BaseURL),
		letterboxd.WithMaxPages(p.cfg.Letterboxd.MaxProfilePages),
		letterboxd.WithLookupTimeout(time.Duration(p.cfg.Fetch.LookupTimeoutSeconds)*time.Second))
	profile, err := scraper.ScrapeProfile(ctx, username)
	if err != nil {
		return nil, err
	}
	if len(profile.Films) == 0 {
		return nil, fmt.Errorf("no films found for letterboxd user %q", username)
	}
	return letterboxd.Recommend(records, profile, p.cfg.Letterboxd.MaxRecommendations,
		logging.NewComponentLogger(p.logger, "letterboxd")), nil
}
