package main

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"marquee/internal/export"
	"marquee/internal/logging"
	"marquee/internal/pipeline"
	"marquee/internal/store"
)

const summaryElapsedPrecision = 100 * time.Millisecond

func newScrapeCommand(ctx *commandContext) *cobra.Command {
	var (
		forceRefresh   bool
		limit          int
		onlyScrape     bool
		skipIMDb       bool
		skipTrailers   bool
		outputDir      string
		outputName     string
		cacheDir       string
		formatFlag     string
		letterboxdUser string
	)

	cmd := &cobra.Command{
		Use:   "scrape [url]",
		Short: "Scrape the lineup, enrich it, and write export files",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			urlFlag := ""
			if len(args) > 0 {
				urlFlag = args[0]
			}
			formats, err := selectFormats(formatFlag)
			if err != nil {
				return err
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			if cacheDir != "" {
				cfg.Paths.CacheDir = cacheDir
			}
			if outputDir != "" {
				cfg.Paths.OutputDir = outputDir
			}
			if outputName == "" {
				outputName = "festival_films"
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			runs, err := store.Open(cfg.Paths.StateDir)
			if err != nil {
				return fmt.Errorf("open run store: %w", err)
			}
			defer runs.Close()

			p, err := pipeline.New(cfg, runs, logger)
			if err != nil {
				return err
			}

			records, summary, err := p.Run(runCtx, pipeline.RunOptions{
				URL:          urlFlag,
				ForceRefresh: forceRefresh,
				Limit:        limit,
				SkipIMDb:     skipIMDb,
				SkipTrailers: skipTrailers,
				OnlyScrape:   onlyScrape,
			})
			if err != nil {
				return err
			}

			writer := export.NewWriter(logger)
			paths, err := writer.WriteAll(records, cfg.Paths.OutputDir, outputName, formats)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]string{"Films", "Enriched", "Trailers", "Likely distributed", "Elapsed"},
				[][]string{{
					strconv.Itoa(summary.Films),
					strconv.Itoa(summary.Enriched),
					strconv.Itoa(summary.Trailers),
					strconv.Itoa(summary.Likely),
					summary.Elapsed.Round(summaryElapsedPrecision).String(),
				}},
				[]columnAlignment{alignRight, alignRight, alignRight, alignRight, alignRight},
			))
			for _, path := range paths {
				fmt.Fprintf(out, "Saved: %s\n", path)
			}

			if letterboxdUser != "" {
				recommendations, err := p.Recommend(runCtx, records, letterboxdUser)
				if err != nil {
					logger.Warn("letterboxd recommendations unavailable", logging.Error(err))
					return nil
				}
				fmt.Fprintln(out, renderRecommendations(recommendations))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&forceRefresh, "refresh", false, "Bypass cached lineup pages")
	cmd.Flags().IntVar(&limit, "limit", 0, "Process only the first N films")
	cmd.Flags().BoolVar(&onlyScrape, "only-scrape", false, "Stop after extraction and classification")
	cmd.Flags().BoolVar(&skipIMDb, "skip-imdb", false, "Skip reference-database enrichment")
	cmd.Flags().BoolVar(&skipTrailers, "skip-trailers", false, "Skip trailer searches")
	cmd.Flags().StringVar(&outputDir, "output-dir", "", "Directory for export files")
	cmd.Flags().StringVar(&outputName, "output-name", "", "Base name for export files")
	cmd.Flags().StringVar(&cacheDir, "cache-dir", "", "Directory for cached pages")
	cmd.Flags().StringVar(&formatFlag, "format", "all", "Export format: json, csv, markdown, or all")
	cmd.Flags().StringVar(&letterboxdUser, "letterboxd", "", "Letterboxd username to rank the lineup for")

	return cmd
}

func selectFormats(format string) ([]string, error) {
	switch format {
	case "", "all":
		return export.AllFormats, nil
	case export.FormatJSON, export.FormatCSV, export.FormatMarkdown:
		return []string{format}, nil
	default:
		return nil, fmt.Errorf("unknown format %q (expected json, csv, markdown, or all)", format)
	}
}
