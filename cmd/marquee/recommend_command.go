package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"marquee/internal/letterboxd"
	"marquee/internal/pipeline"
	"marquee/internal/store"
)

func newRecommendCommand(ctx *commandContext) *cobra.Command {
	var username string
	var runID string

	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Score the latest run against a Letterboxd profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			runs, err := store.Open(cfg.Paths.StateDir)
			if err != nil {
				return fmt.Errorf("open run store: %w", err)
			}
			defer runs.Close()

			if runID == "" {
				listed, err := runs.ListRuns(cmd.Context(), 1)
				if err != nil {
					return err
				}
				if len(listed) == 0 {
					return fmt.Errorf("no recorded runs; run `marquee scrape` first")
				}
				runID = listed[0].ID
			}
			records, err := runs.RunRecords(cmd.Context(), runID)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				return fmt.Errorf("run %s has no saved records", runID)
			}

			p, err := pipeline.New(cfg, nil, logger)
			if err != nil {
				return err
			}
			recommendations, err := p.Recommend(cmd.Context(), records, username)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderRecommendations(recommendations))
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "user", "", "Letterboxd username (overrides configuration)")
	cmd.Flags().StringVar(&runID, "run", "", "Run ID to score (defaults to the latest run)")
	return cmd
}

func renderRecommendations(recommendations []letterboxd.Recommendation) string {
	if len(recommendations) == 0 {
		return "No compatible films found."
	}
	rows := make([][]string, 0, len(recommendations))
	for i, rec := range recommendations {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			rec.Record.Title,
			strconv.Itoa(rec.Score),
			rec.Reasoning,
		})
	}
	return renderTable(
		[]string{"#", "Film", "Score", "Why"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignRight, alignLeft},
	)
}
