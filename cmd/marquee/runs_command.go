package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"marquee/internal/store"
)

func newRunsCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recent pipeline runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			runs, err := store.Open(cfg.Paths.StateDir)
			if err != nil {
				return fmt.Errorf("open run store: %w", err)
			}
			defer runs.Close()

			listed, err := runs.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(listed) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded yet.")
				return nil
			}

			rows := make([][]string, 0, len(listed))
			for _, run := range listed {
				finished := ""
				if !run.FinishedAt.IsZero() {
					finished = run.FinishedAt.Local().Format("2006-01-02 15:04")
				}
				rows = append(rows, []string{
					shortRunID(run.ID),
					run.StartedAt.Local().Format("2006-01-02 15:04"),
					finished,
					run.Status,
					strconv.Itoa(run.FilmCount),
					strconv.Itoa(run.EnrichedCount),
					strconv.Itoa(run.LikelyCount),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Run", "Started", "Finished", "Status", "Films", "Enriched", "Likely"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight},
			))
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs to list")
	return cmd
}

func shortRunID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
