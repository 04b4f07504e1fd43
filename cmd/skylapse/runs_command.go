package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"skylapse/internal/ledger"
)

func newRunsCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs [run-id]",
		Short: "List recorded runs, or show one run's artifacts and failures",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := ledger.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			if len(args) == 1 {
				return showRun(cmd, store, args[0])
			}
			return listRuns(cmd, store, limit)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to list")
	return cmd
}

func listRuns(cmd *cobra.Command, store *ledger.Store, limit int) error {
	runs, err := store.ListRuns(cmd.Context(), limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded yet.")
		return nil
	}

	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			run.ID,
			run.SourceID,
			run.Variable,
			humanize.Time(run.StartedAt),
			run.Elapsed().Round(10 * time.Millisecond).String(),
			strconv.Itoa(run.ArtifactCount),
			strconv.Itoa(run.FailureCount),
		})
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable(
		[]string{"RUN", "SOURCE", "VARIABLE", "STARTED", "ELAPSED", "OK", "FAILED"},
		rows, 5, 6, 7))
	return nil
}

func showRun(cmd *cobra.Command, store *ledger.Store, runID string) error {
	out := cmd.OutOrStdout()

	artifacts, err := store.ArtifactsForRun(cmd.Context(), runID)
	if err != nil {
		return err
	}
	failures, err := store.FailuresForRun(cmd.Context(), runID)
	if err != nil {
		return err
	}
	if len(artifacts) == 0 && len(failures) == 0 {
		return fmt.Errorf("no run %q in the ledger", runID)
	}

	if len(artifacts) > 0 {
		rows := make([][]string, 0, len(artifacts))
		for _, artifact := range artifacts {
			rows = append(rows, []string{
				fmt.Sprintf("%s-%s", artifact.Aspect, artifact.Format),
				artifact.Path,
				fmt.Sprintf("%dx%d", artifact.Width, artifact.Height),
				strconv.Itoa(artifact.FrameCount),
				humanize.Bytes(uint64(artifact.SizeBytes)),
			})
		}
		fmt.Fprintln(out, renderTable(
			[]string{"VARIANT", "PATH", "DIMENSIONS", "FRAMES", "BYTES"}, rows, 4, 5))
	}
	for _, failure := range failures {
		fmt.Fprintf(out, "Failed %s-%s: %s\n", failure.Aspect, failure.Format, failure.Reason)
	}
	return nil
}
