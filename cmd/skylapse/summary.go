package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"skylapse/internal/pipeline"
)

func printRunSummary(cmd *cobra.Command, result pipeline.Result) {
	out := cmd.OutOrStdout()

	if len(result.Artifacts) > 0 {
		rows := make([][]string, 0, len(result.Artifacts))
		for _, artifact := range result.Artifacts {
			rows = append(rows, []string{
				fmt.Sprintf("%s-%s", artifact.Aspect, artifact.Format),
				artifact.Path,
				fmt.Sprintf("%dx%d", artifact.Width, artifact.Height),
				artifact.Duration.Round(10 * time.Millisecond).String(),
				humanize.Bytes(uint64(artifact.Bytes)),
			})
		}
		fmt.Fprintln(out, renderTable(
			[]string{"VARIANT", "PATH", "DIMENSIONS", "DURATION", "BYTES"}, rows, 4, 5))
	}

	for _, still := range result.Stills {
		fmt.Fprintf(out, "Still: %s\n", still)
	}

	for _, failure := range result.Failures {
		fmt.Fprintf(out, "Failed %s: %s\n", failure.Variant, failure.Reason())
	}
}
