package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"skylapse/internal/config"
	"skylapse/internal/dataset"
	"skylapse/internal/fileutil"
	"skylapse/internal/ledger"
	"skylapse/internal/pipeline"
)

func newRenderCommand(ctx *commandContext) *cobra.Command {
	var (
		formats  []string
		aspects  []string
		duration float64
		still    bool
		output   string
		copyTo   string
	)

	cmd := &cobra.Command{
		Use:   "render <manifest>",
		Short: "Render a dataset into animated clips",
		Long: "Render loads the dataset named by a manifest file, derives one color\n" +
			"scale for the whole period, and produces an animation per configured\n" +
			"aspect ratio and container format.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			runCfg := *cfg
			if len(formats) > 0 {
				runCfg.Encode.Formats = formats
			}
			if len(aspects) > 0 {
				runCfg.Render.AspectRatios = aspects
			}
			if duration > 0 {
				runCfg.Animation.TargetDurationSeconds = duration
			}
			if output != "" {
				runCfg.Paths.OutputDir = output
				if err := os.MkdirAll(output, 0o755); err != nil {
					return fmt.Errorf("create output directory: %w", err)
				}
			}
			if err := runCfg.Validate(); err != nil {
				return err
			}

			lock := flock.New(filepath.Join(runCfg.Paths.OutputDir, ".skylapse.lock"))
			locked, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("lock output directory: %w", err)
			}
			if !locked {
				return fmt.Errorf("another render is writing to %s", runCfg.Paths.OutputDir)
			}
			defer lock.Unlock()

			s, err := dataset.Load(args[0])
			if err != nil {
				return err
			}

			orchestrator, opts, err := pipeline.FromConfig(&runCfg, logger)
			if err != nil {
				return err
			}
			opts.Still = still
			opts.OnProgress = renderProgress(cmd, s.Len())

			started := time.Now()
			result, err := orchestrator.Run(cmd.Context(), s, opts)
			if err != nil {
				return err
			}
			finished := time.Now()

			if err := recordRun(cmd.Context(), &runCfg, s.Meta().SourceID, s.Meta().Variable,
				s.Len(), started, finished, result); err != nil {
				logger.Warn("run not recorded in ledger", "error", err)
			}

			printRunSummary(cmd, result)
			if len(result.Artifacts) == 0 {
				return fmt.Errorf("no variants succeeded (%d failed)", len(result.Failures))
			}
			if copyTo != "" {
				if err := copyArtifacts(result, copyTo); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Copied %d artifact(s) to %s\n",
					len(result.Artifacts), copyTo)
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&formats, "format", nil, "Container formats to produce (gif, mp4)")
	cmd.Flags().StringSliceVar(&aspects, "aspect", nil, "Aspect ratios to produce (square, vertical)")
	cmd.Flags().Float64Var(&duration, "duration", 0, "Target playback duration in seconds")
	cmd.Flags().BoolVar(&still, "still", false, "Also export the final frame of each aspect as a PNG")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output directory override")
	cmd.Flags().StringVar(&copyTo, "copy-to", "", "Also copy finished artifacts to this directory, verified")
	return cmd
}

func copyArtifacts(result pipeline.Result, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create copy destination: %w", err)
	}
	for _, artifact := range result.Artifacts {
		dst := filepath.Join(dir, filepath.Base(artifact.Path))
		if err := fileutil.CopyVerified(artifact.Path, dst); err != nil {
			return fmt.Errorf("copy %s: %w", artifact.Path, err)
		}
	}
	return nil
}

// renderProgress returns a progress callback that drives a terminal bar over
// the frame-rendering stage. Non-terminal output gets no bar.
func renderProgress(cmd *cobra.Command, total int) func(string, int, int) {
	if !isatty.IsTerminal(os.Stderr.Fd()) {
		return nil
	}
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetDescription("rendering"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionClearOnFinish(),
	)
	return func(stage string, done, _ int) {
		if stage == "render" {
			_ = bar.Set(done)
		}
	}
}

func recordRun(
	ctx context.Context,
	cfg *config.Config,
	sourceID, variable string,
	timestamps int,
	started, finished time.Time,
	result pipeline.Result,
) error {
	store, err := ledger.Open(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	artifacts := make([]ledger.Artifact, 0, len(result.Artifacts))
	for _, a := range result.Artifacts {
		artifacts = append(artifacts, ledger.Artifact{
			RunID:      result.RunID,
			Path:       a.Path,
			Format:     string(a.Format),
			Aspect:     string(a.Aspect),
			Width:      a.Width,
			Height:     a.Height,
			FrameCount: a.FrameCount,
			Duration:   a.Duration,
			SizeBytes:  a.Bytes,
		})
	}
	failures := make([]ledger.Failure, 0, len(result.Failures))
	for _, f := range result.Failures {
		failures = append(failures, ledger.Failure{
			RunID:  result.RunID,
			Aspect: string(f.Variant.Aspect),
			Format: string(f.Variant.Format),
			Reason: f.Reason(),
		})
	}

	return store.RecordRun(ctx, ledger.Run{
		ID:         result.RunID,
		SourceID:   sourceID,
		Variable:   variable,
		StartedAt:  started,
		FinishedAt: finished,
		Timestamps: timestamps,
	}, artifacts, failures)
}
