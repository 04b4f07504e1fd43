package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"skylapse/internal/assemble"
	"skylapse/internal/colormap"
	"skylapse/internal/encode"
	"skylapse/internal/faults"
	"skylapse/internal/logging"
	"skylapse/internal/render"
	"skylapse/internal/series"
)

// Variant is one requested (aspect ratio, format) output.
type Variant struct {
	Aspect render.Aspect
	Format encode.Format
}

func (v Variant) String() string {
	return fmt.Sprintf("%s-%s", v.Aspect, v.Format)
}

// Failure reports one variant that could not be produced.
type Failure struct {
	Variant Variant
	Err     error
}

// Reason returns the user-visible failure explanation.
func (f Failure) Reason() string {
	if f.Err == nil {
		return "unknown"
	}
	return f.Err.Error()
}

// Result is the outcome of one pipeline run: every requested variant appears
// either as an artifact or as a failure, never silently dropped.
type Result struct {
	RunID     string
	Artifacts []encode.Artifact
	Failures  []Failure
	// Stills holds paths of exported final-frame PNGs, one per aspect.
	Stills []string
}

// Options configures one pipeline run.
type Options struct {
	Variants []Variant
	Render   render.Options
	Assemble assemble.Options
	// Ramp colors the scale; FixedRange pins it instead of deriving it from
	// the series when non-nil.
	Ramp       colormap.Ramp
	FixedRange *[2]float64
	OutputDir  string
	// Still additionally exports the final frame of each aspect as a PNG.
	Still bool
	// Workers bounds parallel frame rendering; 0 uses GOMAXPROCS.
	Workers int
	// OnProgress, when set, receives per-frame and per-variant completion
	// ticks for CLI progress display.
	OnProgress func(stage string, done, total int)
}

// Orchestrator wires the rendering pipeline per output variant, reusing
// rendered frames across formats that share an aspect ratio.
type Orchestrator struct {
	encoders map[encode.Format]encode.Encoder
	logger   *slog.Logger
}

// New constructs an Orchestrator from the available encoders.
func New(encoders []encode.Encoder, logger *slog.Logger) *Orchestrator {
	byFormat := make(map[encode.Format]encode.Encoder, len(encoders))
	for _, enc := range encoders {
		byFormat[enc.Format()] = enc
	}
	return &Orchestrator{
		encoders: byFormat,
		logger:   logging.WithComponent(logger, "pipeline"),
	}
}

// Run executes the pipeline: one color scale for the whole run, one frame
// sequence per distinct aspect ratio, one encode per requested variant.
// Variant failures are isolated; only validation-class errors abort the run.
func (o *Orchestrator) Run(ctx context.Context, s *series.Series, opts Options) (Result, error) {
	result := Result{RunID: uuid.NewString()}

	if s == nil || s.Len() < 2 {
		count := 0
		if s != nil {
			count = s.Len()
		}
		return result, faults.Wrap(faults.ErrInsufficientFrames, "pipeline", "preflight",
			fmt.Sprintf("series has %d usable timestamp(s), need at least 2", count), nil)
	}
	if len(opts.Variants) == 0 {
		return result, faults.Wrap(faults.ErrConfiguration, "pipeline", "preflight",
			"no output variants requested", nil)
	}

	scale, err := o.buildScale(s, opts)
	if err != nil {
		return result, err
	}

	renderOpts := opts.Render
	if renderOpts.Caption == "" {
		renderOpts.Caption = captionFor(s.Meta())
	}
	if renderOpts.Units == "" {
		renderOpts.Units = s.Meta().Units
	}
	renderer := render.New(scale, renderOpts, o.logger)

	logger := o.logger.With(
		logging.String(logging.FieldRunID, result.RunID),
		logging.String(logging.FieldSource, s.Meta().SourceID))
	logger.Info("pipeline run started",
		logging.Int("timestamps", s.Len()),
		logging.Int("variants", len(opts.Variants)),
		logging.Float64("scale_min", scale.Min()),
		logging.Float64("scale_max", scale.Max()))

	for _, aspect := range distinctAspects(opts.Variants) {
		aspectVariants := variantsFor(opts.Variants, aspect)

		frames, err := o.renderAspect(ctx, s, renderer, aspect, opts)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return result, ctxErr
			}
			// Composition failures sink every variant of this aspect but
			// leave the other aspects running.
			logger.Warn("aspect rendering failed",
				logging.String(logging.FieldAspect, string(aspect)),
				logging.Error(err))
			for _, variant := range aspectVariants {
				result.Failures = append(result.Failures, Failure{Variant: variant, Err: err})
			}
			continue
		}

		ordered, plan, err := assemble.Build(frames, opts.Assemble)
		if err != nil {
			if faults.AbortsRun(err) {
				return result, err
			}
			for _, variant := range aspectVariants {
				result.Failures = append(result.Failures, Failure{Variant: variant, Err: err})
			}
			continue
		}

		if opts.Still {
			stillPath := filepath.Join(opts.OutputDir,
				fmt.Sprintf("%s_%s_still.png", sanitizeID(s.Meta().SourceID), aspect))
			if err := writeStill(ordered[len(ordered)-1], stillPath); err != nil {
				logger.Warn("still export failed",
					logging.String(logging.FieldAspect, string(aspect)),
					logging.Error(err))
			} else {
				result.Stills = append(result.Stills, stillPath)
			}
		}

		for _, variant := range aspectVariants {
			artifact, err := o.encodeVariant(ctx, ordered, plan, variant, s.Meta(), opts)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return result, ctxErr
				}
				logger.Warn("variant failed",
					logging.String(logging.FieldVariant, variant.String()),
					logging.Error(err))
				result.Failures = append(result.Failures, Failure{Variant: variant, Err: err})
				continue
			}
			logger.Info("variant produced",
				logging.String(logging.FieldVariant, variant.String()),
				logging.String("path", artifact.Path),
				logging.Duration("duration", artifact.Duration))
			result.Artifacts = append(result.Artifacts, artifact)
			tickProgress(opts.OnProgress, "encode", len(result.Artifacts), len(opts.Variants))
		}
	}

	logger.Info("pipeline run finished",
		logging.Int("artifacts", len(result.Artifacts)),
		logging.Int("failures", len(result.Failures)))
	return result, nil
}

func (o *Orchestrator) buildScale(s *series.Series, opts Options) (colormap.Scale, error) {
	if opts.FixedRange != nil {
		return colormap.FromRange(opts.FixedRange[0], opts.FixedRange[1], opts.Ramp)
	}
	return colormap.FromSeries(s, opts.Ramp)
}

func (o *Orchestrator) encodeVariant(
	ctx context.Context,
	frames []*render.Frame,
	plan assemble.Plan,
	variant Variant,
	meta series.Metadata,
	opts Options,
) (encode.Artifact, error) {
	encoder, ok := o.encoders[variant.Format]
	if !ok {
		return encode.Artifact{}, faults.Wrap(faults.ErrEncoding, "pipeline", "encode",
			fmt.Sprintf("no encoder available for %s", variant.Format), nil)
	}
	path := filepath.Join(opts.OutputDir, ArtifactName(meta.SourceID, variant))
	return encoder.Encode(ctx, frames, plan, path)
}

// ArtifactName builds the deterministic output file name for a variant.
func ArtifactName(sourceID string, variant Variant) string {
	return fmt.Sprintf("%s_%s.%s", sanitizeID(sourceID), variant.Aspect, variant.Format.Extension())
}

func sanitizeID(id string) string {
	id = strings.ToLower(strings.TrimSpace(id))
	if id == "" {
		return "series"
	}
	var b strings.Builder
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ' || r == '.':
			b.WriteByte('-')
		}
	}
	if b.Len() == 0 {
		return "series"
	}
	return b.String()
}

func captionFor(meta series.Metadata) string {
	parts := make([]string, 0, 2)
	if meta.SourceID != "" {
		parts = append(parts, meta.SourceID)
	}
	if meta.Variable != "" {
		parts = append(parts, meta.Variable)
	}
	return strings.Join(parts, " ")
}

func distinctAspects(variants []Variant) []render.Aspect {
	seen := make(map[render.Aspect]struct{}, 2)
	out := make([]render.Aspect, 0, 2)
	for _, v := range variants {
		if _, dup := seen[v.Aspect]; dup {
			continue
		}
		seen[v.Aspect] = struct{}{}
		out = append(out, v.Aspect)
	}
	return out
}

func variantsFor(variants []Variant, aspect render.Aspect) []Variant {
	out := make([]Variant, 0, len(variants))
	for _, v := range variants {
		if v.Aspect == aspect {
			out = append(out, v)
		}
	}
	return out
}

func tickProgress(fn func(string, int, int), stage string, done, total int) {
	if fn != nil {
		fn(stage, done, total)
	}
}
