package render

import (
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"math"
	"time"

	xdraw "golang.org/x/image/draw"

	"skylapse/internal/colormap"
	"skylapse/internal/faults"
	"skylapse/internal/logging"
	"skylapse/internal/series"
)

const timestampFormat = "2006-01-02 15:04 MST"

var canvasBackground = color.RGBA{R: 0xfa, G: 0xfa, B: 0xfa, A: 0xff}

// Options configures a Renderer for one pipeline run.
type Options struct {
	Square   CanvasSpec
	Vertical CanvasSpec
	// Caption is the static location label drawn on every frame.
	Caption string
	Units   string
	Legend  bool
	// ShrinkTolerance is the fraction by which the grid may be scaled below
	// 1:1 to fit the canvas before composition fails. 0 means the grid must
	// fit at native resolution or larger.
	ShrinkTolerance float64
}

// Renderer composes grids onto aspect-ratio canvases. It holds only immutable
// state after construction (the scale and pre-rendered legends), so a single
// Renderer is safe for concurrent use across frame workers.
type Renderer struct {
	scale   colormap.Scale
	opts    Options
	legends map[int]*image.RGBA
	logger  *slog.Logger
}

// New builds a Renderer. Legends are rendered once here and blitted onto
// every frame that needs them.
func New(scale colormap.Scale, opts Options, logger *slog.Logger) *Renderer {
	r := &Renderer{
		scale:   scale,
		opts:    opts,
		legends: make(map[int]*image.RGBA, 2),
		logger:  logging.WithComponent(logger, "render"),
	}
	if opts.Legend {
		for _, spec := range []CanvasSpec{opts.Square, opts.Vertical} {
			width := spec.Width - 2*spec.Margin
			if width <= 0 {
				continue
			}
			if _, done := r.legends[width]; !done {
				r.legends[width] = renderLegend(scale, width, opts.Units)
			}
		}
	}
	return r
}

// Spec returns the canvas geometry for an aspect.
func (r *Renderer) Spec(aspect Aspect) CanvasSpec {
	if aspect == AspectVertical {
		return r.opts.Vertical
	}
	return r.opts.Square
}

// contentRect returns the canvas region available to the grid after the
// margin and overlay bands are reserved.
func (r *Renderer) contentRect(spec CanvasSpec) image.Rectangle {
	bottom := spec.Margin
	if r.opts.Legend {
		bottom += legendHeight
	}
	return image.Rect(spec.Margin, spec.Margin, spec.Width-spec.Margin, spec.Height-bottom)
}

// Render composes one (timestamp, grid) sample onto the canvas for the given
// aspect ratio. It has no side effects beyond the returned frame.
func (r *Renderer) Render(index int, ts time.Time, grid series.Grid, aspect Aspect) (*Frame, error) {
	spec := r.Spec(aspect)

	placement, err := placeGrid(grid, r.contentRect(spec), r.opts.ShrinkTolerance)
	if err != nil {
		return nil, faults.Wrap(faults.ErrComposition, "render", string(aspect),
			fmt.Sprintf("frame %s", ts.UTC().Format(time.RFC3339)), err)
	}

	canvas := image.NewRGBA(image.Rect(0, 0, spec.Width, spec.Height))
	fill(canvas, canvasBackground)

	base := r.scale.Apply(grid)
	xdraw.NearestNeighbor.Scale(canvas, placement, base, base.Bounds(), xdraw.Src, nil)

	r.drawOverlays(canvas, spec, ts)

	return &Frame{Image: canvas, Timestamp: ts, Aspect: aspect, Index: index}, nil
}

func (r *Renderer) drawOverlays(canvas *image.RGBA, spec CanvasSpec, ts time.Time) {
	top := spec.Margin / 2
	if top < labelHeight {
		top = labelHeight
	}
	if r.opts.Caption != "" {
		drawLabel(canvas, spec.Margin, top, r.opts.Caption)
	}
	// Timestamp sits at a fixed offset under the caption on every frame.
	drawLabel(canvas, spec.Margin, top+labelHeight+2, ts.UTC().Format(timestampFormat))

	if legend := r.legends[spec.Width-2*spec.Margin]; legend != nil {
		y := spec.Height - spec.Margin/2 - legend.Bounds().Dy()
		blit(canvas, legend, spec.Margin, y)
	}
}

// placeGrid computes the destination rectangle that centers the grid on the
// content area at a deterministic scale. The same grid shape and content area
// always yield the same rectangle, so a geographic point stays at the same
// pixel across every frame of an aspect ratio.
func placeGrid(grid series.Grid, content image.Rectangle, shrinkTolerance float64) (image.Rectangle, error) {
	availW := content.Dx()
	availH := content.Dy()
	if availW <= 0 || availH <= 0 {
		return image.Rectangle{}, fmt.Errorf("overlays leave no content area in %v", content)
	}

	fit := math.Min(float64(availW)/float64(grid.Width()), float64(availH)/float64(grid.Height()))
	var scale float64
	switch {
	case fit >= 1:
		// Integer zoom keeps cells square and edges crisp.
		scale = math.Floor(fit)
	case 1-fit <= shrinkTolerance:
		scale = fit
	default:
		return image.Rectangle{}, fmt.Errorf(
			"grid %dx%d needs %.0f%% shrink to fit %dx%d content area, tolerance is %.0f%%",
			grid.Width(), grid.Height(), (1-fit)*100, availW, availH, shrinkTolerance*100)
	}

	w := int(float64(grid.Width()) * scale)
	h := int(float64(grid.Height()) * scale)
	x0 := content.Min.X + (availW-w)/2
	y0 := content.Min.Y + (availH-h)/2
	return image.Rect(x0, y0, x0+w, y0+h), nil
}

func fill(img *image.RGBA, c color.RGBA) {
	for y := img.Bounds().Min.Y; y < img.Bounds().Max.Y; y++ {
		for x := img.Bounds().Min.X; x < img.Bounds().Max.X; x++ {
			img.SetRGBA(x, y, c)
		}
	}
}

func blit(dst *image.RGBA, src *image.RGBA, x, y int) {
	rect := src.Bounds().Add(image.Pt(x, y))
	xdraw.Draw(dst, rect, src, src.Bounds().Min, xdraw.Src)
}
