package encode

import (
	"context"
	"fmt"
	"image"
	"image/draw"
	"image/gif"
	"log/slog"
	"os"

	"skylapse/internal/assemble"
	"skylapse/internal/faults"
	"skylapse/internal/logging"
	"skylapse/internal/render"
)

// GIF encodes frames into a GIF89a container with one global color table.
type GIF struct {
	loopCount int
	logger    *slog.Logger
}

// NewGIF constructs the gif encoder. loopCount 0 loops forever.
func NewGIF(loopCount int, logger *slog.Logger) *GIF {
	return &GIF{loopCount: loopCount, logger: logging.WithComponent(logger, "encode.gif")}
}

// Format implements Encoder.
func (e *GIF) Format() Format { return FormatGIF }

// Encode quantizes every frame against one shared palette and applies the
// plan's per-frame delays.
func (e *GIF) Encode(ctx context.Context, frames []*render.Frame, plan assemble.Plan, path string) (Artifact, error) {
	if len(frames) == 0 {
		return Artifact{}, faults.Wrap(faults.ErrEncoding, "encode", "gif", "no frames to encode", nil)
	}
	if len(plan.GIF.DelaysCS) != len(frames) {
		return Artifact{}, faults.Wrap(faults.ErrEncoding, "encode", "gif",
			fmt.Sprintf("plan has %d delays for %d frames", len(plan.GIF.DelaysCS), len(frames)), nil)
	}

	palette := sharedPalette(frames)
	bounds := frames[0].Image.Bounds()

	anim := &gif.GIF{
		Image:     make([]*image.Paletted, 0, len(frames)),
		Delay:     make([]int, 0, len(frames)),
		LoopCount: e.loopCount,
		Config: image.Config{
			ColorModel: palette,
			Width:      bounds.Dx(),
			Height:     bounds.Dy(),
		},
	}

	for i, frame := range frames {
		if err := ctx.Err(); err != nil {
			return Artifact{}, faults.Wrap(faults.ErrEncoding, "encode", "gif", "cancelled", err)
		}
		paletted := image.NewPaletted(bounds, palette)
		draw.FloydSteinberg.Draw(paletted, bounds, frame.Image, bounds.Min)
		anim.Image = append(anim.Image, paletted)
		anim.Delay = append(anim.Delay, plan.GIF.DelaysCS[i])
	}

	file, err := os.Create(path)
	if err != nil {
		return Artifact{}, faults.Wrap(faults.ErrEncoding, "encode", "gif", "create output", err)
	}
	defer file.Close()

	if err := gif.EncodeAll(file, anim); err != nil {
		os.Remove(path)
		return Artifact{}, faults.Wrap(faults.ErrEncoding, "encode", "gif", "write container", err)
	}
	if err := file.Close(); err != nil {
		return Artifact{}, faults.Wrap(faults.ErrEncoding, "encode", "gif", "flush output", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return Artifact{}, faults.Wrap(faults.ErrEncoding, "encode", "gif", "stat output", err)
	}

	e.logger.Info("gif encoded",
		logging.String("path", path),
		logging.Int("frames", len(frames)),
		logging.Int("palette_colors", len(palette)),
		logging.Duration("duration", plan.GIF.Duration()))

	return Artifact{
		Path:       path,
		Format:     FormatGIF,
		Aspect:     plan.Aspect,
		Width:      bounds.Dx(),
		Height:     bounds.Dy(),
		FrameCount: len(frames),
		Duration:   plan.GIF.Duration(),
		Bytes:      info.Size(),
	}, nil
}

var _ Encoder = (*GIF)(nil)
