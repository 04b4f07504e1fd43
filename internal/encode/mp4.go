package encode

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"skylapse/internal/assemble"
	"skylapse/internal/faults"
	"skylapse/internal/logging"
	"skylapse/internal/render"
)

var commandContext = exec.CommandContext

// FFmpeg encodes frames into an mp4 container by piping raw RGBA rasters to
// an ffmpeg subprocess at the plan's constant frame rate.
type FFmpeg struct {
	binary string
	crf    int
	logger *slog.Logger
}

// NewFFmpeg constructs the mp4 encoder. The codec profile is fixed; crf is
// the only quality knob and is set once from configuration.
func NewFFmpeg(binary string, crf int, logger *slog.Logger) *FFmpeg {
	if strings.TrimSpace(binary) == "" {
		binary = "ffmpeg"
	}
	return &FFmpeg{binary: binary, crf: crf, logger: logging.WithComponent(logger, "encode.mp4")}
}

// Format implements Encoder.
func (e *FFmpeg) Format() Format { return FormatMP4 }

func (e *FFmpeg) args(width, height, fps int, path string) []string {
	return []string{
		"-hide_banner", "-loglevel", "error", "-y",
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-video_size", fmt.Sprintf("%dx%d", width, height),
		"-framerate", strconv.Itoa(fps),
		"-i", "-",
		"-an",
		"-c:v", "libx264",
		"-profile:v", "main",
		"-pix_fmt", "yuv420p",
		"-crf", strconv.Itoa(e.crf),
		"-movflags", "+faststart",
		path,
	}
}

// Encode writes the plan's frame sequence to ffmpeg over stdin. Cancellation
// is checked between frames; ffmpeg itself dies with the context.
func (e *FFmpeg) Encode(ctx context.Context, frames []*render.Frame, plan assemble.Plan, path string) (Artifact, error) {
	if len(frames) == 0 || len(plan.MP4.Sequence) == 0 {
		return Artifact{}, faults.Wrap(faults.ErrEncoding, "encode", "mp4", "no frames to encode", nil)
	}
	if plan.MP4.FPS <= 0 {
		return Artifact{}, faults.Wrap(faults.ErrEncoding, "encode", "mp4", "plan has no frame rate", nil)
	}

	bounds := frames[0].Image.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	cmd := commandContext(ctx, e.binary, e.args(width, height, plan.MP4.FPS, path)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return Artifact{}, faults.Wrap(faults.ErrEncoding, "encode", "mp4", "stdin pipe", err)
	}
	if err := cmd.Start(); err != nil {
		return Artifact{}, faults.Wrap(faults.ErrEncoding, "encode", "mp4",
			fmt.Sprintf("start %s", e.binary), err)
	}

	writeErr := func() error {
		defer stdin.Close()
		for _, idx := range plan.MP4.Sequence {
			if err := ctx.Err(); err != nil {
				return err
			}
			if idx < 0 || idx >= len(frames) {
				return fmt.Errorf("plan references frame %d of %d", idx, len(frames))
			}
			if err := writeRGBA(stdin, frames[idx]); err != nil {
				return err
			}
		}
		return nil
	}()

	waitErr := cmd.Wait()
	if writeErr != nil {
		// A write failure usually means ffmpeg died mid-stream, so its
		// stderr carries the real cause.
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = "stream frames"
		}
		os.Remove(path)
		return Artifact{}, faults.Wrap(faults.ErrEncoding, "encode", "mp4", detail, writeErr)
	}
	if waitErr != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = waitErr.Error()
		}
		os.Remove(path)
		return Artifact{}, faults.Wrap(faults.ErrEncoding, "encode", "mp4", detail, waitErr)
	}

	info, err := os.Stat(path)
	if err != nil {
		return Artifact{}, faults.Wrap(faults.ErrEncoding, "encode", "mp4", "stat output", err)
	}

	e.logger.Info("mp4 encoded",
		logging.String("path", path),
		logging.Int("frames", len(plan.MP4.Sequence)),
		logging.Int("fps", plan.MP4.FPS),
		logging.Duration("duration", plan.MP4.Duration()))

	return Artifact{
		Path:       path,
		Format:     FormatMP4,
		Aspect:     plan.Aspect,
		Width:      width,
		Height:     height,
		FrameCount: len(plan.MP4.Sequence),
		Duration:   plan.MP4.Duration(),
		Bytes:      info.Size(),
	}, nil
}

// writeRGBA streams the frame's pixels row by row so rasters with a larger
// stride than their width stay packed.
func writeRGBA(w io.Writer, frame *render.Frame) error {
	img := frame.Image
	bounds := img.Bounds()
	rowBytes := bounds.Dx() * 4
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		offset := img.PixOffset(bounds.Min.X, y)
		if _, err := w.Write(img.Pix[offset : offset+rowBytes]); err != nil {
			return err
		}
	}
	return nil
}

var _ Encoder = (*FFmpeg)(nil)
