package encode

import (
	"context"
	"fmt"
	"strings"
	"time"

	"skylapse/internal/assemble"
	"skylapse/internal/render"
)

// Format names a container format.
type Format string

const (
	FormatGIF Format = "gif"
	FormatMP4 Format = "mp4"
)

// ParseFormat resolves a configured container format name.
func ParseFormat(name string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(name))) {
	case FormatGIF:
		return FormatGIF, nil
	case FormatMP4:
		return FormatMP4, nil
	default:
		return "", fmt.Errorf("unknown container format %q", name)
	}
}

// Extension returns the file extension for the format.
func (f Format) Extension() string { return string(f) }

// Artifact describes one encoded output. Written once, never mutated.
type Artifact struct {
	Path       string
	Format     Format
	Aspect     render.Aspect
	Width      int
	Height     int
	FrameCount int
	Duration   time.Duration
	Bytes      int64
}

// Encoder consumes timestamp-ordered frames plus their encoding plan and
// writes one artifact. Implementations check ctx between frames so large
// encodes stay cancellable.
type Encoder interface {
	Format() Format
	Encode(ctx context.Context, frames []*render.Frame, plan assemble.Plan, path string) (Artifact, error)
}
