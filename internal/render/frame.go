package render

import (
	"fmt"
	"image"
	"strings"
	"time"
)

// Aspect names a canvas composition target.
type Aspect string

const (
	// AspectSquare composes onto a 1:1 canvas.
	AspectSquare Aspect = "square"
	// AspectVertical composes onto a 9:16 canvas.
	AspectVertical Aspect = "vertical"
)

// ParseAspect resolves a configured aspect-ratio name.
func ParseAspect(name string) (Aspect, error) {
	switch Aspect(strings.ToLower(strings.TrimSpace(name))) {
	case AspectSquare:
		return AspectSquare, nil
	case AspectVertical:
		return AspectVertical, nil
	default:
		return "", fmt.Errorf("unknown aspect ratio %q", name)
	}
}

// Frame is one composed raster plus its source timestamp and aspect tag.
// Frames are immutable once returned by the renderer.
type Frame struct {
	Image     *image.RGBA
	Timestamp time.Time
	Aspect    Aspect
	// Index is the frame's position in series timestamp order.
	Index int
}

// CanvasSpec describes one composition target in pixels.
type CanvasSpec struct {
	Width  int
	Height int
	// Margin reserves border space for the caption, timestamp, and legend.
	Margin int
}
