package pipeline

import (
	"fmt"
	"image/png"
	"os"

	"skylapse/internal/render"
)

// writeStill exports one frame as a PNG, typically the final frame of an
// aspect so a static end state can be shared alongside the animation.
func writeStill(frame *render.Frame, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create still: %w", err)
	}
	if err := png.Encode(file, frame.Image); err != nil {
		file.Close()
		os.Remove(path)
		return fmt.Errorf("encode still: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close still: %w", err)
	}
	return nil
}
