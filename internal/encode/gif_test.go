package encode

import (
	"context"
	"image"
	"image/color"
	"image/gif"
	"os"
	"path/filepath"
	"testing"
	"time"

	"skylapse/internal/assemble"
	"skylapse/internal/render"
)

var encodeEpoch = time.Date(2024, time.May, 10, 0, 0, 0, 0, time.UTC)

func solidFrame(index int, c color.RGBA, aspect render.Aspect) *render.Frame {
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return &render.Frame{
		Image:     img,
		Timestamp: encodeEpoch.Add(time.Duration(index) * time.Hour),
		Aspect:    aspect,
		Index:     index,
	}
}

func testFrames(n int) []*render.Frame {
	colors := []color.RGBA{
		{R: 0xff, A: 0xff},
		{G: 0xff, A: 0xff},
		{B: 0xff, A: 0xff},
		{R: 0xff, G: 0xff, A: 0xff},
	}
	frames := make([]*render.Frame, n)
	for i := range frames {
		frames[i] = solidFrame(i, colors[i%len(colors)], render.AspectSquare)
	}
	return frames
}

func TestGIFRoundTrip(t *testing.T) {
	frames := testFrames(4)
	ordered, plan, err := assemble.Build(frames, assemble.Options{TargetDuration: 2 * time.Second})
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "out.gif")
	artifact, err := NewGIF(0, nil).Encode(context.Background(), ordered, plan, path)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if artifact.FrameCount != 4 || artifact.Format != FormatGIF {
		t.Fatalf("unexpected artifact %+v", artifact)
	}
	if artifact.Duration != 2*time.Second {
		t.Fatalf("artifact duration %v, want 2s", artifact.Duration)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer file.Close()
	decoded, err := gif.DecodeAll(file)
	if err != nil {
		t.Fatalf("DecodeAll: %v", err)
	}
	if len(decoded.Image) != 4 {
		t.Fatalf("decoded %d frames, want 4", len(decoded.Image))
	}
	if decoded.LoopCount != 0 {
		t.Fatalf("loop count %d, want 0 (infinite)", decoded.LoopCount)
	}
	totalCS := 0
	for _, d := range decoded.Delay {
		totalCS += d
	}
	if got := time.Duration(totalCS) * 10 * time.Millisecond; got != 2*time.Second {
		t.Fatalf("decoded duration %v, want 2s", got)
	}

	// The few distinct input colors survive quantization exactly.
	for i, want := range []color.RGBA{{R: 0xff, A: 0xff}, {G: 0xff, A: 0xff}} {
		r, g, b, _ := decoded.Image[i].At(8, 8).RGBA()
		got := color.RGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: 0xff}
		if got != want {
			t.Fatalf("frame %d pixel %v, want %v", i, got, want)
		}
	}
}

func TestGIFHonorsLoopCount(t *testing.T) {
	frames := testFrames(2)
	ordered, plan, err := assemble.Build(frames, assemble.Options{TargetDuration: time.Second})
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "out.gif")
	if _, err := NewGIF(3, nil).Encode(context.Background(), ordered, plan, path); err != nil {
		t.Fatal(err)
	}
	file, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer file.Close()
	decoded, err := gif.DecodeAll(file)
	if err != nil {
		t.Fatal(err)
	}
	if decoded.LoopCount != 3 {
		t.Fatalf("loop count %d, want 3", decoded.LoopCount)
	}
}

func TestGIFRejectsPlanMismatch(t *testing.T) {
	frames := testFrames(3)
	ordered, plan, err := assemble.Build(frames, assemble.Options{TargetDuration: time.Second})
	if err != nil {
		t.Fatal(err)
	}
	plan.GIF.DelaysCS = plan.GIF.DelaysCS[:2]
	if _, err := NewGIF(0, nil).Encode(context.Background(), ordered, plan, filepath.Join(t.TempDir(), "o.gif")); err == nil {
		t.Fatal("expected error for delay/frame mismatch")
	}
}

func TestGIFCancelledContext(t *testing.T) {
	frames := testFrames(2)
	ordered, plan, err := assemble.Build(frames, assemble.Options{TargetDuration: time.Second})
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewGIF(0, nil).Encode(ctx, ordered, plan, filepath.Join(t.TempDir(), "o.gif")); err == nil {
		t.Fatal("expected cancellation error")
	}
}
