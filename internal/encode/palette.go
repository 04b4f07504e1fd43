package encode

import (
	"image/color"
	"sort"

	"skylapse/internal/render"
)

const (
	maxPaletteColors = 256
	// paletteSampleBudget bounds how many pixels feed palette derivation so
	// long animations stay cheap to quantize.
	paletteSampleBudget = 1 << 18
)

// sharedPalette derives one palette across all frames. Quantizing against a
// single global table is what prevents cross-frame flicker from
// independently chosen palettes.
func sharedPalette(frames []*render.Frame) color.Palette {
	totalPixels := 0
	for _, frame := range frames {
		bounds := frame.Image.Bounds()
		totalPixels += bounds.Dx() * bounds.Dy()
	}
	stride := 1
	for totalPixels/(stride*stride) > paletteSampleBudget {
		stride++
	}

	unique := make(map[color.RGBA]int)
	for _, frame := range frames {
		img := frame.Image
		bounds := img.Bounds()
		for y := bounds.Min.Y; y < bounds.Max.Y; y += stride {
			for x := bounds.Min.X; x < bounds.Max.X; x += stride {
				unique[img.RGBAAt(x, y)]++
			}
		}
	}

	if len(unique) <= maxPaletteColors {
		palette := make(color.Palette, 0, len(unique))
		for c := range unique {
			palette = append(palette, c)
		}
		sort.Slice(palette, func(i, j int) bool {
			a, b := palette[i].(color.RGBA), palette[j].(color.RGBA)
			if a.R != b.R {
				return a.R < b.R
			}
			if a.G != b.G {
				return a.G < b.G
			}
			return a.B < b.B
		})
		return palette
	}
	return medianCut(unique, maxPaletteColors)
}

type weightedColor struct {
	c     color.RGBA
	count int
}

type colorBox struct {
	colors []weightedColor
}

func (b *colorBox) widestChannel() int {
	var minC, maxC [3]uint8
	for i := range minC {
		minC[i] = 0xff
	}
	for _, wc := range b.colors {
		ch := [3]uint8{wc.c.R, wc.c.G, wc.c.B}
		for i := 0; i < 3; i++ {
			if ch[i] < minC[i] {
				minC[i] = ch[i]
			}
			if ch[i] > maxC[i] {
				maxC[i] = ch[i]
			}
		}
	}
	widest, span := 0, -1
	for i := 0; i < 3; i++ {
		if s := int(maxC[i]) - int(minC[i]); s > span {
			widest, span = i, s
		}
	}
	return widest
}

func channel(c color.RGBA, i int) uint8 {
	switch i {
	case 0:
		return c.R
	case 1:
		return c.G
	default:
		return c.B
	}
}

// medianCut recursively splits color boxes along their widest channel until
// the target count is reached, then averages each box.
func medianCut(histogram map[color.RGBA]int, target int) color.Palette {
	initial := make([]weightedColor, 0, len(histogram))
	for c, count := range histogram {
		initial = append(initial, weightedColor{c: c, count: count})
	}
	boxes := []*colorBox{{colors: initial}}

	for len(boxes) < target {
		// Split the most populous splittable box.
		sort.Slice(boxes, func(i, j int) bool {
			return len(boxes[i].colors) > len(boxes[j].colors)
		})
		box := boxes[0]
		if len(box.colors) < 2 {
			break
		}
		ch := box.widestChannel()
		sort.Slice(box.colors, func(i, j int) bool {
			return channel(box.colors[i].c, ch) < channel(box.colors[j].c, ch)
		})
		mid := len(box.colors) / 2
		left := &colorBox{colors: box.colors[:mid]}
		right := &colorBox{colors: box.colors[mid:]}
		boxes = append(boxes[1:], left, right)
	}

	palette := make(color.Palette, 0, len(boxes))
	for _, box := range boxes {
		var r, g, b, weight uint64
		for _, wc := range box.colors {
			w := uint64(wc.count)
			r += uint64(wc.c.R) * w
			g += uint64(wc.c.G) * w
			b += uint64(wc.c.B) * w
			weight += w
		}
		if weight == 0 {
			continue
		}
		palette = append(palette, color.RGBA{
			R: uint8(r / weight),
			G: uint8(g / weight),
			B: uint8(b / weight),
			A: 0xff,
		})
	}
	return palette
}
