package render

import (
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"skylapse/internal/colormap"
)

const (
	labelHeight     = 13
	legendBarHeight = 14
	legendHeight    = legendBarHeight + labelHeight + 4
)

var labelColor = color.RGBA{R: 0x33, G: 0x33, B: 0x33, A: 0xff}

// drawLabel draws text with its baseline at y.
func drawLabel(dst *image.RGBA, x, y int, text string) {
	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(labelColor),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}

// renderLegend draws the color bar for a scale once per run: a horizontal
// gradient with the range endpoints labelled beneath it.
func renderLegend(scale colormap.Scale, width int, units string) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, legendHeight))

	span := scale.Max() - scale.Min()
	for x := 0; x < width; x++ {
		v := scale.Min() + span*float64(x)/float64(width-1)
		c := scale.Color(v)
		for y := 0; y < legendBarHeight; y++ {
			img.SetRGBA(x, y, c)
		}
	}

	lo := formatScaleValue(scale.Min(), units)
	hi := formatScaleValue(scale.Max(), units)
	baseline := legendBarHeight + labelHeight
	drawLabel(img, 0, baseline, lo)
	drawLabel(img, width-textWidth(hi), baseline, hi)
	return img
}

func formatScaleValue(v float64, units string) string {
	s := fmt.Sprintf("%.1f", v)
	if units != "" {
		s += " " + units
	}
	return s
}

func textWidth(s string) int {
	return font.MeasureString(basicfont.Face7x13, s).Ceil()
}
