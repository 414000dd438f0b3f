package tray

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
)

const iconSize = 32

var (
	colorIdle     = color.RGBA{R: 0xE3, G: 0xE3, B: 0xE3, A: 0xFF}
	colorBusy     = color.RGBA{R: 0xF1, G: 0x9E, B: 0x39, A: 0xFF}
	colorDisabled = color.RGBA{R: 0x75, G: 0x75, B: 0x75, A: 0xFF}
	colorError    = color.RGBA{R: 0xE5, G: 0x39, B: 0x35, A: 0xFF}
)

// renderIcon draws a filled disc with a "T" cut out of it
func renderIcon(c color.RGBA) []byte {
	img := image.NewRGBA(image.Rect(0, 0, iconSize, iconSize))
	center := float64(iconSize-1) / 2
	radius := float64(iconSize)/2 - 1

	for y := 0; y < iconSize; y++ {
		for x := 0; x < iconSize; x++ {
			dx, dy := float64(x)-center, float64(y)-center
			if dx*dx+dy*dy > radius*radius {
				continue
			}
			if isGlyph(x, y) {
				continue
			}
			img.SetRGBA(x, y, c)
		}
	}

	var buf bytes.Buffer
	// Encoding to memory cannot fail
	png.Encode(&buf, img)
	return buf.Bytes()
}

// isGlyph reports whether (x, y) belongs to the "T" letter
func isGlyph(x, y int) bool {
	bar := y >= 8 && y <= 11 && x >= 9 && x <= 22
	stem := y > 11 && y <= 24 && x >= 14 && x <= 17
	return bar || stem
}
