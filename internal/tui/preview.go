package tui

import (
	"image"
	"strconv"

	"github.com/disintegration/imaging"
)

// PixelsPerColumn is how many preview pixels one terminal column stands for.
const PixelsPerColumn = 5

const halfBlock = "▀"

// Columns returns the terminal width of a preview rendered for size.
func Columns(size int) int {
	return max(1, size/PixelsPerColumn)
}

// RenderHalfBlocks draws img cols cells wide. Each cell shows two pixels
// stacked vertically: the upper in the foreground, the lower in the
// background. Images narrower than cols are not upscaled.
func RenderHalfBlocks(img image.Image, cols int) string {
	if img == nil || cols < 1 {
		return ""
	}
	b := img.Bounds()
	if b.Dx() < 1 || b.Dy() < 1 {
		return ""
	}
	cols = min(cols, b.Dx())

	small := imaging.Resize(img, cols, 0, imaging.Box)
	w, h := small.Bounds().Dx(), small.Bounds().Dy()

	// Raw 24-bit SGR sequences; a colour is only emitted when it changes
	// from the previous cell.
	buf := make([]byte, 0, w*((h+1)/2)*24)
	for y := 0; y < h; y += 2 {
		if y > 0 {
			buf = append(buf, '\n')
		}
		fg, bg := -1, -1
		for x := 0; x < w; x++ {
			if c := rgbAt(small, x, y); c != fg {
				buf = appendSGR(buf, 38, c)
				fg = c
			}
			if y+1 < h {
				if c := rgbAt(small, x, y+1); c != bg {
					buf = appendSGR(buf, 48, c)
					bg = c
				}
			} else if bg != -2 {
				buf = append(buf, "\x1b[49m"...)
				bg = -2
			}
			buf = append(buf, halfBlock...)
		}
		buf = append(buf, sgrReset...)
	}
	return string(buf)
}

const sgrReset = "\x1b[0m"

func rgbAt(img *image.NRGBA, x, y int) int {
	c := img.NRGBAAt(x, y)
	return int(c.R)<<16 | int(c.G)<<8 | int(c.B)
}

// appendSGR appends ESC[<layer>;2;R;G;Bm, layer 38 for foreground and 48
// for background.
func appendSGR(buf []byte, layer, rgb int) []byte {
	buf = append(buf, "\x1b["...)
	buf = strconv.AppendInt(buf, int64(layer), 10)
	buf = append(buf, ";2;"...)
	buf = strconv.AppendInt(buf, int64(rgb>>16&0xFF), 10)
	buf = append(buf, ';')
	buf = strconv.AppendInt(buf, int64(rgb>>8&0xFF), 10)
	buf = append(buf, ';')
	buf = strconv.AppendInt(buf, int64(rgb&0xFF), 10)
	return append(buf, 'm')
}
