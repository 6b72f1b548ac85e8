package pictemplate

import (
	"image"
	"image/color"
	"sync"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
	"golang.org/x/image/font/gofont/goregular"
)

// outlineColor is used for slot outlines and numbers.
var outlineColor = color.RGBA{R: 255, A: 255}

var (
	outlineFontOnce sync.Once
	outlineFont     *text.FontSource
)

func outlineFontSource() *text.FontSource {
	outlineFontOnce.Do(func() {
		src, err := text.NewFontSource(goregular.TTF)
		if err != nil {
			Logger().Warn("cannot load outline font", "error", err)
			return
		}
		outlineFont = src
	})
	return outlineFont
}

// Outline draws the slot border and its 1-based number, to help template
// authors check positions.
func (p *SlotPainter) Outline(s Shape) image.Image {
	if !validSlot(s) {
		return nil
	}
	dc := gg.NewContext(s.Width, s.Height)
	defer dc.Close()

	dc.SetColor(outlineColor)
	dc.SetLineWidth(1)
	dc.DrawRectangle(0.5, 0.5, float64(s.Width-1), float64(s.Height-1))
	if err := dc.Stroke(); err != nil {
		Logger().Debug("outline stroke failed", "text", s.Label, "error", err)
	}

	if src := outlineFontSource(); src != nil {
		size := float64(min(max(min(s.Width, s.Height)/8, 12), 96))
		dc.SetFont(src.Face(size))
		dc.DrawString(s.Label, 10, 10+size)
	}
	_ = dc.FlushGPU()
	return dc.Image()
}
