package pictemplate

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/text/unicode/norm"
)

// TextEntry is one runtime text to draw in a text slot.
type TextEntry struct {
	Text string
	// Font is a font file path or a font name known to the FontCache.
	Font  string
	Color color.Color
	Align Alignment
}

// Painter draws the content of a single slot. Every method returns an
// image the size of the shape geometry (before rotation), or nil when
// there is nothing to draw. The Compositor rotates and pastes the result.
type Painter interface {
	Capture(s Shape, src image.Image) image.Image
	Text(s Shape, t TextEntry) image.Image
	Image(s Shape) (image.Image, error)
	Outline(s Shape) image.Image
}

// SlotPainter is the default Painter, drawing with golang.org/x/image.
type SlotPainter struct {
	Resize ResizePolicy
	Fonts  *FontCache
}

var _ Painter = (*SlotPainter)(nil)

// NewSlotPainter returns a SlotPainter. A nil fonts uses a new FontCache
// searching only the system font directories.
func NewSlotPainter(policy ResizePolicy, fonts *FontCache) *SlotPainter {
	if fonts == nil {
		fonts = NewFontCache()
	}
	return &SlotPainter{Resize: policy, Fonts: fonts}
}

func newSlot(s Shape) *image.RGBA {
	return image.NewRGBA(image.Rect(0, 0, s.Width, s.Height))
}

func validSlot(s Shape) bool {
	return s.Width > 0 && s.Height > 0
}

// Capture resizes src to the slot keeping its aspect ratio and centers it.
func (p *SlotPainter) Capture(s Shape, src image.Image) image.Image {
	if !validSlot(s) || src == nil {
		return nil
	}
	resized := resizeKeepRatio(src, s.Width, s.Height, p.Resize)
	rb := resized.Bounds()
	slot := newSlot(s)
	x := (s.Width - rb.Dx()) / 2
	y := (s.Height - rb.Dy()) / 2
	draw.Draw(slot, image.Rect(x, y, x+rb.Dx(), y+rb.Dy()), resized, rb.Min, draw.Src)
	return slot
}

// Text draws t with the largest font size fitting the slot.
func (p *SlotPainter) Text(s Shape, t TextEntry) image.Image {
	text := norm.NFC.String(t.Text)
	if !validSlot(s) || text == "" {
		return nil
	}
	fonts := p.Fonts
	if fonts == nil {
		fonts = NewFontCache()
	}
	face := fonts.FitFace(t.Font, text, s.Width, s.Height)
	defer face.Close()

	col := t.Color
	if col == nil {
		col = color.Black
	}
	slot := newSlot(s)
	d := &font.Drawer{
		Dst:  slot,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  textOrigin(measureText(face, text), s.Width, s.Height, t.Align),
	}
	d.DrawString(text)
	return slot
}

// Image decodes the embedded payload and stretches it over the slot.
func (p *SlotPainter) Image(s Shape) (image.Image, error) {
	if !validSlot(s) {
		return nil, nil
	}
	if len(s.ImageData) == 0 {
		return nil, fmt.Errorf("image shape %q has no embedded data", s.Label)
	}
	src, _, err := image.Decode(bytes.NewReader(s.ImageData))
	if err != nil {
		return nil, fmt.Errorf("decode embedded image: %w", err)
	}
	return resizeExact(src, s.Width, s.Height), nil
}
