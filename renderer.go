package pictemplate

import (
	"image"
	"image/color"
	"image/draw"
)

// CompositeOptions configures a Compositor.
type CompositeOptions struct {
	// Resize selects how captures fill their slots. Default: ResizeFit.
	Resize ResizePolicy
	// Background fills the canvas before drawing. Nil means white.
	Background color.Color
	// Overlay, if set, is stretched over the whole canvas after all slots.
	Overlay image.Image
	// Fonts resolves text fonts. If nil, a new FontCache is created.
	Fonts *FontCache
	// Painter overrides slot drawing. If nil, a SlotPainter built from
	// Resize and Fonts is used.
	Painter Painter
}

// Compositor draws captures and texts onto a canvas following one template.
// A Compositor only reads the Index; several may share it concurrently.
type Compositor struct {
	template *Template
	images   []image.Image
	painter  Painter
	bg       color.Color
	overlay  image.Image
}

// NewCompositor prepares the composition of images with the template
// matching len(images) and orientation o. It fails when the index has no
// such template.
func NewCompositor(idx *Index, o Orientation, images []image.Image, opts *CompositeOptions) (*Compositor, error) {
	if opts == nil {
		opts = &CompositeOptions{}
	}
	t, err := idx.Template(len(images), o)
	if err != nil {
		return nil, err
	}

	c := &Compositor{
		template: t,
		images:   images,
		painter:  opts.Painter,
		bg:       opts.Background,
		overlay:  opts.Overlay,
	}
	if c.painter == nil {
		c.painter = NewSlotPainter(opts.Resize, opts.Fonts)
	}
	if c.bg == nil {
		c.bg = color.White
	}
	return c, nil
}

// Template returns the template the compositor draws.
func (c *Compositor) Template() *Template {
	return c.template
}

// Size returns the canvas size in pixels.
func (c *Compositor) Size() (width, height int) {
	return c.template.Size()
}

// Compose draws every slot in template order and returns the canvas.
// Slots whose capture or text index has no entry are left empty.
func (c *Compositor) Compose(texts []TextEntry) *image.RGBA {
	t := c.template
	canvas := image.NewRGBA(t.Bounds())
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(c.bg), image.Point{}, draw.Src)

	for _, s := range t.shapes {
		var slot image.Image
		switch s.Type {
		case ShapeCapture:
			if s.SourceIndex < 0 || s.SourceIndex >= len(c.images) {
				Logger().Debug("no image available for capture slot", "text", s.Label)
				continue
			}
			slot = c.painter.Capture(s, c.images[s.SourceIndex])
		case ShapeText:
			if s.SourceIndex < 0 || s.SourceIndex >= len(texts) {
				Logger().Debug("no text available for text slot", "text", s.Label)
				continue
			}
			slot = c.painter.Text(s, texts[s.SourceIndex])
		case ShapeImage:
			img, err := c.painter.Image(s)
			if err != nil {
				Logger().Warn("template image not drawn", "text", s.Label, "error", err)
				continue
			}
			slot = img
		}
		c.pasteSlot(canvas, s, slot)
	}

	if c.overlay != nil {
		draw.Draw(canvas, canvas.Bounds(), resizeExact(c.overlay, t.Width, t.Height), image.Point{}, draw.Over)
	}
	return canvas
}

// Outlines returns a copy of base with the outline and number of every
// capture and text slot drawn over it. base is not modified.
func (c *Compositor) Outlines(base image.Image) *image.RGBA {
	canvas := image.NewRGBA(c.template.Bounds())
	if base != nil {
		draw.Draw(canvas, canvas.Bounds(), base, base.Bounds().Min, draw.Src)
	}
	for _, s := range c.template.shapes {
		if s.Type != ShapeCapture && s.Type != ShapeText {
			continue
		}
		c.pasteSlot(canvas, s, c.painter.Outline(s))
	}
	return canvas
}

// pasteSlot rotates a slot image by the shape rotation and pastes it
// centered on the shape box.
func (c *Compositor) pasteSlot(canvas draw.Image, s Shape, slot image.Image) {
	if slot == nil {
		return
	}
	paste(canvas, rotate(slot, s.Rotation), s.X, s.Y, s.Width, s.Height)
}
