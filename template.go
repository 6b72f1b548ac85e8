// Package pictemplate turns a diagram editor export (draw.io / Flowchart
// Maker .xml file) into picture layout templates and composites photos and
// text strings onto a canvas according to them.
//
// A template document holds one page per (orientation, capture count). Each
// page declares its canvas size and a list of slots: capture slots labelled
// "1".."4", text slots labelled "1", "2", "footer_text1" or "footer_text2",
// and embedded images. Pages are decoded once into an immutable Index which
// is then shared by any number of Compositor values.
//
// See the Version variable for the current library version.
package pictemplate

import (
	"fmt"
	"image"
	"slices"
	"strings"
)

// Orientation of a template canvas or of a photo.
type Orientation int

const (
	Portrait Orientation = iota
	Landscape
)

func (o Orientation) String() string {
	switch o {
	case Portrait:
		return "portrait"
	case Landscape:
		return "landscape"
	default:
		return fmt.Sprintf("Orientation(%d)", int(o))
	}
}

// ParseOrientation parses "portrait" or "landscape" (case-insensitive).
func ParseOrientation(s string) (Orientation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "portrait":
		return Portrait, nil
	case "landscape":
		return Landscape, nil
	}
	return Portrait, fmt.Errorf("%w: unknown orientation %q", ErrInvalidConfig, s)
}

// orientationOf returns Portrait when h exceeds w.
func orientationOf(w, h int) Orientation {
	if w < h {
		return Portrait
	}
	return Landscape
}

// Template is the layout decoded from one document page.
type Template struct {
	Name         string
	Orientation  Orientation
	CaptureCount int
	Width        int // canvas width in pixels
	Height       int // canvas height in pixels
	DPI          int
	// CaptureOrientation is the majority orientation of the capture slots.
	CaptureOrientation Orientation

	shapes []Shape
}

// Size returns the canvas size in pixels.
func (t *Template) Size() (width, height int) {
	return t.Width, t.Height
}

// Bounds returns the canvas rectangle.
func (t *Template) Bounds() image.Rectangle {
	return image.Rect(0, 0, t.Width, t.Height)
}

// Shapes returns all slots in draw order: the order they appear in the
// source document. Later shapes overlay earlier ones.
func (t *Template) Shapes() []Shape {
	return slices.Clone(t.shapes)
}

// Captures returns the capture slots in draw order.
func (t *Template) Captures() []Shape {
	return t.filter(ShapeCapture)
}

// Texts returns the text slots in draw order.
func (t *Template) Texts() []Shape {
	return t.filter(ShapeText)
}

// Images returns the embedded image shapes in draw order.
func (t *Template) Images() []Shape {
	return t.filter(ShapeImage)
}

func (t *Template) filter(typ ShapeType) []Shape {
	var out []Shape
	for _, s := range t.shapes {
		if s.Type == typ {
			out = append(out, s)
		}
	}
	return out
}

// captureOrientation derives the dominant capture orientation: Portrait
// when at least half of the capture slots are taller than wide.
func captureOrientation(shapes []Shape) Orientation {
	captures, portraits := 0, 0
	for _, s := range shapes {
		if s.Type != ShapeCapture {
			continue
		}
		captures++
		if s.Width < s.Height {
			portraits++
		}
	}
	if 2*portraits >= captures {
		return Portrait
	}
	return Landscape
}

// Index gives access to the templates of a document, keyed by orientation
// then capture count. It is immutable once built and safe for concurrent
// use.
type Index struct {
	info      DocumentInfo
	templates map[Orientation]map[int]*Template
	// order lists orientations in the order they were first indexed.
	order []Orientation
}

// buildIndex assembles decoded pages into an Index. Construction is
// all-or-nothing: any error discards the whole document.
func buildIndex(info DocumentInfo, pages []*page) (*Index, error) {
	idx := &Index{
		info:      info,
		templates: make(map[Orientation]map[int]*Template),
	}
	for _, p := range pages {
		shapes, count, err := pageShapes(p)
		if err != nil {
			return nil, err
		}
		o := p.orientation()
		byCount, ok := idx.templates[o]
		if !ok {
			byCount = make(map[int]*Template)
			idx.templates[o] = byCount
			idx.order = append(idx.order, o)
		}
		if prev, ok := byCount[count]; ok {
			return nil, fmt.Errorf("%w: several templates with %d captures are defined (%s, pages %q and %q)",
				ErrTemplateConflict, count, o, prev.Name, p.name)
		}
		t := &Template{
			Name:               p.name,
			Orientation:        o,
			CaptureCount:       count,
			Width:              p.width,
			Height:             p.height,
			DPI:                p.dpi,
			CaptureOrientation: captureOrientation(shapes),
			shapes:             shapes,
		}
		byCount[count] = t

		captures, texts := len(t.Captures()), len(t.Texts())
		Logger().Info("found template",
			"name", t.Name,
			"orientation", o.String(),
			"captures", captures,
			"texts", texts,
			"others", len(shapes)-captures-texts)
	}
	if len(idx.order) == 0 {
		return nil, ErrNoTemplate
	}
	return idx, nil
}

// Info returns the document metadata.
func (idx *Index) Info() DocumentInfo {
	return idx.info
}

// Orientations returns the indexed orientations in indexing order.
func (idx *Index) Orientations() []Orientation {
	return slices.Clone(idx.order)
}

// CaptureCounts returns the capture counts available for an orientation,
// in ascending order.
func (idx *Index) CaptureCounts(o Orientation) []int {
	counts := make([]int, 0, len(idx.templates[o]))
	for n := range idx.templates[o] {
		counts = append(counts, n)
	}
	slices.Sort(counts)
	return counts
}

// Templates returns every template, by orientation in indexing order then
// by capture count.
func (idx *Index) Templates() []*Template {
	var out []*Template
	for _, o := range idx.order {
		for _, n := range idx.CaptureCounts(o) {
			out = append(out, idx.templates[o][n])
		}
	}
	return out
}

// Template returns the template for the given capture count and orientation.
func (idx *Index) Template(captureCount int, o Orientation) (*Template, error) {
	byCount, ok := idx.templates[o]
	if !ok {
		return nil, fmt.Errorf("%w: no template for %q orientation", ErrTemplateNotFound, o)
	}
	t, ok := byCount[captureCount]
	if !ok {
		return nil, fmt.Errorf("%w: no template for %d captures (orientation=%s)", ErrTemplateNotFound, captureCount, o)
	}
	return t, nil
}

// Size returns the canvas size of the matching template.
func (idx *Index) Size(captureCount int, o Orientation) (width, height int, err error) {
	t, err := idx.Template(captureCount, o)
	if err != nil {
		return 0, 0, err
	}
	return t.Width, t.Height, nil
}

// Shapes returns all slots of the matching template in draw order.
func (idx *Index) Shapes(captureCount int, o Orientation) ([]Shape, error) {
	t, err := idx.Template(captureCount, o)
	if err != nil {
		return nil, err
	}
	return t.Shapes(), nil
}

// CaptureShapes returns the capture slots of the matching template.
func (idx *Index) CaptureShapes(captureCount int, o Orientation) ([]Shape, error) {
	t, err := idx.Template(captureCount, o)
	if err != nil {
		return nil, err
	}
	return t.Captures(), nil
}

// TextShapes returns the text slots of the matching template.
func (idx *Index) TextShapes(captureCount int, o Orientation) ([]Shape, error) {
	t, err := idx.Template(captureCount, o)
	if err != nil {
		return nil, err
	}
	return t.Texts(), nil
}

// BestOrientation returns the orientation whose template best suits the
// given captures. The first image decides the captures orientation (all
// captures of a sequence are expected to share it). Preference goes to a
// template whose capture slots have the same orientation, then to any
// template for that number of captures, then Portrait.
func (idx *Index) BestOrientation(images []image.Image) Orientation {
	if len(images) == 0 || images[0] == nil {
		return Portrait
	}
	n := len(images)
	b := images[0].Bounds()
	natural := Landscape
	if b.Dx() < b.Dy() {
		natural = Portrait
	}

	for _, o := range idx.order {
		if t, ok := idx.templates[o][n]; ok && t.CaptureOrientation == natural {
			return o
		}
	}
	for _, o := range idx.order {
		if _, ok := idx.templates[o][n]; ok {
			return o
		}
	}
	return Portrait
}
