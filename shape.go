package pictemplate

import (
	"encoding/base64"
	"fmt"
	"image"
	"strconv"
	"strings"
)

// ShapeType represents the kind of slot a diagram cell defines.
type ShapeType int

const (
	ShapeUnknown ShapeType = iota
	ShapeCapture
	ShapeText
	ShapeImage
)

func (t ShapeType) String() string {
	switch t {
	case ShapeCapture:
		return "capture"
	case ShapeText:
		return "text"
	case ShapeImage:
		return "image"
	default:
		return "unknown"
	}
}

// Geometry is a slot rectangle in pixels.
type Geometry struct {
	X, Y          int
	Width, Height int
}

// Rect returns the geometry as an image.Rectangle.
func (g Geometry) Rect() image.Rectangle {
	return image.Rect(g.X, g.Y, g.X+g.Width, g.Y+g.Height)
}

// Shape is one classified cell of a template page.
type Shape struct {
	Type  ShapeType
	Label string
	Geometry
	Style Style
	// Rotation in degrees, counter-clockwise positive (see Style.Rotation).
	Rotation int
	// SourceIndex is the 0-based index into the capture or text list this
	// slot draws; -1 for embedded images.
	SourceIndex int
	// ImageData is the decoded payload of an embedded image shape.
	ImageData []byte
}

func (s Shape) String() string {
	return fmt.Sprintf("Shape(label=%q, type=%s)", s.Label, s.Type)
}

// Style-name markers used by the diagram editor.
const (
	imageStylePrefix = "shape=image"
	textStylePrefix  = "text;"
)

var (
	captureLabels = map[string]bool{"1": true, "2": true, "3": true, "4": true}
	textLabels    = map[string]bool{"1": true, "2": true, "footer_text1": true, "footer_text2": true}
)

// classifyType determines the shape type from structural markers only:
// the vertex flag and the style name.
func classifyType(cell *node, style string) ShapeType {
	if v, _ := cell.attr("vertex"); v != "1" {
		return ShapeUnknown
	}
	switch {
	case strings.HasPrefix(style, imageStylePrefix) || style == "image" || strings.HasPrefix(style, "image;"):
		return ShapeImage
	case strings.HasPrefix(style, textStylePrefix) || style == "text":
		return ShapeText
	default:
		return ShapeCapture
	}
}

// classify converts a <mxCell> into a Shape. parent is the wrapping element
// when the cell carries custom properties (<object> or <UserObject>).
func classify(cell, parent *node, dpi int) (Shape, error) {
	rawStyle, _ := cell.attr("style")
	style := ParseStyle(rawStyle)

	s := Shape{
		Type:        classifyType(cell, rawStyle),
		Label:       cellLabel(cell, parent),
		Style:       style,
		Rotation:    style.Rotation(),
		SourceIndex: -1,
	}

	var err error
	if s.Geometry, err = cellGeometry(cell, dpi); err != nil {
		return s, err
	}

	if s.Type == ShapeImage {
		data, err := decodeDataURI(style.Get("image"))
		if err != nil {
			Logger().Warn("template image shape has no usable payload", "label", s.Label, "error", err)
		}
		s.ImageData = data
	}
	return s, nil
}

// cellLabel returns the text label of a cell. The value may itself be an
// inline XML fragment carrying the text run.
func cellLabel(cell, parent *node) string {
	value, ok := cell.attr("value")
	if !ok && parent != nil && isObjectWrapper(parent) {
		value, ok = parent.attr("label")
	}
	if !ok {
		return ""
	}
	if text, ok := inlineText(value); ok {
		return text
	}
	return value
}

func isObjectWrapper(n *node) bool {
	return n.name() == "object" || n.name() == "UserObject"
}

func cellGeometry(cell *node, dpi int) (Geometry, error) {
	var g Geometry
	geo := cell.child("mxGeometry")
	if geo == nil {
		return g, nil
	}
	fields := []struct {
		attr string
		dst  *int
	}{
		{"x", &g.X},
		{"y", &g.Y},
		{"width", &g.Width},
		{"height", &g.Height},
	}
	for _, f := range fields {
		v, _ := geo.attr(f.attr)
		px, err := parseCentiInch(v, dpi)
		if err != nil {
			return g, fmt.Errorf("geometry %s: %w", f.attr, err)
		}
		*f.dst = px
	}
	return g, nil
}

// decodeDataURI decodes a "data:<mime>,<base64>" image reference. The
// ";base64" marker is not required: the editor strips it because ';'
// separates style tokens.
func decodeDataURI(uri string) ([]byte, error) {
	if uri == "" {
		return nil, fmt.Errorf("missing image reference")
	}
	if !strings.HasPrefix(uri, "data:") {
		return nil, fmt.Errorf("image %q is not embedded", truncate(uri, 40))
	}
	_, payload, ok := strings.Cut(uri, ",")
	if !ok {
		return nil, fmt.Errorf("malformed data URI")
	}
	payload = strings.Join(strings.Fields(payload), "")
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		// Some exports drop the padding.
		if data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "=")); err != nil {
			return nil, fmt.Errorf("decode image payload: %w", err)
		}
	}
	return data, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// pageShapes classifies the cells of a page in document order, filters the
// capture and text labels and applies the out-of-bounds correction.
// It returns the kept shapes and the number of distinct capture labels.
func pageShapes(p *page) ([]Shape, int, error) {
	var (
		shapes   []Shape
		captures = make(map[string]bool)
		walkErr  error
	)
	p.model.walk(nil, func(n, parent *node) {
		if walkErr != nil || n.name() != "mxCell" {
			return
		}
		s, err := classify(n, parent, p.dpi)
		if err != nil {
			id, _ := n.attr("id")
			walkErr = fmt.Errorf("%w: page %q: cell %q: %w", ErrDecode, p.name, id, err)
			return
		}

		switch s.Type {
		case ShapeUnknown:
			return
		case ShapeCapture:
			if !captureLabels[s.Label] {
				Logger().Warn("template capture holder ignored", "page", p.name, "text", s.Label)
				return
			}
			captures[s.Label] = true
		case ShapeText:
			if !textLabels[s.Label] {
				Logger().Warn("template text holder ignored", "page", p.name, "text", s.Label)
				return
			}
			s.Label = s.Label[len(s.Label)-1:]
		}
		if s.Type == ShapeCapture || s.Type == ShapeText {
			idx, _ := strconv.Atoi(s.Label)
			s.SourceIndex = idx - 1
		}

		adjustBounds(&s, p)
		shapes = append(shapes, s)
	})
	if walkErr != nil {
		return nil, 0, walkErr
	}
	return shapes, len(captures), nil
}

// adjustBounds moves a shape lying entirely outside the canvas back using
// a modulo of the canvas size. The result may still overlap the edges.
func adjustBounds(s *Shape, p *page) {
	if s.X+s.Width <= 0 || s.X >= p.width {
		Logger().Warn("template shape X-position out of bounds, try to auto-adjust", "page", p.name, "text", s.Label)
		s.X = mod(s.X, p.width)
	}
	if s.Y+s.Height <= 0 || s.Y >= p.height {
		Logger().Warn("template shape Y-position out of bounds, try to auto-adjust", "page", p.name, "text", s.Label)
		s.Y = mod(s.Y, p.height)
	}
}

// mod returns the non-negative remainder of a divided by b (b > 0).
func mod(a, b int) int {
	r := a % b
	if r < 0 {
		r += b
	}
	return r
}
