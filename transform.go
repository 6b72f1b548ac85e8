package pictemplate

import (
	"image"
	"image/draw"
	"math"

	"github.com/disintegration/imaging"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

// ResizePolicy selects how a capture is fitted into its slot.
type ResizePolicy int

const (
	// ResizeFit scales the capture to fit inside the slot, keeping its
	// aspect ratio. Uncovered slot areas stay transparent.
	ResizeFit ResizePolicy = iota
	// ResizeCrop scales the capture to cover the whole slot, keeping its
	// aspect ratio, and crops the overflow evenly on both sides.
	ResizeCrop
)

func (p ResizePolicy) String() string {
	if p == ResizeCrop {
		return "crop"
	}
	return "fit"
}

// resizeKeepRatio scales src into a w×h box according to policy. With
// ResizeFit the result may be smaller than the box on one axis. Captures
// smaller than the slot are scaled up.
func resizeKeepRatio(src image.Image, w, h int, policy ResizePolicy) *image.NRGBA {
	sb := src.Bounds()
	sw, sh := sb.Dx(), sb.Dy()
	if sw <= 0 || sh <= 0 || w <= 0 || h <= 0 {
		return &image.NRGBA{}
	}

	if policy == ResizeCrop {
		return imaging.Fill(src, w, h, imaging.Center, imaging.CatmullRom)
	}

	ratio := math.Min(float64(w)/float64(sw), float64(h)/float64(sh))
	dw := min(w, max(1, int(float64(sw)*ratio)))
	dh := min(h, max(1, int(float64(sh)*ratio)))
	return imaging.Resize(src, dw, dh, imaging.CatmullRom)
}

// resizeExact scales src to exactly w×h, ignoring its aspect ratio.
func resizeExact(src image.Image, w, h int) *image.NRGBA {
	if w <= 0 || h <= 0 || src.Bounds().Empty() {
		return image.NewNRGBA(image.Rect(0, 0, max(w, 0), max(h, 0)))
	}
	return imaging.Resize(src, w, h, imaging.CatmullRom)
}

// rotate returns img rotated counter-clockwise (on screen) by deg degrees.
// The bounds grow so that no content is clipped; uncovered corners are
// transparent. Right angles are rotated pixel-exact.
func rotate(img image.Image, deg int) image.Image {
	switch mod(deg, 360) {
	case 0:
		return img
	case 90:
		return imaging.Rotate90(img)
	case 180:
		return imaging.Rotate180(img)
	case 270:
		return imaging.Rotate270(img)
	}
	return rotateAffine(img, float64(mod(deg, 360)))
}

// rotateAffine rotates by an arbitrary angle with bilinear sampling. The
// destination is sized to the ceiling of the rotated extent.
func rotateAffine(img image.Image, deg float64) *image.RGBA {
	b := img.Bounds()
	w, h := float64(b.Dx()), float64(b.Dy())
	sin, cos := math.Sincos(deg * math.Pi / 180)
	nw := int(math.Ceil(math.Abs(w*cos) + math.Abs(h*sin) - 1e-9))
	nh := int(math.Ceil(math.Abs(w*sin) + math.Abs(h*cos) - 1e-9))
	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))

	// Source to destination: rotate about the source center and move it to
	// the destination center. The y axis points down.
	cx, cy := float64(b.Min.X)+w/2, float64(b.Min.Y)+h/2
	ncx, ncy := float64(nw)/2, float64(nh)/2
	m := f64.Aff3{
		cos, sin, ncx - cos*cx - sin*cy,
		-sin, cos, ncy + sin*cx - cos*cy,
	}
	xdraw.BiLinear.Transform(dst, m, img, b, xdraw.Over, nil)
	return dst
}

// paste draws slot over dst over dst so that its center matches the center of the
// w×h box anchored at (x, y). A slot grown by rotation is re-centered on
// the box rather than moved.
func paste(dst draw.Image, slot image.Image, x, y, w, h int) {
	b := slot.Bounds()
	px := x + floorDiv(w-b.Dx(), 2)
	py := y + floorDiv(h-b.Dy(), 2)
	r := image.Rect(px, py, px+b.Dx(), py+b.Dy())
	draw.Draw(dst, r, slot, b.Min, draw.Over)
}

// floorDiv divides rounding toward negative infinity.
func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
