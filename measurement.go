package pictemplate

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Diagram lengths are expressed in hundredths of an inch (centiinches).
// 1 inch = 100 centiinches.

const (
	centiInchPerInch = 100
	// DefaultDPI is the resolution used when a page does not declare one.
	DefaultDPI = 600
	// maxPixels bounds converted lengths to keep canvas allocations sane.
	maxPixels = 1 << 16
	// pixelEpsilon absorbs the rounding error of a pixel value converted to
	// centiinches and back.
	pixelEpsilon = 1e-9
)

// ToPixels converts a length in centiinches into pixels at the given dpi.
func ToPixels(cin float64, dpi int) int {
	return clampPixels(math.Floor(cin*float64(dpi)/centiInchPerInch + pixelEpsilon))
}

// PixelsToCentiInch converts pixels back to centiinches.
func PixelsToCentiInch(px int, dpi int) float64 {
	if dpi <= 0 {
		return 0
	}
	return float64(px) * centiInchPerInch / float64(dpi)
}

// parseCentiInch converts an attribute value to pixels. An empty value is 0.
func parseCentiInch(s string, dpi int) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid length %q: %w", s, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("invalid length %q", s)
	}
	return ToPixels(v, dpi), nil
}

// clampPixels converts a float64 to int, clamping to ±maxPixels.
func clampPixels(v float64) int {
	switch {
	case v > maxPixels:
		Logger().Warn("length out of range, clamped", "pixels", v, "limit", maxPixels)
		return maxPixels
	case v < -maxPixels:
		Logger().Warn("length out of range, clamped", "pixels", v, "limit", -maxPixels)
		return -maxPixels
	}
	return int(v)
}
