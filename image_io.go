package pictemplate

import (
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ImageFormat represents the output image format.
type ImageFormat int

const (
	ImageFormatPNG ImageFormat = iota
	ImageFormatJPEG
)

func (f ImageFormat) String() string {
	if f == ImageFormatJPEG {
		return "jpeg"
	}
	return "png"
}

// ParseImageFormat parses "png", "jpeg" or "jpg".
func ParseImageFormat(s string) (ImageFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "png":
		return ImageFormatPNG, nil
	case "jpeg", "jpg":
		return ImageFormatJPEG, nil
	}
	return ImageFormatPNG, fmt.Errorf("%w: unknown image format %q", ErrInvalidConfig, s)
}

// FormatFromPath guesses the output format from a file extension.
func FormatFromPath(path string) ImageFormat {
	f, _ := formatFromExt(path)
	return f
}

// formatFromExt reports whether path has an extension naming an output
// format. It returns PNG when it does not.
func formatFromExt(path string) (ImageFormat, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return ImageFormatJPEG, true
	case ".png":
		return ImageFormatPNG, true
	}
	return ImageFormatPNG, false
}

// LoadImage decodes an image file (PNG, JPEG, GIF, BMP, TIFF or WebP).
func LoadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode image %s: %w", path, err)
	}
	return img, nil
}

// SaveImage encodes img to path. quality applies to JPEG only (1-100,
// default 90).
func SaveImage(img image.Image, path string, format ImageFormat, quality int) error {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}

	var encErr error
	switch format {
	case ImageFormatJPEG:
		if quality <= 0 || quality > 100 {
			quality = 90
		}
		encErr = jpeg.Encode(f, img, &jpeg.Options{Quality: quality})
	default:
		encErr = png.Encode(f, img)
	}
	closeErr := f.Close()
	if encErr != nil {
		os.Remove(path)
		return fmt.Errorf("encode %s: %w", format, encErr)
	}
	return closeErr
}
