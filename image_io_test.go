package pictemplate

import (
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"testing"
)

func TestSaveAndLoadImage(t *testing.T) {
	dir := t.TempDir()
	src := filled(8, 6, color.RGBA{R: 255, A: 255})

	for _, name := range []string{"out/picture.png", "out/picture.jpg"} {
		path := filepath.Join(dir, name)
		if err := SaveImage(src, path, FormatFromPath(path), 0); err != nil {
			t.Fatalf("SaveImage %s: %v", name, err)
		}
		img, err := LoadImage(path)
		if err != nil {
			t.Fatalf("LoadImage %s: %v", name, err)
		}
		if img.Bounds().Dx() != 8 || img.Bounds().Dy() != 6 {
			t.Errorf("%s: unexpected bounds %v", name, img.Bounds())
		}
	}

	bad := filepath.Join(dir, "bad.png")
	if err := os.WriteFile(bad, []byte("not an image"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadImage(bad); err == nil {
		t.Error("expected a decode error")
	}
}

func TestImageFormat(t *testing.T) {
	if FormatFromPath("a/B.JPEG") != ImageFormatJPEG || FormatFromPath("a.png") != ImageFormatPNG || FormatFromPath("a") != ImageFormatPNG {
		t.Error("unexpected format from path")
	}
	if f, err := ParseImageFormat("JPG"); err != nil || f != ImageFormatJPEG {
		t.Errorf("got %s, %v", f, err)
	}
	if _, err := ParseImageFormat("gif"); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}
