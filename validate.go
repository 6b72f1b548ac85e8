package pictemplate

import (
	"fmt"
	"strings"
)

// Validate checks the templates for layout issues and returns an error
// describing all problems found, or nil if every template is usable.
// Decoding already rejects broken documents; Validate reports the softer
// problems a template author should fix.
func (idx *Index) Validate() error {
	var errs []string

	for _, t := range idx.Templates() {
		prefix := fmt.Sprintf("%s template with %d captures (page %q)", t.Orientation, t.CaptureCount, t.Name)
		for _, e := range validateTemplate(t) {
			errs = append(errs, prefix+": "+e)
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("validation failed:\n  %s", strings.Join(errs, "\n  "))
}

func validateTemplate(t *Template) []string {
	var errs []string
	if t.Width <= 0 || t.Height <= 0 {
		errs = append(errs, fmt.Sprintf("canvas size %dx%d must be positive", t.Width, t.Height))
	}
	if t.CaptureCount < 1 || t.CaptureCount > len(captureLabels) {
		errs = append(errs, fmt.Sprintf("capture count %d outside 1..%d", t.CaptureCount, len(captureLabels)))
	}

	canvas := t.Bounds()
	for j, s := range t.shapes {
		prefix := fmt.Sprintf("shape %d (%s %q)", j+1, s.Type, s.Label)
		if s.Width <= 0 || s.Height <= 0 {
			errs = append(errs, fmt.Sprintf("%s: size %dx%d must be positive", prefix, s.Width, s.Height))
			continue
		}
		if !s.Rect().Overlaps(canvas) {
			errs = append(errs, prefix+": lies outside the canvas")
		}
		if s.Type == ShapeImage && len(s.ImageData) == 0 {
			errs = append(errs, prefix+": image shape has no embedded data")
		}
	}

	// Every capture label from 1 up to the capture count must be present.
	seen := make(map[int]bool)
	for _, s := range t.Captures() {
		seen[s.SourceIndex+1] = true
	}
	for n := 1; n <= t.CaptureCount; n++ {
		if !seen[n] {
			errs = append(errs, fmt.Sprintf("capture %d has no slot", n))
		}
	}
	return errs
}
