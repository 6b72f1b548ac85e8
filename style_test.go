package pictemplate

import (
	"errors"
	"image/color"
	"slices"
	"testing"
)

func TestParseStyle(t *testing.T) {
	s := ParseStyle("text;html=1;align=center;;rotation=-90;broken;image=data:image/png,AB==")
	if s.Name != "text" {
		t.Errorf("expected name text, got %q", s.Name)
	}
	if got := s.Get("align"); got != "center" {
		t.Errorf("expected align=center, got %q", got)
	}
	if got := s.Get("image"); got != "data:image/png,AB==" {
		t.Errorf("value split on the first '=' only, got %q", got)
	}
	if _, ok := s.Lookup("broken"); ok {
		t.Error("token without '=' after the name should be ignored")
	}
	if want := []string{"align", "html", "image", "rotation"}; !slices.Equal(s.Keys(), want) {
		t.Errorf("expected keys %v, got %v", want, s.Keys())
	}

	if got := s.String(); got != "text;html=1;align=center;;rotation=-90;broken;image=data:image/png,AB==" {
		t.Errorf("String should return the source style, got %q", got)
	}

	s = ParseStyle("rounded=0;whiteSpace=wrap;")
	if s.Name != "" || s.Get("rounded") != "0" {
		t.Errorf("unexpected style %+v", s)
	}
	if s = ParseStyle(""); s.Name != "" || len(s.Keys()) != 0 {
		t.Errorf("expected an empty style, got %+v", s)
	}
}

func TestStyleRotation(t *testing.T) {
	tests := []struct {
		style string
		want  int
	}{
		{"rounded=0;", 0},
		{"rotation=45;", -45},
		{"rotation=-90;", 90},
		{"rotation=-15.7;", 15},
		{"rotation=abc;", 0},
		{"rotation=NaN;", 0},
	}
	for _, tt := range tests {
		if got := ParseStyle(tt.style).Rotation(); got != tt.want {
			t.Errorf("Rotation(%q) = %d, want %d", tt.style, got, tt.want)
		}
	}
}

func TestParseAlignment(t *testing.T) {
	tests := []struct {
		in   string
		want Alignment
	}{
		{"", AlignCenter},
		{"Left", AlignLeft},
		{"center", AlignCenter},
		{" right ", AlignRight},
	}
	for _, tt := range tests {
		got, err := ParseAlignment(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseAlignment(%q) = %s, %v", tt.in, got, err)
		}
	}
	if _, err := ParseAlignment("justify"); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		in   string
		want color.RGBA
	}{
		{"#FF0000", color.RGBA{R: 255, A: 255}},
		{"00ff80", color.RGBA{G: 255, B: 128, A: 255}},
		{"#80FFFFFF", color.RGBA{R: 128, G: 128, B: 128, A: 128}},
		{"#00123456", color.RGBA{}},
	}
	for _, tt := range tests {
		got, err := ParseHexColor(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseHexColor(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
		}
	}
	for _, bad := range []string{"", "#FFF", "#GG0000", "red"} {
		if _, err := ParseHexColor(bad); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("ParseHexColor(%q): expected ErrInvalidConfig, got %v", bad, err)
		}
	}
}
