package pictemplate

import (
	"bytes"
	"encoding/base64"
	"encoding/xml"
	"image"
	"image/png"
	"log/slog"
	"strings"
	"testing"
)

func pngDataURI(t *testing.T, w, h int) string {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatal(err)
	}
	// The editor drops ";base64" because ';' separates style tokens.
	return "data:image/png," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestShapeClassification(t *testing.T) {
	tests := []struct {
		style string
		want  ShapeType
	}{
		{"rounded=0;whiteSpace=wrap;html=1;", ShapeCapture},
		{"", ShapeCapture},
		{"ellipse;whiteSpace=wrap;", ShapeCapture},
		{"text;html=1;", ShapeText},
		{"text", ShapeText},
		{"textbox;html=1;", ShapeCapture},
		{"shape=image;image=data:image/png,AAAA;", ShapeImage},
		{"image;image=data:image/png,AAAA;", ShapeImage},
	}
	vertex := testNode("mxCell", "vertex", "1")
	for _, tt := range tests {
		if got := classifyType(vertex, tt.style); got != tt.want {
			t.Errorf("classifyType(%q) = %s, want %s", tt.style, got, tt.want)
		}
	}

	edge := testNode("mxCell", "edge", "1")
	if got := classifyType(edge, "text;"); got != ShapeUnknown {
		t.Errorf("expected edges to be unknown, got %s", got)
	}
}

func testNode(name string, attrs ...string) *node {
	n := &node{XMLName: xml.Name{Local: name}}
	for i := 0; i+1 < len(attrs); i += 2 {
		n.Attrs = append(n.Attrs, xml.Attr{Name: xml.Name{Local: attrs[i]}, Value: attrs[i+1]})
	}
	return n
}

func TestPageShapesFiltering(t *testing.T) {
	model := testModel(400, 600,
		captureCell("c1", "1", 0, 0, 100, 100),
		captureCell("c5", "5", 0, 0, 100, 100),
		captureCell("cx", "", 0, 0, 100, 100),
		textCell("t1", "footer_text2", 0, 0, 100, 20),
		textCell("t2", "2", 0, 0, 100, 20),
		textCell("t3", "header", 0, 0, 100, 20),
		captureCell("c1b", "1", 200, 0, 100, 100),
		`<mxCell id="e1" value="1" edge="1" parent="1"><mxGeometry as="geometry"/></mxCell>`,
	)
	var logs bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&logs, nil)))
	defer SetLogger(nil)

	_, pages, err := readDocument(testDocument(model))
	if err != nil {
		t.Fatal(err)
	}
	shapes, count, err := pageShapes(pages[0])
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("expected 1 distinct capture label, got %d", count)
	}
	var got []string
	for _, s := range shapes {
		got = append(got, s.Type.String()+":"+s.Label)
	}
	want := "capture:1 text:2 text:2 capture:1"
	if strings.Join(got, " ") != want {
		t.Errorf("expected %q, got %q", want, strings.Join(got, " "))
	}
	if shapes[1].SourceIndex != 1 || shapes[0].SourceIndex != 0 {
		t.Errorf("unexpected source indexes %d, %d", shapes[0].SourceIndex, shapes[1].SourceIndex)
	}
	for _, dropped := range []string{`text=5`, `text=header`} {
		if !strings.Contains(logs.String(), dropped) {
			t.Errorf("expected a warning for %s, logs:\n%s", dropped, logs.String())
		}
	}
}

func TestPageShapesRichLabel(t *testing.T) {
	model := testModel(400, 600,
		captureCell("c1", `<font style="font-size: 40px">2</font>`, 0, 0, 100, 100),
		`<object label="1" id="o1"><mxCell style="rounded=0;" vertex="1" parent="1">`+
			`<mxGeometry x="10" y="10" width="50" height="50" as="geometry"/></mxCell></object>`,
	)
	idx := mustParse(t, testDocument(model))
	captures, err := idx.CaptureShapes(2, Portrait)
	if err != nil {
		t.Fatal(err)
	}
	if captures[0].Label != "2" || captures[1].Label != "1" {
		t.Errorf("unexpected labels %q, %q", captures[0].Label, captures[1].Label)
	}
}

func TestPageShapesOutOfBounds(t *testing.T) {
	model := testModel(400, 600,
		captureCell("c1", "1", 450, 10, 100, 100),
		captureCell("c2", "2", -150, -700, 100, 100),
		captureCell("c3", "3", -50, 10, 100, 100),
	)
	idx := mustParse(t, testDocument(model))
	captures, err := idx.CaptureShapes(3, Portrait)
	if err != nil {
		t.Fatal(err)
	}
	want := []Geometry{
		{X: 50, Y: 10, Width: 100, Height: 100},
		{X: 250, Y: 500, Width: 100, Height: 100},
		// Partially visible shapes are kept as is.
		{X: -50, Y: 10, Width: 100, Height: 100},
	}
	for i, s := range captures {
		if s.Geometry != want[i] {
			t.Errorf("capture %d: expected %+v, got %+v", i+1, want[i], s.Geometry)
		}
	}
}

func TestPageShapesEmbeddedImage(t *testing.T) {
	model := testModel(400, 600,
		captureCell("c1", "1", 0, 0, 100, 100),
		testCell("i1", "shape=image;verticalLabelPosition=bottom;image="+pngDataURI(t, 4, 2)+";", "", 10, 10, 40, 20),
		testCell("i2", "shape=image;image=https://example.com/logo.png;", "", 10, 10, 40, 20),
	)
	idx := mustParse(t, testDocument(model))
	tpl, err := idx.Template(1, Portrait)
	if err != nil {
		t.Fatal(err)
	}
	images := tpl.Images()
	if len(images) != 2 {
		t.Fatalf("expected 2 image shapes, got %d", len(images))
	}
	if len(images[0].ImageData) == 0 || images[0].SourceIndex != -1 {
		t.Errorf("expected a decoded payload, got %d bytes", len(images[0].ImageData))
	}
	if images[1].ImageData != nil {
		t.Error("expected no payload for a linked image")
	}
	if err := idx.Validate(); err == nil || !strings.Contains(err.Error(), "no embedded data") {
		t.Errorf("expected a validation issue for the linked image, got %v", err)
	}
}

func TestDecodeDataURI(t *testing.T) {
	if _, err := decodeDataURI(""); err == nil {
		t.Error("expected error for empty reference")
	}
	if _, err := decodeDataURI("data:image/png"); err == nil {
		t.Error("expected error for missing payload separator")
	}
	data, err := decodeDataURI("data:image/png;base64,aGVsbG8")
	if err != nil || string(data) != "hello" {
		t.Errorf("unpadded payload: got %q, %v", data, err)
	}
}

func TestMod(t *testing.T) {
	tests := []struct{ a, b, want int }{
		{450, 400, 50},
		{-150, 400, 250},
		{-700, 600, 500},
		{0, 10, 0},
		{-10, 10, 0},
	}
	for _, tt := range tests {
		if got := mod(tt.a, tt.b); got != tt.want {
			t.Errorf("mod(%d, %d) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}
