package pictemplate

import (
	"encoding/xml"
	"fmt"
	"strings"
	"testing"
)

// Fixtures use 100 dpi so that one centiinch is one pixel.
const testDPI = 100

func xmlEscape(s string) string {
	var b strings.Builder
	xml.EscapeText(&b, []byte(s))
	return b.String()
}

func testCell(id, style, label string, x, y, w, h float64) string {
	return fmt.Sprintf(`<mxCell id="%s" value="%s" style="%s" vertex="1" parent="1">`+
		`<mxGeometry x="%g" y="%g" width="%g" height="%g" as="geometry"/></mxCell>`,
		id, xmlEscape(label), xmlEscape(style), x, y, w, h)
}

func captureCell(id, label string, x, y, w, h float64) string {
	return testCell(id, "rounded=0;whiteSpace=wrap;html=1;", label, x, y, w, h)
}

func textCell(id, label string, x, y, w, h float64) string {
	return testCell(id, "text;html=1;align=center;verticalAlign=middle;", label, x, y, w, h)
}

func testModel(w, h float64, cells ...string) string {
	return fmt.Sprintf(`<mxGraphModel dx="1000" dy="1000" grid="1" pageWidth="%g" pageHeight="%g">`+
		`<root><object dpi="%d" id="0"><mxCell/></object><mxCell id="1" parent="0"/>%s</root></mxGraphModel>`,
		w, h, testDPI, strings.Join(cells, ""))
}

// testDocument wraps uncompressed page models into an mxfile container.
func testDocument(models ...string) []byte {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	b.WriteString(`<mxfile host="app.diagrams.net" version="13.1.14" type="device">`)
	for i, m := range models {
		fmt.Fprintf(&b, `<diagram id="d%d" name="Page-%d">%s</diagram>`, i+1, i+1, m)
	}
	b.WriteString(`</mxfile>`)
	return []byte(b.String())
}

// compressedDocument is like testDocument but stores pages compressed.
func compressedDocument(t *testing.T, models ...string) []byte {
	t.Helper()
	var b strings.Builder
	b.WriteString(`<mxfile host="app.diagrams.net">`)
	for i, m := range models {
		text, err := deflate(m)
		if err != nil {
			t.Fatalf("deflate: %v", err)
		}
		fmt.Fprintf(&b, `<diagram id="d%d" name="Page-%d">%s</diagram>`, i+1, i+1, text)
	}
	b.WriteString(`</mxfile>`)
	return []byte(b.String())
}

// portraitModel is a 400x600 page with n side by side capture slots and
// two footer texts.
func portraitModel(n int) string {
	cells := make([]string, 0, n+2)
	for i := 1; i <= n; i++ {
		cells = append(cells, captureCell(fmt.Sprintf("c%d", i), fmt.Sprint(i), float64(10+(i-1)*90), 10, 80, 120))
	}
	cells = append(cells,
		textCell("t1", "footer_text1", 10, 500, 380, 40),
		textCell("t2", "footer_text2", 10, 550, 380, 40))
	return testModel(400, 600, cells...)
}

func mustParse(t *testing.T, data []byte) *Index {
	t.Helper()
	idx, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return idx
}
