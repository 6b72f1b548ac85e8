package pictemplate

import (
	"bytes"
	"compress/flate"
	"encoding/base64"
	"errors"
	"strings"
	"testing"
)

func TestInflateDeflate(t *testing.T) {
	src := `<mxGraphModel pageWidth="400" pageHeight="600"><root><mxCell id="0" value="café 50%"/></root></mxGraphModel>`
	packed, err := deflate(src)
	if err != nil {
		t.Fatalf("deflate: %v", err)
	}
	out, err := inflate(packed)
	if err != nil {
		t.Fatalf("inflate: %v", err)
	}
	if string(out) != src {
		t.Errorf("round trip mismatch:\n got %s\nwant %s", out, src)
	}

	// Line breaks inside the base64 text are ignored.
	wrapped := packed[:10] + "\n  " + packed[10:]
	if out, err := inflate(wrapped); err != nil || string(out) != src {
		t.Errorf("wrapped text: %v", err)
	}
}

func TestInflateInvalid(t *testing.T) {
	if _, err := inflate("!!not compressed!!"); err == nil {
		t.Error("expected an error for garbage input")
	}
}

func TestInflateStrayPercent(t *testing.T) {
	src := `<mxCell value="100%" style="a=%2"/><mxCell value="%41%zz"/>`
	var buf bytes.Buffer
	fw, err := flate.NewWriter(&buf, flate.BestCompression)
	if err != nil {
		t.Fatal(err)
	}
	fw.Write([]byte(src))
	fw.Close()

	out, err := inflate(base64.StdEncoding.EncodeToString(buf.Bytes()))
	if err != nil {
		t.Fatalf("inflate: %v", err)
	}
	want := `<mxCell value="100%" style="a=%2"/><mxCell value="A%zz"/>`
	if string(out) != want {
		t.Errorf("got %s, want %s", out, want)
	}
}

func TestUnescape(t *testing.T) {
	tests := []struct{ in, want string }{
		{"caf%C3%A9", "café"},
		{"50%", "50%"},
		{"%4", "%4"},
		{"%g0%41", "%g0A"},
		{"%FF%", "\uFFFD%"},
	}
	for _, tt := range tests {
		if got := unescape(tt.in); got != tt.want {
			t.Errorf("unescape(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestReadDocumentInfo(t *testing.T) {
	info, pages, err := readDocument(testDocument(portraitModel(1), portraitModel(2)))
	if err != nil {
		t.Fatalf("readDocument: %v", err)
	}
	if info.Host != "app.diagrams.net" || info.Version != "13.1.14" || info.Type != "device" {
		t.Errorf("unexpected info %+v", info)
	}
	if info.Pages != 2 || len(pages) != 2 {
		t.Errorf("expected 2 pages, got %d (%d)", info.Pages, len(pages))
	}
	if pages[1].name != "Page-2" || pages[1].dpi != testDPI {
		t.Errorf("unexpected page %q at %d dpi", pages[1].name, pages[1].dpi)
	}
	if pages[0].width != 400 || pages[0].height != 600 || pages[0].orientation() != Portrait {
		t.Errorf("unexpected page size %dx%d", pages[0].width, pages[0].height)
	}
}

func TestReadBareGraphModel(t *testing.T) {
	idx := mustParse(t, []byte(portraitModel(2)))
	if got := idx.CaptureCounts(Portrait); len(got) != 1 || got[0] != 2 {
		t.Errorf("expected one template with 2 captures, got %v", got)
	}
}

func TestReadDefaultDPI(t *testing.T) {
	model := `<mxGraphModel pageWidth="400" pageHeight="600"><root><mxCell id="0"/><mxCell id="1" parent="0"/></root></mxGraphModel>`
	_, pages, err := readDocument(testDocument(model))
	if err != nil {
		t.Fatal(err)
	}
	if pages[0].dpi != DefaultDPI || pages[0].width != 2400 {
		t.Errorf("expected %d dpi and width 2400, got %d dpi, width %d", DefaultDPI, pages[0].dpi, pages[0].width)
	}
}

func TestReadDocumentErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty", ""},
		{"malformed xml", `<mxfile><diagram>`},
		{"unexpected root", `<svg/>`},
		{"bad compression", `<mxfile><diagram name="p">AAAA</diagram></mxfile>`},
		{"missing model", `<mxfile><diagram name="p"><foo/></diagram></mxfile>`},
		{"missing page width", `<mxfile><diagram><mxGraphModel pageHeight="10"><root/></mxGraphModel></diagram></mxfile>`},
		{"invalid page height", `<mxfile><diagram><mxGraphModel pageWidth="10" pageHeight="tall"><root/></mxGraphModel></diagram></mxfile>`},
		{"zero page size", `<mxfile><diagram><mxGraphModel pageWidth="0" pageHeight="10"><root/></mxGraphModel></diagram></mxfile>`},
		{"invalid dpi", `<mxfile><diagram><mxGraphModel pageWidth="10" pageHeight="10"><root><object dpi="high"><mxCell/></object></root></mxGraphModel></diagram></mxfile>`},
		{"invalid geometry", `<mxfile><diagram>` + testModel(400, 600, testCell("c1", "", "1", 0, 0, 10, 10)) + `</diagram></mxfile>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := tt.data
			if tt.name == "invalid geometry" {
				data = strings.Replace(data, `width="10"`, `width="wide"`, 1)
			}
			_, err := Parse([]byte(data))
			if !errors.Is(err, ErrDecode) {
				t.Errorf("expected ErrDecode, got %v", err)
			}
		})
	}
}

func TestReadCharset(t *testing.T) {
	// "é" in ISO-8859-1 is the single byte 0xE9.
	doc := `<?xml version="1.0" encoding="ISO-8859-1"?>` +
		`<mxGraphModel pageWidth="400" pageHeight="600"><root><object dpi="100"><mxCell/></object>` +
		`<mxCell id="x" value="caf` + "\xe9" + `" style="text;" vertex="1"><mxGeometry width="10" height="10"/></mxCell>` +
		`</root></mxGraphModel>`
	_, pages, err := readDocument([]byte(doc))
	if err != nil {
		t.Fatalf("readDocument: %v", err)
	}
	cell := pages[0].model.findAll("mxCell")[1]
	if v, _ := cell.attr("value"); v != "café" {
		t.Errorf("expected café, got %q", v)
	}
}

func TestInlineText(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{`<font color="red">1</font>`, "1", true},
		{`<div>footer_text1<br></br></div>`, "footer_text1", true},
		{`<b></b>`, "", true},
		{`<div><span>2</span></div>`, "", true},
		{`1`, "", false},
		{`<div>1</div>junk`, "", false},
		{`<div>1</div><div>2</div>`, "", false},
		{`<div>1`, "", false},
	}
	for _, tt := range tests {
		got, ok := inlineText(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("inlineText(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestParseReader(t *testing.T) {
	idx, err := ParseReader(strings.NewReader(string(testDocument(portraitModel(3)))))
	if err != nil {
		t.Fatalf("ParseReader: %v", err)
	}
	if _, err := idx.Template(3, Portrait); err != nil {
		t.Error(err)
	}
}
