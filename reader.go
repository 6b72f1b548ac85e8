package pictemplate

import (
	"bytes"
	"compress/flate"
	"encoding/base64"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/ianaindex"
)

// maxDocumentSize is the maximum accepted size of a template document.
const maxDocumentSize = 50 << 20 // 50 MB

// maxInflatedSize limits the decompressed size of a single page.
// This prevents deflate bombs hidden in a small document.
const maxInflatedSize = 50 << 20 // 50 MB

// node is a generic XML element, enough to walk a diagram document the way
// an element tree would.
type node struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	Children []*node    `xml:",any"`
	Text     string     `xml:",chardata"`
}

func (n *node) name() string { return n.XMLName.Local }

func (n *node) attr(name string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

// child returns the first direct child with the given name.
func (n *node) child(name string) *node {
	for _, c := range n.Children {
		if c.name() == name {
			return c
		}
	}
	return nil
}

func (n *node) firstChild() *node {
	if len(n.Children) == 0 {
		return nil
	}
	return n.Children[0]
}

// walk visits n and its descendants in document order.
func (n *node) walk(parent *node, fn func(n, parent *node)) {
	fn(n, parent)
	for _, c := range n.Children {
		c.walk(n, fn)
	}
}

// findAll returns all descendants (n included) with the given name in
// document order.
func (n *node) findAll(name string) []*node {
	var out []*node
	n.walk(nil, func(c, _ *node) {
		if c.name() == name {
			out = append(out, c)
		}
	})
	return out
}

// unmarshalNode parses data into a node tree. Non UTF-8 documents are
// transcoded using the charset declared in the XML header.
func unmarshalNode(data []byte) (*node, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.CharsetReader = charsetReader
	root := &node{}
	if err := dec.Decode(root); err != nil {
		return nil, err
	}
	return root, nil
}

func charsetReader(label string, input io.Reader) (io.Reader, error) {
	enc, err := ianaindex.IANA.Encoding(label)
	if err != nil {
		return nil, err
	}
	if enc == nil {
		return nil, fmt.Errorf("unsupported charset %q", label)
	}
	return enc.NewDecoder().Reader(input), nil
}

// page is one decoded diagram page: its graph model plus the values the
// template builder needs from it.
type page struct {
	name   string
	model  *node
	dpi    int
	width  int // pixels
	height int // pixels
}

func (p *page) orientation() Orientation {
	if p.width < p.height {
		return Portrait
	}
	return Landscape
}

// readDocument decodes a template document into its pages.
func readDocument(data []byte) (DocumentInfo, []*page, error) {
	var info DocumentInfo
	if len(data) == 0 {
		return info, nil, fmt.Errorf("%w: empty document", ErrDecode)
	}
	if len(data) > maxDocumentSize {
		return info, nil, fmt.Errorf("%w: document size %d exceeds maximum allowed (%d bytes)", ErrDecode, len(data), maxDocumentSize)
	}

	root, err := unmarshalNode(data)
	if err != nil {
		return info, nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	var pages []*page
	switch root.name() {
	case "mxfile":
		info = readDocumentInfo(root)
		for _, d := range root.findAll("diagram") {
			p, err := readPage(d)
			if err != nil {
				return info, nil, err
			}
			pages = append(pages, p)
		}
	case "mxGraphModel":
		// A single page saved without the mxfile container.
		p, err := newPage("", root)
		if err != nil {
			return info, nil, err
		}
		pages = append(pages, p)
	default:
		return info, nil, fmt.Errorf("%w: unexpected root element <%s>", ErrDecode, root.name())
	}
	info.Pages = len(pages)
	return info, pages, nil
}

// readPage decodes one <diagram> element. The page content is either an
// embedded <mxGraphModel> or a compressed text blob.
func readPage(d *node) (*page, error) {
	name, _ := d.attr("name")

	var model *node
	if len(d.Children) == 0 && strings.TrimSpace(d.Text) != "" {
		raw, err := inflate(d.Text)
		if err != nil {
			return nil, fmt.Errorf("%w: page %q: %w", ErrDecode, name, err)
		}
		model, err = unmarshalNode(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: page %q: %w", ErrDecode, name, err)
		}
	} else {
		model = d.child("mxGraphModel")
	}
	if model == nil || model.name() != "mxGraphModel" {
		return nil, fmt.Errorf("%w: page %q has no graph model", ErrDecode, name)
	}
	return newPage(name, model)
}

func newPage(name string, model *node) (*page, error) {
	p := &page{name: name, model: model, dpi: DefaultDPI}

	// The resolution is stored on the first cell of the root element.
	if r := model.firstChild(); r != nil {
		if c := r.firstChild(); c != nil {
			if v, ok := c.attr("dpi"); ok {
				dpi, err := strconv.Atoi(strings.TrimSpace(v))
				if err != nil || dpi <= 0 {
					return nil, fmt.Errorf("%w: page %q: invalid dpi %q", ErrDecode, name, v)
				}
				p.dpi = dpi
			}
		}
	}

	w, ok := model.attr("pageWidth")
	if !ok {
		return nil, fmt.Errorf("%w: page %q: missing pageWidth", ErrDecode, name)
	}
	h, ok := model.attr("pageHeight")
	if !ok {
		return nil, fmt.Errorf("%w: page %q: missing pageHeight", ErrDecode, name)
	}
	var err error
	if p.width, err = parseCentiInch(w, p.dpi); err != nil {
		return nil, fmt.Errorf("%w: page %q: %w", ErrDecode, name, err)
	}
	if p.height, err = parseCentiInch(h, p.dpi); err != nil {
		return nil, fmt.Errorf("%w: page %q: %w", ErrDecode, name, err)
	}
	if p.width <= 0 || p.height <= 0 {
		return nil, fmt.Errorf("%w: page %q: canvas size %dx%d must be positive", ErrDecode, name, p.width, p.height)
	}
	return p, nil
}

// inflate reverses the diagram compression: optional base64, raw deflate
// (no zlib header), then URL-unescaping of the UTF-8 text.
func inflate(text string) ([]byte, error) {
	compact := strings.Join(strings.Fields(text), "")
	data, err := base64.StdEncoding.DecodeString(compact)
	if err != nil {
		data = []byte(text)
	}

	fr := flate.NewReader(bytes.NewReader(data))
	defer fr.Close()
	out, err := io.ReadAll(io.LimitReader(fr, maxInflatedSize+1))
	if err != nil {
		return nil, fmt.Errorf("inflate: %w", err)
	}
	if len(out) > maxInflatedSize {
		return nil, fmt.Errorf("inflated page exceeds maximum allowed size (%d bytes)", maxInflatedSize)
	}
	if !utf8.Valid(out) {
		return nil, errors.New("inflated page is not valid UTF-8")
	}
	return []byte(unescape(string(out))), nil
}

// unescape decodes %XX sequences. Sequences that are not valid escapes are
// kept literally, and invalid UTF-8 in the result is replaced with U+FFFD.
func unescape(s string) string {
	if u, err := url.PathUnescape(s); err == nil {
		return u
	}
	Logger().Warn("page text has malformed percent escapes, keeping them literally")
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '%' && i+2 < len(s) {
			if v, err := strconv.ParseUint(s[i+1:i+3], 16, 8); err == nil {
				b.WriteByte(byte(v))
				i += 2
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return strings.ToValidUTF8(b.String(), "\uFFFD")
}

// deflate is the inverse of inflate: URL-escape, raw deflate, base64.
func deflate(xmlText string) (string, error) {
	var buf bytes.Buffer
	fw, err := flate.NewWriter(&buf, flate.BestCompression)
	if err != nil {
		return "", err
	}
	if _, err := io.WriteString(fw, url.PathEscape(xmlText)); err != nil {
		return "", err
	}
	if err := fw.Close(); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// inlineText extracts the label carried by a rich-text cell value such as
// `<font color="red">1</font>`: the text directly following the root start
// tag. ok is false when value is not a well-formed XML fragment.
func inlineText(value string) (text string, ok bool) {
	dec := xml.NewDecoder(strings.NewReader(value))
	depth := 0
	seenRoot := false
	inLead := false
	var lead strings.Builder
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", false
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if depth == 0 {
				if seenRoot {
					return "", false // junk after document element
				}
				seenRoot = true
				inLead = true
			} else {
				inLead = false
			}
			depth++
		case xml.EndElement:
			depth--
			inLead = false
		case xml.CharData:
			if depth == 0 {
				if strings.TrimSpace(string(t)) != "" {
					return "", false
				}
				continue
			}
			if inLead {
				lead.Write(t)
			}
		}
	}
	if !seenRoot || depth != 0 {
		return "", false
	}
	return lead.String(), true
}
