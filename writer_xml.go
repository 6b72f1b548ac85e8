package pictemplate

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
)

// --- Document ---

type xmlFile struct {
	XMLName  xml.Name     `xml:"mxfile"`
	Host     string       `xml:"host,attr,omitempty"`
	Modified string       `xml:"modified,attr,omitempty"`
	Agent    string       `xml:"agent,attr,omitempty"`
	Version  string       `xml:"version,attr,omitempty"`
	Type     string       `xml:"type,attr,omitempty"`
	Pages    int          `xml:"pages,attr"`
	Diagrams []xmlDiagram `xml:"diagram"`
}

type xmlDiagram struct {
	ID         string         `xml:"id,attr"`
	Name       string         `xml:"name,attr"`
	Compressed string         `xml:",chardata"`
	Model      *xmlGraphModel `xml:"mxGraphModel,omitempty"`
}

// --- Graph model ---

type xmlGraphModel struct {
	XMLName    xml.Name `xml:"mxGraphModel"`
	Grid       int      `xml:"grid,attr"`
	PageWidth  string   `xml:"pageWidth,attr"`
	PageHeight string   `xml:"pageHeight,attr"`
	Root       xmlRoot  `xml:"root"`
}

type xmlRoot struct {
	Settings xmlSettings `xml:"object"`
	Cells    []xmlCell   `xml:"mxCell"`
}

// xmlSettings is the first root element, carrying the page resolution.
type xmlSettings struct {
	DPI  int      `xml:"dpi,attr"`
	ID   string   `xml:"id,attr"`
	Cell struct{} `xml:"mxCell"`
}

type xmlCell struct {
	ID       string       `xml:"id,attr"`
	Value    string       `xml:"value,attr,omitempty"`
	Style    string       `xml:"style,attr,omitempty"`
	Vertex   string       `xml:"vertex,attr,omitempty"`
	Parent   string       `xml:"parent,attr"`
	Geometry *xmlGeometry `xml:"mxGeometry,omitempty"`
}

type xmlGeometry struct {
	X      string `xml:"x,attr,omitempty"`
	Y      string `xml:"y,attr,omitempty"`
	Width  string `xml:"width,attr"`
	Height string `xml:"height,attr"`
	As     string `xml:"as,attr"`
}

// Encode writes the index back as a template document. Every template
// becomes one page holding its slots after label normalization and
// out-of-bounds correction; cells that define no slot are not written.
// With compress set, pages are stored the way the diagram editor does by
// default.
func (idx *Index) Encode(w io.Writer, compress bool) error {
	templates := idx.Templates()
	doc := xmlFile{
		Host:     idx.info.Host,
		Modified: idx.info.Modified,
		Agent:    idx.info.Agent,
		Version:  idx.info.Version,
		Type:     idx.info.Type,
		Pages:    len(templates),
	}
	for i, t := range templates {
		d := xmlDiagram{ID: fmt.Sprintf("page-%d", i+1), Name: t.Name}
		model := encodeModel(t)
		if compress {
			raw, err := xml.Marshal(model)
			if err != nil {
				return fmt.Errorf("failed to encode page %q: %w", t.Name, err)
			}
			if d.Compressed, err = deflate(string(raw)); err != nil {
				return fmt.Errorf("failed to compress page %q: %w", t.Name, err)
			}
		} else {
			d.Model = model
		}
		doc.Diagrams = append(doc.Diagrams, d)
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode template document: %w", err)
	}
	return enc.Close()
}

func encodeModel(t *Template) *xmlGraphModel {
	m := &xmlGraphModel{
		Grid:       1,
		PageWidth:  centiInchAttr(t.Width, t.DPI),
		PageHeight: centiInchAttr(t.Height, t.DPI),
	}
	m.Root.Settings = xmlSettings{DPI: t.DPI, ID: "0"}
	m.Root.Cells = append(m.Root.Cells, xmlCell{ID: "1", Parent: "0"})
	for i, s := range t.shapes {
		m.Root.Cells = append(m.Root.Cells, xmlCell{
			ID:     "cell-" + strconv.Itoa(i+1),
			Value:  s.Label,
			Style:  s.Style.String(),
			Vertex: "1",
			Parent: "1",
			Geometry: &xmlGeometry{
				X:      centiInchAttr(s.X, t.DPI),
				Y:      centiInchAttr(s.Y, t.DPI),
				Width:  centiInchAttr(s.Width, t.DPI),
				Height: centiInchAttr(s.Height, t.DPI),
				As:     "geometry",
			},
		})
	}
	return m
}

func centiInchAttr(px, dpi int) string {
	if px == 0 {
		return ""
	}
	return strconv.FormatFloat(PixelsToCentiInch(px, dpi), 'f', -1, 64)
}
