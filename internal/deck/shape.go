package deck

import (
	"encoding/xml"
	"strconv"
	"strings"
)

// Alignment values for a:pPr/@algn
const (
	AlignLeft    = "l"
	AlignCenter  = "ctr"
	AlignRight   = "r"
	AlignJustify = "just"
)

// Shape is a top-level element of a slide's shape tree
type Shape struct {
	el    *node
	slide *Slide
}

// Kind returns the element name: "sp", "pic", "graphicFrame", "grpSp", "cxnSp"...
func (s *Shape) Kind() string {
	return s.el.start.Name.Local
}

// Name returns the shape's cNvPr name, the name shown in the selection pane
func (s *Shape) Name() string {
	for _, child := range s.el.elements() {
		if !strings.HasPrefix(child.start.Name.Local, "nv") {
			continue
		}
		if c := child.child("cNvPr"); c != nil {
			name, _ := c.attr("name")
			return name
		}
	}
	return ""
}

// HasTextFrame reports whether the shape can carry text. Only auto shapes,
// placeholders and text boxes (p:sp) can; pictures, tables, charts, groups
// and connectors cannot.
func (s *Shape) HasTextFrame() bool {
	return s.Kind() == "sp"
}

// Text returns the shape's text, paragraphs joined by "\n" and line breaks
// rendered as "\v"
func (s *Shape) Text() string {
	body := s.el.child("txBody")
	if body == nil {
		return ""
	}
	var paras []string
	for _, p := range body.elements() {
		if !p.local("p") {
			continue
		}
		var sb strings.Builder
		for _, el := range p.elements() {
			switch el.start.Name.Local {
			case "r", "fld":
				if t := el.child("t"); t != nil {
					sb.WriteString(t.text())
				}
			case "br":
				sb.WriteString("\v")
			}
		}
		paras = append(paras, sb.String())
	}
	return strings.Join(paras, "\n")
}

// SetText replaces the whole text of the shape. Each "\n" starts a new
// paragraph and each "\v" becomes a line break. Body properties and list
// styles are kept; a text body is created when the shape has none.
func (s *Shape) SetText(text string) bool {
	if !s.HasTextFrame() {
		return false
	}
	a := s.drawingPrefix()
	body := s.textBody(a)

	body.removeElements("p")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	for _, line := range strings.Split(text, "\n") {
		p := newElement(a, "p")
		for i, segment := range strings.Split(line, "\v") {
			if i > 0 {
				p.children = append(p.children, newElement(a, "br"))
			}
			if segment == "" {
				continue
			}
			t := newElement(a, "t")
			t.children = append(t.children, xml.CharData(segment))
			r := newElement(a, "r")
			r.children = append(r.children, t)
			p.children = append(p.children, r)
		}
		body.children = append(body.children, p)
	}

	s.slide.dirty = true
	return true
}

// SetFontSizeAndAlignment sets every run's size in points and every
// paragraph's horizontal alignment
func (s *Shape) SetFontSizeAndAlignment(sizePt float64, align string) {
	body := s.el.child("txBody")
	if body == nil {
		return
	}
	a := s.drawingPrefix()
	sz := strconv.Itoa(int(sizePt*100 + 0.5))

	for _, p := range body.elements() {
		if !p.local("p") {
			continue
		}
		pPr := p.child("pPr")
		if pPr == nil {
			pPr = newElement(a, "pPr")
			p.prepend(pPr)
		}
		pPr.setAttr("algn", align)

		for _, r := range p.elements() {
			if !r.local("r") {
				continue
			}
			rPr := r.child("rPr")
			if rPr == nil {
				rPr = newElement(a, "rPr")
				r.prepend(rPr)
			}
			rPr.setAttr("sz", sz)
		}
	}
	s.slide.dirty = true
}

// Paragraphs returns the alignment of each paragraph and the sizes of its
// runs, in hundredths of a point
func (s *Shape) Paragraphs() []Paragraph {
	body := s.el.child("txBody")
	if body == nil {
		return nil
	}
	var out []Paragraph
	for _, p := range body.elements() {
		if !p.local("p") {
			continue
		}
		para := Paragraph{}
		if pPr := p.child("pPr"); pPr != nil {
			para.Align, _ = pPr.attr("algn")
		}
		for _, r := range p.elements() {
			if !r.local("r") {
				continue
			}
			run := Run{}
			if t := r.child("t"); t != nil {
				run.Text = t.text()
			}
			if rPr := r.child("rPr"); rPr != nil {
				if v, ok := rPr.attr("sz"); ok {
					run.Size, _ = strconv.Atoi(v)
				}
			}
			para.Runs = append(para.Runs, run)
		}
		out = append(out, para)
	}
	return out
}

// Paragraph is a read-only view of an a:p element
type Paragraph struct {
	Align string
	Runs  []Run
}

// Run is a read-only view of an a:r element
type Run struct {
	Text string
	Size int
}

// textBody returns the shape's p:txBody, creating it ahead of any extLst
func (s *Shape) textBody(a string) *node {
	if body := s.el.child("txBody"); body != nil {
		return body
	}
	body := newElement(s.el.start.Name.Space, "txBody")
	body.children = append(body.children, newElement(a, "bodyPr"), newElement(a, "lstStyle"))
	s.el.insertBefore(body, "extLst")
	return body
}

// drawingPrefix finds the prefix used for DrawingML elements in this part
func (s *Shape) drawingPrefix() string {
	if body := s.el.child("txBody"); body != nil {
		for _, el := range body.elements() {
			if el.local("bodyPr", "lstStyle", "p") {
				return el.start.Name.Space
			}
		}
	}
	return prefixFor(s.slide.doc.root, nsDrawingML, "a")
}
