package deck

import (
	"bytes"
	"encoding/xml"
	"io"
	"strings"

	"golang.org/x/net/html/charset"
)

// nsDrawingML is looked up when a part binds DrawingML to an unusual prefix
const nsDrawingML = "http://schemas.openxmlformats.org/drawingml/2006/main"

// node is an element of a part kept as raw tokens. Names keep the prefix
// exactly as written in the part (Name.Space is the prefix, not the URI), so
// a part can be written back without the encoder renaming namespaces.
type node struct {
	start    xml.StartElement
	children []interface{} // *node or a copied xml.Token
}

// document is a parsed XML part
type document struct {
	prolog []xml.Token
	root   *node
	epilog []xml.Token
}

// parseXML reads a part into a node tree
func parseXML(data []byte) (*document, error) {
	decoder := xml.NewDecoder(bytes.NewReader(data))
	decoder.CharsetReader = charset.NewReaderLabel

	doc := &document{}
	var stack []*node

	for {
		tok, err := decoder.RawToken()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		tok = xml.CopyToken(tok)

		switch t := tok.(type) {
		case xml.StartElement:
			n := &node{start: t}
			if len(stack) == 0 {
				if doc.root != nil {
					return nil, &xml.SyntaxError{Msg: "multiple root elements"}
				}
				doc.root = n
			} else {
				parent := stack[len(stack)-1]
				parent.children = append(parent.children, n)
			}
			stack = append(stack, n)
		case xml.EndElement:
			if len(stack) == 0 {
				return nil, &xml.SyntaxError{Msg: "unexpected end element </" + t.Name.Local + ">"}
			}
			top := stack[len(stack)-1]
			if top.start.Name != t.Name {
				return nil, &xml.SyntaxError{Msg: "element <" + top.start.Name.Local + "> closed by </" + t.Name.Local + ">"}
			}
			stack = stack[:len(stack)-1]
		default:
			switch {
			case len(stack) > 0:
				parent := stack[len(stack)-1]
				parent.children = append(parent.children, tok)
			case doc.root == nil:
				doc.prolog = append(doc.prolog, tok)
			default:
				doc.epilog = append(doc.epilog, tok)
			}
		}
	}

	if doc.root == nil {
		return nil, &xml.SyntaxError{Msg: "no root element"}
	}
	if len(stack) != 0 {
		return nil, &xml.SyntaxError{Msg: "unclosed element <" + stack[len(stack)-1].start.Name.Local + ">"}
	}
	return doc, nil
}

// bytes serializes the document. The XML declaration is always written as
// UTF-8 since that is what the tree holds after decoding.
func (d *document) bytes() []byte {
	var buf bytes.Buffer
	for _, tok := range d.prolog {
		writeToken(&buf, tok)
	}
	writeNode(&buf, d.root)
	for _, tok := range d.epilog {
		writeToken(&buf, tok)
	}
	return buf.Bytes()
}

func writeNode(buf *bytes.Buffer, n *node) {
	buf.WriteByte('<')
	buf.WriteString(qualified(n.start.Name))
	for _, a := range n.start.Attr {
		buf.WriteByte(' ')
		buf.WriteString(qualified(a.Name))
		buf.WriteString(`="`)
		xml.EscapeText(buf, []byte(a.Value))
		buf.WriteByte('"')
	}
	if len(n.children) == 0 {
		buf.WriteString("/>")
		return
	}
	buf.WriteByte('>')
	for _, c := range n.children {
		switch v := c.(type) {
		case *node:
			writeNode(buf, v)
		case xml.Token:
			writeToken(buf, v)
		}
	}
	buf.WriteString("</")
	buf.WriteString(qualified(n.start.Name))
	buf.WriteByte('>')
}

func writeToken(buf *bytes.Buffer, tok xml.Token) {
	switch t := tok.(type) {
	case xml.CharData:
		if len(bytes.TrimLeft(t, " \t\r\n")) == 0 {
			buf.Write(t)
			return
		}
		xml.EscapeText(buf, t)
	case xml.Comment:
		buf.WriteString("<!--")
		buf.Write(t)
		buf.WriteString("-->")
	case xml.ProcInst:
		if t.Target == "xml" {
			buf.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
			return
		}
		buf.WriteString("<?")
		buf.WriteString(t.Target)
		if len(t.Inst) > 0 {
			buf.WriteByte(' ')
			buf.Write(t.Inst)
		}
		buf.WriteString("?>")
	case xml.Directive:
		buf.WriteString("<!")
		buf.Write(t)
		buf.WriteByte('>')
	}
}

func qualified(name xml.Name) string {
	if name.Space == "" {
		return name.Local
	}
	return name.Space + ":" + name.Local
}

// local reports whether n's local name is one of names
func (n *node) local(names ...string) bool {
	for _, name := range names {
		if n.start.Name.Local == name {
			return true
		}
	}
	return false
}

// elements returns the child elements of n
func (n *node) elements() []*node {
	var out []*node
	for _, c := range n.children {
		if child, ok := c.(*node); ok {
			out = append(out, child)
		}
	}
	return out
}

// child returns the first child element with the given local name
func (n *node) child(local string) *node {
	for _, c := range n.children {
		if child, ok := c.(*node); ok && child.start.Name.Local == local {
			return child
		}
	}
	return nil
}

// path follows a chain of local names from n
func (n *node) path(locals ...string) *node {
	cur := n
	for _, l := range locals {
		if cur == nil {
			return nil
		}
		cur = cur.child(l)
	}
	return cur
}

// attr returns the value of an unprefixed attribute
func (n *node) attr(local string) (string, bool) {
	for _, a := range n.start.Attr {
		if a.Name.Space == "" && a.Name.Local == local {
			return a.Value, true
		}
	}
	return "", false
}

// prefixedAttr returns the value of a prefixed attribute such as r:id
func (n *node) prefixedAttr(local string) (string, bool) {
	for _, a := range n.start.Attr {
		if a.Name.Space != "" && a.Name.Space != "xmlns" && a.Name.Local == local {
			return a.Value, true
		}
	}
	return "", false
}

// setAttr sets or adds an unprefixed attribute
func (n *node) setAttr(local, value string) {
	for i, a := range n.start.Attr {
		if a.Name.Space == "" && a.Name.Local == local {
			n.start.Attr[i].Value = value
			return
		}
	}
	n.start.Attr = append(n.start.Attr, xml.Attr{Name: xml.Name{Local: local}, Value: value})
}

// removeElements drops every child element with the given local name
func (n *node) removeElements(local string) {
	kept := n.children[:0]
	for _, c := range n.children {
		if child, ok := c.(*node); ok && child.start.Name.Local == local {
			continue
		}
		kept = append(kept, c)
	}
	n.children = kept
}

// prepend inserts child as the first child of n
func (n *node) prepend(child *node) {
	n.children = append([]interface{}{child}, n.children...)
}

// insertBefore inserts child ahead of the first element named local, or
// appends it when there is none
func (n *node) insertBefore(child *node, local string) {
	for i, c := range n.children {
		if el, ok := c.(*node); ok && el.start.Name.Local == local {
			n.children = append(n.children[:i], append([]interface{}{child}, n.children[i:]...)...)
			return
		}
	}
	n.children = append(n.children, child)
}

// text concatenates the character data below n
func (n *node) text() string {
	var sb strings.Builder
	for _, c := range n.children {
		switch v := c.(type) {
		case *node:
			sb.WriteString(v.text())
		case xml.CharData:
			sb.Write(v)
		}
	}
	return sb.String()
}

// newElement builds an element with a prefixed name
func newElement(prefix, local string, attrs ...xml.Attr) *node {
	return &node{start: xml.StartElement{Name: xml.Name{Space: prefix, Local: local}, Attr: attrs}}
}

// prefixFor returns the prefix root binds to uri, or fallback
func prefixFor(root *node, uri, fallback string) string {
	for _, a := range root.start.Attr {
		if a.Name.Space == "xmlns" && a.Value == uri {
			return a.Name.Local
		}
	}
	return fallback
}
