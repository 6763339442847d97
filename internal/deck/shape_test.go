package deck

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const slideNS = `xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" ` +
	`xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships" ` +
	`xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main"`

func parseSlide(t *testing.T, body string) *Slide {
	t.Helper()
	doc, err := parseXML([]byte(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<p:sld ` + slideNS + `><p:cSld><p:spTree>` +
		`<p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr><p:grpSpPr/>` +
		body + `</p:spTree></p:cSld></p:sld>`))
	require.NoError(t, err)
	return &Slide{Part: "ppt/slides/slide1.xml", Number: 1, doc: doc}
}

func TestSetTextSplitsParagraphsAndBreaks(t *testing.T) {
	s := parseSlide(t, `<p:sp><p:nvSpPr><p:cNvPr id="2" name="Body"/><p:cNvSpPr/><p:nvPr/></p:nvSpPr><p:spPr/>`+
		`<p:txBody><a:bodyPr anchor="t"/><a:lstStyle/><a:p><a:r><a:t>old</a:t></a:r></a:p><a:p/></p:txBody></p:sp>`)

	sh := s.Shape("Body")
	require.NotNil(t, sh)
	require.True(t, sh.SetText("line one\nline\vtwo\n"))

	assert.Equal(t, "line one\nline\vtwo\n", sh.Text())
	paras := sh.Paragraphs()
	require.Len(t, paras, 3)
	assert.Len(t, paras[0].Runs, 1)
	assert.Len(t, paras[1].Runs, 2)
	assert.Empty(t, paras[2].Runs)
	assert.True(t, s.dirty)

	out := string(s.doc.bytes())
	assert.Contains(t, out, `<a:bodyPr anchor="t"/><a:lstStyle/>`)
	assert.NotContains(t, out, "old")
}

func TestSetTextCreatesMissingTextBody(t *testing.T) {
	s := parseSlide(t, `<p:sp><p:nvSpPr><p:cNvPr id="2" name="Box"/><p:cNvSpPr/><p:nvPr/></p:nvSpPr><p:spPr/>`+
		`<p:extLst><p:ext uri="{X}"/></p:extLst></p:sp>`)

	sh := s.Shape("Box")
	require.True(t, sh.SetText("hello"))
	assert.Equal(t, "hello", sh.Text())

	out := string(s.doc.bytes())
	assert.Contains(t, out, `<p:txBody><a:bodyPr/><a:lstStyle/><a:p><a:r><a:t>hello</a:t></a:r></a:p></p:txBody><p:extLst>`)
}

func TestSetTextIgnoresNonTextShapes(t *testing.T) {
	s := parseSlide(t, `<p:pic><p:nvPicPr><p:cNvPr id="3" name="Logo"/><p:cNvPicPr/><p:nvPr/></p:nvPicPr><p:blipFill/><p:spPr/></p:pic>`)
	before := string(s.doc.bytes())

	sh := s.Shape("Logo")
	require.NotNil(t, sh)
	assert.False(t, sh.SetText("x"))
	assert.False(t, s.dirty)
	assert.Equal(t, before, string(s.doc.bytes()))
}

func TestSetFontSizeAndAlignment(t *testing.T) {
	s := parseSlide(t, `<p:sp><p:nvSpPr><p:cNvPr id="2" name="Body"/><p:cNvSpPr/><p:nvPr/></p:nvSpPr><p:spPr/>`+
		`<p:txBody><a:bodyPr/><a:p><a:pPr algn="ctr" lvl="1"/><a:r><a:rPr lang="en-US" sz="3200"/><a:t>a</a:t></a:r>`+
		`<a:r><a:t>b</a:t></a:r></a:p><a:p/></p:txBody></p:sp>`)

	sh := s.Shape("Body")
	sh.SetFontSizeAndAlignment(18, AlignLeft)

	paras := sh.Paragraphs()
	require.Len(t, paras, 2)
	for _, p := range paras {
		assert.Equal(t, AlignLeft, p.Align)
		for _, r := range p.Runs {
			assert.Equal(t, 1800, r.Size)
		}
	}
	out := string(s.doc.bytes())
	assert.Contains(t, out, `<a:pPr algn="l" lvl="1"/>`)
	assert.Contains(t, out, `<a:rPr lang="en-US" sz="1800"/>`)
	assert.Contains(t, out, `<a:r><a:rPr sz="1800"/><a:t>b</a:t></a:r>`)
}

func TestDrawingPrefixFromNamespaceDeclaration(t *testing.T) {
	doc, err := parseXML([]byte(`<p:sld xmlns:d="http://schemas.openxmlformats.org/drawingml/2006/main" ` +
		`xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main"><p:cSld><p:spTree>` +
		`<p:sp><p:nvSpPr><p:cNvPr id="2" name="X"/></p:nvSpPr></p:sp></p:spTree></p:cSld></p:sld>`))
	require.NoError(t, err)
	s := &Slide{doc: doc}

	s.Shape("X").SetText("v")
	assert.Contains(t, string(doc.bytes()), `<p:txBody><d:bodyPr/><d:lstStyle/><d:p><d:r><d:t>v</d:t></d:r></d:p></p:txBody>`)
}

func TestShapesSkipGroupProperties(t *testing.T) {
	s := parseSlide(t, `<p:grpSp><p:nvGrpSpPr><p:cNvPr id="4" name="Group"/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr><p:grpSpPr/>`+
		`<p:sp><p:nvSpPr><p:cNvPr id="5" name="Inner"/><p:cNvSpPr/><p:nvPr/></p:nvSpPr></p:sp></p:grpSp>`)

	shapes := s.Shapes()
	require.Len(t, shapes, 1)
	assert.Equal(t, "Group", shapes[0].Name())
	assert.Equal(t, "grpSp", shapes[0].Kind())
	assert.Nil(t, s.Shape("Inner"))
}

func TestParseXMLRoundTrip(t *testing.T) {
	src := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<p:sld ` + slideNS + `><!-- note --><p:cSld name="a&amp;b"><p:spTree/></p:cSld></p:sld>`
	doc, err := parseXML([]byte(src))
	require.NoError(t, err)
	assert.Equal(t, src, string(doc.bytes()))
}

func TestParseXMLKeepsIndentation(t *testing.T) {
	src := "<p:sld " + slideNS + ">\n  <p:cSld>\n    <p:spTree/>\n  </p:cSld>\n</p:sld>"
	doc, err := parseXML([]byte(src))
	require.NoError(t, err)
	out := string(doc.bytes())
	assert.Equal(t, src, out)
	assert.NotContains(t, out, "&#xA;")

	text := "<t>line one\nline\ttwo &amp; more</t>"
	doc, err = parseXML([]byte(text))
	require.NoError(t, err)
	assert.Equal(t, "line one\nline\ttwo & more", doc.root.text())
}

func TestParseXMLErrors(t *testing.T) {
	for _, src := range []string{
		"",
		"<a>",
		"<a></b>",
		"<a/><b/>",
	} {
		_, err := parseXML([]byte(src))
		assert.Error(t, err, "input %q", src)
	}
}

func TestParseXMLDecodesLatin1(t *testing.T) {
	src := "<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?><t>caf\xe9</t>"
	doc, err := parseXML([]byte(src))
	require.NoError(t, err)
	assert.Equal(t, "café", doc.root.text())
	assert.True(t, strings.HasPrefix(string(doc.bytes()), `<?xml version="1.0" encoding="UTF-8"`))
}
