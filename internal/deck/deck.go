package deck

import (
	"archive/zip"
	"encoding/xml"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/richardlehane/mscfb"

	"github.com/nikunjkothiya/deckgen/pkg/errors"
)

const (
	partContentTypes = "[Content_Types].xml"
	partPresentation = "ppt/presentation.xml"
	partPresRels     = "ppt/_rels/presentation.xml.rels"
)

// Deck is an opened .pptx package. Slides are parsed on open and written
// back on Save; every other part is copied through unchanged.
type Deck struct {
	path   string
	zr     *zip.ReadCloser
	slides []*Slide
}

// Slide is one slide part of a deck
type Slide struct {
	Part   string
	Number int
	doc    *document
	dirty  bool
}

// Validate checks that the file at inputPath is a usable .pptx package
func Validate(inputPath string) error {
	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		return errors.NewWithFile(errors.ErrFileNotFound, "Template not found", inputPath)
	}

	// Legacy PowerPoint 97-2003 files are OLE compound documents
	if file, err := os.Open(inputPath); err == nil {
		_, oleErr := mscfb.New(file)
		file.Close()
		if oleErr == nil {
			return errors.NewWithFile(errors.ErrTemplate, "Legacy .ppt templates are not supported, save the template as .pptx", inputPath)
		}
	}

	r, err := zip.OpenReader(inputPath)
	if err != nil {
		return errors.NewWithDetails(errors.ErrTemplate, "Not a valid PPTX file (invalid ZIP)", inputPath, err.Error())
	}
	defer r.Close()

	hasContentTypes := false
	hasPresentationXML := false

	for _, f := range r.File {
		if f.Name == partContentTypes {
			hasContentTypes = true
		}
		if f.Name == partPresentation {
			hasPresentationXML = true
		}
	}

	if !hasContentTypes || !hasPresentationXML {
		return errors.NewWithFile(errors.ErrTemplate, "Not a valid PPTX file (missing required components)", inputPath)
	}

	return nil
}

// Open reads the deck at inputPath. The caller must Close it.
func Open(inputPath string) (*Deck, error) {
	r, err := zip.OpenReader(inputPath)
	if err != nil {
		return nil, errors.NewWithDetails(errors.ErrTemplate, "Failed to open PPTX", inputPath, err.Error())
	}

	d := &Deck{path: inputPath, zr: r}
	if err := d.loadSlides(); err != nil {
		r.Close()
		return nil, err
	}
	return d, nil
}

// Slides returns the slides in presentation order
func (d *Deck) Slides() []*Slide {
	return d.slides
}

// Close releases the underlying file
func (d *Deck) Close() error {
	if d.zr == nil {
		return nil
	}
	err := d.zr.Close()
	d.zr = nil
	return err
}

// Save writes the deck to outputPath, replacing any existing file
func (d *Deck) Save(outputPath string) error {
	dir := filepath.Dir(outputPath)
	tmp, err := os.CreateTemp(dir, ".deck-*.pptx")
	if err != nil {
		return errors.WrapWithFile(err, errors.ErrWriteFailed, "Failed to create output file", outputPath)
	}
	tmpName := tmp.Name()

	if err := d.writeTo(tmp); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.WrapWithFile(err, errors.ErrWriteFailed, "Failed to write deck", outputPath)
	}
	if err := tmp.Chmod(0644); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.WrapWithFile(err, errors.ErrWriteFailed, "Failed to write deck", outputPath)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.WrapWithFile(err, errors.ErrWriteFailed, "Failed to write deck", outputPath)
	}
	if err := os.Rename(tmpName, outputPath); err != nil {
		os.Remove(tmpName)
		return errors.WrapWithFile(err, errors.ErrWriteFailed, "Failed to save deck", outputPath)
	}
	return nil
}

// writeTo streams the package, re-serializing modified slides
func (d *Deck) writeTo(w io.Writer) error {
	modified := make(map[string]*Slide)
	for _, s := range d.slides {
		if s.dirty {
			modified[s.Part] = s
		}
	}

	zw := zip.NewWriter(w)
	for _, f := range d.zr.File {
		s, ok := modified[f.Name]
		if !ok {
			if err := zw.Copy(f); err != nil {
				return err
			}
			continue
		}

		fw, err := zw.CreateHeader(&zip.FileHeader{
			Name:     f.Name,
			Method:   zip.Deflate,
			Modified: f.Modified,
		})
		if err != nil {
			return err
		}
		if _, err := fw.Write(s.doc.bytes()); err != nil {
			return err
		}
	}
	return zw.Close()
}

// Shapes returns the top-level shapes of the slide's shape tree in z-order.
// Shapes nested inside groups are not included.
func (s *Slide) Shapes() []*Shape {
	tree := s.doc.root.path("cSld", "spTree")
	if tree == nil {
		return nil
	}
	var shapes []*Shape
	for _, el := range tree.elements() {
		if el.local("nvGrpSpPr", "grpSpPr", "extLst") {
			continue
		}
		shapes = append(shapes, &Shape{el: el, slide: s})
	}
	return shapes
}

// Shape returns the first top-level shape with the given name
func (s *Slide) Shape(name string) *Shape {
	for _, sh := range s.Shapes() {
		if sh.Name() == name {
			return sh
		}
	}
	return nil
}

// loadSlides parses every slide part in presentation order
func (d *Deck) loadSlides() error {
	files := make(map[string]*zip.File, len(d.zr.File))
	for _, f := range d.zr.File {
		files[f.Name] = f
	}
	if _, ok := files[partPresentation]; !ok {
		return errors.NewWithFile(errors.ErrTemplate, "Not a valid PPTX file (missing ppt/presentation.xml)", d.path)
	}

	parts, err := d.slideOrder(files)
	if err != nil {
		return err
	}

	for i, part := range parts {
		data, err := readPart(files[part])
		if err != nil {
			return errors.NewWithDetails(errors.ErrTemplate, "Failed to read slide", d.path, part+": "+err.Error())
		}
		doc, err := parseXML(data)
		if err != nil {
			return errors.NewWithDetails(errors.ErrTemplate, "Failed to parse slide", d.path, part+": "+err.Error())
		}
		d.slides = append(d.slides, &Slide{Part: part, Number: i + 1, doc: doc})
	}
	return nil
}

// slideOrder resolves the slide list of presentation.xml through its
// relationships. Packages without a usable list fall back to numeric
// slideN.xml order.
func (d *Deck) slideOrder(files map[string]*zip.File) ([]string, error) {
	presData, err := readPart(files[partPresentation])
	if err != nil {
		return nil, errors.NewWithDetails(errors.ErrTemplate, "Failed to read presentation", d.path, err.Error())
	}
	pres, err := parseXML(presData)
	if err != nil {
		return nil, errors.NewWithDetails(errors.ErrTemplate, "Failed to parse presentation", d.path, err.Error())
	}

	targets := map[string]string{}
	if relFile, ok := files[partPresRels]; ok {
		if data, err := readPart(relFile); err == nil {
			targets = parseRelationships(data, path.Dir(partPresentation))
		}
	}

	var parts []string
	if list := pres.root.child("sldIdLst"); list != nil {
		for _, sldID := range list.elements() {
			rid, ok := sldID.prefixedAttr("id")
			if !ok {
				continue
			}
			part, ok := targets[rid]
			if !ok {
				continue
			}
			if _, exists := files[part]; exists {
				parts = append(parts, part)
			}
		}
	}
	if len(parts) > 0 {
		return parts, nil
	}

	// Fallback: ppt/slides/slideN.xml sorted by N
	numbered := make(map[int]string)
	var nums []int
	for name := range files {
		if !strings.HasPrefix(name, "ppt/slides/slide") || !strings.HasSuffix(name, ".xml") {
			continue
		}
		numStr := strings.TrimSuffix(strings.TrimPrefix(name, "ppt/slides/slide"), ".xml")
		if num, err := strconv.Atoi(numStr); err == nil {
			numbered[num] = name
			nums = append(nums, num)
		}
	}
	sort.Ints(nums)
	for _, n := range nums {
		parts = append(parts, numbered[n])
	}
	return parts, nil
}

// parseRelationships maps relationship ids to absolute part names
func parseRelationships(data []byte, baseDir string) map[string]string {
	type Relationship struct {
		Id         string `xml:"Id,attr"`
		Target     string `xml:"Target,attr"`
		TargetMode string `xml:"TargetMode,attr"`
	}
	type Relationships struct {
		Rels []Relationship `xml:"Relationship"`
	}

	var rels Relationships
	if err := xml.Unmarshal(data, &rels); err != nil {
		return map[string]string{}
	}

	out := make(map[string]string, len(rels.Rels))
	for _, rel := range rels.Rels {
		if rel.TargetMode == "External" {
			continue
		}
		target := rel.Target
		if strings.HasPrefix(target, "/") {
			target = strings.TrimPrefix(target, "/")
		} else {
			target = path.Join(baseDir, target)
		}
		out[rel.Id] = target
	}
	return out
}

func readPart(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
