// Package preview renders PNG thumbnails of generated decks. A thumbnail is
// a wireframe of the slide: shape frames, filled picture areas and one bar
// per line of text, sized to the slide's geometry.
package preview

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	gopresentation "github.com/VantageDataChat/GoPPT"

	"github.com/nikunjkothiya/deckgen/pkg/errors"
)

// DefaultWidth is the thumbnail width in pixels
const DefaultWidth = 960

// emuPerPoint converts font points to slide units
const emuPerPoint = 12700

// textPt is the nominal size used to lay out text bars, matching the size
// forced onto populated shapes
const textPt = 18

var (
	colorBackground = color.RGBA{255, 255, 255, 255}
	colorFrame      = color.RGBA{160, 170, 185, 255}
	colorPicture    = color.RGBA{215, 225, 240, 255}
	colorText       = color.RGBA{70, 80, 95, 255}
)

// Renderer writes one image per slide
type Renderer struct {
	Width int
}

// New creates a renderer producing images width pixels wide
func New(width int) *Renderer {
	return &Renderer{Width: width}
}

// Render saves the slides of deckPath as PNG files in dir and returns their
// paths in slide order
func (r *Renderer) Render(deckPath, dir string) ([]string, error) {
	reader, err := gopresentation.NewReader(gopresentation.ReaderPowerPoint2007)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrUnknown, "Failed to create presentation reader")
	}
	pres, err := reader.Read(deckPath)
	if err != nil {
		return nil, errors.WrapWithFile(err, errors.ErrReadFailed, "Failed to read deck for preview", deckPath)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.WrapWithFile(err, errors.ErrWriteFailed, "Failed to create preview directory", dir)
	}

	width := r.Width
	if width <= 0 {
		width = DefaultWidth
	}
	cx, cy := slideSize(pres.GetLayout())
	height := int(int64(width) * cy / cx)
	if height < 1 {
		height = 1
	}
	scale := float64(width) / float64(cx)

	slides := pres.GetAllSlides()
	paths := make([]string, 0, len(slides))
	for i, slide := range slides {
		path := ImagePath(dir, deckPath, i+1)
		img := drawSlide(slide, width, height, scale)
		if err := writePNG(path, img); err != nil {
			return paths, errors.NewWithDetails(errors.ErrWriteFailed, "Failed to render slide", deckPath,
				fmt.Sprintf("slide %d: %v", i+1, err))
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// ImagePath returns the thumbnail path for a 1-based slide number
func ImagePath(dir, deckPath string, slide int) string {
	base := strings.TrimSuffix(filepath.Base(deckPath), filepath.Ext(deckPath))
	return filepath.Join(dir, fmt.Sprintf("%s-slide%02d.png", base, slide))
}

// slideSize returns the slide extent in EMU, 4:3 when the deck declares none
func slideSize(layout *gopresentation.DocumentLayout) (int64, int64) {
	if layout == nil || layout.CX <= 0 || layout.CY <= 0 {
		def := gopresentation.NewDocumentLayout()
		return def.CX, def.CY
	}
	return layout.CX, layout.CY
}

func drawSlide(slide *gopresentation.Slide, width, height int, scale float64) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), &image.Uniform{colorBackground}, image.Point{}, draw.Src)

	for _, shape := range slide.GetShapes() {
		box := image.Rect(
			int(float64(shape.GetOffsetX())*scale),
			int(float64(shape.GetOffsetY())*scale),
			int(float64(shape.GetOffsetX()+shape.GetWidth())*scale),
			int(float64(shape.GetOffsetY()+shape.GetHeight())*scale),
		).Intersect(img.Bounds())
		if box.Empty() {
			continue
		}

		switch s := shape.(type) {
		case *gopresentation.DrawingShape:
			draw.Draw(img, box, &image.Uniform{colorPicture}, image.Point{}, draw.Src)
		case *gopresentation.PlaceholderShape:
			drawText(img, box, paragraphLines(s.GetParagraphs()), scale)
		case *gopresentation.RichTextShape:
			drawText(img, box, paragraphLines(s.GetParagraphs()), scale)
		case *gopresentation.AutoShape:
			drawText(img, box, strings.Split(s.GetText(), "\n"), scale)
		}
		outline(img, box, colorFrame)
	}
	return img
}

// paragraphLines returns the text of each paragraph
func paragraphLines(paragraphs []*gopresentation.Paragraph) []string {
	lines := make([]string, 0, len(paragraphs))
	for _, p := range paragraphs {
		var sb strings.Builder
		for _, el := range p.GetElements() {
			if run, ok := el.(*gopresentation.TextRun); ok {
				sb.WriteString(run.GetText())
			}
		}
		lines = append(lines, sb.String())
	}
	return lines
}

// drawText draws one bar per line, as long as the line's text would run,
// wrapped at the box edge and clipped at its bottom
func drawText(img *image.RGBA, box image.Rectangle, lines []string, scale float64) {
	lineHeight := max(int(textPt*emuPerPoint*1.2*scale), 3)
	charWidth := max(int(textPt*emuPerPoint*0.5*scale), 1)
	barHeight := max(lineHeight*3/5, 1)
	pad := max(lineHeight/3, 1)

	inner := box.Inset(pad)
	if inner.Empty() {
		return
	}
	y := inner.Min.Y
	for _, line := range lines {
		n := utf8.RuneCountInString(strings.TrimSpace(line))
		for n > 0 || line == "" {
			if y+barHeight > inner.Max.Y {
				return
			}
			w := min(n*charWidth, inner.Dx())
			if w > 0 {
				bar := image.Rect(inner.Min.X, y, inner.Min.X+w, y+barHeight)
				draw.Draw(img, bar, &image.Uniform{colorText}, image.Point{}, draw.Src)
			}
			y += lineHeight
			n -= inner.Dx() / charWidth
			if line == "" || inner.Dx() < charWidth {
				break
			}
		}
	}
}

func outline(img *image.RGBA, r image.Rectangle, c color.Color) {
	for x := r.Min.X; x < r.Max.X; x++ {
		img.Set(x, r.Min.Y, c)
		img.Set(x, r.Max.Y-1, c)
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		img.Set(r.Min.X, y, c)
		img.Set(r.Max.X-1, y, c)
	}
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
