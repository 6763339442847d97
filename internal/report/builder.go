package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/signintech/gopdf"

	"github.com/nikunjkothiya/deckgen/pkg/errors"
)

// fontPaths are searched in order for a TrueType font
var fontPaths = []string{
	"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/TTF/DejaVuSans.ttf",
	"/usr/share/fonts/dejavu/DejaVuSans.ttf",
	"/usr/local/share/fonts/truetype/dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/truetype/liberation/LiberationSans-Regular.ttf",
	"/Library/Fonts/Arial.ttf",
	"C:\\Windows\\Fonts\\arial.ttf",
}

// FindFont returns override when it exists, else the first installed font
// from the usual system locations, else ""
func FindFont(override string) string {
	candidates := fontPaths
	if override != "" {
		candidates = append([]string{override}, fontPaths...)
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".fonts", "DejaVuSans.ttf"))
	}
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// Builder lays out a report page by page
type Builder struct {
	pdf      *gopdf.GoPdf
	options  Options
	currentY float64
	pageNum  int
}

// NewBuilder creates a builder with the given options. It fails when no
// TrueType font can be loaded, since gopdf has no built-in fonts.
func NewBuilder(opts Options) (*Builder, error) {
	pdf := &gopdf.GoPdf{}
	pdf.Start(gopdf.Config{PageSize: *opts.pageRect()})

	fontPath := FindFont(opts.FontPath)
	if fontPath == "" {
		return nil, errors.New(errors.ErrWriteFailed, "No TrueType font found for the summary report")
	}
	if err := pdf.AddTTFFont("default", fontPath); err != nil {
		return nil, errors.WrapWithFile(err, errors.ErrWriteFailed, "Failed to load font", fontPath)
	}
	if err := pdf.SetFont("default", "", opts.FontSize); err != nil {
		return nil, errors.WrapWithFile(err, errors.ErrWriteFailed, "Failed to load font", fontPath)
	}

	return &Builder{
		pdf:      pdf,
		options:  opts,
		currentY: opts.Margin,
	}, nil
}

// AddPage starts a new page with the footer drawn
func (b *Builder) AddPage() {
	b.pdf.AddPage()
	b.pageNum++
	b.drawFooter()
	b.currentY = b.options.Margin
}

func (b *Builder) drawFooter() {
	style := NoteStyle()
	b.setFont(style.FontSize)
	b.setTextColor(style.TextColor)

	footerY := b.options.pageHeight() - b.options.Margin + 10

	if b.options.FooterText != "" {
		b.pdf.SetX(b.options.Margin)
		b.pdf.SetY(footerY)
		b.pdf.Cell(nil, b.options.FooterText)
	}

	// Page X of Y, right aligned
	pageStr := fmt.Sprintf("Page %d of ", b.pageNum)
	placeholderWidth := 20.0
	totalWidth := b.MeasureTextWidth(pageStr) + placeholderWidth

	b.pdf.SetX(b.options.ContentWidth() + b.options.Margin - totalWidth)
	b.pdf.SetY(footerY)
	b.pdf.Cell(nil, pageStr)
	b.pdf.PlaceHolderText("total", placeholderWidth)
}

func (b *Builder) setFont(size float64) {
	b.pdf.SetFont("default", "", size)
}

func (b *Builder) setTextColor(c Color) {
	b.pdf.SetTextColor(c.R, c.G, c.B)
}

// cell draws one table cell at the current position and moves right
func (b *Builder) cell(w, h float64, text string, style Style) error {
	x := b.pdf.GetX()
	y := b.currentY

	if style.HasBackground {
		b.pdf.SetFillColor(style.FillColor.R, style.FillColor.G, style.FillColor.B)
		if err := b.pdf.Rectangle(x, y, x+w, y+h, "F", 0, 0); err != nil {
			return err
		}
	}
	if style.HasBorder {
		b.pdf.SetStrokeColor(style.BorderColor.R, style.BorderColor.G, style.BorderColor.B)
		b.pdf.SetLineWidth(style.BorderWidth)
		if err := b.pdf.Rectangle(x, y, x+w, y+h, "D", 0, 0); err != nil {
			return err
		}
	}

	b.setTextColor(style.TextColor)
	text = b.truncateText(text, w-(style.Padding*2))
	textWidth := b.MeasureTextWidth(text)

	var textX float64
	switch style.Alignment {
	case AlignCenter:
		textX = x + (w-textWidth)/2
	case AlignRight:
		textX = x + w - textWidth - style.Padding
	default:
		textX = x + style.Padding
	}

	b.pdf.SetX(textX)
	b.pdf.SetY(y + style.Padding + style.FontSize)
	if err := b.pdf.Text(text); err != nil {
		return err
	}

	b.pdf.SetX(x + w)
	return nil
}

// truncateText shortens text with "..." until it fits maxWidth
func (b *Builder) truncateText(text string, maxWidth float64) string {
	if b.MeasureTextWidth(text) <= maxWidth {
		return text
	}
	runes := []rune(text)
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		if b.MeasureTextWidth(string(runes)+"...") <= maxWidth {
			return string(runes) + "..."
		}
	}
	return ""
}

// MeasureTextWidth measures text in the current font
func (b *Builder) MeasureTextWidth(text string) float64 {
	width, err := b.pdf.MeasureTextWidth(text)
	if err != nil {
		return float64(len(text)) * 6
	}
	return width
}

func (b *Builder) newLineAt(height, startX float64) {
	b.currentY += height
	b.pdf.SetX(startX)
	b.pdf.SetY(b.currentY)
}

func (b *Builder) needsNewPage(height float64) bool {
	return b.currentY+height > b.options.pageHeight()-b.options.Margin
}

// AddText adds one line of text
func (b *Builder) AddText(text string, style Style) error {
	b.setFont(style.FontSize)
	b.setTextColor(style.TextColor)
	b.pdf.SetX(b.options.Margin)
	b.pdf.SetY(b.currentY + style.FontSize)
	if err := b.pdf.Text(text); err != nil {
		return err
	}
	b.currentY += style.FontSize * style.LineHeight
	return nil
}

// DrawTable draws headers and rows, repeating the header on each new page
func (b *Builder) DrawTable(headers []string, rows [][]string, colWidths []float64) error {
	style := DefaultStyle()
	headerStyle := HeaderStyle()
	rowHeight := style.FontSize + (style.Padding * 2) + 4
	startX := b.options.Margin

	drawHeader := func() error {
		b.setFont(headerStyle.FontSize)
		b.pdf.SetX(startX)
		for i, header := range headers {
			if i < len(colWidths) {
				if err := b.cell(colWidths[i], rowHeight, header, headerStyle); err != nil {
					return err
				}
			}
		}
		b.newLineAt(rowHeight, startX)
		b.setFont(style.FontSize)
		return nil
	}

	if err := drawHeader(); err != nil {
		return err
	}

	for rowIdx, row := range rows {
		if b.needsNewPage(rowHeight) {
			b.AddPage()
			if err := drawHeader(); err != nil {
				return err
			}
		}

		rowStyle := DefaultStyle()
		if rowIdx%2 == 1 {
			rowStyle.FillColor = ColorLightGray
			rowStyle.HasBackground = true
		}

		b.pdf.SetX(startX)
		for i, value := range row {
			if i >= len(colWidths) {
				break
			}
			cellStyle := rowStyle
			if isNumeric(value) {
				cellStyle.Alignment = AlignRight
			}
			if err := b.cell(colWidths[i], rowHeight, value, cellStyle); err != nil {
				return err
			}
		}
		b.newLineAt(rowHeight, startX)
	}
	return nil
}

// Save writes the PDF to outputPath
func (b *Builder) Save(outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return errors.WrapWithFile(err, errors.ErrWriteFailed, "Failed to create report directory", outputPath)
	}
	b.pdf.FillInPlaceHoldText("total", fmt.Sprintf("%d", b.pageNum), gopdf.Left)
	if err := b.pdf.WritePdf(outputPath); err != nil {
		return errors.WrapWithFile(err, errors.ErrWriteFailed, "Failed to write report", outputPath)
	}
	return nil
}

// isNumeric checks if a string represents a number
func isNumeric(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	hasDigit := false
	for _, r := range s {
		if r >= '0' && r <= '9' {
			hasDigit = true
			continue
		}
		if r == '.' || r == '-' || r == '+' || r == ',' {
			continue
		}
		return false
	}
	return hasDigit
}
