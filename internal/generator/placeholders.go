package generator

import (
	"strings"

	"github.com/nikunjkothiya/deckgen/internal/deck"
	"github.com/nikunjkothiya/deckgen/internal/sheet"
)

// Bullet replaces every "*" in the bullet column
const Bullet = "• "

// PlaceholderMap maps shape names to the text written into them
type PlaceholderMap map[string]string

// FormatBullets turns "*" markers into bullet glyphs. An absent value gives "".
func FormatBullets(v sheet.Value) string {
	if !v.Present {
		return ""
	}
	return FormatBulletText(v.Text)
}

// FormatBulletText is FormatBullets for plain strings
func FormatBulletText(s string) string {
	return strings.ReplaceAll(s, "*", Bullet)
}

// BuildPlaceholderMap returns an entry for every column of the table.
// Absent cells map to "" and the bullet column is passed through FormatBullets.
func BuildPlaceholderMap(row sheet.Row, columns []string, bulletColumn string) PlaceholderMap {
	m := make(PlaceholderMap, len(columns))
	for _, column := range columns {
		v := row.Get(column)
		switch {
		case !v.Present:
			m[column] = ""
		case column == bulletColumn:
			m[column] = FormatBullets(v)
		default:
			m[column] = v.Text
		}
	}
	return m
}

// Style is the formatting forced onto every populated shape
type Style struct {
	FontSizePt float64
	Align      string
}

// DefaultStyle is 18pt, left aligned
func DefaultStyle() Style {
	return Style{FontSizePt: 18, Align: deck.AlignLeft}
}

// PopulateSlide writes values into every text shape whose name is a key of
// values, then applies style to the new text. Other shapes are not touched.
// It returns the number of shapes written.
func PopulateSlide(slide *deck.Slide, values PlaceholderMap, style Style) int {
	updated := 0
	for _, shape := range slide.Shapes() {
		if !shape.HasTextFrame() {
			continue
		}
		text, ok := values[shape.Name()]
		if !ok {
			continue
		}
		if !shape.SetText(text) {
			continue
		}
		shape.SetFontSizeAndAlignment(style.FontSizePt, style.Align)
		updated++
	}
	return updated
}
