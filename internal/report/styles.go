package report

import (
	"github.com/signintech/gopdf"
)

// PageSize represents page dimensions in points (1 inch = 72 points)
type PageSize struct {
	Width  float64
	Height float64
}

// Standard page sizes
var (
	PageA4     = PageSize{Width: 595.28, Height: 841.89}
	PageLetter = PageSize{Width: 612, Height: 792}
)

// Orientation of the page
type Orientation string

const (
	Portrait  Orientation = "portrait"
	Landscape Orientation = "landscape"
)

// Alignment constants
const (
	AlignLeft   = 0
	AlignCenter = 1
	AlignRight  = 2
)

// Color represents RGB color values
type Color struct {
	R, G, B uint8
}

// Predefined colors for styling
var (
	ColorBlack     = Color{0, 0, 0}
	ColorWhite     = Color{255, 255, 255}
	ColorGray      = Color{128, 128, 128}
	ColorLightGray = Color{240, 240, 240}
	ColorDarkGray  = Color{64, 64, 64}
	ColorLightBlue = Color{230, 242, 255}
)

// Style represents text and cell styling options
type Style struct {
	FontSize      float64
	TextColor     Color
	FillColor     Color
	BorderColor   Color
	BorderWidth   float64
	Alignment     int
	Padding       float64
	LineHeight    float64
	HasBackground bool
	HasBorder     bool
}

// DefaultStyle returns the default text style
func DefaultStyle() Style {
	return Style{
		FontSize:    10,
		TextColor:   ColorBlack,
		FillColor:   ColorWhite,
		BorderColor: ColorDarkGray,
		BorderWidth: 0.5,
		Alignment:   AlignLeft,
		Padding:     4,
		LineHeight:  1.4,
		HasBorder:   true,
	}
}

// HeaderStyle returns style for table headers
func HeaderStyle() Style {
	s := DefaultStyle()
	s.FontSize = 11
	s.FillColor = ColorLightBlue
	s.TextColor = ColorDarkGray
	s.HasBackground = true
	return s
}

// TitleStyle is used for the report heading
func TitleStyle() Style {
	s := DefaultStyle()
	s.FontSize = 16
	s.HasBorder = false
	return s
}

// NoteStyle is used for the lines under the heading
func NoteStyle() Style {
	s := DefaultStyle()
	s.FontSize = 9
	s.TextColor = ColorGray
	s.HasBorder = false
	return s
}

// Options describes the page layout of a report
type Options struct {
	PageSize    PageSize
	Orientation Orientation
	FontSize    float64
	Margin      float64
	Title       string
	FooterText  string
	// FontPath overrides the TrueType font search
	FontPath string
}

// DefaultOptions returns an A4 landscape layout
func DefaultOptions() Options {
	return Options{
		PageSize:    PageA4,
		Orientation: Landscape,
		FontSize:    10,
		Margin:      30,
		Title:       "Deck generation summary",
	}
}

// pageRect returns the gopdf.Rect for the configured page size and orientation
func (o Options) pageRect() *gopdf.Rect {
	w, h := o.PageSize.Width, o.PageSize.Height
	if o.Orientation == Landscape {
		w, h = h, w
	}
	return &gopdf.Rect{W: w, H: h}
}

// ContentWidth returns the usable content width after margins
func (o Options) ContentWidth() float64 {
	return o.pageRect().W - (o.Margin * 2)
}

// pageHeight returns the page height for the configured orientation
func (o Options) pageHeight() float64 {
	return o.pageRect().H
}
