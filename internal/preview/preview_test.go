package preview

import (
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikunjkothiya/deckgen/internal/deck/decktest"
	"github.com/nikunjkothiya/deckgen/pkg/errors"
)

func decodePNG(t *testing.T, path string) image.Image {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	return img
}

// countColor counts the pixels of img equal to c
func countColor(img image.Image, c [4]uint32) int {
	n := 0
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, a := img.At(x, y).RGBA()
			if [4]uint32{r, g, bl, a} == c {
				n++
			}
		}
	}
	return n
}

func rgba(c interface{ RGBA() (r, g, b, a uint32) }) [4]uint32 {
	r, g, b, a := c.RGBA()
	return [4]uint32{r, g, b, a}
}

func TestRenderDeck(t *testing.T) {
	dir := t.TempDir()
	deckPath := filepath.Join(dir, "Acme.pptx")
	decktest.Write(t, deckPath,
		decktest.Slide{Shapes: []decktest.Shape{{Name: "Title", Text: "Hello world"}}},
		decktest.Slide{Shapes: []decktest.Shape{{Name: "Empty", Text: ""}}},
	)

	out := filepath.Join(dir, "previews")
	paths, err := New(320).Render(deckPath, out)
	require.NoError(t, err)
	require.Equal(t, []string{ImagePath(out, deckPath, 1), ImagePath(out, deckPath, 2)}, paths)

	first := decodePNG(t, paths[0])
	// 9144000 x 5143500 EMU slide scaled to 320 wide
	assert.Equal(t, image.Rect(0, 0, 320, 180), first.Bounds())
	assert.Greater(t, countColor(first, rgba(colorFrame)), 0)
	assert.Greater(t, countColor(first, rgba(colorText)), 0)

	second := decodePNG(t, paths[1])
	assert.Greater(t, countColor(second, rgba(colorFrame)), 0)
	assert.Zero(t, countColor(second, rgba(colorText)))
}

func TestRenderDefaultWidth(t *testing.T) {
	dir := t.TempDir()
	deckPath := filepath.Join(dir, "d.pptx")
	decktest.Write(t, deckPath, decktest.Slide{})

	paths, err := (&Renderer{}).Render(deckPath, dir)
	require.NoError(t, err)
	require.Len(t, paths, 1)
	assert.Equal(t, DefaultWidth, decodePNG(t, paths[0]).Bounds().Dx())
}

func TestImagePath(t *testing.T) {
	assert.Equal(t, filepath.Join("out", "Acme-slide01.png"), ImagePath("out", "/tmp/x/Acme.pptx", 1))
	assert.Equal(t, filepath.Join("out", "a.b-slide12.png"), ImagePath("out", "a.b.pptx", 12))
}

func TestRenderUnreadableDeck(t *testing.T) {
	dir := t.TempDir()
	junk := filepath.Join(dir, "junk.pptx")
	require.NoError(t, os.WriteFile(junk, []byte("not a zip"), 0644))

	paths, err := New(320).Render(junk, filepath.Join(dir, "previews"))
	require.Error(t, err)
	assert.Empty(t, paths)
	assert.Equal(t, errors.ErrReadFailed, errors.CodeOf(err))
}

func TestRenderMissingDeck(t *testing.T) {
	r := &Renderer{}
	_, err := r.Render(filepath.Join(t.TempDir(), "none.pptx"), t.TempDir())
	require.Error(t, err)
	assert.Equal(t, errors.ErrReadFailed, errors.CodeOf(err))
}
