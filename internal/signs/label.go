package signs

import (
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// LabelOptions controls how a town name is drawn.
type LabelOptions struct {
	Width    int
	Height   int
	Font     *opentype.Font
	FontSize float64 // In pixels
	Color    color.Color
}

// LoadFont parses a TrueType or OpenType font file.
func LoadFont(path string) (*opentype.Font, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading font")
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing font %s", path)
	}
	return f, nil
}

// DrawLabel renders text centred on a transparent image, wrapping at word
// boundaries when a line would be wider than the image.
func DrawLabel(text string, opts LabelOptions) (*image.RGBA, error) {
	if opts.Font == nil {
		return nil, errors.New("label font not set")
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, errors.Errorf("invalid label size %dx%d", opts.Width, opts.Height)
	}

	face, err := opentype.NewFace(opts.Font, &opentype.FaceOptions{
		Size:    opts.FontSize,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, errors.Wrap(err, "creating font face")
	}
	defer face.Close()

	col := opts.Color
	if col == nil {
		col = color.Black
	}

	img := image.NewRGBA(image.Rect(0, 0, opts.Width, opts.Height))
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: face,
	}

	width := fixed.I(opts.Width)
	lines := wrapWords(d, text, width)

	metrics := face.Metrics()
	lineHeight := metrics.Height
	top := (fixed.I(opts.Height) - lineHeight*fixed.Int26_6(len(lines))) / 2

	for i, line := range lines {
		advance := d.MeasureString(line)
		d.Dot = fixed.Point26_6{
			X: (width - advance) / 2,
			Y: top + metrics.Ascent + lineHeight*fixed.Int26_6(i),
		}
		d.DrawString(line)
	}

	return img, nil
}

// RenderLabel draws text and writes it as PNG.
func RenderLabel(w io.Writer, text string, opts LabelOptions) error {
	img, err := DrawLabel(text, opts)
	if err != nil {
		return err
	}
	return errors.Wrap(png.Encode(w, img), "encoding label")
}

// wrapWords splits text into lines no wider than width. A single word wider
// than width gets a line of its own.
func wrapWords(d *font.Drawer, text string, width fixed.Int26_6) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var lines []string
	line := words[0]
	for _, word := range words[1:] {
		candidate := line + " " + word
		if d.MeasureString(candidate) <= width {
			line = candidate
			continue
		}
		lines = append(lines, line)
		line = word
	}
	return append(lines, line)
}
