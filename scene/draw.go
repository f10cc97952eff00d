package scene

import (
	"image"
	"image/color"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

var regular *truetype.Font

// init sets up the fonts we want to use.
func init() {
	var err error
	regular, err = truetype.Parse(goregular.TTF)
	if err != nil {
		panic(err)
	}
}

// NewFace returns the label font at the given size in points.
func NewFace(size float64) font.Face {
	return truetype.NewFace(regular, &truetype.Options{Size: size})
}

// DrawString writes a string to the given context with its baseline starting at p.
func DrawString(dc *gg.Context, face font.Face, text string, p image.Point, c color.Color) {
	dc.SetFontFace(face)
	dc.SetColor(c)
	dc.DrawString(text, float64(p.X), float64(p.Y))
}
