package scene

import (
	"image/color"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"
)

// single letter color codes as used by common plotting tools
var shortColors = map[string]string{
	"k": "#000000",
	"w": "#ffffff",
	"r": "#ff0000",
	"g": "#008000",
	"b": "#0000ff",
	"c": "#00bfbf",
	"m": "#bf00bf",
	"y": "#bfbf00",
}

// ParseColor accepts a hex string ("#rrggbb") or a single letter code such as "k" or "r".
func ParseColor(s string) (color.Color, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if hex, ok := shortColors[s]; ok {
		s = hex
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid color %q", s)
	}
	return c.Clamped(), nil
}

// Palette returns n colors with evenly spaced hues. The same n always yields the same colors.
func Palette(n int) []color.Color {
	out := make([]color.Color, n)
	for i := range out {
		out[i] = colorful.Hsv(360*float64(i)/float64(max(n, 1)), 0.65, 0.85).Clamped()
	}
	return out
}

// straight returns the non premultiplied channels of c in [0, 1].
func straight(c color.Color) (r, g, b float64) {
	cc, ok := colorful.MakeColor(c)
	if !ok {
		return 0, 0, 0
	}
	return cc.R, cc.G, cc.B
}
