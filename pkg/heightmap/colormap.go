package heightmap

import (
	"image/color"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// ColorSource is a read-only per-cell color grid.
type ColorSource interface {
	// Size returns the grid dimensions in cells.
	Size() (w, h int)
	// At returns the stored sample at (x, y).
	At(x, y int) color.NRGBA
}

// Colormap assigns a color to each grid cell, independent of elevation.
//
// When linear is requested at load time, samples are gamma-decoded from sRGB
// to linear RGB before storage. Merging compares the stored bytes, so color
// equality is consistently evaluated in the post-linearization space.
type Colormap struct {
	w, h int
	data []color.NRGBA
}

// NewColormap decodes a single PNG/JPEG colormap. When linear is set, each
// sample is converted from sRGB to linear RGB; alpha passes through.
func NewColormap(path string, linear bool) (*Colormap, error) {
	img, err := decodeFile(path)
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	cm := &Colormap{
		w:    b.Dx(),
		h:    b.Dy(),
		data: make([]color.NRGBA, b.Dx()*b.Dy()),
	}
	for y := 0; y < cm.h; y++ {
		for x := 0; x < cm.w; x++ {
			r, g, bl, a := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			s := color.NRGBA{
				R: uint8(r >> 8),
				G: uint8(g >> 8),
				B: uint8(bl >> 8),
				A: uint8(a >> 8),
			}
			if linear {
				s = linearize(s)
			}
			cm.data[y*cm.w+x] = s
		}
	}
	return cm, nil
}

// linearize gamma-decodes an sRGB sample into linear RGB bytes.
func linearize(s color.NRGBA) color.NRGBA {
	c := colorful.Color{
		R: float64(s.R) / 255,
		G: float64(s.G) / 255,
		B: float64(s.B) / 255,
	}
	lr, lg, lb := c.LinearRgb()
	return color.NRGBA{
		R: uint8(clamp01(lr)*255 + 0.5),
		G: uint8(clamp01(lg)*255 + 0.5),
		B: uint8(clamp01(lb)*255 + 0.5),
		A: s.A,
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Size returns the grid dimensions in cells.
func (c *Colormap) Size() (int, int) { return c.w, c.h }

// At returns the stored sample at (x, y).
func (c *Colormap) At(x, y int) color.NRGBA { return c.data[y*c.w+x] }

// Uniform is a colormap of a single color, used when no colormap image is
// supplied.
type Uniform struct {
	w, h int
	c    color.NRGBA
}

// DefaultColor is the brick color used when no colormap is given.
var DefaultColor = color.NRGBA{R: 128, G: 128, B: 128, A: 255}

// NewUniform returns a single-color colormap of the given dimensions.
func NewUniform(w, h int, c color.NRGBA) *Uniform {
	return &Uniform{w: w, h: h, c: c}
}

// Size returns the grid dimensions in cells.
func (u *Uniform) Size() (int, int) { return u.w, u.h }

// At returns the uniform color for every cell.
func (u *Uniform) At(x, y int) color.NRGBA { return u.c }
