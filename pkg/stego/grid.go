package stego

import (
	"fmt"
	"image"
	"image/color"
)

const (
	// RGB grids carry three channels per pixel; alpha is dropped on input.
	RGB = 3
	// RGBA grids carry four channels per pixel.
	RGBA = 4
)

// Grid is a decoded image: Width*Height pixels stored row-major, each pixel
// Channels consecutive bytes in R, G, B[, A] order.
type Grid struct {
	Width    int
	Height   int
	Channels int
	Pix      []uint8
}

// NewGrid allocates a zeroed grid.
func NewGrid(width, height, channels int) (*Grid, error) {
	g := &Grid{Width: width, Height: height, Channels: channels}
	if width < 0 || height < 0 {
		return nil, fmt.Errorf("%w: negative dimensions %dx%d", ErrInvalidGrid, width, height)
	}
	if err := checkChannels(channels); err != nil {
		return nil, err
	}
	g.Pix = make([]uint8, width*height*channels)
	return g, nil
}

// GridFromImage copies img into a grid with the given channel layout.
func GridFromImage(img image.Image, channels int) (*Grid, error) {
	bounds := img.Bounds()
	g, err := NewGrid(bounds.Dx(), bounds.Dy(), channels)
	if err != nil {
		return nil, err
	}

	// Fast path for the decoder's most common output.
	if nrgba, ok := img.(*image.NRGBA); ok {
		for y := 0; y < g.Height; y++ {
			row := nrgba.Pix[nrgba.PixOffset(bounds.Min.X, bounds.Min.Y+y):]
			for x := 0; x < g.Width; x++ {
				copy(g.Pix[g.offset(x, y):g.offset(x, y)+channels], row[x*4:x*4+channels])
			}
		}
		return g, nil
	}

	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			channelValues := colorToChannels(img.At(bounds.Min.X+x, bounds.Min.Y+y))
			copy(g.Pix[g.offset(x, y):], channelValues[:channels])
		}
	}
	return g, nil
}

// Image returns the grid as an NRGBA image. RGB grids come back fully opaque.
func (g *Grid) Image() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, g.Width, g.Height))
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			p := g.Pix[g.offset(x, y):]
			c := color.NRGBA{R: p[0], G: p[1], B: p[2], A: 255}
			if g.Channels == RGBA {
				c.A = p[3]
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

// Clone returns a deep copy.
func (g *Grid) Clone() *Grid {
	out := *g
	out.Pix = make([]uint8, len(g.Pix))
	copy(out.Pix, g.Pix)
	return &out
}

// Slots is the number of least-significant bits the grid can carry.
func (g *Grid) Slots() int {
	return Capacity(g.Width, g.Height, g.Channels)
}

// At returns the channel values of the pixel at (x, y).
func (g *Grid) At(x, y int) []uint8 {
	off := g.offset(x, y)
	return g.Pix[off : off+g.Channels]
}

func (g *Grid) offset(x, y int) int {
	return (y*g.Width + x) * g.Channels
}

func (g *Grid) validate() error {
	if g == nil {
		return fmt.Errorf("%w: nil grid", ErrInvalidGrid)
	}
	if err := checkChannels(g.Channels); err != nil {
		return err
	}
	if g.Width < 0 || g.Height < 0 || len(g.Pix) != g.Width*g.Height*g.Channels {
		return fmt.Errorf("%w: %dx%dx%d does not match %d bytes", ErrInvalidGrid, g.Width, g.Height, g.Channels, len(g.Pix))
	}
	return nil
}

func checkChannels(channels int) error {
	if channels != RGB && channels != RGBA {
		return fmt.Errorf("%w: channels must be 3 or 4, got %d", ErrInvalidGrid, channels)
	}
	return nil
}
