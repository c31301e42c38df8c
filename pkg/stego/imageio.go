package stego

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"os"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// carrierEncoder writes carriers. PNG is lossless at every compression level.
var carrierEncoder = png.Encoder{CompressionLevel: png.BestCompression}

// LoadGrid decodes the image at path into a grid.
func LoadGrid(path string, channels int) (*Grid, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return DecodeGrid(file, channels)
}

// DecodeGrid decodes any registered image format (PNG, JPEG, GIF, BMP, TIFF,
// WebP) from r into a grid. Animated GIFs contribute their first frame.
func DecodeGrid(r io.Reader, channels int) (*Grid, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecodeImage, err)
	}
	return GridFromImage(img, channels)
}

// SaveGrid writes grid to path as a PNG.
func SaveGrid(path string, grid *Grid) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := EncodeGrid(file, grid); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// EncodeGrid writes grid to w as a PNG.
func EncodeGrid(w io.Writer, grid *Grid) error {
	if err := grid.validate(); err != nil {
		return err
	}
	return carrierEncoder.Encode(w, grid.Image())
}
