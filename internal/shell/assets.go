// Package shell loads the presentation assets of the interactive front end:
// an animated background that fills the window and a still foreground image
// for the centred panel. It knows nothing about the codec.
package shell

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/gift"
	"github.com/rs/zerolog"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// DefaultDelay is used for frames that do not specify one.
const DefaultDelay = 100 * time.Millisecond

// Blank is the colour of the frame shown when an asset cannot be loaded.
var Blank = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}

type Frame struct {
	Image *image.NRGBA
	Delay time.Duration
}

// Animation is a decoded, resized frame sequence.
type Animation struct {
	Frames []Frame
}

// Size is the pixel size of every frame, or zero for an empty animation.
func (a *Animation) Size() image.Point {
	if a == nil || len(a.Frames) == 0 {
		return image.Point{}
	}
	return a.Frames[0].Image.Bounds().Size()
}

// Options names the assets and the sizes they are scaled to.
type Options struct {
	Background string
	Foreground string
	Window     image.Point
	Panel      image.Point
}

type Assets struct {
	Background *Animation
	Foreground *image.NRGBA
	// Fallback is set when at least one asset was replaced by a blank frame.
	Fallback bool
}

// Load reads both assets. It never fails: an asset that is not configured or
// cannot be decoded is replaced by a blank frame and a warning is logged.
func Load(opts Options, logger zerolog.Logger) *Assets {
	assets := &Assets{}

	bg, err := LoadAnimation(opts.Background, opts.Window.X, opts.Window.Y)
	if err != nil {
		logger.Warn().Err(err).Str("path", opts.Background).Msg("Background asset unavailable, using blank frame")
		bg = &Animation{Frames: []Frame{{Image: BlankFrame(opts.Window.X, opts.Window.Y), Delay: DefaultDelay}}}
		assets.Fallback = true
	} else {
		logger.Debug().
			Str("path", opts.Background).
			Int("frames", len(bg.Frames)).
			Int("width", opts.Window.X).
			Int("height", opts.Window.Y).
			Msg("Loaded background")
	}
	assets.Background = bg

	fg, err := LoadStill(opts.Foreground, opts.Panel.X, opts.Panel.Y)
	if err != nil {
		logger.Warn().Err(err).Str("path", opts.Foreground).Msg("Foreground asset unavailable, using blank frame")
		fg = BlankFrame(opts.Panel.X, opts.Panel.Y)
		assets.Fallback = true
	}
	assets.Foreground = fg

	return assets
}

// LoadAnimation decodes every frame of a GIF and scales it to width x height.
// Any other image format yields a single frame.
func LoadAnimation(path string, width, height int) (*Animation, error) {
	if err := checkSize(width, height); err != nil {
		return nil, err
	}
	if path == "" {
		return nil, fmt.Errorf("no asset configured")
	}
	if !strings.EqualFold(filepath.Ext(path), ".gif") {
		img, err := LoadStill(path, width, height)
		if err != nil {
			return nil, err
		}
		return &Animation{Frames: []Frame{{Image: img, Delay: DefaultDelay}}}, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	g, err := gif.DecodeAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	if len(g.Image) == 0 {
		return nil, fmt.Errorf("%s has no frames", path)
	}

	frames, err := compose(g, width, height)
	if err != nil {
		return nil, err
	}
	return &Animation{Frames: frames}, nil
}

// compose replays the GIF's frames onto a logical screen, honouring each
// frame's disposal method, and returns resized snapshots.
func compose(g *gif.GIF, width, height int) ([]Frame, error) {
	screen := image.Rect(0, 0, g.Config.Width, g.Config.Height)
	if screen.Empty() {
		screen = g.Image[0].Bounds()
	}
	canvas := image.NewNRGBA(screen)
	resize := gift.New(gift.Resize(width, height, gift.LanczosResampling))

	frames := make([]Frame, 0, len(g.Image))
	for i, pm := range g.Image {
		var previous *image.NRGBA
		disposal := byte(gif.DisposalNone)
		if i < len(g.Disposal) {
			disposal = g.Disposal[i]
		}
		if disposal == gif.DisposalPrevious {
			previous = cloneNRGBA(canvas)
		}

		draw.Draw(canvas, pm.Bounds(), pm, pm.Bounds().Min, draw.Over)

		dst := image.NewNRGBA(resize.Bounds(canvas.Bounds()))
		resize.Draw(dst, canvas)

		delay := DefaultDelay
		if i < len(g.Delay) && g.Delay[i] > 0 {
			delay = time.Duration(g.Delay[i]) * 10 * time.Millisecond
		}
		frames = append(frames, Frame{Image: dst, Delay: delay})

		switch disposal {
		case gif.DisposalBackground:
			draw.Draw(canvas, pm.Bounds(), image.Transparent, image.Point{}, draw.Src)
		case gif.DisposalPrevious:
			canvas = previous
		}
	}
	return frames, nil
}

// LoadStill decodes a single image and scales it to width x height.
func LoadStill(path string, width, height int) (*image.NRGBA, error) {
	if err := checkSize(width, height); err != nil {
		return nil, err
	}
	if path == "" {
		return nil, fmt.Errorf("no asset configured")
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	g := gift.New(gift.Resize(width, height, gift.LanczosResampling))
	dst := image.NewNRGBA(g.Bounds(img.Bounds()))
	g.Draw(dst, img)
	return dst, nil
}

// BlankFrame is a width x height image filled with Blank.
func BlankFrame(width, height int) *image.NRGBA {
	if width <= 0 {
		width = 1
	}
	if height <= 0 {
		height = 1
	}
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: Blank}, image.Point{}, draw.Src)
	return img
}

func checkSize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid target size %dx%d", width, height)
	}
	return nil
}

func cloneNRGBA(src *image.NRGBA) *image.NRGBA {
	dst := image.NewNRGBA(src.Rect)
	copy(dst.Pix, src.Pix)
	return dst
}
