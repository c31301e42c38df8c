package shell

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/color/palette"
	"image/gif"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeGIF(t *testing.T, path string, delays []int) {
	t.Helper()
	anim := &gif.GIF{Config: image.Config{Width: 16, Height: 12}}
	for i, d := range delays {
		frame := image.NewPaletted(image.Rect(0, 0, 16, 12), palette.Plan9)
		idx := uint8(i*40 + 10)
		for p := range frame.Pix {
			frame.Pix[p] = idx
		}
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, d)
		anim.Disposal = append(anim.Disposal, gif.DisposalNone)
	}

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, gif.EncodeAll(f, anim))
}

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = uint8(i % 255)
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func TestLoadAnimation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "background.gif")
	writeGIF(t, path, []int{5, 0, 20})

	anim, err := LoadAnimation(path, 90, 65)
	require.NoError(t, err)
	require.Len(t, anim.Frames, 3)

	assert.Equal(t, image.Pt(90, 65), anim.Size())
	for _, f := range anim.Frames {
		assert.Equal(t, image.Rect(0, 0, 90, 65), f.Image.Bounds())
	}
	assert.Equal(t, 50*time.Millisecond, anim.Frames[0].Delay)
	assert.Equal(t, DefaultDelay, anim.Frames[1].Delay)
	assert.Equal(t, 200*time.Millisecond, anim.Frames[2].Delay)

	assert.NotEqual(t, anim.Frames[0].Image.Pix, anim.Frames[2].Image.Pix, "frames should differ")
}

func TestLoadAnimationStillImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "background.png")
	writePNG(t, path, 40, 30)

	anim, err := LoadAnimation(path, 20, 15)
	require.NoError(t, err)
	require.Len(t, anim.Frames, 1)
	assert.Equal(t, image.Pt(20, 15), anim.Size())
}

func TestLoadStill(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hello.png")
	writePNG(t, path, 100, 80)

	img, err := LoadStill(path, 62, 56)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 62, 56), img.Bounds())

	_, err = LoadStill(path, 0, 56)
	assert.Error(t, err)
}

func TestLoadFallsBackToBlank(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	assets := Load(Options{
		Background: filepath.Join(t.TempDir(), "missing.gif"),
		Foreground: "",
		Window:     image.Pt(9, 6),
		Panel:      image.Pt(4, 3),
	}, logger)

	assert.True(t, assets.Fallback)
	require.Len(t, assets.Background.Frames, 1)
	assert.Equal(t, image.Pt(9, 6), assets.Background.Size())
	assert.Equal(t, image.Rect(0, 0, 4, 3), assets.Foreground.Bounds())
	assert.Equal(t, color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}, assets.Foreground.NRGBAAt(1, 1))

	assert.Contains(t, buf.String(), "Background asset unavailable")
	assert.Contains(t, buf.String(), "Foreground asset unavailable")
}

func TestLoadAssets(t *testing.T) {
	dir := t.TempDir()
	bg := filepath.Join(dir, "background.gif")
	fg := filepath.Join(dir, "hello.png")
	writeGIF(t, bg, []int{1, 1})
	writePNG(t, fg, 30, 30)

	assets := Load(Options{Background: bg, Foreground: fg, Window: image.Pt(18, 13), Panel: image.Pt(12, 11)}, zerolog.Nop())

	assert.False(t, assets.Fallback)
	assert.Len(t, assets.Background.Frames, 2)
	assert.Equal(t, image.Rect(0, 0, 12, 11), assets.Foreground.Bounds())
}

func TestAnimatorCycles(t *testing.T) {
	frames := make([]Frame, 3)
	for i := range frames {
		frames[i] = Frame{Image: BlankFrame(2, 2), Delay: time.Millisecond}
	}
	a := NewAnimator(&Animation{Frames: frames})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := a.Run(ctx)

	var got []int
	for len(got) < 7 {
		select {
		case idx := <-ch:
			got = append(got, idx)
		case <-time.After(2 * time.Second):
			t.Fatalf("animator stalled after %v", got)
		}
	}
	assert.Equal(t, []int{0, 1, 2, 0, 1, 2, 0}, got)

	cancel()
	assertClosed(t, ch)
}

func TestAnimatorSingleFrame(t *testing.T) {
	a := NewAnimator(&Animation{Frames: []Frame{{Image: BlankFrame(1, 1)}}})
	assert.Equal(t, 1, a.Len())
	assert.NotNil(t, a.Frame(5))

	ctx, cancel := context.WithCancel(context.Background())
	ch := a.Run(ctx)

	select {
	case idx := <-ch:
		assert.Equal(t, 0, idx)
	case <-time.After(2 * time.Second):
		t.Fatal("animator did not publish the first frame")
	}

	cancel()
	assertClosed(t, ch)
}

func TestAnimatorEmpty(t *testing.T) {
	a := NewAnimator(nil)
	assert.Nil(t, a.Frame(0))

	ctx, cancel := context.WithCancel(context.Background())
	ch := a.Run(ctx)
	cancel()
	assertClosed(t, ch)
}

func assertClosed(t *testing.T, ch <-chan int) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("animator channel was not closed after cancel")
		}
	}
}
