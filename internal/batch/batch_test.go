package batch

import (
	"context"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lsbmail/lsbmail/pkg/stego"
)

func writeImage(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = uint8(i % 251)
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func TestJobsFor(t *testing.T) {
	jobs := JobsFor([]string{"a/cat.jpg", "b/cat.png", "dog.bmp"}, "out")
	assert.Equal(t, []Job{
		{Input: "a/cat.jpg", Output: filepath.Join("out", "cat.png")},
		{Input: "b/cat.png", Output: filepath.Join("out", "cat_1.png")},
		{Input: "dog.bmp", Output: filepath.Join("out", "dog.png")},
	}, jobs)
}

func TestRun(t *testing.T) {
	inDir := t.TempDir()
	outDir := filepath.Join(t.TempDir(), "carriers")

	var inputs []string
	for _, name := range []string{"one.png", "two.png", "three.png", "four.png"} {
		path := filepath.Join(inDir, name)
		writeImage(t, path, 32, 24)
		inputs = append(inputs, path)
	}
	// Too small for the message: 2x2 RGB is 12 slots.
	tiny := filepath.Join(inDir, "tiny.png")
	writeImage(t, tiny, 2, 2)
	inputs = append(inputs, tiny)
	inputs = append(inputs, filepath.Join(inDir, "missing.png"))

	var done atomic.Int32
	r := &Runner{
		Workers:  2,
		Framing:  stego.Terminated,
		Channels: stego.RGB,
		Logger:   zerolog.Nop(),
		OnDone:   func(Result) { done.Add(1) },
	}

	message := "batch secret"
	results, err := r.Run(context.Background(), message, JobsFor(inputs, outDir))
	require.NoError(t, err)
	require.Len(t, results, len(inputs))
	assert.Equal(t, int32(len(inputs)), done.Load())
	assert.Equal(t, 2, Failed(results))

	for _, res := range results[:4] {
		require.NoError(t, res.Err, res.Input)
		grid, err := stego.LoadGrid(res.Output, stego.RGB)
		require.NoError(t, err)
		got, err := stego.Reveal(grid)
		require.NoError(t, err)
		assert.Equal(t, message, got)
		assert.Equal(t, 32*24*3, res.Slots)
	}

	assert.ErrorIs(t, results[4].Err, stego.ErrCapacityExceeded)
	assert.True(t, errors.Is(results[5].Err, os.ErrNotExist))
}

func TestRunRejectsBadMessage(t *testing.T) {
	r := &Runner{}
	_, err := r.Run(context.Background(), "", []Job{{Input: "x.png", Output: "y.png"}})
	assert.ErrorIs(t, err, stego.ErrEmptyPayload)
}

func TestRunCancelled(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "in.png")
	writeImage(t, path, 8, 8)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := &Runner{Workers: 1}
	_, err := r.Run(ctx, "hello", JobsFor([]string{path, path}, dir))
	assert.ErrorIs(t, err, context.Canceled)
}
