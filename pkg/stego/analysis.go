package stego

import (
	"fmt"
	"image"
	"image/color"
	"math"
)

// AnalysisResult holds metrics about the comparison between two grids.
type AnalysisResult struct {
	MSE             float64 // Mean Squared Error
	PSNR            float64 // Peak Signal-to-Noise Ratio (dB)
	ChangedChannels int
	ChangedPixels   int
	MaxDelta        int
	// LastChanged is the carrier-order slot index of the last modified
	// channel, or -1 when nothing changed.
	LastChanged int
	Heatmap     *image.NRGBA
}

// Analyze compares an original grid with a carrier produced from it and
// builds a difference heatmap.
func Analyze(original, carrier *Grid) (*AnalysisResult, error) {
	if err := original.validate(); err != nil {
		return nil, err
	}
	if err := carrier.validate(); err != nil {
		return nil, err
	}
	if original.Width != carrier.Width || original.Height != carrier.Height || original.Channels != carrier.Channels {
		return nil, fmt.Errorf("%w: %dx%dx%d vs %dx%dx%d", ErrInvalidGrid,
			original.Width, original.Height, original.Channels,
			carrier.Width, carrier.Height, carrier.Channels)
	}

	result := &AnalysisResult{
		LastChanged: -1,
		Heatmap:     image.NewNRGBA(image.Rect(0, 0, original.Width, original.Height)),
	}
	var sumSquaredError float64

	for y := 0; y < original.Height; y++ {
		for x := 0; x < original.Width; x++ {
			off := original.offset(x, y)
			var diffSum float64
			isModified := false

			for i := 0; i < original.Channels; i++ {
				diff := int(original.Pix[off+i]) - int(carrier.Pix[off+i])
				sumSquaredError += float64(diff * diff)
				if diff != 0 {
					isModified = true
					result.ChangedChannels++
					result.LastChanged = off + i
					if d := abs(diff); d > result.MaxDelta {
						result.MaxDelta = d
					}
					diffSum += math.Abs(float64(diff))
				}
			}

			// Black = No change, Green = Slight change, Red = Major change
			if isModified {
				result.ChangedPixels++
				intensity := uint8(math.Min(255, diffSum*50))
				result.Heatmap.SetNRGBA(x, y, color.NRGBA{R: intensity, G: 255 - intensity, B: 0, A: 255})
			} else {
				result.Heatmap.SetNRGBA(x, y, color.NRGBA{R: 0, G: 0, B: 0, A: 255})
			}
		}
	}

	samples := float64(len(original.Pix))
	if samples > 0 {
		result.MSE = sumSquaredError / samples
	}
	result.PSNR = 10 * math.Log10((255*255)/result.MSE)

	return result, nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
