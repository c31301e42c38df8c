package stego

import (
	"bytes"
	"errors"
	"testing"

	"github.com/rs/zerolog"
)

func TestInspect(t *testing.T) {
	tests := []struct {
		name     string
		framing  Framing
		channels int
	}{
		{"Terminated RGB", Terminated, RGB},
		{"Terminated RGBA", Terminated, RGBA},
		{"Length RGB", LengthPrefixed, RGB},
	}

	message := "Test Metadata Analysis"

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			grid := patternGrid(t, 64, 64, tt.channels)
			carrier, err := Hide(grid, message, WithFraming(tt.framing))
			if err != nil {
				t.Fatalf("Hide failed: %v", err)
			}

			info, err := Inspect(carrier, WithFraming(tt.framing))
			if err != nil {
				t.Fatalf("Inspect failed: %v", err)
			}

			if info.Framing != tt.framing.Name() {
				t.Errorf("Framing mismatch: got %s, want %s", info.Framing, tt.framing.Name())
			}
			if info.Channels != tt.channels {
				t.Errorf("Channels mismatch: got %d, want %d", info.Channels, tt.channels)
			}
			if info.PayloadBytes != len(message) {
				t.Errorf("PayloadBytes = %d, want %d", info.PayloadBytes, len(message))
			}
			if want := tt.framing.RequiredBits(len(message)); info.UsedBits != want {
				t.Errorf("UsedBits = %d, want %d", info.UsedBits, want)
			}
			if info.Slots != 64*64*tt.channels {
				t.Errorf("Slots = %d, want %d", info.Slots, 64*64*tt.channels)
			}
			if !info.ValidUTF8 {
				t.Error("ValidUTF8 = false for a text payload")
			}
			if u := info.Utilization(); u <= 0 || u >= 1 {
				t.Errorf("Utilization = %f, want within (0, 1)", u)
			}
		})
	}
}

func TestInspectForeignImage(t *testing.T) {
	grid, _ := NewGrid(8, 8, RGB)
	if _, err := Inspect(grid); !errors.Is(err, ErrNoPayloadFound) {
		t.Errorf("Inspect error = %v, want ErrNoPayloadFound", err)
	}
}

func TestHideLogsDebugFields(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)

	grid := patternGrid(t, 10, 10, RGB)
	if _, err := Hide(grid, "HI", WithLogger(logger)); err != nil {
		t.Fatalf("Hide failed: %v", err)
	}
	if !bytes.Contains(buf.Bytes(), []byte(`"required":24`)) {
		t.Errorf("debug log missing required bit count: %s", buf.String())
	}
}
