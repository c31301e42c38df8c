package stego

import (
	"fmt"

	"github.com/rs/zerolog"
)

type options struct {
	framing Framing
	logger  zerolog.Logger
}

// Option configures Hide, Reveal and Inspect.
type Option func(*options)

// WithFraming selects how the payload is delimited inside the carrier.
func WithFraming(f Framing) Option {
	return func(o *options) {
		if f != nil {
			o.framing = f
		}
	}
}

// WithLogger routes debug output to logger. The default discards it.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func buildOptions(opts []Option) options {
	o := options{framing: DefaultFraming, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Capacity is the number of payload bits a width x height image with the
// given channel count can carry.
func Capacity(width, height, channels int) int {
	if width <= 0 || height <= 0 || channels <= 0 {
		return 0
	}
	return width * height * channels
}

// Embed returns a copy of grid whose first len(bits) slots, in carrier order,
// have their least significant bit replaced by the payload bits. Every other
// bit of the grid is left as it was.
func Embed(grid *Grid, bits Bits) (*Grid, error) {
	if err := grid.validate(); err != nil {
		return nil, err
	}
	if slots := grid.Slots(); len(bits) > slots {
		return nil, fmt.Errorf("%w: need %d bits, carrier has %d slots", ErrCapacityExceeded, len(bits), slots)
	}

	out := grid.Clone()
	c := newCursor(out.Width, out.Height, out.Channels)
	for _, bit := range bits {
		off, _ := c.next()
		if bit&1 == 0 {
			out.Pix[off] = clearBitUint8(out.Pix[off], 0)
		} else {
			out.Pix[off] = setBitUint8(out.Pix[off], 0)
		}
	}
	return out, nil
}

// Extract reads least significant bits in carrier order until f recognizes
// the end of a payload, and returns the payload bits without framing.
func Extract(grid *Grid, f Framing) (Bits, error) {
	payload, _, err := scan(grid, f)
	if err != nil {
		return nil, err
	}
	return bytesToBits(payload), nil
}

// scan drives f's scanner over the grid and returns the payload bytes and
// the number of slots consumed.
func scan(grid *Grid, f Framing) ([]byte, int, error) {
	if err := grid.validate(); err != nil {
		return nil, 0, err
	}
	if f == nil {
		f = DefaultFraming
	}

	sc := f.NewScanner()
	c := newCursor(grid.Width, grid.Height, grid.Channels)
	for {
		off, ok := c.next()
		if !ok {
			return nil, c.visited, fmt.Errorf("%w: scanned all %d slots without reaching the end of a payload", ErrNoPayloadFound, c.visited)
		}
		state, err := sc.Push(getBitUint8(grid.Pix[off], 0))
		if err != nil {
			return nil, c.visited, err
		}
		if state == ScanFound {
			return sc.Payload(), c.visited, nil
		}
	}
}

// Hide frames text and embeds it into a copy of grid.
func Hide(grid *Grid, text string, opts ...Option) (*Grid, error) {
	o := buildOptions(opts)

	bits, err := o.framing.Encode([]byte(text))
	if err != nil {
		return nil, err
	}

	if err := grid.validate(); err != nil {
		return nil, err
	}
	o.logger.Debug().
		Int("width", grid.Width).
		Int("height", grid.Height).
		Int("channels", grid.Channels).
		Msg("Image dimensions")
	o.logger.Debug().Int("available", grid.Slots()).Msg("Total bits available for use")
	o.logger.Debug().Int("required", len(bits)).Str("framing", o.framing.Name()).Msg("Total bits to be written")

	out, err := Embed(grid, bits)
	if err != nil {
		return nil, err
	}
	o.logger.Debug().Msg("Encoded message into the image")
	return out, nil
}

// Reveal extracts and decodes the text hidden in grid.
func Reveal(grid *Grid, opts ...Option) (string, error) {
	o := buildOptions(opts)

	payload, used, err := scan(grid, o.framing)
	if err != nil {
		return "", err
	}
	o.logger.Debug().
		Int("slots", used).
		Int("bytes", len(payload)).
		Str("framing", o.framing.Name()).
		Msg("Recovered payload")

	return payloadText(payload)
}
