package stego

// Info describes the payload found in a carrier without exposing its text.
type Info struct {
	Framing      string
	Width        int
	Height       int
	Channels     int
	Slots        int
	UsedBits     int
	PayloadBytes int
	MaxBytes     int
	ValidUTF8    bool
}

// Utilization is the fraction of the carrier's slots taken by the framed payload.
func (i *Info) Utilization() float64 {
	if i.Slots == 0 {
		return 0
	}
	return float64(i.UsedBits) / float64(i.Slots)
}

// Inspect scans grid for a payload and reports its size.
func Inspect(grid *Grid, opts ...Option) (*Info, error) {
	o := buildOptions(opts)

	payload, used, err := scan(grid, o.framing)
	if err != nil {
		return nil, err
	}
	_, textErr := payloadText(payload)

	o.logger.Debug().Int("slots", used).Msg("Located end of payload")

	return &Info{
		Framing:      o.framing.Name(),
		Width:        grid.Width,
		Height:       grid.Height,
		Channels:     grid.Channels,
		Slots:        grid.Slots(),
		UsedBits:     used,
		PayloadBytes: len(payload),
		MaxBytes:     o.framing.MaxPayload(grid.Slots()),
		ValidUTF8:    textErr == nil,
	}, nil
}
