package stego

import (
	"bytes"
	"fmt"
	"strconv"
	"unicode/utf8"
)

// Bits is a payload bit sequence, one 0 or 1 per element.
type Bits []uint8

// Terminator marks the end of a payload under the Terminated framing.
const Terminator byte = 0x00

const (
	lengthSeparator = ':'
	maxLengthDigits = 12
)

// ScanState is the state of an incremental payload scan.
type ScanState int

const (
	ScanStart ScanState = iota
	ScanScanning
	ScanFound
	ScanExhausted
)

func (s ScanState) String() string {
	switch s {
	case ScanStart:
		return "start"
	case ScanScanning:
		return "scanning"
	case ScanFound:
		return "found"
	case ScanExhausted:
		return "exhausted"
	}
	return "unknown"
}

// Framing turns a payload into a self-delimiting bit sequence and recognizes
// the end of one while bits are streamed in.
type Framing interface {
	Name() string
	Encode(payload []byte) (Bits, error)
	NewScanner() Scanner
	// RequiredBits is the framed size of an n-byte payload.
	RequiredBits(n int) int
	// MaxPayload is the largest payload, in bytes, that fits in slots bits.
	MaxPayload(slots int) int
}

// Scanner consumes bits one at a time. Once Push reports ScanFound, Payload
// holds the recovered bytes without any framing.
type Scanner interface {
	Push(bit uint8) (ScanState, error)
	Payload() []byte
}

var (
	// Terminated appends a single NUL byte after the payload.
	Terminated Framing = terminated{}
	// LengthPrefixed writes "<decimal length>:" before the payload.
	LengthPrefixed Framing = lengthPrefixed{}
)

// DefaultFraming is used when no framing is configured.
var DefaultFraming = Terminated

// FramingByName resolves a framing from its configuration name. The empty
// string selects DefaultFraming.
func FramingByName(name string) (Framing, error) {
	switch name {
	case "":
		return DefaultFraming, nil
	case Terminated.Name():
		return Terminated, nil
	case LengthPrefixed.Name():
		return LengthPrefixed, nil
	}
	return nil, fmt.Errorf("unknown framing %q (want %q or %q)", name, Terminated.Name(), LengthPrefixed.Name())
}

// Encode frames text with DefaultFraming.
func Encode(text string) (Bits, error) {
	return DefaultFraming.Encode([]byte(text))
}

// Decode recovers text from a bit sequence framed with DefaultFraming.
func Decode(bits Bits) (string, error) {
	return DecodeWith(DefaultFraming, bits)
}

// DecodeWith recovers text from a framed bit sequence. Bits after the end of
// the payload are ignored.
func DecodeWith(f Framing, bits Bits) (string, error) {
	sc := f.NewScanner()
	for _, bit := range bits {
		state, err := sc.Push(bit)
		if err != nil {
			return "", err
		}
		if state == ScanFound {
			return payloadText(sc.Payload())
		}
	}
	return "", fmt.Errorf("%w: end of payload not found in %d bits", ErrMalformedPayload, len(bits))
}

func payloadText(payload []byte) (string, error) {
	if !utf8.Valid(payload) {
		return "", fmt.Errorf("%w: recovered %d bytes are not valid UTF-8", ErrMalformedPayload, len(payload))
	}
	return string(payload), nil
}

// byteAssembler packs MSB-first bits into bytes.
type byteAssembler struct {
	cur byte
	n   int
}

func (a *byteAssembler) push(bit uint8) (byte, bool) {
	a.cur = a.cur<<1 | bit&1
	a.n++
	if a.n < 8 {
		return 0, false
	}
	b := a.cur
	a.cur, a.n = 0, 0
	return b, true
}

type terminated struct{}

func (terminated) Name() string { return "nul" }

func (terminated) Encode(payload []byte) (Bits, error) {
	if len(payload) == 0 {
		return nil, ErrEmptyPayload
	}
	if !utf8.Valid(payload) {
		return nil, fmt.Errorf("%w: not valid UTF-8", ErrInvalidPayload)
	}
	if i := bytes.IndexByte(payload, Terminator); i >= 0 {
		return nil, fmt.Errorf("%w: NUL byte at offset %d", ErrInvalidPayload, i)
	}
	framed := make([]byte, 0, len(payload)+1)
	framed = append(framed, payload...)
	framed = append(framed, Terminator)
	return bytesToBits(framed), nil
}

func (terminated) NewScanner() Scanner { return &terminatedScanner{} }

func (terminated) RequiredBits(n int) int { return (n + 1) * 8 }

func (terminated) MaxPayload(slots int) int {
	if n := slots/8 - 1; n > 0 {
		return n
	}
	return 0
}

type terminatedScanner struct {
	asm     byteAssembler
	payload []byte
}

func (s *terminatedScanner) Push(bit uint8) (ScanState, error) {
	b, ok := s.asm.push(bit)
	if !ok {
		return ScanScanning, nil
	}
	if b != Terminator {
		s.payload = append(s.payload, b)
		return ScanScanning, nil
	}
	if len(s.payload) == 0 {
		// An all-zero LSB plane looks like this; nothing was hidden.
		return ScanFound, fmt.Errorf("%w: terminator at first byte", ErrNoPayloadFound)
	}
	return ScanFound, nil
}

func (s *terminatedScanner) Payload() []byte { return s.payload }

type lengthPrefixed struct{}

func (lengthPrefixed) Name() string { return "length" }

func (lengthPrefixed) Encode(payload []byte) (Bits, error) {
	if !utf8.Valid(payload) {
		return nil, fmt.Errorf("%w: not valid UTF-8", ErrInvalidPayload)
	}
	prefix := strconv.Itoa(len(payload))
	framed := make([]byte, 0, len(prefix)+1+len(payload))
	framed = append(framed, prefix...)
	framed = append(framed, lengthSeparator)
	framed = append(framed, payload...)
	return bytesToBits(framed), nil
}

func (lengthPrefixed) NewScanner() Scanner { return &lengthScanner{length: -1} }

func (lengthPrefixed) RequiredBits(n int) int {
	return (len(strconv.Itoa(n)) + 1 + n) * 8
}

func (lengthPrefixed) MaxPayload(slots int) int {
	bytesAvail := slots / 8
	best := 0
	lo, hi := 0, 9
	for digits := 1; digits <= maxLengthDigits; digits++ {
		n := bytesAvail - digits - 1
		if n > hi {
			n = hi
		}
		if n >= lo && n > best {
			best = n
		}
		if hi >= bytesAvail {
			break
		}
		lo, hi = hi+1, hi*10+9
	}
	return best
}

type lengthScanner struct {
	asm     byteAssembler
	digits  []byte
	length  int
	payload []byte
}

func (s *lengthScanner) Push(bit uint8) (ScanState, error) {
	if s.length == 0 {
		return ScanFound, nil
	}
	b, ok := s.asm.push(bit)
	if !ok {
		return ScanScanning, nil
	}

	if s.length > 0 {
		s.payload = append(s.payload, b)
		if len(s.payload) == s.length {
			return ScanFound, nil
		}
		return ScanScanning, nil
	}

	switch {
	case b >= '0' && b <= '9':
		if len(s.digits) == maxLengthDigits {
			return ScanScanning, fmt.Errorf("%w: length prefix longer than %d digits", ErrMalformedPayload, maxLengthDigits)
		}
		s.digits = append(s.digits, b)
		return ScanScanning, nil
	case b == lengthSeparator && len(s.digits) > 0:
		n, err := strconv.Atoi(string(s.digits))
		if err != nil {
			return ScanScanning, fmt.Errorf("%w: length prefix %q: %v", ErrMalformedPayload, s.digits, err)
		}
		s.length = n
		if n == 0 {
			return ScanFound, nil
		}
		return ScanScanning, nil
	}
	return ScanScanning, fmt.Errorf("%w: unexpected byte 0x%02x in length prefix", ErrMalformedPayload, b)
}

func (s *lengthScanner) Payload() []byte { return s.payload }
