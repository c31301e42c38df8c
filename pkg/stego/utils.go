package stego

import (
	"image/color"
)

func colorToChannels(c color.Color) []uint8 {
	colorNRGBA := color.NRGBAModel.Convert(c).(color.NRGBA)
	return []uint8{colorNRGBA.R, colorNRGBA.G, colorNRGBA.B, colorNRGBA.A}
}

func getBitUint8(num uint8, index int) uint8 {
	mask := uint8(1 << index)
	if num&mask == 0 {
		return 0
	}
	return 1
}

func setBitUint8(num uint8, index int) uint8 {
	mask := uint8(1 << index)
	return num | mask
}

func clearBitUint8(num uint8, index int) uint8 {
	mask := uint8(^(1 << index))
	return num & mask
}

// bytesToBits expands data into one bit per element, most significant bit first.
func bytesToBits(data []byte) Bits {
	bits := make(Bits, 0, len(data)*8)
	for _, b := range data {
		for i := 7; i >= 0; i-- {
			bits = append(bits, getBitUint8(b, i))
		}
	}
	return bits
}

// bitsToBytes packs bits back into bytes. len(bits) must be a multiple of 8.
func bitsToBytes(bits Bits) ([]byte, bool) {
	if len(bits)%8 != 0 {
		return nil, false
	}
	out := make([]byte, len(bits)/8)
	for i, bit := range bits {
		if bit&1 == 1 {
			out[i/8] = setBitUint8(out[i/8], 7-i%8)
		}
	}
	return out, true
}
