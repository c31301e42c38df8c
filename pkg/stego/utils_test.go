package stego

import (
	"bytes"
	"image/color"
	"testing"
)

func TestUint8BitManipulation(t *testing.T) {
	if got := setBitUint8(0, 2); got != 4 {
		t.Errorf("setBitUint8(0, 2) = %d; want 4", got)
	}

	if got := clearBitUint8(4, 2); got != 0 {
		t.Errorf("clearBitUint8(4, 2) = %d; want 0", got)
	}

	if got := getBitUint8(4, 2); got != 1 {
		t.Errorf("getBitUint8(4, 2) = %d; want 1", got)
	}
	if got := getBitUint8(4, 0); got != 0 {
		t.Errorf("getBitUint8(4, 0) = %d; want 0", got)
	}
}

func TestBytesToBitsMSBFirst(t *testing.T) {
	// 'H' = 0x48 = 0100 1000
	got := bytesToBits([]byte("H"))
	want := Bits{0, 1, 0, 0, 1, 0, 0, 0}
	if !bytes.Equal(got, want) {
		t.Fatalf("bytesToBits(H) = %v; want %v", got, want)
	}

	back, ok := bitsToBytes(got)
	if !ok || string(back) != "H" {
		t.Fatalf("bitsToBytes round trip = %q, %v", back, ok)
	}

	if _, ok := bitsToBytes(Bits{1, 0, 1}); ok {
		t.Error("bitsToBytes accepted a partial byte")
	}
}

func TestColorToChannels(t *testing.T) {
	got := colorToChannels(color.RGBA{R: 10, G: 20, B: 30, A: 255})
	want := []uint8{10, 20, 30, 255}
	if !bytes.Equal(got, want) {
		t.Errorf("colorToChannels = %v; want %v", got, want)
	}
}
