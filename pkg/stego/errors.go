package stego

import "errors"

var (
	// ErrEmptyPayload is returned when the framing cannot represent an empty message.
	ErrEmptyPayload = errors.New("message is empty")

	// ErrInvalidPayload is returned when the message cannot be framed, e.g. it
	// contains the terminator byte or is not valid UTF-8.
	ErrInvalidPayload = errors.New("message cannot be encoded")

	// ErrCapacityExceeded is returned when the carrier has fewer slots than the
	// framed message needs.
	ErrCapacityExceeded = errors.New("image is not large enough to hide the message")

	// ErrMalformedPayload is returned when recovered bits do not form a valid
	// framed message.
	ErrMalformedPayload = errors.New("malformed payload")

	// ErrNoPayloadFound is returned when the carrier ran out of slots before the
	// end of a payload was recognized.
	ErrNoPayloadFound = errors.New("no hidden message found")

	// ErrInvalidGrid is returned for grids whose dimensions and pixel buffer disagree.
	ErrInvalidGrid = errors.New("invalid pixel grid")

	// ErrDecodeImage wraps failures of the image decoder.
	ErrDecodeImage = errors.New("failed to decode image")
)

// IsNotCarrier reports whether err means the image holds no message produced
// by this package.
func IsNotCarrier(err error) bool {
	return errors.Is(err, ErrNoPayloadFound) || errors.Is(err, ErrMalformedPayload)
}
