package input

import (
	"errors"
	"fmt"
)

// The error taxonomy for the input-event families. Short reads surface as
// errors wrapping wire.ErrTruncated; everything below is a semantic
// failure of well-sized input. Errors carry the offending value so fuzz
// findings and unit assertions can name the exact byte pattern that was
// rejected.
var (
	// ErrEncryptionNotSupported is returned when a fast-path input PDU
	// declares the encrypted or secure-checksum flag. Standard RDP
	// security is deliberately not implemented; sessions are expected to
	// run over TLS.
	ErrEncryptionNotSupported = errors.New("fast-path input encryption not supported")

	// ErrEmptyFastPathInput is returned for a fast-path input PDU that
	// declares zero events.
	ErrEmptyFastPathInput = errors.New("fast-path input PDU carries no events")

	// ErrTooManyEvents is returned by encode when a collection exceeds
	// the domain of the wire's event count field.
	ErrTooManyEvents = errors.New("event collection exceeds the count field range")
)

// InvalidEventTypeError reports a slow-path discriminant outside the
// closed variant set.
type InvalidEventTypeError struct {
	Code uint16
}

func (e *InvalidEventTypeError) Error() string {
	return fmt.Sprintf("invalid input event type 0x%04X", e.Code)
}

// InvalidFastPathCodeError reports a fast-path event code outside the
// closed variant set.
type InvalidFastPathCodeError struct {
	Code uint8
}

func (e *InvalidFastPathCodeError) Error() string {
	return fmt.Sprintf("invalid fast-path input event code %d", e.Code)
}

// LengthMismatchError reports a fast-path length field that disagrees
// with the size the PDU actually occupies: the capture is mis-framed or
// corrupt.
type LengthMismatchError struct {
	Declared int
	Actual   int
}

func (e *LengthMismatchError) Error() string {
	return fmt.Sprintf("length field declares %d bytes, PDU occupies %d", e.Declared, e.Actual)
}

// UnsupportedFlagsError reports a flags field carrying bits outside its
// closed set. The field is present and correctly sized; its value is not
// in the valid domain.
type UnsupportedFlagsError struct {
	Field string
	Value uint32
}

func (e *UnsupportedFlagsError) Error() string {
	return fmt.Sprintf("unsupported %s value 0x%X", e.Field, e.Value)
}
