package cliprdr

import (
	"errors"
	"fmt"
)

// ErrASCIINamesNotSupported is returned for format lists announced with
// the legacy CB_ASCII_NAMES encoding. Modern peers always use long
// Unicode format names; the short-name form is deliberately not
// implemented.
var ErrASCIINamesNotSupported = errors.New("ASCII format names not supported")

// ErrNotText is returned by text-mode format converters when the payload
// is not well-formed UTF-8.
var ErrNotText = errors.New("payload is not well-formed text")

// InvalidMessageTypeError reports a msgType outside the implemented
// clipboard message set.
type InvalidMessageTypeError struct {
	Code uint16
}

func (e *InvalidMessageTypeError) Error() string {
	return fmt.Sprintf("invalid clipboard message type 0x%04X", e.Code)
}
