package cliprdr

import "unicode/utf8"

// FormatConverter is the consumed interface to clipboard format
// collaborators: pure byte-buffer-to-byte-buffer transforms (DIB to PNG,
// HTML fragment to clipboard-HTML wrapper, and so on). Implementations
// hold no state and perform no I/O.
type FormatConverter func(payload []byte) ([]byte, error)

// Convert applies a format converter to the response payload. The
// converter receives the borrowed payload slice; it must treat it as
// read-only.
func (p *FormatDataResponsePDU) Convert(conv FormatConverter) ([]byte, error) {
	return conv(p.Data)
}

// TextConverter wraps a text-mode transform so that it first validates
// the payload is well-formed UTF-8 and fails closed otherwise.
func TextConverter(conv func(text string) ([]byte, error)) FormatConverter {
	return func(payload []byte) ([]byte, error) {
		if !utf8.Valid(payload) {
			return nil, ErrNotText
		}
		return conv(string(payload))
	}
}
