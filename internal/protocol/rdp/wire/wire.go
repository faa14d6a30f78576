// Package wire provides the codec contract and primitive field codecs for
// the RDP wire format.
//
// Every PDU type in the protocol implements the same three-operation
// contract: decode from a source, encode to a sink, and report its exact
// serialized length. The rest of the protocol stack is composition of this
// triad over increasingly complex aggregates.
//
// # Stream shape vs. slice shape
//
// Two decode backends coexist behind the same contract:
//
//   - Stream shape: Decode(io.Reader) on a pointer receiver. Fields are
//     materialized by copying bytes out of the source as they are read.
//     Used for header-like and control PDUs.
//   - Slice shape: per-type ParseX(data []byte) functions returning
//     structures whose large payload fields are sub-slices of data.
//     Used for high-volume, lifetime-bound PDUs (surface bits, clipboard
//     payloads) to avoid copying potentially large buffers.
//
// Slice-shape results are views: they must not be retained past the point
// where the input buffer is reused or mutated, and their payload slices
// must not be written through. Go has no borrow checker; this contract is
// enforced by API design and documentation.
//
// # Byte order
//
// All multi-byte integers on this wire are little-endian.
package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// ErrTruncated is the input-exhausted error class: fewer bytes were
// available than a fixed or length-declared field requires. Every short
// read surfaced by this package wraps ErrTruncated, so callers can test
// with errors.Is regardless of which field ran dry. A truncated input
// typically means "wait for more bytes"; it is never conflated with a
// semantically invalid value.
var ErrTruncated = errors.New("truncated input")

// PDU is the encode half of the codec contract.
//
// Encode writes exactly Length() bytes to w. Length is a pure function of
// the current field values, cheap enough to call before every encode;
// callers pre-size output buffers from it, and a mismatch between the two
// is an encoding bug, not a runtime condition.
type PDU interface {
	Encode(w io.Writer) error
	Length() int
}

// Decoder is the stream-shape decode half of the contract, implemented on
// pointer receivers. Decode consumes exactly as many bytes as the PDU
// requires and never reads into bytes belonging to the next PDU.
type Decoder interface {
	Decode(r io.Reader) error
}

// Decode is the generic decode entry point: it allocates a zero value of
// the target PDU type and runs its stream-shape decode against r.
//
//	pdu, err := wire.Decode[input.EventPDU](r)
func Decode[T any, P interface {
	*T
	Decoder
}](r io.Reader) (*T, error) {
	pdu := P(new(T))
	if err := pdu.Decode(r); err != nil {
		return nil, err
	}
	return (*T)(pdu), nil
}

// EncodeToBytes runs the stream-shape encode into a fresh buffer sized
// from Length. It additionally asserts the length invariant: a PDU that
// emits a different number of bytes than it declared is reported as an
// error rather than silently producing a mis-framed message.
func EncodeToBytes(pdu PDU) ([]byte, error) {
	buf := make([]byte, 0, pdu.Length())
	w := &countingWriter{buf: buf}
	if err := pdu.Encode(w); err != nil {
		return nil, err
	}
	if len(w.buf) != pdu.Length() {
		return nil, fmt.Errorf("pdu emitted %d bytes, declared %d", len(w.buf), pdu.Length())
	}
	return w.buf, nil
}

type countingWriter struct {
	buf []byte
}

func (w *countingWriter) Write(p []byte) (int, error) {
	w.buf = append(w.buf, p...)
	return len(p), nil
}

// shortRead maps the io errors produced by io.ReadFull onto the
// input-exhausted class. io.EOF (nothing read) and io.ErrUnexpectedEOF
// (partial read) both mean the source ran out before the field was
// complete.
func shortRead(what string, err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("read %s: %w", what, ErrTruncated)
	}
	return fmt.Errorf("read %s: %w", what, err)
}

// ReadUint8 reads a single byte.
func ReadUint8(r io.Reader) (uint8, error) {
	var b [1]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, shortRead("uint8", err)
	}
	return b[0], nil
}

// ReadUint16 reads a little-endian 16-bit unsigned integer.
func ReadUint16(r io.Reader) (uint16, error) {
	var b [2]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, shortRead("uint16", err)
	}
	return binary.LittleEndian.Uint16(b[:]), nil
}

// ReadUint32 reads a little-endian 32-bit unsigned integer.
func ReadUint32(r io.Reader) (uint32, error) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, shortRead("uint32", err)
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}

// ReadUint64 reads a little-endian 64-bit unsigned integer.
func ReadUint64(r io.Reader) (uint64, error) {
	var b [8]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, shortRead("uint64", err)
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}

// ReadInt16 reads a little-endian 16-bit signed integer
// (two's complement).
func ReadInt16(r io.Reader) (int16, error) {
	v, err := ReadUint16(r)
	return int16(v), err
}

// Skip reads and discards exactly n bytes. Ignored-but-present fields
// (timestamps, padding) are consumed through here rather than by offset
// arithmetic, so truncation inside them is still detected.
func Skip(r io.Reader, n int) error {
	var pad [8]byte
	for n > 0 {
		chunk := n
		if chunk > len(pad) {
			chunk = len(pad)
		}
		if _, err := io.ReadFull(r, pad[:chunk]); err != nil {
			return shortRead("padding", err)
		}
		n -= chunk
	}
	return nil
}

// WriteUint8 writes a single byte.
func WriteUint8(w io.Writer, v uint8) error {
	b := [1]byte{v}
	if _, err := w.Write(b[:]); err != nil {
		return fmt.Errorf("write uint8: %w", err)
	}
	return nil
}

// WriteUint16 writes a little-endian 16-bit unsigned integer.
func WriteUint16(w io.Writer, v uint16) error {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	if _, err := w.Write(b[:]); err != nil {
		return fmt.Errorf("write uint16: %w", err)
	}
	return nil
}

// WriteUint32 writes a little-endian 32-bit unsigned integer.
func WriteUint32(w io.Writer, v uint32) error {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	if _, err := w.Write(b[:]); err != nil {
		return fmt.Errorf("write uint32: %w", err)
	}
	return nil
}

// WriteUint64 writes a little-endian 64-bit unsigned integer.
func WriteUint64(w io.Writer, v uint64) error {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	if _, err := w.Write(b[:]); err != nil {
		return fmt.Errorf("write uint64: %w", err)
	}
	return nil
}

// WriteInt16 writes a little-endian 16-bit signed integer.
func WriteInt16(w io.Writer, v int16) error {
	return WriteUint16(w, uint16(v))
}

// WriteBytes writes buf verbatim.
func WriteBytes(w io.Writer, buf []byte) error {
	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("write %d bytes: %w", len(buf), err)
	}
	return nil
}
