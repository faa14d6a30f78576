package wire

import (
	"encoding/binary"
	"fmt"
)

// Cursor is the slice-shape decode backend: a read position over a byte
// slice. Every accessor checks remaining length before touching the
// underlying array, so adversarial or truncated input surfaces as
// ErrTruncated and never as an out-of-range panic.
//
// Slice returns views into the underlying buffer without copying; PDU
// structures built from them inherit the buffer's lifetime (see the
// package comment).
type Cursor struct {
	data []byte
	pos  int
}

// NewCursor returns a cursor positioned at the start of data.
func NewCursor(data []byte) *Cursor {
	return &Cursor{data: data}
}

// Remaining reports how many unread bytes are left.
func (c *Cursor) Remaining() int {
	return len(c.data) - c.pos
}

// Pos reports the number of bytes consumed so far.
func (c *Cursor) Pos() int {
	return c.pos
}

func (c *Cursor) need(what string, n int) error {
	// n < 0 happens when a wire-declared u32 length overflows int on
	// 32-bit targets; it can never be satisfied.
	if n < 0 || c.Remaining() < n {
		return fmt.Errorf("read %s at offset %d: need %d bytes, have %d: %w",
			what, c.pos, n, c.Remaining(), ErrTruncated)
	}
	return nil
}

// Uint8 reads a single byte.
func (c *Cursor) Uint8() (uint8, error) {
	if err := c.need("uint8", 1); err != nil {
		return 0, err
	}
	v := c.data[c.pos]
	c.pos++
	return v, nil
}

// Uint16 reads a little-endian 16-bit unsigned integer.
func (c *Cursor) Uint16() (uint16, error) {
	if err := c.need("uint16", 2); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint16(c.data[c.pos:])
	c.pos += 2
	return v, nil
}

// Uint32 reads a little-endian 32-bit unsigned integer.
func (c *Cursor) Uint32() (uint32, error) {
	if err := c.need("uint32", 4); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(c.data[c.pos:])
	c.pos += 4
	return v, nil
}

// Uint64 reads a little-endian 64-bit unsigned integer.
func (c *Cursor) Uint64() (uint64, error) {
	if err := c.need("uint64", 8); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint64(c.data[c.pos:])
	c.pos += 8
	return v, nil
}

// Slice returns the next n bytes as a sub-slice of the input buffer.
// No copy is made: the result aliases the cursor's backing array and is
// read-only by contract.
func (c *Cursor) Slice(n int) ([]byte, error) {
	if err := c.need("payload", n); err != nil {
		return nil, err
	}
	v := c.data[c.pos : c.pos+n : c.pos+n]
	c.pos += n
	return v, nil
}

// Skip consumes n bytes of ignored-but-present data (padding, reserved
// fields), still validating that they exist.
func (c *Cursor) Skip(n int) error {
	if err := c.need("padding", n); err != nil {
		return err
	}
	c.pos += n
	return nil
}
