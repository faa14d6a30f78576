package surface

import (
	"io"

	"github.com/mirrorbeam/rdpwire/internal/protocol/rdp/wire"
)

// ExtendedBitmapData is the TS_BITMAP_DATA_EX block carried by surface
// bits commands:
//
//	┌────────┬──────┬──────────────────┬──────────────────────────────────┐
//	│ Offset │ Size │ Field            │ Description                      │
//	├────────┼──────┼──────────────────┼──────────────────────────────────┤
//	│   0    │  1   │ bpp              │ Color depth, bits per pixel      │
//	│   1    │  1   │ flags            │ BitmapDataFlags                  │
//	│   2    │  1   │ reserved         │ Zero on encode, ignored          │
//	│   3    │  1   │ codecID          │ Negotiated bitmap codec          │
//	│   4    │  2   │ width            │ Bitmap width in pixels           │
//	│   6    │  2   │ height           │ Bitmap height in pixels          │
//	│   8    │  4   │ bitmapDataLength │ Payload size, authoritative      │
//	│  12    │ 0|24 │ exBitmapHeader   │ Present per BitmapHeaderPresent  │
//	│   +    │  var │ bitmapData       │ bitmapDataLength payload bytes   │
//	└────────┴──────┴──────────────────┴──────────────────────────────────┘
//
// Data aliases the buffer the block was parsed from. Image codec
// internals live behind BitmapCodec; this type only frames the payload.
type ExtendedBitmapData struct {
	BPP     uint8
	CodecID uint8
	Width   uint16
	Height  uint16

	// Header mirrors the BitmapHeaderPresent wire flag: decode populates
	// it iff the flag is set, encode sets the flag iff it is non-nil. The
	// flag itself is not stored, so the two can never disagree.
	Header *BitmapDataHeader

	// Data is a read-only view into the input buffer.
	Data []byte
}

// BitmapDataHeader is the optional TS_COMPRESSED_BITMAP_HEADER_EX block.
type BitmapDataHeader struct {
	HighUniqueID   uint32
	LowUniqueID    uint32
	TmMilliseconds uint64
	TmSeconds      uint64
}

const bitmapDataHeaderSize = 24

func parseExtendedBitmapData(c *wire.Cursor) (ExtendedBitmapData, error) {
	var d ExtendedBitmapData
	var err error
	if d.BPP, err = c.Uint8(); err != nil {
		return d, err
	}
	flags, err := c.Uint8()
	if err != nil {
		return d, err
	}
	if BitmapDataFlags(flags)&^BitmapHeaderPresent != 0 {
		return d, &UnsupportedFlagsError{Field: "bitmapDataFlags", Value: flags}
	}
	if err = c.Skip(1); err != nil { // reserved
		return d, err
	}
	if d.CodecID, err = c.Uint8(); err != nil {
		return d, err
	}
	if d.Width, err = c.Uint16(); err != nil {
		return d, err
	}
	if d.Height, err = c.Uint16(); err != nil {
		return d, err
	}
	dataLen, err := c.Uint32()
	if err != nil {
		return d, err
	}

	if BitmapDataFlags(flags)&BitmapHeaderPresent != 0 {
		hdr, err := parseBitmapDataHeader(c)
		if err != nil {
			return d, err
		}
		d.Header = hdr
	}

	d.Data, err = c.Slice(int(dataLen))
	return d, err
}

func parseBitmapDataHeader(c *wire.Cursor) (*BitmapDataHeader, error) {
	var h BitmapDataHeader
	var err error
	if h.HighUniqueID, err = c.Uint32(); err != nil {
		return nil, err
	}
	if h.LowUniqueID, err = c.Uint32(); err != nil {
		return nil, err
	}
	if h.TmMilliseconds, err = c.Uint64(); err != nil {
		return nil, err
	}
	h.TmSeconds, err = c.Uint64()
	if err != nil {
		return nil, err
	}
	return &h, nil
}

func (d *ExtendedBitmapData) encode(w io.Writer) error {
	if err := wire.WriteUint8(w, d.BPP); err != nil {
		return err
	}
	var flags BitmapDataFlags
	if d.Header != nil {
		flags = BitmapHeaderPresent
	}
	if err := wire.WriteUint8(w, uint8(flags)); err != nil {
		return err
	}
	if err := wire.WriteUint8(w, 0); err != nil { // reserved
		return err
	}
	if err := wire.WriteUint8(w, d.CodecID); err != nil {
		return err
	}
	if err := wire.WriteUint16(w, d.Width); err != nil {
		return err
	}
	if err := wire.WriteUint16(w, d.Height); err != nil {
		return err
	}
	if err := wire.WriteUint32(w, uint32(len(d.Data))); err != nil {
		return err
	}
	if d.Header != nil {
		if err := d.Header.encode(w); err != nil {
			return err
		}
	}
	return wire.WriteBytes(w, d.Data)
}

func (h *BitmapDataHeader) encode(w io.Writer) error {
	if err := wire.WriteUint32(w, h.HighUniqueID); err != nil {
		return err
	}
	if err := wire.WriteUint32(w, h.LowUniqueID); err != nil {
		return err
	}
	if err := wire.WriteUint64(w, h.TmMilliseconds); err != nil {
		return err
	}
	return wire.WriteUint64(w, h.TmSeconds)
}

func (d *ExtendedBitmapData) length() int {
	n := 12 + len(d.Data)
	if d.Header != nil {
		n += bitmapDataHeaderSize
	}
	return n
}

// BitmapCodec is the consumed interface to image codec collaborators
// (RLE, RDP6 planar, RemoteFX and friends). Implementations are pure
// functions of their arguments: no shared state, no I/O.
type BitmapCodec interface {
	// Decode transforms a compressed payload into a pixel buffer for
	// the given dimensions.
	Decode(data []byte, width, height uint16) ([]byte, error)
}

// Decompress hands the framed payload slice to the given codec. The
// payload is passed as-is; interpreting it is entirely the codec's
// business.
func (d *ExtendedBitmapData) Decompress(codec BitmapCodec) ([]byte, error) {
	return codec.Decode(d.Data, d.Width, d.Height)
}
