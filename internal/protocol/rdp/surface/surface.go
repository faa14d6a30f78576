// Package surface implements the surface-command PDU family: the
// screen-update instructions that carry raw or codec-compressed bitmap
// data ([MS-RDPBCGR] Section 2.2.9.2).
//
// Surface commands are the hot path of the protocol: bitmap payloads
// arrive continuously and at volume. The family therefore uses the
// slice-shape decode of the codec contract: Parse functions take a byte
// slice and return structures whose Data fields alias that slice. No
// payload byte is copied. The results are views: they must be consumed
// before the input buffer is reused, and their payload slices are
// read-only.
//
// # Wire layout
//
// Every command starts with a 2-byte little-endian cmdType discriminant:
//
//	0x0001  SET_SURFACE_BITS     destination rectangle + bitmap data
//	0x0004  FRAME_MARKER         frame begin/end bracket
//	0x0006  STREAM_SURFACE_BITS  same body as SET_SURFACE_BITS
//
// The set is closed; any other cmdType is a decode failure.
package surface

import (
	"io"

	"github.com/mirrorbeam/rdpwire/internal/protocol/rdp/wire"
)

// CommandType is the surface command discriminant.
type CommandType uint16

const (
	CmdSetSurfaceBits    CommandType = 0x0001
	CmdFrameMarker       CommandType = 0x0004
	CmdStreamSurfaceBits CommandType = 0x0006
)

func (t CommandType) String() string {
	switch t {
	case CmdSetSurfaceBits:
		return "SET_SURFACE_BITS"
	case CmdFrameMarker:
		return "FRAME_MARKER"
	case CmdStreamSurfaceBits:
		return "STREAM_SURFACE_BITS"
	default:
		return "UNKNOWN"
	}
}

// FrameAction brackets a set of surface commands into one logical frame.
type FrameAction uint16

const (
	FrameBegin FrameAction = 0x0000
	FrameEnd   FrameAction = 0x0001
)

// BitmapDataFlags qualifies an extended bitmap data block.
type BitmapDataFlags uint8

const (
	// BitmapHeaderPresent indicates the optional compressed-bitmap
	// header precedes the bitmap data.
	BitmapHeaderPresent BitmapDataFlags = 0x01
)

// Command is the closed set of surface command variants. Encode
// re-serializes borrowed payload slices verbatim; Length follows the
// usual contract.
type Command interface {
	wire.PDU
	CommandType() CommandType

	isSurfaceCommand()
}

// ParseCommand decodes one surface command from the front of data,
// returning the command and the number of bytes it occupied. Bitmap
// payloads in the result alias data.
func ParseCommand(data []byte) (Command, int, error) {
	c := wire.NewCursor(data)
	cmd, err := decodeCommand(c)
	if err != nil {
		return nil, 0, err
	}
	return cmd, c.Pos(), nil
}

// ParseCommands decodes a whole buffer of back-to-back surface commands,
// as carried by a surface-bits update. The results alias data.
func ParseCommands(data []byte) ([]Command, error) {
	c := wire.NewCursor(data)
	var cmds []Command
	for c.Remaining() > 0 {
		cmd, err := decodeCommand(c)
		if err != nil {
			return nil, err
		}
		cmds = append(cmds, cmd)
	}
	return cmds, nil
}

func decodeCommand(c *wire.Cursor) (Command, error) {
	cmdType, err := c.Uint16()
	if err != nil {
		return nil, err
	}

	switch CommandType(cmdType) {
	case CmdSetSurfaceBits:
		bits, err := parseSurfaceBits(c)
		if err != nil {
			return nil, err
		}
		return &SetSurfaceBitsPDU{SurfaceBits: bits}, nil
	case CmdStreamSurfaceBits:
		bits, err := parseSurfaceBits(c)
		if err != nil {
			return nil, err
		}
		return &StreamSurfaceBitsPDU{SurfaceBits: bits}, nil
	case CmdFrameMarker:
		return parseFrameMarker(c)
	default:
		return nil, &InvalidCommandTypeError{Code: cmdType}
	}
}

// SurfaceBits is the shared body of the SET_SURFACE_BITS and
// STREAM_SURFACE_BITS commands: a destination rectangle in inclusive
// screen coordinates plus the bitmap payload.
type SurfaceBits struct {
	DestLeft   uint16
	DestTop    uint16
	DestRight  uint16
	DestBottom uint16
	Bitmap     ExtendedBitmapData
}

func parseSurfaceBits(c *wire.Cursor) (SurfaceBits, error) {
	var b SurfaceBits
	var err error
	if b.DestLeft, err = c.Uint16(); err != nil {
		return b, err
	}
	if b.DestTop, err = c.Uint16(); err != nil {
		return b, err
	}
	if b.DestRight, err = c.Uint16(); err != nil {
		return b, err
	}
	if b.DestBottom, err = c.Uint16(); err != nil {
		return b, err
	}
	b.Bitmap, err = parseExtendedBitmapData(c)
	return b, err
}

func (b *SurfaceBits) encode(w io.Writer) error {
	if err := wire.WriteUint16(w, b.DestLeft); err != nil {
		return err
	}
	if err := wire.WriteUint16(w, b.DestTop); err != nil {
		return err
	}
	if err := wire.WriteUint16(w, b.DestRight); err != nil {
		return err
	}
	if err := wire.WriteUint16(w, b.DestBottom); err != nil {
		return err
	}
	return b.Bitmap.encode(w)
}

func (b *SurfaceBits) length() int {
	return 8 + b.Bitmap.length()
}

// SetSurfaceBitsPDU paints a rectangle of the remote session surface.
type SetSurfaceBitsPDU struct {
	SurfaceBits
}

func (*SetSurfaceBitsPDU) CommandType() CommandType { return CmdSetSurfaceBits }
func (*SetSurfaceBitsPDU) isSurfaceCommand()        {}

func (p *SetSurfaceBitsPDU) Encode(w io.Writer) error {
	if err := wire.WriteUint16(w, uint16(CmdSetSurfaceBits)); err != nil {
		return err
	}
	return p.SurfaceBits.encode(w)
}

func (p *SetSurfaceBitsPDU) Length() int { return 2 + p.SurfaceBits.length() }

// StreamSurfaceBitsPDU carries a progressive-stream variant of the same
// body as SetSurfaceBitsPDU.
type StreamSurfaceBitsPDU struct {
	SurfaceBits
}

func (*StreamSurfaceBitsPDU) CommandType() CommandType { return CmdStreamSurfaceBits }
func (*StreamSurfaceBitsPDU) isSurfaceCommand()        {}

func (p *StreamSurfaceBitsPDU) Encode(w io.Writer) error {
	if err := wire.WriteUint16(w, uint16(CmdStreamSurfaceBits)); err != nil {
		return err
	}
	return p.SurfaceBits.encode(w)
}

func (p *StreamSurfaceBitsPDU) Length() int { return 2 + p.SurfaceBits.length() }

// FrameMarkerPDU brackets the surface commands belonging to one frame.
type FrameMarkerPDU struct {
	Action  FrameAction
	FrameID uint32
}

func (*FrameMarkerPDU) CommandType() CommandType { return CmdFrameMarker }
func (*FrameMarkerPDU) isSurfaceCommand()        {}

func parseFrameMarker(c *wire.Cursor) (*FrameMarkerPDU, error) {
	action, err := c.Uint16()
	if err != nil {
		return nil, err
	}
	if FrameAction(action) != FrameBegin && FrameAction(action) != FrameEnd {
		return nil, &InvalidFrameActionError{Code: action}
	}
	frameID, err := c.Uint32()
	if err != nil {
		return nil, err
	}
	return &FrameMarkerPDU{Action: FrameAction(action), FrameID: frameID}, nil
}

func (p *FrameMarkerPDU) Encode(w io.Writer) error {
	if err := wire.WriteUint16(w, uint16(CmdFrameMarker)); err != nil {
		return err
	}
	if err := wire.WriteUint16(w, uint16(p.Action)); err != nil {
		return err
	}
	return wire.WriteUint32(w, p.FrameID)
}

func (*FrameMarkerPDU) Length() int { return 8 }
