package surface

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mirrorbeam/rdpwire/internal/protocol/rdp/wire"
)

// setSurfaceBitsBytes is a SET_SURFACE_BITS command with a 4-byte
// uncompressed payload and no optional header.
var setSurfaceBitsBytes = []byte{
	0x01, 0x00, // cmdType = SET_SURFACE_BITS
	0x00, 0x00, // destLeft
	0x10, 0x00, // destTop
	0x40, 0x00, // destRight
	0x30, 0x00, // destBottom
	0x20,       // bpp = 32
	0x00,       // flags
	0x00,       // reserved
	0x03,       // codecID
	0x02, 0x00, // width
	0x02, 0x00, // height
	0x04, 0x00, 0x00, 0x00, // bitmapDataLength
	0xDE, 0xAD, 0xBE, 0xEF, // bitmapData
}

func TestParseSetSurfaceBits(t *testing.T) {
	cmd, n, err := ParseCommand(setSurfaceBitsBytes)
	require.NoError(t, err)
	assert.Equal(t, len(setSurfaceBitsBytes), n)

	pdu, ok := cmd.(*SetSurfaceBitsPDU)
	require.True(t, ok)
	assert.Equal(t, uint16(0x10), pdu.DestTop)
	assert.Equal(t, uint16(0x40), pdu.DestRight)
	assert.Equal(t, uint8(32), pdu.Bitmap.BPP)
	assert.Equal(t, uint8(3), pdu.Bitmap.CodecID)
	assert.Equal(t, uint16(2), pdu.Bitmap.Width)
	assert.Nil(t, pdu.Bitmap.Header)
	assert.Equal(t, []byte{0xDE, 0xAD, 0xBE, 0xEF}, pdu.Bitmap.Data)
}

func TestParseBorrowsPayload(t *testing.T) {
	data := make([]byte, len(setSurfaceBitsBytes))
	copy(data, setSurfaceBitsBytes)

	cmd, _, err := ParseCommand(data)
	require.NoError(t, err)
	pdu := cmd.(*SetSurfaceBitsPDU)

	// zero-copy: the payload aliases the input buffer
	assert.Same(t, &data[22], &pdu.Bitmap.Data[0])
}

func TestParseCommandRoundTrip(t *testing.T) {
	cmds := []Command{
		&SetSurfaceBitsPDU{SurfaceBits: SurfaceBits{
			DestLeft: 1, DestTop: 2, DestRight: 3, DestBottom: 4,
			Bitmap: ExtendedBitmapData{
				BPP: 16, CodecID: 1, Width: 64, Height: 64,
				Data: []byte{1, 2, 3},
			},
		}},
		&StreamSurfaceBitsPDU{SurfaceBits: SurfaceBits{
			DestRight: 800, DestBottom: 600,
			Bitmap: ExtendedBitmapData{
				BPP: 32, CodecID: 5,
				Width: 800, Height: 600,
				Header: &BitmapDataHeader{
					HighUniqueID:   0x11223344,
					LowUniqueID:    0x55667788,
					TmMilliseconds: 123,
					TmSeconds:      456,
				},
				Data: []byte{9, 8, 7, 6, 5},
			},
		}},
		&FrameMarkerPDU{Action: FrameBegin, FrameID: 42},
		&FrameMarkerPDU{Action: FrameEnd, FrameID: 42},
	}

	for _, cmd := range cmds {
		t.Run(cmd.CommandType().String(), func(t *testing.T) {
			data, err := wire.EncodeToBytes(cmd)
			require.NoError(t, err)
			require.Len(t, data, cmd.Length())

			decoded, n, err := ParseCommand(data)
			require.NoError(t, err)
			assert.Equal(t, len(data), n)
			assert.Equal(t, cmd, decoded)
			assert.Equal(t, cmd.CommandType(), decoded.CommandType())
		})
	}
}

func TestParseCommands(t *testing.T) {
	marker, err := wire.EncodeToBytes(&FrameMarkerPDU{Action: FrameBegin, FrameID: 7})
	require.NoError(t, err)

	data := append(append([]byte{}, marker...), setSurfaceBitsBytes...)
	end, err := wire.EncodeToBytes(&FrameMarkerPDU{Action: FrameEnd, FrameID: 7})
	require.NoError(t, err)
	data = append(data, end...)

	cmds, err := ParseCommands(data)
	require.NoError(t, err)
	require.Len(t, cmds, 3)
	assert.Equal(t, CmdFrameMarker, cmds[0].CommandType())
	assert.Equal(t, CmdSetSurfaceBits, cmds[1].CommandType())
	assert.Equal(t, CmdFrameMarker, cmds[2].CommandType())
}

func TestParseCommandInvalidType(t *testing.T) {
	data := []byte{0x02, 0x00, 0x00, 0x00}
	_, _, err := ParseCommand(data)

	var typeErr *InvalidCommandTypeError
	require.ErrorAs(t, err, &typeErr)
	assert.Equal(t, uint16(2), typeErr.Code)
}

func TestParseFrameMarkerInvalidAction(t *testing.T) {
	data := []byte{0x04, 0x00, 0x05, 0x00, 0x01, 0x00, 0x00, 0x00}
	_, _, err := ParseCommand(data)

	var actionErr *InvalidFrameActionError
	require.ErrorAs(t, err, &actionErr)
	assert.Equal(t, uint16(5), actionErr.Code)
}

func TestParseBitmapUnknownFlags(t *testing.T) {
	data := make([]byte, len(setSurfaceBitsBytes))
	copy(data, setSurfaceBitsBytes)
	data[11] = 0x80 // undefined flag bit

	_, _, err := ParseCommand(data)

	var flagsErr *UnsupportedFlagsError
	require.ErrorAs(t, err, &flagsErr)
	assert.Equal(t, "bitmapDataFlags", flagsErr.Field)
	assert.Equal(t, uint8(0x80), flagsErr.Value)
}

func TestBitmapHeaderFlagFollowsHeader(t *testing.T) {
	// the BitmapHeaderPresent wire flag is derived from Header alone, so
	// encode and decode can never disagree about header presence
	with := &SetSurfaceBitsPDU{SurfaceBits: SurfaceBits{
		Bitmap: ExtendedBitmapData{
			BPP: 32, Width: 1, Height: 1,
			Header: &BitmapDataHeader{HighUniqueID: 1},
			Data:   []byte{0xAA},
		},
	}}
	without := &SetSurfaceBitsPDU{SurfaceBits: SurfaceBits{
		Bitmap: ExtendedBitmapData{
			BPP: 32, Width: 1, Height: 1,
			Data: []byte{0xAA},
		},
	}}

	data, err := wire.EncodeToBytes(with)
	require.NoError(t, err)
	assert.Equal(t, uint8(BitmapHeaderPresent), data[11], "flags byte")

	decoded, _, err := ParseCommand(data)
	require.NoError(t, err)
	assert.Equal(t, with, decoded)

	data, err = wire.EncodeToBytes(without)
	require.NoError(t, err)
	assert.Equal(t, uint8(0), data[11], "flags byte")

	decoded, _, err = ParseCommand(data)
	require.NoError(t, err)
	assert.Equal(t, without, decoded)
}

func TestParseTruncationSafety(t *testing.T) {
	for n := 0; n < len(setSurfaceBitsBytes); n++ {
		_, _, err := ParseCommand(setSurfaceBitsBytes[:n])
		require.Error(t, err, "prefix of %d bytes decoded", n)
		assert.ErrorIs(t, err, wire.ErrTruncated, "prefix of %d bytes", n)
	}
}

func TestParseDeclaredLengthBeyondBuffer(t *testing.T) {
	tests := []struct {
		name    string
		dataLen [4]byte
	}{
		{"FarBeyondBuffer", [4]byte{0xFF, 0xFF, 0x00, 0x00}},
		// 0xFFFFFFFF overflows int on 32-bit targets; still a truncation
		// error, never a slice-bounds panic
		{"MaxValue", [4]byte{0xFF, 0xFF, 0xFF, 0xFF}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := make([]byte, len(setSurfaceBitsBytes))
			copy(data, setSurfaceBitsBytes)
			copy(data[18:22], tt.dataLen[:]) // bitmapDataLength

			_, _, err := ParseCommand(data)
			assert.ErrorIs(t, err, wire.ErrTruncated)
		})
	}
}

type fixedCodec struct {
	out []byte
	err error

	gotData    []byte
	gotW, gotH uint16
}

func (c *fixedCodec) Decode(data []byte, width, height uint16) ([]byte, error) {
	c.gotData, c.gotW, c.gotH = data, width, height
	return c.out, c.err
}

func TestDecompressHandsPayloadToCodec(t *testing.T) {
	cmd, _, err := ParseCommand(setSurfaceBitsBytes)
	require.NoError(t, err)
	pdu := cmd.(*SetSurfaceBitsPDU)

	codec := &fixedCodec{out: []byte{0xAA}}
	out, err := pdu.Bitmap.Decompress(codec)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xAA}, out)
	assert.Equal(t, pdu.Bitmap.Data, codec.gotData)
	assert.Equal(t, uint16(2), codec.gotW)
	assert.Equal(t, uint16(2), codec.gotH)
}

func FuzzParseCommand(f *testing.F) {
	f.Add(setSurfaceBitsBytes)
	f.Add([]byte{0x04, 0x00, 0x00, 0x00, 0x2A, 0x00, 0x00, 0x00})

	f.Fuzz(func(t *testing.T, data []byte) {
		cmd, n, err := ParseCommand(data)
		if err != nil {
			return
		}
		if n > len(data) {
			t.Fatalf("consumed %d of %d bytes", n, len(data))
		}
		out, err := wire.EncodeToBytes(cmd)
		if err != nil {
			t.Fatalf("parsed command failed to encode: %v", err)
		}
		again, _, err := ParseCommand(out)
		if err != nil {
			t.Fatalf("re-encoded command failed to parse: %v", err)
		}
		assert.Equal(t, cmd, again)
	})
}
