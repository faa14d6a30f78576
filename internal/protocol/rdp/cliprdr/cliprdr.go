// Package cliprdr implements the core clipboard virtual channel PDUs
// ([MS-RDPECLIP] Section 2.2). Every clipboard message starts with an
// 8-byte header; the dataLen field of that header is authoritative for
// the body that follows. Format-data payloads can be large (images,
// files) and are decoded zero-copy: FormatDataResponsePDU.Data aliases
// the input buffer.
package cliprdr

import (
	"io"
	"unicode/utf16"

	"github.com/mirrorbeam/rdpwire/internal/protocol/rdp/wire"
)

// MessageType is the clipboard PDU discriminant (msgType).
type MessageType uint16

const (
	TypeMonitorReady       MessageType = 0x0001
	TypeFormatList         MessageType = 0x0002
	TypeFormatListResponse MessageType = 0x0003
	TypeFormatDataRequest  MessageType = 0x0004
	TypeFormatDataResponse MessageType = 0x0005
	TypeTempDirectory      MessageType = 0x0006
	TypeCapabilities       MessageType = 0x0007
	TypeFileContentsReq    MessageType = 0x0008
	TypeFileContentsResp   MessageType = 0x0009
	TypeLockClipData       MessageType = 0x000A
	TypeUnlockClipData     MessageType = 0x000B
)

func (t MessageType) String() string {
	switch t {
	case TypeMonitorReady:
		return "CB_MONITOR_READY"
	case TypeFormatList:
		return "CB_FORMAT_LIST"
	case TypeFormatListResponse:
		return "CB_FORMAT_LIST_RESPONSE"
	case TypeFormatDataRequest:
		return "CB_FORMAT_DATA_REQUEST"
	case TypeFormatDataResponse:
		return "CB_FORMAT_DATA_RESPONSE"
	case TypeTempDirectory:
		return "CB_TEMP_DIRECTORY"
	case TypeCapabilities:
		return "CB_CLIP_CAPS"
	case TypeFileContentsReq:
		return "CB_FILECONTENTS_REQUEST"
	case TypeFileContentsResp:
		return "CB_FILECONTENTS_RESPONSE"
	case TypeLockClipData:
		return "CB_LOCK_CLIPDATA"
	case TypeUnlockClipData:
		return "CB_UNLOCK_CLIPDATA"
	default:
		return "UNKNOWN"
	}
}

// MessageFlags is the msgFlags header field.
type MessageFlags uint16

const (
	FlagResponseOK   MessageFlags = 0x0001
	FlagResponseFail MessageFlags = 0x0002
	FlagASCIINames   MessageFlags = 0x0004
)

// headerSize is msgType (2) + msgFlags (2) + dataLen (4).
const headerSize = 8

// PDU is the closed set of implemented clipboard message variants.
type PDU interface {
	wire.PDU
	MessageType() MessageType
	MessageFlags() MessageFlags

	isClipboardPDU()
}

// ParsePDU decodes one clipboard message from data. Large payloads in
// the result alias data; the caller must not reuse the buffer while the
// result is live.
func ParsePDU(data []byte) (PDU, error) {
	c := wire.NewCursor(data)

	msgType, err := c.Uint16()
	if err != nil {
		return nil, err
	}
	msgFlags, err := c.Uint16()
	if err != nil {
		return nil, err
	}
	dataLen, err := c.Uint32()
	if err != nil {
		return nil, err
	}

	// dataLen is authoritative: the body cursor covers exactly that many
	// bytes, and a body cut short is a truncation failure even when the
	// variant itself needs none of the missing bytes.
	body, err := c.Slice(int(dataLen))
	if err != nil {
		return nil, err
	}
	bc := wire.NewCursor(body)
	flags := MessageFlags(msgFlags)

	switch MessageType(msgType) {
	case TypeMonitorReady:
		return &MonitorReadyPDU{}, nil
	case TypeFormatList:
		return parseFormatList(bc, flags)
	case TypeFormatListResponse:
		return &FormatListResponsePDU{Flags: flags}, nil
	case TypeFormatDataRequest:
		id, err := bc.Uint32()
		if err != nil {
			return nil, err
		}
		return &FormatDataRequestPDU{FormatID: id}, nil
	case TypeFormatDataResponse:
		return &FormatDataResponsePDU{Flags: flags, Data: body}, nil
	case TypeLockClipData:
		id, err := bc.Uint32()
		if err != nil {
			return nil, err
		}
		return &LockClipDataPDU{ClipDataID: id}, nil
	case TypeUnlockClipData:
		id, err := bc.Uint32()
		if err != nil {
			return nil, err
		}
		return &UnlockClipDataPDU{ClipDataID: id}, nil
	default:
		return nil, &InvalidMessageTypeError{Code: msgType}
	}
}

func encodeHeader(w io.Writer, msgType MessageType, flags MessageFlags, dataLen int) error {
	if err := wire.WriteUint16(w, uint16(msgType)); err != nil {
		return err
	}
	if err := wire.WriteUint16(w, uint16(flags)); err != nil {
		return err
	}
	return wire.WriteUint32(w, uint32(dataLen))
}

// MonitorReadyPDU signals that the server clipboard is initialized.
type MonitorReadyPDU struct{}

func (*MonitorReadyPDU) MessageType() MessageType   { return TypeMonitorReady }
func (*MonitorReadyPDU) MessageFlags() MessageFlags { return 0 }
func (*MonitorReadyPDU) isClipboardPDU()            {}

func (p *MonitorReadyPDU) Encode(w io.Writer) error {
	return encodeHeader(w, TypeMonitorReady, 0, 0)
}

func (*MonitorReadyPDU) Length() int { return headerSize }

// Format is one entry of a format list: a clipboard format ID plus its
// registered name (empty for the predefined formats).
type Format struct {
	ID   uint32
	Name string
}

// FormatListPDU announces the formats available on the announcing side's
// clipboard. Only long (Unicode) format names are supported; the legacy
// ASCII short-name encoding is deliberately not implemented.
type FormatListPDU struct {
	Formats []Format
}

func (*FormatListPDU) MessageType() MessageType   { return TypeFormatList }
func (*FormatListPDU) MessageFlags() MessageFlags { return 0 }
func (*FormatListPDU) isClipboardPDU()            {}

func parseFormatList(c *wire.Cursor, flags MessageFlags) (*FormatListPDU, error) {
	if flags&FlagASCIINames != 0 {
		return nil, ErrASCIINamesNotSupported
	}

	var formats []Format
	for c.Remaining() > 0 {
		id, err := c.Uint32()
		if err != nil {
			return nil, err
		}
		name, err := readUTF16Z(c)
		if err != nil {
			return nil, err
		}
		formats = append(formats, Format{ID: id, Name: name})
	}
	return &FormatListPDU{Formats: formats}, nil
}

// readUTF16Z reads a NUL-terminated little-endian UTF-16 string.
func readUTF16Z(c *wire.Cursor) (string, error) {
	var units []uint16
	for {
		u, err := c.Uint16()
		if err != nil {
			return "", err
		}
		if u == 0 {
			return string(utf16.Decode(units)), nil
		}
		units = append(units, u)
	}
}

func (p *FormatListPDU) Encode(w io.Writer) error {
	if err := encodeHeader(w, TypeFormatList, 0, p.Length()-headerSize); err != nil {
		return err
	}
	for _, f := range p.Formats {
		if err := wire.WriteUint32(w, f.ID); err != nil {
			return err
		}
		for _, u := range utf16.Encode([]rune(f.Name)) {
			if err := wire.WriteUint16(w, u); err != nil {
				return err
			}
		}
		if err := wire.WriteUint16(w, 0); err != nil { // NUL terminator
			return err
		}
	}
	return nil
}

func (p *FormatListPDU) Length() int {
	n := headerSize
	for _, f := range p.Formats {
		n += 4 + 2*(len(utf16.Encode([]rune(f.Name)))+1)
	}
	return n
}

// FormatListResponsePDU acknowledges a format list; success or failure
// travels in the header flags.
type FormatListResponsePDU struct {
	Flags MessageFlags
}

func (*FormatListResponsePDU) MessageType() MessageType     { return TypeFormatListResponse }
func (p *FormatListResponsePDU) MessageFlags() MessageFlags { return p.Flags }
func (*FormatListResponsePDU) isClipboardPDU()              {}

func (p *FormatListResponsePDU) Encode(w io.Writer) error {
	return encodeHeader(w, TypeFormatListResponse, p.Flags, 0)
}

func (*FormatListResponsePDU) Length() int { return headerSize }

// FormatDataRequestPDU asks the clipboard owner for one format's data.
type FormatDataRequestPDU struct {
	FormatID uint32
}

func (*FormatDataRequestPDU) MessageType() MessageType   { return TypeFormatDataRequest }
func (*FormatDataRequestPDU) MessageFlags() MessageFlags { return 0 }
func (*FormatDataRequestPDU) isClipboardPDU()            {}

func (p *FormatDataRequestPDU) Encode(w io.Writer) error {
	if err := encodeHeader(w, TypeFormatDataRequest, 0, 4); err != nil {
		return err
	}
	return wire.WriteUint32(w, p.FormatID)
}

func (*FormatDataRequestPDU) Length() int { return headerSize + 4 }

// FormatDataResponsePDU carries the requested clipboard data. Data is a
// read-only view into the buffer the PDU was parsed from.
type FormatDataResponsePDU struct {
	Flags MessageFlags
	Data  []byte
}

func (*FormatDataResponsePDU) MessageType() MessageType     { return TypeFormatDataResponse }
func (p *FormatDataResponsePDU) MessageFlags() MessageFlags { return p.Flags }
func (*FormatDataResponsePDU) isClipboardPDU()              {}

func (p *FormatDataResponsePDU) Encode(w io.Writer) error {
	if err := encodeHeader(w, TypeFormatDataResponse, p.Flags, len(p.Data)); err != nil {
		return err
	}
	return wire.WriteBytes(w, p.Data)
}

func (p *FormatDataResponsePDU) Length() int { return headerSize + len(p.Data) }

// LockClipDataPDU pins a clipboard data snapshot on the owning side.
type LockClipDataPDU struct {
	ClipDataID uint32
}

func (*LockClipDataPDU) MessageType() MessageType   { return TypeLockClipData }
func (*LockClipDataPDU) MessageFlags() MessageFlags { return 0 }
func (*LockClipDataPDU) isClipboardPDU()            {}

func (p *LockClipDataPDU) Encode(w io.Writer) error {
	if err := encodeHeader(w, TypeLockClipData, 0, 4); err != nil {
		return err
	}
	return wire.WriteUint32(w, p.ClipDataID)
}

func (*LockClipDataPDU) Length() int { return headerSize + 4 }

// UnlockClipDataPDU releases a pinned clipboard data snapshot.
type UnlockClipDataPDU struct {
	ClipDataID uint32
}

func (*UnlockClipDataPDU) MessageType() MessageType   { return TypeUnlockClipData }
func (*UnlockClipDataPDU) MessageFlags() MessageFlags { return 0 }
func (*UnlockClipDataPDU) isClipboardPDU()            {}

func (p *UnlockClipDataPDU) Encode(w io.Writer) error {
	if err := encodeHeader(w, TypeUnlockClipData, 0, 4); err != nil {
		return err
	}
	return wire.WriteUint32(w, p.ClipDataID)
}

func (*UnlockClipDataPDU) Length() int { return headerSize + 4 }
