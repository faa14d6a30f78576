package input

import (
	"io"

	"github.com/mirrorbeam/rdpwire/internal/protocol/rdp/wire"
)

// Fast-path input ([MS-RDPBCGR] Section 2.2.8.1.2) is the compact client
// input encoding used once a session is established. The PDU layout is:
//
//	┌────────┬──────┬───────────────┬─────────────────────────────────────┐
//	│ Offset │ Size │ Field         │ Description                         │
//	├────────┼──────┼───────────────┼─────────────────────────────────────┤
//	│   0    │  1   │ fpInputHeader │ action(2) | numEvents(4) | flags(2) │
//	│   1    │ 1-2  │ length        │ Total PDU size, header included     │
//	│   +    │ 0-1  │ numEvents     │ Present when the header nibble is 0 │
//	│   +    │  var │ fpInputEvents │ The declared number of events       │
//	└────────┴──────┴───────────────┴─────────────────────────────────────┘
//
// The length field uses the 7-bit continuation form: values up to 127 fit
// in one byte; larger values set the high bit of the first byte and carry
// the low 8 bits in a second byte.
//
// Each event starts with a header byte splitting into eventFlags (low 5
// bits) and eventCode (high 3 bits), followed by a code-specific payload.

// Fast-path input header flags. Both bits belong to standard RDP
// security, which this implementation does not support.
const (
	fpInputSecureChecksum = 0x1
	fpInputEncrypted      = 0x2
)

// FastPathEventCode is the 3-bit discriminant of a fast-path input event.
type FastPathEventCode uint8

const (
	FPCodeScanCode FastPathEventCode = 0
	FPCodeMouse    FastPathEventCode = 1
	FPCodeMouseX   FastPathEventCode = 2
	FPCodeSync     FastPathEventCode = 3
	FPCodeUnicode  FastPathEventCode = 4
	FPCodeMouseRel FastPathEventCode = 5
	FPCodeQoE      FastPathEventCode = 6
)

// FastPathKeyboardFlags is the 5-bit event flags field of fast-path
// keyboard events.
type FastPathKeyboardFlags uint8

const (
	FPKbdRelease   FastPathKeyboardFlags = 0x01
	FPKbdExtended  FastPathKeyboardFlags = 0x02
	FPKbdExtended1 FastPathKeyboardFlags = 0x04
)

const fpKeyboardMask = FPKbdRelease | FPKbdExtended | FPKbdExtended1

// FastPathEvent is the closed set of fast-path input event variants.
// Mouse movement shapes are shared with the slow path: MouseEvent,
// MouseXEvent and MouseRelEvent carry identical payloads in both
// encodings and satisfy both unions.
type FastPathEvent interface {
	FastPathCode() FastPathEventCode

	// eventFlags is the value of the 5-bit flags field in the event
	// header byte; payload codecs cover the bytes that follow it.
	eventFlags() uint8

	isFastPathEvent()
}

func (*MouseEvent) FastPathCode() FastPathEventCode    { return FPCodeMouse }
func (*MouseEvent) eventFlags() uint8                  { return 0 }
func (*MouseEvent) isFastPathEvent()                   {}
func (*MouseXEvent) FastPathCode() FastPathEventCode   { return FPCodeMouseX }
func (*MouseXEvent) eventFlags() uint8                 { return 0 }
func (*MouseXEvent) isFastPathEvent()                  {}
func (*MouseRelEvent) FastPathCode() FastPathEventCode { return FPCodeMouseRel }
func (*MouseRelEvent) eventFlags() uint8               { return 0 }
func (*MouseRelEvent) isFastPathEvent()                {}

// FPScanCodeEvent is a fast-path keyboard event: flags live in the event
// header, the payload is the single scan-code byte.
type FPScanCodeEvent struct {
	Flags   FastPathKeyboardFlags
	KeyCode uint8
}

func (*FPScanCodeEvent) FastPathCode() FastPathEventCode { return FPCodeScanCode }
func (e *FPScanCodeEvent) eventFlags() uint8             { return uint8(e.Flags) }
func (*FPScanCodeEvent) isFastPathEvent()                {}

// FPUnicodeEvent is a fast-path Unicode keyboard event: a 2-byte code
// unit with the release flag in the event header.
type FPUnicodeEvent struct {
	Flags FastPathKeyboardFlags
	Code  uint16
}

func (*FPUnicodeEvent) FastPathCode() FastPathEventCode { return FPCodeUnicode }
func (e *FPUnicodeEvent) eventFlags() uint8             { return uint8(e.Flags) }
func (*FPUnicodeEvent) isFastPathEvent()                {}

// FPSyncEvent reports keyboard lock state; the toggle bits travel in the
// event header flags and there is no payload.
type FPSyncEvent struct {
	Flags SyncToggleFlags
}

func (*FPSyncEvent) FastPathCode() FastPathEventCode { return FPCodeSync }
func (e *FPSyncEvent) eventFlags() uint8             { return uint8(e.Flags) }
func (*FPSyncEvent) isFastPathEvent()                {}

// FPQoEEvent carries a quality-of-experience timestamp.
type FPQoEEvent struct {
	Timestamp uint32
}

func (*FPQoEEvent) FastPathCode() FastPathEventCode { return FPCodeQoE }
func (*FPQoEEvent) eventFlags() uint8               { return 0 }
func (*FPQoEEvent) isFastPathEvent()                {}

// DecodeFastPathEvent reads one fast-path input event: header byte, then
// the code-specific payload.
func DecodeFastPathEvent(r io.Reader) (FastPathEvent, error) {
	header, err := wire.ReadUint8(r)
	if err != nil {
		return nil, err
	}
	code := FastPathEventCode(header >> 5)
	flags := header & 0x1F

	switch code {
	case FPCodeScanCode:
		if FastPathKeyboardFlags(flags)&^fpKeyboardMask != 0 {
			return nil, &UnsupportedFlagsError{Field: "eventFlags", Value: uint32(flags)}
		}
		keyCode, err := wire.ReadUint8(r)
		if err != nil {
			return nil, err
		}
		return &FPScanCodeEvent{Flags: FastPathKeyboardFlags(flags), KeyCode: keyCode}, nil

	case FPCodeMouse:
		ev := &MouseEvent{}
		if err := ev.Decode(r); err != nil {
			return nil, err
		}
		return ev, nil

	case FPCodeMouseX:
		ev := &MouseXEvent{}
		if err := ev.Decode(r); err != nil {
			return nil, err
		}
		return ev, nil

	case FPCodeMouseRel:
		ev := &MouseRelEvent{}
		if err := ev.Decode(r); err != nil {
			return nil, err
		}
		return ev, nil

	case FPCodeSync:
		if SyncToggleFlags(flags)&^syncToggleMask != 0 {
			return nil, &UnsupportedFlagsError{Field: "eventFlags", Value: uint32(flags)}
		}
		return &FPSyncEvent{Flags: SyncToggleFlags(flags)}, nil

	case FPCodeUnicode:
		if FastPathKeyboardFlags(flags)&^FPKbdRelease != 0 {
			return nil, &UnsupportedFlagsError{Field: "eventFlags", Value: uint32(flags)}
		}
		code, err := wire.ReadUint16(r)
		if err != nil {
			return nil, err
		}
		return &FPUnicodeEvent{Flags: FastPathKeyboardFlags(flags), Code: code}, nil

	case FPCodeQoE:
		ts, err := wire.ReadUint32(r)
		if err != nil {
			return nil, err
		}
		return &FPQoEEvent{Timestamp: ts}, nil

	default:
		return nil, &InvalidFastPathCodeError{Code: uint8(code)}
	}
}

// EncodeFastPathEvent writes one fast-path input event.
func EncodeFastPathEvent(w io.Writer, ev FastPathEvent) error {
	header := uint8(ev.FastPathCode())<<5 | ev.eventFlags()&0x1F
	if err := wire.WriteUint8(w, header); err != nil {
		return err
	}

	switch e := ev.(type) {
	case *FPScanCodeEvent:
		return wire.WriteUint8(w, e.KeyCode)
	case *MouseEvent:
		return e.Encode(w)
	case *MouseXEvent:
		return e.Encode(w)
	case *MouseRelEvent:
		return e.Encode(w)
	case *FPSyncEvent:
		return nil
	case *FPUnicodeEvent:
		return wire.WriteUint16(w, e.Code)
	case *FPQoEEvent:
		return wire.WriteUint32(w, e.Timestamp)
	default:
		return &InvalidFastPathCodeError{Code: uint8(ev.FastPathCode())}
	}
}

// FastPathEventLength reports the serialized size of one event, header
// byte included.
func FastPathEventLength(ev FastPathEvent) int {
	switch ev.(type) {
	case *FPScanCodeEvent:
		return 2
	case *MouseEvent, *MouseXEvent, *MouseRelEvent:
		return 7
	case *FPSyncEvent:
		return 1
	case *FPUnicodeEvent:
		return 3
	case *FPQoEEvent:
		return 5
	default:
		return 1
	}
}

// FastPathInputPDU is the client fast-path input PDU: an ordered
// collection of fast-path events.
type FastPathInputPDU struct {
	Events []FastPathEvent
}

// Decode reads the fast-path input PDU. Encrypted PDUs are rejected
// before any event is parsed; a PDU declaring zero events is rejected as
// malformed, and a length field that disagrees with the bytes the PDU
// actually occupies is a mis-framed capture.
func (p *FastPathInputPDU) Decode(r io.Reader) error {
	header, err := wire.ReadUint8(r)
	if err != nil {
		return err
	}
	numEvents := int(header >> 2 & 0x0F)
	flags := header >> 6
	if flags&(fpInputEncrypted|fpInputSecureChecksum) != 0 {
		return ErrEncryptionNotSupported
	}

	length1, err := wire.ReadUint8(r)
	if err != nil {
		return err
	}
	declared := int(length1 & 0x7F)
	consumed := 2 // fpInputHeader + first length byte
	if length1&0x80 != 0 {
		length2, err := wire.ReadUint8(r)
		if err != nil {
			return err
		}
		declared = declared<<8 | int(length2)
		consumed++
	}

	if numEvents == 0 {
		overflow, err := wire.ReadUint8(r)
		if err != nil {
			return err
		}
		numEvents = int(overflow)
		consumed++
	}
	if numEvents == 0 {
		return ErrEmptyFastPathInput
	}

	events := make([]FastPathEvent, 0, numEvents)
	for i := 0; i < numEvents; i++ {
		ev, err := DecodeFastPathEvent(r)
		if err != nil {
			return err
		}
		events = append(events, ev)
		consumed += FastPathEventLength(ev)
	}

	// the length field covers the whole PDU; a disagreement with the
	// bytes actually occupied means the capture is mis-framed
	if consumed != declared {
		return &LengthMismatchError{Declared: declared, Actual: consumed}
	}
	p.Events = events
	return nil
}

// Encode writes the fast-path input PDU, choosing the short length form
// whenever the PDU fits in 127 bytes. Collections beyond the 8-bit
// overflow count are rejected before any byte is emitted.
func (p *FastPathInputPDU) Encode(w io.Writer) error {
	if len(p.Events) == 0 {
		return ErrEmptyFastPathInput
	}
	if len(p.Events) > 0xFF {
		return ErrTooManyEvents
	}

	headerNum := len(p.Events)
	extraCount := headerNum > 15
	if extraCount {
		headerNum = 0
	}

	if err := wire.WriteUint8(w, uint8(headerNum)<<2); err != nil {
		return err
	}

	total := p.Length()
	if total <= 0x7F {
		if err := wire.WriteUint8(w, uint8(total)); err != nil {
			return err
		}
	} else {
		if err := wire.WriteUint8(w, uint8(total>>8)|0x80); err != nil {
			return err
		}
		if err := wire.WriteUint8(w, uint8(total)); err != nil {
			return err
		}
	}

	if extraCount {
		if err := wire.WriteUint8(w, uint8(len(p.Events))); err != nil {
			return err
		}
	}

	for _, ev := range p.Events {
		if err := EncodeFastPathEvent(w, ev); err != nil {
			return err
		}
	}
	return nil
}

// Length reports the exact serialized size of the PDU, including the
// variable-width length field itself.
func (p *FastPathInputPDU) Length() int {
	n := 1 // fpInputHeader
	if len(p.Events) > 15 {
		n++ // numEvents overflow byte
	}
	for _, ev := range p.Events {
		n += FastPathEventLength(ev)
	}
	// the length field covers the whole PDU, its own width included
	if n+1 <= 0x7F {
		return n + 1
	}
	return n + 2
}
