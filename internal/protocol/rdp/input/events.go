package input

import (
	"io"

	"github.com/mirrorbeam/rdpwire/internal/protocol/rdp/wire"
)

// SyncToggleFlags reports the client's keyboard lock state in a
// synchronize event.
type SyncToggleFlags uint32

const (
	SyncScrollLock SyncToggleFlags = 0x00000001
	SyncNumLock    SyncToggleFlags = 0x00000002
	SyncCapsLock   SyncToggleFlags = 0x00000004
	SyncKanaLock   SyncToggleFlags = 0x00000008
)

const syncToggleMask = SyncScrollLock | SyncNumLock | SyncCapsLock | SyncKanaLock

// KeyboardFlags qualifies a scan-code or unicode keyboard event.
type KeyboardFlags uint16

const (
	KbdExtended  KeyboardFlags = 0x0100
	KbdExtended1 KeyboardFlags = 0x0200
	KbdDown      KeyboardFlags = 0x4000
	KbdRelease   KeyboardFlags = 0x8000
)

const keyboardMask = KbdExtended | KbdExtended1 | KbdDown | KbdRelease

// PointerFlags qualifies a mouse event. The low byte of the wire field is
// not part of the flag set: it carries the wheel rotation magnitude and
// is surfaced as MouseEvent.WheelUnits.
type PointerFlags uint16

const (
	PtrWheelNegative PointerFlags = 0x0100 // wire-level sign bit, folded into WheelUnits
	PtrWheel         PointerFlags = 0x0200
	PtrHWheel        PointerFlags = 0x0400
	PtrMove          PointerFlags = 0x0800
	PtrButton1       PointerFlags = 0x1000
	PtrButton2       PointerFlags = 0x2000
	PtrButton3       PointerFlags = 0x4000
	PtrDown          PointerFlags = 0x8000
)

// PointerXFlags qualifies an extended (X-button) mouse event.
type PointerXFlags uint16

const (
	PtrXButton1 PointerXFlags = 0x0001
	PtrXButton2 PointerXFlags = 0x0002
	PtrXDown    PointerXFlags = 0x8000
)

const pointerXMask = PtrXButton1 | PtrXButton2 | PtrXDown

// RelPointerFlags qualifies a relative mouse event.
type RelPointerFlags uint16

const (
	RelPtrMove    RelPointerFlags = 0x0800
	RelPtrButton1 RelPointerFlags = 0x1000
	RelPtrButton2 RelPointerFlags = 0x2000
	RelPtrButton3 RelPointerFlags = 0x4000
	RelPtrDown    RelPointerFlags = 0x8000
)

// SyncEvent reports the keyboard lock state. Payload: pad2Octets (2) +
// toggleFlags (4).
type SyncEvent struct {
	Flags SyncToggleFlags
}

func (*SyncEvent) Type() EventType { return TypeSync }
func (*SyncEvent) isInputEvent()   {}

func (e *SyncEvent) Decode(r io.Reader) error {
	if err := wire.Skip(r, 2); err != nil { // pad2Octets
		return err
	}
	flags, err := wire.ReadUint32(r)
	if err != nil {
		return err
	}
	if SyncToggleFlags(flags)&^syncToggleMask != 0 {
		return &UnsupportedFlagsError{Field: "toggleFlags", Value: flags}
	}
	e.Flags = SyncToggleFlags(flags)
	return nil
}

func (e *SyncEvent) Encode(w io.Writer) error {
	if err := wire.WriteUint16(w, 0); err != nil { // pad2Octets
		return err
	}
	return wire.WriteUint32(w, uint32(e.Flags))
}

func (*SyncEvent) Length() int { return 6 }

// UnusedEvent is the legacy INPUT_EVENT_UNUSED shape: six bytes of
// padding with no information content. It is kept in the variant set so
// that clients emitting it still round-trip.
type UnusedEvent struct{}

func (*UnusedEvent) Type() EventType { return TypeUnused }
func (*UnusedEvent) isInputEvent()   {}

func (e *UnusedEvent) Decode(r io.Reader) error {
	return wire.Skip(r, 6) // pad4Octets + pad2Octets
}

func (e *UnusedEvent) Encode(w io.Writer) error {
	if err := wire.WriteUint32(w, 0); err != nil {
		return err
	}
	return wire.WriteUint16(w, 0)
}

func (*UnusedEvent) Length() int { return 6 }

// ScanCodeEvent is a keyboard event identified by hardware scan code.
// Payload: keyboardFlags (2) + keyCode (2) + pad2Octets (2).
type ScanCodeEvent struct {
	Flags   KeyboardFlags
	KeyCode uint16
}

func (*ScanCodeEvent) Type() EventType { return TypeScanCode }
func (*ScanCodeEvent) isInputEvent()   {}

func (e *ScanCodeEvent) Decode(r io.Reader) error {
	flags, keyCode, err := decodeKeyboardPayload(r)
	if err != nil {
		return err
	}
	e.Flags = flags
	e.KeyCode = keyCode
	return nil
}

func (e *ScanCodeEvent) Encode(w io.Writer) error {
	return encodeKeyboardPayload(w, e.Flags, e.KeyCode)
}

func (*ScanCodeEvent) Length() int { return 6 }

// UnicodeEvent is a keyboard event carrying a Unicode code unit instead
// of a scan code. Same payload layout as ScanCodeEvent.
type UnicodeEvent struct {
	Flags KeyboardFlags
	Code  uint16
}

func (*UnicodeEvent) Type() EventType { return TypeUnicode }
func (*UnicodeEvent) isInputEvent()   {}

func (e *UnicodeEvent) Decode(r io.Reader) error {
	flags, code, err := decodeKeyboardPayload(r)
	if err != nil {
		return err
	}
	e.Flags = flags
	e.Code = code
	return nil
}

func (e *UnicodeEvent) Encode(w io.Writer) error {
	return encodeKeyboardPayload(w, e.Flags, e.Code)
}

func (*UnicodeEvent) Length() int { return 6 }

func decodeKeyboardPayload(r io.Reader) (KeyboardFlags, uint16, error) {
	flags, err := wire.ReadUint16(r)
	if err != nil {
		return 0, 0, err
	}
	if KeyboardFlags(flags)&^keyboardMask != 0 {
		return 0, 0, &UnsupportedFlagsError{Field: "keyboardFlags", Value: uint32(flags)}
	}
	code, err := wire.ReadUint16(r)
	if err != nil {
		return 0, 0, err
	}
	if err := wire.Skip(r, 2); err != nil { // pad2Octets
		return 0, 0, err
	}
	return KeyboardFlags(flags), code, nil
}

func encodeKeyboardPayload(w io.Writer, flags KeyboardFlags, code uint16) error {
	if err := wire.WriteUint16(w, uint16(flags)); err != nil {
		return err
	}
	if err := wire.WriteUint16(w, code); err != nil {
		return err
	}
	return wire.WriteUint16(w, 0) // pad2Octets
}

// MouseEvent is an absolute-coordinate mouse event. Payload:
// pointerFlags (2) + xPos (2) + yPos (2).
//
// The wire folds the wheel rotation into the flags field: the low byte is
// the rotation magnitude and PtrWheelNegative carries the sign. Decode
// unfolds that into the signed WheelUnits; Flags holds only the true flag
// bits.
type MouseEvent struct {
	Flags      PointerFlags
	WheelUnits int16
	X, Y       uint16
}

func (*MouseEvent) Type() EventType { return TypeMouse }
func (*MouseEvent) isInputEvent()   {}

func (e *MouseEvent) Decode(r io.Reader) error {
	raw, err := wire.ReadUint16(r)
	if err != nil {
		return err
	}
	units := int16(raw & 0x00FF)
	if PointerFlags(raw)&PtrWheelNegative != 0 {
		units = -units
	}
	e.Flags = PointerFlags(raw) &^ (PtrWheelNegative | 0x00FF)
	e.WheelUnits = units

	if e.X, err = wire.ReadUint16(r); err != nil {
		return err
	}
	e.Y, err = wire.ReadUint16(r)
	return err
}

func (e *MouseEvent) Encode(w io.Writer) error {
	raw := uint16(e.Flags) &^ 0x01FF
	units := e.WheelUnits
	if units < 0 {
		raw |= uint16(PtrWheelNegative)
		units = -units
	}
	raw |= uint16(units) & 0x00FF

	if err := wire.WriteUint16(w, raw); err != nil {
		return err
	}
	if err := wire.WriteUint16(w, e.X); err != nil {
		return err
	}
	return wire.WriteUint16(w, e.Y)
}

func (*MouseEvent) Length() int { return 6 }

// MouseXEvent is an extended mouse event for X buttons. Payload:
// pointerFlags (2) + xPos (2) + yPos (2).
type MouseXEvent struct {
	Flags PointerXFlags
	X, Y  uint16
}

func (*MouseXEvent) Type() EventType { return TypeMouseX }
func (*MouseXEvent) isInputEvent()   {}

func (e *MouseXEvent) Decode(r io.Reader) error {
	flags, err := wire.ReadUint16(r)
	if err != nil {
		return err
	}
	if PointerXFlags(flags)&^pointerXMask != 0 {
		return &UnsupportedFlagsError{Field: "pointerFlags", Value: uint32(flags)}
	}
	e.Flags = PointerXFlags(flags)

	if e.X, err = wire.ReadUint16(r); err != nil {
		return err
	}
	e.Y, err = wire.ReadUint16(r)
	return err
}

func (e *MouseXEvent) Encode(w io.Writer) error {
	if err := wire.WriteUint16(w, uint16(e.Flags)); err != nil {
		return err
	}
	if err := wire.WriteUint16(w, e.X); err != nil {
		return err
	}
	return wire.WriteUint16(w, e.Y)
}

func (*MouseXEvent) Length() int { return 6 }

// MouseRelEvent is a relative-motion mouse event. Payload:
// pointerFlags (2) + xDelta (2, signed) + yDelta (2, signed).
type MouseRelEvent struct {
	Flags  RelPointerFlags
	XDelta int16
	YDelta int16
}

func (*MouseRelEvent) Type() EventType { return TypeMouseRel }
func (*MouseRelEvent) isInputEvent()   {}

func (e *MouseRelEvent) Decode(r io.Reader) error {
	flags, err := wire.ReadUint16(r)
	if err != nil {
		return err
	}
	e.Flags = RelPointerFlags(flags)

	if e.XDelta, err = wire.ReadInt16(r); err != nil {
		return err
	}
	e.YDelta, err = wire.ReadInt16(r)
	return err
}

func (e *MouseRelEvent) Encode(w io.Writer) error {
	if err := wire.WriteUint16(w, uint16(e.Flags)); err != nil {
		return err
	}
	if err := wire.WriteInt16(w, e.XDelta); err != nil {
		return err
	}
	return wire.WriteInt16(w, e.YDelta)
}

func (*MouseRelEvent) Length() int { return 6 }
