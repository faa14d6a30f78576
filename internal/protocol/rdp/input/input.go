// Package input implements the input-event PDU families of the RDP wire
// protocol: the slow-path event sequence carried in TS_INPUT_PDU_DATA and
// the fast-path input PDU.
//
// # Slow-path wire layout
//
// The event-sequence PDU is a count-prefixed homogeneous container:
//
//	┌────────┬──────┬──────────────┬──────────────────────────────────────┐
//	│ Offset │ Size │ Field        │ Description                          │
//	├────────┼──────┼──────────────┼──────────────────────────────────────┤
//	│   0    │  2   │ numEvents    │ Number of events that follow         │
//	│   2    │  2   │ pad2Octets   │ Zero on encode, ignored on decode    │
//	│   4    │ 12×N │ events       │ numEvents input events, in order     │
//	└────────┴──────┴──────────────┴──────────────────────────────────────┘
//
// Each event is 12 bytes:
//
//	┌────────┬──────┬──────────────┬──────────────────────────────────────┐
//	│   0    │  4   │ eventTime    │ Ignored on decode, zero on encode    │
//	│   4    │  2   │ messageType  │ Event discriminant (EventType)       │
//	│   6    │  6   │ payload      │ Variant-specific fields              │
//	└────────┴──────┴──────────────┴──────────────────────────────────────┘
//
// The declared event count is authoritative: decode consumes exactly that
// many events and propagates the first element failure instead of
// returning a shorter sequence. Event order is input ordering and is
// preserved exactly.
//
// All multi-byte fields are little-endian.
//
// Reference: [MS-RDPBCGR] Section 2.2.8.1.1.3.1.1
package input

import (
	"io"

	"github.com/mirrorbeam/rdpwire/internal/protocol/rdp/wire"
)

// EventType is the discriminant identifying a slow-path input event
// variant. The set is closed: any other value on the wire is a decode
// failure, never a fallback variant.
type EventType uint16

const (
	TypeSync     EventType = 0x0000
	TypeUnused   EventType = 0x0002
	TypeScanCode EventType = 0x0004
	TypeUnicode  EventType = 0x0005
	TypeMouse    EventType = 0x8001
	TypeMouseX   EventType = 0x8002
	TypeMouseRel EventType = 0x8004
)

func (t EventType) String() string {
	switch t {
	case TypeSync:
		return "SYNC"
	case TypeUnused:
		return "UNUSED"
	case TypeScanCode:
		return "SCANCODE"
	case TypeUnicode:
		return "UNICODE"
	case TypeMouse:
		return "MOUSE"
	case TypeMouseX:
		return "MOUSEX"
	case TypeMouseRel:
		return "MOUSEREL"
	default:
		return "UNKNOWN"
	}
}

// eventHeaderSize is the per-event prefix: eventTime (4) + messageType (2).
const eventHeaderSize = 6

// Event is the closed set of slow-path input event variants. Each variant
// implements the codec triad over its own 6-byte payload; the shared
// 6-byte event header (timestamp + discriminant) is handled by
// DecodeEvent, EncodeEvent and EventLength.
//
// The interface is sealed: only the variant types in this package satisfy
// it.
type Event interface {
	wire.PDU
	Type() EventType

	isInputEvent()
}

// DecodeEvent reads one complete input event: the 4-byte event time
// (parsed and discarded; the server has no use for client timestamps),
// the 2-byte discriminant, and the variant payload.
func DecodeEvent(r io.Reader) (Event, error) {
	if _, err := wire.ReadUint32(r); err != nil { // eventTime
		return nil, err
	}
	code, err := wire.ReadUint16(r)
	if err != nil {
		return nil, err
	}

	var ev Event
	switch EventType(code) {
	case TypeSync:
		ev = &SyncEvent{}
	case TypeUnused:
		ev = &UnusedEvent{}
	case TypeScanCode:
		ev = &ScanCodeEvent{}
	case TypeUnicode:
		ev = &UnicodeEvent{}
	case TypeMouse:
		ev = &MouseEvent{}
	case TypeMouseX:
		ev = &MouseXEvent{}
	case TypeMouseRel:
		ev = &MouseRelEvent{}
	default:
		return nil, &InvalidEventTypeError{Code: code}
	}

	if err := ev.(wire.Decoder).Decode(r); err != nil {
		return nil, err
	}
	return ev, nil
}

// EncodeEvent writes one complete input event. The event time is written
// as zero: it carries no protocol-relevant information in this direction
// of travel.
func EncodeEvent(w io.Writer, ev Event) error {
	if err := wire.WriteUint32(w, 0); err != nil { // eventTime
		return err
	}
	if err := wire.WriteUint16(w, uint16(ev.Type())); err != nil {
		return err
	}
	return ev.Encode(w)
}

// EventLength reports the full serialized size of one event, header
// included.
func EventLength(ev Event) int {
	return eventHeaderSize + ev.Length()
}

// EventPDU is the slow-path event-sequence PDU: an ordered collection of
// input events.
type EventPDU struct {
	Events []Event
}

// Decode reads the count-prefixed event sequence. It consumes exactly the
// declared number of events, failing with the first element's error if
// the sequence is cut short; no partial result is produced.
func (p *EventPDU) Decode(r io.Reader) error {
	numEvents, err := wire.ReadUint16(r)
	if err != nil {
		return err
	}
	if _, err := wire.ReadUint16(r); err != nil { // pad2Octets
		return err
	}

	events := make([]Event, 0, numEvents)
	for i := 0; i < int(numEvents); i++ {
		ev, err := DecodeEvent(r)
		if err != nil {
			return err
		}
		events = append(events, ev)
	}
	p.Events = events
	return nil
}

// Encode writes the event sequence in collection order. The count field
// is 16 bits wide; a collection that does not fit is rejected before any
// byte is emitted.
func (p *EventPDU) Encode(w io.Writer) error {
	if len(p.Events) > 0xFFFF {
		return ErrTooManyEvents
	}
	if err := wire.WriteUint16(w, uint16(len(p.Events))); err != nil {
		return err
	}
	if err := wire.WriteUint16(w, 0); err != nil { // pad2Octets
		return err
	}
	for _, ev := range p.Events {
		if err := EncodeEvent(w, ev); err != nil {
			return err
		}
	}
	return nil
}

// Length reports the exact serialized size of the PDU.
func (p *EventPDU) Length() int {
	n := 4 // numEvents + pad2Octets
	for _, ev := range p.Events {
		n += EventLength(ev)
	}
	return n
}
