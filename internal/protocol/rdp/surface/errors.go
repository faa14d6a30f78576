package surface

import "fmt"

// InvalidCommandTypeError reports a cmdType outside the closed surface
// command set.
type InvalidCommandTypeError struct {
	Code uint16
}

func (e *InvalidCommandTypeError) Error() string {
	return fmt.Sprintf("invalid surface command type 0x%04X", e.Code)
}

// InvalidFrameActionError reports a frame marker action outside
// {begin, end}.
type InvalidFrameActionError struct {
	Code uint16
}

func (e *InvalidFrameActionError) Error() string {
	return fmt.Sprintf("invalid frame marker action 0x%04X", e.Code)
}

// UnsupportedFlagsError reports a flags field carrying bits outside its
// closed set.
type UnsupportedFlagsError struct {
	Field string
	Value uint8
}

func (e *UnsupportedFlagsError) Error() string {
	return fmt.Sprintf("unsupported %s value 0x%02X", e.Field, e.Value)
}
