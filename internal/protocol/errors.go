package protocol

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownMessageType = errors.New("protocol: unknown message type")
	ErrSizeMismatch       = errors.New("protocol: payload size mismatch")
)

// SizeError reports a payload whose length cannot belong to its type.
// Exact is set for fixed-size types; otherwise Want is a minimum.
type SizeError struct {
	MessageType uint16
	Got         int
	Want        int
	Exact       bool
}

func (e *SizeError) Error() string {
	if e.Exact {
		return fmt.Sprintf("protocol: message_type=%d: payload is %d bytes, want exactly %d", e.MessageType, e.Got, e.Want)
	}
	return fmt.Sprintf("protocol: message_type=%d: payload is %d bytes, want at least %d", e.MessageType, e.Got, e.Want)
}

func (e *SizeError) Unwrap() error {
	return ErrSizeMismatch
}
