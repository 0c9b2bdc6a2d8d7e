package protocol

import (
	"github.com/5hells/icm/internal/protocol/schema"
	"github.com/5hells/icm/internal/protocol/wire"
)

const (
	// Version is the protocol revision. It is never exchanged on the wire.
	Version = 2

	// MaxFDsPerMessage bounds the ancillary handles one frame may carry.
	MaxFDsPerMessage = 4
)

// Message is implemented by pointers to the message structs in this
// package and by nothing else.
type Message interface {
	Type() schema.MessageType
	// Fields returns the payload layout bound to the receiver. Encoding
	// reads through the bindings, decoding writes through them.
	Fields() []wire.Field
	isMessage()
}
