// Package protocol defines every message exchanged between the compositor
// and its clients and the registry that maps wire type ids to them.
//
// Ownership boundary:
// - frame: 16-byte header and exact-length framing
// - wire: payload field primitives shared by all message types
// - schema: id, name, payload pattern and direction per message type
// - protocol: typed messages, encode/decode through the registry
// - session: one connection, send/receive of whole frames
package protocol
