// Package session owns one compositor connection.
//
// Ownership boundary:
// - blocking, exact-length frame send/receive over a byte stream
// - Connected/Closed lifecycle; any transport or framing error closes
// - optional SCM_RIGHTS handle passing and peer credentials on unix sockets
// - reconnect backoff policy for callers that redial
//
// A Session holds no protocol state and is not safe for concurrent use.
package session
