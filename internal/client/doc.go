// Package client owns one compositor connection: it dials with bounded
// retries, serializes sends, pairs queries with their responses and
// delivers compositor events to a handler.
package client
