// Package compositor is the compositor side of the IPC socket: a unix
// listener with one blocking read loop per client, and an in-memory
// window table that answers queries and emits shell events. It does not
// render.
package compositor
