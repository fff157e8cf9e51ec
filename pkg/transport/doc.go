// Package transport implements the message-oriented TCP transport for
// the remote command protocol.
//
// Messages are length-prefixed frames (4-byte big-endian length, then
// payload). The server runs a fixed pool of session slots: when all
// slots are occupied, new connections are refused at the accept
// boundary. This is deliberate admission control, not queuing — a
// refused client sees its connection closed immediately and may retry
// later.
package transport
