// Package wire defines the CBOR encoding of the remote command
// protocol and the telemetry envelope.
//
// Messages use integer map keys for compactness and are encoded
// deterministically so identical messages are byte-identical. The
// decoder is deliberately lenient about unknown fields for forward
// compatibility.
//
// The command protocol has two client verbs (set_color, set_mode) and
// two server message kinds (status, error). Anything else is a typed
// decode error; malformed input is rejected to the client, never a
// crash.
package wire
