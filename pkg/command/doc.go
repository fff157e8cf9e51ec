// Package command serves the remote command protocol.
//
// A Pool wraps the transport server with the protocol semantics: every
// session receives a status message on connect and after every state
// change, and client commands are enqueued toward the color authority.
// A full command queue or a malformed message produces an error
// response on the session; neither drops the connection. Admission
// control (the fixed slot count) lives in the transport layer.
package command
