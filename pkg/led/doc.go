// Package led defines the indicator's logical state and the authority
// that owns it.
//
// Exactly one State value exists at any instant. The Authority is its
// sole mutator: it consumes commands from the command queue, advances
// the hue on its tick in auto mode, actuates the physical writer, and
// broadcasts every state change on the bus. Every other component
// holds read-only snapshots obtained from the bus.
package led
