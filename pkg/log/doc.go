// Package log defines the event logging interface used across ledd.
//
// Components do not write log lines directly. They emit structured
// Events through a Logger, and the application decides where those
// events go (slog console output, nothing at all, or both).
//
// Events carry a component tag, a category, and exactly one typed
// payload: a state change, a message summary, or an error. This keeps
// log consumers able to filter mechanically rather than by parsing
// message strings.
package log
