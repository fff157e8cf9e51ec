// Package connectivity owns the network attachment lifecycle.
//
// The Supervisor runs a four-state machine, forever:
//
//	Detached -> Attaching -> Attached -> Lost -> Attaching -> ...
//
// It is the sole mutator of the connectivity state. Dependents (the
// telemetry publisher, the command server pool, the discovery
// responder) only read it, either as a snapshot via Status or by
// blocking on AwaitAttached / AwaitDetached.
//
// Retries are unbounded: the device has no standalone failure mode, so
// staying Lost and retrying with backoff forever is the designed
// behavior, not a fallback.
package connectivity
