// Package telemetry publishes indicator state to a broker.
//
// The publisher mirrors every color and mode transition onto two
// broker topics. Publishing is best-effort: values are deduplicated
// per topic, and transitions that occur while the network is not
// attached are dropped, never queued. A reattached link catches up on
// the next transition.
package telemetry
