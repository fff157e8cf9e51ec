// Package discovery announces the device on the local network.
//
// The responder registers a "_ledd._tcp" mDNS service whenever the
// network is attached and withdraws it on loss, so controllers only
// ever discover a device they can actually reach.
package discovery
