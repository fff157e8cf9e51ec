package discovery

import (
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/enbility/zeroconf/v3"
)

// mDNS constants for the command service.
const (
	// ServiceType is the mDNS service type for the command protocol.
	ServiceType = "_ledd._tcp"

	// Domain is the mDNS domain.
	Domain = "local."

	// MaxInstanceNameLen is the maximum mDNS instance name length.
	MaxInstanceNameLen = 63
)

// ServiceInfo describes the advertised service.
type ServiceInfo struct {
	// Instance is the service instance name (e.g., the device name).
	Instance string

	// Port is the command server port.
	Port int

	// DeviceName is published as a TXT record.
	DeviceName string

	// Interface restricts advertising to one interface (optional;
	// empty means all interfaces).
	Interface string

	// TTL for mDNS records (optional).
	TTL time.Duration
}

// Advertiser announces and withdraws the service.
type Advertiser interface {
	// Advertise starts announcing the service.
	Advertise(info *ServiceInfo) error

	// Stop withdraws the announcement. Stopping an idle advertiser
	// is a no-op.
	Stop() error
}

// MDNSAdvertiser implements Advertiser using zeroconf.
type MDNSAdvertiser struct {
	mu     sync.Mutex
	server *zeroconf.Server
}

// NewMDNSAdvertiser creates a new mDNS advertiser.
func NewMDNSAdvertiser() *MDNSAdvertiser {
	return &MDNSAdvertiser{}
}

// Advertise registers the service. A previous registration is
// withdrawn first.
func (a *MDNSAdvertiser) Advertise(info *ServiceInfo) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.server != nil {
		a.server.Shutdown()
		a.server = nil
	}

	instanceName := info.Instance
	if len(instanceName) > MaxInstanceNameLen {
		instanceName = instanceName[:MaxInstanceNameLen]
	}

	txtRecords := []string{
		fmt.Sprintf("device=%s", info.DeviceName),
	}

	var opts []zeroconf.ServerOption
	if info.TTL > 0 {
		opts = append(opts, zeroconf.TTL(uint32(info.TTL.Seconds())))
	}

	// nil means all interfaces
	var ifaces []net.Interface
	if info.Interface != "" {
		iface, err := net.InterfaceByName(info.Interface)
		if err != nil {
			return fmt.Errorf("failed to resolve interface %q: %w", info.Interface, err)
		}
		ifaces = []net.Interface{*iface}
	}

	server, err := zeroconf.Register(
		instanceName,
		ServiceType,
		Domain,
		info.Port,
		txtRecords,
		ifaces,
		opts...,
	)
	if err != nil {
		return fmt.Errorf("failed to register mDNS service: %w", err)
	}

	a.server = server
	return nil
}

// Stop withdraws the service registration.
func (a *MDNSAdvertiser) Stop() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.server != nil {
		a.server.Shutdown()
		a.server = nil
	}
	return nil
}
