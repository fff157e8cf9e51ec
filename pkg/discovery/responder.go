package discovery

import (
	"context"
	"fmt"
	"time"

	"github.com/ledlink/ledd-go/pkg/connectivity"
	"github.com/ledlink/ledd-go/pkg/log"
)

// AttachmentWatcher reports network attachment transitions. The
// connectivity supervisor satisfies this.
type AttachmentWatcher interface {
	AwaitAttached(ctx context.Context) (connectivity.Lease, error)
	AwaitDetached(ctx context.Context) error
}

// ResponderConfig configures a responder.
type ResponderConfig struct {
	// Advertiser announces the service (default: mDNS).
	Advertiser Advertiser

	// Watcher gates advertising on network attachment.
	Watcher AttachmentWatcher

	// Info describes the advertised service.
	Info ServiceInfo

	// Logger for discovery logging (optional).
	Logger log.Logger
}

// Responder advertises the service exactly while the network is
// attached.
type Responder struct {
	config ResponderConfig
}

// NewResponder creates a responder.
func NewResponder(config ResponderConfig) (*Responder, error) {
	if config.Watcher == nil {
		return nil, fmt.Errorf("attachment watcher is required")
	}
	if config.Advertiser == nil {
		config.Advertiser = NewMDNSAdvertiser()
	}
	return &Responder{config: config}, nil
}

// Run tracks attachment transitions until the context is cancelled.
// The announcement is always withdrawn before Run returns.
func (r *Responder) Run(ctx context.Context) error {
	defer r.config.Advertiser.Stop()

	for {
		if _, err := r.config.Watcher.AwaitAttached(ctx); err != nil {
			return nil
		}

		if err := r.config.Advertiser.Advertise(&r.config.Info); err != nil {
			r.logError(err)
		} else {
			r.logState("ADVERTISING", "network attached")
		}

		if err := r.config.Watcher.AwaitDetached(ctx); err != nil {
			return nil
		}

		r.config.Advertiser.Stop()
		r.logState("SILENT", "network lost")
	}
}

func (r *Responder) logState(newState, reason string) {
	if r.config.Logger == nil {
		return
	}
	r.config.Logger.Log(log.Event{
		Timestamp: time.Now(),
		Component: log.ComponentDiscovery,
		Category:  log.CategoryState,
		StateChange: &log.StateChangeEvent{
			Entity:   "announcement",
			NewState: newState,
			Reason:   reason,
		},
	})
}

func (r *Responder) logError(err error) {
	if r.config.Logger == nil {
		return
	}
	r.config.Logger.Log(log.Event{
		Timestamp: time.Now(),
		Component: log.ComponentDiscovery,
		Category:  log.CategoryError,
		Error: &log.ErrorEventData{
			Message: err.Error(),
			Context: "advertise service",
		},
	})
}
