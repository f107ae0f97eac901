package session

import (
	"context"
	"fmt"
	"os"

	"github.com/apex/log"
	"github.com/grandcat/zeroconf"
)

const mdnsService = "_collabcore._tcp"

// Discover advertises this agent over mDNS and logs peers found on the
// LAN, so co-located participants can find a relay without
// configuration. It blocks until ctx is done.
func Discover(ctx context.Context, port int) error {
	host, _ := os.Hostname()
	server, err := zeroconf.Register(
		fmt.Sprintf("CollabCore-%s", host),
		mdnsService,
		"local.",
		port,
		nil,
		nil,
	)
	if err != nil {
		return fmt.Errorf("registering mDNS service: %w", err)
	}
	defer server.Shutdown()
	log.WithField("service", mdnsService).Info("mDNS service registered")

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return fmt.Errorf("initializing mDNS resolver: %w", err)
	}
	entries := make(chan *zeroconf.ServiceEntry)
	go func() {
		for entry := range entries {
			log.WithFields(log.Fields{
				"peer": entry.Instance,
				"port": entry.Port,
			}).Info("discovered peer")
		}
	}()
	if err := resolver.Browse(ctx, mdnsService, "local.", entries); err != nil {
		return fmt.Errorf("browsing mDNS services: %w", err)
	}
	<-ctx.Done()
	return nil
}
