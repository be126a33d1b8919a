package relays

import (
	"context"

	"github.com/nbd-wtf/go-nostr"
)

// Relay is one connection the replicator publishes to and subscribes on.
type Relay interface {
	Publish(ctx context.Context, e nostr.Event) error
	Subscribe(ctx context.Context, filters nostr.Filters) (*nostr.Subscription, error)
	Close() error
}

type Dialer func(ctx context.Context, url string) (Relay, error)

type nostrRelay struct {
	relay *nostr.Relay
}

func DialNostr(ctx context.Context, url string) (Relay, error) {
	relay, err := nostr.RelayConnect(ctx, url)
	if err != nil {
		return nil, err
	}
	return nostrRelay{relay: relay}, nil
}

func (r nostrRelay) Publish(ctx context.Context, e nostr.Event) error {
	_, err := r.relay.Publish(ctx, e)
	return err
}

func (r nostrRelay) Subscribe(ctx context.Context, filters nostr.Filters) (*nostr.Subscription, error) {
	return r.relay.Subscribe(ctx, filters)
}

func (r nostrRelay) Close() error {
	return r.relay.Close()
}
