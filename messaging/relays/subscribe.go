package relays

import (
	"context"
	"fmt"
	"time"

	"agewitness/engine/actors"
	"agewitness/engine/library"
	"github.com/nbd-wtf/go-nostr"
)

func filters() nostr.Filters {
	return nostr.Filters{nostr.Filter{
		Kinds: []int{actors.KindAccountAgeWitness, actors.KindSignedWitness},
	}}
}

// Run subscribes on every relay and hands each new witness event to out until ctx is done.
// Subscriptions are restarted when the system wakes from sleep.
func (r *Replicator) Run(ctx context.Context, out chan<- nostr.Event) {
	sleepChan := make(chan bool)
	sleeper(sleepChan)
	for {
		subCtx, cancel := context.WithCancel(ctx)
		for _, url := range r.urls {
			go r.subscribe(subCtx, url, out)
		}
		select {
		case <-sleepChan:
			library.LogCLI("system sleep detected, restarting relay subscriptions", 2)
			cancel()
			r.Close()
		case <-ctx.Done():
			cancel()
			r.Close()
			return
		}
	}
}

func (r *Replicator) subscribe(ctx context.Context, url string, out chan<- nostr.Event) {
	for ctx.Err() == nil {
		if err := r.subscribeOnce(ctx, url, out); err != nil {
			library.LogCLI(err.Error(), 2)
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(r.retry):
			library.LogCLI("Restarting subscription to "+url, 4)
		}
	}
}

func (r *Replicator) subscribeOnce(ctx context.Context, url string, out chan<- nostr.Event) error {
	relay, err := r.relay(ctx, url)
	if err != nil {
		return fmt.Errorf("could not connect to relay %s: %w", url, err)
	}
	library.LogCLI("Connecting to "+url, 4)
	sub, err := relay.Subscribe(ctx, filters())
	if err != nil {
		r.drop(url)
		return fmt.Errorf("could not subscribe to relay %s: %w", url, err)
	}
	defer sub.Close()
	stored := make(chan struct{})
	go func() {
		select {
		case <-sub.EndOfStoredEvents:
			close(stored)
			r.connectivity.SetBootstrapped()
		case <-ctx.Done():
		}
	}()
	for {
		select {
		case ev, ok := <-sub.Events:
			if !ok || ev == nil {
				r.drop(url)
				return fmt.Errorf("relay %s closed the subscription", url)
			}
			r.receive(ctx, *ev, out, isClosed(stored))
		case <-ctx.Done():
			return nil
		}
	}
}

func isClosed(c <-chan struct{}) bool {
	select {
	case <-c:
		return true
	default:
		return false
	}
}

// receive passes on events of our kinds with a valid signature that we have not seen before.
// Live events, the ones after the relay's stored history, also have to pass the live check.
func (r *Replicator) receive(ctx context.Context, e nostr.Event, out chan<- nostr.Event, live bool) bool {
	if e.Kind != actors.KindAccountAgeWitness && e.Kind != actors.KindSignedWitness {
		return false
	}
	if ok, _ := e.CheckSignature(); !ok {
		library.LogCLI(fmt.Sprintf("dropping event %s with an invalid signature", e.ID), 3)
		return false
	}
	if live && r.liveCheck != nil {
		if err := r.liveCheck(e); err != nil {
			library.LogCLI(fmt.Sprintf("dropping live event %s: %s", e.ID, err), 3)
			return false
		}
	}
	if !r.cache.push(e.ID) {
		return false
	}
	select {
	case out <- e:
		return true
	case <-ctx.Done():
		return false
	}
}
