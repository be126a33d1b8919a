package relays

import (
	"context"
	"errors"
	"fmt"
	"time"

	"agewitness/engine/actors"
	"agewitness/engine/library"
	"agewitness/state/signedwitness"
	"agewitness/state/witness"
	"github.com/nbd-wtf/go-nostr"
	"github.com/sasha-s/go-deadlock"
	"golang.org/x/sync/errgroup"
)

const publishTimeout = 10 * time.Second

// Replicator carries both stores over nostr relays. It publishes our records to every relay and
// streams the records of everyone else back in.
type Replicator struct {
	urls         []string
	wallet       library.Wallet
	clock        library.Clock
	dial         Dialer
	doNotPublish bool
	connectivity *Connectivity
	cache        *eventCache
	liveCheck    LiveCheck

	conns map[string]Relay
	mutex *deadlock.Mutex
	retry time.Duration
}

func NewReplicator(settings actors.Settings, wallet library.Wallet, clock library.Clock, dial Dialer) *Replicator {
	if clock == nil {
		clock = library.SystemClock{}
	}
	if dial == nil {
		dial = DialNostr
	}
	return &Replicator{
		urls:         settings.Relays,
		wallet:       wallet,
		clock:        clock,
		dial:         dial,
		doNotPublish: settings.DoNotPublish,
		connectivity: NewConnectivity(),
		cache:        newEventCache(),
		conns:        make(map[string]Relay),
		mutex:        &deadlock.Mutex{},
		retry:        10 * time.Second,
	}
}

// LiveCheck vets an event that arrived after the relay sent its stored history.
type LiveCheck func(nostr.Event) error

func (r *Replicator) SetLiveCheck(check LiveCheck) {
	r.liveCheck = check
}

func (r *Replicator) Connectivity() *Connectivity {
	return r.connectivity
}

func (r *Replicator) PublishWitness(w witness.Witness, forceRebroadcast bool) error {
	e, err := witness.EventFromWitness(w, r.wallet, forceRebroadcast, r.clock.Now())
	if err != nil {
		return err
	}
	return r.Publish(e)
}

func (r *Replicator) PublishSignedWitness(s signedwitness.SignedWitness, forceRebroadcast bool) error {
	e, err := signedwitness.EventFromSignedWitness(s, r.wallet, forceRebroadcast, r.clock.Now())
	if err != nil {
		return err
	}
	return r.Publish(e)
}

// Publish sends e to every relay at once. It only fails when no relay took the event.
func (r *Replicator) Publish(e nostr.Event) error {
	r.cache.push(e.ID)
	if r.doNotPublish {
		library.LogCLI(fmt.Sprintf("doNotPublish is set, not publishing event %s", e.ID), 4)
		return nil
	}
	if len(r.urls) == 0 {
		return errors.New("no relays configured")
	}
	sane := library.ValidateSaneExecutionTime()
	defer sane()
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	failures := make([]error, len(r.urls))
	var g errgroup.Group
	for i, url := range r.urls {
		i, url := i, url
		g.Go(func() error {
			failures[i] = r.publishTo(ctx, url, e)
			return failures[i]
		})
	}
	if err := g.Wait(); err == nil {
		return nil
	}
	var failed []error
	for _, err := range failures {
		if err != nil {
			library.LogCLI(err.Error(), 2)
			failed = append(failed, err)
		}
	}
	if len(failed) < len(r.urls) {
		return nil
	}
	return fmt.Errorf("event %s was not accepted by any relay: %w", e.ID, errors.Join(failed...))
}

func (r *Replicator) publishTo(ctx context.Context, url string, e nostr.Event) error {
	relay, err := r.relay(ctx, url)
	if err != nil {
		return fmt.Errorf("could not connect to relay %s: %w", url, err)
	}
	if err := relay.Publish(ctx, e); err != nil {
		r.drop(url)
		return fmt.Errorf("could not publish to relay %s: %w", url, err)
	}
	return nil
}

func (r *Replicator) relay(ctx context.Context, url string) (Relay, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if relay, ok := r.conns[url]; ok {
		return relay, nil
	}
	relay, err := r.dial(ctx, url)
	if err != nil {
		return nil, err
	}
	r.conns[url] = relay
	return relay, nil
}

// drop forgets a broken connection so the next use dials again.
func (r *Replicator) drop(url string) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if relay, ok := r.conns[url]; ok {
		relay.Close()
		delete(r.conns, url)
	}
}

func (r *Replicator) Close() {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	for url, relay := range r.conns {
		relay.Close()
		delete(r.conns, url)
	}
}
