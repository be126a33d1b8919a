package relays

import (
	"context"
	"errors"
	"testing"
	"time"

	"agewitness/engine/actors"
	"agewitness/engine/library"
	"agewitness/state/witness"
	"github.com/nbd-wtf/go-nostr"
	"github.com/sasha-s/go-deadlock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)

type fakeRelay struct {
	url       string
	fail      bool
	published *[]string
	mutex     *deadlock.Mutex
	events    *[]nostr.Event
}

func (f fakeRelay) Publish(_ context.Context, e nostr.Event) error {
	if f.fail {
		return errors.New("rejected")
	}
	f.mutex.Lock()
	defer f.mutex.Unlock()
	*f.published = append(*f.published, f.url)
	*f.events = append(*f.events, e)
	return nil
}

func (f fakeRelay) Subscribe(context.Context, nostr.Filters) (*nostr.Subscription, error) {
	return nil, errors.New("not supported")
}

func (f fakeRelay) Close() error { return nil }

type fakeNetwork struct {
	failing   map[string]bool
	published []string
	events    []nostr.Event
	dials     int
	mutex     *deadlock.Mutex
}

func newFakeNetwork(failing ...string) *fakeNetwork {
	n := &fakeNetwork{failing: make(map[string]bool), mutex: &deadlock.Mutex{}}
	for _, url := range failing {
		n.failing[url] = true
	}
	return n
}

func (n *fakeNetwork) dial(_ context.Context, url string) (Relay, error) {
	n.mutex.Lock()
	n.dials++
	n.mutex.Unlock()
	return fakeRelay{url: url, fail: n.failing[url], published: &n.published, events: &n.events, mutex: n.mutex}, nil
}

func newReplicator(t *testing.T, network *fakeNetwork, settings actors.Settings) *Replicator {
	t.Helper()
	wallet, err := actors.NewWallet()
	require.NoError(t, err)
	return NewReplicator(settings, wallet, library.NewManualClock(now), network.dial)
}

func testWitness() witness.Witness {
	return witness.Witness{Hash: witness.Derive([]byte("iban"), nil, make([]byte, 32)), Date: library.ToMillis(now.Add(-40 * library.Day))}
}

func TestPublishFansOutToEveryRelay(t *testing.T) {
	network := newFakeNetwork()
	r := newReplicator(t, network, actors.Settings{Relays: []string{"wss://a", "wss://b", "wss://c"}})

	require.NoError(t, r.PublishWitness(testWitness(), false))
	assert.ElementsMatch(t, []string{"wss://a", "wss://b", "wss://c"}, network.published)

	require.NoError(t, r.PublishWitness(testWitness(), false))
	assert.Equal(t, 3, network.dials, "connections are reused")
}

func TestPublishStampsEventsWithRecordDateUnlessForced(t *testing.T) {
	network := newFakeNetwork()
	r := newReplicator(t, network, actors.Settings{Relays: []string{"wss://a"}})

	require.NoError(t, r.PublishWitness(testWitness(), false))
	require.NoError(t, r.PublishWitness(testWitness(), true))
	require.Len(t, network.events, 2)
	assert.Equal(t, testWitness().CreatedAt().Unix(), int64(network.events[0].CreatedAt))
	assert.Equal(t, now.Unix(), int64(network.events[1].CreatedAt))
}

func TestPublishToleratesSomeFailingRelays(t *testing.T) {
	network := newFakeNetwork("wss://bad")
	r := newReplicator(t, network, actors.Settings{Relays: []string{"wss://good", "wss://bad"}})
	assert.NoError(t, r.PublishWitness(testWitness(), false))
	assert.Equal(t, []string{"wss://good"}, network.published)

	network = newFakeNetwork("wss://bad", "wss://worse")
	r = newReplicator(t, network, actors.Settings{Relays: []string{"wss://bad", "wss://worse"}})
	assert.Error(t, r.PublishWitness(testWitness(), false))
}

func TestDoNotPublish(t *testing.T) {
	network := newFakeNetwork()
	r := newReplicator(t, network, actors.Settings{Relays: []string{"wss://a"}, DoNotPublish: true})
	require.NoError(t, r.PublishWitness(testWitness(), false))
	assert.Empty(t, network.published)
	assert.Equal(t, 0, network.dials)
}

func TestReceiveDeduplicatesAndFilters(t *testing.T) {
	network := newFakeNetwork()
	r := newReplicator(t, network, actors.Settings{})
	out := make(chan nostr.Event, 4)
	e, err := witness.EventFromWitness(testWitness(), r.wallet, false, now)
	require.NoError(t, err)

	assert.True(t, r.receive(context.Background(), e, out, false))
	assert.False(t, r.receive(context.Background(), e, out, false))

	note := nostr.Event{PubKey: r.wallet.Account, CreatedAt: nostr.Timestamp(now.Unix()), Kind: 1, Content: "hi"}
	note.ID = note.GetID()
	require.NoError(t, note.Sign(r.wallet.PrivateKey))
	assert.False(t, r.receive(context.Background(), note, out, false))

	forged, err := witness.EventFromWitness(testWitness(), r.wallet, true, now.Add(time.Hour))
	require.NoError(t, err)
	forged.Sig = e.Sig
	assert.False(t, r.receive(context.Background(), forged, out, false))

	assert.Len(t, out, 1)
}

func TestLiveCheckOnlyAppliesAfterStoredHistory(t *testing.T) {
	network := newFakeNetwork()
	r := newReplicator(t, network, actors.Settings{})
	registry := witness.NewRegistry(nil, nil, library.NewManualClock(now))
	r.SetLiveCheck(registry.LiveEventCheck(library.Day))
	out := make(chan nostr.Event, 4)

	backdated, err := witness.EventFromWitness(testWitness(), r.wallet, true, now)
	require.NoError(t, err)
	assert.False(t, r.receive(context.Background(), backdated, out, true))
	assert.True(t, r.receive(context.Background(), backdated, out, false), "stored history is taken as is")

	fresh := witness.Witness{Hash: witness.Derive([]byte("new"), nil, make([]byte, 32)), Date: library.ToMillis(now.Add(-time.Hour))}
	e, err := witness.EventFromWitness(fresh, r.wallet, false, now)
	require.NoError(t, err)
	assert.True(t, r.receive(context.Background(), e, out, true))
	assert.Len(t, out, 2)
}

func TestOwnEventsAreNotReceivedBack(t *testing.T) {
	network := newFakeNetwork()
	r := newReplicator(t, network, actors.Settings{Relays: []string{"wss://a"}})
	require.NoError(t, r.PublishWitness(testWitness(), false))
	require.Len(t, network.events, 1)
	assert.False(t, r.receive(context.Background(), network.events[0], make(chan nostr.Event, 1), false))
}

func TestConnectivityRunsCallbacksOnce(t *testing.T) {
	c := NewConnectivity()
	calls := 0
	c.OnBootstrapped(func() { calls++ })
	assert.False(t, c.IsBootstrapped())

	c.SetBootstrapped()
	c.SetBootstrapped()
	assert.True(t, c.IsBootstrapped())
	assert.Equal(t, 1, calls)

	c.OnBootstrapped(func() { calls++ })
	assert.Equal(t, 2, calls, "late callbacks run right away")
}
