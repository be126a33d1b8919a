package eventconductor

import (
	"context"
	"testing"
	"time"

	"agewitness/engine/actors"
	"agewitness/engine/library"
	"agewitness/state/signedwitness"
	"agewitness/state/witness"
	"github.com/nbd-wtf/go-nostr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)

type fixture struct {
	registry  *witness.Registry
	chain     *signedwitness.Chain
	conductor *Conductor
	node      library.Wallet
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	clock := library.NewManualClock(now)
	registry := witness.NewRegistry(actors.NewMemoryStore(), nil, clock)
	chain := signedwitness.NewChain(actors.NewMemoryStore(), nil, clock)
	node, err := actors.NewWallet()
	require.NoError(t, err)
	return fixture{registry: registry, chain: chain, conductor: New(registry, chain), node: node}
}

func (f fixture) events(t *testing.T) (nostr.Event, nostr.Event, witness.Witness) {
	t.Helper()
	w := witness.Witness{Hash: witness.Derive([]byte("iban"), nil, f.node.PublicKeyBytes()), Date: library.ToMillis(now.Add(-50 * library.Day))}
	we, err := witness.EventFromWitness(w, f.node, false, now)
	require.NoError(t, err)

	arbitrator, err := actors.NewWallet()
	require.NoError(t, err)
	signer := signedwitness.NewChain(nil, nil, library.NewManualClock(now))
	s, err := signer.SignWitness(w, arbitrator, nil, 0)
	require.NoError(t, err)
	se, err := signedwitness.EventFromSignedWitness(s, f.node, false, now)
	require.NoError(t, err)
	return we, se, w
}

func TestDrainAppliesEventsByKind(t *testing.T) {
	f := newFixture(t)
	we, se, w := f.events(t)

	f.conductor.Push(we)
	f.conductor.Push(se)
	f.conductor.Push(we)
	assert.Equal(t, 3, f.conductor.Pending())

	assert.Equal(t, 2, f.conductor.Drain())
	assert.Equal(t, 0, f.conductor.Pending())
	assert.True(t, f.registry.Contains(w.Hash))
	assert.True(t, f.chain.IsSigned(w.Hash))
}

func TestUnknownKindIsSkipped(t *testing.T) {
	f := newFixture(t)
	_, err := f.conductor.handle(nostr.Event{ID: "x", Kind: 1})
	assert.ErrorIs(t, err, ErrUnknownKind)

	f.conductor.Push(nostr.Event{ID: "x", Kind: 1})
	assert.Equal(t, 0, f.conductor.Drain())
}

func TestRunDrainsUntilInputCloses(t *testing.T) {
	f := newFixture(t)
	we, se, w := f.events(t)
	in := make(chan nostr.Event, 2)
	in <- we
	in <- se
	close(in)

	done := make(chan struct{})
	go func() {
		f.conductor.Run(context.Background(), in)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("conductor did not stop")
	}
	assert.True(t, f.registry.Contains(w.Hash))
	assert.Equal(t, 1, f.chain.Size())
}
