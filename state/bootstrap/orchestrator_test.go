package bootstrap

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"agewitness/engine/actors"
	"agewitness/engine/library"
	"agewitness/state/payment"
	"agewitness/state/witness"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

var now = time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)

type fakeTimer struct {
	delay   time.Duration
	f       func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

type fakeScheduler struct {
	timers []*fakeTimer
}

func (s *fakeScheduler) AfterFunc(d time.Duration, f func()) library.Timer {
	t := &fakeTimer{delay: d, f: f}
	s.timers = append(s.timers, t)
	return t
}

func (s *fakeScheduler) fireAll() {
	for _, t := range s.timers {
		if !t.stopped {
			t.f()
		}
	}
}

type fakeNetwork struct {
	bootstrapped bool
	callbacks    []func()
}

func (n *fakeNetwork) IsBootstrapped() bool { return n.bootstrapped }

func (n *fakeNetwork) OnBootstrapped(f func()) { n.callbacks = append(n.callbacks, f) }

func (n *fakeNetwork) bootstrap() {
	n.bootstrapped = true
	for _, f := range n.callbacks {
		f()
	}
}

type countingPublisher struct {
	forced []bool
	err    error
}

func (p *countingPublisher) PublishWitness(_ witness.Witness, force bool) error {
	p.forced = append(p.forced, force)
	return p.err
}

func accounts() []payment.PaymentAccount {
	sepa, _ := payment.GetPaymentMethodByID(payment.SEPA)
	chains, _ := payment.GetPaymentMethodByID(payment.BlockChains)
	return []payment.PaymentAccount{
		{ID: "eur", Method: sepa, CurrencyCode: "EUR", Payload: payment.PaymentAccountPayload{ID: "eur", AgeWitnessInputData: []byte("iban"), Salt: []byte{1}}},
		{ID: "xmr", Method: chains, CurrencyCode: "XMR", IsAsset: true, Payload: payment.PaymentAccountPayload{ID: "xmr", AgeWitnessInputData: []byte("addr")}},
		{ID: "usd", Method: sepa, CurrencyCode: "USD", Payload: payment.PaymentAccountPayload{ID: "usd", AgeWitnessInputData: []byte("acct"), Salt: []byte{2}}},
	}
}

func fixedDelay() time.Duration { return 30 * time.Second }

func setup(bootstrapped bool) (*Orchestrator, *fakeScheduler, *fakeNetwork, *countingPublisher, *witness.Registry) {
	pub := &countingPublisher{}
	registry := witness.NewRegistry(actors.NewMemoryStore(), pub, library.NewManualClock(now))
	scheduler := &fakeScheduler{}
	network := &fakeNetwork{bootstrapped: bootstrapped}
	o := NewOrchestrator(registry, network, scheduler, fixedDelay, accounts, make([]byte, 32))
	return o, scheduler, network, pub, registry
}

func TestRepublishesFiatAccountsWhenAlreadyConnected(t *testing.T) {
	o, scheduler, _, pub, registry := setup(true)
	o.Start()
	require.Len(t, scheduler.timers, 2, "asset accounts are skipped")
	assert.Empty(t, pub.forced, "nothing goes out before the delay")

	scheduler.fireAll()
	assert.Equal(t, []bool{true, true}, pub.forced)
	assert.Equal(t, 2, registry.Size())
}

func TestWaitsForFirstBootstrap(t *testing.T) {
	o, scheduler, network, _, _ := setup(false)
	o.Start()
	assert.Empty(t, scheduler.timers)

	network.bootstrap()
	network.bootstrap()
	assert.Len(t, scheduler.timers, 2, "scheduled once")
}

func TestStopCancelsPendingRepublications(t *testing.T) {
	o, scheduler, _, pub, _ := setup(true)
	o.Start()
	o.Stop()
	scheduler.fireAll()
	assert.Empty(t, pub.forced)
	for _, timer := range scheduler.timers {
		assert.True(t, timer.stopped)
	}
}

func TestFailedRepublishIsNotFatal(t *testing.T) {
	o, scheduler, _, pub, _ := setup(true)
	pub.err = errors.New("relays unreachable")
	o.Start()
	assert.NotPanics(t, scheduler.fireAll)
	assert.Len(t, pub.forced, 2)
}

func TestRandomDelayStaysInRange(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		seed := rapid.Int64().Draw(t, "seed")
		delay := RandomDelay(20*time.Second, 60*time.Second, rand.New(rand.NewSource(seed)))
		for i := 0; i < 20; i++ {
			d := delay()
			if d < 20*time.Second || d >= 60*time.Second {
				t.Fatalf("delay %s out of [20s, 60s)", d)
			}
		}
	})
}
