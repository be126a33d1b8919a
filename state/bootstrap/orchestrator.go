package bootstrap

import (
	"fmt"

	"agewitness/engine/library"
	"agewitness/state/payment"
	"agewitness/state/witness"
	"github.com/sasha-s/go-deadlock"
)

type WitnessPublisher interface {
	GetOrCreate(p payment.PaymentAccountPayload, ownerPubKey []byte) witness.Witness
	Publish(w witness.Witness, forceRebroadcast bool) error
}

// Orchestrator republishes our own witnesses once the node is connected, each account after its
// own random delay so that nodes restarted together do not flood the relays at once.
type Orchestrator struct {
	registry  WitnessPublisher
	network   Network
	scheduler library.Scheduler
	delay     DelayFunc
	accounts  func() []payment.PaymentAccount
	ownerKey  []byte

	mutex     *deadlock.Mutex
	scheduled bool
	stopped   bool
	timers    []library.Timer
}

func NewOrchestrator(registry WitnessPublisher, network Network, scheduler library.Scheduler, delay DelayFunc, accounts func() []payment.PaymentAccount, ownerKey []byte) *Orchestrator {
	return &Orchestrator{
		registry:  registry,
		network:   network,
		scheduler: scheduler,
		delay:     delay,
		accounts:  accounts,
		ownerKey:  ownerKey,
		mutex:     &deadlock.Mutex{},
	}
}

func (o *Orchestrator) Start() {
	if o.network.IsBootstrapped() {
		o.schedule()
		return
	}
	o.network.OnBootstrapped(o.schedule)
}

// Stop cancels republications that have not fired yet.
func (o *Orchestrator) Stop() {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.stopped = true
	for _, t := range o.timers {
		t.Stop()
	}
	o.timers = nil
}

func (o *Orchestrator) schedule() {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	if o.scheduled || o.stopped {
		return
	}
	o.scheduled = true
	for _, account := range o.accounts() {
		if account.IsAsset || payment.IsAssetMethod(account.Method.ID) {
			continue
		}
		account := account
		d := o.delay()
		library.LogCLI(fmt.Sprintf("republishing witness of account %s in %s", account.ID, d), 3)
		o.timers = append(o.timers, o.scheduler.AfterFunc(d, func() {
			o.republish(account)
		}))
	}
}

func (o *Orchestrator) republish(account payment.PaymentAccount) {
	o.mutex.Lock()
	stopped := o.stopped
	o.mutex.Unlock()
	if stopped {
		return
	}
	w := o.registry.GetOrCreate(account.Payload, o.ownerKey)
	if err := o.registry.Publish(w, true); err != nil {
		library.LogCLI(fmt.Sprintf("republishing witness of account %s failed: %s", account.ID, err), 2)
		return
	}
	library.LogCLI(fmt.Sprintf("republished witness %s of account %s", w.Hash, account.ID), 4)
}
