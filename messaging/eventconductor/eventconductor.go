package eventconductor

import (
	"context"
	"errors"
	"fmt"

	"agewitness/engine/actors"
	"agewitness/engine/library"
	"agewitness/state/signedwitness"
	"agewitness/state/witness"
	"github.com/nbd-wtf/go-nostr"
	"github.com/sasha-s/go-deadlock"
)

var ErrUnknownKind = errors.New("no handler for event kind")

type WitnessHandler interface {
	HandleEvent(event nostr.Event) (witness.Witness, bool, error)
}

type SignedWitnessHandler interface {
	HandleEvent(event nostr.Event) (signedwitness.SignedWitness, bool, error)
}

// Conductor queues events from the relays and applies them to the stores in arrival order.
type Conductor struct {
	witnesses       WitnessHandler
	signedWitnesses SignedWitnessHandler
	queue           *library.EventQueue
	mutex           *deadlock.Mutex
	wake            chan struct{}
}

func New(witnesses WitnessHandler, signedWitnesses SignedWitnessHandler) *Conductor {
	return &Conductor{
		witnesses:       witnesses,
		signedWitnesses: signedWitnesses,
		queue:           library.NewEventQueue(16),
		mutex:           &deadlock.Mutex{},
		wake:            make(chan struct{}, 1),
	}
}

func (c *Conductor) Push(event nostr.Event) {
	c.mutex.Lock()
	c.queue.Push(event)
	c.mutex.Unlock()
	select {
	case c.wake <- struct{}{}:
	default:
	}
}

func (c *Conductor) Pending() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.queue.Len()
}

// Drain handles every queued event and returns how many were new to the stores.
func (c *Conductor) Drain() int {
	var inserted int
	for {
		c.mutex.Lock()
		event, ok := c.queue.Pop()
		c.mutex.Unlock()
		if !ok {
			return inserted
		}
		added, err := c.handle(event)
		if err != nil {
			library.LogCLI(err.Error(), 2)
			continue
		}
		if added {
			inserted++
		}
	}
}

func (c *Conductor) handle(event nostr.Event) (bool, error) {
	switch event.Kind {
	case actors.KindAccountAgeWitness:
		w, added, err := c.witnesses.HandleEvent(event)
		if err == nil && added {
			library.LogCLI(fmt.Sprintf("new witness %s", w.Hash), 3)
		}
		return added, err
	case actors.KindSignedWitness:
		s, added, err := c.signedWitnesses.HandleEvent(event)
		if err == nil && added {
			library.LogCLI(fmt.Sprintf("new signed witness for %s", s.WitnessHash), 3)
		}
		return added, err
	}
	return false, fmt.Errorf("event %s of kind %d: %w", event.ID, event.Kind, ErrUnknownKind)
}

// Run moves events from in onto the queue and drains it until ctx is done or in is closed.
func (c *Conductor) Run(ctx context.Context, in <-chan nostr.Event) {
	actors.GetWaitGroup().Add(1)
	defer actors.GetWaitGroup().Done()
	for {
		select {
		case event, ok := <-in:
			if !ok {
				c.Drain()
				return
			}
			c.Push(event)
		case <-c.wake:
			c.Drain()
		case <-ctx.Done():
			return
		case <-actors.GetTerminateChan():
			return
		}
	}
}
