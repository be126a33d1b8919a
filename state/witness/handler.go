package witness

import (
	"errors"
	"fmt"
	"time"

	"agewitness/engine/actors"
	"agewitness/engine/library"
	"github.com/nbd-wtf/go-nostr"
)

// HandleEvent applies a witness that arrived from a relay.
func (r *Registry) HandleEvent(event nostr.Event) (Witness, bool, error) {
	w, err := WitnessFromEvent(event)
	if err != nil {
		return Witness{}, false, err
	}
	return w, r.OnReplicatedRecord(w), nil
}

var ErrDateOutOfTolerance = errors.New("witness date is too far from the time it arrived")

// LiveEventCheck rejects a newly broadcast witness for an unknown hash whose date is more than
// tolerance away from now. Stored history from relays is not subject to it.
func (r *Registry) LiveEventCheck(tolerance time.Duration) func(nostr.Event) error {
	return func(event nostr.Event) error {
		if event.Kind != actors.KindAccountAgeWitness {
			return nil
		}
		w, err := WitnessFromEvent(event)
		if err != nil {
			return err
		}
		if r.Contains(w.Hash) {
			return nil
		}
		off := w.CreatedAt().Sub(r.clock.Now())
		if off < 0 {
			off = -off
		}
		if off > tolerance {
			return fmt.Errorf("%w: witness %s is %s off", ErrDateOutOfTolerance, w.Hash, off)
		}
		return nil
	}
}

func WitnessFromEvent(event nostr.Event) (w Witness, e error) {
	if event.Kind != actors.KindAccountAgeWitness {
		return w, fmt.Errorf("event %s of kind %d is not a witness", event.ID, event.Kind)
	}
	if sig, _ := event.CheckSignature(); !sig {
		return w, fmt.Errorf("event %s has an invalid signature", event.ID)
	}
	hash, err := library.GetHashTag(event, "witness")
	if err != nil {
		return w, err
	}
	date, err := library.GetInt64Tag(event, "date")
	if err != nil {
		return w, err
	}
	if date <= 0 {
		return w, fmt.Errorf("event %s carries witness date %d", event.ID, date)
	}
	return Witness{Hash: hash, Date: date}, nil
}

// EventFromWitness wraps a witness for the relays. Without forceRebroadcast the event is stamped
// with the witness date so every publish of the same witness has the same ID and relays drop the
// duplicates. A forced rebroadcast is stamped now and gets through.
func EventFromWitness(w Witness, wallet library.Wallet, forceRebroadcast bool, now time.Time) (nostr.Event, error) {
	createdAt := w.CreatedAt()
	if forceRebroadcast {
		createdAt = now
	}
	e := nostr.Event{
		PubKey:    wallet.Account,
		CreatedAt: nostr.Timestamp(createdAt.Unix()),
		Kind:      actors.KindAccountAgeWitness,
		Tags: nostr.Tags{
			nostr.Tag{"witness", w.Hash.String()},
			library.Int64Tag("date", w.Date),
		},
		Content: "",
	}
	e.ID = e.GetID()
	if err := e.Sign(wallet.PrivateKey); err != nil {
		return nostr.Event{}, err
	}
	return e, nil
}
