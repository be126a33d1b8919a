package signedwitness

import (
	"fmt"
	"time"

	"agewitness/engine/actors"
	"agewitness/engine/library"
	"github.com/nbd-wtf/go-nostr"
)

func (c *Chain) HandleEvent(event nostr.Event) (SignedWitness, bool, error) {
	s, err := SignedWitnessFromEvent(event)
	if err != nil {
		return SignedWitness{}, false, err
	}
	inserted, err := c.OnReplicatedRecord(s)
	return s, inserted, err
}

func SignedWitnessFromEvent(event nostr.Event) (s SignedWitness, e error) {
	if event.Kind != actors.KindSignedWitness {
		return s, fmt.Errorf("event %s of kind %d is not a signed witness", event.ID, event.Kind)
	}
	if sig, _ := event.CheckSignature(); !sig {
		return s, fmt.Errorf("event %s has an invalid signature", event.ID)
	}
	if s.WitnessHash, e = library.GetHashTag(event, "witness"); e != nil {
		return
	}
	if s.Date, e = library.GetInt64Tag(event, "date"); e != nil {
		return
	}
	if s.SignerPubKey, e = library.GetBytesTag(event, "signer"); e != nil {
		return
	}
	if s.Signature, e = library.GetBytesTag(event, "sig"); e != nil {
		return
	}
	if _, ok := library.GetFirstTag(event, "owner"); ok {
		if s.WitnessOwnerPubKey, e = library.GetBytesTag(event, "owner"); e != nil {
			return
		}
	}
	if _, ok := library.GetFirstTag(event, "amount"); ok {
		if s.TradeAmount, e = library.GetInt64Tag(event, "amount"); e != nil {
			return
		}
	}
	return s, nil
}

// EventFromSignedWitness wraps a record for the relays, stamped with the signing date unless
// forceRebroadcast is set.
func EventFromSignedWitness(s SignedWitness, wallet library.Wallet, forceRebroadcast bool, now time.Time) (nostr.Event, error) {
	createdAt := library.FromMillis(s.Date)
	if forceRebroadcast {
		createdAt = now
	}
	tags := nostr.Tags{
		nostr.Tag{"witness", s.WitnessHash.String()},
		library.Int64Tag("date", s.Date),
		library.BytesTag("signer", s.SignerPubKey),
		library.BytesTag("sig", s.Signature),
	}
	if len(s.WitnessOwnerPubKey) > 0 {
		tags = append(tags, library.BytesTag("owner", s.WitnessOwnerPubKey))
	}
	if s.TradeAmount > 0 {
		tags = append(tags, library.Int64Tag("amount", s.TradeAmount))
	}
	e := nostr.Event{
		PubKey:    wallet.Account,
		CreatedAt: nostr.Timestamp(createdAt.Unix()),
		Kind:      actors.KindSignedWitness,
		Tags:      tags,
		Content:   "",
	}
	e.ID = e.GetID()
	if err := e.Sign(wallet.PrivateKey); err != nil {
		return nostr.Event{}, err
	}
	return e, nil
}
