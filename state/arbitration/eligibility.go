package arbitration

import (
	"errors"
	"fmt"
	"time"

	"agewitness/engine/library"
	"agewitness/state/payment"
	"agewitness/state/signedwitness"
	"agewitness/state/witness"
)

type WitnessFinder interface {
	Find(p payment.PaymentAccountPayload, ownerPubKey []byte) witness.Lookup
}

type WitnessSigner interface {
	SignWitness(w witness.Witness, arbitrator library.Wallet, counterpartyPubKey []byte, tradeAmount int64) (signedwitness.SignedWitness, error)
}

// Selector picks the buyer accounts from a batch of disputes that an arbitrator can sign.
type Selector struct {
	finder WitnessFinder
	risk   payment.ChargeBackRisk
}

func NewSelector(finder WitnessFinder, risk payment.ChargeBackRisk) Selector {
	return Selector{finder: finder, risk: risk}
}

// BuyerPaymentAccounts returns one item per buyer witness, in dispute order, for disputes on
// method with charge-back risk that the buyer won, whose witness is known and older than safeDate.
func (s Selector) BuyerPaymentAccounts(safeDate time.Time, method payment.PaymentMethod, disputes []Dispute) []BuyerDataItem {
	cutoff := library.ToMillis(safeDate)
	seen := make(map[library.Hash160]struct{})
	var items []BuyerDataItem
	for _, d := range disputes {
		c := d.Contract
		if c.PaymentMethodID != method.ID {
			continue
		}
		if !s.risk.HasChargebackRisk(c.PaymentMethodID, c.CurrencyCode) {
			continue
		}
		if !d.BuyerWon() {
			continue
		}
		found, ok := s.finder.Find(c.BuyerPaymentAccountPayload, c.BuyerPubKey).(witness.Found)
		if !ok {
			library.LogCLI(fmt.Sprintf("dispute %s: buyer witness is unknown", d.ID), 3)
			continue
		}
		if found.Witness.Date >= cutoff {
			continue
		}
		if _, dup := seen[found.Witness.Hash]; dup {
			continue
		}
		seen[found.Witness.Hash] = struct{}{}
		items = append(items, BuyerDataItem{
			Payload:      c.BuyerPaymentAccountPayload,
			Witness:      found.Witness,
			TradeAmount:  c.TradeAmount,
			SellerPubKey: c.SellerPubKey,
		})
	}
	return items
}

// SignAll signs every item and keeps going past failures.
func (s Selector) SignAll(chain WitnessSigner, arbitrator library.Wallet, items []BuyerDataItem) ([]signedwitness.SignedWitness, error) {
	var signed []signedwitness.SignedWitness
	var errs []error
	for _, item := range items {
		sw, err := chain.SignWitness(item.Witness, arbitrator, item.SellerPubKey, item.TradeAmount)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		signed = append(signed, sw)
	}
	return signed, errors.Join(errs...)
}
