package signedwitness

import (
	"fmt"

	"agewitness/engine/library"
	"agewitness/state/witness"
)

// SignWitness lets an arbitrator attest a witness after a dispute. The record is dated now,
// stored and replicated.
func (c *Chain) SignWitness(w witness.Witness, arbitrator library.Wallet, counterpartyPubKey []byte, tradeAmount int64) (SignedWitness, error) {
	date := library.ToMillis(c.clock.Now())
	sig, err := library.SignSchnorr(arbitrator.PrivateKey, SigningMessage(w.Hash, date))
	if err != nil {
		return SignedWitness{}, fmt.Errorf("could not sign witness %s: %w", w.Hash, err)
	}
	s := SignedWitness{
		WitnessHash:        w.Hash,
		Date:               date,
		SignerPubKey:       arbitrator.PublicKeyBytes(),
		Signature:          sig,
		WitnessOwnerPubKey: counterpartyPubKey,
		TradeAmount:        tradeAmount,
	}
	library.LogCLI(fmt.Sprintf("signing witness %s for a trade of %d sat", w.Hash, tradeAmount), 4)
	return s, c.Add(s)
}
