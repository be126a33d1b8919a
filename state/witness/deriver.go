package witness

import (
	"time"

	"agewitness/engine/library"
	"agewitness/state/payment"
)

// Derive is the witness hash. Every peer must compute it byte for byte the same way, the
// verification of a trading peer is a recomputation.
func Derive(accountInputData, salt, ownerPubKey []byte) library.Hash160 {
	return library.Sha256Ripemd160(accountInputData, salt, ownerPubKey)
}

func DeriveFromPayload(p payment.PaymentAccountPayload, ownerPubKey []byte) library.Hash160 {
	return Derive(p.AgeWitnessInputData, p.Salt, ownerPubKey)
}

// NewWitness dates a fresh witness now. It is not stored.
func (r *Registry) NewWitness(p payment.PaymentAccountPayload, ownerPubKey []byte) Witness {
	return Witness{
		Hash: DeriveFromPayload(p, ownerPubKey),
		Date: library.ToMillis(r.clock.Now()),
	}
}

func (r *Registry) Find(p payment.PaymentAccountPayload, ownerPubKey []byte) Lookup {
	return r.Lookup(DeriveFromPayload(p, ownerPubKey))
}

// GetOrCreate returns the stored witness for the account or a fresh one dated now. Publishing is
// left to the caller.
func (r *Registry) GetOrCreate(p payment.PaymentAccountPayload, ownerPubKey []byte) Witness {
	if w, ok := r.Get(DeriveFromPayload(p, ownerPubKey)); ok {
		return w
	}
	return r.NewWitness(p, ownerPubKey)
}

// PublishMyWitness publishes our own witness for an account unless the network already has it.
func (r *Registry) PublishMyWitness(p payment.PaymentAccountPayload, ownerPubKey []byte) error {
	w := r.GetOrCreate(p, ownerPubKey)
	if r.Contains(w.Hash) {
		return nil
	}
	return r.Publish(w, false)
}

// AccountAge is how long the witness has existed at now.
func AccountAge(w Witness, now time.Time) time.Duration {
	return now.Sub(w.CreatedAt())
}
