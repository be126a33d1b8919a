package verification

import (
	"fmt"

	"agewitness/engine/library"
	"agewitness/state/witness"
)

type Failure int

const (
	None Failure = iota
	ReleaseDateTooOld
	ClockSkew
	HashMismatch
	TradeLimitExceeded
	SignatureInvalid
)

func (f Failure) String() string {
	switch f {
	case None:
		return "none"
	case ReleaseDateTooOld:
		return "release date too old"
	case ClockSkew:
		return "clock skew"
	case HashMismatch:
		return "hash mismatch"
	case TradeLimitExceeded:
		return "trade limit exceeded"
	case SignatureInvalid:
		return "signature invalid"
	}
	return fmt.Sprintf("failure(%d)", int(f))
}

// Claim is what a peer sends to prove its account age during a trade handshake.
type Claim struct {
	PeerCurrentDate     library.Millis
	AccountInputData    []byte
	Salt                []byte
	PeerSignaturePubKey []byte

	// ClaimedWitnessHash is optional, older peers do not send it.
	ClaimedWitnessHash []byte
	Nonce              []byte
	SignatureOverNonce []byte
}

type Trade struct {
	Amount       int64
	CurrencyCode string
	BaseLimit    int64
}

// PeerWitness is the witness a verification ran against: one we hold (Persisted) or a transient
// one made up for a peer whose witness has not reached us (Synthesized). Synthesized witnesses
// are never stored.
type PeerWitness interface {
	peerWitness() witness.Witness
}

type Persisted struct {
	Witness witness.Witness
}

type Synthesized struct {
	Witness witness.Witness
}

func (p Persisted) peerWitness() witness.Witness   { return p.Witness }
func (s Synthesized) peerWitness() witness.Witness { return s.Witness }

func WitnessOf(p PeerWitness) witness.Witness {
	if p == nil {
		return witness.Witness{}
	}
	return p.peerWitness()
}

type Result struct {
	Failure Failure
	Reason  string
	Witness PeerWitness
}

func (r Result) OK() bool {
	return r.Failure == None
}

// Err turns a failed result into an error for the trade protocol.
func (r Result) Err() error {
	if r.OK() {
		return nil
	}
	return &Error{Failure: r.Failure, Reason: r.Reason}
}

type Error struct {
	Failure Failure
	Reason  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("peer verification failed: %s: %s", e.Failure, e.Reason)
}
