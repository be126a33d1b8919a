package signedwitness

import (
	"encoding/binary"

	"agewitness/engine/library"
)

// SignedWitness is an arbitrator's attestation that the owner of WitnessHash was paid out in a
// dispute on Date. A witness can collect many of them, the earliest one counts.
type SignedWitness struct {
	WitnessHash        library.Hash160 `json:"witnessHash"`
	Date               library.Millis  `json:"date"`
	SignerPubKey       []byte          `json:"signerPubKey"`
	Signature          []byte          `json:"signature"`
	WitnessOwnerPubKey []byte          `json:"witnessOwnerPubKey,omitempty"`
	TradeAmount        int64           `json:"tradeAmount,omitempty"`
}

func dateBytes(date library.Millis) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(date))
	return b
}

// SigningMessage is what the signer commits to: the witness hash followed by the big endian date.
// Moving the date invalidates the signature.
func SigningMessage(witnessHash library.Hash160, date library.Millis) []byte {
	return append(witnessHash.Bytes(), dateBytes(date)...)
}

// Hash is the primary key in the chain.
func (s SignedWitness) Hash() library.Hash160 {
	return library.Sha256Ripemd160(s.WitnessHash.Bytes(), s.Signature, s.SignerPubKey, dateBytes(s.Date))
}

// Verify checks the signer's signature over the witness hash and date.
func (s SignedWitness) Verify() bool {
	ok, err := library.VerifySchnorr(s.SignerPubKey, SigningMessage(s.WitnessHash, s.Date), s.Signature)
	if err != nil {
		library.LogCLI(err.Error(), 3)
		return false
	}
	return ok
}

type Publisher interface {
	PublishSignedWitness(s SignedWitness, forceRebroadcast bool) error
}

// SignerPolicy decides which keys may sign witnesses. Without one any valid signature is taken.
type SignerPolicy interface {
	IsAcceptedSigner(pubKey []byte) bool
}

type Mapped map[library.Hash160]SignedWitness
