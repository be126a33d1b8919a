package library

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"golang.org/x/crypto/ripemd160"
)

// Sha256Ripemd160 hashes the concatenation of parts. Streaming the parts into SHA256 gives the
// same digest as hashing them joined, so peers never need to agree on a buffer layout.
func Sha256Ripemd160(parts ...[]byte) Hash160 {
	s := sha256.New()
	for _, p := range parts {
		s.Write(p)
	}
	r := ripemd160.New()
	r.Write(s.Sum(nil))
	var h Hash160
	copy(h[:], r.Sum(nil))
	return h
}

// SignSchnorr signs SHA256(message) with a hex encoded secp256k1 private key.
func SignSchnorr(privateKey string, message []byte) ([]byte, error) {
	keyb, err := hex.DecodeString(privateKey)
	if err != nil {
		return nil, fmt.Errorf("error decoding key from hex: %w", err)
	}
	sk, _ := btcec.PrivKeyFromBytes(keyb)
	digest := sha256.Sum256(message)
	sig, err := schnorr.Sign(sk, digest[:])
	if err != nil {
		return nil, err
	}
	return sig.Serialize(), nil
}

// VerifySchnorr checks a signature made by SignSchnorr against a 32 byte x-only public key.
func VerifySchnorr(pubKey, message, signature []byte) (bool, error) {
	pk, err := schnorr.ParsePubKey(pubKey)
	if err != nil {
		return false, fmt.Errorf("invalid public key: %w", err)
	}
	sig, err := schnorr.ParseSignature(signature)
	if err != nil {
		return false, fmt.Errorf("invalid signature: %w", err)
	}
	digest := sha256.Sum256(message)
	return sig.Verify(digest[:], pk), nil
}
