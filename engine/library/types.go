package library

import (
	"encoding/hex"
	"fmt"
)

type Wallet struct {
	PrivateKey string
	SeedWords  string
	Account    Account
}

// PublicKeyBytes returns the 32 byte x-only public key of the wallet.
func (w Wallet) PublicKeyBytes() []byte {
	b, err := hex.DecodeString(w.Account)
	if err != nil {
		LogCLI(fmt.Sprintf("wallet account %q is not hex: %s", w.Account, err), 1)
		return nil
	}
	return b
}

// Account is the hex encoded x-only public key of a node or peer.
type Account = string

type Sha256 = string

// Millis is a unix timestamp in milliseconds.
type Millis = int64

// Hash160 is RIPEMD160(SHA256(data)). Witnesses and signed witnesses are keyed by it.
type Hash160 [20]byte

func (h Hash160) String() string {
	return hex.EncodeToString(h[:])
}

func (h Hash160) Bytes() []byte {
	b := make([]byte, len(h))
	copy(b, h[:])
	return b
}

func (h Hash160) IsZero() bool {
	return h == Hash160{}
}

func (h Hash160) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

func (h *Hash160) UnmarshalText(text []byte) error {
	parsed, err := Hash160FromHex(string(text))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

func Hash160FromBytes(b []byte) (h Hash160, e error) {
	if len(b) != len(h) {
		return h, fmt.Errorf("hash must be %d bytes, got %d", len(h), len(b))
	}
	copy(h[:], b)
	return h, nil
}

func Hash160FromHex(s string) (h Hash160, e error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return h, fmt.Errorf("invalid hash %q: %w", s, err)
	}
	return Hash160FromBytes(b)
}
