package library

import (
	"encoding/hex"
	"testing"

	"github.com/nbd-wtf/go-nostr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestSha256Ripemd160KnownVector(t *testing.T) {
	// HASH160 of the empty string, as used for bitcoin addresses.
	assert.Equal(t, "b472a266d0bd89c13706a4132ccfb16f7c3b9fcb", Sha256Ripemd160().String())
}

func TestSha256Ripemd160PartsMatchConcatenation(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a := rapid.SliceOf(rapid.Byte()).Draw(t, "a")
		b := rapid.SliceOf(rapid.Byte()).Draw(t, "b")
		joined := append(append([]byte{}, a...), b...)
		if Sha256Ripemd160(a, b) != Sha256Ripemd160(joined) {
			t.Fatalf("split hashing differs from joined hashing")
		}
	})
}

func TestSchnorrRoundTrip(t *testing.T) {
	sk := nostr.GeneratePrivateKey()
	pk, err := nostr.GetPublicKey(sk)
	require.NoError(t, err)
	pub, err := hex.DecodeString(pk)
	require.NoError(t, err)

	sig, err := SignSchnorr(sk, []byte("nonce"))
	require.NoError(t, err)

	ok, err := VerifySchnorr(pub, []byte("nonce"), sig)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifySchnorr(pub, []byte("other nonce"), sig)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifySchnorrRejectsGarbage(t *testing.T) {
	_, err := VerifySchnorr([]byte{1, 2, 3}, []byte("nonce"), make([]byte, 64))
	assert.Error(t, err)

	sk := nostr.GeneratePrivateKey()
	pk, _ := nostr.GetPublicKey(sk)
	pub, _ := hex.DecodeString(pk)
	_, err = VerifySchnorr(pub, []byte("nonce"), []byte{1})
	assert.Error(t, err)
}

func TestHash160Text(t *testing.T) {
	h := Sha256Ripemd160([]byte("witness"))
	text, err := h.MarshalText()
	require.NoError(t, err)

	var parsed Hash160
	require.NoError(t, parsed.UnmarshalText(text))
	assert.Equal(t, h, parsed)

	_, err = Hash160FromHex("abcd")
	assert.Error(t, err)
	_, err = Hash160FromBytes(make([]byte, 19))
	assert.Error(t, err)
}
