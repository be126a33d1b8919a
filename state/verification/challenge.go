package verification

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"agewitness/engine/library"
	"agewitness/state/payment"
	"agewitness/state/witness"
	"github.com/google/uuid"
)

var (
	ErrChallengeTimeout = errors.New("peer did not answer the account age challenge in time")
	ErrPeerDisconnected = errors.New("peer disconnected during the account age challenge")
)

const NonceSize = 32

// Challenge lives for one handshake step and is discarded when it ends.
type Challenge struct {
	ID        uuid.UUID
	Nonce     []byte
	CreatedAt time.Time
}

func NewChallenge(now time.Time) (Challenge, error) {
	nonce := make([]byte, NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return Challenge{}, fmt.Errorf("could not create nonce: %w", err)
	}
	return Challenge{ID: uuid.New(), Nonce: nonce, CreatedAt: now}, nil
}

// Peer is the trading counterparty as seen by the handshake.
type Peer interface {
	SendChallenge(ctx context.Context, c Challenge) error
}

// Challenge sends a fresh nonce to the peer and verifies the claim that comes back on responses.
// A closed responses channel means the peer went away.
func (v *Verifier) Challenge(ctx context.Context, peer Peer, trade Trade, responses <-chan Claim) (Result, error) {
	c, err := NewChallenge(v.clock.Now())
	if err != nil {
		return Result{}, err
	}
	if err := peer.SendChallenge(ctx, c); err != nil {
		return Result{}, fmt.Errorf("could not send challenge %s: %w", c.ID, err)
	}
	expired := make(chan struct{})
	timer := v.scheduler.AfterFunc(v.challengeTimeout, func() { close(expired) })
	defer timer.Stop()
	select {
	case claim, ok := <-responses:
		if !ok {
			library.LogCLI(fmt.Sprintf("challenge %s: %s", c.ID, ErrPeerDisconnected), 2)
			return Result{}, ErrPeerDisconnected
		}
		// the peer has to sign our nonce, not one of its choosing
		claim.Nonce = c.Nonce
		return v.Verify(trade, claim), nil
	case <-expired:
		library.LogCLI(fmt.Sprintf("challenge %s: %s", c.ID, ErrChallengeTimeout), 2)
		return Result{}, ErrChallengeTimeout
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

// Respond is the peer side of the handshake: it answers a nonce with a claim for one of our
// payment accounts.
func Respond(wallet library.Wallet, payload payment.PaymentAccountPayload, nonce []byte, now time.Time) (Claim, error) {
	sig, err := library.SignSchnorr(wallet.PrivateKey, nonce)
	if err != nil {
		return Claim{}, fmt.Errorf("could not sign nonce: %w", err)
	}
	pubKey := wallet.PublicKeyBytes()
	return Claim{
		PeerCurrentDate:     library.ToMillis(now),
		AccountInputData:    payload.AgeWitnessInputData,
		Salt:                payload.Salt,
		PeerSignaturePubKey: pubKey,
		ClaimedWitnessHash:  witness.DeriveFromPayload(payload, pubKey).Bytes(),
		Nonce:               nonce,
		SignatureOverNonce:  sig,
	}, nil
}
