package verification

import (
	"bytes"
	"fmt"
	"time"

	"agewitness/engine/actors"
	"agewitness/engine/library"
	"agewitness/state/witness"
)

type WitnessLookup interface {
	Lookup(hash library.Hash160) witness.Lookup
}

type LimitPolicy interface {
	ComputeLimit(baseLimit int64, currencyCode string, lookup witness.Lookup, asOf time.Time) int64
}

type Verifier struct {
	registry         WitnessLookup
	policy           LimitPolicy
	clock            library.Clock
	scheduler        library.Scheduler
	releaseDate      time.Time
	skewTolerance    time.Duration
	challengeTimeout time.Duration
}

func NewVerifier(registry WitnessLookup, policy LimitPolicy, clock library.Clock, settings actors.Settings) *Verifier {
	if clock == nil {
		clock = library.SystemClock{}
	}
	v := &Verifier{
		registry:         registry,
		policy:           policy,
		clock:            clock,
		scheduler:        library.RealScheduler{},
		releaseDate:      settings.ReleaseDate,
		skewTolerance:    settings.ClockSkewTolerance,
		challengeTimeout: settings.ChallengeTimeout,
	}
	if v.releaseDate.IsZero() {
		v.releaseDate = actors.WitnessReleaseDate
	}
	if v.skewTolerance <= 0 {
		v.skewTolerance = library.Day
	}
	if v.challengeTimeout <= 0 {
		v.challengeTimeout = 30 * time.Second
	}
	return v
}

// SetScheduler replaces the timer source used for challenge timeouts.
func (v *Verifier) SetScheduler(s library.Scheduler) {
	v.scheduler = s
}

// Verify runs the checks on a peer's claim in order and stops at the first failure.
func (v *Verifier) Verify(trade Trade, claim Claim) Result {
	now := v.clock.Now()
	recomputed := witness.Derive(claim.AccountInputData, claim.Salt, claim.PeerSignaturePubKey)
	peer := v.resolve(recomputed, claim.ClaimedWitnessHash, now)
	w := WitnessOf(peer)
	fail := func(f Failure, reason string) Result {
		library.LogCLI(fmt.Sprintf("peer witness %s rejected: %s: %s", w.Hash, f, reason), 2)
		return Result{Failure: f, Reason: reason, Witness: peer}
	}

	if !w.CreatedAt().After(v.releaseDate.Add(-library.Day)) {
		return fail(ReleaseDateTooOld, fmt.Sprintf("witness dated %s is before the release on %s", w.CreatedAt().UTC().Format(time.RFC3339), v.releaseDate.Format("2006-01-02")))
	}

	peerNow := library.FromMillis(claim.PeerCurrentDate)
	skew := peerNow.Sub(now)
	if skew < 0 {
		skew = -skew
	}
	if skew > v.skewTolerance {
		return fail(ClockSkew, fmt.Sprintf("peer clock is %s off", skew))
	}

	if recomputed != w.Hash {
		return fail(HashMismatch, fmt.Sprintf("payload hashes to %s", recomputed))
	}
	if len(claim.ClaimedWitnessHash) > 0 && !bytes.Equal(claim.ClaimedWitnessHash, recomputed.Bytes()) {
		return fail(HashMismatch, fmt.Sprintf("peer claimed %x but payload hashes to %s", claim.ClaimedWitnessHash, recomputed))
	}

	limit := v.policy.ComputeLimit(trade.BaseLimit, trade.CurrencyCode, witness.Found{Witness: w}, peerNow)
	if trade.Amount > limit {
		return fail(TradeLimitExceeded, fmt.Sprintf("trade amount %d is above the limit %d", trade.Amount, limit))
	}

	if !verifySignature(claim.PeerSignaturePubKey, claim.Nonce, claim.SignatureOverNonce) {
		return fail(SignatureInvalid, "signature over the nonce does not verify")
	}
	return Result{Failure: None, Witness: peer}
}

// resolve prefers the witness under the hash the peer claims and falls back to the recomputed
// one. A peer whose witness we do not have gets a transient one dated now.
func (v *Verifier) resolve(recomputed library.Hash160, claimed []byte, now time.Time) PeerWitness {
	hash := recomputed
	if h, err := library.Hash160FromBytes(claimed); err == nil {
		hash = h
	}
	for _, h := range []library.Hash160{hash, recomputed} {
		if found, ok := v.registry.Lookup(h).(witness.Found); ok {
			return Persisted{Witness: found.Witness}
		}
	}
	library.LogCLI(fmt.Sprintf("no witness for %s, the peer is probably running an older version", hash), 2)
	return Synthesized{Witness: witness.Witness{Hash: hash, Date: library.ToMillis(now)}}
}

func verifySignature(pubKey, nonce, signature []byte) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			library.LogCLI(fmt.Sprintf("signature verification panicked: %v", r), 2)
			ok = false
		}
	}()
	valid, err := library.VerifySchnorr(pubKey, nonce, signature)
	if err != nil {
		library.LogCLI(err.Error(), 3)
		return false
	}
	return valid
}
