package signedwitness

import (
	"bytes"
	"testing"
	"time"

	"agewitness/engine/actors"
	"agewitness/engine/library"
	"agewitness/state/witness"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var start = time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)

type recordingPublisher struct {
	published []SignedWitness
	forced    []bool
}

func (p *recordingPublisher) PublishSignedWitness(s SignedWitness, force bool) error {
	p.published = append(p.published, s)
	p.forced = append(p.forced, force)
	return nil
}

type onlySigner []byte

func (o onlySigner) IsAcceptedSigner(pubKey []byte) bool {
	return bytes.Equal(o, pubKey)
}

func newWallet(t *testing.T) library.Wallet {
	t.Helper()
	w, err := actors.NewWallet()
	require.NoError(t, err)
	return w
}

func testWitness() witness.Witness {
	return witness.Witness{
		Hash: witness.Derive([]byte("iban"), []byte("salt"), make([]byte, 32)),
		Date: library.ToMillis(start.Add(-90 * library.Day)),
	}
}

func TestSignWitnessStoresAndPublishes(t *testing.T) {
	clock := library.NewManualClock(start)
	pub := &recordingPublisher{}
	c := NewChain(actors.NewMemoryStore(), pub, clock)
	arbitrator := newWallet(t)

	s, err := c.SignWitness(testWitness(), arbitrator, []byte{1, 2, 3}, 5_000_000)
	require.NoError(t, err)

	assert.True(t, s.Verify())
	assert.True(t, c.IsSigned(testWitness().Hash))
	assert.Equal(t, library.ToMillis(start), s.Date)
	require.Len(t, pub.published, 1)
	assert.False(t, pub.forced[0])

	require.NoError(t, c.Add(s))
	assert.Len(t, pub.published, 1, "the same record is stored once")
	assert.Equal(t, 1, c.Size())
}

func TestWitnessDatesAreAscendingAndEarliestCounts(t *testing.T) {
	clock := library.NewManualClock(start)
	c := NewChain(actors.NewMemoryStore(), nil, clock)
	arbitrator := newWallet(t)
	w := testWitness()

	_, err := c.SignWitness(w, arbitrator, nil, 0)
	require.NoError(t, err)
	clock.Set(start.Add(-10 * library.Day))
	_, err = c.SignWitness(w, arbitrator, nil, 0)
	require.NoError(t, err)
	clock.Set(start.Add(5 * library.Day))
	_, err = c.SignWitness(w, arbitrator, nil, 0)
	require.NoError(t, err)

	assert.Equal(t, []library.Millis{
		library.ToMillis(start.Add(-10 * library.Day)),
		library.ToMillis(start),
		library.ToMillis(start.Add(5 * library.Day)),
	}, c.WitnessDates(w.Hash))

	earliest, ok := c.EarliestSignedDate(w.Hash)
	require.True(t, ok)
	assert.Equal(t, library.ToMillis(start.Add(-10*library.Day)), earliest)

	_, ok = c.EarliestSignedDate(library.Hash160{})
	assert.False(t, ok)
	assert.Empty(t, c.WitnessDates(library.Hash160{}))
}

func TestReplicatedRecordNeedsValidSignature(t *testing.T) {
	c := NewChain(actors.NewMemoryStore(), nil, library.NewManualClock(start))
	arbitrator := newWallet(t)
	sig, err := library.SignSchnorr(arbitrator.PrivateKey, SigningMessage(testWitness().Hash, library.ToMillis(start)))
	require.NoError(t, err)
	s := SignedWitness{
		WitnessHash:  testWitness().Hash,
		Date:         library.ToMillis(start),
		SignerPubKey: arbitrator.PublicKeyBytes(),
		Signature:    sig,
	}

	forged := s
	forged.WitnessHash = witness.Derive([]byte("other"), nil, make([]byte, 32))
	inserted, err := c.OnReplicatedRecord(forged)
	assert.Error(t, err)
	assert.False(t, inserted)

	inserted, err = c.OnReplicatedRecord(s)
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = c.OnReplicatedRecord(s)
	require.NoError(t, err)
	assert.False(t, inserted)
}

func TestSignerPolicyRejectsUnknownArbitrators(t *testing.T) {
	c := NewChain(actors.NewMemoryStore(), nil, library.NewManualClock(start))
	accepted, stranger := newWallet(t), newWallet(t)
	c.SetSignerPolicy(onlySigner(accepted.PublicKeyBytes()))

	signer := NewChain(nil, nil, library.NewManualClock(start))
	fromStranger, err := signer.SignWitness(testWitness(), stranger, nil, 0)
	require.NoError(t, err)
	fromAccepted, err := signer.SignWitness(testWitness(), accepted, nil, 0)
	require.NoError(t, err)

	_, err = c.OnReplicatedRecord(fromStranger)
	assert.Error(t, err)
	inserted, err := c.OnReplicatedRecord(fromAccepted)
	require.NoError(t, err)
	assert.True(t, inserted)
	assert.Len(t, c.Records(testWitness().Hash), 1)
}

func TestRedatedRecordIsRejected(t *testing.T) {
	c := NewChain(actors.NewMemoryStore(), nil, library.NewManualClock(start))
	arbitrator := newWallet(t)
	c.SetSignerPolicy(onlySigner(arbitrator.PublicKeyBytes()))

	signer := NewChain(nil, nil, library.NewManualClock(start))
	genuine, err := signer.SignWitness(testWitness(), arbitrator, nil, 0)
	require.NoError(t, err)
	inserted, err := c.OnReplicatedRecord(genuine)
	require.NoError(t, err)
	require.True(t, inserted)

	backdated := genuine
	backdated.Date = library.ToMillis(start.Add(-365 * library.Day))
	assert.False(t, backdated.Verify())
	inserted, err = c.OnReplicatedRecord(backdated)
	assert.Error(t, err)
	assert.False(t, inserted)

	assert.Equal(t, 1, c.Size())
	earliest, ok := c.EarliestSignedDate(testWitness().Hash)
	require.True(t, ok)
	assert.Equal(t, library.ToMillis(start), earliest)
}

func TestDecodedSignatureIsNotSignerKey(t *testing.T) {
	signer := NewChain(nil, nil, library.NewManualClock(start))
	s, err := signer.SignWitness(testWitness(), newWallet(t), nil, 0)
	require.NoError(t, err)
	e, err := EventFromSignedWitness(s, newWallet(t), false, start)
	require.NoError(t, err)

	got, err := SignedWitnessFromEvent(e)
	require.NoError(t, err)
	assert.Equal(t, s.Signature, got.Signature)
	assert.Equal(t, s.SignerPubKey, got.SignerPubKey)
	assert.True(t, got.Verify())
}

func TestPrimaryKeyCoversDate(t *testing.T) {
	s := SignedWitness{WitnessHash: testWitness().Hash, Date: 1, Signature: []byte{1}, SignerPubKey: []byte{2}}
	later := s
	later.Date = 2
	assert.NotEqual(t, s.Hash(), later.Hash())
}

func TestChainReplaysStoreOnRestart(t *testing.T) {
	dir := t.TempDir() + "/"
	store, err := actors.OpenFlatFileStore(dir)
	require.NoError(t, err)
	c := NewChain(store, nil, library.NewManualClock(start))
	s, err := c.SignWitness(testWitness(), newWallet(t), []byte{9}, 42)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := actors.OpenFlatFileStore(dir)
	require.NoError(t, err)
	restarted := NewChain(reopened, nil, library.NewManualClock(start))
	require.Equal(t, 1, restarted.Size())
	assert.Equal(t, s, restarted.Records(testWitness().Hash)[0])
}

func TestEventRoundTrip(t *testing.T) {
	node := newWallet(t)
	signer := NewChain(nil, nil, library.NewManualClock(start))
	s, err := signer.SignWitness(testWitness(), newWallet(t), []byte{4, 5}, 1_000)
	require.NoError(t, err)

	e, err := EventFromSignedWitness(s, node, false, start.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, start.Unix(), int64(e.CreatedAt))

	c := NewChain(actors.NewMemoryStore(), nil, library.NewManualClock(start))
	got, inserted, err := c.HandleEvent(e)
	require.NoError(t, err)
	assert.True(t, inserted)
	assert.Equal(t, s, got)

	forced, err := EventFromSignedWitness(s, node, true, start.Add(time.Hour))
	require.NoError(t, err)
	assert.NotEqual(t, e.ID, forced.ID)
	_, inserted, err = c.HandleEvent(forced)
	require.NoError(t, err)
	assert.False(t, inserted)
}
