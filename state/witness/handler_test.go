package witness

import (
	"testing"
	"time"

	"agewitness/engine/actors"
	"agewitness/engine/library"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventRoundTrip(t *testing.T) {
	wallet, err := actors.NewWallet()
	require.NoError(t, err)
	w := Witness{Hash: Derive([]byte("x"), []byte("y"), wallet.PublicKeyBytes()), Date: library.ToMillis(start)}

	e, err := EventFromWitness(w, wallet, false, start.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, start.Unix(), int64(e.CreatedAt))

	r, _, _ := newTestRegistry(t)
	got, inserted, err := r.HandleEvent(e)
	require.NoError(t, err)
	assert.True(t, inserted)
	assert.Equal(t, w, got)

	_, inserted, err = r.HandleEvent(e)
	require.NoError(t, err)
	assert.False(t, inserted)
}

func TestForcedEventGetsNewID(t *testing.T) {
	wallet, err := actors.NewWallet()
	require.NoError(t, err)
	w := Witness{Hash: Derive([]byte("x"), nil, wallet.PublicKeyBytes()), Date: library.ToMillis(start)}

	plain, err := EventFromWitness(w, wallet, false, start.Add(time.Hour))
	require.NoError(t, err)
	again, err := EventFromWitness(w, wallet, false, start.Add(2*time.Hour))
	require.NoError(t, err)
	forced, err := EventFromWitness(w, wallet, true, start.Add(time.Hour))
	require.NoError(t, err)

	assert.Equal(t, plain.ID, again.ID)
	assert.NotEqual(t, plain.ID, forced.ID)
}

func TestTamperedEventIsRejected(t *testing.T) {
	wallet, err := actors.NewWallet()
	require.NoError(t, err)
	w := Witness{Hash: Derive([]byte("x"), nil, wallet.PublicKeyBytes()), Date: library.ToMillis(start)}
	e, err := EventFromWitness(w, wallet, false, start)
	require.NoError(t, err)

	e.Tags[1] = library.Int64Tag("date", 1)
	_, err = WitnessFromEvent(e)
	assert.Error(t, err)

	e.Kind = actors.KindSignedWitness
	_, err = WitnessFromEvent(e)
	assert.Error(t, err)
}

func TestLiveEventCheckRejectsBackdatedNewWitness(t *testing.T) {
	wallet, err := actors.NewWallet()
	require.NoError(t, err)
	r, _, _ := newTestRegistry(t)
	check := r.LiveEventCheck(library.Day)

	old := Witness{Hash: Derive([]byte("old"), nil, wallet.PublicKeyBytes()), Date: library.ToMillis(start.Add(-400 * library.Day))}
	e, err := EventFromWitness(old, wallet, true, start)
	require.NoError(t, err)
	assert.ErrorIs(t, check(e), ErrDateOutOfTolerance)

	_, inserted, err := r.HandleEvent(e)
	require.NoError(t, err)
	require.True(t, inserted)
	assert.NoError(t, check(e), "a republished witness we already hold is fine")

	fresh := Witness{Hash: Derive([]byte("fresh"), nil, wallet.PublicKeyBytes()), Date: library.ToMillis(start.Add(-time.Hour))}
	e, err = EventFromWitness(fresh, wallet, false, start)
	require.NoError(t, err)
	assert.NoError(t, check(e))

	note := e
	note.Kind = 1
	assert.NoError(t, check(note))
}
