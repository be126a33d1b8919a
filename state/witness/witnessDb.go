package witness

import (
	"encoding/json"
	"fmt"

	"agewitness/engine/actors"
	"agewitness/engine/library"
	"github.com/sasha-s/go-deadlock"
)

// Registry is the local view of the replicated witness store. Records come from our own
// publishing and from the network, and are only ever added.
type Registry struct {
	data      map[library.Hash160]Witness
	mutex     *deadlock.RWMutex
	store     actors.AppendOnlyStore
	publisher Publisher
	clock     library.Clock

	started   bool
	available *deadlock.Mutex
}

func NewRegistry(store actors.AppendOnlyStore, publisher Publisher, clock library.Clock) *Registry {
	if clock == nil {
		clock = library.SystemClock{}
	}
	return &Registry{
		data:      make(map[library.Hash160]Witness),
		mutex:     &deadlock.RWMutex{},
		store:     store,
		publisher: publisher,
		clock:     clock,
		available: &deadlock.Mutex{},
	}
}

// startDb replays the persisted store. Every entry point calls it, so nothing from the network
// can be inserted before the records we already had.
func (r *Registry) startDb() {
	r.available.Lock()
	defer r.available.Unlock()
	if r.started {
		return
	}
	r.started = true
	if r.store == nil {
		return
	}
	r.mutex.Lock()
	defer r.mutex.Unlock()
	err := r.store.ReadAll(func(key, value []byte) error {
		var w Witness
		if err := json.Unmarshal(value, &w); err != nil {
			library.LogCLI(fmt.Sprintf("skipping unreadable witness %x: %s", key, err), 2)
			return nil
		}
		if _, exists := r.data[w.Hash]; !exists {
			r.data[w.Hash] = w
		}
		return nil
	})
	if err != nil {
		library.LogCLI(fmt.Sprintf("witness store replay stopped early: %s", err), 2)
	}
	library.LogCLI(fmt.Sprintf("Witness Mind has started with %d witnesses", len(r.data)), 4)
}

// Start replays the store right away instead of on first use.
func (r *Registry) Start() {
	r.startDb()
}

// add is the only mutation path. The first record for a hash wins.
func (r *Registry) add(w Witness) bool {
	r.startDb()
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if _, exists := r.data[w.Hash]; exists {
		return false
	}
	r.data[w.Hash] = w
	if r.store != nil {
		b, err := json.Marshal(w)
		if err == nil {
			err = r.store.Append(w.Hash.Bytes(), b)
		}
		if err != nil {
			library.LogCLI(fmt.Sprintf("could not persist witness %s: %s", w.Hash, err), 2)
		}
	}
	return true
}

func (r *Registry) Lookup(hash library.Hash160) Lookup {
	if w, ok := r.Get(hash); ok {
		return Found{Witness: w}
	}
	return Unknown{Hash: hash}
}

func (r *Registry) Get(hash library.Hash160) (Witness, bool) {
	r.startDb()
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	w, ok := r.data[hash]
	return w, ok
}

func (r *Registry) Contains(hash library.Hash160) bool {
	_, ok := r.Get(hash)
	return ok
}

// Publish stores the witness if it is new and hands it to the replication layer. An already
// known hash is left untouched and only goes out again when forceRebroadcast is set.
func (r *Registry) Publish(w Witness, forceRebroadcast bool) error {
	inserted := r.add(w)
	if !inserted && !forceRebroadcast {
		return nil
	}
	if r.publisher == nil {
		return nil
	}
	if !inserted {
		// rebroadcast what we hold, never a competing date
		w, _ = r.Get(w.Hash)
	}
	if err := r.publisher.PublishWitness(w, forceRebroadcast); err != nil {
		return fmt.Errorf("could not publish witness %s: %w", w.Hash, err)
	}
	return nil
}

// OnReplicatedRecord takes a witness that originated on another node.
func (r *Registry) OnReplicatedRecord(w Witness) bool {
	return r.add(w)
}

func (r *Registry) Size() int {
	r.startDb()
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return len(r.data)
}

func (r *Registry) GetMap() Mapped {
	r.startDb()
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	m := make(Mapped, len(r.data))
	for hash, w := range r.data {
		m[hash] = w
	}
	return m
}
