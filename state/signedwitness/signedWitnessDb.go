package signedwitness

import (
	"encoding/json"
	"fmt"

	"agewitness/engine/actors"
	"agewitness/engine/library"
	"github.com/sasha-s/go-deadlock"
	"golang.org/x/exp/slices"
)

// Chain holds every signed witness this node has seen. Like the witness registry it only grows.
type Chain struct {
	data      map[library.Hash160]SignedWitness
	byWitness map[library.Hash160][]library.Hash160
	mutex     *deadlock.RWMutex
	store     actors.AppendOnlyStore
	publisher Publisher
	clock     library.Clock
	policy    SignerPolicy

	started   bool
	available *deadlock.Mutex
}

func NewChain(store actors.AppendOnlyStore, publisher Publisher, clock library.Clock) *Chain {
	if clock == nil {
		clock = library.SystemClock{}
	}
	return &Chain{
		data:      make(map[library.Hash160]SignedWitness),
		byWitness: make(map[library.Hash160][]library.Hash160),
		mutex:     &deadlock.RWMutex{},
		store:     store,
		publisher: publisher,
		clock:     clock,
		available: &deadlock.Mutex{},
	}
}

func (c *Chain) SetSignerPolicy(policy SignerPolicy) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.policy = policy
}

func (c *Chain) startDb() {
	c.available.Lock()
	defer c.available.Unlock()
	if c.started {
		return
	}
	c.started = true
	if c.store == nil {
		return
	}
	c.mutex.Lock()
	defer c.mutex.Unlock()
	err := c.store.ReadAll(func(key, value []byte) error {
		var s SignedWitness
		if err := json.Unmarshal(value, &s); err != nil {
			library.LogCLI(fmt.Sprintf("skipping unreadable signed witness %x: %s", key, err), 2)
			return nil
		}
		c.insert(s)
		return nil
	})
	if err != nil {
		library.LogCLI(fmt.Sprintf("signed witness store replay stopped early: %s", err), 2)
	}
	library.LogCLI(fmt.Sprintf("Signed Witness Mind has started with %d records", len(c.data)), 4)
}

func (c *Chain) Start() {
	c.startDb()
}

// insert must be called with the write lock held.
func (c *Chain) insert(s SignedWitness) (library.Hash160, bool) {
	key := s.Hash()
	if _, exists := c.data[key]; exists {
		return key, false
	}
	c.data[key] = s
	c.byWitness[s.WitnessHash] = append(c.byWitness[s.WitnessHash], key)
	return key, true
}

func (c *Chain) add(s SignedWitness) bool {
	c.startDb()
	c.mutex.Lock()
	defer c.mutex.Unlock()
	key, inserted := c.insert(s)
	if !inserted {
		return false
	}
	if c.store != nil {
		b, err := json.Marshal(s)
		if err == nil {
			err = c.store.Append(key.Bytes(), b)
		}
		if err != nil {
			library.LogCLI(fmt.Sprintf("could not persist signed witness %s: %s", key, err), 2)
		}
	}
	return true
}

// Add stores a record produced on this node and replicates it when it is new.
func (c *Chain) Add(s SignedWitness) error {
	if !c.add(s) {
		return nil
	}
	return c.publish(s, false)
}

// Rebroadcast sends a stored record out again.
func (c *Chain) Rebroadcast(s SignedWitness) error {
	return c.publish(s, true)
}

func (c *Chain) publish(s SignedWitness, force bool) error {
	if c.publisher == nil {
		return nil
	}
	if err := c.publisher.PublishSignedWitness(s, force); err != nil {
		return fmt.Errorf("could not publish signed witness for %s: %w", s.WitnessHash, err)
	}
	return nil
}

// OnReplicatedRecord takes a record from another node after checking its signature and, when a
// signer policy is set, that the signer is an accepted arbitrator.
func (c *Chain) OnReplicatedRecord(s SignedWitness) (bool, error) {
	if !s.Verify() {
		return false, fmt.Errorf("signed witness for %s has an invalid signature", s.WitnessHash)
	}
	c.mutex.RLock()
	policy := c.policy
	c.mutex.RUnlock()
	if policy != nil && !policy.IsAcceptedSigner(s.SignerPubKey) {
		return false, fmt.Errorf("signed witness for %s is signed by %x which is not an accepted signer", s.WitnessHash, s.SignerPubKey)
	}
	return c.add(s), nil
}

// Records returns every record for a witness, oldest first.
func (c *Chain) Records(witnessHash library.Hash160) []SignedWitness {
	c.startDb()
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	var records []SignedWitness
	for _, key := range c.byWitness[witnessHash] {
		records = append(records, c.data[key])
	}
	slices.SortStableFunc(records, func(a, b SignedWitness) bool {
		return a.Date < b.Date
	})
	return records
}

// WitnessDates returns the signing dates of a witness in ascending order.
func (c *Chain) WitnessDates(witnessHash library.Hash160) []library.Millis {
	records := c.Records(witnessHash)
	dates := make([]library.Millis, 0, len(records))
	for _, r := range records {
		dates = append(dates, r.Date)
	}
	return dates
}

func (c *Chain) EarliestSignedDate(witnessHash library.Hash160) (library.Millis, bool) {
	dates := c.WitnessDates(witnessHash)
	if len(dates) == 0 {
		return 0, false
	}
	return dates[0], true
}

func (c *Chain) IsSigned(witnessHash library.Hash160) bool {
	c.startDb()
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.byWitness[witnessHash]) > 0
}

func (c *Chain) Size() int {
	c.startDb()
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.data)
}

func (c *Chain) GetMap() Mapped {
	c.startDb()
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	m := make(Mapped, len(c.data))
	for key, s := range c.data {
		m[key] = s
	}
	return m
}
