package arbitration

import (
	"encoding/hex"
	"time"

	"github.com/sasha-s/go-deadlock"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type Role int

const (
	ArbitratorRole Role = iota
	MediatorRole
)

type Resolver struct {
	PubKey           []byte
	Role             Role
	RegistrationDate time.Time
}

// ResolverManager keeps the accepted dispute resolvers of one role.
type ResolverManager interface {
	IsExpectedRecord(r Resolver) bool
	AddAccepted(r Resolver) bool
	RemoveAccepted(pubKey []byte) bool
	GetAccepted() []Resolver
}

// acceptedSet holds resolvers of every role, each manager sees its own.
type acceptedSet struct {
	data  map[string]Resolver
	mutex *deadlock.RWMutex
}

type manager struct {
	role Role
	set  *acceptedSet
}

func (m manager) IsExpectedRecord(r Resolver) bool {
	return r.Role == m.role && len(r.PubKey) > 0
}

func (m manager) AddAccepted(r Resolver) bool {
	if !m.IsExpectedRecord(r) {
		return false
	}
	m.set.mutex.Lock()
	defer m.set.mutex.Unlock()
	key := hex.EncodeToString(r.PubKey)
	if _, exists := m.set.data[key]; exists {
		return false
	}
	m.set.data[key] = r
	return true
}

func (m manager) RemoveAccepted(pubKey []byte) bool {
	m.set.mutex.Lock()
	defer m.set.mutex.Unlock()
	key := hex.EncodeToString(pubKey)
	if r, exists := m.set.data[key]; !exists || r.Role != m.role {
		return false
	}
	delete(m.set.data, key)
	return true
}

func (m manager) GetAccepted() []Resolver {
	m.set.mutex.RLock()
	defer m.set.mutex.RUnlock()
	keys := maps.Keys(m.set.data)
	slices.Sort(keys)
	var resolvers []Resolver
	for _, k := range keys {
		if r := m.set.data[k]; r.Role == m.role {
			resolvers = append(resolvers, r)
		}
	}
	return resolvers
}

func (m manager) isAccepted(pubKey []byte) bool {
	m.set.mutex.RLock()
	defer m.set.mutex.RUnlock()
	r, ok := m.set.data[hex.EncodeToString(pubKey)]
	return ok && r.Role == m.role
}

type ArbitratorManager struct {
	manager
}

// IsAcceptedSigner lets the signed witness chain take records from accepted arbitrators only.
func (a ArbitratorManager) IsAcceptedSigner(pubKey []byte) bool {
	return a.isAccepted(pubKey)
}

type MediatorManager struct {
	manager
}

func (m MediatorManager) IsAcceptedMediator(pubKey []byte) bool {
	return m.isAccepted(pubKey)
}

// NewResolverManagers returns the arbitrator and mediator managers over one shared set.
func NewResolverManagers() (ArbitratorManager, MediatorManager) {
	set := &acceptedSet{data: make(map[string]Resolver), mutex: &deadlock.RWMutex{}}
	return ArbitratorManager{manager{role: ArbitratorRole, set: set}},
		MediatorManager{manager{role: MediatorRole, set: set}}
}
