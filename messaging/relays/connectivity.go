package relays

import (
	"github.com/sasha-s/go-deadlock"
)

// Connectivity flips to bootstrapped the first time a relay has sent us all its stored events.
type Connectivity struct {
	bootstrapped bool
	callbacks    []func()
	mutex        *deadlock.Mutex
}

func NewConnectivity() *Connectivity {
	return &Connectivity{mutex: &deadlock.Mutex{}}
}

func (c *Connectivity) IsBootstrapped() bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.bootstrapped
}

// OnBootstrapped runs f once the node is bootstrapped, right away if it already is.
func (c *Connectivity) OnBootstrapped(f func()) {
	c.mutex.Lock()
	if !c.bootstrapped {
		c.callbacks = append(c.callbacks, f)
		c.mutex.Unlock()
		return
	}
	c.mutex.Unlock()
	f()
}

func (c *Connectivity) SetBootstrapped() {
	c.mutex.Lock()
	if c.bootstrapped {
		c.mutex.Unlock()
		return
	}
	c.bootstrapped = true
	callbacks := c.callbacks
	c.callbacks = nil
	c.mutex.Unlock()
	for _, f := range callbacks {
		f()
	}
}
