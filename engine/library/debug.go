package library

import (
	"github.com/sasha-s/go-deadlock"
)

// ValidateSaneExecutionTime guards a slow call such as a relay round trip. Call the returned func
// when the call is done. Until then a goroutine waits on a held lock, so go-deadlock reports any
// call that hangs past its deadlock timeout.
func ValidateSaneExecutionTime() func() {
	mu := &deadlock.Mutex{}
	mu.Lock()
	go func() {
		mu.Lock()
		mu.Unlock()
	}()
	return mu.Unlock
}
