package actors

import (
	"github.com/sasha-s/go-deadlock"
)

var terminateChan = make(chan struct{})
var terminateOnce = &deadlock.Mutex{}
var terminated = false
var waitGroup = &deadlock.WaitGroup{}

func SetTerminateChan(term chan struct{}) {
	terminateChan = term
}

func GetTerminateChan() chan struct{} {
	return terminateChan
}

// GetWaitGroup is held by every long running goroutine so that Shutdown can wait for them.
func GetWaitGroup() *deadlock.WaitGroup {
	return waitGroup
}

// Shutdown closes the terminate channel once and waits for everything holding the wait group.
func Shutdown() {
	terminateOnce.Lock()
	if !terminated {
		terminated = true
		close(terminateChan)
	}
	terminateOnce.Unlock()
	waitGroup.Wait()
}
