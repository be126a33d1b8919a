package library

import (
	"github.com/nbd-wtf/go-nostr"
)

// EventQueue holds inbound relay events in arrival order. It is not safe for concurrent use.
type EventQueue struct {
	events []nostr.Event
	next   int
}

func NewEventQueue(capacity int) *EventQueue {
	return &EventQueue{events: make([]nostr.Event, 0, capacity)}
}

func (q *EventQueue) Push(e nostr.Event) {
	q.events = append(q.events, e)
}

// Pop returns the oldest waiting event.
func (q *EventQueue) Pop() (nostr.Event, bool) {
	if q.next == len(q.events) {
		return nostr.Event{}, false
	}
	e := q.events[q.next]
	q.events[q.next] = nostr.Event{}
	q.next++
	if q.next == len(q.events) {
		q.events = q.events[:0]
		q.next = 0
	} else if q.next > cap(q.events)/2 {
		// reclaim the consumed front once it is most of the backing array
		n := copy(q.events, q.events[q.next:])
		q.events = q.events[:n]
		q.next = 0
	}
	return e, true
}

func (q *EventQueue) Len() int {
	return len(q.events) - q.next
}
