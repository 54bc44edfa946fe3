package services

import (
	"sync"
	"time"
)

// Change-feed collections
const (
	CollectionRequests  = "requests"
	CollectionInventory = "inventory"
	CollectionDonations = "donations"
	CollectionMessages  = "messages"
)

// ChangeEvent signals that a row in a collection changed. It carries only the
// identity of the change, never the mutated data: consumers are expected to
// re-run their read queries, which keeps cached views from diverging from the
// store.
type ChangeEvent struct {
	Collection string    `json:"collection"`
	EntityID   uint      `json:"entity_id"`
	Action     string    `json:"action"` // created | updated
	At         time.Time `json:"at"`
}

// ChangeFeed is an in-process fan-out of change events. Subscriber channels
// are buffered and lossy: a subscriber that falls behind misses events rather
// than blocking publishers, which is safe because every consumer refreshes by
// re-reading, not by replaying the event stream.
type ChangeFeed struct {
	mu   sync.Mutex
	subs map[int]chan ChangeEvent
	next int
}

// NewChangeFeed creates a new change feed
func NewChangeFeed() *ChangeFeed {
	return &ChangeFeed{subs: make(map[int]chan ChangeEvent)}
}

// Publish notifies all subscribers that an entity changed
func (f *ChangeFeed) Publish(collection string, entityID uint, action string) {
	if f == nil {
		return
	}

	event := ChangeEvent{
		Collection: collection,
		EntityID:   entityID,
		Action:     action,
		At:         time.Now(),
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ch := range f.subs {
		select {
		case ch <- event:
		default:
			// Subscriber buffer full; it will catch up on its next re-read
		}
	}
}

// Subscribe registers a new subscriber. The returned cancel func must be
// called to release the subscription; the channel is closed by cancel.
func (f *ChangeFeed) Subscribe() (<-chan ChangeEvent, func()) {
	ch := make(chan ChangeEvent, 16)

	f.mu.Lock()
	id := f.next
	f.next++
	f.subs[id] = ch
	f.mu.Unlock()

	cancel := func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		if _, ok := f.subs[id]; ok {
			delete(f.subs, id)
			close(ch)
		}
	}

	return ch, cancel
}
