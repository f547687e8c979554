package store

import (
	"context"
	"sync"
	"time"
)

// ChangeTopic identifies which record a change touched.
type ChangeTopic string

const (
	// TopicWatchlist covers watchlist mutations.
	TopicWatchlist ChangeTopic = "watchlist"
	// TopicCollections covers collection mutations.
	TopicCollections ChangeTopic = "collections"

	defaultChangeBufferSize = 16
)

// ChangeEvent describes a persisted mutation. Consumers re-read the store
// after receiving one; the event itself carries no snapshot.
type ChangeEvent struct {
	Topic        ChangeTopic `json:"topic"`
	Operation    string      `json:"operation"`
	MovieID      int         `json:"movie_id,omitempty"`
	CollectionID string      `json:"collection_id,omitempty"`
	Timestamp    time.Time   `json:"timestamp"`
}

// ChangeDispatcher fans change events out to subscribers. Publishing never
// blocks: a subscriber whose buffer is full misses the event.
type ChangeDispatcher struct {
	mu          sync.RWMutex
	subscribers map[int64]*changeSubscriber
	nextID      int64
	bufferSize  int
}

type changeSubscriber struct {
	id     int64
	stream chan ChangeEvent
}

// NewChangeDispatcher returns a dispatcher with no subscribers.
func NewChangeDispatcher() *ChangeDispatcher {
	return &ChangeDispatcher{
		subscribers: make(map[int64]*changeSubscriber),
		bufferSize:  defaultChangeBufferSize,
	}
}

// Subscribe registers a subscriber until ctx ends or the returned cleanup runs.
func (d *ChangeDispatcher) Subscribe(ctx context.Context) (<-chan ChangeEvent, func()) {
	subscriber := &changeSubscriber{
		id:     d.nextSequence(),
		stream: make(chan ChangeEvent, d.bufferSize),
	}
	d.registerSubscriber(subscriber)
	var once sync.Once
	cleanup := func() {
		once.Do(func() {
			d.unregisterSubscriber(subscriber.id)
		})
	}
	go func() {
		<-ctx.Done()
		cleanup()
	}()
	return subscriber.stream, cleanup
}

// Publish delivers the event to every current subscriber.
func (d *ChangeDispatcher) Publish(event ChangeEvent) {
	if event.Topic == "" {
		return
	}
	d.mu.RLock()
	if len(d.subscribers) == 0 {
		d.mu.RUnlock()
		return
	}
	copies := make([]*changeSubscriber, 0, len(d.subscribers))
	for _, subscriber := range d.subscribers {
		copies = append(copies, subscriber)
	}
	d.mu.RUnlock()
	for _, subscriber := range copies {
		select {
		case subscriber.stream <- event:
		default:
		}
	}
}

// SubscriberCount reports the number of active subscribers.
func (d *ChangeDispatcher) SubscriberCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.subscribers)
}

func (d *ChangeDispatcher) nextSequence() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.nextID++
	return d.nextID
}

func (d *ChangeDispatcher) registerSubscriber(subscriber *changeSubscriber) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.subscribers[subscriber.id] = subscriber
}

func (d *ChangeDispatcher) unregisterSubscriber(subscriberID int64) {
	d.mu.Lock()
	delete(d.subscribers, subscriberID)
	d.mu.Unlock()
}
