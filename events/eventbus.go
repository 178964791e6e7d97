package events

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/mezonai/stakeledger/logx"
	"github.com/mezonai/stakeledger/types"
)

const subscriberBuffer = 50

type SubscriberID string

type Subscriber struct {
	ID      SubscriberID
	Channel chan StakingEvent
	// actor restricts delivery to events triggered by one address; zero
	// means every event
	actor types.Address
}

func (s *Subscriber) wants(event StakingEvent) bool {
	return s.actor.IsZero() || s.actor == event.Actor()
}

type EventBus struct {
	subscribers map[SubscriberID]*Subscriber
	mu          sync.RWMutex
}

func NewEventBus() *EventBus {
	return &EventBus{
		subscribers: make(map[SubscriberID]*Subscriber),
	}
}

func (eb *EventBus) generateUUIDID() SubscriberID {
	id := uuid.Must(uuid.NewV7())
	return SubscriberID(id.String())
}

// Subscribe registers for every event
func (eb *EventBus) Subscribe() (SubscriberID, <-chan StakingEvent) {
	return eb.subscribe(types.ZeroAddress)
}

// SubscribeActor registers for the events triggered by actor only
func (eb *EventBus) SubscribeActor(actor types.Address) (SubscriberID, <-chan StakingEvent) {
	return eb.subscribe(actor)
}

func (eb *EventBus) subscribe(actor types.Address) (SubscriberID, <-chan StakingEvent) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	id := eb.generateUUIDID()
	subscriber := &Subscriber{
		ID:      id,
		Channel: make(chan StakingEvent, subscriberBuffer),
		actor:   actor,
	}
	eb.subscribers[id] = subscriber

	logx.Info("EVENTBUS", fmt.Sprintf("Client subscribed to staking events | subscriber_id=%s | total_subscribers=%d", id, len(eb.subscribers)))
	return id, subscriber.Channel
}

// Unsubscribe removes a subscription by ID and closes its channel
func (eb *EventBus) Unsubscribe(id SubscriberID) bool {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	subscriber, exists := eb.subscribers[id]
	if !exists {
		logx.Warn("EVENTBUS", fmt.Sprintf("Attempted to unsubscribe non-existent subscriber | subscriber_id=%s", id))
		return false
	}

	delete(eb.subscribers, id)
	close(subscriber.Channel)

	logx.Info("EVENTBUS", fmt.Sprintf("Client unsubscribed from events | subscriber_id=%s | remaining_subscribers=%d", id, len(eb.subscribers)))
	return true
}

// Publish delivers event to every interested subscriber without blocking.
// A subscriber whose buffer is full misses the event.
func (eb *EventBus) Publish(event StakingEvent) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	if len(eb.subscribers) == 0 {
		logx.Debug("EVENTBUS", fmt.Sprintf("No subscribers for event | event_type=%s | event_id=%s", event.Type(), event.ID()))
		return
	}

	for id, subscriber := range eb.subscribers {
		if !subscriber.wants(event) {
			continue
		}
		select {
		case subscriber.Channel <- event:
		default:
			logx.Warn("EVENTBUS", fmt.Sprintf("Subscriber channel full | subscriber_id=%s | event_id=%s", id, event.ID()))
		}
	}
}

// GetTotalSubscriptions returns the total number of active subscriptions
func (eb *EventBus) GetTotalSubscriptions() int {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	return len(eb.subscribers)
}

// HasSubscriber checks if a subscriber with the given ID exists
func (eb *EventBus) HasSubscriber(id SubscriberID) bool {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	_, exists := eb.subscribers[id]
	return exists
}
