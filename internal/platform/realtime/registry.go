// Package realtime implements best-effort push delivery of notification
// events to connected clients. The Registry tracks every live stream per
// recipient; the SSE and WebSocket gateways feed from the same subscriber
// channels. Persisted notification rows remain the source of truth, so a
// recipient with no live streams simply catches up on their next fetch.
package realtime

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// sendBuffer is the per-subscriber channel depth. A subscriber that falls
// this far behind is treated as disconnected.
const sendBuffer = 64

// Event is the payload pushed to live subscribers.
type Event struct {
	Type      string          `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// Subscriber represents one live push stream for a recipient. Multiple
// subscribers may exist for the same recipient (multi-tab, multi-device).
type Subscriber struct {
	ID        string
	Recipient uuid.UUID
	Send      chan []byte

	closed bool // guarded by the registry mutex
}

// NewSubscriber creates an unregistered subscriber for the given recipient.
func NewSubscriber(recipient uuid.UUID) *Subscriber {
	return &Subscriber{
		ID:        uuid.New().String(),
		Recipient: recipient,
		Send:      make(chan []byte, sendBuffer),
	}
}

// Registry is the in-memory map of recipient to live subscriber set.
// All methods are safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	subs   map[uuid.UUID]map[*Subscriber]struct{}
	logger zerolog.Logger
}

// NewRegistry creates an empty Registry.
func NewRegistry(logger zerolog.Logger) *Registry {
	return &Registry{
		subs:   make(map[uuid.UUID]map[*Subscriber]struct{}),
		logger: logger,
	}
}

// Register adds a subscriber to its recipient's live set.
func (r *Registry) Register(sub *Subscriber) {
	r.mu.Lock()
	defer r.mu.Unlock()

	set := r.subs[sub.Recipient]
	if set == nil {
		set = make(map[*Subscriber]struct{})
		r.subs[sub.Recipient] = set
	}
	set[sub] = struct{}{}
}

// Unregister removes a subscriber and closes its Send channel. Removing an
// already-absent subscriber is a no-op.
func (r *Registry) Unregister(sub *Subscriber) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.unregisterLocked(sub)
}

func (r *Registry) unregisterLocked(sub *Subscriber) {
	set, ok := r.subs[sub.Recipient]
	if !ok {
		return
	}
	if _, ok := set[sub]; !ok {
		return
	}
	delete(set, sub)
	if len(set) == 0 {
		delete(r.subs, sub.Recipient)
	}
	if !sub.closed {
		sub.closed = true
		close(sub.Send)
	}
}

// Broadcast delivers an event to every live subscriber of the recipient.
// A subscriber whose buffer is full is treated as implicitly disconnected:
// it is unregistered and delivery continues to the rest. Broadcast never
// fails; it returns the number of subscribers the event was handed to.
func (r *Registry) Broadcast(recipient uuid.UUID, event Event) int {
	data, err := json.Marshal(event)
	if err != nil {
		r.logger.Error().Err(err).Str("type", event.Type).Msg("realtime: marshal event")
		return 0
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.subs[recipient]
	if !ok {
		return 0
	}

	delivered := 0
	var stalled []*Subscriber
	for sub := range set {
		select {
		case sub.Send <- data:
			delivered++
		default:
			stalled = append(stalled, sub)
		}
	}
	for _, sub := range stalled {
		r.logger.Warn().
			Str("subscriber", sub.ID).
			Str("recipient", recipient.String()).
			Msg("realtime: dropping stalled subscriber")
		r.unregisterLocked(sub)
	}
	return delivered
}

// SubscriberCount returns the number of live subscribers for a recipient.
func (r *Registry) SubscriberCount(recipient uuid.UUID) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.subs[recipient])
}

// RecipientCount returns the number of recipients with at least one live
// subscriber.
func (r *Registry) RecipientCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.subs)
}
