package hub

import (
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/stoicapp/roomchat/internal/stats"
)

// Subscriber is a live connection able to accept payloads without
// blocking. Send returns false when the subscriber's buffer is full; the
// hub drops the delivery and moves on.
type Subscriber interface {
	Send(payload any) bool
}

type State int

const (
	StateCreated State = iota
	StateActive
	StateClosed
)

// Subscription pins a subscriber to exactly one destination for its
// lifetime.
type Subscription struct {
	Destination string
	CreatedAt   time.Time

	subscriber Subscriber
	mu         sync.Mutex
	state      State
}

func (s *Subscription) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Subscription) setState(state State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
}

// Hub fans payloads out to the live subscribers of opaque string
// destinations. It knows nothing about rooms or users beyond the
// destination naming helpers; authentication happens in the transport
// before Subscribe is called.
type Hub struct {
	log          *log.Logger
	stats        stats.StatsProvider
	mu           sync.RWMutex
	destinations map[string]map[*Subscription]struct{}
}

func NewHub(logger *log.Logger, sp stats.StatsProvider) *Hub {
	return &Hub{
		log:          logger,
		stats:        sp,
		destinations: make(map[string]map[*Subscription]struct{}),
	}
}

// RoomTopic is the broadcast destination for a room.
func RoomTopic(roomId int) string {
	return fmt.Sprintf("rooms/%d", roomId)
}

// UserQueue is the personal destination for a user, keyed by the stable
// user name.
func UserQueue(username string) string {
	return username + "/notifications"
}

// ParseRoomTopic extracts the room id from a "rooms/<id>" destination.
func ParseRoomTopic(destination string) (int, bool) {
	rest, ok := strings.CutPrefix(destination, "rooms/")
	if !ok {
		return 0, false
	}

	id, err := strconv.Atoi(rest)
	if err != nil || id <= 0 {
		return 0, false
	}

	return id, true
}

// ParseUserQueue extracts the user name from a "<name>/notifications"
// destination.
func ParseUserQueue(destination string) (string, bool) {
	name, ok := strings.CutSuffix(destination, "/notifications")
	if !ok || name == "" || strings.Contains(name, "/") {
		return "", false
	}

	return name, true
}

func (h *Hub) Subscribe(destination string, sub Subscriber) *Subscription {
	s := &Subscription{
		Destination: destination,
		CreatedAt:   time.Now().UTC(),
		subscriber:  sub,
		state:       StateCreated,
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	subs, ok := h.destinations[destination]
	if !ok {
		subs = make(map[*Subscription]struct{})
		h.destinations[destination] = subs
	}
	subs[s] = struct{}{}
	s.state = StateActive

	h.stats.Incr(stats.ActiveSubscriptions)
	h.log.Printf("subscribed to %q", destination)

	return s
}

func (h *Hub) Unsubscribe(s *Subscription) {
	if s == nil || s.State() == StateClosed {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	subs, ok := h.destinations[s.Destination]
	if !ok {
		return
	}
	if _, ok := subs[s]; !ok {
		return
	}

	delete(subs, s)
	if len(subs) == 0 {
		delete(h.destinations, s.Destination)
	}
	s.setState(StateClosed)

	h.stats.Decr(stats.ActiveSubscriptions)
	h.log.Printf("unsubscribed from %q", s.Destination)
}

// Publish delivers payload to every current subscriber of the
// destination. Delivery is best-effort and never blocks the publisher: a
// full subscriber buffer drops that one delivery with a log line. The
// number of successful deliveries is returned.
func (h *Hub) Publish(destination string, payload any) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	h.stats.Incr(stats.PublishedFrames)

	var delivered int
	for s := range h.destinations[destination] {
		if s.subscriber.Send(payload) {
			delivered++
			continue
		}

		h.stats.Incr(stats.DroppedDeliveries)
		h.log.Printf("dropped delivery on %q: subscriber buffer full", destination)
	}

	return delivered
}

// Subscribers reports the current number of live subscriptions on a
// destination.
func (h *Hub) Subscribers(destination string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.destinations[destination])
}
