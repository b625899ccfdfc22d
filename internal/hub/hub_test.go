package hub

import (
	"testing"

	"github.com/stoicapp/roomchat/internal/stats"
	"github.com/stoicapp/roomchat/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// chanSubscriber buffers deliveries in a channel, like a client's send
// queue.
type chanSubscriber struct {
	received chan any
}

func newChanSubscriber(size int) *chanSubscriber {
	return &chanSubscriber{received: make(chan any, size)}
}

func (c *chanSubscriber) Send(payload any) bool {
	select {
	case c.received <- payload:
		return true
	default:
		return false
	}
}

func newTestHub(t *testing.T) *Hub {
	mockStats := &stats.MockStatsUpdater{}
	mockStats.On("Incr", mock.Anything).Return()
	mockStats.On("Decr", mock.Anything).Return()

	return NewHub(testutil.TestLogger(t), mockStats)
}

func TestSubscribePublishUnsubscribe(t *testing.T) {
	h := newTestHub(t)

	subA := newChanSubscriber(4)
	subB := newChanSubscriber(4)

	sA := h.Subscribe(RoomTopic(42), subA)
	sB := h.Subscribe(RoomTopic(42), subB)
	assert.Equal(t, StateActive, sA.State(), "expected subscription to be active after subscribe")
	assert.Equal(t, 2, h.Subscribers(RoomTopic(42)), "expected two subscribers on the room topic")

	delivered := h.Publish(RoomTopic(42), "hello")
	assert.Equal(t, 2, delivered, "expected delivery to both subscribers")
	assert.Equal(t, "hello", <-subA.received, "expected first subscriber to receive payload")
	assert.Equal(t, "hello", <-subB.received, "expected second subscriber to receive payload")

	h.Unsubscribe(sA)
	assert.Equal(t, StateClosed, sA.State(), "expected subscription to be closed after unsubscribe")
	assert.Equal(t, 1, h.Subscribers(RoomTopic(42)), "expected one subscriber after unsubscribe")

	delivered = h.Publish(RoomTopic(42), "again")
	assert.Equal(t, 1, delivered, "expected delivery to remaining subscriber only")
	assert.Equal(t, "again", <-subB.received, "expected remaining subscriber to receive payload")
	assert.Len(t, subA.received, 0, "expected unsubscribed client to receive nothing")

	h.Unsubscribe(sB)
	assert.Equal(t, 0, h.Subscribers(RoomTopic(42)), "expected no subscribers after both unsubscribe")
}

func TestPublishNoSubscribers(t *testing.T) {
	h := newTestHub(t)
	assert.Equal(t, 0, h.Publish(RoomTopic(1), "nobody home"), "expected zero deliveries on empty destination")
}

func TestPublishDropsOnFullBuffer(t *testing.T) {
	mockStats := &stats.MockStatsUpdater{}
	defer mockStats.AssertExpectations(t)
	mockStats.On("Incr", stats.ActiveSubscriptions).Return().Once()
	mockStats.On("Incr", stats.PublishedFrames).Return().Twice()
	mockStats.On("Incr", stats.DroppedDeliveries).Return().Once()

	h := NewHub(testutil.TestLogger(t), mockStats)

	sub := newChanSubscriber(1)
	h.Subscribe(UserQueue("alice"), sub)

	assert.Equal(t, 1, h.Publish(UserQueue("alice"), "first"), "expected first publish to be delivered")
	assert.Equal(t, 0, h.Publish(UserQueue("alice"), "second"), "expected second publish to be dropped")
	assert.Equal(t, "first", <-sub.received, "expected only the first payload to be buffered")
}

func TestUnsubscribeIdempotent(t *testing.T) {
	h := newTestHub(t)

	sub := newChanSubscriber(1)
	s := h.Subscribe(UserQueue("bob"), sub)

	h.Unsubscribe(s)
	h.Unsubscribe(s)
	h.Unsubscribe(nil)
	assert.Equal(t, 0, h.Subscribers(UserQueue("bob")), "expected no subscribers after repeated unsubscribe")
}

func TestDestinationIsolation(t *testing.T) {
	h := newTestHub(t)

	roomSub := newChanSubscriber(1)
	queueSub := newChanSubscriber(1)
	h.Subscribe(RoomTopic(1), roomSub)
	h.Subscribe(UserQueue("carol"), queueSub)

	h.Publish(RoomTopic(1), "room payload")
	assert.Equal(t, "room payload", <-roomSub.received, "expected room subscriber to receive payload")
	assert.Len(t, queueSub.received, 0, "expected user queue subscriber to receive nothing")
}

func TestParseRoomTopic(t *testing.T) {
	tcases := []struct {
		destination string
		id          int
		ok          bool
	}{
		{"rooms/42", 42, true},
		{"rooms/1", 1, true},
		{"rooms/0", 0, false},
		{"rooms/-1", 0, false},
		{"rooms/abc", 0, false},
		{"rooms/", 0, false},
		{"alice/notifications", 0, false},
		{"", 0, false},
	}

	for _, tc := range tcases {
		t.Run(tc.destination, func(t *testing.T) {
			id, ok := ParseRoomTopic(tc.destination)
			assert.Equal(t, tc.ok, ok, "expected parse result for %q", tc.destination)
			assert.Equal(t, tc.id, id, "expected room id for %q", tc.destination)
		})
	}
}

func TestParseUserQueue(t *testing.T) {
	tcases := []struct {
		destination string
		name        string
		ok          bool
	}{
		{"alice/notifications", "alice", true},
		{"bob/notifications", "bob", true},
		{"/notifications", "", false},
		{"a/b/notifications", "", false},
		{"rooms/42", "", false},
		{"", "", false},
	}

	for _, tc := range tcases {
		t.Run(tc.destination, func(t *testing.T) {
			name, ok := ParseUserQueue(tc.destination)
			assert.Equal(t, tc.ok, ok, "expected parse result for %q", tc.destination)
			assert.Equal(t, tc.name, name, "expected user name for %q", tc.destination)
		})
	}
}
