package server

import (
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stoicapp/roomchat/internal/database"
	"github.com/stoicapp/roomchat/internal/hub"
	"github.com/stoicapp/roomchat/internal/stats"
	"github.com/stoicapp/roomchat/internal/types"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingInterval   = (pongWait * 9) / 10
	maxMessageSize = 1024
	sendBufferSize = 256
)

// Client is one authenticated WebSocket session. It owns the connection's
// hub subscriptions and a buffered outbound queue drained by the write
// pump.
type Client struct {
	conn        *websocket.Conn
	coordinator *Coordinator
	hub         *hub.Hub
	log         *log.Logger
	stats       stats.StatsProvider
	user        types.User
	send        chan any
	subs        map[string]*hub.Subscription
	subsLock    sync.Mutex
	stop        chan struct{}
}

func NewClient(user types.User, conn *websocket.Conn, co *Coordinator, h *hub.Hub, l *log.Logger, sp stats.StatsProvider) *Client {
	return &Client{
		conn:        conn,
		coordinator: co,
		hub:         h,
		log:         l,
		stats:       sp,
		user:        user,
		send:        make(chan any, sendBufferSize),
		subs:        make(map[string]*hub.Subscription),
		stop:        make(chan struct{}),
	}
}

// Run attaches the session's own notification queue and starts the read
// and write pumps.
func (c *Client) Run() {
	c.stats.Incr(stats.ActiveClients)
	c.addSubscription(c.hub.Subscribe(hub.UserQueue(c.user.Username), c))

	go c.Write()
	go c.Read()
}

// Send implements hub.Subscriber. It never blocks; a full buffer drops
// the payload and reports false to the hub.
func (c *Client) Send(payload any) bool {
	select {
	case c.send <- payload:
	default:
		return false
	}

	return true
}

func (c *Client) Write() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
		c.log.Println("write exiting")
	}()

	for {
		select {
		case payload := <-c.send:
			bytes, err := json.Marshal(payload)
			if err != nil {
				c.log.Println("failed to serialize frame:", err)
				continue
			}

			if !c.writeMessage(websocket.TextMessage, bytes) {
				return
			}
		case <-c.stop:
			return
		case <-ticker.C:
			if !c.writeMessage(websocket.PingMessage, nil) {
				return
			}
		}
	}
}

func (c *Client) Read() {
	defer func() {
		c.conn.Close()
		c.cleanup()
		c.log.Println("read exiting")
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(appData string) error { c.conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				c.log.Printf("ws: read: %v", err)
			}
			break
		}

		var msg ClientFrame
		if err := json.Unmarshal(raw, &msg); err != nil {
			c.log.Println("error parsing frame:", err)
			c.Send(ErrInvalidMessage(-1))
			continue
		}

		msg.client = c
		msg.UserId = c.user.Id

		switch {
		case msg.Subscribe != nil:
			c.handleSubscribe(&msg)
		case msg.Unsubscribe != nil:
			c.handleUnsubscribe(&msg)
		case msg.Send != nil:
			c.handleSend(&msg)
		default:
			c.Send(ErrInvalidMessage(msg.Id))
		}
	}
}

func (c *Client) handleSubscribe(msg *ClientFrame) {
	dest := msg.Subscribe.Destination

	if c.getSubscription(dest) != nil {
		c.Send(NoErrOK(msg.Id, nil))
		return
	}

	if err := c.coordinator.Authorize(c.user, dest); err != nil {
		c.log.Printf("subscribe %q for %q: %v", dest, c.user.Username, err)
		switch {
		case errors.Is(err, ErrForbidden):
			c.Send(ErrForbiddenFrame(msg.Id))
		case errors.Is(err, database.ErrNotFound):
			c.Send(ErrNotFound(msg.Id))
		default:
			c.Send(ErrInternalError(msg.Id))
		}
		return
	}

	c.addSubscription(c.hub.Subscribe(dest, c))
	c.Send(NoErrOK(msg.Id, nil))
}

func (c *Client) handleUnsubscribe(msg *ClientFrame) {
	sub := c.getSubscription(msg.Unsubscribe.Destination)
	if sub == nil {
		c.Send(ErrNotFound(msg.Id))
		return
	}

	c.hub.Unsubscribe(sub)
	c.delSubscription(sub.Destination)
	c.Send(NoErrOK(msg.Id, nil))
}

func (c *Client) handleSend(msg *ClientFrame) {
	senderId := msg.Send.SenderId
	if senderId == 0 {
		senderId = c.user.Id
	}

	if err := c.coordinator.SendToRoom(msg.Send.RoomId, senderId, msg.Send.Content); err != nil {
		c.log.Printf("send to room %d: %v", msg.Send.RoomId, err)
		if errors.Is(err, database.ErrNotFound) {
			c.Send(ErrNotFound(msg.Id))
		} else {
			c.Send(ErrInternalError(msg.Id))
		}
		return
	}

	c.Send(NoErrAccepted(msg.Id))
}

func (c *Client) writeMessage(msgType int, msg []byte) bool {
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))

	if err := c.conn.WriteMessage(msgType, msg); err != nil {
		if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure,
			websocket.CloseNormalClosure) {
			c.log.Printf("write message: %s", err)
		}
		return false
	}

	return true
}

func (c *Client) cleanup() {
	c.subsLock.Lock()
	for dest, sub := range c.subs {
		c.hub.Unsubscribe(sub)
		delete(c.subs, dest)
	}
	c.subsLock.Unlock()

	c.stats.Decr(stats.ActiveClients)
	close(c.stop)
}

func (c *Client) addSubscription(sub *hub.Subscription) {
	c.subsLock.Lock()
	defer c.subsLock.Unlock()
	c.subs[sub.Destination] = sub
}

func (c *Client) delSubscription(destination string) {
	c.subsLock.Lock()
	defer c.subsLock.Unlock()
	delete(c.subs, destination)
}

func (c *Client) getSubscription(destination string) *hub.Subscription {
	c.subsLock.Lock()
	defer c.subsLock.Unlock()
	return c.subs[destination]
}
