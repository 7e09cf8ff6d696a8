package ws

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/samber/lo"

	"chat-relay/domain/event"
	"chat-relay/errors"
)

const (
	// Time allowed to write a frame to the peer.
	writeWait = 10 * time.Second

	// Maximum frame size allowed from the peer.
	maxMessageSize = 8192
)

// Client is one websocket connection. It starts unauthenticated; the
// first accepted operation is an authenticate frame. Close, transport
// error, and liveness eviction all funnel into teardown exactly once.
type Client struct {
	id      uuid.UUID
	gateway *Gateway
	conn    *websocket.Conn
	send    chan Frame
	done    chan struct{}
	log     *slog.Logger

	// Written on the read goroutine only.
	userID        string
	authenticated bool

	lastSeen     atomic.Int64
	teardownOnce sync.Once
}

func newClient(gateway *Gateway, conn *websocket.Conn) *Client {
	c := &Client{
		id:      uuid.New(),
		gateway: gateway,
		conn:    conn,
		send:    make(chan Frame, gateway.sendBuffer),
		done:    make(chan struct{}),
		log:     gateway.log,
	}
	c.touch()
	return c
}

// UserID implements runtime.Conn. Empty until the handshake succeeds.
func (c *Client) UserID() string { return c.userID }

// LastSeen implements runtime.Conn.
func (c *Client) LastSeen() time.Time {
	return time.Unix(0, c.lastSeen.Load())
}

// Terminate implements runtime.Conn. It only closes the transport; the
// read goroutine notices and runs the normal teardown path, so callers
// (the liveness sweep) never block here.
func (c *Client) Terminate() {
	_ = c.conn.Close()
}

// Deliver implements runtime.Conn. Best effort: a connection whose send
// buffer is full drops the event instead of blocking the broadcaster.
func (c *Client) Deliver(e event.DomainEvent) {
	frame, ok := toFrame(e)
	if !ok {
		return
	}
	select {
	case c.send <- frame:
	case <-c.done:
	default:
		c.log.Debug("Send buffer full, dropping live event",
			"user_id", c.userID, "type", frame.Type)
	}
}

func (c *Client) touch() {
	c.lastSeen.Store(time.Now().UnixNano())
}

// ReadPump pumps frames from the websocket into the handlers. It owns
// teardown: whichever of close, error, or eviction comes first, cleanup
// runs exactly once.
func (c *Client) ReadPump() {
	defer c.teardown()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetPongHandler(func(string) error {
		c.touch()
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Debug("Websocket read error", "user_id", c.userID, "err", err)
			}
			return
		}
		// Any inbound protocol message counts as a liveness signal.
		c.touch()

		var frame Frame
		if err := json.Unmarshal(raw, &frame); err != nil {
			c.sendError("invalid message format")
			continue
		}
		c.handleFrame(frame)
	}
}

// WritePump drains the send channel and pings the peer periodically.
func (c *Client) WritePump() {
	ticker := time.NewTicker(c.gateway.pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, nil)
			return
		case frame := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(frame); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) handleFrame(frame Frame) {
	if err := frame.Validate(); err != nil {
		c.sendError(err.Error())
		return
	}

	switch frame.Type {
	case FrameAuthenticate:
		c.handleAuthenticate(frame)
	case FramePing:
		c.enqueue(Frame{Type: FramePong})
	case FrameTyping:
		if !c.requireAuth() {
			return
		}
		c.gateway.typing.Signal(frame.ConversationID, c.userID, *frame.IsTyping)
	case FrameMessageRead:
		if !c.requireAuth() {
			return
		}
		c.handleMessageRead(frame)
	case FrameSendMessage:
		if !c.requireAuth() {
			return
		}
		c.handleSendMessage(frame)
	}
}

// handleAuthenticate verifies the Session Authority token and binds the
// asserted identity to this connection. Failure leaves the connection
// open and unauthenticated.
func (c *Client) handleAuthenticate(frame Frame) {
	if c.authenticated {
		c.sendError("already authenticated")
		return
	}

	userID, err := c.gateway.authority.VerifyToken(frame.Token)
	if err != nil {
		c.sendError("authentication failed: invalid or expired token")
		return
	}

	c.userID = userID
	c.authenticated = true
	cameOnline := c.gateway.registry.Register(c)

	c.enqueue(Frame{Type: FrameAuthSuccess, UserID: userID})
	if cameOnline {
		c.gateway.hub.BroadcastPresence(userID, true)
	}
	c.log.Info("User authenticated", "user_id", userID, "connection_id", c.id)
}

func (c *Client) handleMessageRead(frame Frame) {
	count, err := c.gateway.store.MarkRead(frame.ConversationID, c.userID)
	if err != nil {
		c.log.Error("Failed to mark messages as read",
			"user_id", c.userID, "conversation_id", frame.ConversationID, "err", err)
		c.sendError("failed to mark messages as read")
		return
	}
	if count > 0 {
		c.gateway.hub.BroadcastRead(frame.ConversationID, c.userID)
	}
}

func (c *Client) handleSendMessage(frame Frame) {
	message, err := c.gateway.store.Persist(frame.ConversationID, c.userID, frame.Content)
	if err != nil {
		c.log.Error("Failed to persist message",
			"user_id", c.userID, "conversation_id", frame.ConversationID, "err", err)
		c.sendError("failed to send message")
		return
	}
	// Fan-out happens only after durable persistence.
	c.gateway.hub.BroadcastNewMessage(frame.ConversationID, message, c.userID, c)
}

func (c *Client) requireAuth() bool {
	if c.authenticated {
		return true
	}
	c.sendError(errors.ErrAuthRequired.Error())
	return false
}

func (c *Client) sendError(message string) {
	c.enqueue(Frame{Type: FrameError, Error: message})
}

func (c *Client) enqueue(frame Frame) {
	select {
	case c.send <- frame:
	case <-c.done:
	default:
		c.log.Debug("Send buffer full, dropping frame", "type", frame.Type)
	}
}

// teardown releases every piece of per-connection state exactly once,
// even if close and error fire concurrently for the same connection.
func (c *Client) teardown() {
	c.teardownOnce.Do(func() {
		close(c.done)
		_ = c.conn.Close()

		if !c.authenticated {
			return
		}

		wentOffline := c.gateway.registry.Unregister(c)
		if wentOffline {
			// The identity left entirely: release its typing timers and
			// announce the offline transition.
			c.gateway.typing.DropUser(c.userID)
			c.gateway.hub.BroadcastPresence(c.userID, false)
		}
		c.log.Info("User disconnected",
			"user_id", c.userID, "connection_id", c.id, "went_offline", wentOffline)
	})
}

func toFrame(e event.DomainEvent) (Frame, bool) {
	switch evt := e.(type) {
	case event.UserOnline:
		return Frame{Type: FrameUserOnline, UserID: evt.UserID}, true
	case event.UserOffline:
		return Frame{Type: FrameUserOffline, UserID: evt.UserID}, true
	case event.Typing:
		return Frame{
			Type:           FrameTyping,
			UserID:         evt.UserID,
			ConversationID: evt.ConversationID,
			IsTyping:       lo.ToPtr(evt.IsTyping),
		}, true
	case event.NewMessage:
		message := evt.Message
		return Frame{
			Type:           FrameNewMessage,
			ConversationID: evt.ConversationID,
			UserID:         evt.SenderID,
			Message:        &message,
		}, true
	case event.MessageRead:
		return Frame{
			Type:           FrameMessageRead,
			ConversationID: evt.ConversationID,
			UserID:         evt.ReaderID,
		}, true
	default:
		return Frame{}, false
	}
}

func (c *Client) String() string {
	return fmt.Sprintf("client %s (user %q)", c.id, c.userID)
}
