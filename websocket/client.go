package websocket

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"wink/logger"
	"wink/notify"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 8 << 10
	sendBuffer     = 256

	EventJoinRoom    = "join_room"
	EventSendMessage = "send_message"
	EventPing        = "ping"
	EventPong        = "pong"
	EventJoined      = "joined"
	EventConnected   = "connected"
	EventError       = "error"
)

// Client is one socket connection. userID is set when the connection
// presented a valid token, and then it may only act as that user.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	userID string
	ctx    context.Context
	log    *logger.Logger

	// guarded by hub.mu
	rooms  map[string]struct{}
	closed bool
}

func newClient(ctx context.Context, hub *Hub, conn *websocket.Conn, userID string, log *logger.Logger) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		userID: userID,
		ctx:    ctx,
		log:    log,
		rooms:  make(map[string]struct{}),
	}
}

type inbound struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// ChatMessage is the payload of send_message; it is relayed unchanged as
// receive_message.
type ChatMessage struct {
	Sender     string `json:"sender"`
	Receiver   string `json:"receiver"`
	Text       string `json:"text"`
	SenderName string `json:"senderName"`
}

func (c *Client) readPump() {
	defer func() {
		c.hub.Leave(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.Error(c.ctx, "websocket read", err)
			}
			return
		}

		var msg inbound
		if err := json.Unmarshal(raw, &msg); err != nil {
			c.reply(EventError, problem("malformed frame"))
			continue
		}

		switch msg.Event {
		case EventJoinRoom:
			c.handleJoin(msg.Data)
		case EventSendMessage:
			c.handleSendMessage(msg.Data)
		case EventPing:
			c.reply(EventPong, map[string]int64{"time": time.Now().Unix()})
		default:
			c.log.Debug(c.log.WithField(c.ctx, "event", msg.Event), "unknown websocket event")
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) handleJoin(data json.RawMessage) {
	var userID string
	if err := json.Unmarshal(data, &userID); err != nil || strings.TrimSpace(userID) == "" {
		c.reply(EventError, problem("join_room expects a user id"))
		return
	}
	userID = strings.TrimSpace(userID)
	if c.userID != "" && userID != c.userID {
		c.reply(EventError, problem("cannot join another user's room"))
		return
	}
	c.hub.Join(userID, c)
	c.reply(EventJoined, map[string]string{"userId": userID})
}

func (c *Client) handleSendMessage(data json.RawMessage) {
	var msg ChatMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		c.reply(EventError, problem("malformed send_message"))
		return
	}
	msg.Text = strings.TrimSpace(msg.Text)
	if msg.Receiver == "" || msg.Text == "" {
		c.reply(EventError, problem("receiver and text are required"))
		return
	}
	if c.userID != "" && msg.Sender != c.userID {
		c.reply(EventError, problem("sender does not match the connection"))
		return
	}

	c.hub.Publish(msg.Receiver, notify.Frame{Event: notify.EventReceiveMessage, Data: msg})
	c.hub.Publish(msg.Receiver, notify.Message(msg.Sender, msg.SenderName, msg.Text))
}

func (c *Client) reply(event string, data any) {
	payload, err := json.Marshal(notify.Frame{Event: event, Data: data})
	if err != nil {
		c.log.Error(c.ctx, "encode reply", err)
		return
	}
	c.hub.deliver(c, payload)
}

type errorData struct {
	Message string `json:"message"`
}

func problem(message string) errorData { return errorData{Message: message} }
