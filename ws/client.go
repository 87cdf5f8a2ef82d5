package ws

import (
	"encoding/json"
	"strings"
	"sync"
	"time"

	"wagyu_backend/internal/logger"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBufferSize = 64
)

// IncomingMessage is the client-to-server envelope.
type IncomingMessage struct {
	Action string          `json:"action"`
	Data   json.RawMessage `json:"data"`
}

// OutgoingMessage is the server-to-client envelope.
type OutgoingMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

type Client struct {
	UserID  string
	Conn    *websocket.Conn
	Send    chan any
	Manager *WebSocketManager

	mu            sync.RWMutex
	subscriptions map[string]struct{}
}

func (c *Client) Subscribe(symbol string) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return
	}
	c.mu.Lock()
	c.subscriptions[symbol] = struct{}{}
	c.mu.Unlock()
}

func (c *Client) Unsubscribe(symbol string) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	c.mu.Lock()
	delete(c.subscriptions, symbol)
	c.mu.Unlock()
}

func (c *Client) IsSubscribed(symbol string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.subscriptions[strings.ToUpper(symbol)]
	return ok
}

func (c *Client) readPump() {
	defer func() {
		c.Manager.unregister <- c
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, msgBytes, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Debug("ws read error", "user_id", c.UserID, "error", err.Error())
			}
			break
		}

		var msg IncomingMessage
		if err := json.Unmarshal(msgBytes, &msg); err != nil {
			logger.Debug("ws message parse failed", "user_id", c.UserID)
			continue
		}

		c.handleMessage(msg)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteJSON(msg); err != nil {
				logger.Debug("ws write error", "user_id", c.UserID, "error", err.Error())
				return
			}

		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) handleMessage(msg IncomingMessage) {
	switch msg.Action {
	case "subscribe":
		var payload struct {
			Symbols []string `json:"symbols"`
		}
		if err := json.Unmarshal(msg.Data, &payload); err != nil {
			return
		}
		for _, symbol := range payload.Symbols {
			c.Subscribe(symbol)
		}
		c.Send <- OutgoingMessage{Type: "subscribed", Payload: payload.Symbols}

	case "unsubscribe":
		var payload struct {
			Symbols []string `json:"symbols"`
		}
		if err := json.Unmarshal(msg.Data, &payload); err != nil {
			return
		}
		for _, symbol := range payload.Symbols {
			c.Unsubscribe(symbol)
		}
		c.Send <- OutgoingMessage{Type: "unsubscribed", Payload: payload.Symbols}

	case "ping":
		c.Send <- OutgoingMessage{Type: "pong"}

	default:
		logger.Debug("ws unhandled action", "action", msg.Action, "user_id", c.UserID)
	}
}
