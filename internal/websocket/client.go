package websocket

import (
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// Client is a middleman between a websocket connection and the hub.
type Client struct {
	hub  *Hub
	conn *websocket.Conn

	// Buffered channel of outbound frames.
	Send chan []byte

	// RoomID is the room this client subscribed to, or "" for the
	// global feed.
	RoomID string
}

// NewClient creates a client bound to a hub and connection.
func NewClient(hub *Hub, conn *websocket.Conn, roomID string) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		Send:   make(chan []byte, 256),
		RoomID: roomID,
	}
}

// ReadPump drains the connection until it closes, keeping the pong
// deadline fresh. Inbound payloads are ignored; the feed is one-way.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Msg("Unexpected websocket close")
			}
			return
		}
	}
}

// WritePump forwards frames from the hub to the connection and pings it
// periodically.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case frame, ok := <-c.Send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
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
