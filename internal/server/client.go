package server

import (
	"encoding/json"
	"sync"

	"the-game/internal/protocol"

	"github.com/gorilla/websocket"
)

// Client represents a single WebSocket connection watching simulations.
type Client struct {
	hub   *Hub
	conn  *websocket.Conn
	send  chan []byte
	ID    string // Unique identifier for the watcher
	RunID string // Only events of this run are sent; empty means all runs

	dropOnce sync.Once
}

// ReadPump handles incoming messages from the WebSocket connection.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.leave(c)
		c.conn.Close()
	}()

	for {
		_, messageBytes, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.WithError(err).WithField("client", c.ID).Warn("Unexpected close error")
			}
			break // Exit loop on read error or connection close
		}

		var msg protocol.Message
		if err := json.Unmarshal(messageBytes, &msg); err != nil {
			c.hub.logger.WithError(err).WithField("client", c.ID).Warn("Error unmarshalling message")
			continue
		}

		if msg.Type != "ping" {
			c.hub.logger.WithField("client", c.ID).Debugf("Received message type '%s'", msg.Type)
		}
		c.hub.dispatch(clientMessage{client: c, message: msg})
	}
}

// WritePump handles outgoing messages to the WebSocket connection.
func (c *Client) WritePump() {
	defer c.conn.Close()

	for message := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			c.hub.logger.WithError(err).WithField("client", c.ID).Warn("Write error")
			break
		}
	}
}
