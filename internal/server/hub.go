package server

import (
	"context"
	"encoding/json"
	"sync"

	"the-game/internal/protocol"

	"github.com/sirupsen/logrus"
)

// clientMessage is a helper struct to pass messages along with the client reference.
type clientMessage struct {
	client  *Client
	message protocol.Message
}

// Hub manages watcher connections and fans simulation events out to them.
// It implements sim.EventSink.
type Hub struct {
	clients        map[*Client]bool
	processMessage chan clientMessage
	register       chan *Client
	unregister     chan *Client
	done           chan struct{} // closed when Run returns
	clientMu       sync.RWMutex
	logger         logrus.FieldLogger
}

// NewHub creates a new Hub instance.
func NewHub(logger logrus.FieldLogger) *Hub {
	return &Hub{
		clients:        make(map[*Client]bool),
		processMessage: make(chan clientMessage),
		register:       make(chan *Client),
		unregister:     make(chan *Client),
		done:           make(chan struct{}),
		logger:         logger,
	}
}

// Run starts the Hub's main loop. It returns when ctx is done.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.clientMu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			h.clientMu.Unlock()
			return

		case client := <-h.register:
			h.clientMu.Lock()
			h.clients[client] = true
			h.clientMu.Unlock()
			h.logger.WithFields(logrus.Fields{"client": client.ID, "run_id": client.RunID}).Info("Watcher connected")

		case client := <-h.unregister:
			h.clientMu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				h.logger.WithField("client", client.ID).Info("Watcher disconnected")
			}
			h.clientMu.Unlock()

		case clientMsg := <-h.processMessage:
			h.handleMessage(clientMsg.client, clientMsg.message)
		}
	}
}

// handleMessage processes a message received from a client.
func (h *Hub) handleMessage(client *Client, msg protocol.Message) {
	switch msg.Type {
	case "watch":
		var payload protocol.WatchPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			h.sendErrorToClient(client, "Invalid watch message format.")
			return
		}
		h.clientMu.Lock()
		client.RunID = payload.RunID
		h.clientMu.Unlock()
		h.logger.WithFields(logrus.Fields{"client": client.ID, "run_id": payload.RunID}).Info("Watcher filter changed")
	case "ping":
		pongMsg, _ := protocol.NewMessage("pong", nil)
		h.sendToClient(client, pongMsg)
	default:
		h.logger.WithField("client", client.ID).Warnf("Received unknown message type '%s'", msg.Type)
		h.sendErrorToClient(client, "Unknown message type.")
	}
}

// Publish sends an event to every watcher interested in its run.
func (h *Hub) Publish(ev protocol.Event) {
	msgBytes, err := ev.Message()
	if err != nil {
		h.logger.WithError(err).WithField("type", ev.Type).Error("Error encoding event")
		return
	}

	h.clientMu.RLock()
	defer h.clientMu.RUnlock()
	for client := range h.clients {
		if client.RunID != "" && client.RunID != ev.RunID {
			continue
		}
		h.trySend(client, msgBytes)
	}
}

// ClientCount returns the number of connected watchers.
func (h *Hub) ClientCount() int {
	h.clientMu.RLock()
	defer h.clientMu.RUnlock()
	return len(h.clients)
}

func (h *Hub) sendToClient(client *Client, message []byte) {
	h.clientMu.RLock()
	defer h.clientMu.RUnlock()
	if h.clients[client] {
		h.trySend(client, message)
	}
}

// trySend never blocks: a watcher that cannot keep up is dropped.
// Assumes clientMu is held.
func (h *Hub) trySend(client *Client, message []byte) {
	select {
	case client.send <- message:
	default:
		client.dropOnce.Do(func() {
			h.logger.WithField("client", client.ID).Warn("Failed to send message (channel full), initiating cleanup")
			go h.leave(client)
		})
	}
}

// sendErrorToClient sends a generic error message to a specific client.
func (h *Hub) sendErrorToClient(client *Client, errorMsg string) {
	payload := protocol.ErrorPayload{Message: errorMsg}
	msgBytes, err := protocol.NewMessage("error", payload)
	if err != nil {
		h.logger.WithError(err).Error("Error creating error message")
		return
	}
	h.sendToClient(client, msgBytes)
}

// join and leave hand a client to the Run loop unless it has stopped.
func (h *Hub) join(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) leave(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) dispatch(msg clientMessage) {
	select {
	case h.processMessage <- msg:
	case <-h.done:
	}
}
