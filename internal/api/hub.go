/*
Package api
File: hub.go
Description:
    The WebSocket Hub is the real-time telemetry layer.

    It keeps a registry of every connected pilot client and fans out the
    envelopes the simulation publishes (telemetry, destroyed, level_up, fire).
    Clients talk back with "input" envelopes, which are throttled per
    connection and latched onto the addressed ship.

    Architecture:
    - Hub: one select loop owning the client registry.
    - Client: one socket, with a read pump and a write pump.
    - ServeWs: upgrades a GET request to a WebSocket.
*/

package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/everforgeworks/plasma-siege/internal/game"
)

// Envelope types.
const (
	TypeTelemetry = "telemetry"
	TypeDestroyed = "destroyed"
	TypeLevelUp   = "level_up"
	TypeFire      = "fire"
	TypeInput     = "input"
	TypeError     = "error"
)

const (
	writeWait      = 5 * time.Second
	maxMessageSize = 4096
	sendBuffer     = 256
)

// Message is the JSON envelope for everything sent over the socket.
type Message struct {
	Type    string `json:"type"`    // Event type (e.g., "telemetry", "input")
	Payload any    `json:"payload"` // Snapshot list, event struct, or input command
	Sender  string `json:"sender"`  // "system" or the ship id of the client
}

// inbound is a Message whose payload is decoded later, once the type is known.
type inbound struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
	Sender  string          `json:"sender"`
}

// InputCommand is the payload of an "input" envelope and of POST /api/ship/input.
type InputCommand struct {
	ShipID string           `json:"ship_id"`
	Input  game.InputSample `json:"input"`
}

// ShipDirectory resolves ship ids. *game.Fleet satisfies it.
type ShipDirectory interface {
	Get(id string) (*game.ShipSimulation, error)
}

// HubOptions tunes the transport.
type HubOptions struct {
	AllowedOrigin string     // "*" accepts any origin
	InputRate     rate.Limit // Input envelopes per second per client
	InputBurst    int
}

// unicast is a message for a single client, routed through the loop.
type unicast struct {
	client *Client
	msg    []byte
}

// Client is one connected socket.
type Client struct {
	hub     *Hub
	conn    *websocket.Conn
	send    chan []byte
	limiter *rate.Limiter
}

// Hub maintains the set of active clients and broadcasts messages to them.
type Hub struct {
	ships    ShipDirectory
	opts     HubOptions
	upgrader websocket.Upgrader

	clients map[*Client]bool
	count   atomic.Int32

	// Broadcast carries pre-encoded envelopes to every client.
	Broadcast chan []byte

	register   chan *Client
	unregister chan *Client
	direct     chan unicast
	done       chan struct{}
}

// NewHub creates a hub. Run must be started before clients connect.
func NewHub(ships ShipDirectory, opts HubOptions) *Hub {
	if opts.InputRate <= 0 {
		opts.InputRate = 60
	}
	if opts.InputBurst <= 0 {
		opts.InputBurst = 20
	}
	h := &Hub{
		ships:      ships,
		opts:       opts,
		clients:    make(map[*Client]bool),
		Broadcast:  make(chan []byte),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		direct:     make(chan unicast),
		done:       make(chan struct{}),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

// Run is the hub event loop. It returns when ctx is cancelled and closes every client.
func (h *Hub) Run(ctx context.Context) {
	defer func() {
		for client := range h.clients {
			close(client.send)
			delete(h.clients, client)
		}
		h.count.Store(0)
		close(h.done)
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.register:
			h.clients[client] = true
			h.count.Add(1)
			log.Println("WS: New Connection Registered")

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				h.count.Add(-1)
			}

		case u := <-h.direct:
			if h.clients[u.client] {
				select {
				case u.client.send <- u.msg:
				default:
				}
			}

		case message := <-h.Broadcast:
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Send buffer full: the client is stuck, drop it.
					close(client.send)
					delete(h.clients, client)
					h.count.Add(-1)
				}
			}
		}
	}
}

// Clients is the number of registered connections.
func (h *Hub) Clients() int {
	return int(h.count.Load())
}

// Publish encodes an envelope and hands it to the loop. It is dropped once the hub has stopped.
func (h *Hub) Publish(msgType string, payload any) {
	b, err := json.Marshal(Message{Type: msgType, Payload: payload, Sender: "system"})
	if err != nil {
		log.Printf("WS: marshal %s: %v", msgType, err)
		return
	}
	select {
	case h.Broadcast <- b:
	case <-h.done:
	}
}

// PublishTelemetry broadcasts the snapshots of every ship.
func (h *Hub) PublishTelemetry(snaps []game.Snapshot) {
	h.Publish(TypeTelemetry, snaps)
}

func (h *Hub) PublishDestroyed(ev game.DestructionEvent) { h.Publish(TypeDestroyed, ev) }
func (h *Hub) PublishLevelUp(ev game.LevelUpEvent)       { h.Publish(TypeLevelUp, ev) }
func (h *Hub) PublishFire(ev game.FireEvent)             { h.Publish(TypeFire, ev) }

func (h *Hub) checkOrigin(r *http.Request) bool {
	if h.opts.AllowedOrigin == "" || h.opts.AllowedOrigin == "*" {
		return true
	}
	origin := r.Header.Get("Origin")
	return origin == "" || origin == h.opts.AllowedOrigin
}

// ServeWs upgrades the request and starts the client pumps.
func (h *Hub) ServeWs(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("WS Upgrade Error:", err)
		return
	}

	client := &Client{
		hub:     h,
		conn:    conn,
		send:    make(chan []byte, sendBuffer),
		limiter: rate.NewLimiter(h.opts.InputRate, h.opts.InputBurst),
	}

	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// readPump applies inbound input envelopes until the socket closes.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WS Error: %v", err)
			}
			return
		}
		c.handle(raw)
	}
}

func (c *Client) handle(raw []byte) {
	var msg inbound
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.reply(TypeError, "malformed envelope")
		return
	}
	if msg.Type != TypeInput {
		c.reply(TypeError, "unsupported message type "+msg.Type)
		return
	}
	// Over the limit: drop.
	if !c.limiter.Allow() {
		return
	}

	var cmd InputCommand
	if err := json.Unmarshal(msg.Payload, &cmd); err != nil {
		c.reply(TypeError, "malformed input payload")
		return
	}
	ship, err := c.hub.ships.Get(cmd.ShipID)
	if err != nil {
		c.reply(TypeError, err.Error())
		return
	}
	ship.SetInput(cmd.Input)
}

// reply queues a message for this client only.
func (c *Client) reply(msgType string, payload any) {
	b, err := json.Marshal(Message{Type: msgType, Payload: payload, Sender: "system"})
	if err != nil {
		return
	}
	select {
	case c.hub.direct <- unicast{client: c, msg: b}:
	case <-c.hub.done:
	}
}

// writePump drains the send channel into the socket. It exits when send is closed.
func (c *Client) writePump() {
	defer c.conn.Close()

	for message := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		w, err := c.conn.NextWriter(websocket.TextMessage)
		if err != nil {
			return
		}
		w.Write(message)

		if err := w.Close(); err != nil {
			return
		}
	}
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}
