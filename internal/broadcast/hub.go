// Package broadcast streams session snapshots to WebSocket clients and
// forwards their intents to the player.
package broadcast

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/verte-zerg/tuirsvp/internal/engine"
	"github.com/verte-zerg/tuirsvp/internal/words"
)

const (
	sendBuffer   = 32
	writeTimeout = 5 * time.Second
)

// Controller receives intents from clients. *engine.Player implements it.
type Controller interface {
	Toggle(ctx context.Context) error
	Escape(ctx context.Context) error
	SetRate(ctx context.Context, wpm int) error
	SetText(ctx context.Context, text string) error
}

// Message is the envelope for every frame in both directions.
type Message struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Frame is the JSON view of a snapshot.
type Frame struct {
	Status      string `json:"status"`
	Index       int    `json:"index"`
	Total       int    `json:"total"`
	Word        string `json:"word"`
	Prefix      string `json:"prefix"`
	Anchor      string `json:"anchor"`
	Suffix      string `json:"suffix"`
	Countdown   *int   `json:"countdown,omitempty"`
	Rate        int    `json:"rate"`
	ToggleLabel string `json:"toggleLabel"`
}

// Intent is the payload of a client "intent" message.
type Intent struct {
	Action string `json:"action"`
	WPM    int    `json:"wpm,omitempty"`
	Text   string `json:"text,omitempty"`
}

// NewFrame converts a snapshot into its wire form.
func NewFrame(snap engine.Snapshot) Frame {
	f := Frame{
		Status:      snap.Status.String(),
		Index:       snap.Index,
		Total:       snap.Total,
		Word:        snap.Word,
		Rate:        snap.Rate,
		ToggleLabel: snap.ToggleLabel(),
	}
	f.Prefix, f.Anchor, f.Suffix = words.SplitFocal(snap.Word)
	if snap.HasCountdown {
		n := snap.Countdown
		f.Countdown = &n
	}
	return f
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans snapshots out to every connected client.
type Hub struct {
	ctrl     Controller
	logger   *slog.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}
	last    []byte
}

// NewHub returns a hub forwarding intents to ctrl.
func NewHub(ctrl Controller, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Hub{
		ctrl:   ctrl,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		clients: make(map[*client]struct{}),
	}
}

// Publish sends snap to every client. Clients that fall behind are dropped.
func (h *Hub) Publish(snap engine.Snapshot) {
	payload, err := encode("snapshot", NewFrame(snap))
	if err != nil {
		h.logger.Error("failed to encode snapshot", "err", err)
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.last = payload
	for c := range h.clients {
		select {
		case c.send <- payload:
		default:
			h.logger.Warn("dropping slow client", "remote", c.conn.RemoteAddr().String())
			h.removeLocked(c)
		}
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		h.removeLocked(c)
	}
}

// ServeHTTP upgrades the request and serves the client until it disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "err", err)
		return
	}
	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	if h.last != nil {
		c.send <- h.last
	}
	h.mu.Unlock()
	h.logger.Info("client connected", "remote", conn.RemoteAddr().String())

	go h.writeLoop(c)
	h.readLoop(r.Context(), c)
}

func (h *Hub) writeLoop(c *client) {
	defer func() {
		if cerr := c.conn.Close(); cerr != nil {
			// Best-effort close; the reader sees the error too.
			_ = cerr
		}
	}()
	for payload := range c.send {
		if err := c.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
			return
		}
		if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			h.logger.Debug("websocket write failed", "err", err)
			return
		}
	}
}

func (h *Hub) readLoop(ctx context.Context, c *client) {
	defer h.remove(c)
	for {
		var msg Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("websocket read failed", "err", err)
			}
			return
		}
		if err := h.handle(ctx, msg); err != nil {
			h.reply(c, "error", err.Error())
		}
	}
}

func (h *Hub) handle(ctx context.Context, msg Message) error {
	switch msg.Type {
	case "intent":
		var intent Intent
		if err := json.Unmarshal(msg.Data, &intent); err != nil {
			return fmt.Errorf("invalid intent: %w", err)
		}
		return h.apply(ctx, intent)
	case "ping":
		return nil
	default:
		return fmt.Errorf("unknown message type %q", msg.Type)
	}
}

func (h *Hub) apply(ctx context.Context, intent Intent) error {
	var err error
	switch intent.Action {
	case "toggle":
		err = h.ctrl.Toggle(ctx)
	case "escape":
		err = h.ctrl.Escape(ctx)
	case "rate":
		err = h.ctrl.SetRate(ctx, intent.WPM)
	case "text":
		err = h.ctrl.SetText(ctx, intent.Text)
	default:
		return fmt.Errorf("unknown action %q", intent.Action)
	}
	if errors.Is(err, engine.ErrEmptyInput) {
		return errors.New("nothing to read")
	}
	return err
}

func (h *Hub) reply(c *client, typ, text string) {
	payload, err := encode(typ, text)
	if err != nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	select {
	case c.send <- payload:
	default:
	}
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

func (h *Hub) removeLocked(c *client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
}

func encode(typ string, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Message{Type: typ, Data: raw})
}
