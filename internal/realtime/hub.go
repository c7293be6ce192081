package realtime

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Publisher is the write-path's view of the hub. Publishing is best-effort:
// it never returns an error, and a failed delivery never fails the mutation
// that produced it.
type Publisher interface {
	Publish(key Key, payload any)
}

// NopPublisher discards every publish. Useful when a server runs without the
// realtime endpoint wired, and in tests.
type NopPublisher struct{}

func (NopPublisher) Publish(Key, any) {}

// HubSettings bounds the per-connection outbound path.
type HubSettings struct {
	// SendBuffer is the per-connection outbound queue length. A subscriber
	// whose queue is full has its connection dropped rather than allowed to
	// block the publisher.
	SendBuffer   int
	WriteTimeout time.Duration
	ReadLimit    int64
	CheckOrigin  func(r *http.Request) bool
}

func DefaultHubSettings() *HubSettings {
	return &HubSettings{
		SendBuffer:   64,
		WriteTimeout: 10 * time.Second,
		ReadLimit:    4096,
	}
}

// Hub owns the subscriber registry: resource key → set of connections. It is
// the single piece of shared state on the server side of the realtime layer
// and is safe for concurrent Subscribe/Unsubscribe/Publish from independent
// request-handling goroutines.
type Hub struct {
	mu     sync.RWMutex
	subs   map[Key]map[*Conn]struct{}
	byConn map[*Conn]map[Key]struct{}

	upgrader websocket.Upgrader
	settings *HubSettings
}

func NewHub(settings *HubSettings) *Hub {
	if settings == nil {
		settings = DefaultHubSettings()
	}
	return &Hub{
		subs:   make(map[Key]map[*Conn]struct{}),
		byConn: make(map[*Conn]map[Key]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     settings.CheckOrigin,
		},
		settings: settings,
	}
}

// Conn is one registered websocket connection. All outbound frames for a
// connection pass through its send queue and a single write pump, which is
// what preserves publish order per subscriber.
type Conn struct {
	id uuid.UUID
	ws *websocket.Conn

	mu     sync.Mutex
	send   chan []byte
	closed bool
}

func newConn(ws *websocket.Conn, sendBuffer int) *Conn {
	return &Conn{
		id:   uuid.New(),
		ws:   ws,
		send: make(chan []byte, sendBuffer),
	}
}

// ID identifies the connection in logs.
func (c *Conn) ID() uuid.UUID { return c.id }

// enqueue places a frame on the outbound queue. It reports false when the
// queue is full or the connection is already closed.
func (c *Conn) enqueue(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

func (c *Conn) close() {
	c.mu.Lock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
	c.mu.Unlock()
	if c.ws != nil {
		_ = c.ws.Close()
	}
}

// Subscribe registers interest of conn in key. A connection may hold any
// number of concurrent subscriptions across resource kinds.
func (h *Hub) Subscribe(conn *Conn, key Key) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set := h.subs[key]
	if set == nil {
		set = make(map[*Conn]struct{})
		h.subs[key] = set
	}
	set[conn] = struct{}{}

	keys := h.byConn[conn]
	if keys == nil {
		keys = make(map[Key]struct{})
		h.byConn[conn] = keys
	}
	keys[key] = struct{}{}
}

// Unsubscribe removes exactly the (conn, key) registration. Unsubscribing a
// key with no active subscription is a no-op, not an error.
func (h *Hub) Unsubscribe(conn *Conn, key Key) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(conn, key)
}

func (h *Hub) removeLocked(conn *Conn, key Key) {
	if set := h.subs[key]; set != nil {
		delete(set, conn)
		if len(set) == 0 {
			delete(h.subs, key)
		}
	}
	if keys := h.byConn[conn]; keys != nil {
		delete(keys, key)
		if len(keys) == 0 {
			delete(h.byConn, conn)
		}
	}
}

// drop unregisters every subscription of conn and closes it. Safe to call
// more than once.
func (h *Hub) drop(conn *Conn) {
	h.mu.Lock()
	for key := range h.byConn[conn] {
		if set := h.subs[key]; set != nil {
			delete(set, conn)
			if len(set) == 0 {
				delete(h.subs, key)
			}
		}
	}
	delete(h.byConn, conn)
	h.mu.Unlock()
	conn.close()
}

// Publish delivers payload to every connection currently subscribed to key,
// and to no others. The frame is encoded once; each subscriber receives it
// through its own ordered send queue.
func (h *Hub) Publish(key Key, payload any) {
	data, err := encodeEvent(key, payload)
	if err != nil {
		log.Printf("WARN: realtime: failed to encode event for %s: %v", key, err)
		return
	}

	h.mu.RLock()
	set := h.subs[key]
	targets := make([]*Conn, 0, len(set))
	for conn := range set {
		targets = append(targets, conn)
	}
	h.mu.RUnlock()

	for _, conn := range targets {
		if !conn.enqueue(data) {
			log.Printf("WARN: realtime: dropping subscriber %s on %s", conn.id, key)
			go h.drop(conn)
		}
	}
}

// ServeWS upgrades an HTTP request to a websocket connection and runs its
// read loop until the peer goes away. Intended to be called from an
// authenticated HTTP handler.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) error {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	conn := newConn(ws, h.settings.SendBuffer)
	go h.writePump(conn)
	h.readLoop(conn)
	return nil
}

// readLoop consumes subscribe/unsubscribe frames from the peer. Frames that
// fail to parse or carry an unknown type are dropped, keeping the transport
// forward compatible.
func (h *Hub) readLoop(conn *Conn) {
	defer h.drop(conn)
	conn.ws.SetReadLimit(h.settings.ReadLimit)
	for {
		_, data, err := conn.ws.ReadMessage()
		if err != nil {
			return
		}
		var msg controlMessage
		if err := json.Unmarshal(data, &msg); err != nil || msg.Resource == "" {
			continue
		}
		switch msg.Type {
		case messageTypeSubscribe:
			h.Subscribe(conn, Key(msg.Resource))
		case messageTypeUnsubscribe:
			h.Unsubscribe(conn, Key(msg.Resource))
		}
	}
}

// writePump is the single writer for a connection.
func (h *Hub) writePump(conn *Conn) {
	for data := range conn.send {
		_ = conn.ws.SetWriteDeadline(time.Now().Add(h.settings.WriteTimeout))
		if err := conn.ws.WriteMessage(websocket.TextMessage, data); err != nil {
			h.drop(conn)
			// Drain so nothing already queued lingers after close.
			for range conn.send {
			}
			return
		}
	}
}
