package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

var errNotConnected = errors.New("not connected")

// TransportError wraps a connection-layer failure during Connect. It is
// surfaced only to the in-flight Connect caller; registered subscriptions are
// never failed by it.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return "realtime: transport error: " + e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// State is the connection lifecycle state of a Client.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateOpen
)

// Callback receives the raw event frame published to a resource. The frame's
// payload beyond the routing "resource" field is opaque to the multiplexer
// and passed through verbatim.
type Callback func(key Key, payload []byte)

// ClientSettings configures a Client.
type ClientSettings struct {
	HandshakeTimeout time.Duration
	WriteTimeout     time.Duration
	// OnSubscribeFailure is invoked when a subscribe could not reach the
	// server (connect failed or the frame could not be sent). The local
	// registration is kept either way; subscribing is fire-and-forget by
	// design, and this hook is the only place the failure is observable.
	OnSubscribeFailure func(key Key, err error)
}

func DefaultClientSettings() *ClientSettings {
	return &ClientSettings{
		HandshakeTimeout: 5 * time.Second,
		WriteTimeout:     5 * time.Second,
		OnSubscribeFailure: func(key Key, err error) {
			log.Printf("WARN: realtime: subscribe %s not sent: %v", key, err)
		},
	}
}

// Client multiplexes logical resource subscriptions over one persistent
// websocket connection. It is constructed and owned explicitly: create it at
// application start, Disconnect at shutdown. There is no automatic reconnect
// loop; a Subscribe that finds the connection down triggers a single connect
// attempt.
type Client struct {
	url    string
	header http.Header
	dialer *websocket.Dialer

	mu          sync.Mutex
	state       State
	ws          *websocket.Conn
	callbacks   map[Key]Callback
	connectDone chan struct{}
	connectErr  error

	writeMu sync.Mutex

	settings *ClientSettings
}

// NewClient creates a disconnected Client for the given websocket URL.
// header may carry authentication and may be nil.
func NewClient(url string, header http.Header, settings *ClientSettings) *Client {
	if settings == nil {
		settings = DefaultClientSettings()
	}
	return &Client{
		url:    url,
		header: header,
		dialer: &websocket.Dialer{
			HandshakeTimeout: settings.HandshakeTimeout,
		},
		state:     StateDisconnected,
		callbacks: make(map[Key]Callback),
		settings:  settings,
	}
}

// State reports the current lifecycle state.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Connect opens the transport. It is idempotent: when already open it
// returns immediately, and a call arriving while another connect is in
// flight waits for that attempt and shares its outcome. On failure it
// returns a *TransportError.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	switch c.state {
	case StateOpen:
		c.mu.Unlock()
		return nil
	case StateConnecting:
		done := c.connectDone
		c.mu.Unlock()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-done:
			c.mu.Lock()
			err := c.connectErr
			c.mu.Unlock()
			return err
		}
	}
	c.state = StateConnecting
	done := make(chan struct{})
	c.connectDone = done
	c.mu.Unlock()

	ws, resp, err := c.dialer.DialContext(ctx, c.url, c.header)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}

	c.mu.Lock()
	if err != nil {
		c.state = StateDisconnected
		c.connectErr = &TransportError{Err: err}
	} else {
		c.ws = ws
		c.state = StateOpen
		c.connectErr = nil
		go c.readLoop(ws)
	}
	result := c.connectErr
	close(done)
	c.mu.Unlock()
	return result
}

// Disconnect closes the transport if present. Always safe to call, including
// when already disconnected. Note that an in-flight Connect racing with
// Disconnect may still resolve as open or failed; callers treating shutdown
// as final should Disconnect after any pending Connect settles.
func (c *Client) Disconnect() {
	c.mu.Lock()
	ws := c.ws
	c.ws = nil
	if c.state == StateOpen {
		c.state = StateDisconnected
	}
	c.mu.Unlock()
	if ws != nil {
		_ = ws.Close()
	}
}

// Subscribe registers cb for key, replacing any previous callback for the
// same key, then ensures the connection is open (connecting if necessary)
// and sends the subscribe frame. Failures to connect or send do not surface
// to the caller; the registration is kept and OnSubscribeFailure is invoked.
func (c *Client) Subscribe(ctx context.Context, key Key, cb Callback) {
	c.mu.Lock()
	c.callbacks[key] = cb
	c.mu.Unlock()

	if err := c.Connect(ctx); err != nil {
		c.subscribeFailed(key, err)
		return
	}
	if err := c.send(controlMessage{Type: messageTypeSubscribe, Resource: string(key)}); err != nil {
		c.subscribeFailed(key, err)
	}
}

// Unsubscribe removes the local registration for key and, when the
// connection is currently open, sends one unsubscribe frame. When not open
// only the local removal happens; nothing is queued for later. Calling it
// again, or for a key never subscribed, is a no-op.
func (c *Client) Unsubscribe(key Key) {
	c.mu.Lock()
	_, registered := c.callbacks[key]
	delete(c.callbacks, key)
	open := c.state == StateOpen
	c.mu.Unlock()

	if !registered || !open {
		return
	}
	if err := c.send(controlMessage{Type: messageTypeUnsubscribe, Resource: string(key)}); err != nil {
		log.Printf("WARN: realtime: unsubscribe %s not sent: %v", key, err)
	}
}

func (c *Client) subscribeFailed(key Key, err error) {
	if c.settings.OnSubscribeFailure != nil {
		c.settings.OnSubscribeFailure(key, err)
	}
}

func (c *Client) send(msg controlMessage) error {
	c.mu.Lock()
	ws := c.ws
	c.mu.Unlock()
	if ws == nil {
		return &TransportError{Err: errNotConnected}
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = ws.SetWriteDeadline(time.Now().Add(c.settings.WriteTimeout))
	if err := ws.WriteMessage(websocket.TextMessage, data); err != nil {
		return &TransportError{Err: err}
	}
	return nil
}

// readLoop dispatches inbound frames to registered callbacks. Frames that
// fail to parse or lack a string resource field are dropped, as are frames
// for resources with no registered callback (for example one that raced an
// unsubscribe). A transport error with no pending Connect is not surfaced;
// the client just transitions to Disconnected.
func (c *Client) readLoop(ws *websocket.Conn) {
	defer func() {
		c.mu.Lock()
		if c.ws == ws {
			c.ws = nil
			c.state = StateDisconnected
		}
		c.mu.Unlock()
		_ = ws.Close()
	}()

	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			return
		}
		key, err := decodeEventResource(data)
		if err != nil {
			continue
		}
		c.mu.Lock()
		cb := c.callbacks[key]
		c.mu.Unlock()
		if cb != nil {
			cb(key, data)
		}
	}
}
