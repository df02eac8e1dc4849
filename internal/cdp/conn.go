// Package cdp is a minimal client for the browser remote debugging protocol:
// one persistent websocket per target, with request/response correlation by id.
package cdp

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/neboloop/browserd/internal/logging"
)

// DialTimeout bounds connection establishment.
const DialTimeout = 5 * time.Second

type command struct {
	ID     int64           `json:"id"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params,omitempty"`
}

type response struct {
	ID     *int64          `json:"id"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  *responseError  `json:"error,omitempty"`
}

type responseError struct {
	Code    int64  `json:"code"`
	Message string `json:"message"`
}

type pendingCommand struct {
	method  string
	resolve chan json.RawMessage
	reject  chan error
}

// Conn is a connection to a single debug target. Ids are assigned from 1 and
// never reused for the lifetime of the connection.
type Conn struct {
	id string
	ws *websocket.Conn

	writeMu   sync.Mutex
	captureMu sync.Mutex

	mu      sync.Mutex
	pending map[int64]*pendingCommand
	nextID  int64
	closed  bool
}

// Dial opens a connection to a target's websocket debugger URL.
func Dial(ctx context.Context, endpoint string) (*Conn, error) {
	ctx, cancel := context.WithTimeout(ctx, DialTimeout)
	defer cancel()

	dialer := websocket.Dialer{HandshakeTimeout: DialTimeout}
	ws, resp, err := dialer.DialContext(ctx, endpoint, nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrConnectionFailed, endpoint, err)
	}
	return newConn(ws), nil
}

func newConn(ws *websocket.Conn) *Conn {
	c := &Conn{
		id:      uuid.NewString(),
		ws:      ws,
		pending: make(map[int64]*pendingCommand),
		nextID:  1,
	}
	go c.readLoop()
	return c
}

// Pending returns the number of commands awaiting a response.
func (c *Conn) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

// Call sends a command and waits for its response. When result is non-nil the
// response's result object is decoded into it.
func (c *Conn) Call(ctx context.Context, method string, params, result any) error {
	id, p, err := c.send(method, params)
	if err != nil {
		return err
	}

	select {
	case raw := <-p.resolve:
		if result == nil || len(raw) == 0 {
			return nil
		}
		if err := json.Unmarshal(raw, result); err != nil {
			return fmt.Errorf("cdp: decode %s result: %w", method, err)
		}
		return nil
	case err := <-p.reject:
		return err
	case <-ctx.Done():
		c.forget(id)
		return ctx.Err()
	}
}

// send registers the pending command and writes its frame. Registration
// happens before the write so a fast response always finds its entry.
func (c *Conn) send(method string, params any) (int64, *pendingCommand, error) {
	var rawParams json.RawMessage
	if params != nil {
		data, err := json.Marshal(params)
		if err != nil {
			return 0, nil, fmt.Errorf("cdp: encode %s params: %w", method, err)
		}
		rawParams = data
	}

	p := &pendingCommand{
		method:  method,
		resolve: make(chan json.RawMessage, 1),
		reject:  make(chan error, 1),
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return 0, nil, ErrConnectionClosed
	}
	id := c.nextID
	c.nextID++
	c.pending[id] = p
	c.mu.Unlock()

	frame, err := json.Marshal(command{ID: id, Method: method, Params: rawParams})
	if err != nil {
		c.forget(id)
		return 0, nil, fmt.Errorf("cdp: encode %s: %w", method, err)
	}

	logging.Debugf("cdp %s -> id=%d method=%s", c.id[:8], id, method)

	c.writeMu.Lock()
	err = c.ws.WriteMessage(websocket.TextMessage, frame)
	c.writeMu.Unlock()
	if err != nil {
		c.shutdown(fmt.Errorf("%w: write %s: %v", ErrConnectionClosed, method, err))
	}
	return id, p, nil
}

func (c *Conn) forget(id int64) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}

func (c *Conn) readLoop() {
	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			c.shutdown(fmt.Errorf("%w: %v", ErrConnectionClosed, err))
			return
		}
		c.dispatch(data)
	}
}

// dispatch routes one inbound frame. Malformed frames, events without an id
// and responses for unknown ids are dropped.
func (c *Conn) dispatch(data []byte) {
	var resp response
	if err := json.Unmarshal(data, &resp); err != nil {
		logging.Debugf("cdp %s: dropping malformed frame: %v", c.id[:8], err)
		return
	}
	if resp.ID == nil {
		return
	}

	c.mu.Lock()
	p := c.pending[*resp.ID]
	delete(c.pending, *resp.ID)
	c.mu.Unlock()

	if p == nil {
		return
	}
	if resp.Error != nil {
		p.reject <- &CommandError{Method: p.method, Code: resp.Error.Code, Message: resp.Error.Message}
		return
	}
	p.resolve <- resp.Result
}

// shutdown rejects every pending command with err and closes the socket.
func (c *Conn) shutdown(err error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	for id, p := range c.pending {
		p.reject <- err
		delete(c.pending, id)
	}
	c.mu.Unlock()

	_ = c.ws.Close()
}

// Close shuts the connection down, rejecting in-flight commands.
func (c *Conn) Close() error {
	c.writeMu.Lock()
	_ = c.ws.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
	c.writeMu.Unlock()
	c.shutdown(ErrConnectionClosed)
	return nil
}
