package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// Client is one WebSocket connection of a session.
type Client struct {
	ID        string
	SessionID string

	hub  *Hub
	conn *websocket.Conn
	log  zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	sendMu sync.Mutex
	send   chan []byte
	closed bool

	runMu   sync.Mutex
	running map[string]*run
	wg      sync.WaitGroup
}

type run struct {
	cancel context.CancelFunc
}

// Send queues an event for this connection. It reports false when the
// connection is closed or its buffer is full.
func (c *Client) Send(event string, data any) bool {
	payload, err := encode(event, data)
	if err != nil {
		c.log.Error().Err(err).Str("event", event).Msg("dropping unencodable message")
		return false
	}
	return c.enqueue(payload)
}

// Cancel stops the running handler of event, if any.
func (c *Client) Cancel(event string) {
	c.runMu.Lock()
	defer c.runMu.Unlock()
	if r, ok := c.running[event]; ok {
		r.cancel()
		delete(c.running, event)
	}
}

func (c *Client) enqueue(payload []byte) bool {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- payload:
		return true
	default:
		c.log.Warn().Str("client_id", c.ID).Msg("websocket send buffer full, dropping message")
		return false
	}
}

func (c *Client) readPump() {
	defer func() { _ = c.conn.Close() }()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.log.Warn().Err(err).Str("client_id", c.ID).Msg("websocket read error")
			}
			return
		}

		var msg Message
		if err := json.Unmarshal(raw, &msg); err != nil || msg.Event == "" {
			c.Send(EventError, ErrorPayload{Message: "malformed message"})
			continue
		}
		c.dispatch(msg)
	}
}

// dispatch runs the handler in its own goroutine. A newer message of the
// same event cancels the previous run first.
func (c *Client) dispatch(msg Message) {
	fn, ok := c.hub.handler(msg.Event)
	if !ok {
		c.Send(EventError, ErrorPayload{Event: msg.Event, Message: "unknown event"})
		return
	}

	ctx, cancel := context.WithCancel(c.ctx)
	r := &run{cancel: cancel}

	c.runMu.Lock()
	if prev, ok := c.running[msg.Event]; ok {
		prev.cancel()
	}
	c.running[msg.Event] = r
	c.runMu.Unlock()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer func() {
			c.runMu.Lock()
			if c.running[msg.Event] == r {
				delete(c.running, msg.Event)
			}
			c.runMu.Unlock()
			cancel()
		}()

		if err := fn(ctx, c, msg.Data); err != nil && ctx.Err() == nil {
			c.log.Warn().Err(err).Str("event", msg.Event).Msg("websocket handler failed")
			c.Send(EventError, ErrorPayload{Event: msg.Event, Message: err.Error()})
		}
	}()
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// shutdown cancels every running handler, waits for them and closes the
// send channel so writePump exits.
func (c *Client) shutdown() {
	c.cancel()
	c.wg.Wait()

	c.sendMu.Lock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
	c.sendMu.Unlock()
}
