// subscribe.go implements push-path event delivery for subscribe_events.
//
// The connection auto-reconnects with exponential backoff (1s -> 30s max)
// and re-subscribes to every tracked Move event type on reconnect. This is
// what makes delivery "at-least-once": a reconnect may redeliver events the
// server already sent once, which the solver engine's deduplicator must
// tolerate (spec §5).
package rpc

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/intent-solver/settlement/pkg/types"
)

const (
	pingInterval     = 50 * time.Second
	readTimeout      = 90 * time.Second
	maxReconnectWait = 30 * time.Second
	writeTimeout     = 10 * time.Second
	eventBufferSize  = 256
)

// EventHandler is invoked once per delivered event, in the goroutine that
// reads the socket; handlers that may block should hand off to their own
// goroutine. Declared as an alias (not a distinct named type) so callers
// depending only on the underlying func signature — e.g. the solver
// package's EventSubscriber interface — are satisfied without importing
// this package's types.
type EventHandler = func(types.EventEnvelope)

// Unsubscribe cancels a subscription and releases its resources.
type Unsubscribe = func()

// Subscriber manages a single WebSocket connection carrying one or more
// Move-event-type subscriptions, with automatic reconnect and resubscribe.
type Subscriber struct {
	url  string
	conn *websocket.Conn
	connMu sync.Mutex

	subsMu sync.RWMutex
	subs   map[string]EventHandler // move event type -> handler

	logger *slog.Logger
}

// NewSubscriber creates a subscriber bound to wsURL. Call Run to start the
// connection loop; it blocks until ctx is cancelled.
func NewSubscriber(wsURL string, logger *slog.Logger) *Subscriber {
	return &Subscriber{
		url:    wsURL,
		subs:   make(map[string]EventHandler),
		logger: logger.With("component", "rpc_subscribe"),
	}
}

// Subscribe registers handler for moveEventType and returns an Unsubscribe
// handle. The returned handle is an ownership token: releasing it cancels
// delivery for that event type (spec §9 "event subscription lifecycle").
func (s *Subscriber) Subscribe(moveEventType string, handler EventHandler) Unsubscribe {
	s.subsMu.Lock()
	s.subs[moveEventType] = handler
	s.subsMu.Unlock()

	if err := s.sendSubscribe(moveEventType); err != nil {
		s.logger.Debug("subscribe deferred until connected", "type", moveEventType, "error", err)
	}

	return func() {
		s.subsMu.Lock()
		delete(s.subs, moveEventType)
		s.subsMu.Unlock()
	}
}

// Run connects and maintains the WebSocket connection with auto-reconnect.
// Blocks until ctx is cancelled.
func (s *Subscriber) Run(ctx context.Context) error {
	backoff := time.Second

	for {
		err := s.connectAndRead(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}

		s.logger.Warn("event subscription disconnected, reconnecting", "error", err, "backoff", backoff)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}

		backoff *= 2
		if backoff > maxReconnectWait {
			backoff = maxReconnectWait
		}
	}
}

// Close closes the underlying connection, if any.
func (s *Subscriber) Close() error {
	s.connMu.Lock()
	defer s.connMu.Unlock()
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

func (s *Subscriber) connectAndRead(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.url, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}

	s.connMu.Lock()
	s.conn = conn
	s.connMu.Unlock()

	defer func() {
		s.connMu.Lock()
		conn.Close()
		s.conn = nil
		s.connMu.Unlock()
	}()

	s.subsMu.RLock()
	types := make([]string, 0, len(s.subs))
	for t := range s.subs {
		types = append(types, t)
	}
	s.subsMu.RUnlock()
	for _, t := range types {
		if err := s.sendSubscribe(t); err != nil {
			return fmt.Errorf("resubscribe %s: %w", t, err)
		}
	}

	s.logger.Info("event subscription connected")

	pingCtx, pingCancel := context.WithCancel(ctx)
	defer pingCancel()
	go s.pingLoop(pingCtx)

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		conn.SetReadDeadline(time.Now().Add(readTimeout))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}
		s.dispatch(msg)
	}
}

func (s *Subscriber) sendSubscribe(moveEventType string) error {
	msg := map[string]any{
		"method": "suix_subscribeEvent",
		"params": []any{map[string]any{"MoveEventType": moveEventType}},
	}
	return s.writeJSON(msg)
}

func (s *Subscriber) dispatch(data []byte) {
	var envelope struct {
		Params struct {
			Result types.EventEnvelope `json:"result"`
		} `json:"params"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		s.logger.Debug("ignoring non-json subscription message", "data", string(data))
		return
	}

	evt := envelope.Params.Result
	if evt.Type == "" {
		return
	}

	s.subsMu.RLock()
	handler, ok := s.subs[evt.Type]
	s.subsMu.RUnlock()
	if !ok {
		return
	}
	handler(evt)
}

func (s *Subscriber) pingLoop(ctx context.Context) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.writeMessage(websocket.PingMessage, nil); err != nil {
				s.logger.Warn("ping failed", "error", err)
				return
			}
		}
	}
}

func (s *Subscriber) writeJSON(v any) error {
	s.connMu.Lock()
	defer s.connMu.Unlock()
	if s.conn == nil {
		return fmt.Errorf("websocket not connected")
	}
	s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return s.conn.WriteJSON(v)
}

func (s *Subscriber) writeMessage(msgType int, data []byte) error {
	s.connMu.Lock()
	defer s.connMu.Unlock()
	if s.conn == nil {
		return fmt.Errorf("websocket not connected")
	}
	s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return s.conn.WriteMessage(msgType, data)
}
