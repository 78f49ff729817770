package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/groupbuy/backend/internal/domain/shared"
	"github.com/groupbuy/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Frame types pushed to clients
const (
	FrameMessage      = "message"
	FrameNotification = "notification"
	FrameError        = "error"
)

// Frame is the JSON envelope of every server-to-client websocket message
type Frame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// ChatTopic is the topic carrying a group buy's chat messages
func ChatTopic(groupBuyID uuid.UUID) string {
	return "chat:" + groupBuyID.String()
}

// UserTopic is the topic carrying one user's notifications
func UserTopic(userID uuid.UUID) string {
	return "user:" + userID.String()
}

// FrameHandler processes a frame sent by the client.
// A returned error is reported back to that client as an error frame.
type FrameHandler func(ctx context.Context, data []byte) error

// ConnectionObserver is told about every websocket opened and closed
type ConnectionObserver interface {
	WebsocketOpened()
	WebsocketClosed()
}

type noopObserver struct{}

func (noopObserver) WebsocketOpened() {}
func (noopObserver) WebsocketClosed() {}

// Hub tracks local websocket clients by topic and relays broker messages to them
type Hub struct {
	broker   Broker
	cfg      config.RealtimeConfig
	logger   *zap.Logger
	upgrader websocket.Upgrader
	observer ConnectionObserver

	mu     sync.RWMutex
	topics map[string]map[*Client]struct{}
}

// NewHub creates a hub publishing through broker
func NewHub(broker Broker, cfg config.RealtimeConfig, logger *zap.Logger) *Hub {
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = 30 * time.Second
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 10 * time.Second
	}
	if cfg.MaxMessageSize <= 0 {
		cfg.MaxMessageSize = 4096
	}
	if cfg.SendBuffer <= 0 {
		cfg.SendBuffer = 64
	}
	h := &Hub{
		broker:   broker,
		cfg:      cfg,
		logger:   logger,
		observer: noopObserver{},
		topics:   make(map[string]map[*Client]struct{}),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

// SetObserver installs a connection observer such as the metrics collector
func (h *Hub) SetObserver(o ConnectionObserver) {
	if o != nil {
		h.observer = o
	}
}

// Run relays broker messages to local clients until ctx is cancelled
func (h *Hub) Run(ctx context.Context) error {
	return h.broker.Run(ctx, h.dispatch)
}

// Publish encodes data as a frame of the given type and publishes it on topic
func (h *Hub) Publish(ctx context.Context, topic, frameType string, data any) error {
	payload, err := encodeFrame(frameType, data)
	if err != nil {
		return err
	}
	return h.broker.Publish(ctx, topic, payload)
}

// Connections returns the number of local clients subscribed to topic
func (h *Hub) Connections(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[topic])
}

// Serve upgrades the request and blocks until the client disconnects.
// onFrame may be nil for push-only streams.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, topics []string, onFrame FrameHandler) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return fmt.Errorf("websocket upgrade: %w", err)
	}

	c := &Client{
		hub:    h,
		conn:   conn,
		send:   make(chan []byte, h.cfg.SendBuffer),
		topics: topics,
		done:   make(chan struct{}),
	}
	h.register(c)
	h.observer.WebsocketOpened()
	defer func() {
		h.unregister(c)
		h.observer.WebsocketClosed()
	}()

	go c.writePump()
	c.readPump(r.Context(), onFrame)
	return nil
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, t := range c.topics {
		set, ok := h.topics[t]
		if !ok {
			set = make(map[*Client]struct{})
			h.topics[t] = set
		}
		set[c] = struct{}{}
	}
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	for _, t := range c.topics {
		if set, ok := h.topics[t]; ok {
			delete(set, c)
			if len(set) == 0 {
				delete(h.topics, t)
			}
		}
	}
	h.mu.Unlock()
	c.close()
}

// dispatch fans a payload out to local subscribers.
// A client whose buffer is full is disconnected rather than blocking the others.
func (h *Hub) dispatch(topic string, payload []byte) {
	h.mu.RLock()
	var slow []*Client
	for c := range h.topics[topic] {
		if !c.enqueue(payload) {
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		h.logger.Warn("Dropping slow websocket client", zap.String("topic", topic))
		c.close()
	}
}

func (h *Hub) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if len(h.cfg.AllowedOrigins) > 0 {
		return slices.Contains(h.cfg.AllowedOrigins, "*") || slices.Contains(h.cfg.AllowedOrigins, origin)
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Host, r.Host)
}

func encodeFrame(frameType string, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode %s frame: %w", frameType, err)
	}
	return json.Marshal(Frame{Type: frameType, Data: raw})
}

// Client is one websocket connection
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	topics []string

	closeOnce sync.Once
	done      chan struct{}
}

func (c *Client) enqueue(payload []byte) bool {
	select {
	case <-c.done:
		return true
	default:
	}
	select {
	case c.send <- payload:
		return true
	default:
		return false
	}
}

// close signals the write pump to send a close frame and drop the connection
func (c *Client) close() {
	c.closeOnce.Do(func() { close(c.done) })
}

func (c *Client) pongWait() time.Duration {
	return c.hub.cfg.PingInterval * 2
}

func (c *Client) readPump(ctx context.Context, onFrame FrameHandler) {
	c.conn.SetReadLimit(c.hub.cfg.MaxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(c.pongWait()))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.pongWait()))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Debug("Websocket closed unexpectedly", zap.Error(err))
			}
			return
		}
		if onFrame == nil {
			continue
		}
		if err := onFrame(ctx, data); err != nil {
			c.replyError(err)
		}
	}
}

func (c *Client) replyError(err error) {
	code, msg := "BAD_FRAME", err.Error()
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		code, msg = domainErr.Code, domainErr.Message
	}
	payload, encErr := encodeFrame(FrameError, map[string]string{"code": code, "message": msg})
	if encErr == nil {
		c.enqueue(payload)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(c.hub.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		c.close()
		_ = c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(c.hub.cfg.WriteTimeout))
			return
		case payload := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.hub.cfg.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(c.hub.cfg.WriteTimeout)); err != nil {
				return
			}
		}
	}
}
