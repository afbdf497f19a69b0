package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/2187Nick/schwab-market-depth/pkg/errors"
	"github.com/2187Nick/schwab-market-depth/pkg/logger"
)

const reconnectDelay = 5 * time.Second

// WebSocketClient is the gorilla/websocket transport implementation.
// Writes are serialized through a mutex; the connection object is not safe
// for concurrent writers.
type WebSocketClient struct {
	url        string
	customerID string
	correlID   string
	logger     logger.Interface

	writeMu   sync.Mutex
	conn      *websocket.Conn
	requestID atomic.Int64
	closed    atomic.Bool
}

// NewWebSocketClient creates a websocket transport client.
func NewWebSocketClient(url, customerID, correlID string, logger logger.Interface) *WebSocketClient {
	return &WebSocketClient{
		url:        url,
		customerID: customerID,
		correlID:   correlID,
		logger:     logger,
	}
}

// Start connects and reads frames until ctx is cancelled or Close is called.
// Read failures trigger a redial after a short delay; a lost upstream
// connection must not kill the ingestion worker.
func (c *WebSocketClient) Start(ctx context.Context, handler Handler) error {
	for {
		if err := c.dial(ctx); err != nil {
			if c.closed.Load() || ctx.Err() != nil {
				return ctx.Err()
			}
			c.logger.Error(fmt.Errorf("stream dial failed: %w", err),
				logger.Field{Key: "url", Value: c.url})
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(reconnectDelay):
				continue
			}
		}

		c.logger.Info("stream connected", logger.Field{Key: "url", Value: c.url})
		c.readLoop(ctx, handler)

		if c.closed.Load() || ctx.Err() != nil {
			return ctx.Err()
		}

		c.logger.Warn("stream disconnected, reconnecting",
			logger.Field{Key: "delay", Value: reconnectDelay.String()})
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(reconnectDelay):
		}
	}
}

func (c *WebSocketClient) dial(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return err
	}

	c.writeMu.Lock()
	c.conn = conn
	c.writeMu.Unlock()
	return nil
}

func (c *WebSocketClient) readLoop(ctx context.Context, handler Handler) {
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if !c.closed.Load() && ctx.Err() == nil {
				c.logger.Error(fmt.Errorf("stream read failed: %w", err))
			}
			return
		}
		handler(ctx, raw)
	}
}

type subscribeRequest struct {
	Requests []subscribeCommand `json:"requests"`
}

type subscribeCommand struct {
	Service    string              `json:"service"`
	Command    string              `json:"command"`
	RequestID  int64               `json:"requestid"`
	CustomerID string              `json:"SchwabClientCustomerId"`
	CorrelID   string              `json:"SchwabClientCorrelId"`
	Parameters subscribeParameters `json:"parameters"`
}

type subscribeParameters struct {
	Keys   string `json:"keys"`
	Fields string `json:"fields"`
}

// Subscribe issues an ADD command for one symbol on one service.
func (c *WebSocketClient) Subscribe(ctx context.Context, service ServiceKind, symbol string, fields string) error {
	req := subscribeRequest{
		Requests: []subscribeCommand{{
			Service:    string(service),
			Command:    "ADD",
			RequestID:  c.requestID.Add(1),
			CustomerID: c.customerID,
			CorrelID:   c.correlID,
			Parameters: subscribeParameters{
				Keys:   symbol,
				Fields: fields,
			},
		}},
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return errors.WrapCoded(errors.UpstreamSubscribeError,
			fmt.Sprintf("failed to encode subscribe for %s", symbol), err)
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if c.conn == nil {
		return errors.NewCodedError(errors.UpstreamSubscribeError, "stream not connected")
	}
	if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		return errors.WrapCoded(errors.UpstreamSubscribeError,
			fmt.Sprintf("failed to send subscribe for %s", symbol), err)
	}

	return nil
}

// Close tears down the connection and stops any reconnect attempts.
func (c *WebSocketClient) Close() error {
	c.closed.Store(true)

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}
