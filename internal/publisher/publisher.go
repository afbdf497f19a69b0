// Package publisher mirrors committed store writes onto a Kafka topic for
// downstream consumers. Publishing is best-effort and fully optional.
package publisher

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"

	"github.com/2187Nick/schwab-market-depth/internal/infrastructure/questdb/book"
	"github.com/2187Nick/schwab-market-depth/internal/infrastructure/questdb/topofbook"
	"github.com/2187Nick/schwab-market-depth/pkg/logger"
)

// KafkaWriter is the subset of kafka.Writer the publisher needs.
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// BookEvent is the fan-out shape of one committed book side.
type BookEvent struct {
	Kind    string       `json:"kind"`
	Symbol  string       `json:"symbol"`
	Ts      int64        `json:"ts"`
	Side    string       `json:"side,omitempty"`
	Levels  []LevelEvent `json:"levels,omitempty"`
	Last    *float64     `json:"last_price,omitempty"`
	Size    *float64     `json:"last_size,omitempty"`
	Underly *float64     `json:"underlying_price,omitempty"`
}

// LevelEvent is one price/quantity pair inside a BookEvent.
type LevelEvent struct {
	Price    float64 `json:"price"`
	Quantity int64   `json:"quantity"`
}

// EventPublisher writes normalized events to Kafka, keyed by symbol.
type EventPublisher struct {
	writer KafkaWriter
	logger logger.Interface
}

// New creates an EventPublisher over the given brokers and topic.
func New(brokers []string, topic string, logger logger.Interface) *EventPublisher {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
	}
	return &EventPublisher{writer: writer, logger: logger}
}

// NewWithWriter creates an EventPublisher with an injected writer.
func NewWithWriter(writer KafkaWriter, logger logger.Interface) *EventPublisher {
	return &EventPublisher{writer: writer, logger: logger}
}

// PublishBook mirrors one committed book side.
func (p *EventPublisher) PublishBook(ctx context.Context, symbol string, ts int64, side string, levels []book.Level) {
	event := BookEvent{
		Kind:   "book",
		Symbol: symbol,
		Ts:     ts,
		Side:   side,
		Levels: make([]LevelEvent, len(levels)),
	}
	for i, l := range levels {
		event.Levels[i] = LevelEvent{Price: l.Price, Quantity: l.Quantity}
	}
	p.write(ctx, symbol, event)
}

// PublishTopOfBook mirrors one committed top-of-book row.
func (p *EventPublisher) PublishTopOfBook(ctx context.Context, row *topofbook.TopOfBook) {
	p.write(ctx, row.Symbol, BookEvent{
		Kind:    "top_of_book",
		Symbol:  row.Symbol,
		Ts:      row.Ts,
		Last:    row.LastPrice,
		Size:    row.LastSize,
		Underly: row.UnderlyingPrice,
	})
}

func (p *EventPublisher) write(ctx context.Context, key string, event BookEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.Error(err, logger.Field{Key: "symbol", Value: key})
		return
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: payload,
	})
	if err != nil {
		p.logger.Error(err,
			logger.Field{Key: "action", Value: "publish_event"},
			logger.Field{Key: "symbol", Value: key})
	}
}

// Close flushes and closes the underlying writer.
func (p *EventPublisher) Close() error {
	return p.writer.Close()
}
