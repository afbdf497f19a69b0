package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"

	"github.com/2187Nick/schwab-market-depth/internal/infrastructure/questdb/book"
	"github.com/2187Nick/schwab-market-depth/internal/infrastructure/questdb/topofbook"
	"github.com/2187Nick/schwab-market-depth/pkg/logger"
	"github.com/2187Nick/schwab-market-depth/pkg/util"
)

type captureWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *captureWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *captureWriter) Close() error {
	w.closed = true
	return nil
}

func newPublisher(t *testing.T, writer KafkaWriter) *EventPublisher {
	t.Helper()
	lg, err := logger.NewLogger()
	assert.NoError(t, err)
	return NewWithWriter(writer, lg)
}

func TestEventPublisher_PublishBook(t *testing.T) {
	writer := &captureWriter{}
	p := newPublisher(t, writer)

	p.PublishBook(context.Background(), "SPY   250415C00500000", 1744722000123, book.SideBid,
		[]book.Level{{Price: 1.25, Quantity: 10}})

	if assert.Len(t, writer.messages, 1) {
		msg := writer.messages[0]
		assert.Equal(t, "SPY   250415C00500000", string(msg.Key))

		var event BookEvent
		assert.NoError(t, json.Unmarshal(msg.Value, &event))
		assert.Equal(t, "book", event.Kind)
		assert.Equal(t, book.SideBid, event.Side)
		assert.Equal(t, []LevelEvent{{Price: 1.25, Quantity: 10}}, event.Levels)
	}
}

func TestEventPublisher_PublishTopOfBook(t *testing.T) {
	writer := &captureWriter{}
	p := newPublisher(t, writer)

	p.PublishTopOfBook(context.Background(), &topofbook.TopOfBook{
		Symbol:    "SPY",
		Ts:        99,
		LastPrice: util.Float64Ptr(1.27),
	})

	if assert.Len(t, writer.messages, 1) {
		var event BookEvent
		assert.NoError(t, json.Unmarshal(writer.messages[0].Value, &event))
		assert.Equal(t, "top_of_book", event.Kind)
		assert.Equal(t, int64(99), event.Ts)
		assert.Equal(t, 1.27, *event.Last)
		assert.Nil(t, event.Size)
	}
}

func TestEventPublisher_WriteFailureIsSwallowed(t *testing.T) {
	writer := &captureWriter{err: errors.New("broker unavailable")}
	p := newPublisher(t, writer)

	// Fan-out is best-effort; a failed write must not panic or surface.
	p.PublishBook(context.Background(), "SPY", 1, book.SideAsk, []book.Level{{Price: 1, Quantity: 1}})
	assert.Empty(t, writer.messages)
}

func TestEventPublisher_Close(t *testing.T) {
	writer := &captureWriter{}
	p := newPublisher(t, writer)

	assert.NoError(t, p.Close())
	assert.True(t, writer.closed)
}
