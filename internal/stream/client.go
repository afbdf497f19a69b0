package stream

import (
	"context"
)

// Handler receives each raw frame read from the transport.
type Handler func(ctx context.Context, raw []byte)

// Client is the upstream streaming transport. Authentication and token
// acquisition happen outside this process; the client is handed a
// pre-authorized URL.
type Client interface {
	// Start connects and runs the read loop until ctx is cancelled or Close
	// is called. Every received frame is passed to handler.
	Start(ctx context.Context, handler Handler) error

	// Subscribe issues an ADD command for one symbol on one service with the
	// given field-selector list.
	Subscribe(ctx context.Context, service ServiceKind, symbol string, fields string) error

	// Close tears down the connection.
	Close() error
}
