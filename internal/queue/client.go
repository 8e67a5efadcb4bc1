package queue

import "context"

// Client hands screening requests to a queue backend. Implementations must
// be safe for concurrent use by request handlers.
type Client interface {
	Send(ctx context.Context, msg Message) error
}
