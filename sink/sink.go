package sink

import "context"

// WriteRequest is one serialized completion payload bound for the sink.
type WriteRequest struct {
	Key         string
	Data        []byte
	ContentType string
}

// Sink receives serialized batches of completed events. Implementations must
// be safe for concurrent use when shared across handler instances.
type Sink interface {
	Write(ctx context.Context, req WriteRequest) error
}
