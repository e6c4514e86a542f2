package serializer

import "context"

// Serializer converts one flushed batch of completed events into the payload
// handed to the sink.
//
// Implementations must be safe for concurrent use unless documented
// otherwise.
type Serializer[E any] interface {
	Serialize(ctx context.Context, events []E) (data []byte, err error)
	ContentType() string
	FileExtension() string
}
