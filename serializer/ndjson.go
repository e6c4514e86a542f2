package serializer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
)

// NDJSON serializes events as newline-delimited JSON.
type NDJSON[E any] struct {
	TrailingNewline bool
}

func (s NDJSON[E]) ContentType() string   { return "application/x-ndjson" }
func (s NDJSON[E]) FileExtension() string { return ".ndjson" }

func (s NDJSON[E]) Serialize(ctx context.Context, events []E) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	for i, ev := range events {
		if err := enc.Encode(ev); err != nil {
			return nil, fmt.Errorf("ndjson encode event %d: %w", i, err)
		}
	}

	if !s.TrailingNewline && buf.Len() > 0 {
		b := buf.Bytes()
		if b[len(b)-1] == '\n' {
			buf.Truncate(buf.Len() - 1)
		}
	}

	return buf.Bytes(), nil
}
