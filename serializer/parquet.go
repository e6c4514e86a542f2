package serializer

import (
	"bytes"
	"context"
	"fmt"

	"github.com/parquet-go/parquet-go"
)

// Parquet serializes events as a single parquet file per flush.
type Parquet[E any] struct {
	// Compression (optional): "", "snappy", "gzip", "zstd"
	Compression string
}

func (s Parquet[E]) ContentType() string   { return "application/vnd.apache.parquet" }
func (s Parquet[E]) FileExtension() string { return ".parquet" }

func (s Parquet[E]) Serialize(ctx context.Context, events []E) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	options := make([]parquet.WriterOption, 0, 1)
	switch s.Compression {
	case "":
		// no compression
	case "snappy":
		options = append(options, parquet.Compression(&parquet.Snappy))
	case "gzip":
		options = append(options, parquet.Compression(&parquet.Gzip))
	case "zstd":
		options = append(options, parquet.Compression(&parquet.Zstd))
	default:
		return nil, fmt.Errorf("unsupported parquet compression: %q", s.Compression)
	}

	var buf bytes.Buffer
	w := parquet.NewGenericWriter[E](&buf, options...)

	if len(events) > 0 {
		if _, err := w.Write(events); err != nil {
			_ = w.Close()
			return nil, err
		}
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
