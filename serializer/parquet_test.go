package serializer

import (
	"bytes"
	"context"
	"testing"

	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	ID    string `parquet:"id"`
	Count int64  `parquet:"count"`
}

func TestParquet_SerializeRoundTrip(t *testing.T) {
	s := Parquet[row]{}

	in := []row{
		{ID: "a", Count: 1},
		{ID: "b", Count: 2},
		{ID: "c", Count: 3},
	}
	data, err := s.Serialize(context.Background(), in)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	r := parquet.NewGenericReader[row](bytes.NewReader(data))
	defer r.Close()

	out := make([]row, len(in))
	n, err := r.Read(out)
	if n != len(in) {
		require.NoError(t, err)
	}
	require.Equal(t, len(in), n)
	assert.Equal(t, in, out)
}

func TestParquet_SerializeEmptyBatch(t *testing.T) {
	s := Parquet[row]{}

	data, err := s.Serialize(context.Background(), nil)
	require.NoError(t, err)
	assert.NotEmpty(t, data, "still a valid parquet file")
}

func TestParquet_SerializeWithCompression(t *testing.T) {
	for _, comp := range []string{"", "snappy", "gzip", "zstd"} {
		s := Parquet[row]{Compression: comp}
		_, err := s.Serialize(context.Background(), []row{{ID: "a", Count: 1}})
		require.NoError(t, err, "compression %q", comp)
	}
}

func TestParquet_SerializeUnsupportedCompression(t *testing.T) {
	s := Parquet[row]{Compression: "lz77"}
	_, err := s.Serialize(context.Background(), []row{{ID: "a", Count: 1}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported parquet compression")
}

func TestParquet_Metadata(t *testing.T) {
	s := Parquet[row]{}
	assert.Equal(t, "application/vnd.apache.parquet", s.ContentType())
	assert.Equal(t, ".parquet", s.FileExtension())
}
