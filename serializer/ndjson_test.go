package serializer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	ID    string `json:"id"`
	Count int    `json:"count"`
}

func TestNDJSON_Serialize(t *testing.T) {
	s := NDJSON[record]{}

	data, err := s.Serialize(context.Background(), []record{
		{ID: "a", Count: 1},
		{ID: "b", Count: 2},
	})
	require.NoError(t, err)
	assert.Equal(t, "{\"id\":\"a\",\"count\":1}\n{\"id\":\"b\",\"count\":2}", string(data))
}

func TestNDJSON_SerializeTrailingNewline(t *testing.T) {
	s := NDJSON[record]{TrailingNewline: true}

	data, err := s.Serialize(context.Background(), []record{{ID: "a", Count: 1}})
	require.NoError(t, err)
	assert.Equal(t, "{\"id\":\"a\",\"count\":1}\n", string(data))
}

func TestNDJSON_SerializeEmpty(t *testing.T) {
	s := NDJSON[record]{}

	data, err := s.Serialize(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestNDJSON_SerializeUnencodable(t *testing.T) {
	s := NDJSON[chan int]{}

	_, err := s.Serialize(context.Background(), []chan int{make(chan int)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "event 0")
}

func TestNDJSON_Metadata(t *testing.T) {
	s := NDJSON[record]{}
	assert.Equal(t, "application/x-ndjson", s.ContentType())
	assert.Equal(t, ".ndjson", s.FileExtension())
}
