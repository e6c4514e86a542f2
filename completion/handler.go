package completion

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"go.uber.org/zap"

	"github.com/LaurenceChau/sqs-lambda/cache"
	"github.com/LaurenceChau/sqs-lambda/serializer"
	"github.com/LaurenceChau/sqs-lambda/sink"
)

const (
	// deleteBatchMax is the entry ceiling of the SQS DeleteMessageBatch API.
	deleteBatchMax = 10
	// deleteTimeout bounds each DeleteMessageBatch call so an unresponsive
	// backend cannot stall the worker indefinitely.
	deleteTimeout = 2 * time.Second
)

// SQSAPI is the subset of the SQS client used to acknowledge messages.
type SQSAPI interface {
	DeleteMessageBatch(ctx context.Context, params *sqs.DeleteMessageBatchInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageBatchOutput, error)
}

// KeyFunc produces the sink object key for one flushed batch of n events.
type KeyFunc func(ctx context.Context, n int) (string, error)

// handler owns the unflushed state. It is mutated only by the worker
// goroutine, so none of its fields need locking.
type handler[E any] struct {
	client   SQSAPI
	queueURL string

	events     []E
	identities [][]byte
	deletable  []QueueMessage

	ser     serializer.Serializer[E]
	sink    sink.Sink
	cache   cache.Cache
	policy  *Policy
	keyFunc KeyFunc
	onAck   AckFunc

	logger  *zap.Logger
	metrics *Metrics
}

func (h *handler[E]) markComplete(ctx context.Context, msg QueueMessage, out Outcome[E]) error {
	switch out.kind {
	case outcomeTotal:
		h.events = append(h.events, out.event)
		h.deletable = append(h.deletable, msg)
		h.identities = append(h.identities, out.identities...)
	case outcomePartial:
		h.logger.Warn("event handler partially successful",
			zap.String("message_id", msg.MessageID), zap.Error(out.err))
		h.events = append(h.events, out.event)
		h.identities = append(h.identities, out.identities...)
	case outcomeFailed:
		// Nothing buffered, but the policy still runs below: a time-due
		// batch flushes no matter which outcome arrived.
		h.logger.Warn("event handler failed",
			zap.String("message_id", msg.MessageID), zap.Error(out.err))
	}

	h.logger.Debug("marked event complete",
		zap.Int("events", len(h.events)), zap.Int("deletable", len(h.deletable)))

	if h.policy.ShouldFlush(len(h.events)) {
		if err := h.flush(ctx, nil); err != nil {
			return err
		}
		h.policy.Reset()
	}
	return nil
}

func (h *handler[E]) ackAll(ctx context.Context, notify chan<- struct{}) error {
	return h.flush(ctx, notify)
}

// flush runs the full protocol: serialize, emit, persist identities, delete
// source messages in chunks, clear buffers, signal notify. Serialize and emit
// failures are fatal; the buffers are cleared before returning so a restart
// does not re-emit the batch.
func (h *handler[E]) flush(ctx context.Context, notify chan<- struct{}) error {
	if len(h.events) == 0 && len(h.deletable) == 0 {
		if notify != nil {
			close(notify)
		}
		return nil
	}

	h.logger.Info("flushing completed events",
		zap.Int("events", len(h.events)),
		zap.Int("identities", len(h.identities)),
		zap.Int("deletable", len(h.deletable)))

	data, err := h.ser.Serialize(ctx, h.events)
	if err != nil {
		h.clear()
		return &FatalError{Op: "serialize", Err: err}
	}

	key, err := h.keyFunc(ctx, len(h.events))
	if err != nil {
		h.clear()
		return &FatalError{Op: "emit", Err: err}
	}
	if err := h.sink.Write(ctx, sink.WriteRequest{
		Key:         key,
		Data:        data,
		ContentType: h.ser.ContentType(),
	}); err != nil {
		h.clear()
		return &FatalError{Op: "emit", Err: err}
	}
	h.metrics.addSerialized(len(h.events))

	for _, identity := range h.identities {
		if err := h.cache.Store(ctx, identity); err != nil {
			// Non-fatal: a missed dedup marker only risks duplicate
			// reprocessing, which at-least-once already allows.
			h.logger.Warn("dedup cache store failed", zap.Error(err))
			h.metrics.cacheStoreFailed()
		}
	}

	h.deleteBatches(ctx)

	h.clear()
	h.metrics.flushed()

	if notify != nil {
		close(notify)
	}
	return nil
}

// deleteBatches acknowledges the deletable messages in chunks of at most 10
// and reports each message's fate through the ack callback. A request-level
// failure counts as a failure of every entry in that chunk.
func (h *handler[E]) deleteBatches(ctx context.Context) {
	for start := 0; start < len(h.deletable); start += deleteBatchMax {
		end := start + deleteBatchMax
		if end > len(h.deletable) {
			end = len(h.deletable)
		}
		chunk := h.deletable[start:end]

		entries := make([]sqstypes.DeleteMessageBatchRequestEntry, len(chunk))
		for i := range chunk {
			entries[i] = sqstypes.DeleteMessageBatchRequestEntry{
				Id:            &chunk[i].MessageID,
				ReceiptHandle: &chunk[i].ReceiptHandle,
			}
		}

		reqCtx, cancel := context.WithTimeout(ctx, deleteTimeout)
		out, err := h.client.DeleteMessageBatch(reqCtx, &sqs.DeleteMessageBatchInput{
			QueueUrl: &h.queueURL,
			Entries:  entries,
		})
		cancel()

		if err != nil {
			h.logger.Warn("delete message batch failed",
				zap.Int("size", len(chunk)), zap.Error(err))
			for i := range chunk {
				h.ack(Ack{
					MessageID: chunk[i].MessageID,
					Err:       fmt.Errorf("delete message batch: %w", err),
				})
			}
			continue
		}

		for _, s := range out.Successful {
			h.ack(Ack{MessageID: aws.ToString(s.Id)})
		}
		for _, f := range out.Failed {
			h.ack(Ack{
				MessageID: aws.ToString(f.Id),
				Err: fmt.Errorf("delete failed code=%s message=%s",
					aws.ToString(f.Code), aws.ToString(f.Message)),
			})
		}
	}
}

func (h *handler[E]) ack(a Ack) {
	h.metrics.acked(a.Err == nil)
	if h.onAck != nil {
		h.onAck(a)
	}
}

func (h *handler[E]) clear() {
	h.events = h.events[:0]
	for i := range h.identities {
		h.identities[i] = nil
	}
	h.identities = h.identities[:0]
	h.deletable = h.deletable[:0]
}

// defaultKeyFunc partitions sink keys by time and adds a random suffix to
// avoid collisions between instances flushing in the same hour.
func defaultKeyFunc(ext string) KeyFunc {
	if ext == "" || ext[0] != '.' {
		ext = ".bin"
	}
	return func(ctx context.Context, n int) (string, error) {
		_ = ctx
		_ = n

		now := time.Now().UTC()
		suffix, err := randomHex(8)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%04d/%02d/%02d/%02d/%d-%s%s",
			now.Year(), int(now.Month()), now.Day(), now.Hour(), now.UnixNano(), suffix, ext,
		), nil
	}
}

func randomHex(nBytes int) (string, error) {
	b := make([]byte, nBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
