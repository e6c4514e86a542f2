package completion

// QueueMessage identifies one received SQS message by the pair of values the
// delete API needs. Both fields come straight from the receive response.
type QueueMessage struct {
	MessageID     string
	ReceiptHandle string
}

type outcomeKind int

const (
	outcomeTotal outcomeKind = iota
	outcomePartial
	outcomeFailed
)

// Outcome is the result of processing one queue message upstream. It is a
// tagged variant; build values with Total, Partial or Failed.
//
// Identities are opaque dedup keys for the units of work the outcome covers.
// They are persisted to the cache on flush regardless of whether the source
// message gets deleted.
type Outcome[E any] struct {
	kind       outcomeKind
	event      E
	err        error
	identities [][]byte
}

// Total marks full success: the event is buffered for emission and the source
// message becomes eligible for deletion.
func Total[E any](event E, identities ...[]byte) Outcome[E] {
	return Outcome[E]{kind: outcomeTotal, event: event, identities: identities}
}

// Partial marks incomplete processing: the event is still buffered and its
// identities still recorded, but the source message is left un-acked so the
// queue redelivers it after the visibility timeout.
//
// Note that a redelivered message may find its identities already cached even
// though processing never finished; upstream handlers that consult the cache
// before reprocessing must account for that.
func Partial[E any](event E, err error, identities ...[]byte) Outcome[E] {
	return Outcome[E]{kind: outcomePartial, event: event, err: err, identities: identities}
}

// Failed marks a processing failure with no usable event. Nothing is buffered.
func Failed[E any](err error) Outcome[E] {
	return Outcome[E]{kind: outcomeFailed, err: err}
}

// Ack reports the result of one delete attempt for one message.
type Ack struct {
	MessageID string
	Err       error
}

// AckFunc receives one Ack per message per flush. It runs on the handler's
// worker goroutine and must not block for long.
type AckFunc func(ack Ack)
