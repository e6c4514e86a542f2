package completion

import "time"

// Policy decides when buffered completions must be flushed: either the buffer
// reached MaxMessages or MaxInterval elapsed since the last reset.
//
// A zero MaxMessages or zero MaxInterval makes every evaluation flush; empty
// flushes are safe no-ops, so the degenerate configurations still work.
type Policy struct {
	maxMessages int
	maxInterval time.Duration

	lastFlush time.Time
	now       func() time.Time
}

func NewPolicy(maxMessages int, maxInterval time.Duration) *Policy {
	return &Policy{
		maxMessages: maxMessages,
		maxInterval: maxInterval,
		lastFlush:   time.Now(),
		now:         time.Now,
	}
}

// ShouldFlush reports whether a buffer of pending completions is due. Pure:
// safe to call arbitrarily often.
func (p *Policy) ShouldFlush(pending int) bool {
	return pending >= p.maxMessages || p.now().Sub(p.lastFlush) >= p.maxInterval
}

// Reset restarts the time window. Called once right after a policy-triggered
// flush completes, so a slow flush does not shrink the next window.
func (p *Policy) Reset() {
	p.lastFlush = p.now()
}
