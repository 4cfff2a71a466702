package notify

import (
	"context"
	"sync"
)

// Recorder is an in-memory Notifier for tests. It records every message and
// can be told to fail, which lets tests assert that a failed dispatch aborts
// the surrounding transaction.
type Recorder struct {
	mu       sync.Mutex
	messages []Message

	// FailWith, when non-nil, is returned by Send without recording.
	FailWith error
}

func (r *Recorder) Send(ctx context.Context, m Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.FailWith != nil {
		return r.FailWith
	}
	r.messages = append(r.messages, m)
	return nil
}

// Sent returns a copy of all recorded messages.
func (r *Recorder) Sent() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Message, len(r.messages))
	copy(out, r.messages)
	return out
}

// Reset clears recorded messages and the failure mode.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = nil
	r.FailWith = nil
}
