package mailer

import (
	"context"
	"sync"
)

// Recorder is an in-memory Sender for tests. Fail, when set, decides per
// message whether delivery errors.
type Recorder struct {
	mu   sync.Mutex
	sent []Message
	Fail func(Message) error
}

// Send records msg unless Fail rejects it.
func (r *Recorder) Send(ctx context.Context, msg Message) error {
	if r.Fail != nil {
		if err := r.Fail(msg); err != nil {
			return err
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, msg)
	return nil
}

// Sent returns a copy of every delivered message.
func (r *Recorder) Sent() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Message, len(r.sent))
	copy(out, r.sent)
	return out
}
