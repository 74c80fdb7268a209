package session

import "sync/atomic"

// Holder publishes the current session snapshot to concurrent readers.
// Reload swaps a complete new session atomically, so in-flight readers never
// observe a half-updated structure; the previous snapshot stays valid for
// anyone still holding it.
type Holder struct {
	p atomic.Pointer[Session]
}

// NewHolder creates a holder with an optional initial snapshot.
func NewHolder(s *Session) *Holder {
	h := &Holder{}
	if s != nil {
		h.p.Store(s)
	}
	return h
}

// Current returns the latest snapshot, or nil if none has been published.
func (h *Holder) Current() *Session {
	return h.p.Load()
}

// Swap publishes a new snapshot and returns the previous one.
func (h *Holder) Swap(s *Session) *Session {
	return h.p.Swap(s)
}
