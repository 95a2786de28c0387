package http

import (
	"sync"

	"pursetto/internal/notify"
)

// Feed buffers played announcements until a client drains them. It is
// the sink handed to the engine's sequencer, so entries arrive already
// ordered and paced.
type Feed struct {
	mu      sync.Mutex
	entries []notify.Announcement
}

func NewFeed() *Feed {
	return &Feed{}
}

// Receive implements the notification sink.
func (f *Feed) Receive(a notify.Announcement) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, a)
}

// Drain returns and clears the buffered announcements.
func (f *Feed) Drain() []notify.Announcement {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.entries
	f.entries = nil
	return out
}
