// Package notify orders and times reward announcements so no two are
// ever shown at once. Playback is driven by timers, not by user input;
// cancellation drops everything not yet released.
package notify

import (
	"sort"
	"sync"
	"time"
)

const (
	KindXP      Kind = "xp"
	KindGoal    Kind = "goal"
	KindStreak  Kind = "streak"
	KindLevelUp Kind = "level-up"
)

type (
	Kind string

	// Announcement is one deferred reward notice. Duration is how long
	// the presentation layer should keep it on screen.
	Announcement struct {
		Kind     Kind          `json:"kind"`
		Title    string        `json:"title"`
		Body     string        `json:"body"`
		Duration time.Duration `json:"duration"`
	}

	// Sink receives each announcement exactly when its display window
	// begins.
	Sink func(Announcement)
)

// priority fixes the within-batch order: XP always precedes any
// dependent announcement from the same action.
func priority(k Kind) int {
	switch k {
	case KindXP:
		return 0
	case KindGoal:
		return 1
	case KindStreak:
		return 2
	default:
		return 3
	}
}

// Sequencer plays announcements back to back with a fixed gap between
// display windows. A cancellation invalidates the running playback
// chain via the generation counter.
type Sequencer struct {
	mu      sync.Mutex
	queue   []Announcement
	gap     time.Duration
	sink    Sink
	timer   *time.Timer
	playing bool
	closed  bool
	gen     uint64
}

func NewSequencer(sink Sink, gap time.Duration) *Sequencer {
	if sink == nil {
		sink = func(Announcement) {}
	}
	if gap < 0 {
		gap = 0
	}
	return &Sequencer{sink: sink, gap: gap}
}

// Enqueue orders the batch by kind priority and appends it after any
// already scheduled records. Playback starts immediately when idle.
func (s *Sequencer) Enqueue(batch ...Announcement) {
	if len(batch) == 0 {
		return
	}
	ordered := append([]Announcement(nil), batch...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return priority(ordered[i].Kind) < priority(ordered[j].Kind)
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.queue = append(s.queue, ordered...)
	if !s.playing {
		s.playing = true
		gen := s.gen
		s.timer = time.AfterFunc(0, func() { s.playNext(gen) })
	}
}

// playNext releases the head announcement and schedules the next one
// for when its display window (duration + gap) ends.
func (s *Sequencer) playNext(gen uint64) {
	s.mu.Lock()
	if s.closed || gen != s.gen || len(s.queue) == 0 {
		if gen == s.gen {
			s.playing = false
		}
		s.mu.Unlock()
		return
	}
	head := s.queue[0]
	s.queue = s.queue[1:]
	s.mu.Unlock()

	s.sink(head)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || gen != s.gen {
		return
	}
	s.timer = time.AfterFunc(head.Duration+s.gap, func() { s.playNext(gen) })
}

// CancelAll drops every pending announcement. An announcement whose
// window already began is not recalled.
func (s *Sequencer) CancelAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue = nil
	s.gen++
	if s.timer != nil {
		s.timer.Stop()
	}
	s.playing = false
}

// Pending reports how many announcements wait for their window.
func (s *Sequencer) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// Close cancels pending playback permanently.
func (s *Sequencer) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.queue = nil
	s.gen++
	if s.timer != nil {
		s.timer.Stop()
	}
	s.playing = false
}
