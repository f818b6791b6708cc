// Package state holds the per-game run state: running flag, score, best
// score and elapsed time, with change notifications for presentation code.
package state

import (
	"sync"
	"time"
)

// Field identifies one observable value of the Store
type Field int

const (
	FieldRunning Field = iota
	FieldScore
	FieldBestScore
	FieldTime
)

func (f Field) String() string {
	switch f {
	case FieldRunning:
		return "running"
	case FieldScore:
		return "score"
	case FieldBestScore:
		return "best_score"
	case FieldTime:
		return "time"
	default:
		return "unknown"
	}
}

// Listener is called once per changed field
type Listener func(field Field)

// SubscriptionID identifies a registered listener
type SubscriptionID uint64

type subscription struct {
	id SubscriptionID
	fn Listener
}

// Snapshot is a consistent copy of the Store values
type Snapshot struct {
	Running   bool   `json:"running"`
	Score     int    `json:"score"`
	BestScore int    `json:"best_score"`
	TimeMS    int64  `json:"time_ms"`
	Time      string `json:"time"`
}

// Store is the single source of truth for run state. Listeners run
// synchronously on the caller's goroutine, outside the lock, so they may
// call back into the Store.
type Store struct {
	mu        sync.Mutex
	running   bool
	score     int
	bestScore int
	elapsed   time.Duration

	nextID      SubscriptionID
	subscribers []subscription
}

// NewStore creates a stopped store with zero score and time
func NewStore() *Store {
	return &Store{}
}

// Subscribe registers a listener; listeners are notified in registration order
func (s *Store) Subscribe(fn Listener) SubscriptionID {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	s.subscribers = append(s.subscribers, subscription{id: s.nextID, fn: fn})
	return s.nextID
}

// Unsubscribe removes a listener. Unknown IDs are ignored.
func (s *Store) Unsubscribe(id SubscriptionID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, sub := range s.subscribers {
		if sub.id == id {
			s.subscribers = append(s.subscribers[:i:i], s.subscribers[i+1:]...)
			return
		}
	}
}

// Running reports whether a run is in progress
func (s *Store) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Score returns the score of the current run
func (s *Store) Score() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.score
}

// BestScore returns the highest score reached in any run
func (s *Store) BestScore() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bestScore
}

// Time returns the elapsed run time
func (s *Store) Time() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.elapsed
}

// TimeMS returns the elapsed run time in milliseconds
func (s *Store) TimeMS() int64 {
	return s.Time().Milliseconds()
}

// TimeString returns the elapsed run time formatted for display
func (s *Store) TimeString() string {
	return FormatTime(s.Time())
}

// Snapshot returns all values read under a single lock
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Running:   s.running,
		Score:     s.score,
		BestScore: s.bestScore,
		TimeMS:    s.elapsed.Milliseconds(),
		Time:      FormatTime(s.elapsed),
	}
}

// SetRunning starts or stops the run
func (s *Store) SetRunning(running bool) {
	s.mu.Lock()
	var changed []Field
	if s.running != running {
		s.running = running
		changed = append(changed, FieldRunning)
	}
	s.unlockAndPublish(changed)
}

// AddScore adds delta to the score and raises the best score when exceeded
func (s *Store) AddScore(delta int) {
	s.mu.Lock()
	var changed []Field
	if delta != 0 {
		s.score += delta
		changed = append(changed, FieldScore)
	}
	if s.score > s.bestScore {
		s.bestScore = s.score
		changed = append(changed, FieldBestScore)
	}
	s.unlockAndPublish(changed)
}

// SetTime replaces the elapsed time
func (s *Store) SetTime(d time.Duration) {
	s.mu.Lock()
	changed := s.setTimeLocked(d)
	s.unlockAndPublish(changed)
}

// AddTime adds d to the elapsed time
func (s *Store) AddTime(d time.Duration) {
	s.mu.Lock()
	changed := s.setTimeLocked(s.elapsed + d)
	s.unlockAndPublish(changed)
}

// Reset zeroes score and time for a new run; the best score is kept
func (s *Store) Reset() {
	s.mu.Lock()
	var changed []Field
	if s.score != 0 {
		s.score = 0
		changed = append(changed, FieldScore)
	}
	changed = append(changed, s.setTimeLocked(0)...)
	s.unlockAndPublish(changed)
}

// setTimeLocked updates the elapsed time and reports FieldTime only when the
// displayed string changes
func (s *Store) setTimeLocked(d time.Duration) []Field {
	if d < 0 {
		d = 0
	}
	before := FormatTime(s.elapsed)
	s.elapsed = d
	if FormatTime(d) != before {
		return []Field{FieldTime}
	}
	return nil
}

// unlockAndPublish releases the lock and notifies subscribers of each field
func (s *Store) unlockAndPublish(changed []Field) {
	if len(changed) == 0 {
		s.mu.Unlock()
		return
	}
	subscribers := make([]subscription, len(s.subscribers))
	copy(subscribers, s.subscribers)
	s.mu.Unlock()

	for _, field := range changed {
		for _, sub := range subscribers {
			sub.fn(field)
		}
	}
}
