// Package presence tracks which users have been seen recently. A user is
// online while their last authenticated request falls inside the window;
// the client refreshes this by polling every 30 seconds.
package presence

import (
	"sort"
	"sync"
	"time"
)

const DefaultWindow = 60 * time.Second

type Tracker struct {
	window time.Duration
	now    func() time.Time

	mu   sync.Mutex
	seen map[string]time.Time
}

func NewTracker(window time.Duration) *Tracker {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Tracker{
		window: window,
		now:    time.Now,
		seen:   make(map[string]time.Time),
	}
}

func (t *Tracker) Touch(username string) {
	if username == "" {
		return
	}
	t.mu.Lock()
	t.seen[username] = t.now()
	t.mu.Unlock()
}

// Online returns the usernames seen within the window, sorted. Stale
// entries are pruned on the way out.
func (t *Tracker) Online() []string {
	cutoff := t.now().Add(-t.window)

	t.mu.Lock()
	users := make([]string, 0, len(t.seen))
	for name, at := range t.seen {
		if at.Before(cutoff) {
			delete(t.seen, name)
			continue
		}
		users = append(users, name)
	}
	t.mu.Unlock()

	sort.Strings(users)
	return users
}
