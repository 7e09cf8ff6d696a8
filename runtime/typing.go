package runtime

import (
	"log/slog"
	"sync"
	"time"
)

type typingKey struct {
	conversationID int64
	userID         string
}

// typingEntry pairs the armed timer with the generation it was armed
// under, so a fire can tell whether it has been superseded.
type typingEntry struct {
	timer *time.Timer
	gen   uint64
}

// TypingTracker is an arena of small per-(conversation, user) state
// machines with two states, idle and typing. At most one pending timer
// exists per key; arming always cancels the prior timer first.
//
// Broadcasts happen only on observable state changes: a re-signal while
// already typing re-arms the timer without re-broadcasting.
type TypingTracker struct {
	mu        sync.Mutex
	timers    map[typingKey]typingEntry
	gen       uint64
	idleAfter time.Duration
	broadcast func(conversationID int64, userID string, isTyping bool)
	log       *slog.Logger
}

func NewTypingTracker(log *slog.Logger, idleAfter time.Duration,
	broadcast func(conversationID int64, userID string, isTyping bool)) *TypingTracker {
	return &TypingTracker{
		timers:    make(map[typingKey]typingEntry),
		idleAfter: idleAfter,
		broadcast: broadcast,
		log:       log,
	}
}

// Signal processes a typing frame from userID.
func (t *TypingTracker) Signal(conversationID int64, userID string, isTyping bool) {
	k := typingKey{conversationID: conversationID, userID: userID}

	t.mu.Lock()
	prior, wasTyping := t.timers[k]
	if wasTyping {
		prior.timer.Stop()
	}

	if isTyping {
		// The generation is fixed under the mutex before the timer is
		// created; the expiry closure carries it by value, so a fire that
		// races with a re-arm compares against the map under the same
		// mutex and recognizes it has been superseded.
		t.gen++
		gen := t.gen
		timer := time.AfterFunc(t.idleAfter, func() {
			t.expire(k, gen)
		})
		t.timers[k] = typingEntry{timer: timer, gen: gen}
		t.mu.Unlock()

		if !wasTyping {
			t.broadcast(conversationID, userID, true)
		}
		return
	}

	delete(t.timers, k)
	t.mu.Unlock()

	if wasTyping {
		t.broadcast(conversationID, userID, false)
	}
}

// expire fires the typing→idle transition when the quiet window passed
// with no refresh.
func (t *TypingTracker) expire(k typingKey, gen uint64) {
	t.mu.Lock()
	current, ok := t.timers[k]
	if !ok || current.gen != gen {
		// Cancelled or re-armed after this fire was scheduled.
		t.mu.Unlock()
		return
	}
	delete(t.timers, k)
	t.mu.Unlock()

	t.broadcast(k.conversationID, k.userID, false)
}

// DropUser cancels every timer the user owns and broadcasts
// typing=false for each affected conversation, so peers never see a
// user stuck typing after leaving.
func (t *TypingTracker) DropUser(userID string) {
	t.mu.Lock()
	var affected []int64
	for k, entry := range t.timers {
		if k.userID != userID {
			continue
		}
		entry.timer.Stop()
		delete(t.timers, k)
		affected = append(affected, k.conversationID)
	}
	t.mu.Unlock()

	for _, conversationID := range affected {
		t.broadcast(conversationID, userID, false)
	}
}

// PendingTimers reports how many timers are armed, for leak checks and
// stats.
func (t *TypingTracker) PendingTimers() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.timers)
}
