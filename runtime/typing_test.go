package runtime

import (
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type typingBroadcast struct {
	conversationID int64
	userID         string
	isTyping       bool
}

type typingRecorder struct {
	mu    sync.Mutex
	calls []typingBroadcast
}

func (r *typingRecorder) record(conversationID int64, userID string, isTyping bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, typingBroadcast{conversationID, userID, isTyping})
}

func (r *typingRecorder) Calls() []typingBroadcast {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]typingBroadcast(nil), r.calls...)
}

func TestTypingTracker_StartBroadcastsOnce(t *testing.T) {
	req := require.New(t)
	recorder := &typingRecorder{}
	tracker := NewTypingTracker(slog.Default(), time.Hour, recorder.record)

	tracker.Signal(42, "alice", true)

	req.Equal([]typingBroadcast{{42, "alice", true}}, recorder.Calls())
	req.Equal(1, tracker.PendingTimers())
}

func TestTypingTracker_Debounce_NoRebroadcast(t *testing.T) {
	req := require.New(t)
	recorder := &typingRecorder{}
	tracker := NewTypingTracker(slog.Default(), time.Hour, recorder.record)

	// When the sender re-signals while already typing
	tracker.Signal(42, "alice", true)
	tracker.Signal(42, "alice", true)
	tracker.Signal(42, "alice", true)

	// Then the observable state changed once, so one broadcast total
	req.Equal([]typingBroadcast{{42, "alice", true}}, recorder.Calls())
	req.Equal(1, tracker.PendingTimers())
}

func TestTypingTracker_Timeout_ExactlyOneStopBroadcast(t *testing.T) {
	req := require.New(t)
	recorder := &typingRecorder{}
	tracker := NewTypingTracker(slog.Default(), 50*time.Millisecond, recorder.record)

	tracker.Signal(42, "alice", true)

	// Then the quiet window elapses and exactly one typing=false fires
	req.Eventually(func() bool {
		return len(recorder.Calls()) == 2
	}, time.Second, 5*time.Millisecond)

	time.Sleep(150 * time.Millisecond)
	req.Equal([]typingBroadcast{{42, "alice", true}, {42, "alice", false}}, recorder.Calls())
	req.Equal(0, tracker.PendingTimers())
}

func TestTypingTracker_RefreshPostponesTimeout(t *testing.T) {
	req := require.New(t)
	recorder := &typingRecorder{}
	tracker := NewTypingTracker(slog.Default(), 200*time.Millisecond, recorder.record)

	tracker.Signal(42, "alice", true)
	// Keep refreshing under the timeout: no stop may fire meanwhile.
	for i := 0; i < 4; i++ {
		time.Sleep(50 * time.Millisecond)
		tracker.Signal(42, "alice", true)
	}
	req.Equal([]typingBroadcast{{42, "alice", true}}, recorder.Calls())

	req.Eventually(func() bool {
		return len(recorder.Calls()) == 2
	}, time.Second, 5*time.Millisecond)
	req.Equal(typingBroadcast{42, "alice", false}, recorder.Calls()[1])
}

func TestTypingTracker_ZeroWindowRearm_NoLeakedTimer(t *testing.T) {
	req := require.New(t)
	recorder := &typingRecorder{}
	tracker := NewTypingTracker(slog.Default(), time.Nanosecond, recorder.record)

	// Re-arm as fast as possible so expiries race with fresh timers.
	for i := 0; i < 2000; i++ {
		tracker.Signal(42, "alice", true)
	}

	// Once everything quiesces, no entry may stay armed-but-fired, and
	// every typing=true must be balanced by exactly one typing=false.
	req.Eventually(func() bool {
		if tracker.PendingTimers() != 0 {
			return false
		}
		starts, stops := 0, 0
		for _, call := range recorder.Calls() {
			if call.isTyping {
				starts++
			} else {
				stops++
			}
		}
		return starts > 0 && starts == stops
	}, 5*time.Second, 5*time.Millisecond)
}

func TestTypingTracker_ExplicitStop(t *testing.T) {
	req := require.New(t)
	recorder := &typingRecorder{}
	tracker := NewTypingTracker(slog.Default(), time.Hour, recorder.record)

	tracker.Signal(42, "alice", true)
	tracker.Signal(42, "alice", false)

	req.Equal([]typingBroadcast{{42, "alice", true}, {42, "alice", false}}, recorder.Calls())
	req.Equal(0, tracker.PendingTimers())

	// Stopping again while idle changes nothing observable.
	tracker.Signal(42, "alice", false)
	req.Len(recorder.Calls(), 2)
}

func TestTypingTracker_IndependentKeys(t *testing.T) {
	req := require.New(t)
	recorder := &typingRecorder{}
	tracker := NewTypingTracker(slog.Default(), time.Hour, recorder.record)

	tracker.Signal(42, "alice", true)
	tracker.Signal(42, "bob", true)
	tracker.Signal(7, "alice", true)

	req.Equal(3, tracker.PendingTimers())

	tracker.Signal(42, "alice", false)
	req.Equal(2, tracker.PendingTimers())
}

func TestTypingTracker_DropUser_CancelsAllAndBroadcastsStop(t *testing.T) {
	req := require.New(t)
	recorder := &typingRecorder{}
	tracker := NewTypingTracker(slog.Default(), time.Hour, recorder.record)

	tracker.Signal(42, "alice", true)
	tracker.Signal(7, "alice", true)
	tracker.Signal(42, "bob", true)

	// When alice disconnects
	tracker.DropUser("alice")

	// Then her timers are gone and each affected conversation got a
	// typing=false; bob's timer survives
	req.Equal(1, tracker.PendingTimers())

	var stops []typingBroadcast
	for _, call := range recorder.Calls() {
		if call.userID == "alice" && !call.isTyping {
			stops = append(stops, call)
		}
	}
	req.Len(stops, 2)
	req.ElementsMatch([]int64{42, 7}, []int64{stops[0].conversationID, stops[1].conversationID})
}

func TestTypingTracker_DropUser_NoTimers_NoBroadcast(t *testing.T) {
	req := require.New(t)
	recorder := &typingRecorder{}
	tracker := NewTypingTracker(slog.Default(), time.Hour, recorder.record)

	tracker.DropUser("ghost")

	req.Empty(recorder.Calls())
}
