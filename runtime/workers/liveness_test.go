package workers

import (
	"context"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"chat-relay/domain/event"
	"chat-relay/runtime"
)

// sweepConn is a connection whose liveness timestamp the test controls.
type sweepConn struct {
	userID     string
	lastSeen   time.Time
	terminated atomic.Bool
}

func (c *sweepConn) UserID() string              { return c.userID }
func (c *sweepConn) Deliver(_ event.DomainEvent) {}
func (c *sweepConn) LastSeen() time.Time         { return c.lastSeen }
func (c *sweepConn) Terminate()                  { c.terminated.Store(true) }

func TestLivenessWorker_Sweep_TerminatesSilentConnections(t *testing.T) {
	req := require.New(t)
	registry := runtime.NewRegistry()

	stale := &sweepConn{userID: "stale", lastSeen: time.Now().Add(-2 * time.Minute)}
	fresh := &sweepConn{userID: "fresh", lastSeen: time.Now()}
	registry.Register(stale)
	registry.Register(fresh)

	worker := NewLivenessWorker(slog.Default(), registry, 30*time.Second, time.Minute)
	worker.sweep()

	req.True(stale.terminated.Load())
	req.False(fresh.terminated.Load())
}

func TestLivenessWorker_Sweep_BoundaryNotTerminated(t *testing.T) {
	req := require.New(t)
	registry := runtime.NewRegistry()

	// Silence equal to the threshold is still within the grace window.
	borderline := &sweepConn{userID: "borderline", lastSeen: time.Now().Add(-time.Minute + time.Second)}
	registry.Register(borderline)

	worker := NewLivenessWorker(slog.Default(), registry, 30*time.Second, time.Minute)
	worker.sweep()

	req.False(borderline.terminated.Load())
}

func TestLivenessWorker_Run_SweepsOnTicker(t *testing.T) {
	req := require.New(t)
	registry := runtime.NewRegistry()

	stale := &sweepConn{userID: "stale", lastSeen: time.Now().Add(-time.Hour)}
	registry.Register(stale)

	worker := NewLivenessWorker(slog.Default(), registry, 10*time.Millisecond, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = worker.Run(ctx)
		close(done)
	}()

	req.Eventually(stale.terminated.Load, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop on context cancellation")
	}
}

func TestLivenessWorker_Run_StopsCleanly(t *testing.T) {
	req := require.New(t)
	registry := runtime.NewRegistry()
	worker := NewLivenessWorker(slog.Default(), registry, time.Hour, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- worker.Run(ctx) }()

	cancel()
	select {
	case err := <-errCh:
		req.NoError(err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}
