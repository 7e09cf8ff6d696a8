package workers

import (
	"context"
	"log/slog"
	"time"

	"chat-relay/runtime"
)

// LivenessWorker sweeps every open connection at a fixed interval and
// forcibly terminates those whose last-liveness timestamp is older than
// the dead threshold (default 30s sweep, 60s threshold, roughly two
// missed cycles). Termination triggers the same cleanup path as a
// client-initiated close; the eviction itself never surfaces to the
// client.
type LivenessWorker struct {
	log           *slog.Logger
	registry      *runtime.Registry
	sweepInterval time.Duration
	deadAfter     time.Duration
}

func NewLivenessWorker(log *slog.Logger, registry *runtime.Registry,
	sweepInterval, deadAfter time.Duration) *LivenessWorker {
	return &LivenessWorker{
		log:           log,
		registry:      registry,
		sweepInterval: sweepInterval,
		deadAfter:     deadAfter,
	}
}

func (w *LivenessWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping liveness sweep")
			return nil
		case <-ticker.C:
			w.sweep()
		}
	}
}

// sweep walks a snapshot of the registry. Terminate only closes the
// transport; the connection's own goroutine performs cleanup, so a slow
// or dead connection never delays the check of the others.
func (w *LivenessWorker) sweep() {
	now := time.Now()
	for _, conn := range w.registry.Snapshot() {
		silence := now.Sub(conn.LastSeen())
		if silence <= w.deadAfter {
			continue
		}
		w.log.Info("Terminating inactive connection",
			"user_id", conn.UserID(), "silent_for", silence)
		conn.Terminate()
	}
}
