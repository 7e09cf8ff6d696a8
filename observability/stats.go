// Package observability exposes a point-in-time snapshot of the live
// server: registry membership plus process self-stats.
package observability

import (
	"os"
	"sort"

	"github.com/shirou/gopsutil/process"

	"chat-relay/runtime"
)

type Snapshot struct {
	OnlineUsers     []string `json:"online_users"`
	OpenConnections int      `json:"open_connections"`
	PendingTyping   int      `json:"pending_typing"`

	Pid        int64   `json:"pid"`
	PidStatus  string  `json:"pid_status"`
	CpuPercent float64 `json:"cpu_percent"`
	RamBytes   uint64  `json:"ram_bytes"`
}

// Collect gathers registry counts and technical metrics (memory, CPU,
// OS status) for the running process.
func Collect(registry *runtime.Registry, typing *runtime.TypingTracker) (Snapshot, error) {
	rss, cpu, status, err := selfStats()
	if err != nil {
		return Snapshot{}, err
	}

	users := registry.OnlineUsers()
	sort.Strings(users)

	return Snapshot{
		OnlineUsers:     users,
		OpenConnections: len(registry.Snapshot()),
		PendingTyping:   typing.PendingTimers(),
		Pid:             int64(os.Getpid()),
		PidStatus:       status,
		CpuPercent:      cpu,
		RamBytes:        rss,
	}, nil
}

func selfStats() (uint64, float64, string, error) {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return 0, 0, "", err
	}
	memInfo, err := p.MemoryInfo()
	if err != nil {
		return 0, 0, "", err
	}
	cpuPercent, err := p.CPUPercent()
	if err != nil {
		return 0, 0, "", err
	}
	status, err := p.Status()
	if err != nil {
		return 0, 0, "", err
	}
	return memInfo.RSS, cpuPercent, status, nil
}
