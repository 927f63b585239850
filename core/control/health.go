package control

import (
	"os"

	"github.com/shirou/gopsutil/v3/process"
)

// processHealth reports this process's CPU share and resident set, for
// the status endpoint. Failures degrade to zeroes; health numbers are
// best effort.
func processHealth() (cpuPercent float64, rssBytes uint64) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return 0, 0
	}

	if cpu, err := proc.CPUPercent(); err == nil {
		cpuPercent = cpu
	}
	if mem, err := proc.MemoryInfo(); err == nil && mem != nil {
		rssBytes = mem.RSS
	}
	return cpuPercent, rssBytes
}
