package telemetry

import (
	"math"
	"os"
	"runtime"

	"strix/backend/domain"

	"github.com/shirou/gopsutil/v3/process"
)

// probeRAM 采集进程 RSS 与 Go 堆占用（单位 MB，四舍五入）。
// RSS 读取失败时 BrowserRAM 取哨兵值 -1，堆占用始终可用。
func probeRAM() domain.RAMUsage {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)
	usage := domain.RAMUsage{
		BrowserRAM: -1,
		HeapUsed:   roundMB(stats.HeapAlloc),
	}

	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return usage
	}
	info, err := proc.MemoryInfo()
	if err != nil || info == nil {
		return usage
	}
	usage.BrowserRAM = roundMB(info.RSS)
	return usage
}

func roundMB(bytes uint64) int64 {
	return int64(math.Round(float64(bytes) / (1024 * 1024)))
}
