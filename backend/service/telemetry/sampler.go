package telemetry

import (
	"log"
	stdnet "net"
	"sync"
	"time"

	"strix/backend/domain"

	psnet "github.com/shirou/gopsutil/v3/net"
)

// CounterSource 返回累计收发字节数。active=false 表示当前无可用网络接口。
// 可注入假实现做测试；生产实现基于 gopsutil 的每网卡计数器。
type CounterSource func() (rx, tx uint64, active bool, err error)

// Sampler 网速采样器：周期性读取累计计数器，用两次读数之差换算 Mbps。
// 读数由后台任务驱动（Sample），查询方只读最近一次结果（Last）。
type Sampler struct {
	source CounterSource

	mu     sync.Mutex
	primed bool
	lastRx uint64
	lastTx uint64
	lastAt time.Time
	speed  domain.NetworkSpeed
}

// NewSampler 创建采样器。source 为 nil 时使用系统计数器。
func NewSampler(source CounterSource) *Sampler {
	if source == nil {
		source = systemCounters
	}
	return &Sampler{source: source}
}

// Sample 读取一次计数器并更新速率。首次读数只做基线，速率保持为零。
func (s *Sampler) Sample() {
	rx, tx, active, err := s.source()
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		log.Printf("[Telemetry] network counters unavailable: %v", err)
		s.primed = false
		s.speed = domain.NetworkSpeed{}
		return
	}
	if !active {
		// 断网时报零速并重置基线，避免恢复后第一笔差值跨越离线区间
		s.primed = false
		s.speed = domain.NetworkSpeed{}
		return
	}

	if s.primed {
		elapsed := now.Sub(s.lastAt).Seconds()
		// 计数器回绕（网卡重置）时差值为负，丢弃这一笔
		if elapsed > 0 && rx >= s.lastRx && tx >= s.lastTx {
			s.speed = domain.NetworkSpeed{
				DownloadSpeed: bytesPerSecToMbps(float64(rx-s.lastRx) / elapsed),
				UploadSpeed:   bytesPerSecToMbps(float64(tx-s.lastTx) / elapsed),
			}
		}
	}

	s.primed = true
	s.lastRx = rx
	s.lastTx = tx
	s.lastAt = now
}

// Last 最近一次采样结果
func (s *Sampler) Last() domain.NetworkSpeed {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.speed
}

func bytesPerSecToMbps(bytesPerSec float64) float64 {
	return bytesPerSec * 8 / 1e6
}

// systemCounters 汇总所有启用的非回环网卡的累计收发字节数
func systemCounters() (uint64, uint64, bool, error) {
	counters, err := psnet.IOCounters(true)
	if err != nil {
		return 0, 0, false, err
	}

	ifaces, err := stdnet.Interfaces()
	if err != nil {
		return 0, 0, false, err
	}
	eligible := make(map[string]bool, len(ifaces))
	for _, iface := range ifaces {
		if iface.Flags&stdnet.FlagUp != 0 && iface.Flags&stdnet.FlagLoopback == 0 {
			eligible[iface.Name] = true
		}
	}

	var rx, tx uint64
	active := false
	for _, counter := range counters {
		if !eligible[counter.Name] {
			continue
		}
		rx += counter.BytesRecv
		tx += counter.BytesSent
		active = true
	}
	return rx, tx, active, nil
}
