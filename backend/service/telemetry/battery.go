package telemetry

import (
	"context"
	"time"

	"strix/backend/domain"
)

// batteryProbeTimeout OS 探测的超时上限：挂起的子进程/系统调用只拖累自身请求，
// 超时按探测失败处理，返回哨兵值。
const batteryProbeTimeout = 2 * time.Second

// BatteryProber 电池探测接口。按操作系统一次性选定实现（进程启动时），
// 不在每次调用时分发。
type BatteryProber interface {
	Probe(ctx context.Context) (domain.BatteryStatus, error)
}

// NewBatteryProber 返回当前平台的电池探测实现；不支持的平台返回哨兵探测器。
func NewBatteryProber() BatteryProber {
	return newBatteryProber()
}

// sentinelProber 不支持平台的探测器：直接返回哨兵值。
type sentinelProber struct{}

func (sentinelProber) Probe(ctx context.Context) (domain.BatteryStatus, error) {
	return domain.UnknownBattery(), nil
}
