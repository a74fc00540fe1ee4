//go:build windows

package telemetry

import (
	"context"

	"strix/backend/domain"

	"github.com/yusufpapurcu/wmi"
)

func newBatteryProber() BatteryProber {
	return wmiProber{}
}

// win32Battery Win32_Battery 查询结果。BatteryStatus=2 表示接通电源。
type win32Battery struct {
	EstimatedChargeRemaining uint16
	EstimatedRunTime         uint32
	BatteryStatus            uint16
}

// wmiProber 通过 WMI 查询电池状态（Windows）
type wmiProber struct{}

func (wmiProber) Probe(ctx context.Context) (domain.BatteryStatus, error) {
	done := make(chan struct{})
	var batteries []win32Battery
	var queryErr error
	go func() {
		defer close(done)
		queryErr = wmi.Query("SELECT EstimatedChargeRemaining, EstimatedRunTime, BatteryStatus FROM Win32_Battery", &batteries)
	}()

	select {
	case <-ctx.Done():
		return domain.UnknownBattery(), ctx.Err()
	case <-done:
	}

	if queryErr != nil {
		return domain.UnknownBattery(), queryErr
	}
	if len(batteries) == 0 {
		return domain.UnknownBattery(), nil
	}

	battery := batteries[0]
	charging := battery.BatteryStatus == 2

	// EstimatedRunTime 在充电时报 71582788（WMI 的"unknown"），不采用
	remaining := 0
	if !charging && battery.EstimatedRunTime < 0xFFFFFF {
		remaining = int(battery.EstimatedRunTime)
	}

	return domain.BatteryStatus{
		Percentage:    int(battery.EstimatedChargeRemaining),
		IsCharging:    charging,
		TimeRemaining: remaining,
	}, nil
}
