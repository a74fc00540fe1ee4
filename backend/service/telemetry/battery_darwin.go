//go:build darwin

package telemetry

import (
	"context"
	"os/exec"

	"strix/backend/domain"
)

func newBatteryProber() BatteryProber {
	return pmsetProber{}
}

// pmsetProber 调用 pmset -g batt 读取电池状态（macOS）
type pmsetProber struct{}

func (pmsetProber) Probe(ctx context.Context) (domain.BatteryStatus, error) {
	output, err := exec.CommandContext(ctx, "pmset", "-g", "batt").Output()
	if err != nil {
		return domain.UnknownBattery(), err
	}
	return parsePmsetOutput(string(output))
}
