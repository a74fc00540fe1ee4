package telemetry

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"strix/backend/domain"
)

// sysfsBatteryProber 从 /sys/class/power_supply 读取电池状态（Linux）。
// root 可注入，便于测试。
type sysfsBatteryProber struct {
	root string
}

func newSysfsBatteryProber(root string) *sysfsBatteryProber {
	if strings.TrimSpace(root) == "" {
		root = "/sys/class/power_supply"
	}
	return &sysfsBatteryProber{root: root}
}

func (p *sysfsBatteryProber) Probe(ctx context.Context) (domain.BatteryStatus, error) {
	dir, err := p.findBattery()
	if err != nil {
		return domain.UnknownBattery(), err
	}

	select {
	case <-ctx.Done():
		return domain.UnknownBattery(), ctx.Err()
	default:
	}

	capacity, err := readSysfsInt(filepath.Join(dir, "capacity"))
	if err != nil {
		return domain.UnknownBattery(), err
	}

	status, _ := readSysfsString(filepath.Join(dir, "status"))
	charging := strings.EqualFold(status, "Charging") || strings.EqualFold(status, "Full")

	// 剩余时间 = energy_now / power_now（单位 µWh / µW），仅放电时有意义
	remaining := 0
	if !charging {
		energy, energyErr := readSysfsInt(filepath.Join(dir, "energy_now"))
		power, powerErr := readSysfsInt(filepath.Join(dir, "power_now"))
		if energyErr == nil && powerErr == nil && power > 0 {
			remaining = int(float64(energy) / float64(power) * 60)
		}
	}

	return domain.BatteryStatus{
		Percentage:    capacity,
		IsCharging:    charging,
		TimeRemaining: remaining,
	}, nil
}

// findBattery 返回第一个 BAT* 目录
func (p *sysfsBatteryProber) findBattery() (string, error) {
	entries, err := os.ReadDir(p.root)
	if err != nil {
		return "", err
	}
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), "BAT") {
			return filepath.Join(p.root, entry.Name()), nil
		}
	}
	return "", fmt.Errorf("no battery under %s", p.root)
}

func readSysfsString(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func readSysfsInt(path string) (int, error) {
	raw, err := readSysfsString(path)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(raw)
}
