//go:build !linux && !darwin && !windows

package telemetry

func newBatteryProber() BatteryProber {
	return sentinelProber{}
}
