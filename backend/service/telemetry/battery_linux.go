//go:build linux

package telemetry

func newBatteryProber() BatteryProber {
	return newSysfsBatteryProber("")
}
