package telemetry

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"strix/backend/domain"
)

// pmset -g batt 的典型输出行：
//
//	-InternalBattery-0 (id=1234567)  85%; discharging; 3:42 remaining present: true
var pmsetLinePattern = regexp.MustCompile(`(\d+)%;\s*([a-zA-Z ]+?);(?:\s*(\d+):(\d+))?`)

// parsePmsetOutput 解析 macOS pmset 输出
func parsePmsetOutput(output string) (domain.BatteryStatus, error) {
	for _, line := range strings.Split(output, "\n") {
		match := pmsetLinePattern.FindStringSubmatch(line)
		if match == nil {
			continue
		}

		percentage, err := strconv.Atoi(match[1])
		if err != nil {
			continue
		}

		state := strings.TrimSpace(match[2])
		charging := strings.EqualFold(state, "charging") || strings.EqualFold(state, "charged") ||
			strings.EqualFold(state, "finishing charge")

		remaining := 0
		if match[3] != "" && match[4] != "" {
			hours, _ := strconv.Atoi(match[3])
			minutes, _ := strconv.Atoi(match[4])
			remaining = hours*60 + minutes
		}

		return domain.BatteryStatus{
			Percentage:    percentage,
			IsCharging:    charging,
			TimeRemaining: remaining,
		}, nil
	}
	return domain.UnknownBattery(), fmt.Errorf("no battery line in pmset output")
}
