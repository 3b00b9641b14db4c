package output

import (
	"os"
	"strings"
)

var isPiCache = false

// IsPi reports whether we're running on a Raspberry Pi, where the PWM and
// I2C hardware exist
func IsPi() bool {
	if isPiCache {
		return true
	}

	data, err := os.ReadFile("/proc/cpuinfo")
	if err != nil {
		return false
	}

	if strings.Contains(string(data), "ARM") || strings.Contains(string(data), "Raspberry Pi") {
		isPiCache = true
		return true
	}

	return false
}
