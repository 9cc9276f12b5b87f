package screen

import (
	"os"
	"strconv"
	"strings"
	"time"

	"vfdd/frame"
)

const (
	defaultLoadPath = "/proc/loadavg"
	defaultTempPath = "/sys/class/thermal/thermal_zone0/temp"
)

// ClockStats shows the local time and date on line one and the load
// average plus CPU temperature on line two. It is the guaranteed
// fallback screen: it always yields content, substituting placeholders
// when a metrics file cannot be read.
type ClockStats struct {
	loadPath string
	tempPath string
}

func NewClockStats() *ClockStats {
	return &ClockStats{
		loadPath: defaultLoadPath,
		tempPath: defaultTempPath,
	}
}

func (c *ClockStats) Name() string {
	return "clock"
}

func (c *ClockStats) Frame(now time.Time) (frame.Frame, bool) {
	return frame.Frame{
		Line1: now.Format("15:04:05 02/01"),
		Line2: "L:" + c.load() + " " + c.temp(),
	}, true
}

// load returns the one-minute load average, or "?" when unavailable.
func (c *ClockStats) load() string {
	data, err := os.ReadFile(c.loadPath)
	if err != nil {
		return "?"
	}
	fields := strings.Fields(string(data))
	if len(fields) == 0 {
		return "?"
	}
	return fields[0]
}

// temp returns the CPU temperature in whole degrees, or "??C" when the
// thermal zone cannot be read.
func (c *ClockStats) temp() string {
	data, err := os.ReadFile(c.tempPath)
	if err != nil {
		return "??C"
	}
	milli, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return "??C"
	}
	return strconv.Itoa(milli/1000) + "C"
}
