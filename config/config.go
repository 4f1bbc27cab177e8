// Package config holds the small, headless-friendly settings surface this
// core needs to start: the JIT schedule buffer and the melodic channel
// pool. Unlike go-sequence's JSON-file config, there is no file here — this
// process runs unattended once launched, so one environment variable is
// enough.
package config

import (
	"os"
	"strconv"

	"github.com/iltempo/interplay-core/scheduling"
)

const scheduleBufferEnvVar = "INTERPLAY_SCHEDULE_BUFFER_MS"

const defaultScheduleBufferMs = 400

// Config is the scheduling core's startup configuration.
type Config struct {
	ScheduleBufferMs  int
	AvailableChannels []uint8
}

// Default returns the core's built-in defaults: a 400ms schedule buffer and
// every MIDI channel except the reserved percussion channel.
func Default() Config {
	return Config{
		ScheduleBufferMs:  defaultScheduleBufferMs,
		AvailableChannels: scheduling.DefaultChannelPool(),
	}
}

// Load returns Default(), overridden by any recognized environment
// variables. Unparsable or negative values are ignored rather than
// rejected outright, since a bad override should not stop the process from
// starting with sane defaults.
func Load() Config {
	cfg := Default()
	if raw := os.Getenv(scheduleBufferEnvVar); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n >= 0 {
			cfg.ScheduleBufferMs = n
		}
	}
	return cfg
}
